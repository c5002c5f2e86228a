package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/dd0wney/cluso-signal/pkg/health"
	"github.com/dd0wney/cluso-signal/pkg/logging"
	"github.com/dd0wney/cluso-signal/pkg/signal"
	"github.com/dd0wney/cluso-signal/pkg/validation"
)

// optimize runs one optimization against the current configuration and
// feeds the result to every configured sink. It is shared by the REST
// and GraphQL surfaces.
func (s *Server) optimize(lanes []signal.LaneCount, requestID string) (*signal.IntersectionTiming, error) {
	cfg := s.Config().Signal

	start := time.Now()
	timing, err := signal.Optimize(lanes, cfg)
	if err != nil {
		s.recordFailure(err)
		return nil, err
	}
	s.registry.RecordOptimization(timing, time.Since(start))

	s.log.Info("optimization complete",
		logging.RequestID(requestID),
		logging.CycleSeconds(timing.CycleLength),
		logging.FlowRatioSum(timing.SaturationDegree),
		logging.Flags(timing.Flags))

	s.events.Publish(TimingsTopic, timing)

	if s.publisher != nil {
		if err := s.publisher.Publish(timing); err != nil {
			s.log.Warn("broadcast publish failed", logging.Error(err))
		}
	}
	if s.store != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			err := s.store.Insert(ctx, requestID, timing)
			s.registry.RecordHistoryInsert(err)
			if err != nil {
				s.log.Warn("history insert failed", logging.Error(err), logging.RequestID(requestID))
			}
		}()
	}

	return timing, nil
}

func (s *Server) recordFailure(err error) {
	switch {
	case errors.Is(err, signal.ErrOversaturated):
		s.registry.RecordOptimizationError("oversaturated")
	case errors.Is(err, signal.ErrUnknownClass):
		s.registry.RecordOptimizationError("unknown_class")
	default:
		s.registry.RecordOptimizationError("invalid_input")
	}
}

func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req validation.OptimizeRequest
	rd := s.NewRequestDecoder(w, r).DecodeJSON(&req).ValidateOptimize(&req)
	if rd.RespondError() {
		return
	}

	lanes := make([]signal.LaneCount, 0, len(req.Lanes))
	for _, lane := range req.Lanes {
		counts := make(map[signal.VehicleClass]int, len(lane.Counts))
		for class, count := range lane.Counts {
			counts[signal.VehicleClass(class)] = count
		}
		lanes = append(lanes, signal.LaneCount{
			Direction: signal.Direction(lane.Direction),
			Counts:    counts,
		})
	}

	requestID := requestIDFrom(r.Context())
	timing, err := s.optimize(lanes, requestID)
	if err != nil {
		s.respondOptimizeError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, OptimizeResponse{
		RequestID: requestID,
		Timing:    timing,
	})
}

// respondOptimizeError maps core errors onto HTTP statuses. The
// oversaturated condition gets its own response shape so callers can
// distinguish it from malformed input.
func (s *Server) respondOptimizeError(w http.ResponseWriter, err error) {
	var oversaturated *signal.OversaturationError
	if errors.As(err, &oversaturated) {
		s.respondJSON(w, http.StatusUnprocessableEntity, OversaturatedResponse{
			Error:       "oversaturated",
			Message:     err.Error(),
			CriticalSum: oversaturated.CriticalSum,
		})
		return
	}
	s.respondError(w, http.StatusBadRequest, err.Error())
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.respondJSON(w, http.StatusOK, ConfigResponse{Signal: s.Config().Signal})
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if s.store == nil {
		s.respondError(w, http.StatusNotFound, "timing history is not configured")
		return
	}

	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			s.respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid limit %q", v))
			return
		}
		limit = parsed
	}

	records, err := s.store.Recent(r.Context(), limit)
	if err != nil {
		s.log.Error("history query failed", logging.Error(err))
		s.respondError(w, http.StatusInternalServerError, "history query failed")
		return
	}
	s.respondJSON(w, http.StatusOK, records)
}

// handleStream serves timing results as server-sent events, fed by the
// in-process pubsub.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.respondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	sub, err := s.events.Subscribe(r.Context(), TimingsTopic)
	if err != nil {
		s.respondError(w, http.StatusServiceUnavailable, "server is shutting down")
		return
	}
	defer sub.Unsubscribe()

	s.registry.StreamSubscribersOpen.Inc()
	defer s.registry.StreamSubscribersOpen.Dec()

	// Long-lived stream: lift the server's write deadline so the
	// connection outlives WriteTimeout.
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		s.log.Debug("clear stream write deadline", logging.Error(err))
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, open := <-sub.Channel():
			if !open {
				return
			}
			data, err := json.Marshal(msg)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	healthStatus := s.healthChecker.Check()

	httpStatus := http.StatusOK
	if healthStatus.Status == health.StatusUnhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	s.respondJSON(w, httpStatus, HealthResponse{
		Status:    string(healthStatus.Status),
		Timestamp: healthStatus.Timestamp,
		Version:   s.version,
		Uptime:    time.Since(s.startTime).String(),
		Checks:    healthStatus.Checks,
	})
}

func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	resp := s.healthChecker.CheckLiveness()
	status := http.StatusOK
	if resp.Status == health.StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	s.respondJSON(w, status, resp)
}

func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	resp := s.healthChecker.CheckReadiness()
	status := http.StatusOK
	if resp.Status == health.StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	s.respondJSON(w, status, resp)
}

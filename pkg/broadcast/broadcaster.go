// Package broadcast publishes timing results to downstream display
// collaborators over an nng/mangos pub socket. The wire format is a
// topic prefix followed by the JSON-encoded timing, optionally
// snappy-compressed.
package broadcast

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/golang/snappy"
	"go.nanomsg.org/mangos/v3"
	"go.nanomsg.org/mangos/v3/protocol/pub"

	// Register all transports
	_ "go.nanomsg.org/mangos/v3/transport/all"

	"github.com/dd0wney/cluso-signal/pkg/logging"
	"github.com/dd0wney/cluso-signal/pkg/metrics"
	"github.com/dd0wney/cluso-signal/pkg/signal"
)

// Topic is the frame prefix subscribers filter on.
const Topic = "timings"

// Broadcaster publishes intersection timings on a pub socket.
type Broadcaster struct {
	sock     mangos.Socket
	compress bool
	reg      *metrics.Registry
	log      logging.Logger
	mu       sync.Mutex
	closed   bool
}

// New opens a pub socket listening on addr.
func New(addr string, compress bool, reg *metrics.Registry) (*Broadcaster, error) {
	sock, err := pub.NewSocket()
	if err != nil {
		return nil, fmt.Errorf("creating pub socket: %w", err)
	}
	if err := sock.Listen(addr); err != nil {
		sock.Close()
		return nil, fmt.Errorf("listening on %s: %w", addr, err)
	}

	return &Broadcaster{
		sock:     sock,
		compress: compress,
		reg:      reg,
		log:      logging.With(logging.Component("broadcast")),
	}, nil
}

// Publish sends one timing result to all connected subscribers.
func (b *Broadcaster) Publish(timing *signal.IntersectionTiming) error {
	payload, err := json.Marshal(timing)
	if err != nil {
		return fmt.Errorf("encoding timing: %w", err)
	}
	if b.compress {
		payload = snappy.Encode(nil, payload)
	}

	frame := make([]byte, 0, len(Topic)+1+len(payload))
	frame = append(frame, Topic...)
	frame = append(frame, ' ')
	frame = append(frame, payload...)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return fmt.Errorf("broadcaster is closed")
	}

	err = b.sock.Send(frame)
	if b.reg != nil {
		b.reg.RecordBroadcast(len(frame), err)
	}
	if err != nil {
		b.log.Error("broadcast failed", logging.Error(err))
		return err
	}

	b.log.Debug("timing broadcast",
		logging.CycleSeconds(timing.CycleLength),
		logging.Int("bytes", len(frame)))
	return nil
}

// Close shuts the pub socket down.
func (b *Broadcaster) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return b.sock.Close()
}

// Decode unpacks a subscriber-side frame back into a timing result.
// It is the inverse of Publish's framing and is used by tests and by
// downstream Go consumers.
func Decode(frame []byte, compressed bool) (*signal.IntersectionTiming, error) {
	prefix := []byte(Topic + " ")
	if len(frame) < len(prefix) || string(frame[:len(prefix)]) != string(prefix) {
		return nil, fmt.Errorf("frame missing %q topic prefix", Topic)
	}
	payload := frame[len(prefix):]

	if compressed {
		decoded, err := snappy.Decode(nil, payload)
		if err != nil {
			return nil, fmt.Errorf("decompressing frame: %w", err)
		}
		payload = decoded
	}

	var timing signal.IntersectionTiming
	if err := json.Unmarshal(payload, &timing); err != nil {
		return nil, fmt.Errorf("decoding timing: %w", err)
	}
	return &timing, nil
}

package signal

import (
	"strconv"

	"github.com/dd0wney/cluso-signal/pkg/logging"
)

// ValidateLanes checks that the lane set covers exactly the four
// approaches, each once, with non-negative counts. Rejected input never
// reaches the demand computation.
func ValidateLanes(lanes []LaneCount) error {
	if len(lanes) != NumPhases {
		return &InvalidInputError{
			Reason: "expected exactly 4 lanes, got " + strconv.Itoa(len(lanes)),
		}
	}

	seen := make(map[Direction]bool, NumPhases)
	for _, lane := range lanes {
		if !lane.Direction.Valid() {
			return &InvalidInputError{
				Direction: lane.Direction,
				Reason:    "unknown direction",
			}
		}
		if seen[lane.Direction] {
			return &InvalidInputError{
				Direction: lane.Direction,
				Reason:    "duplicate direction",
			}
		}
		seen[lane.Direction] = true

		for class, count := range lane.Counts {
			if count < 0 {
				return &InvalidInputError{
					Direction: lane.Direction,
					Reason:    "negative count for class " + string(class),
				}
			}
		}
	}

	return nil
}

// LaneDemandPCU computes the weighted demand of a single lane. Under
// PolicyReject an unweighted class fails the computation; under
// PolicyIgnore it contributes zero, is logged, and is tallied in the
// returned ignored count.
func LaneDemandPCU(lane LaneCount, weights WeightTable, policy UnknownClassPolicy) (float64, int, error) {
	pcu := 0.0
	ignored := 0
	for class, count := range lane.Counts {
		weight, ok := weights[class]
		if !ok {
			if policy == PolicyReject {
				return 0, 0, &UnknownClassError{Direction: lane.Direction, Class: class}
			}
			logging.Warn("ignoring unweighted vehicle class",
				logging.DirectionField(string(lane.Direction)),
				logging.String("class", string(class)),
				logging.Int("count", count))
			ignored += count
			continue
		}
		pcu += float64(count) * weight
	}
	return pcu, ignored, nil
}

// EstimateDemand converts the four lane counts into per-lane PCU demand
// and flow ratios, ordered canonically (North, South, East, West). The
// input is validated first; a zero-vehicle lane yields flow ratio 0 and
// still participates downstream.
func EstimateDemand(lanes []LaneCount, cfg Config) ([]LaneDemand, error) {
	if err := ValidateLanes(lanes); err != nil {
		return nil, err
	}

	byDirection := make(map[Direction]LaneCount, NumPhases)
	for _, lane := range lanes {
		byDirection[lane.Direction] = lane
	}

	demands := make([]LaneDemand, 0, NumPhases)
	for _, dir := range Directions {
		lane := byDirection[dir]
		pcu, ignored, err := LaneDemandPCU(lane, cfg.Weights, cfg.UnknownClassPolicy)
		if err != nil {
			return nil, err
		}
		demands = append(demands, LaneDemand{
			Direction: dir,
			PCU:       pcu,
			FlowRatio: pcu / cfg.SaturationFlow,
			Ignored:   ignored,
		})
	}

	return demands, nil
}

package signal

import (
	"math"
)

// Optimize runs the full pipeline: lane counts in, intersection timing
// out. It is a pure function of its inputs; identical input and
// configuration always produce identical output.
//
// When the critical flow ratio sum Y reaches 1.0 the Webster formula is
// undefined. With cfg.OversaturationFallback the optimizer substitutes a
// degraded timing at MaxCycle carrying the "oversaturated" flag;
// otherwise it returns an OversaturationError.
func Optimize(lanes []LaneCount, cfg Config) (*IntersectionTiming, error) {
	demands, err := EstimateDemand(lanes, cfg)
	if err != nil {
		return nil, err
	}
	return OptimizeDemand(demands, cfg)
}

// OptimizeDemand computes the timing from already-estimated per-lane
// demand. Demands must be in canonical direction order.
func OptimizeDemand(demands []LaneDemand, cfg Config) (*IntersectionTiming, error) {
	lostTime := cfg.TotalLostTime()

	criticalSum := 0.0
	for _, d := range demands {
		criticalSum += d.FlowRatio
	}

	var flags []string
	var cycle int

	if criticalSum >= 1.0 {
		if !cfg.OversaturationFallback {
			return nil, &OversaturationError{CriticalSum: criticalSum}
		}
		cycle = cfg.MaxCycle
		flags = append(flags, FlagOversaturated)
	} else {
		raw := websterCycle(lostTime, criticalSum)
		cycle = int(math.Round(raw))
		switch {
		case cycle < cfg.MinCycle:
			cycle = cfg.MinCycle
			flags = append(flags, FlagClampedToMinimum)
		case cycle > cfg.MaxCycle:
			cycle = cfg.MaxCycle
			flags = append(flags, FlagClampedToMaximum)
		}
	}

	greens, extended := allocateGreens(demands, cycle-lostTime, cfg.MinGreen)
	if extended {
		// Minimum-green floors needed more than the cycle could supply.
		// The cycle stretches so the sum invariant still holds exactly.
		total := lostTime
		for _, g := range greens {
			total += g
		}
		cycle = total
		flags = append(flags, FlagMinGreenExtended)
	}

	timing := &IntersectionTiming{
		CycleLength:      cycle,
		LostTime:         lostTime,
		SaturationDegree: criticalSum,
		Phases:           make([]PhaseTiming, 0, NumPhases),
		Flags:            flags,
	}

	for i, d := range demands {
		timing.Phases = append(timing.Phases, PhaseTiming{
			Direction: d.Direction,
			Green:     greens[i],
			Yellow:    cfg.YellowInterval,
			Red:       cycle - greens[i] - cfg.YellowInterval,
			PCU:       d.PCU,
			FlowRatio: d.FlowRatio,
			Ignored:   d.Ignored,
		})
	}

	return timing, nil
}

// websterCycle evaluates C_opt = (1.5L + 5) / (1 - Y). Callers must
// ensure Y < 1.
func websterCycle(lostTime int, criticalSum float64) float64 {
	return (1.5*float64(lostTime) + 5) / (1 - criticalSum)
}

// allocateGreens splits the available effective green across the lanes
// in proportion to their flow ratios, in whole seconds, with a
// minimum-green floor.
//
// Seconds are apportioned by descending divisor priorities rather than
// by rounding real-valued shares; a lane's green never shrinks when its
// own demand grows. Lanes whose apportionment falls below the floor are
// pinned at the minimum and the remaining seconds re-apportioned among
// the lanes still above it, so the greens always sum to available
// exactly. When even the floors exceed available, the caller must
// extend the cycle; that case is reported via the second return value.
func allocateGreens(demands []LaneDemand, available, minGreen int) ([]int, bool) {
	n := len(demands)
	greens := make([]int, n)

	if available < n*minGreen {
		for i := range greens {
			greens[i] = minGreen
		}
		return greens, true
	}

	pinned := make([]bool, n)
	for {
		unpinned := make([]int, 0, n)
		for i := range demands {
			if !pinned[i] {
				unpinned = append(unpinned, i)
			}
		}
		budget := available - minGreen*(n-len(unpinned))

		weights := make([]float64, len(unpinned))
		for j, i := range unpinned {
			weights[j] = demands[i].FlowRatio
		}
		seats := apportion(weights, budget)

		short := false
		for j, i := range unpinned {
			if seats[j] < minGreen {
				pinned[i] = true
				short = true
			}
		}
		if short {
			continue
		}

		for i := range greens {
			greens[i] = minGreen
		}
		for j, i := range unpinned {
			greens[i] = seats[j]
		}
		return greens, false
	}
}

// apportion hands out whole seconds in proportion to the weights by
// repeatedly awarding the highest divisor priority w/(2k+1), canonical
// order breaking ties. Zero total weight degrades to an equal split.
// The result sums to seats exactly.
func apportion(weights []float64, seats int) []int {
	n := len(weights)
	out := make([]int, n)

	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total == 0 {
		base, rem := seats/n, seats%n
		for i := range out {
			out[i] = base
			if i < rem {
				out[i]++
			}
		}
		return out
	}

	for s := 0; s < seats; s++ {
		best := 0
		bestPriority := -1.0
		for i, w := range weights {
			if p := w / float64(2*out[i]+1); p > bestPriority {
				bestPriority = p
				best = i
			}
		}
		out[best]++
	}
	return out
}

package signal

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

// checkTimingInvariants asserts the structural guarantees every valid
// output must hold: sum of greens plus lost time equals the cycle, and
// each phase's green+yellow+red equals the cycle.
func checkTimingInvariants(t *testing.T, timing *IntersectionTiming) {
	t.Helper()

	greenSum := 0
	for _, phase := range timing.Phases {
		greenSum += phase.Green
		if phase.Green < 0 || phase.Yellow < 0 || phase.Red < 0 {
			t.Errorf("%s: negative component (g=%d y=%d r=%d)",
				phase.Direction, phase.Green, phase.Yellow, phase.Red)
		}
		if total := phase.Green + phase.Yellow + phase.Red; total != timing.CycleLength {
			t.Errorf("%s: green+yellow+red = %d, want cycle %d",
				phase.Direction, total, timing.CycleLength)
		}
	}
	if greenSum+timing.LostTime != timing.CycleLength {
		t.Errorf("sum of greens %d + lost time %d != cycle %d",
			greenSum, timing.LostTime, timing.CycleLength)
	}
}

func TestOptimize_SpecScenario(t *testing.T) {
	cfg := DefaultConfig()
	timing, err := Optimize(carLanes(20, 15, 10, 5), cfg)
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}

	// Y = 50/1800, raw Webster cycle 35/(1-Y) = 36s, below the 40s floor.
	if math.Abs(timing.SaturationDegree-50.0/1800) > 1e-9 {
		t.Errorf("Y = %f, want %f", timing.SaturationDegree, 50.0/1800)
	}
	if timing.LostTime != 20 {
		t.Errorf("lost time = %d, want 20", timing.LostTime)
	}
	if !timing.HasFlag(FlagClampedToMinimum) {
		t.Errorf("expected clamped-to-minimum flag, got %v", timing.Flags)
	}

	// Min-green floors (7s) outweigh the 20s of effective green at the
	// 40s floor, so the cycle extends.
	if !timing.HasFlag(FlagMinGreenExtended) {
		t.Errorf("expected min-green-extended flag, got %v", timing.Flags)
	}
	for _, phase := range timing.Phases {
		if phase.Green < cfg.MinGreen {
			t.Errorf("%s green %d below minimum %d", phase.Direction, phase.Green, cfg.MinGreen)
		}
		if phase.Yellow != cfg.YellowInterval {
			t.Errorf("%s yellow = %d, want %d", phase.Direction, phase.Yellow, cfg.YellowInterval)
		}
	}

	checkTimingInvariants(t, timing)
}

func TestOptimize_ProportionalSplit(t *testing.T) {
	cfg := DefaultConfig()

	// Y = 900/1800 = 0.5 -> cycle exactly 70s, 50s of effective green.
	timing, err := Optimize(carLanes(300, 250, 200, 150), cfg)
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}

	if timing.CycleLength != 70 {
		t.Errorf("cycle = %d, want 70", timing.CycleLength)
	}
	if len(timing.Flags) != 0 {
		t.Errorf("expected no flags, got %v", timing.Flags)
	}

	// Shares 16.67/13.89/11.11/8.33 round to 17/14/11/8.
	wantGreens := map[Direction]int{North: 17, South: 14, East: 11, West: 8}
	for _, phase := range timing.Phases {
		if phase.Green != wantGreens[phase.Direction] {
			t.Errorf("%s green = %d, want %d", phase.Direction, phase.Green, wantGreens[phase.Direction])
		}
	}

	north := timing.Phase(North)
	if north.Red != 70-17-3 {
		t.Errorf("north red = %d, want %d", north.Red, 70-17-3)
	}

	checkTimingInvariants(t, timing)
}

func TestOptimize_AllZeroCounts(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinGreen = 5 // 4*5 + 20s lost time = the 40s floor exactly

	timing, err := Optimize(carLanes(0, 0, 0, 0), cfg)
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}

	if timing.CycleLength != cfg.MinCycle {
		t.Errorf("cycle = %d, want floor %d", timing.CycleLength, cfg.MinCycle)
	}
	if !timing.HasFlag(FlagClampedToMinimum) {
		t.Errorf("expected clamped-to-minimum flag, got %v", timing.Flags)
	}
	for _, phase := range timing.Phases {
		if phase.Green != cfg.MinGreen {
			t.Errorf("%s green = %d, want minimum %d", phase.Direction, phase.Green, cfg.MinGreen)
		}
	}

	checkTimingInvariants(t, timing)
}

func TestOptimize_ClampedToMaximum(t *testing.T) {
	cfg := DefaultConfig()

	// Y = 1620/1800 = 0.9 -> raw cycle 350s, above the 180s ceiling.
	timing, err := Optimize(carLanes(500, 450, 400, 270), cfg)
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}

	if timing.CycleLength != cfg.MaxCycle {
		t.Errorf("cycle = %d, want ceiling %d", timing.CycleLength, cfg.MaxCycle)
	}
	if !timing.HasFlag(FlagClampedToMaximum) {
		t.Errorf("expected clamped-to-maximum flag, got %v", timing.Flags)
	}

	checkTimingInvariants(t, timing)
}

func TestOptimize_Oversaturated(t *testing.T) {
	cfg := DefaultConfig()

	_, err := Optimize(carLanes(600, 600, 600, 600), cfg)
	if !errors.Is(err, ErrOversaturated) {
		t.Fatalf("expected ErrOversaturated, got %v", err)
	}

	var oversaturated *OversaturationError
	if !errors.As(err, &oversaturated) {
		t.Fatalf("expected OversaturationError, got %T", err)
	}
	if oversaturated.CriticalSum < 1.0 {
		t.Errorf("critical sum = %f, want >= 1.0", oversaturated.CriticalSum)
	}
}

func TestOptimize_OversaturatedFallback(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OversaturationFallback = true

	timing, err := Optimize(carLanes(600, 600, 600, 600), cfg)
	if err != nil {
		t.Fatalf("expected fallback timing, got %v", err)
	}

	if !timing.HasFlag(FlagOversaturated) {
		t.Errorf("expected oversaturated flag, got %v", timing.Flags)
	}
	if timing.CycleLength != cfg.MaxCycle {
		t.Errorf("fallback cycle = %d, want max %d", timing.CycleLength, cfg.MaxCycle)
	}

	checkTimingInvariants(t, timing)
}

func TestOptimize_Idempotent(t *testing.T) {
	cfg := DefaultConfig()
	lanes := carLanes(120, 80, 45, 30)

	first, err := Optimize(lanes, cfg)
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}
	second, err := Optimize(lanes, cfg)
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("identical inputs produced different timings:\n%+v\n%+v", first, second)
	}
}

func TestOptimize_Monotonic(t *testing.T) {
	cfg := DefaultConfig()

	before, err := Optimize(carLanes(300, 250, 200, 150), cfg)
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}
	after, err := Optimize(carLanes(300, 250, 200, 350), cfg)
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}

	if after.Phase(West).Green < before.Phase(West).Green {
		t.Errorf("west green decreased from %d to %d after demand grew",
			before.Phase(West).Green, after.Phase(West).Green)
	}
}

// A single extra vehicle on one lane must never cost that lane a green
// second, even when other lanes sit at the minimum-green floor.
func TestOptimize_MonotonicSingleVehicle(t *testing.T) {
	cfg := DefaultConfig()

	before, err := Optimize(carLanes(0, 130, 391, 435), cfg)
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}
	after, err := Optimize(carLanes(0, 130, 391, 436), cfg)
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}

	if after.Phase(West).Green < before.Phase(West).Green {
		t.Errorf("west green decreased from %d to %d after one extra vehicle",
			before.Phase(West).Green, after.Phase(West).Green)
	}

	checkTimingInvariants(t, before)
	checkTimingInvariants(t, after)
}

func TestOptimize_InvalidInputRejected(t *testing.T) {
	cfg := DefaultConfig()
	lanes := carLanes(20, 15, 10, 5)
	lanes[0].Counts[ClassCar] = -4

	_, err := Optimize(lanes, cfg)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestWebsterCycle_MatchesFormula(t *testing.T) {
	cases := []struct {
		lostTime int
		y        float64
	}{
		{20, 0.1},
		{20, 0.5},
		{16, 0.75},
		{24, 0.0278},
	}
	for _, tc := range cases {
		want := (1.5*float64(tc.lostTime) + 5) / (1 - tc.y)
		got := websterCycle(tc.lostTime, tc.y)
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("websterCycle(%d, %f) = %f, want %f", tc.lostTime, tc.y, got, want)
		}
	}
}

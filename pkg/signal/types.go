package signal

// Direction identifies one approach of the four-way intersection.
type Direction string

const (
	North Direction = "North"
	South Direction = "South"
	East  Direction = "East"
	West  Direction = "West"
)

// Directions lists the four approaches in canonical phase order.
// All per-lane output slices follow this order.
var Directions = []Direction{North, South, East, West}

// NumPhases is fixed: one phase per approach.
const NumPhases = 4

// Valid reports whether d is one of the four known approaches.
func (d Direction) Valid() bool {
	switch d {
	case North, South, East, West:
		return true
	}
	return false
}

// VehicleClass is a detector classification label (car, bus, ...).
type VehicleClass string

const (
	ClassCar        VehicleClass = "car"
	ClassMotorcycle VehicleClass = "motorcycle"
	ClassBus        VehicleClass = "bus"
	ClassTruck      VehicleClass = "truck"
)

// WeightTable maps a vehicle class to its Passenger Car Unit weight.
type WeightTable map[VehicleClass]float64

// DefaultWeights returns the standard PCU weight table.
func DefaultWeights() WeightTable {
	return WeightTable{
		ClassCar:        1.0,
		ClassMotorcycle: 0.5,
		ClassBus:        3.0,
		ClassTruck:      3.0,
	}
}

// LaneCount holds the classified vehicle counts observed on one approach.
// Counts are a snapshot of arrival flow; they are never mutated by the core.
type LaneCount struct {
	Direction Direction            `json:"direction"`
	Counts    map[VehicleClass]int `json:"counts"`
}

// LaneDemand is the weighted demand derived from one LaneCount.
type LaneDemand struct {
	Direction Direction `json:"direction"`
	PCU       float64   `json:"pcu"`
	FlowRatio float64   `json:"flow_ratio"`
	// Ignored counts vehicles dropped under PolicyIgnore because their
	// class has no weight.
	Ignored int `json:"ignored,omitempty"`
}

// UnknownClassPolicy controls how counts for classes absent from the
// weight table are handled.
type UnknownClassPolicy string

const (
	// PolicyReject fails the request when an unknown class appears.
	PolicyReject UnknownClassPolicy = "reject"
	// PolicyIgnore treats unknown classes as zero-weight and logs them.
	PolicyIgnore UnknownClassPolicy = "ignore"
)

// PhaseTiming is the signal split for one approach, in whole seconds.
type PhaseTiming struct {
	Direction Direction `json:"direction"`
	Green     int       `json:"green"`
	Yellow    int       `json:"yellow"`
	Red       int       `json:"red"`
	PCU       float64   `json:"pcu"`
	FlowRatio float64   `json:"flow_ratio"`
	Ignored   int       `json:"ignored,omitempty"`
}

// Advisory flags attached to a timing result.
const (
	FlagOversaturated    = "oversaturated"
	FlagClampedToMinimum = "clamped-to-minimum"
	FlagClampedToMaximum = "clamped-to-maximum"
	FlagMinGreenExtended = "min-green-extended"
)

// IntersectionTiming is the optimizer output: the cycle length and one
// PhaseTiming per approach in canonical order.
//
// Invariant: the sum of the four green times plus LostTime equals
// CycleLength exactly, and green+yellow+red equals CycleLength per phase.
type IntersectionTiming struct {
	CycleLength      int           `json:"cycle_length"`
	LostTime         int           `json:"lost_time"`
	SaturationDegree float64       `json:"saturation_degree"`
	Phases           []PhaseTiming `json:"phases"`
	Flags            []string      `json:"flags,omitempty"`
}

// HasFlag reports whether the timing carries the given advisory flag.
func (t *IntersectionTiming) HasFlag(flag string) bool {
	for _, f := range t.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// Phase returns the timing for the given approach, or nil if absent.
func (t *IntersectionTiming) Phase(d Direction) *PhaseTiming {
	for i := range t.Phases {
		if t.Phases[i].Direction == d {
			return &t.Phases[i]
		}
	}
	return nil
}

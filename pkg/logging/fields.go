package logging

import (
	"time"
)

// Common field constructors
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

func Any(key string, value any) Field {
	return Field{Key: key, Value: value}
}

func Latency(d time.Duration) Field {
	return Field{Key: "latency_ms", Value: float64(d.Microseconds()) / 1000.0}
}

// Component field helpers for common component names
func Component(name string) Field {
	return String("component", name)
}

func Operation(op string) Field {
	return String("operation", op)
}

func RequestID(id string) Field {
	return String("request_id", id)
}

// Domain field helpers

// DirectionField tags an entry with the approach it concerns.
func DirectionField(direction string) Field {
	return String("direction", direction)
}

func CycleSeconds(cycle int) Field {
	return Int("cycle_seconds", cycle)
}

func FlowRatioSum(y float64) Field {
	return Float64("flow_ratio_sum", y)
}

func Flags(flags []string) Field {
	return Field{Key: "flags", Value: flags}
}

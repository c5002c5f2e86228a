package validation

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is a singleton validator instance
var validate *validator.Validate

// MaxClassesPerLane bounds the number of distinct vehicle classes a
// single lane report may carry.
var MaxClassesPerLane = 50

func init() {
	validate = validator.New()
}

// LaneRequest is one approach's classified counts as submitted by the
// detection collaborator.
type LaneRequest struct {
	Direction string         `json:"direction" validate:"required,oneof=North South East West"`
	Counts    map[string]int `json:"counts" validate:"omitempty,max=50"`
}

// OptimizeRequest is a full optimization request: exactly one lane
// report per approach.
type OptimizeRequest struct {
	Lanes []LaneRequest `json:"lanes" validate:"required,len=4,dive"`
}

// ValidateOptimizeRequest validates an optimization request before it
// reaches the timing core. Malformed lane sets are rejected with the
// offending lane identified.
func ValidateOptimizeRequest(req *OptimizeRequest) error {
	if req == nil {
		return errors.New("optimize request cannot be nil")
	}

	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}

	seen := make(map[string]bool, 4)
	for _, lane := range req.Lanes {
		if seen[lane.Direction] {
			return fmt.Errorf("Lanes: duplicate direction %q", lane.Direction)
		}
		seen[lane.Direction] = true

		if len(lane.Counts) > MaxClassesPerLane {
			return fmt.Errorf("Lanes: %s lane reports %d classes, maximum is %d",
				lane.Direction, len(lane.Counts), MaxClassesPerLane)
		}
		for class, count := range lane.Counts {
			if class == "" {
				return fmt.Errorf("Lanes: %s lane has an empty vehicle class name", lane.Direction)
			}
			if count < 0 {
				return fmt.Errorf("Lanes: %s lane has negative count %d for class %q",
					lane.Direction, count, class)
			}
		}
	}

	return nil
}

// formatValidationError converts validator errors to a more user-friendly format
func formatValidationError(err error) error {
	if err == nil {
		return nil
	}

	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	// Return the first validation error in a user-friendly format
	for _, e := range validationErrs {
		field := e.Field()
		tag := e.Tag()
		param := e.Param()

		switch tag {
		case "required":
			return fmt.Errorf("%s: field is required", field)
		case "len":
			return fmt.Errorf("%s: must contain exactly %s elements", field, param)
		case "oneof":
			return fmt.Errorf("%s: must be one of %s", field, param)
		case "max":
			return fmt.Errorf("%s: must not exceed %s", field, param)
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, tag)
		}
	}

	return err
}

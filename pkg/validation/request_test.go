package validation

import (
	"strings"
	"testing"
)

func validRequest() *OptimizeRequest {
	return &OptimizeRequest{
		Lanes: []LaneRequest{
			{Direction: "North", Counts: map[string]int{"car": 20}},
			{Direction: "South", Counts: map[string]int{"car": 15}},
			{Direction: "East", Counts: map[string]int{"car": 10}},
			{Direction: "West", Counts: map[string]int{"car": 5}},
		},
	}
}

func TestValidateOptimizeRequest_Valid(t *testing.T) {
	if err := ValidateOptimizeRequest(validRequest()); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}
}

func TestValidateOptimizeRequest_Nil(t *testing.T) {
	if err := ValidateOptimizeRequest(nil); err == nil {
		t.Fatal("expected error for nil request")
	}
}

func TestValidateOptimizeRequest_WrongLaneCount(t *testing.T) {
	req := validRequest()
	req.Lanes = req.Lanes[:3]

	err := ValidateOptimizeRequest(req)
	if err == nil {
		t.Fatal("expected error for three lanes")
	}
	if !strings.Contains(err.Error(), "exactly 4") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestValidateOptimizeRequest_BadDirection(t *testing.T) {
	req := validRequest()
	req.Lanes[0].Direction = "Up"

	if err := ValidateOptimizeRequest(req); err == nil {
		t.Fatal("expected error for unknown direction")
	}
}

func TestValidateOptimizeRequest_DuplicateDirection(t *testing.T) {
	req := validRequest()
	req.Lanes[1].Direction = "North"

	err := ValidateOptimizeRequest(req)
	if err == nil {
		t.Fatal("expected error for duplicate direction")
	}
	if !strings.Contains(err.Error(), "duplicate") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestValidateOptimizeRequest_NegativeCount(t *testing.T) {
	req := validRequest()
	req.Lanes[2].Counts["bus"] = -2

	err := ValidateOptimizeRequest(req)
	if err == nil {
		t.Fatal("expected error for negative count")
	}
	if !strings.Contains(err.Error(), "East") {
		t.Errorf("error should identify the offending lane: %v", err)
	}
}

func TestValidateOptimizeRequest_EmptyClassName(t *testing.T) {
	req := validRequest()
	req.Lanes[0].Counts[""] = 1

	if err := ValidateOptimizeRequest(req); err == nil {
		t.Fatal("expected error for empty class name")
	}
}

func TestValidateOptimizeRequest_EmptyCountsAllowed(t *testing.T) {
	req := validRequest()
	req.Lanes[3].Counts = nil

	if err := ValidateOptimizeRequest(req); err != nil {
		t.Fatalf("a zero-vehicle lane must be accepted, got %v", err)
	}
}

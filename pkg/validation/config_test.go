package validation

import (
	"errors"
	"strings"
	"testing"
)

func TestConfigValidator_Passing(t *testing.T) {
	cv := NewConfigValidator("Test")
	cv.Required("Name", "value").
		Positive("Count", 3).
		NonNegative("Offset", 0).
		PositiveFloat("Rate", 1.5).
		RangeInt("Port", 8080, 1, 65535).
		MinLength("Secret", "0123456789abcdef0123456789abcdef", 32).
		OneOf("Policy", "reject", []string{"reject", "ignore"})

	if cv.HasErrors() {
		t.Errorf("unexpected errors: %v", cv.Errors())
	}
	if err := cv.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestConfigValidator_CollectsAllErrors(t *testing.T) {
	cv := NewConfigValidator("Test")
	cv.Required("Name", "").
		Positive("Count", 0).
		OneOf("Policy", "maybe", []string{"reject", "ignore"})

	if got := len(cv.Errors()); got != 3 {
		t.Errorf("collected %d errors, want 3", got)
	}
	if err := cv.Validate(); err == nil {
		t.Error("Validate() should fail")
	} else if !strings.Contains(err.Error(), "3 errors") {
		t.Errorf("combined error should report the count: %v", err)
	}
}

func TestConfigValidator_SingleErrorPassthrough(t *testing.T) {
	cv := NewConfigValidator("Test")
	cv.RangeInt("Port", 99999, 1, 65535)

	err := cv.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "Test.Port") {
		t.Errorf("error should name the field: %v", err)
	}
}

func TestConfigValidator_Custom(t *testing.T) {
	sentinel := errors.New("bounds inverted")

	cv := NewConfigValidator("Test")
	cv.Custom("Bounds", func() error { return sentinel })

	if err := cv.Validate(); !errors.Is(err, sentinel) {
		t.Errorf("custom error not wrapped: %v", err)
	}
}

func TestConfigValidator_When(t *testing.T) {
	cv := NewConfigValidator("Test")
	cv.When(false, func(v *ConfigValidator) {
		v.Required("Skipped", "")
	}).When(true, func(v *ConfigValidator) {
		v.Required("Checked", "")
	})

	if got := len(cv.Errors()); got != 1 {
		t.Errorf("collected %d errors, want 1", got)
	}
}

type validatableConfig struct{ ok bool }

func (c *validatableConfig) Validate() error {
	if !c.ok {
		return errors.New("invalid")
	}
	return nil
}

func TestValidateConfig(t *testing.T) {
	if err := ValidateConfig(&validatableConfig{ok: true}); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
	if err := ValidateConfig(&validatableConfig{ok: false}); err == nil {
		t.Error("invalid config accepted")
	}
	if err := ValidateConfig(nil); err == nil {
		t.Error("nil config accepted")
	}
}

package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil error", nil, ""},
		{"domain error", &Error{Code: ENOTFOUND, Message: "gone"}, ENOTFOUND},
		{"wrapped domain error", fmt.Errorf("context: %w", &Error{Code: ECONFLICT}), ECONFLICT},
		{"plain error defaults to internal", errors.New("boom"), EINTERNAL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorCode(tt.err); got != tt.want {
				t.Errorf("ErrorCode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorMessage_HidesInternalDetails(t *testing.T) {
	err := Internal(errors.New("pq: connection refused"), "order.create", "database write failed")

	msg := ErrorMessage(err)
	if msg != "An internal error occurred. Please try again later." {
		t.Errorf("expected generic message, got %q", msg)
	}

	// The underlying cause stays reachable for logging.
	if !IsCode(err, EINTERNAL) {
		t.Errorf("expected EINTERNAL, got %s", ErrorCode(err))
	}
}

func TestWrapError_PreservesChain(t *testing.T) {
	cause := errors.New("connection reset")
	err := WrapError(cause, EPAYMENT, "checkout.create_session", "gateway call failed")

	if !errors.Is(err, cause) {
		t.Error("expected wrapped cause to be reachable via errors.Is")
	}
	if !IsCode(err, EPAYMENT) {
		t.Errorf("expected EPAYMENT, got %s", ErrorCode(err))
	}
	if WrapError(nil, EINTERNAL, "op", "msg") != nil {
		t.Error("expected nil for nil cause")
	}
}

func TestValidationError(t *testing.T) {
	var err error
	err = AddFieldError(err, "Email", "must be a valid email address")
	err = AddFieldError(err, "City", "is required")

	if !IsValidationError(err) {
		t.Fatal("expected a ValidationError")
	}

	fields := GetValidationFields(err)
	if len(fields) != 2 {
		t.Fatalf("expected 2 field errors, got %d", len(fields))
	}
	if fields["Email"] != "must be a valid email address" {
		t.Errorf("unexpected Email message: %q", fields["Email"])
	}

	if GetValidationFields(errors.New("plain")) != nil {
		t.Error("expected nil fields for non-validation error")
	}
}

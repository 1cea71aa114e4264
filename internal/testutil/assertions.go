package testutil

import (
	"errors"
	"testing"

	apperrors "finloan/internal/errors"

	"github.com/shopspring/decimal"
)

// AssertAppError checks that err is an *AppError with the expected error code.
func AssertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected AppError with code %q, got nil", expectedCode)
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}

	if appErr.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (message: %s)", expectedCode, appErr.Code, appErr.Message)
	}
}

// AssertAppErrorField checks the code and the offending field of an *AppError.
func AssertAppErrorField(t *testing.T, err error, expectedCode, expectedField string) {
	t.Helper()

	AssertAppError(t, err, expectedCode)
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Field != expectedField {
		t.Errorf("expected error field %q, got %q", expectedField, appErr.Field)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertAmount compares a decimal against a literal by value, so "850.5"
// and "850.50" are equal.
func AssertAmount(t *testing.T, got decimal.Decimal, want string) {
	t.Helper()

	w, err := decimal.NewFromString(want)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", want, err)
	}
	if !got.Equal(w) {
		t.Errorf("expected amount %s, got %s", w.StringFixed(2), got.StringFixed(2))
	}
}

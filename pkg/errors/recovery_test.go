package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// TestRecover_WithPanic tests the Recover function when a panic occurs
func TestRecover_WithPanic(t *testing.T) {
	testFunc := func() (err error) {
		defer Recover(&err, "GaussianMixture.Fit")
		panic("mat: dimension mismatch")
	}

	err := testFunc()
	if err == nil {
		t.Fatal("Expected error from recovered panic, got nil")
	}

	var panicErr *PanicError
	if !errors.As(err, &panicErr) {
		t.Fatalf("Expected PanicError, got %T", err)
	}

	if panicErr.Operation != "GaussianMixture.Fit" {
		t.Errorf("Expected operation 'GaussianMixture.Fit', got '%s'", panicErr.Operation)
	}
	if panicErr.StackTrace == "" {
		t.Error("Expected non-empty stack trace")
	}
	if panicErr.Error() != "panic in GaussianMixture.Fit: mat: dimension mismatch" {
		t.Errorf("Unexpected message %q", panicErr.Error())
	}
	if !strings.Contains(panicErr.String(), "Stack trace:") {
		t.Error("String() should include stack trace information")
	}
}

func TestRecover_WithoutPanic(t *testing.T) {
	testFunc := func() (err error) {
		defer Recover(&err, "op")
		return nil
	}
	if err := testFunc(); err != nil {
		t.Fatalf("Expected no error when no panic occurs, got: %v", err)
	}
}

func TestRecover_WithExistingError(t *testing.T) {
	original := fmt.Errorf("validation failed")
	testFunc := func() (err error) {
		defer Recover(&err, "op")
		err = original
		panic("after error")
	}

	err := testFunc()
	if !errors.Is(err, original) {
		t.Errorf("Expected wrapped original error, got %v", err)
	}
	if !strings.Contains(err.Error(), "after error") {
		t.Errorf("Expected panic value in message, got %v", err)
	}
}

func TestSafeExecute(t *testing.T) {
	if err := SafeExecute("ok", func() error { return nil }); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	want := fmt.Errorf("plain failure")
	if err := SafeExecute("fail", func() error { return want }); err != want {
		t.Errorf("expected %v, got %v", want, err)
	}

	err := SafeExecute("boom", func() error {
		var m map[string]int
		m["x"] = 1
		return nil
	})
	var panicErr *PanicError
	if !errors.As(err, &panicErr) {
		t.Fatalf("expected PanicError, got %T", err)
	}
}

package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestIsMatchesByCode(t *testing.T) {
	err := Validation("longitude out of range", "longitude=200")
	if !stderrors.Is(err, ErrValidation) {
		t.Fatalf("expected %v to match ErrValidation", err)
	}
	if stderrors.Is(err, ErrOwnership) {
		t.Fatalf("validation error must not match ErrOwnership")
	}

	wrapped := fmt.Errorf("adding hoarding: %w", ErrOwnership)
	if !stderrors.Is(wrapped, ErrOwnership) {
		t.Fatalf("wrapped ownership error lost its identity")
	}
}

func TestWrapKeepsExistingAPIError(t *testing.T) {
	inner := NotFound("hoarding")
	got := Wrap(fmt.Errorf("lookup: %w", inner), "STORE_ERROR", "boom", http.StatusInternalServerError)
	if got != inner {
		t.Fatalf("Wrap replaced an existing APIError: %v", got)
	}

	plain := Wrap(stderrors.New("socket closed"), "STORE_ERROR", "boom", http.StatusInternalServerError)
	if plain.Status != http.StatusInternalServerError || plain.Details != "socket closed" {
		t.Fatalf("unexpected wrap result: %+v", plain)
	}
}

func TestErrorMessageIncludesDetails(t *testing.T) {
	err := Validation("coordinates out of range", "longitude=200", "latitude=10")
	want := "VALIDATION_ERROR: coordinates out of range (longitude=200; latitude=10)"
	if err.Error() != want {
		t.Fatalf("got %q, want %q", err.Error(), want)
	}
}

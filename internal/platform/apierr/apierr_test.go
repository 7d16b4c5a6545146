package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusOf(t *testing.T) {
	wrapped := fmt.Errorf("load handover: %w", NotFound("handover_not_found", "Handover not found"))
	if got := StatusOf(wrapped); got != http.StatusNotFound {
		t.Fatalf("StatusOf(wrapped)=%d, want %d", got, http.StatusNotFound)
	}
	if got := StatusOf(errors.New("boom")); got != http.StatusInternalServerError {
		t.Fatalf("StatusOf(plain)=%d, want 500", got)
	}
}

func TestErrorMessage(t *testing.T) {
	if got := New(http.StatusTeapot, "teapot", nil).Error(); got != "teapot" {
		t.Fatalf("Error()=%q, want code", got)
	}
	if got := New(http.StatusTeapot, "", nil).Error(); got != "api error (418)" {
		t.Fatalf("Error()=%q", got)
	}
	base := errors.New("db down")
	ae := Upstream("persistence_failure", base)
	if !errors.Is(ae, base) {
		t.Fatalf("expected Upstream to wrap the cause")
	}
}

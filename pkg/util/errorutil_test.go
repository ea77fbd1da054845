package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestToDomainErrorPassthrough(t *testing.T) {
	original := NewConflict("ticket was modified concurrently, retry the update", nil)
	converted := ToDomainError(original)
	if converted.Code != "CONFLICT" || converted.HTTPStatus != http.StatusConflict {
		t.Fatalf("converted = %+v", converted)
	}

	wrapped := fmt.Errorf("update ticket: %w", original)
	if got := ToDomainError(wrapped); got.Code != "CONFLICT" {
		t.Fatalf("wrapped conversion = %+v, want CONFLICT", got)
	}
}

func TestToDomainErrorHidesInternals(t *testing.T) {
	converted := ToDomainError(errors.New("pq: connection refused"))
	if converted.HTTPStatus != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", converted.HTTPStatus)
	}
	if converted.Code != "INTERNAL_ERROR" {
		t.Errorf("code = %q, want INTERNAL_ERROR", converted.Code)
	}
	if converted.Message != "internal server error" {
		t.Errorf("message leaks detail: %q", converted.Message)
	}
}

func TestToDomainErrorNil(t *testing.T) {
	if got := ToDomainError(nil); got != nil {
		t.Fatalf("got %+v, want nil", got)
	}
}

func TestNewInvalidField(t *testing.T) {
	err := NewInvalidField("priority", []string{"low", "medium", "high"})
	domainErr := ToDomainError(err)

	if domainErr.Code != "INVALID_FIELD" || domainErr.HTTPStatus != http.StatusBadRequest {
		t.Fatalf("domainErr = %+v", domainErr)
	}
	if domainErr.Details["field"] != "priority" {
		t.Errorf("details.field = %v", domainErr.Details["field"])
	}
	allowed, ok := domainErr.Details["allowed"].([]string)
	if !ok || len(allowed) != 3 {
		t.Errorf("details.allowed = %v", domainErr.Details["allowed"])
	}
	if domainErr.Message != "invalid priority. Use low, medium, high." {
		t.Errorf("message = %q", domainErr.Message)
	}
}

func TestDomainErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := NewInternalError(cause)
	if !errors.Is(err, cause) {
		t.Fatal("wrapped cause not reachable via errors.Is")
	}
}

package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHasCode(t *testing.T) {
	err := New(CodeNotFound, "gremio not found")
	if !HasCode(err, CodeNotFound) {
		t.Fatalf("expected CodeNotFound")
	}
	if HasCode(err, CodeConflict) {
		t.Fatalf("did not expect CodeConflict")
	}
	if HasCode(errors.New("plain"), CodeNotFound) {
		t.Fatalf("plain errors carry no code")
	}
}

func TestWrapPreservesChain(t *testing.T) {
	base := errors.New("driver: connection reset")
	err := Wrap(base, CodeInternal, "failed to load gremio")

	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to match errors.Is")
	}
	if CodeOf(err) != CodeInternal {
		t.Fatalf("expected CodeInternal, got %s", CodeOf(err))
	}

	// A second wrap should still expose the outermost code.
	outer := fmt.Errorf("request failed: %w", err)
	if CodeOf(outer) != CodeInternal {
		t.Fatalf("expected code to survive fmt wrapping")
	}
}

func TestErrorsIsMatchesByCodeAndDescription(t *testing.T) {
	err := New(CodeUnauthorized, "token has expired")
	if !errors.Is(err, New(CodeUnauthorized, "token has expired")) {
		t.Fatalf("expected errors.Is to match equal coded errors")
	}
	if errors.Is(err, New(CodeUnauthorized, "invalid token")) {
		t.Fatalf("different descriptions must not match")
	}
}

func TestCodeOfUncodedDefaultsToInternal(t *testing.T) {
	if CodeOf(errors.New("boom")) != CodeInternal {
		t.Fatalf("uncoded errors must map to internal")
	}
}

func TestToHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeBadRequest:   http.StatusBadRequest,
		CodeUnauthorized: http.StatusUnauthorized,
		CodeNotFound:     http.StatusNotFound,
		CodeConflict:     http.StatusConflict,
		CodeUnavailable:  http.StatusServiceUnavailable,
		CodeInternal:     http.StatusInternalServerError,
	}
	for code, want := range cases {
		if got := ToHTTPStatus(code); got != want {
			t.Errorf("ToHTTPStatus(%s) = %d, want %d", code, got, want)
		}
	}
}

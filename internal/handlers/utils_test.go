package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cyberquest/apiserver/internal/services"
	"github.com/cyberquest/apiserver/internal/store"
)

func TestWriteServiceErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &services.ValidationError{Message: "bad"}, http.StatusBadRequest},
		{"conflict", &services.ConflictError{Message: "taken"}, http.StatusConflict},
		{"blocked", &services.BlockedError{Reason: "spam"}, http.StatusForbidden},
		{"bad credentials", services.ErrInvalidCredentials, http.StatusUnauthorized},
		{"block admin", services.ErrCannotBlockAdmin, http.StatusForbidden},
		{"not found", store.ErrNotFound, http.StatusNotFound},
		{"store conflict", store.ErrConflict, http.StatusConflict},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			writeServiceError(w, tc.err)
			if w.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, w.Code)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("expected JSON response, got %q", ct)
			}
		})
	}
}

func TestParseLimit(t *testing.T) {
	cases := []struct {
		query string
		want  int
		ok    bool
	}{
		{"", 0, true},
		{"limit=5", 5, true},
		{"limit=100", 100, true},
		{"limit=500", 100, true},
		{"limit=0", 0, false},
		{"limit=-3", 0, false},
		{"limit=abc", 0, false},
	}
	for _, tc := range cases {
		r := httptest.NewRequest(http.MethodGet, "/?"+tc.query, nil)
		limit, err := parseLimit(r)
		if tc.ok != (err == nil) {
			t.Errorf("%q: unexpected error state %v", tc.query, err)
			continue
		}
		if tc.ok && limit != tc.want {
			t.Errorf("%q: expected %d, got %d", tc.query, tc.want, limit)
		}
	}
}

func TestParseIDParam(t *testing.T) {
	if id, err := parseIDParam("12", "user id"); err != nil || id != 12 {
		t.Errorf("valid id: got %d, %v", id, err)
	}
	for _, raw := range []string{"", "0", "-1", "abc"} {
		if _, err := parseIDParam(raw, "user id"); err == nil {
			t.Errorf("%q must be rejected", raw)
		}
	}
}

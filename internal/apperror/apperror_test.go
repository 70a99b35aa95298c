package apperror

import (
	"errors"
	"testing"
)

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("post", "abc123"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("email", "email is required"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Unauthorized wraps ErrUnauthorized",
			err:       Unauthorized("please log in"),
			target:    ErrUnauthorized,
			wantMatch: true,
		},
		{
			name:      "APIFailure wraps ErrAPI",
			err:       APIFailure(500, "server exploded"),
			target:    ErrAPI,
			wantMatch: true,
		},
		{
			name:      "Forbidden wraps ErrForbidden",
			err:       Forbidden("not your comment"),
			target:    ErrForbidden,
			wantMatch: true,
		},
		{
			name:      "NotFound does NOT match ErrValidation",
			err:       NotFound("post", "abc123"),
			target:    ErrValidation,
			wantMatch: false,
		},
		{
			name:      "APIFailure does NOT match ErrUnauthorized",
			err:       APIFailure(500, "boom"),
			target:    ErrUnauthorized,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{
			name:        "NotFound message includes resource and id",
			err:         NotFound("post", "abc123"),
			wantMessage: "post not found with id abc123",
		},
		{
			name:        "ValidationFailed uses custom message",
			err:         ValidationFailed("email", "email is required"),
			wantMessage: "email is required",
		},
		{
			name:        "APIFailure keeps the payload message",
			err:         APIFailure(406, "username already exists"),
			wantMessage: "username already exists",
		},
		{
			name:        "APIFailure falls back to a generic message",
			err:         APIFailure(502, ""),
			wantMessage: "request failed with status 502",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestAPIFailureStatus(t *testing.T) {
	err := APIFailure(404, "Invalid email or password")
	if err.Status != 404 {
		t.Errorf("Status = %d, want 404", err.Status)
	}
}

func TestUnwrap(t *testing.T) {
	err := Unauthorized("please log in")
	if err.Unwrap() != ErrUnauthorized {
		t.Errorf("Unwrap() = %v, want %v", err.Unwrap(), ErrUnauthorized)
	}
}

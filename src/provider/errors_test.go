package provider

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestWrapError_InvalidRepository(t *testing.T) {
	_, err := ParseRepository("not-a-repo")
	wrapped := WrapError(err)

	userErr, ok := wrapped.(*UserError)
	if !ok {
		t.Fatalf("WrapError() returned %T, want *UserError", wrapped)
	}

	if userErr.Message != "Invalid repository" {
		t.Errorf("Message = %q, want %q", userErr.Message, "Invalid repository")
	}

	if !strings.Contains(userErr.Hint, "owner/name") {
		t.Errorf("Hint should contain 'owner/name', got %q", userErr.Hint)
	}

	if !errors.Is(wrapped, ErrInvalidRepository) {
		t.Error("errors.Is(wrapped, ErrInvalidRepository) = false, want true")
	}
}

func TestWrapError_AuthFailed(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{
			name: "ErrAuthFailed sentinel",
			err:  ErrAuthFailed,
		},
		{
			name: "wrapped ErrAuthFailed",
			err:  fmt.Errorf("fetching builds: %w", ErrAuthFailed),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := WrapError(tt.err)

			userErr, ok := wrapped.(*UserError)
			if !ok {
				t.Fatalf("WrapError() returned %T, want *UserError", wrapped)
			}

			if userErr.Message != "Authentication failed" {
				t.Errorf("Message = %q, want %q", userErr.Message, "Authentication failed")
			}

			if !strings.Contains(userErr.Hint, "TRAVIS_TOKEN") {
				t.Errorf("Hint should contain 'TRAVIS_TOKEN', got %q", userErr.Hint)
			}

			if !strings.Contains(userErr.Hint, "APPVEYOR_TOKEN") {
				t.Errorf("Hint should contain 'APPVEYOR_TOKEN', got %q", userErr.Hint)
			}
		})
	}
}

func TestWrapError_NotFound(t *testing.T) {
	wrapped := WrapError(fmt.Errorf("history: %w", ErrNotFound))

	userErr, ok := wrapped.(*UserError)
	if !ok {
		t.Fatalf("WrapError() returned %T, want *UserError", wrapped)
	}

	if !strings.Contains(userErr.Hint, "--appveyor-account") {
		t.Errorf("Hint should mention --appveyor-account, got %q", userErr.Hint)
	}
}

func TestWrapError_OtherErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{
			name: "rate limited",
			err:  ErrRateLimited,
		},
		{
			name: "generic error",
			err:  errors.New("something went wrong"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := WrapError(tt.err)

			// Should return the original error unchanged
			if wrapped != tt.err {
				t.Errorf("WrapError() = %v, want original error %v", wrapped, tt.err)
			}

			if _, ok := wrapped.(*UserError); ok {
				t.Error("WrapError() returned *UserError, want original error unchanged")
			}
		})
	}
}


func TestWrapError_NilError(t *testing.T) {
	wrapped := WrapError(nil)

	if wrapped != nil {
		t.Errorf("WrapError(nil) = %v, want nil", wrapped)
	}
}

func TestUserError_Error(t *testing.T) {
	tests := []struct {
		name     string
		userErr  *UserError
		wantMsg  string
		wantHint string
		wantErr  string
	}{
		{
			name: "message only",
			userErr: &UserError{
				Message: "Something went wrong",
			},
			wantMsg: "Something went wrong",
		},
		{
			name: "message with hint",
			userErr: &UserError{
				Message: "Something went wrong",
				Hint:    "Try doing this instead",
			},
			wantMsg:  "Something went wrong",
			wantHint: "Hint: Try doing this instead",
		},
		{
			name: "message with underlying error",
			userErr: &UserError{
				Message: "Something went wrong",
				Err:     errors.New("original error"),
			},
			wantMsg: "Something went wrong",
			wantErr: "Details: original error",
		},
		{
			name: "message with hint and error",
			userErr: &UserError{
				Message: "Something went wrong",
				Hint:    "Try doing this instead",
				Err:     errors.New("original error"),
			},
			wantMsg:  "Something went wrong",
			wantHint: "Hint: Try doing this instead",
			wantErr:  "Details: original error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.userErr.Error()

			if !strings.Contains(got, tt.wantMsg) {
				t.Errorf("Error() should contain %q, got %q", tt.wantMsg, got)
			}

			if tt.wantHint != "" && !strings.Contains(got, tt.wantHint) {
				t.Errorf("Error() should contain %q, got %q", tt.wantHint, got)
			}

			if tt.wantErr != "" && !strings.Contains(got, tt.wantErr) {
				t.Errorf("Error() should contain %q, got %q", tt.wantErr, got)
			}

			// Check order: Message first
			msgIdx := strings.Index(got, tt.wantMsg)
			if msgIdx != 0 {
				t.Errorf("Message should be at start, found at index %d", msgIdx)
			}

			// If hint exists, it should come after message
			if tt.wantHint != "" {
				hintIdx := strings.Index(got, tt.wantHint)
				if hintIdx <= msgIdx {
					t.Errorf("Hint should come after Message, got hint at %d, msg at %d", hintIdx, msgIdx)
				}
			}

			// If error exists, it should come after hint (if present) or message
			if tt.wantErr != "" {
				errIdx := strings.Index(got, tt.wantErr)
				if tt.wantHint != "" {
					hintIdx := strings.Index(got, tt.wantHint)
					if errIdx <= hintIdx {
						t.Errorf("Details should come after Hint, got details at %d, hint at %d", errIdx, hintIdx)
					}
				} else if errIdx <= msgIdx {
					t.Errorf("Details should come after Message, got details at %d, msg at %d", errIdx, msgIdx)
				}
			}
		})
	}
}

func TestUserError_Unwrap(t *testing.T) {
	tests := []struct {
		name    string
		userErr *UserError
		want    error
	}{
		{
			name: "with underlying error",
			userErr: &UserError{
				Message: "Something went wrong",
				Err:     ErrAuthFailed,
			},
			want: ErrAuthFailed,
		},
		{
			name: "without underlying error",
			userErr: &UserError{
				Message: "Something went wrong",
			},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.userErr.Unwrap()

			if got != tt.want {
				t.Errorf("Unwrap() = %v, want %v", got, tt.want)
			}

			// Test that errors.Is works correctly
			if tt.want != nil {
				if !errors.Is(tt.userErr, tt.want) {
					t.Errorf("errors.Is(userErr, %v) = false, want true", tt.want)
				}
			}
		})
	}
}

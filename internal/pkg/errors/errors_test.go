package errors

import (
	"errors"
	"net/http"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "without wrapped error",
			err:  New(CodeValidation, "invalid input"),
			want: "VALIDATION_ERROR: invalid input",
		},
		{
			name: "with wrapped error",
			err:  Wrap(CodeScoringError, "faithfulness scoring failed", errors.New("upstream timeout")),
			want: "SCORING_ERROR: faithfulness scoring failed: upstream timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	underlying := errors.New("underlying error")
	err := Wrap(CodeInternal, "wrapped", underlying)

	if unwrapped := err.Unwrap(); unwrapped != underlying {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, underlying)
	}
}

func TestAppError_HTTPStatus(t *testing.T) {
	tests := []struct {
		code   string
		status int
	}{
		{CodeValidation, http.StatusBadRequest},
		{CodeInvalidRequest, http.StatusBadRequest},
		{CodeNotFound, http.StatusNotFound},
		{CodeBackendUnavailable, http.StatusServiceUnavailable},
		{CodeTimeout, http.StatusGatewayTimeout},
		{CodeInternal, http.StatusInternalServerError},
		{CodeScoringError, http.StatusInternalServerError},
		{CodeIndexingError, http.StatusInternalServerError},
		{CodeStorageError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, "test")
			if status := err.HTTPStatus(); status != tt.status {
				t.Errorf("HTTPStatus() = %d, want %d", status, tt.status)
			}
		})
	}
}

func TestConvenienceConstructors(t *testing.T) {
	if err := BackendUnavailableError("elasticsearch"); err.Code != CodeBackendUnavailable {
		t.Errorf("BackendUnavailableError code = %s", err.Code)
	}

	if err := ValidationError("negative tokens"); !IsValidation(err) {
		t.Error("IsValidation() = false for validation error")
	}

	if err := ScoringError("measure failed", errors.New("boom")); !IsScoring(err) {
		t.Error("IsScoring() = false for scoring error")
	}

	if IsBackendUnavailable(errors.New("plain")) {
		t.Error("IsBackendUnavailable() = true for plain error")
	}
}

func TestAppError_WithDetail(t *testing.T) {
	err := New(CodeValidation, "invalid").WithDetail("field", "tokens")

	if err.Details["field"] != "tokens" {
		t.Errorf("Details[field] = %s, want tokens", err.Details["field"])
	}
}

package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNotFoundError(t *testing.T) {
	tests := []struct {
		name     string
		err      *NotFoundError
		wantMsg  string
		wantBase error
	}{
		{
			name:     "with ID",
			err:      &NotFoundError{Resource: "format", ID: "hex"},
			wantMsg:  "format not found: hex",
			wantBase: ErrNotFound,
		},
		{
			name:     "without ID",
			err:      &NotFoundError{Resource: "rate"},
			wantMsg:  "rate not found",
			wantBase: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
			if got := tt.err.Unwrap(); !errors.Is(got, tt.wantBase) {
				t.Errorf("Unwrap() = %v, want %v", got, tt.wantBase)
			}
		})
	}

	t.Run("with underlying error", func(t *testing.T) {
		underlyingErr := fmt.Errorf("disk error")
		err := &NotFoundError{Resource: "config", ID: "datalens.json", Err: underlyingErr}
		if got := err.Error(); got != "config not found: datalens.json" {
			t.Errorf("Error() = %q", got)
		}
		if got := err.Unwrap(); got != underlyingErr {
			t.Errorf("Unwrap() = %v, want %v", got, underlyingErr)
		}
	})
}

func TestValidationError(t *testing.T) {
	tests := []struct {
		name     string
		err      *ValidationError
		wantMsg  string
		wantBase error
	}{
		{
			name:     "with field",
			err:      &ValidationError{Field: "reinterpret_threshold", Message: "must be in [0,1]"},
			wantMsg:  "validation failed for reinterpret_threshold: must be in [0,1]",
			wantBase: ErrInvalidInput,
		},
		{
			name:     "without field",
			err:      &ValidationError{Message: "invalid format"},
			wantMsg:  "validation failed: invalid format",
			wantBase: ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
			if got := tt.err.Unwrap(); !errors.Is(got, tt.wantBase) {
				t.Errorf("Unwrap() = %v, want %v", got, tt.wantBase)
			}
		})
	}
}

func TestIOError(t *testing.T) {
	underlying := fmt.Errorf("connection refused")
	err := NewIO("fetch", "https://api.frankfurter.dev/v1/latest", underlying)
	if got := err.Error(); got != "failed to fetch https://api.frankfurter.dev/v1/latest: connection refused" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, underlying) {
		t.Error("IOError should unwrap to underlying error")
	}
}

func TestParseError(t *testing.T) {
	err := NewParse("JSON", "datalens.json", "unexpected end of input")
	if got := err.Error(); got != "failed to parse JSON at datalens.json: unexpected end of input" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, ErrInvalidInput) {
		t.Error("ParseError should unwrap to ErrInvalidInput")
	}
}

func TestUnsupportedError(t *testing.T) {
	err := NewUnsupported("zip archives", "multi-entry archives are not expanded")
	if got := err.Error(); got != "unsupported zip archives: multi-entry archives are not expanded" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, ErrUnsupported) {
		t.Error("UnsupportedError should unwrap to ErrUnsupported")
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, "context") != nil {
		t.Error("Wrap(nil) should be nil")
	}
	base := errors.New("boom")
	wrapped := Wrap(base, "loading rates")
	if wrapped.Error() != "loading rates: boom" {
		t.Errorf("Wrap() = %q", wrapped.Error())
	}
	if !errors.Is(wrapped, base) {
		t.Error("Wrap() should preserve the error chain")
	}

	wrappedf := Wrapf(base, "provider %s", "currency")
	if wrappedf.Error() != "provider currency: boom" {
		t.Errorf("Wrapf() = %q", wrappedf.Error())
	}
}

package testsupport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"testing"

	"github.com/goliatone/go-tripform/pkg/trip"
)

// LoadRawFields reads a JSON object of form values. Keys may use canonical
// or front end names. Testing helpers fail the test on error to keep the
// callers concise.
func LoadRawFields(t *testing.T, path string) trip.RawFields {
	t.Helper()

	fields, err := LoadRawFieldsFromPath(path)
	if err != nil {
		t.Fatalf("load raw fields: %v", err)
	}
	return fields
}

// LoadRawFieldsFromPath returns the fixture without requiring testing.T so
// callers can build fixtures in setup functions.
func LoadRawFieldsFromPath(path string) (trip.RawFields, error) {
	if path == "" {
		return nil, errors.New("testsupport: fixture path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("testsupport: read fixture: %w", err)
	}
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("testsupport: unmarshal fixture: %w", err)
	}
	return trip.FromConsultorFields(raw), nil
}

// MustLoadPlanResult loads a JSON planning response.
func MustLoadPlanResult(t *testing.T, path string) trip.PlanResult {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("load plan result: %v", err)
	}
	var out trip.PlanResult
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal plan result: %v", err)
	}
	return out
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureOutput runs a function that renders to an io.Writer, returning both
// the string result and the writer contents so tests can assert the two
// paths agree without duplicating buffer setup.
func CaptureOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	return out, buf.String()
}

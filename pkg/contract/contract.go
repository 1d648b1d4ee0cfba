package contract

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var embeddedDocument []byte

// Operation paths exposed by the planning service.
const (
	PathHealth        = "/health"
	PathPlan          = "/plan"
	PathLegacyPlan    = "/trip/plan"
	PathSearch        = "/airports/search"
	PathAirportByIATA = "/airports/by_iata"
)

const jsonMediaType = "application/json"

// Document is a parsed and validated OpenAPI description. It is safe for
// concurrent use.
type Document struct {
	api *openapi3.T
}

var (
	defaultOnce sync.Once
	defaultDoc  *Document
	defaultErr  error
)

// Default returns the embedded planning service document, parsed once.
func Default() (*Document, error) {
	defaultOnce.Do(func() {
		defaultDoc, defaultErr = Load(context.Background(), embeddedDocument)
	})
	return defaultDoc, defaultErr
}

// Raw returns a copy of the embedded document bytes.
func Raw() []byte {
	return append([]byte(nil), embeddedDocument...)
}

// Load parses data (YAML or JSON) and validates the resulting document.
func Load(ctx context.Context, data []byte) (*Document, error) {
	if len(data) == 0 {
		return nil, errors.New("contract: document payload is empty")
	}
	loader := &openapi3.Loader{Context: ctx}
	api, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("contract: load document: %w", err)
	}
	if err := api.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("contract: validate document: %w", err)
	}
	if api.Paths == nil || api.Paths.Len() == 0 {
		return nil, errors.New("contract: document does not contain any paths")
	}
	return &Document{api: api}, nil
}

// Version returns the info.version of the document.
func (d *Document) Version() string {
	if d == nil || d.api == nil || d.api.Info == nil {
		return ""
	}
	return d.api.Info.Version
}

// HasOperation reports whether method and path are described.
func (d *Document) HasOperation(method, path string) bool {
	_, err := d.operation(method, path)
	return err == nil
}

// ValidateRequest checks a JSON request body for method and path.
func (d *Document) ValidateRequest(method, path string, body []byte) error {
	op, err := d.operation(method, path)
	if err != nil {
		return err
	}
	if op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil
	}
	mt := op.RequestBody.Value.Content.Get(jsonMediaType)
	if mt == nil || mt.Schema == nil || mt.Schema.Value == nil {
		return nil
	}
	return visit(operationName(method, path, "request"), mt.Schema.Value, body)
}

// ValidateResponse checks a JSON response body returned with status for
// method and path. Statuses the document does not describe are accepted.
func (d *Document) ValidateResponse(method, path string, status int, body []byte) error {
	op, err := d.operation(method, path)
	if err != nil {
		return err
	}
	if op.Responses == nil {
		return nil
	}
	ref := op.Responses.Status(status)
	if ref == nil {
		ref = op.Responses.Default()
	}
	if ref == nil || ref.Value == nil {
		return nil
	}
	mt := ref.Value.Content.Get(jsonMediaType)
	if mt == nil || mt.Schema == nil || mt.Schema.Value == nil {
		return nil
	}
	return visit(operationName(method, path, fmt.Sprintf("response %d", status)), mt.Schema.Value, body)
}

func (d *Document) operation(method, path string) (*openapi3.Operation, error) {
	if d == nil || d.api == nil || d.api.Paths == nil {
		return nil, fmt.Errorf("%w: %s %s", ErrUnknownOperation, method, path)
	}
	item := d.api.Paths.Find(path)
	if item == nil {
		return nil, fmt.Errorf("%w: %s %s", ErrUnknownOperation, method, path)
	}
	op := item.GetOperation(strings.ToUpper(method))
	if op == nil {
		return nil, fmt.Errorf("%w: %s %s", ErrUnknownOperation, method, path)
	}
	return op, nil
}

func visit(name string, schema *openapi3.Schema, body []byte) error {
	var value any
	if err := json.Unmarshal(body, &value); err != nil {
		return &ViolationError{
			Operation: name,
			Issues:    []Issue{{Message: "body is not valid JSON: " + err.Error()}},
		}
	}
	err := schema.VisitJSON(value, openapi3.MultiErrors())
	if err == nil {
		return nil
	}
	return &ViolationError{Operation: name, Issues: issuesFromError(err)}
}

func issuesFromError(err error) []Issue {
	var multi openapi3.MultiError
	if errors.As(err, &multi) {
		issues := make([]Issue, 0, len(multi))
		for _, item := range multi {
			issues = append(issues, issuesFromError(item)...)
		}
		return issues
	}
	var schemaErr *openapi3.SchemaError
	if errors.As(err, &schemaErr) {
		return []Issue{{
			Path:    strings.Join(schemaErr.JSONPointer(), "."),
			Message: schemaErr.Reason,
		}}
	}
	return []Issue{{Message: err.Error()}}
}

func operationName(method, path, part string) string {
	if method == "" {
		method = http.MethodGet
	}
	return fmt.Sprintf("%s %s %s", strings.ToUpper(method), path, part)
}

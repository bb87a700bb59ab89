package validation

import "errors"

// ErrSchemaViolation wraps every document that fails its schema
var ErrSchemaViolation = errors.New("schema validation failed")

const (
	ErrContextParseJSON  = "failed to parse JSON"
	ErrContextParseYAML  = "failed to parse YAML"
	ErrContextLoadSchema = "failed to load schema"
)

package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	ErrSchemaInvalid    = errors.New("schema invalid")
	ErrSchemaValidation = errors.New("schema validation failed")
)

// SlugPattern is the shape every item slug must match.
const SlugPattern = "^[a-z0-9-]+$"

// ValidationIssue captures a single validation failure.
type ValidationIssue struct {
	Location string
	Message  string
}

// CollectionValidationError lists every schema violation found in a
// collection document.
type CollectionValidationError struct {
	Issues []ValidationIssue
	Cause  error
}

func (e *CollectionValidationError) Error() string {
	if len(e.Issues) == 0 {
		if e.Cause != nil {
			return e.Cause.Error()
		}
		return ErrSchemaValidation.Error()
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		location := strings.TrimSpace(issue.Location)
		if location == "" {
			location = "#"
		} else if !strings.HasPrefix(location, "#") {
			location = "#" + location
		}
		if issue.Message == "" {
			parts = append(parts, location)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", location, issue.Message))
	}
	return strings.Join(parts, "; ")
}

func (e *CollectionValidationError) Unwrap() error {
	return ErrSchemaValidation
}

// Issues extracts validation issues from an error.
func Issues(err error) []ValidationIssue {
	if err == nil {
		return nil
	}
	var collectionErr *CollectionValidationError
	if errors.As(err, &collectionErr) && collectionErr != nil {
		return collectionErr.Issues
	}
	var validationErr *jsonschema.ValidationError
	if errors.As(err, &validationErr) && validationErr != nil {
		return collectValidationIssues(validationErr)
	}
	return []ValidationIssue{{Message: err.Error()}}
}

// ItemSchema describes one serialized content item.
func ItemSchema(tagLimit int) map[string]any {
	str := map[string]any{"type": "string"}
	strList := map[string]any{"type": "array", "items": str}

	return map[string]any{
		"type": "object",
		"required": []any{
			"id", "slug", "title", "date", "excerpt", "tags", "featured", "content", "rawContent",
			"author", "collaborators",
		},
		"properties": map[string]any{
			"id":    map[string]any{"type": "string", "pattern": "^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$"},
			"slug":  map[string]any{"type": "string", "minLength": 1, "pattern": SlugPattern},
			"title": str,
			"date":  map[string]any{"type": "string", "pattern": `^(\d{4}-\d{2}-\d{2})?$`},
			"tags": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string", "minLength": 1},
				"maxItems":    tagLimit,
				"uniqueItems": true,
			},
			"excerpt":       str,
			"featured":      map[string]any{"type": "boolean"},
			"content":       str,
			"rawContent":    str,
			"author":        str,
			"authors":       strList,
			"collaborators": strList,
			"order":         map[string]any{"type": "integer"},
			"readingTime":   map[string]any{"type": "integer", "minimum": 1},
			"source":        str,
			"venue":         str,
			"location":      str,
			"url":           str,
			"doi":           str,
			"event":         str,
			"status":        str,
			"image":         str,
		},
	}
}

// CollectionSchema describes a collection file: a JSON array of items.
func CollectionSchema(tagLimit int) map[string]any {
	return map[string]any{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"type":    "array",
		"items":   ItemSchema(tagLimit),
	}
}

// Validator checks collection documents against a compiled schema. It is
// immutable after construction and safe for concurrent use.
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator compiles the collection schema for the given tag limit.
func NewValidator(tagLimit int) (*Validator, error) {
	if tagLimit <= 0 {
		return nil, fmt.Errorf("%w: tag limit must be positive, got %d", ErrSchemaInvalid, tagLimit)
	}
	compiled, err := compileSchema(CollectionSchema(tagLimit))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	return &Validator{schema: compiled}, nil
}

// ValidateJSON decodes data and validates the result.
func (v *Validator) ValidateJSON(data []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var doc any
	if err := decoder.Decode(&doc); err != nil {
		return &CollectionValidationError{
			Issues: []ValidationIssue{{Message: "invalid json: " + err.Error()}},
			Cause:  err,
		}
	}
	return v.Validate(doc)
}

// Validate checks an already decoded document.
func (v *Validator) Validate(doc any) error {
	if err := v.schema.Validate(doc); err != nil {
		return &CollectionValidationError{
			Issues: Issues(err),
			Cause:  err,
		}
	}
	return nil
}

func compileSchema(schema map[string]any) (*jsonschema.Schema, error) {
	encoded, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("schema.json", bytes.NewReader(encoded)); err != nil {
		return nil, err
	}
	return compiler.Compile("schema.json")
}

func collectValidationIssues(err *jsonschema.ValidationError) []ValidationIssue {
	if err == nil {
		return nil
	}
	issues := []ValidationIssue{}
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			issues = append(issues, ValidationIssue{
				Location: strings.TrimSpace(node.InstanceLocation),
				Message:  strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(err)
	return issues
}

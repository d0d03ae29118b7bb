package validation

import (
	"errors"
	"strings"
	"testing"
)

const validItem = `{
  "id": "0b6a6c1e-5f0e-4b55-9d0c-1d2f3a4b5c6d",
  "slug": "hello-world-2024-03",
  "title": "Hello World",
  "date": "2024-03-01",
  "excerpt": "Hi",
  "tags": ["Blog", "AI"],
  "featured": false,
  "content": "<h1 id=\"hi\">Hi</h1>",
  "rawContent": "# Hi",
  "author": "Ana",
  "collaborators": [],
  "readingTime": 1
}`

func TestValidatorAcceptsValidCollection(t *testing.T) {
	v, err := NewValidator(5)
	if err != nil {
		t.Fatalf("NewValidator: %v", err)
	}
	if err := v.ValidateJSON([]byte("[" + validItem + "]")); err != nil {
		t.Fatalf("expected valid collection, got %v", err)
	}
	if err := v.ValidateJSON([]byte("[]")); err != nil {
		t.Fatalf("expected empty collection to be valid, got %v", err)
	}
}

func TestValidatorRejectsBadSlugAndTags(t *testing.T) {
	v, err := NewValidator(2)
	if err != nil {
		t.Fatalf("NewValidator: %v", err)
	}

	doc := strings.Replace(validItem, `"hello-world-2024-03"`, `"Hello World"`, 1)
	doc = strings.Replace(doc, `["Blog", "AI"]`, `["Blog", "AI", "Retail"]`, 1)

	err = v.ValidateJSON([]byte("[" + doc + "]"))
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !errors.Is(err, ErrSchemaValidation) {
		t.Fatalf("expected ErrSchemaValidation, got %v", err)
	}

	issues := Issues(err)
	var slugIssue, tagsIssue bool
	for _, issue := range issues {
		switch issue.Location {
		case "/0/slug":
			slugIssue = true
		case "/0/tags":
			tagsIssue = true
		}
	}
	if !slugIssue || !tagsIssue {
		t.Fatalf("expected slug and tags issues, got %#v", issues)
	}
}

func TestValidatorRejectsDuplicateTags(t *testing.T) {
	v, err := NewValidator(5)
	if err != nil {
		t.Fatalf("NewValidator: %v", err)
	}
	doc := strings.Replace(validItem, `["Blog", "AI"]`, `["AI", "AI"]`, 1)
	if err := v.ValidateJSON([]byte("[" + doc + "]")); err == nil {
		t.Fatal("expected duplicate tags to fail")
	}
}

func TestValidatorRejectsNonArrayAndInvalidJSON(t *testing.T) {
	v, err := NewValidator(5)
	if err != nil {
		t.Fatalf("NewValidator: %v", err)
	}
	if err := v.ValidateJSON([]byte(validItem)); err == nil {
		t.Fatal("expected object document to fail")
	}
	err = v.ValidateJSON([]byte("[{"))
	if err == nil || !strings.Contains(err.Error(), "invalid json") {
		t.Fatalf("expected invalid json error, got %v", err)
	}
}

func TestNewValidatorRejectsNonPositiveLimit(t *testing.T) {
	if _, err := NewValidator(0); !errors.Is(err, ErrSchemaInvalid) {
		t.Fatalf("expected ErrSchemaInvalid, got %v", err)
	}
}

func TestCollectionValidationErrorFormatsLocations(t *testing.T) {
	err := &CollectionValidationError{Issues: []ValidationIssue{
		{Location: "/0/slug", Message: "does not match pattern"},
		{Location: "", Message: "expected array"},
	}}
	want := "#/0/slug: does not match pattern; #: expected array"
	if err.Error() != want {
		t.Fatalf("expected %q, got %q", want, err.Error())
	}
}

func TestValidatorRequiresAuthorAndCollaborators(t *testing.T) {
	v, err := NewValidator(5)
	if err != nil {
		t.Fatalf("NewValidator: %v", err)
	}
	for _, field := range []string{`  "author": "Ana",` + "\n", `  "collaborators": [],` + "\n"} {
		doc := strings.Replace(validItem, field, "", 1)
		if doc == validItem {
			t.Fatalf("fixture does not contain %q", field)
		}
		if err := v.ValidateJSON([]byte("[" + doc + "]")); !errors.Is(err, ErrSchemaValidation) {
			t.Fatalf("expected missing %q to fail, got %v", field, err)
		}
	}
	doc := strings.Replace(validItem, `"collaborators": []`, `"collaborators": null`, 1)
	if err := v.ValidateJSON([]byte("[" + doc + "]")); err == nil {
		t.Fatal("expected null collaborators to fail")
	}
}

package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// DateLayout is the canonical serialized form of every content date.
const DateLayout = "2006-01-02"

// ErrInvalidDate is the sentinel wrapped by InvalidDateError.
var ErrInvalidDate = errors.New("normalize: invalid date")

// InvalidDateError reports a date field that is present but cannot be parsed.
type InvalidDateError struct {
	Field string
	Value string
	Err   error
}

func (e *InvalidDateError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("normalize: invalid date in %q: %q: %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("normalize: invalid date in %q: %q", e.Field, e.Value)
}

func (e *InvalidDateError) Unwrap() error {
	return ErrInvalidDate
}

var exactDateLayouts = []string{
	DateLayout,
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// Date converts a raw date value into YYYY-MM-DD. Missing or blank values
// yield "", unparsable values yield an *InvalidDateError. The calendar date is
// kept as written; no timezone conversion is applied.
func Date(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case time.Time:
		if v.IsZero() {
			return "", nil
		}
		return v.Format(DateLayout), nil
	case *time.Time:
		if v == nil || v.IsZero() {
			return "", nil
		}
		return v.Format(DateLayout), nil
	}

	raw := String(value)
	if raw == "" {
		return "", nil
	}
	for _, layout := range exactDateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.Format(DateLayout), nil
		}
	}
	parsed, err := dateparse.ParseIn(raw, time.UTC)
	if err != nil {
		return "", &InvalidDateError{Field: "date", Value: raw, Err: err}
	}
	return parsed.Format(DateLayout), nil
}

// Bool accepts a native bool or the case-insensitive string "true". Every
// other value is false.
func Bool(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(strings.TrimSpace(v), "true")
	default:
		return false
	}
}

// List coerces a list-like field into an ordered sequence of trimmed,
// non-empty strings. It never returns nil.
//
// Accepted shapes, tried in order:
//   - an already structured sequence ([]any or []string)
//   - a string wrapped in brackets: strict JSON array first, then the
//     brackets are stripped and the content split on commas
//   - a plain comma separated string
//
// A bracketed string that is not valid JSON and quotes an element containing
// a comma (['a, b', c]) is split inside the quotes. This is the historic
// behaviour of hand-edited frontmatter and is kept as is.
func List(value any) []string {
	switch v := value.(type) {
	case nil:
		return []string{}
	case []string:
		return compact(v)
	case []any:
		items := make([]string, 0, len(v))
		for _, item := range v {
			items = append(items, String(item))
		}
		return compact(items)
	case string:
		return listFromString(v)
	default:
		return compact([]string{String(v)})
	}
}

func listFromString(raw string) []string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return []string{}
	}
	if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
		var parsed []any
		if err := json.Unmarshal([]byte(trimmed), &parsed); err == nil {
			return List(parsed)
		}
		inner := strings.TrimSuffix(strings.TrimPrefix(trimmed, "["), "]")
		parts := strings.Split(inner, ",")
		for i, part := range parts {
			parts[i] = strings.Trim(strings.TrimSpace(part), `"'`)
		}
		return compact(parts)
	}
	return compact(strings.Split(trimmed, ","))
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// String renders a scalar field as trimmed text.
func String(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case time.Time:
		return v.Format(DateLayout)
	case []any, []string:
		return strings.Join(List(v), ", ")
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// Int reads an integer field. ok is false when the value is missing or not
// a whole number.
func Int(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case uint64:
		return int(v), true
	case float64:
		if v == math.Trunc(v) {
			return int(v), true
		}
		return 0, false
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

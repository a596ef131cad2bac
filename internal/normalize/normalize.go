// Package normalize converts loosely-typed post submission fields into
// canonical values. Form submissions and JSON bodies disagree about shapes:
// multi-valued fields arrive as real arrays, JSON-encoded strings, or bare
// strings, and booleans arrive as strings. These functions are pure and are
// tested independently of the HTTP layer.
package normalize

import (
	"bytes"
	"encoding/json/v2"
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/yuin/goldmark"
)

// ReferenceList normalizes a raw categories/tags value to a list of ID strings.
//
// Contract:
//   - a sequence is used as-is
//   - a string that parses as a JSON array is used parsed
//   - a string that parses as any other JSON value becomes a single-element list
//   - a string that fails JSON parsing is itself a single-element list
//   - absent (nil) is an empty list
//
// Elements are trimmed and empties dropped. Whether an element references an
// existing entity is not this function's concern; the pipeline resolves and
// silently drops unknown IDs afterwards.
func ReferenceList(raw any) []string {
	switch v := raw.(type) {
	case nil:
		return nil
	case []string:
		return cleanElements(v)
	case []any:
		elems := make([]string, 0, len(v))
		for _, e := range v {
			elems = append(elems, stringify(e))
		}
		return cleanElements(elems)
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil
		}
		var parsed any
		if err := json.Unmarshal([]byte(s), &parsed); err != nil {
			// Not JSON: a bare ID.
			return cleanElements([]string{s})
		}
		if arr, ok := parsed.([]any); ok {
			elems := make([]string, 0, len(arr))
			for _, e := range arr {
				elems = append(elems, stringify(e))
			}
			return cleanElements(elems)
		}
		return cleanElements([]string{stringify(parsed)})
	default:
		return cleanElements([]string{stringify(v)})
	}
}

// Bool normalizes a boolean-ish field. Native booleans pass through; the
// string "true" (case-insensitive, trimmed) is true; every other
// representation is false.
func Bool(raw any) bool {
	switch v := raw.(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(strings.TrimSpace(v), "true")
	default:
		return false
	}
}

// Body reconciles the dual content/markdown representation. Whichever field
// is supplied is the source of truth and the other is backfilled: markdown
// is rendered to HTML, HTML is converted to markdown. When both are supplied
// they are kept as given (reconciling them is the caller's job). When a
// conversion fails the source text is carried over verbatim so both fields
// stay non-empty.
func Body(content, markdown string) (string, string) {
	content = strings.TrimSpace(content)
	markdown = strings.TrimSpace(markdown)

	switch {
	case content == "" && markdown != "":
		var buf bytes.Buffer
		if err := goldmark.Convert([]byte(markdown), &buf); err != nil {
			return markdown, markdown
		}
		return strings.TrimSpace(buf.String()), markdown
	case markdown == "" && content != "":
		md, err := htmltomarkdown.ConvertString(content)
		if err != nil {
			return content, content
		}
		md = strings.TrimSpace(md)
		if md == "" {
			md = content
		}
		return content, md
	default:
		return content, markdown
	}
}

// cleanElements trims elements and drops empties, preserving order.
func cleanElements(elems []string) []string {
	out := make([]string, 0, len(elems))
	for _, e := range elems {
		e = strings.TrimSpace(e)
		if e != "" {
			out = append(out, e)
		}
	}
	return out
}

// stringify renders a parsed JSON element as an ID string.
func stringify(v any) string {
	switch e := v.(type) {
	case string:
		return e
	case nil:
		return ""
	default:
		return fmt.Sprint(e)
	}
}

package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	// ErrNoJSONObject is returned when the response contains no brace-delimited object.
	ErrNoJSONObject = errors.New("no JSON object found in model response")

	// ErrMalformedJSON is returned when the located object does not decode.
	ErrMalformedJSON = errors.New("malformed JSON object in model response")
)

var (
	fencedJSONPattern = regexp.MustCompile("(?s)```json\\s*(\\{.*?\\})\\s*```")
	bracedPattern     = regexp.MustCompile(`(?s)(\{.*\})`)
)

// ParseFailure describes a model response that could not be turned into a JSON object.
// Raw holds the full response for diagnostics.
type ParseFailure struct {
	Raw    string
	Reason string
	Err    error
}

func (f *ParseFailure) Error() string {
	return fmt.Sprintf("parse model response: %s", f.Reason)
}

func (f *ParseFailure) Unwrap() error {
	return f.Err
}

// Excerpt returns at most n bytes of the raw response, cut on a rune boundary.
func (f *ParseFailure) Excerpt(n int) string {
	if len(f.Raw) <= n {
		return f.Raw
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(f.Raw[cut]) {
		cut--
	}
	return f.Raw[:cut] + "..."
}

// ParseResponse extracts the JSON object embedded in a model response.
// A ```json fenced block wins; otherwise the span from the first '{' to the
// last '}' is used. Numbers are kept as json.Number so amounts retain the
// model's literal. Failures are returned as *ParseFailure.
func ParseResponse(text string) (map[string]interface{}, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &ParseFailure{Raw: text, Reason: "empty response", Err: ErrNoJSONObject}
	}

	candidate := extractJSONObject(text)
	if candidate == "" {
		return nil, &ParseFailure{Raw: text, Reason: "no JSON object found", Err: ErrNoJSONObject}
	}

	dec := json.NewDecoder(strings.NewReader(candidate))
	dec.UseNumber()

	var parsed map[string]interface{}
	if err := dec.Decode(&parsed); err != nil {
		return nil, &ParseFailure{
			Raw:    text,
			Reason: fmt.Sprintf("invalid JSON: %v", err),
			Err:    fmt.Errorf("%w: %v", ErrMalformedJSON, err),
		}
	}
	return parsed, nil
}

func extractJSONObject(text string) string {
	if m := fencedJSONPattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	if m := bracedPattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

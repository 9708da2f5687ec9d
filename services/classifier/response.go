package classifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/customeros/mailsorter/dto"
	"github.com/customeros/mailsorter/internal/enum"
	mserrors "github.com/customeros/mailsorter/internal/errors"
)

const coercedConfidence = 0.1

// rawVerdict keeps each field undecoded so one badly typed field cannot discard the others.
type rawVerdict struct {
	Category   json.RawMessage `json:"category"`
	Confidence json.RawMessage `json:"confidence"`
	Reasoning  json.RawMessage `json:"reasoning"`
}

// parseVerdict treats the generated text as untrusted input.
func parseVerdict(text string) (*dto.Verdict, error) {
	candidate, ok := extractJSONObject(text)
	if !ok {
		return nil, errors.Wrap(mserrors.ErrMalformedResponse, "no json object in classifier text")
	}

	var raw rawVerdict
	if err := json.Unmarshal([]byte(candidate), &raw); err != nil {
		return nil, errors.Wrapf(mserrors.ErrMalformedResponse, "invalid json object: %v", err)
	}

	rawCategory := fieldText(raw.Category)
	verdict := &dto.Verdict{
		Confidence: clampConfidence(fieldNumber(raw.Confidence)),
		Reasoning:  strings.TrimSpace(fieldText(raw.Reasoning)),
	}

	category, valid := enum.ParseEmailCategory(rawCategory)
	if valid {
		verdict.Category = category
	} else {
		verdict.Category = enum.CategoryOther
		verdict.Confidence = coercedConfidence
		verdict.Coerced = true
		verdict.Reasoning = strings.TrimSpace(fmt.Sprintf("%s (invalid category %q returned by classifier, coerced to %s)",
			verdict.Reasoning, rawCategory, enum.CategoryOther))
	}
	verdict.Priority = enum.PriorityForCategory(verdict.Category)

	return verdict, nil
}

// fieldText returns a JSON string's value, or the literal JSON text for any other type.
func fieldText(value json.RawMessage) string {
	trimmed := bytes.TrimSpace(value)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	var text string
	if err := json.Unmarshal(trimmed, &text); err == nil {
		return text
	}
	return string(trimmed)
}

// fieldNumber accepts a JSON number or a numeric string; anything else is NaN.
func fieldNumber(value json.RawMessage) float64 {
	var number float64
	if err := json.Unmarshal(value, &number); err == nil {
		return number
	}
	if parsed, err := strconv.ParseFloat(strings.TrimSpace(fieldText(value)), 64); err == nil {
		return parsed
	}
	return math.NaN()
}

func clampConfidence(confidence float64) float64 {
	if math.IsNaN(confidence) {
		return 0
	}
	return math.Max(0, math.Min(1, confidence))
}

// extractJSONObject returns the first balanced {...} substring, ignoring braces inside strings.
// When nothing balances it falls back to the span from the first '{' to the last '}'.
func extractJSONObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}

	end := strings.LastIndexByte(text, '}')
	if end <= start {
		return "", false
	}
	return text[start : end+1], true
}

package dto

import "github.com/customeros/mailsorter/internal/enum"

type Verdict struct {
	Category   enum.EmailCategory `json:"category"`
	Confidence float64            `json:"confidence"`
	Reasoning  string             `json:"reasoning"`
	Priority   enum.EmailPriority `json:"priority"`

	// Coerced marks a verdict whose category was outside the allowed set.
	Coerced bool `json:"-"`
	// Degraded marks a fallback verdict produced after a classifier failure.
	Degraded bool `json:"-"`
}

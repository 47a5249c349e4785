package model

import (
	"fmt"
	"strings"
)

// Scale describes the range a confidence value was produced on.
type Scale int

const (
	// ScaleUnit values are fractions in [0, 1] (vision, cohesion).
	ScaleUnit Scale = iota
	// ScaleKeyword values are keyword match counts on a 0-5 scale.
	ScaleKeyword
)

// KeywordScaleMax is the keyword score treated as full confidence.
const KeywordScaleMax = 5

// String returns the scale name.
func (s Scale) String() string {
	if s == ScaleKeyword {
		return "keyword"
	}
	return "unit"
}

// MarshalText encodes the scale by name.
func (s Scale) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a scale name.
func (s *Scale) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "keyword":
		*s = ScaleKeyword
	case "unit", "":
		*s = ScaleUnit
	default:
		return fmt.Errorf("unknown confidence scale %q", b)
	}
	return nil
}

// Confidence is a classifier score together with its scale.
type Confidence struct {
	Value float64 `json:"value"`
	Scale Scale   `json:"scale"`
}

// KeywordScore builds a confidence from a keyword match count.
func KeywordScore(matches int) Confidence {
	return Confidence{Value: float64(matches), Scale: ScaleKeyword}
}

// UnitScore builds a confidence from a fraction in [0, 1].
func UnitScore(v float64) Confidence {
	return Confidence{Value: v, Scale: ScaleUnit}
}

// Normalized maps the confidence onto [0, 1]. Keyword scores are divided by
// KeywordScaleMax and capped at 1.
func (c Confidence) Normalized() float64 {
	v := c.Value
	if c.Scale == ScaleKeyword {
		v /= KeywordScaleMax
	}
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

func (c Confidence) String() string {
	if c.Scale == ScaleKeyword {
		return fmt.Sprintf("%d/%d", int(c.Value), KeywordScaleMax)
	}
	return fmt.Sprintf("%.0f%%", c.Value*100)
}

package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Measure is a numeric value that may be undefined.
// An undefined Measure means "insufficient data" and must never be read as zero.
type Measure struct {
	Value   float64
	Defined bool
}

// Known returns a defined Measure.
func Known(v float64) Measure {
	return Measure{Value: v, Defined: true}
}

// Undefined returns the "insufficient data" Measure.
func Undefined() Measure {
	return Measure{}
}

// Get returns the value and whether it is defined.
func (m Measure) Get() (float64, bool) {
	return m.Value, m.Defined
}

// String formats the measure with two decimals, or "n/a".
func (m Measure) String() string {
	if !m.Defined {
		return "n/a"
	}
	return strconv.FormatFloat(m.Value, 'f', 2, 64)
}

// MarshalJSON encodes undefined measures as null.
func (m Measure) MarshalJSON() ([]byte, error) {
	if !m.Defined {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}

// UnmarshalJSON decodes null as undefined.
func (m *Measure) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*m = Measure{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*m = Known(v)
	return nil
}

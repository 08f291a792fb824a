package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/WessleyAI/installbom/pkg/qty"
)

// User-authored documents store numbers as JSON numbers, as strings typed
// into form fields ("12,5"), or as null. The types below accept all three.

// decodeNumber reads a JSON number, a numeric string or null. ok is false
// for null and for strings without digits.
func decodeNumber(b []byte) (v float64, ok bool, err error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return 0, false, nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return 0, false, err
		}
		v, ok := qty.Parse(s)
		return v, ok, nil
	}
	v, err = strconv.ParseFloat(string(b), 64)
	if err != nil {
		return 0, false, fmt.Errorf("invalid number %s", b)
	}
	return v, true, nil
}

// Count is a lenient integer. Fractions are rounded.
type Count int

func (c *Count) UnmarshalJSON(b []byte) error {
	v, _, err := decodeNumber(b)
	if err != nil {
		return err
	}
	*c = Count(math.Round(v))
	return nil
}

// Length is a lenient decimal measured in meters.
type Length float64

func (l *Length) UnmarshalJSON(b []byte) error {
	v, _, err := decodeNumber(b)
	if err != nil {
		return err
	}
	*l = Length(v)
	return nil
}

// Text is free text that also accepts a bare JSON number.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*t = ""
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("invalid text value %s", b)
	}
	*t = Text(strconv.FormatFloat(v, 'f', -1, 64))
	return nil
}

// Opt is an optional integer that distinguishes "absent" from zero.
type Opt[T ~int | ~int64] struct {
	Value T
	Valid bool
}

// Some returns a present Opt.
func Some[T ~int | ~int64](v T) Opt[T] { return Opt[T]{Value: v, Valid: true} }

// Or returns the value when present, otherwise def.
func (o Opt[T]) Or(def T) T {
	if o.Valid {
		return o.Value
	}
	return def
}

func (o Opt[T]) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return strconv.AppendInt(nil, int64(o.Value), 10), nil
}

func (o *Opt[T]) UnmarshalJSON(b []byte) error {
	v, ok, err := decodeNumber(b)
	if err != nil {
		return err
	}
	*o = Opt[T]{Value: T(math.Round(v)), Valid: ok}
	return nil
}

// ID is an optional catalog identifier.
type ID = Opt[int64]

// OptCount is an optional user-declared count.
type OptCount = Opt[int]

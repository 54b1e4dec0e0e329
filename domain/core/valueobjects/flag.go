package valueobjects

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Stored representations of a flag.
const (
	FlagTrue  = "1"
	FlagFalse = "0"
)

// EncodeFlag converts a boolean into its stored form.
func EncodeFlag(v bool) string {
	if v {
		return FlagTrue
	}
	return FlagFalse
}

// DecodeFlag converts a stored value back into a boolean. Only the literal "1"
// is true; anything else, including a missing value, is false.
func DecodeFlag(stored string, ok bool) bool {
	return ok && stored == FlagTrue
}

// Flag is a boolean that accepts the loose shapes clients send: JSON booleans,
// numbers (non-zero is true), strconv.ParseBool strings and null.
type Flag bool

// Bool returns the flag as a plain bool
func (f Flag) Bool() bool {
	return bool(f)
}

// MarshalJSON implements json.Marshaler
func (f Flag) MarshalJSON() ([]byte, error) {
	return json.Marshal(bool(f))
}

// UnmarshalJSON implements json.Unmarshaler
func (f *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("flag: empty value")
	}

	switch data[0] {
	case 'n':
		if string(data) != "null" {
			return fmt.Errorf("flag: invalid value %s", data)
		}
		*f = false
		return nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return fmt.Errorf("flag: %w", err)
		}
		*f = Flag(b)
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("flag: %w", err)
		}
		b, err := strconv.ParseBool(s)
		if err != nil {
			return fmt.Errorf("flag: cannot interpret %q as a boolean", s)
		}
		*f = Flag(b)
		return nil
	case '[', '{':
		return fmt.Errorf("flag: expected a boolean, got %s", data)
	default:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("flag: %w", err)
		}
		*f = n != 0
		return nil
	}
}

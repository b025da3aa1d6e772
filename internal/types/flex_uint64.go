package types

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// FlexUint64 accepts an id as either a JSON number or a numeric JSON
// string. Browser clients serialize large ids as strings to avoid
// precision loss.
type FlexUint64 uint64

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexUint64) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return fmt.Errorf("FlexUint64: invalid uint64 string %q: %w", s, err)
		}
		*f = FlexUint64(v)
		return nil
	}

	var n uint64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("FlexUint64: expected number or numeric string: %w", err)
	}
	*f = FlexUint64(n)
	return nil
}

// MarshalJSON implements json.Marshaler; ids always serialize as numbers.
func (f FlexUint64) MarshalJSON() ([]byte, error) {
	return json.Marshal(uint64(f))
}

// Uint64 converts back to the plain integer type.
func (f FlexUint64) Uint64() uint64 {
	return uint64(f)
}

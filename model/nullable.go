package models

import (
	"bytes"
	"encoding/json"
)

// NullableString distinguishes an absent JSON key (Set false), an explicit
// null (Set true, Valid false) and a value.
type NullableString struct {
	Set   bool
	Valid bool
	Value string
}

func (n *NullableString) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Valid = false
		n.Value = ""
		return nil
	}
	if err := json.Unmarshal(data, &n.Value); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

// Ptr returns the value, or nil for null.
func (n NullableString) Ptr() *string {
	if !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}

// Null returns a set, null value.
func Null() NullableString {
	return NullableString{Set: true}
}

// StringValue returns a set, non-null value.
func StringValue(s string) NullableString {
	return NullableString{Set: true, Valid: true, Value: s}
}

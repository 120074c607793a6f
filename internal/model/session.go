package model

import (
	"encoding/json"
	"strconv"
)

// Session is the request-scoped caller context handed to every service call.
// It replaces any notion of an ambient "current user".
type Session struct {
	UserID     int64
	ActivityID int64
}

// OptionalID is an identifier that may be absent. It removes the ambiguity
// between "id 0" and "no id" in selection parameters.
type OptionalID struct {
	id  int64
	set bool
}

// NoID is the absent identifier.
var NoID = OptionalID{}

// SomeID returns a present identifier.
func SomeID(id int64) OptionalID {
	return OptionalID{id: id, set: true}
}

// ParseOptionalID parses a URL parameter. An empty string and "0" both mean
// "nothing selected", matching the links the host platform generates.
func ParseOptionalID(raw string) (OptionalID, error) {
	if raw == "" {
		return NoID, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return NoID, err
	}
	if n == 0 {
		return NoID, nil
	}
	return SomeID(n), nil
}

// Get returns the identifier and whether it is present.
func (o OptionalID) Get() (int64, bool) {
	return o.id, o.set
}

// IsSet reports whether the identifier is present.
func (o OptionalID) IsSet() bool {
	return o.set
}

// Is reports whether the identifier is present and equal to id.
func (o OptionalID) Is(id int64) bool {
	return o.set && o.id == id
}

// Or returns the identifier, or fallback when absent.
func (o OptionalID) Or(fallback int64) int64 {
	if o.set {
		return o.id
	}
	return fallback
}

func (o OptionalID) String() string {
	if !o.set {
		return "none"
	}
	return strconv.FormatInt(o.id, 10)
}

// MarshalJSON encodes an absent identifier as null.
func (o OptionalID) MarshalJSON() ([]byte, error) {
	if !o.set {
		return []byte("null"), nil
	}
	return json.Marshal(o.id)
}

// UnmarshalJSON accepts null or a number. Zero decodes as absent, like
// ParseOptionalID.
func (o *OptionalID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*o = NoID
		return nil
	}
	var n int64
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	if n == 0 {
		*o = NoID
		return nil
	}
	*o = SomeID(n)
	return nil
}

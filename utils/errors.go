package utils

import (
	"reflect"

	"github.com/pkg/errors"
)

func typeName(value interface{}) string {
	t := reflect.TypeOf(value)
	if t == nil {
		return "<unknown (nil interface)>"
	}
	return t.String()
}

// NewUnexpectedTypeError is used when there is a type mismatch.
func NewUnexpectedTypeError[ExpectedT any](actual interface{}) error {
	return errors.Errorf("expected %s but got %s", typeName((*ExpectedT)(nil))[1:], typeName(actual))
}

// NewMissingKeyError is used when a required key is absent from an attribute or command map.
func NewMissingKeyError(key string) error {
	return errors.Errorf("missing required key %q", key)
}

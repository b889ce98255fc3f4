package utils

import (
	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
)

// AttributeMap is a convenience wrapper for pulling out typed information from a map of
// JSON-like attributes.
type AttributeMap map[string]interface{}

// TransformAttributeMapToStruct decodes the attribute map into `to` using the `json` struct tags.
// Unknown keys are an error.
func TransformAttributeMapToStruct[T any](to *T, attributes AttributeMap) (*T, error) {
	var md mapstructure.Metadata
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           to,
		Metadata:         &md,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(attributes); err != nil {
		return nil, errors.Wrap(err, "error decoding attributes")
	}
	if len(md.Unused) > 0 {
		return nil, errors.Errorf("unknown attributes %v", md.Unused)
	}
	return to, nil
}

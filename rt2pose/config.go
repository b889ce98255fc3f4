package rt2pose

import (
	"math"

	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"go.viam.com/rtpose/utils"
)

// OrthonormalPolicy decides what happens to a rotation input that is not a proper rotation.
type OrthonormalPolicy string

const (
	// PolicyReject fails the conversion with ErrNonOrthonormalRotation.
	PolicyReject OrthonormalPolicy = "reject"
	// PolicyNormalize replaces the input with the nearest proper rotation.
	PolicyNormalize OrthonormalPolicy = "normalize"
	// PolicyPassthrough skips the check; the quaternion may not be unit length.
	PolicyPassthrough OrthonormalPolicy = "passthrough"
)

const (
	// DefaultFrameID is the frame label used when none is configured.
	DefaultFrameID = "ecto_frame"
	// DefaultOrthonormalTolerance bounds the deviation of RᵀR from I, and of det(R) from 1.
	// Single precision inputs carry errors around 1e-7.
	DefaultOrthonormalTolerance = 1e-4
)

// Config is used for converting converter attributes. A nil OrthonormalTolerance means
// DefaultOrthonormalTolerance; an explicit 0 demands an exact rotation.
type Config struct {
	FrameID              string            `json:"frame_id,omitempty"`
	OrthonormalPolicy    OrthonormalPolicy `json:"orthonormal_policy,omitempty"`
	OrthonormalTolerance *float64          `json:"orthonormal_tolerance,omitempty"`
}

// NewConfigFromAttributes decodes and validates a converter config from an attribute map.
func NewConfigFromAttributes(attributes utils.AttributeMap) (*Config, error) {
	conf, err := utils.TransformAttributeMapToStruct(&Config{}, attributes)
	if err != nil {
		return nil, err
	}
	if err := conf.Validate("rt2pose"); err != nil {
		return nil, err
	}
	return conf, nil
}

// Validate ensures all parts of the config are valid.
func (conf *Config) Validate(path string) error {
	switch conf.OrthonormalPolicy {
	case "", PolicyReject, PolicyNormalize, PolicyPassthrough:
	default:
		return goutils.NewConfigValidationError(path,
			errors.Errorf("unknown orthonormal_policy %q, expected one of %q, %q or %q",
				conf.OrthonormalPolicy, PolicyReject, PolicyNormalize, PolicyPassthrough))
	}
	if tol := conf.OrthonormalTolerance; tol != nil && (*tol < 0 || math.IsNaN(*tol) || math.IsInf(*tol, 0)) {
		return goutils.NewConfigValidationError(path,
			errors.Errorf("orthonormal_tolerance must be a non-negative number, got %v", *tol))
	}
	return nil
}

// withDefaults returns a copy of the config with empty fields filled in.
func (conf Config) withDefaults() Config {
	if conf.FrameID == "" {
		conf.FrameID = DefaultFrameID
	}
	if conf.OrthonormalPolicy == "" {
		conf.OrthonormalPolicy = PolicyReject
	}
	tol := DefaultOrthonormalTolerance
	if conf.OrthonormalTolerance != nil {
		tol = *conf.OrthonormalTolerance
	}
	conf.OrthonormalTolerance = &tol
	return conf
}

// Tolerance returns the configured orthonormal tolerance, or the default when unset.
func (conf Config) Tolerance() float64 {
	if conf.OrthonormalTolerance == nil {
		return DefaultOrthonormalTolerance
	}
	return *conf.OrthonormalTolerance
}

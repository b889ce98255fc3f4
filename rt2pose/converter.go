// Package rt2pose converts a rotation matrix and translation vector, as produced by computer
// vision pose estimation, into a ROS PoseStamped message.
//
// A Converter is meant to be driven once per tick by an external scheduler. Each call returns a
// new message; the only state kept between calls is the header sequence counter.
package rt2pose

import (
	"math"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/rtpose/logging"
	"go.viam.com/rtpose/ros"
	"go.viam.com/rtpose/spatialmath"
	"go.viam.com/rtpose/utils"
)

// Converter turns (R, T) pairs into PoseStamped messages. It is safe for concurrent use; each
// successful call consumes exactly one sequence number.
type Converter struct {
	conf   Config
	clock  clock.Clock
	logger logging.Logger

	seq *atomic.Uint32
}

// NewConverter returns a converter for the given config. A nil config uses the defaults, a nil
// clock uses the wall clock and a nil logger uses logging.Global().
func NewConverter(conf *Config, clk clock.Clock, logger logging.Logger) (*Converter, error) {
	if conf == nil {
		conf = &Config{}
	}
	if err := conf.Validate("rt2pose"); err != nil {
		return nil, err
	}
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = logging.Global()
	}
	c := &Converter{
		conf:   conf.withDefaults(),
		clock:  clk,
		logger: logger,
		seq:    atomic.NewUint32(0),
	}
	logger.Debugw("converter ready",
		"frame_id", c.conf.FrameID,
		"orthonormal_policy", c.conf.OrthonormalPolicy,
		"orthonormal_tolerance", c.conf.Tolerance())
	return c, nil
}

// FrameID returns the frame label written into every header.
func (c *Converter) FrameID() string {
	return c.conf.FrameID
}

// Seq returns the sequence number of the most recent successful conversion, 0 if none.
func (c *Converter) Seq() uint32 {
	return c.seq.Load()
}

// Convert builds a PoseStamped from a 3x3 rotation and a 3x1 (or 1x3) translation. Inputs are
// read, never modified, and are rounded to single precision before use. On error no sequence
// number is consumed. A nil input, including a nil *mat.Dense or *mat.VecDense, is
// ErrInvalidDimensions.
func (c *Converter) Convert(rotation, translation mat.Matrix) (ros.PoseStamped, error) {
	rm, err := rotationToSingle(rotation)
	if err != nil {
		return ros.PoseStamped{}, err
	}
	position, err := translationToSingle(translation)
	if err != nil {
		return ros.PoseStamped{}, err
	}
	rm, err = c.applyPolicy(rm)
	if err != nil {
		return ros.PoseStamped{}, err
	}

	q := rm.Quaternion()
	if !utils.IsFinite(q.Real, q.Imag, q.Jmag, q.Kmag) {
		return ros.PoseStamped{}, errors.Wrapf(ErrInvalidNumericInput, "rotation produced quaternion %v", q)
	}

	seq := c.seq.Inc()
	pose := ros.PoseStamped{
		Header: ros.Header{
			Seq:     seq,
			Stamp:   ros.NewTime(c.clock.Now()),
			FrameID: c.conf.FrameID,
		},
		Pose: ros.Pose{
			Position:    position,
			Orientation: ros.NewQuaternion(q),
		},
	}
	c.logger.Debugw("converted pose", "seq", seq, "frame_id", c.conf.FrameID)
	return pose, nil
}

func (c *Converter) applyPolicy(rm *spatialmath.RotationMatrix) (*spatialmath.RotationMatrix, error) {
	if c.conf.OrthonormalPolicy == PolicyPassthrough {
		return rm, nil
	}
	orthoErr := rm.OrthonormalError()
	if orthoErr <= c.conf.Tolerance() {
		return rm, nil
	}

	switch c.conf.OrthonormalPolicy {
	case PolicyNormalize:
		fixed, err := rm.NearestRotation()
		if err != nil {
			return nil, errors.Wrapf(ErrNonOrthonormalRotation, "cannot normalize rotation: %v", err)
		}
		c.logger.Warnw("normalized non-orthonormal rotation",
			"orthonormal_error", orthoErr, "tolerance", c.conf.Tolerance())
		return fixed, nil
	default:
		return nil, errors.Wrapf(ErrNonOrthonormalRotation,
			"deviation %g exceeds tolerance %g", orthoErr, c.conf.Tolerance())
	}
}

// toSingle rounds a value to single precision. Values outside the float32 range, NaN and ±Inf
// are rejected.
func toSingle(v float64) (float64, error) {
	if !utils.IsFinite(v) || math.Abs(v) > math.MaxFloat32 {
		return 0, errors.Wrapf(ErrInvalidNumericInput, "value %v is not a finite single precision number", v)
	}
	return float64(float32(v)), nil
}

// isNilMatrix catches nil interfaces and nil pointers of the gonum matrix types. Other typed nils
// are not detected and panic in Dims.
func isNilMatrix(m mat.Matrix) bool {
	switch v := m.(type) {
	case nil:
		return true
	case *mat.Dense:
		return v == nil
	case *mat.VecDense:
		return v == nil
	case *mat.SymDense:
		return v == nil
	case *mat.TriDense:
		return v == nil
	}
	return false
}

func rotationToSingle(rotation mat.Matrix) (*spatialmath.RotationMatrix, error) {
	if isNilMatrix(rotation) {
		return nil, errors.Wrap(ErrInvalidDimensions, "rotation is missing")
	}
	if r, c := rotation.Dims(); r != 3 || c != 3 {
		return nil, errors.Wrapf(ErrInvalidDimensions, "rotation is %dx%d, need 3x3", r, c)
	}
	elems := make([]float64, 0, 9)
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			v, err := toSingle(rotation.At(row, col))
			if err != nil {
				return nil, errors.Wrapf(err, "rotation[%d][%d]", row, col)
			}
			elems = append(elems, v)
		}
	}
	return spatialmath.NewRotationMatrix(elems)
}

func translationToSingle(translation mat.Matrix) (ros.Point, error) {
	if isNilMatrix(translation) {
		return ros.Point{}, errors.Wrap(ErrInvalidDimensions, "translation is missing")
	}
	r, c := translation.Dims()
	var at func(i int) float64
	switch {
	case r == 3 && c == 1:
		at = func(i int) float64 { return translation.At(i, 0) }
	case r == 1 && c == 3:
		at = func(i int) float64 { return translation.At(0, i) }
	default:
		return ros.Point{}, errors.Wrapf(ErrInvalidDimensions, "translation is %dx%d, need 3x1", r, c)
	}

	var xyz [3]float64
	for i := range xyz {
		v, err := toSingle(at(i))
		if err != nil {
			return ros.Point{}, errors.Wrapf(err, "translation[%d]", i)
		}
		xyz[i] = v
	}
	return ros.Point{X: xyz[0], Y: xyz[1], Z: xyz[2]}, nil
}


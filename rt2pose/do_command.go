package rt2pose

import (
	"context"
	"fmt"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/rtpose/utils"
)

// Port names of the converter as seen by a dataflow host.
const (
	PortRotation    = "R"
	PortTranslation = "T"
	PortPose        = "pose"
)

// DoCommand runs one conversion from JSON-like port values: R is a list of three rows of three
// numbers and T a list of three numbers. Either port may also carry a mat.Matrix directly.
// The result holds the PoseStamped under PortPose.
func (c *Converter) DoCommand(ctx context.Context, cmd map[string]interface{}) (map[string]interface{}, error) {
	rotation, err := rotationFromPort(cmd)
	if err != nil {
		return nil, err
	}
	translation, err := translationFromPort(cmd)
	if err != nil {
		return nil, err
	}

	pose, err := c.Convert(rotation, translation)
	if err != nil {
		c.logger.CDebugw(ctx, "conversion failed", "error", err)
		return nil, err
	}
	poseMap, err := pose.ToMap()
	if err != nil {
		return nil, err
	}
	c.logger.CDebugw(ctx, "converted command", "seq", pose.Header.Seq)
	return map[string]interface{}{PortPose: poseMap}, nil
}

func rotationFromPort(cmd map[string]interface{}) (mat.Matrix, error) {
	raw, ok := cmd[PortRotation]
	if !ok {
		return nil, utils.NewMissingKeyError(PortRotation)
	}
	if m, err := utils.AssertType[mat.Matrix](raw); err == nil {
		return m, nil
	}
	rows, err := decodeList(fmt.Sprintf("port %q", PortRotation), raw)
	if err != nil {
		return nil, err
	}
	if len(rows) != 3 {
		return nil, errors.Wrapf(ErrInvalidDimensions, "rotation has %d rows, need 3", len(rows))
	}
	data := make([]float64, 0, 9)
	for i, raw := range rows {
		row, err := decodeNumbers(fmt.Sprintf("port %q row %d", PortRotation, i), raw)
		if err != nil {
			return nil, err
		}
		if len(row) != 3 {
			return nil, errors.Wrapf(ErrInvalidDimensions, "rotation row %d has %d columns, need 3", i, len(row))
		}
		data = append(data, row...)
	}
	return mat.NewDense(3, 3, data), nil
}

func translationFromPort(cmd map[string]interface{}) (mat.Matrix, error) {
	raw, ok := cmd[PortTranslation]
	if !ok {
		return nil, utils.NewMissingKeyError(PortTranslation)
	}
	if m, err := utils.AssertType[mat.Matrix](raw); err == nil {
		return m, nil
	}
	xyz, err := decodeNumbers(fmt.Sprintf("port %q", PortTranslation), raw)
	if err != nil {
		return nil, err
	}
	if len(xyz) != 3 {
		return nil, errors.Wrapf(ErrInvalidDimensions, "translation has %d elements, need 3", len(xyz))
	}
	return mat.NewVecDense(3, xyz), nil
}

// decodeList decodes a list-valued port, or one row of it, leaving the elements undecoded.
func decodeList(what string, raw interface{}) ([]interface{}, error) {
	if raw == nil {
		return nil, errors.Wrapf(ErrInvalidNumericInput, "%s is null", what)
	}
	var list []interface{}
	if err := mapstructure.Decode(raw, &list); err != nil {
		return nil, errors.Wrapf(err, "cannot decode %s", what)
	}
	return list, nil
}

// decodeNumbers decodes a list of numbers. A null element is an error, never a zero.
func decodeNumbers(what string, raw interface{}) ([]float64, error) {
	list, err := decodeList(what, raw)
	if err != nil {
		return nil, err
	}
	numbers := make([]float64, 0, len(list))
	for i, elem := range list {
		if elem == nil {
			return nil, errors.Wrapf(ErrInvalidNumericInput, "%s element %d is null", what, i)
		}
		var v float64
		if err := mapstructure.Decode(elem, &v); err != nil {
			return nil, errors.Wrapf(err, "cannot decode %s element %d", what, i)
		}
		numbers = append(numbers, v)
	}
	return numbers, nil
}

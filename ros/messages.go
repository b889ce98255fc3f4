package ros

import (
	"encoding/json"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/num/quat"
)

// Time is a ROS time: whole seconds and nanoseconds since the unix epoch.
type Time struct {
	Secs  uint32 `json:"secs"`
	Nsecs uint32 `json:"nsecs"`
}

// NewTime converts a wall clock time to a ROS time. Times before the epoch or after 2106 do not
// fit a ROS time and are truncated.
func NewTime(t time.Time) Time {
	nanos := t.UnixNano()
	return Time{
		Secs:  uint32(nanos / int64(time.Second)),
		Nsecs: uint32(nanos % int64(time.Second)),
	}
}

// Time converts a ROS time to a wall clock time in UTC.
func (t Time) Time() time.Time {
	return time.Unix(int64(t.Secs), int64(t.Nsecs)).UTC()
}

// Header is std_msgs/Header.
type Header struct {
	Seq     uint32 `json:"seq"`
	Stamp   Time   `json:"stamp"`
	FrameID string `json:"frame_id"`
}

// Point is geometry_msgs/Point.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// NewPoint converts a vector to a point.
func NewPoint(v r3.Vector) Point {
	return Point{X: v.X, Y: v.Y, Z: v.Z}
}

// Vector returns the point as a vector.
func (p Point) Vector() r3.Vector {
	return r3.Vector{X: p.X, Y: p.Y, Z: p.Z}
}

// Quaternion is geometry_msgs/Quaternion. Note the scalar part comes last.
type Quaternion struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}

// NewQuaternion converts a gonum quaternion to a ROS quaternion.
func NewQuaternion(q quat.Number) Quaternion {
	return Quaternion{X: q.Imag, Y: q.Jmag, Z: q.Kmag, W: q.Real}
}

// Number returns the quaternion as a gonum quaternion.
func (q Quaternion) Number() quat.Number {
	return quat.Number{Real: q.W, Imag: q.X, Jmag: q.Y, Kmag: q.Z}
}

// Pose is geometry_msgs/Pose.
type Pose struct {
	Position    Point      `json:"position"`
	Orientation Quaternion `json:"orientation"`
}

// PoseStamped is geometry_msgs/PoseStamped.
type PoseStamped struct {
	Header Header `json:"header"`
	Pose   Pose   `json:"pose"`
}

// ToMap converts the message into a JSON-like map, as used in command responses.
func (ps PoseStamped) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(ps)
	if err != nil {
		return nil, err
	}
	ret := map[string]interface{}{}
	if err := json.Unmarshal(data, &ret); err != nil {
		return nil, err
	}
	return ret, nil
}

// PoseStampedFromMap decodes a JSON-like map (as produced by ToMap or by the rosbag JSON
// parser) into a PoseStamped.
func PoseStampedFromMap(m map[string]interface{}) (PoseStamped, error) {
	var ps PoseStamped
	if err := decodeJSONMap(m, &ps); err != nil {
		return PoseStamped{}, errors.Wrap(err, "cannot decode PoseStamped")
	}
	return ps, nil
}

func decodeJSONMap(in map[string]interface{}, out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{TagName: "json", Result: out})
	if err != nil {
		return err
	}
	return decoder.Decode(in)
}

// PoseStampedMessage is a PoseStamped as read from a rosbag: the record time plus the message.
type PoseStampedMessage struct {
	Meta Time        `json:"meta"`
	Data PoseStamped `json:"data"`
}

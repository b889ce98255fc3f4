// Package ros holds the ROS message types produced by the converter, plus helpers for reading
// recorded PoseStamped topics back out of rosbags.
package ros

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/edaniels/gobag/rosbag"
	"github.com/pkg/errors"
	"go.viam.com/utils"
)

// ReadBag reads the contents of a rosbag into a gobag data structure.
func ReadBag(filename string) (*rosbag.RosBag, error) {
	//nolint:gosec
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open input file")
	}
	defer utils.UncheckedErrorFunc(f.Close)

	rb := rosbag.NewRosBag()
	if err := rb.Read(f); err != nil {
		return nil, errors.Wrapf(err, "unable to create ros bag, error")
	}

	return rb, nil
}

// AllMessagesForTopic returns all messages for a specific topic in the ros bag.
func AllMessagesForTopic(rb *rosbag.RosBag, topic string) ([]map[string]interface{}, error) {
	if err := rb.ParseTopicsToJSON(
		"",
		func(int64) bool { return true },
		func(t string) bool { return t == topic },
		false,
	); err != nil {
		return nil, errors.Wrapf(err, "error while parsing bag to JSON")
	}

	msgs := rb.TopicsAsJSON[topicKey(topic)]
	if msgs == nil {
		return nil, errors.Errorf("no messages for topic %s", topic)
	}

	return decodeMessageLines(msgs)
}

// topicKey is the key gobag files a topic's JSON under: no leading slash, remaining slashes
// replaced by underscores, lower case.
func topicKey(topic string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(topic, "/"), "/", "_"))
}

// decodeMessageLines splits newline-delimited JSON objects.
func decodeMessageLines(r io.Reader) ([]map[string]interface{}, error) {
	all := []map[string]interface{}{}
	decoder := json.NewDecoder(r)
	for {
		message := map[string]interface{}{}
		if err := decoder.Decode(&message); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		all = append(all, message)
	}
	return all, nil
}

// PosesForTopic reads every PoseStamped recorded on the given topic.
func PosesForTopic(rb *rosbag.RosBag, topic string) ([]PoseStampedMessage, error) {
	msgs, err := AllMessagesForTopic(rb, topic)
	if err != nil {
		return nil, err
	}
	return DecodePoseStampedMessages(msgs)
}

// DecodePoseStampedMessages converts rosbag JSON records ({"meta": ..., "data": ...}) into
// PoseStampedMessages.
func DecodePoseStampedMessages(msgs []map[string]interface{}) ([]PoseStampedMessage, error) {
	poses := make([]PoseStampedMessage, 0, len(msgs))
	for i, msg := range msgs {
		if _, ok := msg["data"].(map[string]interface{}); !ok {
			return nil, errors.Errorf("message %d has no data", i)
		}
		var psm PoseStampedMessage
		if err := decodeJSONMap(msg, &psm); err != nil {
			return nil, errors.Wrapf(err, "message %d", i)
		}
		poses = append(poses, psm)
	}
	return poses, nil
}

// SequenceGap describes a break in the header sequence between two consecutive messages.
type SequenceGap struct {
	Index    int
	Previous uint32
	Current  uint32
}

// FindSequenceGaps returns every place where a header seq is not exactly one more than the one
// before it. A wrap from the max uint32 back to 0 is not a gap.
func FindSequenceGaps(poses []PoseStampedMessage) []SequenceGap {
	var gaps []SequenceGap
	for i := 1; i < len(poses); i++ {
		prev, cur := poses[i-1].Data.Header.Seq, poses[i].Data.Header.Seq
		if cur != prev+1 {
			gaps = append(gaps, SequenceGap{Index: i, Previous: prev, Current: cur})
		}
	}
	return gaps
}

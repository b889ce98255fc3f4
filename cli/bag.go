package cli

import (
	"encoding/json"

	"github.com/urfave/cli/v2"

	"go.viam.com/rtpose/logging"
	"go.viam.com/rtpose/ros"
)

// BagAction prints the PoseStamped messages recorded on a rosbag topic, one JSON document per
// line, and warns about every break in the header sequence.
func BagAction(c *cli.Context, logger logging.Logger) error {
	rb, err := ros.ReadBag(c.Path(bagFlagFile))
	if err != nil {
		return err
	}
	poses, err := ros.PosesForTopic(rb, c.String(bagFlagTopic))
	if err != nil {
		return err
	}
	return printPoses(c, poses, logger)
}

func printPoses(c *cli.Context, poses []ros.PoseStampedMessage, logger logging.Logger) error {
	encoder := json.NewEncoder(c.App.Writer)
	for _, pose := range poses {
		if err := encoder.Encode(pose.Data); err != nil {
			return err
		}
	}

	gaps := ros.FindSequenceGaps(poses)
	for _, gap := range gaps {
		logger.Warnw("sequence gap", "index", gap.Index, "previous", gap.Previous, "current", gap.Current)
	}
	logger.Infow("read poses", "topic", c.String(bagFlagTopic), "count", len(poses), "gaps", len(gaps))
	return nil
}

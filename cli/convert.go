package cli

import (
	"encoding/json"
	"io"
	"os"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	goutils "go.viam.com/utils"

	"go.viam.com/rtpose/logging"
	"go.viam.com/rtpose/rt2pose"
)

// ConvertAction reads R/T records and writes one PoseStamped JSON document per line.
func ConvertAction(c *cli.Context, logger logging.Logger) error {
	tolerance := c.Float64(convertFlagTolerance)
	conv, err := rt2pose.NewConverter(&rt2pose.Config{
		FrameID:              c.String(convertFlagFrameID),
		OrthonormalPolicy:    rt2pose.OrthonormalPolicy(c.String(convertFlagPolicy)),
		OrthonormalTolerance: &tolerance,
	}, clock.New(), logger)
	if err != nil {
		return err
	}

	in := c.App.Reader
	if path := c.Path(convertFlagInput); path != "" {
		//nolint:gosec
		f, err := os.Open(path)
		if err != nil {
			return errors.Wrap(err, "cannot open input")
		}
		defer goutils.UncheckedErrorFunc(f.Close)
		in = f
	}

	return convertRecords(c, conv, in, c.Bool(convertFlagKeepGoing), logger)
}

func convertRecords(c *cli.Context, conv *rt2pose.Converter, in io.Reader, keepGoing bool, logger logging.Logger) error {
	decoder := json.NewDecoder(in)
	encoder := json.NewEncoder(c.App.Writer)
	var converted, skipped int
	for record := 1; ; record++ {
		cmd := map[string]interface{}{}
		if err := decoder.Decode(&cmd); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return errors.Wrapf(err, "cannot read record %d", record)
		}

		resp, err := conv.DoCommand(c.Context, cmd)
		if err != nil {
			if !keepGoing {
				return errors.Wrapf(err, "record %d", record)
			}
			logger.Warnw("skipping record", "record", record, "error", err.Error())
			skipped++
			continue
		}
		if err := encoder.Encode(resp[rt2pose.PortPose]); err != nil {
			return err
		}
		converted++
	}
	logger.Infow("done", "converted", converted, "skipped", skipped, "frame_id", conv.FrameID())
	return nil
}

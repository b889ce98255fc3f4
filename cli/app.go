// Package cli contains the rt2pose command line tool.
package cli

import (
	"io"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"go.viam.com/rtpose/logging"
	"go.viam.com/rtpose/rt2pose"
)

const (
	generalFlagDebug = "debug"

	convertFlagInput     = "input"
	convertFlagFrameID   = "frame-id"
	convertFlagPolicy    = "orthonormal-policy"
	convertFlagTolerance = "orthonormal-tolerance"
	convertFlagKeepGoing = "keep-going"

	bagFlagFile  = "file"
	bagFlagTopic = "topic"
)

// NewApp returns a new app with Reader set to in, Writer set to out, and all logging going to
// errOut.
func NewApp(in io.Reader, out, errOut io.Writer) *cli.App {
	logger := logging.NewBlankLogger("rt2pose")
	logger.SetLevel(logging.INFO)
	logger.AddAppender(logging.NewWriterAppender(errOut))

	return &cli.App{
		Name:            "rt2pose",
		Usage:           "convert rotation matrices and translation vectors into stamped poses",
		HideHelpCommand: true,
		Reader:          in,
		Writer:          out,
		ErrWriter:       errOut,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    generalFlagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			logging.ReplaceGlobal(logger)
			if c.Bool(generalFlagDebug) {
				logger.SetLevel(logging.DEBUG)
				logging.GlobalLogLevel.SetLevel(zap.DebugLevel)
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "convert",
				Usage:     "convert newline delimited {\"R\": [[...]], \"T\": [...]} records to PoseStamped JSON",
				UsageText: "rt2pose convert [--input FILE] [--frame-id FRAME] [--orthonormal-policy POLICY]",
				Flags: []cli.Flag{
					&cli.PathFlag{
						Name:  convertFlagInput,
						Usage: "read records from `FILE` instead of stdin",
					},
					&cli.StringFlag{
						Name:  convertFlagFrameID,
						Value: rt2pose.DefaultFrameID,
						Usage: "frame label written to every header",
					},
					&cli.StringFlag{
						Name:  convertFlagPolicy,
						Value: string(rt2pose.PolicyReject),
						Usage: "what to do with rotations that are not orthonormal: reject, normalize or passthrough",
					},
					&cli.Float64Flag{
						Name:  convertFlagTolerance,
						Value: rt2pose.DefaultOrthonormalTolerance,
						Usage: "allowed deviation of RᵀR from I and det(R) from 1",
					},
					&cli.BoolFlag{
						Name:  convertFlagKeepGoing,
						Usage: "log and skip records that fail to convert instead of stopping",
					},
				},
				Action: func(c *cli.Context) error {
					return ConvertAction(c, logger.Sublogger("convert"))
				},
			},
			{
				Name:      "bag",
				Usage:     "print PoseStamped messages recorded in a rosbag and report sequence gaps",
				UsageText: "rt2pose bag --file BAG [--topic TOPIC]",
				Flags: []cli.Flag{
					&cli.PathFlag{
						Name:     bagFlagFile,
						Required: true,
						Usage:    "rosbag `FILE` to read",
					},
					&cli.StringFlag{
						Name:  bagFlagTopic,
						Value: "/pose",
						Usage: "topic holding geometry_msgs/PoseStamped messages",
					},
				},
				Action: func(c *cli.Context) error {
					return BagAction(c, logger.Sublogger("bag"))
				},
			},
		},
	}
}

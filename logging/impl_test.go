package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"testing"

	"go.viam.com/test"
)

type position struct {
	X, Y, Z float64
	frame   string
}

// assertLogMatches fuzzy matches a single log line. The time and line number are only checked for
// shape.
func assertLogMatches(t *testing.T, actual *bytes.Buffer, expected string) {
	t.Helper()

	output, err := actual.ReadString('\n')
	test.That(t, err, test.ShouldBeNil)

	actualParts := strings.Split(strings.TrimSuffix(output, "\n"), "\t")
	expectedParts := strings.Split(expected, "\t")
	test.That(t, len(actualParts), test.ShouldEqual, len(expectedParts))

	test.That(t, len(actualParts[0]), test.ShouldEqual, len(expectedParts[0]))
	test.That(t, actualParts[1], test.ShouldEqual, expectedParts[1])
	test.That(t, actualParts[2], test.ShouldEqual, expectedParts[2])

	actualFilename, actualLineNumber, found := strings.Cut(actualParts[3], ":")
	test.That(t, found, test.ShouldBeTrue)
	expectedFilename, _, found := strings.Cut(expectedParts[3], ":")
	test.That(t, found, test.ShouldBeTrue)
	test.That(t, actualFilename, test.ShouldEqual, expectedFilename)
	_, err = strconv.Atoi(actualLineNumber)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, actualParts[4], test.ShouldEqual, expectedParts[4])
	if len(actualParts) == 5 {
		return
	}

	expectedMap := make(map[string]any)
	test.That(t, json.Unmarshal([]byte(expectedParts[5]), &expectedMap), test.ShouldBeNil)
	actualMap := make(map[string]any)
	test.That(t, json.Unmarshal([]byte(actualParts[5]), &actualMap), test.ShouldBeNil)
	test.That(t, actualMap, test.ShouldResemble, expectedMap)
}

func newBufferLogger(name string, level Level) (*impl, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return &impl{name, NewAtomicLevelAt(level), true, []Appender{NewWriterAppender(buf)}}, buf
}

func TestConsoleOutputFormat(t *testing.T) {
	logger, buf := newBufferLogger("rt2pose", DEBUG)

	logger.Info("converter ready")
	assertLogMatches(t, buf,
		"2023-10-30T09:12:09.459Z\tINFO\trt2pose\tlogging/impl_test.go:1\tconverter ready")

	logger.Infof("frame %s", "ecto_frame")
	assertLogMatches(t, buf,
		"2023-10-30T09:12:09.459Z\tINFO\trt2pose\tlogging/impl_test.go:1\tframe ecto_frame")

	logger.Debugw("converted", "seq", 3, "frame_id", "camera")
	assertLogMatches(t, buf,
		`2023-10-30T09:12:09.459Z	DEBUG	rt2pose	logging/impl_test.go:1	converted	{"seq":3,"frame_id":"camera"}`)

	// Only public fields of structs are serialized.
	logger.Warnw("position", "pos", position{1, 2, 3, "world"})
	assertLogMatches(t, buf,
		`2023-10-30T09:12:09.459Z	WARN	rt2pose	logging/impl_test.go:1	position	{"pos":{"X":1,"Y":2,"Z":3}}`)

	logger.Errorw("unpaired", "dangling")
	assertLogMatches(t, buf,
		`2023-10-30T09:12:09.459Z	ERROR	rt2pose	logging/impl_test.go:1	unpaired	{"dangling":"unpaired log key"}`)
}

func TestLevelFiltering(t *testing.T) {
	logger, buf := newBufferLogger("filter", WARN)

	logger.Debug("dropped")
	logger.Info("dropped")
	test.That(t, buf.Len(), test.ShouldEqual, 0)

	logger.Warn("kept")
	assertLogMatches(t, buf, "2023-10-30T09:12:09.459Z\tWARN\tfilter\tlogging/impl_test.go:1\tkept")

	logger.SetLevel(DEBUG)
	test.That(t, logger.GetLevel(), test.ShouldEqual, DEBUG)
	logger.Debug("now kept")
	assertLogMatches(t, buf, "2023-10-30T09:12:09.459Z\tDEBUG\tfilter\tlogging/impl_test.go:1\tnow kept")
}

func TestContextDebugMode(t *testing.T) {
	logger, buf := newBufferLogger("ctx", INFO)

	logger.CDebugf(context.Background(), "dropped %d", 1)
	test.That(t, buf.Len(), test.ShouldEqual, 0)

	ctx := EnableDebugMode(context.Background(), "")
	test.That(t, IsDebugMode(ctx), test.ShouldBeTrue)
	test.That(t, GetName(ctx), test.ShouldHaveLength, 6)
	logger.CDebugf(ctx, "kept %d", 2)
	assertLogMatches(t, buf, "2023-10-30T09:12:09.459Z\tDEBUG\tctx\tlogging/impl_test.go:1\tkept 2")

	ctx = EnableDebugMode(context.Background(), "trace-me")
	test.That(t, GetName(ctx), test.ShouldEqual, "trace-me")
}

func TestSublogger(t *testing.T) {
	logger, buf := newBufferLogger("rt2pose", INFO)

	sub := logger.Sublogger("converter")
	sub.Info("hello")
	assertLogMatches(t, buf, "2023-10-30T09:12:09.459Z\tINFO\trt2pose.converter\tlogging/impl_test.go:1\thello")

	// Changing the sublogger level leaves the parent untouched.
	sub.SetLevel(ERROR)
	test.That(t, logger.GetLevel(), test.ShouldEqual, INFO)
	test.That(t, sub.GetLevel(), test.ShouldEqual, ERROR)

	test.That(t, NewBlankLogger("").Sublogger("child").AsZap().Desugar().Name(), test.ShouldEqual, "child")
}

func TestObservedTestLogger(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)

	logger.Infow("pose", "seq", 1)
	logger.Warn("non-orthonormal")

	test.That(t, logs.Len(), test.ShouldEqual, 2)
	test.That(t, logs.FilterMessage("pose").Len(), test.ShouldEqual, 1)
	test.That(t, logs.FilterMessage("pose").All()[0].ContextMap()["seq"], test.ShouldEqual, int64(1))
	test.That(t, logger.Sync(), test.ShouldBeNil)
}

func TestLevelStrings(t *testing.T) {
	for _, tc := range []struct {
		input    string
		expected Level
	}{
		{"debug", DEBUG},
		{"INFO", INFO},
		{"Warn", WARN},
		{"warning", WARN},
		{"error", ERROR},
	} {
		level, err := LevelFromString(tc.input)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, level, test.ShouldEqual, tc.expected)
	}

	_, err := LevelFromString("loud")
	test.That(t, err, test.ShouldNotBeNil)

	var level Level
	test.That(t, json.Unmarshal([]byte(`"warn"`), &level), test.ShouldBeNil)
	test.That(t, level, test.ShouldEqual, WARN)

	data, err := json.Marshal(ERROR)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(data), test.ShouldEqual, `"Error"`)
}

func TestGlobalLogger(t *testing.T) {
	original := Global()
	t.Cleanup(func() { ReplaceGlobal(original) })

	test.That(t, original, test.ShouldNotBeNil)
	test.That(t, original.GetLevel(), test.ShouldEqual, INFO)

	logger, buf := newBufferLogger("cli", INFO)
	ReplaceGlobal(logger)
	Global().Info("from global")
	assertLogMatches(t, buf,
		"2023-10-30T09:12:09.459Z\tINFO\tcli\tlogging/impl_test.go:1\tfrom global")

	Global().Debug("filtered")
	test.That(t, buf.Len(), test.ShouldEqual, 0)
}

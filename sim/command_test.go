package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand_FullPayload(t *testing.T) {
	payload := []byte(`{
		"command_id": "cmd-7",
		"action": "move",
		"target": "AGV_1",
		"params": {"target_point": "P3", "target_level": 90}
	}`)

	cmd, err := ParseCommand(payload, "line2")
	require.NoError(t, err)
	assert.Equal(t, "cmd-7", cmd.CommandID)
	assert.Equal(t, ActionMove, cmd.Action)
	assert.Equal(t, "AGV_1", cmd.Target)
	assert.Equal(t, "P3", cmd.Params.TargetPoint)
	assert.Equal(t, 90.0, cmd.Params.TargetLevel)
	assert.Equal(t, "line2", cmd.LineID, "line resolves from the topic when target has no prefix")
}

func TestParseCommand_DecodeError(t *testing.T) {
	_, err := ParseCommand([]byte(`{"action":`), "line1")
	assert.ErrorContains(t, err, "decode command")
}

func TestCommand_NormalizePrecedence(t *testing.T) {
	// A line prefix in the target beats both the explicit field and the
	// topic line.
	cmd := Command{Action: ActionMove, Target: "line3/AGV_1", LineID: "line2"}
	cmd.Normalize("line1")
	assert.Equal(t, "line3", cmd.LineID)
	assert.Equal(t, "AGV_1", cmd.Target)

	// Without a prefix the explicit field beats the topic line.
	cmd = Command{Action: ActionMove, Target: "AGV_1", LineID: "line2"}
	cmd.Normalize("line1")
	assert.Equal(t, "line2", cmd.LineID)

	// With neither, the topic line fills in.
	cmd = Command{Action: ActionMove, Target: "AGV_1"}
	cmd.Normalize("line1")
	assert.Equal(t, "line1", cmd.LineID)
}

func TestSplitLineTarget(t *testing.T) {
	cases := []struct {
		target   string
		wantLine string
		wantBare string
	}{
		{"line3/AGV_1", "line3", "AGV_1"},
		{"LINE2/AGV_1", "line2", "AGV_1"},
		{"line12/dev/ice", "line12", "dev/ice"},
		{"AGV_1", "", "AGV_1"},
		// Prefix must be "line" plus digits; anything else passes through
		// untouched.
		{"lineX/AGV_1", "", "lineX/AGV_1"},
		{"line/AGV_1", "", "line/AGV_1"},
		{"pipeline1/AGV_1", "", "pipeline1/AGV_1"},
		{"line1a/AGV_1", "", "line1a/AGV_1"},
	}
	for _, tc := range cases {
		line, bare := splitLineTarget(tc.target)
		assert.Equal(t, tc.wantLine, line, "target %q", tc.target)
		assert.Equal(t, tc.wantBare, bare, "target %q", tc.target)
	}
}

func TestCommand_Validate(t *testing.T) {
	valid := Command{Action: ActionLoad, Target: "AGV_1", LineID: "line1"}
	assert.NoError(t, valid.Validate())

	missingAction := Command{Target: "AGV_1", LineID: "line1"}
	assert.ErrorContains(t, missingAction.Validate(), "invalid command")

	missingTarget := Command{Action: ActionLoad, LineID: "line1"}
	assert.ErrorContains(t, missingTarget.Validate(), "invalid command")

	negativeLevel := Command{
		Action: ActionCharge, Target: "AGV_1", LineID: "line1",
		Params: CommandParams{TargetLevel: -5},
	}
	assert.ErrorContains(t, negativeLevel.Validate(), "invalid command")

	// Unknown verbs pass schema validation; dispatch answers them with
	// an unknown-action response instead.
	unknownAction := Command{Action: "dance", Target: "AGV_1", LineID: "line1"}
	assert.NoError(t, unknownAction.Validate())
}

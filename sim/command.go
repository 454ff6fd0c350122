package sim

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Actions accepted on the command topic.
const (
	ActionMove      = "move"
	ActionLoad      = "load"
	ActionUnload    = "unload"
	ActionCharge    = "charge"
	ActionGetResult = "get_result"
)

// CommandParams carries the action-specific parameters. Zero values
// mean absent, matching the wire contract where every key is optional.
type CommandParams struct {
	// TargetPoint names the destination point of a move.
	TargetPoint string `json:"target_point,omitempty"`
	// ProductID selects a specific product on load. Honored only when
	// the resolved device is the raw material intake.
	ProductID string `json:"product_id,omitempty"`
	// TargetLevel is the charge target in percent. Absent or zero
	// falls back to the default of 80 with an advisory response.
	TargetLevel float64 `json:"target_level,omitempty" validate:"gte=0"`
}

// Command is one external command record. Network adapters enqueue
// these unmodified; all interpretation happens on the simulation
// goroutine.
type Command struct {
	CommandID string        `json:"command_id,omitempty"`
	Action    string        `json:"action" validate:"required"`
	Target    string        `json:"target" validate:"required"`
	Params    CommandParams `json:"params"`
	// LineID addresses the production line. Filled from a line prefix
	// in the target or from the command topic when absent.
	LineID string `json:"line_id,omitempty"`
}

var commandValidator = validator.New()

// ParseCommand decodes raw JSON into a normalized, validated Command.
// topicLineID is the line segment of the topic the payload arrived on.
func ParseCommand(payload []byte, topicLineID string) (Command, error) {
	var cmd Command
	if err := json.Unmarshal(payload, &cmd); err != nil {
		return Command{}, fmt.Errorf("decode command: %w", err)
	}
	cmd.Normalize(topicLineID)
	if err := cmd.Validate(); err != nil {
		return cmd, err
	}
	return cmd, nil
}

// Normalize resolves the effective line and bare target. A line prefix
// embedded in the target ("line3/AGV_1") wins over an explicit line_id
// field, which wins over the topic's line.
func (c *Command) Normalize(topicLineID string) {
	if lineID, bare := splitLineTarget(c.Target); lineID != "" {
		c.Target = bare
		c.LineID = lineID
	}
	if c.LineID == "" {
		c.LineID = topicLineID
	}
}

// Validate checks the command against the wire schema.
func (c Command) Validate() error {
	if err := commandValidator.Struct(c); err != nil {
		return fmt.Errorf("invalid command: %w", err)
	}
	return nil
}

// splitLineTarget splits a "lineN/device" target into its line and
// bare-target parts. Targets without a well-formed line prefix pass
// through with an empty line.
func splitLineTarget(target string) (lineID, bare string) {
	if !strings.Contains(target, "/") {
		return "", target
	}
	parts := strings.SplitN(target, "/", 2)
	prefix := parts[0]
	if len(prefix) > 4 && strings.HasPrefix(strings.ToLower(prefix), "line") && allDigits(prefix[4:]) {
		return strings.ToLower(prefix), parts[1]
	}
	return "", target
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

package sim

import (
	"fmt"
	"os"
	"strings"
)

// DefaultTopicRoot namespaces a simulation instance when neither an
// explicit root nor an environment override is present.
const DefaultTopicRoot = "NLDF_TEST"

// ResolveTopicRoot picks the pub/sub namespace root: an explicit value
// wins, then the TOPIC_ROOT, USERNAME and USER environment variables.
func ResolveTopicRoot(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, key := range []string{"TOPIC_ROOT", "USERNAME", "USER"} {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return DefaultTopicRoot
}

// Topics derives every topic name in one simulation namespace.
type Topics struct {
	root string
}

// NewTopics resolves the root and returns the topic builder.
func NewTopics(root string) Topics {
	return Topics{root: ResolveTopicRoot(root)}
}

// Root returns the resolved namespace root.
func (t Topics) Root() string { return t.root }

// CommandSubscription matches inbound commands for every line.
func (t Topics) CommandSubscription() string {
	return fmt.Sprintf("%s/command/+", t.root)
}

// Command addresses one line's inbound command channel.
func (t Topics) Command(lineID string) string {
	return fmt.Sprintf("%s/command/%s", t.root, lineID)
}

// Response carries command outcomes for one line.
func (t Topics) Response(lineID string) string {
	return fmt.Sprintf("%s/response/%s", t.root, lineID)
}

// Station carries a station or quality check status.
func (t Topics) Station(lineID, deviceID string) string {
	return fmt.Sprintf("%s/%s/station/%s/status", t.root, lineID, deviceID)
}

// Conveyor carries a conveyor status.
func (t Topics) Conveyor(lineID, deviceID string) string {
	return fmt.Sprintf("%s/%s/conveyor/%s/status", t.root, lineID, deviceID)
}

// AGV carries one AGV's status.
func (t Topics) AGV(lineID, agvID string) string {
	return fmt.Sprintf("%s/%s/agv/%s/status", t.root, lineID, agvID)
}

// Alerts carries fault and recovery notifications for one line.
func (t Topics) Alerts(lineID string) string {
	return fmt.Sprintf("%s/%s/alerts", t.root, lineID)
}

// Warehouse carries factory-global device statuses (warehouse and
// raw material intake).
func (t Topics) Warehouse(deviceID string) string {
	return fmt.Sprintf("%s/warehouse/%s/status", t.root, deviceID)
}

// Orders carries order creation and completion notices.
func (t Topics) Orders() string {
	return fmt.Sprintf("%s/orders/status", t.root)
}

// KPI carries the periodic score snapshots.
func (t Topics) KPI() string {
	return fmt.Sprintf("%s/kpi/status", t.root)
}

// Result carries the on-demand final score payload.
func (t Topics) Result() string {
	return fmt.Sprintf("%s/result/status", t.root)
}

// DeviceStatus routes a device's status to its kind-specific topic.
// Global devices publish under the warehouse namespace regardless of
// the line observing them.
func (t Topics) DeviceStatus(lineID string, d *Device) string {
	switch d.Kind {
	case DeviceKindConveyor:
		return t.Conveyor(lineID, string(d.ID))
	case DeviceKindRawMaterial, DeviceKindWarehouse:
		return t.Warehouse(string(d.ID))
	default:
		return t.Station(lineID, string(d.ID))
	}
}

// ParseCommandLine extracts the line segment from an inbound command
// topic of the form {root}/command/{line}. The boolean reports whether
// the topic matched this namespace's command pattern.
func (t Topics) ParseCommandLine(topic string) (string, bool) {
	prefix := t.root + "/command/"
	if !strings.HasPrefix(topic, prefix) {
		return "", false
	}
	line := topic[len(prefix):]
	if line == "" || strings.Contains(line, "/") {
		return "", false
	}
	return line, true
}

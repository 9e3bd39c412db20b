package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteTransition writes a completed power transition to InfluxDB.
//
// The write is non-blocking; data is batched and sent asynchronously.
// Transition duration is recorded in milliseconds so dashboards can
// aggregate latency per device and per action.
//
// Parameters:
//   - device: Device name (e.g., "uart0")
//   - action: The transition action (e.g., "resume", "suspend")
//   - fromState: State before the transition
//   - toState: State after the transition
//   - duration: How long the driver callback took
//   - failed: Whether the transition returned an error
//
// Example:
//
//	client.WriteTransition("uart0", "suspend", "active", "suspended", 12*time.Millisecond, false)
func (c *Client) WriteTransition(device, action, fromState, toState string, duration time.Duration, failed bool) {
	if !c.IsConnected() {
		return
	}

	result := "ok"
	if failed {
		result = "error"
	}

	point := write.NewPoint(
		"power_transition",
		map[string]string{
			"device": device,
			"action": action,
			"result": result,
		},
		map[string]interface{}{
			"duration_ms": float64(duration) / float64(time.Millisecond),
			"from_state":  fromState,
			"to_state":    toState,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteStateGauge writes the current power state of a device.
//
// States are encoded as a numeric gauge so Flux queries can graph
// occupancy of each state over time: 0=active, 1=low-power,
// 2=suspended, 3=off. Unknown states are recorded as -1.
//
// Parameters:
//   - device: Device name
//   - state: Current power state string
func (c *Client) WriteStateGauge(device, state string) {
	if !c.IsConnected() {
		return
	}

	var gauge int
	switch state {
	case "active":
		gauge = 0
	case "low-power":
		gauge = 1
	case "suspended":
		gauge = 2
	case "off":
		gauge = 3
	default:
		gauge = -1
	}

	point := write.NewPoint(
		"power_state",
		map[string]string{
			"device": device,
		},
		map[string]interface{}{
			"state":       state,
			"state_gauge": gauge,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for custom measurements that don't fit the helper methods.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
//
// Example:
//
//	client.WritePoint("system_stats",
//	    map[string]string{"host": "core-01"},
//	    map[string]interface{}{"cpu_percent": 45.2, "memory_mb": 512})
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}

// WritePointWithTime writes a custom point with a specific timestamp.
//
// Use this when the timestamp is not "now" (e.g., delayed data).
//
// Parameters:
//   - measurement: The measurement name
//   - tags: Key-value pairs for indexing
//   - fields: Key-value pairs for the data
//   - timestamp: The exact time for this data point
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}

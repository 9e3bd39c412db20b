package mqtt

import "fmt"

// Topic prefixes for PowerCore MQTT traffic.
//
// Device topics use the scheme: powercore/device/{name}/{kind}
const (
	// TopicPrefix is the base for all PowerCore topics.
	TopicPrefix = "powercore"

	// TopicPrefixDevice is the base for per-device topics.
	TopicPrefixDevice = "powercore/device"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "powercore/system"
)

// Topics provides builders for PowerCore MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	stateTopic := topics.DeviceState("uart0")
//	// Returns: "powercore/device/uart0/state"
type Topics struct{}

// DeviceState returns the canonical device power state topic.
// Published retained so new subscribers immediately see current state.
//
// Example: powercore/device/uart0/state
func (Topics) DeviceState(device string) string {
	return fmt.Sprintf("%s/%s/state", TopicPrefixDevice, device)
}

// DeviceTransition returns the topic for per-device transition events.
// One message per attempted transition, successful or failed.
//
// Example: powercore/device/uart0/transition
func (Topics) DeviceTransition(device string) string {
	return fmt.Sprintf("%s/%s/transition", TopicPrefixDevice, device)
}

// SystemStatus returns the daemon status topic (online/offline, LWT).
//
// Example: powercore/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// SystemSuspend returns the topic announcing bulk suspend and resume
// sweeps.
//
// Example: powercore/system/suspend
func (Topics) SystemSuspend() string {
	return fmt.Sprintf("%s/suspend", TopicPrefixSystem)
}

// =============================================================================
// Wildcard Patterns for Subscriptions
// =============================================================================

// AllDeviceStates returns a pattern matching every device state topic.
//
// Pattern: powercore/device/+/state
func (Topics) AllDeviceStates() string {
	return fmt.Sprintf("%s/+/state", TopicPrefixDevice)
}

// AllDeviceTransitions returns a pattern matching every device
// transition topic.
//
// Pattern: powercore/device/+/transition
func (Topics) AllDeviceTransitions() string {
	return fmt.Sprintf("%s/+/transition", TopicPrefixDevice)
}

// AllTopics returns a pattern matching all PowerCore topics.
// Use with caution - this receives ALL traffic.
//
// Pattern: powercore/#
func (Topics) AllTopics() string {
	return TopicPrefix + "/#"
}

// Package driver provides the device drivers PowerCore ships with.
//
// Drivers supply the action callback a device is registered with; the
// power engine calls it to perform hardware transitions. Two drivers
// are built in:
//
//	┌───────────────┐    resume/suspend     ┌──────────────┐
//	│  pm.Engine    │──────────────────────▶│  driver.Sim  │
//	└───────────────┘                       └──────────────┘
//	        │          suspend/resume        ┌───────────────────┐
//	        └───────────────────────────────▶│ driver.SimDomain  │
//	                                         │  turn-off before  │
//	                                         │  turn-on after    │
//	                                         └───────────────────┘
//
// Sim emulates a plain device with configurable transition latency and
// fault injection. SimDomain emulates a power rail: it cascades
// turn-off notifications to its domain members before cutting power
// and turn-on notifications after restoring it.
//
// Real hardware drivers implement pm.ActionFunc the same way and need
// nothing from this package.
package driver

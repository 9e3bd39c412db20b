// Package pm implements the device power-state engine for PowerCore.
//
// It decides, for every registered device, whether it is active,
// suspended, in a low-power mode, or off, and coordinates system-wide
// sleep/wake transitions and power-domain cascades across devices with
// real dependency relationships: a bus controller stays active while
// any device on that bus is in use; a shared rail is not switched off
// while a device it feeds is active.
//
// # Architecture
//
//	┌────────────────────────────────────────────────────────────────────┐
//	│                            Engine                                  │
//	│                                                                    │
//	│  ┌────────────────┐   ┌────────────────┐   ┌───────────────────┐  │
//	│  │   Transition   │   │   Dependency   │   │  Bulk Orchestrator│  │
//	│  │ (transition.go)│◀──│   (order.go)   │──▶│   (suspend.go)    │  │
//	│  │                │   │                │   │                   │  │
//	│  │ • validate     │   │ • DFS post-    │   │ • reverse walk    │  │
//	│  │ • run callback │   │   order        │   │ • busy/wake veto  │  │
//	│  │ • commit state │   │ • cycle check  │   │ • saved set       │  │
//	│  └────────────────┘   └────────────────┘   └───────────────────┘  │
//	│          ▲                                                         │
//	│          │            ┌────────────────┐   ┌───────────────────┐  │
//	│          ├────────────│ Runtime Arbiter│   │   Domain Cascade  │  │
//	│          │            │  (runtime.go)  │   │    (domain.go)    │  │
//	│          │            │                │   │                   │  │
//	│          │            │ • get/put      │   │ • membership      │  │
//	│          │            │ • usage count  │   │ • TurnOn/TurnOff  │  │
//	│          │            │ • sync waits   │   │   fan-out         │  │
//	│          │            └────────────────┘   └───────────────────┘  │
//	└────────────────────────────────────────────────────────────────────┘
//
// # Key Types
//
//   - Device: per-device power record (state, flags, usage count)
//   - Registry: process-wide device table, isolated per test
//   - Engine: transition validation, runtime arbitration, bulk walks
//   - Event: (device, old state, new state, result) tuples for sinks
//
// # Usage
//
//	reg := pm.NewRegistry()
//	uart := pm.NewDevice(pm.DeviceConfig{Name: "uart0", Action: drv.Action})
//	reg.Add(uart)
//
//	engine := pm.NewEngine(reg)
//	engine.SetLogger(log)
//	engine.RuntimeEnable(uart)
//
//	// Runtime power management
//	engine.GetSync(ctx, uart)  // device is Active on return
//	engine.Put(uart)           // suspends once the count drops to zero
//
//	// System sleep
//	engine.SuspendAll(pm.StateSuspended)
//	engine.ResumeAll()
//
// # Concurrency
//
// Multiple goroutines may call into the engine concurrently. A
// per-device mutex guards state, usage count and the in-progress flag
// together; it is never held across an action callback. Racing
// transition requests on one device are serialised by the in-progress
// flag and fail with ErrBusy rather than queueing. Busy/wakeup flags
// are atomic bits, independently settable from any context. GetSync and
// PutSync block the calling goroutine and must not be used from
// contexts that cannot sleep; such callers use Get and Put.
//
// The engine never retries a failed transition and never cancels one
// mid-flight: once an action callback has been invoked, the transition
// runs to completion before the device accepts a new request.
package pm

package pm

import "sync/atomic"

// Flag identifies a single bit in a device's atomic flag word.
type Flag uint32

// Device flags. Packed into one word so they can be toggled from any
// context, including ones that cannot take the device lock.
const (
	// FlagBusy vetoes bulk suspend for this device. Set by the driver
	// while it must not be interrupted (e.g. mid-transfer).
	FlagBusy Flag = 1 << iota

	// FlagWakeupCapable marks a device as able to generate wake events.
	FlagWakeupCapable

	// FlagWakeupEnabled excludes the device from bulk suspend so it
	// remains able to signal wake events. Only valid on wakeup-capable
	// devices.
	FlagWakeupEnabled

	// FlagIgnoreChildren stops this device's active state from
	// propagating a keep-active requirement to its power domain.
	FlagIgnoreChildren
)

// Flags is an atomic bitset of device flags.
//
// All operations use compare-and-swap semantics so concurrent
// read-modify-write updates never lose a bit.
type Flags struct {
	bits atomic.Uint32
}

// Test reports whether the flag is currently set.
func (f *Flags) Test(flag Flag) bool {
	return f.bits.Load()&uint32(flag) != 0
}

// Set sets the flag and returns its previous value.
func (f *Flags) Set(flag Flag) bool {
	for {
		old := f.bits.Load()
		if f.bits.CompareAndSwap(old, old|uint32(flag)) {
			return old&uint32(flag) != 0
		}
	}
}

// Clear clears the flag and returns its previous value.
func (f *Flags) Clear(flag Flag) bool {
	for {
		old := f.bits.Load()
		if f.bits.CompareAndSwap(old, old&^uint32(flag)) {
			return old&uint32(flag) != 0
		}
	}
}

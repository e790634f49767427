package grid

// AutoReload counts row insert/update operations and reports when the
// display should be rebuilt. A zero threshold disables it.
type AutoReload struct {
	threshold int
	count     int
}

// NewAutoReload returns a batcher that fires every threshold operations.
func NewAutoReload(threshold int) AutoReload {
	if threshold < 0 {
		threshold = 0
	}
	return AutoReload{threshold: threshold}
}

// Enabled reports whether a threshold is set.
func (a *AutoReload) Enabled() bool {
	return a.threshold > 0
}

// Threshold returns the configured threshold, 0 when disabled.
func (a *AutoReload) Threshold() int {
	return a.threshold
}

// Pending returns the number of operations counted since the last trigger.
func (a *AutoReload) Pending() int {
	return a.count
}

// Increment counts one operation and returns true when the threshold is
// reached, resetting the counter.
func (a *AutoReload) Increment() bool {
	if a.threshold == 0 {
		return false
	}
	a.count++
	if a.count >= a.threshold {
		a.count = 0
		return true
	}
	return false
}

// Reset clears the pending counter without changing the threshold.
func (a *AutoReload) Reset() {
	a.count = 0
}

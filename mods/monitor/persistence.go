package monitor

// Tracker debounces single-sample noise: a confirmed anomaly requires at
// least `threshold` abnormal verdicts within the last `capacity` samples.
// Confirmation is recomputed fresh on every push, never latched.
type Tracker struct {
	window    []bool
	capacity  int
	threshold int
}

func NewTracker(window, threshold int) *Tracker {
	return &Tracker{
		window:    make([]bool, 0, window),
		capacity:  window,
		threshold: threshold,
	}
}

// Push records the verdict and reports whether the anomaly is confirmed
// by the current window.
func (t *Tracker) Push(abnormal bool) bool {
	t.window = append(t.window, abnormal)
	if len(t.window) > t.capacity {
		t.window = t.window[1:]
	}
	return t.Count() >= t.threshold
}

// Count returns the number of abnormal verdicts in the window.
func (t *Tracker) Count() int {
	count := 0
	for _, b := range t.window {
		if b {
			count++
		}
	}
	return count
}

// Reset clears the verdict history.
func (t *Tracker) Reset() {
	t.window = t.window[:0]
}

package stats

import "math"

// Window is a fixed-capacity rolling sample buffer. Pushing a value when
// the buffer is full evicts the oldest sample.
type Window struct {
	buf   []float64
	head  int
	count int
}

// NewWindow allocates a window holding up to capacity samples.
func NewWindow(capacity int) *Window {
	if capacity <= 0 {
		capacity = 1
	}
	return &Window{buf: make([]float64, capacity)}
}

// Push appends a sample, evicting the oldest when full.
func (w *Window) Push(v float64) {
	if w.count < len(w.buf) {
		w.buf[(w.head+w.count)%len(w.buf)] = v
		w.count++
		return
	}
	w.buf[w.head] = v
	w.head = (w.head + 1) % len(w.buf)
}

// Len returns the number of held samples.
func (w *Window) Len() int {
	return w.count
}

// Cap returns the window capacity.
func (w *Window) Cap() int {
	return len(w.buf)
}

// Full reports whether the window holds capacity samples.
func (w *Window) Full() bool {
	return w.count == len(w.buf)
}

// At returns the i-th sample, oldest first.
func (w *Window) At(i int) float64 {
	return w.buf[(w.head+i)%len(w.buf)]
}

// Last returns the most recent sample.
func (w *Window) Last() float64 {
	return w.At(w.count - 1)
}

// Values copies the held samples oldest-first into a new slice.
func (w *Window) Values() []float64 {
	out := make([]float64, w.count)
	for i := 0; i < w.count; i++ {
		out[i] = w.At(i)
	}
	return out
}

// Mean returns the arithmetic mean of the held samples.
func (w *Window) Mean() float64 {
	return Mean(w.Values())
}

// StdDev returns the population standard deviation of the held samples.
func (w *Window) StdDev() float64 {
	return StdDev(w.Values())
}

// Mean returns the arithmetic mean of xs, or 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// StdDev returns the population standard deviation of xs.
func StdDev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	mean := Mean(xs)
	sum := 0.0
	for _, x := range xs {
		d := x - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)))
}

// Slope fits a first-degree least-squares line of y on x over aligned
// samples and returns its slope. ok is false when the windows are
// misaligned, hold fewer than two samples, or x has no variance.
func Slope(x, y *Window) (slope float64, ok bool) {
	n := x.Len()
	if n < 2 || n != y.Len() {
		return 0, false
	}
	var sumX, sumY, sumXY, sumXX float64
	for i := 0; i < n; i++ {
		xi, yi := x.At(i), y.At(i)
		sumX += xi
		sumY += yi
		sumXY += xi * yi
		sumXX += xi * xi
	}
	fn := float64(n)
	den := fn*sumXX - sumX*sumX
	if den == 0 {
		return 0, false
	}
	return (fn*sumXY - sumX*sumY) / den, true
}

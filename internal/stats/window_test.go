package stats

import (
	"math"
	"testing"
)

func TestWindowEvictsOldest(t *testing.T) {
	w := NewWindow(3)
	for _, v := range []float64{1, 2, 3, 4, 5} {
		w.Push(v)
	}
	if w.Len() != 3 {
		t.Fatalf("len = %d, want 3", w.Len())
	}
	want := []float64{3, 4, 5}
	for i, v := range want {
		if got := w.At(i); got != v {
			t.Fatalf("At(%d) = %v, want %v", i, got, v)
		}
	}
	if w.Last() != 5 {
		t.Fatalf("Last = %v, want 5", w.Last())
	}
}

func TestWindowStdDev(t *testing.T) {
	w := NewWindow(5)
	for _, v := range []float64{2, 4, 4, 4, 5} {
		w.Push(v)
	}
	w.Push(5)
	w.Push(7)
	w.Push(9)
	// window now holds [4 4 5 5 7 9] truncated to cap 5: [4 5 5 7 9]
	want := StdDev([]float64{4, 5, 5, 7, 9})
	if got := w.StdDev(); math.Abs(got-want) > 1e-12 {
		t.Fatalf("StdDev = %v, want %v", got, want)
	}
}

func TestStdDevPopulation(t *testing.T) {
	got := StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if math.Abs(got-2) > 1e-12 {
		t.Fatalf("StdDev = %v, want 2", got)
	}
	if StdDev(nil) != 0 {
		t.Fatal("StdDev of empty slice should be 0")
	}
}

func TestSlopePerfectLine(t *testing.T) {
	x := NewWindow(10)
	y := NewWindow(10)
	for i := 0; i < 10; i++ {
		x.Push(float64(100 + i))
		y.Push(float64(2 * (100 + i)))
	}
	slope, ok := Slope(x, y)
	if !ok {
		t.Fatal("expected slope to be defined")
	}
	if math.Abs(slope-2) > 1e-9 {
		t.Fatalf("slope = %v, want 2", slope)
	}
}

func TestSlopeDegenerate(t *testing.T) {
	x := NewWindow(5)
	y := NewWindow(5)
	x.Push(1)
	y.Push(1)
	if _, ok := Slope(x, y); ok {
		t.Fatal("single sample should not define a slope")
	}
	x.Push(1)
	y.Push(3)
	if _, ok := Slope(x, y); ok {
		t.Fatal("zero x variance should not define a slope")
	}
	y.Push(4)
	if _, ok := Slope(x, y); ok {
		t.Fatal("misaligned windows should not define a slope")
	}
}

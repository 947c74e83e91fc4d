package model

import "testing"

func TestAlignTick(t *testing.T) {
	cases := []struct {
		price, tick, want Price
	}{
		{10050, 100, 10000},
		{10000, 100, 10000},
		{10099, 100, 10000},
		{10100, 100, 10100},
		{7, 0, 7},
	}
	for _, c := range cases {
		if got := AlignTick(c.price, c.tick); got != c.want {
			t.Fatalf("AlignTick(%d, %d) = %d, want %d", c.price, c.tick, got, c.want)
		}
	}
}

func TestTickBounds(t *testing.T) {
	if got := MinBidNearestTick(1, 100); got != 100 {
		t.Fatalf("MinBidNearestTick = %d, want 100", got)
	}
	if got := MaxAskNearestTick(2147483647, 100); got != 2147483600 {
		t.Fatalf("MaxAskNearestTick = %d, want 2147483600", got)
	}
}

func TestMid(t *testing.T) {
	if got := Mid(9900, 10100); got != 10000 {
		t.Fatalf("Mid = %d, want 10000", got)
	}
}

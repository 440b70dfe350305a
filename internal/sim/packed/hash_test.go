package packed

import (
	"math"
	"testing"
)

func TestPacked_KnownVectors(t *testing.T) {
	// Reference values computed independently with arbitrary-precision
	// arithmetic and explicit 32/64-bit truncation.
	cases := []struct {
		x, y, z int32
		anyY    bool
		want    uint16
	}{
		{0, 0, 0, false, 0x000},
		{1, 64, -1, false, 0x290},
		{1, 64, -1, true, 0x219},
		{1, 0, -1, false, 0x219},
		{-5, 70, 12, false, 0x272},
		{123456, -60, -987654, false, 0x9bb},
		{30000000, 320, -30000000, false, 0x315},
		{math.MaxInt32, 0, math.MinInt32, false, 0x340},
		{100, 64, 100, false, 0x8fd},
		{100, 64, 100, true, 0x6c9},
		{7, 0, 3, false, 0xf0e},
		{-1, -1, -1, false, 0xef2},
	}
	for _, c := range cases {
		got := Packed(c.x, c.y, c.z, c.anyY)
		if got != c.want {
			t.Fatalf("Packed(%d,%d,%d,%v)=%#x want %#x", c.x, c.y, c.z, c.anyY, got, c.want)
		}
	}
}

func TestPacked_Deterministic(t *testing.T) {
	for x := int32(-20); x <= 20; x += 3 {
		for z := int32(-20); z <= 20; z += 5 {
			a := Packed(x, 63, z, false)
			b := Packed(x, 63, z, false)
			if a != b {
				t.Fatalf("non-deterministic at (%d,63,%d): %#x vs %#x", x, z, a, b)
			}
			if a > Mask12 {
				t.Fatalf("signature exceeds 12 bits at (%d,63,%d): %#x", x, z, a)
			}
		}
	}
}

func TestPacked_AnyYIgnoresY(t *testing.T) {
	for x := int32(-8); x <= 8; x++ {
		for z := int32(-8); z <= 8; z++ {
			want := Packed(x, 0, z, true)
			for _, y := range []int32{-64, -1, 1, 62, 319, math.MaxInt32} {
				if got := Packed(x, y, z, true); got != want {
					t.Fatalf("anyY result depends on y at (%d,%d,%d): %#x want %#x", x, y, z, got, want)
				}
			}
		}
	}
}

func TestPacked_AnyYEqualsYZero(t *testing.T) {
	if Packed(3, 0, 9, false) != Packed(3, 200, 9, true) {
		t.Fatalf("anyY should hash as y=0")
	}
}

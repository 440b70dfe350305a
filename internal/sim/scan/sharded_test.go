package scan

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"
)

func TestBoxSplit_CoversInOrder(t *testing.T) {
	cases := []struct {
		name string
		b    Box
		n    int
		want int
	}{
		{"along y", Box{X0: 0, X1: 3, Y0: 0, Y1: 9, Z0: 0, Z1: 2}, 4, 4},
		{"single y splits z", Box{X0: 0, X1: 3, Y0: 5, Y1: 5, Z0: 0, Z1: 2}, 8, 3},
		{"anyY splits z", Box{X0: 0, X1: 3, Y0: 0, Y1: 9, Z0: -4, Z1: 4, AnyY: true}, 2, 2},
		{"one worker", Box{X0: 0, X1: 3, Y0: 0, Y1: 9, Z0: 0, Z1: 2}, 0, 1},
		{"extreme", Box{Y0: math.MinInt32, Y1: math.MaxInt32}, 3, 3},
	}
	for _, tc := range cases {
		slabs := tc.b.Split(tc.n)
		if len(slabs) != tc.want {
			t.Fatalf("%s: got %d slabs want %d", tc.name, len(slabs), tc.want)
		}
		var rows uint64
		for _, s := range slabs {
			if err := s.Validate(); err != nil {
				t.Fatalf("%s: invalid slab %+v: %v", tc.name, s, err)
			}
			rows += s.Rows()
		}
		if rows != tc.b.Rows() {
			t.Fatalf("%s: slabs cover %d rows want %d", tc.name, rows, tc.b.Rows())
		}
	}
}

func TestBoxVolume_Saturates(t *testing.T) {
	b := Box{X0: math.MinInt32, X1: math.MaxInt32, Y0: math.MinInt32, Y1: math.MaxInt32, Z0: math.MinInt32, Z1: math.MaxInt32}
	if b.Volume() != math.MaxUint64 {
		t.Fatalf("volume should saturate, got %d", b.Volume())
	}

	yz := Box{Y0: math.MinInt32, Y1: math.MaxInt32, Z0: math.MinInt32, Z1: math.MaxInt32}
	if yz.Rows() != math.MaxUint64 || yz.Volume() != math.MaxUint64 {
		t.Fatalf("full y*z range should saturate: rows=%d volume=%d", yz.Rows(), yz.Volume())
	}
	if got := capHint(50, yz); got != 50 {
		t.Fatalf("capHint=%d want 50", got)
	}
	if got := (Box{Y1: math.MaxInt32, Z1: 1, AnyY: true}).Rows(); got != 2 {
		t.Fatalf("anyY rows=%d want 2", got)
	}

	if got := (Box{X1: 1, Y1: 2, Z1: 3}).Volume(); got != 24 {
		t.Fatalf("volume=%d want 24", got)
	}
	if got := (Box{X1: 1, Y1: 2, Z1: 3, AnyY: true}).Volume(); got != 8 {
		t.Fatalf("anyY volume=%d want 8", got)
	}
}

func TestStrictSharded_MatchesSequential(t *testing.T) {
	defer goleak.VerifyNone(t)

	c := FromEntries([]Entry{
		{Packed: 0x003, Mask: 0x00F},
		{DZ: 2, Packed: 0xC00, Mask: 0xF00, Drip: true},
	})
	b := Box{X0: -25, X1: 25, Y0: 60, Y1: 67, Z0: -25, Z1: 25}
	for _, limit := range []uint32{0, 1, 7, math.MaxUint32} {
		want, err := Strict(context.Background(), c, b, limit)
		if err != nil {
			t.Fatalf("Strict: %v", err)
		}
		for _, workers := range []int{1, 2, 3, 8, 64} {
			got, err := StrictSharded(context.Background(), c, b, limit, workers)
			if err != nil {
				t.Fatalf("StrictSharded: %v", err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("max=%d workers=%d (-seq +sharded):\n%s", limit, workers, diff)
			}
		}
	}
}

func TestScoredSharded_MatchesSequential(t *testing.T) {
	defer goleak.VerifyNone(t)

	c := FromEntries([]Entry{
		{Packed: 0x007, Mask: 0x00F},
		{DX: 1, Packed: 0x200, Mask: 0xF00, Drip: true},
	})
	b := Box{X0: -20, X1: 20, Y0: 0, Y1: 0, Z0: -20, Z1: 20, AnyY: true}
	p := ScoreParams{Tolerance: 2, MaxScore: 3}
	want, err := Scored(context.Background(), c, b, 25, p)
	if err != nil {
		t.Fatalf("Scored: %v", err)
	}
	got, err := ScoredSharded(context.Background(), c, b, 25, p, 5)
	if err != nil {
		t.Fatalf("ScoredSharded: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("(-seq +sharded):\n%s", diff)
	}
}

func TestSharded_ValidatesAndCancels(t *testing.T) {
	defer goleak.VerifyNone(t)

	if _, err := StrictSharded(context.Background(), FromEntries(nil), Box{X0: 1}, 5, 4); !errors.Is(err, ErrInvalidBounds) {
		t.Fatalf("expected invalid bounds, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b := Box{X0: 0, X1: 100, Y0: 0, Y1: 100, Z0: 0, Z1: 100}
	out, err := StrictSharded(ctx, FromEntries(nil), b, math.MaxUint32, 4)
	if !errors.Is(err, context.Canceled) || out != nil {
		t.Fatalf("expected cancellation, got err=%v len=%d", err, len(out))
	}
}

func TestMergePrefix(t *testing.T) {
	parts := [][]int{{1, 2}, nil, {3, 4, 5}, {6}}
	if diff := cmp.Diff([]int{1, 2, 3, 4}, mergePrefix(parts, 4)); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1, 2, 3, 4, 5, 6}, mergePrefix(parts, 100)); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestSharded_StopsLaterSlabsOnceFull(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	b := Box{X0: 0, X1: 3, Y0: 0, Y1: 3, Z0: 0, Z1: 0}
	run := func(ctx context.Context, sb Box) ([]Match, error) {
		if sb.Y0 == 0 {
			return []Match{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}}, nil
		}
		// Later slabs only finish when cancelled.
		<-ctx.Done()
		return nil, ctx.Err()
	}
	got, err := sharded(ctx, b, 4, 2, run)
	if err != nil {
		t.Fatalf("sharded: %v", err)
	}
	if diff := cmp.Diff([]Match{{X: 0, Y: 0}, {X: 1, Y: 0}}, got); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestSharded_WaitsForEarlierSlabs(t *testing.T) {
	defer goleak.VerifyNone(t)

	b := Box{X0: 0, X1: 3, Y0: 0, Y1: 2, Z0: 0, Z1: 0}
	release := make(chan struct{})
	run := func(ctx context.Context, sb Box) ([]Match, error) {
		switch sb.Y0 {
		case 0:
			<-release
			return []Match{{X: 0, Y: 0}}, nil
		case 1:
			// Enough on its own, but slab 0 is still running.
			defer close(release)
			return []Match{{X: 0, Y: 1}, {X: 1, Y: 1}}, nil
		default:
			return []Match{{X: 0, Y: 2}}, nil
		}
	}
	got, err := sharded(context.Background(), b, 3, 2, run)
	if err != nil {
		t.Fatalf("sharded: %v", err)
	}
	if diff := cmp.Diff([]Match{{X: 0, Y: 0}, {X: 0, Y: 1}}, got); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestPrefixTracker(t *testing.T) {
	pt := newPrefixTracker(3, 4)
	if pt.complete(2, 10) {
		t.Fatalf("slab 2 alone is not a leading run")
	}
	if pt.complete(0, 1) {
		t.Fatalf("prefix holds 1 of 4")
	}
	if !pt.complete(1, 0) || !pt.isFull() {
		t.Fatalf("prefix 0..2 holds 11 and should be full")
	}
}

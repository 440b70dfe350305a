package scan

import (
	"context"
	"math"
	"math/bits"
)

// Box is an inclusive candidate region. Candidates are visited with y
// outermost, then z, then x. With AnyY set only the y=Y0 layer is visited.
type Box struct {
	X0, X1 int32
	Y0, Y1 int32
	Z0, Z1 int32
	AnyY   bool
}

func (b Box) Validate() error {
	if b.X0 > b.X1 {
		return invalidBounds("x", b.X0, b.X1)
	}
	if b.Y0 > b.Y1 {
		return invalidBounds("y", b.Y0, b.Y1)
	}
	if b.Z0 > b.Z1 {
		return invalidBounds("z", b.Z0, b.Z1)
	}
	return nil
}

func span(lo, hi int32) uint64 {
	return uint64(int64(hi)-int64(lo)) + 1
}

func (b Box) ySpan() uint64 {
	if b.AnyY {
		return 1
	}
	return span(b.Y0, b.Y1)
}

func mulSat(a, b uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return math.MaxUint64
	}
	return lo
}

// Rows is the number of x-runs in the box, saturating at math.MaxUint64.
func (b Box) Rows() uint64 {
	return mulSat(b.ySpan(), span(b.Z0, b.Z1))
}

// Volume is the candidate count, saturating at math.MaxUint64.
func (b Box) Volume() uint64 {
	return mulSat(b.Rows(), span(b.X0, b.X1))
}

// walk visits candidates in scan order until visit returns false. The context
// is checked once per row.
func (b Box) walk(ctx context.Context, visit func(x, y, z int32) bool) error {
	yEnd := b.Y1
	if b.AnyY {
		yEnd = b.Y0
	}
	for y := b.Y0; ; y++ {
		for z := b.Z0; ; z++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			for x := b.X0; ; x++ {
				if !visit(x, y, z) {
					return nil
				}
				if x == b.X1 {
					break
				}
			}
			if z == b.Z1 {
				break
			}
		}
		if y == yEnd {
			break
		}
	}
	return nil
}

// Split cuts the box into at most n slabs along its outermost varying axis.
// Concatenating the slabs' scan orders gives the box's scan order.
func (b Box) Split(n int) []Box {
	if n < 1 {
		n = 1
	}
	alongY := !b.AnyY && b.Y0 != b.Y1
	lo, hi := b.Z0, b.Z1
	if alongY {
		lo, hi = b.Y0, b.Y1
	}
	total := int64(hi) - int64(lo) + 1
	if int64(n) > total {
		n = int(total)
	}
	step := (total + int64(n) - 1) / int64(n)

	out := make([]Box, 0, n)
	for start := int64(lo); start <= int64(hi); start += step {
		end := start + step - 1
		if end > int64(hi) {
			end = int64(hi)
		}
		sb := b
		if alongY {
			sb.Y0, sb.Y1 = int32(start), int32(end)
		} else {
			sb.Z0, sb.Z1 = int32(start), int32(end)
		}
		out = append(out, sb)
	}
	return out
}

// capHint sizes output buffers. It only affects capacity.
func capHint(maxMatches uint32, b Box) int {
	const limit = 1 << 16
	c := uint64(maxMatches)
	if v := b.Volume(); v < c {
		c = v
	}
	if c > limit {
		c = limit
	}
	return int(c)
}

package scan

import "grassfinder.dev/internal/sim/packed"

// Constraints holds the constraint entries as six parallel sequences. Entry i
// is (DX[i], DY[i], DZ[i], Packed[i], Mask[i], Drip[i]).
type Constraints struct {
	DX, DY, DZ []int32
	Packed     []uint16
	Mask       []uint16
	Drip       []bool
}

// Entry is one constraint in row form.
type Entry struct {
	DX, DY, DZ int32
	Packed     uint16
	Mask       uint16
	Drip       bool
}

// FromEntries transposes row-form entries into parallel sequences.
func FromEntries(entries []Entry) Constraints {
	n := len(entries)
	c := Constraints{
		DX:     make([]int32, n),
		DY:     make([]int32, n),
		DZ:     make([]int32, n),
		Packed: make([]uint16, n),
		Mask:   make([]uint16, n),
		Drip:   make([]bool, n),
	}
	for i, e := range entries {
		c.DX[i], c.DY[i], c.DZ[i] = e.DX, e.DY, e.DZ
		c.Packed[i] = e.Packed
		c.Mask[i] = e.Mask
		c.Drip[i] = e.Drip
	}
	return c
}

func (c Constraints) Len() int { return len(c.DX) }

func (c Constraints) Validate() error {
	n := len(c.DX)
	if len(c.DY) != n || len(c.DZ) != n || len(c.Packed) != n || len(c.Mask) != n || len(c.Drip) != n {
		return lengthMismatch(c)
	}
	return nil
}

// MatchAt evaluates every entry against the candidate origin (x, y, z),
// stopping at the first entry that fails.
func (c Constraints) MatchAt(x, y, z int32, anyY bool) bool {
	for i := range c.DX {
		pred := packed.Packed(x+c.DX[i], y+c.DY[i], z+c.DZ[i], anyY)
		if !packed.Matches(pred, c.Packed[i], c.Mask[i], c.Drip[i]) {
			return false
		}
	}
	return true
}

// ScoreParams bounds a scored scan. Axis distances up to Tolerance add
// linearly; larger ones add their square.
type ScoreParams struct {
	Tolerance int32
	MaxScore  int32
}

// ScoreAt accumulates the penalty of the candidate origin. ok is false as soon
// as the running score exceeds p.MaxScore; later entries are not consulted.
func (c Constraints) ScoreAt(x, y, z int32, anyY bool, p ScoreParams) (score int32, ok bool) {
	for i := range c.DX {
		pred := packed.Packed(x+c.DX[i], y+c.DY[i], z+c.DZ[i], anyY)
		mask := c.Mask[i]
		for axis := 0; axis < packed.NumAxes; axis++ {
			if packed.Nibble(mask, axis) == 0 {
				continue
			}
			d := packed.AxisDistance(pred, c.Packed[i], axis, c.Drip[i])
			if d <= p.Tolerance {
				score += d
			} else {
				score += d * d
			}
			if score > p.MaxScore {
				return 0, false
			}
		}
	}
	return score, true
}

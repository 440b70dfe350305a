package packed

// Axes in nibble order. The vertical axis never uses drip tolerance.
const (
	AxisX = 0
	AxisY = 1
	AxisZ = 2

	NumAxes = 3
)

const (
	dripLowMax  = 3
	dripHighMin = 12
)

// Zone classifies a horizontal nibble for drip matching.
type Zone uint8

const (
	ZoneMid Zone = iota
	ZoneLow
	ZoneHigh
)

func (z Zone) String() string {
	switch z {
	case ZoneLow:
		return "low"
	case ZoneHigh:
		return "high"
	default:
		return "mid"
	}
}

func ZoneOf(n uint8) Zone {
	switch {
	case n <= dripLowMax:
		return ZoneLow
	case n >= dripHighMin:
		return ZoneHigh
	default:
		return ZoneMid
	}
}

// Nibble extracts the 4-bit slice of v for axis.
func Nibble(v uint16, axis int) uint8 {
	return uint8((v >> (uint(axis) * 4)) & 0xF)
}

// DripMatches reports whether pred lands in the same zone as exp. Mid values
// must match exactly.
func DripMatches(exp, pred uint8) bool {
	switch ZoneOf(exp) {
	case ZoneLow:
		return pred <= dripLowMax
	case ZoneHigh:
		return pred >= dripHighMin
	default:
		return pred == exp
	}
}

// DripDistance is how far pred is from satisfying DripMatches(exp, pred).
func DripDistance(exp, pred uint8) int32 {
	switch ZoneOf(exp) {
	case ZoneLow:
		if pred <= dripLowMax {
			return 0
		}
		return int32(pred) - dripLowMax
	case ZoneHigh:
		if pred >= dripHighMin {
			return 0
		}
		return dripHighMin - int32(pred)
	default:
		return absDiff(exp, pred)
	}
}

// Matches applies one constraint entry to a predicted signature.
//
// Exact entries compare (pred & mask) against exp as a single value; the mask is
// not split into nibbles. Drip entries check each axis whose mask nibble is
// nonzero, with zone matching on x and z and exact matching on y.
func Matches(pred, exp, mask uint16, drip bool) bool {
	if !drip {
		return pred&mask == exp
	}
	for axis := 0; axis < NumAxes; axis++ {
		if Nibble(mask, axis) == 0 {
			continue
		}
		pn := Nibble(pred, axis)
		en := Nibble(exp, axis)
		if axis == AxisY {
			if pn != en {
				return false
			}
			continue
		}
		if !DripMatches(en, pn) {
			return false
		}
	}
	return true
}

// AxisDistance is the per-axis penalty base used by scored scans.
func AxisDistance(pred, exp uint16, axis int, drip bool) int32 {
	pn := Nibble(pred, axis)
	en := Nibble(exp, axis)
	if drip && axis != AxisY {
		return DripDistance(en, pn)
	}
	return absDiff(en, pn)
}

func absDiff(a, b uint8) int32 {
	d := int32(a) - int32(b)
	if d < 0 {
		return -d
	}
	return d
}

package packed

const (
	xMul  = 3129871
	zMul  = 116129781
	lMul  = 42317861
	lMul2 = 11

	// Mask12 covers the three axis nibbles of a signature.
	Mask12 = 0xFFF
)

// Packed returns the 12-bit random offset signature the generator derives for
// the block at (x, y, z). With anyY set the y coordinate is ignored, matching
// generator versions that hash only x and z.
//
// The x term is multiplied in 32 bits and then sign-extended, while the z term
// is multiplied in 64 bits. Both must stay that way to be bit-exact.
func Packed(x, y, z int32, anyY bool) uint16 {
	if anyY {
		y = 0
	}
	xTerm := int64(x * xMul)
	zTerm := int64(z) * zMul
	l := xTerm ^ zTerm ^ int64(y)
	l = l*l*lMul + l*lMul2
	return uint16((uint64(l) >> 16) & Mask12)
}

package vm

import "math"

// pow implements BASIC's ^ operator: math.Pow with integer fast paths
// left to the stdlib, since no teacher/example repo carries a custom
// power routine worth grounding this on.
func pow(lhs, rhs float64) float64 {
	return math.Pow(lhs, rhs)
}

// mod implements BASIC's MOD operator, which (unlike Go's math.Mod)
// takes the sign of the divisor rather than the dividend.
func mod(lhs, rhs float64) float64 {
	r := math.Mod(lhs, rhs)
	if r != 0 && (r < 0) != (rhs < 0) {
		r += rhs
	}
	return r
}

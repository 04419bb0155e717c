// Package interp provides helpers for interpolating between table samples.
package interp

import "golang.org/x/exp/constraints"

// Linear does linear interpolation between a and b:
//
//	Linear(a, b, c) = (1-c)*a + c*b
//	                = a + c*(b-a)
//
// The last form saves a multiplication, which matters on the per-sample path.
// The result is exactly a at c=0 and exactly b at c=1.
func Linear[F constraints.Float](a, b, c F) F {
	if c == 1 {
		return b
	}
	return a + (b-a)*c
}

// SPDX-License-Identifier: MIT
//
// Package bitint provides the power-of-two helpers used to size transforms.
// All functions are allocation free and run in constant time.
package bitint

import "math/bits"

// NextPowerOfTwo returns the smallest power of two >= size. Non-positive
// sizes return 1.
//
// Subtracting one before taking the bit length keeps exact powers of two
// unchanged: for 8, bits.Len(7) is 3 and 1<<3 is 8 again.
//
//	Input  Output
//	4      4
//	5      8
//	0      1
//	-1     1
func NextPowerOfTwo(size int) int {
	if size <= 0 {
		return 1
	}
	return 1 << bits.Len(uint(size-1))
}

// IsPowerOfTwo reports whether n is a positive power of two. A power of two
// has one bit set, so n&(n-1) clears it to zero.
func IsPowerOfTwo(n int) bool {
	return n > 0 && (n&(n-1)) == 0
}

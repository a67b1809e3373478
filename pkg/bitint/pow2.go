// SPDX-License-Identifier: MIT

/*
Package bitint provides the small power-of-two helpers used when sizing
FFT frames and validating configured transform sizes.

Usage:

	// Round a requested analysis size up to something radix-2 friendly
	size := bitint.NextPowerOfTwo(1000) // Returns 1024

	// Reject configured FFT sizes that are not powers of two
	ok := bitint.IsPowerOfTwo(fftSize)

NextPowerOfTwo subtracts one from size before locating the highest set
bit. Without the subtraction an exact power of two would be doubled:
bits.Len(8) is 4, and 1<<4 is 16.
*/
package bitint

import "math/bits"

// NextPowerOfTwo returns the next power of 2 >= size.
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

// PrevPowerOfTwo returns the largest power of 2 <= size, or 0 when size
// is not positive.
func PrevPowerOfTwo(size int) int {
	if size <= 0 {
		return 0
	}
	return 1 << (bits.Len(uint(size)) - 1)
}

// IsPowerOfTwo checks if n is a power of 2. Powers of two have exactly
// one bit set, so n&(n-1) clears it and leaves zero.
func IsPowerOfTwo(n int) bool {
	return n > 0 && (n&(n-1)) == 0
}

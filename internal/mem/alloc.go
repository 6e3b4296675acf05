package mem

import "unsafe"

// Alignment is the byte alignment used for arena backing regions (64 bytes,
// one cache line on common hardware).
const Alignment = 64

// AllocAligned returns a zeroed byte slice of length size whose first byte
// sits on a 64-byte boundary. It over-allocates by one alignment unit and
// slices into the padding; the backing array stays reachable through the
// returned slice.
func AllocAligned(size int) []byte {
	if size <= 0 {
		return nil
	}

	raw := make([]byte, size+Alignment)

	base := uintptr(unsafe.Pointer(unsafe.SliceData(raw))) //nolint:gosec // alignment needs the raw address
	pad := -base & (Alignment - 1)
	return raw[pad : pad+uintptr(size)]
}

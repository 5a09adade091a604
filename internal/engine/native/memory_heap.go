//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package native

// Platforms without anonymous mappings fall back to heap memory. The
// ownership and release rules stay the same.

func allocate(size int) ([]byte, error) {
	return make([]byte, size), nil
}

func deallocate([]byte) error {
	return nil
}

//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package native

import (
	"github.com/cockroachdb/errors"
	"golang.org/x/sys/unix"
)

func allocate(size int) ([]byte, error) {
	mem, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, errors.Wrapf(err, "mmap %d bytes", size)
	}
	return mem, nil
}

func deallocate(mem []byte) error {
	if err := unix.Munmap(mem); err != nil {
		return errors.Wrap(err, "munmap")
	}
	return nil
}

//go:build windows

package fileutil

import (
	"errors"
	"syscall"
)

// errorNotSameDevice is ERROR_NOT_SAME_DEVICE from winerror.h.
const errorNotSameDevice syscall.Errno = 17

// isCrossDevice reports whether a rename failed because src and dst are on
// different volumes.
func isCrossDevice(err error) bool {
	return errors.Is(err, errorNotSameDevice)
}

package deckdev

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// KD console modes from linux/kd.h
const (
	kdText     = 0x00
	kdGraphics = 0x01
	kdSetMode  = 0x4B3A // KDSETMODE ioctl
)

// setGraphicsMode switches the active console to graphics mode so the
// hardware cursor never flickers over the preview.
func setGraphicsMode() error { return setConsoleMode(kdGraphics) }

// restoreTextMode returns the console to normal text mode.
func restoreTextMode() error { return setConsoleMode(kdText) }

func setConsoleMode(mode int) error {
	paths := []string{"/dev/tty", "/dev/tty0"}
	var lastErr error
	for _, path := range paths {
		fd, err := unix.Open(path, unix.O_RDONLY, 0)
		if err != nil {
			lastErr = fmt.Errorf("open %s: %w", path, err)
			continue
		}
		err = unix.IoctlSetInt(fd, kdSetMode, mode)
		unix.Close(fd)
		if err != nil {
			lastErr = fmt.Errorf("KDSETMODE on %s: %w", path, err)
			continue
		}
		return nil
	}
	return lastErr
}

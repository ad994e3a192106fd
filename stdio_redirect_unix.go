//go:build unix

package main

import (
	"os"

	"golang.org/x/sys/unix"
)

// redirectStdIO points stdout and stderr at the given file. With the
// framebuffer preview the console sits in graphics mode, so terminal output
// is invisible; appending to a file keeps logs and panic traces inspectable
// after the fact. Duplicating at the descriptor level catches writes that
// bypass os.Stdout, including the runtime's own.
func redirectStdIO(path string) error {
	if path == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := unix.Dup2(int(f.Fd()), int(os.Stdout.Fd())); err != nil {
		return err
	}
	return unix.Dup2(int(f.Fd()), int(os.Stderr.Fd()))
}

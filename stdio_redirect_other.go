//go:build !unix

package main

import "os"

// redirectStdIO swaps the os.Stdout and os.Stderr values on platforms
// without Dup2. Runtime panic traces still go to the original stderr
// descriptor here; the real capture lives in the unix build.
func redirectStdIO(path string) error {
	if path == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	os.Stdout = f
	os.Stderr = f
	return nil
}

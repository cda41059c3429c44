//go:build !unix

package main

import (
	"os"
	"runtime/debug"
)

// redirectStdIO swaps the os.Stdout and os.Stderr values and registers the
// file as crash output, since descriptors cannot be duplicated here.
func redirectStdIO(path string) error {
	if path == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if err := debug.SetCrashOutput(f, debug.CrashOptions{}); err != nil {
		return err
	}
	os.Stdout = f
	os.Stderr = f
	return nil
}

//go:build unix

package main

import (
	"os"

	"golang.org/x/sys/unix"
)

// redirectStdIO points the stdout and stderr descriptors at path so prints
// from any goroutine and runtime panics land in the file.
func redirectStdIO(path string) error {
	if path == "" {
		return nil
	}
	f, err := openAppend(path)
	if err != nil {
		return err
	}
	defer f.Close()
	for _, std := range []*os.File{os.Stdout, os.Stderr} {
		if err := unix.Dup2(int(f.Fd()), int(std.Fd())); err != nil {
			return err
		}
	}
	return nil
}

func openAppend(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
}

//go:build !linux

package system

import "context"

type keyboardExitLogger interface {
	Infof(string, string, ...interface{})
	Errorf(string, string, ...interface{})
}

// StartExitOnKey needs evdev and does nothing off linux.
func StartExitOnKey(ctx context.Context, logger keyboardExitLogger, key uint16, onExit func()) {
	if logger != nil {
		logger.Infof("input", "%s exit unavailable on this platform", KeyName(key))
	}
}

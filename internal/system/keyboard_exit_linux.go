//go:build linux

package system

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sys/unix"
)

const (
	evKey      = 0x01
	keyPressed = 1
	pollMillis = 250
)

type keyboardExitLogger interface {
	Infof(string, string, ...interface{})
	Errorf(string, string, ...interface{})
}

// inputEventLayout describes struct input_event: a timeval followed by
// u16 type, u16 code and s32 value.
type inputEventLayout struct {
	tvSize int
	size   int
}

func nativeInputEventLayout() inputEventLayout {
	tv := binary.Size(unix.Timeval{})
	if tv <= 0 {
		tv = 16
	}
	return inputEventLayout{tvSize: tv, size: tv + 8}
}

// pressed reports whether buf holds a press of key. Partial trailing
// records are ignored.
func (l inputEventLayout) pressed(buf []byte, key uint16) bool {
	for off := 0; off+l.size <= len(buf); off += l.size {
		rec := buf[off+l.tvSize : off+l.size]
		typ := binary.LittleEndian.Uint16(rec[0:2])
		code := binary.LittleEndian.Uint16(rec[2:4])
		value := int32(binary.LittleEndian.Uint32(rec[4:8]))
		if typ == evKey && code == key && value == keyPressed {
			return true
		}
	}
	return false
}

// StartExitOnKey watches every /dev/input/event* device and calls onExit
// once when key goes down on any of them. Without devices it logs and
// returns.
func StartExitOnKey(ctx context.Context, logger keyboardExitLogger, key uint16, onExit func()) {
	if onExit == nil {
		return
	}
	name := KeyName(key)
	paths, err := filepath.Glob("/dev/input/event*")
	if err != nil || len(paths) == 0 {
		if logger != nil {
			logger.Infof("input", "no evdev devices found for %s exit", name)
		}
		return
	}

	var once sync.Once
	fire := func() {
		once.Do(func() {
			if logger != nil {
				logger.Infof("input", "%s pressed: exiting", name)
			}
			onExit()
		})
	}
	layout := nativeInputEventLayout()
	for _, p := range paths {
		go watchDevice(ctx, p, layout, key, fire)
	}
}

func watchDevice(ctx context.Context, path string, layout inputEventLayout, key uint16, fire func()) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return
	}
	f := os.NewFile(uintptr(fd), path)
	defer f.Close()

	buf := make([]byte, 64*layout.size)
	for ctx.Err() == nil {
		fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		if _, err := unix.Poll(fds, pollMillis); err != nil {
			if err == unix.EINTR {
				continue
			}
			return
		}
		if fds[0].Revents&unix.POLLIN == 0 {
			continue
		}
		n, err := unix.Read(fd, buf)
		switch {
		case err == unix.EAGAIN || err == unix.EINTR:
			continue
		case err != nil:
			return
		}
		if layout.pressed(buf[:n], key) {
			fire()
			return
		}
	}
}

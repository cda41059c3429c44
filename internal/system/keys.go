package system

import "fmt"

// Linux input-event-codes.h
const (
	KeyEsc uint16 = 1
	KeyQ   uint16 = 16
	KeyF4  uint16 = 62
)

func KeyName(key uint16) string {
	switch key {
	case KeyEsc:
		return "Esc"
	case KeyQ:
		return "Q"
	case KeyF4:
		return "F4"
	}
	return fmt.Sprintf("key %d", key)
}

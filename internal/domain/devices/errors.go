package devices

import "errors"

var (
	ErrDeviceNotFound     = errors.New("device session not found")
	ErrUnknownDeviceClass = errors.New("unknown device class")
)

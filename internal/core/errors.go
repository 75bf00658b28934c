// Package core defines sentinel errors.
package core

import "errors"

var (
	// Plugin errors
	ErrPluginNotFound   = errors.New("strix: plugin not found")
	ErrPluginInitFailed = errors.New("strix: plugin init failed")

	// Decoding errors
	ErrPacketTooShort   = errors.New("strix: packet too short")
	ErrUnsupportedLink  = errors.New("strix: unsupported link type")
	ErrUnsupportedProto = errors.New("strix: unsupported protocol")

	// Configuration errors
	ErrConfigInvalid = errors.New("strix: invalid configuration")
)

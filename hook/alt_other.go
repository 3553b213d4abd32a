//go:build !windows && !linux && !darwin

package hook

// No low-level hook support; the listener degrades to ErrUnavailable.
var altRawcodes = map[uint16]bool{}

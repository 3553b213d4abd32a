//go:build darwin

package hook

// Keycodes for left and right Option.
var altRawcodes = map[uint16]bool{
	58: true,
	61: true,
}

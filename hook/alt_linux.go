//go:build linux

package hook

// X11 keycodes for Alt_L and Alt_R.
var altRawcodes = map[uint16]bool{
	64:  true,
	108: true,
}

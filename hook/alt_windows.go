//go:build windows

package hook

// Virtual-key codes for generic, left and right Alt (VK_MENU, VK_LMENU,
// VK_RMENU).
var altRawcodes = map[uint16]bool{
	0x12: true,
	0xA4: true,
	0xA5: true,
}

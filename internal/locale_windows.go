//go:build windows

package internal

import (
	"syscall"
	"unsafe"
)

var (
	kernel32                     = syscall.NewLazyDLL("kernel32.dll")
	procGetUserDefaultLocaleName = kernel32.NewProc("GetUserDefaultLocaleName")
)

// systemLocale returns the number-formatting locale on Windows. Env vars
// are honoured first so WSL-style setups and tests behave like Unix.
func systemLocale() string {
	if v := localeFromEnv("LC_ALL", "LC_NUMERIC", "LANG"); v != "" {
		return v
	}

	const localeNameMaxLength = 85
	buf := make([]uint16, localeNameMaxLength)
	ret, _, _ := procGetUserDefaultLocaleName.Call(
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(localeNameMaxLength),
	)
	if ret == 0 {
		return ""
	}
	return syscall.UTF16ToString(buf)
}

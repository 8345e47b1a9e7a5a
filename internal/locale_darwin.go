//go:build darwin

package internal

import (
	"os/exec"
	"strings"
)

// systemLocale returns the number-formatting locale on macOS. Terminal
// overrides win; otherwise the AppleLocale preference is used.
func systemLocale() string {
	if v := localeFromEnv("LC_ALL", "LC_NUMERIC", "LANG"); v != "" {
		return v
	}
	out, err := exec.Command("defaults", "read", "-g", "AppleLocale").Output()
	if err != nil {
		return ""
	}
	// AppleLocale looks like "en_US" or "sv_SE@currency=SEK"
	return strings.TrimSpace(string(out))
}

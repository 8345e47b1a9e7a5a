//go:build !windows && !darwin

package internal

// systemLocale returns the locale that governs number formatting on
// Unix-like systems, or "" when only the C/POSIX locale is configured.
func systemLocale() string {
	return localeFromEnv("LC_ALL", "LC_NUMERIC", "LANG")
}

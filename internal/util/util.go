//go:build !windows

// Package util holds process startup helpers.
package util

// IsRunFromGUI reports whether the process was launched from a file
// manager rather than a shell. Only Windows can tell.
func IsRunFromGUI() bool {
	return false
}

func HideConsoleWindow() {}

//go:build windows

package ui

import (
	"os"
)

// OpenTTY opens the console input buffer, for when stdin is a pipe.
func OpenTTY() (*os.File, error) {
	return os.OpenFile("CONIN$", os.O_RDWR, 0)
}

// Package autostart registers the backup daemon to start at login.
package autostart

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

const serviceName = "hotbackup"

// ErrNotInstalled is returned by Uninstall when nothing was registered.
var ErrNotInstalled = errors.New("autostart not registered")

type AutoStarter interface {
	Install(execPath string, args []string) error
	Uninstall() error
	IsInstalled() (bool, error)
}

func New() AutoStarter {
	switch runtime.GOOS {
	case "windows":
		return &WindowsAutoStarter{}
	case "linux":
		return &LinuxAutoStarter{}
	default:
		return &UnsupportedAutoStarter{}
	}
}

type UnsupportedAutoStarter struct{}

func (u *UnsupportedAutoStarter) Install(_ string, _ []string) error {
	return fmt.Errorf("autostart is not supported on %s", runtime.GOOS)
}

func (u *UnsupportedAutoStarter) Uninstall() error {
	return ErrNotInstalled
}

func (u *UnsupportedAutoStarter) IsInstalled() (bool, error) {
	return false, nil
}

// commandLine quotes execPath and args so paths with spaces survive.
func commandLine(execPath string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, quote(execPath))
	for _, a := range args {
		parts = append(parts, quote(a))
	}

	return strings.Join(parts, " ")
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

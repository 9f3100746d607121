package autostart

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"text/template"
)

// The stop timeout covers the default log drain plus the shutdown grace.
var unitTmpl = template.Must(template.New("unit").Parse(`[Unit]
Description=hotbackup mirror of {{.Hot}}
After=local-fs.target

[Service]
Type=simple
ExecStart={{.Command}} --no-menu
Restart=on-failure
RestartSec=5
TimeoutStopSec=15

[Install]
WantedBy=default.target
`))

type unitData struct {
	Hot     string
	Command string
}

const unitFile = serviceName + ".service"

type LinuxAutoStarter struct{}

func unitPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate home directory: %w", err)
	}

	return filepath.Join(home, ".config", "systemd", "user", unitFile), nil
}

// renderUnit writes the systemd user unit that runs execPath with args. The
// first arg is the hot folder.
func renderUnit(w io.Writer, execPath string, args []string) error {
	data := unitData{Command: commandLine(execPath, args)}
	if len(args) > 0 {
		data.Hot = args[0]
	}

	return unitTmpl.Execute(w, data)
}

func systemctl(args ...string) error {
	out, err := exec.Command("systemctl", append([]string{"--user"}, args...)...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("systemctl %v: %w: %s", args, err, bytes.TrimSpace(out))
	}

	return nil
}

func (l *LinuxAutoStarter) Install(execPath string, args []string) error {
	path, err := unitPath()
	if err != nil {
		return err
	}

	var unit bytes.Buffer
	if err := renderUnit(&unit, execPath, args); err != nil {
		return fmt.Errorf("failed to render unit: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create unit directory: %w", err)
	}
	if err := os.WriteFile(path, unit.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write unit %s: %w", path, err)
	}

	if err := systemctl("daemon-reload"); err != nil {
		return err
	}

	return systemctl("enable", "--now", unitFile)
}

func (l *LinuxAutoStarter) Uninstall() error {
	path, err := unitPath()
	if err != nil {
		return err
	}

	// A unit that is already stopped or disabled is not an error here.
	_ = systemctl("disable", "--now", unitFile)

	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotInstalled
		}
		return fmt.Errorf("failed to remove unit %s: %w", path, err)
	}

	return systemctl("daemon-reload")
}

func (l *LinuxAutoStarter) IsInstalled() (bool, error) {
	path, err := unitPath()
	if err != nil {
		return false, err
	}

	_, err = os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

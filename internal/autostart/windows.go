package autostart

import (
	"bytes"
	"fmt"
	"os/exec"
	"slices"
)

// Task Scheduler has no per-user folders without admin rights, so the task
// sits at the root under a name that says what it mirrors.
const taskName = "hotbackup mirror"

type WindowsAutoStarter struct{}

func schtasks(args ...string) error {
	out, err := exec.Command("schtasks", args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("schtasks %s: %w: %s", args[0], err, bytes.TrimSpace(out))
	}

	return nil
}

func (w *WindowsAutoStarter) Install(execPath string, args []string) error {
	run := commandLine(execPath, append(slices.Clone(args), "--no-menu"))
	return schtasks("/Create", "/TN", taskName, "/TR", run, "/SC", "ONLOGON", "/RL", "LIMITED", "/F")
}

func (w *WindowsAutoStarter) Uninstall() error {
	installed, err := w.IsInstalled()
	if err != nil {
		return err
	}
	if !installed {
		return ErrNotInstalled
	}

	return schtasks("/Delete", "/TN", taskName, "/F")
}

func (w *WindowsAutoStarter) IsInstalled() (bool, error) {
	// schtasks exits non-zero when the task does not exist.
	return exec.Command("schtasks", "/Query", "/TN", taskName).Run() == nil, nil
}

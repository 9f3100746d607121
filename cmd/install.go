package cmd

import (
	"fmt"
	"hotbackup/internal/autostart"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var installCmd = &cobra.Command{
	Use:   "install <hot> <backup>",
	Short: "Register the daemon to start on login",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		execPath, err := os.Executable()
		if err != nil {
			return fmt.Errorf("failed to get executable path: %w", err)
		}

		dirs := make([]string, 0, len(args))
		for _, a := range args {
			abs, err := filepath.Abs(a)
			if err != nil {
				return fmt.Errorf("failed to resolve %s: %w", a, err)
			}
			dirs = append(dirs, abs)
		}

		as := autostart.New()
		if err := as.Install(execPath, dirs); err != nil {
			return err
		}

		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "mirror of "+dirs[0]+" will start at login")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(installCmd)
}

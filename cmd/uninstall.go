package cmd

import (
	"errors"
	"fmt"
	"hotbackup/internal/autostart"

	"github.com/spf13/cobra"
)

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Stop starting the mirror at login",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		err := autostart.New().Uninstall()
		switch {
		case errors.Is(err, autostart.ErrNotInstalled):
			_, _ = fmt.Fprintln(out, "no login entry to remove")
			return nil
		case err != nil:
			return fmt.Errorf("failed to remove login entry: %w", err)
		}

		_, _ = fmt.Fprintln(out, "mirror will no longer start at login")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(uninstallCmd)
}

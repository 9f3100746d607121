package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Ask the running daemon to finish its log and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := http.Post(daemonURL("/stop"), "application/json", nil)
		if err != nil {
			return fmt.Errorf("no daemon listening on port %d: %w", cfg.APIPort, err)
		}

		defer func(Body io.ReadCloser) {
			_ = Body.Close()
		}(resp.Body)

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("daemon refused stop: %s", resp.Status)
		}

		var reply struct {
			Status string `json:"status"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
			return fmt.Errorf("failed to decode stop reply: %w", err)
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "daemon %s, queued log lines are written before it exits\n", reply.Status)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(stopCmd)
}

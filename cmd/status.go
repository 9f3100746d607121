package cmd

import (
	"encoding/json"
	"fmt"
	"hotbackup/internal/model"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "View daemon status",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := http.Get(daemonURL("/status"))
		if err != nil {
			return fmt.Errorf("daemon not running: %w", err)
		}

		defer func(Body io.ReadCloser) {
			_ = Body.Close()
		}(resp.Body)

		var snap model.RunSnapshot
		if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
			return fmt.Errorf("failed to decode status response: %w", err)
		}

		printSnapshot(cmd.OutOrStdout(), snap)
		return nil
	},
}

func printSnapshot(w io.Writer, snap model.RunSnapshot) {
	lastPass := "-"
	if snap.LastPass != nil {
		lastPass = snap.LastPass.Format("2006-01-02 15:04:05")
	}
	lastSync := "-"
	if snap.LastSync != nil {
		lastSync = snap.LastSync.Format("2006-01-02 15:04:05")
	}

	_, _ = fmt.Fprintf(w, "hot:       %s\n", snap.HotDir)
	_, _ = fmt.Fprintf(w, "backup:    %s\n", snap.BackupDir)
	_, _ = fmt.Fprintf(w, "uptime:    %s\n", time.Since(snap.StartedAt).Round(time.Second))
	_, _ = fmt.Fprintf(w, "passes:    %d (last %s)\n", snap.Passes, lastPass)
	_, _ = fmt.Fprintf(w, "%-10s %-10s %-10s %-10s %s\n", "BACKED UP", "UPDATED", "DELETED", "FAILED", "LAST SYNC")
	_, _ = fmt.Fprintf(w, "%-10d %-10d %-10d %-10d %s\n", snap.BackedUp, snap.Updated, snap.Deleted, snap.Failed, lastSync)
	_, _ = fmt.Fprintf(w, "log:       %d written, %d queued\n", snap.LinesWritten, snap.QueueDepth)
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

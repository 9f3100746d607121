package cmd

import (
	"encoding/json"
	"fmt"
	"hotbackup/internal/model"
	"hotbackup/internal/repository"
	"io"
	"net/http"

	"github.com/spf13/cobra"
)

var (
	historyN      int
	historyFailed bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View backup history",
	RunE: func(cmd *cobra.Command, args []string) error {
		url := fmt.Sprintf("%s?n=%d", daemonURL("/history"), historyN)
		if historyFailed {
			url += "&failed=true"
		}

		resp, err := http.Get(url)
		if err != nil {
			return fmt.Errorf("daemon not running: %w", err)
		}

		defer func(Body io.ReadCloser) {
			_ = Body.Close()
		}(resp.Body)

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("history unavailable: %s", resp.Status)
		}

		var result struct {
			Stats   repository.Stats `json:"stats"`
			Entries []model.History  `json:"entries"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(result.Entries) == 0 {
			_, _ = fmt.Fprintln(out, "no history yet")
			return nil
		}

		for _, h := range result.Entries {
			status := "✓"
			if h.Status == model.StatusFailed {
				status = "✗"
			}

			_, _ = fmt.Fprintf(out, "%s [%s] %-7s %s\n",
				status,
				h.SyncedAt.Format("2006-01-02 15:04:05"),
				h.Action,
				h.SrcPath,
			)
		}

		_, _ = fmt.Fprintf(out, "total %d, succeeded %d, failed %d\n",
			result.Stats.Total, result.Stats.Success, result.Stats.Failed)
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyN, "n", 20, "number of history entries to show")
	historyCmd.Flags().BoolVar(&historyFailed, "failed", false, "show failed actions only")
	rootCmd.AddCommand(historyCmd)
}

package cmd

import (
	"context"
	"fmt"
	"hotbackup/internal/daemon"
	"hotbackup/internal/logger"
	"hotbackup/internal/model"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var onceCmd = &cobra.Command{
	Use:   "once <hot> <backup>",
	Short: "Run a single backup pass and exit",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		defer logger.Sync()

		env, err := prepare(afero.NewOsFs(), args[0], args[1])
		if err != nil {
			return err
		}

		repo, closeHistory := openHistory()
		defer closeHistory()

		var opts []daemon.Option
		if repo != nil {
			opts = append(opts, daemon.WithRecorder(repo))
		}

		logger.Log.Info("starting single pass",
			zap.String("hot", env.paths.HotDir()),
			zap.String("backup", env.paths.BackupDir()))

		runner := daemon.NewRunner(cfg, env.paths, env.queue, env.lock, opts...)
		summary, err := runner.RunOnce(context.Background())
		if err != nil {
			return err
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "done: %d entries, %d backed up, %d updated, %d deleted, %d failed\n",
			summary.Entries,
			summary.Actions[model.ActionBackup],
			summary.Actions[model.ActionUpdate],
			summary.Actions[model.ActionDelete],
			summary.Failed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(onceCmd)
}

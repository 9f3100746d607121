package cmd

import (
	"errors"
	"fmt"
	"hotbackup/internal/config"
	"hotbackup/internal/logger"
	"io"
	"os"

	"github.com/spf13/cobra"
)

const envFailureCode = -1

var (
	cfg    *config.Config
	debug  bool
	noMenu bool
)

// exitError carries a process exit status out of a command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func envFailure(err error) error {
	return &exitError{code: envFailureCode, err: err}
}

var rootCmd = &cobra.Command{
	Use:   "hotbackup <hot> <backup>",
	Short: "Mirror a hot folder into a backup folder",
	Long: `Watches the hot folder and keeps a copy of every file in the backup folder.
A file whose name starts with the delete prefix removes itself and the backup
of the file it names. Every action is appended to the backup log.`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		logger.Init(debug)

		var err error
		cfg, err = config.Load()
		return err
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 2 {
			printUsage(cmd.OutOrStdout())
			return nil
		}

		return runDaemon(cmd, args[0], args[1])
	},
}

func printUsage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "Please enter paths for hot and backup folders.")
	_, _ = fmt.Fprintln(w, "Example: hotbackup /data/hot /data/backup")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if exitErr, ok := errors.AsType[*exitError](err); ok {
			os.Exit(exitErr.code)
		}
		os.Exit(1)
	}
}

func daemonURL(path string) string {
	return fmt.Sprintf("http://localhost:%d%s", cfg.APIPort, path)
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug mode")
	rootCmd.PersistentFlags().BoolVar(&noMenu, "no-menu", false, "Run without the interactive log menu")
}

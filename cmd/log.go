package cmd

import (
	"hotbackup/internal/logreader"
	"sync"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Print or search the backup log",
}

func logReader() *logreader.Reader {
	return logreader.New(afero.NewOsFs(), cfg.LogFile, &sync.RWMutex{})
}

var logPrintCmd = &cobra.Command{
	Use:   "print",
	Short: "Print the whole log",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return logReader().Print(cmd.OutOrStdout())
	},
}

var logSearchCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "Print log lines containing term",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return logReader().Search(cmd.OutOrStdout(), args[0])
	},
}

var logRegexCmd = &cobra.Command{
	Use:   "regex <expr>",
	Short: "Print log lines matching a regular expression",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return logReader().SearchRegex(cmd.OutOrStdout(), args[0])
	},
}

func init() {
	logCmd.AddCommand(logPrintCmd, logSearchCmd, logRegexCmd)
	rootCmd.AddCommand(logCmd)
}

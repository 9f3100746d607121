package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"hotbackup/internal/logger"
	"hotbackup/internal/logreader"
	"io"
	"strings"

	"go.uber.org/zap"
)

const menuText = `Enter 'p' to print the log.
Enter 's' to execute simple search through the log.
Enter 'r' to execute regex search through the log.
Enter 'e' to exit application.
`

// runMenu serves the interactive log menu until the user picks 'e', which
// returns nil. A closed input returns io.EOF.
func runMenu(in io.Reader, out io.Writer, reader *logreader.Reader) error {
	scanner := bufio.NewScanner(in)
	readLine := func() (string, error) {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", err
			}
			return "", io.EOF
		}
		return scanner.Text(), nil
	}

	for {
		_, _ = fmt.Fprint(out, menuText)

		option, err := readLine()
		if err != nil {
			return err
		}

		var readErr error
		switch strings.TrimSpace(option) {
		case "p":
			_, _ = fmt.Fprintln(out, "Log file contents:")
			readErr = reader.Print(out)
		case "s":
			_, _ = fmt.Fprintln(out, "Provide simple search term. For example: 2023-02-12T12:20:55+00:00")
			term, err := readLine()
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(out, "Results in log file matching search term: %s\n", term)
			readErr = reader.Search(out, term)
		case "r":
			_, _ = fmt.Fprintln(out, `Provide regex search term. Example \b(sub)([^ ]*) returns string starting with 'sub'`)
			expr, err := readLine()
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(out, "Results in log file matching search term: %s\n", expr)
			readErr = reader.SearchRegex(out, expr)
			if errors.Is(readErr, logreader.ErrInvalidPattern) {
				_, _ = fmt.Fprintln(out, "Unsupported regex format")
				readErr = nil
			}
		case "e":
			return nil
		default:
			_, _ = fmt.Fprintln(out, "Invalid option")
		}

		if readErr != nil {
			logger.Log.Warn("failed to read log",
				zap.Error(readErr))
		}
	}
}

// Package cli implements the taskflow command line.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"taskflow/internal/app"
	"taskflow/internal/ui"
)

const (
	exitOK    = 0
	exitError = 1

	shortIDLen = 8
)

// Opener opens the application for one command invocation.
type Opener func(ctx context.Context, configPath, backend string) (*app.App, error)

// session opens the app lazily so --help and flag errors never touch storage.
type session struct {
	open       Opener
	configPath string
	backend    string
	app        *app.App
}

func (s *session) App(ctx context.Context) (*app.App, error) {
	if s.app != nil {
		return s.app, nil
	}
	a, err := s.open(ctx, s.configPath, s.backend)
	if err != nil {
		return nil, err
	}
	s.app = a
	return a, nil
}

func (s *session) Close() error {
	if s.app == nil {
		return nil
	}
	err := s.app.Close()
	s.app = nil
	return err
}

func newRootCmd(s *session) *cobra.Command {
	root := &cobra.Command{
		Use:   "taskflow",
		Short: "Smart task management in the terminal",
		Long:  `TaskFlow keeps a prioritized task list with due dates. Run without a command to open the interactive UI.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := s.App(cmd.Context())
			if err != nil {
				return err
			}
			return ui.Run(cmd.Context(), a)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&s.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/taskflow/config.toml)")
	root.PersistentFlags().StringVar(&s.backend, "backend", "", "storage backend: sqlite, bolt, redis or memory")

	root.AddCommand(
		newAddCmd(s),
		newEditCmd(s),
		newRmCmd(s),
		newToggleCmd(s),
		newListCmd(s),
		newStatsCmd(s),
		newExportCmd(s),
	)
	return root
}

// Run executes args and returns the process exit code.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer, open Opener) int {
	if open == nil {
		open = app.Open
	}
	s := &session{open: open}

	root := newRootCmd(s)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	code := exitOK
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		code = exitError
	}
	if err := s.Close(); err != nil {
		fmt.Fprintf(stderr, "error: close storage: %v\n", err)
		code = exitError
	}
	return code
}

func shortID(id string) string {
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}

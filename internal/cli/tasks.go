package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"taskflow/internal/task"
)

type taskFlags struct {
	title       string
	description string
	priority    string
	status      string
	due         string
}

func (f *taskFlags) register(cmd *cobra.Command, withTitle bool) {
	if withTitle {
		cmd.Flags().StringVarP(&f.title, "title", "t", "", "task title")
	}
	cmd.Flags().StringVarP(&f.description, "description", "d", "", "task description")
	cmd.Flags().StringVarP(&f.priority, "priority", "p", "", "low, medium or high")
	cmd.Flags().StringVarP(&f.status, "status", "s", "", "pending, in-progress or completed")
	cmd.Flags().StringVar(&f.due, "due", "", "due date (YYYY-MM-DD), empty to clear")
}

// apply overlays the flags the user set onto in.
func (f *taskFlags) apply(cmd *cobra.Command, in task.Input) (task.Input, error) {
	flags := cmd.Flags()
	if flags.Changed("title") {
		in.Title = f.title
	}
	if flags.Changed("description") {
		in.Description = f.description
	}
	if flags.Changed("priority") {
		p, err := task.ParsePriority(f.priority)
		if err != nil {
			return in, err
		}
		in.Priority = p
	}
	if flags.Changed("status") {
		st, err := task.ParseStatus(f.status)
		if err != nil {
			return in, err
		}
		in.Status = st
	}
	if flags.Changed("due") {
		d, err := task.ParseDate(f.due)
		if err != nil {
			return in, err
		}
		in.DueDate = d
	}
	return in, nil
}

func newAddCmd(s *session) *cobra.Command {
	var f taskFlags
	cmd := &cobra.Command{
		Use:   "add <title...>",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := f.apply(cmd, task.Input{Title: strings.Join(args, " ")})
			if err != nil {
				return err
			}
			a, err := s.App(cmd.Context())
			if err != nil {
				return err
			}
			created, err := a.Store.Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s %s\n", shortID(created.ID), created.Title)
			return nil
		},
	}
	f.register(cmd, false)
	return cmd
}

func newEditCmd(s *session) *cobra.Command {
	var f taskFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a task",
		Long:  `Edit starts from the task's current values and replaces only the fields given as flags.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := s.App(cmd.Context())
			if err != nil {
				return err
			}
			t, err := a.Store.Resolve(args[0])
			if err != nil {
				return err
			}
			in, err := f.apply(cmd, task.InputFrom(t))
			if err != nil {
				return err
			}
			updated, err := a.Store.Update(cmd.Context(), t.ID, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s %s\n", shortID(updated.ID), updated.Title)
			return nil
		},
	}
	f.register(cmd, true)
	return cmd
}

func newRmCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := s.App(cmd.Context())
			if err != nil {
				return err
			}
			t, err := a.Store.Resolve(args[0])
			if task.IsNotFound(err) {
				fmt.Fprintf(cmd.OutOrStdout(), "No task matches %q, nothing deleted\n", args[0])
				return nil
			}
			if err != nil {
				return err
			}
			if err := a.Store.Delete(cmd.Context(), t.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s %s\n", shortID(t.ID), t.Title)
			return nil
		},
	}
}

func newToggleCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Mark a task completed, or reopen a completed one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := s.App(cmd.Context())
			if err != nil {
				return err
			}
			t, err := a.Store.Resolve(args[0])
			if err != nil {
				return err
			}
			toggled, err := a.Store.ToggleStatus(cmd.Context(), t.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s is now %s\n", shortID(toggled.ID), toggled.Title, toggled.Status)
			return nil
		},
	}
}

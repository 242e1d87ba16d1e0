package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"taskflow/internal/task"
)

func newListCmd(s *session) *cobra.Command {
	var filter, search, sortBy string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := s.App(cmd.Context())
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("filter") {
				filter = a.Config.DefaultFilter
			}
			if !cmd.Flags().Changed("sort") {
				sortBy = a.Config.DefaultSort
			}
			q := task.Query{
				Filter: task.ParseFilter(filter),
				Search: search,
				SortBy: task.ParseSortKey(sortBy),
			}
			now := a.Store.Now()
			tasks := task.Apply(a.Store.Tasks(), q, now)

			out := cmd.OutOrStdout()
			if len(tasks) == 0 {
				if q.IsNarrowed() {
					fmt.Fprintln(out, "No matching tasks found. Try adjusting your search or filter criteria.")
				} else {
					fmt.Fprintln(out, "No tasks yet. Add one with: taskflow add <title>")
				}
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTATUS\tPRIORITY\tDUE\tTITLE\tUPDATED")
			for _, t := range tasks {
				due := task.DueLabel(t.DueDate, now)
				if due == "" {
					due = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					shortID(t.ID),
					t.Status,
					t.Priority,
					due,
					t.Title,
					humanize.RelTime(t.UpdatedAt, now, "ago", "from now"),
				)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVarP(&filter, "filter", "f", "", "all, pending, in-progress, completed, today or overdue")
	cmd.Flags().StringVarP(&search, "search", "q", "", "case-insensitive text to match in title or description")
	cmd.Flags().StringVarP(&sortBy, "sort", "s", "", "dueDate, priority, status or created")
	return cmd
}

func newStatsCmd(s *session) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show task counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := s.App(cmd.Context())
			if err != nil {
				return err
			}
			st := task.ComputeStats(a.Store.Tasks(), a.Store.Now())
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(st)
			}
			w := tabwriter.NewWriter(out, 0, 0, 1, ' ', 0)
			fmt.Fprintf(w, "Total:\t%d\n", st.Total)
			fmt.Fprintf(w, "Completed:\t%d\n", st.Completed)
			fmt.Fprintf(w, "In progress:\t%d\n", st.InProgress)
			fmt.Fprintf(w, "Pending:\t%d\n", st.Pending)
			fmt.Fprintf(w, "Overdue:\t%d\n", st.Overdue)
			fmt.Fprintf(w, "Productivity:\t%d%%\n", st.Productivity())
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print stats as JSON")
	return cmd
}

func newExportCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Print the stored task payload as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := s.App(cmd.Context())
			if err != nil {
				return err
			}
			raw, ok, err := a.KV.Get(cmd.Context(), task.TasksKey)
			if err != nil {
				return fmt.Errorf("read tasks: %w", err)
			}
			if !ok {
				raw = "[]"
			}
			fmt.Fprintln(cmd.OutOrStdout(), raw)
			return nil
		},
	}
}

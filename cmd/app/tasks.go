package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-dashboard/internal/model"
	"github.com/BuzzLyutic/task-dashboard/internal/service"
	"github.com/BuzzLyutic/task-dashboard/internal/view"
)

func tasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Inspect a user's tasks from the configured store",
	}
	cmd.PersistentFlags().StringP("user", "u", "", "user id whose tasks to read")
	cmd.MarkPersistentFlagRequired("user")

	cmd.AddCommand(tasksListCmd())
	cmd.AddCommand(tasksStatsCmd())
	return cmd
}

func tasksListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks sorted by due date",
		RunE: func(cmd *cobra.Command, args []string) error {
			partition, _ := cmd.Flags().GetString("partition")
			text, _ := cmd.Flags().GetString("query")
			orderFlag, _ := cmd.Flags().GetString("order")
			asJSON, _ := cmd.Flags().GetBool("json")

			order, err := view.ParseOrder(orderFlag)
			if err != nil {
				return err
			}

			a, e, err := openEngine(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			q := view.Query{Partition: model.Status(partition), Text: text, Order: order}
			cards := view.Cards(e.View(q), time.Now())
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(cards)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSTATUS\tPRIORITY\tDUE\tREMAINING\tTITLE")
			for _, c := range cards {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
					c.ID, c.Status.Label(), c.Priority, c.DueDate, c.Remaining, c.Title)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringP("partition", "p", "", "only this status (pending, in_progress, completed)")
	cmd.Flags().StringP("query", "q", "", "filter by title or description")
	cmd.Flags().StringP("order", "o", "asc", "due date order (asc, desc)")
	cmd.Flags().BoolP("json", "j", false, "Output as JSON")
	return cmd
}

func tasksStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show task counts per status",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, e, err := openEngine(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			stats := e.Stats()
			for _, s := range stats {
				fmt.Fprintf(cmd.OutOrStdout(), "%-12s %d\n", s.Label, s.Count)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-12s %d\n", "Total", view.Total(stats))
			return nil
		},
	}
}

func openEngine(cmd *cobra.Command) (*app, *service.Engine, error) {
	uid, _ := cmd.Flags().GetString("user")

	logger, err := zap.NewDevelopment()
	if err != nil {
		return nil, nil, err
	}
	a, err := newApp(cmd.Context(), logger)
	if err != nil {
		return nil, nil, err
	}

	e := a.registry.Engine(cmd.Context(), model.Identity{UID: uid})
	if err := e.LastError(); err != nil {
		a.Close()
		return nil, nil, err
	}
	return a, e, nil
}

package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Show scheduled interviews as calendar events",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		events, err := a.Service().Calendar(cmd.Context())
		if err != nil {
			return err
		}
		if len(events) == 0 {
			fmt.Println("Calendar is empty.")
			return nil
		}

		loc := a.Service().Location()
		rows := make([][]string, 0, len(events))
		for _, e := range events {
			rows = append(rows, []string{
				e.Start.In(loc).Format("Mon 2006-01-02"), e.Title,
				e.End.In(loc).Format("15:04"), e.Interviewer, string(e.Type),
			})
		}
		printTable(os.Stdout, []string{"Day", "Event", "Ends", "Interviewer", "Type"}, rows)
		return nil
	},
}

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Show pipeline counters and candidates per status",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		dash, err := a.Service().Board(cmd.Context())
		if err != nil {
			return err
		}

		s := dash.Summary
		fmt.Printf("Total: %d  In process: %d  Hired: %d  Rejected: %d\n\n",
			s.Total, s.InProcess, s.Hired, s.Rejected)

		rows := make([][]string, 0, len(dash.Board.Columns))
		for _, col := range dash.Board.Columns {
			names := make([]string, 0, len(col.Candidates))
			for _, c := range col.Candidates {
				names = append(names, c.Name)
			}
			rows = append(rows, []string{string(col.Status), strconv.Itoa(len(col.Candidates)), strings.Join(names, ", ")})
		}
		printTable(os.Stdout, []string{"Status", "Count", "Candidates"}, rows)
		return nil
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Show average days spent between statuses",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		stages, err := a.Service().Metrics(cmd.Context())
		if err != nil {
			return err
		}
		if len(stages) == 0 {
			fmt.Println("Not enough history yet.")
			return nil
		}
		rows := make([][]string, 0, len(stages))
		for _, st := range stages {
			rows = append(rows, []string{st.Label, strconv.FormatFloat(st.Days, 'f', 1, 64)})
		}
		printTable(os.Stdout, []string{"Stage", "Days"}, rows)
		return nil
	},
}

var insightsCmd = &cobra.Command{
	Use:   "insights JOB_PROFILE",
	Short: "Ask the configured language model to assess the hiring flow",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		out, err := a.Service().AnalyzeFlow(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View recorded operations",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		ops, err := a.History(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if len(ops) == 0 {
			fmt.Println("No operations recorded.")
			return nil
		}

		rows := make([][]string, 0, len(ops))
		for _, op := range ops {
			duration := ""
			if op.FinishedAt != nil {
				duration = op.FinishedAt.Sub(op.StartedAt).Truncate(time.Millisecond).String()
			}
			rows = append(rows, []string{
				"#" + strconv.FormatInt(op.ID, 10), op.Operation, op.Actor,
				op.StartedAt.Format("2006-01-02 15:04:05"), op.Status, duration,
			})
		}
		printTable(os.Stdout, []string{"ID", "Operation", "Actor", "Started", "Status", "Duration"}, rows)
		return nil
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of operations to show")
}

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var positionCmd = &cobra.Command{
	Use:   "position",
	Short: "Manage job positions",
}

var positionAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Add a job position",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		return a.Track(actorContext(cmd), "AddJobPosition", "name="+args[0], func(ctx context.Context) error {
			p, err := a.Service().AddJobPosition(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Added job position %s (%s)\n", p.Name, p.ID)
			return nil
		})
	},
}

var positionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List job positions",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		ps, err := a.Service().ListJobPositions(cmd.Context())
		if err != nil {
			return err
		}
		if len(ps) == 0 {
			fmt.Println("No job positions.")
			return nil
		}
		rows := make([][]string, 0, len(ps))
		for _, p := range ps {
			rows = append(rows, []string{p.ID, p.Name, p.CreatedBy})
		}
		printTable(os.Stdout, []string{"ID", "Name", "Created By"}, rows)
		return nil
	},
}

var interviewerCmd = &cobra.Command{
	Use:   "interviewer",
	Short: "Manage interviewers",
}

var interviewerAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Add an interviewer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		return a.Track(actorContext(cmd), "AddInterviewer", "name="+args[0], func(ctx context.Context) error {
			i, err := a.Service().AddInterviewer(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Added interviewer %s (%s)\n", i.Name, i.ID)
			return nil
		})
	},
}

var interviewerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List interviewers",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		is, err := a.Service().ListInterviewers(cmd.Context())
		if err != nil {
			return err
		}
		if len(is) == 0 {
			fmt.Println("No interviewers.")
			return nil
		}
		rows := make([][]string, 0, len(is))
		for _, i := range is {
			rows = append(rows, []string{i.ID, i.Name, i.CreatedBy})
		}
		printTable(os.Stdout, []string{"ID", "Name", "Created By"}, rows)
		return nil
	},
}

func init() {
	positionCmd.AddCommand(positionAddCmd)
	positionCmd.AddCommand(positionListCmd)
	interviewerCmd.AddCommand(interviewerAddCmd)
	interviewerCmd.AddCommand(interviewerListCmd)
}

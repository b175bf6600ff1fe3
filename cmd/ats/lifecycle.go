package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"ats-go/internal/ats"
)

const scheduleDateLayout = "2006-01-02 15:04"

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Move candidates through the pipeline",
}

var statusSetCmd = &cobra.Command{
	Use:   "set ID STATUS NOTES",
	Short: "Change a candidate's status",
	Long: "Change a candidate's status. STATUS is one of Screening, TechnicalTest,\n" +
		"Offer, Hired or Rejected; use `ats interview schedule` for Interview.",
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := ats.ParseStatus(args[1])
		if err != nil {
			return err
		}

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		params := fmt.Sprintf("id=%s status=%s", args[0], status)
		return a.Track(actorContext(cmd), "ChangeStatus", params, func(ctx context.Context) error {
			c, err := a.Service().ChangeStatus(ctx, args[0], status, args[2])
			if err != nil {
				return err
			}
			fmt.Printf("%s is now %s\n", c.Name, c.CurrentStatus())
			return nil
		})
	},
}

var interviewCmd = &cobra.Command{
	Use:   "interview",
	Short: "Manage interviews",
}

var interviewScheduleCmd = &cobra.Command{
	Use:   "schedule CANDIDATE_ID",
	Short: "Schedule an interview and move the candidate to Interview",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		interviewerID, _ := cmd.Flags().GetString("interviewer")
		rawType, _ := cmd.Flags().GetString("type")
		rawDate, _ := cmd.Flags().GetString("date")
		notes, _ := cmd.Flags().GetString("notes")

		typ, err := ats.ParseInterviewType(rawType)
		if err != nil {
			return err
		}

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		date, err := time.ParseInLocation(scheduleDateLayout, rawDate, a.Service().Location())
		if err != nil {
			return fmt.Errorf("--date must look like %q: %w", scheduleDateLayout, err)
		}

		req := ats.InterviewRequest{InterviewerID: interviewerID, Type: typ, Date: date, Notes: notes}
		params := fmt.Sprintf("id=%s interviewer=%s", args[0], interviewerID)
		return a.Track(actorContext(cmd), "ScheduleInterview", params, func(ctx context.Context) error {
			_, iv, err := a.Service().ScheduleInterview(ctx, args[0], req)
			if err != nil {
				return err
			}
			fmt.Printf("Scheduled interview %s with %s on %s\n",
				iv.ID, iv.InterviewerName, iv.Date.In(a.Service().Location()).Format(scheduleDateLayout))
			return nil
		})
	},
}

var interviewCancelCmd = &cobra.Command{
	Use:   "cancel INTERVIEW_ID",
	Short: "Cancel an interview and return the candidate to Screening",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		return a.Track(actorContext(cmd), "CancelInterview", "id="+args[0], func(ctx context.Context) error {
			c, err := a.Service().CancelInterview(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Cancelled. %s is back in %s\n", c.Name, c.CurrentStatus())
			return nil
		})
	},
}

var interviewListCmd = &cobra.Command{
	Use:   "list",
	Short: "List interviews by date",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		loc := a.Service().Location()
		var rows [][]string
		for iv, err := range a.Service().Interviews().OrderedByDate(cmd.Context()) {
			if err != nil {
				return err
			}
			rows = append(rows, []string{
				iv.ID, iv.Date.In(loc).Format(scheduleDateLayout),
				iv.CandidateName, iv.InterviewerName, string(iv.Type),
			})
		}
		if len(rows) == 0 {
			fmt.Println("No interviews scheduled.")
			return nil
		}
		printTable(os.Stdout, []string{"ID", "Date", "Candidate", "Interviewer", "Type"}, rows)
		return nil
	},
}

func init() {
	statusCmd.AddCommand(statusSetCmd)

	interviewScheduleCmd.Flags().String("interviewer", "", "Interviewer ID")
	interviewScheduleCmd.Flags().String("type", string(ats.InterviewOnline), "Online or InPerson")
	interviewScheduleCmd.Flags().String("date", "", "Date and time, "+scheduleDateLayout)
	interviewScheduleCmd.Flags().String("notes", "", "Notes appended to the history entry")
	interviewScheduleCmd.MarkFlagRequired("interviewer")
	interviewScheduleCmd.MarkFlagRequired("date")

	interviewCmd.AddCommand(interviewScheduleCmd)
	interviewCmd.AddCommand(interviewCancelCmd)
	interviewCmd.AddCommand(interviewListCmd)
}

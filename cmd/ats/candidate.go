package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"ats-go/internal/ats"
)

const listDateLayout = "2006-01-02 15:04"

var candidateCmd = &cobra.Command{
	Use:   "candidate",
	Short: "Manage candidates",
}

var candidateAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a candidate",
	RunE: func(cmd *cobra.Command, args []string) error {
		in := candidateFlags(cmd)
		docs, err := documentFlags(cmd)
		if err != nil {
			return err
		}

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		return a.Track(actorContext(cmd), "CreateCandidate", "governmentId="+in.GovernmentID, func(ctx context.Context) error {
			c, err := a.Service().CreateCandidate(ctx, in, docs)
			if err != nil {
				return err
			}
			fmt.Printf("Registered %s (%s) with %d document(s)\n", c.Name, c.ID, len(c.Documents))
			return nil
		})
	},
}

var candidateEditCmd = &cobra.Command{
	Use:   "edit ID",
	Short: "Update a candidate's profile and attach documents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		docs, err := documentFlags(cmd)
		if err != nil {
			return err
		}

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		current, err := a.Service().GetCandidate(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		in := mergeCandidateFlags(cmd, current)

		return a.Track(actorContext(cmd), "UpdateCandidate", "id="+args[0], func(ctx context.Context) error {
			c, err := a.Service().UpdateCandidate(ctx, args[0], in, docs)
			if err != nil {
				return err
			}
			fmt.Printf("Updated %s (version %d)\n", c.Name, c.Version)
			return nil
		})
	},
}

var candidateListCmd = &cobra.Command{
	Use:   "list [TERM]",
	Short: "List candidates, optionally filtered by name, position or government ID",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		term := ""
		if len(args) > 0 {
			term = args[0]
		}
		cs, err := a.Service().SearchCandidates(cmd.Context(), term)
		if err != nil {
			return err
		}
		if len(cs) == 0 {
			fmt.Println("No candidates.")
			return nil
		}

		loc := a.Service().Location()
		rows := make([][]string, 0, len(cs))
		for _, c := range cs {
			rows = append(rows, []string{
				c.ID, c.Name, c.GovernmentID, c.JobPosition,
				string(c.CurrentStatus()), c.LastUpdate.In(loc).Format(listDateLayout),
			})
		}
		printTable(os.Stdout, []string{"ID", "Name", "Government ID", "Position", "Status", "Last Update"}, rows)
		return nil
	},
}

var candidateShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show a candidate with documents and history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		c, err := a.Service().GetCandidate(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		loc := a.Service().Location()

		fmt.Printf("%s (%s)\n", c.Name, c.ID)
		fmt.Printf("Government ID: %s\n", c.GovernmentID)
		fmt.Printf("Email:         %s\n", c.Email)
		fmt.Printf("Phone:         %s\n", c.Phone)
		fmt.Printf("Position:      %s\n", c.JobPosition)
		fmt.Printf("Status:        %s\n", c.CurrentStatus())
		if c.Description != "" {
			fmt.Printf("\n%s\n", c.Description)
		}

		if len(c.Documents) > 0 {
			fmt.Println("\nDocuments:")
			rows := make([][]string, 0, len(c.Documents))
			for i, d := range c.Documents {
				rows = append(rows, []string{strconv.Itoa(i), string(d.Type), d.FileName, strconv.FormatBool(d.Encrypted)})
			}
			printTable(os.Stdout, []string{"#", "Type", "File", "Encrypted"}, rows)
		}

		fmt.Println("\nHistory:")
		rows := make([][]string, 0, len(c.StatusHistory))
		for _, e := range c.StatusHistory.NewestFirst() {
			rows = append(rows, []string{e.Date.In(loc).Format(listDateLayout), string(e.Status), e.Actor, e.Notes})
		}
		printTable(os.Stdout, []string{"Date", "Status", "By", "Notes"}, rows)
		return nil
	},
}

var candidateDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a candidate, its interviews and its documents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes && !confirm(fmt.Sprintf("Delete candidate %s? [y/N] ", args[0])) {
			fmt.Println("Aborted.")
			return nil
		}

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		return a.Track(actorContext(cmd), "DeleteCandidate", "id="+args[0], func(ctx context.Context) error {
			if err := a.Service().DeleteCandidate(ctx, args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted candidate %s\n", args[0])
			return nil
		})
	},
}

var candidateDocCmd = &cobra.Command{
	Use:   "doc ID INDEX",
	Short: "Write a candidate document to a file or stdout",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("INDEX must be a number: %w", err)
		}
		out, _ := cmd.Flags().GetString("output")

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		c, err := a.Service().GetCandidate(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		var dc ats.DecryptionContext
		if index >= 0 && index < len(c.Documents) && c.Documents[index].Encrypted {
			if dc, err = unlock(a); err != nil {
				return err
			}
		}

		w := os.Stdout
		if out != "" {
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("creating %s: %w", out, err)
			}
			defer f.Close()
			w = f
		}

		doc, err := a.Service().OpenDocument(cmd.Context(), args[0], index, w, dc)
		if err != nil {
			if out != "" {
				os.Remove(out)
			}
			return err
		}
		if out != "" {
			fmt.Fprintf(os.Stderr, "Wrote %s to %s\n", doc.FileName, out)
		}
		return nil
	},
}

func addProfileFlags(cmd *cobra.Command) {
	cmd.Flags().String("name", "", "Full name")
	cmd.Flags().String("email", "", "Email address")
	cmd.Flags().String("phone", "", "Phone number")
	cmd.Flags().String("position", "", "Job position applied for")
	cmd.Flags().String("description", "", "Free-form description")
	cmd.Flags().StringArray("doc", nil, "Attach a document as TYPE=PATH (repeatable)")
}

func candidateFlags(cmd *cobra.Command) ats.CandidateInput {
	get := func(name string) string {
		v, _ := cmd.Flags().GetString(name)
		return v
	}
	return ats.CandidateInput{
		Name:         get("name"),
		GovernmentID: get("gov-id"),
		Email:        get("email"),
		Phone:        get("phone"),
		JobPosition:  get("position"),
		Description:  get("description"),
	}
}

// mergeCandidateFlags overlays the flags that were set on the current profile.
func mergeCandidateFlags(cmd *cobra.Command, c *ats.Candidate) ats.CandidateInput {
	in := ats.CandidateInput{
		Name:         c.Name,
		GovernmentID: c.GovernmentID,
		Email:        c.Email,
		Phone:        c.Phone,
		JobPosition:  c.JobPosition,
		Description:  c.Description,
	}
	set := func(name string, dst *string) {
		if cmd.Flags().Changed(name) {
			*dst, _ = cmd.Flags().GetString(name)
		}
	}
	set("name", &in.Name)
	set("email", &in.Email)
	set("phone", &in.Phone)
	set("position", &in.JobPosition)
	set("description", &in.Description)
	return in
}

// documentFlags reads every --doc TYPE=PATH into a pending document.
func documentFlags(cmd *cobra.Command) ([]ats.Document, error) {
	specs, _ := cmd.Flags().GetStringArray("doc")
	docs := make([]ats.Document, 0, len(specs))
	for _, arg := range specs {
		rawType, path, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("--doc %q: want TYPE=PATH", arg)
		}
		typ, err := ats.ParseDocumentType(rawType)
		if err != nil {
			return nil, err
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		docs = append(docs, ats.PendingDocument{Type: typ, FileName: filepath.Base(path), Content: content})
	}
	return docs, nil
}

func confirm(prompt string) bool {
	fmt.Print(prompt)
	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func init() {
	addProfileFlags(candidateAddCmd)
	candidateAddCmd.Flags().String("gov-id", "", "Government ID (unique, cannot be changed later)")
	addProfileFlags(candidateEditCmd)
	candidateDeleteCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
	candidateDocCmd.Flags().StringP("output", "o", "", "Write to this file instead of stdout")

	candidateCmd.AddCommand(candidateAddCmd)
	candidateCmd.AddCommand(candidateEditCmd)
	candidateCmd.AddCommand(candidateListCmd)
	candidateCmd.AddCommand(candidateShowCmd)
	candidateCmd.AddCommand(candidateDeleteCmd)
	candidateCmd.AddCommand(candidateDocCmd)
}

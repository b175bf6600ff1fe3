package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"ats-go/internal/app"
	"ats-go/internal/ats"
	"ats-go/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ats",
	Short: "Applicant tracking",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		paths, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("getting defaults: %w", err)
		}
		return app.LoadEnv(app.EnvFiles(paths.BaseDir)...)
	},
	SilenceUsage: true,
}

// loadConfig reads the config file from the default location.
func loadConfig() (*config.Config, string, error) {
	paths, err := app.GetDefaults()
	if err != nil {
		return nil, "", fmt.Errorf("getting defaults: %w", err)
	}
	cfg, err := config.ReadFromFile(paths.ConfigPath)
	if err != nil {
		return nil, "", fmt.Errorf("reading config: %w", err)
	}
	return cfg, paths.ConfigPath, nil
}

// newApp reads the config and creates an App. The caller must defer a.Close().
func newApp(ctx context.Context) (*app.App, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, err
	}
	a, err := app.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

// actorContext applies the --actor flag on top of the configured actor.
func actorContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if actor, _ := cmd.Flags().GetString("actor"); actor != "" {
		ctx = ats.WithActor(ctx, actor)
	}
	return ctx
}

// readPassphrase prompts on the terminal, or reads one line from stdin when
// it is not a terminal. ATS_PASSPHRASE skips the prompt.
func readPassphrase(prompt string) (string, error) {
	if p := os.Getenv("ATS_PASSPHRASE"); p != "" {
		return p, nil
	}

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, prompt)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("reading passphrase: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// unlock prompts for the passphrase when documents are encrypted.
func unlock(a *app.App) (ats.DecryptionContext, error) {
	if !a.EncryptionEnabled() {
		return nil, nil
	}
	passphrase, err := readPassphrase("Passphrase: ")
	if err != nil {
		return nil, err
	}
	return a.Unlock(passphrase)
}

func printTable(w io.Writer, header []string, rows [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	table.AppendBulk(rows)
	table.Render()
}

func init() {
	rootCmd.PersistentFlags().String("actor", "", "Act as this user instead of the configured actor")

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(dbCmd)
	rootCmd.AddCommand(positionCmd)
	rootCmd.AddCommand(interviewerCmd)
	rootCmd.AddCommand(candidateCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(interviewCmd)
	rootCmd.AddCommand(calendarCmd)
	rootCmd.AddCommand(boardCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(insightsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(serveCmd)
}

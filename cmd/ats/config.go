package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"ats-go/internal/app"
	"ats-go/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(paths.BaseDir)
		cfg.Actor.Name, _ = cmd.Flags().GetString("actor")
		if err := config.Init(paths.ConfigPath, cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", paths.ConfigPath)
		fmt.Printf("Base Dir: %s\n", paths.BaseDir)
		fmt.Println("Run `ats db migrate` and `ats keys init` next.")
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := loadConfig()
		if err != nil {
			return err
		}

		fmt.Printf("Configuration from %s:\n\n", path)
		fmt.Printf("Base Dir:     %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:      %s\n", cfg.LogDir)
		fmt.Printf("Actor:        %s\n", cfg.Actor.Name)
		fmt.Printf("Database:     %s\n", cfg.Database.Type)
		fmt.Printf("Object Store: %s\n", cfg.ObjectStore.Type)
		fmt.Printf("Encryption:   %s\n", cfg.Encryption.Type)
		fmt.Printf("Insights:     %s\n", cfg.Insights.Provider)
		fmt.Printf("Server:       %s\n", cfg.Server.Addr)
		return nil
	},
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the object store is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		err = a.Track(cmd.Context(), "ValidateObjectStore", a.Config().ObjectStore.Type, func(ctx context.Context) error {
			return a.ValidateObjectStore(ctx)
		})
		if err != nil {
			return fmt.Errorf("object store check failed: %w", err)
		}
		fmt.Println("Object store OK")
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configCheckCmd)
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ats-go/internal/app"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the database",
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}

		db, err := app.OpenDatabase(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.MigrateUp(); err != nil {
			return fmt.Errorf("migrating: %w", err)
		}
		fmt.Println("Database is up to date.")
		return nil
	},
}

var dbSnapshotCmd = &cobra.Command{
	Use:   "snapshot [DEST]",
	Short: "Copy the database to a file or to the object store",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		upload, _ := cmd.Flags().GetBool("upload")
		if !upload && len(args) == 0 {
			return fmt.Errorf("either DEST or --upload is required")
		}

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if upload {
			locator, err := a.UploadSnapshot(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Snapshot uploaded to %s\n", locator)
			return nil
		}

		if err := a.Snapshot(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Snapshot written to %s\n", args[0])
		return nil
	},
}

func init() {
	dbCmd.AddCommand(dbMigrateCmd)
	dbCmd.AddCommand(dbSnapshotCmd)
	dbSnapshotCmd.Flags().Bool("upload", false, "Store the snapshot in the object store")
}

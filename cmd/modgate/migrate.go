package main

import (
	"fmt"

	"github.com/gigdesk/modgate/db"
	"github.com/gigdesk/modgate/internal/clifmt"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the record store schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		gdb, err := db.Open(cmd.Context(), dbConfigFromViper())
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		if err := db.AutoMigrate(gdb); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		fmt.Println(clifmt.Success("schema is up to date"))
		return nil
	},
}

package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/coverline/internal/store/postgres"
	"github.com/wonny/coverline/pkg/database"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the PostgreSQL schema",
	Long: `Create the coverline schema and tables in DATABASE_URL.

The schema statements are idempotent, so running migrate twice is safe.

Example:
  go run ./cmd/coverline migrate`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Coverline Migrate ===")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Database.URL == "" {
		return fmt.Errorf("❌ DATABASE_URL is not set")
	}

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("❌ Failed to connect to database: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	if err := postgres.New(db).Migrate(ctx); err != nil {
		return fmt.Errorf("❌ Migration failed: %w", err)
	}

	fmt.Println("✅ Schema applied")
	return nil
}

package app

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stacklok/toolhive-sync/database"
	"github.com/stacklok/toolhive-sync/internal/config"
)

// errMigrationCancelled is returned when the user declines the confirmation prompt
var errMigrationCancelled = errors.New("migration cancelled by user")

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tool",
		Long: `Database migration tool for the PostgreSQL state store.
Use with 'up' or 'down' subcommands.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Usage()
		},
	}

	cmd.PersistentFlags().BoolP("yes", "y", false, "Answer yes to all questions")
	cmd.PersistentFlags().String("config", "", "Path to configuration file (YAML format, required)")
	if err := cmd.MarkPersistentFlagRequired("config"); err != nil {
		panic(err)
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply pending database migrations",
		Long: `Apply all pending database migrations to bring the state store schema up to date.
The connection parameters are read from storage.database in the config file.`,
		RunE: runMigrateUp,
	}

	down := &cobra.Command{
		Use:   "down",
		Short: "Migrate the database down",
		Long: `Migrate the state store schema down by reverting migrations.
WARNING: This operation can result in data loss. Use with caution.

Examples:
  # Migrate down by 1 step
  thv-sync migrate down --config config.yaml --num-steps 1 --yes`,
		RunE: runMigrateDown,
	}
	down.Flags().UintP("num-steps", "n", 1, "Number of steps to migrate down")

	cmd.AddCommand(up, down)
	return cmd
}

func runMigrateUp(cmd *cobra.Command, _ []string) error {
	dbCfg, err := loadDatabaseConfig(cmd)
	if err != nil {
		return err
	}

	prompt := fmt.Sprintf("About to apply migrations to database %s@%s:%d/%s. Continue?",
		dbCfg.User, dbCfg.Host, dbCfg.Port, dbCfg.Database)
	if err := confirmMigration(cmd, prompt); err != nil {
		return err
	}

	connString, err := dbCfg.GetConnectionString()
	if err != nil {
		return fmt.Errorf("failed to build connection string: %w", err)
	}

	slog.Info("Applying database migrations...")
	if err := database.MigrateUp(connString); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func runMigrateDown(cmd *cobra.Command, _ []string) error {
	dbCfg, err := loadDatabaseConfig(cmd)
	if err != nil {
		return err
	}

	numSteps, err := cmd.Flags().GetUint("num-steps")
	if err != nil {
		return fmt.Errorf("failed to get num-steps flag: %w", err)
	}
	if numSteps == 0 || numSteps > 1000 {
		return fmt.Errorf("num-steps must be between 1 and 1000, got %d", numSteps)
	}

	prompt := fmt.Sprintf("WARNING: This will migrate down %d step(s) and may result in data loss. Continue?", numSteps)
	if err := confirmMigration(cmd, prompt); err != nil {
		return err
	}

	connString, err := dbCfg.GetConnectionString()
	if err != nil {
		return fmt.Errorf("failed to build connection string: %w", err)
	}

	slog.Info("Migrating down", "steps", numSteps)
	if err := database.MigrateDown(connString, int(numSteps)); err != nil { // #nosec G115 -- bounded above
		return fmt.Errorf("migration failed: %w", err)
	}
	slog.Info("Migration completed successfully")
	return nil
}

// loadDatabaseConfig reads the config file named by --config and returns its database section
func loadDatabaseConfig(cmd *cobra.Command) (*config.DatabaseConfig, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}

	cfg, err := config.LoadConfig(config.WithConfigPath(configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.Storage.Type != config.StorageTypeDatabase || cfg.Storage.Database == nil {
		return nil, fmt.Errorf("migrations require storage.type %q with a storage.database section", config.StorageTypeDatabase)
	}
	return cfg.Storage.Database, nil
}

// confirmMigration asks for confirmation on the command input unless --yes was given
func confirmMigration(cmd *cobra.Command, prompt string) error {
	yes, err := cmd.Flags().GetBool("yes")
	if err != nil {
		return fmt.Errorf("failed to get yes flag: %w", err)
	}
	if yes {
		return nil
	}

	if !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), prompt) {
		slog.Info("Migration cancelled")
		return errMigrationCancelled
	}
	return nil
}

func confirm(in io.Reader, out io.Writer, prompt string) bool {
	_, _ = fmt.Fprintf(out, "%s (yes/no): ", prompt)

	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(response)) {
	case "yes", "y":
		return true
	default:
		return false
	}
}

package cmd

import (
	"fmt"
	"sort"

	"marketplace/core/cdn"
	"marketplace/core/config"
	"marketplace/core/database"
	"marketplace/core/logger"
	"marketplace/feature/catalog"
	"marketplace/feature/contractor"
	"marketplace/feature/market/models"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var checkOnly bool

// migrateCmd creates or updates the database schema.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Long: `Runs AutoMigrate for every table owned by the marketplace.

With --check nothing is changed; the live schema is compared against the
expected columns and any missing ones are reported.`,
	RunE: runMigrate,
}

func init() {
	migrateCmd.Flags().BoolVar(&checkOnly, "check", false, "Only verify the schema, do not migrate")
	RootCmd.AddCommand(migrateCmd)
}

// schemaModels lists every table the service migrates.
func schemaModels() []any {
	return append(models.All(),
		&catalog.Item{},
		&contractor.Member{},
		&contractor.Grant{},
		&cdn.Resource{},
	)
}

// expectedSchema returns the required columns per table.
func expectedSchema() map[string][]string {
	expected := models.Schema()
	expected["game_items"] = []string{"id", "name", "item_type", "details_id"}
	expected["contractor_members"] = []string{"contractor_id", "user_id"}
	expected["contractor_capabilities"] = []string{"contractor_id", "user_id", "capability"}
	expected["image_resources"] = []string{"resource_id", "object_name", "filename", "content_type", "external_url", "tag", "created_at"}
	return expected
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return err
	}

	if !checkOnly {
		l.Info("Migrating schema", zap.Int("tables", len(schemaModels())))
		if err := database.Migrate(db, schemaModels()...); err != nil {
			return err
		}
	}

	missing, err := database.VerifySchema(db, expectedSchema())
	if err != nil {
		return fmt.Errorf("failed to verify schema: %w", err)
	}
	if len(missing) == 0 {
		l.Info("Schema is up to date")
		return nil
	}

	tables := make([]string, 0, len(missing))
	for table := range missing {
		tables = append(tables, table)
	}
	sort.Strings(tables)
	for _, table := range tables {
		l.Error("Missing columns", zap.String("table", table), zap.Strings("columns", missing[table]))
	}
	return fmt.Errorf("schema verification failed for %d tables", len(missing))
}

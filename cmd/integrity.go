package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"marketplace/core/config"
	"marketplace/core/database"
	"marketplace/core/logger"
	"marketplace/core/storage"
	"marketplace/feature/integrity"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	fixFlag    bool
	jsonOutput bool
)

// integrityCmd represents the integrity command
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Check the consistency of storage, schema and listing photos",
	Long:  `Runs every integrity check and reports what is missing or inconsistent. Nothing is repaired.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrity(cmd.Context(), true, true, true)
	},
}

// storageCmd represents the integrity storage command
var storageCmd = &cobra.Command{
	Use:   "storage",
	Short: "Check and fix the photo bucket",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrity(cmd.Context(), true, false, false)
	},
}

// schemaCmd represents the integrity schema command
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Check the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrity(cmd.Context(), false, true, false)
	},
}

// photosCmd represents the integrity photos command
var photosCmd = &cobra.Command{
	Use:   "photos",
	Short: "Check listing photos against image resources and the bucket",
	Long: `Finds photo associations whose resource is gone, listing resources attached
to no listing, and attached resources whose object is missing from the bucket.
With --fix the dangling associations are deleted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrity(cmd.Context(), false, false, true)
	},
}

func init() {
	RootCmd.AddCommand(integrityCmd)
	integrityCmd.AddCommand(storageCmd, schemaCmd, photosCmd)

	storageCmd.Flags().BoolVar(&fixFlag, "fix", false, "Create the bucket when missing")
	photosCmd.Flags().BoolVar(&fixFlag, "fix", false, "Delete dangling photo associations")
	photosCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the report as JSON")
}

// newIntegrityService builds the checker from configuration.
func newIntegrityService(cfg *config.Config, client storage.Client, db *gorm.DB, logg *zap.Logger) *integrity.Service {
	return integrity.NewService(client, db, integrity.Options{
		Bucket:   cfg.Storage.Bucket,
		Region:   cfg.Storage.Region,
		PhotoTag: cfg.Market.PhotoTag,
		Schema:   expectedSchema(),
	}, logg)
}

func runIntegrity(ctx context.Context, runStorage, runSchema, runPhotos bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to create storage client: %w", err)
	}

	// The bucket check works without a database.
	var db *gorm.DB
	if runSchema || runPhotos {
		if db, err = database.Connect(cfg.Database); err != nil {
			return fmt.Errorf("database connection required: %w", err)
		}
	}

	svc := newIntegrityService(cfg, client, db, logg)
	failed := false

	if runStorage {
		logg.Info("Checking photo bucket...", zap.String("bucket", cfg.Storage.Bucket))
		report, err := svc.CheckStorage(ctx)
		if err != nil {
			return fmt.Errorf("storage check failed: %w", err)
		}
		switch {
		case report.Exists:
			logg.Info("Bucket is present.")
		case fixFlag:
			if err := svc.FixStorage(ctx); err != nil {
				return fmt.Errorf("failed to create bucket: %w", err)
			}
			logg.Info("Bucket created.")
		default:
			logg.Warn("Bucket is missing. Run with --fix to create it.")
			failed = true
		}
	}

	if runSchema {
		logg.Info("Checking database schema...")
		report, err := svc.CheckSchema()
		if err != nil {
			return fmt.Errorf("schema check failed: %w", err)
		}
		if report.Matched {
			logg.Info("Schema matches the expected definition.")
		} else {
			tables := make([]string, 0, len(report.Tables))
			for table := range report.Tables {
				tables = append(tables, table)
			}
			sort.Strings(tables)
			for _, table := range tables {
				if tbl := report.Tables[table]; tbl.Status != "ok" {
					logg.Warn("Missing columns", zap.String("table", table), zap.Strings("columns", tbl.MissingColumns))
				}
			}
			failed = true
		}
	}

	if runPhotos {
		logg.Info("Checking listing photos...")
		report, err := svc.CheckPhotos(ctx)
		if err != nil {
			return fmt.Errorf("photo check failed: %w", err)
		}

		if jsonOutput {
			data, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal JSON: %w", err)
			}
			fmt.Fprintln(os.Stdout, string(data))
		}

		logg.Info("Photo check completed",
			zap.Int("checked", report.Checked),
			zap.Int("dangling", len(report.Dangling)),
			zap.Int("orphaned", len(report.Orphaned)),
			zap.Int("missing_objects", len(report.MissingObjects)),
		)

		if fixFlag && len(report.Dangling) > 0 {
			removed, err := svc.FixPhotos(ctx, report)
			if err != nil {
				return fmt.Errorf("failed to remove dangling photos: %w", err)
			}
			logg.Info("Dangling photos removed", zap.Int("removed", removed))
			report.Dangling = nil
		}
		if !report.Healthy() {
			failed = true
		}
	}

	if failed {
		return fmt.Errorf("integrity checks reported problems")
	}
	return nil
}

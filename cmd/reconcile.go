package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"marketplace/core/config"
	"marketplace/core/logger"
	"marketplace/core/reconcile"
	"marketplace/feature/market"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	reconcileListing string
	reconcilePhotos  []string
	dryRunPhotos     bool
	yesConfirm       bool
)

// reconcileCmd is the parent command for all reconcile operations.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile listing data with the CDN",
}

// photosReconcileCmd replaces the photo set of a listing.
var photosReconcileCmd = &cobra.Command{
	Use:   "photos",
	Short: "Plan and apply the photo set of a listing",
	Long: `Compare the desired photos of a listing with its current resources.

CDN URLs of current photos are kept, external URLs are fetched and uploaded,
and current photos not listed are removed.

Examples:
  # Show the plan only
  reconcile photos --listing 0b6c... --photo https://cdn/.../a.png --dry-run

  # Apply without the interactive prompt
  reconcile photos --listing 0b6c... --photo https://img.example/new.png --yes`,
	RunE: runPhotosReconcile,
}

func init() {
	reconcileCmd.AddCommand(photosReconcileCmd)

	photosReconcileCmd.Flags().StringVar(&reconcileListing, "listing", "", "Listing id")
	photosReconcileCmd.Flags().StringArrayVar(&reconcilePhotos, "photo", nil, "Desired photo URL (repeatable, in order)")
	photosReconcileCmd.Flags().BoolVar(&dryRunPhotos, "dry-run", false, "Force dry-run (no mutations even with --yes)")
	photosReconcileCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm destructive actions (non-interactive)")
	_ = photosReconcileCmd.MarkFlagRequired("listing")

	RootCmd.AddCommand(reconcileCmd)
}

func runPhotosReconcile(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	svcs, err := buildServices(ctx, cfg, l)
	if err != nil {
		return err
	}
	defer svcs.Close()

	operator := market.Actor{UserID: "operator", Admin: true}

	// Step 1: Plan (always runs)
	l.Info("Planning photo reconciliation", zap.String("listing_id", reconcileListing))
	plan, err := svcs.market.ReconcileListingPhotos(ctx, operator, reconcileListing, reconcilePhotos, reconcile.Options{DryRun: true})
	if err != nil {
		return fmt.Errorf("failed to plan reconciliation: %w", err)
	}

	// Step 2: Print report
	printReconcileReport(l, plan)

	if plan.Empty() {
		l.Info("No actions required.")
		return nil
	}
	if dryRunPhotos {
		l.Info("Dry-run mode: No changes were made.")
		return nil
	}

	// Step 3: Apply (if confirmed)
	if !confirmDestructiveAction() {
		l.Warn("Operation cancelled by user. No changes were made.")
		return nil
	}

	l.Info("Applying actions...")
	applied, err := svcs.market.ReconcileListingPhotos(ctx, operator, reconcileListing, reconcilePhotos, reconcile.Execute())
	if err != nil {
		return fmt.Errorf("failed to apply plan: %w", err)
	}
	l.Info("Successfully executed actions",
		zap.Int("created", applied.Summary.Create),
		zap.Int("deleted", applied.Summary.Delete))
	return nil
}

// printReconcileReport prints a formatted reconciliation report using logger.
func printReconcileReport(l *zap.Logger, plan *reconcile.Plan) {
	s := plan.Summary
	l.Info("Reconciliation report",
		zap.Int("total", s.Total),
		zap.Int("preserve", s.Preserve),
		zap.Int("create", s.Create),
		zap.Int("delete", s.Delete),
	)

	maxShow := 5
	if len(plan.Actions) < maxShow {
		maxShow = len(plan.Actions)
	}
	for i := 0; i < maxShow; i++ {
		action := plan.Actions[i]
		l.Info("Sample action",
			zap.String("type", string(action.Type)),
			zap.String("key", action.Key),
			zap.String("reason", action.Reason),
		)
	}
	if len(plan.Actions) > maxShow {
		l.Info("Additional actions not shown", zap.Int("count", len(plan.Actions)-maxShow))
	}
}

// confirmDestructiveAction prompts the user for confirmation or uses --yes flag.
func confirmDestructiveAction() bool {
	if yesConfirm {
		fmt.Println("\nAuto-confirmed via --yes flag")
		return true
	}

	fmt.Print("\nType 'yes' to confirm destructive actions: ")
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	return strings.TrimSpace(response) == "yes"
}

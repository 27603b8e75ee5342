package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wms-platform/dropzone-service/internal/application"
	"github.com/wms-platform/dropzone-service/internal/config"
	"github.com/wms-platform/dropzone-service/internal/domain"
	"github.com/wms-platform/dropzone-service/internal/infrastructure/containersearch"
	"github.com/wms-platform/dropzone-service/internal/infrastructure/session"
	"github.com/wms-platform/dropzone-service/pkg/resilience"
)

type scanOptions struct {
	output   string
	jsonOut  bool
	progress bool
}

func newScanCmd(a *app) *cobra.Command {
	var opts scanOptions

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan drop zones and print the destination summary",
		Example: `  dropzonectl scan --prefix DZ-A --start 1 --end 40 --width 2 --output dropzones.csv
  dropzonectl scan --profile-file morning.yaml --mode surface`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.runScan(ctx, cmd, opts)
		},
	}

	addZoneFlags(cmd)
	flags := cmd.Flags()
	flags.String("mode", "", "scan mode: surface (no pallet lookups) or deep")
	flags.Int("batch-size", 0, "zones scanned concurrently per batch")
	flags.Duration("batch-delay", 0, "pause between batches")
	flags.Int("pallet-concurrency", 0, "concurrent pallet lookups per zone")
	flags.Bool("silent", false, "suppress per-request logging")
	flags.String("base-url", "", "container search base URL")
	flags.String("zone-id", "", "warehouse id of the operator session")
	flags.String("operator-id", "", "operator login of the session")
	flags.String("cookie", "", "session cookie header sent with every search")
	flags.StringVarP(&opts.output, "output", "o", "", "write the results as CSV to this file")
	flags.BoolVar(&opts.jsonOut, "json", false, "print the aggregation as JSON instead of a table")
	flags.BoolVar(&opts.progress, "progress", true, "report progress on stderr")

	configFlag(flags, "mode", config.KeyScanMode)
	configFlag(flags, "batch-size", config.KeyScanBatchSize)
	configFlag(flags, "batch-delay", config.KeyScanBatchDelay)
	configFlag(flags, "pallet-concurrency", config.KeyScanPalletConcurrency)
	configFlag(flags, "silent", config.KeyScanSilent)
	configFlag(flags, "base-url", config.KeySearchBaseURL)
	configFlag(flags, "zone-id", config.KeySessionZoneID)
	configFlag(flags, "operator-id", config.KeySessionOperatorID)
	configFlag(flags, "cookie", config.KeySearchCookie)

	return cmd
}

func (a *app) runScan(ctx context.Context, cmd *cobra.Command, opts scanOptions) error {
	plan, err := a.resolveZones(cmd)
	if err != nil {
		return err
	}

	store := session.NewStore(a.cfg.Session, a.cfg.Search.Cookie)
	snapshot := store.Snapshot()
	if err := snapshot.Validate(); err != nil {
		return fmt.Errorf("%w (set --zone-id and --operator-id)", err)
	}

	client, err := containersearch.NewClient(&containersearch.Config{
		BaseURL:        a.cfg.Search.BaseURL,
		EndpointPath:   a.cfg.Search.EndpointPath,
		Locale:         a.cfg.Search.Locale,
		Timeout:        a.cfg.Search.Timeout,
		CircuitBreaker: resilience.DefaultCircuitBreakerConfig("container-search"),
	}, store, a.logger)
	if err != nil {
		return err
	}

	scanner := application.NewZoneScanner(client, application.ZoneScannerConfig{
		Mode:              plan.mode,
		PalletConcurrency: a.cfg.Scan.PalletConcurrency,
		Silent:            a.cfg.Scan.Silent,
	}, a.logger, nil)
	orchestrator := application.NewScanOrchestrator(scanner, application.OrchestratorConfig{
		BatchSize:  plan.batchSize,
		BatchDelay: a.cfg.Scan.BatchDelay,
	}, a.logger)

	profileName := ""
	if plan.profile != nil {
		profileName = plan.profile.Name
	}
	a.logger.Info("Starting scan",
		"zones", len(plan.zoneIDs),
		"mode", plan.mode,
		"batchSize", plan.batchSize,
		"profile", profileName,
	)

	stderr := cmd.ErrOrStderr()
	callbacks := application.Callbacks{}
	if opts.progress {
		callbacks.OnProgress = func(completed, total int) {
			fmt.Fprintf(stderr, "scanned %d/%d zones\n", completed, total)
		}
	}

	results, runErr := orchestrator.RunScan(ctx, plan.zoneIDs, snapshot, callbacks)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}

	if opts.output != "" {
		if err := writeCSVFile(opts.output, results); err != nil {
			return err
		}
		fmt.Fprintf(stderr, "wrote %d zones to %s\n", len(results), opts.output)
	}

	agg := domain.Aggregate(results)
	out := cmd.OutOrStdout()
	if opts.jsonOut {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(agg); err != nil {
			return err
		}
	} else {
		fmt.Fprint(out, renderSummary(agg, plan.mode))
	}

	if runErr != nil {
		return fmt.Errorf("scan interrupted after %d of %d zones: %w", len(results), len(plan.zoneIDs), runErr)
	}
	return nil
}

func writeCSVFile(path string, results []domain.ZoneScanResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	if err := domain.WriteCSV(f, results); err != nil {
		_ = f.Close()
		return fmt.Errorf("write output file: %w", err)
	}
	return f.Close()
}

package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/receipt-reconciler/internal/cache"
	"github.com/joseph-ayodele/receipt-reconciler/internal/common"
	"github.com/joseph-ayodele/receipt-reconciler/internal/export"
	"github.com/joseph-ayodele/receipt-reconciler/internal/extract"
	"github.com/joseph-ayodele/receipt-reconciler/internal/input"
	"github.com/joseph-ayodele/receipt-reconciler/internal/ledger"
	"github.com/joseph-ayodele/receipt-reconciler/internal/reconcile"
)

var (
	inputPath string
	sourceDir string
	outDir    string
	cacheDir  string
	noLedger  bool
)

var rootCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile scanned receipts against the OCR extraction service",
	Long: `Reconcile a batch of scanned receipt files against the extraction
service, producing results.csv, results.json, and results.xlsx.

Extraction results are cached by file content hash, so re-running a batch
never re-sends bytes the service has already seen.`,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one reconciliation batch",
	RunE:  runBatch,
}

func init() {
	runCmd.Flags().StringVar(&inputPath, "input", "", "input CSV with a SourceFile column (required)")
	runCmd.Flags().StringVar(&sourceDir, "source-dir", "", "directory receipt paths are relative to (default: input file's directory)")
	runCmd.Flags().StringVar(&outDir, "out-dir", ".", "directory to write results into")
	runCmd.Flags().StringVar(&cacheDir, "cache-dir", "", "extraction cache directory (default: $EXTRACT_CACHE_DIR)")
	runCmd.Flags().BoolVar(&noLedger, "no-ledger", false, "skip recording this run in the SQLite ledger")
	_ = runCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(runCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	logger := slog.Default()
	ctx := context.Background()

	cfg := common.LoadConfig()
	if cacheDir != "" {
		cfg.Cache.Dir = cacheDir
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if sourceDir == "" {
		sourceDir = filepath.Dir(inputPath)
	}

	rows, err := input.ReadRecords(inputPath)
	if err != nil {
		return err
	}
	logger.Info("input.loaded", "path", inputPath, "rows", len(rows))

	store, err := cache.NewStore(cfg.Cache.Dir, logger)
	if err != nil {
		return err
	}
	client := extract.NewHTTPClient(cfg.Extract, logger)

	var recorder reconcile.RunRecorder
	var led *ledger.Ledger
	if !noLedger {
		led, err = ledger.Open(cfg.Ledger.Path, logger)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := led.Close(); cerr != nil {
				logger.Error("ledger.close_error", "error", cerr)
			}
		}()
		if _, err := led.StartRun(ctx); err != nil {
			return err
		}
		recorder = led
	}

	pipeline := reconcile.NewPipeline(store, client, recorder, logger)
	recs, sum, err := pipeline.Reconcile(ctx, rows, sourceDir)
	if err != nil {
		return err
	}

	if led != nil {
		if err := led.FinishRun(ctx, sum); err != nil {
			logger.Warn("ledger.finish_error", "error", err)
		}
	}

	return export.NewService(logger).WriteAll(outDir, recs)
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn("dotenv load", "error", err)
	}

	if err := rootCmd.Execute(); err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/Houeta/page-press/internal/bot"
	"github.com/Houeta/page-press/internal/config"
	"github.com/Houeta/page-press/internal/models"
	"github.com/Houeta/page-press/internal/pricing"
	"github.com/Houeta/page-press/internal/repository/sqlite"
	"github.com/Houeta/page-press/internal/services/inspector"
	"github.com/Houeta/page-press/internal/services/patcher"
	"github.com/Houeta/page-press/internal/services/renderer"
)

// Constants for different environment types.
const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

// main is the entry point of the application.
func main() {
	// Create a context that will be canceled when an interrupt signal is received.
	// This allows for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	command, args := os.Args[1], os.Args[2:]

	cfg := config.MustLoad()

	// Set up the logger based on the environment.
	logger := setupLogger(cfg.Env)

	repo, err := sqlite.NewRepository(ctx, logger, cfg.StoragePath)
	if err != nil {
		log.Fatalf("Failed to open product database: %v", err)
	}
	defer repo.Close()

	if err = run(ctx, logger, cfg, repo, command, args); err != nil {
		logger.ErrorContext(ctx, "Command failed", "command", command, "error", err)
		os.Exit(1)
	}
}

func run(
	ctx context.Context,
	logger *slog.Logger,
	cfg *config.Config,
	repo *sqlite.Repository,
	command string,
	args []string,
) error {
	rnd := renderer.NewRenderer(logger, repo, cfg.TemplatePath, cfg.OutputDir)
	eng := patcher.NewPatcher(logger, repo, cfg.OutputDir)
	insp := inspector.NewInspector(logger, repo, cfg.OutputDir)

	switch command {
	case "render":
		return runRender(ctx, rnd)
	case "patch":
		return runPatch(ctx, cfg, logger, repo, eng, args)
	case "sale-sync":
		return runSaleSync(ctx, eng)
	case "backups":
		return runBackups(ctx, eng, args)
	case "restore":
		return runRestore(ctx, eng, args)
	case "assign-ids":
		return runAssignIDs(ctx, logger, rnd)
	case "report":
		return runReport(ctx, insp)
	case "cleanup":
		return runCleanup(ctx, insp, args)
	case "bot":
		return runBot(ctx, logger, cfg, repo)
	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func runRender(ctx context.Context, rnd *renderer.Renderer) error {
	report, err := rnd.RenderAll(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("rendered %d document(s), assigned %d display id(s)\n", report.Rendered, report.AssignedIDs)
	if len(report.Failures) > 0 {
		return fmt.Errorf("%d document(s) failed to render", len(report.Failures))
	}
	return nil
}

func runPatch(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	repo *sqlite.Repository,
	eng *patcher.Patcher,
	args []string,
) error {
	fs := flag.NewFlagSet("patch", flag.ContinueOnError)
	id := fs.String("id", "", "product id (required)")
	active := fs.Bool("active", true, "sale active flag")
	price := fs.String("price", "", "discounted price; empty keeps the stored sale state")
	prev := fs.String("prev", "", "struck-through price; empty falls back to the base price")
	clear := fs.Bool("clear", false, "remove the sale entirely")
	dryRun := fs.Bool("dry-run", false, "compute and validate the patch without writing")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return errors.New("patch: -id is required")
	}

	// Persist the desired sale state first, then patch the document from it,
	// so the database and the page can never disagree. A dry run touches
	// neither.
	if !*dryRun {
		sale, set, err := saleFromFlags(*price, *prev, *active, *clear)
		if err != nil {
			return err
		}
		if set {
			if err = repo.UpdateSale(ctx, *id, sale); err != nil {
				return err
			}
		}
	}

	result, err := eng.Apply(ctx, *id, *dryRun)
	if err != nil {
		return err
	}

	if result.DryRun {
		fmt.Printf("dry run ok: %s\n", result.Page)
		return nil
	}
	fmt.Printf("patched %s (backup: %s)\n", result.Page, result.BackupPath)

	notifySaleChange(ctx, logger, cfg, repo, *id)
	return nil
}

func saleFromFlags(price, prev string, active, clear bool) (*models.SaleState, bool, error) {
	if clear {
		return nil, true, nil
	}
	if price == "" {
		return nil, false, nil
	}

	p, err := decimal.NewFromString(price)
	if err != nil {
		return nil, false, fmt.Errorf("patch: invalid -price: %w", err)
	}
	sale := &models.SaleState{Active: active, Price: p}

	if prev != "" {
		pp, err := decimal.NewFromString(prev)
		if err != nil {
			return nil, false, fmt.Errorf("patch: invalid -prev: %w", err)
		}
		sale.PrevPrice = &pp
	}
	return sale, true, nil
}

// notifySaleChange broadcasts the toggle to subscribed chats when a telegram
// token is configured. Notification failures never fail the patch.
func notifySaleChange(
	ctx context.Context,
	logger *slog.Logger,
	cfg *config.Config,
	repo *sqlite.Repository,
	productID string,
) {
	if cfg.Tg.Token == "" {
		return
	}

	product, err := repo.GetProduct(ctx, productID)
	if err != nil {
		logger.WarnContext(ctx, "Skipping notification", "error", err)
		return
	}

	notifier, err := bot.NewBot(logger, repo, cfg.Tg.Token, cfg.Tg.Timeout)
	if err != nil {
		logger.WarnContext(ctx, "Skipping notification", "error", err)
		return
	}

	quote := pricing.Resolve(product.Price, product.Sale)
	if err = notifier.NotifySaleChange(ctx, product, quote); err != nil {
		logger.WarnContext(ctx, "Failed to broadcast sale change", "error", err)
	}
}

func runSaleSync(ctx context.Context, eng *patcher.Patcher) error {
	report, err := eng.SyncActiveSales(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("patched %d document(s), skipped %d without an active sale\n", report.Patched, report.Skipped)
	if len(report.Failures) > 0 {
		return fmt.Errorf("%d document(s) failed to patch", len(report.Failures))
	}
	return nil
}

func runBackups(ctx context.Context, eng *patcher.Patcher, args []string) error {
	fs := flag.NewFlagSet("backups", flag.ContinueOnError)
	id := fs.String("id", "", "product id (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return errors.New("backups: -id is required")
	}

	backups, err := eng.Backups(ctx, *id)
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		fmt.Println("no backups")
		return nil
	}
	for _, b := range backups {
		fmt.Println(b)
	}
	return nil
}

func runRestore(ctx context.Context, eng *patcher.Patcher, args []string) error {
	fs := flag.NewFlagSet("restore", flag.ContinueOnError)
	id := fs.String("id", "", "product id (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return errors.New("restore: -id is required")
	}

	used, err := eng.Restore(ctx, *id)
	if err != nil {
		return err
	}
	fmt.Printf("restored from %s\n", used)
	return nil
}

func runAssignIDs(ctx context.Context, logger *slog.Logger, rnd *renderer.Renderer) error {
	assigned, err := rnd.AssignDisplayIDs(ctx)
	if err != nil {
		return err
	}
	logger.InfoContext(ctx, "Display id migration complete", "assigned", assigned)
	fmt.Printf("assigned %d display id(s)\n", assigned)
	return nil
}

func runReport(ctx context.Context, insp *inspector.Inspector) error {
	report, err := insp.Scan(ctx)
	if err != nil {
		return err
	}

	for _, d := range report.Documents {
		status := "ok"
		switch {
		case d.Orphan:
			status = "orphan"
		case !d.HasMarker || !d.HasPrice || !d.HasTotal || !d.HasRibbon:
			status = fmt.Sprintf("broken (marker=%t price=%t total=%t ribbon=%t)",
				d.HasMarker, d.HasPrice, d.HasTotal, d.HasRibbon)
		}
		fmt.Printf("%s\t%s\t%s\n", d.File, d.ProductID, status)
	}
	return nil
}

func runCleanup(ctx context.Context, insp *inspector.Inspector, args []string) error {
	fs := flag.NewFlagSet("cleanup", flag.ContinueOnError)
	apply := fs.Bool("apply", false, "actually delete orphaned documents")
	if err := fs.Parse(args); err != nil {
		return err
	}

	orphans, err := insp.CleanupOrphans(ctx, *apply)
	if err != nil {
		return err
	}
	verb := "would delete"
	if *apply {
		verb = "deleted"
	}
	fmt.Printf("%s %d orphaned document(s)\n", verb, len(orphans))
	for _, o := range orphans {
		fmt.Println(o)
	}
	return nil
}

func runBot(ctx context.Context, logger *slog.Logger, cfg *config.Config, repo *sqlite.Repository) error {
	if cfg.Tg.Token == "" {
		return errors.New("bot: PP_TELEGRAM_TOKEN is not set")
	}

	pageBot, err := bot.NewBot(logger, repo, cfg.Tg.Token, cfg.Tg.Timeout)
	if err != nil {
		return fmt.Errorf("failed to init bot: %w", err)
	}

	// Log that the application has started.
	logger.InfoContext(ctx, "Bot started. Press Ctrl+C to stop.")

	// Start the bot in a goroutine to allow main to listen for signals.
	go pageBot.Start()

	// Wait for the context to be canceled (e.g., by Ctrl+C).
	<-ctx.Done()

	// Stop the bot gracefully.
	pageBot.Stop()
	logger.InfoContext(ctx, "Bot stopped gracefully.")
	return nil
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: pagepress <command> [flags]

commands:
  render       regenerate every product document from the template
  patch        patch one product's document (-id, [-active] [-price] [-prev] [-clear] [-dry-run])
  sale-sync    force-patch every product with an active sale
  backups      list backups for a product's document (-id)
  restore      restore the most recent backup (-id)
  assign-ids   assign missing display ids over the whole catalog
  report       structural report over all generated documents
  cleanup      list orphaned documents, delete with -apply
  bot          run the telegram subscription bot`)
}

// setupLogger initializes and returns a logger based on the environment provided.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelDebug,
				AddSource: true,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					return a
				},
			}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelInfo,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					return a
				},
			}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelWarn,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{}
					}
					return a
				},
			}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelError,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{}
					}
					return a
				},
			}),
		)

		log.Error(
			"The env parameter was not specified	 or was invalid. Logging will be minimal, by default.",
			slog.String("available_envs", "local, development, production"))
	}

	return log
}

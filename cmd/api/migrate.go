package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/GabKongroo/NothingSpecial/internal/logger"
	"github.com/GabKongroo/NothingSpecial/internal/migration"
	"github.com/GabKongroo/NothingSpecial/internal/models"
	"github.com/GabKongroo/NothingSpecial/internal/repository"
	"github.com/GabKongroo/NothingSpecial/internal/repository/memory"
	"github.com/GabKongroo/NothingSpecial/internal/services"
	"github.com/GabKongroo/NothingSpecial/internal/storage"
	"github.com/spf13/cobra"
)

var (
	migrateSourceDir string
	migrateOutputDir string
	migrateRunID     string
	migrateDryRun    bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy beats from the Drive tree to R2 and add them to the catalog",
	Long: `Walks <genre>/<mood>/<beat> folders, publishes master, preview and cover
files and inserts every complete beat that is not catalogued yet.

--source-dir reads the tree from disk instead of Drive, --output-dir writes
objects to disk instead of R2 and --dry-run keeps the catalog in memory.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := runMigrate(ctx); err != nil {
			logger.Fatal("migration aborted", logger.ErrorField(err))
		}
	},
}

func init() {
	migrateCmd.Flags().StringVar(&migrateSourceDir, "source-dir", "", "read the beat tree from this local directory")
	migrateCmd.Flags().StringVar(&migrateOutputDir, "output-dir", "", "write objects under this local directory instead of R2")
	migrateCmd.Flags().StringVar(&migrateRunID, "run-id", "", "identifier of this run (generated when empty)")
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "use an in-memory catalog")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(ctx context.Context) error {
	var (
		source migration.Source
		rootID string
	)
	if migrateSourceDir != "" {
		local := storage.NewLocalSource(migrateSourceDir)
		source, rootID = local, local.RootID()
	} else {
		src, id, err := newDriveSource(ctx, cfg)
		if err != nil {
			return err
		}
		source, rootID = src, id
	}

	var store migration.ObjectStore
	if migrateOutputDir != "" {
		store = storage.NewLocalObjectStore(migrateOutputDir)
	} else {
		r2Service, err := services.NewR2Service(cfg)
		if err != nil {
			return err
		}
		store = r2Service
	}

	var catalog migration.Catalog
	if migrateDryRun {
		catalog = memory.NewStore().Beats()
	} else {
		db, err := models.InitDB(cfg)
		if err != nil {
			return err
		}
		if err := models.Migrate(db); err != nil {
			return err
		}
		catalog = repository.NewGormBeatRepository(db)
	}

	publisher := newEventPublisher(cfg)
	defer publisher.Close()

	svc := services.NewMigrationService(migrationDeps(cfg, source, rootID, store, catalog), nil, publisher, nil).
		WithReporter(migration.ReporterFunc(logProgress))

	result, err := svc.Run(ctx, "cli", migrateRunID)
	if err != nil {
		return err
	}
	if !result.Success {
		return result.Err
	}
	logger.Info(result.Summary, logger.String("run_id", result.RunID))
	return nil
}

func logProgress(_ context.Context, p migration.Progress) {
	switch p.State {
	case migration.StateEvaluatingBeat:
		logger.Debug(p.Message, logger.String("run_id", p.RunID))
	default:
		logger.Info(p.Message,
			logger.String("run_id", p.RunID),
			logger.String("state", string(p.State)),
			logger.Int("percent", p.Percent))
	}
}

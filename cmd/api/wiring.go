package main

import (
	"context"
	"fmt"

	"github.com/GabKongroo/NothingSpecial/internal/config"
	"github.com/GabKongroo/NothingSpecial/internal/events"
	"github.com/GabKongroo/NothingSpecial/internal/logger"
	"github.com/GabKongroo/NothingSpecial/internal/migration"
	"github.com/GabKongroo/NothingSpecial/internal/pkg/audio"
	"github.com/GabKongroo/NothingSpecial/internal/services"
	"github.com/GabKongroo/NothingSpecial/internal/storage"
)

func newEventPublisher(cfg *config.Config) events.Publisher {
	if cfg.AMQPURL == "" {
		logger.Info("AMQP_URL not set, catalog events disabled")
		return events.NopPublisher{}
	}
	return events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
}

func newTranscoder(cfg *config.Config) migration.Transcoder {
	return audio.NewFFmpegTranscoder(cfg.FFmpegPath, cfg.PreviewBitrate)
}

// newDriveSource connects to the configured Drive account.
func newDriveSource(ctx context.Context, cfg *config.Config) (migration.Source, string, error) {
	if cfg.DriveRootFolderID == "" {
		return nil, "", fmt.Errorf("GDRIVE_ROOT_FOLDER_ID is not set")
	}
	opts, err := storage.DriveOptions(cfg)
	if err != nil {
		return nil, "", err
	}
	src, err := storage.NewDriveSource(ctx, opts...)
	if err != nil {
		return nil, "", err
	}
	return src, cfg.DriveRootFolderID, nil
}

func migrationDeps(cfg *config.Config, src migration.Source, rootID string, store migration.ObjectStore, catalog migration.Catalog) services.MigrationDeps {
	return services.MigrationDeps{
		Source:       src,
		RootID:       rootID,
		Store:        store,
		Transcoder:   newTranscoder(cfg),
		Catalog:      catalog,
		Layout:       migration.DefaultLayout(cfg.R2PrivateBucket, cfg.R2PublicBucket),
		DefaultPrice: cfg.MigrationDefaultPrice,
	}
}

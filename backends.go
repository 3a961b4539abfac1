package main

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/huntdb95-cloud/PERSONALAUTO/internal/cache"
	"github.com/huntdb95-cloud/PERSONALAUTO/internal/config"
	"github.com/huntdb95-cloud/PERSONALAUTO/internal/events"
	"github.com/huntdb95-cloud/PERSONALAUTO/internal/files"
	"github.com/huntdb95-cloud/PERSONALAUTO/internal/storage"
	"github.com/huntdb95-cloud/PERSONALAUTO/pkg/logger"
)

// intakePrefix is the object key prefix used for intakes in the bucket.
const intakePrefix = "intakes/"

type backends struct {
	store      cache.Store
	storeName  string
	picker     files.Picker
	pickerName string
	downloader files.Downloader
	events     events.Publisher
	eventsName string
	closers    []func() error
}

func (b *backends) close() {
	for _, c := range b.closers {
		if err := c(); err != nil {
			logger.Warnf("close backend: %v", err)
		}
	}
}

// openBackends resolves every configured backend. Anything that cannot be
// reached degrades: the cache to memory, files to unsupported, events to nop.
func openBackends(ctx context.Context, cfg *config.Config, rc *redis.Client, mc *mongo.Client) *backends {
	b := &backends{}

	store, err := cache.Open(cfg.Autosave, cfg.MongoDB.Database, rc, mc)
	if err != nil {
		logger.Warnf("autosave backend %s unavailable, using memory: %v", cfg.Autosave.Backend, err)
		store = cache.NewMemoryCache()
		b.storeName = "memory"
	} else {
		b.storeName = cfg.Autosave.Backend
	}
	b.store = store

	b.pickerName = cfg.Files.Mode
	switch cfg.Files.Mode {
	case "local":
		p, err := files.NewLocalPicker(cfg.Files.Dir, files.ContextPrompter{})
		if err != nil {
			logger.Warnf("files dir %s unusable: %v", cfg.Files.Dir, err)
			b.pickerName = "none"
		} else {
			b.picker = p
		}
	case "minio":
		s, err := storage.NewMinIOStorage(ctx, cfg.MinIO)
		if err != nil {
			logger.Warnf("minio unavailable, file save disabled: %v", err)
			b.pickerName = "none"
		} else {
			b.picker = files.NewObjectPicker(s, intakePrefix, files.ContextPrompter{})
		}
	}

	if cfg.Files.DownloadDir != "" {
		d, err := files.NewDirDownloader(cfg.Files.DownloadDir)
		if err != nil {
			logger.Warnf("download dir %s unusable: %v", cfg.Files.DownloadDir, err)
		} else {
			b.downloader = d
		}
	}

	b.events = events.Nop{}
	b.eventsName = "none"
	if cfg.Rabbit.URI != "" {
		pub, err := events.NewRabbitPublisher(cfg.Rabbit.URI, cfg.Rabbit.Queue)
		if err != nil {
			logger.Warnf("rabbitmq unavailable, events disabled: %v", err)
		} else {
			b.events = pub
			b.eventsName = "rabbitmq"
			b.closers = append(b.closers, pub.Close)
		}
	}
	return b
}

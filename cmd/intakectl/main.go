// Command intakectl inspects and edits the cached intake draft from a shell.
//
//	intakectl show
//	intakectl export <file>
//	intakectl import <file>
//	intakectl clear
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/huntdb95-cloud/PERSONALAUTO/internal/cache"
	"github.com/huntdb95-cloud/PERSONALAUTO/internal/config"
	"github.com/huntdb95-cloud/PERSONALAUTO/internal/database"
	"github.com/huntdb95-cloud/PERSONALAUTO/internal/intake"
	"github.com/huntdb95-cloud/PERSONALAUTO/pkg/logger"
)

const usage = "usage: intakectl show | export <file> | import <file> | clear"

var errUsage = errors.New(usage)

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var rc *redis.Client
	if cfg.Autosave.Backend == "redis" {
		rc, err = database.ConnectRedis(ctx, cfg.Redis, 5*time.Second)
		if err != nil {
			logger.Fatalf("redis: %v", err)
		}
		defer rc.Close()
	}
	var mc *mongo.Client
	if cfg.Autosave.Backend == "mongo" {
		mc, err = database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
		if err != nil {
			logger.Fatalf("mongo: %v", err)
		}
		defer func() { _ = mc.Disconnect(context.Background()) }()
	}

	store, err := cache.Open(cfg.Autosave, cfg.MongoDB.Database, rc, mc)
	if err != nil {
		logger.Fatalf("open cache: %v", err)
	}
	if err := run(ctx, os.Args[1:], store, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, store cache.Store, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "show":
		doc, err := store.Load(ctx)
		if err != nil {
			return err
		}
		if doc == nil {
			fmt.Fprintln(out, "no cached draft")
			return nil
		}
		b, err := intake.EncodePretty(*doc)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(b))
		return err
	case "export":
		if len(args) != 2 {
			return errUsage
		}
		doc, err := store.Load(ctx)
		if err != nil {
			return err
		}
		if doc == nil {
			return errors.New("no cached draft to export")
		}
		b, err := intake.EncodePretty(*doc)
		if err != nil {
			return err
		}
		if err := os.WriteFile(args[1], b, 0o644); err != nil {
			return err
		}
		fmt.Fprintf(out, "exported draft to %s\n", args[1])
		return nil
	case "import":
		if len(args) != 2 {
			return errUsage
		}
		raw, err := os.ReadFile(args[1])
		if err != nil {
			return err
		}
		doc, ok, err := intake.Parse(raw)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%s: not a JSON object", args[1])
		}
		if err := store.Save(ctx, doc); err != nil {
			return err
		}
		fmt.Fprintf(out, "imported %s\n", args[1])
		return nil
	case "clear":
		if err := store.Clear(ctx); err != nil {
			return err
		}
		fmt.Fprintln(out, "cleared cached draft")
		return nil
	}
	return errUsage
}

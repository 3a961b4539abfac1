package cache

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/huntdb95-cloud/PERSONALAUTO/internal/config"
)

// DraftsCollection holds cached drafts when the mongo backend is selected.
const DraftsCollection = "drafts"

// Open returns the Store named by cfg.Backend. The redis and mongo backends
// need a connected client; nil means the backend is unavailable.
func Open(cfg config.AutosaveConfig, mongoDB string, rc *redis.Client, mc *mongo.Client) (Store, error) {
	switch cfg.Backend {
	case "memory":
		return NewMemoryCache(), nil
	case "file":
		return NewFileCache(cfg.Dir, cfg.Key)
	case "redis":
		if rc == nil {
			return nil, fmt.Errorf("redis autosave backend unavailable")
		}
		return NewRedisCache(rc, cfg.Key), nil
	case "mongo":
		if mc == nil {
			return nil, fmt.Errorf("mongo autosave backend unavailable")
		}
		return NewMongoCache(mc.Database(mongoDB).Collection(DraftsCollection), cfg.Key), nil
	default:
		return nil, fmt.Errorf("unknown autosave backend %q", cfg.Backend)
	}
}

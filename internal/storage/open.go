package storage

import (
	"fmt"
	"log/slog"
)

// Backend names accepted by Open
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Open builds the Store selected by backend
func Open(backend, path, redisURL string, logger *slog.Logger) (Store, error) {
	switch backend {
	case BackendFile, "":
		fs, err := NewFileStore(path, logger)
		if err != nil {
			return nil, err
		}
		return fs, nil
	case BackendRedis:
		rs, err := NewRedisStore(redisURL, logger)
		if err != nil {
			return nil, err
		}
		return rs, nil
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", backend)
	}
}

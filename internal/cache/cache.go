// Package cache provides disk-based caching for directory listings.
package cache

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// DefaultExpiry is how long cached listings are valid (7 days).
	// Countries and languages barely change; stations are never cached.
	DefaultExpiry = 7 * 24 * time.Hour
	// ListingSubdir is the subdirectory for cached directory listings.
	ListingSubdir = "listings"
	// AppName is used for the cache directory name.
	AppName = "radiobrowse"
)

// Cache manages disk-based caching of directory API responses.
type Cache struct {
	baseDir string
	expiry  time.Duration
}

// NewCache creates a new Cache instance with the default expiry.
func NewCache() (*Cache, error) {
	cacheDir, err := GetCacheDir()
	if err != nil {
		return nil, err
	}

	return &Cache{
		baseDir: cacheDir,
		expiry:  DefaultExpiry,
	}, nil
}

// NewCacheAt creates a Cache rooted at an explicit directory with a custom
// expiry. Used by tests and by callers that manage their own cache location.
func NewCacheAt(baseDir string, expiry time.Duration) (*Cache, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("cache base directory must not be empty")
	}

	return &Cache{
		baseDir: baseDir,
		expiry:  expiry,
	}, nil
}

// GetCacheDir returns the platform-specific cache directory for the application.
func GetCacheDir() (string, error) {
	userCacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user cache directory: %w", err)
	}

	return filepath.Join(userCacheDir, AppName), nil
}

func (c *Cache) ensureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}

func hashKey(key string) string {
	hash := md5.Sum([]byte(key))
	return hex.EncodeToString(hash[:])
}

func (c *Cache) listingPath(key string) string {
	return filepath.Join(c.baseDir, ListingSubdir, hashKey(key)+".json")
}

// GetJSON loads a cached value by key into v. Returns false if the entry is
// missing, expired, or unreadable.
func (c *Cache) GetJSON(key string, v any) bool {
	path := c.listingPath(key)

	info, err := os.Stat(path)
	if err != nil {
		return false
	}

	if time.Since(info.ModTime()) > c.expiry {
		if err := os.Remove(path); err != nil {
			log.Debug().Err(err).Str("file", path).Msg("Failed to remove expired cache file")
		}
		return false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}

	if err := json.Unmarshal(data, v); err != nil {
		log.Debug().Err(err).Str("key", key).Msg("Failed to decode cached listing")
		return false
	}

	return true
}

// SaveJSON stores a value in the cache under the given key.
func (c *Cache) SaveJSON(key string, v any) error {
	dir := filepath.Join(c.baseDir, ListingSubdir)

	if err := c.ensureDir(dir); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode listing: %w", err)
	}

	if err := os.WriteFile(c.listingPath(key), data, 0644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	return nil
}

// CleanExpired removes cache files older than the expiry duration.
func (c *Cache) CleanExpired() error {
	dir := filepath.Join(c.baseDir, ListingSubdir)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read cache directory: %w", err)
	}

	now := time.Now()
	var removed, failed int
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			log.Debug().Err(err).Str("file", entry.Name()).Msg("Failed to get file info")
			continue
		}

		if now.Sub(info.ModTime()) > c.expiry {
			path := filepath.Join(dir, entry.Name())
			if err := os.Remove(path); err != nil {
				log.Debug().Err(err).Str("file", path).Msg("Failed to remove expired cache file")
				failed++
			} else {
				removed++
			}
		}
	}

	if removed > 0 || failed > 0 {
		log.Debug().Int("removed", removed).Int("failed", failed).Msg("Cache cleanup completed")
	}

	return nil
}

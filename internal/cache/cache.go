// Package cache is a badger-backed result cache. ViewParameters are a
// pure function of the location, so a view key identifies an analysis;
// typical-traffic verdicts for the same view can be reused until the TTL
// runs out.
package cache

import (
	"encoding/json"
	"errors"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"

	"gridsight/internal/traffic"
	"gridsight/pkg/log"
)

const resultKeyPrefix = "result:"

type Config struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
	TTLMin  int    `yaml:"ttlMin"`
}

func DefaultConfig() Config {
	return Config{
		Enabled: false,
		Dir:     "data/cache",
		TTLMin:  360,
	}
}

type ResultCache struct {
	db     *badger.DB
	conf   Config
	logger *logrus.Entry
}

func Open(conf Config) (*ResultCache, error) {
	db, err := badger.Open(badger.DefaultOptions(conf.Dir).WithLoggingLevel(badger.ERROR))
	if err != nil {
		return nil, err
	}
	return &ResultCache{
		db:     db,
		conf:   conf,
		logger: log.WithComponent("cache"),
	}, nil
}

func (c *ResultCache) Close() error {
	return c.db.Close()
}

// Get returns the cached result for a view key, or nil when absent or
// expired.
func (c *ResultCache) Get(view traffic.ViewParameters) *traffic.AnalysisResult {
	var val []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(resultKeyPrefix + view.Key()))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			c.logger.WithError(err).Warn("cache read failed")
		}
		return nil
	}

	var res traffic.AnalysisResult
	if err := json.Unmarshal(val, &res); err != nil {
		c.logger.WithError(err).Warn("drop undecodable cache entry")
		return nil
	}
	return &res
}

// Set stores a result under its view key with the configured TTL.
func (c *ResultCache) Set(view traffic.ViewParameters, res *traffic.AnalysisResult) {
	data, err := json.Marshal(res)
	if err != nil {
		c.logger.WithError(err).Warn("marshal result for cache failed")
		return
	}
	err = c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(resultKeyPrefix+view.Key()), data)
		if c.conf.TTLMin > 0 {
			entry = entry.WithTTL(time.Duration(c.conf.TTLMin) * time.Minute)
		}
		return txn.SetEntry(entry)
	})
	if err != nil {
		c.logger.WithError(err).Warn("cache write failed")
	}
}

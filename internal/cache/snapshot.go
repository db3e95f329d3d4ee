package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// StateKey is the fixed key the cache state record is stored under.
const StateKey = "dircache-state"

// persistTimeout bounds a single write to the state store.
const persistTimeout = 10 * time.Second

// StateStore is the durable key-value store that holds the cache state record.
// Load returns nil data and a nil error when no record exists under key.
type StateStore interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

// stateRecord is the entire durable footprint of a Cache.
type stateRecord struct {
	Config    persistedConfig `json:"config"`
	Stats     persistedStats  `json:"stats"`
	Timestamp int64           `json:"timestamp"`
}

type persistedStats struct {
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
}

// snapshot encodes the current config and counters.
func (c *Cache) snapshot() ([]byte, error) {
	rec := stateRecord{
		Config: toPersistedConfig(c.Config()),
		Stats: persistedStats{
			Hits:   c.hits.Load(),
			Misses: c.misses.Load(),
		},
		Timestamp: c.now().UnixMilli(),
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshaling cache state: %w", err)
	}
	return data, nil
}

// restore loads config and counters from store. A missing or unreadable
// record leaves the defaults in place. It returns false when the store itself
// failed and the cache should stay memory-only.
func (c *Cache) restore(ctx context.Context, store StateStore) bool {
	data, err := store.Load(ctx, StateKey)
	if err != nil {
		c.log.Warn().Err(err).Msg("cache state store unavailable, continuing in memory only")
		return false
	}
	if data == nil {
		c.log.Debug().Msg("no persisted cache state, using defaults")
		return true
	}

	var rec stateRecord
	if unmarshalErr := json.Unmarshal(data, &rec); unmarshalErr != nil {
		c.log.Debug().Err(unmarshalErr).Msg("persisted cache state is corrupted, using defaults")
		return true
	}

	cfg := rec.Config.config()
	if validateErr := cfg.Validate(); validateErr != nil {
		c.log.Debug().Err(validateErr).Msg("persisted cache config is invalid, using defaults")
		return true
	}

	c.cfg = cfg
	c.hits.Store(rec.Stats.Hits)
	c.misses.Store(rec.Stats.Misses)
	c.log.Debug().
		Int64("max_bytes", cfg.MaxBytes).
		Int("max_entries", cfg.MaxEntries).
		Dur("default_ttl", cfg.DefaultTTL).
		Uint64("hits", rec.Stats.Hits).
		Uint64("misses", rec.Stats.Misses).
		Msg("restored cache state")
	return true
}

// persister writes state records in the background.
//
// Requests are coalesced: the writer encodes the state at write time, so a
// burst of mutations produces at most one pending write and the last write
// always reflects the latest state. Callers never block.
type persister struct {
	store  StateStore
	encode func() ([]byte, error)
	log    zerolog.Logger

	notify chan struct{}
	stop   chan struct{}
	wg     sync.WaitGroup

	// failed switches the cache to memory-only after the first write error.
	failed atomic.Bool
}

func newPersister(store StateStore, encode func() ([]byte, error), log zerolog.Logger) *persister {
	p := &persister{
		store:  store,
		encode: encode,
		log:    log,
		notify: make(chan struct{}, 1),
		stop:   make(chan struct{}),
	}
	p.wg.Add(1)
	go p.loop()
	return p
}

// request schedules a write. It never blocks.
func (p *persister) request() {
	if p.failed.Load() {
		return
	}
	select {
	case p.notify <- struct{}{}:
	default:
	}
}

func (p *persister) loop() {
	defer p.wg.Done()
	for {
		select {
		case <-p.notify:
			p.write()
		case <-p.stop:
			select {
			case <-p.notify:
				p.write()
			default:
			}
			return
		}
	}
}

func (p *persister) write() {
	if p.failed.Load() {
		return
	}

	data, err := p.encode()
	if err != nil {
		p.log.Warn().Err(err).Msg("could not encode cache state")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if saveErr := p.store.Save(ctx, StateKey, data); saveErr != nil {
		p.failed.Store(true)
		p.log.Warn().Err(saveErr).Msg("persisting cache state failed, continuing in memory only")
		return
	}
	p.log.Debug().Int("bytes", len(data)).Msg("persisted cache state")
}

// close flushes a pending write, if any, and stops the writer.
func (p *persister) close() {
	close(p.stop)
	p.wg.Wait()
}

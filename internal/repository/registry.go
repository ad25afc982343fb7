package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/joseph-ayodele/logforms/constants"
	"github.com/joseph-ayodele/logforms/internal/common"
	"github.com/joseph-ayodele/logforms/internal/entity"
)

// Opener connects to the store described by coordinates.
type Opener func(ctx context.Context, coords entity.StoreCoordinates) (Store, error)

// Registry pools one Store per distinct coordinate set. Entries are keyed by
// a fingerprint of every coordinate, so two tenants never share a pool.
//
// Every Get takes a lease that the caller gives back with the returned
// release func. Once MaxPools is exceeded the least recently used store
// leaves the pool, but it is only closed after its last lease is released.
type Registry struct {
	mu      sync.Mutex // guards pool leases and retired
	pools   *lru.Cache[string, *pooled]
	retired []Store
	open    Opener
	logger  *slog.Logger
}

type pooled struct {
	store   Store
	leases  int
	evicted bool
}

func NewRegistry(open Opener, maxPools int, logger *slog.Logger) *Registry {
	if maxPools <= 0 {
		maxPools = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{open: open, logger: logger}
	// only fails for a non-positive size
	r.pools, _ = lru.NewWithEvict(maxPools, r.evict)
	return r
}

// Fingerprint identifies a coordinate set. The table name is not part of it:
// one pool serves every table of the same store.
func Fingerprint(c entity.StoreCoordinates) string {
	h := sha256.New()
	for _, part := range []string{
		string(c.Provider), c.APIURL, c.APIKey, c.ConnectionString, strconv.FormatBool(c.DDLCapable()),
	} {
		h.Write([]byte(strconv.Itoa(len(part))))
		h.Write([]byte{':'})
		h.Write([]byte(part))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the pooled store for coords, opening it on first use. The
// caller must call release once it is done with the store.
func (r *Registry) Get(ctx context.Context, coords entity.StoreCoordinates) (store Store, release func(), err error) {
	key := Fingerprint(coords)

	r.mu.Lock()
	if p, ok := r.pools.Get(key); ok {
		release = r.lease(p)
		r.mu.Unlock()
		return p.store, release, nil
	}
	r.mu.Unlock()

	// open outside the lock; a slow dial must not block other tenants
	s, err := r.open(ctx, coords)
	if err != nil {
		return nil, nil, err
	}

	r.mu.Lock()
	if p, ok := r.pools.Get(key); ok {
		// lost a race with another request for the same coordinates
		release = r.lease(p)
		r.mu.Unlock()
		_ = s.Close()
		return p.store, release, nil
	}
	p := &pooled{store: s}
	release = r.lease(p)
	r.pools.Add(key, p)
	size := r.pools.Len()
	retired := r.takeRetired()
	r.mu.Unlock()

	r.closeStores(retired)
	r.logger.Debug("store.registry.opened", "provider", coords.Provider, "pools", size, "retired", len(retired))
	return s, release, nil
}

// lease must be called with r.mu held.
func (r *Registry) lease(p *pooled) func() {
	p.leases++
	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			p.leases--
			idle := p.evicted && p.leases == 0
			r.mu.Unlock()
			if idle {
				r.closeStores([]Store{p.store})
			}
		})
	}
}

// evict is the cache's eviction callback. The cache only evicts from Add and
// Purge, both called with r.mu held.
func (r *Registry) evict(_ string, p *pooled) {
	p.evicted = true
	if p.leases == 0 {
		r.retired = append(r.retired, p.store)
	}
}

func (r *Registry) takeRetired() []Store {
	out := r.retired
	r.retired = nil
	return out
}

func (r *Registry) closeStores(stores []Store) error {
	var firstErr error
	for _, s := range stores {
		if err := s.Close(); err != nil {
			r.logger.Warn("store.registry.close_failed", "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Len reports the number of pooled stores.
func (r *Registry) Len() int {
	return r.pools.Len()
}

// Close empties the pool. Idle stores are closed now; stores still leased
// are closed when their last lease is released.
func (r *Registry) Close() error {
	r.mu.Lock()
	r.pools.Purge()
	retired := r.takeRetired()
	r.mu.Unlock()
	return r.closeStores(retired)
}

// DefaultOpener opens real stores from process configuration. Providers not in
// the allow-list are rejected before any connection is made.
func DefaultOpener(cfg *common.Config, logger *slog.Logger) Opener {
	return func(ctx context.Context, c entity.StoreCoordinates) (Store, error) {
		if !cfg.ProviderAllowed(c.Provider) {
			return nil, common.InputError(common.CodeProviderNotAllowed,
				fmt.Sprintf("provider %q is not enabled", c.Provider), common.ErrInvalidInput)
		}
		switch c.Provider {
		case constants.ProviderSupabase:
			s, err := NewSupabaseStore(c.APIURL, c.APIKey, cfg.Store.RequestTimeout, logger)
			if err != nil {
				return nil, common.InputError(common.CodeInvalidRequest, err.Error(), err)
			}
			return s, nil
		case constants.ProviderPostgreSQL:
			drv, pool, err := OpenPostgres(ctx, Config{
				DSN:              c.ConnectionString,
				MaxConns:         cfg.Store.MaxConns,
				MinConns:         cfg.Store.MinConns,
				MaxConnLifetime:  cfg.Store.MaxConnLifetime,
				MaxConnIdleTime:  cfg.Store.MaxConnIdleTime,
				DialTimeout:      cfg.Store.DialTimeout,
				StatementTimeout: cfg.Store.StatementTimeout,
			}, logger)
			if err != nil {
				return nil, err
			}
			return NewSQLStore(drv, pool.Close, logger), nil
		case constants.ProviderSQLite:
			drv, err := OpenSQLite(c.ConnectionString, logger)
			if err != nil {
				return nil, err
			}
			return NewSQLStore(drv, nil, logger), nil
		}
		return nil, common.InputError(common.CodeProviderNotAllowed,
			fmt.Sprintf("unknown provider %q", c.Provider), common.ErrInvalidInput)
	}
}

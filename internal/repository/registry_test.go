package repository

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/logforms/constants"
	"github.com/joseph-ayodele/logforms/internal/common"
	"github.com/joseph-ayodele/logforms/internal/entity"
)

type fakeStore struct {
	Store
	name   string
	closed atomic.Bool
}

func (f *fakeStore) Close() error {
	f.closed.Store(true)
	return nil
}

func countingOpener(opened *atomic.Int32) Opener {
	return func(_ context.Context, c entity.StoreCoordinates) (Store, error) {
		opened.Add(1)
		return &fakeStore{name: c.ConnectionString}, nil
	}
}

func sqliteCoords(dsn string) entity.StoreCoordinates {
	return entity.StoreCoordinates{Provider: constants.ProviderSQLite, ConnectionString: dsn}
}

func TestFingerprint(t *testing.T) {
	a := entity.StoreCoordinates{Provider: constants.ProviderSupabase, APIURL: "https://a.supabase.co", APIKey: "k1"}
	b := a
	b.APIKey = "k2"
	c := a
	c.TableName = "other_table"
	d := a
	d.SupportsDDL = boolPtr(true)

	assert.NotEqual(t, Fingerprint(a), Fingerprint(b), "keys differ")
	assert.Equal(t, Fingerprint(a), Fingerprint(c), "table is not part of the pool identity")
	assert.NotEqual(t, Fingerprint(a), Fingerprint(d), "capability differs")

	// length prefixes keep field boundaries apart
	x := entity.StoreCoordinates{APIURL: "ab", APIKey: "c"}
	y := entity.StoreCoordinates{APIURL: "a", APIKey: "bc"}
	assert.NotEqual(t, Fingerprint(x), Fingerprint(y))
}

func getReleased(t *testing.T, reg *Registry, dsn string) Store {
	t.Helper()
	s, release, err := reg.Get(context.Background(), sqliteCoords(dsn))
	require.NoError(t, err)
	release()
	return s
}

func TestRegistry_ReusesAndEvicts(t *testing.T) {
	var opened atomic.Int32
	reg := NewRegistry(countingOpener(&opened), 2, discardLogger())

	s1 := getReleased(t, reg, "one.db")
	assert.Same(t, s1, getReleased(t, reg, "one.db"))
	assert.Equal(t, int32(1), opened.Load())

	s2 := getReleased(t, reg, "two.db")
	// touch one.db so two.db becomes the eviction candidate
	getReleased(t, reg, "one.db")
	s3 := getReleased(t, reg, "three.db")

	assert.Equal(t, 2, reg.Len())
	assert.True(t, s2.(*fakeStore).closed.Load(), "idle store closed on eviction")
	assert.False(t, s1.(*fakeStore).closed.Load())

	reopened := getReleased(t, reg, "two.db")
	assert.Equal(t, int32(4), opened.Load(), "two.db was evicted and reopened")
	assert.NotSame(t, s2, reopened)
	assert.True(t, s1.(*fakeStore).closed.Load(), "reopening two.db pushed one.db out")

	require.NoError(t, reg.Close())
	assert.True(t, s3.(*fakeStore).closed.Load())
	assert.True(t, reopened.(*fakeStore).closed.Load())
	assert.Equal(t, 0, reg.Len())
}

func TestRegistry_LeasedStoreOutlivesEviction(t *testing.T) {
	var opened atomic.Int32
	reg := NewRegistry(countingOpener(&opened), 1, discardLogger())

	a, releaseA, err := reg.Get(context.Background(), sqliteCoords("a.db"))
	require.NoError(t, err)

	b := getReleased(t, reg, "b.db")
	assert.Equal(t, 1, reg.Len())
	assert.False(t, a.(*fakeStore).closed.Load(), "still leased")

	releaseA()
	assert.True(t, a.(*fakeStore).closed.Load(), "closed with the last lease")
	releaseA()
	assert.False(t, b.(*fakeStore).closed.Load())
}

func TestRegistry_LeasedSQLiteStaysUsable(t *testing.T) {
	ctx := context.Background()
	cfg := &common.Config{Store: common.StoreConfig{AllowedProviders: []string{"sqlite"}, MaxPools: 1}}
	reg := NewRegistry(DefaultOpener(cfg, discardLogger()), cfg.Store.MaxPools, discardLogger())
	t.Cleanup(func() { _ = reg.Close() })
	dir := t.TempDir()

	a, releaseA, err := reg.Get(ctx, sqliteCoords(filepath.Join(dir, "a.db")))
	require.NoError(t, err)

	// another tenant pushes a.db out of the pool
	_, releaseB, err := reg.Get(ctx, sqliteCoords(filepath.Join(dir, "b.db")))
	require.NoError(t, err)
	releaseB()

	require.NoError(t, a.ExecDDL(ctx, `CREATE TABLE IF NOT EXISTS "log_entries" ("temp" REAL)`))
	exists, err := a.TableExists(ctx, "log_entries")
	require.NoError(t, err)
	assert.True(t, exists)

	releaseA()
	assert.Error(t, a.Ping(ctx), "closed once released")
}

func TestRegistry_CloseWaitsForLeases(t *testing.T) {
	var opened atomic.Int32
	reg := NewRegistry(countingOpener(&opened), 2, discardLogger())

	s, release, err := reg.Get(context.Background(), sqliteCoords("busy.db"))
	require.NoError(t, err)
	idle := getReleased(t, reg, "idle.db")

	require.NoError(t, reg.Close())
	assert.True(t, idle.(*fakeStore).closed.Load())
	assert.False(t, s.(*fakeStore).closed.Load())

	release()
	assert.True(t, s.(*fakeStore).closed.Load())
}

func TestRegistry_ConcurrentGetSharesOneStore(t *testing.T) {
	var opened atomic.Int32
	reg := NewRegistry(countingOpener(&opened), 4, discardLogger())

	var wg sync.WaitGroup
	stores := make([]Store, 16)
	for i := range stores {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, release, err := reg.Get(context.Background(), sqliteCoords("shared.db"))
			if !assert.NoError(t, err) {
				return
			}
			defer release()
			stores[i] = s
		}(i)
	}
	wg.Wait()

	for _, s := range stores[1:] {
		assert.Same(t, stores[0], s)
	}
	assert.Equal(t, 1, reg.Len())
	assert.False(t, stores[0].(*fakeStore).closed.Load())
}

func TestRegistry_OpenFailure(t *testing.T) {
	reg := NewRegistry(func(context.Context, entity.StoreCoordinates) (Store, error) {
		return nil, errors.New("unreachable")
	}, 2, discardLogger())

	_, _, err := reg.Get(context.Background(), sqliteCoords("x.db"))
	assert.EqualError(t, err, "unreachable")
	assert.Equal(t, 0, reg.Len())
}

func TestDefaultOpener_ProviderNotAllowed(t *testing.T) {
	cfg := &common.Config{Store: common.StoreConfig{AllowedProviders: []string{"supabase"}}}
	_, err := DefaultOpener(cfg, discardLogger())(context.Background(), sqliteCoords("x.db"))

	ae := common.AsAppError(err)
	assert.Equal(t, common.KindInputValidation, ae.Kind)
	assert.Equal(t, common.CodeProviderNotAllowed, ae.Code)
}

package repository

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/logforms/constants"
	"github.com/joseph-ayodele/logforms/internal/common"
	"github.com/joseph-ayodele/logforms/internal/entity"
)

// fakePostgREST answers like a Supabase project without the log table and
// without an exec_sql function, unless tableExists is set.
type fakePostgREST struct {
	tableExists atomic.Bool
	ddlCalls    atomic.Int32
	lastInsert  map[string]any
}

func (f *fakePostgREST) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "service-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer service-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")

		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/rest/v1/":
			_, _ = io.WriteString(w, `{}`)
		case r.Method == http.MethodGet && r.URL.Path == "/rest/v1/log_entries":
			if !f.tableExists.Load() {
				w.WriteHeader(http.StatusNotFound)
				_, _ = io.WriteString(w, `{"code":"PGRST205","message":"Could not find the table 'public.log_entries' in the schema cache"}`)
				return
			}
			_, _ = io.WriteString(w, `[]`)
		case r.Method == http.MethodPost && r.URL.Path == "/rest/v1/rpc/exec_sql":
			f.ddlCalls.Add(1)
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"code":"PGRST202","message":"Could not find the function public.exec_sql(sql) in the schema cache"}`)
		case r.Method == http.MethodPost && r.URL.Path == "/rest/v1/log_entries":
			assert.Equal(t, "return=representation", r.Header.Get("Prefer"))
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&f.lastInsert))
			w.WriteHeader(http.StatusCreated)
			_, _ = io.WriteString(w, `[{"id":"5f0c2b8e-8c1b-4a51-9a1e-0f3c6c1d2e3f","created_at":"2024-01-05T00:00:00.000Z","temp":98.6}]`)
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"message":"not found"}`)
		}
	}
}

func newSupabaseFixture(t *testing.T) (*fakePostgREST, *Registry, entity.StoreCoordinates) {
	t.Helper()
	fake := &fakePostgREST{}
	srv := httptest.NewServer(fake.handler(t))
	t.Cleanup(srv.Close)

	cfg := &common.Config{Store: common.StoreConfig{
		AllowedProviders: []string{"supabase"},
		MaxPools:         4,
		RequestTimeout:   5 * time.Second,
	}}
	reg := NewRegistry(DefaultOpener(cfg, discardLogger()), cfg.Store.MaxPools, discardLogger())
	t.Cleanup(func() { _ = reg.Close() })

	coords := entity.StoreCoordinates{APIURL: srv.URL + "/", APIKey: "service-key"}
	return fake, reg, coords
}

func TestSupabase_ProvisionWithoutDDLNeedsManualCreation(t *testing.T) {
	fake, reg, coords := newSupabaseFixture(t)
	p := NewProvisioner(reg, discardLogger())

	_, err := p.Provision(context.Background(), coords, tempSchema())
	require.Error(t, err)

	ae := common.AsAppError(err)
	assert.Equal(t, common.KindStorageProvisioning, ae.Kind)
	assert.Equal(t, common.CodeManualProvisioning, ae.Code)
	assert.Contains(t, ae.Message, "manually")
	assert.Contains(t, ae.Hint, `CREATE TABLE IF NOT EXISTS "log_entries"`)
	assert.Contains(t, ae.Hint, "gen_random_uuid()")
	assert.Zero(t, fake.ddlCalls.Load())
}

func TestSupabase_ProvisionMissingRPCNeedsManualCreation(t *testing.T) {
	fake, reg, coords := newSupabaseFixture(t)
	coords.SupportsDDL = boolPtr(true)
	p := NewProvisioner(reg, discardLogger())

	_, err := p.Provision(context.Background(), coords, tempSchema())
	ae := common.AsAppError(err)
	require.NotNil(t, ae)
	assert.Equal(t, common.CodeManualProvisioning, ae.Code)
	assert.NotEmpty(t, ae.Hint)
	assert.Equal(t, int32(1), fake.ddlCalls.Load())
}

func TestSupabase_ExistingTableAndSave(t *testing.T) {
	fake, reg, coords := newSupabaseFixture(t)
	fake.tableExists.Store(true)

	res, err := NewProvisioner(reg, discardLogger()).Provision(context.Background(), coords, tempSchema())
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.False(t, res.Created)

	conn, err := NewProvisioner(reg, discardLogger()).TestConnection(context.Background(), coords)
	require.NoError(t, err)
	assert.True(t, conn.SchemaExists)

	fields := []entity.FieldDefinition{{Key: "temp", Label: "Temperature", Type: constants.FieldNumber, Order: 1}}
	rec, err := NewRecordIngestor(reg, discardLogger()).Save(context.Background(), coords, fields,
		map[string]any{"temp": "98.6", "operator": "kim"})
	require.NoError(t, err)
	assert.Equal(t, 98.6, rec["temp"])
	assert.Equal(t, "5f0c2b8e-8c1b-4a51-9a1e-0f3c6c1d2e3f", rec["id"])
	assert.Equal(t, map[string]any{"temp": 98.6}, fake.lastInsert)

	// every call above went through one pooled store
	assert.Equal(t, 1, reg.Len())
}

func TestNewSupabaseStore_RejectsBadURL(t *testing.T) {
	_, err := NewSupabaseStore("ftp://example.com", "k", 0, nil)
	assert.Error(t, err)
	_, err = NewSupabaseStore("https://example.supabase.co", "", 0, nil)
	assert.Error(t, err)
}

func TestSupabase_GatewayErrorsKeepStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   Class
	}{
		{"bad key without code", http.StatusUnauthorized, `{"message":"Invalid API key"}`, ClassPrivilege},
		{"html from the gateway", http.StatusBadGateway, `<html><body>502 Bad Gateway</body></html>`, ClassConnectivity},
		{"missing table", http.StatusNotFound, `{"code":"PGRST205","message":"Could not find the table"}`, ClassMissingRelation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			t.Cleanup(srv.Close)

			store, err := NewSupabaseStore(srv.URL, "service-key", time.Second, discardLogger())
			require.NoError(t, err)

			_, err = store.Insert(context.Background(), "log_entries", []ColumnValue{{Name: "temp", Value: 1.0}})
			var restErr *RestError
			require.ErrorAs(t, err, &restErr)
			assert.Equal(t, tt.status, restErr.Status)
			assert.Equal(t, tt.want, Classify(err))
		})
	}
}

package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"entgo.io/ent/dialect"

	"github.com/joseph-ayodele/logforms/internal/entity"
	"github.com/joseph-ayodele/logforms/internal/utils"
)

// RestError is a PostgREST error body plus the HTTP status it came with.
type RestError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *RestError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("supabase %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("supabase %d: %s", e.Status, e.Message)
}

// SupabaseStore talks to a Supabase project through its PostgREST API.
// DDL goes through an exec_sql(sql text) function the project owner installed.
type SupabaseStore struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *slog.Logger
}

var _ Store = (*SupabaseStore)(nil)

func NewSupabaseStore(apiURL, apiKey string, timeout time.Duration, logger *slog.Logger) (*SupabaseStore, error) {
	u, err := url.Parse(strings.TrimRight(apiURL, "/"))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid supabase url %q", apiURL)
	}
	if apiKey == "" {
		return nil, errors.New("supabase api key is required")
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SupabaseStore{
		baseURL: u.String(),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}, nil
}

func (s *SupabaseStore) Dialect() string { return dialect.Postgres }

func (s *SupabaseStore) headers(extra map[string]string) map[string]string {
	h := map[string]string{
		"apikey":        s.apiKey,
		"Authorization": "Bearer " + s.apiKey,
	}
	for k, v := range extra {
		h[k] = v
	}
	return h
}

func (s *SupabaseStore) do(ctx context.Context, method, path string, body any, extra map[string]string) ([]byte, error) {
	raw, status, err := utils.SendJSON(ctx, s.http, method, s.baseURL+path, body, s.headers(extra), s.logger)
	if err == nil {
		return raw, nil
	}
	if status == 0 {
		return nil, err
	}
	restErr := &RestError{Status: status}
	if jerr := json.Unmarshal(raw, restErr); jerr != nil || restErr.Message == "" {
		restErr.Message = strings.TrimSpace(string(raw))
		if restErr.Message == "" {
			restErr.Message = http.StatusText(status)
		}
	}
	return nil, restErr
}

func (s *SupabaseStore) Ping(ctx context.Context) error {
	_, err := s.do(ctx, http.MethodGet, "/rest/v1/", nil, nil)
	return err
}

func (s *SupabaseStore) TableExists(ctx context.Context, table string) (bool, error) {
	_, err := s.do(ctx, http.MethodGet, "/rest/v1/"+url.PathEscape(table)+"?select=*&limit=0", nil, nil)
	if err == nil {
		return true, nil
	}
	if Classify(err) == ClassMissingRelation {
		return false, nil
	}
	return false, err
}

func (s *SupabaseStore) ExecDDL(ctx context.Context, ddl string) error {
	_, err := s.do(ctx, http.MethodPost, "/rest/v1/rpc/exec_sql", map[string]string{"sql": ddl}, nil)
	return err
}

func (s *SupabaseStore) Insert(ctx context.Context, table string, values []ColumnValue) (entity.DataRecord, error) {
	body := make(map[string]any, len(values))
	for _, v := range values {
		body[v.Name] = v.Value
	}
	raw, err := s.do(ctx, http.MethodPost, "/rest/v1/"+url.PathEscape(table), body,
		map[string]string{"Prefer": "return=representation"})
	if err != nil {
		return nil, err
	}

	var rows []entity.DataRecord
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode inserted row: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("insert into %q returned no row", table)
	}
	return rows[0], nil
}

func (s *SupabaseStore) Close() error {
	s.http.CloseIdleConnections()
	return nil
}

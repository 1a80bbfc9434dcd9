package notion

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/daviddao/notionqueue/internal/clock"
)

// RateLimitDelay is the pause between consecutive calls. The API allows
// an average of three requests per second.
const RateLimitDelay = 350 * time.Millisecond

// PageSize is the page size requested from listing endpoints.
const PageSize = 100

// MaxChildren is the largest number of blocks one request may carry.
const MaxChildren = 100

// dataSourceMatch selects the data source holding tickets when a
// database has several.
const dataSourceMatch = "Tickets"

// ServiceConfig configures a Service.
type ServiceConfig struct {
	// DatabaseID is the database whose data source holds the tickets.
	DatabaseID string

	// Clock defaults to clock.Real().
	Clock clock.Clock

	// Delay defaults to RateLimitDelay.
	Delay time.Duration

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Service issues the calls the sync engine needs, one at a time, pausing
// between them to stay under the rate limit. It is safe for sequential
// use only; the data source id is cached after the first resolution.
type Service struct {
	transport  Transport
	databaseID string
	clock      clock.Clock
	delay      time.Duration
	logger     *slog.Logger

	mu           sync.Mutex
	dataSourceID string
}

// NewService creates a Service on top of transport.
func NewService(transport Transport, config ServiceConfig) *Service {
	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}
	delay := config.Delay
	if delay <= 0 {
		delay = RateLimitDelay
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		transport:  transport,
		databaseID: config.DatabaseID,
		clock:      clk,
		delay:      delay,
		logger:     logger,
	}
}

// Pause waits out the rate-limit delay.
func (s *Service) Pause(ctx context.Context) error {
	select {
	case <-s.clock.After(s.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// DataSourceID resolves the data source to query and caches it. The first
// source whose name contains "Tickets" wins, otherwise the first one.
func (s *Service) DataSourceID(ctx context.Context) (string, error) {
	s.mu.Lock()
	cached := s.dataSourceID
	s.mu.Unlock()
	if cached != "" {
		return cached, nil
	}
	if s.databaseID == "" {
		return "", fmt.Errorf("resolve data source: no database id configured")
	}

	var db database
	if err := s.call(ctx, http.MethodGet, "/databases/"+url.PathEscape(s.databaseID), nil, &db); err != nil {
		return "", fmt.Errorf("resolve data source: %w", err)
	}
	if len(db.DataSources) == 0 {
		return "", ErrNoDataSource
	}

	chosen := db.DataSources[0]
	for _, source := range db.DataSources {
		if strings.Contains(source.Name, dataSourceMatch) {
			chosen = source
			break
		}
	}
	s.logger.Debug("resolved data source", "id", chosen.ID, "name", chosen.Name)

	s.mu.Lock()
	s.dataSourceID = chosen.ID
	s.mu.Unlock()
	return chosen.ID, nil
}

// QueryAll returns every page of the ticket data source in listing order.
// Any error discards the pages collected so far.
func (s *Service) QueryAll(ctx context.Context) ([]Page, error) {
	sourceID, err := s.DataSourceID(ctx)
	if err != nil {
		return nil, err
	}
	path := "/data_sources/" + url.PathEscape(sourceID) + "/query"

	var all []Page
	cursor := ""
	for {
		body := map[string]any{"page_size": PageSize}
		if cursor != "" {
			body["start_cursor"] = cursor
		}
		var page listResponse[Page]
		if err := s.call(ctx, http.MethodPost, path, body, &page); err != nil {
			return nil, fmt.Errorf("query tickets: %w", err)
		}
		all = append(all, page.Results...)

		if !page.HasMore || page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
		if err := s.Pause(ctx); err != nil {
			return nil, err
		}
	}
	s.logger.Debug("queried tickets", "count", len(all))
	return all, nil
}

// GetPage reads one page.
func (s *Service) GetPage(ctx context.Context, id string) (*Page, error) {
	var page Page
	if err := s.call(ctx, http.MethodGet, "/pages/"+url.PathEscape(id), nil, &page); err != nil {
		return nil, fmt.Errorf("get page %s: %w", id, err)
	}
	return &page, nil
}

// BlockChildren returns every top-level block of a page body.
func (s *Service) BlockChildren(ctx context.Context, id string) ([]Block, error) {
	var all []Block
	cursor := ""
	for {
		query := url.Values{"page_size": {fmt.Sprint(PageSize)}}
		if cursor != "" {
			query.Set("start_cursor", cursor)
		}
		path := "/blocks/" + url.PathEscape(id) + "/children?" + query.Encode()

		var page listResponse[Block]
		if err := s.call(ctx, http.MethodGet, path, nil, &page); err != nil {
			return nil, fmt.Errorf("get blocks of %s: %w", id, err)
		}
		all = append(all, page.Results...)

		if !page.HasMore || page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
		if err := s.Pause(ctx); err != nil {
			return nil, err
		}
	}
	return all, nil
}

// UpdatePage writes properties to a page. op names the operation in the
// returned error, e.g. "status update".
func (s *Service) UpdatePage(ctx context.Context, op, id string, properties map[string]any) (*Page, error) {
	return s.write(ctx, op, http.MethodPatch, "/pages/"+url.PathEscape(id), map[string]any{
		"properties": properties,
	})
}

// CreatePage creates a ticket page in the ticket data source with the
// given properties and body blocks. Blocks past the first MaxChildren are
// appended afterwards; if that fails the created page is returned along
// with the error.
func (s *Service) CreatePage(ctx context.Context, properties map[string]any, children []map[string]any) (*Page, error) {
	sourceID, err := s.DataSourceID(ctx)
	if err != nil {
		return nil, err
	}
	body := map[string]any{
		"parent":     map[string]any{"type": "data_source_id", "data_source_id": sourceID},
		"properties": properties,
	}
	first, rest := children, []map[string]any(nil)
	if len(first) > MaxChildren {
		first, rest = children[:MaxChildren], children[MaxChildren:]
	}
	if len(first) > 0 {
		body["children"] = first
	}
	page, err := s.write(ctx, "create", http.MethodPost, "/pages", body)
	if err != nil {
		return nil, err
	}
	if err := s.AppendBlocks(ctx, page.ID, rest); err != nil {
		return page, err
	}
	return page, nil
}

// AppendBlocks adds blocks to the end of a page body, MaxChildren per
// request.
func (s *Service) AppendBlocks(ctx context.Context, id string, blocks []map[string]any) error {
	path := "/blocks/" + url.PathEscape(id) + "/children"
	for start := 0; start < len(blocks); start += MaxChildren {
		end := min(start+MaxChildren, len(blocks))
		if err := s.call(ctx, http.MethodPatch, path, map[string]any{"children": blocks[start:end]}, nil); err != nil {
			return fmt.Errorf("append body of %s: %w", id, err)
		}
		if err := s.Pause(ctx); err != nil {
			return err
		}
	}
	return nil
}

// ArchivePage moves a page to the trash.
func (s *Service) ArchivePage(ctx context.Context, id string) (*Page, error) {
	return s.write(ctx, "archive", http.MethodPatch, "/pages/"+url.PathEscape(id), map[string]any{
		"archived": true,
	})
}

// write performs one mutation and, on success, pauses before returning so
// the next call is spaced out.
func (s *Service) write(ctx context.Context, op, method, path string, body any) (*Page, error) {
	var page Page
	if err := s.call(ctx, method, path, body, &page); err != nil {
		return nil, fmt.Errorf("%s failed: %w", op, err)
	}
	if err := s.Pause(ctx); err != nil {
		return nil, err
	}
	return &page, nil
}

// call performs one request, rejects error objects and decodes the body
// into out.
func (s *Service) call(ctx context.Context, method, path string, body, out any) error {
	raw, err := s.transport.Request(ctx, method, path, body)
	if err != nil {
		return err
	}
	if err := CheckResponse(raw); err != nil {
		return err
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

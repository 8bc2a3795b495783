package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"audiobook-storefront/gateway"
	"audiobook-storefront/models"
)

// ErrSuperseded is returned by Load when a newer Load started before this one finished.
// The superseded result is discarded.
var ErrSuperseded = errors.New("catalog request superseded")

// User-facing messages of the listing page
const (
	MessageLoadFailed      = "Failed to load the catalog. Check the connection to the server."
	NoticeStaleCatalog     = "The catalog service is unavailable, showing the last loaded catalog."
	NoticeLocalSearch      = "The search service is unavailable, showing local matches."
	defaultSearchLimitSize = gateway.DefaultSearchLimit
)

// SourceKind selects what Load fetches
type SourceKind int

const (
	SourceFullCatalog SourceKind = iota
	SourceSearch
)

// Source is the argument of Load
type Source struct {
	Kind SourceKind
	Term string
}

// FullCatalog is the unfiltered catalog source
func FullCatalog() Source {
	return Source{Kind: SourceFullCatalog}
}

// SearchFor is the search source for term
func SearchFor(term string) Source {
	return Source{Kind: SourceSearch, Term: strings.TrimSpace(term)}
}

// Machine holds the loaded item set of a listing page together with the filter, sort
// and page selection, and derives the visible slice from them.
//
// Every Load gets a generation number. Starting a Load cancels the request of the
// previous one, and a result arriving for an older generation is dropped.
type Machine struct {
	gateway     gateway.CatalogGatewayInterface
	logger      *zap.Logger
	pageSize    int
	searchLimit int

	mu         sync.Mutex
	state      models.LoadState
	source     Source
	all        []models.CatalogItem
	lastFull   *Snapshot
	filtered   []models.CatalogItem
	filters    models.FilterState
	options    models.FilterOptions
	page       int
	notice     string
	errMessage string
	generation uint64
	cancel     context.CancelFunc
}

// Option configures a Machine
type Option func(*Machine)

// WithPageSize overrides ItemsPerPage
func WithPageSize(size int) Option {
	return func(m *Machine) {
		if size > 0 {
			m.pageSize = size
		}
	}
}

// WithSearchLimit sets the limit sent with remote searches
func WithSearchLimit(limit int) Option {
	return func(m *Machine) {
		if limit > 0 {
			m.searchLimit = limit
		}
	}
}

// WithSnapshot shares the last full catalog with other machines
func WithSnapshot(s *Snapshot) Option {
	return func(m *Machine) {
		if s != nil {
			m.lastFull = s
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(m *Machine) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewMachine creates an idle Machine reading from gw
func NewMachine(gw gateway.CatalogGatewayInterface, opts ...Option) *Machine {
	m := &Machine{
		gateway:     gw,
		logger:      zap.NewNop(),
		pageSize:    ItemsPerPage,
		searchLimit: defaultSearchLimitSize,
		state:       models.LoadStateIdle,
		filters:     models.DefaultFilterState(),
		page:        1,
		lastFull:    NewSnapshot(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load replaces the item set from src. A failed full load falls back to the last
// successfully loaded catalog when there is one; a failed search falls back to a
// local substring match. Without any data to show the machine enters the error state
// and the error is returned.
func (m *Machine) Load(ctx context.Context, src Source) error {
	src.Term = strings.TrimSpace(src.Term)
	if src.Kind == SourceSearch && src.Term == "" {
		return models.NewValidationError("query", "search term is empty")
	}

	reqCtx, gen, done := m.begin(ctx, src)
	defer done()

	if src.Kind == SourceSearch {
		return m.search(reqCtx, gen, src.Term)
	}
	return m.loadFull(reqCtx, gen)
}

func (m *Machine) begin(ctx context.Context, src Source) (context.Context, uint64, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cancel != nil {
		m.cancel()
	}
	m.generation++
	gen := m.generation
	reqCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.state = models.LoadStateLoading
	m.source = src

	return reqCtx, gen, func() {
		m.mu.Lock()
		if m.generation == gen {
			m.cancel = nil
		}
		m.mu.Unlock()
		cancel()
	}
}

func (m *Machine) loadFull(ctx context.Context, gen uint64) error {
	items, err := m.gateway.ListItems(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.generation {
		m.logger.Debug("discarding superseded catalog load", zap.Uint64("generation", gen))
		return ErrSuperseded
	}

	if err != nil {
		return m.failLocked(err)
	}

	m.lastFull.Store(items)
	m.source = FullCatalog()
	m.filters.Query = ""
	m.applyLocked(items)
	m.logger.Info("catalog loaded", zap.Int("items", len(items)))
	return nil
}

func (m *Machine) search(ctx context.Context, gen uint64, term string) error {
	items, err := m.gateway.Search(ctx, term, m.searchLimit)

	m.mu.Lock()
	if gen != m.generation {
		m.mu.Unlock()
		m.logger.Debug("discarding superseded search", zap.String("term", term), zap.Uint64("generation", gen))
		return ErrSuperseded
	}
	if err == nil {
		defer m.mu.Unlock()
		m.source = SearchFor(term)
		m.filters.Query = ""
		m.applyLocked(items)
		m.logger.Info("search completed", zap.String("term", term), zap.Int("items", len(items)))
		return nil
	}
	if ctx.Err() != nil {
		defer m.mu.Unlock()
		return m.failLocked(ctx.Err())
	}

	base := m.lastFull.Items()
	m.mu.Unlock()

	m.logger.Warn("search failed, filtering locally", zap.String("term", term), zap.Error(err))

	if base == nil {
		full, fullErr := m.gateway.ListItems(ctx)

		m.mu.Lock()
		if gen != m.generation {
			m.mu.Unlock()
			return ErrSuperseded
		}
		if fullErr != nil {
			defer m.mu.Unlock()
			return m.failLocked(fmt.Errorf("search failed (%v), then %w", err, fullErr))
		}
		m.lastFull.Store(full)
		base = full
		m.mu.Unlock()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.generation {
		return ErrSuperseded
	}
	m.source = SearchFor(term)
	m.filters.Query = term
	m.applyLocked(base)
	m.notice = NoticeLocalSearch
	return nil
}

// failLocked handles a failed load: fall back to the last full catalog or enter the
// error state
func (m *Machine) failLocked(err error) error {
	if last := m.lastFull.Items(); last != nil {
		m.logger.Warn("catalog load failed, showing last loaded catalog", zap.Error(err))
		m.source = FullCatalog()
		m.filters.Query = ""
		m.applyLocked(last)
		m.notice = NoticeStaleCatalog
		return nil
	}

	m.logger.Error("catalog load failed", zap.Error(err))
	m.state = models.LoadStateError
	m.errMessage = MessageLoadFailed
	m.notice = ""
	m.all = nil
	m.filtered = nil
	m.options = models.FilterOptions{}
	m.page = 1
	return fmt.Errorf("failed to load catalog: %w", err)
}

// applyLocked replaces the item set and re-derives everything from it
func (m *Machine) applyLocked(items []models.CatalogItem) {
	m.all = items
	m.options = ExtractFilterOptions(items)
	m.filters = ReconcileSelection(m.filters, m.options)
	m.recomputeLocked()
	m.page = 1
	m.state = models.LoadStateReady
	m.errMessage = ""
	m.notice = ""
}

func (m *Machine) recomputeLocked() {
	m.filtered = Sort(ApplyFilters(m.all, m.filters), m.filters.Sort)
}

// SetFilters replaces the genre, author, price and sort selection and returns to page 1.
// Once items are loaded, a genre or author they do not offer falls back to "all".
func (m *Machine) SetFilters(state models.FilterState) error {
	if err := ValidateFilters(state); err != nil {
		return err
	}
	if state.Sort == "" {
		state.Sort = models.SortNewest
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	state.Query = m.filters.Query
	if m.state == models.LoadStateReady {
		state = ReconcileSelection(state, m.options)
	}
	m.filters = state
	m.recomputeLocked()
	m.page = 1
	return nil
}

// ClearFilters resets the selection to the defaults and returns to page 1
func (m *Machine) ClearFilters() {
	m.mu.Lock()
	defer m.mu.Unlock()
	query := m.filters.Query
	m.filters = models.DefaultFilterState()
	m.filters.Query = query
	m.recomputeLocked()
	m.page = 1
}

// GoToPage moves to page, clamped into the valid range, and returns the page shown
func (m *Machine) GoToPage(page int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.page = ClampPage(page, PageCount(len(m.filtered), m.pageSize))
	return m.page
}

// View derives the renderable listing page
func (m *Machine) View() models.CatalogView {
	m.mu.Lock()
	defer m.mu.Unlock()

	pageCount := PageCount(len(m.filtered), m.pageSize)
	page := ClampPage(m.page, pageCount)
	visible := Paginate(m.filtered, page, m.pageSize)

	view := models.CatalogView{
		State:      m.state,
		Items:      append([]models.CatalogItem{}, visible...),
		Filters:    m.filters,
		Options:    m.options,
		Page:       page,
		PageCount:  pageCount,
		TotalCount: len(m.filtered),
		Pagination: PageWindow(page, pageCount),
		Notice:     m.notice,
		Error:      m.errMessage,
	}
	if m.source.Kind == SourceSearch {
		view.Query = m.source.Term
	}
	if m.state == models.LoadStateReady && len(visible) == 0 {
		if view.Query != "" {
			view.Empty = models.EmptyNoQueryResult
		} else {
			view.Empty = models.EmptyNoResults
		}
	}
	return view
}

package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"audiobook-storefront/gateway"
	"audiobook-storefront/models"
)

type fakeCatalogGateway struct {
	mu          sync.Mutex
	listFn      func(ctx context.Context) ([]models.CatalogItem, error)
	searchFn    func(ctx context.Context, term string, limit int) ([]models.CatalogItem, error)
	listCalls   int
	searchCalls int
	lastLimit   int
}

var _ gateway.CatalogGatewayInterface = (*fakeCatalogGateway)(nil)

func (f *fakeCatalogGateway) ListItems(ctx context.Context) ([]models.CatalogItem, error) {
	f.mu.Lock()
	f.listCalls++
	fn := f.listFn
	f.mu.Unlock()
	return fn(ctx)
}

func (f *fakeCatalogGateway) Search(ctx context.Context, term string, limit int) ([]models.CatalogItem, error) {
	f.mu.Lock()
	f.searchCalls++
	f.lastLimit = limit
	fn := f.searchFn
	f.mu.Unlock()
	return fn(ctx, term, limit)
}

func (f *fakeCatalogGateway) GetItem(ctx context.Context, id int) (*models.CatalogItem, error) {
	return nil, models.ErrItemNotFound
}

func staticList(items []models.CatalogItem) func(context.Context) ([]models.CatalogItem, error) {
	return func(context.Context) ([]models.CatalogItem, error) { return items, nil }
}

var errDown = &gateway.NetworkError{Op: "test", Err: errors.New("connection refused")}

func failingList(context.Context) ([]models.CatalogItem, error) { return nil, errDown }

func failingSearch(context.Context, string, int) ([]models.CatalogItem, error) {
	return nil, errDown
}

// fourteenItems has four history books among fourteen
func fourteenItems() []models.CatalogItem {
	history := map[int]bool{1: true, 5: true, 9: true, 14: true}
	items := make([]models.CatalogItem, 14)
	for i := range items {
		id := i + 1
		genre := "fiction"
		if history[id] {
			genre = "history"
		}
		items[i] = models.CatalogItem{
			ID:     id,
			Title:  fmt.Sprintf("Книга %d", id),
			Author: &models.Author{ID: i%3 + 1, Name: fmt.Sprintf("Автор %d", i%3+1)},
			Price:  float64(100 + 50*i),
			Genre:  genre,
		}
	}
	return items
}

func TestMachineLoadFullCatalog(t *testing.T) {
	gw := &fakeCatalogGateway{listFn: staticList(fourteenItems())}
	m := NewMachine(gw)
	assert.Equal(t, models.LoadStateIdle, m.View().State)

	require.NoError(t, m.Load(context.Background(), FullCatalog()))

	view := m.View()
	assert.Equal(t, models.LoadStateReady, view.State)
	assert.Equal(t, 14, view.TotalCount)
	assert.Equal(t, 3, view.PageCount)
	assert.Equal(t, 1, view.Page)
	assert.Equal(t, []int{14, 13, 12, 11, 10, 9}, ids(view.Items))
	assert.Equal(t, 2, view.Pagination.Next)
	assert.Equal(t, []string{"fiction", "history"}, view.Options.Genres)
	assert.Empty(t, view.Query)
	assert.Equal(t, models.EmptyNone, view.Empty)
}

func TestMachineGenreFilterSinglePage(t *testing.T) {
	gw := &fakeCatalogGateway{listFn: staticList(fourteenItems())}
	m := NewMachine(gw)
	require.NoError(t, m.Load(context.Background(), FullCatalog()))

	assert.Equal(t, 3, m.GoToPage(3))
	require.NoError(t, m.SetFilters(models.FilterState{Genre: "history", Sort: models.SortNewest}))

	view := m.View()
	assert.Equal(t, 1, view.Page)
	assert.Equal(t, 4, view.TotalCount)
	assert.Equal(t, 1, view.PageCount)
	assert.Len(t, view.Items, 4)
	assert.Zero(t, view.Pagination.Next)
	assert.Empty(t, view.Pagination.Links)
	for _, item := range view.Items {
		assert.Equal(t, "history", item.Genre)
	}
}

func TestMachineSetFiltersRejectsInvalid(t *testing.T) {
	gw := &fakeCatalogGateway{listFn: staticList(fourteenItems())}
	m := NewMachine(gw)
	require.NoError(t, m.Load(context.Background(), FullCatalog()))
	m.GoToPage(2)

	var verr *models.ValidationError
	require.ErrorAs(t, m.SetFilters(models.FilterState{Price: "lots"}), &verr)

	view := m.View()
	assert.Equal(t, 2, view.Page)
	assert.Equal(t, models.DefaultFilterState(), view.Filters)
}

func TestMachineClearFilters(t *testing.T) {
	gw := &fakeCatalogGateway{listFn: staticList(fourteenItems())}
	m := NewMachine(gw)
	require.NoError(t, m.Load(context.Background(), FullCatalog()))
	require.NoError(t, m.SetFilters(models.FilterState{Genre: "history", Price: "0-500", Sort: models.SortPriceHigh}))

	m.ClearFilters()

	view := m.View()
	assert.Equal(t, models.DefaultFilterState(), view.Filters)
	assert.Equal(t, 14, view.TotalCount)
}

func TestMachineGoToPageClamps(t *testing.T) {
	gw := &fakeCatalogGateway{listFn: staticList(fourteenItems())}
	m := NewMachine(gw)
	require.NoError(t, m.Load(context.Background(), FullCatalog()))

	assert.Equal(t, 3, m.GoToPage(99))
	assert.Equal(t, []int{2, 1}, ids(m.View().Items))
	assert.Equal(t, 1, m.GoToPage(-1))
}

func TestMachineLoadFailureWithoutDataEntersErrorState(t *testing.T) {
	gw := &fakeCatalogGateway{listFn: failingList}
	m := NewMachine(gw)

	err := m.Load(context.Background(), FullCatalog())
	require.Error(t, err)

	var netErr *gateway.NetworkError
	assert.ErrorAs(t, err, &netErr)

	view := m.View()
	assert.Equal(t, models.LoadStateError, view.State)
	assert.Equal(t, MessageLoadFailed, view.Error)
	assert.Empty(t, view.Items)
	assert.Equal(t, models.EmptyNone, view.Empty)
}

func TestMachineLoadFailureFallsBackToLastCatalog(t *testing.T) {
	gw := &fakeCatalogGateway{listFn: staticList(fourteenItems())}
	m := NewMachine(gw)
	require.NoError(t, m.Load(context.Background(), FullCatalog()))

	gw.mu.Lock()
	gw.listFn = failingList
	gw.mu.Unlock()

	require.NoError(t, m.Load(context.Background(), FullCatalog()))

	view := m.View()
	assert.Equal(t, models.LoadStateReady, view.State)
	assert.Equal(t, 14, view.TotalCount)
	assert.Equal(t, NoticeStaleCatalog, view.Notice)
}

func TestMachineSearch(t *testing.T) {
	gw := &fakeCatalogGateway{
		listFn: staticList(sampleItems()),
		searchFn: func(_ context.Context, term string, _ int) ([]models.CatalogItem, error) {
			assert.Equal(t, "война", term)
			return sampleItems()[:1], nil
		},
	}
	m := NewMachine(gw, WithSearchLimit(25))

	require.NoError(t, m.Load(context.Background(), SearchFor("  война ")))

	view := m.View()
	assert.Equal(t, "война", view.Query)
	assert.Equal(t, []int{1}, ids(view.Items))
	assert.Empty(t, view.Filters.Query)
	assert.Equal(t, 25, gw.lastLimit)
	assert.Zero(t, gw.listCalls)
}

func TestMachineSearchEmptyTermIsValidationError(t *testing.T) {
	gw := &fakeCatalogGateway{}
	m := NewMachine(gw)

	var verr *models.ValidationError
	require.ErrorAs(t, m.Load(context.Background(), SearchFor("   ")), &verr)
	assert.Zero(t, gw.searchCalls)
	assert.Equal(t, models.LoadStateIdle, m.View().State)
}

func TestMachineSearchNoResults(t *testing.T) {
	gw := &fakeCatalogGateway{
		searchFn: func(context.Context, string, int) ([]models.CatalogItem, error) {
			return []models.CatalogItem{}, nil
		},
	}
	m := NewMachine(gw)
	require.NoError(t, m.Load(context.Background(), SearchFor("нет такого")))

	view := m.View()
	assert.Equal(t, models.EmptyNoQueryResult, view.Empty)
	assert.Equal(t, "нет такого", view.Query)
}

func TestMachineFilteredToNothing(t *testing.T) {
	gw := &fakeCatalogGateway{listFn: staticList(sampleItems())}
	m := NewMachine(gw)
	require.NoError(t, m.Load(context.Background(), FullCatalog()))
	require.NoError(t, m.SetFilters(models.FilterState{Genre: "fiction", Price: "5000-+"}))

	assert.Equal(t, models.EmptyNoResults, m.View().Empty)
}

func TestMachineSearchFallsBackToLocalFilter(t *testing.T) {
	gw := &fakeCatalogGateway{listFn: staticList(sampleItems()), searchFn: failingSearch}
	m := NewMachine(gw)
	require.NoError(t, m.Load(context.Background(), FullCatalog()))

	require.NoError(t, m.Load(context.Background(), SearchFor("война")))

	view := m.View()
	assert.Equal(t, models.LoadStateReady, view.State)
	assert.Equal(t, []int{1}, ids(view.Items))
	assert.Equal(t, "война", view.Query)
	assert.Equal(t, NoticeLocalSearch, view.Notice)
	assert.Equal(t, 1, gw.listCalls)
}

func TestMachineSearchFallbackLoadsCatalogFirst(t *testing.T) {
	gw := &fakeCatalogGateway{listFn: staticList(sampleItems()), searchFn: failingSearch}
	m := NewMachine(gw)

	require.NoError(t, m.Load(context.Background(), SearchFor("ДОСТОЕВСКИЙ")))

	assert.Equal(t, []int{2}, ids(m.View().Items))
	assert.Equal(t, 1, gw.listCalls)
}

func TestMachineSearchFallbackWithoutCatalogFails(t *testing.T) {
	gw := &fakeCatalogGateway{listFn: failingList, searchFn: failingSearch}
	m := NewMachine(gw)

	require.Error(t, m.Load(context.Background(), SearchFor("война")))
	assert.Equal(t, models.LoadStateError, m.View().State)
}

func TestMachineFilterSelectionSurvivesReload(t *testing.T) {
	gw := &fakeCatalogGateway{listFn: staticList(sampleItems())}
	m := NewMachine(gw)
	require.NoError(t, m.Load(context.Background(), FullCatalog()))
	require.NoError(t, m.SetFilters(models.FilterState{Genre: "fiction", Sort: models.SortOldest}))

	require.NoError(t, m.Load(context.Background(), FullCatalog()))
	assert.Equal(t, "fiction", m.View().Filters.Genre)

	gw.mu.Lock()
	gw.listFn = staticList(sampleItems()[2:])
	gw.mu.Unlock()
	require.NoError(t, m.Load(context.Background(), FullCatalog()))

	view := m.View()
	assert.Empty(t, view.Filters.Genre)
	assert.Equal(t, models.SortOldest, view.Filters.Sort)
	assert.Equal(t, []int{3, 4, 5}, ids(view.Items))
}

func TestMachineNewSearchSupersedesPrevious(t *testing.T) {
	defer goleak.VerifyNone(t)

	started := make(chan struct{})
	gw := &fakeCatalogGateway{
		searchFn: func(ctx context.Context, term string, _ int) ([]models.CatalogItem, error) {
			if term == "медленно" {
				close(started)
				<-ctx.Done()
				return nil, ctx.Err()
			}
			return sampleItems()[3:4], nil
		},
	}
	m := NewMachine(gw)

	var wg sync.WaitGroup
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		firstErr = m.Load(context.Background(), SearchFor("медленно"))
	}()

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("first search never started")
	}

	require.NoError(t, m.Load(context.Background(), SearchFor("думай")))
	wg.Wait()

	assert.ErrorIs(t, firstErr, ErrSuperseded)
	view := m.View()
	assert.Equal(t, "думай", view.Query)
	assert.Equal(t, []int{4}, ids(view.Items))
	assert.Empty(t, view.Notice)
}

func TestMachineLateResultIsDiscarded(t *testing.T) {
	defer goleak.VerifyNone(t)

	release := make(chan struct{})
	started := make(chan struct{})
	gw := &fakeCatalogGateway{
		searchFn: func(ctx context.Context, term string, _ int) ([]models.CatalogItem, error) {
			if term == "старый" {
				close(started)
				<-release
				// ignores cancellation and answers anyway
				return sampleItems(), nil
			}
			return sampleItems()[:1], nil
		},
	}
	m := NewMachine(gw)

	done := make(chan error, 1)
	go func() { done <- m.Load(context.Background(), SearchFor("старый")) }()
	<-started

	require.NoError(t, m.Load(context.Background(), SearchFor("новый")))
	close(release)

	assert.ErrorIs(t, <-done, ErrSuperseded)
	view := m.View()
	assert.Equal(t, "новый", view.Query)
	assert.Equal(t, []int{1}, ids(view.Items))
}

func TestMachineSetFiltersDropsSelectionNotOffered(t *testing.T) {
	gw := &fakeCatalogGateway{listFn: staticList(fourteenItems())}
	m := NewMachine(gw)
	require.NoError(t, m.Load(context.Background(), FullCatalog()))

	require.NoError(t, m.SetFilters(models.FilterState{Genre: "science", Author: "Автор 2", Sort: models.SortNewest}))

	view := m.View()
	assert.Empty(t, view.Filters.Genre)
	assert.Equal(t, "Автор 2", view.Filters.Author)
	assert.Equal(t, 5, view.TotalCount)
}

func TestMachinesShareSnapshot(t *testing.T) {
	snap := NewSnapshot()
	gw := &fakeCatalogGateway{listFn: staticList(sampleItems()), searchFn: failingSearch}
	require.NoError(t, NewMachine(gw, WithSnapshot(snap)).Load(context.Background(), FullCatalog()))

	m := NewMachine(gw, WithSnapshot(snap))
	require.NoError(t, m.Load(context.Background(), SearchFor("война")))

	assert.Equal(t, []int{1}, ids(m.View().Items))
	assert.Equal(t, NoticeLocalSearch, m.View().Notice)
	assert.Equal(t, 1, gw.listCalls)

	item, ok := snap.Item(2)
	require.True(t, ok)
	assert.Equal(t, 2, item.ID)
	_, ok = snap.Item(99)
	assert.False(t, ok)
}

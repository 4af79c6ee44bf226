package service

import (
	"context"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"gearbox/internal/domain"

	"go.uber.org/zap"
)

// DefaultDebounce is the quiet window a burst of filter edits must outlast
// before a fetch is issued
const DefaultDebounce = 300 * time.Millisecond

// ViewMode selects the result presentation; it never triggers a fetch
type ViewMode string

const (
	ViewGrid ViewMode = "grid"
	ViewList ViewMode = "list"
)

// ListerState is a snapshot of the listing session
type ListerState struct {
	Category   string
	Sort       SortKey
	MinPrice   string
	MaxPrice   string
	View       ViewMode
	Loading    bool
	Products   []*domain.ProductWithCategory
	Categories []*domain.Category
}

// Lister drives an interactive product listing: filter/sort edits are
// debounced into a single fetch, and a generation counter makes sure a stale
// response never overwrites state set by a newer request.
//
// It replaces the usual timer-in-a-closure pattern with an owned lifecycle:
// Start begins the session, Stop cancels the pending timer and any in-flight
// fetch, and every fetch runs under a context derived from the session's.
type Lister struct {
	catalog  CatalogService
	logger   *zap.Logger
	debounce time.Duration

	mu       sync.Mutex
	state    ListerState
	gen      uint64
	timer    *time.Timer
	inflight context.CancelFunc
	baseCtx  context.Context
	baseStop context.CancelFunc
	started  bool
	stopped  bool
	onChange func(ListerState)
}

// NewLister creates a listing session over the catalog service
func NewLister(catalog CatalogService, logger *zap.Logger) *Lister {
	return &Lister{
		catalog:  catalog,
		logger:   logger,
		debounce: DefaultDebounce,
		state: ListerState{
			Sort: SortNewest,
			View: ViewGrid,
		},
	}
}

// SetDebounce overrides the quiet window; only valid before Start
func (l *Lister) SetDebounce(d time.Duration) {
	l.debounce = d
}

// OnChange registers a callback invoked with a state snapshot after every
// completed fetch
func (l *Lister) OnChange(fn func(ListerState)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onChange = fn
}

// Start fetches categories and the initial unfiltered product list once,
// concurrently. Further fetches only happen in response to setter calls.
func (l *Lister) Start(ctx context.Context) {
	l.mu.Lock()
	if l.started {
		l.mu.Unlock()
		return
	}
	l.started = true
	l.baseCtx, l.baseStop = context.WithCancel(ctx)
	l.state.Loading = true
	l.mu.Unlock()

	go l.fetchCategories()
	go l.fetch()
}

// Stop ends the session: the pending debounce timer is cancelled, the
// in-flight fetch is aborted, and late results are discarded.
func (l *Lister) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stopped = true
	l.gen++
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
	if l.inflight != nil {
		l.inflight()
		l.inflight = nil
	}
	if l.baseStop != nil {
		l.baseStop()
	}
}

// State returns a snapshot of the current session state
func (l *Lister) State() ListerState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// SetCategory filters by category slug; empty means all categories
func (l *Lister) SetCategory(slug string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state.Category = slug
	l.schedule()
}

// SetSort changes the sort key
func (l *Lister) SetSort(key SortKey) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state.Sort = key
	l.schedule()
}

// SetMinPrice sets the inclusive lower price bound; blank or non-numeric
// input means no bound
func (l *Lister) SetMinPrice(raw string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state.MinPrice = raw
	l.schedule()
}

// SetMaxPrice sets the inclusive upper price bound; blank or non-numeric
// input means no bound
func (l *Lister) SetMaxPrice(raw string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state.MaxPrice = raw
	l.schedule()
}

// SetView switches the presentation mode without touching the result set
func (l *Lister) SetView(mode ViewMode) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state.View = mode
}

// schedule restarts the debounce timer; callers hold l.mu. Only the last
// edit in a burst survives to trigger a fetch.
func (l *Lister) schedule() {
	if l.stopped || !l.started {
		return
	}
	l.state.Loading = true
	if l.timer != nil {
		l.timer.Stop()
	}
	l.timer = time.AfterFunc(l.debounce, l.fetch)
}

// beginFetch claims a new generation, aborting whatever was in flight
func (l *Lister) beginFetch() (context.Context, uint64, ListerState, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped {
		return nil, 0, ListerState{}, false
	}
	if l.inflight != nil {
		l.inflight()
	}
	l.gen++
	ctx, cancel := context.WithCancel(l.baseCtx)
	l.inflight = cancel
	return ctx, l.gen, l.state, true
}

func (l *Lister) fetch() {
	ctx, gen, snap, ok := l.beginFetch()
	if !ok {
		return
	}

	products, _, err := l.catalog.ListProducts(ctx, ListOptions{
		CategorySlug: snap.Category,
		Sort:         snap.Sort,
	})
	if err != nil {
		// A cancelled fetch was superseded; anything else degrades to an
		// empty listing and the next edit acts as the retry.
		if ctx.Err() == nil {
			l.logger.Warn("listing fetch failed", zap.Error(err))
		}
		products = nil
	}

	products = FilterPriceRange(products, ParsePriceBound(snap.MinPrice), ParsePriceBound(snap.MaxPrice))
	SortProducts(products, snap.Sort)

	l.complete(gen, products)
}

func (l *Lister) fetchCategories() {
	categories, err := l.catalog.ListCategories(l.baseCtx)
	if err != nil {
		l.logger.Warn("category fetch failed", zap.Error(err))
		categories = nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.stopped {
		l.state.Categories = categories
	}
}

// complete installs a fetch result unless a newer generation has been issued
// in the meantime
func (l *Lister) complete(gen uint64, products []*domain.ProductWithCategory) {
	l.mu.Lock()
	if gen != l.gen || l.stopped {
		l.mu.Unlock()
		return
	}
	l.state.Products = products
	l.state.Loading = false
	snapshot := l.state
	cb := l.onChange
	l.mu.Unlock()

	if cb != nil {
		cb(snapshot)
	}
}

// ParsePriceBound coerces raw price input into an optional bound. Blank and
// non-numeric input both mean "no bound"; they are never an error.
func ParsePriceBound(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// FilterPriceRange keeps products whose price lies in [min, max], treating a
// nil bound as unbounded. Bounds are inclusive.
func FilterPriceRange(products []*domain.ProductWithCategory, min, max *float64) []*domain.ProductWithCategory {
	if min == nil && max == nil {
		return products
	}
	filtered := make([]*domain.ProductWithCategory, 0, len(products))
	for _, p := range products {
		if min != nil && p.Price < *min {
			continue
		}
		if max != nil && p.Price > *max {
			continue
		}
		filtered = append(filtered, p)
	}
	return filtered
}

// SortProducts orders products in place by the sort key's comparator. The
// sort is stable, so equal elements keep their incoming order as a tiebreak.
func SortProducts(products []*domain.ProductWithCategory, key SortKey) {
	switch key {
	case SortPriceLow:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Price < products[j].Price
		})
	case SortPriceHigh:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Price > products[j].Price
		})
	case SortRating:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Rating > products[j].Rating
		})
	default:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].CreatedAt.After(products[j].CreatedAt)
		})
	}
}

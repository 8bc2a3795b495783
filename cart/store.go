// Package cart implements the local cart: the persisted store, price reconciliation
// against the pricing service, and checkout.
package cart

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"audiobook-storefront/models"
	"audiobook-storefront/repository"
)

// Store is the local cart. Every operation re-reads the persisted lines, so a store
// never serves a stale copy; mutations persist immediately and notify listeners with
// the new total item count.
type Store struct {
	repo   repository.CartRepositoryInterface
	logger *zap.Logger

	mu        sync.Mutex
	listeners map[int]func(count int)
	nextID    int
}

// NewStore creates a Store over repo
func NewStore(repo repository.CartRepositoryInterface, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		repo:      repo,
		logger:    logger,
		listeners: make(map[int]func(int)),
	}
}

// OnChange registers fn to be called after every mutation. The returned function
// unregisters it.
func (s *Store) OnChange(fn func(count int)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Lines returns the stored lines
func (s *Store) Lines(ctx context.Context) ([]models.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// TotalItemCount returns Σ quantity over all lines
func (s *Store) TotalItemCount(ctx context.Context) (int, error) {
	lines, err := s.Lines(ctx)
	if err != nil {
		return 0, err
	}
	return countItems(lines), nil
}

// Add puts one unit of the item into the cart. Title and price are cached on a new
// line; an existing line only gains a unit.
func (s *Store) Add(ctx context.Context, id models.LineID, title string, price float64) error {
	id = models.LineID(strings.TrimSpace(string(id)))
	if id == "" {
		return models.NewValidationError("id", "cart line id is empty")
	}
	if price < 0 {
		return models.NewValidationError("price", "negative price %v", price)
	}

	return s.mutate(ctx, "add", func(lines []models.CartLine) ([]models.CartLine, error) {
		if i := indexOf(lines, id); i >= 0 {
			lines[i].Quantity++
			return lines, nil
		}
		return append(lines, models.CartLine{ID: id, Title: title, Price: price, Quantity: 1}), nil
	})
}

// Increment adds one unit to an existing line
func (s *Store) Increment(ctx context.Context, id models.LineID) error {
	return s.mutate(ctx, "increment", func(lines []models.CartLine) ([]models.CartLine, error) {
		i := indexOf(lines, id)
		if i < 0 {
			return nil, fmt.Errorf("failed to increment %q: %w", id, models.ErrLineNotFound)
		}
		lines[i].Quantity++
		return lines, nil
	})
}

// Decrement removes one unit; the line disappears when its quantity reaches zero.
// Decrementing an absent line does nothing.
func (s *Store) Decrement(ctx context.Context, id models.LineID) error {
	return s.mutate(ctx, "decrement", func(lines []models.CartLine) ([]models.CartLine, error) {
		i := indexOf(lines, id)
		if i < 0 {
			return lines, nil
		}
		lines[i].Quantity--
		if lines[i].Quantity <= 0 {
			return append(lines[:i], lines[i+1:]...), nil
		}
		return lines, nil
	})
}

// Remove deletes the line. Removing an absent line is a no-op.
func (s *Store) Remove(ctx context.Context, id models.LineID) error {
	return s.mutate(ctx, "remove", func(lines []models.CartLine) ([]models.CartLine, error) {
		if i := indexOf(lines, id); i >= 0 {
			return append(lines[:i], lines[i+1:]...), nil
		}
		return lines, nil
	})
}

// Clear empties the cart
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	if err := s.repo.Clear(ctx); err != nil {
		s.mu.Unlock()
		return err
	}
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	s.logger.Info("cart cleared")
	notify(listeners, 0)
	return nil
}

func (s *Store) mutate(ctx context.Context, op string, fn func([]models.CartLine) ([]models.CartLine, error)) error {
	s.mu.Lock()
	lines, err := s.load(ctx)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	next, err := fn(lines)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if err := s.repo.Save(ctx, next); err != nil {
		s.mu.Unlock()
		return err
	}
	count := countItems(next)
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	s.logger.Debug("cart updated", zap.String("op", op), zap.Int("lines", len(next)), zap.Int("items", count))
	notify(listeners, count)
	return nil
}

// load reads the stored lines, merging duplicate ids and dropping lines without a
// positive quantity
func (s *Store) load(ctx context.Context) ([]models.CartLine, error) {
	stored, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}

	lines := make([]models.CartLine, 0, len(stored))
	for _, line := range stored {
		line.ID = models.LineID(strings.TrimSpace(string(line.ID)))
		if line.ID == "" || line.Quantity < 1 {
			s.logger.Warn("dropping malformed cart line", zap.String("id", string(line.ID)), zap.Int("quantity", line.Quantity))
			continue
		}
		if i := indexOf(lines, line.ID); i >= 0 {
			lines[i].Quantity += line.Quantity
			continue
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func (s *Store) snapshotListeners() []func(int) {
	out := make([]func(int), 0, len(s.listeners))
	for _, fn := range s.listeners {
		out = append(out, fn)
	}
	return out
}

func notify(listeners []func(int), count int) {
	for _, fn := range listeners {
		fn(count)
	}
}

func indexOf(lines []models.CartLine, id models.LineID) int {
	for i, line := range lines {
		if line.ID == id {
			return i
		}
	}
	return -1
}

func countItems(lines []models.CartLine) int {
	total := 0
	for _, line := range lines {
		total += line.Quantity
	}
	return total
}

package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"warehouse/contexts/warehouse/inventory-service/domain/entities"
	domainerrors "warehouse/contexts/warehouse/inventory-service/domain/errors"

	"github.com/google/uuid"
)

// Store is the in-memory baseline store used by the in-memory module and
// the unit suites. It also provides the module's clock and ID generator.
type Store struct {
	mu       sync.RWMutex
	products map[uuid.UUID]entities.Product
}

func NewStore(seed []entities.Product) *Store {
	products := make(map[uuid.UUID]entities.Product, len(seed))
	for _, item := range seed {
		products[item.ID] = item
	}
	return &Store{products: products}
}

func (s *Store) FindProduct(_ context.Context, productID uuid.UUID) (entities.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, exists := s.products[productID]
	if !exists {
		return entities.Product{}, domainerrors.ErrProductNotFound
	}
	return item, nil
}

func (s *Store) ListProducts(_ context.Context) ([]entities.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Product, 0, len(s.products))
	for _, item := range s.products {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].ID.String() < items[j].ID.String()
	})
	return items, nil
}

func (s *Store) CreateProduct(_ context.Context, product entities.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[product.ID]; exists {
		return domainerrors.ErrProductAlreadyExists
	}
	s.products[product.ID] = product
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (uuid.UUID, error) {
	return uuid.New(), nil
}

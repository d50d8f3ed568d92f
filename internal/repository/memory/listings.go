package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/arzan03/CampusPortal/internal/common"
	"github.com/arzan03/CampusPortal/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ListingRepository keeps one listing kind in insertion order. base exposes
// the shared fields of a stored item.
type ListingRepository[T any] struct {
	mu       sync.RWMutex
	items    []T
	base     func(*T) *models.ListingBase
	notFound string
}

func newListingRepository[T any](base func(*T) *models.ListingBase, notFound string) *ListingRepository[T] {
	return &ListingRepository[T]{base: base, notFound: notFound}
}

func NewLostItemRepository() *ListingRepository[models.LostItem] {
	return newListingRepository(func(i *models.LostItem) *models.ListingBase { return &i.ListingBase }, "Item not found")
}

func NewMarketplaceRepository() *ListingRepository[models.MarketplaceItem] {
	return newListingRepository(func(i *models.MarketplaceItem) *models.ListingBase { return &i.ListingBase }, "Item not found")
}

func (r *ListingRepository[T]) Insert(_ context.Context, item *T) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if b := r.base(item); b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
	}
	stored := *item
	r.base(&stored).Owner = nil
	r.items = append(r.items, stored)
	return nil
}

// index must be called with the lock held.
func (r *ListingRepository[T]) index(id primitive.ObjectID) int {
	for i := range r.items {
		if r.base(&r.items[i]).ID == id {
			return i
		}
	}
	return -1
}

func (r *ListingRepository[T]) FindByID(_ context.Context, id primitive.ObjectID) (*T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.index(id)
	if i < 0 {
		return nil, common.NewError(common.ErrNotFound, r.notFound)
	}
	item := r.items[i]
	return &item, nil
}

func (r *ListingRepository[T]) FindByStatus(_ context.Context, status models.Status) ([]T, error) {
	return r.filter(func(b *models.ListingBase) bool { return b.Status == status }), nil
}

func (r *ListingRepository[T]) FindByOwner(_ context.Context, owner primitive.ObjectID) ([]T, error) {
	return r.filter(func(b *models.ListingBase) bool { return b.User == owner }), nil
}

func (r *ListingRepository[T]) filter(keep func(*models.ListingBase) bool) []T {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []T{}
	for i := len(r.items) - 1; i >= 0; i-- {
		if keep(r.base(&r.items[i])) {
			out = append(out, r.items[i])
		}
	}
	// walking backwards keeps later inserts first among equal timestamps
	sort.SliceStable(out, func(i, j int) bool {
		return r.base(&out[i]).CreatedAt.After(r.base(&out[j]).CreatedAt)
	})
	return out
}

func (r *ListingRepository[T]) SetStatus(_ context.Context, id primitive.ObjectID, status models.Status) (*models.ListingBase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(id)
	if i < 0 {
		return nil, common.NewError(common.ErrNotFound, r.notFound)
	}
	b := r.base(&r.items[i])
	b.Status = status
	b.UpdatedAt = time.Now().UTC()
	out := *b
	return &out, nil
}

type NoteRepository struct {
	*ListingRepository[models.Note]
}

func NewNoteRepository() *NoteRepository {
	return &NoteRepository{newListingRepository(func(n *models.Note) *models.ListingBase { return &n.ListingBase }, "Note not found")}
}

func (r *NoteRepository) IncrementDownloads(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(id)
	if i < 0 {
		return common.NewError(common.ErrNotFound, r.notFound)
	}
	r.items[i].DownloadCount++
	return nil
}

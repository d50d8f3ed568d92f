package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/arzan03/CampusPortal/internal/auth"
	"github.com/arzan03/CampusPortal/internal/common"
	"github.com/arzan03/CampusPortal/internal/logging"
	"github.com/arzan03/CampusPortal/internal/models"
	"github.com/arzan03/CampusPortal/internal/repository"
	"github.com/arzan03/CampusPortal/internal/storage"
	"github.com/arzan03/CampusPortal/internal/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DownloadURLExpiry bounds presigned note downloads.
const DownloadURLExpiry = 10 * time.Minute

// Upload is a file received with a listing.
type Upload struct {
	Name        string
	Size        int64
	ContentType string
	Body        io.Reader
}

type LostItemInput struct {
	Title       string `json:"title" form:"title" validate:"required"`
	Description string `json:"description" form:"description" validate:"required"`
	Location    string `json:"location" form:"location" validate:"required"`
}

type MarketplaceInput struct {
	Title       string  `json:"title" form:"title" validate:"required"`
	Description string  `json:"description" form:"description" validate:"required"`
	Price       float64 `json:"price" form:"price" validate:"gt=0"`
	Contact     string  `json:"contact" form:"contact"`
}

type NoteInput struct {
	Title       string `json:"title" form:"title" validate:"required"`
	Subject     string `json:"subject" form:"subject" validate:"required"`
	Semester    string `json:"semester" form:"semester" validate:"required"`
	Description string `json:"description" form:"description"`
	// FileURL points at an externally hosted file when nothing is uploaded.
	FileURL  string `json:"fileUrl" form:"fileUrl"`
	FileName string `json:"fileName" form:"fileName"`
	FileSize int64  `json:"fileSize" form:"fileSize"`
}

func (in *LostItemInput) trim() {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Location = strings.TrimSpace(in.Location)
}

func (in *MarketplaceInput) trim() {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Contact = strings.TrimSpace(in.Contact)
}

func (in *NoteInput) trim() {
	in.Title = strings.TrimSpace(in.Title)
	in.Subject = strings.TrimSpace(in.Subject)
	in.Semester = strings.TrimSpace(in.Semester)
	in.Description = strings.TrimSpace(in.Description)
	in.FileURL = strings.TrimSpace(in.FileURL)
	in.FileName = strings.TrimSpace(in.FileName)
}

// Listings wraps one listing store with the read paths shared by every kind.
type Listings[T any] struct {
	repo  repository.ListingRepository[T]
	users repository.UserRepository
	base  func(*T) *models.ListingBase
}

// Approved is the public feed, newest first, with owners attached.
func (l *Listings[T]) Approved(ctx context.Context) ([]T, error) {
	items, err := l.repo.FindByStatus(ctx, models.StatusApproved)
	if err != nil {
		return nil, err
	}
	return items, l.populateOwners(ctx, items)
}

// Pending is the moderation queue for this kind.
func (l *Listings[T]) Pending(ctx context.Context, actorRole string) ([]T, error) {
	if err := auth.RequireAdmin(actorRole); err != nil {
		return nil, err
	}
	items, err := l.repo.FindByStatus(ctx, models.StatusPending)
	if err != nil {
		return nil, err
	}
	return items, l.populateOwners(ctx, items)
}

func (l *Listings[T]) ByOwner(ctx context.Context, owner primitive.ObjectID) ([]T, error) {
	return l.repo.FindByOwner(ctx, owner)
}

func (l *Listings[T]) populateOwners(ctx context.Context, items []T) error {
	if len(items) == 0 {
		return nil
	}

	seen := make(map[primitive.ObjectID]bool)
	ids := make([]primitive.ObjectID, 0, len(items))
	for i := range items {
		id := l.base(&items[i]).User
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	users, err := l.users.FindByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("populate owners: %w", err)
	}
	owners := make(map[primitive.ObjectID]*models.UserSummary, len(users))
	for i := range users {
		owners[users[i].ID] = users[i].Summary()
	}
	for i := range items {
		b := l.base(&items[i])
		b.Owner = owners[b.User]
	}
	return nil
}

// PendingOverview is every moderation queue at once.
type PendingOverview struct {
	LostItems   []models.LostItem        `json:"lostItems"`
	Marketplace []models.MarketplaceItem `json:"marketplaceItems"`
	Notes       []models.Note            `json:"notes"`
}

type ListingService struct {
	LostItems   *Listings[models.LostItem]
	Marketplace *Listings[models.MarketplaceItem]
	Notes       *Listings[models.Note]

	notes   repository.NoteRepository
	notify  *NotificationService
	objects storage.ObjectStore
	log     logging.Logger
	now     func() time.Time
}

// NewListingService wires the listing stores. objects may be nil, in which
// case uploads are refused and notes must reference an external fileUrl.
func NewListingService(store *repository.Store, notify *NotificationService, objects storage.ObjectStore, log logging.Logger) *ListingService {
	return &ListingService{
		LostItems: &Listings[models.LostItem]{
			repo: store.LostItems, users: store.Users,
			base: func(i *models.LostItem) *models.ListingBase { return &i.ListingBase },
		},
		Marketplace: &Listings[models.MarketplaceItem]{
			repo: store.Marketplace, users: store.Users,
			base: func(i *models.MarketplaceItem) *models.ListingBase { return &i.ListingBase },
		},
		Notes: &Listings[models.Note]{
			repo: store.Notes, users: store.Users,
			base: func(n *models.Note) *models.ListingBase { return &n.ListingBase },
		},
		notes:   store.Notes,
		notify:  notify,
		objects: objects,
		log:     log,
		now:     time.Now,
	}
}

func (s *ListingService) WithClock(now func() time.Time) *ListingService {
	s.now = now
	return s
}

func (s *ListingService) newBase(owner *models.User, title, description string) models.ListingBase {
	now := s.now().UTC()
	return models.ListingBase{
		Title:       title,
		Description: description,
		User:        owner.ID,
		Status:      models.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (s *ListingService) CreateLostItem(ctx context.Context, owner *models.User, in LostItemInput, image *Upload) (*models.LostItem, error) {
	in.trim()
	if err := validateInput(in); err != nil {
		return nil, err
	}

	item := &models.LostItem{
		ListingBase: s.newBase(owner, in.Title, in.Description),
		Location:    in.Location,
	}
	var key string
	if image != nil {
		url, k, err := s.store(ctx, "images", image)
		if err != nil {
			return nil, err
		}
		item.Image, key = url, k
	}

	if err := s.LostItems.repo.Insert(ctx, item); err != nil {
		s.discard(ctx, key)
		return nil, err
	}
	return item, s.submitted(ctx, models.KindLostItem, &item.ListingBase)
}

func (s *ListingService) CreateMarketplaceItem(ctx context.Context, owner *models.User, in MarketplaceInput, image *Upload) (*models.MarketplaceItem, error) {
	in.trim()
	if err := validateInput(in); err != nil {
		return nil, err
	}

	contact := in.Contact
	if contact == "" {
		contact = owner.Phone
	}
	item := &models.MarketplaceItem{
		ListingBase: s.newBase(owner, in.Title, in.Description),
		Price:       in.Price,
		Contact:     contact,
	}
	var key string
	if image != nil {
		url, k, err := s.store(ctx, "images", image)
		if err != nil {
			return nil, err
		}
		item.Image, key = url, k
	}

	if err := s.Marketplace.repo.Insert(ctx, item); err != nil {
		s.discard(ctx, key)
		return nil, err
	}
	return item, s.submitted(ctx, models.KindMarketplace, &item.ListingBase)
}

func (s *ListingService) CreateNote(ctx context.Context, owner *models.User, in NoteInput, file *Upload) (*models.Note, error) {
	in.trim()
	if file == nil && in.FileURL == "" {
		return nil, common.NewError(common.ErrValidation, "File is required")
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	note := &models.Note{
		ListingBase: s.newBase(owner, in.Title, in.Description),
		Subject:     in.Subject,
		Semester:    in.Semester,
	}
	if file != nil {
		url, key, err := s.store(ctx, "notes", file)
		if err != nil {
			return nil, err
		}
		note.FileName, note.FileSize, note.FileURL, note.ObjectKey = file.Name, file.Size, url, key
	} else {
		note.FileURL = in.FileURL
		note.FileName = in.FileName
		if note.FileName == "" {
			note.FileName = lastSegment(note.FileURL)
		}
		note.FileSize = in.FileSize
	}

	if err := s.notes.Insert(ctx, note); err != nil {
		s.discard(ctx, note.ObjectKey)
		return nil, err
	}
	return note, s.submitted(ctx, models.KindNote, &note.ListingBase)
}

// Download counts a download and returns a URL the caller can fetch. Notes
// that are not approved are only visible to their owner and to admins.
func (s *ListingService) Download(ctx context.Context, actor *models.User, id string) (string, *models.Note, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return "", nil, common.NewError(common.ErrValidation, "Invalid note id")
	}
	note, err := s.notes.FindByID(ctx, oid)
	if err != nil {
		return "", nil, err
	}
	if note.Status != models.StatusApproved && note.User != actor.ID && !actor.IsAdmin() {
		return "", nil, common.NewError(common.ErrNotFound, "Note not found")
	}

	url := note.FileURL
	if note.ObjectKey != "" {
		if s.objects == nil {
			return "", nil, common.NewError(common.ErrNotFound, "File is not available")
		}
		url, err = s.objects.PresignedGet(ctx, note.ObjectKey, DownloadURLExpiry)
		if err != nil {
			return "", nil, err
		}
	}

	if err := s.notes.IncrementDownloads(ctx, oid); err != nil {
		return "", nil, err
	}
	note.DownloadCount++
	return url, note, nil
}

// Pending fetches the three moderation queues in parallel.
func (s *ListingService) Pending(ctx context.Context, actorRole string) (*PendingOverview, error) {
	if err := auth.RequireAdmin(actorRole); err != nil {
		return nil, err
	}

	var out PendingOverview
	err := utils.RunParallelTasks(ctx,
		func(ctx context.Context) (err error) {
			out.LostItems, err = s.LostItems.Pending(ctx, actorRole)
			return err
		},
		func(ctx context.Context) (err error) {
			out.Marketplace, err = s.Marketplace.Pending(ctx, actorRole)
			return err
		},
		func(ctx context.Context) (err error) {
			out.Notes, err = s.Notes.Pending(ctx, actorRole)
			return err
		},
	)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *ListingService) submitted(ctx context.Context, kind models.Kind, b *models.ListingBase) error {
	id := b.ID
	_, err := s.notify.Notify(ctx, NotifyInput{
		User:    b.User,
		Message: fmt.Sprintf("Your %s \"%s\" has been submitted for approval.", kind.Label(), b.Title),
		Type:    models.NotiSystem,
		ItemID:  &id,
	})
	if err != nil {
		return err
	}
	s.log.Info(ctx, "listing submitted", "kind", kind, "id", id.Hex(), "user_id", b.User.Hex())
	return nil
}

func (s *ListingService) store(ctx context.Context, prefix string, up *Upload) (url, key string, err error) {
	if s.objects == nil {
		return "", "", common.NewError(common.ErrValidation, "File uploads are not available")
	}
	if up.Size <= 0 {
		return "", "", common.NewError(common.ErrValidation, "Uploaded file is empty")
	}
	contentType := up.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key = storage.ObjectKey(prefix, up.Name)
	url, err = s.objects.Put(ctx, key, up.Body, up.Size, contentType)
	if err != nil {
		return "", "", err
	}
	return url, key, nil
}

func (s *ListingService) discard(ctx context.Context, key string) {
	if key == "" || s.objects == nil {
		return
	}
	if err := s.objects.Remove(ctx, key); err != nil {
		s.log.Warn(ctx, "failed to remove orphaned object", "key", key, "error", err)
	}
}

func lastSegment(u string) string {
	u = strings.TrimRight(u, "/")
	if i := strings.LastIndex(u, "/"); i >= 0 {
		return u[i+1:]
	}
	return u
}

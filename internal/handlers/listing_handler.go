package handlers

import (
	"strings"

	"github.com/arzan03/CampusPortal/internal/common"
	"github.com/arzan03/CampusPortal/internal/middleware"
	"github.com/arzan03/CampusPortal/internal/services"
	"github.com/gofiber/fiber/v2"
)

type ListingHandler struct {
	listings *services.ListingService
}

func NewListingHandler(listings *services.ListingService) *ListingHandler {
	return &ListingHandler{listings: listings}
}

func (h *ListingHandler) CreateLostItem(c *fiber.Ctx) error {
	var req services.LostItemInput
	if err := c.BodyParser(&req); err != nil {
		return badBody()
	}
	image, done, err := formUpload(c, "image")
	if err != nil {
		return err
	}
	defer done()

	item, err := h.listings.CreateLostItem(c.UserContext(), middleware.CurrentUser(c), req, image)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Lost item posted successfully and pending approval",
		"item":    item,
	})
}

func (h *ListingHandler) CreateMarketplaceItem(c *fiber.Ctx) error {
	var req services.MarketplaceInput
	if err := c.BodyParser(&req); err != nil {
		return badBody()
	}
	image, done, err := formUpload(c, "image")
	if err != nil {
		return err
	}
	defer done()

	item, err := h.listings.CreateMarketplaceItem(c.UserContext(), middleware.CurrentUser(c), req, image)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Item posted successfully and pending approval",
		"item":    item,
	})
}

func (h *ListingHandler) CreateNote(c *fiber.Ctx) error {
	var req services.NoteInput
	if err := c.BodyParser(&req); err != nil {
		return badBody()
	}
	file, done, err := formUpload(c, "file")
	if err != nil {
		return err
	}
	defer done()

	note, err := h.listings.CreateNote(c.UserContext(), middleware.CurrentUser(c), req, file)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Note uploaded successfully and pending approval",
		"note":    note,
	})
}

func (h *ListingHandler) DownloadNote(c *fiber.Ctx) error {
	url, note, err := h.listings.Download(c.UserContext(), middleware.CurrentUser(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"url":           url,
		"fileName":      note.FileName,
		"downloadCount": note.DownloadCount,
		"expiresIn":     services.DownloadURLExpiry.String(),
	})
}

// Approved serves the public feed of one listing kind.
func Approved[T any](l *services.Listings[T]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := l.Approved(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(items)
	}
}

// Mine serves the caller's own submissions in every status.
func Mine[T any](l *services.Listings[T]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := l.ByOwner(c.UserContext(), middleware.CurrentUser(c).ID)
		if err != nil {
			return err
		}
		return c.JSON(items)
	}
}

func Pending[T any](l *services.Listings[T]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := l.Pending(c.UserContext(), middleware.CurrentUser(c).Role)
		if err != nil {
			return err
		}
		return c.JSON(items)
	}
}

// formUpload returns the file sent under field in a multipart request, or
// nil when the request carries none. done closes the file.
func formUpload(c *fiber.Ctx, field string) (*services.Upload, func(), error) {
	noop := func() {}
	if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		return nil, noop, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return nil, noop, common.NewError(common.ErrValidation, "Invalid multipart form")
	}
	files := form.File[field]
	if len(files) == 0 {
		return nil, noop, nil
	}

	fh := files[0]
	f, err := fh.Open()
	if err != nil {
		return nil, noop, common.NewError(common.ErrValidation, "Failed to open file")
	}
	return &services.Upload{
		Name:        fh.Filename,
		Size:        fh.Size,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Body:        f,
	}, func() { f.Close() }, nil
}

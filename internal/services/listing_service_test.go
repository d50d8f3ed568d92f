package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/arzan03/CampusPortal/internal/common"
	"github.com/arzan03/CampusPortal/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateLostItemIsPendingAndNotifies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.verifiedUser(t, "a@x.com", "R1")

	item, err := f.svc.Listings.CreateLostItem(ctx, owner, LostItemInput{
		Title: "Calculator", Description: "Casio fx-991", Location: "Block C",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, item.Status)
	assert.Equal(t, owner.ID, item.User)
	assert.False(t, item.ID.IsZero())

	list, err := f.svc.Notifications.ForUser(ctx, owner.ID, true)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, `Your lost item "Calculator" has been submitted for approval.`, list[0].Message)
	assert.Equal(t, models.NotiSystem, list[0].Type)
}

func TestCreateListingValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.verifiedUser(t, "a@x.com", "R1")

	_, err := f.svc.Listings.CreateLostItem(ctx, owner, LostItemInput{Title: "x", Description: "y"}, nil)
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = f.svc.Listings.CreateMarketplaceItem(ctx, owner, MarketplaceInput{Title: "x", Description: "y", Price: 0}, nil)
	require.ErrorIs(t, err, common.ErrValidation)
	assert.Contains(t, common.Message(err), "price")

	_, err = f.svc.Listings.CreateNote(ctx, owner, NoteInput{Title: "x", Subject: "s", Semester: "1"}, nil)
	require.ErrorIs(t, err, common.ErrValidation)
	assert.Equal(t, "File is required", common.Message(err))
}

func TestCreateListingRejectsBlankFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.verifiedUser(t, "a@x.com", "R1")

	_, err := f.svc.Listings.CreateLostItem(ctx, owner, LostItemInput{Title: "   ", Description: "  ", Location: "  "}, nil)
	require.ErrorIs(t, err, common.ErrValidation)
	assert.Equal(t, "title is required", common.Message(err))

	_, err = f.svc.Listings.CreateLostItem(ctx, owner, LostItemInput{Title: "Umbrella", Description: "black", Location: "\t"}, nil)
	require.ErrorIs(t, err, common.ErrValidation)
	assert.Equal(t, "location is required", common.Message(err))

	_, err = f.svc.Listings.CreateMarketplaceItem(ctx, owner, MarketplaceInput{Title: "Desk", Description: " ", Price: 10}, nil)
	require.ErrorIs(t, err, common.ErrValidation)
	assert.Equal(t, "description is required", common.Message(err))

	_, err = f.svc.Listings.CreateNote(ctx, owner, NoteInput{Title: "DSA", Subject: " ", Semester: "3", FileURL: "https://x/y.pdf"}, nil)
	require.ErrorIs(t, err, common.ErrValidation)
	assert.Equal(t, "subject is required", common.Message(err))

	_, err = f.svc.Listings.CreateNote(ctx, owner, NoteInput{Title: "DSA", Subject: "CS", Semester: "3", FileURL: "  "}, nil)
	require.ErrorIs(t, err, common.ErrValidation)
	assert.Equal(t, "File is required", common.Message(err))

	mine, err := f.svc.Listings.LostItems.ByOwner(ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestCreateListingTrimsFields(t *testing.T) {
	f := newFixture(t)
	owner := f.verifiedUser(t, "a@x.com", "R1")

	item, err := f.svc.Listings.CreateLostItem(context.Background(), owner, LostItemInput{
		Title: "  Calculator ", Description: " Casio ", Location: " Block C ",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Calculator", item.Title)
	assert.Equal(t, "Casio", item.Description)
	assert.Equal(t, "Block C", item.Location)
}

func TestMarketplaceContactDefaultsToPhone(t *testing.T) {
	f := newFixture(t)
	owner := f.verifiedUser(t, "a@x.com", "R1")

	item, err := f.svc.Listings.CreateMarketplaceItem(context.Background(), owner, MarketplaceInput{
		Title: "Lab coat", Description: "size M", Price: 200,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, owner.Phone, item.Contact)
}

func TestApprovedFeedPopulatesOwners(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.verifiedUser(t, "a@x.com", "R1")

	first, err := f.svc.Listings.CreateLostItem(ctx, owner, LostItemInput{Title: "first", Description: "d", Location: "l"}, nil)
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	second, err := f.svc.Listings.CreateLostItem(ctx, owner, LostItemInput{Title: "second", Description: "d", Location: "l"}, nil)
	require.NoError(t, err)
	_, err = f.svc.Listings.CreateLostItem(ctx, owner, LostItemInput{Title: "hidden", Description: "d", Location: "l"}, nil)
	require.NoError(t, err)

	for _, id := range []string{first.ID.Hex(), second.ID.Hex()} {
		_, err := f.svc.Moderation.Decide(ctx, models.RoleAdmin, models.KindLostItem, id, models.StatusApproved)
		require.NoError(t, err)
	}

	items, err := f.svc.Listings.LostItems.Approved(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "second", items[0].Title)
	require.NotNil(t, items[0].Owner)
	assert.Equal(t, "a@x.com", items[0].Owner.Email)

	mine, err := f.svc.Listings.LostItems.ByOwner(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 3)
}

func TestPendingRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.verifiedUser(t, "a@x.com", "R1")
	_, err := f.svc.Listings.CreateLostItem(ctx, owner, LostItemInput{Title: "t", Description: "d", Location: "l"}, nil)
	require.NoError(t, err)
	_, err = f.svc.Listings.CreateNote(ctx, owner, NoteInput{Title: "n", Subject: "s", Semester: "2", FileURL: "https://x/y.pdf"}, nil)
	require.NoError(t, err)

	_, err = f.svc.Listings.LostItems.Pending(ctx, models.RoleUser)
	assert.ErrorIs(t, err, common.ErrForbidden)
	_, err = f.svc.Listings.Pending(ctx, models.RoleUser)
	assert.ErrorIs(t, err, common.ErrForbidden)

	overview, err := f.svc.Listings.Pending(ctx, models.RoleAdmin)
	require.NoError(t, err)
	assert.Len(t, overview.LostItems, 1)
	assert.Empty(t, overview.Marketplace)
	require.Len(t, overview.Notes, 1)
	assert.Equal(t, "y.pdf", overview.Notes[0].FileName)
	require.NotNil(t, overview.Notes[0].Owner)
}

func TestNoteUploadAndDownload(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.verifiedUser(t, "a@x.com", "R1")
	other := f.verifiedUser(t, "b@x.com", "R2")

	body := "%PDF-1.4 lecture notes"
	note, err := f.svc.Listings.CreateNote(ctx, owner, NoteInput{Title: "OS", Subject: "Operating Systems", Semester: "5"}, &Upload{
		Name: "os-unit2.pdf", Size: int64(len(body)), ContentType: "application/pdf", Body: strings.NewReader(body),
	})
	require.NoError(t, err)
	assert.Equal(t, "os-unit2.pdf", note.FileName)
	assert.True(t, strings.HasPrefix(note.ObjectKey, "notes/"))
	data, ok := f.objects.Object(note.ObjectKey)
	require.True(t, ok)
	assert.Equal(t, body, string(data))

	// pending notes stay hidden from other users
	_, _, err = f.svc.Listings.Download(ctx, other, note.ID.Hex())
	require.ErrorIs(t, err, common.ErrNotFound)

	url, _, err := f.svc.Listings.Download(ctx, owner, note.ID.Hex())
	require.NoError(t, err)
	assert.Contains(t, url, note.ObjectKey)

	_, err = f.svc.Moderation.Decide(ctx, models.RoleAdmin, models.KindNote, note.ID.Hex(), models.StatusApproved)
	require.NoError(t, err)
	_, got, err := f.svc.Listings.Download(ctx, other, note.ID.Hex())
	require.NoError(t, err)
	assert.EqualValues(t, 2, got.DownloadCount)

	_, _, err = f.svc.Listings.Download(ctx, other, "bad")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestUploadsRefusedWithoutObjectStore(t *testing.T) {
	f := newFixture(t)
	owner := f.verifiedUser(t, "a@x.com", "R1")
	svc := NewListingService(f.store, f.svc.Notifications, nil, f.svc.Listings.log)

	_, err := svc.CreateLostItem(context.Background(), owner, LostItemInput{Title: "t", Description: "d", Location: "l"}, &Upload{
		Name: "a.png", Size: 3, Body: strings.NewReader("png"),
	})
	assert.ErrorIs(t, err, common.ErrValidation)
}

package memory

import (
	"context"
	"testing"
	"time"

	"github.com/arzan03/CampusPortal/internal/common"
	"github.com/arzan03/CampusPortal/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUserRepositoryUniqueness(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	require.NoError(t, repo.Create(ctx, &models.User{Email: "a@campus.edu", RegdNo: "R1"}))

	err := repo.Create(ctx, &models.User{Email: "a@campus.edu", RegdNo: "R2"})
	assert.ErrorIs(t, err, common.ErrAlreadyExists)

	err = repo.Create(ctx, &models.User{Email: "b@campus.edu", RegdNo: "R1"})
	assert.ErrorIs(t, err, common.ErrAlreadyExists)

	exists, err := repo.ExistsByEmailOrRegdNo(ctx, "c@campus.edu", "R1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestConsumeOTPIsSingleUse(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()
	u := &models.User{Email: "a@campus.edu", RegdNo: "R1"}
	require.NoError(t, repo.Create(ctx, u))
	require.NoError(t, repo.SetOTP(ctx, u.ID, "123456", time.Now().Add(time.Minute), false))

	err := repo.ConsumeOTP(ctx, u.ID, "654321", models.OTPConsumption{MarkVerified: true})
	assert.ErrorIs(t, err, common.ErrNotFound)

	require.NoError(t, repo.ConsumeOTP(ctx, u.ID, "123456", models.OTPConsumption{MarkVerified: true}))
	err = repo.ConsumeOTP(ctx, u.ID, "123456", models.OTPConsumption{MarkVerified: true})
	assert.ErrorIs(t, err, common.ErrNotFound)

	got, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, got.IsVerified)
	assert.Empty(t, got.OTP)
	assert.True(t, got.OTPExpiry.IsZero())
}

func TestListRedactsSecrets(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()
	u := &models.User{Email: "a@campus.edu", RegdNo: "R1", Password: "hash"}
	require.NoError(t, repo.Create(ctx, u))
	require.NoError(t, repo.SetOTP(ctx, u.ID, "123456", time.Now().Add(time.Minute), false))

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Empty(t, users[0].Password)
	assert.Empty(t, users[0].OTP)
}

func TestListingOrderAndStatus(t *testing.T) {
	ctx := context.Background()
	repo := NewLostItemRepository()
	owner := primitive.NewObjectID()
	now := time.Now().UTC()

	older := &models.LostItem{ListingBase: models.ListingBase{Title: "old", User: owner, Status: models.StatusPending, CreatedAt: now.Add(-time.Hour)}}
	newer := &models.LostItem{ListingBase: models.ListingBase{Title: "new", User: owner, Status: models.StatusPending, CreatedAt: now}}
	require.NoError(t, repo.Insert(ctx, older))
	require.NoError(t, repo.Insert(ctx, newer))

	pending, err := repo.FindByStatus(ctx, models.StatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "new", pending[0].Title)

	base, err := repo.SetStatus(ctx, older.ID, models.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, base.Status)
	assert.Equal(t, owner, base.User)

	approved, err := repo.FindByStatus(ctx, models.StatusApproved)
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, "old", approved[0].Title)

	_, err = repo.SetStatus(ctx, primitive.NewObjectID(), models.StatusApproved)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestNoteDownloads(t *testing.T) {
	ctx := context.Background()
	repo := NewNoteRepository()
	note := &models.Note{ListingBase: models.ListingBase{Title: "Algebra"}}
	require.NoError(t, repo.Insert(ctx, note))

	require.NoError(t, repo.IncrementDownloads(ctx, note.ID))
	require.NoError(t, repo.IncrementDownloads(ctx, note.ID))

	got, err := repo.FindByID(ctx, note.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, got.DownloadCount)
}

func TestNotificationOwnership(t *testing.T) {
	ctx := context.Background()
	repo := NewNotificationRepository()
	alice, bob := primitive.NewObjectID(), primitive.NewObjectID()

	first := &models.Notification{User: alice, Message: "one"}
	require.NoError(t, repo.Insert(ctx, first))
	require.NoError(t, repo.Insert(ctx, &models.Notification{User: alice, Message: "two"}))
	require.NoError(t, repo.Insert(ctx, &models.Notification{User: bob, Message: "three"}))

	_, err := repo.MarkRead(ctx, first.ID, bob)
	assert.ErrorIs(t, err, common.ErrNotFound)

	n, err := repo.MarkRead(ctx, first.ID, alice)
	require.NoError(t, err)
	assert.True(t, n.Read)

	unread, err := repo.FindByUser(ctx, alice, true)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, "two", unread[0].Message)

	count, err := repo.MarkAllRead(ctx, alice)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	count, err = repo.MarkAllRead(ctx, alice)
	require.NoError(t, err)
	assert.Zero(t, count)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, "three", all[0].Message)
}

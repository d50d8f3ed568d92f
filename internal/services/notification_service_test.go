package services

import (
	"context"
	"testing"

	"github.com/arzan03/CampusPortal/internal/common"
	"github.com/arzan03/CampusPortal/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNotifyDefaultsAndValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := primitive.NewObjectID()

	n, err := f.svc.Notifications.Notify(ctx, NotifyInput{User: user, Message: " hello "})
	require.NoError(t, err)
	assert.Equal(t, "hello", n.Message)
	assert.Equal(t, models.NotiSystem, n.Type)
	assert.Equal(t, f.clock.Now(), n.CreatedAt)

	_, err = f.svc.Notifications.Notify(ctx, NotifyInput{User: user})
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = f.svc.Notifications.Notify(ctx, NotifyInput{User: user, Message: "x", Type: "email"})
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = f.svc.Notifications.Notify(ctx, NotifyInput{Message: "x"})
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestMarkReadFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice, bob := primitive.NewObjectID(), primitive.NewObjectID()

	n, err := f.svc.Notifications.Notify(ctx, NotifyInput{User: alice, Message: "one"})
	require.NoError(t, err)
	_, err = f.svc.Notifications.Notify(ctx, NotifyInput{User: alice, Message: "two", Type: models.NotiNotes})
	require.NoError(t, err)

	_, err = f.svc.Notifications.MarkRead(ctx, bob, n.ID.Hex())
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = f.svc.Notifications.MarkRead(ctx, alice, "zzz")
	assert.ErrorIs(t, err, common.ErrValidation)

	read, err := f.svc.Notifications.MarkRead(ctx, alice, n.ID.Hex())
	require.NoError(t, err)
	assert.True(t, read.Read)

	count, err := f.svc.Notifications.MarkAllRead(ctx, alice)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	unread, err := f.svc.Notifications.ForUser(ctx, alice, true)
	require.NoError(t, err)
	assert.Empty(t, unread)
}

package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexPlan_UniqueUserKeys(t *testing.T) {
	plan := IndexPlan()

	users := plan[UsersCollection]
	require.Len(t, users, 2)
	for _, idx := range users {
		require.NotNil(t, idx.Options)
		require.NotNil(t, idx.Options.Unique)
		assert.True(t, *idx.Options.Unique)
	}
}

func TestIndexPlan_CoversEveryCollection(t *testing.T) {
	plan := IndexPlan()
	for _, name := range []string{
		UsersCollection,
		LostItemsCollection,
		MarketplaceItemsCollection,
		NotesCollection,
		NotificationsCollection,
	} {
		assert.NotEmpty(t, plan[name], name)
	}
}

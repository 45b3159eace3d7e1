package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"townsquare/internal/models"
	"townsquare/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatroomRepository(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewChatroomRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice", 30)
	bob := testutil.CreateUser(t, db, "bob", 30)
	c := testutil.CreateCommunity(t, db, alice, "Readers")
	room := testutil.CreateChatroom(t, db, c.ID, "Book club")

	t.Run("AddMember is idempotent", func(t *testing.T) {
		created, err := repo.AddMember(ctx, room.ID, bob.ID)
		require.NoError(t, err)
		assert.True(t, created)

		created, err = repo.AddMember(ctx, room.ID, bob.ID)
		require.NoError(t, err)
		assert.False(t, created)

		ok, err := repo.IsMember(ctx, room.ID, bob.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		ids, err := repo.MemberChatroomIDs(ctx, bob.ID)
		require.NoError(t, err)
		assert.Equal(t, map[uint]bool{room.ID: true}, ids)
	})

	t.Run("GetWithMembers", func(t *testing.T) {
		got, err := repo.GetWithMembers(ctx, room.ID)
		require.NoError(t, err)
		require.Len(t, got.Members, 1)
		require.NotNil(t, got.Members[0].User)
		assert.Equal(t, "bob", got.Members[0].User.Username)

		_, err = repo.GetWithMembers(ctx, 999)
		assert.True(t, models.IsNotFound(err))
	})

	t.Run("ListMessages returns latest in chronological order", func(t *testing.T) {
		base := time.Now().Add(-time.Hour)
		for i := 0; i < 5; i++ {
			require.NoError(t, repo.CreateMessage(ctx, &models.Message{
				Content:    fmt.Sprintf("msg %d", i),
				SentAt:     base.Add(time.Duration(i) * time.Minute),
				SenderID:   bob.ID,
				ChatroomID: room.ID,
			}))
		}

		msgs, err := repo.ListMessages(ctx, room.ID, 0, 3)
		require.NoError(t, err)
		require.Len(t, msgs, 3)
		assert.Equal(t, "msg 2", msgs[0].Content)
		assert.Equal(t, "msg 4", msgs[2].Content)
		require.NotNil(t, msgs[0].Sender)

		older, err := repo.ListMessages(ctx, room.ID, msgs[0].ID, 3)
		require.NoError(t, err)
		require.Len(t, older, 2)
		assert.Equal(t, "msg 0", older[0].Content)
		assert.Equal(t, "msg 1", older[1].Content)

		_, err = repo.ListMessages(ctx, room.ID, 99999, 3)
		assert.True(t, models.IsNotFound(err))
	})

	t.Run("RemoveMember", func(t *testing.T) {
		require.NoError(t, repo.RemoveMember(ctx, room.ID, bob.ID))
		ok, err := repo.IsMember(ctx, room.ID, bob.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Delete and Restore", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, room.ID))
		active, err := repo.ListByCommunity(ctx, c.ID, false)
		require.NoError(t, err)
		assert.Empty(t, active)

		all, err := repo.ListByCommunity(ctx, c.ID, true)
		require.NoError(t, err)
		assert.Len(t, all, 1)

		require.NoError(t, repo.Restore(ctx, room.ID))
		got, err := repo.Get(ctx, room.ID)
		require.NoError(t, err)
		assert.True(t, got.Active)

		assert.True(t, models.IsNotFound(repo.Restore(ctx, 999)))
	})
}

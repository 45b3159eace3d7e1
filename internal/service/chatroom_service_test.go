package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"townsquare/internal/models"
	"townsquare/internal/repository"
	"townsquare/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatroomService_PostMessage_Validation(t *testing.T) {
	t.Parallel()
	svc := NewChatroomService(nil, nil, nil, nil)

	t.Run("Empty content", func(t *testing.T) {
		_, err := svc.PostMessage(context.Background(), 1, 1, "   \n\t")
		assertAppCode(t, err, models.CodeValidation)
	})

	t.Run("Content too long", func(t *testing.T) {
		_, err := svc.PostMessage(context.Background(), 1, 1, strings.Repeat("é", 2001))
		assertAppCode(t, err, models.CodeValidation)
	})
}

func TestChatroomService_FullFlow(t *testing.T) {
	t.Parallel()
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	var published []*models.Message
	chatrooms := repository.NewChatroomRepository(db)
	svc := NewChatroomService(chatrooms, repository.NewCommunityRepository(db), repository.NewUserRepository(db),
		func(_ context.Context, msg *models.Message) { published = append(published, msg) })
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	svc.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	owner := testutil.CreateUser(t, db, "owner", 40)
	bob := testutil.CreateUser(t, db, "bob", 25)
	outsider := testutil.CreateUser(t, db, "outsider", 25)
	c := testutil.CreateCommunity(t, db, owner, "Chess")
	testutil.AddCommunityMember(t, db, c.ID, bob.ID)
	room := testutil.CreateChatroom(t, db, c.ID, "openings")
	testutil.AddChatroomMember(t, db, room.ID, owner.ID)

	t.Run("outsider cannot join", func(t *testing.T) {
		err := svc.JoinChatroom(ctx, room.ID, outsider.ID)
		assertAppCode(t, err, models.CodeForbidden)
	})

	t.Run("non-member cannot post", func(t *testing.T) {
		_, err := svc.PostMessage(ctx, room.ID, bob.ID, "hello")
		assertAppCode(t, err, models.CodeForbidden)
	})

	require.NoError(t, svc.JoinChatroom(ctx, room.ID, bob.ID))
	require.NoError(t, svc.JoinChatroom(ctx, room.ID, bob.ID))

	first, err := svc.PostMessage(ctx, room.ID, bob.ID, "  e4  ")
	require.NoError(t, err)
	assert.Equal(t, "e4", first.Content)
	require.NotNil(t, first.Sender)
	assert.Equal(t, "bob", first.Sender.Username)

	_, err = svc.PostMessage(ctx, room.ID, owner.ID, "e5")
	require.NoError(t, err)
	require.Len(t, published, 2)

	detail, err := svc.GetChatroom(ctx, room.ID, bob.ID)
	require.NoError(t, err)
	require.Len(t, detail.Messages, 2)
	assert.Equal(t, "e4", detail.Messages[0].Content)
	assert.Equal(t, "e5", detail.Messages[1].Content)
	assert.Len(t, detail.Members, 2)

	list, err := svc.ListChatrooms(ctx, c.ID, bob.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].IsMember)

	t.Run("deleted room rejects messages", func(t *testing.T) {
		err := svc.DeleteChatroom(ctx, room.ID, bob.ID)
		assertAppCode(t, err, models.CodeForbidden)

		require.NoError(t, svc.DeleteChatroom(ctx, room.ID, owner.ID))
		_, err = svc.PostMessage(ctx, room.ID, bob.ID, "still here?")
		assertAppCode(t, err, models.CodeValidation)

		_, err = svc.GetChatroom(ctx, room.ID, bob.ID)
		assertAppCode(t, err, models.CodeNotFound)

		require.NoError(t, svc.RestoreChatroom(ctx, room.ID, owner.ID))
		_, err = svc.PostMessage(ctx, room.ID, bob.ID, "back")
		require.NoError(t, err)
	})

	t.Run("leaving removes access", func(t *testing.T) {
		var revokedUser uint
		var revokedRooms []uint
		svc.OnMembershipRevoked(func(_ context.Context, userID uint, chatroomIDs []uint) {
			revokedUser, revokedRooms = userID, chatroomIDs
		})
		require.NoError(t, svc.LeaveChatroom(ctx, room.ID, bob.ID))
		assert.Equal(t, bob.ID, revokedUser)
		assert.Equal(t, []uint{room.ID}, revokedRooms)

		_, err := svc.GetChatroom(ctx, room.ID, bob.ID)
		assertAppCode(t, err, models.CodeForbidden)
	})
}

func TestChatroomService_EditChatroom(t *testing.T) {
	t.Parallel()
	db := testutil.NewTestDB(t)
	svc := newServices(db)
	ctx := context.Background()

	owner := testutil.CreateUser(t, db, "owner", 40)
	c := testutil.CreateCommunity(t, db, owner, "Chess")
	room := testutil.CreateChatroom(t, db, c.ID, "openings")

	got, err := svc.chatroom.EditChatroom(ctx, room.ID, owner.ID, NameInput{Name: "endgames"})
	require.NoError(t, err)
	assert.Equal(t, "endgames", got.Name)

	_, err = svc.chatroom.EditChatroom(ctx, room.ID, owner.ID, NameInput{Name: ""})
	assertAppCode(t, err, models.CodeValidation)
}

func TestChatroomService_ListMessages_PagesFullHistory(t *testing.T) {
	t.Parallel()
	db := testutil.NewTestDB(t)
	svc := newServices(db)
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	svc.chatroom.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	owner := testutil.CreateUser(t, db, "owner", 40)
	outsider := testutil.CreateUser(t, db, "outsider", 30)
	c := testutil.CreateCommunity(t, db, owner, "Chatty")
	room := testutil.CreateChatroom(t, db, c.ID, "lobby")
	testutil.AddChatroomMember(t, db, room.ID, owner.ID)

	const total = 120
	for i := 0; i < total; i++ {
		_, err := svc.chatroom.PostMessage(ctx, room.ID, owner.ID, fmt.Sprintf("m%d", i))
		require.NoError(t, err)
	}

	var all []string
	var before uint
	pages := 0
	for {
		page, err := svc.chatroom.ListMessages(ctx, room.ID, owner.ID, before, 0)
		require.NoError(t, err)
		pages++
		contents := make([]string, 0, len(page.Messages))
		for _, m := range page.Messages {
			contents = append(contents, m.Content)
		}
		all = append(contents, all...)
		if !page.HasMore {
			break
		}
		before = page.Messages[0].ID
	}

	assert.Equal(t, 2, pages)
	require.Len(t, all, total)
	for i, content := range all {
		assert.Equal(t, fmt.Sprintf("m%d", i), content)
	}

	small, err := svc.chatroom.ListMessages(ctx, room.ID, owner.ID, 0, 5)
	require.NoError(t, err)
	require.Len(t, small.Messages, 5)
	assert.True(t, small.HasMore)
	assert.Equal(t, "m115", small.Messages[0].Content)

	_, err = svc.chatroom.ListMessages(ctx, room.ID, outsider.ID, 0, 10)
	assertAppCode(t, err, models.CodeForbidden)
}

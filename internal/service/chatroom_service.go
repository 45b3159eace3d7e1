package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"townsquare/internal/models"
	"townsquare/internal/observability"
	"townsquare/internal/repository"
	"townsquare/internal/validation"
)

const (
	maxMessageContentLen = 2000
	defaultHistoryLimit  = 100
)

// ChatroomService provides chatroom membership, history and moderation logic.
type ChatroomService struct {
	chatroomRepo  repository.ChatroomRepository
	communityRepo repository.CommunityRepository
	userRepo      repository.UserRepository
	onMessage     func(ctx context.Context, msg *models.Message)
	onRevoke      RevokeFunc
	now           func() time.Time
}

// RevokeFunc is told which chatrooms a user just lost membership of, so live
// subscriptions can be dropped.
type RevokeFunc func(ctx context.Context, userID uint, chatroomIDs []uint)

// MessagePage is one page of chatroom history, oldest first.
type MessagePage struct {
	Messages []models.Message `json:"messages"`
	HasMore  bool             `json:"has_more"`
}

// ChatroomDetail is a chatroom with its ordered history and member list.
type ChatroomDetail struct {
	models.Chatroom
	Messages []models.Message `json:"messages"`
}

// ChatroomSummary pairs a chatroom with the caller's membership.
type ChatroomSummary struct {
	models.Chatroom
	IsMember bool `json:"is_member"`
}

// NewChatroomService returns a new ChatroomService. onMessage, when set, is
// called after a message is persisted so it can be fanned out live.
func NewChatroomService(
	chatroomRepo repository.ChatroomRepository,
	communityRepo repository.CommunityRepository,
	userRepo repository.UserRepository,
	onMessage func(ctx context.Context, msg *models.Message),
) *ChatroomService {
	return &ChatroomService{
		chatroomRepo:  chatroomRepo,
		communityRepo: communityRepo,
		userRepo:      userRepo,
		onMessage:     onMessage,
		now:           time.Now,
	}
}

// OnMembershipRevoked registers fn to run after a user leaves a chatroom.
func (s *ChatroomService) OnMembershipRevoked(fn RevokeFunc) {
	s.onRevoke = fn
}

// CheckChatroomMember reports whether userID holds a membership row in the chatroom.
func (s *ChatroomService) CheckChatroomMember(ctx context.Context, chatroomID, userID uint) (bool, error) {
	return s.chatroomRepo.IsMember(ctx, chatroomID, userID)
}

// GetChatroom returns the chatroom with its members and message history. Members only.
func (s *ChatroomService) GetChatroom(ctx context.Context, id, callerID uint) (*ChatroomDetail, error) {
	room, err := s.chatroomRepo.GetWithMembers(ctx, id)
	if err != nil {
		return nil, err
	}
	if !room.Active {
		isCreator, err := s.communityRepo.IsCreator(ctx, room.CommunityID, callerID)
		if err != nil {
			return nil, err
		}
		if !isCreator {
			return nil, models.NewNotFoundError("Chatroom", id)
		}
	}
	if err := s.requireRoomMember(ctx, id, callerID); err != nil {
		return nil, err
	}

	messages, err := s.chatroomRepo.ListMessages(ctx, id, 0, defaultHistoryLimit)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []models.Message{}
	}
	return &ChatroomDetail{Chatroom: *room, Messages: messages}, nil
}

// ListMessages pages backwards through a chatroom's history. beforeID 0 starts
// at the newest message. Members only.
func (s *ChatroomService) ListMessages(ctx context.Context, id, callerID, beforeID uint, limit int) (*MessagePage, error) {
	if limit <= 0 || limit > defaultHistoryLimit {
		limit = defaultHistoryLimit
	}
	room, err := s.chatroomRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !room.Active {
		isCreator, err := s.communityRepo.IsCreator(ctx, room.CommunityID, callerID)
		if err != nil {
			return nil, err
		}
		if !isCreator {
			return nil, models.NewNotFoundError("Chatroom", id)
		}
	}
	if err := s.requireRoomMember(ctx, id, callerID); err != nil {
		return nil, err
	}

	messages, err := s.chatroomRepo.ListMessages(ctx, id, beforeID, limit+1)
	if err != nil {
		return nil, err
	}
	page := &MessagePage{Messages: messages}
	if len(messages) > limit {
		page.Messages = messages[1:]
		page.HasMore = true
	}
	if page.Messages == nil {
		page.Messages = []models.Message{}
	}
	return page, nil
}

// ListChatrooms lists a community's chatrooms for a member. The creator also sees deleted ones.
func (s *ChatroomService) ListChatrooms(ctx context.Context, communityID, callerID uint) ([]ChatroomSummary, error) {
	community, err := s.communityRepo.Get(ctx, communityID)
	if err != nil {
		return nil, err
	}
	if err := requireMember(ctx, s.communityRepo, communityID, callerID); err != nil {
		return nil, err
	}
	rooms, err := s.chatroomRepo.ListByCommunity(ctx, communityID, community.IsCreator(callerID))
	if err != nil {
		return nil, err
	}
	joined, err := s.chatroomRepo.MemberChatroomIDs(ctx, callerID)
	if err != nil {
		return nil, err
	}

	out := make([]ChatroomSummary, len(rooms))
	for i, room := range rooms {
		out[i] = ChatroomSummary{Chatroom: room, IsMember: joined[room.ID]}
	}
	return out, nil
}

// JoinChatroom adds a community member to an active chatroom. Joining twice is a no-op.
func (s *ChatroomService) JoinChatroom(ctx context.Context, id, userID uint) error {
	room, err := s.chatroomRepo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !room.Active {
		return models.NewValidationError("Chatroom is not active")
	}
	if err := requireMember(ctx, s.communityRepo, room.CommunityID, userID); err != nil {
		return err
	}
	_, err = s.chatroomRepo.AddMember(ctx, id, userID)
	return err
}

// LeaveChatroom removes the caller's membership.
func (s *ChatroomService) LeaveChatroom(ctx context.Context, id, userID uint) error {
	if _, err := s.chatroomRepo.Get(ctx, id); err != nil {
		return err
	}
	if err := s.chatroomRepo.RemoveMember(ctx, id, userID); err != nil {
		return err
	}
	if s.onRevoke != nil {
		s.onRevoke(ctx, userID, []uint{id})
	}
	return nil
}

// PostMessage persists a chat message from a chatroom member and hands it to onMessage.
func (s *ChatroomService) PostMessage(ctx context.Context, chatroomID, senderID uint, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, models.NewValidationError("Message content is required")
	}
	if utf8.RuneCountInString(content) > maxMessageContentLen {
		return nil, models.NewValidationError("Message content too long (max 2000 characters)")
	}

	room, err := s.chatroomRepo.Get(ctx, chatroomID)
	if err != nil {
		return nil, err
	}
	if !room.Active {
		return nil, models.NewValidationError("Chatroom is not active")
	}
	if err := s.requireRoomMember(ctx, chatroomID, senderID); err != nil {
		return nil, err
	}
	sender, err := activeUser(ctx, s.userRepo, senderID)
	if err != nil {
		return nil, err
	}

	msg := &models.Message{
		Content:    content,
		SentAt:     s.now().UTC(),
		SenderID:   senderID,
		ChatroomID: chatroomID,
	}
	if err := s.chatroomRepo.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}
	msg.Sender = sender
	observability.RecordChatMessage(chatroomID, "text")

	if s.onMessage != nil {
		s.onMessage(ctx, msg)
	}
	return msg, nil
}

// EditChatroom renames a chatroom. Community creator only.
func (s *ChatroomService) EditChatroom(ctx context.Context, id, callerID uint, in NameInput) (*models.Chatroom, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	room, err := s.requireRoomCreator(ctx, id, callerID)
	if err != nil {
		return nil, err
	}
	if !room.Active {
		return nil, models.NewValidationError("Chatroom is deleted; restore it first")
	}
	if err := s.chatroomRepo.Update(ctx, id, map[string]interface{}{"name": strings.TrimSpace(in.Name)}); err != nil {
		return nil, err
	}
	return s.chatroomRepo.Get(ctx, id)
}

// DeleteChatroom soft-deletes one chatroom. Community creator only.
func (s *ChatroomService) DeleteChatroom(ctx context.Context, id, callerID uint) error {
	room, err := s.requireRoomCreator(ctx, id, callerID)
	if err != nil {
		return err
	}
	if !room.Active {
		return models.NewValidationError("Chatroom is already deleted")
	}
	return s.chatroomRepo.Delete(ctx, id)
}

// RestoreChatroom reactivates a chatroom inside an active community.
func (s *ChatroomService) RestoreChatroom(ctx context.Context, id, callerID uint) error {
	room, err := s.requireRoomCreator(ctx, id, callerID)
	if err != nil {
		return err
	}
	if room.Active {
		return models.NewValidationError("Chatroom is not deleted")
	}
	community, err := s.communityRepo.Get(ctx, room.CommunityID)
	if err != nil {
		return err
	}
	if !community.Active {
		return models.NewValidationError("Restore the community before its chatrooms")
	}
	return s.chatroomRepo.Restore(ctx, id)
}

func (s *ChatroomService) requireRoomMember(ctx context.Context, chatroomID, userID uint) error {
	ok, err := s.chatroomRepo.IsMember(ctx, chatroomID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return denied(GateChatroomMember, "You are not a member of this chatroom")
	}
	return nil
}

func (s *ChatroomService) requireRoomCreator(ctx context.Context, id, callerID uint) (*models.Chatroom, error) {
	room, err := s.chatroomRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := requireCreator(ctx, s.communityRepo, room.CommunityID, callerID); err != nil {
		return nil, err
	}
	return room, nil
}

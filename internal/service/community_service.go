// Package service provides application business logic (communities, marketplaces, carts, chat, users).
package service

import (
	"context"
	"log/slog"
	"strings"

	"townsquare/internal/middleware"
	"townsquare/internal/models"
	"townsquare/internal/observability"
	"townsquare/internal/repository"
	"townsquare/internal/validation"
)

// CommunityService provides community lifecycle, membership and moderation logic.
type CommunityService struct {
	communityRepo   repository.CommunityRepository
	marketplaceRepo repository.MarketplaceRepository
	chatroomRepo    repository.ChatroomRepository
	userRepo        repository.UserRepository
	onRevoke        RevokeFunc
}

// CreateCommunityInput is the input for creating a community.
type CreateCommunityInput struct {
	Name          string `json:"name" validate:"notblank,max=120"`
	Description   string `json:"description" validate:"max=2000"`
	AgeRestricted bool   `json:"age_restricted"`
}

// EditCommunityInput carries the fields a creator may change. Nil fields are left alone.
type EditCommunityInput struct {
	Name          *string `json:"name" validate:"omitempty,notblank,max=120"`
	Description   *string `json:"description" validate:"omitempty,max=2000"`
	AgeRestricted *bool   `json:"age_restricted"`
}

// NameInput is the input for naming a marketplace or chatroom.
type NameInput struct {
	Name string `json:"name" validate:"notblank,max=120"`
}

// CommunitySummary pairs a community with the caller's relationship to it.
type CommunitySummary struct {
	models.Community
	IsMember  bool `json:"is_member"`
	IsCreator bool `json:"is_creator"`
}

// NewCommunityService returns a new CommunityService.
func NewCommunityService(
	communityRepo repository.CommunityRepository,
	marketplaceRepo repository.MarketplaceRepository,
	chatroomRepo repository.ChatroomRepository,
	userRepo repository.UserRepository,
) *CommunityService {
	return &CommunityService{
		communityRepo:   communityRepo,
		marketplaceRepo: marketplaceRepo,
		chatroomRepo:    chatroomRepo,
		userRepo:        userRepo,
	}
}

// OnMembershipRevoked registers fn to run with the chatrooms a user dropped
// out of by leaving a community.
func (s *CommunityService) OnMembershipRevoked(fn RevokeFunc) {
	s.onRevoke = fn
}

// CheckCommunityMember reports whether userID holds a membership row in the community.
func (s *CommunityService) CheckCommunityMember(ctx context.Context, communityID, userID uint) (bool, error) {
	return s.communityRepo.IsMember(ctx, communityID, userID)
}

// CheckCommunityCreator reports whether userID created the community.
func (s *CommunityService) CheckCommunityCreator(ctx context.Context, communityID, userID uint) (bool, error) {
	return s.communityRepo.IsCreator(ctx, communityID, userID)
}

// CreateCommunity creates a community; the creator becomes its first member.
func (s *CommunityService) CreateCommunity(ctx context.Context, creatorID uint, in CreateCommunityInput) (*models.Community, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if _, err := activeUser(ctx, s.userRepo, creatorID); err != nil {
		return nil, err
	}

	community := &models.Community{
		Name:          strings.TrimSpace(in.Name),
		Description:   strings.TrimSpace(in.Description),
		AgeRestricted: in.AgeRestricted,
		CreatorID:     creatorID,
		Active:        true,
	}
	if err := s.communityRepo.CreateWithCreator(ctx, community); err != nil {
		return nil, err
	}
	middleware.Logger.InfoContext(ctx, "community created", slog.Uint64("community_id", uint64(community.ID)))
	return community, nil
}

// GetCommunity returns the community with its marketplaces and chatrooms.
// Only the creator sees deactivated children or a deactivated community.
func (s *CommunityService) GetCommunity(ctx context.Context, id, callerID uint) (*CommunitySummary, error) {
	community, err := s.communityRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	isCreator := community.IsCreator(callerID)
	if !community.Active && !isCreator {
		return nil, models.NewNotFoundError("Community", id)
	}
	if err := requireMember(ctx, s.communityRepo, id, callerID); err != nil {
		return nil, err
	}

	detail, err := s.communityRepo.GetWithChildren(ctx, id, isCreator)
	if err != nil {
		return nil, err
	}
	return &CommunitySummary{Community: *detail, IsMember: true, IsCreator: isCreator}, nil
}

// ListCommunities lists active communities flagged with the caller's membership.
func (s *CommunityService) ListCommunities(ctx context.Context, callerID uint, limit, offset int) ([]CommunitySummary, error) {
	communities, err := s.communityRepo.ListActive(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	memberOf, err := s.communityRepo.MemberCommunityIDs(ctx, callerID)
	if err != nil {
		return nil, err
	}

	out := make([]CommunitySummary, len(communities))
	for i, c := range communities {
		out[i] = CommunitySummary{
			Community: c,
			IsMember:  memberOf[c.ID],
			IsCreator: c.IsCreator(callerID),
		}
	}
	return out, nil
}

// ListMyCommunities lists the active communities the caller belongs to.
func (s *CommunityService) ListMyCommunities(ctx context.Context, callerID uint) ([]models.Community, error) {
	return s.communityRepo.ListByMember(ctx, callerID)
}

// ListCreatedCommunities is the creator's manage view, deactivated communities included.
func (s *CommunityService) ListCreatedCommunities(ctx context.Context, callerID uint) ([]models.Community, error) {
	return s.communityRepo.ListByCreator(ctx, callerID)
}

// EditCommunity applies a creator's changes to an active community.
func (s *CommunityService) EditCommunity(ctx context.Context, id, callerID uint, in EditCommunityInput) (*models.Community, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	community, err := requireCreator(ctx, s.communityRepo, id, callerID)
	if err != nil {
		return nil, err
	}
	if !community.Active {
		return nil, models.NewValidationError("Community is deleted; restore it first")
	}

	fields := map[string]interface{}{}
	if in.Name != nil {
		fields["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		fields["description"] = strings.TrimSpace(*in.Description)
	}
	if in.AgeRestricted != nil {
		if *in.AgeRestricted && !community.AgeRestricted {
			minors, err := s.communityRepo.CountMembersUnderAge(ctx, id, models.MinRestrictedAge)
			if err != nil {
				return nil, err
			}
			if minors > 0 {
				return nil, models.NewValidationError("Cannot age-restrict a community that has members under 18")
			}
		}
		fields["age_restricted"] = *in.AgeRestricted
	}
	if len(fields) == 0 {
		return community, nil
	}
	if err := s.communityRepo.Update(ctx, id, fields); err != nil {
		return nil, err
	}
	return s.communityRepo.Get(ctx, id)
}

// DeleteCommunity soft-deletes the community and its marketplaces and chatrooms atomically.
func (s *CommunityService) DeleteCommunity(ctx context.Context, id, callerID uint) (result repository.CascadeResult, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "CommunityService", "DeleteCommunity",
		observability.IDAttr("community", id))
	defer func() { observability.EndSpan(span, err) }()

	community, err := requireCreator(ctx, s.communityRepo, id, callerID)
	if err != nil {
		return repository.CascadeResult{}, err
	}
	if !community.Active {
		return repository.CascadeResult{}, models.NewValidationError("Community is already deleted")
	}

	result, err = s.communityRepo.Deactivate(ctx, id)
	observability.RecordCascade("deactivate", err, result.Marketplaces, result.Chatrooms)
	observability.CascadeAttrs(span, result.Marketplaces, result.Chatrooms)
	if err != nil {
		return repository.CascadeResult{}, err
	}
	middleware.Logger.InfoContext(ctx, "community deactivated",
		slog.Uint64("community_id", uint64(id)),
		slog.Int64("marketplaces", result.Marketplaces),
		slog.Int64("chatrooms", result.Chatrooms),
	)
	return result, nil
}

// RestoreCommunity reverses DeleteCommunity, reactivating exactly the children it suspended.
func (s *CommunityService) RestoreCommunity(ctx context.Context, id, callerID uint) (result repository.CascadeResult, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "CommunityService", "RestoreCommunity",
		observability.IDAttr("community", id))
	defer func() { observability.EndSpan(span, err) }()

	community, err := requireCreator(ctx, s.communityRepo, id, callerID)
	if err != nil {
		return repository.CascadeResult{}, err
	}
	if community.Active {
		return repository.CascadeResult{}, models.NewValidationError("Community is not deleted")
	}

	result, err = s.communityRepo.Restore(ctx, id)
	observability.RecordCascade("restore", err, result.Marketplaces, result.Chatrooms)
	observability.CascadeAttrs(span, result.Marketplaces, result.Chatrooms)
	if err != nil {
		return repository.CascadeResult{}, err
	}
	middleware.Logger.InfoContext(ctx, "community restored",
		slog.Uint64("community_id", uint64(id)),
		slog.Int64("marketplaces", result.Marketplaces),
		slog.Int64("chatrooms", result.Chatrooms),
	)
	return result, nil
}

// JoinCommunity adds the caller as a member. Joining twice is a no-op.
func (s *CommunityService) JoinCommunity(ctx context.Context, id, userID uint) error {
	community, err := s.communityRepo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !community.Active {
		return models.NewValidationError("Community is not active")
	}
	user, err := activeUser(ctx, s.userRepo, userID)
	if err != nil {
		return err
	}
	if community.AgeRestricted && user.Age < models.MinRestrictedAge {
		return models.NewForbiddenError("This community is restricted to members aged 18 or older")
	}

	_, err = s.communityRepo.AddMember(ctx, id, userID)
	return err
}

// LeaveCommunity removes the caller's membership along with their chatroom memberships in it.
func (s *CommunityService) LeaveCommunity(ctx context.Context, id, userID uint) error {
	community, err := s.communityRepo.Get(ctx, id)
	if err != nil {
		return err
	}
	if community.IsCreator(userID) {
		return models.NewValidationError("The creator cannot leave their own community")
	}

	rooms, err := s.chatroomRepo.ListByCommunity(ctx, id, true)
	if err != nil {
		return err
	}
	joined, err := s.chatroomRepo.MemberChatroomIDs(ctx, userID)
	if err != nil {
		return err
	}
	var revoked []uint
	for _, room := range rooms {
		if joined[room.ID] {
			revoked = append(revoked, room.ID)
		}
	}

	if err := s.communityRepo.RemoveMember(ctx, id, userID); err != nil {
		return err
	}
	if s.onRevoke != nil && len(revoked) > 0 {
		s.onRevoke(ctx, userID, revoked)
	}
	return nil
}

// AddMarketplace creates a marketplace in an active community.
func (s *CommunityService) AddMarketplace(ctx context.Context, communityID, callerID uint, in NameInput) (*models.Marketplace, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if _, err := requireActiveCreator(ctx, s.communityRepo, communityID, callerID); err != nil {
		return nil, err
	}

	mp := &models.Marketplace{Name: strings.TrimSpace(in.Name), CommunityID: communityID, Active: true}
	if err := s.marketplaceRepo.Add(ctx, mp); err != nil {
		return nil, err
	}
	return mp, nil
}

// AddChatroom creates a chatroom in an active community and joins the creator to it.
func (s *CommunityService) AddChatroom(ctx context.Context, communityID, callerID uint, in NameInput) (*models.Chatroom, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if _, err := requireActiveCreator(ctx, s.communityRepo, communityID, callerID); err != nil {
		return nil, err
	}

	room := &models.Chatroom{Name: strings.TrimSpace(in.Name), CommunityID: communityID, Active: true}
	if err := s.chatroomRepo.Add(ctx, room); err != nil {
		return nil, err
	}
	if _, err := s.chatroomRepo.AddMember(ctx, room.ID, callerID); err != nil {
		return nil, err
	}
	return room, nil
}

package service

import (
	"context"

	"townsquare/internal/models"
	"townsquare/internal/observability"
	"townsquare/internal/repository"
)

// Gate names used for access-denied metrics.
const (
	GateCommunityMember  = "community_member"
	GateCommunityCreator = "community_creator"
	GateChatroomMember   = "chatroom_member"
	GateOwner            = "owner"
)

func denied(gate, message string) error {
	observability.AccessDenied.WithLabelValues(gate).Inc()
	return models.NewForbiddenError(message)
}

func requireMember(ctx context.Context, repo repository.CommunityRepository, communityID, userID uint) error {
	ok, err := repo.IsMember(ctx, communityID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return denied(GateCommunityMember, "You are not a member of this community")
	}
	return nil
}

// requireCreator loads the community and checks the caller created it.
func requireCreator(ctx context.Context, repo repository.CommunityRepository, communityID, userID uint) (*models.Community, error) {
	community, err := repo.Get(ctx, communityID)
	if err != nil {
		return nil, err
	}
	if !community.IsCreator(userID) {
		return nil, denied(GateCommunityCreator, "Only the community creator can do this")
	}
	return community, nil
}

func requireActiveCreator(ctx context.Context, repo repository.CommunityRepository, communityID, userID uint) (*models.Community, error) {
	community, err := requireCreator(ctx, repo, communityID, userID)
	if err != nil {
		return nil, err
	}
	if !community.Active {
		return nil, models.NewValidationError("Community is deleted; restore it first")
	}
	return community, nil
}

func activeUser(ctx context.Context, repo repository.UserRepository, userID uint) (*models.User, error) {
	user, err := repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.Active {
		return nil, models.NewForbiddenError("User account is deactivated")
	}
	return user, nil
}

package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ruimsramos/filehaven/entity"
	"github.com/ruimsramos/filehaven/infra"
	"github.com/ruimsramos/filehaven/repository"
	"gorm.io/gorm"
)

const groupMembersCacheTTL = 5 * time.Minute

// GroupService owns groups and their explicit membership rows. Member
// lists are cached in Redis and invalidated on every membership mutation.
type GroupService struct {
	repo   *repository.Repository
	cache  *infra.RedisClient
	logger *infra.LoggerClient
}

func NewGroupService(repo *repository.Repository, cache *infra.RedisClient, logger *infra.LoggerClient) *GroupService {
	return &GroupService{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

func groupMembersCacheKey(groupID int64) string {
	return fmt.Sprintf("group:%d:members", groupID)
}

// CreateGroup creates a group owned by the creator. Group names are unique
// per creator.
func (s *GroupService) CreateGroup(ctx context.Context, creatorID int64, name string) (*entity.Group, error) {
	if name == "" {
		return nil, ErrInvalidArgument.New("group name cannot be empty")
	}

	exists, err := s.repo.AccountRepo.ExistsByID(creatorID)
	if err != nil {
		return nil, ErrBackend.Wrap(err)
	}
	if !exists {
		return nil, ErrNotFound.New("user %d not found", creatorID)
	}

	taken, err := s.repo.GroupRepo.ExistsByCreatorIDAndName(creatorID, name)
	if err != nil {
		return nil, ErrBackend.Wrap(err)
	}
	if taken {
		return nil, ErrDuplicate.New("group %q already exists for user %d", name, creatorID)
	}

	group := &entity.Group{Name: name, CreatorID: creatorID}
	if err := s.repo.GroupRepo.Create(group); err != nil {
		return nil, ErrBackend.Wrap(err)
	}

	s.logger.InfoWithContextf(ctx, "[Group] Group %q created for user %d", name, creatorID)
	return group, nil
}

func (s *GroupService) UpdateGroupName(ctx context.Context, groupID int64, newName string) (*entity.Group, error) {
	if newName == "" {
		return nil, ErrInvalidArgument.New("group name cannot be empty")
	}

	group, err := s.findGroup(groupID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.GroupRepo.UpdateName(groupID, newName); err != nil {
		return nil, ErrBackend.Wrap(err)
	}
	group.Name = newName
	return group, nil
}

// AddUserToGroup adds an explicit member row. The creator's membership is
// implicit and never stored, so adding the creator is rejected.
func (s *GroupService) AddUserToGroup(ctx context.Context, userID, groupID int64) error {
	exists, err := s.repo.AccountRepo.ExistsByID(userID)
	if err != nil {
		return ErrBackend.Wrap(err)
	}
	if !exists {
		return ErrNotFound.New("user %d not found", userID)
	}

	group, err := s.findGroup(groupID)
	if err != nil {
		return err
	}

	member, err := s.repo.GroupMemberRepo.Exists(userID, groupID)
	if err != nil {
		return ErrBackend.Wrap(err)
	}
	if member {
		return ErrDuplicate.New("user %d is already a member of group %d", userID, groupID)
	}
	if group.CreatorID == userID {
		return ErrDuplicate.New("cannot add group owner %d to group %d", userID, groupID)
	}

	if err := s.repo.GroupMemberRepo.Create(&entity.GroupMember{UserID: userID, GroupID: groupID}); err != nil {
		return ErrBackend.Wrap(err)
	}

	s.invalidateMembers(ctx, groupID)
	s.logger.InfoWithContextf(ctx, "[Group] User %d added to group %d", userID, groupID)
	return nil
}

func (s *GroupService) RemoveUserFromGroup(ctx context.Context, userID, groupID int64) error {
	if _, err := s.findGroup(groupID); err != nil {
		return err
	}

	member, err := s.repo.GroupMemberRepo.Exists(userID, groupID)
	if err != nil {
		return ErrBackend.Wrap(err)
	}
	if !member {
		return ErrNotFound.New("user %d is not a member of group %d", userID, groupID)
	}

	if err := s.repo.GroupMemberRepo.DeleteByGroupIDAndUserID(groupID, userID); err != nil {
		return ErrBackend.Wrap(err)
	}

	s.invalidateMembers(ctx, groupID)
	s.logger.InfoWithContextf(ctx, "[Group] User %d removed from group %d", userID, groupID)
	return nil
}

// GetGroupMembers returns the explicit member rows only; callers needing
// everyone with access must union the creator themselves.
func (s *GroupService) GetGroupMembers(ctx context.Context, groupID int64) ([]entity.Account, error) {
	if _, err := s.findGroup(groupID); err != nil {
		return nil, err
	}

	if s.cache != nil {
		var cached []entity.Account
		if err := s.cache.Get(ctx, groupMembersCacheKey(groupID), &cached); err == nil {
			return cached, nil
		}
	}

	members, err := s.repo.GroupMemberRepo.FindMembersByGroupID(groupID)
	if err != nil {
		return nil, ErrBackend.Wrap(err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, groupMembersCacheKey(groupID), members, groupMembersCacheTTL); err != nil {
			s.logger.WarningWithContextf(ctx, "[Group] Failed to cache members of group %d: %v", groupID, err)
		}
	}
	return members, nil
}

func (s *GroupService) GetGroupsOfUser(ctx context.Context, userID int64) ([]entity.Group, error) {
	exists, err := s.repo.AccountRepo.ExistsByID(userID)
	if err != nil {
		return nil, ErrBackend.Wrap(err)
	}
	if !exists {
		return nil, ErrNotFound.New("user %d not found", userID)
	}

	groups, err := s.repo.GroupRepo.FindByCreatorID(userID)
	if err != nil {
		return nil, ErrBackend.Wrap(err)
	}
	return groups, nil
}

// RemoveGroup deletes the group and its membership rows. Grants already
// materialized from past group shares persist as plain user grants.
func (s *GroupService) RemoveGroup(ctx context.Context, groupID int64) error {
	if _, err := s.findGroup(groupID); err != nil {
		return err
	}

	err := s.repo.Transaction(func(tx *repository.Repository) error {
		if err := tx.GroupMemberRepo.DeleteByGroupID(groupID); err != nil {
			return err
		}
		return tx.GroupRepo.Delete(groupID)
	})
	if err != nil {
		return ErrBackend.Wrap(err)
	}

	s.invalidateMembers(ctx, groupID)
	s.logger.InfoWithContextf(ctx, "[Group] Group %d removed", groupID)
	return nil
}

func (s *GroupService) findGroup(groupID int64) (*entity.Group, error) {
	group, err := s.repo.GroupRepo.FindByID(groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound.New("group %d not found", groupID)
		}
		return nil, ErrBackend.Wrap(err)
	}
	return group, nil
}

func (s *GroupService) invalidateMembers(ctx context.Context, groupID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, groupMembersCacheKey(groupID)); err != nil {
		s.logger.WarningWithContextf(ctx, "[Group] Failed to invalidate member cache of group %d: %v", groupID, err)
	}
}

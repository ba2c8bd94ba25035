package repository

import (
	"github.com/ruimsramos/filehaven/entity"
	"gorm.io/gorm"
)

type GroupMemberRepository struct {
	db *gorm.DB
}

func NewGroupMemberRepository(db *gorm.DB) *GroupMemberRepository {
	return &GroupMemberRepository{db: db}
}

func (r *GroupMemberRepository) Create(member *entity.GroupMember) error {
	return r.db.Create(member).Error
}

func (r *GroupMemberRepository) Exists(userID, groupID int64) (bool, error) {
	var count int64
	err := r.db.Model(&entity.GroupMember{}).
		Where("user_id = ? AND group_id = ?", userID, groupID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindMembersByGroupID resolves the explicit member rows to accounts. The
// group's creator never appears here.
func (r *GroupMemberRepository) FindMembersByGroupID(groupID int64) ([]entity.Account, error) {
	var accounts []entity.Account
	err := r.db.Model(&entity.Account{}).
		Joins("JOIN group_members ON group_members.user_id = accounts.id").
		Where("group_members.group_id = ?", groupID).
		Find(&accounts).Error
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *GroupMemberRepository) DeleteByGroupIDAndUserID(groupID, userID int64) error {
	return r.db.Delete(&entity.GroupMember{}, "group_id = ? AND user_id = ?", groupID, userID).Error
}

func (r *GroupMemberRepository) DeleteByGroupID(groupID int64) error {
	return r.db.Delete(&entity.GroupMember{}, "group_id = ?", groupID).Error
}

func (r *GroupMemberRepository) DeleteByGroupIDs(groupIDs []int64) error {
	if len(groupIDs) == 0 {
		return nil
	}
	return r.db.Delete(&entity.GroupMember{}, "group_id IN ?", groupIDs).Error
}

func (r *GroupMemberRepository) DeleteByUserID(userID int64) error {
	return r.db.Delete(&entity.GroupMember{}, "user_id = ?", userID).Error
}

package repository

import (
	"github.com/ruimsramos/filehaven/entity"
	"gorm.io/gorm"
)

type GroupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

func (r *GroupRepository) Create(group *entity.Group) error {
	return r.db.Create(group).Error
}

func (r *GroupRepository) FindByID(id int64) (*entity.Group, error) {
	var group entity.Group
	err := r.db.Where("id = ?", id).First(&group).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *GroupRepository) FindByCreatorID(creatorID int64) ([]entity.Group, error) {
	var groups []entity.Group
	err := r.db.Where("creator_id = ?", creatorID).Find(&groups).Error
	if err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *GroupRepository) ExistsByCreatorIDAndName(creatorID int64, name string) (bool, error) {
	var count int64
	err := r.db.Model(&entity.Group{}).
		Where("creator_id = ? AND name = ?", creatorID, name).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GroupRepository) UpdateName(id int64, name string) error {
	return r.db.Model(&entity.Group{}).Where("id = ?", id).Update("name", name).Error
}

func (r *GroupRepository) Delete(id int64) error {
	return r.db.Delete(&entity.Group{}, "id = ?", id).Error
}

func (r *GroupRepository) DeleteByCreatorID(creatorID int64) ([]entity.Group, error) {
	groups, err := r.FindByCreatorID(creatorID)
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, nil
	}
	err = r.db.Delete(&entity.Group{}, "creator_id = ?", creatorID).Error
	if err != nil {
		return nil, err
	}
	return groups, nil
}

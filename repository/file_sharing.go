package repository

import (
	"github.com/ruimsramos/filehaven/entity"
	"gorm.io/gorm"
)

type FileSharingRepository struct {
	db *gorm.DB
}

func NewFileSharingRepository(db *gorm.DB) *FileSharingRepository {
	return &FileSharingRepository{db: db}
}

func (r *FileSharingRepository) Create(sharing *entity.FileSharing) error {
	return r.db.Create(sharing).Error
}

func (r *FileSharingRepository) FindByID(id int64) (*entity.FileSharing, error) {
	var sharing entity.FileSharing
	err := r.db.Where("id = ?", id).First(&sharing).Error
	if err != nil {
		return nil, err
	}
	return &sharing, nil
}

// ExistsByUsersAndFilename checks for a grant between the unordered pair of
// users for the given filename. A grant A→B counts the same as B→A.
func (r *FileSharingRepository) ExistsByUsersAndFilename(sharedByUserID, sharedToUserID int64, filename string) (bool, error) {
	var count int64
	err := r.db.Model(&entity.FileSharing{}).
		Where("((shared_by_user_id = ? AND shared_to_user_id = ?) OR (shared_by_user_id = ? AND shared_to_user_id = ?)) AND filename = ?",
			sharedByUserID, sharedToUserID, sharedToUserID, sharedByUserID, filename).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *FileSharingRepository) FindBySharedByUserID(sharedByUserID int64) ([]entity.FileSharing, error) {
	var sharings []entity.FileSharing
	err := r.db.Where("shared_by_user_id = ?", sharedByUserID).Find(&sharings).Error
	if err != nil {
		return nil, err
	}
	return sharings, nil
}

func (r *FileSharingRepository) FindBySharedToUserID(sharedToUserID int64) ([]entity.FileSharing, error) {
	var sharings []entity.FileSharing
	err := r.db.Where("shared_to_user_id = ?", sharedToUserID).Find(&sharings).Error
	if err != nil {
		return nil, err
	}
	return sharings, nil
}

func (r *FileSharingRepository) FindBySharedByUserIDAndFilename(sharedByUserID int64, filename string) ([]entity.FileSharing, error) {
	var sharings []entity.FileSharing
	err := r.db.Where("shared_by_user_id = ? AND filename = ?", sharedByUserID, filename).Find(&sharings).Error
	if err != nil {
		return nil, err
	}
	return sharings, nil
}

// UpdateFilenameForOwner rewrites every grant the owner holds against the
// old key. Called after a rename so grants keep pointing at live objects.
func (r *FileSharingRepository) UpdateFilenameForOwner(sharedByUserID int64, oldFilename, newFilename string) error {
	return r.db.Model(&entity.FileSharing{}).
		Where("shared_by_user_id = ? AND filename = ?", sharedByUserID, oldFilename).
		Update("filename", newFilename).Error
}

func (r *FileSharingRepository) Delete(id int64) error {
	return r.db.Delete(&entity.FileSharing{}, "id = ?", id).Error
}

// DeleteByUserID removes every grant the account participates in, as
// grantor or recipient.
func (r *FileSharingRepository) DeleteByUserID(userID int64) error {
	return r.db.Delete(&entity.FileSharing{}, "shared_by_user_id = ? OR shared_to_user_id = ?", userID, userID).Error
}

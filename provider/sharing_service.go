package provider

import (
	"context"
	"errors"

	"github.com/ruimsramos/filehaven/entity"
	"github.com/ruimsramos/filehaven/infra"
	"github.com/ruimsramos/filehaven/repository"
	"gorm.io/gorm"
)

// SharingService owns the grant ledger. It is the only writer of
// FileSharing rows; the pairwise existence check and the insert always run
// inside one transaction.
type SharingService struct {
	repo    *repository.Repository
	storage *StorageService
	logger  *infra.LoggerClient
}

func NewSharingService(repo *repository.Repository, storage *StorageService, logger *infra.LoggerClient) *SharingService {
	return &SharingService{
		repo:    repo,
		storage: storage,
		logger:  logger,
	}
}

// ShareFileToUser grants the target account read access to the owner's
// named object. At most one grant may exist per unordered user pair and
// filename, in either direction.
func (s *SharingService) ShareFileToUser(ctx context.Context, ownerID, targetID int64, filename string) (*entity.FileSharing, error) {
	if filename == "" {
		return nil, ErrInvalidArgument.New("filename cannot be empty")
	}

	if err := s.requireAccount(ownerID); err != nil {
		return nil, err
	}
	if err := s.requireAccount(targetID); err != nil {
		return nil, err
	}

	sharing := &entity.FileSharing{
		SharedByUserID: ownerID,
		SharedToUserID: targetID,
		Filename:       filename,
	}

	err := s.repo.Transaction(func(tx *repository.Repository) error {
		exists, err := tx.FileSharingRepo.ExistsByUsersAndFilename(ownerID, targetID, filename)
		if err != nil {
			return ErrBackend.Wrap(err)
		}
		if exists {
			return ErrDuplicate.New("file %q is already shared between users %d and %d", filename, ownerID, targetID)
		}
		return tx.FileSharingRepo.Create(sharing)
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoWithContextf(ctx, "[Sharing] File %q shared from user %d to user %d", filename, ownerID, targetID)
	return sharing, nil
}

// ShareFileToGroup materializes one grant per current explicit member.
// Later joiners get nothing from past shares. Members already holding a
// grant for the filename are skipped, so fan-out never produces duplicate
// rows and re-sharing to the same group is idempotent.
func (s *SharingService) ShareFileToGroup(ctx context.Context, ownerID, groupID int64, filename string) ([]entity.FileSharing, error) {
	if filename == "" {
		return nil, ErrInvalidArgument.New("filename cannot be empty")
	}

	if _, err := s.repo.GroupRepo.FindByID(groupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound.New("group %d not found", groupID)
		}
		return nil, ErrBackend.Wrap(err)
	}

	members, err := s.repo.GroupMemberRepo.FindMembersByGroupID(groupID)
	if err != nil {
		return nil, ErrBackend.Wrap(err)
	}
	if len(members) == 0 {
		return nil, ErrNotFound.New("group %d has no members", groupID)
	}

	var sharings []entity.FileSharing
	err = s.repo.Transaction(func(tx *repository.Repository) error {
		for _, member := range members {
			exists, err := tx.FileSharingRepo.ExistsByUsersAndFilename(ownerID, member.ID, filename)
			if err != nil {
				return ErrBackend.Wrap(err)
			}
			if exists {
				continue
			}
			sharing := entity.FileSharing{
				SharedByUserID: ownerID,
				SharedToUserID: member.ID,
				Filename:       filename,
			}
			if err := tx.FileSharingRepo.Create(&sharing); err != nil {
				return ErrBackend.Wrap(err)
			}
			sharings = append(sharings, sharing)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoWithContextf(ctx, "[Sharing] File %q shared from user %d to group %d (%d grants)", filename, ownerID, groupID, len(sharings))
	return sharings, nil
}

// UnshareFile deletes a single grant.
func (s *SharingService) UnshareFile(ctx context.Context, sharingID int64) error {
	if _, err := s.repo.FileSharingRepo.FindByID(sharingID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound.New("file sharing entry %d does not exist", sharingID)
		}
		return ErrBackend.Wrap(err)
	}
	if err := s.repo.FileSharingRepo.Delete(sharingID); err != nil {
		return ErrBackend.Wrap(err)
	}
	s.logger.InfoWithContextf(ctx, "[Sharing] File sharing entry %d deleted", sharingID)
	return nil
}

// GetFilesSharedByUser joins the owner's outbound grants with the live
// objects they name. A grant whose object has been deleted or renamed away
// yields no row.
func (s *SharingService) GetFilesSharedByUser(ctx context.Context, ownerID int64) ([]entity.SharedFile, error) {
	if err := s.requireAccount(ownerID); err != nil {
		return nil, err
	}

	sharings, err := s.repo.FileSharingRepo.FindBySharedByUserID(ownerID)
	if err != nil {
		return nil, ErrBackend.Wrap(err)
	}

	results := make([]entity.SharedFile, 0, len(sharings))
	for _, sharing := range sharings {
		if target, err := s.repo.AccountRepo.FindByID(sharing.SharedToUserID); err == nil {
			sharing.SharedToUsername = target.Username
		}

		objects, err := s.storage.ListObjects(ctx, sharing.SharedByUserID, sharing.Filename, "")
		if err != nil {
			return nil, err
		}
		for _, object := range objects {
			results = append(results, entity.SharedFile{Sharing: sharing, Object: object})
		}
	}
	return results, nil
}

// GetFilesSharedToUser is the recipient-side view of the ledger.
func (s *SharingService) GetFilesSharedToUser(ctx context.Context, targetID int64) ([]entity.SharedFile, error) {
	if err := s.requireAccount(targetID); err != nil {
		return nil, err
	}

	sharings, err := s.repo.FileSharingRepo.FindBySharedToUserID(targetID)
	if err != nil {
		return nil, ErrBackend.Wrap(err)
	}

	results := make([]entity.SharedFile, 0, len(sharings))
	for _, sharing := range sharings {
		if owner, err := s.repo.AccountRepo.FindByID(sharing.SharedByUserID); err == nil {
			sharing.SharedByUsername = owner.Username
		}

		objects, err := s.storage.ListObjects(ctx, sharing.SharedByUserID, sharing.Filename, "")
		if err != nil {
			return nil, err
		}
		for _, object := range objects {
			results = append(results, entity.SharedFile{Sharing: sharing, Object: object})
		}
	}
	return results, nil
}

// IsFileSharedWithUser reports whether the owner granted the target access
// to the filename. True means access is permitted.
func (s *SharingService) IsFileSharedWithUser(ctx context.Context, ownerID, targetID int64, filename string) (bool, error) {
	sharings, err := s.repo.FileSharingRepo.FindBySharedByUserID(ownerID)
	if err != nil {
		return false, ErrBackend.Wrap(err)
	}
	for _, sharing := range sharings {
		if sharing.Filename == filename && sharing.SharedToUserID == targetID {
			return true, nil
		}
	}
	return false, nil
}

func (s *SharingService) requireAccount(id int64) error {
	exists, err := s.repo.AccountRepo.ExistsByID(id)
	if err != nil {
		return ErrBackend.Wrap(err)
	}
	if !exists {
		return ErrNotFound.New("user %d not found", id)
	}
	return nil
}

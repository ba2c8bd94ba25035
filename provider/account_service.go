package provider

import (
	"context"
	"errors"

	"github.com/ruimsramos/filehaven/entity"
	"github.com/ruimsramos/filehaven/infra"
	"github.com/ruimsramos/filehaven/repository"
	"github.com/ruimsramos/filehaven/utils"
	"gorm.io/gorm"
)

// DeprovisionPublisher hands bucket teardown to the queue consumer.
// *produce.AccountService satisfies it.
type DeprovisionPublisher interface {
	PublishDeprovisionAccount(ctx context.Context, userID int64, bucketName string) error
}

// AccountService owns the account rows and the bucket lifecycle hook:
// registration provisions the account's bucket, deletion cascades grant
// and group cleanup and hands the bucket drain to the consumer.
type AccountService struct {
	repo      *repository.Repository
	storage   *StorageService
	publisher DeprovisionPublisher
	logger    *infra.LoggerClient
}

func NewAccountService(repo *repository.Repository, storage *StorageService, publisher DeprovisionPublisher, logger *infra.LoggerClient) *AccountService {
	return &AccountService{
		repo:      repo,
		storage:   storage,
		publisher: publisher,
		logger:    logger,
	}
}

// Register creates an account and provisions its bucket. If provisioning
// fails the account row is rolled back so signup can be retried cleanly.
func (s *AccountService) Register(ctx context.Context, username, password string) (*entity.Account, error) {
	if username == "" || password == "" {
		return nil, ErrInvalidArgument.New("username and password cannot be empty")
	}

	if _, err := s.repo.AccountRepo.FindByUsername(username); err == nil {
		return nil, ErrDuplicate.New("user %q already exists", username)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBackend.Wrap(err)
	}

	hashed, err := utils.EncodePassword(password)
	if err != nil {
		return nil, ErrBackend.Wrap(err)
	}

	account := &entity.Account{Username: username, Password: hashed}
	if err := s.repo.AccountRepo.Create(account); err != nil {
		return nil, ErrBackend.Wrap(err)
	}

	if err := s.storage.ProvisionAccountBucket(ctx, account.ID); err != nil {
		_ = s.repo.AccountRepo.Delete(account.ID)
		return nil, err
	}

	s.logger.InfoWithContextf(ctx, "[Account] User %q registered with id %d", username, account.ID)
	return account, nil
}

// Authenticate verifies the password and returns the account.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (*entity.Account, error) {
	account, err := s.repo.AccountRepo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound.New("user %q not found", username)
		}
		return nil, ErrBackend.Wrap(err)
	}

	if !utils.VerifyPassword(password, account.Password) {
		return nil, ErrInvalidArgument.New("incorrect password for user %q", username)
	}
	return account, nil
}

func (s *AccountService) FindByID(id int64) (*entity.Account, error) {
	account, err := s.repo.AccountRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound.New("user %d not found", id)
		}
		return nil, ErrBackend.Wrap(err)
	}
	return account, nil
}

func (s *AccountService) FindAll() ([]entity.Account, error) {
	accounts, err := s.repo.AccountRepo.FindAll()
	if err != nil {
		return nil, ErrBackend.Wrap(err)
	}
	return accounts, nil
}

func (s *AccountService) SearchByUsernamePrefix(prefix string) ([]entity.Account, error) {
	if prefix == "" {
		return nil, ErrInvalidArgument.New("prefix cannot be empty")
	}
	accounts, err := s.repo.AccountRepo.FindByUsernamePrefix(prefix)
	if err != nil {
		return nil, ErrBackend.Wrap(err)
	}
	return accounts, nil
}

func (s *AccountService) UpdatePassword(ctx context.Context, userID int64, password string) error {
	if password == "" {
		return ErrInvalidArgument.New("password cannot be empty")
	}
	if _, err := s.FindByID(userID); err != nil {
		return err
	}
	hashed, err := utils.EncodePassword(password)
	if err != nil {
		return ErrBackend.Wrap(err)
	}
	if err := s.repo.AccountRepo.UpdatePassword(userID, hashed); err != nil {
		return ErrBackend.Wrap(err)
	}
	s.logger.InfoWithContextf(ctx, "[Account] Password updated for user %d", userID)
	return nil
}

// RemoveAccount deletes the account and everything hanging off it: grants
// in both directions, owned groups and their memberships, the account's
// own membership rows, and finally the bucket. The bucket drain goes
// through the queue when a publisher is wired, otherwise it runs inline.
func (s *AccountService) RemoveAccount(ctx context.Context, userID int64) error {
	if _, err := s.FindByID(userID); err != nil {
		return err
	}

	err := s.repo.Transaction(func(tx *repository.Repository) error {
		if err := tx.FileSharingRepo.DeleteByUserID(userID); err != nil {
			return err
		}
		groups, err := tx.GroupRepo.DeleteByCreatorID(userID)
		if err != nil {
			return err
		}
		groupIDs := make([]int64, 0, len(groups))
		for _, group := range groups {
			groupIDs = append(groupIDs, group.ID)
		}
		if err := tx.GroupMemberRepo.DeleteByGroupIDs(groupIDs); err != nil {
			return err
		}
		if err := tx.GroupMemberRepo.DeleteByUserID(userID); err != nil {
			return err
		}
		return tx.AccountRepo.Delete(userID)
	})
	if err != nil {
		return ErrBackend.Wrap(err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishDeprovisionAccount(ctx, userID, s.storage.BucketName(userID)); err != nil {
			s.logger.ErrorWithContextf(ctx, err, "[Account] Failed to enqueue bucket deprovision for user %d, draining inline", userID)
			return s.storage.DeprovisionAccountBucket(ctx, userID)
		}
	} else {
		if err := s.storage.DeprovisionAccountBucket(ctx, userID); err != nil {
			return err
		}
	}

	s.logger.InfoWithContextf(ctx, "[Account] User %d removed", userID)
	return nil
}

package repository

import (
	"github.com/ruimsramos/filehaven/infra"
	"gorm.io/gorm"
)

type Repository struct {
	AccountRepo     *AccountRepository
	GroupRepo       *GroupRepository
	GroupMemberRepo *GroupMemberRepository
	FileSharingRepo *FileSharingRepository

	db *gorm.DB
}

var repository *Repository

func InitRepository(infra *infra.Infra) *Repository {
	repository = NewRepository(infra.Postgres.DB)
	return repository
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		AccountRepo:     NewAccountRepository(db),
		GroupRepo:       NewGroupRepository(db),
		GroupMemberRepo: NewGroupMemberRepository(db),
		FileSharingRepo: NewFileSharingRepository(db),
		db:              db,
	}
}

func GetRepository() *Repository {
	if repository == nil {
		panic("repository not initialized")
	}
	return repository
}

// Transaction runs fn against a repository view bound to a single
// transaction; fn returning an error rolls everything back.
func (r *Repository) Transaction(fn func(tx *Repository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

package provider

import (
	"github.com/ruimsramos/filehaven/config"
	"github.com/ruimsramos/filehaven/infra"
	"github.com/ruimsramos/filehaven/repository"
)

type Provider struct {
	Storage  *StorageService
	Sharing  *SharingService
	Groups   *GroupService
	Accounts *AccountService
}

func InitProvider(cfg *config.Config, infra *infra.Infra, repo *repository.Repository) *Provider {
	storage := NewStorageService(infra.Minio, repo, infra.Logger, cfg.EnvConfig)
	sharing := NewSharingService(repo, storage, infra.Logger)
	groups := NewGroupService(repo, infra.Redis, infra.Logger)
	accounts := NewAccountService(repo, storage, infra.Produce.AccountService, infra.Logger)

	return &Provider{
		Storage:  storage,
		Sharing:  sharing,
		Groups:   groups,
		Accounts: accounts,
	}
}

package repository

import (
	"github.com/ruimsramos/filehaven/entity"
	"gorm.io/gorm"
)

type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(account *entity.Account) error {
	return r.db.Create(account).Error
}

func (r *AccountRepository) FindByID(id int64) (*entity.Account, error) {
	var account entity.Account
	err := r.db.Where("id = ?", id).First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepository) FindByUsername(username string) (*entity.Account, error) {
	var account entity.Account
	err := r.db.Where("username = ?", username).First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepository) FindByUsernamePrefix(prefix string) ([]entity.Account, error) {
	var accounts []entity.Account
	err := r.db.Where("username LIKE ?", prefix+"%").Find(&accounts).Error
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *AccountRepository) FindAll() ([]entity.Account, error) {
	var accounts []entity.Account
	err := r.db.Find(&accounts).Error
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *AccountRepository) ExistsByID(id int64) (bool, error) {
	var count int64
	err := r.db.Model(&entity.Account{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *AccountRepository) UpdatePassword(id int64, hashedPassword string) error {
	return r.db.Model(&entity.Account{}).Where("id = ?", id).Update("password", hashedPassword).Error
}

func (r *AccountRepository) Delete(id int64) error {
	return r.db.Delete(&entity.Account{}, "id = ?", id).Error
}

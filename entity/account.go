package entity

type Account struct {
	ID       int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Username string `json:"username" binding:"required,min=3,max=64" gorm:"uniqueIndex;size:64;not null"`
	Password string `json:"-" gorm:"size:128;not null"`
}

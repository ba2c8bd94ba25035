package entity

// FileSharing is a grant: the grantor allows the recipient to read the
// named object in the grantor's bucket. At most one grant may exist per
// unordered user pair and filename.
type FileSharing struct {
	ID             int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	SharedByUserID int64  `json:"shared_by_user_id" gorm:"not null;index"`
	SharedToUserID int64  `json:"shared_to_user_id" gorm:"not null;index"`
	Filename       string `json:"filename" gorm:"size:1024;not null"`

	SharedByUsername string `json:"shared_by_username,omitempty" gorm:"-"`
	SharedToUsername string `json:"shared_to_username,omitempty" gorm:"-"`
}

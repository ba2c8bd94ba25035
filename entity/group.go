package entity

// Group is owned by its creator. The creator is never stored as a member
// row; explicit rows exist for invited accounts only.
type Group struct {
	ID        int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string `json:"name" binding:"required,min=1,max=128" gorm:"size:128;not null;uniqueIndex:idx_groups_creator_name"`
	CreatorID int64  `json:"creator_id" gorm:"not null;index;uniqueIndex:idx_groups_creator_name"`
}

type GroupMember struct {
	UserID  int64 `json:"user_id" gorm:"primaryKey;autoIncrement:false"`
	GroupID int64 `json:"group_id" gorm:"primaryKey;autoIncrement:false;index"`
}

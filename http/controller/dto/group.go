package dto

type CreateGroupRequestDTO struct {
	Name string `json:"name" binding:"required,min=1,max=255"`
}

type UpdateGroupRequestDTO struct {
	Name string `json:"name" binding:"required,min=1,max=255"`
}

type GroupMemberRequestDTO struct {
	UserID int64 `json:"user_id" binding:"required"`
}

package dto

type ShareToUserRequestDTO struct {
	TargetUserID int64  `json:"target_user_id" binding:"required"`
	Filename     string `json:"filename" binding:"required,min=1,max=1024"`
}

type ShareToGroupRequestDTO struct {
	GroupID  int64  `json:"group_id" binding:"required"`
	Filename string `json:"filename" binding:"required,min=1,max=1024"`
}

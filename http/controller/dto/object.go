package dto

type CreateFolderRequestDTO struct {
	Name string `json:"name" binding:"required,min=1,max=1024"`
}

type RenameObjectRequestDTO struct {
	OldKey string `json:"old_key" binding:"required,min=1,max=1024"`
	NewKey string `json:"new_key" binding:"required,min=1,max=1024"`
}

type PresignUploadRequestDTO struct {
	Key         string `json:"key" binding:"required,min=1,max=1024"`
	ContentType string `json:"content_type"`
}

type StartMultipartRequestDTO struct {
	Key         string `json:"key" binding:"required,min=1,max=1024"`
	ContentType string `json:"content_type"`
}

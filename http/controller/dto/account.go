package dto

type RegisterRequestDTO struct {
	Username string `json:"username" binding:"required,min=3,max=255"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

type LoginRequestDTO struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UpdatePasswordRequestDTO struct {
	Password string `json:"password" binding:"required,min=8,max=128"`
}

type AccountResponseDTO struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type LoginResponseDTO struct {
	Token   string             `json:"token"`
	Account AccountResponseDTO `json:"account"`
}

package controller

import (
	"github.com/gin-gonic/gin"
	"github.com/ruimsramos/filehaven/entity"
	"github.com/ruimsramos/filehaven/http/controller/dto"
	"github.com/ruimsramos/filehaven/provider"
	"github.com/ruimsramos/filehaven/utils"
)

func toAccountDTO(account *entity.Account) dto.AccountResponseDTO {
	return dto.AccountResponseDTO{
		ID:       account.ID,
		Username: account.Username,
	}
}

func (ctrl *Controller) Register(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.RegisterRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[Auth] Invalid register payload: %v", err)
		utils.JSON400(c, "Invalid request body: "+err.Error())
		return
	}

	account, err := ctrl.Provider.Accounts.Register(ctx, req.Username, req.Password)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Auth] Failed to register account '%s': %v", req.Username, err)
		respondServiceError(c, err)
		return
	}

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Auth] Registered account '%s' with id %d", account.Username, account.ID)
	utils.JSON201(c, toAccountDTO(account))
}

func (ctrl *Controller) Login(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.LoginRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSON400(c, "Invalid request body: "+err.Error())
		return
	}

	account, err := ctrl.Provider.Accounts.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		if provider.ErrNotFound.Has(err) || provider.ErrInvalidArgument.Has(err) {
			ctrl.Infra.Logger.WarningWithContextf(ctx, "[Auth] Failed login attempt for '%s'", req.Username)
			utils.JSON401(c, "Invalid username or password")
			return
		}
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Auth] Login failed for '%s': %v", req.Username, err)
		utils.JSON500(c, "Internal server error")
		return
	}

	token, err := utils.MintToken(account.ID, account.Username, ctrl.Config.EnvConfig)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Auth] Failed to mint token for '%s': %v", account.Username, err)
		utils.JSON500(c, "Internal server error")
		return
	}

	utils.JSON200(c, dto.LoginResponseDTO{
		Token:   token,
		Account: toAccountDTO(account),
	})
}

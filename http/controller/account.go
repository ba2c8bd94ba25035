package controller

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ruimsramos/filehaven/http/controller/dto"
	"github.com/ruimsramos/filehaven/provider"
	"github.com/ruimsramos/filehaven/utils"
)

// parsePathID reads a numeric path parameter and rejects garbage with a 400.
func parsePathID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		utils.JSON400(c, "Invalid "+name+" parameter")
		return 0, false
	}
	return id, true
}

func (ctrl *Controller) ListAccounts(c *gin.Context) {
	ctx := c.Request.Context()

	accounts, err := ctrl.Provider.Accounts.FindAll()
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Account] Failed to list accounts: %v", err)
		respondServiceError(c, err)
		return
	}

	resp := make([]dto.AccountResponseDTO, 0, len(accounts))
	for i := range accounts {
		resp = append(resp, toAccountDTO(&accounts[i]))
	}
	utils.JSON200(c, resp)
}

func (ctrl *Controller) GetAccountByID(c *gin.Context) {
	ctx := c.Request.Context()

	accountID, ok := parsePathID(c, "id")
	if !ok {
		return
	}

	account, err := ctrl.Provider.Accounts.FindByID(accountID)
	if err != nil {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[Account] Lookup failed for id %d: %v", accountID, err)
		respondServiceError(c, err)
		return
	}

	utils.JSON200(c, toAccountDTO(account))
}

func (ctrl *Controller) SearchAccounts(c *gin.Context) {
	ctx := c.Request.Context()

	prefix := c.Query("prefix")
	if prefix == "" {
		utils.JSON400(c, "prefix query parameter is required")
		return
	}

	accounts, err := ctrl.Provider.Accounts.SearchByUsernamePrefix(prefix)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Account] Search failed for prefix '%s': %v", prefix, err)
		respondServiceError(c, err)
		return
	}

	resp := make([]dto.AccountResponseDTO, 0, len(accounts))
	for i := range accounts {
		resp = append(resp, toAccountDTO(&accounts[i]))
	}
	utils.JSON200(c, resp)
}

func (ctrl *Controller) UpdateAccountPassword(c *gin.Context) {
	ctx := c.Request.Context()

	principalID, ok := requirePrincipal(c)
	if !ok {
		return
	}
	accountID, ok := parsePathID(c, "id")
	if !ok {
		return
	}
	if err := provider.Authorize(principalID, accountID); err != nil {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[Account] User %d attempted password change for account %d", principalID, accountID)
		respondServiceError(c, err)
		return
	}

	var req dto.UpdatePasswordRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSON400(c, "Invalid request body: "+err.Error())
		return
	}

	if err := ctrl.Provider.Accounts.UpdatePassword(ctx, accountID, req.Password); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Account] Failed to update password for account %d: %v", accountID, err)
		respondServiceError(c, err)
		return
	}

	utils.JSON200(c, gin.H{"message": "Password updated"})
}

func (ctrl *Controller) DeleteAccount(c *gin.Context) {
	ctx := c.Request.Context()

	principalID, ok := requirePrincipal(c)
	if !ok {
		return
	}
	accountID, ok := parsePathID(c, "id")
	if !ok {
		return
	}
	if err := provider.Authorize(principalID, accountID); err != nil {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[Account] User %d attempted deletion of account %d", principalID, accountID)
		respondServiceError(c, err)
		return
	}

	if err := ctrl.Provider.Accounts.RemoveAccount(ctx, accountID); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Account] Failed to delete account %d: %v", accountID, err)
		respondServiceError(c, err)
		return
	}

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Account] Deleted account %d", accountID)
	utils.JSON200(c, gin.H{"message": "Account deleted"})
}

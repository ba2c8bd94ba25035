package controller

import (
	"github.com/gin-gonic/gin"
	"github.com/ruimsramos/filehaven/http/controller/dto"
	"github.com/ruimsramos/filehaven/utils"
)

func (ctrl *Controller) GetFilesSharedByUser(c *gin.Context) {
	ctx := c.Request.Context()

	accountID, ok := ctrl.authorizePathAccount(c)
	if !ok {
		return
	}

	shares, err := ctrl.Provider.Sharing.GetFilesSharedByUser(ctx, accountID)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Share] Failed to list files shared by user %d: %v", accountID, err)
		respondServiceError(c, err)
		return
	}

	utils.JSON200(c, shares)
}

func (ctrl *Controller) GetFilesSharedToUser(c *gin.Context) {
	ctx := c.Request.Context()

	accountID, ok := ctrl.authorizePathAccount(c)
	if !ok {
		return
	}

	shares, err := ctrl.Provider.Sharing.GetFilesSharedToUser(ctx, accountID)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Share] Failed to list files shared to user %d: %v", accountID, err)
		respondServiceError(c, err)
		return
	}

	utils.JSON200(c, shares)
}

func (ctrl *Controller) ShareFileToUser(c *gin.Context) {
	ctx := c.Request.Context()

	ownerID, ok := ctrl.authorizePathAccount(c)
	if !ok {
		return
	}

	var req dto.ShareToUserRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSON400(c, "Invalid request body: "+err.Error())
		return
	}

	sharing, err := ctrl.Provider.Sharing.ShareFileToUser(ctx, ownerID, req.TargetUserID, req.Filename)
	if err != nil {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[Share] Failed to share '%s' from user %d to user %d: %v", req.Filename, ownerID, req.TargetUserID, err)
		respondServiceError(c, err)
		return
	}

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Share] User %d shared '%s' with user %d", ownerID, req.Filename, req.TargetUserID)
	utils.JSON201(c, sharing)
}

func (ctrl *Controller) ShareFileToGroup(c *gin.Context) {
	ctx := c.Request.Context()

	ownerID, ok := ctrl.authorizePathAccount(c)
	if !ok {
		return
	}

	var req dto.ShareToGroupRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSON400(c, "Invalid request body: "+err.Error())
		return
	}

	sharings, err := ctrl.Provider.Sharing.ShareFileToGroup(ctx, ownerID, req.GroupID, req.Filename)
	if err != nil {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[Share] Failed to share '%s' from user %d to group %d: %v", req.Filename, ownerID, req.GroupID, err)
		respondServiceError(c, err)
		return
	}

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Share] User %d shared '%s' with group %d (%d grants)", ownerID, req.Filename, req.GroupID, len(sharings))
	utils.JSON201(c, sharings)
}

func (ctrl *Controller) UnshareFile(c *gin.Context) {
	ctx := c.Request.Context()

	if _, ok := ctrl.authorizePathAccount(c); !ok {
		return
	}
	sharingID, ok := parsePathID(c, "share_id")
	if !ok {
		return
	}

	if err := ctrl.Provider.Sharing.UnshareFile(ctx, sharingID); err != nil {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[Share] Failed to delete share %d: %v", sharingID, err)
		respondServiceError(c, err)
		return
	}

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Share] Deleted share %d", sharingID)
	utils.JSON200(c, gin.H{"message": "Share removed"})
}

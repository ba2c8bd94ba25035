package controller

import (
	"github.com/gin-gonic/gin"
	"github.com/ruimsramos/filehaven/http/controller/dto"
	"github.com/ruimsramos/filehaven/provider"
	"github.com/ruimsramos/filehaven/utils"
)

// authorizePathAccount resolves the principal and checks it matches the
// account id in the path. Responses are written on failure.
func (ctrl *Controller) authorizePathAccount(c *gin.Context) (int64, bool) {
	principalID, ok := requirePrincipal(c)
	if !ok {
		return 0, false
	}
	accountID, ok := parsePathID(c, "id")
	if !ok {
		return 0, false
	}
	if err := provider.Authorize(principalID, accountID); err != nil {
		respondServiceError(c, err)
		return 0, false
	}
	return accountID, true
}

func (ctrl *Controller) GetGroups(c *gin.Context) {
	ctx := c.Request.Context()

	accountID, ok := ctrl.authorizePathAccount(c)
	if !ok {
		return
	}

	groups, err := ctrl.Provider.Groups.GetGroupsOfUser(ctx, accountID)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Group] Failed to list groups of user %d: %v", accountID, err)
		respondServiceError(c, err)
		return
	}

	utils.JSON200(c, groups)
}

func (ctrl *Controller) CreateGroup(c *gin.Context) {
	ctx := c.Request.Context()

	accountID, ok := ctrl.authorizePathAccount(c)
	if !ok {
		return
	}

	var req dto.CreateGroupRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSON400(c, "Invalid request body: "+err.Error())
		return
	}

	group, err := ctrl.Provider.Groups.CreateGroup(ctx, accountID, req.Name)
	if err != nil {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[Group] Failed to create group '%s' for user %d: %v", req.Name, accountID, err)
		respondServiceError(c, err)
		return
	}

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Group] User %d created group '%s' (id %d)", accountID, group.Name, group.ID)
	utils.JSON201(c, group)
}

func (ctrl *Controller) UpdateGroupName(c *gin.Context) {
	ctx := c.Request.Context()

	if _, ok := ctrl.authorizePathAccount(c); !ok {
		return
	}
	groupID, ok := parsePathID(c, "group_id")
	if !ok {
		return
	}

	var req dto.UpdateGroupRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSON400(c, "Invalid request body: "+err.Error())
		return
	}

	group, err := ctrl.Provider.Groups.UpdateGroupName(ctx, groupID, req.Name)
	if err != nil {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[Group] Failed to rename group %d: %v", groupID, err)
		respondServiceError(c, err)
		return
	}

	utils.JSON200(c, group)
}

func (ctrl *Controller) DeleteGroup(c *gin.Context) {
	ctx := c.Request.Context()

	if _, ok := ctrl.authorizePathAccount(c); !ok {
		return
	}
	groupID, ok := parsePathID(c, "group_id")
	if !ok {
		return
	}

	if err := ctrl.Provider.Groups.RemoveGroup(ctx, groupID); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Group] Failed to delete group %d: %v", groupID, err)
		respondServiceError(c, err)
		return
	}

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Group] Deleted group %d", groupID)
	utils.JSON200(c, gin.H{"message": "Group deleted"})
}

func (ctrl *Controller) AddGroupMember(c *gin.Context) {
	ctx := c.Request.Context()

	if _, ok := ctrl.authorizePathAccount(c); !ok {
		return
	}
	groupID, ok := parsePathID(c, "group_id")
	if !ok {
		return
	}

	var req dto.GroupMemberRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSON400(c, "Invalid request body: "+err.Error())
		return
	}

	if err := ctrl.Provider.Groups.AddUserToGroup(ctx, req.UserID, groupID); err != nil {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[Group] Failed to add user %d to group %d: %v", req.UserID, groupID, err)
		respondServiceError(c, err)
		return
	}

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Group] Added user %d to group %d", req.UserID, groupID)
	utils.JSON200(c, gin.H{"message": "Member added"})
}

func (ctrl *Controller) GetGroupMembers(c *gin.Context) {
	ctx := c.Request.Context()

	if _, ok := ctrl.authorizePathAccount(c); !ok {
		return
	}
	groupID, ok := parsePathID(c, "group_id")
	if !ok {
		return
	}

	members, err := ctrl.Provider.Groups.GetGroupMembers(ctx, groupID)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Group] Failed to list members of group %d: %v", groupID, err)
		respondServiceError(c, err)
		return
	}

	resp := make([]dto.AccountResponseDTO, 0, len(members))
	for i := range members {
		resp = append(resp, toAccountDTO(&members[i]))
	}
	utils.JSON200(c, resp)
}

func (ctrl *Controller) RemoveGroupMember(c *gin.Context) {
	ctx := c.Request.Context()

	if _, ok := ctrl.authorizePathAccount(c); !ok {
		return
	}
	groupID, ok := parsePathID(c, "group_id")
	if !ok {
		return
	}
	memberID, ok := parsePathID(c, "member_id")
	if !ok {
		return
	}

	if err := ctrl.Provider.Groups.RemoveUserFromGroup(ctx, memberID, groupID); err != nil {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[Group] Failed to remove user %d from group %d: %v", memberID, groupID, err)
		respondServiceError(c, err)
		return
	}

	utils.JSON200(c, gin.H{"message": "Member removed"})
}

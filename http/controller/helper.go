package controller

import (
	"github.com/gin-gonic/gin"
	"github.com/ruimsramos/filehaven/provider"
	"github.com/ruimsramos/filehaven/utils"
)

// respondServiceError translates provider error classes into HTTP responses.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case provider.ErrNotFound.Has(err):
		utils.JSON404(c, err.Error())
	case provider.ErrDuplicate.Has(err):
		utils.JSON409(c, err.Error())
	case provider.ErrForbidden.Has(err):
		utils.JSON403(c, err.Error())
	case provider.ErrInvalidArgument.Has(err):
		utils.JSON400(c, err.Error())
	default:
		utils.JSON500(c, "Internal server error")
	}
}

// requirePrincipal pulls the authenticated account id from the gin context.
// It writes the 401 response itself so handlers can just bail out.
func requirePrincipal(c *gin.Context) (int64, bool) {
	principalID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		utils.JSON401(c, "Unauthorized: "+err.Error())
		return 0, false
	}
	return principalID, true
}

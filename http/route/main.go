package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/ruimsramos/filehaven/http/controller"
	middlewares "github.com/ruimsramos/filehaven/http/middleware"
)

func SetupRouter(ctrl *controller.Controller) *gin.Engine {
	r := gin.Default()
	middles, err := middlewares.NewMiddlewares(ctrl)
	if err != nil {
		panic(err)
	}

	r.Use(middles.RequestIDMiddleware)
	r.Use(middles.CORSMiddleware)

	authRoutes := r.Group("/auth")
	{
		authRoutes.POST("/register", ctrl.Register)
		authRoutes.POST("/login", ctrl.Login)
	}

	apiRoutes := r.Group("/api/v1")
	{
		apiRoutes.Use(middles.AuthMiddleware)

		apiRoutes.GET("/users", ctrl.ListAccounts)
		apiRoutes.GET("/users/search", ctrl.SearchAccounts)

		userRoutes := apiRoutes.Group("/users/:id")
		{
			userRoutes.GET("", ctrl.GetAccountByID)
			userRoutes.PUT("/password", ctrl.UpdateAccountPassword)
			userRoutes.DELETE("", ctrl.DeleteAccount)

			groupRoutes := userRoutes.Group("/groups")
			{
				groupRoutes.GET("", ctrl.GetGroups)
				groupRoutes.POST("", ctrl.CreateGroup)
				groupRoutes.PUT("/:group_id", ctrl.UpdateGroupName)
				groupRoutes.DELETE("/:group_id", ctrl.DeleteGroup)
				groupRoutes.GET("/:group_id/members", ctrl.GetGroupMembers)
				groupRoutes.POST("/:group_id/members", ctrl.AddGroupMember)
				groupRoutes.DELETE("/:group_id/members/:member_id", ctrl.RemoveGroupMember)
			}

			objectRoutes := userRoutes.Group("/objects")
			{
				objectRoutes.GET("", ctrl.ListObjects)
				objectRoutes.POST("", ctrl.UploadObject)
				objectRoutes.DELETE("", ctrl.DeleteObject)
				objectRoutes.GET("/download", ctrl.DownloadObject)
				objectRoutes.GET("/stream", ctrl.StreamObject)
				objectRoutes.GET("/exists", ctrl.ObjectExists)
				objectRoutes.PUT("/rename", ctrl.RenameObject)
				objectRoutes.POST("/folders", ctrl.CreateFolder)
				objectRoutes.POST("/presign/upload", ctrl.PresignUpload)
				objectRoutes.GET("/presign/download", ctrl.PresignDownload)

				objectRoutes.POST("/multipart", ctrl.StartMultipartUpload)
				objectRoutes.PUT("/multipart/:upload_id/parts/:part_number", ctrl.UploadPart)
				objectRoutes.POST("/multipart/:upload_id/complete", ctrl.CompleteMultipartUpload)
				objectRoutes.DELETE("/multipart/:upload_id", ctrl.AbortMultipartUpload)
			}

			shareRoutes := userRoutes.Group("/shares")
			{
				shareRoutes.GET("", ctrl.GetFilesSharedByUser)
				shareRoutes.GET("/received", ctrl.GetFilesSharedToUser)
				shareRoutes.POST("/user", ctrl.ShareFileToUser)
				shareRoutes.POST("/group", ctrl.ShareFileToGroup)
				shareRoutes.DELETE("/:share_id", ctrl.UnshareFile)
			}
		}
	}

	return r
}

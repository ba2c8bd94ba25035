package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/ruimsramos/filehaven/http/controller"
)

type Middlewares struct {
	CORSMiddleware      gin.HandlerFunc
	AuthMiddleware      gin.HandlerFunc
	RequestIDMiddleware gin.HandlerFunc
}

func NewMiddlewares(ctrl *controller.Controller) (*Middlewares, error) {
	cors := CORSMiddleware(ctrl.Config.EnvConfig)
	auth := AuthMiddleware(ctrl.Config.EnvConfig)
	requestID := RequestIDMiddleware()

	return &Middlewares{
		CORSMiddleware:      cors,
		AuthMiddleware:      auth,
		RequestIDMiddleware: requestID,
	}, nil
}

package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/ruimsramos/filehaven/config"
	"github.com/ruimsramos/filehaven/http/controller"
	routes "github.com/ruimsramos/filehaven/http/route"
	infraPkg "github.com/ruimsramos/filehaven/infra"
	"github.com/ruimsramos/filehaven/provider"
	"github.com/ruimsramos/filehaven/repository"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, continuing with environment variables")
	}

	cfg := config.NewConfig()
	infra := infraPkg.InitInfra(cfg)
	repo := repository.InitRepository(infra)
	prov := provider.InitProvider(cfg, infra, repo)

	ctrl := controller.NewController(cfg, infra, repo, prov)

	router := routes.SetupRouter(ctrl)

	addr := ":" + cfg.EnvConfig.Server.Port
	log.Printf("HTTP Server started on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

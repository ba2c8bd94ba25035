package infra

import (
	"fmt"

	"github.com/ruimsramos/filehaven/config"
	"github.com/ruimsramos/filehaven/entity"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type PostgresClient struct {
	DB *gorm.DB
}

func InitPostgresClient(cfg *config.EnvConfig) *PostgresClient {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.Postgres.Host,
		cfg.Postgres.Username,
		cfg.Postgres.Password,
		cfg.Postgres.Database,
		cfg.Postgres.Port,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to Postgres: %v", err))
	}

	if err := db.AutoMigrate(
		&entity.Account{},
		&entity.Group{},
		&entity.GroupMember{},
		&entity.FileSharing{},
	); err != nil {
		panic(fmt.Sprintf("Failed to run migrations: %v", err))
	}

	return &PostgresClient{DB: db}
}

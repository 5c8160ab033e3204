package main

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/hvostov/inkline/config"
	"github.com/hvostov/inkline/models"
	"github.com/hvostov/inkline/routes"
	"github.com/hvostov/inkline/utils"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	if err := utils.InitLogger(cfg); err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.Group{},
		&models.Post{},
		&models.Comment{},
		&models.Follow{},
		&models.PageView{},
		&models.UploadedImage{},
	)

	config.SeedGroups()

	router := routes.SetupRouter(db)

	utils.StartImageCleaner(6*time.Hour, 24*time.Hour)

	addr := cfg.AppPort
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}
	utils.Sugar.Infof("listening on %s", addr)
	if err := utils.GraceServer(addr, router); err != nil {
		utils.Sugar.Fatalf("server exited: %v", err)
	}
}

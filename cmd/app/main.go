package main

import (
	"log"

	"github.com/Dmitriy839/foodgram-project-react/cmd/config"
	migration "github.com/Dmitriy839/foodgram-project-react/cmd/database/migrate"
	"github.com/Dmitriy839/foodgram-project-react/internal/utils"
)

func main() {
	utils.LoadConfig()

	db, err := config.ConnectDB()
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := migration.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	app, err := config.NewApp(db)
	if err != nil {
		log.Fatalf("failed to configure app: %v", err)
	}

	if err := app.Listen(":8080"); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

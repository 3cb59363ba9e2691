package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/Dmitriy839/foodgram-project-react/cmd/config"
	migration "github.com/Dmitriy839/foodgram-project-react/cmd/database/migrate"
	"github.com/Dmitriy839/foodgram-project-react/internal/utils"
	"github.com/Dmitriy839/foodgram-project-react/pkg/ingredient"
)

// Loads the ingredient reference data from a CSV file, e.g.
//
//	go run ./cmd/database/seed -file data/ingredients.csv
func main() {
	file := flag.String("file", "data/ingredients.csv", "path to the ingredients CSV")
	flag.Parse()

	utils.LoadConfig()

	db, err := config.ConnectDB()
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	if err := migration.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	f, err := os.Open(*file)
	if err != nil {
		log.Fatalf("failed to open %s: %v", *file, err)
	}
	defer f.Close()

	ingredientService := ingredient.NewIngredientService(ingredient.NewIngredientRepository(db))
	imported, err := ingredientService.ImportFromCSV(context.Background(), f)
	if err != nil {
		log.Fatalf("import failed after %d rows: %v", imported, err)
	}

	fmt.Printf("imported %d ingredients\n", imported)
}

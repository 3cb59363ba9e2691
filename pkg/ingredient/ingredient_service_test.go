package ingredient

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Dmitriy839/foodgram-project-react/domain"
	"github.com/Dmitriy839/foodgram-project-react/entities"
	"github.com/Dmitriy839/foodgram-project-react/pkg/policy"
)

func newIngredientService(t *testing.T) IngredientService {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&entities.Ingredient{}))
	return NewIngredientService(NewIngredientRepository(db))
}

func adminActor() policy.Actor {
	return policy.Actor{ID: 1, IsAdmin: true, Authenticated: true}
}

func TestCreateIngredient(t *testing.T) {
	s := newIngredientService(t)
	ctx := context.Background()

	req := domain.CreateIngredientRequest{Name: "мука", MeasurementUnit: "г"}

	_, err := s.CreateIngredient(ctx, req, policy.Actor{ID: 2, Authenticated: true})
	assert.ErrorIs(t, err, domain.ErrUserNotAllowed)

	res, err := s.CreateIngredient(ctx, req, adminActor())
	require.NoError(t, err)
	assert.Equal(t, "мука", res.Name)

	_, err = s.CreateIngredient(ctx, req, adminActor())
	assert.ErrorIs(t, err, domain.ErrIngredientAlreadyExists)

	// Same name under a different unit is a distinct ingredient.
	_, err = s.CreateIngredient(ctx, domain.CreateIngredientRequest{Name: "мука", MeasurementUnit: "кг"}, adminActor())
	assert.NoError(t, err)
}

func TestGetIngredientsNameFilter(t *testing.T) {
	s := newIngredientService(t)
	ctx := context.Background()

	for _, name := range []string{"мука", "молоко", "сахар"} {
		_, err := s.CreateIngredient(ctx, domain.CreateIngredientRequest{Name: name, MeasurementUnit: "г"}, adminActor())
		require.NoError(t, err)
	}

	all, err := s.GetIngredients(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	filtered, err := s.GetIngredients(ctx, "му")
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "мука", filtered[0].Name)
}

func TestGetIngredientByID(t *testing.T) {
	s := newIngredientService(t)
	ctx := context.Background()

	created, err := s.CreateIngredient(ctx, domain.CreateIngredientRequest{Name: "мука", MeasurementUnit: "г"}, adminActor())
	require.NoError(t, err)

	res, err := s.GetIngredientByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Name, res.Name)

	_, err = s.GetIngredientByID(ctx, created.ID+100)
	assert.ErrorIs(t, err, domain.ErrIngredientNotFound)
}

func TestImportFromCSV(t *testing.T) {
	s := newIngredientService(t)
	ctx := context.Background()

	csvData := strings.Join([]string{
		"абрикосовое варенье,г",
		"абрикосовое варенье,г", // duplicate row, skipped
		"абрикосы,г",
		"агар-агар,г",
	}, "\n")

	imported, err := s.ImportFromCSV(ctx, strings.NewReader(csvData))
	require.NoError(t, err)
	assert.Equal(t, 3, imported)

	// Re-running the import is a no-op.
	imported, err = s.ImportFromCSV(ctx, strings.NewReader(csvData))
	require.NoError(t, err)
	assert.Equal(t, 0, imported)

	all, err := s.GetIngredients(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestImportFromCSVMalformedRow(t *testing.T) {
	s := newIngredientService(t)

	_, err := s.ImportFromCSV(context.Background(), strings.NewReader("мука,г\nсахар"))
	assert.Error(t, err)
}

package recipe

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Dmitriy839/foodgram-project-react/domain"
	"github.com/Dmitriy839/foodgram-project-react/entities"
	"github.com/Dmitriy839/foodgram-project-react/internal/utils/storage"
	"github.com/Dmitriy839/foodgram-project-react/pkg/ingredient"
	"github.com/Dmitriy839/foodgram-project-react/pkg/policy"
	"github.com/Dmitriy839/foodgram-project-react/pkg/tag"
)

type fakeStorage struct{}

func (fakeStorage) UploadBase64Image(_ context.Context, folder string, payload string) (string, error) {
	if payload == "" {
		return "", storage.ErrInvalidBase64Payload
	}
	return "https://cdn.test/" + folder + "/image.png", nil
}

type fakeSubscriptionChecker struct{}

func (fakeSubscriptionChecker) IsSubscribed(context.Context, uint, uint) (bool, error) {
	return false, nil
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&entities.User{},
		&entities.Tag{},
		&entities.Ingredient{},
		&entities.Recipe{},
		&entities.RecipeIngredient{},
		&entities.Favorite{},
		&entities.CartItem{},
		&entities.Subscription{},
	))
	return db
}

type recipeFixture struct {
	db      *gorm.DB
	service RecipeService
}

func newRecipeFixture(t *testing.T) *recipeFixture {
	t.Helper()

	db := setupTestDB(t)
	service := NewRecipeService(
		NewRecipeRepository(db),
		tag.NewTagRepository(db),
		ingredient.NewIngredientRepository(db),
		fakeSubscriptionChecker{},
		fakeStorage{},
	)
	return &recipeFixture{db: db, service: service}
}

func (f *recipeFixture) createUser(t *testing.T, username string, isAdmin bool) *entities.User {
	t.Helper()

	user := &entities.User{
		Email:    username + "@example.com",
		Username: username,
		IsAdmin:  isAdmin,
	}
	require.NoError(t, f.db.Create(user).Error)
	return user
}

func (f *recipeFixture) createTag(t *testing.T, name, slug, color string) *entities.Tag {
	t.Helper()

	tg := &entities.Tag{Name: name, Slug: slug, Color: color}
	require.NoError(t, f.db.Create(tg).Error)
	return tg
}

func (f *recipeFixture) createIngredient(t *testing.T, name, unit string) *entities.Ingredient {
	t.Helper()

	ing := &entities.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(t, f.db.Create(ing).Error)
	return ing
}

func actorFor(user *entities.User) policy.Actor {
	return policy.Actor{ID: user.ID, IsAdmin: user.IsAdmin, Authenticated: true}
}

func saveRequest(name string, tagIDs []uint, ingredients []domain.RecipeIngredientRequest) domain.SaveRecipeRequest {
	return domain.SaveRecipeRequest{
		Name:        name,
		Text:        "описание",
		Image:       "aGVsbG8=",
		CookingTime: 30,
		Tags:        tagIDs,
		Ingredients: ingredients,
	}
}

func TestCreateRecipe(t *testing.T) {
	f := newRecipeFixture(t)
	ctx := context.Background()

	author := f.createUser(t, "author", false)
	breakfast := f.createTag(t, "Завтрак", "breakfast", "#E26C2D")
	flour := f.createIngredient(t, "мука", "г")
	sugar := f.createIngredient(t, "сахар", "г")

	req := saveRequest("Блины", []uint{breakfast.ID}, []domain.RecipeIngredientRequest{
		{ID: flour.ID, Amount: 200},
		{ID: sugar.ID, Amount: 50},
	})

	res, err := f.service.CreateRecipe(ctx, req, actorFor(author))
	require.NoError(t, err)

	assert.Equal(t, "Блины", res.Name)
	assert.Equal(t, author.ID, res.Author.ID)
	assert.Len(t, res.Tags, 1)
	assert.Len(t, res.Ingredients, 2)
	assert.False(t, res.IsFavorited)
	assert.False(t, res.IsInShoppingCart)
	assert.NotEmpty(t, res.Image)
}

func TestCreateRecipeAnonymous(t *testing.T) {
	f := newRecipeFixture(t)

	_, err := f.service.CreateRecipe(context.Background(), saveRequest("Блины", []uint{1}, nil), policy.Actor{})
	assert.ErrorIs(t, err, domain.ErrUserNotAllowed)
}

func TestCreateRecipeDuplicateNamePerAuthor(t *testing.T) {
	f := newRecipeFixture(t)
	ctx := context.Background()

	author := f.createUser(t, "author", false)
	other := f.createUser(t, "other", false)
	tg := f.createTag(t, "Обед", "lunch", "#49B64E")
	ing := f.createIngredient(t, "мука", "г")

	req := saveRequest("Блины", []uint{tg.ID}, []domain.RecipeIngredientRequest{{ID: ing.ID, Amount: 100}})

	_, err := f.service.CreateRecipe(ctx, req, actorFor(author))
	require.NoError(t, err)

	_, err = f.service.CreateRecipe(ctx, req, actorFor(author))
	assert.ErrorIs(t, err, domain.ErrRecipeAlreadyExists)

	// The same name under a different author is fine.
	_, err = f.service.CreateRecipe(ctx, req, actorFor(other))
	assert.NoError(t, err)
}

func TestCreateRecipeUnknownReferences(t *testing.T) {
	f := newRecipeFixture(t)
	ctx := context.Background()

	author := f.createUser(t, "author", false)
	tg := f.createTag(t, "Ужин", "dinner", "#8775D2")
	ing := f.createIngredient(t, "мука", "г")

	_, err := f.service.CreateRecipe(ctx,
		saveRequest("Блины", []uint{tg.ID + 100}, []domain.RecipeIngredientRequest{{ID: ing.ID, Amount: 100}}),
		actorFor(author))
	assert.ErrorIs(t, err, domain.ErrTagNotFound)

	_, err = f.service.CreateRecipe(ctx,
		saveRequest("Блины", []uint{tg.ID}, []domain.RecipeIngredientRequest{{ID: ing.ID + 100, Amount: 100}}),
		actorFor(author))
	assert.ErrorIs(t, err, domain.ErrIngredientNotFound)
}

func TestUpdateRecipeReplacesIngredientSet(t *testing.T) {
	f := newRecipeFixture(t)
	ctx := context.Background()

	author := f.createUser(t, "author", false)
	tg := f.createTag(t, "Завтрак", "breakfast", "#E26C2D")
	flour := f.createIngredient(t, "мука", "г")
	sugar := f.createIngredient(t, "сахар", "г")
	milk := f.createIngredient(t, "молоко", "мл")

	created, err := f.service.CreateRecipe(ctx,
		saveRequest("Блины", []uint{tg.ID}, []domain.RecipeIngredientRequest{
			{ID: flour.ID, Amount: 200},
			{ID: sugar.ID, Amount: 50},
		}),
		actorFor(author))
	require.NoError(t, err)

	updated, err := f.service.UpdateRecipe(ctx, created.ID,
		saveRequest("Блины", []uint{tg.ID}, []domain.RecipeIngredientRequest{
			{ID: sugar.ID, Amount: 70},
			{ID: milk.ID, Amount: 500},
		}),
		actorFor(author))
	require.NoError(t, err)

	require.Len(t, updated.Ingredients, 2)
	amounts := map[uint]int{}
	for _, row := range updated.Ingredients {
		amounts[row.ID] = row.Amount
	}
	assert.Equal(t, 70, amounts[sugar.ID])
	assert.Equal(t, 500, amounts[milk.ID])
	assert.NotContains(t, amounts, flour.ID)

	var rows int64
	require.NoError(t, f.db.Model(&entities.RecipeIngredient{}).Where("recipe_id = ?", created.ID).Count(&rows).Error)
	assert.EqualValues(t, 2, rows)
}

func TestUpdateRecipePermissions(t *testing.T) {
	f := newRecipeFixture(t)
	ctx := context.Background()

	author := f.createUser(t, "author", false)
	stranger := f.createUser(t, "stranger", false)
	admin := f.createUser(t, "admin", true)
	tg := f.createTag(t, "Завтрак", "breakfast", "#E26C2D")
	ing := f.createIngredient(t, "мука", "г")

	created, err := f.service.CreateRecipe(ctx,
		saveRequest("Блины", []uint{tg.ID}, []domain.RecipeIngredientRequest{{ID: ing.ID, Amount: 100}}),
		actorFor(author))
	require.NoError(t, err)

	req := saveRequest("Оладьи", []uint{tg.ID}, []domain.RecipeIngredientRequest{{ID: ing.ID, Amount: 150}})

	_, err = f.service.UpdateRecipe(ctx, created.ID, req, actorFor(stranger))
	assert.ErrorIs(t, err, domain.ErrUserNotAllowed)

	updated, err := f.service.UpdateRecipe(ctx, created.ID, req, actorFor(admin))
	require.NoError(t, err)
	assert.Equal(t, "Оладьи", updated.Name)
}

func TestDeleteRecipeRemovesDependents(t *testing.T) {
	f := newRecipeFixture(t)
	ctx := context.Background()

	author := f.createUser(t, "author", false)
	fan := f.createUser(t, "fan", false)
	tg := f.createTag(t, "Завтрак", "breakfast", "#E26C2D")
	ing := f.createIngredient(t, "мука", "г")

	created, err := f.service.CreateRecipe(ctx,
		saveRequest("Блины", []uint{tg.ID}, []domain.RecipeIngredientRequest{{ID: ing.ID, Amount: 100}}),
		actorFor(author))
	require.NoError(t, err)

	_, err = f.service.AddFavorite(ctx, created.ID, fan.ID)
	require.NoError(t, err)
	_, err = f.service.AddToCart(ctx, created.ID, fan.ID)
	require.NoError(t, err)

	err = f.service.DeleteRecipe(ctx, created.ID, actorFor(fan))
	assert.ErrorIs(t, err, domain.ErrUserNotAllowed)

	require.NoError(t, f.service.DeleteRecipe(ctx, created.ID, actorFor(author)))

	_, err = f.service.GetRecipeByID(ctx, created.ID, 0)
	assert.ErrorIs(t, err, domain.ErrRecipeNotFound)

	for _, model := range []any{&entities.RecipeIngredient{}, &entities.Favorite{}, &entities.CartItem{}} {
		var count int64
		require.NoError(t, f.db.Model(model).Where("recipe_id = ?", created.ID).Count(&count).Error)
		assert.Zero(t, count)
	}
}

func TestFavoriteToggle(t *testing.T) {
	f := newRecipeFixture(t)
	ctx := context.Background()

	author := f.createUser(t, "author", false)
	fan := f.createUser(t, "fan", false)
	tg := f.createTag(t, "Завтрак", "breakfast", "#E26C2D")
	ing := f.createIngredient(t, "мука", "г")

	created, err := f.service.CreateRecipe(ctx,
		saveRequest("Блины", []uint{tg.ID}, []domain.RecipeIngredientRequest{{ID: ing.ID, Amount: 100}}),
		actorFor(author))
	require.NoError(t, err)

	short, err := f.service.AddFavorite(ctx, created.ID, fan.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, short.ID)
	assert.Equal(t, created.Name, short.Name)

	_, err = f.service.AddFavorite(ctx, created.ID, fan.ID)
	assert.ErrorIs(t, err, domain.ErrRecipeAlreadyFavorited)

	require.NoError(t, f.service.RemoveFavorite(ctx, created.ID, fan.ID))

	err = f.service.RemoveFavorite(ctx, created.ID, fan.ID)
	assert.ErrorIs(t, err, domain.ErrRecipeNotFavorited)

	_, err = f.service.AddFavorite(ctx, created.ID+100, fan.ID)
	assert.ErrorIs(t, err, domain.ErrRecipeNotFound)
}

func TestCartToggle(t *testing.T) {
	f := newRecipeFixture(t)
	ctx := context.Background()

	author := f.createUser(t, "author", false)
	buyer := f.createUser(t, "buyer", false)
	tg := f.createTag(t, "Обед", "lunch", "#49B64E")
	ing := f.createIngredient(t, "мука", "г")

	created, err := f.service.CreateRecipe(ctx,
		saveRequest("Блины", []uint{tg.ID}, []domain.RecipeIngredientRequest{{ID: ing.ID, Amount: 100}}),
		actorFor(author))
	require.NoError(t, err)

	_, err = f.service.AddToCart(ctx, created.ID, buyer.ID)
	require.NoError(t, err)

	_, err = f.service.AddToCart(ctx, created.ID, buyer.ID)
	assert.ErrorIs(t, err, domain.ErrRecipeAlreadyInCart)

	require.NoError(t, f.service.RemoveFromCart(ctx, created.ID, buyer.ID))

	err = f.service.RemoveFromCart(ctx, created.ID, buyer.ID)
	assert.ErrorIs(t, err, domain.ErrRecipeNotInCart)
}

func TestViewerRelativeFlags(t *testing.T) {
	f := newRecipeFixture(t)
	ctx := context.Background()

	author := f.createUser(t, "author", false)
	fan := f.createUser(t, "fan", false)
	tg := f.createTag(t, "Завтрак", "breakfast", "#E26C2D")
	ing := f.createIngredient(t, "мука", "г")

	created, err := f.service.CreateRecipe(ctx,
		saveRequest("Блины", []uint{tg.ID}, []domain.RecipeIngredientRequest{{ID: ing.ID, Amount: 100}}),
		actorFor(author))
	require.NoError(t, err)

	_, err = f.service.AddFavorite(ctx, created.ID, fan.ID)
	require.NoError(t, err)
	_, err = f.service.AddToCart(ctx, created.ID, fan.ID)
	require.NoError(t, err)

	forFan, err := f.service.GetRecipeByID(ctx, created.ID, fan.ID)
	require.NoError(t, err)
	assert.True(t, forFan.IsFavorited)
	assert.True(t, forFan.IsInShoppingCart)

	// An anonymous viewer always sees both flags false.
	forAnonymous, err := f.service.GetRecipeByID(ctx, created.ID, 0)
	require.NoError(t, err)
	assert.False(t, forAnonymous.IsFavorited)
	assert.False(t, forAnonymous.IsInShoppingCart)
}

func TestGetRecipesFilters(t *testing.T) {
	f := newRecipeFixture(t)
	ctx := context.Background()

	author := f.createUser(t, "author", false)
	other := f.createUser(t, "other", false)
	fan := f.createUser(t, "fan", false)
	breakfast := f.createTag(t, "Завтрак", "breakfast", "#E26C2D")
	dinner := f.createTag(t, "Ужин", "dinner", "#8775D2")
	ing := f.createIngredient(t, "мука", "г")

	pancakes, err := f.service.CreateRecipe(ctx,
		saveRequest("Блины", []uint{breakfast.ID}, []domain.RecipeIngredientRequest{{ID: ing.ID, Amount: 100}}),
		actorFor(author))
	require.NoError(t, err)

	soup, err := f.service.CreateRecipe(ctx,
		saveRequest("Суп", []uint{dinner.ID}, []domain.RecipeIngredientRequest{{ID: ing.ID, Amount: 50}}),
		actorFor(other))
	require.NoError(t, err)

	_, err = f.service.AddFavorite(ctx, soup.ID, fan.ID)
	require.NoError(t, err)

	byTag, count, err := f.service.GetRecipes(ctx, domain.RecipeFilter{Tags: []string{"breakfast"}}, 0, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
	require.Len(t, byTag, 1)
	assert.Equal(t, pancakes.ID, byTag[0].ID)

	byAuthor, count, err := f.service.GetRecipes(ctx, domain.RecipeFilter{AuthorID: other.ID}, 0, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
	require.Len(t, byAuthor, 1)
	assert.Equal(t, soup.ID, byAuthor[0].ID)

	favorited, count, err := f.service.GetRecipes(ctx, domain.RecipeFilter{IsFavorited: true}, fan.ID, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
	require.Len(t, favorited, 1)
	assert.Equal(t, soup.ID, favorited[0].ID)

	// The favorited filter is a no-op for anonymous viewers.
	all, count, err := f.service.GetRecipes(ctx, domain.RecipeFilter{IsFavorited: true}, 0, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
	assert.Len(t, all, 2)
}

func TestShoppingListAggregation(t *testing.T) {
	f := newRecipeFixture(t)
	ctx := context.Background()

	author := f.createUser(t, "author", false)
	buyer := f.createUser(t, "buyer", false)
	tg := f.createTag(t, "Обед", "lunch", "#49B64E")
	flour := f.createIngredient(t, "мука", "г")
	milk := f.createIngredient(t, "молоко", "мл")

	pancakes, err := f.service.CreateRecipe(ctx,
		saveRequest("Блины", []uint{tg.ID}, []domain.RecipeIngredientRequest{
			{ID: flour.ID, Amount: 200},
			{ID: milk.ID, Amount: 500},
		}),
		actorFor(author))
	require.NoError(t, err)

	bread, err := f.service.CreateRecipe(ctx,
		saveRequest("Хлеб", []uint{tg.ID}, []domain.RecipeIngredientRequest{
			{ID: flour.ID, Amount: 300},
		}),
		actorFor(author))
	require.NoError(t, err)

	_, err = f.service.AddToCart(ctx, pancakes.ID, buyer.ID)
	require.NoError(t, err)
	_, err = f.service.AddToCart(ctx, bread.ID, buyer.ID)
	require.NoError(t, err)

	text, err := f.service.DownloadShoppingCart(ctx, buyer.ID)
	require.NoError(t, err)

	expected := ShoppingListHeader +
		fmt.Sprintf("\n%s (%s) - %d", "молоко", "мл", 500) +
		fmt.Sprintf("\n%s (%s) - %d", "мука", "г", 500)
	assert.Equal(t, expected, text)
}

func TestShoppingListEmptyCart(t *testing.T) {
	f := newRecipeFixture(t)

	buyer := f.createUser(t, "buyer", false)

	text, err := f.service.DownloadShoppingCart(context.Background(), buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, ShoppingListHeader, text)
}

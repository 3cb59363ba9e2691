package subscription

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Dmitriy839/foodgram-project-react/domain"
	"github.com/Dmitriy839/foodgram-project-react/entities"
	"github.com/Dmitriy839/foodgram-project-react/pkg/recipe"
	"github.com/Dmitriy839/foodgram-project-react/pkg/user"
)

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

type subscriptionFixture struct {
	db      *gorm.DB
	service SubscriptionService
}

func newSubscriptionFixture(t *testing.T) *subscriptionFixture {
	t.Helper()

	db := setupTestDB(t)
	service := NewSubscriptionService(
		NewSubscriptionRepository(db),
		user.NewUserRepository(db),
		recipe.NewRecipeRepository(db),
	)
	return &subscriptionFixture{db: db, service: service}
}

func (f *subscriptionFixture) createUser(t *testing.T, username string) *entities.User {
	t.Helper()

	u := &entities.User{
		Email:    username + "@example.com",
		Username: username,
	}
	require.NoError(t, f.db.Create(u).Error)
	return u
}

func (f *subscriptionFixture) createRecipes(t *testing.T, author *entities.User, n int) {
	t.Helper()

	for i := 0; i < n; i++ {
		require.NoError(t, f.db.Create(&entities.Recipe{
			AuthorID:    author.ID,
			Name:        fmt.Sprintf("Рецепт %d", i+1),
			CookingTime: 10,
		}).Error)
	}
}

func TestSubscribe(t *testing.T) {
	f := newSubscriptionFixture(t)
	ctx := context.Background()

	follower := f.createUser(t, "follower")
	author := f.createUser(t, "author")
	f.createRecipes(t, author, 5)

	res, err := f.service.Subscribe(ctx, follower.ID, author.ID, 3)
	require.NoError(t, err)

	assert.Equal(t, author.ID, res.ID)
	assert.True(t, res.IsSubscribed)
	// The recipes list is truncated by the limit, the count is not.
	assert.Len(t, res.Recipes, 3)
	assert.EqualValues(t, 5, res.RecipesCount)
}

func TestSubscribeUnknownAuthor(t *testing.T) {
	f := newSubscriptionFixture(t)

	follower := f.createUser(t, "follower")

	_, err := f.service.Subscribe(context.Background(), follower.ID, follower.ID+100, 0)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestSubscribeTwice(t *testing.T) {
	f := newSubscriptionFixture(t)
	ctx := context.Background()

	follower := f.createUser(t, "follower")
	author := f.createUser(t, "author")

	_, err := f.service.Subscribe(ctx, follower.ID, author.ID, 0)
	require.NoError(t, err)

	_, err = f.service.Subscribe(ctx, follower.ID, author.ID, 0)
	assert.ErrorIs(t, err, domain.ErrAlreadySubscribed)
}

func TestUnsubscribe(t *testing.T) {
	f := newSubscriptionFixture(t)
	ctx := context.Background()

	follower := f.createUser(t, "follower")
	author := f.createUser(t, "author")

	_, err := f.service.Subscribe(ctx, follower.ID, author.ID, 0)
	require.NoError(t, err)

	require.NoError(t, f.service.Unsubscribe(ctx, follower.ID, author.ID))

	err = f.service.Unsubscribe(ctx, follower.ID, author.ID)
	assert.ErrorIs(t, err, domain.ErrSubscriptionNotFound)

	err = f.service.Unsubscribe(ctx, follower.ID, author.ID+100)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestGetSubscriptions(t *testing.T) {
	f := newSubscriptionFixture(t)
	ctx := context.Background()

	follower := f.createUser(t, "follower")
	first := f.createUser(t, "first")
	second := f.createUser(t, "second")
	f.createRecipes(t, first, 2)

	// Insert directly so the ordering timestamps are deterministic.
	require.NoError(t, f.db.Create(&entities.Subscription{
		UserID:    follower.ID,
		AuthorID:  first.ID,
		CreatedAt: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
	}).Error)
	require.NoError(t, f.db.Create(&entities.Subscription{
		UserID:    follower.ID,
		AuthorID:  second.ID,
		CreatedAt: time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
	}).Error)

	subs, count, err := f.service.GetSubscriptions(ctx, follower.ID, 1, 20, 1)
	require.NoError(t, err)

	assert.EqualValues(t, 2, count)
	require.Len(t, subs, 2)
	// Newest subscription first.
	assert.Equal(t, second.ID, subs[0].ID)
	assert.Equal(t, first.ID, subs[1].ID)

	assert.Len(t, subs[1].Recipes, 1)
	assert.EqualValues(t, 2, subs[1].RecipesCount)
	assert.True(t, subs[1].IsSubscribed)
}

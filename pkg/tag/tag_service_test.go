package tag

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Dmitriy839/foodgram-project-react/domain"
	"github.com/Dmitriy839/foodgram-project-react/entities"
	"github.com/Dmitriy839/foodgram-project-react/pkg/policy"
)

func newTagService(t *testing.T) TagService {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&entities.Tag{}))
	return NewTagService(NewTagRepository(db))
}

func TestCreateTag(t *testing.T) {
	s := newTagService(t)
	ctx := context.Background()

	req := domain.CreateTagRequest{Name: "Завтрак", Color: "#E26C2D", Slug: "breakfast"}

	_, err := s.CreateTag(ctx, req, policy.Actor{})
	assert.ErrorIs(t, err, domain.ErrUserNotAllowed)

	_, err = s.CreateTag(ctx, req, policy.Actor{ID: 2, Authenticated: true})
	assert.ErrorIs(t, err, domain.ErrUserNotAllowed)

	res, err := s.CreateTag(ctx, req, policy.Actor{ID: 1, IsAdmin: true, Authenticated: true})
	require.NoError(t, err)
	assert.Equal(t, "breakfast", res.Slug)

	_, err = s.CreateTag(ctx, req, policy.Actor{ID: 1, IsAdmin: true, Authenticated: true})
	assert.ErrorIs(t, err, domain.ErrTagAlreadyExists)
}

func TestGetTags(t *testing.T) {
	s := newTagService(t)
	ctx := context.Background()
	admin := policy.Actor{ID: 1, IsAdmin: true, Authenticated: true}

	_, err := s.CreateTag(ctx, domain.CreateTagRequest{Name: "Завтрак", Color: "#E26C2D", Slug: "breakfast"}, admin)
	require.NoError(t, err)
	_, err = s.CreateTag(ctx, domain.CreateTagRequest{Name: "Обед", Color: "#49B64E", Slug: "lunch"}, admin)
	require.NoError(t, err)

	tags, err := s.GetTags(ctx)
	require.NoError(t, err)
	assert.Len(t, tags, 2)
}

func TestGetTagByID(t *testing.T) {
	s := newTagService(t)
	ctx := context.Background()

	created, err := s.CreateTag(ctx,
		domain.CreateTagRequest{Name: "Ужин", Color: "#8775D2", Slug: "dinner"},
		policy.Actor{ID: 1, IsAdmin: true, Authenticated: true})
	require.NoError(t, err)

	res, err := s.GetTagByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "dinner", res.Slug)

	_, err = s.GetTagByID(ctx, created.ID+100)
	assert.ErrorIs(t, err, domain.ErrTagNotFound)
}

package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthorAdminOrReadOnly(t *testing.T) {
	author := Actor{ID: 1, Authenticated: true}
	admin := Actor{ID: 2, IsAdmin: true, Authenticated: true}
	other := Actor{ID: 3, Authenticated: true}
	anonymous := Actor{}

	t.Run("safe methods always allowed", func(t *testing.T) {
		for _, method := range []string{"GET", "HEAD", "OPTIONS"} {
			assert.True(t, AuthorAdminOrReadOnly(method, anonymous, 1))
			assert.True(t, AuthorAdminOrReadOnly(method, other, 1))
		}
	})

	t.Run("author can write", func(t *testing.T) {
		assert.True(t, AuthorAdminOrReadOnly("PATCH", author, 1))
		assert.True(t, AuthorAdminOrReadOnly("DELETE", author, 1))
	})

	t.Run("admin can write", func(t *testing.T) {
		assert.True(t, AuthorAdminOrReadOnly("DELETE", admin, 1))
	})

	t.Run("non-author non-admin cannot write", func(t *testing.T) {
		assert.False(t, AuthorAdminOrReadOnly("PATCH", other, 1))
		assert.False(t, AuthorAdminOrReadOnly("DELETE", other, 1))
	})

	t.Run("anonymous cannot write", func(t *testing.T) {
		assert.False(t, AuthorAdminOrReadOnly("POST", anonymous, 1))
	})
}

func TestAdminOrReadOnly(t *testing.T) {
	admin := Actor{ID: 2, IsAdmin: true, Authenticated: true}
	user := Actor{ID: 3, Authenticated: true}
	anonymous := Actor{}

	assert.True(t, AdminOrReadOnly("GET", anonymous))
	assert.True(t, AdminOrReadOnly("GET", user))
	assert.True(t, AdminOrReadOnly("POST", admin))
	assert.False(t, AdminOrReadOnly("POST", user))
	assert.False(t, AdminOrReadOnly("POST", anonymous))
	assert.False(t, AdminOrReadOnly("DELETE", user))
}

// Package policy holds the request authorization predicates. Both are pure
// functions of the HTTP method, the acting user and (for object-level
// checks) the target's author; they keep no state and touch no storage.
package policy

var (
	// Denial explanations surfaced to the caller.
	MessageAuthorAdminOrReadOnly = "Для проверенных пользователей в статусе автора, администратора иначе только просмотр."
	MessageAdminOrReadOnly       = "Для проверенных пользователей в статусе администратора иначе только просмотр."
)

// Actor is the acting user as seen by the policies. The zero value is an
// anonymous request.
type Actor struct {
	ID            uint
	IsAdmin       bool
	Authenticated bool
}

// safe methods never mutate state.
func isSafeMethod(method string) bool {
	switch method {
	case "GET", "HEAD", "OPTIONS":
		return true
	}
	return false
}

// AuthorAdminOrReadOnly permits safe methods unconditionally; writes
// require an authenticated actor who owns the object or holds the admin
// role.
func AuthorAdminOrReadOnly(method string, actor Actor, authorID uint) bool {
	if isSafeMethod(method) {
		return true
	}
	if !actor.Authenticated {
		return false
	}
	return actor.ID == authorID || actor.IsAdmin
}

// AdminOrReadOnly permits safe methods unconditionally; writes require an
// authenticated admin.
func AdminOrReadOnly(method string, actor Actor) bool {
	if isSafeMethod(method) {
		return true
	}
	return actor.Authenticated && actor.IsAdmin
}

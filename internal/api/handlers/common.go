package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/Dmitriy839/foodgram-project-react/domain"
	"github.com/Dmitriy839/foodgram-project-react/pkg/policy"
)

// currentActor reads the acting user from the request locals. The zero
// Actor means the request is anonymous.
func currentActor(c *fiber.Ctx) policy.Actor {
	userID, ok := c.Locals("user_id").(uint)
	if !ok || userID == 0 {
		return policy.Actor{}
	}
	role, _ := c.Locals("role").(string)
	return policy.Actor{
		ID:            userID,
		IsAdmin:       role == domain.RoleAdmin,
		Authenticated: true,
	}
}

func parsePagination(c *fiber.Ctx) (int, int) {
	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	limit, err := strconv.Atoi(c.Query("limit", "20"))
	if err != nil || limit < 1 {
		limit = 20
	}

	return page, limit
}

func paginationMap(page, limit int, total int64) fiber.Map {
	return fiber.Map{
		"page":        page,
		"limit":       limit,
		"total":       total,
		"total_pages": (total + int64(limit) - 1) / int64(limit),
	}
}

// statusForError maps domain sentinels onto HTTP status codes: not-found
// errors to 404, permission denials to 403, validation errors to 400 and
// everything else (storage failures) to 500.
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrRecipeNotFound),
		errors.Is(err, domain.ErrTagNotFound),
		errors.Is(err, domain.ErrIngredientNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrSubscriptionNotFound),
		errors.Is(err, domain.ErrRecipeNotFavorited),
		errors.Is(err, domain.ErrRecipeNotInCart):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrUserNotAllowed):
		return fiber.StatusForbidden
	case errors.Is(err, domain.ErrRecipeAlreadyExists),
		errors.Is(err, domain.ErrRecipeAlreadyFavorited),
		errors.Is(err, domain.ErrRecipeAlreadyInCart),
		errors.Is(err, domain.ErrAlreadySubscribed),
		errors.Is(err, domain.ErrTagAlreadyExists),
		errors.Is(err, domain.ErrIngredientAlreadyExists),
		errors.Is(err, domain.ErrEmailAlreadyExists),
		errors.Is(err, domain.ErrUsernameAlreadyExists),
		errors.Is(err, domain.ErrCredentialsInvalid),
		errors.Is(err, domain.ErrPasswordInvalid),
		errors.Is(err, domain.ErrInvalidImage),
		errors.Is(err, domain.ErrTokenExpired),
		errors.Is(err, domain.ErrTokenInvalid):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/Dmitriy839/foodgram-project-react/domain"
	"github.com/Dmitriy839/foodgram-project-react/internal/api/presenters"
	"github.com/Dmitriy839/foodgram-project-react/pkg/subscription"
)

type (
	SubscriptionHandler interface {
		Subscribe(c *fiber.Ctx) error
		Unsubscribe(c *fiber.Ctx) error
		GetSubscriptions(c *fiber.Ctx) error
	}

	subscriptionHandler struct {
		subscriptionService subscription.SubscriptionService
	}
)

func NewSubscriptionHandler(subscriptionService subscription.SubscriptionService) SubscriptionHandler {
	return &subscriptionHandler{
		subscriptionService: subscriptionService,
	}
}

func parseRecipesLimit(c *fiber.Ctx) int {
	limit, err := strconv.Atoi(c.Query("recipes_limit", "0"))
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}

func (h *subscriptionHandler) Subscribe(c *fiber.Ctx) error {
	authorID, err := strconv.Atoi(c.Params("id"))
	if err != nil || authorID < 1 {
		return presenters.ErrorResponse(c, fiber.StatusNotFound, domain.MessageFailedSubscribe, domain.ErrUserNotFound)
	}

	actor := currentActor(c)
	res, err := h.subscriptionService.Subscribe(c.Context(), actor.ID, uint(authorID), parseRecipesLimit(c))
	if err != nil {
		return presenters.ErrorResponse(c, statusForError(err), domain.MessageFailedSubscribe, err)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessSubscribe)
}

func (h *subscriptionHandler) Unsubscribe(c *fiber.Ctx) error {
	authorID, err := strconv.Atoi(c.Params("id"))
	if err != nil || authorID < 1 {
		return presenters.ErrorResponse(c, fiber.StatusNotFound, domain.MessageFailedUnsubscribe, domain.ErrUserNotFound)
	}

	actor := currentActor(c)
	if err := h.subscriptionService.Unsubscribe(c.Context(), actor.ID, uint(authorID)); err != nil {
		return presenters.ErrorResponse(c, statusForError(err), domain.MessageFailedUnsubscribe, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *subscriptionHandler) GetSubscriptions(c *fiber.Ctx) error {
	page, limit := parsePagination(c)
	actor := currentActor(c)

	subscriptions, count, err := h.subscriptionService.GetSubscriptions(c.Context(), actor.ID, page, limit, parseRecipesLimit(c))
	if err != nil {
		return presenters.ErrorResponse(c, statusForError(err), domain.MessageFailedGetSubscriptions, err)
	}

	return presenters.SuccessResponse(c, fiber.Map{
		"subscriptions": subscriptions,
		"pagination":    paginationMap(page, limit, count),
	}, fiber.StatusOK, domain.MessageSuccessGetSubscriptions)
}

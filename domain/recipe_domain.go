package domain

import (
	"errors"
)

var (
	MessageSuccessGetRecipes         = "success get recipes"
	MessageSuccessGetRecipeDetail    = "success get recipe detail"
	MessageSuccessCreateRecipe       = "recipe created successfully"
	MessageSuccessUpdateRecipe       = "recipe updated successfully"
	MessageSuccessDeleteRecipe       = "recipe deleted successfully"
	MessageSuccessAddFavorite        = "recipe added to favorites"
	MessageSuccessRemoveFavorite     = "recipe removed from favorites"
	MessageSuccessAddToCart          = "recipe added to shopping cart"
	MessageSuccessRemoveFromCart     = "recipe removed from shopping cart"
	MessageSuccessDownloadCart       = "shopping list generated"

	MessageFailedGetRecipes      = "failed to get recipes"
	MessageFailedGetRecipeDetail = "failed to get recipe detail"
	MessageFailedCreateRecipe    = "failed to create recipe"
	MessageFailedUpdateRecipe    = "failed to update recipe"
	MessageFailedDeleteRecipe    = "failed to delete recipe"
	MessageFailedAddFavorite     = "failed to add recipe to favorites"
	MessageFailedRemoveFavorite  = "failed to remove recipe from favorites"
	MessageFailedAddToCart       = "failed to add recipe to shopping cart"
	MessageFailedRemoveFromCart  = "failed to remove recipe from shopping cart"
	MessageFailedDownloadCart    = "failed to generate shopping list"

	ErrRecipeNotFound        = errors.New("recipe not found")
	ErrRecipeAlreadyExists   = errors.New("recipe with this name already exists for this author")
	ErrRecipeAlreadyFavorited = errors.New("recipe already in favorites")
	ErrRecipeNotFavorited    = errors.New("recipe not in favorites")
	ErrRecipeAlreadyInCart   = errors.New("recipe already in shopping cart")
	ErrRecipeNotInCart       = errors.New("recipe not in shopping cart")
	ErrInvalidImage          = errors.New("invalid base64 image payload")
)

type (
	RecipeIngredientRequest struct {
		ID     uint `json:"id" validate:"required"`
		Amount int  `json:"amount" validate:"gte=0,lte=65535"`
	}

	// SaveRecipeRequest is shared by create and update. An update replaces
	// the full tag and ingredient sets with what the payload carries.
	SaveRecipeRequest struct {
		Name        string                    `json:"name" validate:"required,max=125"`
		Text        string                    `json:"text" validate:"required"`
		Image       string                    `json:"image" validate:"required"`
		CookingTime int                       `json:"cooking_time" validate:"gte=0,lte=65535"`
		Tags        []uint                    `json:"tags" validate:"required,min=1"`
		Ingredients []RecipeIngredientRequest `json:"ingredients" validate:"required,min=1,dive"`
	}

	RecipeIngredientResponse struct {
		ID              uint   `json:"id"`
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
		Amount          int    `json:"amount"`
	}

	RecipeResponse struct {
		ID               uint                       `json:"id"`
		Tags             []TagResponse              `json:"tags"`
		Author           UserResponse               `json:"author"`
		Ingredients      []RecipeIngredientResponse `json:"ingredients"`
		IsFavorited      bool                       `json:"is_favorited"`
		IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
		Name             string                     `json:"name"`
		Image            string                     `json:"image"`
		Text             string                     `json:"text"`
		CookingTime      int                        `json:"cooking_time"`
	}

	ShortRecipeResponse struct {
		ID          uint   `json:"id"`
		Name        string `json:"name"`
		Image       string `json:"image"`
		CookingTime int    `json:"cooking_time"`
	}

	// RecipeFilter narrows the recipe list. The viewer-relative flags are
	// ignored for anonymous viewers.
	RecipeFilter struct {
		Tags             []string
		AuthorID         uint
		IsFavorited      bool
		IsInShoppingCart bool
	}

	// ShoppingListItem is one grouped-sum row of the shopping list
	// aggregation.
	ShoppingListItem struct {
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
		Amount          int    `json:"amount"`
	}
)

package recipe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/Dmitriy839/foodgram-project-react/domain"
	"github.com/Dmitriy839/foodgram-project-react/entities"
	"github.com/Dmitriy839/foodgram-project-react/internal/utils/storage"
	"github.com/Dmitriy839/foodgram-project-react/pkg/ingredient"
	"github.com/Dmitriy839/foodgram-project-react/pkg/policy"
	"github.com/Dmitriy839/foodgram-project-react/pkg/tag"
)

// ShoppingListHeader is the first line of the downloadable shopping list.
const ShoppingListHeader = "Купить в магазине:"

type (
	// SubscriptionChecker answers whether userID follows authorID. The
	// subscription repository satisfies it.
	SubscriptionChecker interface {
		IsSubscribed(ctx context.Context, userID, authorID uint) (bool, error)
	}

	RecipeService interface {
		CreateRecipe(ctx context.Context, req domain.SaveRecipeRequest, actor policy.Actor) (domain.RecipeResponse, error)
		UpdateRecipe(ctx context.Context, id uint, req domain.SaveRecipeRequest, actor policy.Actor) (domain.RecipeResponse, error)
		DeleteRecipe(ctx context.Context, id uint, actor policy.Actor) error
		GetRecipeByID(ctx context.Context, id uint, viewerID uint) (domain.RecipeResponse, error)
		GetRecipes(ctx context.Context, filter domain.RecipeFilter, viewerID uint, page, limit int) ([]domain.RecipeResponse, int64, error)

		AddFavorite(ctx context.Context, recipeID, userID uint) (domain.ShortRecipeResponse, error)
		RemoveFavorite(ctx context.Context, recipeID, userID uint) error
		AddToCart(ctx context.Context, recipeID, userID uint) (domain.ShortRecipeResponse, error)
		RemoveFromCart(ctx context.Context, recipeID, userID uint) error

		DownloadShoppingCart(ctx context.Context, userID uint) (string, error)
	}

	recipeService struct {
		recipeRepository       RecipeRepository
		tagRepository          tag.TagRepository
		ingredientRepository   ingredient.IngredientRepository
		subscriptionRepository SubscriptionChecker
		s3                     storage.AwsS3
	}
)

func NewRecipeService(
	recipeRepository RecipeRepository,
	tagRepository tag.TagRepository,
	ingredientRepository ingredient.IngredientRepository,
	subscriptionRepository SubscriptionChecker,
	s3 storage.AwsS3,
) RecipeService {
	return &recipeService{
		recipeRepository:       recipeRepository,
		tagRepository:          tagRepository,
		ingredientRepository:   ingredientRepository,
		subscriptionRepository: subscriptionRepository,
		s3:                     s3,
	}
}

// resolveTags loads the referenced tags and fails when any id is unknown.
func (s *recipeService) resolveTags(ctx context.Context, ids []uint) ([]*entities.Tag, error) {
	tags, err := s.tagRepository.GetTagsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(tags) != len(uniqueIDs(ids)) {
		return nil, domain.ErrTagNotFound
	}
	return tags, nil
}

// resolveIngredients validates that every referenced ingredient exists and
// builds the join rows.
func (s *recipeService) resolveIngredients(ctx context.Context, reqs []domain.RecipeIngredientRequest) ([]*entities.RecipeIngredient, error) {
	ids := make([]uint, 0, len(reqs))
	for _, req := range reqs {
		ids = append(ids, req.ID)
	}

	found, err := s.ingredientRepository.GetIngredientsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(found) != len(uniqueIDs(ids)) {
		return nil, domain.ErrIngredientNotFound
	}

	rows := make([]*entities.RecipeIngredient, 0, len(reqs))
	for _, req := range reqs {
		rows = append(rows, &entities.RecipeIngredient{
			IngredientID: req.ID,
			Amount:       req.Amount,
		})
	}
	return rows, nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	result := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}

func (s *recipeService) uploadImage(ctx context.Context, payload string) (string, error) {
	url, err := s.s3.UploadBase64Image(ctx, "recipes/image", payload)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidBase64Payload) {
			return "", domain.ErrInvalidImage
		}
		return "", err
	}
	return url, nil
}

func (s *recipeService) CreateRecipe(ctx context.Context, req domain.SaveRecipeRequest, actor policy.Actor) (domain.RecipeResponse, error) {
	if !actor.Authenticated {
		return domain.RecipeResponse{}, domain.ErrUserNotAllowed
	}

	// Friendlier error than the raw constraint violation; the unique
	// index still guards against concurrent creates.
	if _, err := s.recipeRepository.GetRecipeByNameAndAuthor(ctx, req.Name, actor.ID); err == nil {
		return domain.RecipeResponse{}, domain.ErrRecipeAlreadyExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.RecipeResponse{}, err
	}

	tags, err := s.resolveTags(ctx, req.Tags)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	ingredients, err := s.resolveIngredients(ctx, req.Ingredients)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	imageURL, err := s.uploadImage(ctx, req.Image)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	recipe := &entities.Recipe{
		AuthorID:    actor.ID,
		Name:        req.Name,
		Image:       imageURL,
		Text:        req.Text,
		CookingTime: req.CookingTime,
		Tags:        tags,
	}

	if err := s.recipeRepository.CreateRecipe(ctx, recipe, ingredients); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.RecipeResponse{}, domain.ErrRecipeAlreadyExists
		}
		return domain.RecipeResponse{}, err
	}

	return s.GetRecipeByID(ctx, recipe.ID, actor.ID)
}

func (s *recipeService) UpdateRecipe(ctx context.Context, id uint, req domain.SaveRecipeRequest, actor policy.Actor) (domain.RecipeResponse, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RecipeResponse{}, domain.ErrRecipeNotFound
		}
		return domain.RecipeResponse{}, err
	}

	if !policy.AuthorAdminOrReadOnly("PATCH", actor, recipe.AuthorID) {
		return domain.RecipeResponse{}, domain.ErrUserNotAllowed
	}

	if req.Name != recipe.Name {
		if _, err := s.recipeRepository.GetRecipeByNameAndAuthor(ctx, req.Name, recipe.AuthorID); err == nil {
			return domain.RecipeResponse{}, domain.ErrRecipeAlreadyExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RecipeResponse{}, err
		}
	}

	tags, err := s.resolveTags(ctx, req.Tags)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	ingredients, err := s.resolveIngredients(ctx, req.Ingredients)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	imageURL, err := s.uploadImage(ctx, req.Image)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	recipe.Name = req.Name
	recipe.Text = req.Text
	recipe.Image = imageURL
	recipe.CookingTime = req.CookingTime

	if err := s.recipeRepository.UpdateRecipe(ctx, recipe, tags, ingredients); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.RecipeResponse{}, domain.ErrRecipeAlreadyExists
		}
		return domain.RecipeResponse{}, err
	}

	return s.GetRecipeByID(ctx, recipe.ID, actor.ID)
}

func (s *recipeService) DeleteRecipe(ctx context.Context, id uint, actor policy.Actor) error {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRecipeNotFound
		}
		return err
	}

	if !policy.AuthorAdminOrReadOnly("DELETE", actor, recipe.AuthorID) {
		return domain.ErrUserNotAllowed
	}

	return s.recipeRepository.DeleteRecipe(ctx, id)
}

func (s *recipeService) toRecipeResponse(ctx context.Context, recipe *entities.Recipe, viewerID uint) (domain.RecipeResponse, error) {
	tags := make([]domain.TagResponse, 0, len(recipe.Tags))
	for _, t := range recipe.Tags {
		tags = append(tags, domain.TagResponse{
			ID:    t.ID,
			Name:  t.Name,
			Color: t.Color,
			Slug:  t.Slug,
		})
	}

	ingredients := make([]domain.RecipeIngredientResponse, 0, len(recipe.Ingredients))
	for _, ri := range recipe.Ingredients {
		row := domain.RecipeIngredientResponse{
			ID:     ri.IngredientID,
			Amount: ri.Amount,
		}
		if ri.Ingredient != nil {
			row.Name = ri.Ingredient.Name
			row.MeasurementUnit = ri.Ingredient.MeasurementUnit
		}
		ingredients = append(ingredients, row)
	}

	author := domain.UserResponse{}
	if recipe.Author != nil {
		isSubscribed, err := s.subscriptionRepository.IsSubscribed(ctx, viewerID, recipe.AuthorID)
		if err != nil {
			return domain.RecipeResponse{}, err
		}
		author = domain.UserResponse{
			ID:           recipe.Author.ID,
			Email:        recipe.Author.Email,
			Username:     recipe.Author.Username,
			FirstName:    recipe.Author.FirstName,
			LastName:     recipe.Author.LastName,
			IsSubscribed: isSubscribed,
		}
	}

	isFavorited, err := s.recipeRepository.IsFavorited(ctx, viewerID, recipe.ID)
	if err != nil {
		return domain.RecipeResponse{}, err
	}
	isInCart, err := s.recipeRepository.IsInCart(ctx, viewerID, recipe.ID)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	return domain.RecipeResponse{
		ID:               recipe.ID,
		Tags:             tags,
		Author:           author,
		Ingredients:      ingredients,
		IsFavorited:      isFavorited,
		IsInShoppingCart: isInCart,
		Name:             recipe.Name,
		Image:            recipe.Image,
		Text:             recipe.Text,
		CookingTime:      recipe.CookingTime,
	}, nil
}

func (s *recipeService) GetRecipeByID(ctx context.Context, id uint, viewerID uint) (domain.RecipeResponse, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RecipeResponse{}, domain.ErrRecipeNotFound
		}
		return domain.RecipeResponse{}, err
	}

	return s.toRecipeResponse(ctx, recipe, viewerID)
}

func (s *recipeService) GetRecipes(ctx context.Context, filter domain.RecipeFilter, viewerID uint, page, limit int) ([]domain.RecipeResponse, int64, error) {
	recipes, count, err := s.recipeRepository.GetRecipes(ctx, filter, viewerID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	result := make([]domain.RecipeResponse, 0, len(recipes))
	for _, recipe := range recipes {
		res, err := s.toRecipeResponse(ctx, recipe, viewerID)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, res)
	}

	return result, count, nil
}

func toShortRecipeResponse(recipe *entities.Recipe) domain.ShortRecipeResponse {
	return domain.ShortRecipeResponse{
		ID:          recipe.ID,
		Name:        recipe.Name,
		Image:       recipe.Image,
		CookingTime: recipe.CookingTime,
	}
}

func (s *recipeService) AddFavorite(ctx context.Context, recipeID, userID uint) (domain.ShortRecipeResponse, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ShortRecipeResponse{}, domain.ErrRecipeNotFound
		}
		return domain.ShortRecipeResponse{}, err
	}

	if err := s.recipeRepository.AddFavorite(ctx, userID, recipeID); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ShortRecipeResponse{}, domain.ErrRecipeAlreadyFavorited
		}
		return domain.ShortRecipeResponse{}, err
	}

	return toShortRecipeResponse(recipe), nil
}

func (s *recipeService) RemoveFavorite(ctx context.Context, recipeID, userID uint) error {
	if _, err := s.recipeRepository.GetRecipeByID(ctx, recipeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRecipeNotFound
		}
		return err
	}

	if err := s.recipeRepository.RemoveFavorite(ctx, userID, recipeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRecipeNotFavorited
		}
		return err
	}
	return nil
}

func (s *recipeService) AddToCart(ctx context.Context, recipeID, userID uint) (domain.ShortRecipeResponse, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ShortRecipeResponse{}, domain.ErrRecipeNotFound
		}
		return domain.ShortRecipeResponse{}, err
	}

	if err := s.recipeRepository.AddCartItem(ctx, userID, recipeID); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ShortRecipeResponse{}, domain.ErrRecipeAlreadyInCart
		}
		return domain.ShortRecipeResponse{}, err
	}

	return toShortRecipeResponse(recipe), nil
}

func (s *recipeService) RemoveFromCart(ctx context.Context, recipeID, userID uint) error {
	if _, err := s.recipeRepository.GetRecipeByID(ctx, recipeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRecipeNotFound
		}
		return err
	}

	if err := s.recipeRepository.RemoveCartItem(ctx, userID, recipeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRecipeNotInCart
		}
		return err
	}
	return nil
}

// DownloadShoppingCart renders the aggregated shopping list as plain text:
// a header line, then one "<name> (<unit>) - <amount>" line per group.
func (s *recipeService) DownloadShoppingCart(ctx context.Context, userID uint) (string, error) {
	items, err := s.recipeRepository.GetShoppingList(ctx, userID)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(ShoppingListHeader)
	for _, item := range items {
		sb.WriteString(fmt.Sprintf("\n%s (%s) - %d", item.Name, item.MeasurementUnit, item.Amount))
	}

	return sb.String(), nil
}

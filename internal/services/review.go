package service

import (
	"context"

	"github.com/furnicove/storefront-api/internal/cache"
	"github.com/furnicove/storefront-api/internal/errors"
	"github.com/furnicove/storefront-api/internal/models"
	repository "github.com/furnicove/storefront-api/internal/repositories"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

type ReviewService interface {
	CreateReview(ctx context.Context, claims *models.Claims, req *models.CreateReviewRequest) (*models.Review, error)
	ListReviews(ctx context.Context, productID int64) (*models.ReviewList, error)
}

type reviewService struct {
	reviewRepo  repository.ReviewRepository
	productRepo repository.ProductRepository
	cache       cache.Cache
	sanitizer   *bluemonday.Policy
}

func NewReviewService(reviewRepo repository.ReviewRepository, productRepo repository.ProductRepository, c cache.Cache) ReviewService {
	return &reviewService{
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
		cache:       c,
		sanitizer:   bluemonday.StrictPolicy(),
	}
}

func (s *reviewService) CreateReview(ctx context.Context, claims *models.Claims, req *models.CreateReviewRequest) (*models.Review, error) {

	if _, err := s.productRepo.GetProductByID(ctx, req.ProductID); err != nil {
		return nil, errors.NotFoundError("Product not found").WithError(err)
	}

	review := &models.Review{
		ID:        uuid.New(),
		ProductID: req.ProductID,
		UserID:    claims.UserID,
		UserName:  claims.Name,
		Rating:    req.Rating,
		Content:   s.sanitizer.Sanitize(req.Content),
	}

	if err := s.reviewRepo.CreateReview(ctx, review); err != nil {
		return nil, errors.DatabaseError("Failed to submit review").WithError(err)
	}

	s.refreshProductRating(ctx, req.ProductID)

	return review, nil
}

// ListReviews returns the rows plus the aggregate, recomputed on every
// read rather than trusted from the product row.
func (s *reviewService) ListReviews(ctx context.Context, productID int64) (*models.ReviewList, error) {

	reviews, err := s.reviewRepo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to fetch reviews").WithError(err)
	}

	count, average := aggregate(reviews)

	return &models.ReviewList{
		Reviews: reviews,
		Count:   count,
		Average: average,
	}, nil
}

func aggregate(reviews []models.Review) (int, float64) {

	if len(reviews) == 0 {
		return 0, 0
	}

	var sum int

	for _, review := range reviews {
		sum += review.Rating
	}

	return len(reviews), float64(sum) / float64(len(reviews))
}

// refreshProductRating denormalizes the aggregate onto the product row so
// catalog listings can show it without a join. Best effort; listings fall
// back to the stale value if this write fails.
func (s *reviewService) refreshProductRating(ctx context.Context, productID int64) {

	reviews, err := s.reviewRepo.ListByProduct(ctx, productID)
	if err != nil {
		return
	}

	count, average := aggregate(reviews)

	if err := s.productRepo.UpdateRating(ctx, productID, average, count); err != nil {
		return
	}

	s.cache.Delete(ctx, cache.ProductsKey)
}

package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/furnicove/storefront-api/internal/cache"
	"github.com/furnicove/storefront-api/internal/errors"
	"github.com/furnicove/storefront-api/internal/models"
	repository "github.com/furnicove/storefront-api/internal/repositories"
	"github.com/google/uuid"
)

const (
	OpAdd    = "add"
	OpUpdate = "update"
	OpRemove = "remove"
)

type CartService interface {
	GetCart(ctx context.Context, userID string) (*models.CartResponse, error)
	AddToCart(ctx context.Context, userID string, productID int64) (*models.CartActionResult, error)
	UpdateQuantity(ctx context.Context, userID string, itemID uuid.UUID, quantity int) (*models.Cart, error)
	RemoveItem(ctx context.Context, userID string, itemID uuid.UUID) (*models.Cart, error)
	ClearCart(ctx context.Context, userID string) error
	IsOperating(op string, userID string, entityID any) bool
}

// operationSet tracks mutations currently in flight, keyed by operation
// type and entity, so a double-submitted add or remove is rejected instead
// of racing itself.
type operationSet struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func newOperationSet() *operationSet {
	return &operationSet{keys: make(map[string]struct{})}
}

func (o *operationSet) tryBegin(key string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, exists := o.keys[key]; exists {
		return false
	}

	o.keys[key] = struct{}{}

	return true
}

func (o *operationSet) end(key string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	delete(o.keys, key)
}

func (o *operationSet) contains(key string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	_, exists := o.keys[key]

	return exists
}

func opKey(op, userID string, entityID any) string {
	return fmt.Sprintf("%s-%s-%v", op, userID, entityID)
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	cache       cache.Cache
	ops         *operationSet
}

func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository, c cache.Cache) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		cache:       c,
		ops:         newOperationSet(),
	}
}

// snapshot returns the cached cart, falling back to the store on a miss.
// The cache is a convenience copy only; Postgres stays authoritative.
func (s *cartService) snapshot(ctx context.Context, userID string) ([]models.CartItem, error) {

	key := cache.Key(cache.CartKeyPrefix, userID)

	var items []models.CartItem

	if hit, err := s.cache.Get(ctx, key, &items); err == nil && hit {
		return items, nil
	}

	items, err := s.cartRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, items, 0); err != nil {
		// a stale or missing snapshot only costs a refetch
		return items, nil
	}

	return items, nil
}

func (s *cartService) storeSnapshot(ctx context.Context, userID string, items []models.CartItem) {
	s.cache.Set(ctx, cache.Key(cache.CartKeyPrefix, userID), items, 0)
}

// revert discards the local snapshot and reloads the authoritative cart
// after a failed write. Wholesale refetch, not a targeted compensation.
func (s *cartService) revert(ctx context.Context, userID string) {

	items, err := s.cartRepo.ListByUser(ctx, userID)
	if err != nil {
		s.cache.Delete(ctx, cache.Key(cache.CartKeyPrefix, userID))
		return
	}

	s.storeSnapshot(ctx, userID, items)
}

func (s *cartService) GetCart(ctx context.Context, userID string) (*models.CartResponse, error) {

	items, err := s.snapshot(ctx, userID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to fetch cart").WithError(err)
	}

	cart := &models.Cart{UserID: userID, Items: items}

	total, err := s.cartTotal(ctx, items)
	if err != nil {
		return nil, err
	}

	return &models.CartResponse{
		Cart:       cart,
		TotalItems: cart.TotalItems(),
		Total:      total,
	}, nil
}

// cartTotal prices the cart with discounts applied, the same computation
// checkout uses. Items whose product has since been removed contribute
// nothing.
func (s *cartService) cartTotal(ctx context.Context, items []models.CartItem) (float64, error) {

	if len(items) == 0 {
		return 0, nil
	}

	products, err := s.productRepo.ListProducts(ctx)
	if err != nil {
		return 0, errors.DatabaseError("Failed to price cart").WithError(err)
	}

	byID := make(map[int64]*models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	var total float64

	for _, item := range items {
		if product, ok := byID[item.ProductID]; ok {
			total += product.DiscountedPrice() * float64(item.Quantity)
		}
	}

	return total, nil
}

func (s *cartService) AddToCart(ctx context.Context, userID string, productID int64) (*models.CartActionResult, error) {

	key := opKey(OpAdd, userID, productID)
	if !s.ops.tryBegin(key) {
		return nil, errors.ConflictError("Operation already in progress")
	}

	defer s.ops.end(key)

	if _, err := s.productRepo.GetProductByID(ctx, productID); err != nil {
		return nil, errors.NotFoundError("Product not found").WithError(err)
	}

	// Insert-or-increment at the store; a duplicate-add race collapses
	// into a quantity bump instead of a constraint failure.
	item, inserted, err := s.cartRepo.AddOrIncrement(ctx, userID, productID)
	if err != nil {
		s.revert(ctx, userID)
		return nil, errors.DatabaseError("Failed to add item to cart").WithError(err)
	}

	s.revert(ctx, userID) // refresh snapshot from the authoritative rows

	if inserted {
		return &models.CartActionResult{
			Action:  models.CartActionAdded,
			Message: "Added to cart",
			Item:    item,
		}, nil
	}

	return &models.CartActionResult{
		Action:  models.CartActionIncreased,
		Message: "Quantity increased",
		Item:    item,
	}, nil
}

func (s *cartService) UpdateQuantity(ctx context.Context, userID string, itemID uuid.UUID, quantity int) (*models.Cart, error) {

	if quantity < 1 {
		return s.RemoveItem(ctx, userID, itemID)
	}

	key := opKey(OpUpdate, userID, itemID)
	if !s.ops.tryBegin(key) {
		return nil, errors.ConflictError("Operation already in progress")
	}

	defer s.ops.end(key)

	item, err := s.ownedItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}

	// optimistic: mutate the snapshot first, then persist
	items, err := s.snapshot(ctx, userID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to fetch cart").WithError(err)
	}

	for i := range items {
		if items[i].ID == item.ID {
			items[i].Quantity = quantity
		}
	}

	s.storeSnapshot(ctx, userID, items)

	if err := s.cartRepo.UpdateQuantity(ctx, itemID, quantity); err != nil {
		s.revert(ctx, userID)
		return nil, errors.DatabaseError("Failed to update quantity").WithError(err)
	}

	return &models.Cart{UserID: userID, Items: items}, nil
}

func (s *cartService) RemoveItem(ctx context.Context, userID string, itemID uuid.UUID) (*models.Cart, error) {

	key := opKey(OpRemove, userID, itemID)
	if !s.ops.tryBegin(key) {
		return nil, errors.ConflictError("Operation already in progress")
	}

	defer s.ops.end(key)

	item, err := s.ownedItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}

	items, err := s.snapshot(ctx, userID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to fetch cart").WithError(err)
	}

	remaining := items[:0]

	for _, existing := range items {
		if existing.ID != item.ID {
			remaining = append(remaining, existing)
		}
	}

	s.storeSnapshot(ctx, userID, remaining)

	if err := s.cartRepo.DeleteItem(ctx, itemID); err != nil {
		s.revert(ctx, userID)
		return nil, errors.DatabaseError("Failed to remove item").WithError(err)
	}

	return &models.Cart{UserID: userID, Items: remaining}, nil
}

func (s *cartService) ClearCart(ctx context.Context, userID string) error {

	if err := s.cartRepo.DeleteByUser(ctx, userID); err != nil {
		return errors.DatabaseError("Failed to clear cart").WithError(err)
	}

	s.cache.Delete(ctx, cache.Key(cache.CartKeyPrefix, userID))

	return nil
}

func (s *cartService) IsOperating(op string, userID string, entityID any) bool {
	return s.ops.contains(opKey(op, userID, entityID))
}

func (s *cartService) ownedItem(ctx context.Context, userID string, itemID uuid.UUID) (*models.CartItem, error) {

	item, err := s.cartRepo.GetItem(ctx, itemID)
	if err != nil {
		return nil, errors.NotFoundError("Item not found in the cart").WithError(err)
	}

	if item.UserID != userID {
		return nil, errors.ForbiddenError("Cart item belongs to another user")
	}

	return item, nil
}

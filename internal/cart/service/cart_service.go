package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/NitheshChakaravarthySeelan/CheckoutX/internal/cart/cache"
	"github.com/NitheshChakaravarthySeelan/CheckoutX/internal/cart/clients"
	"github.com/NitheshChakaravarthySeelan/CheckoutX/internal/cart/domain"
	"github.com/NitheshChakaravarthySeelan/CheckoutX/internal/cart/repository"
	"golang.org/x/sync/singleflight"
)

// maxReplaceAttempts bounds the re-read-and-reapply loop when a
// compare-and-swap replace loses to a concurrent mutation.
const maxReplaceAttempts = 3

const invalidateTimeout = time.Second

// CartService owns the cart aggregate: it validates against the catalog
// and inventory collaborators before mutating, prices reads through the
// discount and tax collaborators, and persists through CartRepository.
type CartService struct {
	repo      repository.CartRepository
	cache     cache.CartCache
	catalog   clients.CatalogClient
	inventory clients.InventoryClient
	discounts clients.DiscountClient
	taxes     clients.TaxClient
	sfg       singleflight.Group // Prevents cache stampede on reads
}

func NewCartService(
	repo repository.CartRepository,
	cache cache.CartCache,
	catalog clients.CatalogClient,
	inventory clients.InventoryClient,
	discounts clients.DiscountClient,
	taxes clients.TaxClient,
) *CartService {
	return &CartService{
		repo:      repo,
		cache:     cache,
		catalog:   catalog,
		inventory: inventory,
		discounts: discounts,
		taxes:     taxes,
	}
}

// AddItem validates the product and stock, then merges the quantity into
// the user's cart. When the product is already in the cart the stored
// snapshot (name, price, image) wins; only the quantity grows. Calling
// AddItem twice with the same arguments adds the quantity twice: each
// call is an independent intent, not an idempotent upsert.
func (s *CartService) AddItem(ctx context.Context, cc domain.CallContext, userID, productID string, quantity int) (*domain.Cart, error) {
	if quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}

	product, err := s.catalog.GetProduct(ctx, cc, productID)
	if err != nil {
		return nil, fmt.Errorf("catalog lookup: %w", err)
	}
	if product == nil || product.ID != productID {
		return nil, domain.ErrProductNotFound
	}

	stock, err := s.inventory.CheckStock(ctx, cc, productID, quantity)
	if err != nil {
		return nil, fmt.Errorf("stock check: %w", err)
	}
	if !stock.Available {
		return nil, &domain.InsufficientStockError{Message: stock.Message}
	}

	return s.mutate(ctx, userID, func(cart *domain.Cart) error {
		if i := cart.FindItem(productID); i >= 0 {
			cart.Items[i].Quantity += quantity
			return nil
		}
		cart.Items = append(cart.Items, domain.CartItem{
			ProductID:      product.ID,
			Quantity:       quantity,
			Name:           product.Name,
			UnitPriceCents: product.UnitPriceCents,
			ImageURL:       product.ImageURL,
		})
		return nil
	})
}

// UpdateQuantity overwrites an item's quantity in place. A non-positive
// quantity delegates to RemoveItem. Stock is re-validated for the new
// absolute quantity, not the delta.
func (s *CartService) UpdateQuantity(ctx context.Context, cc domain.CallContext, userID, productID string, quantity int) (*domain.Cart, error) {
	if quantity <= 0 {
		return s.RemoveItem(ctx, cc, userID, productID)
	}

	stock, err := s.inventory.CheckStock(ctx, cc, productID, quantity)
	if err != nil {
		return nil, fmt.Errorf("stock check: %w", err)
	}
	if !stock.Available {
		return nil, &domain.InsufficientStockError{Message: stock.Message}
	}

	return s.mutate(ctx, userID, func(cart *domain.Cart) error {
		i := cart.FindItem(productID)
		if i < 0 {
			return domain.ErrItemNotFound
		}
		cart.Items[i].Quantity = quantity
		return nil
	})
}

// RemoveItem drops the line with the given product id. When filtering
// does not shrink the item count the item was never there, which also
// covers the no-prior-cart case.
func (s *CartService) RemoveItem(ctx context.Context, cc domain.CallContext, userID, productID string) (*domain.Cart, error) {
	return s.mutate(ctx, userID, func(cart *domain.Cart) error {
		filtered := cart.Items[:0:0]
		for _, item := range cart.Items {
			if item.ProductID != productID {
				filtered = append(filtered, item)
			}
		}
		if len(filtered) == len(cart.Items) {
			return domain.ErrItemNotFound
		}
		cart.Items = filtered
		return nil
	})
}

// GetCartDetails returns the cart with a fresh price breakdown, or
// (nil, nil) when the user has no cart. The subtotal comes from the
// persisted snapshots, never from a live catalog lookup. Discount and
// tax are fetched independently; either failure degrades that
// contribution to zero rather than failing the read.
func (s *CartService) GetCartDetails(ctx context.Context, cc domain.CallContext, userID string) (*domain.CartDetails, error) {
	cart, err := s.getCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, nil
	}

	subtotal := cart.SubtotalCents()

	var discount, tax int64
	discount, err = s.discounts.CalculateDiscounts(ctx, cc, cart.Items, userID)
	if err != nil {
		log.Printf("discount calculation degraded for user %s: %v", userID, err)
		discount = 0
	}
	tax, err = s.taxes.CalculateTax(ctx, cc, cart.Items, userID)
	if err != nil {
		log.Printf("tax calculation degraded for user %s: %v", userID, err)
		tax = 0
	}

	return &domain.CartDetails{
		Cart:               *cart,
		SubtotalCents:      subtotal,
		TotalDiscountCents: discount,
		TotalTaxCents:      tax,
		TotalPriceCents:    subtotal - discount + tax,
	}, nil
}

// ClearCart deletes the user's cart outright. It is driven by the
// order-events consumer after a downstream order confirmation, not by
// checkout initiation.
func (s *CartService) ClearCart(ctx context.Context, userID string) error {
	err := s.repo.Delete(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrCartNotFound) {
		return fmt.Errorf("delete cart: %w", err)
	}

	s.invalidateCache(userID)
	return nil
}

// getCart reads the persisted aggregate through the cache, collapsing
// concurrent misses for the same user into one repository read. Returns
// nil when the user has no cart.
func (s *CartService) getCart(ctx context.Context, userID string) (*domain.Cart, error) {
	v, err, _ := s.sfg.Do(userID, func() (interface{}, error) {
		cart, err := s.cache.Get(ctx, userID)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("cache get error: %v", err) // log cache error but continue
		}

		cart, errGet := s.repo.FindByUser(ctx, userID)
		if errors.Is(errGet, repository.ErrCartNotFound) {
			return (*domain.Cart)(nil), nil
		}
		if errGet != nil {
			return nil, errGet
		}

		go func() {
			if errSet := s.cache.Set(context.Background(), userID, cart); errSet != nil {
				log.Printf("cache set error: %v", errSet)
			}
		}()

		return cart, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Cart), nil
}

// mutate runs a read-modify-write cycle against the repository, retrying
// a bounded number of times when the compare-and-swap replace reports a
// conflict. The cart is created lazily on the first mutation.
func (s *CartService) mutate(ctx context.Context, userID string, apply func(*domain.Cart) error) (*domain.Cart, error) {
	var lastErr error
	for attempt := 0; attempt < maxReplaceAttempts; attempt++ {
		cart, err := s.loadOrCreate(ctx, userID)
		if errors.Is(err, repository.ErrVersionConflict) {
			lastErr = err
			continue
		}
		if err != nil {
			return nil, err
		}

		if err := apply(cart); err != nil {
			return nil, err
		}

		saved, err := s.repo.Replace(ctx, cart)
		if errors.Is(err, repository.ErrVersionConflict) {
			lastErr = err
			continue
		}
		if err != nil {
			return nil, err
		}

		s.invalidateCache(userID)
		return saved, nil
	}
	return nil, fmt.Errorf("cart update for user %s kept conflicting: %w", userID, lastErr)
}

func (s *CartService) loadOrCreate(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, err := s.repo.FindByUser(ctx, userID)
	if errors.Is(err, repository.ErrCartNotFound) {
		return s.repo.Create(ctx, userID)
	}
	if err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *CartService) invalidateCache(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), invalidateTimeout)
	defer cancel()
	if err := s.cache.Delete(ctx, userID); err != nil {
		log.Printf("cache invalidate error: %v", err)
	}
}

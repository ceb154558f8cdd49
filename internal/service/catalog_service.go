package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"martapp/kiosk/internal/binding"
	"martapp/kiosk/internal/blob"
	"martapp/kiosk/internal/model"
	"martapp/kiosk/internal/repository"
)

// CatalogService manages products, brands, and discount options.
type CatalogService interface {
	Load(ctx context.Context)
	Close()

	Products() []model.Product
	ToggleManaged(productID int) error
	UpdateProductImage(ctx context.Context, productID int, name, mimeType string, data []byte) (string, error)

	Brands() []string
	AddBrand(name string) error
	RemoveBrand(name string) error

	Discounts() []int
	AddDiscount(percent int) error
	RemoveDiscount(percent int) error
}

type catalogService struct {
	blobs    repository.BlobStore
	resolver *blob.Resolver
	logger   *zap.Logger

	products  *binding.Cell[[]model.Product]
	brands    *binding.Cell[[]string]
	discounts *binding.Cell[[]int]
}

func NewCatalogService(kv repository.KVStore, blobs repository.BlobStore, resolver *blob.Resolver, logger *zap.Logger) CatalogService {
	return &catalogService{
		blobs:     blobs,
		resolver:  resolver,
		logger:    logger,
		products:  binding.New(kv, logger, "products", model.InitialInventory()),
		brands:    binding.New(kv, logger, "brands", model.InitialBrands()),
		discounts: binding.New(kv, logger, "discountOptions", []int{10, 50, 70}),
	}
}

func (s *catalogService) Load(ctx context.Context) {
	s.products.Load(ctx)
	s.brands.Load(ctx)
	s.discounts.Load(ctx)
}

func (s *catalogService) Close() {
	s.products.Close()
	s.brands.Close()
	s.discounts.Close()
}

func (s *catalogService) Products() []model.Product { return s.products.Get() }

func (s *catalogService) ToggleManaged(productID int) error {
	found := false
	s.products.Update(func(products []model.Product) []model.Product {
		out := make([]model.Product, len(products))
		copy(out, products)
		for i := range out {
			if out[i].ID == productID {
				out[i].Managed = !out[i].Managed
				found = true
			}
		}
		return out
	})
	if !found {
		return ErrProductNotFound
	}
	return nil
}

// UpdateProductImage stores the image blob and points the product at it,
// deleting the replaced image so blob keys are never silently reused.
func (s *catalogService) UpdateProductImage(ctx context.Context, productID int, name, mimeType string, data []byte) (string, error) {
	var previous string
	found := false
	for _, p := range s.products.Get() {
		if p.ID == productID {
			previous = p.ImageKey
			found = true
			break
		}
	}
	if !found {
		return "", ErrProductNotFound
	}

	key := fmt.Sprintf("product-image-%d-%d-%s", productID, time.Now().UnixMilli(), uuid.NewString())
	record := &model.BlobRecord{Key: key, Name: name, MIMEType: mimeType, Data: data}
	if err := s.blobs.Put(ctx, record); err != nil {
		return "", fmt.Errorf("store product image: %w", err)
	}

	s.products.Update(func(products []model.Product) []model.Product {
		out := make([]model.Product, len(products))
		copy(out, products)
		for i := range out {
			if out[i].ID == productID {
				out[i].ImageKey = key
			}
		}
		return out
	})

	if previous != "" {
		if err := s.blobs.Delete(ctx, previous); err != nil {
			s.logger.Warn("failed to delete replaced product image",
				zap.String("key", previous), zap.Error(err))
		}
		s.resolver.Release(previous)
	}
	return key, nil
}

func (s *catalogService) Brands() []string { return s.brands.Get() }

func (s *catalogService) AddBrand(name string) error {
	if name == "" {
		return ErrBrandNotFound
	}
	for _, b := range s.brands.Get() {
		if b == name {
			return ErrBrandExists
		}
	}
	s.brands.Update(func(brands []string) []string {
		out := append(append([]string(nil), brands...), name)
		sort.Strings(out)
		return out
	})
	return nil
}

func (s *catalogService) RemoveBrand(name string) error {
	found := false
	s.brands.Update(func(brands []string) []string {
		out := make([]string, 0, len(brands))
		for _, b := range brands {
			if b == name {
				found = true
				continue
			}
			out = append(out, b)
		}
		return out
	})
	if !found {
		return ErrBrandNotFound
	}
	return nil
}

func (s *catalogService) Discounts() []int { return s.discounts.Get() }

func (s *catalogService) AddDiscount(percent int) error {
	if percent <= 0 || percent > 100 {
		return ErrDiscountInvalid
	}
	for _, d := range s.discounts.Get() {
		if d == percent {
			return ErrDiscountExists
		}
	}
	s.discounts.Update(func(discounts []int) []int {
		out := append(append([]int(nil), discounts...), percent)
		sort.Ints(out)
		return out
	})
	return nil
}

func (s *catalogService) RemoveDiscount(percent int) error {
	found := false
	s.discounts.Update(func(discounts []int) []int {
		out := make([]int, 0, len(discounts))
		for _, d := range discounts {
			if d == percent {
				found = true
				continue
			}
			out = append(out, d)
		}
		return out
	})
	if !found {
		return ErrDiscountNotFound
	}
	return nil
}

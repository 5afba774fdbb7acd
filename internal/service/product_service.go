package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront-backend/internal/logging"
	"storefront-backend/internal/media"
	"storefront-backend/internal/metrics"
	"storefront-backend/internal/models"
	"storefront-backend/internal/repository"
)

// ImageUpload is one image file of a product form.
type ImageUpload struct {
	Name        string
	ContentType string
	Size        int64
	Reader      io.Reader
}

type ProductService interface {
	List(ctx context.Context, filter models.ProductFilter) ([]*models.Product, error)
	Get(ctx context.Context, productID string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product, images []ImageUpload) (*models.Product, error)
	Update(ctx context.Context, productID string, req *models.UpdateProductRequest) (*models.Product, error)
	Delete(ctx context.Context, productID string) error
	DeleteAll(ctx context.Context) (int64, error)
}

type productService struct {
	products repository.ProductRepository
	images   media.ImageStore
	metrics  *metrics.Metrics
	log      *logging.Logger
}

func NewProductService(products repository.ProductRepository, images media.ImageStore, m *metrics.Metrics, log *logging.Logger) ProductService {
	return &productService{
		products: products,
		images:   images,
		metrics:  m,
		log:      log.Named("products"),
	}
}

func (s *productService) List(ctx context.Context, filter models.ProductFilter) ([]*models.Product, error) {
	return s.products.List(ctx, filter)
}

func (s *productService) Get(ctx context.Context, productID string) (*models.Product, error) {
	id, err := parseID(productID, "product")
	if err != nil {
		return nil, err
	}
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "product")
	}
	return product, nil
}

func (s *productService) Create(ctx context.Context, product *models.Product, images []ImageUpload) (*models.Product, error) {
	if len(images) > models.MaxProductImages {
		return nil, invalid("at most %d images are allowed", models.MaxProductImages)
	}

	urls := make([]string, 0, len(images))
	for _, img := range images {
		url, err := s.images.Upload(ctx, img.Name, img.Reader, img.Size, img.ContentType)
		if err != nil {
			s.deleteImages(ctx, urls)
			return nil, fmt.Errorf("%w: %s: %v", ErrUploadFailed, img.Name, err)
		}
		urls = append(urls, url)
	}

	now := time.Now()
	product.ID = primitive.NilObjectID
	product.Images = urls
	product.Image = ""
	product.IsActive = true
	product.ApplyDefaults()
	product.CreatedAt = now
	product.UpdatedAt = now

	if err := s.products.Create(ctx, product); err != nil {
		s.deleteImages(ctx, urls)
		return nil, err
	}
	s.log.WithContext(ctx).Info("product created", "product_id", product.ID.Hex(), "images", len(urls))
	return product, nil
}

func (s *productService) Update(ctx context.Context, productID string, req *models.UpdateProductRequest) (*models.Product, error) {
	product, err := s.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	req.Apply(product)
	product.ApplyDefaults()
	if err := s.products.Update(ctx, product); err != nil {
		return nil, notFound(err, "product")
	}
	return product, nil
}

func (s *productService) Delete(ctx context.Context, productID string) error {
	product, err := s.Get(ctx, productID)
	if err != nil {
		return err
	}
	if err := s.products.Delete(ctx, product.ID); err != nil {
		return notFound(err, "product")
	}
	s.deleteImages(ctx, productImages(product))
	return nil
}

func (s *productService) DeleteAll(ctx context.Context) (int64, error) {
	all, err := s.products.List(ctx, models.ProductFilter{IncludeInactive: true})
	if err != nil {
		return 0, err
	}
	n, err := s.products.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	for _, p := range all {
		s.deleteImages(ctx, productImages(p))
	}
	s.log.WithContext(ctx).Warn("all products deleted", "count", n)
	return n, nil
}

func productImages(p *models.Product) []string {
	urls := append([]string{}, p.Images...)
	if p.Image != "" {
		seen := false
		for _, u := range urls {
			if u == p.Image {
				seen = true
				break
			}
		}
		if !seen {
			urls = append(urls, p.Image)
		}
	}
	return urls
}

// deleteImages is best effort: failures are counted and logged, never
// retried and never returned.
func (s *productService) deleteImages(ctx context.Context, urls []string) {
	for _, url := range urls {
		err := s.images.Delete(ctx, url)
		if err == nil {
			continue
		}
		log := s.log.WithContext(ctx).WithError(err)
		if errors.Is(err, media.ErrForeignURL) {
			log.Debug("skipping image not owned by the store", "url", url)
			continue
		}
		s.metrics.ImageDeleteFailures.Inc()
		log.Warn("failed to delete product image", "url", url)
	}
}

package api

import (
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"storefront-backend/internal/logging"
	"storefront-backend/internal/models"
	"storefront-backend/internal/service"
)

type ProductHandlers struct {
	products       service.ProductService
	maxUploadBytes int64
	log            *logging.Logger
}

func NewProductHandlers(products service.ProductService, maxUploadBytes int64, log *logging.Logger) *ProductHandlers {
	return &ProductHandlers{products: products, maxUploadBytes: maxUploadBytes, log: log}
}

func (h *ProductHandlers) List(c *gin.Context) {
	filter := models.ProductFilter{
		Category:   c.Query("category"),
		Collection: c.Query("collection"),
		Brand:      c.Query("brand"),
		Search:     c.Query("search"),
	}
	if c.Query("includeInactive") == "true" && isAdmin(c) {
		filter.IncludeInactive = true
	}
	products, err := h.products.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	SendSuccess(c, http.StatusOK, "", gin.H{"products": products, "count": len(products)})
}

func (h *ProductHandlers) Get(c *gin.Context) {
	product, err := h.products.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if !product.IsActive && !isAdmin(c) {
		SendError(c, http.StatusNotFound, fmt.Errorf("%w: product", service.ErrNotFound), models.ErrNotFound)
		return
	}
	SendSuccess(c, http.StatusOK, "", gin.H{"product": product})
}

// Create accepts the admin form as multipart: product fields plus up to
// four files named image1..image4.
func (h *ProductHandlers) Create(c *gin.Context) {
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}
	product, err := productFromForm(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	if err := binding.Validator.ValidateStruct(product); err != nil {
		badRequest(c, err)
		return
	}

	var uploads []service.ImageUpload
	for i := 1; i <= models.MaxProductImages; i++ {
		fh, err := c.FormFile(fmt.Sprintf("image%d", i))
		if err != nil {
			continue
		}
		f, err := fh.Open()
		if err != nil {
			badRequest(c, fmt.Errorf("read image%d: %w", i, err))
			return
		}
		defer f.Close()
		uploads = append(uploads, service.ImageUpload{
			Name:        fh.Filename,
			ContentType: contentType(fh),
			Size:        fh.Size,
			Reader:      f,
		})
	}

	created, err := h.products.Create(c.Request.Context(), product, uploads)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	SendSuccess(c, http.StatusCreated, "Product added", gin.H{"product": created})
}

func (h *ProductHandlers) Update(c *gin.Context) {
	var req models.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	product, err := h.products.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	SendSuccess(c, http.StatusOK, "Product updated", gin.H{"product": product})
}

func (h *ProductHandlers) Delete(c *gin.Context) {
	if err := h.products.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.log, err)
		return
	}
	SendSuccess(c, http.StatusOK, "Product removed", nil)
}

func (h *ProductHandlers) DeleteAll(c *gin.Context) {
	n, err := h.products.DeleteAll(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	SendSuccess(c, http.StatusOK, "All products removed", gin.H{"deletedCount": n})
}

func contentType(fh *multipart.FileHeader) string {
	if ct := fh.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func productFromForm(c *gin.Context) (*models.Product, error) {
	p := &models.Product{
		Name:        strings.TrimSpace(c.PostForm("name")),
		Description: c.PostForm("description"),
		Category:    c.PostForm("category"),
		Brand:       c.PostForm("brand"),
		Collection:  c.PostForm("collection"),
		Sizes:       formList(c.PostForm("sizes")),
		Features:    formList(c.PostForm("features")),
	}
	var err error
	if p.Price, err = formFloat(c, "price"); err != nil {
		return nil, err
	}
	if p.Rating, err = formFloat(c, "rating"); err != nil {
		return nil, err
	}
	if p.Stock, err = formInt(c, "stock"); err != nil {
		return nil, err
	}
	if p.Reviews, err = formInt(c, "reviews"); err != nil {
		return nil, err
	}
	if v := c.PostForm("originalPrice"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("originalPrice: %w", err)
		}
		p.OriginalPrice = &f
	}
	if v := c.PostForm("discount"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("discount: %w", err)
		}
		p.Discount = &f
	}
	if p.Collection == "" {
		p.Collection = models.CollectionLatest
	}
	return p, nil
}

// formList accepts a JSON array or a comma separated list.
func formList(v string) []string {
	v = strings.TrimSpace(v)
	if v == "" {
		return []string{}
	}
	var out []string
	if strings.HasPrefix(v, "[") && json.Unmarshal([]byte(v), &out) == nil {
		return out
	}
	out = []string{}
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func formFloat(c *gin.Context, key string) (float64, error) {
	v := c.PostForm(key)
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func formInt(c *gin.Context, key string) (int, error) {
	v := c.PostForm(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

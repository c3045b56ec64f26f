package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/01moynul/storefront-golang/internal/catalog"
	"github.com/01moynul/storefront-golang/internal/models"
)

//
// --- Catalog Handlers ---
//

const relatedProductLimit = 4

// ListProducts is the handler for GET /v1/products. Filters arrive as query
// parameters; unknown sort keys and price ranges fall back to defaults.
func (h *Handlers) ListProducts(c *gin.Context) {
	filter := catalog.Filter{
		Search:        c.Query("search"),
		CategorySlug:  c.Query("category"),
		BrandSlug:     c.Query("brand"),
		PriceRange:    c.Query("price_range"),
		FeaturedOnly:  c.Query("featured") == "true",
		AvailableOnly: c.Query("available") == "true",
		SortBy:        c.Query("sort_by"),
	}

	products, err := h.Catalog.List(c.Request.Context(), filter)
	if err != nil {
		h.Log.Error("product listing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}
	if products == nil {
		products = []models.Product{}
	}

	c.JSON(http.StatusOK, gin.H{
		"products":      products,
		"totalProducts": len(products),
	})
}

// GetProduct is the handler for GET /v1/products/:slug.
func (h *Handlers) GetProduct(c *gin.Context) {
	product, err := h.Catalog.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found."})
			return
		}
		h.Log.Error("product lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	related, err := h.Catalog.Related(c.Request.Context(), product, relatedProductLimit)
	if err != nil {
		h.Log.Error("related products lookup failed", zap.Error(err))
		related = nil
	}

	c.JSON(http.StatusOK, gin.H{
		"product":         product,
		"relatedProducts": related,
	})
}

// CategoryProducts is the handler for GET /v1/categories/:slug/products.
func (h *Handlers) CategoryProducts(c *gin.Context) {
	category, err := h.Catalog.GetCategoryBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found."})
			return
		}
		h.Log.Error("category lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	products, err := h.Catalog.List(c.Request.Context(), catalog.Filter{
		CategorySlug:  category.Slug,
		AvailableOnly: true,
	})
	if err != nil {
		h.Log.Error("category products failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"category": category,
		"products": products,
	})
}

// GetAllCategories is the handler for GET /v1/categories.
func (h *Handlers) GetAllCategories(c *gin.Context) {
	categories, err := h.Catalog.ListCategories(c.Request.Context())
	if err != nil {
		h.Log.Error("category listing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// GetAllBrands is the handler for GET /v1/brands.
func (h *Handlers) GetAllBrands(c *gin.Context) {
	brands, err := h.Catalog.ListBrands(c.Request.Context())
	if err != nil {
		h.Log.Error("brand listing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"brands": brands})
}

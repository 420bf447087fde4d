package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/listino/catalog-service/internal/database"
	"github.com/listino/catalog-service/internal/types"
)

// ListProductsRequest represents query parameters for listing catalog products
type ListProductsRequest struct {
	Limit  int `form:"limit" json:"limit" binding:"omitempty,min=1,max=500" jsonschema:"minimum=1,maximum=500"`
	Offset int `form:"offset" json:"offset" binding:"omitempty,min=0" jsonschema:"minimum=0"`
}

// ListProductsResponse represents the response for listing catalog products
type ListProductsResponse struct {
	Products []types.MasterProduct `json:"products" jsonschema:"required"`
	Total    int                   `json:"total" jsonschema:"required"`
}

// ListProducts returns a paginated list of consolidated products
// @Summary List catalog products
// @Description Returns consolidated catalog products ordered by EAN
// @Tags catalog
// @Accept json
// @Produce json
// @Param limit query int false "Number of items to return" default(50) minimum(1) maximum(500)
// @Param offset query int false "Number of items to skip" default(0) minimum(0)
// @Success 200 {object} ListProductsResponse
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /internal/catalog/products [get]
func ListProducts(c *gin.Context) {
	var req ListProductsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Limit == 0 {
		req.Limit = 50
	}

	store := database.NewStore()
	ctx := c.Request.Context()

	total, err := store.CountMasterProducts(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count products"})
		return
	}

	products, err := store.MasterProducts(ctx, req.Limit, req.Offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}
	if products == nil {
		products = []types.MasterProduct{}
	}

	c.JSON(http.StatusOK, ListProductsResponse{Products: products, Total: total})
}

// GetProduct returns one consolidated product by EAN
// @Summary Get catalog product
// @Description Returns a single consolidated product by its EAN
// @Tags catalog
// @Accept json
// @Produce json
// @Param ean path string true "Product EAN"
// @Success 200 {object} types.MasterProduct
// @Failure 404 {object} map[string]string "Product not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /internal/catalog/products/{ean} [get]
func GetProduct(c *gin.Context) {
	ean := c.Param("ean")
	if ean == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ean is required"})
		return
	}

	store := database.NewStore()
	product, err := store.MasterProduct(c.Request.Context(), ean)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
		return
	}
	if product == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	c.JSON(http.StatusOK, product)
}

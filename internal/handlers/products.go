package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/comparely/catalog-service/internal/reconcile"
	"github.com/comparely/catalog-service/internal/types"
	"github.com/gin-gonic/gin"
)

// ListProducts returns the products of every category as one list
// @Summary List products
// @Tags catalog
// @Produce json
// @Success 200 {array} types.Product
// @Failure 500 {object} ErrorResponse
// @Router /products [get]
func ListProducts(c *gin.Context) {
	docs, err := categoryStore.Find(c.Request.Context(), types.Filter{}, "products")
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, fmt.Errorf("failed to list products: %w", err))
		return
	}

	products := []types.Product{}
	for _, doc := range docs {
		products = append(products, doc.Products...)
	}
	c.JSON(http.StatusOK, products)
}

// GetProduct returns one product by id
// @Summary Get product
// @Tags catalog
// @Produce json
// @Param id path string true "Product id"
// @Success 200 {object} types.Product
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /product/{id} [get]
func GetProduct(c *gin.Context) {
	id := types.Canonical(c.Param("id"))
	doc, err := categoryStore.FindOne(c.Request.Context(), types.Filter{types.ProductsFieldPrefix + "id": id})
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, fmt.Errorf("failed to load product: %w", err))
		return
	}
	var product *types.Product
	if doc != nil {
		product = doc.FindProduct(id)
	}
	if product == nil {
		abortWithError(c, http.StatusNotFound, fmt.Errorf("product %s not found", id))
		return
	}
	c.JSON(http.StatusOK, product)
}

// UpdateProduct merges the body into the product with the given id
// @Summary Update product by id
// @Description The owning category comes from the body's category_path or category, otherwise from the category already holding the product. A product missing from that category is appended.
// @Tags catalog
// @Accept json
// @Produce json
// @Param id path string true "Product id"
// @Param body body types.Product true "Product fields"
// @Success 200 {object} types.Product
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /product/{id} [put]
// @Router /product/{id} [post]
func UpdateProduct(c *gin.Context) {
	editProduct(c, reconcile.Key{Field: "id", Value: c.Param("id")})
}

// UpdateProductByURL merges the body into the product with the given url
// @Summary Update product by url
// @Description The url path segment must be URL-encoded.
// @Tags catalog
// @Accept json
// @Produce json
// @Param url path string true "URL-encoded product url"
// @Param body body types.Product true "Product fields"
// @Success 200 {object} types.Product
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /productbyurl/{url} [put]
func UpdateProductByURL(c *gin.Context) {
	editProduct(c, reconcile.Key{Field: "url", Value: c.Param("url")})
}

func editProduct(c *gin.Context, identity reconcile.Key) {
	var body types.Product
	if err := c.ShouldBindJSON(&body); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Errorf("invalid body: %w", err))
		return
	}

	product, err := reconcile.EditProduct(c.Request.Context(), categoryStore, &body, identity, clock())
	switch {
	case errors.Is(err, reconcile.ErrNoOwningCategory):
		abortWithError(c, http.StatusBadRequest, fmt.Errorf("no category holds product %s", identity))
		return
	case errors.Is(err, reconcile.ErrEmptyIdentity):
		abortWithError(c, http.StatusBadRequest, err)
		return
	case err != nil:
		abortWithError(c, http.StatusInternalServerError, fmt.Errorf("failed to update product: %w", err))
		return
	}
	c.JSON(http.StatusOK, product)
}

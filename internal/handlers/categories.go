package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/comparely/catalog-service/internal/database"
	"github.com/comparely/catalog-service/internal/reconcile"
	"github.com/comparely/catalog-service/internal/types"
	"github.com/gin-gonic/gin"
)

// ListCategories returns every category document
// @Summary List categories
// @Description Returns all categories. fields limits the returned top-level fields (the id is always included).
// @Tags catalog
// @Produce json
// @Param fields query string false "Comma-separated list of fields, e.g. path,name"
// @Success 200 {array} types.Category
// @Failure 500 {object} ErrorResponse
// @Router /categories [get]
func ListCategories(c *gin.Context) {
	var fields []string
	for _, f := range strings.Split(c.Query("fields"), ",") {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}

	docs, err := categoryStore.Find(c.Request.Context(), types.Filter{}, fields...)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, fmt.Errorf("failed to list categories: %w", err))
		return
	}
	if docs == nil {
		docs = []*types.Category{}
	}
	c.JSON(http.StatusOK, docs)
}

// GetCategory returns one category by id
// @Summary Get category
// @Tags catalog
// @Produce json
// @Param id path string true "Category id"
// @Success 200 {object} types.Category
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /category/{id} [get]
func GetCategory(c *gin.Context) {
	id := types.Canonical(c.Param("id"))
	doc, err := categoryStore.FindOne(c.Request.Context(), types.Filter{"id": id})
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, fmt.Errorf("failed to load category: %w", err))
		return
	}
	if doc == nil {
		abortWithError(c, http.StatusNotFound, fmt.Errorf("category %s not found", id))
		return
	}
	c.JSON(http.StatusOK, doc)
}

// UpdateCategory merges the body's top-level fields into a category
// @Summary Update category
// @Description Shallow update: every top-level field in the body replaces the stored one. The id cannot be changed.
// @Tags catalog
// @Accept json
// @Produce json
// @Param id path string true "Category id"
// @Param body body object true "Fields to set"
// @Success 200 {object} types.Category
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /category/{id} [put]
// @Router /category/{id} [post]
func UpdateCategory(c *gin.Context) {
	id := types.Canonical(c.Param("id"))

	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Errorf("invalid body: %w", err))
		return
	}
	if len(fields) == 0 {
		abortWithError(c, http.StatusBadRequest, errors.New("empty update"))
		return
	}

	doc, err := categoryStore.UpdateByID(c.Request.Context(), id, fields)
	switch {
	case errors.Is(err, types.ErrNotFound):
		abortWithError(c, http.StatusBadRequest, fmt.Errorf("category %s not found", id))
		return
	case errors.Is(err, database.ErrInvalidUpdate):
		abortWithError(c, http.StatusBadRequest, err)
		return
	case err != nil:
		abortWithError(c, http.StatusInternalServerError, fmt.Errorf("failed to update category: %w", err))
		return
	}
	c.JSON(http.StatusOK, doc)
}

// FindCategory looks a category up by the identity fields in the body
// @Summary Find category
// @Description Resolves the body by path, then url, then name, the same way batch records are matched.
// @Tags catalog
// @Accept json
// @Produce json
// @Param body body types.Category true "Category identity, e.g. {\"path\": \"/books\"}"
// @Success 200 {object} types.Category
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /category [post]
func FindCategory(c *gin.Context) {
	var body types.Category
	if err := c.ShouldBindJSON(&body); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Errorf("invalid body: %w", err))
		return
	}
	body.NormalizeIdentity()

	key, ok := reconcile.CategoryIdentity.Resolve(&body)
	if !ok {
		abortWithError(c, http.StatusBadRequest, errors.New("body must carry path, url or name"))
		return
	}

	doc, err := categoryStore.FindOne(c.Request.Context(), key.Filter())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, fmt.Errorf("failed to load category: %w", err))
		return
	}
	if doc == nil {
		abortWithError(c, http.StatusNotFound, fmt.Errorf("category %s not found", key))
		return
	}
	c.JSON(http.StatusOK, doc)
}

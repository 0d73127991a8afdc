package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/inventory/internal/domain/models"
)

// ListProducts returns the products matching ?q, newest first.
func (h *Handler) ListProducts(c *gin.Context) {
	products, err := h.inventory.List(c.Request.Context(), currentSession(c), c.Query("q"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products, "count": len(products)})
}

// CreateProduct adds a product. An omitted threshold takes the default.
func (h *Handler) CreateProduct(c *gin.Context) {
	in := models.NewProductInput()
	if err := c.ShouldBindJSON(&in); err != nil {
		h.fail(c, models.NewValidationError("body", "must be a valid product JSON object"))
		return
	}

	product, err := h.inventory.Add(c.Request.Context(), currentSession(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

// UpdateProduct overwrites every editable field of a product.
func (h *Handler) UpdateProduct(c *gin.Context) {
	var in models.ProductInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.fail(c, models.NewValidationError("body", "must be a valid product JSON object"))
		return
	}

	if _, err := h.inventory.Update(c.Request.Context(), currentSession(c), c.Param("id"), in); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteProduct removes a product.
func (h *Handler) DeleteProduct(c *gin.Context) {
	if err := h.inventory.Delete(c.Request.Context(), currentSession(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

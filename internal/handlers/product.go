package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/labelsense-backend/internal/logger"
	"github.com/yungbote/labelsense-backend/internal/services"
)

type ProductHandler struct {
	log            *logger.Logger
	productService services.ProductService
}

func NewProductHandler(log *logger.Logger, productService services.ProductService) *ProductHandler {
	return &ProductHandler{
		log:            log.With("handler", "ProductHandler"),
		productService: productService,
	}
}

// GET /api/products/:id/analysis
// Serve the shared catalog analysis for a product, regenerating when stale.
// Live curation fields are always read from the product row itself.
func (h *ProductHandler) GetAnalysis(c *gin.Context) {
	requesterID, ok := currentUserID(c)
	if !ok {
		RespondError(c, http.StatusForbidden, "forbidden", fmt.Errorf("no authenticated user"))
		return
	}
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_product_id", err)
		return
	}
	analysis, err := h.productService.GetAnalysis(c.Request.Context(), requesterID, productID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", analysis)
}

// GET /api/products/by-barcode/:code/analysis
func (h *ProductHandler) GetAnalysisByBarcode(c *gin.Context) {
	requesterID, ok := currentUserID(c)
	if !ok {
		RespondError(c, http.StatusForbidden, "forbidden", fmt.Errorf("no authenticated user"))
		return
	}
	analysis, err := h.productService.GetAnalysisByBarcode(c.Request.Context(), requesterID, c.Param("code"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", analysis)
}

package handlers

import (
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/labelsense-backend/internal/logger"
	"github.com/yungbote/labelsense-backend/internal/requestdata"
	"github.com/yungbote/labelsense-backend/internal/services"
	"github.com/yungbote/labelsense-backend/internal/types"
)

type ScanHandler struct {
	log         *logger.Logger
	scanService services.ScanService
}

func NewScanHandler(log *logger.Logger, scanService services.ScanService) *ScanHandler {
	return &ScanHandler{
		log:         log.With("handler", "ScanHandler"),
		scanService: scanService,
	}
}

// POST /api/scan
// Submit a barcode, product URL, free-form text or base64 image for
// analysis. Identical input from the same user resolves to the same stored
// artifact without re-running generation.
func (h *ScanHandler) Analyze(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		RespondError(c, http.StatusForbidden, "forbidden", fmt.Errorf("no authenticated user"))
		return
	}

	var req struct {
		Modality string `json:"modality"`
		Input    string `json:"input"`
		// ImageData carries the base64-encoded payload for image scans.
		ImageData string `json:"image_data"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	modality, err := types.ParseScanModality(req.Modality)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_modality", err)
		return
	}

	var raw []byte
	if modality == types.ModalityImage {
		raw, err = base64.StdEncoding.DecodeString(req.ImageData)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_image_data", err)
			return
		}
	} else {
		raw = []byte(req.Input)
	}

	record, err := h.scanService.AnalyzeInput(c.Request.Context(), ownerID, modality, raw)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, record)
}

// GET /api/scans
func (h *ScanHandler) ListScans(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		RespondError(c, http.StatusForbidden, "forbidden", fmt.Errorf("no authenticated user"))
		return
	}
	records, err := h.scanService.ListScans(c.Request.Context(), ownerID, 50)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, records)
}

func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		return uuid.Nil, false
	}
	return rd.UserID, true
}

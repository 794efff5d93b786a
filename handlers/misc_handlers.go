package handlers

import (
	"encoding/json"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/emanchez/analytics-app/models"
	"github.com/emanchez/analytics-app/utils"
)

// Hello is a connectivity check the front-end pings on load. The body
// is the literal JSON string, not an object.
func Hello(c *gin.Context) {
	c.JSON(http.StatusOK, "Hello, world!")
}

// MerchHandlers serves the merchandise catalog passthrough.
type MerchHandlers struct {
	CatalogPath string
	log         *zap.Logger
}

func NewMerchHandlers(catalogPath string, log *zap.Logger) *MerchHandlers {
	if catalogPath == "" {
		catalogPath = "./data/merch.json"
	}
	return &MerchHandlers{
		CatalogPath: catalogPath,
		log:         log,
	}
}

// GetMerch reads the catalog file on every request so edits show up
// without a restart.
func (h *MerchHandlers) GetMerch(c *gin.Context) {
	data, err := os.ReadFile(h.CatalogPath)
	if err != nil {
		h.log.Error("Failed to read merch catalog",
			zap.Error(err),
			zap.String("path", h.CatalogPath))
		utils.ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	var catalog []models.MerchItem
	if err := json.Unmarshal(data, &catalog); err != nil {
		h.log.Error("Malformed merch catalog",
			zap.Error(err),
			zap.String("path", h.CatalogPath))
		utils.ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	utils.SuccessResponseData(c, "success", catalog)
}

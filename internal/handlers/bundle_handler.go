package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/GabKongroo/NothingSpecial/internal/middleware"
	"github.com/GabKongroo/NothingSpecial/internal/models"
	"github.com/GabKongroo/NothingSpecial/internal/repository"
	"github.com/GabKongroo/NothingSpecial/internal/services"
	"github.com/gin-gonic/gin"
)

const maxBundleImageBytes = 10 << 20

type BundleHandler struct {
	bundleService *services.BundleService
	publicURL     string
}

func NewBundleHandler(bundleService *services.BundleService, publicURL string) *BundleHandler {
	return &BundleHandler{bundleService: bundleService, publicURL: publicURL}
}

type bundleRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	BundlePrice float64 `json:"bundle_price" binding:"required"`
	IsActive    *Flag   `json:"is_active"`
	BeatIDs     []uint  `json:"beat_ids" binding:"required"`
}

func (r bundleRequest) input() services.BundleInput {
	active := true
	if r.IsActive != nil {
		active = bool(*r.IsActive)
	}
	return services.BundleInput{
		Name:        r.Name,
		Description: r.Description,
		BundlePrice: r.BundlePrice,
		IsActive:    active,
		BeatIDs:     r.BeatIDs,
	}
}

func (h *BundleHandler) view(b *models.Bundle) gin.H {
	return gin.H{
		"bundle":    b,
		"image_url": services.PublicObjectURL(h.publicURL, b.ImageKey),
	}
}

func bundleID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid bundle ID"})
		return 0, false
	}
	return uint(id), true
}

func bundleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrBundleNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Bundle not found"})
	case errors.Is(err, services.ErrBundleNameRequired),
		errors.Is(err, services.ErrEmptyBundle),
		errors.Is(err, services.ErrInvalidBundlePrice),
		errors.Is(err, services.ErrBundleAboveIndividual),
		errors.Is(err, services.ErrUnknownBeats),
		errors.Is(err, services.ErrUnsupportedImage):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Bundle operation failed"})
	}
}

func (h *BundleHandler) ListBundles(c *gin.Context) {
	bundles, err := h.bundleService.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve bundles"})
		return
	}
	views := make([]gin.H, len(bundles))
	for i := range bundles {
		views[i] = h.view(&bundles[i])
	}
	c.JSON(http.StatusOK, gin.H{"bundles": views})
}

func (h *BundleHandler) GetBundle(c *gin.Context) {
	id, ok := bundleID(c)
	if !ok {
		return
	}
	bundle, err := h.bundleService.Get(c.Request.Context(), id)
	if err != nil {
		bundleError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.view(bundle))
}

func (h *BundleHandler) CreateBundle(c *gin.Context) {
	var req bundleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	bundle, err := h.bundleService.Create(c.Request.Context(), c.GetString(middleware.OperatorKey), req.input())
	if err != nil {
		bundleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.view(bundle))
}

func (h *BundleHandler) UpdateBundle(c *gin.Context) {
	id, ok := bundleID(c)
	if !ok {
		return
	}
	var req bundleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	bundle, err := h.bundleService.Update(c.Request.Context(), c.GetString(middleware.OperatorKey), id, req.input())
	if err != nil {
		bundleError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.view(bundle))
}

func (h *BundleHandler) DeleteBundle(c *gin.Context) {
	id, ok := bundleID(c)
	if !ok {
		return
	}
	if err := h.bundleService.Delete(c.Request.Context(), c.GetString(middleware.OperatorKey), id); err != nil {
		bundleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Bundle deleted successfully"})
}

// UploadImage stores the promotional image sent in the "image" form field.
func (h *BundleHandler) UploadImage(c *gin.Context) {
	id, ok := bundleID(c)
	if !ok {
		return
	}
	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image file is required"})
		return
	}
	if fileHeader.Size > maxBundleImageBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Image exceeds 10MB"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read image"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxBundleImageBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read image"})
		return
	}

	bundle, err := h.bundleService.UploadImage(c.Request.Context(), c.GetString(middleware.OperatorKey), id, fileHeader.Filename, data)
	if err != nil {
		bundleError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.view(bundle))
}

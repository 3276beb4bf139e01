package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"onedish-backend/internal/models"
)

// PhotoStorage is the object storage surface the photo handlers depend on.
type PhotoStorage interface {
	UploadVendorPhoto(vendorID, fileName string, data []byte) (string, error)
	UploadVendorPhotoFromURL(ctx context.Context, vendorID, imageID, sourceURL string) (string, error)
	DeleteVendorPhoto(vendorID, imageURL string) (bool, error)
	DeleteAllVendorPhotos(vendorID string) error
}

type PhotosHandler struct {
	storage PhotoStorage
	logger  *slog.Logger
}

func NewPhotosHandler(storage PhotoStorage, logger *slog.Logger) *PhotosHandler {
	return &PhotosHandler{
		storage: storage,
		logger:  logger,
	}
}

// UploadFromFile godoc
// @Summary     Upload vendor photos from file blobs
// @Description Multipart form with one file per field; the field key is the
// @Description staged image id chosen by the client.
// @Accept      multipart/form-data
// @Produce     json
// @Security    Bearer
// @Param       vendorId path string true "Vendor id"
// @Success     200 {object} models.APIResponse
// @Failure     400 {object} models.APIResponse
// @Router      /admin/vendors-photos/upload-from-file/{vendorId} [post]
func (h *PhotosHandler) UploadFromFile(c *gin.Context) {
	vendorID := c.Param("vendorId")

	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		respondError(c, http.StatusBadRequest, "Could not upload photos")
		return
	}
	form := c.Request.MultipartForm
	if form == nil || len(form.File) == 0 {
		respondError(c, http.StatusBadRequest, "Could not upload photos")
		return
	}

	uploads := make([]models.ImageData, 0, len(form.File))
	for imageID, files := range form.File {
		if len(files) == 0 {
			continue
		}
		file := files[0]

		src, err := file.Open()
		if err != nil {
			h.logger.Error("something went wrong uploading photos", "vendor_id", vendorID, "err", err)
			respondError(c, http.StatusBadRequest, "Could not upload photos")
			return
		}
		data, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			h.logger.Error("something went wrong uploading photos", "vendor_id", vendorID, "err", err)
			respondError(c, http.StatusBadRequest, "Could not upload photos")
			return
		}

		url, err := h.storage.UploadVendorPhoto(vendorID, file.Filename, data)
		if err != nil {
			h.logger.Error("something went wrong uploading photos", "vendor_id", vendorID, "err", err)
			respondError(c, http.StatusBadRequest, "Could not upload photos")
			return
		}

		uploads = append(uploads, models.ImageData{ID: imageID, URL: url})
	}

	respondData(c, uploads)
}

// UploadFromURL godoc
// @Summary     Re-host vendor photos from external URLs
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       vendorId path string true "Vendor id"
// @Param       body body models.SaveVendorPhotosFromURLRequest true "Images to re-host"
// @Success     200 {object} models.APIResponse
// @Failure     400 {object} models.APIResponse
// @Router      /admin/vendors-photos/upload-from-url/{vendorId} [post]
func (h *PhotosHandler) UploadFromURL(c *gin.Context) {
	vendorID := c.Param("vendorId")

	var req models.SaveVendorPhotosFromURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Could not upload photos")
		return
	}

	ctx := c.Request.Context()
	response := models.SaveVendorPhotosFromURLResponse{
		ImageData: make([]models.ImageData, 0, len(req.ImageData)),
	}

	for _, img := range req.ImageData {
		url, err := h.storage.UploadVendorPhotoFromURL(ctx, vendorID, img.ID, img.URL)
		if err != nil {
			h.logger.Error("something went wrong uploading photos", "vendor_id", vendorID, "err", err)
			respondError(c, http.StatusBadRequest, "Could not upload photos")
			return
		}
		response.ImageData = append(response.ImageData, models.ImageData{ID: img.ID, URL: url})
	}

	if req.VendorImageData != nil {
		url, err := h.storage.UploadVendorPhotoFromURL(ctx, vendorID, req.VendorImageData.ID, req.VendorImageData.URL)
		if err != nil {
			h.logger.Error("something went wrong uploading vendor image", "vendor_id", vendorID, "err", err)
			respondError(c, http.StatusBadRequest, "Could not upload photos")
			return
		}
		response.VendorImageData = &models.ImageData{ID: req.VendorImageData.ID, URL: url}
	}

	respondData(c, response)
}

// DeletePhotos godoc
// @Summary     Delete vendor photos
// @Description Idempotent per image: deleting an already absent object still
// @Description counts as success.
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       vendorId path string true "Vendor id"
// @Param       body body models.DeleteVendorPhotosRequest true "Image URLs to delete"
// @Success     200 {object} models.APIResponse
// @Failure     400 {object} models.APIResponse
// @Router      /admin/vendors-photos/delete/{vendorId} [delete]
func (h *PhotosHandler) DeletePhotos(c *gin.Context) {
	vendorID := c.Param("vendorId")

	var req models.DeleteVendorPhotosRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Could not delete images")
		return
	}

	success := true
	for _, url := range req.ImageURLs {
		ok, err := h.storage.DeleteVendorPhoto(vendorID, url)
		if err != nil {
			h.logger.Error("something went wrong deleting images", "vendor_id", vendorID, "err", err)
			respondError(c, http.StatusBadRequest, "Could not delete images")
			return
		}
		success = success && ok
	}

	respondData(c, success)
}

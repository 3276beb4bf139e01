package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"onedish-backend/internal/database"
	"onedish-backend/internal/models"
	"onedish-backend/internal/services"
	"onedish-backend/internal/supabase"
)

const (
	defaultSkip = 0
	defaultTake = 5
)

// VendorStore is the record store surface the vendor handlers depend on.
type VendorStore interface {
	CreateVendor(v models.VendorWithoutID) (string, error)
	UpdateVendor(vendorID string, v models.VendorWithoutID) error
	GetVendor(vendorID string) (*models.Vendor, error)
	DeleteVendor(vendorID string) error
	SearchVendors(search string) ([]models.Vendor, error)
	PaginatedVendors(column, direction, search string, skip, take int) (int, []models.Vendor, error)
}

type VendorsHandler struct {
	store    VendorStore
	storage  PhotoStorage
	workflow *services.SaveWorkflow
	events   *supabase.EventsClient
	logger   *slog.Logger
}

func NewVendorsHandler(store VendorStore, storage PhotoStorage, workflow *services.SaveWorkflow, events *supabase.EventsClient, logger *slog.Logger) *VendorsHandler {
	return &VendorsHandler{
		store:    store,
		storage:  storage,
		workflow: workflow,
		events:   events,
		logger:   logger,
	}
}

// SearchVendors godoc
// @Summary     Public vendor search
// @Description Case-insensitive substring search over vendor name and address.
// @Produce     json
// @Param       search query string false "Search text"
// @Success     200 {object} models.APIResponse
// @Router      /vendors [get]
func (h *VendorsHandler) SearchVendors(c *gin.Context) {
	search := c.Query("search")

	vendors, err := h.store.SearchVendors(search)
	if err != nil {
		h.logger.Error("could not search vendors", "url", c.Request.URL.String(), "err", err)
		respondError(c, http.StatusBadRequest, "Could not search vendors")
		return
	}

	respondData(c, vendors)
}

// ListVendors godoc
// @Summary     Paginated vendor listing for the admin console
// @Produce     json
// @Security    Bearer
// @Param       skip query int false "Rows to skip" default(0)
// @Param       take query int false "Rows to return" default(5)
// @Param       sortType query string false "asc or desc" default(asc)
// @Param       column query string false "Sort/search column" default(name)
// @Param       searchQuery query string false "Search text"
// @Success     200 {object} models.APIResponse
// @Failure     400 {object} models.APIResponse
// @Failure     401 {object} models.APIResponse
// @Router      /admin/vendors [get]
func (h *VendorsHandler) ListVendors(c *gin.Context) {
	skip := parsePageParam(c.Query("skip"), defaultSkip)
	take := parsePageParam(c.Query("take"), defaultTake)

	sortType := c.Query("sortType")
	if sortType != "desc" {
		sortType = "asc"
	}

	column := c.Query("column")
	if column == "" {
		column = "name"
	}

	total, vendors, err := h.store.PaginatedVendors(column, sortType, c.Query("searchQuery"), skip, take)
	if err != nil {
		h.logger.Error("could not list vendors", "url", c.Request.URL.String(), "err", err)
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	respondData(c, models.VendorPageData{Data: vendors, Total: total})
}

// GetVendor godoc
// @Summary     Fetch one vendor
// @Produce     json
// @Security    Bearer
// @Param       vendorId path string true "Vendor id"
// @Success     200 {object} models.APIResponse
// @Failure     404 {object} models.APIResponse
// @Router      /admin/vendors/{vendorId} [get]
func (h *VendorsHandler) GetVendor(c *gin.Context) {
	vendorID := c.Param("vendorId")

	vendor, err := h.store.GetVendor(vendorID)
	if errors.Is(err, database.ErrVendorNotFound) {
		respondError(c, http.StatusNotFound, "Could not find vendor")
		return
	}
	if err != nil {
		h.logger.Error("could not get vendor", "vendor_id", vendorID, "err", err)
		respondError(c, http.StatusBadRequest, "Could not get vendor")
		return
	}

	respondData(c, vendor)
}

// CreateVendor godoc
// @Summary     Create a vendor
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       body body models.AddVendorRequest true "Vendor payload"
// @Success     200 {object} models.APIResponse
// @Failure     400 {object} models.APIResponse
// @Router      /admin/vendors [post]
func (h *VendorsHandler) CreateVendor(c *gin.Context) {
	var req models.AddVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Could not create vendor")
		return
	}

	if msgs := req.Vendor.Validate(); len(msgs) > 0 {
		respondError(c, http.StatusBadRequest, strings.Join(msgs, "; "))
		return
	}

	vendorID, err := h.store.CreateVendor(req.Vendor)
	if err != nil {
		h.logger.Error("could not create vendor", "err", err)
		respondError(c, http.StatusBadRequest, "Could not create vendor")
		return
	}

	h.events.PublishVendorEvent(vendorID, "vendor_saved",
		supabase.VendorSavedPayload(vendorID, req.Vendor.Name, len(req.Vendor.OneDishes)))

	respondData(c, vendorID)
}

// UpdateVendor godoc
// @Summary     Update a vendor
// @Description Full replace of the vendor's editable fields.
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       vendorId path string true "Vendor id"
// @Param       body body models.AddVendorRequest true "Vendor payload"
// @Success     200 {object} models.APIResponse
// @Failure     404 {object} models.APIResponse
// @Router      /admin/vendors/{vendorId} [patch]
func (h *VendorsHandler) UpdateVendor(c *gin.Context) {
	vendorID := c.Param("vendorId")

	var req models.AddVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Could not update vendor")
		return
	}

	if msgs := req.Vendor.Validate(); len(msgs) > 0 {
		respondError(c, http.StatusBadRequest, strings.Join(msgs, "; "))
		return
	}

	err := h.store.UpdateVendor(vendorID, req.Vendor)
	if errors.Is(err, database.ErrVendorNotFound) {
		respondError(c, http.StatusNotFound, "Could not find vendor")
		return
	}
	if err != nil {
		h.logger.Error("could not update vendor", "vendor_id", vendorID, "err", err)
		respondError(c, http.StatusBadRequest, "Could not update vendor")
		return
	}

	h.events.PublishVendorEvent(vendorID, "vendor_saved",
		supabase.VendorSavedPayload(vendorID, req.Vendor.Name, len(req.Vendor.OneDishes)))

	respondData(c, vendorID)
}

// DeleteVendor godoc
// @Summary     Delete a vendor and its stored images
// @Produce     json
// @Security    Bearer
// @Param       vendorId path string true "Vendor id"
// @Success     200 {object} models.APIResponse
// @Failure     404 {object} models.APIResponse
// @Router      /admin/vendors/{vendorId} [delete]
func (h *VendorsHandler) DeleteVendor(c *gin.Context) {
	vendorID := c.Param("vendorId")

	if _, err := h.store.GetVendor(vendorID); err != nil {
		if errors.Is(err, database.ErrVendorNotFound) {
			respondError(c, http.StatusNotFound, "Could not find vendor")
			return
		}
		h.logger.Error("could not delete vendor", "vendor_id", vendorID, "err", err)
		respondError(c, http.StatusBadRequest, "Could not delete vendor")
		return
	}

	// The record is authoritative; leftover storage objects are cheap, so a
	// storage failure does not block the delete.
	if err := h.storage.DeleteAllVendorPhotos(vendorID); err != nil {
		h.logger.Error("could not delete vendor photos", "vendor_id", vendorID, "err", err)
	}

	if err := h.store.DeleteVendor(vendorID); err != nil {
		h.logger.Error("could not delete vendor", "vendor_id", vendorID, "err", err)
		respondError(c, http.StatusBadRequest, "Could not delete vendor")
		return
	}

	h.events.PublishVendorEvent(vendorID, "vendor_deleted", supabase.VendorDeletedPayload(vendorID))

	respondData(c, true)
}

// SaveVendor godoc
// @Summary     Composite vendor save
// @Description Runs the full save pipeline from one request: validation,
// @Description create when no id is given, staged image uploads and pending
// @Description deletions, then a single record update.
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       body body models.SaveVendorRequest true "Full form state"
// @Success     200 {object} models.APIResponse
// @Failure     400 {object} models.APIResponse
// @Failure     404 {object} models.APIResponse
// @Router      /admin/vendors/save [post]
func (h *VendorsHandler) SaveVendor(c *gin.Context) {
	var req models.SaveVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Could not save vendor")
		return
	}

	form := buildSaveForm(req)

	// Form-level failures respond before any store or storage access.
	if msgs := form.FieldMessages(); len(msgs) > 0 {
		respondError(c, http.StatusBadRequest, strings.Join(msgs, "; "))
		return
	}

	if req.VendorID != "" {
		existing, err := h.store.GetVendor(req.VendorID)
		if errors.Is(err, database.ErrVendorNotFound) {
			respondError(c, http.StatusNotFound, "Could not find vendor")
			return
		}
		if err != nil {
			h.logger.Error("could not load vendor for save", "vendor_id", req.VendorID, "err", err)
			respondError(c, http.StatusBadRequest, "Could not save vendor")
			return
		}
		form.ExistingDishes = existing.OneDishes
	}

	vendor, err := h.workflow.Save(c.Request.Context(), form)
	if err != nil {
		var validationErr *services.ValidationError
		if errors.As(err, &validationErr) {
			respondError(c, http.StatusBadRequest, validationErr.Error())
			return
		}
		if errors.Is(err, services.ErrSuperseded) {
			respondError(c, http.StatusConflict, "A newer save is in progress")
			return
		}
		h.logger.Error("could not save vendor", "vendor_id", req.VendorID, "err", err)
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	h.events.PublishVendorEvent(vendor.ID, "vendor_saved",
		supabase.VendorSavedPayload(vendor.ID, vendor.Name, len(vendor.OneDishes)))

	respondData(c, vendor)
}

func buildSaveForm(req models.SaveVendorRequest) services.SaveVendorForm {
	form := services.SaveVendorForm{
		VendorID:          req.VendorID,
		Name:              req.Name,
		Address:           req.Address,
		Tier:              req.Tier,
		Place:             req.Place,
		VendorImage:       req.VendorImage,
		VendorImageSource: req.VendorImageSource,
	}

	for _, staged := range req.StagedUploads {
		form.StagedUploads = append(form.StagedUploads, services.StagedDish{
			ID:          staged.ID,
			Title:       staged.Title,
			Description: staged.Description,
			FileName:    staged.FileName,
			Data:        staged.Data,
			SourceURL:   staged.SourceURL,
		})
	}
	for _, deletion := range req.PendingDeletions {
		form.PendingDeletions = append(form.PendingDeletions, services.PendingDeletion{
			ID:  deletion.ID,
			URL: deletion.URL,
		})
	}

	return form
}

// parsePageParam coerces a query value to a non-negative int, falling back to
// the default for absent or non-numeric values.
func parsePageParam(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

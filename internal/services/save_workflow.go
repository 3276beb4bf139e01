package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"onedish-backend/internal/models"
)

// VendorStore is the slice of the record store the save workflow needs.
type VendorStore interface {
	CreateVendor(v models.VendorWithoutID) (string, error)
	UpdateVendor(vendorID string, v models.VendorWithoutID) error
}

// PhotoStorage is the slice of the object storage gateway the save workflow
// needs. Each staged image maps to its own storage key, so the three save
// operations never touch the same object.
type PhotoStorage interface {
	UploadVendorPhoto(vendorID, fileName string, data []byte) (string, error)
	UploadVendorPhotoFromURL(ctx context.Context, vendorID, imageID, sourceURL string) (string, error)
	DeleteVendorPhoto(vendorID, imageURL string) (bool, error)
}

// ErrSuperseded reports that a newer save started while this one was in
// flight; its result must be discarded rather than applied to a surface that
// has moved on.
var ErrSuperseded = errors.New("save superseded by a newer save")

// ValidationError carries one message per violated rule so they can all be
// surfaced at once.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "; ")
}

// SaveVendorForm is the full form state of a vendor save: identity and
// details, staged uploads, and pending deletions.
type SaveVendorForm struct {
	// VendorID is empty when creating a new vendor.
	VendorID string

	Name    string
	Address string
	Tier    models.Tier
	Place   *models.VendorPlace

	// VendorImage is the current vendor image selection. When the selection is
	// new, VendorImageSource holds the external URL to re-host.
	VendorImage       *models.VendorPhoto
	VendorImageSource string

	// ExistingDishes are the dishes already on the vendor record (empty in
	// create mode).
	ExistingDishes []models.OneDish

	StagedUploads    []StagedDish
	PendingDeletions []PendingDeletion
}

// SaveWorkflow stitches place selection, image uploads, image deletions and
// the vendor record write into one save operation. There is no rollback: the
// pipeline stops at the first failure and already-uploaded images stay in
// storage as orphans, with the record keeping its prior state.
type SaveWorkflow struct {
	store  VendorStore
	photos PhotoStorage
	logger *slog.Logger
	gen    atomic.Uint64
}

func NewSaveWorkflow(store VendorStore, photos PhotoStorage, logger *slog.Logger) *SaveWorkflow {
	return &SaveWorkflow{
		store:  store,
		photos: photos,
		logger: logger,
	}
}

// Save runs the vendor save pipeline and returns the finalized vendor. On any
// error the caller keeps its transient staged/pending state so a retry does
// not redo completed uploads.
func (w *SaveWorkflow) Save(ctx context.Context, form SaveVendorForm) (*models.Vendor, error) {
	gen := w.gen.Add(1)

	if msgs := w.validate(form); len(msgs) > 0 {
		return nil, &ValidationError{Messages: msgs}
	}

	vendorID := form.VendorID
	creating := vendorID == ""
	if creating {
		id, err := w.store.CreateVendor(models.VendorWithoutID{
			Name:      form.Name,
			Address:   form.Address,
			Tier:      form.Tier,
			OneDishes: []models.OneDish{},
		})
		if err != nil {
			w.logger.Error("failed to create vendor", "err", err)
			return nil, fmt.Errorf("could not create vendor: %w", err)
		}
		vendorID = id
	}

	uploaded, vendorImage, err := w.reconcilePhotos(ctx, vendorID, form)
	if err != nil {
		w.logger.Error("failed to reconcile vendor photos", "vendor_id", vendorID, "err", err)
		return nil, err
	}

	oneDishes, err := mergeDishes(form, uploaded)
	if err != nil {
		return nil, err
	}

	payload := models.VendorWithoutID{
		Name:        form.Name,
		Address:     form.Address,
		Tier:        form.Tier,
		Place:       form.Place,
		VendorImage: vendorImage,
		OneDishes:   oneDishes,
	}

	// A save overtaken while its uploads were in flight must not clobber the
	// record the newer save has already written.
	if w.gen.Load() != gen {
		return nil, ErrSuperseded
	}

	if err := w.store.UpdateVendor(vendorID, payload); err != nil {
		w.logger.Error("failed to update vendor", "vendor_id", vendorID, "err", err)
		return nil, fmt.Errorf("could not update vendor: %w", err)
	}

	// Catches an overtake that started during the write itself.
	if w.gen.Load() != gen {
		return nil, ErrSuperseded
	}

	w.logger.Info("saved vendor", "vendor_id", vendorID, "name", payload.Name, "dishes", len(oneDishes))

	return &models.Vendor{
		ID:          vendorID,
		Name:        payload.Name,
		Address:     payload.Address,
		Tier:        payload.Tier,
		Place:       payload.Place,
		VendorImage: payload.VendorImage,
		OneDishes:   payload.OneDishes,
	}, nil
}

// FieldMessages collects every violated form-level rule. It needs no store
// access, so callers can reject a bad form before reading anything.
func (f SaveVendorForm) FieldMessages() []string {
	var msgs []string
	if f.Name == "" {
		msgs = append(msgs, "You need to provide a name")
	}
	if f.Address == "" {
		msgs = append(msgs, "You need to provide an address")
	}
	if !f.Tier.Valid() {
		msgs = append(msgs, "You need to select a tier")
	}
	for _, staged := range f.StagedUploads {
		if err := staged.Validate(); err != nil {
			msgs = append(msgs, err.Error())
		}
	}
	return msgs
}

// validate collects every violated rule before any network call is made. The
// dish count also weighs the vendor's existing dishes, so it lives here rather
// than in FieldMessages.
func (w *SaveWorkflow) validate(form SaveVendorForm) []string {
	msgs := form.FieldMessages()
	if selectedDishCount(form) == 0 {
		msgs = append(msgs, "You need to select some OneDishes")
	}
	return msgs
}

func selectedDishCount(form SaveVendorForm) int {
	count := 0
	for _, dish := range form.ExistingDishes {
		if !isPendingDeletion(form.PendingDeletions, dish.ID) {
			count++
		}
	}
	for _, staged := range form.StagedUploads {
		if !isPendingDeletion(form.PendingDeletions, staged.ID) {
			count++
		}
	}
	return count
}

func isPendingDeletion(deletions []PendingDeletion, id string) bool {
	for _, d := range deletions {
		if d.ID == id {
			return true
		}
	}
	return false
}

// reconcilePhotos runs the three storage operations of a save: file-blob
// uploads, URL re-hosts (dishes plus a newly selected vendor image), and
// deletions. The operations have no ordering dependency and touch disjoint
// keys, so they run as a fan-out joined before the record update. The first
// error stops the save; nothing is compensated.
func (w *SaveWorkflow) reconcilePhotos(ctx context.Context, vendorID string, form SaveVendorForm) (map[string]string, *models.VendorPhoto, error) {
	var (
		fileUploads []models.ImageData
		urlUploads  []models.ImageData
		vendorImage = form.VendorImage
	)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		for _, staged := range form.StagedUploads {
			if !staged.IsFileUpload() {
				continue
			}
			url, err := w.photos.UploadVendorPhoto(vendorID, staged.FileName, staged.Data)
			if err != nil {
				return fmt.Errorf("could not upload photos: %w", err)
			}
			fileUploads = append(fileUploads, models.ImageData{ID: staged.ID, URL: url})
		}
		return nil
	})

	g.Go(func() error {
		for _, staged := range form.StagedUploads {
			if !staged.IsURLReference() {
				continue
			}
			url, err := w.photos.UploadVendorPhotoFromURL(ctx, vendorID, staged.ID, staged.SourceURL)
			if err != nil {
				return fmt.Errorf("could not upload photos: %w", err)
			}
			urlUploads = append(urlUploads, models.ImageData{ID: staged.ID, URL: url})
		}
		if form.VendorImageSource != "" {
			imageID := uuid.NewString()
			if vendorImage != nil && vendorImage.ID != "" {
				imageID = vendorImage.ID
			}
			url, err := w.photos.UploadVendorPhotoFromURL(ctx, vendorID, imageID, form.VendorImageSource)
			if err != nil {
				return fmt.Errorf("could not upload vendor image: %w", err)
			}
			vendorImage = &models.VendorPhoto{ID: imageID, URL: url}
		}
		return nil
	})

	g.Go(func() error {
		for _, deletion := range form.PendingDeletions {
			if deletion.URL == "" {
				continue
			}
			ok, err := w.photos.DeleteVendorPhoto(vendorID, deletion.URL)
			if err != nil {
				return fmt.Errorf("could not delete photos: %w", err)
			}
			if !ok {
				return fmt.Errorf("could not delete photo %s", deletion.URL)
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	uploaded := make(map[string]string, len(fileUploads)+len(urlUploads))
	for _, img := range fileUploads {
		uploaded[img.ID] = img.URL
	}
	for _, img := range urlUploads {
		uploaded[img.ID] = img.URL
	}

	return uploaded, vendorImage, nil
}

// mergeDishes builds the final dish list: existing dishes minus pending
// deletions in their original order, then newly uploaded dishes appended in
// staged order. The list is capped at the tier's allowance.
func mergeDishes(form SaveVendorForm, uploaded map[string]string) ([]models.OneDish, error) {
	final := make([]models.OneDish, 0, len(form.ExistingDishes)+len(form.StagedUploads))
	for _, dish := range form.ExistingDishes {
		if !isPendingDeletion(form.PendingDeletions, dish.ID) {
			final = append(final, dish)
		}
	}

	for _, staged := range form.StagedUploads {
		if isPendingDeletion(form.PendingDeletions, staged.ID) {
			continue
		}
		url, ok := uploaded[staged.ID]
		if !ok {
			return nil, fmt.Errorf("could not find an uploaded image for OneDish %s", staged.ID)
		}
		final = append(final, models.OneDish{
			ID:          staged.ID,
			Title:       staged.Title,
			Description: staged.Description,
			URL:         url,
		})
	}

	if limit := form.Tier.AllowedOneDishes(); len(final) > limit {
		final = final[:limit]
	}

	return final, nil
}

package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onedish-backend/internal/database"
	"onedish-backend/internal/handlers"
	"onedish-backend/internal/models"
	"onedish-backend/internal/services"
	"onedish-backend/internal/supabase"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeVendorStore struct {
	mu           sync.Mutex
	vendors      map[string]*models.Vendor
	searchResult []models.Vendor
	paginateErr  error
	getErr       error
	getCalls     int
	lastColumn   string
	lastSort     string
	lastSearch   string
	lastSkip     int
	lastTake     int
	deleted      []string
}

func newFakeVendorStore() *fakeVendorStore {
	return &fakeVendorStore{vendors: map[string]*models.Vendor{}}
}

func (f *fakeVendorStore) CreateVendor(v models.VendorWithoutID) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := "vendor-1"
	f.vendors[id] = &models.Vendor{
		ID: id, Name: v.Name, Address: v.Address, Tier: v.Tier, OneDishes: v.OneDishes,
	}
	return id, nil
}

func (f *fakeVendorStore) UpdateVendor(vendorID string, v models.VendorWithoutID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.vendors[vendorID]; !ok {
		return database.ErrVendorNotFound
	}
	f.vendors[vendorID] = &models.Vendor{
		ID: vendorID, Name: v.Name, Address: v.Address, Tier: v.Tier,
		Place: v.Place, VendorImage: v.VendorImage, OneDishes: v.OneDishes,
	}
	return nil
}

func (f *fakeVendorStore) GetVendor(vendorID string) (*models.Vendor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	vendor, ok := f.vendors[vendorID]
	if !ok {
		return nil, database.ErrVendorNotFound
	}
	return vendor, nil
}

func (f *fakeVendorStore) DeleteVendor(vendorID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.vendors, vendorID)
	f.deleted = append(f.deleted, vendorID)
	return nil
}

func (f *fakeVendorStore) SearchVendors(search string) ([]models.Vendor, error) {
	f.lastSearch = search
	return f.searchResult, nil
}

func (f *fakeVendorStore) PaginatedVendors(column, direction, search string, skip, take int) (int, []models.Vendor, error) {
	f.lastColumn = column
	f.lastSort = direction
	f.lastSearch = search
	f.lastSkip = skip
	f.lastTake = take
	if f.paginateErr != nil {
		return 0, nil, f.paginateErr
	}
	return len(f.searchResult), f.searchResult, nil
}

func newVendorsRouter(store *fakeVendorStore, storage *fakePhotoStorage) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := testLogger()
	workflow := services.NewSaveWorkflow(store, storage, logger)
	events := supabase.NewEventsClient(nil)
	handler := handlers.NewVendorsHandler(store, storage, workflow, events, logger)

	router := gin.New()
	router.GET("/api/v1/vendors", handler.SearchVendors)
	admin := router.Group("/api/v1/admin")
	admin.GET("/vendors", handler.ListVendors)
	admin.POST("/vendors", handler.CreateVendor)
	admin.POST("/vendors/save", handler.SaveVendor)
	admin.GET("/vendors/:vendorId", handler.GetVendor)
	admin.PATCH("/vendors/:vendorId", handler.UpdateVendor)
	admin.DELETE("/vendors/:vendorId", handler.DeleteVendor)
	return router
}

func decodeEnvelope(t *testing.T, body *bytes.Buffer) map[string]any {
	t.Helper()
	var envelope map[string]any
	require.NoError(t, json.Unmarshal(body.Bytes(), &envelope))
	return envelope
}

func TestListVendors_Defaults(t *testing.T) {
	store := newFakeVendorStore()
	router := newVendorsRouter(store, &fakePhotoStorage{})

	req, _ := http.NewRequest("GET", "/api/v1/admin/vendors", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, store.lastSkip)
	assert.Equal(t, 5, store.lastTake)
	assert.Equal(t, "name", store.lastColumn)
	assert.Equal(t, "asc", store.lastSort)
}

func TestListVendors_CoercesBadPageParams(t *testing.T) {
	store := newFakeVendorStore()
	router := newVendorsRouter(store, &fakePhotoStorage{})

	req, _ := http.NewRequest("GET", "/api/v1/admin/vendors?skip=abc&take=-3&sortType=sideways", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, store.lastSkip)
	assert.Equal(t, 5, store.lastTake)
	assert.Equal(t, "asc", store.lastSort)
}

func TestListVendors_UnsupportedColumn(t *testing.T) {
	store := newFakeVendorStore()
	store.paginateErr = errors.New(`column "secret" is not sortable`)
	router := newVendorsRouter(store, &fakePhotoStorage{})

	req, _ := http.NewRequest("GET", "/api/v1/admin/vendors?column=secret", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	envelope := decodeEnvelope(t, w.Body)
	assert.Contains(t, envelope["error"], "not sortable")
}

func TestSearchVendors(t *testing.T) {
	store := newFakeVendorStore()
	store.searchResult = []models.Vendor{
		{ID: "v1", Name: "Taqueria El Sol", Address: "12 Mission St", Tier: models.TierFirst},
	}
	router := newVendorsRouter(store, &fakePhotoStorage{})

	req, _ := http.NewRequest("GET", "/api/v1/vendors?search=taqueria", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "taqueria", store.lastSearch)
	assert.Contains(t, w.Body.String(), "Taqueria El Sol")
}

func TestCreateVendor_CollectsValidationMessages(t *testing.T) {
	router := newVendorsRouter(newFakeVendorStore(), &fakePhotoStorage{})

	body, _ := json.Marshal(models.AddVendorRequest{})
	req, _ := http.NewRequest("POST", "/api/v1/admin/vendors", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	envelope := decodeEnvelope(t, w.Body)
	assert.Contains(t, envelope["error"], "You need to provide a name")
	assert.Contains(t, envelope["error"], "You need to provide an address")
	assert.Contains(t, envelope["error"], "You need to select a tier")
}

func TestCreateVendor(t *testing.T) {
	store := newFakeVendorStore()
	router := newVendorsRouter(store, &fakePhotoStorage{})

	body, _ := json.Marshal(models.AddVendorRequest{Vendor: models.VendorWithoutID{
		Name: "Taqueria El Sol", Address: "12 Mission St", Tier: models.TierFirst,
	}})
	req, _ := http.NewRequest("POST", "/api/v1/admin/vendors", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	envelope := decodeEnvelope(t, w.Body)
	assert.Equal(t, "vendor-1", envelope["data"])
}

func TestGetVendor_NotFound(t *testing.T) {
	router := newVendorsRouter(newFakeVendorStore(), &fakePhotoStorage{})

	req, _ := http.NewRequest("GET", "/api/v1/admin/vendors/missing", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	envelope := decodeEnvelope(t, w.Body)
	assert.Equal(t, "Could not find vendor", envelope["error"])
}

func TestDeleteVendor(t *testing.T) {
	store := newFakeVendorStore()
	store.vendors["v1"] = &models.Vendor{ID: "v1", Name: "Taqueria El Sol"}
	storage := &fakePhotoStorage{}
	router := newVendorsRouter(store, storage)

	req, _ := http.NewRequest("DELETE", "/api/v1/admin/vendors/v1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	envelope := decodeEnvelope(t, w.Body)
	assert.Equal(t, true, envelope["data"])
	assert.Equal(t, []string{"v1"}, store.deleted)
	assert.Equal(t, []string{"v1"}, storage.deleteAllCalls)
}

func TestDeleteVendor_ExistenceProbeError(t *testing.T) {
	store := newFakeVendorStore()
	store.vendors["v1"] = &models.Vendor{ID: "v1", Name: "Taqueria El Sol"}
	store.getErr = errors.New("connection reset")
	storage := &fakePhotoStorage{}
	router := newVendorsRouter(store, storage)

	req, _ := http.NewRequest("DELETE", "/api/v1/admin/vendors/v1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// A transient store failure must stop the delete, not fall through to it.
	assert.Equal(t, http.StatusBadRequest, w.Code)
	envelope := decodeEnvelope(t, w.Body)
	assert.Equal(t, "Could not delete vendor", envelope["error"])
	assert.Empty(t, store.deleted)
	assert.Empty(t, storage.deleteAllCalls)
}

func TestSaveVendor_ValidationError(t *testing.T) {
	router := newVendorsRouter(newFakeVendorStore(), &fakePhotoStorage{})

	body, _ := json.Marshal(models.SaveVendorRequest{})
	req, _ := http.NewRequest("POST", "/api/v1/admin/vendors/save", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	envelope := decodeEnvelope(t, w.Body)
	assert.Contains(t, envelope["error"], "You need to provide a name")
}

func TestSaveVendor_CreateFlow(t *testing.T) {
	store := newFakeVendorStore()
	storage := &fakePhotoStorage{}
	router := newVendorsRouter(store, storage)

	body, _ := json.Marshal(models.SaveVendorRequest{
		Name:    "Taqueria El Sol",
		Address: "12 Mission St",
		Tier:    models.TierFirst,
		StagedUploads: []models.StagedUploadRequest{
			{ID: "d1", Title: "Carnitas", FileName: "carnitas.jpg", Data: []byte("jpeg-bytes")},
		},
	})
	req, _ := http.NewRequest("POST", "/api/v1/admin/vendors/save", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data models.Vendor `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "vendor-1", envelope.Data.ID)
	require.Len(t, envelope.Data.OneDishes, 1)
	assert.Equal(t, "d1", envelope.Data.OneDishes[0].ID)
	assert.Equal(t, []string{"carnitas.jpg"}, storage.fileUploads)
}

func TestSaveVendor_EditMissingVendor(t *testing.T) {
	router := newVendorsRouter(newFakeVendorStore(), &fakePhotoStorage{})

	body, _ := json.Marshal(models.SaveVendorRequest{
		VendorID: "missing",
		Name:     "Taqueria El Sol",
		Address:  "12 Mission St",
		Tier:     models.TierFirst,
	})
	req, _ := http.NewRequest("POST", "/api/v1/admin/vendors/save", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	envelope := decodeEnvelope(t, w.Body)
	assert.Equal(t, "Could not find vendor", envelope["error"])
}

func TestSaveVendor_InvalidFormSkipsStoreRead(t *testing.T) {
	store := newFakeVendorStore()
	storage := &fakePhotoStorage{}
	router := newVendorsRouter(store, storage)

	// Edit-mode request with no name: the field failure must respond before
	// the vendor record is ever read.
	body, _ := json.Marshal(models.SaveVendorRequest{
		VendorID: "v1",
		Address:  "12 Mission St",
		Tier:     models.TierFirst,
	})
	req, _ := http.NewRequest("POST", "/api/v1/admin/vendors/save", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	envelope := decodeEnvelope(t, w.Body)
	assert.Contains(t, envelope["error"], "You need to provide a name")
	assert.Equal(t, 0, store.getCalls)
	assert.Empty(t, storage.fileUploads)
	assert.Empty(t, storage.urlUploads)
}

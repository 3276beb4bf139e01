package supabase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	storage "github.com/supabase-community/storage-go"
)

// StorageClient is the object storage gateway for vendor photos. Objects are
// keyed by vendor id and file name, so re-uploading the same staged image
// overwrites rather than duplicates.
type StorageClient struct {
	client     *storage.Client
	httpClient *http.Client
	bucket     string
	baseURL    string
}

func NewStorageClient(supabaseURL, serviceKey, bucket string) (*StorageClient, error) {
	baseURL := strings.TrimSuffix(supabaseURL, "/")
	client := storage.NewClient(baseURL+"/storage/v1", serviceKey, nil)

	return &StorageClient{
		client: client,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		bucket:  bucket,
		baseURL: baseURL,
	}, nil
}

// UploadVendorPhoto stores a photo under vendors/{vendorID}/{fileName} and
// returns the public URL for it.
func (s *StorageClient) UploadVendorPhoto(vendorID, fileName string, data []byte) (string, error) {
	objectKey := fmt.Sprintf("vendors/%s/%s", vendorID, fileName)

	contentType := contentTypeForFile(fileName)
	upsert := true
	_, err := s.client.UploadFile(s.bucket, objectKey, bytes.NewReader(data), storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload vendor photo: %w", err)
	}

	return s.PublicURL(objectKey), nil
}

// UploadVendorPhotoFromURL fetches the bytes behind sourceURL and re-hosts
// them as a vendor photo named after the staged image id.
func (s *StorageClient) UploadVendorPhotoFromURL(ctx context.Context, vendorID, imageID, sourceURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch source image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("failed to fetch source image: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read source image: %w", err)
	}

	return s.UploadVendorPhoto(vendorID, imageID+".png", data)
}

// DeleteVendorPhoto removes the object behind imageURL. The key is derived
// from the gateway's own URL scheme; a URL outside it is an error. Deleting an
// already absent object is a success.
func (s *StorageClient) DeleteVendorPhoto(vendorID, imageURL string) (bool, error) {
	objectKey, ok := s.ObjectKeyFromURL(imageURL)
	if !ok {
		return false, fmt.Errorf("image url %q is not served from bucket %q", imageURL, s.bucket)
	}

	_, err := s.client.RemoveFile(s.bucket, []string{objectKey})
	if err != nil {
		if isNotFound(err) {
			return true, nil
		}
		return false, fmt.Errorf("failed to delete vendor photo: %w", err)
	}

	return true, nil
}

// DeleteAllVendorPhotos removes every object stored for the vendor. Used when
// a vendor is deleted outright.
func (s *StorageClient) DeleteAllVendorPhotos(vendorID string) error {
	prefix := fmt.Sprintf("vendors/%s/", vendorID)

	files, err := s.client.ListFiles(s.bucket, prefix, storage.FileSearchOptions{
		Limit: 1000,
	})
	if err != nil {
		return fmt.Errorf("failed to list vendor photos: %w", err)
	}

	if len(files) == 0 {
		return nil
	}

	objectKeys := make([]string, len(files))
	for i, file := range files {
		objectKeys[i] = file.Name
	}
	if _, err := s.client.RemoveFile(s.bucket, objectKeys); err != nil {
		return fmt.Errorf("failed to delete vendor photos: %w", err)
	}

	return nil
}

// PublicURL returns the fully qualified retrieval URL for an object key.
func (s *StorageClient) PublicURL(objectKey string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, objectKey)
}

// ObjectKeyFromURL inverts PublicURL. The second return is false when the URL
// was not produced by this gateway.
func (s *StorageClient) ObjectKeyFromURL(imageURL string) (string, bool) {
	prefix := fmt.Sprintf("%s/storage/v1/object/public/%s/", s.baseURL, s.bucket)
	if !strings.HasPrefix(imageURL, prefix) {
		return "", false
	}
	return strings.TrimPrefix(imageURL, prefix), true
}

func contentTypeForFile(fileName string) string {
	lower := strings.ToLower(fileName)
	switch {
	case strings.HasSuffix(lower, ".png"):
		return "image/png"
	case strings.HasSuffix(lower, ".gif"):
		return "image/gif"
	case strings.HasSuffix(lower, ".webp"):
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

func isNotFound(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not_found") || strings.Contains(msg, "not found")
}

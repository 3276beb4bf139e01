package models

// AddVendorRequest is the body for vendor create and update calls.
type AddVendorRequest struct {
	Vendor VendorWithoutID `json:"vendor"`
}

// ImageDataRequest identifies an externally hosted image to re-host, keyed by
// the staged image id chosen by the client.
type ImageDataRequest struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type SaveVendorPhotosFromURLRequest struct {
	ImageData       []ImageDataRequest `json:"imageData"`
	VendorImageData *ImageDataRequest  `json:"vendorImageData,omitempty"`
}

type DeleteVendorPhotosRequest struct {
	ImageURLs []string `json:"imageUrls"`
}

// StagedUploadRequest is one dish image pending upload in a composite save.
// Exactly one of Data or SourceURL must be set: Data carries raw file bytes
// (base64 over the wire), SourceURL points at an externally hosted image to
// re-host.
type StagedUploadRequest struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	FileName    string `json:"fileName,omitempty"`
	Data        []byte `json:"data,omitempty"`
	SourceURL   string `json:"sourceUrl,omitempty"`
}

// PendingDeletionRequest marks a dish image for deletion. The storage object
// is only removed as part of a successful save.
type PendingDeletionRequest struct {
	ID  string `json:"id"`
	URL string `json:"url,omitempty"`
}

// SaveVendorRequest drives the composite save endpoint: the full form state
// of the vendor dialog in one request.
type SaveVendorRequest struct {
	VendorID          string                   `json:"vendorId,omitempty"`
	Name              string                   `json:"name"`
	Address           string                   `json:"address"`
	Tier              Tier                     `json:"tier"`
	Place             *VendorPlace             `json:"place,omitempty"`
	VendorImage       *VendorPhoto             `json:"vendorImage,omitempty"`
	VendorImageSource string                   `json:"vendorImageSource,omitempty"`
	StagedUploads     []StagedUploadRequest    `json:"stagedUploads,omitempty"`
	PendingDeletions  []PendingDeletionRequest `json:"pendingDeletions,omitempty"`
}

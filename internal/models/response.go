package models

// APIResponse is the envelope shared by every endpoint. Presence of Error
// indicates failure regardless of the transport status code.
type APIResponse struct {
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// ImageData pairs a client-chosen image id with its storage URL after upload.
type ImageData struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type SaveVendorPhotosFromURLResponse struct {
	ImageData       []ImageData `json:"imageData"`
	VendorImageData *ImageData  `json:"vendorImageData,omitempty"`
}

// VendorPageData is one page of the admin vendor table.
type VendorPageData struct {
	Data  []Vendor `json:"data"`
	Total int      `json:"total"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

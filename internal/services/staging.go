package services

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
)

// StagedDish is a dish image pending upload. It exists only in memory between
// staging and save and is discarded when the save surface closes. Exactly one
// image source must be set: Data for a raw file blob, SourceURL for an
// externally hosted image to re-host.
type StagedDish struct {
	ID          string
	Title       string
	Description string
	FileName    string
	Data        []byte
	SourceURL   string
	Preview     string
}

func (s StagedDish) IsFileUpload() bool {
	return len(s.Data) > 0
}

func (s StagedDish) IsURLReference() bool {
	return len(s.Data) == 0 && s.SourceURL != ""
}

func (s StagedDish) Validate() error {
	if s.ID == "" {
		return errors.New("staged dish needs an id")
	}
	if s.Title == "" {
		return errors.New("staged dish needs a title")
	}
	hasData := len(s.Data) > 0
	hasURL := s.SourceURL != ""
	if hasData == hasURL {
		return errors.New("staged dish needs exactly one of file data or a source url")
	}
	if hasData && s.FileName == "" {
		return errors.New("staged dish file upload needs a file name")
	}
	return nil
}

// PendingDeletion marks a dish or vendor image for deletion. Only entries
// with a storage URL have an object to remove; a URL from the places provider
// was never ours to delete.
type PendingDeletion struct {
	ID  string
	URL string
}

// CompressPreview produces a small data-URL preview for a staged image so the
// form can show it without holding the full file. The image is downscaled to
// fit maxDim and re-encoded as JPEG at the given quality.
func CompressPreview(data []byte, maxDim, quality int) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	img = downscale(img, maxDim)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return "", fmt.Errorf("failed to encode preview: %w", err)
	}

	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// downscale shrinks img so neither dimension exceeds maxDim, using
// nearest-neighbor sampling. Previews do not need resampling quality.
func downscale(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxDim && h <= maxDim {
		return img
	}

	scale := float64(maxDim) / float64(w)
	if h > w {
		scale = float64(maxDim) / float64(h)
	}
	dw := int(float64(w) * scale)
	dh := int(float64(h) * scale)
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	for y := 0; y < dh; y++ {
		srcY := bounds.Min.Y + y*h/dh
		for x := 0; x < dw; x++ {
			srcX := bounds.Min.X + x*w/dw
			dst.Set(x, y, img.At(srcX, srcY))
		}
	}
	return dst
}

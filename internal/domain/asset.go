package domain

import (
	"errors"
	"io"
)

// ErrInvalidAssetType is returned when an upload is not an accepted image
// type. Nothing is written to the store when this is returned.
var ErrInvalidAssetType = errors.New("asset must be a jpeg, jpg, png, or gif image")

// AssetUpload carries the raw bytes of an uploaded image together with the
// client-supplied filename and declared MIME type. Both the filename
// extension and the MIME type are validated against the image allow-list.
type AssetUpload struct {
	Data     []byte
	Filename string
	MimeType string
}

// AssetStore manages the lifecycle of stored event images. Refs are opaque,
// generated, and collision-resistant; business logic never builds file paths.
type AssetStore interface {
	// Store validates and durably writes the upload, returning its ref.
	Store(data []byte, filename, mimeType string) (string, error)
	// Replace stores the new upload first and deletes oldRef only after the
	// new asset is durably written. A missing old file is tolerated.
	Replace(oldRef string, data []byte, filename, mimeType string) (string, error)
	// Delete removes the asset. Deleting an absent ref is not an error.
	Delete(ref string) error
	// Open returns the asset's content for serving.
	Open(ref string) (io.ReadCloser, error)
}

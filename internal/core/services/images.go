package services

import (
	"bytes"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/AchilleasB/rentals/marketplace-service/internal/core/domain"
	"github.com/AchilleasB/rentals/marketplace-service/internal/core/ports"
)

const (
	DefaultMaxImageBytes = 5 << 20
	DefaultMaxImages     = 10

	// UploadsPrefix is the path under which stored images are served.
	UploadsPrefix = "/uploads/"
)

var allowedImageTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// preparedImage is an upload that passed validation and is held in
// memory until it is stored.
type preparedImage struct {
	name        string
	contentType string
	data        []byte
}

func (p preparedImage) path() string { return UploadsPrefix + p.name }

// prepareImages validates every upload before anything is written. The
// extension must be allowlisted and agree with the sniffed content type.
func prepareImages(uploads []ports.ImageUpload, maxBytes int64, maxCount int) ([]preparedImage, error) {
	if len(uploads) > maxCount {
		return nil, domain.NewError(domain.KindInvalidInput, "at most %d images may be uploaded", maxCount)
	}
	prepared := make([]preparedImage, 0, len(uploads))
	for _, up := range uploads {
		ext := strings.ToLower(filepath.Ext(up.Filename))
		want, ok := allowedImageTypes[ext]
		if !ok {
			return nil, domain.NewError(domain.KindInvalidInput, "file %q: only .jpeg, .jpg and .png images are allowed", up.Filename)
		}
		if up.Size > maxBytes {
			return nil, domain.NewError(domain.KindInvalidInput, "file %q exceeds the %d byte limit", up.Filename, maxBytes)
		}

		data, err := io.ReadAll(io.LimitReader(up.Content, maxBytes+1))
		if err != nil {
			return nil, domain.WrapError(domain.KindInvalidInput, err, "file %q could not be read", up.Filename)
		}
		if int64(len(data)) > maxBytes {
			return nil, domain.NewError(domain.KindInvalidInput, "file %q exceeds the %d byte limit", up.Filename, maxBytes)
		}
		if got := http.DetectContentType(data); got != want {
			return nil, domain.NewError(domain.KindInvalidInput, "file %q is not a valid %s image", up.Filename, strings.TrimPrefix(ext, "."))
		}

		prepared = append(prepared, preparedImage{
			name:        uuid.NewString() + ext,
			contentType: want,
			data:        data,
		})
	}
	return prepared, nil
}

func (p preparedImage) reader() io.Reader { return bytes.NewReader(p.data) }

// ImageName extracts the stored blob name from an image path.
func ImageName(path string) (string, bool) {
	name, ok := strings.CutPrefix(path, UploadsPrefix)
	if !ok || name == "" || strings.ContainsAny(name, "/\\") {
		return "", false
	}
	return name, true
}

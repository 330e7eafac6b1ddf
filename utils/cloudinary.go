package utils

import (
	"context"
	"errors"
	"io"
	"regexp"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// ErrAssetNotFound is returned by DeleteImage when the remote asset does not
// exist for the given public ID.
var ErrAssetNotFound = errors.New("remote asset not found")

var cld *cloudinary.Cloudinary

// InitCloudinary builds the hosted image service client from the
// CLOUDINARY_URL environment variable.
func InitCloudinary() error {
	client, err := cloudinary.New()
	if err != nil {
		return err
	}
	cld = client
	return nil
}

// UploadedImage is what the image service hands back for one stored file.
type UploadedImage struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
}

// UploadImage forwards the file to the image service under the given
// storage key and relays the service-assigned URL and identifier.
func UploadImage(ctx context.Context, file io.Reader, publicID string) (*UploadedImage, error) {
	resp, err := cld.Upload.Upload(ctx, file, uploader.UploadParams{
		PublicID: publicID,
	})
	if err != nil {
		return nil, err
	}

	return &UploadedImage{
		URL:      resp.SecureURL,
		PublicID: resp.PublicID,
	}, nil
}

// PublicIDFromURL derives the storage public ID from a Cloudinary delivery
// URL (".../image/upload/v123/<publicID>.<ext>"). Returns "" for URLs that
// are not Cloudinary asset URLs.
func PublicIDFromURL(rawURL string) string {
	const marker = "/upload/"
	idx := strings.Index(rawURL, marker)
	if idx < 0 {
		return ""
	}

	path := rawURL[idx+len(marker):]

	// Drop the version segment if present.
	if first, rest, found := strings.Cut(path, "/"); found && versionSegment.MatchString(first) {
		path = rest
	}

	if dot := strings.LastIndex(path, "."); dot > 0 {
		path = path[:dot]
	}
	return path
}

var versionSegment = regexp.MustCompile(`^v\d+$`)

// DeleteImage removes a remote asset by its public ID.
func DeleteImage(ctx context.Context, publicID string) error {
	resp, err := cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID: publicID,
	})
	if err != nil {
		return err
	}
	if resp.Result == "not found" {
		return ErrAssetNotFound
	}
	return nil
}

package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/soleshop/soleshop-backend-go/utils"
)

const (
	maxUploadBytes = 5 * 1024 * 1024
	maxUploadFiles = 10
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// sniffMIME reads the first 512 bytes to detect the content type, then
// resets the reader so the upload starts from byte 0.
func sniffMIME(file multipart.File) (string, error) {
	buf := make([]byte, 512)
	n, err := file.Read(buf)
	if err != nil && err != io.EOF {
		return "", err
	}
	mime := http.DetectContentType(buf[:n])

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return mime, nil
}

// UploadFileResponse describes one stored file.
type UploadFileResponse struct {
	URL       string `json:"url"`
	PublicID  string `json:"publicId"`
	IsPrimary bool   `json:"isPrimary"`
}

func uploadOne(ctx context.Context, header *multipart.FileHeader, isPrimary bool) (*UploadFileResponse, int, error) {
	if header.Size > maxUploadBytes {
		return nil, http.StatusBadRequest, fmt.Errorf("file %s exceeds the 5MB limit", header.Filename)
	}

	file, err := header.Open()
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}
	defer file.Close()

	mime, err := sniffMIME(file)
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}
	if !allowedImageTypes[mime] {
		return nil, http.StatusBadRequest, fmt.Errorf("unsupported file type %s", mime)
	}

	uploaded, err := utils.UploadImage(ctx, file, "products/"+uuid.NewString())
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}

	return &UploadFileResponse{
		URL:       uploaded.URL,
		PublicID:  uploaded.PublicID,
		IsPrimary: isPrimary,
	}, http.StatusOK, nil
}

func UploadImage(c echo.Context) error {
	header, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "No image file provided"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	result, status, err := uploadOne(ctx, header, true)
	if err != nil {
		if status == http.StatusInternalServerError {
			zap.L().Error("image upload failed", zap.String("file", header.Filename), zap.Error(err))
			return c.JSON(status, map[string]string{"message": "Failed to upload image"})
		}
		return c.JSON(status, map[string]string{"message": err.Error()})
	}

	return c.JSON(http.StatusCreated, result)
}

// UploadImages stores up to 10 files; the first one is marked primary by
// convention.
func UploadImages(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid multipart form"})
	}

	files := form.File["images"]
	if len(files) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "No image files provided"})
	}
	if len(files) > maxUploadFiles {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Too many files, at most 10 allowed"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 60*time.Second)
	defer cancel()

	results := make([]UploadFileResponse, 0, len(files))
	for i, header := range files {
		result, status, err := uploadOne(ctx, header, i == 0)
		if err != nil {
			if status == http.StatusInternalServerError {
				zap.L().Error("image upload failed", zap.String("file", header.Filename), zap.Error(err))
				return c.JSON(status, map[string]string{"message": "Failed to upload images"})
			}
			return c.JSON(status, map[string]string{"message": err.Error()})
		}
		results = append(results, *result)
	}

	return c.JSON(http.StatusCreated, results)
}

// DeleteImage removes one remote asset. The route is a wildcard because
// public IDs carry their folder prefix ("products/<uuid>").
func DeleteImage(c echo.Context) error {
	publicID := c.Param("*")
	if publicID == "" {
		publicID = c.Param("publicId")
	}
	if publicID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Missing public ID"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	if err := utils.DeleteImage(ctx, publicID); err != nil {
		if errors.Is(err, utils.ErrAssetNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"message": "Image not found"})
		}
		zap.L().Error("image deletion failed", zap.String("publicId", publicID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to delete image"})
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Image deleted"})
}

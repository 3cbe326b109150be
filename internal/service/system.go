package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/vmtran/tourbook/internal/model"
)

// SettingService fetches system-wide configuration rows.
type SettingService interface {
	Settings(ctx context.Context) ([]model.Setting, error)
}

type SettingServiceImpl struct {
	gw Gateway
}

var _ SettingService = (*SettingServiceImpl)(nil)

func NewSettingService(gw Gateway) *SettingServiceImpl {
	return &SettingServiceImpl{gw: gw}
}

func (s *SettingServiceImpl) Settings(ctx context.Context) ([]model.Setting, error) {
	var out []model.Setting
	if err := s.gw.Get(ctx, PathSystem, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Media image type and resource type codes used by the upload endpoint.
const (
	ImageTypeReview      = "0"
	ImageTypeDestination = "1"
	ImageTypeTour        = "2"

	ResourceTypeImage = "0"
	ResourceTypeVideo = "1"
)

// UploadFile is one file in a media upload.
type UploadFile struct {
	Name        string
	ContentType string
	Content     io.Reader
}

// UploadService pushes media files to the backend.
type UploadService interface {
	// Upload sends files in one multipart request; imageType applies to all
	// of them. Returns the stored URLs in file order.
	Upload(ctx context.Context, files []UploadFile, imageType, resourceType string) ([]string, error)
}

type UploadServiceImpl struct {
	gw Gateway
}

var _ UploadService = (*UploadServiceImpl)(nil)

func NewUploadService(gw Gateway) *UploadServiceImpl {
	return &UploadServiceImpl{gw: gw}
}

func (s *UploadServiceImpl) Upload(ctx context.Context, files []UploadFile, imageType, resourceType string) ([]string, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("upload: no files")
	}
	if resourceType == "" {
		resourceType = ResourceTypeImage
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for i, f := range files {
		name := f.Name
		if name == "" {
			name = fmt.Sprintf("image_%d.jpg", i)
		}
		part, err := w.CreateFormFile("files", name)
		if err != nil {
			return nil, fmt.Errorf("upload: %w", err)
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return nil, fmt.Errorf("upload: read %s: %w", name, err)
		}
		if err := w.WriteField("types", imageType); err != nil {
			return nil, fmt.Errorf("upload: %w", err)
		}
		if err := w.WriteField("resourceType", resourceType); err != nil {
			return nil, fmt.Errorf("upload: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("upload: %w", err)
	}

	var resp struct {
		URLs []string `json:"urls"`
	}
	if err := s.gw.DoRaw(ctx, http.MethodPost, PathMedia, w.FormDataContentType(), buf.Bytes(), &resp); err != nil {
		return nil, err
	}
	return resp.URLs, nil
}

package admin

import (
	"fmt"
	"io"
	"mime/multipart"
	"slices"
	"strings"

	"furnistor/storefront/internal/client"
	"furnistor/storefront/internal/config"
)

// ValidationError blocks a submission before anything is sent to the backend.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// FileInfo is what the rule needs to know about an uploaded file.
type FileInfo struct {
	Name      string
	MediaType string
	Size      int64
}

// FileRule limits the image input of the admin forms.
type FileRule struct {
	MaxFiles   int
	Extensions []string
	MediaTypes []string
}

func NewFileRule(cfg config.AdminConfig) FileRule {
	return FileRule{
		MaxFiles:   cfg.MaxFiles,
		Extensions: cfg.AllowedExtensions,
		MediaTypes: cfg.AllowedMediaTypes,
	}
}

// Validate accepts zero files. It rejects more than MaxFiles files, and any
// file whose extension and media type are both outside the allow-lists.
func (r FileRule) Validate(files []FileInfo) error {
	if r.MaxFiles > 0 && len(files) > r.MaxFiles {
		noun := "file"
		if r.MaxFiles != 1 {
			noun = "files"
		}
		return &ValidationError{Message: fmt.Sprintf("Maximum %d %s allowed", r.MaxFiles, noun)}
	}

	for _, f := range files {
		if slices.Contains(r.MediaTypes, f.MediaType) {
			continue
		}
		if slices.Contains(r.Extensions, extension(f.Name)) {
			continue
		}
		return &ValidationError{
			Message: fmt.Sprintf("Only %s image formats are allowed. Please choose valid files.", formatNames(r.Extensions)),
		}
	}
	return nil
}

// extension is the lower-cased text after the last dot, or the whole name
// when there is no dot.
func extension(name string) string {
	if i := strings.LastIndex(name, "."); i != -1 {
		name = name[i+1:]
	}
	return strings.ToLower(name)
}

var formatDisplayNames = map[string]string{
	"avif": "AVIF",
	"webp": "WebP",
	"jpg":  "JPEG",
	"jpeg": "JPEG",
	"png":  "PNG",
}

func formatNames(exts []string) string {
	names := make([]string, 0, len(exts))
	for _, ext := range exts {
		name, ok := formatDisplayNames[ext]
		if !ok {
			name = strings.ToUpper(ext)
		}
		names = append(names, name)
	}

	switch len(names) {
	case 0:
		return "image"
	case 1:
		return names[0]
	default:
		return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
	}
}

// fileInfos describes multipart headers without reading their content.
func fileInfos(headers []*multipart.FileHeader) []FileInfo {
	infos := make([]FileInfo, 0, len(headers))
	for _, h := range headers {
		infos = append(infos, FileInfo{
			Name:      h.Filename,
			MediaType: h.Header.Get("Content-Type"),
			Size:      h.Size,
		})
	}
	return infos
}

// readUploads loads validated files into submission uploads.
func readUploads(field string, headers []*multipart.FileHeader) ([]client.Upload, error) {
	uploads := make([]client.Upload, 0, len(headers))
	for _, h := range headers {
		f, err := h.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open upload %s: %w", h.Filename, err)
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read upload %s: %w", h.Filename, err)
		}

		uploads = append(uploads, client.Upload{
			Field:       field,
			FileName:    h.Filename,
			ContentType: h.Header.Get("Content-Type"),
			Content:     content,
		})
	}
	return uploads, nil
}

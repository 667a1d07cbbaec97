package service

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"furnistor/storefront/internal/config"
)

var ErrTemplateNotFound = errors.New("template not found")

var (
	productPathRe  = regexp.MustCompile(`^/product/[^/]+/?$`)
	categoryPathRe = regexp.MustCompile(`/category/[^/]+/?$`)
	indexPathRe    = regexp.MustCompile(`^/([^/]*index[^/]*\.html)/[^/]+/?$`)
	indexSlugRe    = regexp.MustCompile(`^/index_[^/]+\.html$`)
)

// Theme maps storefront request paths to template files on disk.
type Theme struct {
	dir      string
	index    string
	product  string
	category string
}

func NewTheme(cfg config.ThemeConfig) *Theme {
	return &Theme{
		dir:      cfg.Dir,
		index:    cfg.IndexTemplate,
		product:  cfg.ProductTemplate,
		category: cfg.CategoryTemplate,
	}
}

// Resolve returns the template file that serves requestPath. Existing theme
// files win; the clean storefront routes fall back to the configured page
// templates.
func (t *Theme) Resolve(requestPath string) (string, error) {
	clean := path.Clean("/" + requestPath)

	if clean == "/" {
		return t.existing(t.index)
	}

	if strings.HasSuffix(clean, ".html") {
		if file, err := t.existing(clean); err == nil {
			return file, nil
		}
	}

	switch {
	case productPathRe.MatchString(clean):
		return t.existing(t.product)
	case categoryPathRe.MatchString(clean):
		return t.existing(t.category)
	}

	if m := indexPathRe.FindStringSubmatch(clean); m != nil {
		return t.existing(m[1])
	}

	// Mirrored product pages that have no file of their own.
	if indexSlugRe.MatchString(clean) {
		return t.existing(t.product)
	}

	return "", fmt.Errorf("%s: %w", requestPath, ErrTemplateNotFound)
}

// Load reads the template serving requestPath.
func (t *Theme) Load(requestPath string) ([]byte, error) {
	file, err := t.Resolve(requestPath)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read template %s: %w", file, err)
	}
	return data, nil
}

// existing joins name under the theme dir and checks it is a regular file.
func (t *Theme) existing(name string) (string, error) {
	rel := strings.TrimPrefix(path.Clean("/"+name), "/")
	if rel == "" {
		return "", ErrTemplateNotFound
	}

	file := filepath.Join(t.dir, filepath.FromSlash(rel))
	info, err := os.Stat(file)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("%s: %w", name, ErrTemplateNotFound)
	}
	return file, nil
}

package locator

import (
	"net/url"
	"regexp"
	"slices"
	"strings"

	"furnistor/storefront/internal/domain"
)

var (
	categoryPathRegex  = regexp.MustCompile(`/category/([^/]+)`)
	indexPathRegex     = regexp.MustCompile(`/[^/]*index[^/]*\.html/([^/]+)`)
	indexFileRegex     = regexp.MustCompile(`index_([^/]+)\.html`)
	productPathRegex   = regexp.MustCompile(`/product/([^/]+)`)
	indexFilenameRegex = regexp.MustCompile(`^index_(.+)\.html$`)
)

// legacyPages maps mirrored page filenames to what they show.
var legacyPages = map[string]domain.ResourceIdentifier{
	"index_tact-mirror.html":     {Kind: domain.ProductBySlug, Value: "tact-mirror"},
	"index_tact.html":            {Kind: domain.ProductBySlug, Value: "tact-mirror"},
	"index_mirrors.html":         {Kind: domain.CategoryBySlug, Value: "mirrors"},
	"index_rugs.html":            {Kind: domain.CategoryBySlug, Value: "rugs"},
	"index_decor.html":           {Kind: domain.CategoryBySlug, Value: "decor"},
	"index_newzealand-wool.html": {Kind: domain.ProductByArticle, Value: "NZ-WOOL-RUNNER-001"},
}

// nonProductSlugs are index_<slug>.html pages that are never product pages.
var nonProductSlugs = []string{"decor", "mirrors", "rugs", "tact", "tact-mirror"}

func category(slug string) (domain.ResourceIdentifier, bool) {
	return domain.ResourceIdentifier{Kind: domain.CategoryBySlug, Value: slug}, true
}

func categoryFromQuery(u *url.URL) (domain.ResourceIdentifier, bool) {
	if slug := u.Query().Get("category"); slug != "" {
		return category(slug)
	}
	return domain.ResourceIdentifier{}, false
}

func categoryFromCategoryPath(u *url.URL) (domain.ResourceIdentifier, bool) {
	if m := categoryPathRegex.FindStringSubmatch(u.Path); len(m) > 1 {
		return category(m[1])
	}
	return domain.ResourceIdentifier{}, false
}

func categoryFromIndexPath(u *url.URL) (domain.ResourceIdentifier, bool) {
	if m := indexPathRegex.FindStringSubmatch(u.Path); len(m) > 1 {
		return category(m[1])
	}
	return domain.ResourceIdentifier{}, false
}

func categoryFromLastSegment(u *url.URL) (domain.ResourceIdentifier, bool) {
	segments := pathSegments(u.Path)
	if len(segments) == 0 {
		return domain.ResourceIdentifier{}, false
	}
	last := segments[len(segments)-1]
	if strings.Contains(last, ".html") {
		return domain.ResourceIdentifier{}, false
	}
	return category(last)
}

func categoryFromIndexFilename(u *url.URL) (domain.ResourceIdentifier, bool) {
	if m := indexFileRegex.FindStringSubmatch(u.Path); len(m) > 1 {
		return category(m[1])
	}
	return domain.ResourceIdentifier{}, false
}

func productFromPath(u *url.URL) (domain.ResourceIdentifier, bool) {
	if m := productPathRegex.FindStringSubmatch(u.Path); len(m) > 1 {
		return domain.ResourceIdentifier{Kind: domain.ProductBySlug, Value: m[1]}, true
	}
	return domain.ResourceIdentifier{}, false
}

func productFromQuery(param string, kind domain.ResourceKind) Matcher {
	return func(u *url.URL) (domain.ResourceIdentifier, bool) {
		if v := u.Query().Get(param); v != "" {
			return domain.ResourceIdentifier{Kind: kind, Value: v}, true
		}
		return domain.ResourceIdentifier{}, false
	}
}

func productFromLegacyTable(u *url.URL) (domain.ResourceIdentifier, bool) {
	id, ok := legacyPages[PageFilename(u)]
	return id, ok
}

func productFromIndexFilename(u *url.URL) (domain.ResourceIdentifier, bool) {
	m := indexFilenameRegex.FindStringSubmatch(PageFilename(u))
	if len(m) < 2 || slices.Contains(nonProductSlugs, m[1]) {
		return domain.ResourceIdentifier{}, false
	}
	return domain.ResourceIdentifier{Kind: domain.ProductBySlug, Value: m[1]}, true
}

// PageFilename is the last non-empty path segment, "index.html" for the root.
func PageFilename(u *url.URL) string {
	segments := pathSegments(u.Path)
	if len(segments) == 0 {
		return "index.html"
	}
	return segments[len(segments)-1]
}

func pathSegments(path string) []string {
	var segments []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

package locator

import (
	"net/url"
	"slices"
	"strings"
)

// RewriteStagingURL maps a link that points at the staging site to the local
// page that mirrors it. ok is false for links that are not on the staging host.
func RewriteStagingURL(href, stagingHost string) (string, bool) {
	if stagingHost == "" {
		return "", false
	}

	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil || u.Hostname() == "" || !strings.Contains(u.Hostname(), stagingHost) {
		return "", false
	}

	path := u.Path
	if path == "" {
		path = "/"
	}
	path = strings.TrimSuffix(path, "/")
	parts := pathSegments(path)

	if i := slices.Index(parts, "product"); i != -1 && len(parts) > i+1 {
		return "index_" + parts[i+1] + ".html", true
	}
	if i := slices.Index(parts, "product-category"); i != -1 && len(parts) > i+1 {
		return "/index_decor/category/" + parts[i+1], true
	}
	if strings.Contains(path, "/products") {
		return "index_decor.html", true
	}
	return "/", true
}

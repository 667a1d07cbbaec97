package config

import (
	"net"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// ResolveAPIBaseURL picks the backend base URL for a page served from host:port.
// An explicit backend.base_url always wins. Live-preview ports talk to the
// remote backend, loopback hosts to the local one, everything else to the remote.
func (b BackendConfig) ResolveAPIBaseURL(host string, port int) string {
	if b.BaseURL != "" {
		return strings.TrimRight(b.BaseURL, "/")
	}

	if slices.Contains(b.LivePreviewPorts, port) {
		return strings.TrimRight(b.RemoteURL, "/")
	}

	if host == "localhost" || host == "127.0.0.1" {
		return strings.TrimRight(b.LocalURL, "/")
	}

	return strings.TrimRight(b.RemoteURL, "/")
}

// ResolveForPublicURL is ResolveAPIBaseURL for a public site URL such as
// "http://localhost:5500". Unparseable input falls back to the remote backend.
func (b BackendConfig) ResolveForPublicURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return b.ResolveAPIBaseURL("", 0)
	}

	host, portStr, err := net.SplitHostPort(u.Host)
	if err != nil {
		return b.ResolveAPIBaseURL(u.Host, 0)
	}

	port, _ := strconv.Atoi(portStr)
	return b.ResolveAPIBaseURL(host, port)
}

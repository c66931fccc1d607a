package imageproxy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"photofeed-backend/internal/apperr"
)

const (
	maxAvatarBytes     = 5 << 20
	maxAvatarRedirects = 10
)

// AvatarFetcher proxies profile pictures from a fixed set of CDN hosts so the
// browser never talks to them directly
type AvatarFetcher struct {
	httpClient   *http.Client
	allowedHosts []string
}

func NewAvatarFetcher(httpClient *http.Client, allowedHosts []string) *AvatarFetcher {
	hosts := make([]string, 0, len(allowedHosts))
	for _, h := range allowedHosts {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			hosts = append(hosts, h)
		}
	}
	f := &AvatarFetcher{allowedHosts: hosts}

	// every redirect hop must stay on the allow-list too
	client := *httpClient
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= maxAvatarRedirects {
			return fmt.Errorf("stopped after %d redirects", maxAvatarRedirects)
		}
		if req.URL.Scheme != "https" && req.URL.Scheme != "http" {
			return fmt.Errorf("avatar redirect to unsupported scheme %q", req.URL.Scheme)
		}
		if !f.hostAllowed(req.URL.Hostname()) {
			return fmt.Errorf("avatar redirect to host %q is not allowed", req.URL.Hostname())
		}
		return nil
	}
	f.httpClient = &client
	return f
}

// Validate parses rawURL and checks it against the scheme and host allow-list
func (f *AvatarFetcher) Validate(rawURL string) (*url.URL, error) {
	target, err := url.Parse(rawURL)
	if err != nil || target.Host == "" {
		return nil, errors.New("invalid avatar url")
	}
	if target.Scheme != "https" && target.Scheme != "http" {
		return nil, errors.New("unsupported avatar url scheme")
	}
	if !f.hostAllowed(target.Hostname()) {
		return nil, errors.New("avatar host is not allowed")
	}
	return target, nil
}

// hostAllowed matches exact hosts and "*.suffix" wildcard entries
func (f *AvatarFetcher) hostAllowed(host string) bool {
	host = strings.ToLower(host)
	for _, allowed := range f.allowedHosts {
		if suffix, ok := strings.CutPrefix(allowed, "*."); ok {
			if host == suffix || strings.HasSuffix(host, "."+suffix) {
				return true
			}
			continue
		}
		if host == allowed {
			return true
		}
	}
	return false
}

// Fetch returns the avatar body capped at maxAvatarBytes, along with its content type.
// The caller must close the body.
func (f *AvatarFetcher) Fetch(ctx context.Context, target *url.URL) (io.ReadCloser, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, "", apperr.Upstream("failed to create avatar request").WithCause(err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, "", apperr.Upstream("avatar request failed").WithCause(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, "", apperr.Upstream(fmt.Sprintf("avatar request failed with status %d", resp.StatusCode))
	}

	contentType := resp.Header.Get("Content-Type")
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "image/") {
		resp.Body.Close()
		return nil, "", apperr.Upstream(fmt.Sprintf("avatar has unexpected content type %q", contentType))
	}

	return limitedBody{Reader: io.LimitReader(resp.Body, maxAvatarBytes), Closer: resp.Body}, contentType, nil
}

type limitedBody struct {
	io.Reader
	io.Closer
}

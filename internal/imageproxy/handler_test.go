package imageproxy

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"photofeed-backend/internal/apperr"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type fakeTokens struct {
	err   error
	calls int
}

func (f *fakeTokens) AccessToken(context.Context) (*oauth2.Token, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &oauth2.Token{AccessToken: "t"}, nil
}

type fakeProvider struct {
	data      []byte
	err       error
	requested string
}

func (f *fakeProvider) GetFileStream(_ context.Context, itemID string, _ *oauth2.Token) (io.ReadCloser, error) {
	f.requested = itemID
	if f.err != nil {
		return nil, f.err
	}
	return io.NopCloser(bytes.NewReader(f.data)), nil
}

func serve(h *Handler, target string) *httptest.ResponseRecorder {
	e := echo.New()
	h.RegisterRoutes(e)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestImageProxy_MissingID(t *testing.T) {
	tokens := &fakeTokens{}
	h := NewHandler(tokens, &fakeProvider{}, testTranscoder(1<<20), NewAvatarFetcher(http.DefaultClient, nil))

	rec := serve(h, "/api/image")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Image ID is required"}`, rec.Body.String())
	assert.Equal(t, 0, tokens.calls)
}

func TestImageProxy_Success(t *testing.T) {
	provider := &fakeProvider{data: pngBytes(t, 16, 16)}
	h := NewHandler(&fakeTokens{}, provider, testTranscoder(1<<20), NewAvatarFetcher(http.DefaultClient, nil))

	rec := serve(h, "/api/image?id="+url.QueryEscape("ABC!123"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ABC!123", provider.requested)
	assert.Equal(t, "image/webp", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, "public, max-age=31536000, immutable", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "WEBP", rec.Body.String()[8:12])
}

func TestImageProxy_Failures(t *testing.T) {
	tcs := []struct {
		name     string
		tokens   *fakeTokens
		provider *fakeProvider
	}{
		{"TokenFailure", &fakeTokens{err: apperr.Auth("refresh failed")}, &fakeProvider{}},
		{"DownloadFailure", &fakeTokens{}, &fakeProvider{err: apperr.Upstream("status 404")}},
		{"NotAnImage", &fakeTokens{}, &fakeProvider{data: []byte("plain text")}},
	}
	for _, c := range tcs {
		t.Run(c.name, func(t *testing.T) {
			h := NewHandler(c.tokens, c.provider, testTranscoder(1<<20), NewAvatarFetcher(http.DefaultClient, nil))

			rec := serve(h, "/api/image?id=x")

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.JSONEq(t, `{"error":"Failed to fetch image"}`, rec.Body.String())
		})
	}
}

func TestAvatarFetcher_Validate(t *testing.T) {
	f := NewAvatarFetcher(http.DefaultClient, []string{"*.fbcdn.net", " avatars.example.com "})
	tcs := []struct {
		name  string
		url   string
		valid bool
	}{
		{"WildcardSubdomain", "https://scontent-mad1-1.xx.fbcdn.net/v/p.jpg", true},
		{"WildcardApex", "https://fbcdn.net/p.jpg", true},
		{"ExactHost", "https://AVATARS.example.com/a.png", true},
		{"LookalikeSuffix", "https://evilfbcdn.net/p.jpg", false},
		{"OtherHost", "https://example.org/p.jpg", false},
		{"BadScheme", "file:///etc/passwd", false},
		{"Relative", "/p.jpg", false},
	}
	for _, c := range tcs {
		t.Run(c.name, func(t *testing.T) {
			_, err := f.Validate(c.url)
			assert.Equal(t, c.valid, err == nil, "err=%v", err)
		})
	}
}

func avatarHandler(t *testing.T, upstream *httptest.Server) (*Handler, string) {
	t.Helper()
	u, err := url.Parse(upstream.URL)
	require.NoError(t, err)
	fetcher := NewAvatarFetcher(upstream.Client(), []string{u.Hostname()})
	return NewHandler(&fakeTokens{}, &fakeProvider{}, testTranscoder(1<<20), fetcher), upstream.URL
}

func TestAvatarProxy_Streams(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("jpeg-bytes"))
	}))
	defer upstream.Close()
	h, base := avatarHandler(t, upstream)

	rec := serve(h, "/api/avatar?url="+url.QueryEscape(base+"/a.jpg"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/jpeg", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, "public, max-age=86400", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "jpeg-bytes", rec.Body.String())
}

func TestAvatarProxy_UpstreamErrors(t *testing.T) {
	tcs := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"Status", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusForbidden) }},
		{"NotAnImage", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html></html>"))
		}},
	}
	for _, c := range tcs {
		t.Run(c.name, func(t *testing.T) {
			upstream := httptest.NewServer(c.handler)
			defer upstream.Close()
			h, base := avatarHandler(t, upstream)

			rec := serve(h, "/api/avatar?url="+url.QueryEscape(base+"/a.jpg"))

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.JSONEq(t, `{"error":"Failed to fetch avatar"}`, rec.Body.String())
		})
	}
}

func TestAvatarProxy_RedirectMustStayAllowed(t *testing.T) {
	reached := false
	foreign := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("png-bytes"))
	}))
	defer foreign.Close()
	foreignURL, err := url.Parse(foreign.URL)
	require.NoError(t, err)

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/same-host":
			http.Redirect(w, r, "/a.jpg", http.StatusFound)
		case "/a.jpg":
			w.Header().Set("Content-Type", "image/jpeg")
			_, _ = w.Write([]byte("jpeg-bytes"))
		default:
			// "localhost" is not on the allow-list, only the upstream's IP is
			http.Redirect(w, r, "http://localhost:"+foreignURL.Port()+"/p.png", http.StatusFound)
		}
	}))
	defer upstream.Close()
	h, base := avatarHandler(t, upstream)

	rec := serve(h, "/api/avatar?url="+url.QueryEscape(base+"/same-host"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "jpeg-bytes", rec.Body.String())

	rec = serve(h, "/api/avatar?url="+url.QueryEscape(base+"/elsewhere"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to fetch avatar"}`, rec.Body.String())
	assert.False(t, reached)
}

func TestNewAvatarFetcher_LeavesSharedClientAlone(t *testing.T) {
	shared := &http.Client{}
	NewAvatarFetcher(shared, []string{"*.fbcdn.net"})

	assert.Nil(t, shared.CheckRedirect)
}

func TestAvatarProxy_RejectsDisallowedHost(t *testing.T) {
	h := NewHandler(&fakeTokens{}, &fakeProvider{}, testTranscoder(1<<20), NewAvatarFetcher(http.DefaultClient, []string{"*.fbcdn.net"}))

	rec := serve(h, "/api/avatar?url="+url.QueryEscape("http://169.254.169.254/latest"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(h, "/api/avatar")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAvatarFetch_ConnectionRefused(t *testing.T) {
	f := NewAvatarFetcher(http.DefaultClient, []string{"localhost"})
	target, err := f.Validate("http://localhost:1/a.jpg")
	require.NoError(t, err)

	_, _, err = f.Fetch(context.Background(), target)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrUpstream))
}

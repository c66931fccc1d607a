package profile

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"photofeed-backend/pkg/models"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleUserData = `{
  "currentUser": {"username": "ana", "fullName": "Ana García", "avatar": "https://scontent.xx.fbcdn.net/a.jpg?x=1&y=2"},
  "suggestedUsers": [
    {"username": "luis", "avatar": "/avatars/luis.png", "followedBy": "Seguido por ana"},
    {"username": "marta", "avatar": "HTTP://example.com/m.jpg", "followedBy": "Nuevo"}
  ]
}`

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "user-data.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	p, err := Load(writeFile(t, sampleUserData))
	require.NoError(t, err)

	user := p.CurrentUser()
	assert.Equal(t, "ana", user.Username)
	assert.Equal(t, "Ana García", user.FullName)
	assert.Equal(t, "/api/avatar?url=https%3A%2F%2Fscontent.xx.fbcdn.net%2Fa.jpg%3Fx%3D1%26y%3D2", user.Avatar)

	suggested := p.SuggestedUsers()
	require.Len(t, suggested, 2)
	assert.Equal(t, "/avatars/luis.png", suggested[0].Avatar)
	assert.Equal(t, "/api/avatar?url=HTTP%3A%2F%2Fexample.com%2Fm.jpg", suggested[1].Avatar)
	assert.Equal(t, "Nuevo", suggested[1].FollowedBy)
}

func TestLoad_DoesNotLeakRewrites(t *testing.T) {
	p, err := Load(writeFile(t, sampleUserData))
	require.NoError(t, err)

	first := p.SuggestedUsers()
	first[0].Username = "changed"

	assert.Equal(t, "luis", p.SuggestedUsers()[0].Username)
	// rewriting twice would double-escape
	assert.Equal(t, p.CurrentUser().Avatar, p.CurrentUser().Avatar)
}

func TestLoad_MissingFile(t *testing.T) {
	p, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)

	assert.Equal(t, "unknown", p.CurrentUser().Username)
	assert.Empty(t, p.SuggestedUsers())
	assert.NotNil(t, p.SuggestedUsers())
}

func TestLoad_Malformed(t *testing.T) {
	_, err := Load(writeFile(t, `{"currentUser": [`))
	assert.Error(t, err)
}

func TestHandler_GetProfile(t *testing.T) {
	p, err := Load(writeFile(t, sampleUserData))
	require.NoError(t, err)

	e := echo.New()
	NewHandler(p).RegisterRoutes(e)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/profile", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body models.UserData
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ana", body.CurrentUser.Username)
	assert.Len(t, body.SuggestedUsers, 2)
	assert.Contains(t, body.CurrentUser.Avatar, "/api/avatar?url=")
}

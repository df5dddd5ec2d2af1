package router

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	contentrepo "resumecms/internal/content/repository"
	contentservice "resumecms/internal/content/service"
	"resumecms/internal/publish/repository"
	publishservice "resumecms/internal/publish/service"
	settingsrepo "resumecms/internal/settings/repository"
	settingsservice "resumecms/internal/settings/service"
	"resumecms/socket"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "router-secret"

func newServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	reg := contentservice.NewRegistry(contentrepo.NewMemoryStores())
	hub := socket.NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	svc, err := publishservice.NewPublishService(publishservice.Stages(reg), repository.NewMemoryLedger(), nil, hub)
	require.NoError(t, err)

	server := httptest.NewServer(Setup(Deps{
		Registry:    reg,
		Publish:     svc,
		Settings:    settingsservice.NewSettingsService(settingsrepo.NewMemoryStore()),
		Hub:         hub,
		JWTSecret:   secret,
		CORSOrigins: []string{"*"},
	}))
	t.Cleanup(server.Close)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "admin"}).SignedString([]byte(secret))
	require.NoError(t, err)
	return server, token
}

func send(t *testing.T, method, url, token, body string) (int, map[string]json.RawMessage) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &env))
	return resp.StatusCode, env
}

func TestDraftRoutesRequireAuth(t *testing.T) {
	server, _ := newServer(t)
	for _, path := range []string{"/api/v1/hero", "/api/v1/projects", "/api/v1/publish/status", "/api/v1/preview", "/api/v1/settings"} {
		code, env := send(t, http.MethodGet, server.URL+path, "", "")
		assert.Equal(t, http.StatusUnauthorized, code, path)
		assert.JSONEq(t, "false", string(env["success"]))
	}
}

func TestEditPublishAndReadPublic(t *testing.T) {
	server, token := newServer(t)

	code, _ := send(t, http.MethodPut, server.URL+"/api/v1/hero", token, `{"tagline":{"en":"Developer"}}`)
	require.Equal(t, http.StatusOK, code)
	code, _ = send(t, http.MethodPost, server.URL+"/api/v1/experiences", token, `{"company":{"en":"Acme"}}`)
	require.Equal(t, http.StatusCreated, code)

	code, env := send(t, http.MethodGet, server.URL+"/api/v1/published/hero", "", "")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{}`, string(env["data"]))

	code, env = send(t, http.MethodPost, server.URL+"/api/v1/publish", token, `{"label":"first"}`)
	require.Equal(t, http.StatusOK, code)
	var result struct {
		SectionsPublished []string `json:"sectionsPublished"`
	}
	require.NoError(t, json.Unmarshal(env["data"], &result))
	assert.Equal(t, []string{"hero", "experiences", "projects", "education", "skills", "certifications", "socialLinks"}, result.SectionsPublished)

	code, env = send(t, http.MethodGet, server.URL+"/api/v1/published/hero", "", "")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"tagline":{"en":"Developer"}}`, string(env["data"]))

	code, env = send(t, http.MethodGet, server.URL+"/api/v1/published/experiences", "", "")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env["data"]), `"Acme"`)

	code, env = send(t, http.MethodGet, server.URL+"/api/v1/publish/status", token, "")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env["data"]), `"versionCount":1`)
}

func TestItemRoutesUseSectionPathAndItemSegment(t *testing.T) {
	server, token := newServer(t)

	code, env := send(t, http.MethodPost, server.URL+"/api/v1/social-links", token, `{"platform":"github","url":"https://github.com/a"}`)
	require.Equal(t, http.StatusCreated, code)
	var created struct {
		ItemID string `json:"itemId"`
	}
	require.NoError(t, json.Unmarshal(env["data"], &created))
	require.NotEmpty(t, created.ItemID)

	code, env = send(t, http.MethodPut, server.URL+"/api/v1/social-links/"+created.ItemID, token, `{"platform":"github","url":"https://github.com/b"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env["data"]), "https://github.com/b")

	code, _ = send(t, http.MethodPut, server.URL+"/api/v1/social-links/reorder", token, `{"orderedIds":["`+created.ItemID+`"]}`)
	assert.Equal(t, http.StatusOK, code)

	code, env = send(t, http.MethodGet, server.URL+"/api/v1/social-links/"+created.ItemID, token, "")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env["data"]), created.ItemID)

	code, _ = send(t, http.MethodDelete, server.URL+"/api/v1/social-links/"+created.ItemID, token, "")
	assert.Equal(t, http.StatusOK, code)

	code, _ = send(t, http.MethodGet, server.URL+"/api/v1/published/social-links", "", "")
	assert.Equal(t, http.StatusOK, code)
}

func TestSectionKeyIsNotARoute(t *testing.T) {
	server, token := newServer(t)
	req, err := http.NewRequest(http.MethodGet, server.URL+"/api/v1/socialLinks", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSettingsRoute(t *testing.T) {
	server, token := newServer(t)

	code, env := send(t, http.MethodGet, server.URL+"/api/v1/settings", token, "")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env["data"]), `"defaultLocale":"en"`)

	code, env = send(t, http.MethodPut, server.URL+"/api/v1/settings", token, `{"supportedLocales":["en"],"defaultLocale":"en","pdfSectionVisibility":{}}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.JSONEq(t, "false", string(env["success"]))
}

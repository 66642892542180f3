package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aman/videotube-backend/internal/testutil"
)

func authedRequest(t *testing.T, method, url, accessToken string, body io.Reader, contentType string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func TestUserHandler_Me(t *testing.T) {
	ts := newTestServer(t)
	user, rawPassword := testutil.NewUserBuilder().WithEmail("me@example.com").Build(t, ts.repo)
	_, accessToken, _ := loginCookiesAndTokens(t, ts, "me@example.com", rawPassword)

	resp := authedRequest(t, http.MethodGet, ts.url("/me"), accessToken, nil, "")
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	env := decodeEnvelope(t, resp)

	var got map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, user.ID.String(), got["id"])
	assert.Equal(t, user.Email, got["email"])
	assert.NotContains(t, got, "passwordHash")
}

func TestUserHandler_MeRequiresAuth(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.url("/me"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUserHandler_UpdateProfile(t *testing.T) {
	ts := newTestServer(t)
	_, rawPassword := testutil.NewUserBuilder().WithEmail("profile@example.com").Build(t, ts.repo)
	_, accessToken, _ := loginCookiesAndTokens(t, ts, "profile@example.com", rawPassword)

	t.Run("successful update", func(t *testing.T) {
		body, _ := json.Marshal(map[string]string{"fullName": "Renamed User", "email": "renamed@example.com"})
		resp := authedRequest(t, http.MethodPatch, ts.url("/update-profile"), accessToken, bytes.NewReader(body), "application/json")
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)
		env := decodeEnvelope(t, resp)

		var got map[string]any
		require.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, "Renamed User", got["fullName"])
		assert.Equal(t, "renamed@example.com", got["email"])
	})

	t.Run("missing fields", func(t *testing.T) {
		body, _ := json.Marshal(map[string]string{"fullName": "Only Name"})
		resp := authedRequest(t, http.MethodPatch, ts.url("/update-profile"), accessToken, bytes.NewReader(body), "application/json")
		defer resp.Body.Close()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func multipartFile(t *testing.T, field, filename string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	io.Copy(part, strings.NewReader("fake image bytes"))
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestUserHandler_UpdateAvatar(t *testing.T) {
	ts := newTestServer(t)
	user, rawPassword := testutil.NewUserBuilder().WithEmail("avatar@example.com").Build(t, ts.repo)
	_, accessToken, _ := loginCookiesAndTokens(t, ts, "avatar@example.com", rawPassword)

	body, contentType := multipartFile(t, "avatar", "new-avatar.png")
	resp := authedRequest(t, http.MethodPatch, ts.url("/avatar"), accessToken, body, contentType)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	env := decodeEnvelope(t, resp)

	var got map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.NotEqual(t, user.AvatarURL, got["avatarUrl"])
	assert.Contains(t, ts.files.Uploads, "new-avatar.png")
}

func TestUserHandler_UpdateAvatarMissingFile(t *testing.T) {
	ts := newTestServer(t)
	_, rawPassword := testutil.NewUserBuilder().WithEmail("noavatar@example.com").Build(t, ts.repo)
	_, accessToken, _ := loginCookiesAndTokens(t, ts, "noavatar@example.com", rawPassword)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.Close())

	resp := authedRequest(t, http.MethodPatch, ts.url("/avatar"), accessToken, body, writer.FormDataContentType())
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUserHandler_UpdateCoverImage(t *testing.T) {
	ts := newTestServer(t)
	_, rawPassword := testutil.NewUserBuilder().WithEmail("cover@example.com").Build(t, ts.repo)
	_, accessToken, _ := loginCookiesAndTokens(t, ts, "cover@example.com", rawPassword)

	body, contentType := multipartFile(t, "coverImage", "new-cover.jpg")
	resp := authedRequest(t, http.MethodPatch, ts.url("/cover-image"), accessToken, body, contentType)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	env := decodeEnvelope(t, resp)

	var got map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.NotEmpty(t, got["coverImageUrl"])
}

func TestUserHandler_WatchHistory(t *testing.T) {
	ts := newTestServer(t)
	_, rawPassword := testutil.NewUserBuilder().WithEmail("history@example.com").Build(t, ts.repo)
	_, accessToken, _ := loginCookiesAndTokens(t, ts, "history@example.com", rawPassword)

	resp := authedRequest(t, http.MethodPost, ts.url("/history/video-42"), accessToken, nil, "")
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = authedRequest(t, http.MethodGet, ts.url("/history"), accessToken, nil, "")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	env := decodeEnvelope(t, resp)
	var history []string
	require.NoError(t, json.Unmarshal(env.Data, &history))
	assert.Equal(t, []string{"video-42"}, history)
}

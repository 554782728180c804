package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photocap/pkg/tokens"
)

// authTestRouter mounts a handler behind authRequired and records whether
// the chain ever reached it.
func authTestRouter(codec *tokens.Codec, reached *bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", authRequired(codec), func(c *gin.Context) {
		*reached = true
		id, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "context missing user id"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"userId": id})
	})
	return r
}

func getProtected(r http.Handler, authHeader string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAuthRequiredValidToken(t *testing.T) {
	codec := tokens.NewCodec("acc", "ref")
	var reached bool
	r := authTestRouter(codec, &reached)

	access, err := codec.SignAccess(42)
	require.NoError(t, err)

	rec := getProtected(r, "Bearer "+access)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, reached)
	assert.Contains(t, rec.Body.String(), `"userId":42`)
}

func TestAuthRequiredMissingHeader(t *testing.T) {
	codec := tokens.NewCodec("acc", "ref")
	var reached bool
	r := authTestRouter(codec, &reached)

	rec := getProtected(r, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, reached, "handler must not run without credentials")
}

func TestAuthRequiredMalformedHeader(t *testing.T) {
	codec := tokens.NewCodec("acc", "ref")
	for _, header := range []string{"Bearer", "Basic abc", "bearer lowercase", "Bearer "} {
		var reached bool
		r := authTestRouter(codec, &reached)
		rec := getProtected(r, header)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
		assert.False(t, reached, "header %q must fail closed", header)
	}
}

func TestAuthRequiredGarbageToken(t *testing.T) {
	codec := tokens.NewCodec("acc", "ref")
	var reached bool
	r := authTestRouter(codec, &reached)

	rec := getProtected(r, "Bearer not.a.token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, reached)
}

func TestAuthRequiredRejectsRefreshToken(t *testing.T) {
	// A refresh token must never pass as an access token, the secrets differ.
	codec := tokens.NewCodec("acc", "ref")
	var reached bool
	r := authTestRouter(codec, &reached)

	refresh, err := codec.SignRefresh(42, "some-jti")
	require.NoError(t, err)

	rec := getProtected(r, "Bearer "+refresh)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, reached)
}

func TestAuthRequiredWrongSecret(t *testing.T) {
	codec := tokens.NewCodec("acc", "ref")
	attacker := tokens.NewCodec("guessed", "guessed-too")
	var reached bool
	r := authTestRouter(codec, &reached)

	forged, err := attacker.SignAccess(42)
	require.NoError(t, err)

	rec := getProtected(r, "Bearer "+forged)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, reached)
}

func TestAuthRequiredErrorBodyShape(t *testing.T) {
	// Middleware rejections carry the same {code, error} body the handlers
	// emit through respondError, so clients parse one error shape everywhere.
	codec := tokens.NewCodec("acc", "ref")
	var reached bool
	r := authTestRouter(codec, &reached)

	for _, header := range []string{"", "Bearer not.a.token"} {
		rec := getProtected(r, header)
		require.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)

		var body struct {
			Code  string `json:"code"`
			Error string `json:"error"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), "header %q", header)
		assert.Equal(t, "UNAUTHORIZED", body.Code, "header %q", header)
		assert.NotEmpty(t, body.Error, "header %q", header)
	}
}

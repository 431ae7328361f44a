package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/showcase/core/config"
)

func testRouter() http.Handler {
	return NewRouter(
		NewProductsHandler(config.Default(), unreachable),
		NewImagesHandler(config.Default(), &fakeDriver{err: errors.New("down")}),
	)
}

func bearer(t *testing.T, claims jwt.MapClaims) string {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("local"))
	require.NoError(t, err)
	return "Bearer " + token
}

func TestRouter_Data(t *testing.T) {
	router := testRouter()

	req := httptest.NewRequest(http.MethodGet, "/data", nil)
	req.Header.Set("Authorization", bearer(t, jwt.MapClaims{"email": "admin@example.com", "cognito:groups": []string{"Admin"}}))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	r := decode(t, rec.Body.Bytes())
	assert.True(t, r.Metadata.IsAdmin)
	assert.Equal(t, "admin@example.com", r.User.Email)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/data", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode(t, rec.Body.Bytes()).Metadata.IsAdmin)
}

func TestRouter_Images(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/images", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec.Body.Bytes()).Images, 3)
}

func TestRouter_HealthAndPreflight(t *testing.T) {
	router := testRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/data", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/data", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

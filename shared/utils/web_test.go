package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()
	WriteJSON(w, http.StatusCreated, map[string]int{"version": 3})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"version":3}`, w.Body.String())
}

func TestFlashRoundTrip(t *testing.T) {
	set := httptest.NewRecorder()
	SetFlash(set, "flash_error", "Задача; \"quoted\" <b>", FlashOptions{TTL: time.Minute})
	cookies := set.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, 60, cookies[0].MaxAge)

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(cookies[0])
	get := httptest.NewRecorder()
	assert.Equal(t, "Задача; \"quoted\" <b>", PopFlash(get, req, "flash_error"))

	expired := get.Result().Cookies()
	require.Len(t, expired, 1)
	assert.True(t, expired[0].MaxAge < 0)
}

func TestFlash_EmptyAndMissing(t *testing.T) {
	w := httptest.NewRecorder()
	SetFlash(w, "flash_error", "", FlashOptions{})
	assert.Empty(t, w.Result().Cookies())

	req := httptest.NewRequest("GET", "/", nil)
	assert.Empty(t, PopFlash(httptest.NewRecorder(), req, "flash_error"))

	req.AddCookie(&http.Cookie{Name: "flash_error", Value: "%%%"})
	assert.Empty(t, PopFlash(httptest.NewRecorder(), req, "flash_error"))
}

package middleware

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestGenerateCSRFToken(t *testing.T) {
	t.Run("issues a token", func(t *testing.T) {
		var seen string
		handler := GenerateCSRFToken(CSRFConfig{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = GetCSRFTokenFromContext(r)
		}))

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

		require.NotEmpty(t, seen)
		var cookie *http.Cookie
		for _, c := range w.Result().Cookies() {
			if c.Name == "csrf_token" {
				cookie = c
			}
		}
		require.NotNil(t, cookie)
		assert.Equal(t, seen, cookie.Value)
		assert.True(t, cookie.HttpOnly)
	})

	t.Run("reuses the existing cookie", func(t *testing.T) {
		var seen string
		handler := GenerateCSRFToken(CSRFConfig{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = GetCSRFTokenFromContext(r)
		}))

		req := httptest.NewRequest("GET", "/", nil)
		req.AddCookie(&http.Cookie{Name: "csrf_token", Value: "kept"})
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, "kept", seen)
		assert.Empty(t, w.Result().Cookies())
	})
}

func TestValidateCSRFToken(t *testing.T) {
	token := "test-token-123"

	tests := []struct {
		name           string
		method         string
		cookie         *http.Cookie
		formToken      string
		header         string
		expectedStatus int
	}{
		{"valid POST request", "POST", &http.Cookie{Name: "csrf_token", Value: token}, token, "", http.StatusOK},
		{"GET request (no validation)", "GET", nil, "", "", http.StatusOK},
		{"missing cookie", "POST", nil, token, "", http.StatusForbidden},
		{"missing form token", "POST", &http.Cookie{Name: "csrf_token", Value: token}, "", "", http.StatusForbidden},
		{"mismatched tokens", "POST", &http.Cookie{Name: "csrf_token", Value: token}, "different-token", "", http.StatusForbidden},
		{"header token", "POST", &http.Cookie{Name: "csrf_token", Value: token}, "", token, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := ValidateCSRFToken(CSRFConfig{})(okHandler())

			form := url.Values{}
			if tt.formToken != "" {
				form.Set("csrf_token", tt.formToken)
			}
			req := httptest.NewRequest(tt.method, "/", strings.NewReader(form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			if tt.header != "" {
				req.Header.Set("X-CSRF-Token", tt.header)
			}
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestValidateCSRFToken_Multipart(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("csrf_token", "tok"))
	part, err := mw.CreateFormFile("files", "a.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("png"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	var gotFiles int
	handler := ValidateCSRFToken(CSRFConfig{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotFiles = len(r.MultipartForm.File["files"])
	}))
	req := httptest.NewRequest("POST", "/compose/files", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(&http.Cookie{Name: "csrf_token", Value: "tok"})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, gotFiles)
}

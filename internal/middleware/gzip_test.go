package middleware

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/printflow/internal/apperror"
)

// echoHandler возвращает тело запроса, как его увидел обработчик.
func echoHandler(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	defer r.Body.Close()

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", "999")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"success":true,"data":` + string(body) + `}`))
}

func gzipBytes(t *testing.T, s string) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	return &buf
}

func TestGzipMiddleware(t *testing.T) {
	const payload = `{"companyName":"Estamparia Sul","acronym":"EST"}`

	tests := []struct {
		name           string
		compressBody   bool
		acceptEncoding string
		wantEncoding   string
	}{
		{name: "plain request, plain response"},
		{name: "plain request, gzip response", acceptEncoding: "gzip, deflate", wantEncoding: "gzip"},
		{name: "gzip request, plain response", compressBody: true},
		{name: "gzip request, gzip response", compressBody: true, acceptEncoding: "gzip", wantEncoding: "gzip"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body io.Reader = strings.NewReader(payload)
			if tt.compressBody {
				body = gzipBytes(t, payload)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/clients", body)
			req.Header.Set("Content-Type", "application/json")
			if tt.compressBody {
				req.Header.Set("Content-Encoding", "gzip")
			}
			if tt.acceptEncoding != "" {
				req.Header.Set("Accept-Encoding", tt.acceptEncoding)
			}
			w := httptest.NewRecorder()

			Gzip(nil)(http.HandlerFunc(echoHandler)).ServeHTTP(w, req)

			res := w.Result()
			defer res.Body.Close()

			require.Equal(t, http.StatusOK, res.StatusCode)
			assert.Equal(t, "application/json", res.Header.Get("Content-Type"))
			assert.Equal(t, tt.wantEncoding, res.Header.Get("Content-Encoding"))

			var rdr io.Reader = res.Body
			if tt.wantEncoding == "gzip" {
				assert.Equal(t, "Accept-Encoding", res.Header.Get("Vary"))
				assert.Empty(t, res.Header.Get("Content-Length"))

				gr, err := gzip.NewReader(res.Body)
				require.NoError(t, err)
				defer gr.Close()
				rdr = gr
			}

			got, err := io.ReadAll(rdr)
			require.NoError(t, err)
			assert.JSONEq(t, `{"success":true,"data":`+payload+`}`, string(got))
		})
	}
}

func TestGzipMiddleware_InvalidRequestBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/clients", strings.NewReader("not gzip"))
	req.Header.Set("Content-Encoding", "gzip")
	w := httptest.NewRecorder()

	var got error
	onError := func(w http.ResponseWriter, _ *http.Request, err error) {
		got = err
		w.WriteHeader(apperror.Classify(err).Status)
	}

	called := false
	Gzip(onError)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	})).ServeHTTP(w, req)

	assert.False(t, called)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.Error(t, got)
	assert.Equal(t, apperror.ErrInvalidBody.Code, apperror.Classify(got).Code)
}

func TestGzipMiddleware_InvalidRequestBodyPlainFallback(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/clients", strings.NewReader("not gzip"))
	req.Header.Set("Content-Encoding", "gzip")
	w := httptest.NewRecorder()

	Gzip(nil)(http.HandlerFunc(echoHandler)).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid gzip request body")
}

func TestGzipMiddleware_ReusesWriters(t *testing.T) {
	h := Gzip(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(r.URL.Query().Get("ref")))
	}))

	for _, ref := range []string{"25ABC0001", "25ABC0002"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/developments?ref="+ref, nil)
		req.Header.Set("Accept-Encoding", "gzip")
		w := httptest.NewRecorder()

		h.ServeHTTP(w, req)

		gr, err := gzip.NewReader(w.Body)
		require.NoError(t, err)
		got, err := io.ReadAll(gr)
		require.NoError(t, err)
		assert.Equal(t, ref, string(got))
	}
}

package asset

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/softrender/softrender/internal/raster"
)

func router(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/assets/upload", h.Upload).Methods("POST")
	r.HandleFunc("/assets/{assetId}", h.DeleteAsset).Methods("DELETE")
	r.PathPrefix("/assets/").Handler(h.Serve()).Methods("GET")
	return r
}

func TestSaveAndServe(t *testing.T) {
	h := NewHandler(t.TempDir())
	img := raster.New(4, 6)
	img.Fill(raster.RGB(1, 0, 0))

	a, err := h.Save(img, "frame")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(a.ID, "asset_"))
	assert.Equal(t, 6, a.Width)
	assert.Equal(t, 4, a.Height)

	rec := httptest.NewRecorder()
	router(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, a.URL, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Cache-Control"), "immutable")

	back, err := raster.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, raster.RGB(1, 0, 0), back.Color(2, 3))
}

func upload(t *testing.T, h *Handler, contentType string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="in.bmp"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(body)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/assets/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router(h).ServeHTTP(rec, req)
	return rec
}

func TestUploadConvertsToPNG(t *testing.T) {
	dir := t.TempDir()
	h := NewHandler(dir)

	img := raster.New(3, 5)
	img.Fill(raster.RGB(0, 0, 1))
	var bmp bytes.Buffer
	require.NoError(t, img.Encode(&bmp, raster.FormatBMP))

	rec := upload(t, h, "image/bmp", bmp.Bytes())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var a Asset
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&a))
	assert.Equal(t, "png", a.Type)
	assert.Equal(t, "in.bmp", a.Name)
	assert.Equal(t, 5, a.Width)
	_, err := os.Stat(filepath.Join(dir, a.ID+".png"))
	assert.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, upload(t, h, "image/gif", bmp.Bytes()).Code)
	assert.Equal(t, http.StatusBadRequest, upload(t, h, "image/png", []byte("nope")).Code)
}

func TestDelete(t *testing.T) {
	h := NewHandler(t.TempDir())
	a, err := h.Save(raster.New(1, 1), "")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router(h).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/assets/"+a.ID, nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	router(h).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/assets/"+a.ID, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	assert.ErrorIs(t, h.Delete("../../etc/passwd"), ErrNotFound)
}

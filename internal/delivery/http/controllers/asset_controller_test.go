package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventbooking/internal/adapters/assets"
)

func TestAssetControllerServe(t *testing.T) {
	store, err := assets.NewFSStore(t.TempDir())
	require.NoError(t, err)
	ctrl := NewAssetController(testLogger, store)

	ref, err := store.Store([]byte("png-bytes"), "poster.png", "image/png")
	require.NoError(t, err)

	t.Run("serves stored image with content type", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/uploads/"+ref, nil)
		req.SetPathValue("ref", ref)
		rr := httptest.NewRecorder()

		ctrl.Serve(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
		assert.Equal(t, "png-bytes", rr.Body.String())
		assert.NotEmpty(t, rr.Header().Get("Cache-Control"))
	})

	t.Run("missing ref is not found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/uploads/nope.png", nil)
		req.SetPathValue("ref", "nope.png")
		rr := httptest.NewRecorder()

		ctrl.Serve(rr, req)

		require.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("traversal ref is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/uploads/x", nil)
		req.SetPathValue("ref", "../secret.png")
		rr := httptest.NewRecorder()

		ctrl.Serve(rr, req)

		require.Equal(t, http.StatusNotFound, rr.Code)
	})
}

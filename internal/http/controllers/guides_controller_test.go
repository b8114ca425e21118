package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/plantit/plantit/internal/catalog"
	"github.com/plantit/plantit/internal/http/dto"
)

func guidesRouter(t *testing.T) http.Handler {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)

	c := NewGuidesController(cat)
	r := chi.NewRouter()
	r.Get("/v1/guides", c.List)
	r.Get("/v1/guides/{plant}", c.States)
	return r
}

func TestGuidesList(t *testing.T) {
	rec := httptest.NewRecorder()
	guidesRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/guides", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var out dto.GuideListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.NotEmpty(t, out.Plants)
	require.Contains(t, out.Plants, "tomatoes")
}

func TestGuidesStates(t *testing.T) {
	rec := httptest.NewRecorder()
	guidesRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/guides/tomatoes", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var out dto.GuideStatesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Equal(t, "tomatoes", out.Plant)
	require.NotEmpty(t, out.States)
	for _, state := range out.States {
		require.Equal(t, "tomatoes_"+state+".pdf", out.Documents[state])
	}
}

func TestGuidesStatesUnknownPlant(t *testing.T) {
	rec := httptest.NewRecorder()
	guidesRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/guides/nope", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
}

package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestGroupPrefixAndLookup(t *testing.T) {
	r := New()
	api := r.Group("/api")
	api.Get("/paintings", "paintings.list", ok)
	api.Get("/paintings/{id}", "paintings.get", ok)

	path, found := r.Path("paintings.get")
	require.True(t, found)
	assert.Equal(t, "/api/paintings/{id}", path)

	url, err := r.URL("paintings.get", map[string]string{"id": "abc"})
	require.NoError(t, err)
	assert.Equal(t, "/api/paintings/abc", url)
}

func TestNestedGroups(t *testing.T) {
	r := New()
	api := r.Group("/api")
	reports := api.Group("/reports")
	reports.Get("/sales", "reports.sales", ok)

	path, found := r.Path("reports.sales")
	require.True(t, found)
	assert.Equal(t, "/api/reports/sales", path)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reports/sales", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGroupMiddlewareApplies(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	r := New()
	g := r.Group("/api", mark("group"))
	g.Get("/x", "x", ok, mark("route"))

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/x", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"group", "route"}, order)
}

func TestRoutesListing(t *testing.T) {
	r := New()
	r.Get("/a", "a", ok)
	r.Post("/b", "b", ok)

	infos := r.Routes()
	require.Len(t, infos, 2)
	assert.Equal(t, http.MethodGet, infos[0].Method)
	assert.Equal(t, "/a", infos[0].Path)
	assert.Equal(t, "b", infos[1].Name)
}

func TestEmptyGroupPath(t *testing.T) {
	r := New()
	api := r.Group("/api")
	api.Get("", "liveness", ok)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

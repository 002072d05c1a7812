package cgr

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/diwise/cgr-adapter/internal/pkg/infrastructure/router"
	"github.com/diwise/cgr-adapter/pkg/cgr/geometry"
	"github.com/diwise/cgr-adapter/pkg/cgr/localization"
	"github.com/diwise/cgr-adapter/pkg/cgr/metadata"
	"github.com/diwise/cgr-adapter/pkg/cgr/registry"
	"github.com/matryer/is"
)

func TestGetAllGeoObjectTypes(t *testing.T) {
	is, ts, _ := setupTest(t)
	defer ts.Close()

	resp, body := newTestRequest(is, ts, http.MethodGet, "/cgr/geoobjecttype/get-all")
	is.Equal(resp.StatusCode, http.StatusOK)
	is.Equal(resp.Header.Get("Content-Type"), "application/json")

	types := []map[string]any{}
	is.NoErr(json.Unmarshal([]byte(body), &types))
	is.Equal(len(types), 2)
	is.Equal(types[0]["code"], "District") // types should be ordered by code
}

func TestGetSelectedGeoObjectTypes(t *testing.T) {
	is, ts, _ := setupTest(t)
	defer ts.Close()

	resp, body := newTestRequest(is, ts, http.MethodGet, "/cgr/geoobjecttype/get-all?types=Province")
	is.Equal(resp.StatusCode, http.StatusOK)

	types := []map[string]any{}
	is.NoErr(json.Unmarshal([]byte(body), &types))
	is.Equal(len(types), 1)
	is.Equal(types[0]["code"], "Province")
}

func TestGetUnknownGeoObjectTypeReturnsNotFound(t *testing.T) {
	is, ts, _ := setupTest(t)
	defer ts.Close()

	resp, body := newTestRequest(is, ts, http.MethodGet, "/cgr/geoobjecttype/get-all?types=Province,Country")
	is.Equal(resp.StatusCode, http.StatusNotFound)
	is.Equal(resp.Header.Get("Content-Type"), "application/problem+json")
	is.True(strings.Contains(body, "Country"))
}

func TestGetAllHierarchyTypes(t *testing.T) {
	is, ts, _ := setupTest(t)
	defer ts.Close()

	resp, body := newTestRequest(is, ts, http.MethodGet, "/cgr/hierarchytype/get-all")
	is.Equal(resp.StatusCode, http.StatusOK)
	is.True(strings.Contains(body, `"rootGeoObjectTypes":[{"geoObjectType":"Province"`))
}

func TestGetAllTerms(t *testing.T) {
	is, ts, _ := setupTest(t)
	defer ts.Close()

	resp, body := newTestRequest(is, ts, http.MethodGet, "/cgr/term/get-all")
	is.Equal(resp.StatusCode, http.StatusOK)
	is.True(strings.Contains(body, `"code":"CGR:Status-Root"`))
}

func TestNewGeoObjectInstance(t *testing.T) {
	is, ts, _ := setupTest(t)
	defer ts.Close()

	resp, body := newTestRequest(is, ts, http.MethodGet, "/cgr/geoobject/newGeoObjectInstance?typeCode=District")
	is.Equal(resp.StatusCode, http.StatusOK)

	f := geometry.Feature{}
	is.NoErr(json.Unmarshal([]byte(body), &f))
	is.Equal(string(f.Properties["type"]), `"District"`)

	_, ok := f.Properties["uid"]
	is.True(ok) // a new instance should be given a uid
}

func TestNewGeoObjectInstanceWithoutTypeCode(t *testing.T) {
	is, ts, _ := setupTest(t)
	defer ts.Close()

	resp, _ := newTestRequest(is, ts, http.MethodGet, "/cgr/geoobject/newGeoObjectInstance")
	is.Equal(resp.StatusCode, http.StatusBadRequest)
}

func TestNewGeoObjectInstanceOfUnknownType(t *testing.T) {
	is, ts, _ := setupTest(t)
	defer ts.Close()

	resp, _ := newTestRequest(is, ts, http.MethodGet, "/cgr/geoobject/newGeoObjectInstance?typeCode=Country")
	is.Equal(resp.StatusCode, http.StatusNotFound)
}

func TestGetUIDs(t *testing.T) {
	is, ts, _ := setupTest(t)
	defer ts.Close()

	resp, body := newTestRequest(is, ts, http.MethodGet, "/cgr/geoobject/get-uids?amount=3")
	is.Equal(resp.StatusCode, http.StatusOK)

	uids := []string{}
	is.NoErr(json.Unmarshal([]byte(body), &uids))
	is.Equal(len(uids), 3)
	is.True(uids[0] != uids[1])
}

func TestGetUIDsWithBadAmount(t *testing.T) {
	is, ts, _ := setupTest(t)
	defer ts.Close()

	resp, _ := newTestRequest(is, ts, http.MethodGet, "/cgr/geoobject/get-uids?amount=lots")
	is.Equal(resp.StatusCode, http.StatusBadRequest)

	resp, _ = newTestRequest(is, ts, http.MethodGet, "/cgr/geoobject/get-uids?amount=0")
	is.Equal(resp.StatusCode, http.StatusBadRequest)
}

func newTestRequest(is *is.I, ts *httptest.Server, method, path string) (*http.Response, string) {
	req, _ := http.NewRequest(method, ts.URL+path, nil)

	resp, err := http.DefaultClient.Do(req)
	is.NoErr(err) // http request failed
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	return resp, string(respBody)
}

func setupTest(t *testing.T) (*is.I, *httptest.Server, *registry.Adapter) {
	is := is.New(t)
	adapter := registry.New()

	province, err := adapter.NewGeoObjectType("Province", geometry.MultiPolygon, localization.New("Province"), localization.New(""), false)
	is.NoErr(err)
	_, err = adapter.NewGeoObjectType("District", geometry.Polygon, localization.New("District"), localization.New(""), true)
	is.NoErr(err)

	ht, err := adapter.NewHierarchyType("ADMIN", localization.New("Administrative"), localization.New(""), "")
	is.NoErr(err)
	ht.AddRootGeoObjectType(metadata.NewHierarchyNode(province))

	r := router.New("cgr-registry-test")
	RegisterHandlers(context.Background(), r, adapter)

	return is, httptest.NewServer(r), adapter
}

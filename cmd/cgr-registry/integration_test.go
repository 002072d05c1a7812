package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/diwise/cgr-adapter/pkg/cgr/client"
	testutils "github.com/diwise/service-chassis/pkg/test/http"
	"github.com/diwise/service-chassis/pkg/test/http/expects"
	"github.com/diwise/service-chassis/pkg/test/http/response"

	"github.com/matryer/is"
)

var Expects = testutils.Expects
var Returns = testutils.Returns
var method = expects.RequestMethod
var path = expects.RequestPath

func TestIntegrateSeededTypesAreServed(t *testing.T) {
	is := is.New(t)

	handler, err := initialize(context.Background(), Config{}, bytes.NewBufferString(metadataFile))
	is.NoErr(err)

	ts := httptest.NewServer(handler)
	defer ts.Close()

	response, responseBody := testRequest(ts.URL, http.MethodGet, "/cgr/geoobjecttype/get-all?types=Lake")
	is.Equal(response.StatusCode, http.StatusOK)

	types := []map[string]any{}
	is.NoErr(json.Unmarshal([]byte(responseBody), &types))
	is.Equal(len(types), 1)
	is.Equal(types[0]["geometryType"], "POLYGON")
}

func TestIntegrateNewInstanceOfSeededType(t *testing.T) {
	is := is.New(t)

	handler, err := initialize(context.Background(), Config{}, bytes.NewBufferString(metadataFile))
	is.NoErr(err)

	ts := httptest.NewServer(handler)
	defer ts.Close()

	response, _ := testRequest(ts.URL, http.MethodGet, "/cgr/geoobject/newGeoObjectInstance?typeCode=Lake")
	is.Equal(response.StatusCode, http.StatusOK)

	response, _ = testRequest(ts.URL, http.MethodGet, "/health")
	is.Equal(response.StatusCode, http.StatusNoContent)
}

func TestIntegrateInvalidMetadataFailsInitialization(t *testing.T) {
	is := is.New(t)

	_, err := initialize(context.Background(), Config{}, bytes.NewBufferString("geoObjectTypes:\n  - geometryType: POINT\n"))
	is.True(err != nil) // a type without a code should be rejected
}

func TestIntegrateFailingRemoteRegistryFailsInitialization(t *testing.T) {
	is := is.New(t)

	ms := testutils.NewMockServiceThat(
		Expects(
			is,
			method(http.MethodGet),
			path(client.TermsPath),
		),
		Returns(
			response.ContentType("application/problem+json"),
			response.Code(http.StatusServiceUnavailable),
		),
	)
	defer ms.Close()

	_, err := initialize(context.Background(), Config{remoteURL: ms.URL()}, nil)
	is.True(err != nil)
}

func testRequest(baseURL, method, path string) (*http.Response, string) {
	req, _ := http.NewRequest(method, baseURL+path, nil)
	resp, _ := http.DefaultClient.Do(req)
	respBody, _ := io.ReadAll(resp.Body)
	defer resp.Body.Close()

	return resp, string(respBody)
}

var metadataFile string = `
terms:
  - code: WATER-Root
    label: Water quality
    children:
      - code: WATER-Good
        label: Good
      - code: WATER-Poor
        label: Poor
geoObjectTypes:
  - code: Lake
    label:
      value: Lake
      sv: Sjö
    geometryType: POLYGON
    isLeaf: true
    attributes:
      - code: quality
        type: term
        label: Quality
        changeOverTime: true
        rootTerm: WATER-Root
`

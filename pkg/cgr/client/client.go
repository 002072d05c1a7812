package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/diwise/cgr-adapter/pkg/cgr/metadata"
	"github.com/diwise/cgr-adapter/pkg/cgr/terms"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	TermsPath          string = "/cgr/term/get-all"
	GeoObjectTypesPath string = "/cgr/geoobjecttype/get-all"
	HierarchyTypesPath string = "/cgr/hierarchytype/get-all"
)

const TraceAttributeEndpoint string = "cgr-endpoint"

var (
	ErrRequest     = errors.New("request failed")
	ErrBadResponse = errors.New("bad response")
)

var tracer = otel.Tracer("cgr-client")

// Importer registers metadata decoded from the canonical JSON arrays
type Importer interface {
	ImportTerms(body []byte) ([]*terms.Term, error)
	ImportGeoObjectTypes(body []byte) ([]*metadata.GeoObjectType, error)
	ImportHierarchyTypes(body []byte) ([]*metadata.HierarchyType, error)
}

// RefreshMetadataCache fetches terms, types and hierarchies from a remote
// registry, in that order, and registers them with the importer
func RefreshMetadataCache(ctx context.Context, baseURL string, importer Importer) error {
	var err error

	ctx, span := tracer.Start(ctx, "refresh-metadata-cache",
		trace.WithAttributes(attribute.String(TraceAttributeEndpoint, baseURL)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	log := logging.GetFromContext(ctx)
	baseURL = strings.TrimSuffix(baseURL, "/")

	body, err := get(ctx, baseURL+TermsPath)
	if err != nil {
		return err
	}
	roots, err := importer.ImportTerms(body)
	if err != nil {
		return fmt.Errorf("failed to import terms: %w", err)
	}

	body, err = get(ctx, baseURL+GeoObjectTypesPath)
	if err != nil {
		return err
	}
	types, err := importer.ImportGeoObjectTypes(body)
	if err != nil {
		return fmt.Errorf("failed to import geo object types: %w", err)
	}

	body, err = get(ctx, baseURL+HierarchyTypesPath)
	if err != nil {
		return err
	}
	hierarchies, err := importer.ImportHierarchyTypes(body)
	if err != nil {
		return fmt.Errorf("failed to import hierarchy types: %w", err)
	}

	log.Info("refreshed metadata cache",
		slog.Int("terms", len(roots)),
		slog.Int("types", len(types)),
		slog.Int("hierarchies", len(hierarchies)),
	)

	return nil
}

func get(ctx context.Context, endpoint string) ([]byte, error) {
	httpClient := http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %s (%w)", err.Error(), ErrRequest)
	}
	req.Header.Add("Accept", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %s (%w)", err.Error(), ErrRequest)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %s (%w)", err.Error(), ErrBadResponse)
	}

	if resp.StatusCode != http.StatusOK {
		logging.GetFromContext(ctx).Error("request failed",
			slog.String("endpoint", endpoint),
			slog.Int("status", resp.StatusCode),
		)
		return nil, fmt.Errorf("%s returned status code %d (body: %s) (%w)", endpoint, resp.StatusCode, string(body), ErrBadResponse)
	}

	return body, nil
}

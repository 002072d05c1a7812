package cgr

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/diwise/cgr-adapter/internal/pkg/presentation/api/cgr/problems"
	cgrerrors "github.com/diwise/cgr-adapter/pkg/cgr/errors"
	"github.com/diwise/cgr-adapter/pkg/cgr/metadata"
	"github.com/diwise/cgr-adapter/pkg/cgr/registry"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("cgr-registry/api")

const (
	TraceAttributeTypeCode string = "cgr-type-code"

	// MaxUIDs caps the number of identifiers handed out per request
	MaxUIDs int = 1000
)

func RegisterHandlers(ctx context.Context, r chi.Router, adapter *registry.Adapter) {
	r.Route("/cgr", func(r chi.Router) {
		r.Use(Logger(logging.GetFromContext(ctx)))

		r.Get("/geoobjecttype/get-all", NewGetGeoObjectTypesHandler(adapter))
		r.Get("/hierarchytype/get-all", NewGetHierarchyTypesHandler(adapter))
		r.Get("/term/get-all", NewGetTermsHandler(adapter))

		r.Route("/geoobject", func(r chi.Router) {
			r.Get("/newGeoObjectInstance", NewGeoObjectInstanceHandler(adapter))
			r.Get("/get-uids", NewGetUIDsHandler(adapter))
		})
	})
}

func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			_, ctx, _ = o11y.AddTraceIDToLoggerAndStoreInContext(
				trace.SpanFromContext(ctx),
				logger,
				ctx)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// NewGetGeoObjectTypesHandler returns all known types, or the ones named
// by a comma separated types parameter
func NewGetGeoObjectTypesHandler(adapter *registry.Adapter) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "get-geo-object-types")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		cache := adapter.MetadataCache()
		types := cache.GeoObjectTypes()

		if param := r.URL.Query().Get("types"); param != "" {
			types = []*metadata.GeoObjectType{}

			for code := range strings.SplitSeq(param, ",") {
				code = strings.TrimSpace(code)
				if code == "" {
					continue
				}

				got, ok := cache.GetGeoObjectType(code)
				if !ok {
					err = cgrerrors.NewUnresolvedReferenceError("GeoObjectType", code)
					problems.ReportError(w, err)
					return
				}
				types = append(types, got)
			}
		}

		logging.GetFromContext(ctx).Debug("returning geo object types", slog.Int("count", len(types)))

		err = writeJSON(w, types)
	})
}

func NewGetHierarchyTypesHandler(adapter *registry.Adapter) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error

		_, span := tracer.Start(r.Context(), "get-hierarchy-types")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		err = writeJSON(w, adapter.MetadataCache().HierarchyTypes())
	})
}

// NewGetTermsHandler returns every registered vocabulary as a tree
func NewGetTermsHandler(adapter *registry.Adapter) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error

		_, span := tracer.Start(r.Context(), "get-terms")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		err = writeJSON(w, adapter.MetadataCache().RootTerms())
	})
}

// NewGeoObjectInstanceHandler returns an empty instance of a type with a
// freshly generated uid
func NewGeoObjectInstanceHandler(adapter *registry.Adapter) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error

		typeCode := r.URL.Query().Get("typeCode")

		ctx, span := tracer.Start(r.Context(), "new-geo-object-instance",
			trace.WithAttributes(attribute.String(TraceAttributeTypeCode, typeCode)),
		)
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		if typeCode == "" {
			err = cgrerrors.NewRequiredParameterError("newGeoObjectInstance", "typeCode")
			problems.ReportError(w, err)
			return
		}

		g, err := adapter.NewGeoObjectInstance(typeCode, true)
		if err != nil {
			logging.GetFromContext(ctx).Info("failed to create instance", "err", err.Error())
			problems.ReportError(w, err)
			return
		}

		err = writeJSON(w, g)
	})
}

func NewGetUIDsHandler(adapter *registry.Adapter) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error

		_, span := tracer.Start(r.Context(), "get-uids")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		amount := 1
		if param := r.URL.Query().Get("amount"); param != "" {
			amount, err = strconv.Atoi(param)
			if err != nil || amount < 1 || amount > MaxUIDs {
				err = fmt.Errorf("amount must be a number between 1 and %d", MaxUIDs)
				problems.NewInvalidRequest(err.Error()).WriteResponse(w)
				return
			}
		}

		err = writeJSON(w, adapter.GetUIDs(amount))
	})
}

func writeJSON(w http.ResponseWriter, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		problems.NewInternalError(err.Error()).WriteResponse(w)
		return err
	}

	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(b)

	return nil
}

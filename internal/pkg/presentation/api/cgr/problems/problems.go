package problems

import (
	"encoding/json"
	"errors"
	"net/http"

	cgrerrors "github.com/diwise/cgr-adapter/pkg/cgr/errors"
)

// ProblemDetails stores details about a certain problem according to RFC7807
// See https://tools.ietf.org/html/rfc7807
type ProblemDetails interface {
	ContentType() string
	Type() string
	Title() string
	Detail() string
	ResponseCode() int
	MarshalJSON() ([]byte, error)
	WriteResponse(w http.ResponseWriter)
}

type problemDetailsImpl struct {
	typ    string
	title  string
	detail string
	code   int
}

const ProblemReportContentType string = "application/problem+json"

const typePrefix string = "urn:diwise:cgr:errors:"

func newProblem(name, title, detail string, code int) ProblemDetails {
	return &problemDetailsImpl{
		typ:    typePrefix + name,
		title:  title,
		detail: detail,
		code:   code,
	}
}

// NewInvalidRequest reports a request that is syntactically invalid or misses parameters
func NewInvalidRequest(detail string) ProblemDetails {
	return newProblem("InvalidRequest", "Invalid Request", detail, http.StatusBadRequest)
}

// NewBadRequestData reports input that does not satisfy the registry metadata
func NewBadRequestData(detail string) ProblemDetails {
	return newProblem("BadRequestData", "Bad Request Data", detail, http.StatusBadRequest)
}

func NewNotFound(detail string) ProblemDetails {
	return newProblem("ResourceNotFound", "Not Found", detail, http.StatusNotFound)
}

func NewInternalError(detail string) ProblemDetails {
	return newProblem("InternalError", "Internal Error", detail, http.StatusInternalServerError)
}

// FromError maps the registry error taxonomy onto a problem report
func FromError(err error) ProblemDetails {
	switch {
	case errors.Is(err, cgrerrors.ErrUnresolvedReference), errors.Is(err, cgrerrors.ErrAttributeNotFound):
		return NewNotFound(err.Error())
	case errors.Is(err, cgrerrors.ErrRequiredParameter), errors.Is(err, cgrerrors.ErrMalformedWireFormat):
		return NewInvalidRequest(err.Error())
	case errors.Is(err, cgrerrors.ErrValidation), errors.Is(err, cgrerrors.ErrUnknownTerm), errors.Is(err, cgrerrors.ErrUnsupportedKind):
		return NewBadRequestData(err.Error())
	}
	return NewInternalError(err.Error())
}

// ReportError writes the problem report that corresponds to err
func ReportError(w http.ResponseWriter, err error) {
	FromError(err).WriteResponse(w)
}

func (p *problemDetailsImpl) ContentType() string { return ProblemReportContentType }
func (p *problemDetailsImpl) Type() string        { return p.typ }
func (p *problemDetailsImpl) Title() string       { return p.title }
func (p *problemDetailsImpl) Detail() string      { return p.detail }

func (p *problemDetailsImpl) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type   string `json:"type"`
		Title  string `json:"title"`
		Detail string `json:"detail"`
	}{
		Type:   p.typ,
		Title:  p.title,
		Detail: p.detail,
	})
}

// ResponseCode returns the HTTP response code to be used when returning a specific problem
func (p *problemDetailsImpl) ResponseCode() int {
	if p.code != 0 {
		return p.code
	}
	return http.StatusBadRequest
}

// WriteResponse writes the contents of this instance to a http.ResponseWriter
func (p *problemDetailsImpl) WriteResponse(w http.ResponseWriter) {
	w.Header().Add("Content-Type", p.ContentType())
	w.Header().Add("Content-Language", "en")
	w.WriteHeader(p.ResponseCode())

	pdbytes, err := json.MarshalIndent(p, "", "  ")
	if err == nil {
		w.Write(pdbytes)
	}
}

package armylisthandlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"

	armytypes "github.com/Black-And-White-Club/armylists/app/modules/armylist/domain/types"
	"github.com/Black-And-White-Club/armylists/app/modules/armylist/infrastructure/sources"
	standingsservice "github.com/Black-And-White-Club/armylists/app/modules/standings/application"
	"github.com/Black-And-White-Club/armylists/app/pipeline"
	"github.com/Black-And-White-Club/armylists/app/shared/diagnostics"
	"github.com/Black-And-White-Club/frolf-bot-shared/observability/attr"
	"go.opentelemetry.io/otel/trace"
)

// DefaultMaxUploadBytes caps a request body.
const DefaultMaxUploadBytes = 10 << 20

// Processor runs the army pipeline over a source document.
type Processor interface {
	Build(ctx context.Context, doc *armytypes.SourceDocument) (*pipeline.Report, error)
	Process(ctx context.Context, doc *armytypes.SourceDocument) (*pipeline.Report, error)
}

var _ Processor = (*pipeline.Pipeline)(nil)

// HTTPHandlers serves the army list HTTP API.
type HTTPHandlers struct {
	processor      Processor
	standings      standingsservice.Service
	factory        sources.AdapterFactory
	logger         *slog.Logger
	tracer         trace.Tracer
	maxUploadBytes int64
}

// NewHTTPHandlers creates the handlers. A non-positive maxUploadBytes uses
// DefaultMaxUploadBytes.
func NewHTTPHandlers(
	processor Processor,
	standings standingsservice.Service,
	factory sources.AdapterFactory,
	logger *slog.Logger,
	tracer trace.Tracer,
	maxUploadBytes int64,
) *HTTPHandlers {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &HTTPHandlers{
		processor:      processor,
		standings:      standings,
		factory:        factory,
		logger:         logger,
		tracer:         tracer,
		maxUploadBytes: maxUploadBytes,
	}
}

type errorResponse struct {
	Error       string                  `json:"error"`
	Diagnostics diagnostics.Diagnostics `json:"diagnostics,omitempty"`
}

// HandleParseArmies builds army records from uploaded documents. The body is either a
// multipart form with one or more "file" parts, or a raw file named by the filename
// query parameter.
func (h *HTTPHandlers) HandleParseArmies(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "HandleParseArmies")
	defer span.End()

	doc, status, err := h.readDocument(w, r)
	if err != nil {
		h.logger.WarnContext(ctx, "Rejected army list upload", attr.Int("status", status), attr.Error(err))
		writeError(w, status, err.Error(), nil)
		return
	}

	report, err := h.processor.Build(ctx, doc)
	h.writeReport(ctx, w, report, err)
}

// HandleScoreEvent computes standings. A JSON body is an event input of already built
// armies; an upload runs the whole pipeline over the merged documents.
func (h *HTTPHandlers) HandleScoreEvent(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "HandleScoreEvent")
	defer span.End()

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		doc, status, err := h.readDocument(w, r)
		if err != nil {
			writeError(w, status, err.Error(), nil)
			return
		}
		report, err := h.processor.Process(ctx, doc)
		h.writeReport(ctx, w, report, err)
		return
	}

	var in standingsservice.EventInput
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxUploadBytes))
	if err := dec.Decode(&in); err != nil {
		writeError(w, bodyErrorStatus(err), fmt.Sprintf("invalid event input: %v", err), nil)
		return
	}

	result, err := h.standings.ComputeStandings(ctx, in)
	if err != nil {
		h.logger.ErrorContext(ctx, "ComputeStandings failed", attr.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to compute standings", nil)
		return
	}
	if result.Failure != nil {
		writeError(w, http.StatusUnprocessableEntity, (*result.Failure).Error(), nil)
		return
	}
	writeJSON(w, http.StatusOK, *result.Success)
}

// readDocument adapts every uploaded file and merges them into one document.
func (h *HTTPHandlers) readDocument(w http.ResponseWriter, r *http.Request) (*armytypes.SourceDocument, int, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, bodyErrorStatus(err), err
		}
		name := r.URL.Query().Get("filename")
		if name == "" {
			name = "upload.txt"
		}
		return h.adapt(name, data)
	}

	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		return nil, bodyErrorStatus(err), err
	}
	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		return nil, http.StatusBadRequest, errors.New(`no "file" parts in upload`)
	}

	merged := &armytypes.SourceDocument{}
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, http.StatusBadRequest, err
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, http.StatusBadRequest, err
		}
		doc, status, err := h.adapt(fh.Filename, data)
		if err != nil {
			return nil, status, err
		}
		merged.Merge(doc)
	}
	return merged, http.StatusOK, nil
}

func (h *HTTPHandlers) adapt(name string, data []byte) (*armytypes.SourceDocument, int, error) {
	adapter, err := h.factory.GetAdapter(name, data)
	if err != nil {
		return nil, http.StatusUnsupportedMediaType, err
	}
	doc, err := adapter.Parse(data)
	if err != nil {
		return nil, http.StatusBadRequest, fmt.Errorf("%s: %w", name, err)
	}
	return doc, http.StatusOK, nil
}

func (h *HTTPHandlers) writeReport(ctx context.Context, w http.ResponseWriter, report *pipeline.Report, err error) {
	if err == nil {
		writeJSON(w, http.StatusOK, report)
		return
	}

	var ds diagnostics.Diagnostics
	if report != nil {
		ds = report.Diagnostics
	}
	switch {
	case errors.Is(err, diagnostics.ErrBatchFailure),
		errors.Is(err, diagnostics.ErrBatchRejected),
		errors.Is(err, pipeline.ErrStandingsRejected):
		writeError(w, http.StatusUnprocessableEntity, err.Error(), ds)
	default:
		h.logger.ErrorContext(ctx, "Army pipeline failed", attr.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error", nil)
	}
}

func bodyErrorStatus(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string, ds diagnostics.Diagnostics) {
	writeJSON(w, status, errorResponse{Error: msg, Diagnostics: ds})
}

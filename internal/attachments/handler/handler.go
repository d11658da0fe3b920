package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"ayuda/internal/attachments/models"
	"ayuda/internal/attachments/service"
	id "ayuda/pkg/domain"
	dErrors "ayuda/pkg/domain-errors"
	"ayuda/pkg/platform/httputil"
	"ayuda/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

type Service interface {
	Upload(ctx context.Context, actorID id.UserID, caseID id.CaseID, up service.Upload) (*service.Document, error)
	List(ctx context.Context, caseID id.CaseID) ([]*service.Document, error)
	Delete(ctx context.Context, actorID id.UserID, caseID id.CaseID, attachmentID id.AttachmentID) error
}

// Handler serves case documents as multipart uploads.
type Handler struct {
	docs   Service
	logger *slog.Logger
}

func New(docs Service, logger *slog.Logger) *Handler {
	return &Handler{docs: docs, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/cases/{caseID}/attachments", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleUpload)
		r.Delete("/{attachmentID}", h.handleDelete)
	})
}

// multipart overhead allowed on top of the document itself
const formOverhead = 64 << 10

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	caseID, err := id.ParseCaseID(chi.URLParam(r, "caseID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, models.MaxSize+formOverhead)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "document exceeds the size limit").
				WithDetail("max_bytes", models.MaxSize))
			return
		}
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "multipart field \"file\" is required"))
		return
	}
	defer file.Close()

	doc, err := h.docs.Upload(ctx, actor, caseID, service.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		h.writeError(ctx, w, "upload attachment", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toDocumentResponse(doc))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := h.requireActor(w, r); !ok {
		return
	}
	caseID, err := id.ParseCaseID(chi.URLParam(r, "caseID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	docs, err := h.docs.List(ctx, caseID)
	if err != nil {
		h.writeError(ctx, w, "list attachments", err)
		return
	}
	out := make([]documentResponse, 0, len(docs))
	for _, d := range docs {
		out = append(out, toDocumentResponse(d))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"attachments": out})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	caseID, err := id.ParseCaseID(chi.URLParam(r, "caseID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	attachmentID, err := id.ParseAttachmentID(chi.URLParam(r, "attachmentID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.docs.Delete(ctx, actor, caseID, attachmentID); err != nil {
		h.writeError(ctx, w, "delete attachment", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) requireActor(w http.ResponseWriter, r *http.Request) (id.UserID, bool) {
	actor := requestcontext.UserID(r.Context())
	if actor.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return actor, false
	}
	return actor, true
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, op string, err error) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, "failed to "+op,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	httputil.WriteError(w, err)
}

type documentResponse struct {
	ID          string    `json:"id"`
	CaseID      string    `json:"case_id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	UploadedBy  string    `json:"uploaded_by"`
	URL         string    `json:"url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func toDocumentResponse(d *service.Document) documentResponse {
	return documentResponse{
		ID:          d.ID.String(),
		CaseID:      d.CaseID.String(),
		Filename:    d.Filename,
		ContentType: d.ContentType,
		SizeBytes:   d.SizeBytes,
		UploadedBy:  d.UploadedBy.String(),
		URL:         d.URL,
		CreatedAt:   d.CreatedAt,
	}
}

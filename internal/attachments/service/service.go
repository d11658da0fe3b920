package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"ayuda/internal/attachments/blob"
	"ayuda/internal/attachments/models"
	refmodels "ayuda/internal/reference/models"
	id "ayuda/pkg/domain"
	dErrors "ayuda/pkg/domain-errors"
	"ayuda/pkg/platform/audit"
	"ayuda/pkg/platform/sentinel"
	"ayuda/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks CaseLookup,PermissionGate,AuditPublisher

// Store persists attachment metadata.
type Store interface {
	Create(ctx context.Context, a *models.Attachment) error
	Find(ctx context.Context, caseID id.CaseID, attachmentID id.AttachmentID) (*models.Attachment, error)
	ListByCase(ctx context.Context, caseID id.CaseID) ([]*models.Attachment, error)
	SoftDelete(ctx context.Context, attachmentID id.AttachmentID, at time.Time) error
}

// CaseLookup confirms a case exists and is not deleted.
type CaseLookup interface {
	CaseExists(ctx context.Context, caseID id.CaseID) error
}

type PermissionGate interface {
	Can(ctx context.Context, userID id.UserID, capability refmodels.Capability) bool
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Document is an attachment with a short-lived download URL.
type Document struct {
	*models.Attachment
	URL string
}

// Upload describes an incoming document.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

const defaultURLExpiry = 15 * time.Minute

// Service files documents against cases.
type Service struct {
	store          Store
	objects        blob.Store
	cases          CaseLookup
	gate           PermissionGate
	auditPublisher AuditPublisher
	logger         *slog.Logger
	tracer         trace.Tracer
	urlExpiry      time.Duration
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithURLExpiry(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.urlExpiry = d
		}
	}
}

func New(store Store, objects blob.Store, cases CaseLookup, gate PermissionGate, opts ...Option) (*Service, error) {
	if store == nil || objects == nil || cases == nil || gate == nil {
		return nil, errors.New("attachments: store, object store, case lookup and permission gate are required")
	}
	s := &Service{
		store:     store,
		objects:   objects,
		cases:     cases,
		gate:      gate,
		logger:    slog.Default(),
		tracer:    otel.Tracer("ayuda/attachments"),
		urlExpiry: defaultURLExpiry,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Upload stores the document bytes first and then the metadata row. If the
// row cannot be written the object is removed again.
func (s *Service) Upload(ctx context.Context, actorID id.UserID, caseID id.CaseID, up Upload) (*Document, error) {
	ctx, span := s.tracer.Start(ctx, "attachments.Upload", trace.WithAttributes(
		attribute.String("case_id", caseID.String()),
		attribute.Int64("size", up.Size),
	))
	defer span.End()

	if err := s.requireCapability(ctx, actorID); err != nil {
		return nil, recordSpanError(span, err)
	}
	if err := s.cases.CaseExists(ctx, caseID); err != nil {
		return nil, recordSpanError(span, translate(err, "case not found", "failed to load case"))
	}
	a, err := models.NewAttachment(id.AttachmentID(uuid.New()), caseID, up.Filename, up.ContentType, up.Size, actorID, requestcontext.Now(ctx))
	if err != nil {
		return nil, recordSpanError(span, err)
	}
	if err := s.objects.Put(ctx, a.ObjectKey, up.Body, a.SizeBytes, a.ContentType); err != nil {
		return nil, recordSpanError(span, translate(err, "case not found", "failed to store document"))
	}
	if err := s.store.Create(ctx, a); err != nil {
		if delErr := s.objects.Delete(context.WithoutCancel(ctx), a.ObjectKey); delErr != nil {
			s.logger.WarnContext(ctx, "orphaned attachment object",
				"object_key", a.ObjectKey,
				"error", delErr,
				"request_id", requestcontext.RequestID(ctx),
			)
		}
		return nil, recordSpanError(span, translate(err, "case not found", "failed to record document"))
	}
	s.emit(ctx, audit.EventAttachmentUploaded, actorID, a)

	url, err := s.objects.Presign(ctx, a.ObjectKey, s.urlExpiry)
	if err != nil {
		return nil, recordSpanError(span, translate(err, "document not found", "failed to sign document url"))
	}
	return &Document{Attachment: a, URL: url}, nil
}

// List returns the case documents with fresh download URLs.
func (s *Service) List(ctx context.Context, caseID id.CaseID) ([]*Document, error) {
	ctx, span := s.tracer.Start(ctx, "attachments.List", trace.WithAttributes(attribute.String("case_id", caseID.String())))
	defer span.End()

	if err := s.cases.CaseExists(ctx, caseID); err != nil {
		return nil, recordSpanError(span, translate(err, "case not found", "failed to load case"))
	}
	attachments, err := s.store.ListByCase(ctx, caseID)
	if err != nil {
		return nil, recordSpanError(span, translate(err, "case not found", "failed to list documents"))
	}
	out := make([]*Document, 0, len(attachments))
	for _, a := range attachments {
		url, err := s.objects.Presign(ctx, a.ObjectKey, s.urlExpiry)
		if err != nil {
			// A missing object still lists; the client sees no URL.
			s.logger.WarnContext(ctx, "attachment object unavailable",
				"attachment_id", a.ID.String(),
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
		}
		out = append(out, &Document{Attachment: a, URL: url})
	}
	return out, nil
}

// Delete soft-deletes the metadata row and removes the object.
func (s *Service) Delete(ctx context.Context, actorID id.UserID, caseID id.CaseID, attachmentID id.AttachmentID) error {
	ctx, span := s.tracer.Start(ctx, "attachments.Delete", trace.WithAttributes(
		attribute.String("case_id", caseID.String()),
		attribute.String("attachment_id", attachmentID.String()),
	))
	defer span.End()

	if err := s.requireCapability(ctx, actorID); err != nil {
		return recordSpanError(span, err)
	}
	a, err := s.store.Find(ctx, caseID, attachmentID)
	if err != nil {
		return recordSpanError(span, translate(err, "document not found", "failed to load document"))
	}
	if err := s.store.SoftDelete(ctx, a.ID, requestcontext.Now(ctx)); err != nil {
		return recordSpanError(span, translate(err, "document not found", "failed to delete document"))
	}
	if err := s.objects.Delete(ctx, a.ObjectKey); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		s.logger.WarnContext(ctx, "attachment object not removed",
			"object_key", a.ObjectKey,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	s.emit(ctx, audit.EventAttachmentDeleted, actorID, a)
	return nil
}

func (s *Service) requireCapability(ctx context.Context, actorID id.UserID) error {
	if actorID.IsNil() {
		return dErrors.New(dErrors.CodeUnauthorized, "actor is required")
	}
	if !s.gate.Can(ctx, actorID, refmodels.CapabilityAttachFiles) {
		return dErrors.New(dErrors.CodeForbidden, "missing capability "+string(refmodels.CapabilityAttachFiles))
	}
	return nil
}

// emit records an operations event. Documents are not part of the case
// state, so a publisher failure is logged rather than returned.
func (s *Service) emit(ctx context.Context, event audit.AuditEvent, actorID id.UserID, a *models.Attachment) {
	s.logger.InfoContext(ctx, string(event),
		"event", string(event),
		"log_type", "audit",
		"case_id", a.CaseID.String(),
		"attachment_id", a.ID.String(),
		"actor_id", actorID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	if s.auditPublisher == nil {
		return
	}
	err := s.auditPublisher.Emit(ctx, audit.Event{
		ActorID:     actorID,
		SubjectType: audit.SubjectAttachment,
		SubjectID:   a.ID.String(),
		Action:      string(event),
		Metadata: map[string]string{
			"case_id":      a.CaseID.String(),
			"filename":     a.Filename,
			"content_type": a.ContentType,
			"size_bytes":   strconv.FormatInt(a.SizeBytes, 10),
		},
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to publish attachment event",
			"event", string(event),
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}

func translate(err error, notFoundMsg, internalMsg string) error {
	if _, ok := dErrors.As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, notFoundMsg)
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeTimeout, "document storage is busy, retry later")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return dErrors.Wrap(err, dErrors.CodeTimeout, "operation timed out")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, internalMsg)
}

func recordSpanError(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
	return err
}

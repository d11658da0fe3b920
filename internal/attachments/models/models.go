package models

import (
	"path"
	"strings"
	"time"
	"unicode"

	id "ayuda/pkg/domain"
	dErrors "ayuda/pkg/domain-errors"
)

// MaxSize bounds a single uploaded document.
const MaxSize = 10 << 20

var allowedContentTypes = map[string]string{
	"application/pdf": ".pdf",
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
}

// Attachment is a supporting document (identity card, prescription, report)
// filed against a case. The bytes live in the object store under ObjectKey.
type Attachment struct {
	ID          id.AttachmentID
	CaseID      id.CaseID
	ObjectKey   string
	Filename    string
	ContentType string
	SizeBytes   int64
	UploadedBy  id.UserID
	CreatedAt   time.Time
	DeletedAt   *time.Time
}

// NewAttachment validates the upload and derives the object key.
func NewAttachment(attachmentID id.AttachmentID, caseID id.CaseID, filename, contentType string, size int64, uploadedBy id.UserID, now time.Time) (*Attachment, error) {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}
	ext, ok := allowedContentTypes[contentType]
	if !ok {
		return nil, dErrors.New(dErrors.CodeValidation, "only pdf, jpeg and png documents are accepted").
			WithDetail("content_type", contentType)
	}
	if size <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "document is empty")
	}
	if size > MaxSize {
		return nil, dErrors.New(dErrors.CodeValidation, "document exceeds the size limit").
			WithDetail("max_bytes", MaxSize)
	}
	name := CleanFilename(filename)
	if name == "" {
		name = "documento" + ext
	}
	return &Attachment{
		ID:          attachmentID,
		CaseID:      caseID,
		ObjectKey:   ObjectKey(caseID, attachmentID, ext),
		Filename:    name,
		ContentType: contentType,
		SizeBytes:   size,
		UploadedBy:  uploadedBy,
		CreatedAt:   now,
	}, nil
}

// ObjectKey places every document of a case under one prefix.
func ObjectKey(caseID id.CaseID, attachmentID id.AttachmentID, ext string) string {
	return "cases/" + caseID.String() + "/" + attachmentID.String() + ext
}

// CleanFilename drops any directory part and control characters and caps
// the length.
func CleanFilename(name string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))
	if name == "." || name == "/" {
		return ""
	}
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || r == '"' {
			return -1
		}
		return r
	}, name)
	if r := []rune(name); len(r) > 200 {
		name = string(r[:200])
	}
	return name
}

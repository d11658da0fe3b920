package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "ayuda/pkg/domain"
	dErrors "ayuda/pkg/domain-errors"
)

func TestNewAttachment(t *testing.T) {
	caseID := id.CaseID(uuid.New())
	attachmentID := id.AttachmentID(uuid.New())
	uploader := id.UserID(uuid.New())
	now := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

	t.Run("derives the key from case and extension", func(t *testing.T) {
		a, err := NewAttachment(attachmentID, caseID, "receta.PDF", "application/pdf; charset=binary", 1024, uploader, now)
		require.NoError(t, err)
		assert.Equal(t, "cases/"+caseID.String()+"/"+attachmentID.String()+".pdf", a.ObjectKey)
		assert.Equal(t, "application/pdf", a.ContentType)
		assert.Equal(t, "receta.PDF", a.Filename)
	})

	t.Run("rejects other content types", func(t *testing.T) {
		_, err := NewAttachment(attachmentID, caseID, "run.exe", "application/octet-stream", 10, uploader, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("rejects empty and oversized documents", func(t *testing.T) {
		_, err := NewAttachment(attachmentID, caseID, "a.png", "image/png", 0, uploader, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		_, err = NewAttachment(attachmentID, caseID, "a.png", "image/png", MaxSize+1, uploader, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("falls back to a default name", func(t *testing.T) {
		a, err := NewAttachment(attachmentID, caseID, "  ", "image/jpeg", 10, uploader, now)
		require.NoError(t, err)
		assert.Equal(t, "documento.jpg", a.Filename)
	})
}

func TestCleanFilename(t *testing.T) {
	assert.Equal(t, "cedula.png", CleanFilename(`C:\Users\ana\cedula.png`))
	assert.Equal(t, "passwd", CleanFilename("../../etc/passwd"))
	assert.Equal(t, "informe.pdf", CleanFilename("info\x00rme.pdf"))
	assert.Equal(t, "", CleanFilename("/"))
}

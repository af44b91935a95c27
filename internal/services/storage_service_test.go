// internal/services/storage_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNilStorageServiceReturnsError(t *testing.T) {
	var s *StorageService

	_, err := s.UploadBytes("contracts", "order-item.pdf", []byte("%PDF-"), "application/pdf")
	assert.ErrorIs(t, err, ErrStorageUnavailable)

	_, err = s.PresignedDownloadURL("contracts/order-item.pdf", 15*time.Minute)
	assert.ErrorIs(t, err, ErrStorageUnavailable)

	assert.ErrorIs(t, s.DeleteObject("contracts/order-item.pdf"), ErrStorageUnavailable)
}

func TestGenerateFileNameKeepsExtension(t *testing.T) {
	name := GenerateFileName("contrato final.pdf")
	assert.Regexp(t, `^\d+-[0-9a-f]{8}\.pdf$`, name)
}

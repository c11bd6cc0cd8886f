package handler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gleam/dashboard/internal/dto"
	"github.com/gleam/dashboard/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	kontenPrefix  = "konten/"
	maxPDFSize    = 20 * 1024 * 1024 // 20MB
	presignExpiry = 15 * time.Minute
	viewExpiry    = time.Hour
)

// ObjectStore is the part of the MinIO client the upload flow needs.
type ObjectStore interface {
	GetPresignedPutURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error)
	GetPresignedGetURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error)
	ObjectExists(ctx context.Context, objectKey string) (bool, error)
	DeleteObject(ctx context.Context, objectKey string) error
	GetPublicURL(objectKey string) string
}

// UploadHandler issues presigned PUT URLs for konten PDFs. The browser uploads straight to
// object storage and confirms afterwards to get the public URL.
type UploadHandler struct {
	store ObjectStore

	mu             sync.Mutex
	pendingUploads map[string]*PendingUpload
}

type PendingUpload struct {
	ID        string
	UserID    string
	ObjectKey string
	ExpiresAt time.Time
	Confirmed bool
}

func NewUploadHandler(store ObjectStore) *UploadHandler {
	return &UploadHandler{
		store:          store,
		pendingUploads: make(map[string]*PendingUpload),
	}
}

func (h *UploadHandler) Presign(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse("UNAUTHORIZED", "User tidak terautentikasi"))
	}

	var req dto.PresignRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	if req.ContentType != "application/pdf" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse("INVALID_CONTENT_TYPE", "Tipe file tidak diizinkan",
			dto.ErrorDetail{Field: "content_type", Message: "Tipe file yang diizinkan: application/pdf"},
		))
	}
	if req.FileSize <= 0 || req.FileSize > maxPDFSize {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse("FILE_TOO_LARGE", "Ukuran file melebihi batas maksimal",
			dto.ErrorDetail{Field: "file_size", Message: fmt.Sprintf("Ukuran file maksimal %dMB", maxPDFSize/(1024*1024))},
		))
	}

	objectKey := kontenPrefix + uuid.New().String() + ".pdf"

	presignedURL, err := h.store.GetPresignedPutURL(c.UserContext(), objectKey, presignExpiry)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse("INTERNAL_ERROR", "Gagal generate presigned URL"))
	}

	uploadID := uuid.New().String()
	h.mu.Lock()
	h.prune(time.Now())
	h.pendingUploads[uploadID] = &PendingUpload{
		ID:        uploadID,
		UserID:    userID,
		ObjectKey: objectKey,
		ExpiresAt: time.Now().Add(presignExpiry),
	}
	h.mu.Unlock()

	return c.JSON(dto.SuccessResponse(dto.PresignResponse{
		UploadID:     uploadID,
		PresignedURL: presignedURL,
		ObjectKey:    objectKey,
		ExpiresIn:    int(presignExpiry.Seconds()),
		Method:       "PUT",
		Headers:      map[string]string{"Content-Type": req.ContentType},
	}, ""))
}

func (h *UploadHandler) Confirm(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse("UNAUTHORIZED", "User tidak terautentikasi"))
	}

	var req dto.ConfirmUploadRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	// Claim the upload under the lock so two concurrent confirms cannot both succeed.
	h.mu.Lock()
	pending, ok := h.pendingUploads[req.UploadID]
	if !ok || pending.ExpiresAt.Before(time.Now()) {
		h.mu.Unlock()
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse("UPLOAD_NOT_FOUND", "Upload tidak ditemukan atau sudah expired"))
	}
	if pending.UserID != userID {
		h.mu.Unlock()
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse("FORBIDDEN", "Anda tidak memiliki akses"))
	}
	if pending.Confirmed {
		h.mu.Unlock()
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse("UPLOAD_ALREADY_CONFIRMED", "Upload ini sudah dikonfirmasi sebelumnya"))
	}
	pending.Confirmed = true
	objectKey := pending.ObjectKey
	h.mu.Unlock()

	exists, err := h.store.ObjectExists(c.UserContext(), objectKey)
	if err != nil || !exists {
		h.mu.Lock()
		pending.Confirmed = false
		h.mu.Unlock()
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse("OBJECT_NOT_FOUND", "File tidak ditemukan di storage. Pastikan upload berhasil."))
	}

	return c.JSON(dto.SuccessResponse(dto.ConfirmUploadResponse{
		URL:       h.store.GetPublicURL(objectKey),
		ObjectKey: objectKey,
	}, "File berhasil diupload"))
}

// Delete only removes konten PDFs; other keys in the bucket are off limits.
func (h *UploadHandler) Delete(c *fiber.Ctx) error {
	objectKey := c.Params("*")
	if !validKontenKey(objectKey) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse("VALIDATION_ERROR", "Object key tidak valid"))
	}

	if err := h.store.DeleteObject(c.UserContext(), objectKey); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse("INTERNAL_ERROR", "Gagal menghapus file"))
	}

	return c.JSON(dto.SuccessResponse(nil, "File berhasil dihapus"))
}

func (h *UploadHandler) PresignView(c *fiber.Ctx) error {
	objectKey := c.Query("object_key")
	if !validKontenKey(objectKey) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse("VALIDATION_ERROR", "Object key wajib diisi"))
	}

	url, err := h.store.GetPresignedGetURL(c.UserContext(), objectKey, viewExpiry)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse("INTERNAL_ERROR", "Gagal generate presigned URL"))
	}

	return c.JSON(dto.SuccessResponse(dto.PresignViewResponse{
		URL:       url,
		ExpiresIn: int(viewExpiry.Seconds()),
	}, ""))
}

// prune drops expired uploads. Callers hold h.mu.
func (h *UploadHandler) prune(now time.Time) {
	for id, p := range h.pendingUploads {
		if p.ExpiresAt.Before(now) {
			delete(h.pendingUploads, id)
		}
	}
}

func validKontenKey(key string) bool {
	return strings.HasPrefix(key, kontenPrefix) && len(key) > len(kontenPrefix) && !strings.Contains(key, "..")
}

package dto

type PresignRequest struct {
	Filename    string `json:"filename" validate:"required"`
	ContentType string `json:"content_type" validate:"required"`
	FileSize    int64  `json:"file_size" validate:"required"`
}

type PresignResponse struct {
	UploadID     string            `json:"upload_id"`
	PresignedURL string            `json:"presigned_url"`
	ObjectKey    string            `json:"object_key"`
	ExpiresIn    int               `json:"expires_in"`
	Method       string            `json:"method"`
	Headers      map[string]string `json:"headers"`
}

type ConfirmUploadRequest struct {
	UploadID string `json:"upload_id" validate:"required"`
}

type ConfirmUploadResponse struct {
	URL       string `json:"url"`
	ObjectKey string `json:"object_key"`
}

type PresignViewResponse struct {
	URL       string `json:"url"`
	ExpiresIn int    `json:"expires_in"`
}

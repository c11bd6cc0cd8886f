package dto

import "time"

// Konten is an educational content item.
type Konten struct {
	ID          ID        `json:"id"`
	Title       string    `json:"title"`
	VideoID     *string   `json:"video_id,omitempty"`
	PDFURL      *string   `json:"pdf_url,omitempty"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type KontenRequest struct {
	Title       string  `json:"title"`
	Video       *string `json:"video,omitempty"` // YouTube URL or id
	PDFURL      *string `json:"pdf_url,omitempty"`
	Description string  `json:"description"`
}

// KontenPayload is the normalised body sent upstream.
type KontenPayload struct {
	Title       string  `json:"title"`
	VideoID     *string `json:"video_id"`
	PDFURL      *string `json:"pdf_url"`
	Description string  `json:"description"`
}

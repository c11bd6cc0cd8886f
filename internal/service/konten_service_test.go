package service

import (
	"context"
	"testing"

	"github.com/gleam/dashboard/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestYouTubeID(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"https://youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ", false},
		{"https://m.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"https://youtu.be/dQw4w9WgXcQ?si=abc", "dQw4w9WgXcQ", false},
		{"youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"https://www.youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"https://www.youtube-nocookie.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"https://vimeo.com/12345", "", true},
		{"https://www.youtube.com/watch?v=short", "", true},
		{"https://www.youtube.com/", "", true},
		{"not a video", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := YouTubeID(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidVideo)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildKontenPayload(t *testing.T) {
	t.Run("normalises video", func(t *testing.T) {
		p, err := BuildKontenPayload(dto.KontenRequest{Title: " Senam ", Video: strPtr("https://youtu.be/dQw4w9WgXcQ")})
		require.NoError(t, err)
		assert.Equal(t, "Senam", p.Title)
		require.NotNil(t, p.VideoID)
		assert.Equal(t, "dQw4w9WgXcQ", *p.VideoID)
		assert.Nil(t, p.PDFURL)
	})

	t.Run("requires title", func(t *testing.T) {
		_, err := BuildKontenPayload(dto.KontenRequest{Description: "isi"})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("requires some content", func(t *testing.T) {
		_, err := BuildKontenPayload(dto.KontenRequest{Title: "Kosong"})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "description", verr.Fields[0].Field)
	})

	t.Run("rejects bad video and pdf", func(t *testing.T) {
		_, err := BuildKontenPayload(dto.KontenRequest{Title: "x", Video: strPtr("https://vimeo.com/1"), PDFURL: strPtr("ftp://files/x.pdf")})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		require.Len(t, verr.Fields, 2)
		assert.Equal(t, "video", verr.Fields[0].Field)
		assert.Equal(t, "pdf_url", verr.Fields[1].Field)
	})
}

func TestKontenService_CreateSendsNormalisedPayload(t *testing.T) {
	backend := &fakeBackend{handle: func(c backendCall) (interface{}, error) {
		return dto.Konten{ID: "4", Title: "Senam"}, nil
	}}
	svc := NewKontenService(backend)

	item, err := svc.Create(context.Background(), "tok", dto.KontenRequest{Title: "Senam", Video: strPtr("https://www.youtube.com/shorts/dQw4w9WgXcQ")})
	require.NoError(t, err)
	assert.Equal(t, dto.ID("4"), item.ID)

	sent := backend.Calls()[0].Body.(*dto.KontenPayload)
	assert.Equal(t, "dQw4w9WgXcQ", *sent.VideoID)

	_, err = svc.Create(context.Background(), "tok", dto.KontenRequest{})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Len(t, backend.Calls(), 1)
}

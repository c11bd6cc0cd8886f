package service

import (
	"context"
	"errors"
	"net/url"
	"regexp"
	"strings"

	"github.com/gleam/dashboard/internal/dto"
)

var (
	ErrInvalidVideo = errors.New("invalid YouTube URL or video id")

	videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
)

type KontenService struct {
	backend Backend
}

func NewKontenService(backend Backend) *KontenService {
	return &KontenService{backend: backend}
}

func (s *KontenService) List(ctx context.Context, token string) ([]dto.Konten, error) {
	items := []dto.Konten{}
	if err := s.backend.Get(ctx, "/konten", nil, token, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *KontenService) Get(ctx context.Context, token, id string) (*dto.Konten, error) {
	var item dto.Konten
	if err := s.backend.Get(ctx, pathf("/konten/%s", id), nil, token, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *KontenService) Create(ctx context.Context, token string, req dto.KontenRequest) (*dto.Konten, error) {
	payload, err := BuildKontenPayload(req)
	if err != nil {
		return nil, err
	}
	var item dto.Konten
	if err := s.backend.Post(ctx, "/konten", token, payload, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *KontenService) Update(ctx context.Context, token, id string, req dto.KontenRequest) (*dto.Konten, error) {
	payload, err := BuildKontenPayload(req)
	if err != nil {
		return nil, err
	}
	var item dto.Konten
	if err := s.backend.Put(ctx, pathf("/konten/%s", id), token, payload, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *KontenService) Delete(ctx context.Context, token, id string) error {
	return s.backend.Delete(ctx, pathf("/konten/%s", id), token)
}

// BuildKontenPayload validates a konten form and normalises its video to a bare id.
func BuildKontenPayload(req dto.KontenRequest) (*dto.KontenPayload, error) {
	v := &ValidationError{}
	payload := &dto.KontenPayload{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
	}
	if payload.Title == "" {
		v.add("title", "Judul wajib diisi")
	}

	if req.Video != nil && strings.TrimSpace(*req.Video) != "" {
		id, err := YouTubeID(*req.Video)
		if err != nil {
			v.add("video", "Link YouTube tidak valid")
		} else {
			payload.VideoID = &id
		}
	}

	if req.PDFURL != nil && strings.TrimSpace(*req.PDFURL) != "" {
		raw := strings.TrimSpace(*req.PDFURL)
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			v.add("pdf_url", "URL PDF tidak valid")
		} else {
			payload.PDFURL = &raw
		}
	}

	if payload.Description == "" && payload.VideoID == nil && payload.PDFURL == nil && len(v.Fields) == 0 {
		v.add("description", "Isi deskripsi, video, atau PDF")
	}
	if err := v.err(); err != nil {
		return nil, err
	}
	return payload, nil
}

// YouTubeID accepts a bare id or any of the common YouTube URL forms.
func YouTubeID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if videoIDPattern.MatchString(raw) {
		return raw, nil
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", ErrInvalidVideo
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	host = strings.TrimPrefix(host, "m.")
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")

	var id string
	switch host {
	case "youtu.be":
		id = segments[0]
	case "youtube.com", "music.youtube.com", "youtube-nocookie.com":
		switch {
		case segments[0] == "watch":
			id = u.Query().Get("v")
		case len(segments) >= 2 && (segments[0] == "embed" || segments[0] == "shorts" || segments[0] == "live" || segments[0] == "v"):
			id = segments[1]
		}
	}

	if !videoIDPattern.MatchString(id) {
		return "", ErrInvalidVideo
	}
	return id, nil
}

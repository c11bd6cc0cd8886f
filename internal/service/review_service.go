package service

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/gleam/dashboard/internal/dto"
	"github.com/gleam/dashboard/internal/report"
)

const maxSuggestionLength = 1000

type ReviewService struct {
	backend Backend
}

func NewReviewService(backend Backend) *ReviewService {
	return &ReviewService{backend: backend}
}

func ValidateReview(r *dto.Review) error {
	v := &ValidationError{}
	for i, score := range r.Scores() {
		if score < 1 || score > 5 {
			v.add(fmt.Sprintf("q%d", i+1), "Nilai harus antara 1 dan 5")
		}
	}
	r.Suggestion = strings.TrimSpace(r.Suggestion)
	if utf8.RuneCountInString(r.Suggestion) > maxSuggestionLength {
		v.add("suggestion", fmt.Sprintf("Saran maksimal %d karakter", maxSuggestionLength))
	}
	return v.err()
}

func (s *ReviewService) Submit(ctx context.Context, token string, r dto.Review) (*dto.Review, error) {
	if err := ValidateReview(&r); err != nil {
		return nil, err
	}
	var stored dto.Review
	if err := s.backend.Post(ctx, "/reviews", token, r, &stored); err != nil {
		return nil, err
	}
	return &stored, nil
}

func (s *ReviewService) List(ctx context.Context, token string) (*dto.ReviewListResponse, error) {
	reviews := []dto.Review{}
	if err := s.backend.Get(ctx, "/admin/reviews", nil, token, &reviews); err != nil {
		return nil, err
	}
	return &dto.ReviewListResponse{Reviews: reviews, Summary: SummarizeReviews(reviews)}, nil
}

func (s *ReviewService) ListXLSX(ctx context.Context, token string) (*bytes.Buffer, error) {
	list, err := s.List(ctx, token)
	if err != nil {
		return nil, err
	}
	return report.ReviewWorkbook(list)
}

// SummarizeReviews averages each question and all answers together, rounded to 2 decimals.
func SummarizeReviews(reviews []dto.Review) dto.ReviewSummary {
	sum := dto.ReviewSummary{Count: len(reviews)}
	if len(reviews) == 0 {
		return sum
	}

	var totals [10]int
	all := 0
	for _, r := range reviews {
		for i, score := range r.Scores() {
			totals[i] += score
			all += score
		}
	}
	n := float64(len(reviews))
	for i, t := range totals {
		sum.QuestionMean[i] = round2(float64(t) / n)
	}
	sum.OverallMean = round2(float64(all) / (n * 10))
	return sum
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

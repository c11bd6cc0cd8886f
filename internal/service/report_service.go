package service

import (
	"bytes"
	"context"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/gleam/dashboard/internal/domain"
	"github.com/gleam/dashboard/internal/dto"
	"github.com/gleam/dashboard/internal/report"
)

const reportDateLayout = "2006-01-02"

// ReportService builds the screening laporan shared by nakes and manajemen.
type ReportService struct {
	backend Backend
}

func NewReportService(backend Backend) *ReportService {
	return &ReportService{backend: backend}
}

// ParseReportFilter reads the from/to (YYYY-MM-DD) and kelurahan query values.
func ParseReportFilter(from, to, kelurahan string) (dto.ReportFilter, error) {
	filter := dto.ReportFilter{Kelurahan: strings.TrimSpace(kelurahan)}
	v := &ValidationError{}
	if from != "" {
		t, err := time.ParseInLocation(reportDateLayout, from, time.Local)
		if err != nil {
			v.add("from", "Format tanggal harus YYYY-MM-DD")
		} else {
			filter.From = &t
		}
	}
	if to != "" {
		t, err := time.ParseInLocation(reportDateLayout, to, time.Local)
		if err != nil {
			v.add("to", "Format tanggal harus YYYY-MM-DD")
		} else {
			end := t.AddDate(0, 0, 1).Add(-time.Nanosecond)
			filter.To = &end
		}
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		v.add("to", "Tanggal akhir sebelum tanggal awal")
	}
	return filter, v.err()
}

func (s *ReportService) Screening(ctx context.Context, token string, role domain.UserRole, filter dto.ReportFilter) (*dto.ScreeningReport, error) {
	q := url.Values{}
	if filter.From != nil {
		q.Set("from", filter.From.Format(reportDateLayout))
	}
	if filter.To != nil {
		q.Set("to", filter.To.Format(reportDateLayout))
	}
	if filter.Kelurahan != "" {
		q.Set("kelurahan", filter.Kelurahan)
	}

	var rows []dto.ScreeningDetail
	if err := s.backend.Get(ctx, screeningPath(role), q, token, &rows); err != nil {
		return nil, err
	}

	// The backend does not apply every filter, so apply them again here.
	kept := make([]dto.ScreeningDetail, 0, len(rows))
	for _, r := range rows {
		if matchesFilter(r, filter) {
			kept = append(kept, r)
		}
	}
	return &dto.ScreeningReport{Rows: kept, Summary: SummarizeScreenings(kept)}, nil
}

func (s *ReportService) ScreeningXLSX(ctx context.Context, token string, role domain.UserRole, filter dto.ReportFilter) (*bytes.Buffer, error) {
	r, err := s.Screening(ctx, token, role, filter)
	if err != nil {
		return nil, err
	}
	return report.ScreeningWorkbook(r)
}

func matchesFilter(r dto.ScreeningDetail, f dto.ReportFilter) bool {
	if f.From != nil && r.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && r.CreatedAt.After(*f.To) {
		return false
	}
	if f.Kelurahan != "" && !strings.EqualFold(strings.TrimSpace(r.Kelurahan), f.Kelurahan) {
		return false
	}
	return true
}

func SummarizeScreenings(rows []dto.ScreeningDetail) dto.ScreeningSummary {
	sum := dto.ScreeningSummary{
		Total:         len(rows),
		PerRiskLabel:  map[string]int{},
		PerBPCategory: map[string]int{},
		PerKelurahan:  map[string]int{},
	}
	var bmiTotal float64
	for _, r := range rows {
		sum.PerRiskLabel[orUnknown(r.RiskLabel)]++
		sum.PerBPCategory[orUnknown(r.KategoriTekanan)]++
		sum.PerKelurahan[orUnknown(r.Kelurahan)]++
		bmiTotal += r.BMI
	}
	if len(rows) > 0 {
		sum.MeanBMI = math.Round(bmiTotal/float64(len(rows))*100) / 100
	}
	return sum
}

func orUnknown(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return "Tidak diketahui"
	}
	return s
}

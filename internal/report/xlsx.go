package report

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/gleam/dashboard/internal/dto"
	"github.com/xuri/excelize/v2"
)

const (
	SheetLaporan   = "Laporan"
	SheetRingkasan = "Ringkasan"
	SheetReview    = "Review"

	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var screeningHeader = []interface{}{
	"Tanggal", "Nama", "Umur", "JK", "Kelurahan", "RW", "Berat (kg)", "Tinggi (cm)", "BMI",
	"Kategori BMI", "Sistolik", "Diastolik", "Kategori Tekanan Darah", "Risiko (%)", "Label Risiko",
}

// ScreeningWorkbook writes the screening report as one row per screening plus a summary sheet.
func ScreeningWorkbook(r *dto.ScreeningReport) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetLaporan); err != nil {
		return nil, err
	}
	rows := make([][]interface{}, 0, len(r.Rows)+1)
	rows = append(rows, screeningHeader)
	for _, s := range r.Rows {
		rows = append(rows, []interface{}{
			s.CreatedAt.Format("2006-01-02"), s.Nama, s.Umur, s.JenisKelamin, s.Kelurahan, s.RW,
			s.BeratBadan, s.TinggiBadan, s.BMI, s.KategoriBMI, s.Sistolik, s.Diastolik,
			s.KategoriTekanan, s.RiskPercentage, s.RiskLabel,
		})
	}
	if err := writeRows(f, SheetLaporan, rows); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(SheetRingkasan); err != nil {
		return nil, err
	}
	summary := [][]interface{}{
		{"Total skrining", r.Summary.Total},
		{"Rata-rata BMI", r.Summary.MeanBMI},
		{},
	}
	summary = append(summary, countBlock("Label Risiko", r.Summary.PerRiskLabel)...)
	summary = append(summary, []interface{}{})
	summary = append(summary, countBlock("Kategori Tekanan Darah", r.Summary.PerBPCategory)...)
	summary = append(summary, []interface{}{})
	summary = append(summary, countBlock("Kelurahan", r.Summary.PerKelurahan)...)
	if err := writeRows(f, SheetRingkasan, summary); err != nil {
		return nil, err
	}

	return f.WriteToBuffer()
}

// ReviewWorkbook writes every survey answer and the per-question means.
func ReviewWorkbook(list *dto.ReviewListResponse) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetReview); err != nil {
		return nil, err
	}
	header := []interface{}{"Tanggal"}
	for i := 1; i <= 10; i++ {
		header = append(header, fmt.Sprintf("Q%d", i))
	}
	header = append(header, "Saran")

	rows := [][]interface{}{header}
	for _, rv := range list.Reviews {
		row := []interface{}{rv.CreatedAt.Format("2006-01-02")}
		for _, score := range rv.Scores() {
			row = append(row, score)
		}
		rows = append(rows, append(row, rv.Suggestion))
	}
	if err := writeRows(f, SheetReview, rows); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(SheetRingkasan); err != nil {
		return nil, err
	}
	summary := [][]interface{}{{"Jumlah responden", list.Summary.Count}, {}}
	for i, mean := range list.Summary.QuestionMean {
		summary = append(summary, []interface{}{fmt.Sprintf("Q%d", i+1), mean})
	}
	summary = append(summary, []interface{}{"Rata-rata keseluruhan", list.Summary.OverallMean})
	if err := writeRows(f, SheetRingkasan, summary); err != nil {
		return nil, err
	}

	return f.WriteToBuffer()
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

// countBlock renders a titled two-column table sorted by key.
func countBlock(title string, counts map[string]int) [][]interface{} {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := [][]interface{}{{title, "Jumlah"}}
	for _, k := range keys {
		rows = append(rows, []interface{}{k, counts[k]})
	}
	return rows
}

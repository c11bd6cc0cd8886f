package dto

import "time"

type ReportFilter struct {
	From      *time.Time
	To        *time.Time
	Kelurahan string
}

type ScreeningSummary struct {
	Total         int            `json:"total"`
	PerRiskLabel  map[string]int `json:"per_risk_label"`
	PerBPCategory map[string]int `json:"per_bp_category"`
	PerKelurahan  map[string]int `json:"per_kelurahan"`
	MeanBMI       float64        `json:"mean_bmi"`
}

type ScreeningReport struct {
	Rows    []ScreeningDetail `json:"rows"`
	Summary ScreeningSummary  `json:"summary"`
}

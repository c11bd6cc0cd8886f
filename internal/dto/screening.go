package dto

import "time"

type ScreeningInput struct {
	PatientID       *ID      `json:"patient_id,omitempty"`
	Nama            string   `json:"name"`
	Umur            int      `json:"age"`
	JenisKelamin    string   `json:"gender"` // "L" or "P"
	BeratBadan      float64  `json:"weight"` // kg
	TinggiBadan     float64  `json:"height"` // cm
	Sistolik        int      `json:"systolic"`
	Diastolik       int      `json:"diastolic"`
	GulaDarah       *float64 `json:"blood_glucose,omitempty"`
	RiwayatKeluarga bool     `json:"family_history"`
	AktivitasFisik  bool     `json:"physical_activity"`
	Merokok         bool     `json:"smoking"`
	Kelurahan       string   `json:"kelurahan,omitempty"`
	RW              string   `json:"rw,omitempty"`
}

// ScreeningDetail is a diabetes-risk screening result.
type ScreeningDetail struct {
	ID              ID        `json:"id"`
	PatientID       *ID       `json:"patient_id,omitempty"`
	Nama            string    `json:"name"`
	Umur            int       `json:"age"`
	JenisKelamin    string    `json:"gender"`
	BeratBadan      float64   `json:"weight"`
	TinggiBadan     float64   `json:"height"`
	BMI             float64   `json:"bmi"`
	KategoriBMI     string    `json:"bmi_category,omitempty"`
	Sistolik        int       `json:"systolic"`
	Diastolik       int       `json:"diastolic"`
	KategoriTekanan string    `json:"blood_pressure_category"`
	GulaDarah       *float64  `json:"blood_glucose,omitempty"`
	RiwayatKeluarga bool      `json:"family_history"`
	AktivitasFisik  bool      `json:"physical_activity"`
	Merokok         bool      `json:"smoking"`
	Kelurahan       string    `json:"kelurahan,omitempty"`
	RW              string    `json:"rw,omitempty"`
	RiskPercentage  float64   `json:"risk_percentage"`
	RiskLabel       string    `json:"risk_label"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type CalculateRequest struct {
	BeratBadan  float64 `json:"weight"`
	TinggiBadan float64 `json:"height"`
	Sistolik    int     `json:"systolic"`
	Diastolik   int     `json:"diastolic"`
}

type CalculateResponse struct {
	BMI             float64 `json:"bmi"`
	KategoriBMI     string  `json:"bmi_category"`
	KategoriTekanan string  `json:"blood_pressure_category"`
}

// PredictionRequest is the fixed schema the ML endpoints accept.
type PredictionRequest struct {
	Age              int      `json:"age"`
	Gender           int      `json:"gender"` // 1 = male, 0 = female
	BMI              float64  `json:"bmi"`
	Systolic         int      `json:"systolic_bp"`
	Diastolic        int      `json:"diastolic_bp"`
	Glucose          *float64 `json:"glucose,omitempty"`
	FamilyHistory    int      `json:"family_history"`
	PhysicalActivity int      `json:"physical_activity"`
	Smoking          int      `json:"smoking"`
}

type PredictionResult struct {
	Endpoint       string  `json:"endpoint"`
	RiskPercentage float64 `json:"risk_percentage"`
	RiskLabel      string  `json:"risk_label"`
}

type Patient struct {
	ID        ID      `json:"id"`
	Nama      string  `json:"name"`
	NIK       *string `json:"nik,omitempty"`
	Umur      int     `json:"age,omitempty"`
	Gender    string  `json:"gender,omitempty"`
	Kelurahan string  `json:"kelurahan,omitempty"`
	RW        string  `json:"rw,omitempty"`
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/gleam/dashboard/internal/domain"
	"github.com/gleam/dashboard/internal/dto"
	"github.com/gleam/dashboard/internal/upstream"
	"github.com/gofiber/fiber/v2"
)

var (
	ErrInvalidMeasurement    = errors.New("weight and height must be positive")
	ErrPredictionUnavailable = errors.New("no prediction endpoint answered")
)

// BMI categories, Kemenkes bands.
const (
	BMIKurus    = "Kurus"
	BMINormal   = "Normal"
	BMIGemuk    = "Gemuk"
	BMIObesitas = "Obesitas"
)

// Blood pressure categories, ESH grading.
const (
	BPOptimal      = "Optimal"
	BPNormal       = "Normal"
	BPNormalTinggi = "Normal Tinggi"
	BPHipertensi1  = "Hipertensi Derajat 1"
	BPHipertensi2  = "Hipertensi Derajat 2"
	BPHipertensi3  = "Hipertensi Derajat 3"
	BPSistolik     = "Hipertensi Sistolik Terisolasi"
)

const (
	RiskRendah = "Rendah"
	RiskSedang = "Sedang"
	RiskTinggi = "Tinggi"
)

// CalculateBMI returns weight / (height in metres)^2 rounded to two decimals.
func CalculateBMI(weightKg, heightCm float64) (float64, error) {
	if weightKg <= 0 || heightCm <= 0 {
		return 0, ErrInvalidMeasurement
	}
	m := heightCm / 100
	return math.Round(weightKg/(m*m)*100) / 100, nil
}

func ClassifyBMI(bmi float64) string {
	switch {
	case bmi < 18.5:
		return BMIKurus
	case bmi < 25.0:
		return BMINormal
	case bmi < 27.0:
		return BMIGemuk
	default:
		return BMIObesitas
	}
}

// ClassifyBloodPressure grades by whichever component falls in the higher band. Systolic
// of 140 or more with diastolic under 90 is isolated systolic hypertension.
func ClassifyBloodPressure(systolic, diastolic int) string {
	if systolic >= 140 && diastolic < 90 {
		return BPSistolik
	}
	return bpBands[max(systolicBand(systolic), diastolicBand(diastolic))]
}

var bpBands = []string{BPOptimal, BPNormal, BPNormalTinggi, BPHipertensi1, BPHipertensi2, BPHipertensi3}

func systolicBand(v int) int {
	switch {
	case v < 120:
		return 0
	case v < 130:
		return 1
	case v < 140:
		return 2
	case v < 160:
		return 3
	case v < 180:
		return 4
	default:
		return 5
	}
}

func diastolicBand(v int) int {
	switch {
	case v < 80:
		return 0
	case v < 85:
		return 1
	case v < 90:
		return 2
	case v < 100:
		return 3
	case v < 110:
		return 4
	default:
		return 5
	}
}

func RiskLabel(percentage float64) string {
	switch {
	case percentage < 30:
		return RiskRendah
	case percentage < 70:
		return RiskSedang
	default:
		return RiskTinggi
	}
}

// Predictor asks the ML services for a diabetes risk, trying each endpoint in order.
type Predictor struct {
	endpoints []string
	timeout   time.Duration
}

func NewPredictor(endpoints []string, timeout time.Duration) *Predictor {
	return &Predictor{endpoints: endpoints, timeout: timeout}
}

type predictionBody struct {
	Probability    *float64 `json:"probability"`
	RiskPercentage *float64 `json:"risk_percentage"`
}

func (p *Predictor) Predict(ctx context.Context, req dto.PredictionRequest) (*dto.PredictionResult, error) {
	if len(p.endpoints) == 0 {
		return nil, ErrPredictionUnavailable
	}
	var errs []error
	for _, endpoint := range p.endpoints {
		pct, err := p.call(ctx, endpoint, req)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			log.Printf("[Screening] Prediction endpoint %s failed: %v", endpoint, err)
			errs = append(errs, err)
			continue
		}
		return &dto.PredictionResult{
			Endpoint:       endpoint,
			RiskPercentage: pct,
			RiskLabel:      RiskLabel(pct),
		}, nil
	}
	return nil, fmt.Errorf("%w: %w", ErrPredictionUnavailable, errors.Join(errs...))
}

func (p *Predictor) call(ctx context.Context, endpoint string, req dto.PredictionRequest) (float64, error) {
	code, body, err := upstream.Send(ctx, upstream.SendOptions{
		Method:  fiber.MethodPost,
		URL:     endpoint,
		Body:    req,
		Timeout: p.timeout,
	})
	if err != nil {
		return 0, err
	}
	if code < 200 || code > 299 {
		return 0, fmt.Errorf("status %d", code)
	}

	var envelope struct {
		Data *predictionBody `json:"data"`
		predictionBody
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return 0, fmt.Errorf("decode prediction: %w", err)
	}
	pb := envelope.predictionBody
	if envelope.Data != nil {
		pb = *envelope.Data
	}

	var pct float64
	switch {
	case pb.RiskPercentage != nil:
		pct = *pb.RiskPercentage
	case pb.Probability != nil:
		pct = *pb.Probability * 100
	default:
		return 0, errors.New("prediction response has no probability")
	}
	if pct < 0 || pct > 100 || math.IsNaN(pct) {
		return 0, fmt.Errorf("prediction out of range: %v", pct)
	}
	return math.Round(pct*100) / 100, nil
}

// RiskPredictor is satisfied by *Predictor.
type RiskPredictor interface {
	Predict(ctx context.Context, req dto.PredictionRequest) (*dto.PredictionResult, error)
}

type ScreeningService struct {
	backend   Backend
	predictor RiskPredictor
}

func NewScreeningService(backend Backend, predictor RiskPredictor) *ScreeningService {
	return &ScreeningService{backend: backend, predictor: predictor}
}

// Calculate runs the local BMI and blood pressure helpers only.
func (s *ScreeningService) Calculate(req dto.CalculateRequest) (*dto.CalculateResponse, error) {
	v := &ValidationError{}
	validateMeasurements(v, req.BeratBadan, req.TinggiBadan, req.Sistolik, req.Diastolik)
	if err := v.err(); err != nil {
		return nil, err
	}
	bmi, _ := CalculateBMI(req.BeratBadan, req.TinggiBadan)
	return &dto.CalculateResponse{
		BMI:             bmi,
		KategoriBMI:     ClassifyBMI(bmi),
		KategoriTekanan: ClassifyBloodPressure(req.Sistolik, req.Diastolik),
	}, nil
}

// Submit validates a screening form, fills in the derived fields and the ML risk, and
// stores it upstream under the caller's role.
func (s *ScreeningService) Submit(ctx context.Context, token string, role domain.UserRole, in dto.ScreeningInput) (*dto.ScreeningDetail, error) {
	in.Nama = strings.TrimSpace(in.Nama)
	in.JenisKelamin = strings.ToUpper(strings.TrimSpace(in.JenisKelamin))

	v := &ValidationError{}
	if in.Nama == "" {
		v.add("name", "Nama wajib diisi")
	}
	if in.Umur < 1 || in.Umur > 120 {
		v.add("age", "Umur harus antara 1 dan 120")
	}
	if in.JenisKelamin != "L" && in.JenisKelamin != "P" {
		v.add("gender", "Jenis kelamin harus L atau P")
	}
	validateMeasurements(v, in.BeratBadan, in.TinggiBadan, in.Sistolik, in.Diastolik)
	if in.GulaDarah != nil && (*in.GulaDarah <= 0 || *in.GulaDarah > 1000) {
		v.add("blood_glucose", "Gula darah tidak valid")
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	bmi, _ := CalculateBMI(in.BeratBadan, in.TinggiBadan)
	detail := dto.ScreeningDetail{
		PatientID:       in.PatientID,
		Nama:            in.Nama,
		Umur:            in.Umur,
		JenisKelamin:    in.JenisKelamin,
		BeratBadan:      in.BeratBadan,
		TinggiBadan:     in.TinggiBadan,
		BMI:             bmi,
		KategoriBMI:     ClassifyBMI(bmi),
		Sistolik:        in.Sistolik,
		Diastolik:       in.Diastolik,
		KategoriTekanan: ClassifyBloodPressure(in.Sistolik, in.Diastolik),
		GulaDarah:       in.GulaDarah,
		RiwayatKeluarga: in.RiwayatKeluarga,
		AktivitasFisik:  in.AktivitasFisik,
		Merokok:         in.Merokok,
		Kelurahan:       in.Kelurahan,
		RW:              in.RW,
	}

	prediction, err := s.predictor.Predict(ctx, predictionRequest(detail))
	if err != nil {
		return nil, err
	}
	detail.RiskPercentage = prediction.RiskPercentage
	detail.RiskLabel = prediction.RiskLabel

	var stored dto.ScreeningDetail
	if err := s.backend.Post(ctx, screeningPath(role), token, detail, &stored); err != nil {
		return nil, err
	}
	return &stored, nil
}

func (s *ScreeningService) List(ctx context.Context, token string, role domain.UserRole, query url.Values) ([]dto.ScreeningDetail, error) {
	rows := []dto.ScreeningDetail{}
	if err := s.backend.Get(ctx, screeningPath(role), query, token, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *ScreeningService) Get(ctx context.Context, token string, role domain.UserRole, id string) (*dto.ScreeningDetail, error) {
	var detail dto.ScreeningDetail
	if err := s.backend.Get(ctx, screeningPath(role)+pathf("/%s", id), nil, token, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// SearchPatients backs the nakes patient picker.
func (s *ScreeningService) SearchPatients(ctx context.Context, token, search string) ([]dto.Patient, error) {
	q := url.Values{}
	if search = strings.TrimSpace(search); search != "" {
		q.Set("search", search)
	}
	patients := []dto.Patient{}
	if err := s.backend.Get(ctx, "/nakes/patients", q, token, &patients); err != nil {
		return nil, err
	}
	return patients, nil
}

func screeningPath(role domain.UserRole) string {
	switch role {
	case domain.RoleNakes:
		return "/nakes/screenings"
	case domain.RoleManajemen:
		return "/manajemen/screenings"
	case domain.RoleAdmin:
		return "/admin/screenings"
	default:
		return "/screenings"
	}
}

func validateMeasurements(v *ValidationError, weight, height float64, systolic, diastolic int) {
	if weight <= 0 || weight > 500 {
		v.add("weight", "Berat badan tidak valid")
	}
	if height <= 0 || height > 300 {
		v.add("height", "Tinggi badan tidak valid")
	}
	if systolic < 50 || systolic > 300 {
		v.add("systolic", "Tekanan sistolik tidak valid")
	}
	if diastolic < 30 || diastolic > 200 {
		v.add("diastolic", "Tekanan diastolik tidak valid")
	}
}

func predictionRequest(d dto.ScreeningDetail) dto.PredictionRequest {
	return dto.PredictionRequest{
		Age:              d.Umur,
		Gender:           boolInt(d.JenisKelamin == "L"),
		BMI:              d.BMI,
		Systolic:         d.Sistolik,
		Diastolic:        d.Diastolik,
		Glucose:          d.GulaDarah,
		FamilyHistory:    boolInt(d.RiwayatKeluarga),
		PhysicalActivity: boolInt(d.AktivitasFisik),
		Smoking:          boolInt(d.Merokok),
	}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

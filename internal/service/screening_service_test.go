package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gleam/dashboard/internal/domain"
	"github.com/gleam/dashboard/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateBMI(t *testing.T) {
	bmi, err := CalculateBMI(70, 175)
	require.NoError(t, err)
	assert.Equal(t, 22.86, bmi)

	bmi, err = CalculateBMI(45, 160)
	require.NoError(t, err)
	assert.Equal(t, 17.58, bmi)

	_, err = CalculateBMI(0, 170)
	assert.ErrorIs(t, err, ErrInvalidMeasurement)
	_, err = CalculateBMI(60, -1)
	assert.ErrorIs(t, err, ErrInvalidMeasurement)
}

func TestClassifyBMI(t *testing.T) {
	tests := []struct {
		bmi  float64
		want string
	}{
		{17.0, BMIKurus},
		{18.49, BMIKurus},
		{18.5, BMINormal},
		{22.86, BMINormal},
		{25.0, BMIGemuk},
		{26.99, BMIGemuk},
		{27.0, BMIObesitas},
		{35, BMIObesitas},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyBMI(tt.bmi), "bmi %v", tt.bmi)
	}
}

func TestClassifyBloodPressure(t *testing.T) {
	tests := []struct {
		sys, dia int
		want     string
	}{
		{110, 70, BPOptimal},
		{125, 82, BPNormal},
		{119, 84, BPNormal},
		{135, 70, BPNormalTinggi},
		{120, 88, BPNormalTinggi},
		{145, 95, BPHipertensi1},
		{130, 92, BPHipertensi1},
		{165, 100, BPHipertensi2},
		{150, 105, BPHipertensi2},
		{185, 112, BPHipertensi3},
		{120, 115, BPHipertensi3},
		{145, 85, BPSistolik},
		{190, 70, BPSistolik},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyBloodPressure(tt.sys, tt.dia), "%d/%d", tt.sys, tt.dia)
	}
}

func TestRiskLabel(t *testing.T) {
	assert.Equal(t, RiskRendah, RiskLabel(0))
	assert.Equal(t, RiskRendah, RiskLabel(29.99))
	assert.Equal(t, RiskSedang, RiskLabel(30))
	assert.Equal(t, RiskSedang, RiskLabel(69.99))
	assert.Equal(t, RiskTinggi, RiskLabel(70))
}

func predictionServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req dto.PredictionRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestPredictor_TriesEndpointsInOrder(t *testing.T) {
	down := predictionServer(t, http.StatusServiceUnavailable, `{"detail":"loading model"}`)
	up := predictionServer(t, http.StatusOK, `{"probability":0.4567}`)

	p := NewPredictor([]string{down.URL + "/predict", up.URL + "/predict"}, time.Second)
	res, err := p.Predict(context.Background(), dto.PredictionRequest{Age: 50, BMI: 27.1})
	require.NoError(t, err)

	assert.Equal(t, up.URL+"/predict", res.Endpoint)
	assert.Equal(t, 45.67, res.RiskPercentage)
	assert.Equal(t, RiskSedang, res.RiskLabel)
}

func TestPredictor_ResponseShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want float64
	}{
		{"probability", `{"probability":0.12}`, 12},
		{"percentage", `{"risk_percentage":81.5}`, 81.5},
		{"wrapped", `{"data":{"risk_percentage":30}}`, 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := predictionServer(t, http.StatusOK, tt.body)
			res, err := NewPredictor([]string{srv.URL}, time.Second).Predict(context.Background(), dto.PredictionRequest{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.RiskPercentage)
		})
	}
}

func TestPredictor_AllEndpointsFail(t *testing.T) {
	bad := predictionServer(t, http.StatusOK, `{"result":"ok"}`)
	outOfRange := predictionServer(t, http.StatusOK, `{"risk_percentage":140}`)

	_, err := NewPredictor([]string{bad.URL, outOfRange.URL}, time.Second).Predict(context.Background(), dto.PredictionRequest{})
	assert.ErrorIs(t, err, ErrPredictionUnavailable)

	_, err = NewPredictor(nil, time.Second).Predict(context.Background(), dto.PredictionRequest{})
	assert.ErrorIs(t, err, ErrPredictionUnavailable)
}

type stubPredictor struct {
	got dto.PredictionRequest
	err error
}

func (s *stubPredictor) Predict(ctx context.Context, req dto.PredictionRequest) (*dto.PredictionResult, error) {
	s.got = req
	if s.err != nil {
		return nil, s.err
	}
	return &dto.PredictionResult{RiskPercentage: 72.5, RiskLabel: RiskTinggi}, nil
}

func validScreening() dto.ScreeningInput {
	return dto.ScreeningInput{
		Nama:            "Pak Joko",
		Umur:            54,
		JenisKelamin:    "l",
		BeratBadan:      70,
		TinggiBadan:     175,
		Sistolik:        145,
		Diastolik:       95,
		RiwayatKeluarga: true,
	}
}

func TestScreeningService_Submit(t *testing.T) {
	backend := &fakeBackend{handle: func(c backendCall) (interface{}, error) {
		d := c.Body.(dto.ScreeningDetail)
		d.ID = "77"
		return d, nil
	}}
	predictor := &stubPredictor{}
	svc := NewScreeningService(backend, predictor)

	detail, err := svc.Submit(context.Background(), "tok", domain.RoleNakes, validScreening())
	require.NoError(t, err)

	assert.Equal(t, dto.ID("77"), detail.ID)
	assert.Equal(t, 22.86, detail.BMI)
	assert.Equal(t, BMINormal, detail.KategoriBMI)
	assert.Equal(t, BPHipertensi1, detail.KategoriTekanan)
	assert.Equal(t, RiskTinggi, detail.RiskLabel)
	assert.Equal(t, 1, predictor.got.Gender)
	assert.Equal(t, 1, predictor.got.FamilyHistory)
	assert.Equal(t, "/nakes/screenings", backend.Calls()[0].Path)

	_, err = svc.Submit(context.Background(), "tok", domain.RoleUser, validScreening())
	require.NoError(t, err)
	assert.Equal(t, "/screenings", backend.Calls()[1].Path)
}

func TestScreeningService_SubmitValidation(t *testing.T) {
	backend := &fakeBackend{}
	predictor := &stubPredictor{}
	svc := NewScreeningService(backend, predictor)

	in := validScreening()
	in.Nama = " "
	in.JenisKelamin = "X"
	in.TinggiBadan = 0

	_, err := svc.Submit(context.Background(), "tok", domain.RoleNakes, in)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 3)
	assert.Empty(t, backend.Calls())
}

func TestScreeningService_PredictionFailureStoresNothing(t *testing.T) {
	backend := &fakeBackend{}
	svc := NewScreeningService(backend, &stubPredictor{err: ErrPredictionUnavailable})

	_, err := svc.Submit(context.Background(), "tok", domain.RoleUser, validScreening())
	assert.True(t, errors.Is(err, ErrPredictionUnavailable))
	assert.Empty(t, backend.Calls())
}

func TestScreeningService_Calculate(t *testing.T) {
	svc := NewScreeningService(&fakeBackend{}, &stubPredictor{})

	res, err := svc.Calculate(dto.CalculateRequest{BeratBadan: 70, TinggiBadan: 175, Sistolik: 125, Diastolik: 82})
	require.NoError(t, err)
	assert.Equal(t, 22.86, res.BMI)
	assert.Equal(t, BPNormal, res.KategoriTekanan)

	_, err = svc.Calculate(dto.CalculateRequest{})
	assert.ErrorIs(t, err, ErrValidation)
}

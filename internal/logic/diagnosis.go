package logic

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"agroai-backend/internal/db"
)

const (
	minConfidence = 70
	maxConfidence = 99

	SeverityHigh     = "High"
	SeverityModerate = "Moderate"
	SeverityLow      = "Low"
)

// genericDisease used when the crop has no disease table
var genericDisease = db.Disease{
	Name:       "Leaf Spot",
	Symptoms:   []string{"Brown or black spots on leaves", "Yellowing around the spots"},
	Treatment:  "Apply a copper-based fungicide as per label dose",
	Prevention: "Use disease-free seed, rotate crops and avoid overhead watering",
}

var genericTreatments = []string{
	"Remove and destroy affected plant parts",
	"Keep the field clean and improve air circulation between plants",
}

type DiagnosisResult struct {
	Disease    db.Disease
	Confidence int
	Severity   string
	Treatments []string
}

// Diagnoser suggests a diagnosis for a crop photo
type Diagnoser interface {
	Diagnose(ctx context.Context, cropType, imageURL string) (*DiagnosisResult, error)
}

// TableDiagnoser picks a random disease from the crop's reference table.
// The image is not inspected.
type TableDiagnoser struct {
	repo db.Repository

	mu  sync.Mutex
	rng *rand.Rand
}

func NewTableDiagnoser(repo db.Repository) *TableDiagnoser {
	return newTableDiagnoser(repo, time.Now().UnixNano())
}

func newTableDiagnoser(repo db.Repository, seed int64) *TableDiagnoser {
	return &TableDiagnoser{repo: repo, rng: rand.New(rand.NewSource(seed))}
}

func (d *TableDiagnoser) Diagnose(ctx context.Context, cropType, _ string) (*DiagnosisResult, error) {
	crop, err := d.repo.GetCropInfo(ctx, cropType)
	if err != nil {
		return nil, fmt.Errorf("lookup crop %q: %w", cropType, err)
	}
	diseases := []db.Disease{genericDisease}
	if crop != nil && len(crop.Diseases) > 0 {
		diseases = crop.Diseases
	}

	d.mu.Lock()
	disease := diseases[d.rng.Intn(len(diseases))]
	confidence := minConfidence + d.rng.Intn(maxConfidence-minConfidence+1)
	d.mu.Unlock()

	treatments := make([]string, 0, len(genericTreatments)+1)
	treatments = append(treatments, disease.Treatment)
	treatments = append(treatments, genericTreatments...)

	return &DiagnosisResult{
		Disease:    disease,
		Confidence: confidence,
		Severity:   SeverityFor(confidence),
		Treatments: treatments,
	}, nil
}

func SeverityFor(confidence int) string {
	switch {
	case confidence >= 90:
		return SeverityHigh
	case confidence >= 80:
		return SeverityModerate
	default:
		return SeverityLow
	}
}

package predict

import (
	"fmt"

	"github.com/leapstack-labs/incomecast/pkg/core"
)

// DefaultThresholdLabel is the income threshold as shown to users.
const DefaultThresholdLabel = "50 000$"

// User-facing texts.
const (
	ErrorTitle   = "Une erreur est survenue lors de la prédiction"
	ErrorDetails = "Détails de l'erreur : "
	ErrorHint    = "Veuillez vérifier que toutes les données sont correctement renseignées."
	LoadError    = "Erreur lors du chargement : "
)

// Message renders a prediction the way the form reports it, e.g.
// "Prédiction : Revenu > 50 000$ (Probabilité : 73.4%)".
func Message(p *core.Prediction, thresholdLabel string) string {
	if thresholdLabel == "" {
		thresholdLabel = DefaultThresholdLabel
	}
	op := "≤"
	if p.Exceeds {
		op = ">"
	}
	return fmt.Sprintf("Prédiction : Revenu %s %s (Probabilité : %s)", op, thresholdLabel, Percent(p.Probability))
}

// Percent formats a probability with one decimal, e.g. 0.734 -> "73.4%".
func Percent(p float64) string {
	return fmt.Sprintf("%.1f%%", p*100)
}

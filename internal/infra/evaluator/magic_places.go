package evaluator

import "github.com/xavierca1/astroservice/internal/entity"

// MagicPlaces is the placeholder evaluator. It ignores the birth data and
// always returns the same places until the real astro calculation lands.
type MagicPlaces struct{}

func NewMagicPlaces() *MagicPlaces {
	return &MagicPlaces{}
}

func (MagicPlaces) Evaluate(birthDate, birthTime, birthPlace string) entity.EvaluationResult {
	return entity.EvaluationResult{
		Love:   []string{"Berlin – 💕 Venus-Linie: Partnerschaft & Schönheit"},
		Career: []string{"New York – 💼 Sonne-MC: Strahlkraft & Berufung"},
		Health: []string{"Bali – 🧘 Mond-IC: Rückzug & emotionale Tiefe"},
	}
}

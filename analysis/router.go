package analysis

import (
	"fmt"

	"github.com/agrofel/field-assistant/metrics"
)

// Decide routes an analysed utterance. The rules are deterministic:
//
//   - a product question goes to the technical path
//   - a generic term with no species blocks retrieval and asks the grower
//     to name the pest, quoting their own words
//   - a missing pest also asks for clarification
//   - anything else is a recommendation, with a note when the crop was
//     not given
func Decide(a QueryAnalysis) Decision {
	d := decide(a)
	metrics.CountRoute(string(d.Route))
	return d
}

func decide(a QueryAnalysis) Decision {
	if a.MentionsProduct {
		return Decision{Route: RouteTechnical}
	}
	if a.GenericTerm != "" && a.Pest == "" {
		return Decision{
			Route: RouteClarify,
			Message: fmt.Sprintf(
				"Você mencionou %q, mas preciso saber exatamente qual praga, planta daninha ou doença está atacando sua lavoura para indicar o produto certo. Pode me dizer o nome dela?",
				a.GenericTerm),
		}
	}
	if a.Extracted && a.Pest == "" {
		return Decision{
			Route: RouteClarify,
			Message: "Para eu recomendar o produto certo, preciso saber qual praga, " +
				"planta daninha ou doença está na sua lavoura. Qual é o problema que você está enfrentando?",
		}
	}
	d := Decision{Route: RouteRecommend}
	if a.Extracted && a.Crop == "" {
		d.AdvisoryNote = "Para confirmar a dose e o registro, me informe também qual é a cultura."
	}
	return d
}

package usecase

import (
	"fmt"
	"strings"

	"github.com/xavierca1/astroservice/internal/entity"
)

const (
	// PreviewLimit is how many places per category reach the preview.
	PreviewLimit = 3

	// EmptyCategory is rendered for a category without places.
	EmptyCategory = "–"
)

// RenderPreview builds the free-tier text. It never fails: a blank name
// falls back to the default salutation and empty categories render as "–".
func RenderPreview(name string, result entity.EvaluationResult) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = entity.DefaultSalutation
	}
	top := result.Top(PreviewLimit)

	var b strings.Builder
	fmt.Fprintf(&b, "🎁 Danke %s! Hier deine Traumorte 🌍✨\n\n", name)
	fmt.Fprintf(&b, "❤️ Liebe → %s\n", joinCategory(top.Love))
	fmt.Fprintf(&b, "🏆 Karriere → %s\n", joinCategory(top.Career))
	fmt.Fprintf(&b, "💚 Gesundheit → %s\n\n", joinCategory(top.Health))
	b.WriteString("👉 Für deine ausführliche Analyse antworte: PREMIUM")
	return b.String()
}

func joinCategory(items []string) string {
	kept := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			kept = append(kept, it)
		}
	}
	if len(kept) == 0 {
		return EmptyCategory
	}
	return strings.Join(kept, ", ")
}

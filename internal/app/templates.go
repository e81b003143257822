package app

import (
	"fmt"

	"github.com/ayusman/mudra/internal/classifier"
	"github.com/ayusman/mudra/internal/store"
)

// SeedTemplates stores the built-in templates when the store has none and
// returns how many were added.
func SeedTemplates(st *store.Store) (int, error) {
	builtins := classifier.DefaultTemplates()
	records := make([]*store.Template, 0, len(builtins))
	for _, t := range builtins {
		records = append(records, &store.Template{
			ID:        t.ID,
			Name:      t.Name,
			Label:     t.Label,
			Builtin:   true,
			Landmarks: t.Landmarks,
		})
	}
	return st.Templates().Seed(records)
}

// LoadTemplates seeds st if needed and returns its templates ready for a
// TemplateClassifier.
func LoadTemplates(st *store.Store) ([]*classifier.Template, error) {
	if _, err := SeedTemplates(st); err != nil {
		return nil, fmt.Errorf("seed templates: %w", err)
	}

	records, err := st.Templates().List(true)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}

	templates := make([]*classifier.Template, 0, len(records))
	for _, r := range records {
		templates = append(templates, &classifier.Template{
			ID:        r.ID,
			Name:      r.Name,
			Label:     r.Label,
			Landmarks: r.Landmarks,
		})
	}
	return templates, nil
}

package application

import (
	"examphoto/internal/dimensions"
	preferencesDomain "examphoto/internal/domain/preferences"
	"examphoto/internal/presets"
)

type PreferencesHandler struct {
	repo preferencesDomain.Repository
}

func NewPreferencesHandler(repo preferencesDomain.Repository) *PreferencesHandler {
	return &PreferencesHandler{repo: repo}
}

func (h *PreferencesHandler) GetDefaults() dimensions.Spec {
	return h.repo.Get()
}

// SaveDefaults resolves in and stores it. Centimetres use the density of the
// named preset, or DefaultDPI when category is empty.
func (h *PreferencesHandler) SaveDefaults(in dimensions.Input, category, documentType string) (dimensions.Spec, error) {
	dpi := DefaultDPI
	if category != "" || documentType != "" {
		preset, err := presets.Lookup(category, documentType)
		if err != nil {
			return dimensions.Spec{}, err
		}
		dpi = preset.DPI
	}
	return h.repo.SaveFromInput(in, dpi)
}

package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/appcloud-project/decision-service/internal/service"
	"github.com/go-chi/chi/v5"
)

// ListCountryRules returns the full lookup table.
func (h *Handler) ListCountryRules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.countryRules.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]service.CountryRule{"rules": rules})
}

// UpsertCountryRule creates or replaces the rule for a country.
func (h *Handler) UpsertCountryRule(w http.ResponseWriter, r *http.Request) {
	var rule service.CountryRule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		writeError(w, "validation-error", "Validation failed", "malformed country rule payload", http.StatusBadRequest)
		return
	}

	saved, err := h.countryRules.Upsert(r.Context(), rule)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// DeleteCountryRule removes the rule for a country.
func (h *Handler) DeleteCountryRule(w http.ResponseWriter, r *http.Request) {
	country := chi.URLParam(r, "country")

	if err := h.countryRules.Delete(r.Context(), country); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

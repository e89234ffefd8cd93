package handlers

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/appcloud-project/decision-service/internal/decision"
	"github.com/appcloud-project/decision-service/internal/service"
)

// Notification is the batch Eloqua posts to the notify endpoint.
type Notification struct {
	Offset       int                `json:"offset"`
	Limit        int                `json:"limit"`
	TotalResults int                `json:"totalResults"`
	Count        int                `json:"count"`
	HasMore      bool               `json:"hasMore"`
	Items        []decision.Contact `json:"items"`
}

// Handler wires the AppCloud lifecycle endpoints onto the decision
// service.
type Handler struct {
	decisions    *service.DecisionService
	countryRules *service.CountryRuleService
	serviceName  string
	serviceDesc  string
	ruleNames    []string
}

func NewHandler(decisions *service.DecisionService, countryRules *service.CountryRuleService, rules *decision.Registry, serviceName, serviceDesc string) *Handler {
	ruleNames := rules.Names()
	sort.Strings(ruleNames)

	return &Handler{
		decisions:    decisions,
		countryRules: countryRules,
		serviceName:  serviceName,
		serviceDesc:  serviceDesc,
		ruleNames:    ruleNames,
	}
}

func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "path": "health"})
}

// Create handles the instance create callback.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	instanceID := r.URL.Query().Get("instanceId")
	if instanceID == "" {
		writeError(w, "validation-error", "Validation failed", "missing instanceId", http.StatusBadRequest)
		return
	}

	resp, err := h.decisions.CreateInstance(r.Context(), instanceID,
		r.URL.Query().Get("installId"), r.URL.Query().Get("assetName"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ConfigurePage renders the HTML configuration UI Eloqua shows inside
// the canvas.
func (h *Handler) ConfigurePage(w http.ResponseWriter, r *http.Request) {
	instanceID := r.URL.Query().Get("instanceId")
	if instanceID == "" {
		writeError(w, "validation-error", "Validation failed", "missing instanceId", http.StatusBadRequest)
		return
	}

	instance, err := h.decisions.GetInstance(r.Context(), instanceID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.renderConfigurePage(w, instance)
}

// SaveConfiguration persists the settings posted from the configure
// page.
func (h *Handler) SaveConfiguration(w http.ResponseWriter, r *http.Request) {
	instanceID := r.URL.Query().Get("instanceId")
	if instanceID == "" {
		writeError(w, "validation-error", "Validation failed", "missing instanceId", http.StatusBadRequest)
		return
	}

	var settings decision.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeError(w, "validation-error", "Validation failed", "malformed settings payload", http.StatusBadRequest)
		return
	}

	resp, err := h.decisions.SaveConfiguration(r.Context(), instanceID, settings)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Notify evaluates a contact batch and reports the outcomes through
// the Bulk API.
func (h *Handler) Notify(w http.ResponseWriter, r *http.Request) {
	instanceID := r.URL.Query().Get("instanceId")
	executionID := r.URL.Query().Get("executionId")
	if instanceID == "" {
		writeError(w, "validation-error", "Validation failed", "missing instanceId", http.StatusBadRequest)
		return
	}

	var notification Notification
	if err := json.NewDecoder(r.Body).Decode(&notification); err != nil {
		writeError(w, "validation-error", "Validation failed", "malformed notification payload", http.StatusBadRequest)
		return
	}

	summary, err := h.decisions.Notify(r.Context(), instanceID, executionID, notification.Items)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// Delete handles the instance delete callback.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	instanceID := r.URL.Query().Get("instanceId")
	if instanceID == "" {
		writeError(w, "validation-error", "Validation failed", "missing instanceId", http.StatusBadRequest)
		return
	}

	if err := h.decisions.DeleteInstance(r.Context(), instanceID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/appcloud-project/decision-service/internal/decision"
	"github.com/appcloud-project/decision-service/internal/store"
	"github.com/appcloud-project/decision-service/internal/store/model"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// ResultSubmitter reports evaluated decisions back to Eloqua.
type ResultSubmitter interface {
	SubmitResults(ctx context.Context, instanceID, executionID string, results []decision.Result) error
}

// CreateResponse is the body Eloqua expects from the create and
// configure-save callbacks.
type CreateResponse struct {
	RecordDefinition      map[string]string `json:"recordDefinition"`
	RequiresConfiguration bool              `json:"requiresConfiguration"`
}

// Instance is the service-facing view of a stored instance.
type Instance struct {
	ID               uuid.UUID
	InstallID        string
	AssetName        string
	Configured       bool
	RecordDefinition map[string]string
	Settings         decision.Settings
}

// NotifySummary reports how a notification batch was classified.
type NotifySummary struct {
	Total   int `json:"total"`
	Yes     int `json:"yes"`
	No      int `json:"no"`
	Errored int `json:"errored"`
}

// DecisionService handles the AppCloud lifecycle and notification flow
// for decision service instances.
type DecisionService struct {
	store      store.Store
	rules      *decision.Registry
	submitter  ResultSubmitter
	maxRecords int
}

func NewDecisionService(dataStore store.Store, rules *decision.Registry, submitter ResultSubmitter, maxRecords int) *DecisionService {
	return &DecisionService{
		store:      dataStore,
		rules:      rules,
		submitter:  submitter,
		maxRecords: maxRecords,
	}
}

// CreateInstance registers a new service instance for the create
// callback. Returns ErrCodeConflict if the instance id already exists.
func (s *DecisionService) CreateInstance(ctx context.Context, instanceID, installID, assetName string) (*CreateResponse, error) {
	id, err := parseInstanceID(instanceID)
	if err != nil {
		return nil, err
	}

	exists, err := s.store.ServiceInstance().ExistsByID(ctx, id)
	if err != nil {
		return nil, NewInternalError(fmt.Sprintf("failed to check instance existence: %v", err))
	}
	if exists {
		return nil, NewConflictError(fmt.Sprintf("instance '%s' already exists", instanceID))
	}

	settings := decision.Settings{"rule": decision.RuleEmailDomain}
	rule, err := s.rules.Rule(settings)
	if err != nil {
		return nil, NewInternalError(err.Error())
	}
	recordDef := rule.RecordDefinition(settings)

	instance := model.ServiceInstance{
		ID:               id,
		InstallID:        installID,
		AssetName:        assetName,
		Configured:       false,
		RecordDefinition: mustJSON(recordDef),
		Settings:         mustJSON(settings),
	}
	created, err := s.store.ServiceInstance().Create(ctx, instance)
	if err != nil {
		return nil, NewInternalError(fmt.Sprintf("failed to create instance record: %v", err))
	}

	logrus.WithField("instance", created.ID).Info("Created service instance")
	return &CreateResponse{
		RecordDefinition:      recordDef,
		RequiresConfiguration: true,
	}, nil
}

// GetInstance loads an instance for the configure page.
func (s *DecisionService) GetInstance(ctx context.Context, instanceID string) (*Instance, error) {
	id, err := parseInstanceID(instanceID)
	if err != nil {
		return nil, err
	}

	instance, err := s.store.ServiceInstance().Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrInstanceNotFound) {
			return nil, NewNotFoundError(fmt.Sprintf("instance %s not found", instanceID))
		}
		return nil, NewInternalError(fmt.Sprintf("failed to retrieve instance: %v", err))
	}
	return modelToInstance(instance), nil
}

// SaveConfiguration validates and persists the settings posted from
// the configure page, marking the instance configured.
func (s *DecisionService) SaveConfiguration(ctx context.Context, instanceID string, settings decision.Settings) (*CreateResponse, error) {
	id, err := parseInstanceID(instanceID)
	if err != nil {
		return nil, err
	}

	instance, err := s.store.ServiceInstance().Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrInstanceNotFound) {
			return nil, NewNotFoundError(fmt.Sprintf("instance %s not found", instanceID))
		}
		return nil, NewInternalError(fmt.Sprintf("failed to retrieve instance: %v", err))
	}

	rule, err := s.rules.Rule(settings)
	if err != nil {
		return nil, NewValidationError(err.Error())
	}
	if err := rule.Validate(settings); err != nil {
		return nil, NewValidationError(err.Error())
	}
	recordDef := rule.RecordDefinition(settings)

	instance.Configured = true
	instance.Settings = mustJSON(settings)
	instance.RecordDefinition = mustJSON(recordDef)

	if _, err := s.store.ServiceInstance().Update(ctx, *instance); err != nil {
		return nil, NewInternalError(fmt.Sprintf("failed to update instance record: %v", err))
	}

	logrus.WithFields(logrus.Fields{"instance": id, "rule": rule.Name()}).
		Info("Saved instance configuration")
	return &CreateResponse{
		RecordDefinition:      recordDef,
		RequiresConfiguration: false,
	}, nil
}

// Notify evaluates a notification batch and submits the outcomes to
// the Bulk API. The batch is bounded by the configured max records.
func (s *DecisionService) Notify(ctx context.Context, instanceID, executionID string, contacts []decision.Contact) (*NotifySummary, error) {
	if executionID == "" {
		return nil, NewValidationError("missing executionId")
	}
	if len(contacts) > s.maxRecords {
		return nil, NewValidationError(fmt.Sprintf("batch of %d contacts exceeds limit of %d", len(contacts), s.maxRecords))
	}

	instance, err := s.GetInstance(ctx, instanceID)
	if err != nil {
		return nil, err
	}

	rule, err := s.rules.Rule(instance.Settings)
	if err != nil {
		return nil, NewValidationError(err.Error())
	}

	results := decision.EvaluateBatch(ctx, rule, contacts, instance.Settings)
	if err := s.submitter.SubmitResults(ctx, instance.ID.String(), executionID, results); err != nil {
		return nil, NewUpstreamError(fmt.Sprintf("failed to submit decision results: %v", err))
	}

	summary := &NotifySummary{Total: len(results)}
	for _, result := range results {
		switch result.Outcome {
		case decision.OutcomeYes:
			summary.Yes++
		case decision.OutcomeNo:
			summary.No++
		default:
			summary.Errored++
		}
	}

	logrus.WithFields(logrus.Fields{
		"instance":  instance.ID,
		"execution": executionID,
		"yes":       summary.Yes,
		"no":        summary.No,
		"errored":   summary.Errored,
	}).Info("Processed notification batch")
	return summary, nil
}

// DeleteInstance removes an instance for the delete callback.
func (s *DecisionService) DeleteInstance(ctx context.Context, instanceID string) error {
	id, err := parseInstanceID(instanceID)
	if err != nil {
		return err
	}

	if err := s.store.ServiceInstance().Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrInstanceNotFound) {
			return NewNotFoundError(fmt.Sprintf("instance %s not found", instanceID))
		}
		return NewInternalError(fmt.Sprintf("failed to delete instance record: %v", err))
	}

	logrus.WithField("instance", id).Info("Deleted service instance")
	return nil
}

func parseInstanceID(instanceID string) (uuid.UUID, error) {
	id, err := uuid.Parse(instanceID)
	if err != nil {
		return uuid.UUID{}, NewValidationError("invalid instance ID format")
	}
	return id, nil
}

func modelToInstance(m *model.ServiceInstance) *Instance {
	instance := &Instance{
		ID:         m.ID,
		InstallID:  m.InstallID,
		AssetName:  m.AssetName,
		Configured: m.Configured,
		Settings:   decision.Settings{},
	}
	_ = json.Unmarshal(m.Settings, &instance.Settings)
	_ = json.Unmarshal(m.RecordDefinition, &instance.RecordDefinition)
	return instance
}

func mustJSON(value any) datatypes.JSON {
	data, _ := json.Marshal(value)
	return datatypes.JSON(data)
}

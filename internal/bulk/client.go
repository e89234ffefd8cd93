// Package bulk is a thin client for the Eloqua Bulk API 2.0, used to
// report decision outcomes back to the campaign canvas.
package bulk

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/appcloud-project/decision-service/internal/decision"
	"github.com/appcloud-project/decision-service/internal/oauth"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

// ImportDefinition is the body of POST /contacts/imports.
type ImportDefinition struct {
	Name                string            `json:"name"`
	UpdateRule          string            `json:"updateRule"`
	Fields              map[string]string `json:"fields"`
	SyncActions         []SyncAction      `json:"syncActions"`
	IdentifierFieldName string            `json:"identifierFieldName"`
}

// SyncAction routes imported contacts to a decision path of the
// originating service instance execution.
type SyncAction struct {
	Destination string `json:"destination"`
	Action      string `json:"action"`
	Status      string `json:"status"`
}

type importResponse struct {
	URI string `json:"uri"`
}

type syncRequest struct {
	SyncedInstanceURI string `json:"syncedInstanceURI"`
}

// Client drives the three-step Bulk API response sequence: create an
// import definition, upload the contact data, then sync the import.
type Client struct {
	http    *resty.Client
	baseURL string
	signer  *oauth.Signer
}

func NewClient(baseURL string, signer *oauth.Signer) *Client {
	client := resty.New().
		SetTimeout(30 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second)

	return &Client{
		http:    client,
		baseURL: strings.TrimRight(baseURL, "/"),
		signer:  signer,
	}
}

// SubmitResults reports a batch of decision results to Eloqua, one
// import per outcome. Empty outcome groups are skipped.
func (c *Client) SubmitResults(ctx context.Context, instanceID, executionID string, results []decision.Result) error {
	groups := map[decision.Outcome][]decision.Contact{}
	for _, result := range results {
		groups[result.Outcome] = append(groups[result.Outcome], result.Contact)
	}

	for _, outcome := range []decision.Outcome{decision.OutcomeYes, decision.OutcomeNo, decision.OutcomeErrored} {
		contacts := groups[outcome]
		if len(contacts) == 0 {
			continue
		}
		if err := c.submitGroup(ctx, instanceID, executionID, outcome, contacts); err != nil {
			return fmt.Errorf("submit %s results: %w", outcome, err)
		}
		logrus.WithFields(logrus.Fields{
			"instance":  instanceID,
			"execution": executionID,
			"status":    outcome,
			"contacts":  len(contacts),
		}).Info("Submitted decision results")
	}
	return nil
}

func (c *Client) submitGroup(ctx context.Context, instanceID, executionID string, outcome decision.Outcome, contacts []decision.Contact) error {
	const identifierField = "EmailAddress"

	// The Bulk API addresses the instance without dashes.
	destination := fmt.Sprintf("{{DecisionInstance(%s).Execution[%s]}}",
		strings.ReplaceAll(instanceID, "-", ""), executionID)

	importDef := ImportDefinition{
		Name:       fmt.Sprintf("Decision Service Response - %s - %s - %s", instanceID, executionID, outcome),
		UpdateRule: "always",
		Fields: map[string]string{
			identifierField: fmt.Sprintf("{{Contact.Field(C_%s)}}", identifierField),
		},
		SyncActions: []SyncAction{{
			Destination: destination,
			Action:      "setStatus",
			Status:      string(outcome),
		}},
		IdentifierFieldName: identifierField,
	}

	importURI, err := c.CreateImport(ctx, importDef)
	if err != nil {
		return err
	}

	records := make([]map[string]string, 0, len(contacts))
	for _, contact := range contacts {
		records = append(records, map[string]string{
			identifierField: contact.Field("EmailAddress", "emailAddress", "email"),
		})
	}
	if err := c.UploadData(ctx, importURI, records); err != nil {
		return err
	}

	_, err = c.Sync(ctx, importURI)
	return err
}

// CreateImport registers a bulk import definition and returns its URI.
func (c *Client) CreateImport(ctx context.Context, def ImportDefinition) (string, error) {
	url := c.baseURL + "/contacts/imports"

	var result importResponse
	resp, err := c.post(ctx, url, def, &result)
	if err != nil {
		return "", fmt.Errorf("create import definition: %w", err)
	}
	if resp.StatusCode() != http.StatusCreated {
		return "", fmt.Errorf("create import definition: %s: %s", resp.Status(), resp.String())
	}
	return result.URI, nil
}

// UploadData pushes the contact records into a created import.
func (c *Client) UploadData(ctx context.Context, importURI string, records []map[string]string) error {
	url := c.baseURL + importURI + "/data"

	resp, err := c.post(ctx, url, records, nil)
	if err != nil {
		return fmt.Errorf("upload contact data: %w", err)
	}
	if resp.StatusCode() != http.StatusNoContent {
		return fmt.Errorf("upload contact data: %s: %s", resp.Status(), resp.String())
	}
	return nil
}

// Sync triggers processing of an uploaded import and returns the sync
// URI.
func (c *Client) Sync(ctx context.Context, importURI string) (string, error) {
	url := c.baseURL + "/syncs"

	var result importResponse
	resp, err := c.post(ctx, url, syncRequest{SyncedInstanceURI: importURI}, &result)
	if err != nil {
		return "", fmt.Errorf("sync import: %w", err)
	}
	if resp.StatusCode() != http.StatusCreated {
		return "", fmt.Errorf("sync import: %s: %s", resp.Status(), resp.String())
	}
	return result.URI, nil
}

func (c *Client) post(ctx context.Context, url string, body, result any) (*resty.Response, error) {
	header, err := c.signer.AuthorizationHeader(http.MethodPost, url)
	if err != nil {
		return nil, fmt.Errorf("sign request: %w", err)
	}

	req := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", header).
		SetBody(body)
	if result != nil {
		req.SetResult(result)
	}
	return req.Post(url)
}

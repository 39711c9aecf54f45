// Package dto provides Data Transfer Objects for HTTP requests and responses.
package dto

import (
	"strings"

	"photo-curator-service/internal/domain"
)

// DecisionForm is the photo decision posted by the review page.
type DecisionForm struct {
	Action string `form:"action" validate:"required,oneof=yes no previous"`
}

// ToDecision maps the form button onto a session decision.
func (f *DecisionForm) ToDecision() domain.Decision {
	switch f.Action {
	case "yes":
		return domain.Decision{Action: domain.ActionAccept}
	case "no":
		return domain.Decision{Action: domain.ActionReject}
	default:
		return domain.Decision{Action: domain.ActionPrevious}
	}
}

// TermDecisionForm moves between terms.
type TermDecisionForm struct {
	Action string `form:"action" validate:"required,oneof=next-term prev-term"`
}

// ToDecision maps the form button onto a session decision.
func (f *TermDecisionForm) ToDecision() domain.Decision {
	return domain.Decision{Action: domain.Action(f.Action)}
}

// APIDecisionForm switches the provider. Actions look like "use-pexels-api".
type APIDecisionForm struct {
	Action string `form:"action" validate:"required,startswith=use-,endswith=-api"`
}

// ToDecision extracts the provider from the action name.
func (f *APIDecisionForm) ToDecision() (domain.Decision, error) {
	name := strings.TrimSuffix(strings.TrimPrefix(f.Action, "use-"), "-api")

	tag, err := domain.ParseProviderTag(name)
	if err != nil {
		return domain.Decision{}, err
	}

	return domain.Decision{Action: domain.ActionSwitchProvider, Provider: tag}, nil
}

// DeleteImageForm removes one record from the gallery.
type DeleteImageForm struct {
	Term    string `form:"term" validate:"required,max=200"`
	ImageID string `form:"imageID" validate:"required,max=100"`
	APIType string `form:"apiType" validate:"required,provider"`
}

// SetupForm replaces the search term file.
type SetupForm struct {
	Terms string `form:"terms" validate:"max=200000"`
}

// SessionDecisionRequest is the JSON body of POST /api/v1/session/decision.
type SessionDecisionRequest struct {
	Action   string `json:"action" validate:"required,oneof=accept reject next-term prev-term previous switch-provider"`
	Provider string `json:"provider" validate:"omitempty,provider"`
}

// ToDecision converts the request into a session decision.
func (r *SessionDecisionRequest) ToDecision() domain.Decision {
	return domain.Decision{
		Action:   domain.Action(r.Action),
		Provider: domain.ProviderTag(strings.ToLower(r.Provider)),
	}
}

// JumpRequest moves the session to a term. Index is 1-based like /review/:idx.
type JumpRequest struct {
	Index int `json:"index" validate:"required,min=1"`
}

// CatalogQuery filters GET /api/v1/catalog.
type CatalogQuery struct {
	Provider string `query:"provider" validate:"omitempty,provider"`
	Term     string `query:"term" validate:"max=200"`
}

package services

import (
	"gdpr-tracker/internal/models"

	"github.com/gofrs/uuid"
)

// Actor is the authenticated caller a service acts on behalf of.
type Actor struct {
	UserID uuid.UUID
	Role   models.UserRole
}

type TaskAction string

const (
	ActionUpdateStatus TaskAction = "update_status"
	ActionEdit         TaskAction = "edit"
	ActionDelete       TaskAction = "delete"
)

type AuthorizationRequest struct {
	Actor  Actor
	Action TaskAction
	Task   *models.Task
}

type AuthorizationDecision struct {
	Allowed bool
	Reason  string
	Action  TaskAction
	TaskID  uuid.UUID
	UserID  uuid.UUID
}

type AuthorizationService interface {
	IsAuthorized(request AuthorizationRequest) AuthorizationDecision
}

// OwnershipPolicy grants task mutations from the task's ownership fields
// alone. Status changes are open to the creator and the assignee; edits and
// deletion are reserved for the creator. Roles are not consulted.
type OwnershipPolicy struct{}

func NewAuthorizationService() *OwnershipPolicy {
	return &OwnershipPolicy{}
}

func (p *OwnershipPolicy) IsAuthorized(request AuthorizationRequest) AuthorizationDecision {
	decision := AuthorizationDecision{
		Action: request.Action,
		UserID: request.Actor.UserID,
	}
	if request.Task == nil {
		decision.Reason = "no task"
		return decision
	}
	decision.TaskID = request.Task.ID

	isCreator := request.Task.IsCreator(request.Actor.UserID)

	switch request.Action {
	case ActionUpdateStatus:
		if isCreator {
			decision.Allowed, decision.Reason = true, "creator may change status"
		} else if request.Task.IsAssignee(request.Actor.UserID) {
			decision.Allowed, decision.Reason = true, "assignee may change status"
		} else {
			decision.Reason = "neither creator nor assignee"
		}
	case ActionEdit, ActionDelete:
		if isCreator {
			decision.Allowed, decision.Reason = true, "creator owns the task"
		} else {
			decision.Reason = "only the creator may " + string(request.Action)
		}
	default:
		decision.Reason = "unknown action"
	}
	return decision
}

// Package access decides what a user may do with a project and the tasks
// that belong to it.
package access

import "github.com/taskmanager/taskmanager-api/internal/models"

// Relationship is the relationship an operation requires between the acting
// user and a project.
type Relationship int

const (
	// RequireCreator admits only the project creator.
	RequireCreator Relationship = iota
	// RequireMember admits the creator and any collaborator.
	RequireMember
)

// Role is the relationship the acting user actually holds.
type Role string

const (
	RoleNone         Role = "none"
	RoleCreator      Role = "creator"
	RoleCollaborator Role = "collaborator"
)

// Result is the outcome of a capability check.
type Result struct {
	Role    Role
	Allowed bool
}

// RoleOf returns the relationship userID holds on project. Collaborators must
// be loaded for RoleCollaborator to be reported.
func RoleOf(project *models.Project, userID uint64) Role {
	switch {
	case project == nil || userID == 0:
		return RoleNone
	case project.CreatorID == userID:
		return RoleCreator
	case project.HasCollaborator(userID):
		return RoleCollaborator
	default:
		return RoleNone
	}
}

// Check evaluates whether userID holds the required relationship on project.
func Check(project *models.Project, userID uint64, need Relationship) Result {
	role := RoleOf(project, userID)

	var allowed bool
	switch need {
	case RequireCreator:
		allowed = role == RoleCreator
	case RequireMember:
		allowed = role == RoleCreator || role == RoleCollaborator
	}

	return Result{Role: role, Allowed: allowed}
}

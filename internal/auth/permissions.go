package auth

import (
	"errors"
	"fmt"
)

// Role is the role claim carried in a token.
type Role string

const (
	RoleViewer  Role = "viewer"
	RoleAnalyst Role = "analyst"
	RoleAdmin   Role = "admin"
)

// Action is an API operation a role may be granted.
type Action string

const (
	ActionReport        Action = "report"
	ActionSimulate      Action = "simulate"
	ActionExportDataset Action = "export_dataset"
)

var (
	ErrInvalidRole  = errors.New("auth: invalid role")
	ErrActionDenied = errors.New("auth: action denied")
)

// grants lists what each role may do.
var grants = map[Role]map[Action]struct{}{
	RoleViewer:  {ActionReport: {}},
	RoleAnalyst: {ActionReport: {}, ActionSimulate: {}},
	RoleAdmin:   {ActionReport: {}, ActionSimulate: {}, ActionExportDataset: {}},
}

// ParseRole accepts only the known roles.
func ParseRole(value string) (Role, error) {
	role := Role(value)
	if _, ok := grants[role]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, value)
	}
	return role, nil
}

// Can reports whether the role is granted action.
func (r Role) Can(action Action) bool {
	_, ok := grants[r][action]
	return ok
}

// Authorize returns ErrActionDenied when role may not perform action.
func Authorize(role Role, action Action) error {
	if !role.Can(action) {
		return fmt.Errorf("%w: %s may not %s", ErrActionDenied, role, action)
	}
	return nil
}

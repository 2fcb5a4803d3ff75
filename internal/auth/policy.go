package auth

import (
	"net/http"
	"strings"
)

var routeActions = map[string]Action{
	"/api/v1/simulate":             ActionSimulate,
	"/api/v1/simulate/report.pdf":  ActionReport,
	"/api/v1/datasets/export.xlsx": ActionExportDataset,
}

// Policy maps requests to actions and lists the routes that skip auth.
type Policy struct {
	ExemptPaths    map[string]struct{}
	ExemptPrefixes []string
}

// NewDefaultPolicy builds a default policy with exemptions.
func NewDefaultPolicy(exemptPaths []string, exemptPrefixes []string) Policy {
	set := make(map[string]struct{}, len(exemptPaths))
	for _, path := range exemptPaths {
		set[path] = struct{}{}
	}
	return Policy{ExemptPaths: set, ExemptPrefixes: exemptPrefixes}
}

// IsExempt returns true when a request should skip auth.
func (p Policy) IsExempt(r *http.Request) bool {
	if r == nil {
		return true
	}
	if r.Method == http.MethodOptions {
		return true
	}
	if _, ok := p.ExemptPaths[r.URL.Path]; ok {
		return true
	}
	for _, prefix := range p.ExemptPrefixes {
		if strings.HasPrefix(r.URL.Path, prefix) {
			return true
		}
	}
	return false
}

// ActionFor resolves the action a request performs. Paths outside /api/v1/
// need none; unlisted /api/v1/ paths are treated as simulations.
func (p Policy) ActionFor(r *http.Request) (Action, bool) {
	if r == nil {
		return "", false
	}
	path := r.URL.Path
	if action, ok := routeActions[path]; ok {
		return action, true
	}
	if strings.HasPrefix(path, "/api/v1/") {
		return ActionSimulate, true
	}
	return "", false
}

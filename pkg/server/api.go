package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"mercator-hq/rulescript/pkg/cli"
	"mercator-hq/rulescript/pkg/policy/engine"
	"mercator-hq/rulescript/pkg/policy/eval"
	"mercator-hq/rulescript/pkg/policy/ruleset"
)

// Decision API routes.
const (
	RulesPath    = "/v1/rules"
	EvaluatePath = "/v1/evaluate"
)

// maxEvaluateBody bounds an evaluate request body.
const maxEvaluateBody = 1 << 20

// DecisionEngine is the part of the engine the API uses.
type DecisionEngine interface {
	Resolve(ctx context.Context, orgID, branchID, userID string) (*ruleset.EffectiveRuleSet, error)
	Evaluate(ctx context.Context, eff *ruleset.EffectiveRuleSet, rulesetName, ruleName string, facts eval.Facts) (*engine.Decision, error)
}

// EvaluateRequest is the body of POST /v1/evaluate.
type EvaluateRequest struct {
	Org     string          `json:"org"`
	Branch  string          `json:"branch,omitempty"`
	User    string          `json:"user,omitempty"`
	Ruleset string          `json:"ruleset"`
	Rule    string          `json:"rule"`
	Facts   json.RawMessage `json:"facts,omitempty"`
}

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Error       string              `json:"error"`
	Diagnostics []engine.Diagnostic `json:"diagnostics,omitempty"`
}

// API serves read-only rule resolution and evaluation.
type API struct {
	engine DecisionEngine
	logger *slog.Logger
}

// NewAPI creates the decision API.
func NewAPI(eng DecisionEngine, logger *slog.Logger) *API {
	if logger == nil {
		logger = slog.Default()
	}
	return &API{
		engine: eng,
		logger: logger.With("component", "api"),
	}
}

// Register mounts the API routes on mux.
func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET "+RulesPath, a.handleRules)
	mux.HandleFunc("POST "+EvaluatePath, a.handleEvaluate)
}

func (a *API) handleRules(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	eff, err := a.engine.Resolve(r.Context(), q.Get("org"), q.Get("branch"), q.Get("user"))
	if err != nil {
		a.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cli.NewResolveReport(eff))
}

func (a *API) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEvaluateBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error(), nil)
		return
	}
	if req.Ruleset == "" || req.Rule == "" {
		writeError(w, http.StatusBadRequest, "ruleset and rule are required", nil)
		return
	}

	facts := eval.Facts{}
	if len(req.Facts) > 0 {
		// JSON is a subset of YAML, so facts go through the same conversion
		// as a facts file.
		parsed, err := eval.ParseYAML(req.Facts)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error(), nil)
			return
		}
		facts = parsed
	}

	eff, err := a.engine.Resolve(r.Context(), req.Org, req.Branch, req.User)
	if err != nil {
		a.writeEngineError(w, r, err)
		return
	}

	decision, err := a.engine.Evaluate(r.Context(), eff, req.Ruleset, req.Rule, facts)
	if err != nil {
		a.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cli.NewDecisionReport(decision))
}

// writeEngineError maps engine errors to status codes.
func (a *API) writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	var evalErr *engine.EvaluationError
	switch {
	case errors.Is(err, engine.ErrOrgRequired):
		writeError(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, engine.ErrRuleNotFound):
		writeError(w, http.StatusNotFound, err.Error(), nil)
	case errors.As(err, &evalErr):
		writeError(w, http.StatusUnprocessableEntity, err.Error(), engine.Diagnostics(evalErr.Cause))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, err.Error(), nil)
	default:
		a.logger.ErrorContext(r.Context(), "decision request failed",
			"path", r.URL.Path,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "internal error", nil)
	}
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, code int, msg string, diags []engine.Diagnostic) {
	writeJSON(w, code, ErrorResponse{Error: msg, Diagnostics: diags})
}

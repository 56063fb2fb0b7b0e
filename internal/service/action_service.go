package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/boddenberg/recruit-assist-go/internal/domain"
	"github.com/boddenberg/recruit-assist-go/internal/infra/observability"
	"github.com/boddenberg/recruit-assist-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var actionTracer = otel.Tracer("service/action")

// Action names accepted by POST /api/actions.
const (
	ActionSaveInterest     = "save_interest"
	ActionExploreCareer    = "explore_career"
	ActionStartAssessment  = "start_assessment"
	ActionSavePlan         = "save_plan"
	ActionLogProgress      = "log_progress"
	ActionSetSavingsGoal   = "set_savings_goal"
	ActionCreateBudget     = "create_budget"
	ActionCheckEligibility = "check_eligibility"
)

type actionFunc func(ctx context.Context, userID string, data json.RawMessage) (*domain.ActionResult, error)

// ActionService executes the side effects of rich-response buttons and
// awards experience for them.
type ActionService struct {
	store    port.Store
	metrics  *observability.Metrics
	logger   *zap.Logger
	handlers map[string]actionFunc
	now      func() time.Time
}

func NewActionService(store port.Store, metrics *observability.Metrics, logger *zap.Logger) *ActionService {
	s := &ActionService{
		store:   store,
		metrics: metrics,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
	s.handlers = map[string]actionFunc{
		ActionSaveInterest:     s.saveInterest,
		ActionExploreCareer:    s.exploreCareer,
		ActionStartAssessment:  s.startAssessment,
		ActionSavePlan:         s.savePlan,
		ActionLogProgress:      s.logProgress,
		ActionSetSavingsGoal:   s.setSavingsGoal,
		ActionCreateBudget:     s.createBudget,
		ActionCheckEligibility: s.checkEligibility,
	}
	return s
}

// ============================================================
// Execute: POST /api/actions
// ============================================================

func (s *ActionService) Execute(ctx context.Context, userID string, req *domain.ActionRequest) (*domain.ActionResult, error) {
	ctx, span := actionTracer.Start(ctx, "ActionService.Execute")
	defer span.End()
	span.SetAttributes(
		attribute.String("user.id", userID),
		attribute.String("action", req.Action),
	)

	if strings.TrimSpace(req.Action) == "" {
		return nil, &domain.ErrValidation{Field: "action", Message: "Action is required"}
	}
	h, ok := s.handlers[req.Action]
	if !ok {
		return nil, &domain.ErrValidation{Field: "action", Message: "Unknown action"}
	}

	res, err := h(ctx, userID, req.Data)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncrAction(req.Action)
	}
	s.recordActivity(ctx, userID, req)

	s.logger.Info("action executed",
		zap.String("user_id", userID),
		zap.String("action", req.Action),
	)
	return res, nil
}

// recordActivity is best-effort; a failed insert never fails the action.
func (s *ActionService) recordActivity(ctx context.Context, userID string, req *domain.ActionRequest) {
	a := &domain.UserActivity{
		UserID:    userID,
		Type:      "action",
		AgentType: req.AgentType,
		Action:    req.Action,
		CreatedAt: s.now(),
	}
	if err := s.store.CreateActivity(ctx, a); err != nil {
		s.logger.Warn("failed to record action activity",
			zap.String("user_id", userID),
			zap.String("action", req.Action),
			zap.Error(err),
		)
	}
}

// ============================================================
// Handlers
// ============================================================

type saveInterestData struct {
	Interest string `json:"interest"`
	Category string `json:"category"`
}

func (s *ActionService) saveInterest(ctx context.Context, userID string, raw json.RawMessage) (*domain.ActionResult, error) {
	d, err := decodeAction[saveInterestData](raw)
	if err != nil {
		return nil, err
	}
	if err := required("interest", d.Interest); err != nil {
		return nil, err
	}

	p, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if p == nil {
		return nil, &domain.ErrNotFound{Resource: "profile", ID: userID, Message: "Profile not found"}
	}
	if !contains(p.Interests, d.Interest) {
		p.Interests = append(p.Interests, d.Interest)
		if err := s.store.UpdateProfile(ctx, p); err != nil {
			return nil, fmt.Errorf("save interest: %w", err)
		}
	}

	if err := s.award(ctx, userID, domain.CategoryCareer, 10, nil); err != nil {
		return nil, err
	}
	return &domain.ActionResult{Success: true, Message: "Interest saved successfully"}, nil
}

type exploreCareerData struct {
	CareerPath string `json:"careerPath"`
}

func (s *ActionService) exploreCareer(ctx context.Context, userID string, raw json.RawMessage) (*domain.ActionResult, error) {
	d, err := decodeAction[exploreCareerData](raw)
	if err != nil {
		return nil, err
	}
	if err := required("careerPath", d.CareerPath); err != nil {
		return nil, err
	}
	if err := s.award(ctx, userID, domain.CategoryCareer, 5, nil); err != nil {
		return nil, err
	}
	return &domain.ActionResult{
		Success:  true,
		Message:  "Exploring " + d.CareerPath,
		Redirect: "/careers/" + url.PathEscape(d.CareerPath),
	}, nil
}

type startAssessmentData struct {
	Type string `json:"type"`
}

func (s *ActionService) startAssessment(ctx context.Context, userID string, raw json.RawMessage) (*domain.ActionResult, error) {
	d, err := decodeAction[startAssessmentData](raw)
	if err != nil {
		return nil, err
	}
	kind := d.Type
	if kind == "" {
		kind = "career"
	}
	if err := s.award(ctx, userID, domain.CategoryCareer, 15, nil); err != nil {
		return nil, err
	}
	return &domain.ActionResult{
		Success:  true,
		Message:  "Assessment started",
		Redirect: "/assessment/" + url.PathEscape(kind),
	}, nil
}

type savePlanData struct {
	PlanName string         `json:"planName"`
	PlanData map[string]any `json:"planData"`
	Category string         `json:"category"`
}

func (s *ActionService) savePlan(ctx context.Context, userID string, raw json.RawMessage) (*domain.ActionResult, error) {
	d, err := decodeAction[savePlanData](raw)
	if err != nil {
		return nil, err
	}
	if err := required("planName", d.PlanName); err != nil {
		return nil, err
	}
	if d.PlanData == nil {
		return nil, &domain.ErrValidation{Field: "planData", Message: "planData is required"}
	}
	category := domain.Category(d.Category)
	if !category.Valid() {
		return nil, &domain.ErrValidation{Field: "category", Message: "Invalid category"}
	}

	now := s.now()
	appendPlan := func(p *domain.UserProgress) {
		plans, _ := p.Progress["savedPlans"].([]any)
		p.Progress["savedPlans"] = append(plans, map[string]any{
			"name":    d.PlanName,
			"data":    d.PlanData,
			"savedAt": now.Format(time.RFC3339),
		})
	}
	if err := s.award(ctx, userID, category, 20, appendPlan); err != nil {
		return nil, err
	}
	return &domain.ActionResult{Success: true, Message: "Plan saved successfully"}, nil
}

type logProgressData struct {
	Activity  string `json:"activity"`
	Duration  *int   `json:"duration"`
	Intensity string `json:"intensity"`
	Notes     string `json:"notes"`
	Category  string `json:"category"`
}

func (s *ActionService) logProgress(ctx context.Context, userID string, raw json.RawMessage) (*domain.ActionResult, error) {
	d, err := decodeAction[logProgressData](raw)
	if err != nil {
		return nil, err
	}
	if err := required("activity", d.Activity); err != nil {
		return nil, err
	}
	category := domain.Category(d.Category)
	if category != domain.CategoryPhysical && category != domain.CategoryMental {
		return nil, &domain.ErrValidation{Field: "category", Message: "Category must be physical or mental"}
	}

	if err := s.store.CreateTrainingLog(ctx, &domain.TrainingLog{
		UserID:    userID,
		Type:      string(category),
		Activity:  d.Activity,
		Duration:  d.Duration,
		Intensity: d.Intensity,
		Notes:     d.Notes,
		Completed: true,
		CreatedAt: s.now(),
	}); err != nil {
		return nil, fmt.Errorf("create training log: %w", err)
	}

	if err := s.award(ctx, userID, category, 10, nil); err != nil {
		return nil, err
	}
	return &domain.ActionResult{Success: true, Message: "Progress logged successfully"}, nil
}

type savingsGoalData struct {
	GoalName     string   `json:"goalName"`
	TargetAmount *float64 `json:"targetAmount"`
	Deadline     string   `json:"deadline"`
}

func (s *ActionService) setSavingsGoal(ctx context.Context, userID string, raw json.RawMessage) (*domain.ActionResult, error) {
	d, err := decodeAction[savingsGoalData](raw)
	if err != nil {
		return nil, err
	}
	if err := required("goalName", d.GoalName); err != nil {
		return nil, err
	}
	if d.TargetAmount == nil {
		return nil, &domain.ErrValidation{Field: "targetAmount", Message: "targetAmount is required"}
	}

	now := s.now()
	goal := map[string]any{
		"name":         d.GoalName,
		"targetAmount": *d.TargetAmount,
		"createdAt":    now.Format(time.RFC3339),
	}
	if d.Deadline != "" {
		goal["deadline"] = d.Deadline
	}
	if err := s.store.CreateFinancialData(ctx, &domain.FinancialData{
		UserID:    userID,
		Type:      domain.FinancialGoal,
		Data:      goal,
		CreatedAt: now,
	}); err != nil {
		return nil, fmt.Errorf("create savings goal: %w", err)
	}

	if err := s.award(ctx, userID, domain.CategoryFinancial, 15, nil); err != nil {
		return nil, err
	}
	return &domain.ActionResult{Success: true, Message: "Savings goal set successfully"}, nil
}

type budgetData struct {
	BudgetData map[string]any `json:"budgetData"`
}

func (s *ActionService) createBudget(ctx context.Context, userID string, raw json.RawMessage) (*domain.ActionResult, error) {
	d, err := decodeAction[budgetData](raw)
	if err != nil {
		return nil, err
	}
	if d.BudgetData == nil {
		return nil, &domain.ErrValidation{Field: "budgetData", Message: "budgetData is required"}
	}

	if err := s.store.CreateFinancialData(ctx, &domain.FinancialData{
		UserID:    userID,
		Type:      domain.FinancialBudget,
		Data:      d.BudgetData,
		CreatedAt: s.now(),
	}); err != nil {
		return nil, fmt.Errorf("create budget: %w", err)
	}

	if err := s.award(ctx, userID, domain.CategoryFinancial, 20, nil); err != nil {
		return nil, err
	}
	return &domain.ActionResult{Success: true, Message: "Budget created successfully"}, nil
}

type eligibilityData struct {
	Program string `json:"program"`
}

func (s *ActionService) checkEligibility(ctx context.Context, userID string, raw json.RawMessage) (*domain.ActionResult, error) {
	d, err := decodeAction[eligibilityData](raw)
	if err != nil {
		return nil, err
	}
	if err := required("program", d.Program); err != nil {
		return nil, err
	}
	if err := s.award(ctx, userID, domain.CategoryEducation, 10, nil); err != nil {
		return nil, err
	}
	return &domain.ActionResult{
		Success:  true,
		Message:  "Checking eligibility for " + d.Program,
		Redirect: "/eligibility/" + url.PathEscape(d.Program),
	}, nil
}

// ============================================================
// Helpers
// ============================================================

// award adds xp to the (user, category) row, creating it at level 1 when
// missing. mutate may edit the progress document before it is written.
func (s *ActionService) award(ctx context.Context, userID string, c domain.Category, xp int, mutate func(*domain.UserProgress)) error {
	p, err := s.store.GetProgress(ctx, userID, c)
	if err != nil {
		return fmt.Errorf("get progress %s: %w", c, err)
	}
	if p == nil {
		p = &domain.UserProgress{UserID: userID, Category: c, Level: 1, Progress: map[string]any{}}
	}
	p.AddExperience(xp, s.now())
	if mutate != nil {
		mutate(p)
	}
	if err := s.store.UpsertProgress(ctx, p); err != nil {
		return fmt.Errorf("upsert progress %s: %w", c, err)
	}

	s.logger.Debug("experience awarded",
		zap.String("user_id", userID),
		zap.String("category", string(c)),
		zap.Int("xp", xp),
		zap.Int("total", p.Experience),
		zap.Int("level", p.Level),
	)
	return nil
}

// decodeAction unmarshals the action payload. A missing payload decodes as
// an empty object so that required-field checks report the first field.
func decodeAction[T any](raw json.RawMessage) (T, error) {
	var v T
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return v, nil
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return v, &domain.ErrValidation{Field: typeErr.Field, Message: "Invalid value for " + typeErr.Field}
		}
		return v, &domain.ErrValidation{Field: "data", Message: "Invalid action data"}
	}
	return v, nil
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &domain.ErrValidation{Field: field, Message: field + " is required"}
	}
	return nil
}

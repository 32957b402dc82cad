package rules

import (
	"context"
	"encoding/json"
	"strings"

	"authrules/internal/constants"
	pkgerrors "authrules/pkg/errors"
	"authrules/pkg/metrics"
	"authrules/pkg/models"
)

type service struct {
	repo              Repository
	versioningRepo    VersioningRepository
	ruleEventProducer *RuleEventProducer
	auditEnabled      bool
}

type ServiceOption func(*service)

func WithVersioning(versioningRepo VersioningRepository) ServiceOption {
	return func(s *service) {
		s.versioningRepo = versioningRepo
		s.auditEnabled = true
	}
}

func WithRuleEvents(producer *RuleEventProducer) ServiceOption {
	return func(s *service) {
		s.ruleEventProducer = producer
	}
}

func NewService(repo Repository, opts ...ServiceOption) Service {
	s := &service{
		repo:         repo,
		auditEnabled: false,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.versioningRepo != nil {
		s.auditEnabled = true
	}

	return s
}

func (s *service) CreateRule(ctx context.Context, req CreateRuleRequest) (*Rule, error) {
	rule := ruleFromCreateRequest(req)

	if verrs := ValidateRule(rule); len(verrs) > 0 {
		metrics.IncRuleValidationFailure("create")
		return nil, validationError(verrs)
	}

	if err := s.repo.CreateRule(ctx, rule); err != nil {
		metrics.IncRuleOperation("create", "error")
		if pkgerrors.IsConflict(err) {
			return nil, err
		}
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	metrics.IncRuleOperation("create", "success")
	s.createVersionAndAudit(ctx, rule, models.ActionCreate, nil)
	s.publishRuleEvent(ctx, models.ActionCreate, rule)

	return rule, nil
}

func (s *service) ListRules(ctx context.Context) ([]Rule, error) {
	rules, err := s.repo.ListRules(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}
	return rules, nil
}

func (s *service) GetRule(ctx context.Context, id string) (*Rule, error) {
	rule, err := s.repo.GetRule(ctx, id)
	if err != nil {
		return nil, s.handleNotFoundError(err, id)
	}
	if rule == nil {
		return nil, pkgerrors.ErrNotFound.WithDetail("id", id)
	}
	return rule, nil
}

func (s *service) UpdateRule(ctx context.Context, id string, req UpdateRuleRequest) (*Rule, error) {
	rule, err := s.repo.GetRule(ctx, id)
	if err != nil {
		return nil, s.handleNotFoundError(err, id)
	}
	if rule == nil {
		return nil, pkgerrors.ErrNotFound.WithDetail("id", id)
	}

	oldValue, _ := s.ruleToMap(rule)
	applyRuleUpdate(rule, req)

	if verrs := ValidateRule(rule); len(verrs) > 0 {
		metrics.IncRuleValidationFailure("update")
		return nil, validationError(verrs)
	}

	if err := s.repo.UpdateRule(ctx, rule); err != nil {
		metrics.IncRuleOperation("update", "error")
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	metrics.IncRuleOperation("update", "success")
	s.createVersionAndAudit(ctx, rule, models.ActionUpdate, oldValue)
	s.publishRuleEvent(ctx, models.ActionUpdate, rule)

	return rule, nil
}

func (s *service) DeleteRule(ctx context.Context, id string) error {
	rule, err := s.repo.GetRule(ctx, id)
	if err != nil {
		return s.handleNotFoundError(err, id)
	}
	if rule == nil {
		return pkgerrors.ErrNotFound.WithDetail("id", id)
	}

	oldValue, _ := s.ruleToMap(rule)

	if err := s.repo.DeleteRule(ctx, id); err != nil {
		return pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	metrics.IncRuleOperation("delete", "success")

	if s.auditEnabled && s.versioningRepo != nil {
		auditLog := s.buildAuditLog(id, ruleTypeOf(rule), models.ActionDelete, oldValue, nil, getChangedBy(ctx))
		_ = s.versioningRepo.CreateAuditLog(ctx, auditLog)
	}

	s.publishRuleEvent(ctx, models.ActionDelete, rule)
	return nil
}

func (s *service) GetRuleVersions(ctx context.Context, ruleID string) ([]RuleVersion, error) {
	if s.versioningRepo == nil {
		return nil, pkgerrors.ErrInternal.WithDetail("message", "versioning not enabled")
	}
	versions, err := s.versioningRepo.GetVersions(ctx, ruleID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}
	return versions, nil
}

func (s *service) GetAuditLogs(ctx context.Context, ruleID *string, ruleType string, limit int) ([]AuditLog, error) {
	if s.versioningRepo == nil {
		return nil, pkgerrors.ErrInternal.WithDetail("message", "audit logging not enabled")
	}
	if limit <= 0 || limit > constants.MaxLimit {
		limit = constants.DefaultLimit
	}
	logs, err := s.versioningRepo.GetAuditLogs(ctx, ruleID, ruleType, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}
	return logs, nil
}

// ExportWorkflowRules exports every non-turnaround rule wrapped in the
// workflow envelope.
func (s *service) ExportWorkflowRules(ctx context.Context) (AutoWorkflowEnvelope, error) {
	rules, err := s.repo.ListRules(ctx)
	if err != nil {
		return AutoWorkflowEnvelope{}, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	exports := make([]RuleExport, 0, len(rules))
	for i := range rules {
		if rules[i].IsTurnaround() {
			continue
		}
		exports = append(exports, ExportRule(&rules[i]))
	}

	metrics.RulesExportedTotal.WithLabelValues(RuleTypeWorkflow).Add(float64(len(exports)))
	return WrapRules(exports), nil
}

// ImportWorkflowRules unwraps the envelope and runs each rule through the
// normal create path. A rule that fails validation or persistence is
// skipped and recorded; the rest of the batch proceeds. Only a bad
// envelope fails the whole call.
func (s *service) ImportWorkflowRules(ctx context.Context, env AutoWorkflowEnvelope) (*ImportResult, error) {
	exports, err := UnwrapRules(env)
	if err != nil {
		return nil, pkgerrors.ErrValidation.WithCause(err).WithDetail("message", err.Error())
	}

	result := &ImportResult{}
	for i, exp := range exports {
		rule := RuleFromExport(exp)
		s.importOne(ctx, rule, i, exp.RuleDesc, result)
	}

	s.publishImportEvent(ctx, result)
	return result, nil
}

func (s *service) ExportTATRules(ctx context.Context) (TATRuleEnvelope, error) {
	rules, err := s.repo.ListRules(ctx)
	if err != nil {
		return TATRuleEnvelope{}, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	exports := make([]TATRuleExport, 0, len(rules))
	for i := range rules {
		if !rules[i].IsTurnaround() {
			continue
		}
		exports = append(exports, ExportTATRule(&rules[i]))
	}

	metrics.RulesExportedTotal.WithLabelValues(RuleTypeTurnaround).Add(float64(len(exports)))
	return WrapTATRules(exports), nil
}

func (s *service) ImportTATRules(ctx context.Context, env TATRuleEnvelope) (*ImportResult, error) {
	exports, err := UnwrapTATRules(env)
	if err != nil {
		return nil, pkgerrors.ErrValidation.WithCause(err).WithDetail("message", err.Error())
	}

	result := &ImportResult{}
	for i, exp := range exports {
		rule := TATRuleFromExport(exp)
		s.importOne(ctx, rule, i, exp.RuleDesc, result)
	}

	s.publishImportEvent(ctx, result)
	return result, nil
}

func (s *service) importOne(ctx context.Context, rule *Rule, index int, ruleDesc string, result *ImportResult) {
	defer func() {
		if r := recover(); r != nil {
			err := pkgerrors.RecoverPanic(r)
			result.Skipped++
			result.Errors = append(result.Errors, ImportError{
				Index:    index,
				RuleDesc: ruleDesc,
				Message:  err.Error(),
			})
		}
	}()

	if verrs := ValidateRule(rule); len(verrs) > 0 {
		metrics.IncRulesImported(ruleTypeOf(rule), "skipped")
		result.Skipped++
		result.Errors = append(result.Errors, ImportError{
			Index:    index,
			RuleDesc: ruleDesc,
			Errors:   verrs,
		})
		return
	}

	if err := s.repo.CreateRule(ctx, rule); err != nil {
		metrics.IncRulesImported(ruleTypeOf(rule), "skipped")
		result.Skipped++
		result.Errors = append(result.Errors, ImportError{
			Index:    index,
			RuleDesc: ruleDesc,
			Message:  err.Error(),
		})
		return
	}

	s.createVersionAndAudit(ctx, rule, models.ActionImport, nil)
	metrics.IncRulesImported(ruleTypeOf(rule), "imported")
	result.Imported++
}

func (s *service) handleNotFoundError(err error, id string) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "not found") {
		return pkgerrors.ErrNotFound.WithDetail("id", id)
	}
	return pkgerrors.Wrap(err, pkgerrors.ErrInternal)
}

func (s *service) createVersionAndAudit(ctx context.Context, rule *Rule, action string, oldValue map[string]interface{}) {
	if !s.auditEnabled || s.versioningRepo == nil {
		return
	}

	ruleJSON, err := ruleToJSON(rule)
	if err != nil {
		return
	}

	version := s.buildVersion(ctx, rule, ruleJSON)
	if err := s.versioningRepo.CreateVersion(ctx, version); err != nil {
		return
	}

	newValue, err := s.ruleToMap(rule)
	if err != nil {
		return
	}

	auditLog := s.buildAuditLog(rule.ID, ruleTypeOf(rule), action, oldValue, newValue, getChangedBy(ctx))
	_ = s.versioningRepo.CreateAuditLog(ctx, auditLog)
}

func (s *service) buildVersion(ctx context.Context, rule *Rule, ruleJSON string) *RuleVersion {
	version := 1
	if s.versioningRepo != nil {
		if nextVersion, err := s.versioningRepo.GetNextVersion(ctx, rule.ID); err == nil {
			version = nextVersion
		}
	}

	return &RuleVersion{
		RuleID:    rule.ID,
		RuleType:  ruleTypeOf(rule),
		RuleData:  ruleJSON,
		Version:   version,
		ChangedBy: getChangedBy(ctx),
	}
}

func (s *service) buildAuditLog(ruleID, ruleType, action string, oldValue, newValue map[string]interface{}, changedBy string) *AuditLog {
	return &AuditLog{
		RuleID:    &ruleID,
		RuleType:  ruleType,
		Action:    action,
		OldValue:  oldValue,
		NewValue:  newValue,
		ChangedBy: changedBy,
	}
}

func (s *service) ruleToMap(rule *Rule) (map[string]interface{}, error) {
	ruleData, err := json.Marshal(rule)
	if err != nil {
		return nil, err
	}
	var result map[string]interface{}
	if err := json.Unmarshal(ruleData, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) publishRuleEvent(ctx context.Context, action string, rule *Rule) {
	if s.ruleEventProducer != nil {
		_ = s.ruleEventProducer.PublishRuleEvent(ctx, action, ruleTypeOf(rule), rule.ID, getChangedBy(ctx))
	}
}

func (s *service) publishImportEvent(ctx context.Context, result *ImportResult) {
	if s.ruleEventProducer != nil {
		_ = s.ruleEventProducer.PublishImportEvent(ctx, getChangedBy(ctx), result.Imported, result.Skipped)
	}
}

func validationError(verrs []ValidationError) error {
	return pkgerrors.ErrValidation.WithDetail("validation_errors", verrs)
}

func ruleFromCreateRequest(req CreateRuleRequest) *Rule {
	status := req.Status
	if status == "" {
		status = StatusInactive
	}

	return &Rule{
		RuleDesc:              req.RuleDesc,
		Category:              req.Category,
		StandardFieldCriteria: req.StandardFieldCriteria,
		CustomFieldCriteria:   req.CustomFieldCriteria,
		Weight:                req.Weight,
		Status:                status,
		ActivationDate:        req.ActivationDate,
		ExpirationDate:        req.ExpirationDate,
		TriggerEvents:         req.TriggerEvents,
		RequestTypeFilter:     req.RequestTypeFilter,
		FireOnce:              req.FireOnce,
		Actions:               req.Actions,
		Turnaround:            req.Turnaround,
	}
}

func applyRuleUpdate(rule *Rule, req UpdateRuleRequest) {
	if req.RuleDesc != nil {
		rule.RuleDesc = *req.RuleDesc
	}
	if req.Category != nil {
		rule.Category = *req.Category
	}
	if req.StandardFieldCriteria != nil {
		rule.StandardFieldCriteria = *req.StandardFieldCriteria
	}
	if req.CustomFieldCriteria != nil {
		rule.CustomFieldCriteria = *req.CustomFieldCriteria
	}
	if req.Weight != nil {
		rule.Weight = req.Weight
	}
	if req.Status != nil {
		rule.Status = *req.Status
	}
	if req.ActivationDate != nil {
		rule.ActivationDate = *req.ActivationDate
	}
	if req.ExpirationDate != nil {
		rule.ExpirationDate = *req.ExpirationDate
	}
	if req.TriggerEvents != nil {
		rule.TriggerEvents = *req.TriggerEvents
	}
	if req.RequestTypeFilter != nil {
		rule.RequestTypeFilter = *req.RequestTypeFilter
	}
	if req.FireOnce != nil {
		rule.FireOnce = *req.FireOnce
	}
	if req.Actions != nil {
		rule.Actions = req.Actions
	}
	if req.Turnaround != nil {
		rule.Turnaround = req.Turnaround
	}
}

func getChangedBy(ctx context.Context) string {
	if userID := ctx.Value("user_id"); userID != nil {
		if id, ok := userID.(string); ok {
			return id
		}
	}
	return "system"
}

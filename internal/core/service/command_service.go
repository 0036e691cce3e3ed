package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/obrennan/stocktalk/internal/core/domain"
	"github.com/obrennan/stocktalk/internal/metrics"
	"github.com/obrennan/stocktalk/internal/port"
)

var (
	ErrUnauthorized = errors.New("not authorized for this organization")
	ErrRateLimited  = errors.New("rate limit exceeded")
	ErrTierLimited  = errors.New("plan limit reached")
)

// CommandDeps bundles the collaborators the command pipeline consumes.
// Events may be nil, which disables change notifications.
type CommandDeps struct {
	Repo    port.InventoryRepository
	Auth    port.Authorizer
	Limiter port.RateLimiter
	Tiers   port.TierService
	Usage   port.UsageRecorder
	LLM     port.LLMClient
	Events  port.EventPublisher
}

type CommandService struct {
	repo     port.InventoryRepository
	auth     port.Authorizer
	limiter  port.RateLimiter
	tiers    port.TierService
	usage    port.UsageRecorder
	events   port.EventPublisher
	interp   *Interpreter
	resolver *Resolver
	executor *Executor
	policy   Policy
	logger   *zap.Logger
}

func NewCommandService(deps CommandDeps, policy Policy, logger *zap.Logger) *CommandService {
	return &CommandService{
		repo:     deps.Repo,
		auth:     deps.Auth,
		limiter:  deps.Limiter,
		tiers:    deps.Tiers,
		usage:    deps.Usage,
		events:   deps.Events,
		interp:   NewInterpreter(deps.LLM, logger),
		resolver: NewResolver(deps.Repo),
		executor: NewExecutor(deps.Repo, deps.Tiers, policy, logger),
		policy:   policy,
		logger:   logger,
	}
}

type CommandRequest struct {
	OrgID   string
	UserID  string
	Message string
}

// CommandResponse is the conversational reply for one command. Engine-level
// failures (no matches, refused deletes, partial batches) ride here with
// Success false; only auth, rate and tier rejections surface as errors.
type CommandResponse struct {
	IsAction          bool
	NeedsConfirmation bool
	Kind              domain.ActionKind
	Filter            *domain.ItemFilter
	Success           bool
	Affected          int
	Message           string
	RecordErrors      []string
	AffectedNames     []string
	Overflow          int
}

// Execute runs the full pipeline for one message. Rate limiting,
// authorization and the tier check all happen before any interpreter call so
// rejected traffic never spends a completion.
func (s *CommandService) Execute(ctx context.Context, req CommandRequest) (*CommandResponse, error) {
	allowed, err := s.limiter.Allow(ctx, "cmd:"+req.OrgID, s.policy.RateLimit, s.policy.RateWindow)
	if err != nil {
		return nil, fmt.Errorf("rate limit check failed: %w", err)
	}
	if !allowed {
		return nil, ErrRateLimited
	}

	role, member, err := s.auth.Authorize(ctx, req.UserID, req.OrgID)
	if err != nil {
		return nil, fmt.Errorf("authorization failed: %w", err)
	}
	if !member || !role.CanMutate() {
		return nil, ErrUnauthorized
	}

	allowed, limitMsg, err := s.tiers.Allow(ctx, req.OrgID, domain.TierCommands)
	if err != nil {
		return nil, fmt.Errorf("tier check failed: %w", err)
	}
	if !allowed {
		return nil, fmt.Errorf("%w: %s", ErrTierLimited, limitMsg)
	}

	summary, err := s.repo.ListItems(ctx, req.OrgID, domain.ItemFilter{Limit: s.policy.SummaryLimit})
	if err != nil {
		return nil, fmt.Errorf("load inventory summary: %w", err)
	}

	intent, err := s.interp.Interpret(ctx, req.Message, summary)
	if err != nil {
		s.logger.Warn("interpret failed", zap.Error(err), zap.String("org_id", req.OrgID))
		s.recordUsage(ctx, req.OrgID, domain.ActionNone)
		metrics.CommandsTotal.WithLabelValues(string(domain.ActionNone), "parse_failure").Inc()
		return notActionResponse(), nil
	}

	switch EvaluateIntent(intent, s.policy.ConfidenceThreshold) {
	case VerdictNotAction:
		s.recordUsage(ctx, req.OrgID, intent.Kind)
		metrics.CommandsTotal.WithLabelValues(string(intent.Kind), "not_action").Inc()
		return notActionResponse(), nil

	case VerdictNeedsValue:
		s.recordUsage(ctx, req.OrgID, intent.Kind)
		metrics.CommandsTotal.WithLabelValues(string(intent.Kind), "needs_value").Inc()
		filter := intent.Filter
		return &CommandResponse{
			IsAction:          true,
			NeedsConfirmation: true,
			Kind:              intent.Kind,
			Filter:            &filter,
			Message:           needsValueMessage(intent.Kind),
		}, nil
	}

	matched, err := s.resolver.Resolve(ctx, req.OrgID, intent)
	if err != nil {
		return nil, fmt.Errorf("resolve filter: %w", err)
	}

	outcome := s.executor.Execute(ctx, req.OrgID, intent, matched)

	s.recordUsage(ctx, req.OrgID, intent.Kind)
	result := "failed"
	if outcome.Success {
		result = "applied"
	}
	metrics.CommandsTotal.WithLabelValues(string(intent.Kind), result).Inc()

	if outcome.Success && outcome.Affected > 0 {
		s.publishChange(ctx, req.OrgID, outcome)
	}

	return &CommandResponse{
		IsAction:      true,
		Kind:          outcome.Kind,
		Success:       outcome.Success,
		Affected:      outcome.Affected,
		Message:       outcome.Message,
		RecordErrors:  outcome.RecordErrors,
		AffectedNames: outcome.SampleNames,
		Overflow:      outcome.Overflow,
	}, nil
}

func (s *CommandService) recordUsage(ctx context.Context, orgID string, kind domain.ActionKind) {
	if err := s.usage.RecordCommand(ctx, orgID, kind); err != nil {
		s.logger.Warn("record usage", zap.Error(err), zap.String("org_id", orgID))
	}
}

func (s *CommandService) publishChange(ctx context.Context, orgID string, outcome domain.Outcome) {
	if s.events == nil {
		return
	}
	event := domain.ItemChangeEvent{
		OrgID:      orgID,
		Action:     outcome.Kind,
		Affected:   outcome.Affected,
		Names:      outcome.SampleNames,
		OccurredAt: time.Now(),
	}
	if err := s.events.PublishItemChange(ctx, event); err != nil {
		s.logger.Warn("publish item change", zap.Error(err), zap.String("org_id", orgID))
	}
}

func notActionResponse() *CommandResponse {
	return &CommandResponse{
		Message: "That reads like a question rather than an inventory change, so nothing was modified.",
	}
}

func needsValueMessage(kind domain.ActionKind) string {
	switch kind {
	case domain.ActionSetExpiry:
		return "Which expiry date should I set? Give me a date like 2026-09-30."
	case domain.ActionSetQuantity:
		return "What should the new quantity be?"
	case domain.ActionIncreaseQuantity:
		return "How many units should I add?"
	case domain.ActionDecreaseQuantity:
		return "How many units should I remove?"
	case domain.ActionSetThreshold:
		return "What should the reorder threshold be?"
	case domain.ActionEditField:
		return "What should the new value be?"
	}
	return "I need a value to carry that out."
}

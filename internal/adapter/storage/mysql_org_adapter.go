package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/obrennan/stocktalk/internal/core/domain"
)

// planLimit holds the per-plan ceilings; -1 means unlimited.
type planLimit struct {
	CommandsPerDay int
	Items          int
}

var planLimits = map[string]planLimit{
	"free":       {CommandsPerDay: 25, Items: 100},
	"starter":    {CommandsPerDay: 200, Items: 1000},
	"growth":     {CommandsPerDay: 1000, Items: 10000},
	"enterprise": {CommandsPerDay: -1, Items: -1},
}

// MySQLOrgAdapter serves membership lookups, plan limit checks and daily
// usage counters from the same database as the inventory rows.
type MySQLOrgAdapter struct {
	db *sql.DB
}

func NewMySQLOrgAdapter(db *sql.DB) *MySQLOrgAdapter {
	return &MySQLOrgAdapter{db: db}
}

func (m *MySQLOrgAdapter) Authorize(ctx context.Context, userID, orgID string) (domain.Role, bool, error) {
	var role domain.Role
	err := m.db.QueryRowContext(ctx,
		`SELECT role FROM organization_members WHERE user_id = ? AND org_id = ?`,
		userID, orgID,
	).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query membership: %w", err)
	}
	return role, true, nil
}

func (m *MySQLOrgAdapter) Allow(ctx context.Context, orgID string, resource domain.TierResource) (bool, string, error) {
	plan, err := m.orgPlan(ctx, orgID)
	if err != nil {
		return false, "", err
	}
	limits, ok := planLimits[plan]
	if !ok {
		limits = planLimits["free"]
	}

	switch resource {
	case domain.TierCommands:
		if limits.CommandsPerDay < 0 {
			return true, "", nil
		}
		used, err := m.commandsToday(ctx, orgID)
		if err != nil {
			return false, "", err
		}
		if used >= limits.CommandsPerDay {
			msg := fmt.Sprintf("Your %s plan allows %d assistant commands per day. The counter resets at midnight UTC.",
				plan, limits.CommandsPerDay)
			return false, msg, nil
		}
	case domain.TierItems:
		if limits.Items < 0 {
			return true, "", nil
		}
		var count int
		err := m.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM inventory_items WHERE org_id = ?`, orgID,
		).Scan(&count)
		if err != nil {
			return false, "", fmt.Errorf("count items: %w", err)
		}
		if count >= limits.Items {
			msg := fmt.Sprintf("Your %s plan allows up to %d items. Upgrade to add more.", plan, limits.Items)
			return false, msg, nil
		}
	default:
		return false, "", fmt.Errorf("unknown tier resource %q", resource)
	}
	return true, "", nil
}

func (m *MySQLOrgAdapter) RecordCommand(ctx context.Context, orgID string, kind domain.ActionKind) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO command_usage (org_id, day, commands)
		VALUES (?, UTC_DATE(), 1)
		ON DUPLICATE KEY UPDATE commands = commands + 1`,
		orgID,
	)
	if err != nil {
		return fmt.Errorf("record usage: %w", err)
	}
	return nil
}

func (m *MySQLOrgAdapter) orgPlan(ctx context.Context, orgID string) (string, error) {
	var plan string
	err := m.db.QueryRowContext(ctx,
		`SELECT plan FROM organizations WHERE id = ?`, orgID,
	).Scan(&plan)
	if errors.Is(err, sql.ErrNoRows) {
		return "free", nil
	}
	if err != nil {
		return "", fmt.Errorf("query plan: %w", err)
	}
	return plan, nil
}

func (m *MySQLOrgAdapter) commandsToday(ctx context.Context, orgID string) (int, error) {
	var used int
	err := m.db.QueryRowContext(ctx,
		`SELECT commands FROM command_usage WHERE org_id = ? AND day = UTC_DATE()`, orgID,
	).Scan(&used)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("query usage: %w", err)
	}
	return used, nil
}

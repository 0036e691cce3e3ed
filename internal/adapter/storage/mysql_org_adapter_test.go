package storage

import (
	"context"
	"database/sql"
	"testing"

	"github.com/obrennan/stocktalk/internal/core/domain"
)

const testOrgPlanID = "test-org-plans"

func seedOrg(t *testing.T, db *sql.DB, orgID, plan string) {
	t.Helper()
	ctx := context.Background()
	_, err := db.ExecContext(ctx, `
		INSERT INTO organizations (id, name, plan) VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE plan = VALUES(plan)`,
		orgID, "Test Org", plan)
	if err != nil {
		t.Fatalf("seed org failed: %v", err)
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM command_usage WHERE org_id = ?`, orgID); err != nil {
		t.Fatalf("reset usage failed: %v", err)
	}
}

func TestAuthorize_MemberRole(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLOrgAdapter(db)

	// Setup
	seedOrg(t, db, testOrgPlanID, "free")
	_, err := db.ExecContext(ctx, `
		INSERT INTO organization_members (org_id, user_id, role) VALUES (?, 'test-admin', 'admin')
		ON DUPLICATE KEY UPDATE role = 'admin'`, testOrgPlanID)
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	// Test
	role, member, err := adapter.Authorize(ctx, "test-admin", testOrgPlanID)
	if err != nil {
		t.Fatalf("Authorize failed: %v", err)
	}
	if !member {
		t.Fatal("expected membership")
	}
	if role != domain.RoleAdmin {
		t.Errorf("expected admin, got %s", role)
	}

	db.ExecContext(ctx, `DELETE FROM organization_members WHERE org_id = ? AND user_id = 'test-admin'`, testOrgPlanID)
}

func TestAuthorize_NotAMember(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	adapter := NewMySQLOrgAdapter(db)

	role, member, err := adapter.Authorize(context.Background(), "nobody", testOrgPlanID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if member {
		t.Error("expected no membership")
	}
	if role != "" {
		t.Errorf("expected empty role, got %s", role)
	}
}

func TestAllow_CommandsWithinLimit(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLOrgAdapter(db)

	// Setup - fresh day, no usage yet
	seedOrg(t, db, testOrgPlanID, "free")

	ok, msg, err := adapter.Allow(ctx, testOrgPlanID, domain.TierCommands)
	if err != nil {
		t.Fatalf("Allow failed: %v", err)
	}
	if !ok {
		t.Errorf("expected allow, got refusal: %s", msg)
	}
}

func TestAllow_CommandsAtLimit(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLOrgAdapter(db)

	// Setup - burn the whole free allowance
	seedOrg(t, db, testOrgPlanID, "free")
	_, err := db.ExecContext(ctx, `
		INSERT INTO command_usage (org_id, day, commands) VALUES (?, UTC_DATE(), 25)`,
		testOrgPlanID)
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	ok, msg, err := adapter.Allow(ctx, testOrgPlanID, domain.TierCommands)
	if err != nil {
		t.Fatalf("Allow failed: %v", err)
	}
	if ok {
		t.Error("expected refusal at limit")
	}
	if msg == "" {
		t.Error("expected a limit message")
	}

	db.ExecContext(ctx, `DELETE FROM command_usage WHERE org_id = ?`, testOrgPlanID)
}

func TestAllow_EnterpriseUnlimited(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLOrgAdapter(db)

	// Setup - usage far past every bounded plan
	seedOrg(t, db, testOrgPlanID, "enterprise")
	_, err := db.ExecContext(ctx, `
		INSERT INTO command_usage (org_id, day, commands) VALUES (?, UTC_DATE(), 100000)`,
		testOrgPlanID)
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	ok, _, err := adapter.Allow(ctx, testOrgPlanID, domain.TierCommands)
	if err != nil {
		t.Fatalf("Allow failed: %v", err)
	}
	if !ok {
		t.Error("expected enterprise plan to be unlimited")
	}

	db.ExecContext(ctx, `DELETE FROM command_usage WHERE org_id = ?`, testOrgPlanID)
	seedOrg(t, db, testOrgPlanID, "free")
}

func TestAllow_UnknownOrgFallsBackToFree(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	adapter := NewMySQLOrgAdapter(db)

	// An org row that never got created still gets the free ceilings.
	ok, _, err := adapter.Allow(context.Background(), "org-never-created", domain.TierCommands)
	if err != nil {
		t.Fatalf("Allow failed: %v", err)
	}
	if !ok {
		t.Error("expected allow for fresh unknown org")
	}
}

func TestRecordCommand_IncrementsDailyCounter(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLOrgAdapter(db)

	// Setup
	seedOrg(t, db, testOrgPlanID, "free")

	if err := adapter.RecordCommand(ctx, testOrgPlanID, domain.ActionSetQuantity); err != nil {
		t.Fatalf("RecordCommand failed: %v", err)
	}
	if err := adapter.RecordCommand(ctx, testOrgPlanID, domain.ActionDeleteItem); err != nil {
		t.Fatalf("RecordCommand failed: %v", err)
	}

	// Verify
	var commands int
	err := db.QueryRowContext(ctx,
		`SELECT commands FROM command_usage WHERE org_id = ? AND day = UTC_DATE()`,
		testOrgPlanID,
	).Scan(&commands)
	if err != nil {
		t.Fatalf("read usage failed: %v", err)
	}
	if commands != 2 {
		t.Errorf("expected 2 commands recorded, got %d", commands)
	}

	db.ExecContext(ctx, `DELETE FROM command_usage WHERE org_id = ?`, testOrgPlanID)
}

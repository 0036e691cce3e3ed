package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/obrennan/stocktalk/internal/core/domain"
)

var errTestStorage = errors.New("storage unavailable")

// Mock InventoryRepository backed by an in-memory map. Filtering mirrors the
// MySQL adapter's semantics closely enough for resolver and executor tests.
type mockRepo struct {
	mu    sync.Mutex
	items map[string]domain.Item

	listErr   error
	insertErr error
	updateErr error
	deleteErr error
	skusErr   error

	// updateErrAt fails the Nth UpdateItems call (1-based). Zero disables.
	updateErrAt int
	updateCalls int
}

func newMockRepo(items ...domain.Item) *mockRepo {
	m := &mockRepo{items: make(map[string]domain.Item)}
	for _, it := range items {
		m.items[it.ID] = it
	}
	return m
}

func (m *mockRepo) get(id string) domain.Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items[id]
}

func (m *mockRepo) ListItems(ctx context.Context, orgID string, filter domain.ItemFilter) ([]domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []domain.Item
	for _, it := range m.items {
		if it.OrgID != orgID {
			continue
		}
		if filter.Invoice != "" && it.Invoice != filter.Invoice {
			continue
		}
		if filter.SKU != "" && it.SKU != filter.SKU {
			continue
		}
		if filter.NameContains != "" && !strings.Contains(strings.ToLower(it.Name), strings.ToLower(filter.NameContains)) {
			continue
		}
		if filter.Category != "" && it.Category != filter.Category {
			continue
		}
		if filter.Kind != "" && it.Kind != filter.Kind {
			continue
		}
		if filter.OperationalGroup != "" && it.OperationalGroup != filter.OperationalGroup {
			continue
		}
		if filter.MissingSKU && it.SKU != "" {
			continue
		}
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (m *mockRepo) CountItems(ctx context.Context, orgID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, it := range m.items {
		if it.OrgID == orgID {
			n++
		}
	}
	return n, nil
}

func (m *mockRepo) InsertItem(ctx context.Context, item domain.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.insertErr != nil {
		return m.insertErr
	}
	m.items[item.ID] = item
	return nil
}

func (m *mockRepo) UpdateItems(ctx context.Context, orgID string, ids []string, patch domain.ItemPatch) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.updateCalls++
	if m.updateErr != nil {
		return 0, m.updateErr
	}
	if m.updateErrAt > 0 && m.updateCalls == m.updateErrAt {
		return 0, errTestStorage
	}
	n := 0
	for _, id := range ids {
		it, ok := m.items[id]
		if !ok || it.OrgID != orgID {
			continue
		}
		if patch.Name != nil {
			it.Name = *patch.Name
		}
		if patch.SKU != nil {
			it.SKU = *patch.SKU
		}
		if patch.Category != nil {
			it.Category = *patch.Category
		}
		if patch.OperationalGroup != nil {
			it.OperationalGroup = *patch.OperationalGroup
		}
		if patch.Quantity != nil {
			it.Quantity = *patch.Quantity
		}
		if patch.ReorderThreshold != nil {
			it.ReorderThreshold = *patch.ReorderThreshold
		}
		if patch.ExpiresAt != nil {
			t := *patch.ExpiresAt
			it.ExpiresAt = &t
		}
		if patch.OrderStatus != nil {
			it.OrderStatus = *patch.OrderStatus
		}
		if patch.LastRestockAt != nil {
			t := *patch.LastRestockAt
			it.LastRestockAt = &t
		}
		m.items[id] = it
		n++
	}
	return n, nil
}

func (m *mockRepo) DeleteItems(ctx context.Context, orgID string, ids []string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	n := 0
	for _, id := range ids {
		if it, ok := m.items[id]; ok && it.OrgID == orgID {
			delete(m.items, id)
			n++
		}
	}
	return n, nil
}

func (m *mockRepo) ListSKUs(ctx context.Context, orgID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.skusErr != nil {
		return nil, m.skusErr
	}
	var out []string
	for _, it := range m.items {
		if it.OrgID == orgID && it.SKU != "" {
			out = append(out, it.SKU)
		}
	}
	sort.Strings(out)
	return out, nil
}

type mockAuthorizer struct {
	role   domain.Role
	member bool
	err    error
	calls  int
}

func (m *mockAuthorizer) Authorize(ctx context.Context, userID, orgID string) (domain.Role, bool, error) {
	m.calls++
	return m.role, m.member, m.err
}

type mockLimiter struct {
	allow bool
	err   error
	calls int
}

func (m *mockLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	m.calls++
	return m.allow, m.err
}

type mockTiers struct {
	allowCommands bool
	allowItems    bool
	limitMsg      string
	err           error
}

func (m *mockTiers) Allow(ctx context.Context, orgID string, resource domain.TierResource) (bool, string, error) {
	if m.err != nil {
		return false, "", m.err
	}
	switch resource {
	case domain.TierCommands:
		if !m.allowCommands {
			return false, m.limitMsg, nil
		}
	case domain.TierItems:
		if !m.allowItems {
			return false, m.limitMsg, nil
		}
	}
	return true, "", nil
}

func newMockTiers() *mockTiers {
	return &mockTiers{allowCommands: true, allowItems: true, limitMsg: "plan limit reached"}
}

type mockUsage struct {
	mu    sync.Mutex
	byOrg map[string]int
	err   error
}

func newMockUsage() *mockUsage {
	return &mockUsage{byOrg: make(map[string]int)}
}

func (m *mockUsage) RecordCommand(ctx context.Context, orgID string, kind domain.ActionKind) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	m.byOrg[orgID]++
	return nil
}

func (m *mockUsage) count(orgID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byOrg[orgID]
}

type mockLLM struct {
	response string
	err      error

	calls      int
	lastSystem string
	lastUser   string
}

func (m *mockLLM) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	m.calls++
	m.lastSystem = systemPrompt
	m.lastUser = userPrompt
	return m.response, m.err
}

type mockEvents struct {
	mu     sync.Mutex
	events []domain.ItemChangeEvent
	err    error
}

func (m *mockEvents) PublishItemChange(ctx context.Context, event domain.ItemChangeEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, event)
	return nil
}

func (m *mockEvents) published() []domain.ItemChangeEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.ItemChangeEvent(nil), m.events...)
}

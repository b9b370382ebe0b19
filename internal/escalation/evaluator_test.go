// Package escalation - Test evaluator: dedup, threshold, sequential escalation, retry cap.
package escalation

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	escmodels "hsse_platform/internal/api/escalation/models"
	"hsse_platform/internal/common"
	"hsse_platform/internal/notification/channels"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeRuleSource trả danh sách rules cố định hoặc lỗi.
type fakeRuleSource struct {
	rules []escmodels.EscalationRule
	err   error
}

func (f *fakeRuleSource) FindActiveRules(ctx context.Context) ([]escmodels.EscalationRule, error) {
	return f.rules, f.err
}

type fakeActionSource struct {
	actions map[primitive.ObjectID][]escmodels.EscalationAction
}

func (f *fakeActionSource) FindByRule(ctx context.Context, ruleID primitive.ObjectID) ([]escmodels.EscalationAction, error) {
	return f.actions[ruleID], nil
}

type fakeItemSource struct {
	items map[string][]escmodels.ItemSummary
	err   error
}

func (f *fakeItemSource) FindOpenItems(ctx context.Context, category string) ([]escmodels.ItemSummary, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.items[category], nil
}

// fakeLedger là ledger in-memory, enforce unique (dedupKey, attempt) như index thật.
type fakeLedger struct {
	mu   sync.Mutex
	rows []escmodels.EscalationHistory
}

func (f *fakeLedger) HasTerminal(ctx context.Context, dedupKey string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.DedupKey == dedupKey && row.IsTerminal() {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeLedger) CountFailedAttempts(ctx context.Context, dedupKey string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, row := range f.rows {
		if row.DedupKey == dedupKey && row.Outcome == escmodels.OutcomeFailed {
			count++
		}
	}
	return count, nil
}

func (f *fakeLedger) LevelFiredAt(ctx context.Context, ruleID, itemID primitive.ObjectID, level int) (int64, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var earliest int64
	found := false
	for _, row := range f.rows {
		if row.RuleID != ruleID || row.ItemID != itemID || row.Level != level || !row.IsTerminal() {
			continue
		}
		if !found || row.FiredAt < earliest {
			earliest = row.FiredAt
			found = true
		}
	}
	return earliest, found, nil
}

func (f *fakeLedger) RecordAttempt(ctx context.Context, entry escmodels.EscalationHistory) (escmodels.EscalationHistory, error) {
	// Driver thật từ chối ghi trên context đã hủy
	if err := ctx.Err(); err != nil {
		return escmodels.EscalationHistory{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.DedupKey == entry.DedupKey && row.Attempt == entry.Attempt {
			return escmodels.EscalationHistory{}, common.ErrDuplicate
		}
	}
	f.rows = append(f.rows, entry)
	return entry, nil
}

func (f *fakeLedger) countOutcome(outcome string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, row := range f.rows {
		if row.Outcome == outcome {
			count++
		}
	}
	return count
}

// fakeRenderer render thành công trừ các templateKey nằm trong failKeys.
type fakeRenderer struct {
	failKeys map[string]bool
}

func (f *fakeRenderer) Render(ctx context.Context, templateKey, language string, data map[string]interface{}) (*channels.RenderedContent, error) {
	if f.failKeys[templateKey] {
		return nil, common.ErrTemplateNotFound
	}
	return &channels.RenderedContent{Subject: "test", EmailBody: "test body", SmsBody: "test sms"}, nil
}

// fakeSender đếm số lần gửi và trả outcome cấu hình sẵn.
// onSend (nếu có) chạy giữa lúc gửi, trước khi outcome được trả về.
type fakeSender struct {
	channel string
	outcome channels.Outcome
	err     error
	calls   int64
	onSend  func()
}

func (f *fakeSender) ChannelType() string { return f.channel }

func (f *fakeSender) Send(ctx context.Context, dest channels.Destination, content *channels.RenderedContent) (channels.Outcome, error) {
	atomic.AddInt64(&f.calls, 1)
	if f.onSend != nil {
		f.onSend()
	}
	return f.outcome, f.err
}

type fakeLock struct {
	denied bool
}

func (f *fakeLock) TryAcquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return !f.denied, nil
}

func (f *fakeLock) Release(ctx context.Context, key string) error { return nil }

// fakeResolver trả danh sách recipient cố định cho mọi action.
type fakeResolver struct {
	recipients []escmodels.Recipient
}

func (f *fakeResolver) Resolve(ctx context.Context, action *escmodels.EscalationAction, item *escmodels.ItemSummary) ([]escmodels.Recipient, error) {
	return f.recipients, nil
}

// testFixture gom các fake và evaluator đã wire sẵn cho một scenario.
type testFixture struct {
	evaluator *Evaluator
	ledger    *fakeLedger
	sender    *fakeSender
	lock      *fakeLock
}

func newFixture(rules *fakeRuleSource, actions *fakeActionSource, items *fakeItemSource, cfg Config) *testFixture {
	ledger := &fakeLedger{}
	sender := &fakeSender{channel: escmodels.ChannelEmail, outcome: channels.OutcomeAccepted}
	cycleLock := &fakeLock{}
	recipient := escmodels.Recipient{UserID: "user-1", Name: "Test User", Email: "test@example.com"}

	evaluator := NewEvaluator(
		rules,
		actions,
		items,
		ledger,
		&fakeRenderer{failKeys: map[string]bool{"bad_template": true}},
		map[string]channels.Sender{escmodels.ChannelEmail: sender},
		map[string]RecipientResolver{escmodels.StrategyDirectUser: &fakeResolver{recipients: []escmodels.Recipient{recipient}}},
		cycleLock,
		cfg,
	)

	return &testFixture{evaluator: evaluator, ledger: ledger, sender: sender, lock: cycleLock}
}

// buildScenario dựng một rule + action level 1 + item chưa ack.
// thresholdSeconds áp dụng cho cả trigger và khoảng cách giữa các level.
func buildScenario(thresholdSeconds int64, createdAt time.Time, levels int, templateKey string) (*fakeRuleSource, *fakeActionSource, *fakeItemSource) {
	ruleID := primitive.NewObjectID()
	rule := escmodels.EscalationRule{
		ID:               ruleID,
		Name:             "Unacknowledged incident",
		Category:         escmodels.CategoryIncident,
		TriggerKind:      escmodels.TriggerTimeSinceCreatedWithoutAck,
		ThresholdSeconds: thresholdSeconds,
		IsActive:         true,
	}

	var actions []escmodels.EscalationAction
	for level := 1; level <= levels; level++ {
		actions = append(actions, escmodels.EscalationAction{
			ID:                primitive.NewObjectID(),
			RuleID:            ruleID,
			Level:             level,
			RecipientStrategy: escmodels.StrategyDirectUser,
			TargetRef:         "user-1",
			Channels:          []string{escmodels.ChannelEmail},
			TemplateKey:       templateKey,
		})
	}

	item := escmodels.ItemSummary{
		ID:        primitive.NewObjectID(),
		Category:  escmodels.CategoryIncident,
		Code:      "INC-001",
		Title:     "Gas leak",
		Severity:  escmodels.SeverityCritical,
		Status:    "open",
		CreatedAt: createdAt.UnixMilli(),
	}

	return &fakeRuleSource{rules: []escmodels.EscalationRule{rule}},
		&fakeActionSource{actions: map[primitive.ObjectID][]escmodels.EscalationAction{ruleID: actions}},
		&fakeItemSource{items: map[string][]escmodels.ItemSummary{escmodels.CategoryIncident: {item}}}
}

func TestRunEvaluationCycle_ThresholdInclusiveAndIdempotent(t *testing.T) {
	createdAt := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
	rules, actions, items := buildScenario(2*3600, createdAt, 1, "incident_escalation")
	fx := newFixture(rules, actions, items, Config{MaxAttempts: 3})

	// 10:59 - chưa đủ 2 giờ, không có tuple nào khớp
	summary, err := fx.evaluator.RunEvaluationCycle(context.Background(), createdAt.Add(119*time.Minute))
	if err != nil {
		t.Fatalf("Cycle trả về lỗi: %v", err)
	}
	if summary.TuplesMatched != 0 || summary.Sent != 0 {
		t.Errorf("Trước threshold không được bắn: matched=%d sent=%d", summary.TuplesMatched, summary.Sent)
	}

	// 11:00 - đúng threshold (inclusive), phải bắn
	summary, err = fx.evaluator.RunEvaluationCycle(context.Background(), createdAt.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("Cycle trả về lỗi: %v", err)
	}
	if summary.Sent != 1 {
		t.Errorf("Đúng threshold phải bắn 1 notification, sent=%d", summary.Sent)
	}

	// 11:05 - đã terminal, cycle sau phải skip nhờ dedup
	summary, err = fx.evaluator.RunEvaluationCycle(context.Background(), createdAt.Add(2*time.Hour+5*time.Minute))
	if err != nil {
		t.Fatalf("Cycle trả về lỗi: %v", err)
	}
	if summary.Sent != 0 || summary.Skipped != 1 {
		t.Errorf("Tuple đã sent phải skip: sent=%d skipped=%d", summary.Sent, summary.Skipped)
	}
	if calls := atomic.LoadInt64(&fx.sender.calls); calls != 1 {
		t.Errorf("Sender chỉ được gọi đúng 1 lần, nhận được %d", calls)
	}
}

func TestRunEvaluationCycle_SequentialEscalation(t *testing.T) {
	createdAt := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
	rules, actions, items := buildScenario(3600, createdAt, 2, "incident_escalation")
	fx := newFixture(rules, actions, items, Config{MaxAttempts: 3})

	// Cycle 1: chỉ level 1 được bắn, level 2 bị chặn vì level 1 vừa mới terminal
	asOf1 := createdAt.Add(time.Hour)
	summary, err := fx.evaluator.RunEvaluationCycle(context.Background(), asOf1)
	if err != nil {
		t.Fatalf("Cycle 1 trả về lỗi: %v", err)
	}
	if summary.Sent != 1 {
		t.Errorf("Cycle 1 chỉ được bắn level 1: sent=%d", summary.Sent)
	}

	// Cycle 2 sau 30 phút: level 1 terminal nhưng chưa đủ threshold, level 2 vẫn chặn
	summary, err = fx.evaluator.RunEvaluationCycle(context.Background(), asOf1.Add(30*time.Minute))
	if err != nil {
		t.Fatalf("Cycle 2 trả về lỗi: %v", err)
	}
	if summary.Sent != 0 {
		t.Errorf("Level 2 chưa eligible khi level 1 chưa đủ threshold: sent=%d", summary.Sent)
	}

	// Cycle 3 sau đủ 1 giờ kể từ level 1: level 2 được bắn
	summary, err = fx.evaluator.RunEvaluationCycle(context.Background(), asOf1.Add(time.Hour))
	if err != nil {
		t.Fatalf("Cycle 3 trả về lỗi: %v", err)
	}
	if summary.Sent != 1 {
		t.Errorf("Level 2 phải được bắn sau khi level 1 đủ threshold: sent=%d", summary.Sent)
	}
	if total := fx.ledger.countOutcome(escmodels.OutcomeSent); total != 2 {
		t.Errorf("Ledger phải có đúng 2 bản ghi sent (level 1 và 2), nhận được %d", total)
	}
}

func TestRunEvaluationCycle_SeverityFilter(t *testing.T) {
	createdAt := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
	rules, actions, items := buildScenario(3600, createdAt, 1, "incident_escalation")
	rules.rules[0].Severities = []string{escmodels.SeverityLow}

	fx := newFixture(rules, actions, items, Config{})
	summary, err := fx.evaluator.RunEvaluationCycle(context.Background(), createdAt.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("Cycle trả về lỗi: %v", err)
	}
	if summary.TuplesMatched != 0 {
		t.Errorf("Item critical không được khớp rule chỉ áp dụng cho low: matched=%d", summary.TuplesMatched)
	}
}

func TestRunEvaluationCycle_RetryCapThenSuppressed(t *testing.T) {
	createdAt := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
	rules, actions, items := buildScenario(3600, createdAt, 1, "incident_escalation")
	fx := newFixture(rules, actions, items, Config{MaxAttempts: 2})
	fx.sender.outcome = channels.OutcomeTransientFailure
	fx.sender.err = errors.New("smtp timeout")

	asOf := createdAt.Add(time.Hour)
	for cycle := 1; cycle <= 2; cycle++ {
		summary, err := fx.evaluator.RunEvaluationCycle(context.Background(), asOf)
		if err != nil {
			t.Fatalf("Cycle %d trả về lỗi: %v", cycle, err)
		}
		if summary.Failed != 1 {
			t.Errorf("Cycle %d phải ghi 1 failed: failed=%d", cycle, summary.Failed)
		}
		asOf = asOf.Add(5 * time.Minute)
	}

	// Cycle 3: đã đủ maxAttempts failed, ghi suppressed và không gửi nữa
	summary, err := fx.evaluator.RunEvaluationCycle(context.Background(), asOf)
	if err != nil {
		t.Fatalf("Cycle 3 trả về lỗi: %v", err)
	}
	if summary.Suppressed != 1 || summary.Failed != 0 {
		t.Errorf("Vượt retry cap phải suppressed: suppressed=%d failed=%d", summary.Suppressed, summary.Failed)
	}
	if calls := atomic.LoadInt64(&fx.sender.calls); calls != 2 {
		t.Errorf("Sender chỉ được gọi đúng maxAttempts lần: %d", calls)
	}

	// Cycle 4: suppressed là terminal, skip
	summary, err = fx.evaluator.RunEvaluationCycle(context.Background(), asOf.Add(5*time.Minute))
	if err != nil {
		t.Fatalf("Cycle 4 trả về lỗi: %v", err)
	}
	if summary.Skipped != 1 || summary.Suppressed != 0 {
		t.Errorf("Tuple suppressed phải skip vĩnh viễn: skipped=%d suppressed=%d", summary.Skipped, summary.Suppressed)
	}
}

func TestRunEvaluationCycle_PerActionMaxAttemptsOverride(t *testing.T) {
	createdAt := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
	rules, actions, items := buildScenario(3600, createdAt, 1, "incident_escalation")
	for id := range actions.actions {
		actions.actions[id][0].MaxAttempts = 1
	}

	fx := newFixture(rules, actions, items, Config{MaxAttempts: 3})
	fx.sender.outcome = channels.OutcomeTransientFailure

	asOf := createdAt.Add(time.Hour)
	summary, err := fx.evaluator.RunEvaluationCycle(context.Background(), asOf)
	if err != nil {
		t.Fatalf("Cycle 1 trả về lỗi: %v", err)
	}
	if summary.Failed != 1 {
		t.Errorf("Cycle 1 phải ghi 1 failed: failed=%d", summary.Failed)
	}

	// Action override cap = 1: cycle 2 suppressed luôn dù config chung là 3
	summary, err = fx.evaluator.RunEvaluationCycle(context.Background(), asOf.Add(5*time.Minute))
	if err != nil {
		t.Fatalf("Cycle 2 trả về lỗi: %v", err)
	}
	if summary.Suppressed != 1 {
		t.Errorf("Action override cap phải thắng config chung: suppressed=%d", summary.Suppressed)
	}
	if calls := atomic.LoadInt64(&fx.sender.calls); calls != 1 {
		t.Errorf("Sender chỉ được gọi 1 lần với cap override = 1: %d", calls)
	}
}

func TestRunEvaluationCycle_RejectedSuppressedImmediately(t *testing.T) {
	createdAt := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
	rules, actions, items := buildScenario(3600, createdAt, 1, "incident_escalation")
	fx := newFixture(rules, actions, items, Config{MaxAttempts: 3})
	fx.sender.outcome = channels.OutcomeRejected
	fx.sender.err = errors.New("invalid address")

	summary, err := fx.evaluator.RunEvaluationCycle(context.Background(), createdAt.Add(time.Hour))
	if err != nil {
		t.Fatalf("Cycle trả về lỗi: %v", err)
	}
	if summary.Failed != 1 || summary.Suppressed != 1 {
		t.Errorf("Rejected phải ghi failed + suppressed ngay: failed=%d suppressed=%d", summary.Failed, summary.Suppressed)
	}

	// Destination reject vĩnh viễn, không bao giờ retry
	summary, err = fx.evaluator.RunEvaluationCycle(context.Background(), createdAt.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("Cycle sau trả về lỗi: %v", err)
	}
	if summary.Skipped != 1 {
		t.Errorf("Tuple rejected phải skip ở cycle sau: skipped=%d", summary.Skipped)
	}
	if calls := atomic.LoadInt64(&fx.sender.calls); calls != 1 {
		t.Errorf("Sender chỉ được gọi 1 lần với destination rejected: %d", calls)
	}
}

func TestRunEvaluationCycle_RenderFailureDoesNotAbortCycle(t *testing.T) {
	createdAt := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
	goodRules, goodActions, items := buildScenario(3600, createdAt, 1, "incident_escalation")
	badRules, badActions, _ := buildScenario(3600, createdAt, 1, "bad_template")

	rules := &fakeRuleSource{rules: append(goodRules.rules, badRules.rules...)}
	actions := &fakeActionSource{actions: map[primitive.ObjectID][]escmodels.EscalationAction{}}
	for id, list := range goodActions.actions {
		actions.actions[id] = list
	}
	for id, list := range badActions.actions {
		actions.actions[id] = list
	}

	fx := newFixture(rules, actions, items, Config{MaxAttempts: 3})
	summary, err := fx.evaluator.RunEvaluationCycle(context.Background(), createdAt.Add(time.Hour))
	if err != nil {
		t.Fatalf("Lỗi render một tuple không được hủy cả cycle: %v", err)
	}
	if summary.Sent != 1 {
		t.Errorf("Tuple render được vẫn phải gửi: sent=%d", summary.Sent)
	}
	if summary.Failed != 1 {
		t.Errorf("Tuple render lỗi phải ghi failed để retry: failed=%d", summary.Failed)
	}
}

func TestRunEvaluationCycle_SingleFlight(t *testing.T) {
	createdAt := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
	rules, actions, items := buildScenario(3600, createdAt, 1, "incident_escalation")
	fx := newFixture(rules, actions, items, Config{})

	atomic.StoreInt32(&fx.evaluator.running, 1)
	defer atomic.StoreInt32(&fx.evaluator.running, 0)

	_, err := fx.evaluator.RunEvaluationCycle(context.Background(), createdAt.Add(time.Hour))
	if !errors.Is(err, common.ErrCycleInFlight) {
		t.Errorf("Cycle chồng lên nhau phải trả về ErrCycleInFlight, nhận được: %v", err)
	}
}

func TestRunEvaluationCycle_DistributedLockDenied(t *testing.T) {
	createdAt := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
	rules, actions, items := buildScenario(3600, createdAt, 1, "incident_escalation")
	fx := newFixture(rules, actions, items, Config{})
	fx.lock.denied = true

	_, err := fx.evaluator.RunEvaluationCycle(context.Background(), createdAt.Add(time.Hour))
	if !errors.Is(err, common.ErrCycleInFlight) {
		t.Errorf("Instance khác giữ lock phải trả về ErrCycleInFlight, nhận được: %v", err)
	}
}

func TestRunEvaluationCycle_DataSourceFailureAborts(t *testing.T) {
	createdAt := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
	rules, actions, items := buildScenario(3600, createdAt, 1, "incident_escalation")

	fx := newFixture(&fakeRuleSource{err: errors.New("connection refused")}, actions, items, Config{})
	if _, err := fx.evaluator.RunEvaluationCycle(context.Background(), createdAt.Add(time.Hour)); !errors.Is(err, common.ErrDataSourceUnavailable) {
		t.Errorf("Lỗi đọc rules phải trả về ErrDataSourceUnavailable, nhận được: %v", err)
	}

	fx = newFixture(rules, actions, &fakeItemSource{err: errors.New("connection refused")}, Config{})
	if _, err := fx.evaluator.RunEvaluationCycle(context.Background(), createdAt.Add(time.Hour)); !errors.Is(err, common.ErrDataSourceUnavailable) {
		t.Errorf("Lỗi đọc items phải trả về ErrDataSourceUnavailable, nhận được: %v", err)
	}
}

func TestRunEvaluationCycle_ShutdownLetsInFlightDispatchFinish(t *testing.T) {
	createdAt := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
	rules, actions, items := buildScenario(3600, createdAt, 1, "incident_escalation")
	fx := newFixture(rules, actions, items, Config{MaxAttempts: 3})

	// Shutdown đến đúng lúc provider đang nhận message: tuple đang gửi dở
	// phải được ghi ledger đầy đủ, nếu không cycle sau sẽ gửi trùng
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fx.sender.onSend = cancel

	summary, err := fx.evaluator.RunEvaluationCycle(ctx, createdAt.Add(time.Hour))
	if err != nil {
		t.Fatalf("Cycle trả về lỗi: %v", err)
	}
	if summary.Sent != 1 || summary.Errors != 0 {
		t.Errorf("Dispatch đang gửi dở phải chạy nốt khi shutdown: sent=%d errors=%d", summary.Sent, summary.Errors)
	}
	if got := fx.ledger.countOutcome(escmodels.OutcomeSent); got != 1 {
		t.Errorf("Ledger phải có bản ghi sent dù context đã bị hủy, nhận được %d", got)
	}
}

func TestRunEvaluationCycle_DurationMeasuresWallClock(t *testing.T) {
	createdAt := time.Now().Add(-50 * time.Hour)
	rules, actions, items := buildScenario(3600, createdAt, 1, "incident_escalation")
	fx := newFixture(rules, actions, items, Config{MaxAttempts: 3})

	// Trigger thủ công với mốc thời gian 48 giờ trước
	asOf := time.Now().Add(-48 * time.Hour)
	summary, err := fx.evaluator.RunEvaluationCycle(context.Background(), asOf)
	if err != nil {
		t.Fatalf("Cycle trả về lỗi: %v", err)
	}
	if summary.Sent != 1 {
		t.Fatalf("Scenario phải bắn 1 notification: sent=%d", summary.Sent)
	}
	if summary.Duration < 0 || summary.Duration > time.Minute {
		t.Errorf("Duration phải đo wall clock của cycle, không phải khoảng cách tới asOf: %v", summary.Duration)
	}
	if !summary.AsOf.Equal(asOf) {
		t.Errorf("AsOf phải giữ nguyên mốc đánh giá: %v", summary.AsOf)
	}
}

func TestMatchesTrigger_StatusChangeUsesLastStatusChange(t *testing.T) {
	createdAt := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
	rule := &escmodels.EscalationRule{
		TriggerKind:      escmodels.TriggerTimeSinceStatusChange,
		ThresholdSeconds: 3600,
	}
	item := &escmodels.ItemSummary{
		CreatedAt:          createdAt.UnixMilli(),
		LastStatusChangeAt: createdAt.Add(30 * time.Minute).UnixMilli(),
	}

	if matchesTrigger(rule, item, createdAt.Add(time.Hour)) {
		t.Error("Chưa đủ 1 giờ kể từ lần đổi status cuối, không được khớp")
	}
	if !matchesTrigger(rule, item, createdAt.Add(90*time.Minute)) {
		t.Error("Đủ 1 giờ kể từ lần đổi status cuối, phải khớp")
	}

	// Item chưa đổi status lần nào thì tính từ createdAt
	item.LastStatusChangeAt = 0
	if !matchesTrigger(rule, item, createdAt.Add(time.Hour)) {
		t.Error("Item chưa đổi status phải tính threshold từ createdAt")
	}
}

func TestMatchesTrigger_AcknowledgedItemNeverMatches(t *testing.T) {
	createdAt := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
	rule := &escmodels.EscalationRule{
		TriggerKind:      escmodels.TriggerTimeSinceCreatedWithoutAck,
		ThresholdSeconds: 3600,
	}
	item := &escmodels.ItemSummary{
		CreatedAt:    createdAt.UnixMilli(),
		Acknowledged: true,
	}

	if matchesTrigger(rule, item, createdAt.Add(24*time.Hour)) {
		t.Error("Item đã acknowledged không được khớp trigger without-ack")
	}
}

package escalation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	escmodels "hsse_platform/internal/api/escalation/models"
	"hsse_platform/internal/common"
	"hsse_platform/internal/logger"
	"hsse_platform/internal/notification/channels"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LockKey là khóa distributed lock gate toàn bộ chu kỳ đánh giá.
const LockKey = "escalation-cycle"

// RuleSource đọc rules đang bật.
type RuleSource interface {
	FindActiveRules(ctx context.Context) ([]escmodels.EscalationRule, error)
}

// ActionSource đọc actions của một rule theo level tăng dần.
type ActionSource interface {
	FindByRule(ctx context.Context, ruleID primitive.ObjectID) ([]escmodels.EscalationAction, error)
}

// ItemSource đọc candidate open items theo category.
type ItemSource interface {
	FindOpenItems(ctx context.Context, category string) ([]escmodels.ItemSummary, error)
}

// Ledger là nguồn sự thật dedup: mọi quyết định bắn/bỏ qua đều dựa trên ledger.
type Ledger interface {
	HasTerminal(ctx context.Context, dedupKey string) (bool, error)
	CountFailedAttempts(ctx context.Context, dedupKey string) (int64, error)
	LevelFiredAt(ctx context.Context, ruleID, itemID primitive.ObjectID, level int) (int64, bool, error)
	RecordAttempt(ctx context.Context, entry escmodels.EscalationHistory) (escmodels.EscalationHistory, error)
}

// Renderer render template thành nội dung đa channel.
type Renderer interface {
	Render(ctx context.Context, templateKey, language string, data map[string]interface{}) (*channels.RenderedContent, error)
}

// CycleLock gate chu kỳ giữa các instance (distributed mutex).
type CycleLock interface {
	TryAcquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// Config là tham số vận hành của evaluator.
type Config struct {
	MaxAttempts     int           // Số lần retry tối đa trước khi suppressed
	SendTimeout     time.Duration // Timeout mỗi lần gọi channel sender
	Workers         int           // Số goroutine xử lý tuple song song trong một cycle
	DefaultLanguage string        // Ngôn ngữ fallback khi recipient không có language
	LockTTL         time.Duration // TTL của distributed lock
}

// applyDefaults điền giá trị mặc định cho các field chưa cấu hình.
func (c *Config) applyDefaults() {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.SendTimeout <= 0 {
		c.SendTimeout = 10 * time.Second
	}
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.DefaultLanguage == "" {
		c.DefaultLanguage = "en"
	}
	if c.LockTTL <= 0 {
		c.LockTTL = 5 * time.Minute
	}
}

// CycleSummary là kết quả của một chu kỳ đánh giá, dùng cho observability.
type CycleSummary struct {
	RulesEvaluated int           `json:"rulesEvaluated"`
	ItemsScanned   int           `json:"itemsScanned"`
	TuplesMatched  int           `json:"tuplesMatched"`
	Sent           int64         `json:"sent"`
	Skipped        int64         `json:"skipped"`
	Failed         int64         `json:"failed"`
	Suppressed     int64         `json:"suppressed"`
	Errors         int64         `json:"errors"`
	StartedAt      time.Time     `json:"startedAt"`
	AsOf           time.Time     `json:"asOf"`
	Duration       time.Duration `json:"duration"`
}

// ruleItemTask là một cặp (rule, item) đã khớp trigger, chờ xử lý.
type ruleItemTask struct {
	rule *escmodels.EscalationRule
	item *escmodels.ItemSummary
}

// Evaluator quét open items theo rules, resolve recipient, render và dispatch,
// đảm bảo at-most-one notification cho mỗi tuple (rule, item, recipient, channel, level).
type Evaluator struct {
	rules     RuleSource
	actions   ActionSource
	items     ItemSource
	ledger    Ledger
	renderer  Renderer
	senders   map[string]channels.Sender
	resolvers map[string]RecipientResolver
	lock      CycleLock
	cfg       Config

	// running gate single-flight trong process: 0 = idle, 1 = cycle đang chạy
	running int32
}

// NewEvaluator tạo mới Evaluator. cfg thiếu field nào sẽ dùng giá trị mặc định.
func NewEvaluator(
	rules RuleSource,
	actions ActionSource,
	items ItemSource,
	ledger Ledger,
	renderer Renderer,
	senders map[string]channels.Sender,
	resolvers map[string]RecipientResolver,
	lock CycleLock,
	cfg Config,
) *Evaluator {
	cfg.applyDefaults()
	return &Evaluator{
		rules:     rules,
		actions:   actions,
		items:     items,
		ledger:    ledger,
		renderer:  renderer,
		senders:   senders,
		resolvers: resolvers,
		lock:      lock,
		cfg:       cfg,
	}
}

// RunEvaluationCycle chạy một chu kỳ đánh giá tại thời điểm asOf.
// asOf được inject để test deterministic; production truyền time.Now().
//
// Chỉ một cycle được chạy tại một thời điểm: gate in-process bằng atomic CAS,
// gate cross-instance bằng distributed lock. Cycle thứ hai trả về
// common.ErrCycleInFlight và không đánh giá gì (không phải lỗi nghiêm trọng).
//
// Lỗi của từng tuple không bao giờ hủy cả cycle; chỉ lỗi đọc rules/items
// (data source) mới abort, và cycle kế tiếp sẽ retry tự nhiên nhờ dedup key.
func (e *Evaluator) RunEvaluationCycle(ctx context.Context, asOf time.Time) (*CycleSummary, error) {
	log := logger.GetAppLogger()

	// Gate 1: single-flight trong process
	if !atomic.CompareAndSwapInt32(&e.running, 0, 1) {
		return nil, common.ErrCycleInFlight
	}
	defer atomic.StoreInt32(&e.running, 0)

	// Gate 2: distributed lock giữa các instance
	acquired, err := e.lock.TryAcquire(ctx, LockKey, e.cfg.LockTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire cycle lock: %w", err)
	}
	if !acquired {
		log.Info("🚨 [ESCALATION] Instance khác đang giữ lock, bỏ qua cycle")
		return nil, common.ErrCycleInFlight
	}
	defer e.lock.Release(context.WithoutCancel(ctx), LockKey)

	start := time.Now()
	summary := &CycleSummary{StartedAt: start, AsOf: asOf}

	// Load rules - lỗi ở đây abort cả cycle
	rules, err := e.rules.FindActiveRules(ctx)
	if err != nil {
		log.WithError(err).Error("🚨 [ESCALATION] Không đọc được escalation rules, hủy cycle")
		return nil, common.ErrDataSourceUnavailable
	}
	summary.RulesEvaluated = len(rules)

	// Load open items một lần cho mỗi category có rule
	itemsByCategory := make(map[string][]escmodels.ItemSummary)
	for i := range rules {
		category := rules[i].Category
		if _, loaded := itemsByCategory[category]; loaded {
			continue
		}
		items, err := e.items.FindOpenItems(ctx, category)
		if err != nil {
			log.WithError(err).WithFields(logrus.Fields{
				"category": category,
			}).Error("🚨 [ESCALATION] Không đọc được open items, hủy cycle")
			return nil, common.ErrDataSourceUnavailable
		}
		itemsByCategory[category] = items
		summary.ItemsScanned += len(items)
	}

	// Khớp (rule, item): severity filter trước (loại nhanh), rồi trigger predicate
	var tasks []ruleItemTask
	for i := range rules {
		rule := &rules[i]
		items := itemsByCategory[rule.Category]
		for j := range items {
			item := &items[j]
			if !rule.MatchesSeverity(item.Severity) {
				continue
			}
			if !matchesTrigger(rule, item, asOf) {
				continue
			}
			tasks = append(tasks, ruleItemTask{rule: rule, item: item})
		}
	}
	summary.TuplesMatched = len(tasks)

	// Fan out các tuple qua worker pool. Mỗi tuple độc lập với nhau;
	// check-then-write cho cùng dedup key tự serialized vì mỗi tuple chỉ
	// được sinh ra một lần mỗi cycle.
	taskCh := make(chan ruleItemTask)
	var wg sync.WaitGroup
	for w := 0; w < e.cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range taskCh {
				// Không bắt đầu tuple mới khi cancel; tuple đang gửi dở được chạy nốt
				if ctx.Err() != nil {
					continue
				}
				e.safeProcessTuple(ctx, asOf, task, summary)
			}
		}()
	}
	for _, task := range tasks {
		taskCh <- task
	}
	close(taskCh)
	wg.Wait()

	// Duration đo wall clock của cycle, không phụ thuộc asOf (trigger thủ công
	// có thể truyền mốc thời gian quá khứ)
	summary.Duration = time.Since(start)

	log.WithFields(logrus.Fields{
		"rules":      summary.RulesEvaluated,
		"items":      summary.ItemsScanned,
		"matched":    summary.TuplesMatched,
		"sent":       summary.Sent,
		"skipped":    summary.Skipped,
		"failed":     summary.Failed,
		"suppressed": summary.Suppressed,
		"errors":     summary.Errors,
	}).Info("🚨 [ESCALATION] Hoàn thành chu kỳ đánh giá")

	return summary, nil
}

// matchesTrigger đánh giá trigger predicate của rule trên item tại thời điểm asOf.
// Biên threshold là inclusive: elapsed >= threshold thì khớp.
func matchesTrigger(rule *escmodels.EscalationRule, item *escmodels.ItemSummary, asOf time.Time) bool {
	thresholdMs := rule.ThresholdSeconds * 1000
	nowMs := asOf.UnixMilli()

	switch rule.TriggerKind {
	case escmodels.TriggerTimeSinceCreatedWithoutAck:
		return !item.Acknowledged && nowMs-item.CreatedAt >= thresholdMs
	case escmodels.TriggerTimeSinceStatusChange:
		last := item.LastStatusChangeAt
		if last == 0 {
			last = item.CreatedAt
		}
		return nowMs-last >= thresholdMs
	case escmodels.TriggerSeverityThresholdUnaddr:
		// Severity filter đã áp dụng trước khi gọi hàm này
		return !item.Acknowledged && nowMs-item.CreatedAt >= thresholdMs
	default:
		logger.GetAppLogger().WithFields(logrus.Fields{
			"ruleId":      rule.ID.Hex(),
			"triggerKind": rule.TriggerKind,
		}).Warn("🚨 [ESCALATION] Trigger kind không được hỗ trợ")
		return false
	}
}

// safeProcessTuple bọc processTuple với recover: một tuple panic không được
// kéo sập cả cycle cho các tuple khác.
func (e *Evaluator) safeProcessTuple(ctx context.Context, asOf time.Time, task ruleItemTask, summary *CycleSummary) {
	defer func() {
		if r := recover(); r != nil {
			atomic.AddInt64(&summary.Errors, 1)
			logger.GetAppLogger().WithFields(logrus.Fields{
				"ruleId": task.rule.ID.Hex(),
				"itemId": task.item.ID.Hex(),
				"panic":  fmt.Sprintf("%v", r),
			}).Error("🚨 [ESCALATION] Panic khi xử lý tuple, bỏ qua")
		}
	}()

	if err := e.processTuple(ctx, asOf, task.rule, task.item, summary); err != nil {
		atomic.AddInt64(&summary.Errors, 1)
		logger.GetAppLogger().WithError(err).WithFields(logrus.Fields{
			"ruleId": task.rule.ID.Hex(),
			"itemId": task.item.ID.Hex(),
		}).Error("🚨 [ESCALATION] Lỗi khi xử lý tuple, bỏ qua")
	}
}

// processTuple xử lý một cặp (rule, item) đã khớp: đi qua các action theo level
// tăng dần, enforce sequential escalation, resolve recipient và dispatch.
func (e *Evaluator) processTuple(ctx context.Context, asOf time.Time, rule *escmodels.EscalationRule, item *escmodels.ItemSummary, summary *CycleSummary) error {
	log := logger.GetAppLogger()

	actions, err := e.actions.FindByRule(ctx, rule.ID)
	if err != nil {
		return fmt.Errorf("không đọc được actions của rule %s: %w", rule.ID.Hex(), err)
	}

	thresholdMs := rule.ThresholdSeconds * 1000
	for i := range actions {
		action := &actions[i]

		// Sequential escalation: level N chỉ eligible khi level N-1 đã terminal
		// (sent hoặc suppressed) cách đây ít nhất threshold. Level sau đó càng
		// không eligible nên dừng luôn.
		if action.Level > 1 {
			firedAt, fired, err := e.ledger.LevelFiredAt(ctx, rule.ID, item.ID, action.Level-1)
			if err != nil {
				return fmt.Errorf("không đọc được ledger cho level %d: %w", action.Level-1, err)
			}
			if !fired || asOf.UnixMilli()-firedAt < thresholdMs {
				break
			}
		}

		resolver, ok := e.resolvers[action.RecipientStrategy]
		if !ok {
			atomic.AddInt64(&summary.Errors, 1)
			log.WithFields(logrus.Fields{
				"actionId": action.ID.Hex(),
				"strategy": action.RecipientStrategy,
			}).Error("🚨 [ESCALATION] Không có resolver cho recipient strategy")
			continue
		}

		recipients, err := resolver.Resolve(ctx, action, item)
		if err != nil {
			atomic.AddInt64(&summary.Errors, 1)
			log.WithError(err).WithFields(logrus.Fields{
				"ruleId":   rule.ID.Hex(),
				"itemId":   item.ID.Hex(),
				"actionId": action.ID.Hex(),
			}).Error("🚨 [ESCALATION] Lỗi resolve recipient, bỏ qua action")
			continue
		}

		for r := range recipients {
			for _, channel := range action.Channels {
				e.dispatch(ctx, asOf, rule, action, item, &recipients[r], channel, summary)
			}
		}
	}

	return nil
}

// dispatch xử lý một tuple đầy đủ (rule, item, recipient, channel, level):
// check dedup, enforce retry cap, render, gửi và ghi kết quả vào ledger.
// Ghi sau khi gửi (write-after-send): crash trước khi gửi không để lại bản ghi
// Sent giả, cycle sau retry tự nhiên nhờ dedup key chưa terminal.
func (e *Evaluator) dispatch(ctx context.Context, asOf time.Time, rule *escmodels.EscalationRule, action *escmodels.EscalationAction, item *escmodels.ItemSummary, recipient *escmodels.Recipient, channel string, summary *CycleSummary) {
	// Tuple đã vào dispatch thì chạy nốt kể cả khi shutdown: hủy giữa send và
	// ghi ledger để lại provider đã nhận message mà không có bản ghi sent,
	// cycle sau sẽ gửi trùng. Worker loop đã chặn tuple mới khi cancel.
	ctx = context.WithoutCancel(ctx)
	log := logger.GetAppLogger()
	dedupKey := DedupKey(rule.ID.Hex(), item.ID.Hex(), recipient.UserID, channel, action.Level)

	logFields := logrus.Fields{
		"ruleId":      rule.ID.Hex(),
		"itemId":      item.ID.Hex(),
		"recipientId": recipient.UserID,
		"channel":     channel,
		"level":       action.Level,
		"dedupKey":    dedupKey,
	}

	// Tuple đã terminal (sent/suppressed) thì không bao giờ bắn lại
	terminal, err := e.ledger.HasTerminal(ctx, dedupKey)
	if err != nil {
		atomic.AddInt64(&summary.Errors, 1)
		log.WithError(err).WithFields(logFields).Error("🚨 [ESCALATION] Lỗi check dedup trong ledger")
		return
	}
	if terminal {
		atomic.AddInt64(&summary.Skipped, 1)
		return
	}

	failedCount, err := e.ledger.CountFailedAttempts(ctx, dedupKey)
	if err != nil {
		atomic.AddInt64(&summary.Errors, 1)
		log.WithError(err).WithFields(logFields).Error("🚨 [ESCALATION] Lỗi đếm failed attempts")
		return
	}
	attempt := int(failedCount) + 1

	// Retry cap: đủ maxAttempts lần failed thì ghi suppressed terminal,
	// không gửi thêm, chờ can thiệp thủ công. Action có thể override cap riêng.
	maxAttempts := e.cfg.MaxAttempts
	if action.MaxAttempts > 0 {
		maxAttempts = action.MaxAttempts
	}
	if int(failedCount) >= maxAttempts {
		if e.record(ctx, asOf, rule, action, item, recipient, channel, dedupKey, attempt, escmodels.OutcomeSuppressed, "Đã vượt quá số lần retry tối đa", summary) {
			atomic.AddInt64(&summary.Suppressed, 1)
			log.WithFields(logFields).Warn("🚨 [ESCALATION] Tuple vượt retry cap, suppressed và cần can thiệp thủ công")
		}
		return
	}

	// Render nội dung - fail closed, ghi failed và retry cycle sau
	language := recipient.Language
	if language == "" {
		language = e.cfg.DefaultLanguage
	}
	rendered, err := e.renderer.Render(ctx, action.TemplateKey, language, e.templateData(asOf, rule, item, recipient, action))
	if err != nil {
		if e.record(ctx, asOf, rule, action, item, recipient, channel, dedupKey, attempt, escmodels.OutcomeFailed, fmt.Sprintf("Lỗi render template: %v", err), summary) {
			atomic.AddInt64(&summary.Failed, 1)
		}
		log.WithError(err).WithFields(logFields).Error("🚨 [ESCALATION] Lỗi render template")
		return
	}

	sender, ok := e.senders[channel]
	if !ok {
		if e.record(ctx, asOf, rule, action, item, recipient, channel, dedupKey, attempt, escmodels.OutcomeFailed, fmt.Sprintf("Không có sender cho channel %s", channel), summary) {
			atomic.AddInt64(&summary.Failed, 1)
		}
		log.WithFields(logFields).Error("🚨 [ESCALATION] Không có sender cho channel")
		return
	}

	// Gửi với timeout riêng: provider treo không được stall cả cycle
	sendCtx, cancel := context.WithTimeout(ctx, e.cfg.SendTimeout)
	outcome, sendErr := sender.Send(sendCtx, channels.Destination{
		UserID:       recipient.UserID,
		Name:         recipient.Name,
		Email:        recipient.Email,
		Cc:           action.CcEmails,
		Phone:        recipient.Phone,
		DeviceTokens: recipient.DeviceTokens,
	}, rendered)
	cancel()
	if errors.Is(sendErr, context.DeadlineExceeded) {
		outcome = channels.OutcomeTransientFailure
	}

	switch outcome {
	case channels.OutcomeAccepted:
		if e.record(ctx, asOf, rule, action, item, recipient, channel, dedupKey, attempt, escmodels.OutcomeSent, "", summary) {
			atomic.AddInt64(&summary.Sent, 1)
			log.WithFields(logFields).Info("🚨 [ESCALATION] Đã gửi escalation notification")
		}

	case channels.OutcomeRejected:
		// Rejected là terminal: ghi failed cho lần thử này và suppressed ngay,
		// retry không có ích với destination bị reject vĩnh viễn
		reason := "Destination bị reject vĩnh viễn"
		if sendErr != nil {
			reason = fmt.Sprintf("Destination bị reject vĩnh viễn: %v", sendErr)
		}
		if e.record(ctx, asOf, rule, action, item, recipient, channel, dedupKey, attempt, escmodels.OutcomeFailed, reason, summary) {
			atomic.AddInt64(&summary.Failed, 1)
		}
		if e.record(ctx, asOf, rule, action, item, recipient, channel, dedupKey, attempt+1, escmodels.OutcomeSuppressed, reason, summary) {
			atomic.AddInt64(&summary.Suppressed, 1)
		}
		log.WithError(sendErr).WithFields(logFields).Warn("🚨 [ESCALATION] Sender reject vĩnh viễn, suppressed")

	default: // TransientFailure
		reason := "Lỗi tạm thời khi gửi"
		if sendErr != nil {
			reason = fmt.Sprintf("Lỗi tạm thời khi gửi: %v", sendErr)
		}
		if e.record(ctx, asOf, rule, action, item, recipient, channel, dedupKey, attempt, escmodels.OutcomeFailed, reason, summary) {
			atomic.AddInt64(&summary.Failed, 1)
		}
		log.WithError(sendErr).WithFields(logFields).Warn("🚨 [ESCALATION] Gửi thất bại tạm thời, sẽ retry cycle sau")
	}
}

// record ghi một attempt vào ledger. Trả về false nếu bản ghi đã tồn tại
// (instance khác thắng race), khi đó tuple tính là skipped thay vì outcome mới.
func (e *Evaluator) record(ctx context.Context, asOf time.Time, rule *escmodels.EscalationRule, action *escmodels.EscalationAction, item *escmodels.ItemSummary, recipient *escmodels.Recipient, channel, dedupKey string, attempt int, outcome, reason string, summary *CycleSummary) bool {
	entry := escmodels.EscalationHistory{
		RuleID:        rule.ID,
		ActionID:      action.ID,
		ItemCategory:  item.Category,
		ItemID:        item.ID,
		RecipientID:   recipient.UserID,
		Channel:       channel,
		Level:         action.Level,
		DedupKey:      dedupKey,
		Attempt:       attempt,
		Outcome:       outcome,
		FailureReason: reason,
		FiredAt:       asOf.UnixMilli(),
	}

	_, err := e.ledger.RecordAttempt(ctx, entry)
	if err != nil {
		if errors.Is(err, common.ErrDuplicate) {
			// Unique index (dedupKey, attempt) chặn double-firing: instance khác đã ghi
			atomic.AddInt64(&summary.Skipped, 1)
			return false
		}
		atomic.AddInt64(&summary.Errors, 1)
		logger.GetAppLogger().WithError(err).WithFields(logrus.Fields{
			"dedupKey": dedupKey,
			"attempt":  attempt,
			"outcome":  outcome,
		}).Error("🚨 [ESCALATION] Lỗi ghi ledger")
		return false
	}
	return true
}

// templateData xây data bag cho template resolver từ rule, item và recipient.
func (e *Evaluator) templateData(asOf time.Time, rule *escmodels.EscalationRule, item *escmodels.ItemSummary, recipient *escmodels.Recipient, action *escmodels.EscalationAction) map[string]interface{} {
	elapsedHours := (asOf.UnixMilli() - item.CreatedAt) / (1000 * 3600)
	return map[string]interface{}{
		"title":         item.Title,
		"code":          item.Code,
		"category":      item.Category,
		"severity":      item.Severity,
		"status":        item.Status,
		"location":      item.Location,
		"level":         action.Level,
		"ruleName":      rule.Name,
		"recipientName": recipient.Name,
		"elapsedHours":  elapsedHours,
	}
}

// Package worker chứa các background worker chạy định kỳ.
package worker

import (
	"context"
	"errors"
	"time"

	"hsse_platform/internal/common"
	"hsse_platform/internal/escalation"
	"hsse_platform/internal/logger"
)

// EscalationWorker chạy chu kỳ đánh giá escalation định kỳ.
// Tick đến khi cycle trước còn đang chạy sẽ bị bỏ qua (không overlap cycle);
// evaluator tự gate bằng atomic CAS nên worker chỉ cần gọi và phân loại kết quả.
type EscalationWorker struct {
	evaluator *escalation.Evaluator
	interval  time.Duration // Khoảng thời gian giữa các lần chạy
}

// NewEscalationWorker tạo mới EscalationWorker.
// Tham số:
//   - evaluator: Evaluator đã wire đầy đủ data source, renderer, senders
//   - interval: Khoảng thời gian giữa các cycle (tối thiểu 30 giây)
func NewEscalationWorker(evaluator *escalation.Evaluator, interval time.Duration) *EscalationWorker {
	if interval < 30*time.Second {
		interval = 2 * time.Minute
	}
	return &EscalationWorker{
		evaluator: evaluator,
		interval:  interval,
	}
}

// Start chạy worker trong vòng lặp: mỗi interval chạy một chu kỳ đánh giá.
// Dừng khi context bị hủy (process shutdown).
func (w *EscalationWorker) Start(ctx context.Context) {
	log := logger.GetAppLogger()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	log.WithFields(map[string]interface{}{
		"interval": w.interval.String(),
	}).Info("🚨 [ESCALATION] Starting Escalation Worker...")

	for {
		select {
		case <-ctx.Done():
			log.Info("🚨 [ESCALATION] Escalation Worker stopped")
			return
		case <-ticker.C:
			func() {
				defer func() {
					if r := recover(); r != nil {
						log.WithFields(map[string]interface{}{
							"panic": r,
						}).Error("🚨 [ESCALATION] Panic trong cycle, sẽ tiếp tục ở tick tiếp theo")
					}
				}()

				_, err := w.evaluator.RunEvaluationCycle(ctx, time.Now())
				if err != nil {
					if errors.Is(err, common.ErrCycleInFlight) {
						// Cycle trước chưa xong hoặc instance khác đang chạy: bình thường
						log.Debug("🚨 [ESCALATION] Cycle đang chạy, bỏ qua tick")
						return
					}
					log.WithError(err).Error("🚨 [ESCALATION] Cycle thất bại, tick tiếp theo sẽ retry")
				}
			}()
		}
	}
}

// Package worker - Test cấu hình interval của EscalationWorker.
package worker

import (
	"testing"
	"time"
)

func TestNewEscalationWorker_ClampsShortInterval(t *testing.T) {
	w := NewEscalationWorker(nil, time.Second)
	if w.interval != 2*time.Minute {
		t.Errorf("Interval dưới 30 giây phải về mặc định 2 phút, nhận được %s", w.interval)
	}

	w = NewEscalationWorker(nil, 5*time.Minute)
	if w.interval != 5*time.Minute {
		t.Errorf("Interval hợp lệ phải giữ nguyên, nhận được %s", w.interval)
	}
}

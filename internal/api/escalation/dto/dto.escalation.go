// Package dto chứa các input/output cho domain Escalation.
package dto

// TriggerInput là body (optional) của POST /escalation/trigger.
// AsOf cho phép vận hành chạy cycle tại một thời điểm chỉ định (unix millis);
// bỏ trống thì dùng thời điểm hiện tại.
type TriggerInput struct {
	AsOf int64 `json:"asOf,omitempty"`
}

// HistoryQuery là các tham số lọc cho GET /escalation/history.
type HistoryQuery struct {
	Page     int64  `query:"page"`
	Limit    int64  `query:"limit"`
	Outcome  string `query:"outcome" validate:"omitempty,oneof=sent failed suppressed"`
	RuleID   string `query:"ruleId"`
	ItemID   string `query:"itemId"`
	DedupKey string `query:"dedupKey"`
}

// Package channels chứa các sender gửi thông báo qua từng transport (email, sms, whatsapp, push).
package channels

import "context"

// Outcome là kết quả tri-state của một lần gửi.
type Outcome int

const (
	// OutcomeAccepted: provider đã nhận message (không đảm bảo end-delivery)
	OutcomeAccepted Outcome = iota
	// OutcomeRejected: lỗi vĩnh viễn, retry vô ích (ví dụ destination không hợp lệ)
	OutcomeRejected
	// OutcomeTransientFailure: lỗi tạm thời, eligible cho retry ở cycle sau
	OutcomeTransientFailure
)

// String trả về tên outcome để log
func (o Outcome) String() string {
	switch o {
	case OutcomeAccepted:
		return "accepted"
	case OutcomeRejected:
		return "rejected"
	case OutcomeTransientFailure:
		return "transient_failure"
	default:
		return "unknown"
	}
}

// Attachment là file đính kèm email, nội dung đã nằm sẵn trong bộ nhớ.
type Attachment struct {
	Filename string
	MimeType string
	Data     []byte
}

// WhatsAppTemplateParam là một named parameter của WhatsApp template message.
type WhatsAppTemplateParam struct {
	Name  string
	Value string
}

// WhatsAppTemplate trỏ tới một template đã được Meta duyệt.
// Khi có mặt, sender gửi dạng template thay vì free-form text; bắt buộc với
// message ngoài cửa sổ 24 giờ của Cloud API.
type WhatsAppTemplate struct {
	Name       string
	Language   string
	Parameters []WhatsAppTemplateParam
}

// WhatsAppMedia là media đính kèm WhatsApp message.
// Kind nhận image, video hoặc document; Filename chỉ dùng cho document.
type WhatsAppMedia struct {
	Kind     string
	URL      string
	Caption  string
	Filename string
}

// RenderedContent là nội dung đã render đầy đủ cho mọi channel.
// Các field WhatsApp/attachment là optional: sender fallback về text thuần khi vắng mặt.
type RenderedContent struct {
	Subject          string
	EmailBody        string
	SmsBody          string
	WhatsappBody     string
	WhatsappTemplate *WhatsAppTemplate
	WhatsappMedia    *WhatsAppMedia
	PushTitle        string
	PushBody         string
	Attachments      []Attachment
}

// Destination là đích gửi đã resolve: sender tự chọn field phù hợp với transport của mình.
// Cc chỉ có nghĩa với email; các channel khác bỏ qua.
type Destination struct {
	UserID       string
	Name         string
	Email        string
	Cc           []string
	Phone        string
	DeviceTokens []string
}

// Sender là contract chung cho mọi channel. Sender không tự dedup:
// caller (evaluator) chịu trách nhiệm idempotency qua ledger.
type Sender interface {
	// ChannelType trả về loại channel (email, sms, whatsapp, push)
	ChannelType() string
	// Send gửi nội dung đã render đến destination. Lỗi đi kèm outcome để caller
	// phân biệt Rejected (terminal) với TransientFailure (retry được).
	Send(ctx context.Context, dest Destination, content *RenderedContent) (Outcome, error)
}

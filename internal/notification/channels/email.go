package channels

import (
	"context"
	"fmt"
	"io"
	"net/mail"

	notifmodels "hsse_platform/internal/api/notification/models"
	"hsse_platform/internal/logger"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// EmailSender gửi email qua SMTP.
type EmailSender struct {
	sender *notifmodels.NotificationSender
}

// NewEmailSender tạo mới EmailSender với cấu hình SMTP từ sender config.
func NewEmailSender(sender *notifmodels.NotificationSender) *EmailSender {
	return &EmailSender{sender: sender}
}

// ChannelType trả về loại channel
func (s *EmailSender) ChannelType() string {
	return "email"
}

// Send gửi email đến địa chỉ của destination, kèm Cc và attachment nếu có.
// Địa chỉ không hợp lệ là Rejected (retry vô ích); lỗi transport là TransientFailure.
func (s *EmailSender) Send(ctx context.Context, dest Destination, content *RenderedContent) (Outcome, error) {
	log := logger.GetAppLogger()

	if dest.Email == "" {
		return OutcomeRejected, fmt.Errorf("destination không có địa chỉ email")
	}
	if _, err := mail.ParseAddress(dest.Email); err != nil {
		log.WithFields(logrus.Fields{
			"email": dest.Email,
		}).Warn("📧 [EMAIL] Địa chỉ email không hợp lệ, reject không retry")
		return OutcomeRejected, fmt.Errorf("địa chỉ email không hợp lệ: %w", err)
	}

	msg := s.buildMessage(dest, content)

	dialer := gomail.NewDialer(s.sender.SmtpHost, s.sender.SmtpPort, s.sender.SmtpUsername, s.sender.SmtpPassword)
	if err := dialer.DialAndSend(msg); err != nil {
		log.WithError(err).WithFields(logrus.Fields{
			"email":    dest.Email,
			"smtpHost": s.sender.SmtpHost,
		}).Error("📧 [EMAIL] Lỗi khi gửi email qua SMTP")
		return OutcomeTransientFailure, err
	}

	log.WithFields(logrus.Fields{
		"email": dest.Email,
		"cc":    len(dest.Cc),
	}).Info("📧 [EMAIL] Gửi email thành công")
	return OutcomeAccepted, nil
}

// buildMessage dựng MIME message: To + Cc hợp lệ + body HTML + attachments.
// Địa chỉ Cc không hợp lệ bị bỏ qua với warning, không hỏng cả lần gửi.
func (s *EmailSender) buildMessage(dest Destination, content *RenderedContent) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", fmt.Sprintf("%s <%s>", s.sender.FromName, s.sender.FromAddress))
	msg.SetHeader("To", dest.Email)

	var cc []string
	for _, addr := range dest.Cc {
		if _, err := mail.ParseAddress(addr); err != nil {
			logger.GetAppLogger().WithFields(logrus.Fields{
				"cc": addr,
			}).Warn("📧 [EMAIL] Địa chỉ Cc không hợp lệ, bỏ qua")
			continue
		}
		cc = append(cc, addr)
	}
	if len(cc) > 0 {
		msg.SetHeader("Cc", cc...)
	}

	msg.SetHeader("Subject", content.Subject)
	msg.SetBody("text/html", content.EmailBody)

	for _, att := range content.Attachments {
		data := att.Data
		settings := []gomail.FileSetting{
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(data)
				return err
			}),
		}
		if att.MimeType != "" {
			settings = append(settings, gomail.SetHeader(map[string][]string{
				"Content-Type": {att.MimeType},
			}))
		}
		msg.Attach(att.Filename, settings...)
	}

	return msg
}

// internal/services/notification_service.go
package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"mime"
	"net/smtp"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gammazero/workerpool"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/rental-backend/internal/config"
	"github.com/javajoker/rental-backend/internal/i18n"
	"github.com/javajoker/rental-backend/internal/logger"
	"github.com/javajoker/rental-backend/internal/metrics"
	"github.com/javajoker/rental-backend/internal/models"
	"github.com/javajoker/rental-backend/internal/utils"
)

// Notifier is the fire-and-forget sink for contract events. Implementations
// must not block the caller and must not report delivery failures.
type Notifier interface {
	Notify(ctx context.Context, req NotificationRequest)
}

// NotificationRequest carries translation keys rather than text so each
// recipient gets the message in their own locale. time.Time arguments are
// formatted for that locale too.
type NotificationRequest struct {
	UserID     uuid.UUID
	Type       models.NotificationType
	RelatedID  uuid.UUID
	TitleKey   string
	MessageKey string
	Args       []interface{}
}

func newNotification(userID uuid.UUID, typ models.NotificationType, relatedID uuid.UUID, titleKey, messageKey string, args ...interface{}) NotificationRequest {
	return NotificationRequest{
		UserID:     userID,
		Type:       typ,
		RelatedID:  relatedID,
		TitleKey:   titleKey,
		MessageKey: messageKey,
		Args:       args,
	}
}

// localizedText is a message argument translated in the recipient's locale.
type localizedText struct {
	Key  string
	Args []interface{}
}

// Mailer delivers one e-mail.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

type NotificationService struct {
	db     *gorm.DB
	config *config.Config
	pool   *workerpool.WorkerPool
	mailer Mailer
	log    *logrus.Entry
}

type NotificationListParams struct {
	utils.PaginationParams
	UnreadOnly bool
}

func NewNotificationService(db *gorm.DB, cfg *config.Config, mailer Mailer) *NotificationService {
	workers := cfg.Notification.Workers
	if workers < 1 {
		workers = 1
	}
	if mailer == nil && cfg.Notification.EmailEnabled {
		mailer = NewSMTPMailer(cfg.Email)
	}
	return &NotificationService{
		db:     db,
		config: cfg,
		pool:   workerpool.New(workers),
		mailer: mailer,
		log:    logger.NewSublogger("notification"),
	}
}

func (s *NotificationService) Notify(ctx context.Context, req NotificationRequest) {
	s.pool.Submit(func() {
		// The request context may be gone by now; delivery has its own lifetime.
		s.deliver(context.Background(), req)
	})
}

// Close waits for queued deliveries to finish.
func (s *NotificationService) Close() {
	s.pool.StopWait()
}

func (s *NotificationService) deliver(ctx context.Context, req NotificationRequest) {
	contact := s.lookupContact(ctx, req.UserID)
	lang := i18n.DefaultLang()
	if contact != nil && contact.Locale != "" && i18n.IsSupported(contact.Locale) {
		lang = contact.Locale
	}

	title := i18n.T(lang, req.TitleKey)
	message := i18n.T(lang, req.MessageKey, localizeArgs(lang, req.Args)...)

	notification := &models.Notification{
		UserID:  req.UserID,
		Title:   title,
		Message: message,
		Type:    req.Type,
	}
	if req.RelatedID != uuid.Nil {
		relatedID := req.RelatedID
		notification.RelatedID = &relatedID
	}

	err := s.db.WithContext(ctx).Create(notification).Error
	metrics.NotificationSent("in_app", err)
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"user_id": req.UserID,
			"type":    req.Type,
		}).Error("Failed to persist notification")
	}

	if s.mailer == nil || contact == nil || contact.Email == "" {
		return
	}

	body, err := s.renderEmail(lang, title, message, req.RelatedID)
	if err != nil {
		s.log.WithError(err).Error("Failed to render notification e-mail")
		return
	}

	err = s.sendWithRetry(ctx, contact.Email, title, body)
	metrics.NotificationSent("email", err)
	if err != nil {
		s.log.WithError(err).WithField("user_id", req.UserID).Warn("Giving up on notification e-mail")
	}
}

func (s *NotificationService) lookupContact(ctx context.Context, userID uuid.UUID) *models.UserContact {
	var contact models.UserContact
	if err := s.db.WithContext(ctx).First(&contact, "user_id = ?", userID).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.WithError(err).Warn("Failed to load user contact")
		}
		return nil
	}
	return &contact
}

func (s *NotificationService) sendWithRetry(ctx context.Context, to, subject, body string) error {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = s.config.Notification.RetryMaxElapsed
	b.MaxInterval = s.config.Notification.RetryMaxBackoff

	return backoff.RetryNotify(func() error {
		return s.mailer.Send(to, subject, body)
	}, backoff.WithContext(b, ctx), func(err error, wait time.Duration) {
		s.log.WithError(err).WithField("retry_in", wait).Warn("E-mail delivery failed")
	})
}

var emailTemplate = template.Must(template.New("email").Parse(`<!DOCTYPE html>
<html lang="{{.Lang}}">
<body>
	<h2>{{.Title}}</h2>
	<p>{{.Message}}</p>
	{{if .URL}}<a href="{{.URL}}">{{.URL}}</a>{{end}}
	<p>{{.Platform}}</p>
</body>
</html>`))

func (s *NotificationService) renderEmail(lang, title, message string, relatedID uuid.UUID) (string, error) {
	data := map[string]interface{}{
		"Lang":     lang,
		"Title":    title,
		"Message":  message,
		"Platform": s.config.Email.FromName,
	}
	if relatedID != uuid.Nil {
		data["URL"] = fmt.Sprintf("%s/contracts/%s", s.config.Frontend.BaseURL, relatedID)
	}

	var buf bytes.Buffer
	if err := emailTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func localizeArgs(lang string, args []interface{}) []interface{} {
	out := make([]interface{}, len(args))
	for i, arg := range args {
		switch v := arg.(type) {
		case time.Time:
			out[i] = i18n.FormatTime(lang, v)
		case *time.Time:
			if v != nil {
				out[i] = i18n.FormatTime(lang, *v)
			}
		case localizedText:
			out[i] = i18n.T(lang, v.Key, localizeArgs(lang, v.Args)...)
		default:
			out[i] = arg
		}
	}
	return out
}

func (s *NotificationService) ListForUser(ctx context.Context, userID uuid.UUID, params NotificationListParams) ([]models.Notification, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ?", userID)
	if params.UnreadOnly {
		query = query.Where("read = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	var notifications []models.Notification
	query = utils.ApplySort(query, params.PaginationParams, []string{"created_at"})
	if err := utils.ApplyPagination(query, params.PaginationParams).Find(&notifications).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, total, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	result := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("read", true)
	if result.Error != nil {
		return fmt.Errorf("failed to mark notification read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return notFoundError("notification not found")
	}
	return nil
}

// SMTPMailer sends through the configured relay.
type SMTPMailer struct {
	config config.EmailConfig
}

func NewSMTPMailer(cfg config.EmailConfig) *SMTPMailer {
	return &SMTPMailer{config: cfg}
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	if m.config.SMTPHost == "" {
		return backoff.Permanent(errors.New("smtp host is not configured"))
	}

	auth := smtp.PlainAuth("", m.config.SMTPUsername, m.config.SMTPPassword, m.config.SMTPHost)
	addr := fmt.Sprintf("%s:%s", m.config.SMTPHost, m.config.SMTPPort)
	return smtp.SendMail(addr, auth, m.config.FromEmail, []string{to}, m.message(to, subject, body))
}

// message builds the MIME message. Header words outside ASCII are RFC 2047
// encoded; French titles carry accents.
func (m *SMTPMailer) message(to, subject, body string) []byte {
	return []byte(fmt.Sprintf("From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		mime.QEncoding.Encode("utf-8", m.config.FromName), m.config.FromEmail, to,
		mime.QEncoding.Encode("utf-8", subject), body))
}

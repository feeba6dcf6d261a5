// internal/services/notification_service_test.go
package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/rental-backend/internal/config"
	"github.com/javajoker/rental-backend/internal/i18n"
	"github.com/javajoker/rental-backend/internal/models"
	"github.com/javajoker/rental-backend/internal/testutil"
	"github.com/javajoker/rental-backend/internal/utils"
)

type fakeMailer struct {
	mu       sync.Mutex
	failures int
	sent     []string
	subjects []string
}

func (m *fakeMailer) Send(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failures > 0 {
		m.failures--
		return errors.New("relay unavailable")
	}
	m.sent = append(m.sent, to)
	m.subjects = append(m.subjects, subject)
	return nil
}

func notificationConfig() *config.Config {
	return &config.Config{
		Notification: config.NotificationConfig{
			Workers:         2,
			EmailEnabled:    true,
			RetryMaxElapsed: 2 * time.Second,
			RetryMaxBackoff: 50 * time.Millisecond,
		},
		Email:    config.EmailConfig{FromName: "Rental Marketplace"},
		Frontend: config.FrontendConfig{BaseURL: "http://app.test"},
	}
}

func TestNotificationServiceDeliversInRecipientLocale(t *testing.T) {
	db := testutil.NewDB(t)
	mailer := &fakeMailer{failures: 1}
	service := NewNotificationService(db, notificationConfig(), mailer)

	english, french := uuid.New(), uuid.New()
	require.NoError(t, db.Create(&models.UserContact{UserID: english, Email: "tenant@example.com", Locale: "en"}).Error)

	deadline := time.Date(2026, 10, 4, 9, 0, 0, 0, time.UTC)
	contractID := uuid.New()
	for _, userID := range []uuid.UUID{english, french} {
		service.Notify(context.Background(), newNotification(userID, models.NotificationTypeSignatureRequired, contractID,
			i18n.KeyNotifySignatureRequiredTitle, i18n.KeyNotifySignatureRequiredMessage, deadline))
	}
	service.Close()

	var notifications []models.Notification
	require.NoError(t, db.Order("created_at").Find(&notifications).Error)
	require.Len(t, notifications, 2)

	byUser := map[uuid.UUID]models.Notification{}
	for _, n := range notifications {
		byUser[n.UserID] = n
	}

	assert.Equal(t, "New contract to sign", byUser[english].Title)
	assert.Contains(t, byUser[english].Message, "2026-10-04 09:00 UTC")
	assert.Equal(t, i18n.T("fr", i18n.KeyNotifySignatureRequiredTitle), byUser[french].Title)
	assert.NotEqual(t, byUser[english].Title, byUser[french].Title)
	require.NotNil(t, byUser[french].RelatedID)
	assert.Equal(t, contractID, *byUser[french].RelatedID)
	assert.False(t, byUser[french].Read)

	// only the user with a contact row gets mail, after one retried failure
	assert.Equal(t, []string{"tenant@example.com"}, mailer.sent)
	assert.Equal(t, []string{"New contract to sign"}, mailer.subjects)
}

func TestNotificationServiceListAndMarkRead(t *testing.T) {
	db := testutil.NewDB(t)
	service := NewNotificationService(db, notificationConfig(), nil)
	defer service.Close()

	userID := uuid.New()
	for i := 0; i < 3; i++ {
		require.NoError(t, db.Create(&models.Notification{
			UserID:  userID,
			Title:   "t",
			Message: "m",
			Type:    models.NotificationTypeContract,
		}).Error)
	}
	require.NoError(t, db.Create(&models.Notification{UserID: uuid.New(), Title: "other", Type: models.NotificationTypeContract}).Error)

	ctx := context.Background()
	params := NotificationListParams{PaginationParams: utils.PaginationParams{Page: 1, Limit: 2, Sort: "created_at", Order: "desc"}}
	page, total, err := service.ListForUser(ctx, userID, params)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, page, 2)

	require.NoError(t, service.MarkRead(ctx, userID, page[0].ID))

	params.UnreadOnly = true
	_, unread, err := service.ListForUser(ctx, userID, params)
	require.NoError(t, err)
	assert.EqualValues(t, 2, unread)

	err = service.MarkRead(ctx, uuid.New(), page[1].ID)
	assert.True(t, errors.Is(err, ErrNotFound), "other users cannot touch the notification")
}

func TestLocalizeArgs(t *testing.T) {
	require.NoError(t, i18n.Initialize("fr"))
	at := time.Date(2026, 1, 2, 15, 4, 0, 0, time.UTC)

	args := localizeArgs("en", []interface{}{
		"reason",
		at,
		&at,
		localizedText{Key: i18n.KeyNotifyTerminationDetails, Args: []interface{}{"sold"}},
	})

	assert.Equal(t, "reason", args[0])
	assert.Equal(t, "2026-01-02 15:04 UTC", args[1])
	assert.Equal(t, args[1], args[2])
	assert.Equal(t, ". Details: sold", args[3])
}

func TestRenderEmailEscapesContent(t *testing.T) {
	service := &NotificationService{config: notificationConfig()}
	id := uuid.New()

	body, err := service.renderEmail("en", "Title", "<script>alert(1)</script>", id)
	require.NoError(t, err)
	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "http://app.test/contracts/"+id.String())
	assert.True(t, strings.HasPrefix(body, "<!DOCTYPE html>"))
}

func TestSMTPMailerWithoutHostIsPermanent(t *testing.T) {
	err := NewSMTPMailer(config.EmailConfig{}).Send("a@example.com", "s", "b")
	require.Error(t, err)
}

func TestSMTPMessageEncodesHeaders(t *testing.T) {
	mailer := NewSMTPMailer(config.EmailConfig{FromEmail: "noreply@example.com", FromName: "Location Sécurisée"})

	msg := string(mailer.message("tenant@example.com", "Contrat expiré", "<p>corps</p>"))

	assert.Contains(t, msg, "Subject: =?utf-8?q?Contrat_expir=C3=A9?=\r\n")
	assert.Contains(t, msg, "From: =?utf-8?q?Location_S=C3=A9curis=C3=A9e?= <noreply@example.com>\r\n")
	assert.NotContains(t, msg, "expiré")
	assert.True(t, strings.HasSuffix(msg, "\r\n\r\n<p>corps</p>"))

	plain := string(mailer.message("tenant@example.com", "Contract expired", ""))
	assert.Contains(t, plain, "Subject: Contract expired\r\n", "ASCII subjects are left as is")
}

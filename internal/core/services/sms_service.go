package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"sacco-hub/internal/adapters/persistence/models"
	"sacco-hub/internal/adapters/persistence/repositories"
	"sacco-hub/internal/config"
	"sacco-hub/internal/core/domain"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SMSService sends SMS through the Africa's Talking gateway and logs every
// dispatch attempt. All sends are best-effort: failures are recorded and
// logged, never returned to the triggering transition.
type SMSService struct {
	notifRepo repositories.NotificationRepository
	userRepo  repositories.UserRepository
	cfg       config.SMSConfig
	client    *http.Client
}

// NewSMSService creates a new SMS service. With empty credentials the
// service is disabled and sends become no-ops.
func NewSMSService(
	notifRepo repositories.NotificationRepository,
	userRepo repositories.UserRepository,
	cfg config.SMSConfig,
) *SMSService {
	return &SMSService{
		notifRepo: notifRepo,
		userRepo:  userRepo,
		cfg:       cfg,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled reports whether gateway credentials are configured
func (s *SMSService) Enabled() bool {
	return s.cfg.Username != "" && s.cfg.APIKey != ""
}

// gatewayResponse mirrors the Africa's Talking messaging response
type gatewayResponse struct {
	SMSMessageData struct {
		Message    string `json:"Message"`
		Recipients []struct {
			Number    string `json:"number"`
			Status    string `json:"status"`
			MessageID string `json:"messageId"`
			Cost      string `json:"cost"`
		} `json:"Recipients"`
	} `json:"SMSMessageData"`
}

// Send dispatches one SMS and persists the outcome. The returned record has
// status SENT or FAILED; the error return is reserved for cases where not
// even the log row could be written.
func (s *SMSService) Send(ctx context.Context, recipientID uint, phoneNumber, message string) (*models.SMSNotification, error) {
	notification := &models.SMSNotification{
		RecipientID: recipientID,
		PhoneNumber: phoneNumber,
		Message:     message,
		Status:      models.SMSStatusPending,
	}
	if err := s.notifRepo.Create(ctx, notification); err != nil {
		return nil, err
	}

	if !s.Enabled() {
		notification.Status = models.SMSStatusFailed
		notification.ErrorMessage = "SMS gateway not configured"
	} else if err := s.dispatch(ctx, notification); err != nil {
		notification.Status = models.SMSStatusFailed
		notification.ErrorMessage = err.Error()
		logrus.Warnf("⚠️ SMS to %s failed: %v", phoneNumber, err)
	}

	if err := s.notifRepo.Update(ctx, notification); err != nil {
		return nil, err
	}
	return notification, nil
}

// dispatch performs the gateway call and fills in the notification outcome
func (s *SMSService) dispatch(ctx context.Context, n *models.SMSNotification) error {
	form := url.Values{}
	form.Set("username", s.cfg.Username)
	form.Set("to", n.PhoneNumber)
	form.Set("message", n.Message)
	if s.cfg.SenderID != "" {
		form.Set("from", s.cfg.SenderID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("apiKey", s.cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("gateway returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var gw gatewayResponse
	if err := json.Unmarshal(body, &gw); err != nil {
		return fmt.Errorf("unreadable gateway response: %w", err)
	}
	if len(gw.SMSMessageData.Recipients) == 0 {
		return errors.New("no recipients in gateway response")
	}

	recipient := gw.SMSMessageData.Recipients[0]
	if recipient.Status != "Success" {
		return fmt.Errorf("gateway rejected message: %s", recipient.Status)
	}

	now := time.Now()
	n.Status = models.SMSStatusSent
	n.SentAt = &now
	n.ExternalID = recipient.MessageID
	return nil
}

// SendTemplate renders a stored template and sends it to a user
func (s *SMSService) SendTemplate(ctx context.Context, recipientID uint, templateName string, params map[string]string) (*models.SMSNotification, error) {
	user, err := s.userRepo.GetByID(ctx, recipientID)
	if err != nil {
		return nil, err
	}

	tmpl, err := s.notifRepo.GetTemplateByName(ctx, templateName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("unknown notification template %q", templateName)
		}
		return nil, err
	}
	if !tmpl.IsActive {
		return nil, fmt.Errorf("notification template %q is inactive", templateName)
	}

	if params == nil {
		params = map[string]string{}
	}
	if _, ok := params["first_name"]; !ok {
		params["first_name"] = user.FirstName
	}

	return s.Send(ctx, recipientID, user.PhoneNumber, RenderTemplate(tmpl.TemplateText, params))
}

// SendBulk sends the same message to multiple recipients
func (s *SMSService) SendBulk(ctx context.Context, recipientIDs []uint, message string) []*models.SMSNotification {
	out := make([]*models.SMSNotification, 0, len(recipientIDs))
	for _, id := range recipientIDs {
		user, err := s.userRepo.GetByID(ctx, id)
		if err != nil {
			logrus.Warnf("⚠️ Skipping SMS to unknown user %d: %v", id, err)
			continue
		}
		n, err := s.Send(ctx, id, user.PhoneNumber, message)
		if err != nil {
			logrus.Warnf("⚠️ Failed to log SMS to user %d: %v", id, err)
			continue
		}
		out = append(out, n)
	}
	return out
}

// RenderTemplate substitutes {placeholder} occurrences with param values
func RenderTemplate(text string, params map[string]string) string {
	for key, value := range params {
		text = strings.ReplaceAll(text, "{"+key+"}", value)
	}
	return text
}

// ============================================================
// Notifier hooks for core transitions
// ============================================================

// ContributionVerified notifies the member their contribution was verified
func (s *SMSService) ContributionVerified(c *models.Contribution) {
	typeName := ""
	if c.ContributionType != nil {
		typeName = c.ContributionType.Name
	}
	s.fireTemplate(c.MemberID, models.TemplateContributionVerified, map[string]string{
		"amount":            fmt.Sprintf("%.2f", c.Amount),
		"contribution_type": typeName,
		"transaction_code":  c.MpesaTransactionCode,
	})
}

// ContributionRejected notifies the member their contribution was rejected
func (s *SMSService) ContributionRejected(c *models.Contribution, reason string) {
	typeName := ""
	if c.ContributionType != nil {
		typeName = c.ContributionType.Name
	}
	s.fireTemplate(c.MemberID, models.TemplateContributionRejected, map[string]string{
		"amount":            fmt.Sprintf("%.2f", c.Amount),
		"contribution_type": typeName,
		"reason":            reason,
	})
}

// ApplicationApproved notifies the member their application was approved
func (s *SMSService) ApplicationApproved(app *models.Application) {
	s.fireTemplate(app.UserID, models.TemplateApplicationApproved, map[string]string{
		"application_type": app.ApplicationType,
	})
}

// ApplicationRejected notifies the member their application was rejected
func (s *SMSService) ApplicationRejected(app *models.Application, reason string) {
	s.fireTemplate(app.UserID, models.TemplateApplicationRejected, map[string]string{
		"application_type": app.ApplicationType,
		"reason":           reason,
	})
}

// fireTemplate sends without surfacing errors to the caller
func (s *SMSService) fireTemplate(recipientID uint, templateName string, params map[string]string) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if _, err := s.SendTemplate(ctx, recipientID, templateName, params); err != nil {
		logrus.Warnf("⚠️ Notification %s to user %d failed: %v", templateName, recipientID, err)
	}
}

// ListMine returns the calling user's notification history
func (s *SMSService) ListMine(ctx context.Context, userID uint) ([]*models.SMSNotification, error) {
	return s.notifRepo.ListByRecipient(ctx, userID)
}

// ListAll returns a page of all notifications
func (s *SMSService) ListAll(ctx context.Context, offset, limit int) ([]*models.SMSNotification, int64, error) {
	return s.notifRepo.List(ctx, offset, limit)
}

// ListTemplates returns all notification templates
func (s *SMSService) ListTemplates(ctx context.Context) ([]*models.NotificationTemplate, error) {
	return s.notifRepo.ListTemplates(ctx)
}

// UpdateTemplateInput carries editable template fields
type UpdateTemplateInput struct {
	Description  *string `json:"description,omitempty"`
	TemplateText *string `json:"template_text,omitempty"`
	IsActive     *bool   `json:"is_active,omitempty"`
}

// UpdateTemplate updates an existing notification template by name.
// Templates are seeded; only their text and active flag are editable.
func (s *SMSService) UpdateTemplate(ctx context.Context, name string, input *UpdateTemplateInput) (*models.NotificationTemplate, error) {
	tpl, err := s.notifRepo.GetTemplateByName(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("notification template")
		}
		return nil, err
	}

	if input.Description != nil {
		tpl.Description = *input.Description
	}
	if input.TemplateText != nil {
		if *input.TemplateText == "" {
			return nil, domain.Validationf("template_text", "template text cannot be empty")
		}
		tpl.TemplateText = *input.TemplateText
	}
	if input.IsActive != nil {
		tpl.IsActive = *input.IsActive
	}

	if err := s.notifRepo.SaveTemplate(ctx, tpl); err != nil {
		return nil, err
	}
	return tpl, nil
}

package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/spec-kit/social-services/internal/auth"
	"github.com/spec-kit/social-services/internal/config"
	"github.com/spec-kit/social-services/internal/domain"
	"github.com/spec-kit/social-services/internal/events"
	"github.com/spec-kit/social-services/internal/repository"
)

const digestPageSize = 200

// NotificationService turns domain events into inbox entries and email stubs.
type NotificationService struct {
	dispatcher events.Dispatcher
	accounts   repository.AccountRepository
	inbox      repository.NotificationStore
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, accounts repository.AccountRepository, inbox repository.NotificationStore, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		accounts:   accounts,
		inbox:      inbox,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventAccountRegistered, n.handleAccountRegistered)
	n.dispatcher.Subscribe(events.EventAccountVerification, n.handleAccountVerification)
	n.dispatcher.Subscribe(events.EventJobOfferCreated, n.handleJobOfferCreated)
	n.dispatcher.Subscribe(events.EventJobOfferConfirmed, n.handleJobOfferEmployerEvent)
	n.dispatcher.Subscribe(events.EventJobOfferRemoved, n.handleJobOfferEmployerEvent)
	n.dispatcher.Subscribe(events.EventJobApplication, n.handleJobApplication)
}

// Inbox lists the caller's notifications, newest first.
func (n *NotificationService) Inbox(ctx context.Context, actor *domain.Account, limit int) ([]domain.Notification, error) {
	if !auth.IsAllowed(actor, auth.ActionReadInbox, nil) {
		return nil, auth.Forbidden()
	}
	return n.inbox.List(ctx, actor.ID, limit)
}

// ClearInbox drops every notification of the caller.
func (n *NotificationService) ClearInbox(ctx context.Context, actor *domain.Account) error {
	if !auth.IsAllowed(actor, auth.ActionReadInbox, nil) {
		return auth.Forbidden()
	}
	return n.inbox.Clear(ctx, actor.ID)
}

func (n *NotificationService) handleAccountRegistered(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.AccountRegisteredPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	if payload.Type == domain.AccountTypeStaff {
		return nil
	}
	n.sendEmailNotificationStub(ctx, payload.Email, "verify your account", event)

	verifiers, err := n.staffWith(ctx, domain.StaffGroupAccountVerification)
	if err != nil {
		return err
	}
	return n.notify(ctx, event, verifiers, "registered", map[string]any{
		"account_id": event.SubjectID,
		"type":       payload.Type,
	})
}

func (n *NotificationService) handleAccountVerification(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.AccountVerificationPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	return n.notify(ctx, event, []string{event.SubjectID}, "changed your verification status", map[string]any{
		"old_status": payload.OldStatus,
		"new_status": payload.NewStatus,
	})
}

func (n *NotificationService) handleJobOfferCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.JobOfferPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	moderators, err := n.staffWith(ctx, domain.StaffGroupJobsModeration)
	if err != nil {
		return err
	}
	return n.notify(ctx, event, moderators, "created job offer", map[string]any{
		"offer_id": event.SubjectID,
		"title":    payload.Title,
	})
}

func (n *NotificationService) handleJobOfferEmployerEvent(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.JobOfferPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	if payload.EmployerID == nil {
		return nil
	}
	verb := "confirmed your job offer"
	if event.Type == events.EventJobOfferRemoved {
		verb = "removed your job offer"
	}
	return n.notify(ctx, event, []string{*payload.EmployerID}, verb, map[string]any{
		"offer_id": event.SubjectID,
		"title":    payload.Title,
	})
}

func (n *NotificationService) handleJobApplication(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.JobApplicationPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	if payload.EmployerID == nil {
		return nil
	}
	return n.notify(ctx, event, []string{*payload.EmployerID}, "applied to your job offer", map[string]any{
		"offer_id":       event.SubjectID,
		"application_id": payload.ApplicationID,
		"title":          payload.OfferTitle,
	})
}

func (n *NotificationService) staffWith(ctx context.Context, group domain.StaffGroup) ([]string, error) {
	staffType := domain.AccountTypeStaff
	verified := domain.VerificationVerified
	staff, err := n.accounts.List(ctx, repository.AccountFilter{
		Type:   &staffType,
		Status: &verified,
		Group:  &group,
		Limit:  500,
	})
	if err != nil {
		return nil, err
	}
	return lo.Map(staff, func(a domain.Account, _ int) string { return a.ID }), nil
}

// notify stores one inbox entry per recipient, skipping the actor itself. Failures for one
// recipient do not stop delivery to the others.
func (n *NotificationService) notify(ctx context.Context, event events.Event, recipients []string, verb string, data map[string]any) error {
	var actorID *string
	if event.Actor != nil {
		actorID = &event.Actor.AccountID
	}
	var failed int
	for _, recipient := range lo.Uniq(recipients) {
		if actorID != nil && recipient == *actorID {
			continue
		}
		err := n.inbox.Push(ctx, domain.Notification{
			ID:          uuid.NewString(),
			RecipientID: recipient,
			ActorID:     actorID,
			Verb:        verb,
			Context:     data,
			CreatedAt:   event.Timestamp,
		})
		if err != nil {
			failed++
			n.logger.Warn("notification push failed",
				zap.String("recipient_id", recipient),
				zap.String("event_type", string(event.Type)),
				zap.Error(err))
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d notifications not delivered", failed, len(recipients))
	}
	return nil
}

// SendJobDigest emails every verified standard account a summary of offers. It returns the
// number of recipients.
func (n *NotificationService) SendJobDigest(ctx context.Context, offers []domain.JobOffer) (int, error) {
	if len(offers) == 0 {
		return 0, nil
	}
	standard := domain.AccountTypeStandard
	verified := domain.VerificationVerified
	titles := lo.Map(offers, func(o domain.JobOffer, _ int) string { return o.Title })
	sent := 0
	for offset := 0; ; offset += digestPageSize {
		page, err := n.accounts.List(ctx, repository.AccountFilter{
			Type:   &standard,
			Status: &verified,
			Limit:  digestPageSize,
			Offset: offset,
		})
		if err != nil {
			return sent, err
		}
		for _, account := range page {
			n.sendEmailNotificationStub(ctx, account.Email, fmt.Sprintf("%d new job offers", len(offers)), events.Event{
				Type:    events.EventJobOfferConfirmed,
				Payload: titles,
			})
			sent++
		}
		if len(page) < digestPageSize {
			return sent, nil
		}
	}
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, to, subject string, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("event_type", string(event.Type)))
}

package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/marketplace-portal/internal/events"
	"github.com/spec-kit/marketplace-portal/internal/repository"
)

// AuditService persists authentication events for operability. Failures to
// record an event never affect the request that produced it.
type AuditService struct {
	dispatcher events.Dispatcher
	repo       repository.AuthEventRepository
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, repo repository.AuthEventRepository, logger *zap.Logger) *AuditService {
	return &AuditService{dispatcher: dispatcher, repo: repo, logger: logger}
}

// RegisterHandlers subscribes to authentication events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventLoginSucceeded, a.record)
	a.dispatcher.Subscribe(events.EventLoginFailed, a.record)
	a.dispatcher.Subscribe(events.EventLogout, a.record)
}

func (a *AuditService) record(ctx context.Context, event events.Event) error {
	a.logger.Info("auth event",
		zap.String("type", string(event.Type)),
		zap.String("scope", event.Scope),
		zap.String("role", string(event.Role)),
		zap.String("subject_id", event.SubjectID))

	if a.repo == nil {
		return nil
	}

	row := &repository.AuthEvent{
		ID:        event.ID,
		EventType: string(event.Type),
		Scope:     event.Scope,
		Role:      string(event.Role),
		Username:  event.Username,
	}
	if event.SubjectID != "" {
		row.SubjectID = &event.SubjectID
	}

	if err := a.repo.Insert(ctx, row); err != nil {
		a.logger.Warn("persist auth event", zap.Error(err))
	}
	return nil
}

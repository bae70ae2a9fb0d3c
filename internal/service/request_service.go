package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/darshan-pass-service/internal/domain"
	"github.com/spec-kit/darshan-pass-service/internal/events"
	"github.com/spec-kit/darshan-pass-service/internal/repository"
	"github.com/spec-kit/darshan-pass-service/internal/validation"
	apperrors "github.com/spec-kit/darshan-pass-service/pkg/util/errorutil"
)

// DefaultEntryGate is assigned to every request unless configured otherwise.
const DefaultEntryGate = "C"

// RequestService drives the Pending -> Done lifecycle of visitor requests.
type RequestService struct {
	requests              repository.RequestRepository
	validator             *validation.Validator
	ids                   IDGenerator
	dispatcher            events.Dispatcher
	logger                *zap.Logger
	now                   func() time.Time
	entryGate             string
	strictDeleteOwnership bool
}

// RequestDependencies bundles collaborators for the request service.
type RequestDependencies struct {
	RequestRepo repository.RequestRepository
	Validator   *validation.Validator
	IDs         IDGenerator
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
	Clock       func() time.Time
	EntryGate   string
	// StrictDeleteOwnership limits Remove to the submitter of the record.
	StrictDeleteOwnership bool
}

// NewRequestService constructs the service.
func NewRequestService(deps RequestDependencies) *RequestService {
	s := &RequestService{
		requests:              deps.RequestRepo,
		validator:             deps.Validator,
		ids:                   deps.IDs,
		dispatcher:            deps.Dispatcher,
		logger:                deps.Logger,
		now:                   deps.Clock,
		entryGate:             strings.TrimSpace(deps.EntryGate),
		strictDeleteOwnership: deps.StrictDeleteOwnership,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.validator == nil {
		s.validator = validation.NewValidator(validation.WithClock(s.now))
	}
	if s.ids == nil {
		s.ids = NewRequestIDGenerator(s.now)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.entryGate == "" {
		s.entryGate = DefaultEntryGate
	}
	return s
}

// Submit validates the candidate and stores it as a new Pending request owned by the trustee.
func (s *RequestService) Submit(ctx context.Context, session domain.Session, candidate validation.Candidate) (*domain.Request, error) {
	if !session.HasRole(domain.RoleTrustee) {
		return nil, apperrors.NewForbidden("trustee role required")
	}

	req, err := s.validator.Validate(candidate)
	if err != nil {
		return nil, validationFailure(err)
	}

	req.ID = s.ids.Generate()
	req.SubmitterIdentity = session.Identity
	req.SubmittedAt = s.now().UTC()
	req.Status = domain.RequestStatusPending
	req.EntryGate = s.entryGate

	if err := validation.CheckStored(req); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	if err := s.requests.Insert(ctx, req); err != nil {
		if errors.Is(err, repository.ErrDuplicateID) {
			s.logger.Error("request id collision", zap.String("request_id", req.ID))
		}
		return nil, apperrors.NewInternalError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:      events.EventRequestSubmitted,
		RequestID: req.ID,
		Actor:     events.ActorFromSession(session),
		Payload: events.RequestSubmittedPayload{
			Category:      req.Category(),
			GuestCount:    req.GuestCount,
			PreferredDate: req.PreferredDate.String(),
			PreferredTime: req.PreferredTimeSlot.String(),
			EntryGate:     req.EntryGate,
		},
	})
	return req, nil
}

// ListMine returns the trustee's own requests, newest first.
func (s *RequestService) ListMine(ctx context.Context, session domain.Session) ([]domain.Request, error) {
	if !session.HasRole(domain.RoleTrustee) {
		return nil, apperrors.NewForbidden("trustee role required")
	}
	list, err := s.requests.ListBySubmitter(ctx, session.Identity)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return list, nil
}

// Lookup resolves a token for either role without filtering by submitter.
func (s *RequestService) Lookup(ctx context.Context, session domain.Session, id string) (*domain.Request, error) {
	if !session.HasRole(domain.RoleTrustee) && !session.HasRole(domain.RoleProTeam) {
		return nil, apperrors.NewForbidden("authenticated role required")
	}
	return s.find(ctx, id)
}

// MarkDone completes a pending request. Completing an already Done request returns it unchanged.
func (s *RequestService) MarkDone(ctx context.Context, session domain.Session, id string) (*domain.Request, error) {
	if !session.HasRole(domain.RoleProTeam) {
		return nil, apperrors.NewForbidden("pro team role required")
	}
	current, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == domain.RequestStatusDone {
		return current, nil
	}

	updated, changed, err := s.requests.UpdateStatus(ctx, current.ID, domain.RequestStatusDone)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, notFound(current.ID)
	case err != nil:
		return nil, apperrors.NewInternalError(err)
	}

	if changed {
		s.publishEvent(ctx, events.Event{
			Type:      events.EventRequestCompleted,
			RequestID: updated.ID,
			Actor:     events.ActorFromSession(session),
			Payload: events.RequestCompletedPayload{
				OldStatus:         current.Status,
				NewStatus:         updated.Status,
				SubmitterIdentity: updated.SubmitterIdentity,
			},
		})
	}
	return updated, nil
}

// Remove deletes a request and reports whether anything was removed. In strict ownership mode
// a missing record and a record owned by someone else are both Forbidden.
func (s *RequestService) Remove(ctx context.Context, session domain.Session, id string) (bool, error) {
	if !session.HasRole(domain.RoleTrustee) {
		return false, apperrors.NewForbidden("trustee role required")
	}

	existing, err := s.requests.GetByID(ctx, id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		if s.strictDeleteOwnership {
			return false, apperrors.NewForbidden("request cannot be removed by this session")
		}
		return false, nil
	case err != nil:
		return false, apperrors.NewInternalError(err)
	}

	owned := existing.SubmitterIdentity == session.Identity
	if s.strictDeleteOwnership && !owned {
		return false, apperrors.NewForbidden("request cannot be removed by this session")
	}
	if !owned {
		s.logger.Warn("request removed by non-owner",
			zap.String("request_id", id),
			zap.String("actor", session.Identity))
	}

	removed, err := s.requests.Delete(ctx, id)
	if err != nil {
		return false, apperrors.NewInternalError(err)
	}
	if removed {
		s.publishEvent(ctx, events.Event{
			Type:      events.EventRequestDeleted,
			RequestID: id,
			Actor:     events.ActorFromSession(session),
			Payload: events.RequestDeletedPayload{
				SubmitterIdentity: existing.SubmitterIdentity,
				OwnedByActor:      owned,
			},
		})
	}
	return removed, nil
}

func (s *RequestService) find(ctx context.Context, id string) (*domain.Request, error) {
	id = strings.TrimSpace(id)
	if !IsRequestID(id) {
		s.logger.Info("malformed request token", zap.String("token", id))
		return nil, notFound(id)
	}
	req, err := s.requests.GetByID(ctx, id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		s.logger.Debug("request token not found", zap.String("request_id", id))
		return nil, notFound(id)
	case err != nil:
		return nil, apperrors.NewInternalError(err)
	}
	return req, nil
}

func (s *RequestService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handlers failed",
			zap.String("event_type", string(event.Type)),
			zap.String("request_id", event.RequestID),
			zap.Error(err))
	}
}

func notFound(id string) error {
	return apperrors.NewNotFound("request", map[string]any{"id": id})
}

func validationFailure(err error) error {
	var verr *validation.Error
	if errors.As(err, &verr) {
		return apperrors.WrapValidationError(verr, verr.Details())
	}
	return apperrors.NewValidationError(err.Error(), nil)
}

package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/darshan-pass-service/internal/config"
	"github.com/spec-kit/darshan-pass-service/internal/domain"
	"github.com/spec-kit/darshan-pass-service/internal/events"
	"github.com/spec-kit/darshan-pass-service/internal/persistence"
	"github.com/spec-kit/darshan-pass-service/internal/repository"
	"github.com/spec-kit/darshan-pass-service/internal/service"
	"github.com/spec-kit/darshan-pass-service/internal/validation"
	apperrors "github.com/spec-kit/darshan-pass-service/pkg/util/errorutil"
)

var (
	serviceNow = time.Date(2026, 10, 15, 4, 30, 0, 0, time.UTC)
	trustee    = domain.NewSession(domain.RoleTrustee, "trusteelogin@app.com")
	otherOwner = domain.NewSession(domain.RoleTrustee, "second-trustee@app.com")
	verifier   = domain.NewSession(domain.RoleProTeam, "proteamlogin@app.com")
)

type harness struct {
	svc    *service.RequestService
	repo   repository.RequestRepository
	kv     *persistence.MemoryKV
	logs   *observer.ObservedLogs
	mu     sync.Mutex
	events []events.Event
}

func (h *harness) published(t events.EventType) []events.Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []events.Event
	for _, e := range h.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func newHarness(t *testing.T, strict bool) *harness {
	t.Helper()
	ctx := context.Background()
	kv := persistence.NewMemoryKV()
	repo, err := repository.NewRequestRepository(ctx, kv, "")
	require.NoError(t, err)

	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)

	h := &harness{repo: repo, kv: kv, logs: logs}
	dispatcher := events.NewInMemoryDispatcher()
	record := func(_ context.Context, e events.Event) error {
		h.mu.Lock()
		h.events = append(h.events, e)
		h.mu.Unlock()
		return nil
	}
	dispatcher.Subscribe(events.EventRequestSubmitted, record)
	dispatcher.Subscribe(events.EventRequestCompleted, record)
	dispatcher.Subscribe(events.EventRequestDeleted, record)
	service.NewNotificationService(dispatcher, logger, config.NotificationConfig{}).RegisterHandlers()

	clock := func() time.Time { return serviceNow }
	h.svc = service.NewRequestService(service.RequestDependencies{
		RequestRepo: repo,
		Validator: validation.NewValidator(
			validation.WithClock(clock),
			validation.WithLocation(time.UTC),
		),
		IDs:                   service.NewRequestIDGenerator(clock),
		Dispatcher:            dispatcher,
		Logger:                logger,
		Clock:                 clock,
		StrictDeleteOwnership: strict,
	})
	return h
}

func vastraCandidate() validation.Candidate {
	return validation.Candidate{
		Name:                 "Asha",
		Phone:                "9876543210",
		GuestCount:           2,
		Category:             string(domain.CategoryVipVastra),
		VastraCount:          1,
		VastraRecipientNames: []string{"Asha"},
		PreferredDate:        "2026-10-15",
		PreferredTime:        "09:00 AM",
	}
}

func TestRequestService_EndToEnd(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, false)

	submitted, err := h.svc.Submit(ctx, trustee, vastraCandidate())
	require.NoError(t, err)
	require.True(t, service.IsRequestID(submitted.ID))
	require.Equal(t, domain.RequestStatusPending, submitted.Status)
	require.Equal(t, "trusteelogin@app.com", submitted.SubmitterIdentity)
	require.Equal(t, "C", submitted.EntryGate)
	require.True(t, serviceNow.Equal(submitted.SubmittedAt))

	mine, err := h.svc.ListMine(ctx, trustee)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, submitted.ID, mine[0].ID)
	require.Equal(t, domain.RequestStatusPending, mine[0].Status)

	found, err := h.svc.Lookup(ctx, verifier, submitted.ID)
	require.NoError(t, err)
	require.Equal(t, submitted.ID, found.ID)
	require.Equal(t, []string{"Asha"}, found.VastraRecipientNames())

	done, err := h.svc.MarkDone(ctx, verifier, submitted.ID)
	require.NoError(t, err)
	require.Equal(t, domain.RequestStatusDone, done.Status)

	mine, err = h.svc.ListMine(ctx, trustee)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, domain.RequestStatusDone, mine[0].Status)

	require.Len(t, h.published(events.EventRequestSubmitted), 1)
	require.Len(t, h.published(events.EventRequestCompleted), 1)
	require.Equal(t, 1, h.logs.FilterMessage("RequestSubmitted").Len())
	require.Equal(t, 1, h.logs.FilterMessage("RequestCompleted").Len())
}

func TestRequestService_SubmitRequiresTrustee(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, false)

	for _, session := range []domain.Session{verifier, domain.UnauthenticatedSession()} {
		_, err := h.svc.Submit(ctx, session, vastraCandidate())
		require.True(t, apperrors.IsCode(err, "FORBIDDEN"))
	}
	_, err := h.svc.ListMine(ctx, verifier)
	require.True(t, apperrors.IsCode(err, "FORBIDDEN"))
	require.Empty(t, h.published(events.EventRequestSubmitted))
}

func TestRequestService_SubmitValidationFailure(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, false)

	c := vastraCandidate()
	c.PreferredTime = "03:29 AM"
	_, err := h.svc.Submit(ctx, trustee, c)
	require.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	de := apperrors.ToDomainError(err)
	require.Equal(t, "out_of_range", de.Details["kind"])
	require.Equal(t, "preferred_time", de.Details["field"])

	mine, err := h.svc.ListMine(ctx, trustee)
	require.NoError(t, err)
	require.Empty(t, mine)
}

func TestRequestService_UniqueIDsAndScoping(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, false)

	ids := map[string]struct{}{}
	for i := 0; i < 25; i++ {
		session := trustee
		if i%2 == 1 {
			session = otherOwner
		}
		req, err := h.svc.Submit(ctx, session, vastraCandidate())
		require.NoError(t, err)
		ids[req.ID] = struct{}{}
	}
	require.Len(t, ids, 25)

	mine, err := h.svc.ListMine(ctx, trustee)
	require.NoError(t, err)
	require.Len(t, mine, 13)
	for _, r := range mine {
		require.Equal(t, trustee.Identity, r.SubmitterIdentity)
	}
	theirs, err := h.svc.ListMine(ctx, otherOwner)
	require.NoError(t, err)
	require.Len(t, theirs, 12)
}

func TestRequestService_MarkDoneIsIdempotent(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, false)
	req, err := h.svc.Submit(ctx, trustee, vastraCandidate())
	require.NoError(t, err)

	first, err := h.svc.MarkDone(ctx, verifier, req.ID)
	require.NoError(t, err)
	second, err := h.svc.MarkDone(ctx, verifier, req.ID)
	require.NoError(t, err)

	require.Equal(t, domain.RequestStatusDone, second.Status)
	require.True(t, first.SubmittedAt.Equal(second.SubmittedAt))
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, first.Name, second.Name)
	require.Len(t, h.published(events.EventRequestCompleted), 1)
}

func TestRequestService_ConcurrentMarkDone(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, false)
	req, err := h.svc.Submit(ctx, trustee, vastraCandidate())
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := h.svc.MarkDone(ctx, verifier, req.ID)
			if err == nil && got.Status != domain.RequestStatusDone {
				err = fmt.Errorf("status %s after MarkDone", got.Status)
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	require.Len(t, h.published(events.EventRequestCompleted), 1)
}

func TestRequestService_MarkDoneRequiresProTeam(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, false)
	req, err := h.svc.Submit(ctx, trustee, vastraCandidate())
	require.NoError(t, err)

	_, err = h.svc.MarkDone(ctx, trustee, req.ID)
	require.True(t, apperrors.IsCode(err, "FORBIDDEN"))
	_, err = h.svc.MarkDone(ctx, trustee, "REQ-does-not-exist")
	require.True(t, apperrors.IsCode(err, "FORBIDDEN"))

	_, err = h.svc.MarkDone(ctx, verifier, "REQ-does-not-exist")
	require.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}

func TestRequestService_LookupNotFound(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, false)

	_, err := h.svc.Lookup(ctx, verifier, "REQ-1-MISSING")
	require.True(t, apperrors.IsCode(err, "NOT_FOUND"))
	require.Equal(t, 1, h.logs.FilterMessage("request token not found").Len())

	_, err = h.svc.Lookup(ctx, verifier, "not-a-token")
	require.True(t, apperrors.IsCode(err, "NOT_FOUND"))
	require.Equal(t, 1, h.logs.FilterMessage("malformed request token").Len())

	_, err = h.svc.Lookup(ctx, domain.UnauthenticatedSession(), "REQ-1-MISSING")
	require.True(t, apperrors.IsCode(err, "FORBIDDEN"))
}

func TestRequestService_LookupCrossesSubmitters(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, false)
	req, err := h.svc.Submit(ctx, otherOwner, vastraCandidate())
	require.NoError(t, err)

	got, err := h.svc.Lookup(ctx, trustee, req.ID)
	require.NoError(t, err)
	require.Equal(t, otherOwner.Identity, got.SubmitterIdentity)
}

func TestRequestService_Remove(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, false)
	req, err := h.svc.Submit(ctx, trustee, vastraCandidate())
	require.NoError(t, err)

	_, err = h.svc.Remove(ctx, verifier, req.ID)
	require.True(t, apperrors.IsCode(err, "FORBIDDEN"))

	removed, err := h.svc.Remove(ctx, trustee, req.ID)
	require.NoError(t, err)
	require.True(t, removed)

	for _, session := range []domain.Session{trustee, verifier} {
		_, err = h.svc.Lookup(ctx, session, req.ID)
		require.True(t, apperrors.IsCode(err, "NOT_FOUND"))
	}

	removed, err = h.svc.Remove(ctx, trustee, req.ID)
	require.NoError(t, err)
	require.False(t, removed)

	next, err := h.svc.Submit(ctx, trustee, vastraCandidate())
	require.NoError(t, err)
	require.NotEqual(t, req.ID, next.ID)
	require.Len(t, h.published(events.EventRequestDeleted), 1)
}

func TestRequestService_RemovePermissiveOwnership(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, false)
	req, err := h.svc.Submit(ctx, otherOwner, vastraCandidate())
	require.NoError(t, err)

	removed, err := h.svc.Remove(ctx, trustee, req.ID)
	require.NoError(t, err)
	require.True(t, removed)
	require.Equal(t, 1, h.logs.FilterMessage("request removed by non-owner").Len())

	deleted := h.published(events.EventRequestDeleted)
	require.Len(t, deleted, 1)
	payload, ok := deleted[0].Payload.(events.RequestDeletedPayload)
	require.True(t, ok)
	require.False(t, payload.OwnedByActor)
}

func TestRequestService_RemoveStrictOwnership(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, true)
	req, err := h.svc.Submit(ctx, otherOwner, vastraCandidate())
	require.NoError(t, err)

	_, err = h.svc.Remove(ctx, trustee, req.ID)
	require.True(t, apperrors.IsCode(err, "FORBIDDEN"))
	_, err = h.svc.Remove(ctx, trustee, "REQ-1-MISSING")
	require.True(t, apperrors.IsCode(err, "FORBIDDEN"))

	still, err := h.svc.Lookup(ctx, verifier, req.ID)
	require.NoError(t, err)
	require.Equal(t, req.ID, still.ID)

	removed, err := h.svc.Remove(ctx, otherOwner, req.ID)
	require.NoError(t, err)
	require.True(t, removed)
}

func TestRequestService_StoredRecordsPassCategoryRules(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, false)

	candidates := []validation.Candidate{vastraCandidate()}
	ref := vastraCandidate()
	ref.Category = string(domain.CategoryVipReference)
	ref.ReferenceName = "Shri Rao"
	candidates = append(candidates, ref)
	med := vastraCandidate()
	med.Category = string(domain.CategoryMedical)
	candidates = append(candidates, med)
	senior := vastraCandidate()
	senior.Category = string(domain.CategorySeniorCitizen)
	candidates = append(candidates, senior)

	for _, c := range candidates {
		_, err := h.svc.Submit(ctx, trustee, c)
		require.NoError(t, err)
	}

	reloaded, err := repository.NewRequestRepository(ctx, h.kv, "")
	require.NoError(t, err)
	list, err := reloaded.ListBySubmitter(ctx, trustee.Identity)
	require.NoError(t, err)
	require.Len(t, list, len(candidates))
	for i := range list {
		require.NoError(t, validation.CheckStored(&list[i]))
	}
}

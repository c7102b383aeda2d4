package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/alexanderramin/landminer/internal/api"
	"github.com/alexanderramin/landminer/internal/db"
	"github.com/alexanderramin/landminer/internal/domain"
	"github.com/alexanderramin/landminer/internal/repository"
	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"
)

// ErrInvalidStartRequest wraps validation failures of a start request.
var ErrInvalidStartRequest = errors.New("invalid start request")

const defaultSnapshotKeep = 20

// MiningOptions tunes a mining service. Zero values pick defaults.
type MiningOptions struct {
	Logger       *slog.Logger
	Account      string // cache partition, usually the API base URL
	CacheTTL     time.Duration
	SnapshotKeep int
	Now          func() time.Time
}

type miningService struct {
	client    api.Client
	actions   repository.ActionRepo
	snapshots repository.SnapshotRepo
	uow       db.UnitOfWork
	cache     *lookupCache
	validate  *validator.Validate
	log       *slog.Logger
	account   string
	keep      int
	now       func() time.Time
	observer  UseCaseObserver
}

func NewMiningService(
	client api.Client,
	actions repository.ActionRepo,
	snapshots repository.SnapshotRepo,
	uow db.UnitOfWork,
	opts MiningOptions,
	observers ...UseCaseObserver,
) MiningService {
	s := &miningService{
		client:    client,
		actions:   actions,
		snapshots: snapshots,
		uow:       uow,
		cache:     newLookupCache(opts.CacheTTL),
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		log:       opts.Logger,
		account:   opts.Account,
		keep:      opts.SnapshotKeep,
		now:       opts.Now,
		observer:  useCaseObserverOrNoop(observers),
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.account == "" {
		s.account = "default"
	}
	if s.keep <= 0 {
		s.keep = defaultSnapshotKeep
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// LoadDashboard fetches sessions, summary, lands and tools concurrently.
// Individual failures degrade the dashboard instead of failing it: a missing
// summary falls back to the last stored snapshot. Only a credentials error,
// or losing both session sources, fails the load.
func (s *miningService) LoadDashboard(ctx context.Context) (dash *Dashboard, err error) {
	startedAt := s.now()
	fields := map[string]any{}
	defer s.observe(ctx, "load-dashboard", startedAt, fields, &err)

	var (
		mu          sync.Mutex
		warnings    []string
		summary     *domain.MiningSummary
		sessions    []domain.MiningSession
		lands       []domain.Land
		tools       []domain.Tool
		summaryErr  error
		sessionsErr error
	)
	tolerate := func(what string, err error) error {
		if errors.Is(err, api.ErrUnauthorized) {
			return err
		}
		s.log.WarnContext(ctx, "dashboard fetch failed", "part", what, "error", err)
		mu.Lock()
		warnings = append(warnings, fmt.Sprintf("%s: %s", what, api.UserMessage(err, err.Error())))
		mu.Unlock()
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		summary, summaryErr = s.client.GetSummary(gctx)
		if summaryErr != nil {
			return tolerate("summary", summaryErr)
		}
		return nil
	})
	g.Go(func() error {
		sessions, sessionsErr = s.client.ListSessions(gctx)
		if sessionsErr != nil {
			return tolerate("sessions", sessionsErr)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if lands, err = s.ListLands(gctx); err != nil {
			return tolerate("lands", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if tools, err = s.ListTools(gctx); err != nil {
			return tolerate("tools", err)
		}
		return nil
	})
	if err = g.Wait(); err != nil {
		return nil, err
	}

	dash = &Dashboard{
		Summary:  summary,
		Sessions: sessions,
		Lands:    lands,
		Tools:    tools,
		Warnings: warnings,
		LoadedAt: s.now(),
	}

	if summaryErr != nil {
		if snap, snapErr := s.snapshots.Latest(ctx); snapErr == nil {
			dash.Summary = &snap.Summary
			dash.Stale = true
			dash.StaleAt = snap.CapturedAt
		} else if !errors.Is(snapErr, repository.ErrNotFound) {
			s.log.WarnContext(ctx, "reading summary snapshot failed", "error", snapErr)
		}
	} else if summary != nil {
		s.storeSnapshot(ctx, summary)
	}

	if dash.Summary == nil && sessionsErr != nil {
		err = fmt.Errorf("loading mining sessions: %w", errors.Join(summaryErr, sessionsErr))
		return nil, err
	}

	// A snapshot only fills the summary figures. Its session list may hold
	// sessions stopped since, so it is shown only when no live list arrived.
	live := summary
	if summaryErr != nil && sessionsErr != nil {
		live = dash.Summary
		dash.DisplayStale = true
	}
	dash.Display, dash.Source = domain.DisplaySessions(live, dash.Sessions)
	if domain.SummaryFallthrough(live, dash.Source) {
		s.log.WarnContext(ctx, "summary has no active sessions, falling back",
			"source", dash.Source.String(),
			"raw_count", len(dash.Sessions))
	}

	fields["source"] = dash.Source.String()
	fields["sessions"] = len(dash.Display)
	fields["stale"] = dash.Stale
	fields["display_stale"] = dash.DisplayStale
	return dash, nil
}

func (s *miningService) storeSnapshot(ctx context.Context, summary *domain.MiningSummary) {
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repo := repository.NewSQLiteSnapshotRepo(tx)
		if err := repo.Save(ctx, summary, s.now()); err != nil {
			return err
		}
		return repo.Prune(ctx, s.keep)
	})
	if err != nil {
		s.log.WarnContext(ctx, "storing summary snapshot failed", "error", err)
	}
}

func (s *miningService) ListLands(ctx context.Context) ([]domain.Land, error) {
	if lands, ok := s.cache.getLands(s.account); ok {
		return lands, nil
	}
	lands, err := s.client.ListLands(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.setLands(s.account, lands)
	return lands, nil
}

func (s *miningService) ListTools(ctx context.Context) ([]domain.Tool, error) {
	if tools, ok := s.cache.getTools(s.account); ok {
		return tools, nil
	}
	tools, err := s.client.ListTools(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.setTools(s.account, tools)
	return tools, nil
}

func (s *miningService) RateHistory(ctx context.Context, hours int) ([]domain.RatePoint, error) {
	return s.client.RateHistory(ctx, hours)
}

func (s *miningService) StartMining(ctx context.Context, req api.StartRequest) (out domain.Outcome[domain.StartResult], err error) {
	startedAt := s.now()
	fields := map[string]any{"land_id": req.LandID, "tool_count": len(req.ToolIDs)}
	defer s.observe(ctx, "start-mining", startedAt, fields, &err)

	if verr := s.validate.Struct(req); verr != nil {
		err = fmt.Errorf("%w: %s", ErrInvalidStartRequest, describeValidation(verr))
		return out, err
	}

	out, err = s.client.StartMining(ctx, req)
	s.cache.invalidateTools(s.account)

	entry := &domain.ActionEntry{
		Kind:    domain.ActionStart,
		LandID:  req.LandID,
		ToolIDs: req.ToolIDs,
	}
	if err == nil && out.Data != nil {
		entry.SessionKey = domain.SessionKey(out.Data.SessionPK)
		entry.Message = out.Data.SessionID
	}
	s.journal(ctx, entry, out.Result(), out.Message, err)
	return out, err
}

func (s *miningService) StopSession(ctx context.Context, session domain.MiningSession) (out domain.Outcome[domain.StopResult], err error) {
	startedAt := s.now()
	fields := map[string]any{"session_key": int64(session.Key)}
	defer s.observe(ctx, "stop-session", startedAt, fields, &err)

	out, err = s.client.StopSession(ctx, session.Key)
	s.cache.invalidateTools(s.account)

	entry := &domain.ActionEntry{Kind: domain.ActionStop, SessionKey: session.Key}
	if err == nil && out.Data != nil {
		entry.Amount = nullable(out.Data.CollectedOr(session.PendingOutput))
	}
	s.journal(ctx, entry, out.Result(), out.Message, err)
	return out, err
}

func (s *miningService) StopAll(ctx context.Context) (out domain.Outcome[domain.StopAllResult], err error) {
	startedAt := s.now()
	fields := map[string]any{}
	defer s.observe(ctx, "stop-all", startedAt, fields, &err)

	out, err = s.client.StopAll(ctx)
	s.cache.invalidateTools(s.account)

	entry := &domain.ActionEntry{Kind: domain.ActionStopAll}
	if err == nil && out.Data != nil {
		entry.Amount = out.Data.TotalCollected
		fields["stopped"] = out.Data.StoppedCount
	}
	s.journal(ctx, entry, out.Result(), out.Message, err)
	return out, err
}

func (s *miningService) CollectOutput(ctx context.Context, session domain.MiningSession) (out domain.Outcome[domain.CollectResult], err error) {
	startedAt := s.now()
	fields := map[string]any{"session_key": int64(session.Key)}
	defer s.observe(ctx, "collect-output", startedAt, fields, &err)

	out, err = s.client.CollectOutput(ctx, session.Key)

	entry := &domain.ActionEntry{Kind: domain.ActionCollect, SessionKey: session.Key}
	if err == nil && out.Data != nil {
		entry.Amount = out.Data.Collected
	}
	s.journal(ctx, entry, out.Result(), out.Message, err)
	return out, err
}

func (s *miningService) SessionHistory(ctx context.Context, key domain.SessionKey) ([]*domain.ActionEntry, error) {
	return s.actions.ListBySession(ctx, key)
}

func (s *miningService) RecentActions(ctx context.Context, limit int) ([]*domain.ActionEntry, error) {
	return s.actions.ListRecent(ctx, limit)
}

func (s *miningService) Reachable(ctx context.Context) bool {
	return s.client.Available(ctx)
}

func (s *miningService) Reset() {
	s.cache.purge()
}

// journal records an action locally. A journal failure never fails the action.
func (s *miningService) journal(ctx context.Context, e *domain.ActionEntry, result domain.ActionResult, message string, callErr error) {
	e.Result = result
	if callErr != nil {
		e.Result = domain.ResultError
		message = api.UserMessage(callErr, callErr.Error())
	}
	if e.Message == "" {
		e.Message = message
	}
	e.CreatedAt = s.now()
	if err := s.actions.Create(ctx, e); err != nil {
		s.log.WarnContext(ctx, "journaling action failed", "kind", e.Kind, "error", err)
	}
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	switch fe.StructField() {
	case "LandID":
		return "land is required"
	case "ToolIDs":
		if fe.Tag() == "unique" {
			return "tools must not repeat"
		}
		return "at least one tool is required"
	default:
		return fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag())
	}
}

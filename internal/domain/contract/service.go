package contract

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/honeycarbs/contractsync/internal/domain"
	"github.com/honeycarbs/contractsync/pkg/logging"
)

const tracerName = "github.com/honeycarbs/contractsync/internal/domain/contract"

type Service interface {
	Sync(ctx context.Context) (domain.SyncResult, error)
}

// Option configures Service
type Option func(*config)

type config struct {
	source   Source
	repo     Repository
	clock    func() time.Time
	log      *logging.Logger
	rec      Recorder
	maxPages int
}

// WithSource sets the remote source
func WithSource(source Source) Option {
	return func(c *config) {
		c.source = source
	}
}

// WithRepository sets the destination repository
func WithRepository(repo Repository) Option {
	return func(c *config) {
		c.repo = repo
	}
}

// WithClock sets a custom clock
func WithClock(clock func() time.Time) Option {
	return func(c *config) {
		c.clock = clock
	}
}

// WithLogger sets the logger
func WithLogger(log *logging.Logger) Option {
	return func(c *config) {
		c.log = log
	}
}

// WithRecorder sets the statistics recorder
func WithRecorder(rec Recorder) Option {
	return func(c *config) {
		c.rec = rec
	}
}

// WithMaxPages caps the page walk; zero means unlimited
func WithMaxPages(n int) Option {
	return func(c *config) {
		c.maxPages = n
	}
}

// NewService builds Service from options
func NewService(opts ...Option) (Service, error) {
	cfg := &config{
		clock: time.Now,
		log:   logging.NewNop(),
		rec:   nopRecorder{},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.log == nil {
		cfg.log = logging.NewNop()
	}
	if cfg.rec == nil {
		cfg.rec = nopRecorder{}
	}
	if cfg.clock == nil {
		cfg.clock = time.Now
	}

	if cfg.source == nil {
		return nil, fmt.Errorf("contract.Service: source is required")
	}
	if cfg.repo == nil {
		return nil, fmt.Errorf("contract.Service: repository is required")
	}

	return &service{
		source:  cfg.source,
		repo:    cfg.repo,
		fetcher: NewFetcher(cfg.source, cfg.maxPages, cfg.log, cfg.rec),
		writer:  NewWriter(cfg.repo, cfg.clock),
		clock:   cfg.clock,
		log:     cfg.log,
		rec:     cfg.rec,
		tracer:  otel.Tracer(tracerName),
	}, nil
}

// NewServiceWithDeps creates a Service with direct dependencies (Wire-compatible)
func NewServiceWithDeps(source Source, repo Repository, log *logging.Logger, rec Recorder, limits Limits) (Service, error) {
	return NewService(
		WithSource(source),
		WithRepository(repo),
		WithLogger(log),
		WithRecorder(rec),
		WithMaxPages(limits.MaxPages),
	)
}

// Limits bounds a single run
type Limits struct {
	MaxPages int
}

type service struct {
	source  Source
	repo    Repository
	fetcher *Fetcher
	writer  *Writer
	clock   func() time.Time
	log     *logging.Logger
	rec     Recorder
	tracer  trace.Tracer
}

// Sync runs token, key lookup, page walk and append once.
// Only a write failure or a cancelled context is returned as an error.
func (s *service) Sync(ctx context.Context) (domain.SyncResult, error) {
	start := s.clock()
	res := domain.SyncResult{RunID: uuid.NewString()}
	log := s.log.With("run_id", res.RunID, "source", s.source.Name())

	ctx, span := s.tracer.Start(ctx, "contract.Sync", trace.WithAttributes(
		attribute.String("run.id", res.RunID),
	))
	defer span.End()
	defer func() { s.rec.ObserveRun(s.clock().Sub(start)) }()

	cred := s.authenticate(ctx, log)
	res.Authenticated = cred != nil

	known := s.existingKeys(ctx, log)
	res.KnownKeys = len(known)

	if err := ctx.Err(); err != nil {
		return res, err
	}

	fctx, fspan := s.tracer.Start(ctx, "contract.FetchAll")
	batch, stats := s.fetcher.FetchAll(fctx, cred, known)
	fspan.SetAttributes(
		attribute.Int("pages", stats.Pages),
		attribute.Int("fetched", stats.Fetched),
		attribute.Int("admitted", stats.Admitted),
	)
	if stats.Err != nil {
		fspan.RecordError(stats.Err)
	}
	fspan.End()

	res.Requests = stats.Requests
	res.Pages = stats.Pages
	res.Fetched = stats.Fetched
	res.Admitted = stats.Admitted
	res.Rejected = stats.Rejected
	res.FetchErr = stats.Err

	if err := ctx.Err(); err != nil {
		return res, err
	}

	if len(batch) == 0 {
		log.Info("no new contracts", "pages", stats.Pages, "fetched", stats.Fetched)
		return res, nil
	}

	wctx, wspan := s.tracer.Start(ctx, "contract.Write", trace.WithAttributes(
		attribute.Int("rows", len(batch)),
	))
	written, retrieved, err := s.writer.Write(wctx, batch)
	if err != nil {
		wspan.RecordError(err)
		wspan.SetStatus(codes.Error, "append failed")
		wspan.End()
		span.SetStatus(codes.Error, "write failed")
		s.rec.ObserveFailure(StageWrite)
		return res, fmt.Errorf("write contracts: %w", err)
	}
	wspan.End()

	res.Written = written
	res.Retrieved = retrieved
	s.rec.ObserveWrite(written, retrieved)

	log.Info("all new data was written",
		"rows", written,
		"retrieved", retrieved,
		"rejected", stats.Rejected,
	)

	return res, nil
}

// authenticate returns nil when the token cannot be obtained; the run
// continues and the source is called without a bearer header.
func (s *service) authenticate(ctx context.Context, log *logging.Logger) domain.Credential {
	ctx, span := s.tracer.Start(ctx, "contract.Authenticate")
	defer span.End()

	cred, err := s.source.Authenticate(ctx)
	if err != nil {
		span.RecordError(err)
		s.rec.ObserveFailure(StageAuth)
		log.Error("failed to refresh token", "err", err)
		return nil
	}

	log.Info("token refreshed")
	return cred
}

// existingKeys falls back to an empty set, so every fetched record is
// treated as new when the destination cannot be read.
func (s *service) existingKeys(ctx context.Context, log *logging.Logger) domain.KeySet {
	ctx, span := s.tracer.Start(ctx, "contract.ExistingCodes")
	defer span.End()

	keys, err := s.repo.ExistingCodes(ctx)
	if err != nil {
		span.RecordError(err)
		s.rec.ObserveFailure(StageKeys)
		log.Error("failed to retrieve existing contract codes", "err", err)
		return domain.NewKeySet()
	}

	span.SetAttributes(attribute.Int("keys", len(keys)))
	return keys
}

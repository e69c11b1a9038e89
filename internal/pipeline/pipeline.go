// Package pipeline orchestrates a full audit: extract citation claims from
// text, resolve each against the bibliographic sources, and verify the
// survivors with the judges. Claims are processed concurrently but results
// always come back in extraction order.
package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/realibuddy/citecheck/internal/extract"
	"github.com/realibuddy/citecheck/internal/judge"
	"github.com/realibuddy/citecheck/internal/model"
	"github.com/realibuddy/citecheck/internal/resolve"
)

// Auditor wires the pipeline stages together.
type Auditor struct {
	extractor   extract.Extractor
	resolver    *resolve.Resolver
	consistency judge.ConsistencyJudge
	fallback    judge.FallbackJudge
	logger      *zap.Logger
	config      model.PipelineConfig
}

// New creates an auditor. A nil logger is replaced with a no-op one.
func New(
	extractor extract.Extractor,
	resolver *resolve.Resolver,
	consistency judge.ConsistencyJudge,
	fallback judge.FallbackJudge,
	logger *zap.Logger,
	config model.PipelineConfig,
) *Auditor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.MaxClaims <= 0 {
		config.MaxClaims = model.DefaultConfig().Pipeline.MaxClaims
	}
	if config.Concurrency <= 0 {
		config.Concurrency = model.DefaultConfig().Pipeline.Concurrency
	}
	if config.MinAbstractLen <= 0 {
		config.MinAbstractLen = model.DefaultConfig().Pipeline.MinAbstractLen
	}
	return &Auditor{
		extractor:   extractor,
		resolver:    resolver,
		consistency: consistency,
		fallback:    fallback,
		logger:      logger,
		config:      config,
	}
}

// Audit runs the full pipeline over the text. The returned slice holds one
// outcome per audited claim, in extraction order. A failure inside a single
// claim's audit never aborts the batch; it surfaces as an ERROR outcome in
// that claim's slot.
func (a *Auditor) Audit(ctx context.Context, text string) ([]model.AuditOutcome, error) {
	claims, err := a.extractor.Extract(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("extract claims: %w", err)
	}
	if len(claims) == 0 {
		a.logger.Info("no citations found in text")
		return []model.AuditOutcome{}, nil
	}

	if len(claims) > a.config.MaxClaims {
		a.logger.Warn("truncating claims",
			zap.Int("extracted", len(claims)),
			zap.Int("cap", a.config.MaxClaims))
		claims = claims[:a.config.MaxClaims]
	}

	a.logger.Info("auditing claims",
		zap.Int("count", len(claims)),
		zap.Int("concurrency", a.config.Concurrency))

	results := make([]model.AuditOutcome, len(claims))
	sem := make(chan struct{}, a.config.Concurrency)
	done := make(chan int, len(claims))

	for i, claim := range claims {
		go func(i int, claim model.CitationClaim) {
			sem <- struct{}{}
			defer func() {
				if r := recover(); r != nil {
					a.logger.Error("claim audit panicked",
						zap.Int("claim", claim.ID),
						zap.Any("panic", r))
					results[i] = model.AuditOutcome{
						CitationText: claim.RawText,
						Status:       model.StatusError,
						Source:       "pipeline",
						Metadata:     map[string]interface{}{},
						Message:      fmt.Sprintf("Internal error while auditing: %v", r),
					}
				}
				<-sem
				done <- i
			}()
			results[i] = a.auditOne(ctx, claim)
		}(i, claim)
	}
	for range claims {
		<-done
	}

	return results, nil
}

// auditOne takes a single claim through resolution and verification.
func (a *Auditor) auditOne(ctx context.Context, claim model.CitationClaim) model.AuditOutcome {
	res := a.resolver.Resolve(ctx, claim)

	outcome := a.finalize(ctx, claim, res)

	a.logger.Info("claim audited",
		zap.Int("claim", claim.ID),
		zap.String("status", string(outcome.Status)),
		zap.String("source", outcome.Source))

	return outcome
}

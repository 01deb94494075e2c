package core

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// OrchestratorConfig carries the run-level settings threaded through
// one execution of the pipeline.
type OrchestratorConfig struct {
	Mode            RunMode
	Limit           int
	FetchMax        int64
	ReportRecipient string
	// ReportSender is the address this system's own digests arrive
	// from, used for self-recognition.
	ReportSender   string
	SubjectMarker  string
	HistoryEnabled bool
}

// Orchestrator drives one triage run: fetch, per-message processing,
// aggregation and report hand-off. Per-message failures are recorded
// and the batch continues; a failure of the run itself ends without a
// report and raises an operator alert instead.
type Orchestrator struct {
	store      MailStore
	gateway    *ClassificationGateway
	labels     *LabelManager
	retention  *RetentionEngine
	summarizer *DigestSummarizer
	renderer   Renderer
	history    HistoryStore
	cfg        OrchestratorConfig
	logger     *zap.Logger

	state RunState
}

// NewOrchestrator creates a new run orchestrator
func NewOrchestrator(
	store MailStore,
	gateway *ClassificationGateway,
	labels *LabelManager,
	retention *RetentionEngine,
	summarizer *DigestSummarizer,
	renderer Renderer,
	history HistoryStore,
	cfg OrchestratorConfig,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		store:      store,
		gateway:    gateway,
		labels:     labels,
		retention:  retention,
		summarizer: summarizer,
		renderer:   renderer,
		history:    history,
		cfg:        cfg,
		logger:     logger,
		state:      StateIdle,
	}
}

// State returns the orchestrator's current run state
func (o *Orchestrator) State() RunState {
	return o.state
}

func (o *Orchestrator) setState(s RunState) {
	o.logger.Debug("Run state transition",
		zap.String("from", string(o.state)),
		zap.String("to", string(s)))
	o.state = s
}

// Run executes one triage run and returns the finalized aggregate
func (o *Orchestrator) Run(ctx context.Context) (*RunResult, error) {
	o.setState(StateFetching)
	emails, err := o.store.FetchRecent(ctx, o.cfg.FetchMax)
	if err != nil {
		return nil, o.fail(ctx, fmt.Errorf("fetch messages: %w", err))
	}

	batch := emails
	if o.cfg.Mode == ModeLimited && o.cfg.Limit > 0 && len(batch) > o.cfg.Limit {
		batch = batch[:o.cfg.Limit]
		o.logger.Info("Batch truncated by limited mode",
			zap.Int("fetched", len(emails)),
			zap.Int("limit", o.cfg.Limit))
	}

	result := NewRunResult(o.cfg.Mode)
	aggregator := NewAggregator(result, o.summarizer, o.logger)

	o.setState(StateProcessing)
	for _, email := range batch {
		if o.isOwnReport(email) {
			o.skipOwnReport(ctx, email, aggregator)
			continue
		}
		if err := o.processOne(ctx, email, aggregator); err != nil {
			o.logger.Warn("Message processing failed",
				zap.String("subject", email.Subject),
				zap.String("sender", email.From),
				zap.Error(err))
			aggregator.RecordError(email, err)
		}
	}
	aggregator.BuildSocialDigests(ctx)

	o.setState(StateReporting)
	if err := o.deliverReport(ctx, result); err != nil {
		return nil, o.fail(ctx, fmt.Errorf("deliver report: %w", err))
	}

	o.setState(StateDone)
	o.logger.Info("Run complete",
		zap.String("mode", string(result.Mode)),
		zap.Int("processed", result.Processed),
		zap.Int("skipped", result.Skipped),
		zap.Int("errors", len(result.Errors)))
	return result, nil
}

// processOne routes a single message through classification, retention
// policy, labeling and aggregation.
func (o *Orchestrator) processOne(ctx context.Context, email *Email, aggregator *Aggregator) error {
	classification := o.gateway.Classify(ctx, email)

	outcome, err := o.retention.Apply(ctx, email, classification.Category)
	if err != nil {
		return err
	}

	// Label failures are swallowed inside the manager; the message
	// still reaches the aggregate unlabeled.
	o.labels.ApplyCategory(ctx, email, classification.Category)

	aggregator.Record(email, classification, outcome)

	if o.cfg.HistoryEnabled && o.history != nil {
		if err := o.history.Record(ctx, email.From, classification.Category); err != nil {
			o.logger.Warn("Sender history update failed",
				zap.String("sender", email.From),
				zap.Error(err))
		}
	}
	return nil
}

// isOwnReport recognizes a prior run's digest by sender identity and
// subject marker, so the system never re-classifies its own output.
func (o *Orchestrator) isOwnReport(email *Email) bool {
	if o.cfg.ReportSender == "" || o.cfg.SubjectMarker == "" {
		return false
	}
	return strings.Contains(email.From, o.cfg.ReportSender) &&
		strings.Contains(email.Subject, o.cfg.SubjectMarker)
}

// skipOwnReport archives a recognized digest and keeps it out of every
// classification bucket and error list.
func (o *Orchestrator) skipOwnReport(ctx context.Context, email *Email, aggregator *Aggregator) {
	aggregator.RecordSkip()
	if !o.cfg.Mode.AllowMutations() {
		return
	}
	if err := o.store.Archive(ctx, email.ThreadID); err != nil {
		o.logger.Warn("Failed to archive own report",
			zap.String("thread_id", email.ThreadID),
			zap.Error(err))
	}
}

// deliverReport renders the aggregate and sends it to the configured
// recipient. In preview mode nothing is sent; the summary is logged.
func (o *Orchestrator) deliverReport(ctx context.Context, result *RunResult) error {
	subject, html, err := o.renderer.Render(result)
	if err != nil {
		return fmt.Errorf("render report: %w", err)
	}

	if !o.cfg.Mode.AllowMutations() || o.cfg.ReportRecipient == "" {
		o.logger.Info("Report not delivered",
			zap.String("mode", string(o.cfg.Mode)),
			zap.String("subject", subject),
			zap.Int("listed", result.TotalListed()))
		return nil
	}

	if err := o.store.SendMessage(ctx, o.cfg.ReportRecipient, subject, html); err != nil {
		return fmt.Errorf("send report: %w", err)
	}
	return nil
}

// fail moves the run into the absorbing failed state and sends a
// best-effort operator alert. No partial report is produced.
func (o *Orchestrator) fail(ctx context.Context, cause error) error {
	o.setState(StateFailed)
	o.logger.Error("Run failed", zap.Error(cause))

	if o.cfg.Mode.AllowMutations() && o.cfg.ReportRecipient != "" {
		subject := fmt.Sprintf("%s: run failed", o.cfg.SubjectMarker)
		body := fmt.Sprintf("<p>The triage run failed before a report could be produced.</p><p>%s</p>", cause)
		if err := o.store.SendMessage(ctx, o.cfg.ReportRecipient, subject, body); err != nil {
			o.logger.Error("Failed to send operator alert", zap.Error(err))
		}
	}
	return cause
}

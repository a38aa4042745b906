package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"veristone-hq/clarion/pkg/analysis"
	"veristone-hq/clarion/pkg/classify"
	"veristone-hq/clarion/pkg/config"
	"veristone-hq/clarion/pkg/intake"
	"veristone-hq/clarion/pkg/report"
	"veristone-hq/clarion/pkg/scoring"
	"veristone-hq/clarion/pkg/telemetry/metrics"
	"veristone-hq/clarion/pkg/telemetry/tracing"
)

// Stage names, used in span names and stage attributes.
const (
	stageFeatures = "features"
	stageSignals  = "signals"
	stageScore    = "score"
	stageAssemble = "assemble"
)

// noopTracer backs stage spans when no tracer is attached.
var noopTracer = trace.NewNoopTracerProvider().Tracer("clarion")

// Pipeline runs one artifact through the full analysis sequence: feature
// extraction, upstream signal aggregation, composite scoring, and report
// assembly. It holds no per-request state and is safe for concurrent use;
// the aggregator is the only concurrency point inside one invocation.
type Pipeline struct {
	extractor  *analysis.Extractor
	aggregator *classify.Aggregator
	scorer     *scoring.Scorer
	assembler  *report.Assembler
	storage    report.Storage

	classifiers []classify.Classifier
	heuristics  bool

	collector *metrics.Collector
	tracer    *tracing.Tracer
	logger    *slog.Logger
}

// New wires a pipeline from the service configuration and its
// collaborators. classifiers may be empty (scoring falls back to
// heuristics), emitter may be nil (forwarding disabled), and storage may
// be nil (the report archive is disabled).
func New(cfg *config.Config, classifiers []classify.Classifier, emitter report.Forwarder, storage report.Storage) *Pipeline {
	return &Pipeline{
		extractor: analysis.NewExtractor(analysis.Params{
			Stride:            cfg.Analysis.Stride,
			RunThreshold:      cfg.Analysis.RunThreshold,
			SegmentThreshold:  cfg.Analysis.SegmentThreshold,
			DynamicRangeFloor: cfg.Analysis.DynamicRangeFloor,
		}),
		aggregator:  classify.NewAggregator(classifiers),
		scorer:      scoring.NewScorer(weightsFrom(cfg.Scoring.Weights), cfg.Intake.MaxBytes),
		assembler:   report.NewAssembler(emitter),
		storage:     storage,
		classifiers: classifiers,
		heuristics:  cfg.Analysis.Heuristics != config.ToggleOff,
		logger:      slog.Default().With("component", "pipeline"),
	}
}

// WithTelemetry attaches a metrics collector and a tracer; either may be
// nil. Upstream classifiers are rewrapped so every call records its
// outcome and latency. Call this before the first Run.
func (p *Pipeline) WithTelemetry(collector *metrics.Collector, tracer *tracing.Tracer) *Pipeline {
	p.collector = collector
	p.tracer = tracer

	if collector != nil && len(p.classifiers) > 0 {
		observed := make([]classify.Classifier, len(p.classifiers))
		for i, c := range p.classifiers {
			observed[i] = &observedClassifier{Classifier: c, collector: collector}
		}
		p.aggregator = classify.NewAggregator(observed)
	}
	return p
}

// Run analyzes one artifact end to end and returns its trust report. The
// report is complete or absent: a degraded upstream appears as a failed
// signal inside a full report, while an error return means no report was
// produced at all. Archive writes are advisory; a storage failure is
// logged and the report still returned.
func (p *Pipeline) Run(ctx context.Context, artifact *intake.Artifact) (*report.TrustReport, error) {
	if artifact == nil {
		return nil, errors.New("pipeline: nil artifact")
	}

	start := time.Now()

	_, featureSpan := p.startStage(ctx, stageFeatures)
	features := p.extractor.Extract(artifact.Data)
	if !p.heuristics {
		features.DigitalSilence = false
		features.LowDynamicRange = false
	}
	p.setAudioAttributes(featureSpan, features)
	featureSpan.End()

	signalCtx, signalSpan := p.startStage(ctx, stageSignals)
	signals := p.aggregator.Collect(signalCtx, artifact)
	signalSpan.End()
	p.recordUpstreamHealth()

	// The aggregator settles every call even under cancellation, so a
	// dead request is only detected here. No partial report leaves the
	// pipeline.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	_, scoreSpan := p.startStage(ctx, stageScore)
	result := p.scorer.Score(features, signals, artifact.Size)
	tracing.SetScoreAttributes(scoreSpan, result.CompositeScore, result.Method)
	scoreSpan.End()
	if p.collector != nil {
		p.collector.RecordCompositeScore(result.CompositeScore)
	}

	assembleCtx, assembleSpan := p.startStage(ctx, stageAssemble)
	trustReport := p.assembler.Assemble(assembleCtx, artifact, features, signals, result)
	tracing.SetArtifactAttributes(assembleSpan, trustReport.Metadata.Digest, artifact.MIMEType, artifact.Size)
	assembleSpan.End()

	if p.storage != nil {
		if err := p.storage.Store(ctx, trustReport); err != nil {
			p.logger.Error("report archive write failed",
				"report_id", trustReport.ID,
				"error", err,
			)
		}
	}

	p.logger.Debug("analysis complete",
		"report_id", trustReport.ID,
		"composite_score", result.CompositeScore,
		"method", result.Method,
		"upstreams", len(signals),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return trustReport, nil
}

// HealthSnapshot reports per-upstream health keyed by upstream name.
func (p *Pipeline) HealthSnapshot() map[string]classify.HealthStatus {
	return p.aggregator.HealthSnapshot()
}

// Upstreams returns the configured classifiers in configuration order.
func (p *Pipeline) Upstreams() []classify.Classifier {
	return p.aggregator.Upstreams()
}

// Close releases the upstream classifier clients. The emitter and storage
// are owned by their creators and closed there.
func (p *Pipeline) Close() error {
	return p.aggregator.Close()
}

// startStage opens one stage span under the request span.
func (p *Pipeline) startStage(ctx context.Context, stage string) (context.Context, trace.Span) {
	if p.tracer == nil {
		return noopTracer.Start(ctx, "clarion.stage."+stage)
	}
	sctx, span := p.tracer.Start(ctx, "clarion.stage."+stage)
	tracing.SetStageAttribute(span, stage)
	return sctx, span
}

// setAudioAttributes copies decoded header fields onto the feature span.
func (p *Pipeline) setAudioAttributes(span trace.Span, features analysis.FeatureSet) {
	sampleRate, channels := 0, 0
	if features.WAV != nil {
		sampleRate = features.WAV.SampleRate
		channels = features.WAV.Channels
	}
	tracing.SetAudioAttributes(span, string(features.Format), sampleRate, channels)
}

// recordUpstreamHealth mirrors the per-upstream health flags into the
// health gauge after each aggregation round.
func (p *Pipeline) recordUpstreamHealth() {
	if p.collector == nil {
		return
	}
	for name, status := range p.aggregator.HealthSnapshot() {
		p.collector.UpdateUpstreamHealth(name, status.IsHealthy)
	}
}

// UpstreamConfigs maps the configured upstream entries onto classifier
// configurations for classify.BuildClassifiers.
func UpstreamConfigs(cfg *config.Config) []classify.UpstreamConfig {
	configs := make([]classify.UpstreamConfig, 0, len(cfg.Upstreams))
	for _, u := range cfg.Upstreams {
		configs = append(configs, classify.UpstreamConfig{
			Name:         u.Name,
			Endpoint:     u.Endpoint,
			APIKey:       u.APIKey,
			AuthHeader:   u.AuthHeader,
			PayloadStyle: classify.PayloadStyle(u.PayloadStyle),
			Extraction:   classify.Extraction(u.Extraction),
			Timeout:      u.Timeout,
			MaxRetries:   u.MaxRetries,
		})
	}
	return configs
}

// weightsFrom maps the configured weights onto scorer weights. An all-zero
// section selects the stock weighting rather than a scorer that returns
// zero for everything.
func weightsFrom(cfg config.WeightsConfig) scoring.Weights {
	w := scoring.Weights{
		External:           cfg.External,
		Entropy:            cfg.Entropy,
		SilenceDynamics:    cfg.SilenceDynamics,
		EncoderFingerprint: cfg.EncoderFingerprint,
		SizeFactor:         cfg.SizeFactor,
	}
	if w == (scoring.Weights{}) {
		return scoring.DefaultWeights()
	}
	return w
}

// observedClassifier wraps a classifier so every call lands in the
// upstream call metrics with a settled outcome and its latency.
type observedClassifier struct {
	classify.Classifier
	collector *metrics.Collector
}

func (o *observedClassifier) Classify(ctx context.Context, artifact *intake.Artifact) (*classify.Signal, error) {
	start := time.Now()
	signal, err := o.Classifier.Classify(ctx, artifact)
	o.collector.RecordUpstreamCall(o.Name(), upstreamOutcome(err), time.Since(start))
	return signal, err
}

// upstreamOutcome folds a classification error into the outcome vocabulary
// of the upstream call metrics.
func upstreamOutcome(err error) string {
	if err == nil {
		return "ok"
	}

	var (
		timeoutErr *classify.TimeoutError
		authErr    *classify.AuthError
		rateErr    *classify.RateLimitError
		extractErr *classify.ExtractionError
	)
	switch {
	case errors.As(err, &timeoutErr):
		return "timeout"
	case errors.As(err, &authErr):
		return "auth"
	case errors.As(err, &rateErr):
		return "rate_limited"
	case errors.As(err, &extractErr):
		return "malformed"
	default:
		return "error"
	}
}

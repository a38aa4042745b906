package report

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"veristone-hq/clarion/pkg/analysis"
	"veristone-hq/clarion/pkg/classify"
	"veristone-hq/clarion/pkg/intake"
	"veristone-hq/clarion/pkg/scoring"
)

// Assembler builds immutable trust reports and hands them to the configured
// forwarder. Assembly is synchronous and cheap; forwarding never blocks.
type Assembler struct {
	forwarder Forwarder
	logger    *slog.Logger
}

// NewAssembler creates an assembler. A nil forwarder disables forwarding;
// reports are still built and returned.
func NewAssembler(forwarder Forwarder) *Assembler {
	return &Assembler{
		forwarder: forwarder,
		logger:    slog.Default().With("component", "report.assembler"),
	}
}

// Assemble builds the trust report for one analyzed artifact. The signal
// slice and score breakdown are copied so the report stays stable even if
// the caller reuses its inputs.
func (a *Assembler) Assemble(ctx context.Context, artifact *intake.Artifact, features analysis.FeatureSet, signals []classify.Signal, result scoring.Result) *TrustReport {
	copiedSignals := make([]classify.Signal, len(signals))
	copy(copiedSignals, signals)

	breakdown := make(map[string]float64, len(result.Breakdown))
	for component, contribution := range result.Breakdown {
		breakdown[component] = contribution
	}

	trustReport := &TrustReport{
		ID: uuid.New().String(),
		Metadata: Metadata{
			Digest:    Digest(artifact.Data),
			Filename:  artifact.Filename,
			MIMEType:  artifact.MIMEType,
			SizeBytes: artifact.Size,
			Source:    string(artifact.Source),
		},
		Features:       features,
		Signals:        copiedSignals,
		CompositeScore: result.CompositeScore,
		Method:         result.Method,
		Breakdown:      breakdown,
		ProcessedAt:    time.Now().UTC(),
	}

	a.logger.Debug("report assembled",
		"report_id", trustReport.ID,
		"digest", trustReport.Metadata.Digest,
		"composite_score", trustReport.CompositeScore,
		"method", trustReport.Method,
		"signals", len(trustReport.Signals),
	)

	if a.forwarder != nil {
		a.forwarder.Emit(ctx, trustReport)
	}

	return trustReport
}

package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/herobook/pkg/observability"
)

// newLogger creates a logger with "HH:MM:SS.ms" timestamps.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs completion of an operation with its elapsed time.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time, e.g. "Rendered ORDER-1 (1.234s)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// stageHooks forwards render stage events to the spinner and debug log.
type stageHooks struct {
	observability.NoopRenderHooks
	spinner *Spinner
	logger  *log.Logger
}

func (h *stageHooks) OnStageStart(_ context.Context, orderID, stage string) {
	if h.spinner != nil {
		h.spinner.SetMessage(stageMessage(orderID, stage))
	}
}

func (h *stageHooks) OnStageComplete(_ context.Context, orderID, stage string, d time.Duration, err error) {
	h.logger.Debug("stage", "order", orderID, "stage", stage, "duration", d.Round(time.Millisecond), "err", err)
}

func (h *stageHooks) OnAssetSkipped(_ context.Context, pageID, asset, reason string) {
	h.logger.Debug("skipped", "page", pageID, "asset", asset, "reason", reason)
}

func stageMessage(orderID, stage string) string {
	switch stage {
	case "validating":
		return "Validating " + orderID + "..."
	case "composing":
		return "Composing story pages..."
	case "composing_dedication":
		return "Composing dedication..."
	case "composing_keepsake":
		return "Composing keepsake page..."
	case "building_cover":
		return "Building cover..."
	case "finalized":
		return "Writing PDFs..."
	}
	return stage + "..."
}

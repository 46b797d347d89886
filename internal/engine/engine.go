package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/sentinel/internal/chat"
	"github.com/MikeSquared-Agency/sentinel/internal/events"
	"github.com/MikeSquared-Agency/sentinel/internal/mapping"
	"github.com/MikeSquared-Agency/sentinel/internal/report"
	"github.com/MikeSquared-Agency/sentinel/internal/sla"
	"github.com/MikeSquared-Agency/sentinel/internal/timeline"
)

// ValidationError marks a request the caller got wrong; the API maps it to a
// 400 rather than a generic server fault.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func badRequest(format string, args ...any) *ValidationError {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// Publisher is the event bus surface the engine needs. Nil disables events.
type Publisher interface {
	Publish(subject string, data any) error
}

// Notifier posts breach summaries to humans. Nil disables alerts.
type Notifier interface {
	PostBreachSummary(ctx context.Context, reportID string, rows []report.Row) error
}

// Request is the report-generation contract. ChatText and CutoffDate are
// required; everything else gets a best-effort default.
type Request struct {
	ChatText   string
	CutoffDate string
	SLAMinutes int
	MappingCSV string
	Policy     string
}

// Result carries the assembled report plus run metadata.
type Result struct {
	ReportID     string
	Policy       string
	MappingCount int
	Report       *report.Report
}

// Engine runs the report pipeline: parse, group, classify, assemble, fan out.
type Engine struct {
	cache         *mapping.Cache
	rules         sla.Rules
	publisher     Publisher
	notifier      Notifier
	defaultPolicy string
	defaultSLA    time.Duration
	logger        *slog.Logger
	now           func() time.Time
}

// New builds an engine. defaultSLA applies when a request carries no
// sla_minutes; zero falls through to the policy's own default window.
func New(cache *mapping.Cache, rules sla.Rules, pub Publisher, not Notifier, defaultPolicy string, defaultSLA time.Duration, logger *slog.Logger) *Engine {
	if defaultPolicy != sla.PolicyIntent {
		defaultPolicy = sla.PolicyAlternating
	}
	return &Engine{
		cache:         cache,
		rules:         rules,
		publisher:     pub,
		notifier:      not,
		defaultPolicy: defaultPolicy,
		defaultSLA:    defaultSLA,
		logger:        logger,
		now:           time.Now,
	}
}

// Generate produces one report. It is stateless apart from the memoized
// mapping table; every call recomputes from its inputs.
func (e *Engine) Generate(ctx context.Context, req Request) (*Result, error) {
	if req.ChatText == "" {
		return nil, badRequest("chat_text is required")
	}
	if req.CutoffDate == "" {
		return nil, badRequest("cutoff_date is required")
	}
	if req.SLAMinutes < 0 {
		return nil, badRequest("sla_minutes must be a positive integer")
	}

	policy := req.Policy
	if policy == "" {
		policy = e.defaultPolicy
	}
	if policy != sla.PolicyAlternating && policy != sla.PolicyIntent {
		return nil, badRequest("unknown policy %q", policy)
	}

	cutoff, err := chat.ParseCutoff(req.CutoffDate)
	if err != nil {
		return nil, badRequest("cutoff_date must be YYYY-MM-DD")
	}

	var table mapping.Table
	if req.MappingCSV != "" {
		table = mapping.Merge(mapping.ParseCSV(req.MappingCSV))
	} else {
		table = e.cache.Table(ctx)
	}

	msgs := chat.Parse(req.ChatText, cutoff)
	timelines := timeline.Build(msgs)

	window := time.Duration(req.SLAMinutes) * time.Minute
	if window == 0 {
		window = e.defaultSLA
	}
	classifier := sla.New(policy, window, e.rules)
	now := e.now()

	results := make([]sla.Result, 0, len(timelines))
	for _, tl := range timelines {
		results = append(results, classifier.Classify(tl, table[tl.PID].Merch, now))
	}

	rep := report.Assemble(results, table)
	res := &Result{
		ReportID:     uuid.NewString(),
		Policy:       policy,
		MappingCount: len(table),
		Report:       rep,
	}

	e.logger.Info("report generated",
		"report_id", res.ReportID,
		"policy", policy,
		"messages", len(msgs),
		"timelines", len(timelines),
		"rows", len(rep.Rows),
		"matched_pids", rep.MatchedPIDs,
	)

	e.fanOut(ctx, res)
	return res, nil
}

// fanOut emits breach events and the Slack summary. Failures are logged and
// never fail the report.
func (e *Engine) fanOut(ctx context.Context, res *Result) {
	breached := 0
	for _, row := range res.Report.Rows {
		if row.Status != string(sla.StatusBreached) {
			continue
		}
		breached++
		if e.publisher != nil {
			evt := events.BreachEvent{
				ReportID:      res.ReportID,
				PID:           row.PID,
				Designer:      row.Designer,
				AssignedMerch: row.AssignedMerch,
				QueryAt:       row.QueryAt,
				Policy:        res.Policy,
			}
			if err := e.publisher.Publish(events.SubjectBreach, evt); err != nil {
				e.logger.Warn("failed to publish breach event", "pid", row.PID, "error", err)
			}
		}
	}

	if e.publisher != nil {
		evt := events.ReportEvent{
			ReportID:     res.ReportID,
			Policy:       res.Policy,
			Rows:         len(res.Report.Rows),
			Breached:     breached,
			MappingCount: res.MappingCount,
			Timestamp:    e.now().UTC().Format(time.RFC3339),
		}
		if err := e.publisher.Publish(events.SubjectReportGenerated, evt); err != nil {
			e.logger.Warn("failed to publish report event", "report_id", res.ReportID, "error", err)
		}
	}

	if e.notifier != nil && breached > 0 {
		if err := e.notifier.PostBreachSummary(ctx, res.ReportID, res.Report.Rows); err != nil {
			e.logger.Warn("failed to post breach summary", "report_id", res.ReportID, "error", err)
		}
	}
}

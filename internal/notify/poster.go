package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/slack-go/slack"

	"github.com/MikeSquared-Agency/sentinel/internal/report"
	"github.com/MikeSquared-Agency/sentinel/internal/sla"
)

// maxListed caps how many breached PIDs get their own line in an alert.
const maxListed = 10

// Poster sends SLA breach summaries to a Slack channel.
type Poster struct {
	client  *slack.Client
	channel string
	logger  *slog.Logger
}

func NewPoster(token, channel string, logger *slog.Logger) *Poster {
	return &Poster{
		client:  slack.New(token),
		channel: channel,
		logger:  logger,
	}
}

// PostBreachSummary posts one message summarising the breached rows of a
// report. Rows with other statuses are ignored.
func (p *Poster) PostBreachSummary(ctx context.Context, reportID string, rows []report.Row) error {
	var breached []report.Row
	for _, r := range rows {
		if r.Status == string(sla.StatusBreached) {
			breached = append(breached, r)
		}
	}
	if len(breached) == 0 {
		return nil
	}

	text := formatBreachMessage(reportID, breached)
	_, _, err := p.client.PostMessageContext(ctx, p.channel,
		slack.MsgOptionText(text, false),
		slack.MsgOptionDisableLinkUnfurl(),
	)
	if err != nil {
		return fmt.Errorf("slack post: %w", err)
	}
	p.logger.Info("breach summary posted", "report_id", reportID, "breached", len(breached))
	return nil
}

func formatBreachMessage(reportID string, breached []report.Row) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, ":rotating_light: *%d PID(s) breached SLA* (report %s)\n", len(breached), reportID)
	for i, r := range breached {
		if i == maxListed {
			fmt.Fprintf(&sb, "and %d more\n", len(breached)-maxListed)
			break
		}
		merch := r.AssignedMerch
		if merch == "" {
			merch = "unassigned"
		}
		fmt.Fprintf(&sb, "• *%s* — %s — open since %s\n", r.PID, merch, r.QueryAt)
	}
	return sb.String()
}

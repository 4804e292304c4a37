// Package notify is the Notifier component (C11): a single interface that
// forwards execution outcomes to an external UI surface's webhook, the
// same short-timeout/non-retried delivery shape this codebase's alert
// system uses for Slack/Discord/SIEM webhooks. Delivery is synchronous:
// Notify returns once the webhook call completes or times out.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"text/template"
	"time"

	"github.com/rs/zerolog"

	"github.com/rawblock/solana-sniper/pkg/models"
)

// Message is what gets delivered to a user about one execution outcome.
type Message struct {
	UserID    string                `json:"userId"`
	Mint      string                `json:"mint"`
	State     models.ExecutionState `json:"state"`
	Text      string                `json:"text"`
	Execution models.SnipeExecution `json:"execution"`
}

// Notifier delivers a Message to whatever external surface owns user
// communication; the engine never talks to Telegram/Discord/etc directly.
type Notifier interface {
	Notify(ctx context.Context, userID string, msg Message) error
}

var templates = map[models.ExecutionState]*template.Template{
	models.StateSucceeded: template.Must(template.New("succeeded").Parse(
		"Bought {{.Execution.TokenAmount}} of {{.Mint}} for {{.Execution.QuoteAmount}} ({{.Execution.TxSignature}})")),
	models.StateFailed: template.Must(template.New("failed").Parse(
		"Snipe on {{.Mint}} failed: {{.Execution.FailureReason}}")),
	models.StateSkipped: template.Must(template.New("skipped").Parse(
		"Snipe on {{.Mint}} skipped: {{.Execution.SkipReason}}")),
}

// BuildMessage renders the configured template for execution's terminal
// state. Collapsing the old success/failure-specific builders into one
// template table resolves DESIGN.md's Open Question 1.
func BuildMessage(userID string, execution models.SnipeExecution) (Message, error) {
	tmpl, ok := templates[execution.State]
	if !ok {
		return Message{}, fmt.Errorf("notify: no template for state %q", execution.State)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, struct{ Mint string; Execution models.SnipeExecution }{execution.Mint, execution}); err != nil {
		return Message{}, fmt.Errorf("notify: render template: %w", err)
	}

	return Message{
		UserID:    userID,
		Mint:      execution.Mint,
		State:     execution.State,
		Text:      buf.String(),
		Execution: execution,
	}, nil
}

// WebhookNotifier forwards Messages to a single configured webhook URL.
type WebhookNotifier struct {
	httpClient *http.Client
	url        string
	log        zerolog.Logger
}

// NewWebhookNotifier builds a notifier with a 5s delivery timeout.
func NewWebhookNotifier(url string, logger zerolog.Logger) *WebhookNotifier {
	return &WebhookNotifier{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		url:        url,
		log:        logger,
	}
}

// Notify posts msg as JSON. Delivery failure is logged, not retried: a
// missed notification must never block or fail the execution it reports.
func (n *WebhookNotifier) Notify(ctx context.Context, userID string, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("notify: marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("notify: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		n.log.Warn().Err(err).Str("user_id", userID).Msg("notify webhook delivery failed")
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		n.log.Warn().Int("status", resp.StatusCode).Str("user_id", userID).Msg("notify webhook returned error status")
	}
	return nil
}

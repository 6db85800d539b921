package notify

import (
	"context"
	"os"

	"github.com/slack-go/slack"
	"github.com/spf13/viper"
)

// Event types
const (
	EventStart   = "on_start"
	EventSuccess = "on_success"
	EventFailure = "on_failure"
)

// slackPoster is the slice of the Slack client the manager needs. Tests
// substitute a mock.
type slackPoster interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// Manager sends run notifications to Slack. Follow-up events thread under the
// run's first message via the returned timestamp.
type Manager struct {
	client    slackPoster
	webhook   *WebhookNotifier
	channelID string
	logger    func(string, ...interface{})
}

// NewManager creates a notification manager configured from viper and the
// environment. Without a token or webhook URL it degrades to a no-op.
func NewManager(logger func(string, ...interface{})) *Manager {
	m := &Manager{logger: logger}
	m.initSlack()
	return m
}

func (m *Manager) initSlack() {
	if !viper.GetBool("notifications.slack.enabled") {
		return
	}

	botToken := os.Getenv("SLACK_BOT_USER_TOKEN")
	if botToken == "" {
		if webhookURL := viper.GetString("notifications.slack.webhook_url"); webhookURL != "" {
			m.webhook = NewWebhookNotifier(webhookURL)
			return
		}
		if m.logger != nil {
			m.logger("Warning: SLACK_BOT_USER_TOKEN not set, slack notifications disabled")
		}
		return
	}

	m.client = slack.New(botToken)
	m.channelID = viper.GetString("notifications.slack.channel")
}

// Notify sends a notification if the event is enabled in configuration. It
// returns the Slack message timestamp so later events can thread under it.
// Delivery failures are logged, never propagated: a run must not fail because
// a notification did.
func (m *Manager) Notify(ctx context.Context, eventType string, message string, threadTS string) (string, error) {
	if !m.isEnabled(eventType) {
		return "", nil
	}

	if m.logger != nil {
		m.logger("Sending notification for event: %s", eventType)
	}

	if m.client != nil {
		newTS, err := m.notifySlack(ctx, eventType, message, threadTS)
		if err != nil {
			if m.logger != nil {
				m.logger("Failed to send Slack notification: %v", err)
			}
			return "", nil
		}
		return newTS, nil
	}

	if m.webhook != nil {
		title, _ := getStyle(eventType)
		if err := m.webhook.Notify(ctx, title+": "+message); err != nil && m.logger != nil {
			m.logger("Failed to send Slack webhook notification: %v", err)
		}
	}
	return "", nil
}

func (m *Manager) notifySlack(ctx context.Context, eventType, message, threadTS string) (string, error) {
	channelID := m.channelID
	if channelID == "" {
		channelID = "#general"
	}

	title, color := getStyle(eventType)
	opts := []slack.MsgOption{
		slack.MsgOptionAttachments(slack.Attachment{
			Title: title,
			Text:  message,
			Color: color,
		}),
	}
	if threadTS != "" {
		opts = append(opts, slack.MsgOptionTS(threadTS))
	}

	_, newTS, err := m.client.PostMessageContext(ctx, channelID, opts...)
	if err != nil {
		return "", err
	}
	return newTS, nil
}

func (m *Manager) isEnabled(eventType string) bool {
	if !viper.GetBool("notifications.slack.enabled") {
		return false
	}
	return viper.GetBool("notifications.slack.events." + eventType)
}

// getStyle maps an event to the attachment title and color bar.
func getStyle(eventType string) (string, string) {
	switch eventType {
	case EventStart:
		return "🔍 Analysis started", "#3498db"
	case EventSuccess:
		return "✅ Analysis succeeded", "#2eb886"
	case EventFailure:
		return "❌ Analysis failed", "#a30200"
	}
	return "📢 Notification", "#808080"
}

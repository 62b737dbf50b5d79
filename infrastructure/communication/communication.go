package communication

import (
	"fmt"
	"os"

	"github.com/slack-go/slack"
)

type Slack struct {
	client  *slack.Client
	options SlackOption
}

type SlackOption struct {
	InfoChannelID  string
	AlertChannelID string
}

func ConnectSlack() *Slack {
	token := os.Getenv("SLACK_BOT_TOKEN")
	infoCh := os.Getenv("SLACK_INFO_CHANNEL")
	alertCh := os.Getenv("SLACK_ALERT_CHANNEL")

	return NewSlack(token, SlackOption{InfoChannelID: infoCh, AlertChannelID: alertCh})
}

func NewSlack(token string, options SlackOption) *Slack {
	client := slack.New(token)
	return &Slack{client: client, options: options}
}

func (s *Slack) postMessage(channelID, message string) error {
	_, _, err := s.client.PostMessage(
		channelID,
		slack.MsgOptionText(message, false),
		slack.MsgOptionAsUser(true),
	)
	if err != nil {
		return fmt.Errorf("failed to post message to Slack: %w", err)
	}
	return nil
}

// LateArrival reports a check-in past the shift's grace period.
func (s *Slack) LateArrival(name, shift, at string) error {
	return s.postMessage(s.options.InfoChannelID,
		fmt.Sprintf("Late check-in: %s (shift %s) at %s", name, shift, at))
}

// StoreUnavailable reports a failed store operation.
func (s *Slack) StoreUnavailable(op string, err error) error {
	return s.postMessage(s.options.AlertChannelID,
		fmt.Sprintf("Attendance store unreachable during %s: %v", op, err))
}

package notify

import (
	"context"
	"fmt"
	"strings"

	"f0oster/pneaudit/activedirectory"
	"f0oster/pneaudit/activedirectory/transformers"

	"github.com/google/uuid"
	slacklib "github.com/slack-go/slack"
)

// SlackAPI abstracts the subset of the Slack client used by SlackNotifier.
type SlackAPI interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slacklib.MsgOption) (string, string, error)
}

// SlackNotifier posts a summary of newly flagged accounts to a channel.
type SlackNotifier struct {
	api       SlackAPI
	channelID string
	host      string
}

func NewSlackNotifier(api SlackAPI, channelID, host string) *SlackNotifier {
	return &SlackNotifier{api: api, channelID: channelID, host: host}
}

// NewSlackNotifierFromToken builds a notifier on a bot token.
func NewSlackNotifierFromToken(token, channelID, host string) *SlackNotifier {
	return NewSlackNotifier(slacklib.New(token), channelID, host)
}

// NotifyNewAccounts posts nothing when accounts is empty.
func (n *SlackNotifier) NotifyNewAccounts(ctx context.Context, runID uuid.UUID, accounts []activedirectory.Account) error {
	if len(accounts) == 0 {
		return nil
	}

	text := FormatNewAccounts(n.host, runID, accounts)
	if _, _, err := n.api.PostMessageContext(ctx, n.channelID, slacklib.MsgOptionText(text, false)); err != nil {
		return fmt.Errorf("notify.SlackNotifier.NotifyNewAccounts: %w", err)
	}
	return nil
}

// FormatNewAccounts renders the notification body.
func FormatNewAccounts(host string, runID uuid.UUID, accounts []activedirectory.Account) string {
	var b strings.Builder
	fmt.Fprintf(&b, ":warning: %d new account(s) with password never expires (host %s, run %s)\n", len(accounts), host, runID)
	for _, a := range accounts {
		fmt.Fprintf(&b, "• %s (%s, %s) last logon %s\n",
			a.UserPrincipalName, a.DisplayName, a.SAMAccountName, transformers.FormatFileTime(a.LastLogon))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

package notification

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/frahmantamala/fuel-station-management/internal/core/events"
)

// RecipientDirectory answers who hears about a station: its company owner and its manager.
type RecipientDirectory interface {
	StationRecipients(ctx context.Context, stationID int64) ([]Recipient, error)
}

type Composer struct {
	directory RecipientDirectory
	from      string
	resetURL  string
}

func NewComposer(directory RecipientDirectory, from, resetURL string) *Composer {
	return &Composer{directory: directory, from: from, resetURL: resetURL}
}

// Compose maps an event to the messages it should produce. Unknown events produce none.
func (c *Composer) Compose(ctx context.Context, event events.Event) ([]Message, error) {
	switch e := event.(type) {
	case *events.UserCreatedEvent:
		return []Message{c.welcome(e)}, nil
	case *events.PasswordResetRequestedEvent:
		return []Message{c.passwordReset(e)}, nil
	case *events.InventoryAlertEvent:
		return c.inventory(ctx, e)
	}
	return nil, nil
}

func (c *Composer) welcome(e *events.UserCreatedEvent) Message {
	body := fmt.Sprintf("Hello %s,\n\nAn account with the role %q has been created for you.\nUsername: %s\n",
		displayName(e.FullName, e.Username), e.Role, e.Username)
	return newMessage(e.EventID(), e.EventType(), c.from, []string{e.Email}, "Your fuel station account", body)
}

func (c *Composer) passwordReset(e *events.PasswordResetRequestedEvent) Message {
	link := c.resetURL
	if link != "" {
		sep := "?"
		if strings.Contains(link, "?") {
			sep = "&"
		}
		link += sep + "token=" + url.QueryEscape(e.Token)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\nA password reset was requested for your account.\n", displayName(e.FullName, e.Email))
	if link != "" {
		fmt.Fprintf(&b, "Open %s to choose a new password.\n", link)
	} else {
		fmt.Fprintf(&b, "Reset token: %s\n", e.Token)
	}
	fmt.Fprintf(&b, "The link expires at %s. If you did not ask for this, ignore this email.\n",
		e.ExpiresAt.UTC().Format("2006-01-02 15:04 MST"))

	return newMessage(e.EventID(), e.EventType(), c.from, []string{e.Email}, "Password reset", b.String())
}

func (c *Composer) inventory(ctx context.Context, e *events.InventoryAlertEvent) ([]Message, error) {
	recipients, err := c.directory.StationRecipients(ctx, e.StationID)
	if err != nil {
		return nil, fmt.Errorf("look up recipients for station %d: %w", e.StationID, err)
	}
	to := addresses(recipients)
	if len(to) == 0 {
		return nil, nil
	}

	var subject, body string
	switch e.EventType() {
	case events.EventTypeInventoryLow:
		subject = fmt.Sprintf("Low %s inventory", e.FuelType)
		body = e.Description + "\n"
	case events.EventTypeInventoryRestored:
		subject = fmt.Sprintf("%s inventory restored", e.FuelType)
		body = fmt.Sprintf("%s inventory is back to %.2f L, above the minimum threshold of %.2f L.\n",
			e.FuelType, e.Quantity, e.MinThreshold)
	default:
		return nil, nil
	}
	return []Message{newMessage(e.EventID(), e.EventType(), c.from, to, subject, body)}, nil
}

func addresses(recipients []Recipient) []string {
	seen := make(map[string]bool, len(recipients))
	var out []string
	for _, r := range recipients {
		email := strings.ToLower(strings.TrimSpace(r.Email))
		if email == "" || seen[email] {
			continue
		}
		seen[email] = true
		out = append(out, email)
	}
	return out
}

func displayName(name, fallback string) string {
	if strings.TrimSpace(name) == "" {
		return fallback
	}
	return name
}

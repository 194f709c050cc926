package telegram

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
)

// Kind is the closed set of Telegram failures the reconcilers react to.
type Kind string

const (
	KindNotFound          Kind = "not_found"
	KindBotKicked         Kind = "bot_kicked"
	KindSupergroupUpgrade Kind = "supergroup_upgrade"
	KindOther             Kind = "other"
)

// ChatAPIError is a classified Telegram Bot API failure.
type ChatAPIError struct {
	Kind    Kind
	Method  string
	ChatID  int64
	Message string
	// MigrateToChatID is set for KindSupergroupUpgrade when Telegram reported
	// the new supergroup id.
	MigrateToChatID int64
	Err             error
}

func (e *ChatAPIError) Error() string {
	if e.Method == "" {
		return fmt.Sprintf("telegram %s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("telegram %s chat %d: %s: %s", e.Method, e.ChatID, e.Kind, e.Message)
}

func (e *ChatAPIError) Unwrap() error { return e.Err }

var migrateToPattern = regexp.MustCompile(`migrate_to_chat_id[":\s]+(-?\d+)`)

// Classify converts a raw Bot API error into a ChatAPIError. It is the only
// place that inspects Telegram error text. A nil error yields nil.
func Classify(err error) *ChatAPIError {
	if err == nil {
		return nil
	}

	var classified *ChatAPIError
	if errors.As(err, &classified) {
		return classified
	}

	apiErr := &ChatAPIError{Kind: KindOther, Message: err.Error(), Err: err}

	var migrateErr *bot.MigrateError
	if errors.As(err, &migrateErr) {
		apiErr.Kind = KindSupergroupUpgrade
		apiErr.MigrateToChatID = int64(migrateErr.MigrateToChatID)
		return apiErr
	}

	text := strings.ToLower(apiErr.Message)
	switch {
	case strings.Contains(text, "upgraded to a supergroup"), strings.Contains(text, "migrate_to_chat_id"):
		apiErr.Kind = KindSupergroupUpgrade
		if m := migrateToPattern.FindStringSubmatch(text); m != nil {
			if id, parseErr := strconv.ParseInt(m[1], 10, 64); parseErr == nil {
				apiErr.MigrateToChatID = id
			}
		}
	case strings.Contains(text, "bot was kicked"), strings.Contains(text, "bot is not a member"):
		apiErr.Kind = KindBotKicked
	case strings.Contains(text, "chat not found"):
		apiErr.Kind = KindNotFound
	}
	return apiErr
}

// IsKind reports whether err classifies as the given kind.
func IsKind(err error, kind Kind) bool {
	c := Classify(err)
	return c != nil && c.Kind == kind
}

// isTransient reports whether a raw client error is worth retrying. Telegram
// answered with a definite 4xx verdict for every error it wraps in one of the
// bot package sentinels, so those are final.
func isTransient(err error) bool {
	var migrateErr *bot.MigrateError
	if errors.As(err, &migrateErr) {
		return false
	}
	for _, final := range []error{bot.ErrorBadRequest, bot.ErrorForbidden, bot.ErrorUnauthorized, bot.ErrorNotFound, bot.ErrorConflict} {
		if errors.Is(err, final) {
			return false
		}
	}
	return true
}

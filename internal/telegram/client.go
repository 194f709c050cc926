// Package telegram wraps the Telegram Bot API calls used by the reconcilers.
package telegram

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"orbo/internal/config"
	"orbo/internal/logger"
)

const (
	methodGetChatAdministrators = "getChatAdministrators"
	methodGetChat               = "getChat"

	statusCreator       = "creator"
	statusAdministrator = "administrator"
)

// ChatAdmin is one entry of a chat's administrator list.
type ChatAdmin struct {
	UserID             int64
	Username           string
	FirstName          string
	LastName           string
	IsBot              bool
	Status             string
	CustomTitle        string
	CanManageChat      bool
	CanDeleteMessages  bool
	CanRestrictMembers bool
	CanPromoteMembers  bool
	CanChangeInfo      bool
	CanInviteUsers     bool
	CanPinMessages     bool
}

// IsCreator reports whether the admin owns the chat.
func (a ChatAdmin) IsCreator() bool { return a.Status == statusCreator }

// ChatInfo is the subset of getChat the reconcilers use.
type ChatInfo struct {
	ID         int64
	Title      string
	Type       string
	InviteLink string
	// MigratedToChatID is non-zero when the chat was upgraded and Telegram
	// reported the new supergroup id.
	MigratedToChatID int64
}

// Options configures a Client.
type Options struct {
	Token        string
	APIURL       string
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
}

// OptionsFromConfig builds client options from the application config.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Token:        cfg.TelegramBotToken,
		APIURL:       cfg.TelegramAPIURL,
		Timeout:      cfg.TelegramRequestTimeout,
		MaxRetries:   cfg.TelegramMaxRetries,
		RetryBackoff: cfg.TelegramRetryBackoff,
	}
}

// Client calls the Bot API with a per-attempt timeout and retries transient
// failures. Every error it returns is a *ChatAPIError.
type Client struct {
	api          *bot.Bot
	timeout      time.Duration
	maxRetries   int
	retryBackoff time.Duration
}

// ErrNoToken is returned by NewClient when no bot token is configured.
var ErrNoToken = errors.New("telegram bot token is not configured")

// NewClient creates a Client. It does not contact Telegram.
func NewClient(opts Options) (*Client, error) {
	if opts.Token == "" {
		return nil, ErrNoToken
	}

	botOpts := []bot.Option{bot.WithSkipGetMe()}
	if opts.APIURL != "" {
		botOpts = append(botOpts, bot.WithServerURL(opts.APIURL))
	}

	api, err := bot.New(opts.Token, botOpts...)
	if err != nil {
		return nil, err
	}

	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = 500 * time.Millisecond
	}

	return &Client{
		api:          api,
		timeout:      opts.Timeout,
		maxRetries:   opts.MaxRetries,
		retryBackoff: opts.RetryBackoff,
	}, nil
}

// GetChatAdministrators returns the live administrator list of a chat.
func (c *Client) GetChatAdministrators(ctx context.Context, chatID int64) ([]ChatAdmin, error) {
	var members []models.ChatMember
	err := c.call(ctx, methodGetChatAdministrators, chatID, func(callCtx context.Context) error {
		var err error
		members, err = c.api.GetChatAdministrators(callCtx, &bot.GetChatAdministratorsParams{ChatID: chatID})
		return err
	})
	if err != nil {
		return nil, err
	}

	admins := make([]ChatAdmin, 0, len(members))
	for i := range members {
		if admin, ok := toChatAdmin(&members[i]); ok {
			admins = append(admins, admin)
		}
	}
	return admins, nil
}

// GetChat returns chat metadata. When the chat has been upgraded to a
// supergroup the call fails, and the returned ChatInfo carries the new id
// alongside the classified error.
func (c *Client) GetChat(ctx context.Context, chatID int64) (*ChatInfo, error) {
	var info *ChatInfo
	err := c.call(ctx, methodGetChat, chatID, func(callCtx context.Context) error {
		chat, err := c.api.GetChat(callCtx, &bot.GetChatParams{ChatID: chatID})
		if err != nil {
			return err
		}
		info = &ChatInfo{
			ID:         chat.ID,
			Title:      chat.Title,
			Type:       string(chat.Type),
			InviteLink: chat.InviteLink,
		}
		return nil
	})
	if err != nil {
		var apiErr *ChatAPIError
		if errors.As(err, &apiErr) && apiErr.Kind == KindSupergroupUpgrade && apiErr.MigrateToChatID != 0 {
			return &ChatInfo{ID: chatID, MigratedToChatID: apiErr.MigrateToChatID}, err
		}
		return nil, err
	}
	return info, nil
}

func (c *Client) call(ctx context.Context, method string, chatID int64, fn func(ctx context.Context) error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.retryBackoff
	policy.MaxElapsedTime = 0

	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		err := fn(callCtx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil || !isTransient(err) {
			return backoff.Permanent(err)
		}
		logger.Get().Warnw("transient telegram error",
			"method", method,
			"chat_id", chatID,
			"attempt", attempt,
			"error", err,
		)
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(policy, uint64(c.maxRetries)), ctx))
	if err == nil {
		return nil
	}

	apiErr := Classify(err)
	apiErr.Method = method
	apiErr.ChatID = chatID
	return apiErr
}

func toChatAdmin(member *models.ChatMember) (ChatAdmin, bool) {
	switch member.Type {
	case models.ChatMemberTypeOwner:
		if member.Owner == nil || member.Owner.User == nil {
			return ChatAdmin{}, false
		}
		u := member.Owner.User
		return ChatAdmin{
			UserID:             u.ID,
			Username:           u.Username,
			FirstName:          u.FirstName,
			LastName:           u.LastName,
			IsBot:              u.IsBot,
			Status:             statusCreator,
			CustomTitle:        member.Owner.CustomTitle,
			CanManageChat:      true,
			CanDeleteMessages:  true,
			CanRestrictMembers: true,
			CanPromoteMembers:  true,
			CanChangeInfo:      true,
			CanInviteUsers:     true,
			CanPinMessages:     true,
		}, true
	case models.ChatMemberTypeAdministrator:
		if member.Administrator == nil {
			return ChatAdmin{}, false
		}
		a := member.Administrator
		return ChatAdmin{
			UserID:             a.User.ID,
			Username:           a.User.Username,
			FirstName:          a.User.FirstName,
			LastName:           a.User.LastName,
			IsBot:              a.User.IsBot,
			Status:             statusAdministrator,
			CustomTitle:        a.CustomTitle,
			CanManageChat:      a.CanManageChat,
			CanDeleteMessages:  a.CanDeleteMessages,
			CanRestrictMembers: a.CanRestrictMembers,
			CanPromoteMembers:  a.CanPromoteMembers,
			CanChangeInfo:      a.CanChangeInfo,
			CanInviteUsers:     a.CanInviteUsers,
			CanPinMessages:     a.CanPinMessages,
		}, true
	}
	return ChatAdmin{}, false
}

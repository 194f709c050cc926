package services

import (
	"context"
	"sync"

	"orbo/internal/events"
	"orbo/internal/telegram"
)

// fakeTelegram serves canned administrator lists and errors per chat.
type fakeTelegram struct {
	mu     sync.Mutex
	admins map[int64][]telegram.ChatAdmin
	errs   map[int64]error
	chats  map[int64]*telegram.ChatInfo
	calls  map[int64]int
}

func newFakeTelegram() *fakeTelegram {
	return &fakeTelegram{
		admins: make(map[int64][]telegram.ChatAdmin),
		errs:   make(map[int64]error),
		chats:  make(map[int64]*telegram.ChatInfo),
		calls:  make(map[int64]int),
	}
}

func (f *fakeTelegram) GetChatAdministrators(_ context.Context, chatID int64) ([]telegram.ChatAdmin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[chatID]++
	if err := f.errs[chatID]; err != nil {
		return nil, err
	}
	return f.admins[chatID], nil
}

func (f *fakeTelegram) GetChat(_ context.Context, chatID int64) (*telegram.ChatInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if info, ok := f.chats[chatID]; ok {
		return info, nil
	}
	return nil, &telegram.ChatAPIError{Kind: telegram.KindNotFound, Method: "getChat", ChatID: chatID, Message: "chat not found"}
}

func (f *fakeTelegram) callCount(chatID int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[chatID]
}

var _ TelegramClient = (*fakeTelegram)(nil)

func admin(userID int64, status string) telegram.ChatAdmin {
	return telegram.ChatAdmin{UserID: userID, Status: status, CanDeleteMessages: true}
}

// recordingPublisher keeps every published event in memory.
type recordingPublisher struct {
	mu         sync.Mutex
	migrated   []events.ChatMigratedEvent
	backfilled []events.ParticipantsBackfilledEvent
	err        error
}

func (p *recordingPublisher) ChatMigrated(_ context.Context, e events.ChatMigratedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.migrated = append(p.migrated, e)
	return p.err
}

func (p *recordingPublisher) ParticipantsBackfilled(_ context.Context, e events.ParticipantsBackfilledEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.backfilled = append(p.backfilled, e)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

var _ events.Publisher = (*recordingPublisher)(nil)

// countingMemberships records how often membership sync was requested.
type countingMemberships struct {
	calls []string
	err   error
}

func (m *countingMemberships) SyncTelegramAdmins(_ context.Context, orgID string) (*MembershipSyncResult, error) {
	m.calls = append(m.calls, orgID)
	if m.err != nil {
		return nil, m.err
	}
	return &MembershipSyncResult{}, nil
}

var _ MembershipSyncServicer = (*countingMemberships)(nil)

package services

import (
	"context"
	"sort"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"orbo/internal/config"
	"orbo/internal/database"
	apperrors "orbo/internal/errors"
	"orbo/internal/events"
	"orbo/internal/logger"
	"orbo/internal/models"
)

// backfillService creates missing participants from chat activity.
type backfillService struct {
	db         *gorm.DB
	audit      AuditServicer
	publisher  events.Publisher
	eventLimit int
	now        func() time.Time
}

// NewBackfillService creates a new BackfillServicer.
func NewBackfillService(db *gorm.DB, audit AuditServicer, publisher events.Publisher, cfg *config.Config) BackfillServicer {
	limit := cfg.BackfillEventLimit
	if limit <= 0 {
		limit = 5000
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &backfillService{db: db, audit: audit, publisher: publisher, eventLimit: limit, now: time.Now}
}

// candidate is a participant the organization should have but does not.
type candidate struct {
	identityID *string
	tgUserID   *int64
	username   string
	firstName  string
	lastName   string
	fullName   string
	lastSeen   *time.Time
}

func (c *candidate) touch(at *time.Time) {
	if at == nil {
		return
	}
	if c.lastSeen == nil || at.After(*c.lastSeen) {
		t := *at
		c.lastSeen = &t
	}
}

// crossOrgRow is a participant of another organization seen in one of the chats.
type crossOrgRow struct {
	IdentityID          *string
	TgUserID            *int64
	Username            string
	FirstName           string
	LastName            string
	FullName            string
	GroupLastActivityAt *time.Time
	LastActivityAt      *time.Time
}

// Backfill ensures every Telegram user active in the given chats has a
// non-merged participant row in the organization. Rows are synthesized in
// memory and written with one batch insert that skips conflicts, so repeated
// or overlapping runs converge.
func (s *backfillService) Backfill(ctx context.Context, req BackfillRequest) (*BackfillResult, error) {
	if req.OrgID == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Missing orgId")
	}
	log := logger.Get().With("org_id", req.OrgID)
	db := s.db.WithContext(ctx)

	var orgCount int64
	if err := db.Model(&models.Organization{}).Where("id = ?", req.OrgID).Count(&orgCount).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrBackfillFailed, err)
	}
	if orgCount == 0 {
		return nil, apperrors.ErrOrganizationNotFound
	}

	chatIDs, err := s.resolveChats(db, req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrBackfillFailed, err)
	}

	result := &BackfillResult{OrgID: req.OrgID, ChatIDs: chatIDs}
	if len(chatIDs) > 0 {
		rows, err := s.plan(db, req.OrgID, chatIDs)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrBackfillFailed, err)
		}
		if len(rows) > 0 {
			res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows)
			if res.Error != nil {
				return nil, apperrors.Wrap(apperrors.ErrBackfillFailed, res.Error)
			}
			result.Inserted = int(res.RowsAffected)
		}
	}

	if err := db.Model(&models.Participant{}).Scopes(models.NotMerged).
		Where("org_id = ?", req.OrgID).
		Count(&result.TotalParticipants).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrBackfillFailed, err)
	}

	log.Infow("participant backfill completed",
		"chats", len(chatIDs),
		"inserted", result.Inserted,
		"total_participants", result.TotalParticipants,
		"force", req.Force,
	)

	if s.audit != nil {
		s.audit.Log(req.ActorID, "BACKFILL", "participants", req.OrgID, req.IPAddress, map[string]interface{}{
			"chat_ids": chatIDs,
			"inserted": result.Inserted,
			"force":    req.Force,
		})
	}

	if result.Inserted > 0 {
		if err := s.publisher.ParticipantsBackfilled(ctx, events.ParticipantsBackfilledEvent{
			OrgID:    req.OrgID,
			ChatIDs:  chatIDs,
			Inserted: result.Inserted,
			RanAt:    s.now(),
		}); err != nil {
			log.Warnw("failed to publish backfill event", "error", err)
		}
	}

	return result, nil
}

// resolveChats returns the explicit chat list, deduplicated, or every chat
// bound to the organization.
func (s *backfillService) resolveChats(db *gorm.DB, req BackfillRequest) ([]int64, error) {
	if len(req.ChatIDs) > 0 {
		seen := make(map[int64]bool, len(req.ChatIDs))
		out := make([]int64, 0, len(req.ChatIDs))
		for _, id := range req.ChatIDs {
			if id == 0 || seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, id)
		}
		return out, nil
	}

	var chatIDs []int64
	err := db.Model(&models.OrgTelegramGroup{}).
		Where("org_id = ?", req.OrgID).
		Order("tg_chat_id").
		Pluck("tg_chat_id", &chatIDs).Error
	if chatIDs == nil {
		chatIDs = []int64{}
	}
	return chatIDs, err
}

// plan builds the participant rows to insert.
func (s *backfillService) plan(db *gorm.DB, orgID string, chatIDs []int64) ([]models.Participant, error) {
	byIdentity := make(map[string]*candidate)
	byUser := make(map[int64]*candidate)

	if err := s.collectActivity(db, chatIDs, byIdentity, byUser); err != nil {
		return nil, err
	}
	if err := s.collectCrossOrg(db, orgID, chatIDs, byIdentity, byUser); err != nil {
		return nil, err
	}
	if err := s.enrichIdentities(db, byIdentity, byUser); err != nil {
		return nil, err
	}

	existingIdentities, existingUsers, err := s.existing(db, orgID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	plannedUsers := make(map[int64]bool)
	rows := make([]models.Participant, 0, len(byIdentity)+len(byUser))

	identityIDs := make([]string, 0, len(byIdentity))
	for id := range byIdentity {
		identityIDs = append(identityIDs, id)
	}
	sort.Strings(identityIDs)

	for _, id := range identityIDs {
		c := byIdentity[id]
		if existingIdentities[id] {
			continue
		}
		if c.tgUserID != nil && (existingUsers[*c.tgUserID] || plannedUsers[*c.tgUserID]) {
			continue
		}
		if c.tgUserID != nil {
			plannedUsers[*c.tgUserID] = true
		}
		rows = append(rows, synthesize(orgID, c, now))
	}

	userIDs := make([]int64, 0, len(byUser))
	for id := range byUser {
		userIDs = append(userIDs, id)
	}
	sort.Slice(userIDs, func(i, j int) bool { return userIDs[i] < userIDs[j] })

	for _, id := range userIDs {
		if existingUsers[id] || plannedUsers[id] {
			continue
		}
		plannedUsers[id] = true
		rows = append(rows, synthesize(orgID, byUser[id], now))
	}

	return rows, nil
}

// collectActivity scans the most recent activity events of the chats. Events
// without a resolved identity are grouped by Telegram user id and resolved
// afterwards through telegram_identities.
func (s *backfillService) collectActivity(db *gorm.DB, chatIDs []int64, byIdentity map[string]*candidate, byUser map[int64]*candidate) error {
	var evts []models.TelegramActivityEvent
	err := db.Select("identity_id", "tg_user_id", "created_at").
		Where("tg_chat_id IN ?", chatIDs).
		Order("created_at DESC").
		Limit(s.eventLimit).
		Find(&evts).Error
	if err != nil {
		if database.IsUndefinedTable(err) {
			logger.Get().Warnw("activity log unavailable, skipping activity scan", "error", err)
			return nil
		}
		return err
	}

	for i := range evts {
		e := &evts[i]
		at := e.CreatedAt
		switch {
		case e.IdentityID != nil && *e.IdentityID != "":
			c := byIdentity[*e.IdentityID]
			if c == nil {
				c = &candidate{identityID: e.IdentityID}
				byIdentity[*e.IdentityID] = c
			}
			if c.tgUserID == nil && e.TgUserID != nil && *e.TgUserID != 0 {
				c.tgUserID = e.TgUserID
			}
			c.touch(&at)
		case e.TgUserID != nil && *e.TgUserID != 0:
			c := byUser[*e.TgUserID]
			if c == nil {
				c = &candidate{tgUserID: e.TgUserID}
				byUser[*e.TgUserID] = c
			}
			c.touch(&at)
		}
	}

	if len(byUser) == 0 {
		return nil
	}

	tgUserIDs := make([]int64, 0, len(byUser))
	for id := range byUser {
		tgUserIDs = append(tgUserIDs, id)
	}
	var identities []models.TelegramIdentity
	if err := db.Where("tg_user_id IN ?", tgUserIDs).Find(&identities).Error; err != nil {
		if database.IsUndefinedTable(err) {
			return nil
		}
		return err
	}
	for i := range identities {
		ident := &identities[i]
		raw := byUser[ident.TgUserID]
		delete(byUser, ident.TgUserID)

		c := byIdentity[ident.ID]
		if c == nil {
			id := ident.ID
			c = &candidate{identityID: &id}
			byIdentity[ident.ID] = c
		}
		c.touch(raw.lastSeen)
	}
	return nil
}

// collectCrossOrg surfaces users that other organizations have already
// recorded in the same chats.
func (s *backfillService) collectCrossOrg(db *gorm.DB, orgID string, chatIDs []int64, byIdentity map[string]*candidate, byUser map[int64]*candidate) error {
	var rows []crossOrgRow
	err := db.Table("participant_groups").
		Select("participants.identity_id, participants.tg_user_id, participants.username, participants.first_name, "+
			"participants.last_name, participants.full_name, participant_groups.last_activity_at AS group_last_activity_at, "+
			"participants.last_activity_at").
		Joins("JOIN participants ON participants.id = participant_groups.participant_id").
		Where("participant_groups.tg_group_id IN ?", chatIDs).
		Where("participants.org_id <> ? AND participants.merged_into IS NULL", orgID).
		Scan(&rows).Error
	if err != nil {
		if database.IsUndefinedTable(err) {
			logger.Get().Warnw("participant groups unavailable, skipping cross-org scan", "error", err)
			return nil
		}
		return err
	}

	for i := range rows {
		r := &rows[i]
		seen := r.GroupLastActivityAt
		if seen == nil {
			seen = r.LastActivityAt
		}

		var c *candidate
		switch {
		case r.IdentityID != nil && *r.IdentityID != "":
			c = byIdentity[*r.IdentityID]
			if c == nil {
				c = &candidate{identityID: r.IdentityID}
				byIdentity[*r.IdentityID] = c
			}
		case r.TgUserID != nil && *r.TgUserID != 0:
			c = byUser[*r.TgUserID]
			if c == nil {
				c = &candidate{tgUserID: r.TgUserID}
				byUser[*r.TgUserID] = c
			}
		default:
			continue
		}

		if c.tgUserID == nil && r.TgUserID != nil {
			c.tgUserID = r.TgUserID
		}
		if c.username == "" {
			c.username = r.Username
		}
		if c.firstName == "" && c.lastName == "" {
			c.firstName, c.lastName = r.FirstName, r.LastName
		}
		if c.fullName == "" {
			c.fullName = r.FullName
		}
		c.touch(seen)
	}
	return nil
}

// enrichIdentities fills names and Telegram user ids from the identity table.
// Identity fields win over anything copied from another organization.
// Candidates whose identity id has no row are re-keyed by Telegram user id
// when one is known and dropped otherwise.
func (s *backfillService) enrichIdentities(db *gorm.DB, byIdentity map[string]*candidate, byUser map[int64]*candidate) error {
	if len(byIdentity) == 0 {
		return nil
	}
	ids := make([]string, 0, len(byIdentity))
	for id := range byIdentity {
		ids = append(ids, id)
	}

	var identities []models.TelegramIdentity
	if err := db.Where("id IN ?", ids).Find(&identities).Error; err != nil {
		if database.IsUndefinedTable(err) {
			return nil
		}
		return err
	}

	found := make(map[string]bool, len(identities))
	for i := range identities {
		ident := &identities[i]
		found[ident.ID] = true
		c := byIdentity[ident.ID]
		tgUserID := ident.TgUserID
		c.tgUserID = &tgUserID
		if ident.Username != "" {
			c.username = ident.Username
		}
		if ident.FirstName != "" || ident.LastName != "" {
			c.firstName, c.lastName = ident.FirstName, ident.LastName
		}
		if ident.FullName != "" {
			c.fullName = ident.FullName
		}
	}

	for _, id := range ids {
		if found[id] {
			continue
		}
		c := byIdentity[id]
		delete(byIdentity, id)
		if c.tgUserID == nil || *c.tgUserID == 0 {
			logger.Get().Warnw("dropping backfill candidate with unknown identity", "identity_id", id)
			continue
		}
		c.identityID = nil
		if existing := byUser[*c.tgUserID]; existing != nil {
			existing.touch(c.lastSeen)
			continue
		}
		byUser[*c.tgUserID] = c
	}
	return nil
}

// existing returns the identity ids and Telegram user ids already present
// among the organization's non-merged participants.
func (s *backfillService) existing(db *gorm.DB, orgID string) (map[string]bool, map[int64]bool, error) {
	var current []models.Participant
	err := db.Select("identity_id", "tg_user_id").
		Scopes(models.NotMerged).
		Where("org_id = ?", orgID).
		Find(&current).Error
	if err != nil {
		return nil, nil, err
	}

	identities := make(map[string]bool, len(current))
	users := make(map[int64]bool, len(current))
	for _, p := range current {
		if p.IdentityID != nil {
			identities[*p.IdentityID] = true
		}
		if p.TgUserID != nil {
			users[*p.TgUserID] = true
		}
	}
	return identities, users, nil
}

func synthesize(orgID string, c *candidate, now time.Time) models.Participant {
	var tgUserID int64
	if c.tgUserID != nil {
		tgUserID = *c.tgUserID
	}
	seen := c.lastSeen
	if seen == nil {
		seen = &now
	}
	return models.Participant{
		OrgID:          orgID,
		IdentityID:     c.identityID,
		TgUserID:       c.tgUserID,
		Username:       c.username,
		FirstName:      c.firstName,
		LastName:       c.lastName,
		FullName:       models.DisplayName(c.fullName, c.firstName, c.lastName, c.username, tgUserID),
		Source:         models.ParticipantSourceTelegram,
		Status:         models.ParticipantStatusActive,
		LastActivityAt: seen,
		Merge:          models.Active(),
	}
}


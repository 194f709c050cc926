package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ParticipantSource records how a participant row was created.
type ParticipantSource string

const (
	ParticipantSourceManual   ParticipantSource = "manual"
	ParticipantSourceTelegram ParticipantSource = "telegram"
)

// ParticipantStatus is the CRM lifecycle state of a participant.
type ParticipantStatus string

const (
	ParticipantStatusActive   ParticipantStatus = "active"
	ParticipantStatusInactive ParticipantStatus = "inactive"
)

// MergeState is either active or merged into another participant. It is
// stored in the nullable merged_into column; NULL means active.
type MergeState struct {
	target string
}

// Active returns the state of a participant that has not been merged.
func Active() MergeState { return MergeState{} }

// MergedInto returns the state of a participant folded into targetID.
func MergedInto(targetID string) MergeState { return MergeState{target: targetID} }

// IsMerged reports whether the participant has been folded into another row.
func (m MergeState) IsMerged() bool { return m.target != "" }

// Target returns the id of the surviving participant, if merged.
func (m MergeState) Target() (string, bool) { return m.target, m.target != "" }

// Value implements driver.Valuer.
func (m MergeState) Value() (driver.Value, error) {
	if m.target == "" {
		return nil, nil
	}
	return m.target, nil
}

// Scan implements sql.Scanner.
func (m *MergeState) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		m.target = ""
	case string:
		m.target = v
	case []byte:
		m.target = string(v)
	default:
		return fmt.Errorf("unsupported merged_into type %T", value)
	}
	return nil
}

// MarshalJSON renders an active state as null and a merged one as the target id.
func (m MergeState) MarshalJSON() ([]byte, error) {
	if m.target == "" {
		return []byte("null"), nil
	}
	return json.Marshal(m.target)
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (m *MergeState) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		m.target = ""
		return nil
	}
	return json.Unmarshal(data, &m.target)
}

// Participant is an organization-scoped CRM record of a Telegram user.
// Among rows that are not merged, (org_id, identity_id) and (org_id, tg_user_id)
// are unique.
type Participant struct {
	Base
	OrgID          string            `gorm:"type:uuid;not null;index;uniqueIndex:idx_participants_org_identity,where:merged_into IS NULL;uniqueIndex:idx_participants_org_tg_user,where:merged_into IS NULL" json:"org_id"`
	IdentityID     *string           `gorm:"type:uuid;uniqueIndex:idx_participants_org_identity,where:merged_into IS NULL" json:"identity_id"`
	TgUserID       *int64            `gorm:"uniqueIndex:idx_participants_org_tg_user,where:merged_into IS NULL" json:"tg_user_id"`
	Username       string            `json:"username,omitempty"`
	FirstName      string            `json:"first_name,omitempty"`
	LastName       string            `json:"last_name,omitempty"`
	FullName       string            `gorm:"not null" json:"full_name"`
	Source         ParticipantSource `gorm:"size:32;not null" json:"source"`
	Status         ParticipantStatus `gorm:"size:32;not null" json:"status"`
	LastActivityAt *time.Time        `json:"last_activity_at,omitempty"`
	ActivityScore  *int              `json:"activity_score,omitempty"`
	RiskScore      *int              `json:"risk_score,omitempty"`
	Merge          MergeState        `gorm:"column:merged_into;type:uuid;index" json:"merged_into"`
}

// NotMerged is a GORM scope restricting a query to participants that have
// not been folded into another row.
func NotMerged(db *gorm.DB) *gorm.DB {
	return db.Where("merged_into IS NULL")
}

// ParticipantGroup links a participant to a Telegram chat it was seen in.
type ParticipantGroup struct {
	Base
	ParticipantID  string       `gorm:"type:uuid;not null;uniqueIndex:idx_participant_groups_participant_chat" json:"participant_id"`
	TgGroupID      int64        `gorm:"not null;uniqueIndex:idx_participant_groups_participant_chat;index" json:"tg_group_id"`
	LastActivityAt *time.Time   `json:"last_activity_at,omitempty"`
	Participant    *Participant `gorm:"foreignKey:ParticipantID" json:"participant,omitempty"`
}

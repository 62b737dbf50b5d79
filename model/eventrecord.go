package model

import "time"

// EventRecord is one processed recognition event in the local audit
// trail, whatever its outcome.
type EventRecord struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	Kind          string    `gorm:"size:16;index" json:"kind"`
	RawKey        string    `gorm:"size:64" json:"raw_key"`
	NormalizedKey string    `gorm:"size:64;index" json:"normalized_key"`
	Outcome       string    `gorm:"size:32;index" json:"outcome"`
	IdentityID    string    `gorm:"size:64" json:"identity_id"`
	Name          string    `gorm:"size:128" json:"name"`
	Confidence    float64   `json:"confidence"`
	OccurredAt    time.Time `gorm:"index" json:"occurred_at"`

	CreatedAt time.Time `gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP;<-:create"`
}

func (EventRecord) TableName() string {
	return "recognition_events"
}

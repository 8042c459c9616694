package model

import "time"

// Click is one recorded visit to an owned short link. Rows are append-only:
// never mutated, deleted only as a cascade when the owning link is removed.
type Click struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	LinkID    uint64    `json:"link_id" gorm:"index;not null"`
	Slug      string    `json:"slug" gorm:"size:16;index;not null"`
	IP        string    `json:"ip" gorm:"size:64"`
	UserAgent string    `json:"user_agent" gorm:"type:text"`
	Device    string    `json:"device" gorm:"size:16"`
	Browser   string    `json:"browser" gorm:"size:32"`
	OS        string    `json:"os" gorm:"size:32"`
	Country   string    `json:"country" gorm:"size:8"`
	Referer   *string   `json:"referer,omitempty" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;index"`
}

const (
	ClickStreamName     = "CLICKS"
	ClickStreamSubject  = "clicks.events"
	ClickConsumerName   = "click-logger"
	ClickStreamMaxBytes = 1024 * 1024 * 100 // 100MB
)

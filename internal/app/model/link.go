package model

import "time"

// Link is the core short-link entity stored in Postgres.
//
// TotalClicks is a denormalized fast-path summary; the clicks table remains
// the source of truth for per-visit detail. The slug is assigned once at
// creation and never changes.
type Link struct {
	ID            uint64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Slug          string     `json:"slug" gorm:"size:16;uniqueIndex;not null"`
	OriginalURL   string     `json:"original_url" gorm:"type:text;not null"`
	OwnerID       *uint64    `json:"owner_id,omitempty" gorm:"index"`
	TotalClicks   int64      `json:"total_clicks" gorm:"not null;default:0"`
	LastVisitedAt *time.Time `json:"last_visited_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// Owned reports whether the link is attributed to an account. Anonymous
// links are never tracked and their stats are not retrievable.
func (l *Link) Owned() bool {
	return l.OwnerID != nil
}

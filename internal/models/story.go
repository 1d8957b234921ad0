package models

import (
	"time"

	"gorm.io/gorm"
)

// Story is a catalog row. Segments are ordered by Position.
type Story struct {
	ID        string         `gorm:"primaryKey;size:64" json:"id"`
	Title     string         `gorm:"size:255" json:"title"`
	Segments  []Segment      `gorm:"foreignKey:StoryID;constraint:OnDelete:CASCADE" json:"segments"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Segment is one audio file of a story.
type Segment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	StoryID   string    `gorm:"uniqueIndex:idx_story_position;size:64" json:"story_id"`
	Position  int       `gorm:"uniqueIndex:idx_story_position" json:"position"`
	URL       string    `gorm:"size:1024" json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

// SegmentURLs returns the segment urls in playback order. Segments must
// already be sorted by Position.
func (s *Story) SegmentURLs() []string {
	urls := make([]string, 0, len(s.Segments))
	for _, seg := range s.Segments {
		urls = append(urls, seg.URL)
	}
	return urls
}

package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Validation limits for media metadata. These mirror the strictest limits
// across supported platforms so metadata valid here is valid everywhere.
const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 5000
	MaxTags              = 50
	MaxTagLength         = 50
)

// validPrivacySettings enumerates the accepted privacy values.
var validPrivacySettings = map[string]bool{
	"public":   true,
	"unlisted": true,
	"private":  true,
}

var (
	tagSpecialChars = regexp.MustCompile(`[^\w\s-]`)
	tagWhitespace   = regexp.MustCompile(`\s+`)
)

// MediaMetadata describes the media being uploaded: title, description,
// tags, privacy, and scheduling hints consumed by platform adapters.
type MediaMetadata struct {
	Title                string     `json:"title,omitempty"`
	Description          string     `json:"description,omitempty"`
	Tags                 []string   `json:"tags,omitempty"`
	Privacy              string     `json:"privacy,omitempty"`
	ThumbnailURL         string     `json:"thumbnail_url,omitempty"`
	ThumbnailPath        string     `json:"thumbnail_path,omitempty"`
	Duration             int        `json:"duration,omitempty"`
	FileSize             int64      `json:"file_size,omitempty"`
	Category             string     `json:"category,omitempty"`
	Language             string     `json:"language,omitempty"`
	ScheduledPublishTime *time.Time `json:"scheduled_publish_time,omitempty"`
}

// Validate checks metadata limits shared across platforms.
func (m *MediaMetadata) Validate() error {
	if len(m.Title) > MaxTitleLength {
		return fmt.Errorf("%w: title too long (max %d characters)", ErrValidation, MaxTitleLength)
	}

	if len(m.Description) > MaxDescriptionLength {
		return fmt.Errorf(
			"%w: description too long (max %d characters)",
			ErrValidation,
			MaxDescriptionLength,
		)
	}

	if m.Privacy != "" && !validPrivacySettings[m.Privacy] {
		return fmt.Errorf("%w: invalid privacy setting %q", ErrValidation, m.Privacy)
	}

	if len(m.Tags) > MaxTags {
		return fmt.Errorf("%w: too many tags (max %d)", ErrValidation, MaxTags)
	}

	for _, tag := range m.Tags {
		if len(tag) > MaxTagLength {
			return fmt.Errorf("%w: tag too long: %q (max %d characters)", ErrValidation, tag, MaxTagLength)
		}
	}

	return nil
}

// Sanitize normalizes tags for platform compatibility: lowercased, stripped
// of special characters and whitespace, empty tags dropped.
func (m *MediaMetadata) Sanitize() {
	if len(m.Tags) == 0 {
		return
	}

	sanitized := make([]string, 0, len(m.Tags))
	for _, tag := range m.Tags {
		clean := tagSpecialChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(tag)), "")
		clean = tagWhitespace.ReplaceAllString(clean, "")
		if clean != "" {
			sanitized = append(sanitized, clean)
		}
	}
	m.Tags = sanitized
}

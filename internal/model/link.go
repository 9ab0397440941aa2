package model

import (
	"strings"
)

// Link represents a bookmarked URL with metadata.
type Link struct {
	ID                   string `json:"id" yaml:"id"`
	URL                  string `json:"url" yaml:"url"`
	Title                string `json:"title" yaml:"title"`
	Notes                string `json:"notes" yaml:"notes"`
	IsDefault            bool   `json:"is_default" yaml:"is_default"`
	ReminderTimestamp    int64  `json:"reminder_timestamp" yaml:"reminder_timestamp"`
	LastVisitedTimestamp int64  `json:"last_visited_timestamp" yaml:"last_visited_timestamp"`
	VisitCount           int64  `json:"visit_count" yaml:"visit_count"`
	CreatedTimestamp     int64  `json:"created_timestamp" yaml:"created_timestamp"`
}

// NewLink holds the caller-supplied fields for a link being added.
type NewLink struct {
	URL               string
	Title             string
	Notes             string
	IsDefault         bool
	ReminderTimestamp int64
}

// LinkUpdate lists the fields an edit may change. Nil fields are left as-is.
type LinkUpdate struct {
	URL               *string `json:"url,omitempty"`
	Title             *string `json:"title,omitempty"`
	Notes             *string `json:"notes,omitempty"`
	IsDefault         *bool   `json:"is_default,omitempty"`
	ReminderTimestamp *int64  `json:"reminder_timestamp,omitempty"`
}

// Empty reports whether the update carries no fields.
func (u LinkUpdate) Empty() bool {
	return u.URL == nil && u.Title == nil && u.Notes == nil &&
		u.IsDefault == nil && u.ReminderTimestamp == nil
}

// HasReminder reports whether a reminder is set.
func (l *Link) HasReminder() bool {
	return l.ReminderTimestamp > 0
}

// DisplayTitle returns the title, or the URL when the title is blank.
func (l *Link) DisplayTitle() string {
	if t := strings.TrimSpace(l.Title); t != "" {
		return t
	}
	return l.URL
}

// NormalizeURL trims surrounding whitespace. URL identity is the exact,
// case-sensitive trimmed string.
func NormalizeURL(raw string) string {
	return strings.TrimSpace(raw)
}

// ValidateURL checks that url is non-empty and uses http or https.
func ValidateURL(url string) error {
	if url == "" {
		return &ValidationError{Field: "url", Reason: "URL is required", Err: ErrInvalidURL}
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return &ValidationError{Field: "url", Reason: "URL must start with http:// or https://", Err: ErrInvalidURL}
	}
	return nil
}

// ValidateReminder rejects negative reminder timestamps.
func ValidateReminder(ts int64) error {
	if ts < 0 {
		return NewValidationError("reminder_timestamp", "must be 0 or a positive epoch timestamp")
	}
	return nil
}

// Validate checks the fields of a new link.
func (n NewLink) Validate() error {
	if err := ValidateURL(NormalizeURL(n.URL)); err != nil {
		return err
	}
	return ValidateReminder(n.ReminderTimestamp)
}

// Validate checks the supplied fields of an update.
func (u LinkUpdate) Validate() error {
	if u.URL != nil {
		if err := ValidateURL(NormalizeURL(*u.URL)); err != nil {
			return err
		}
	}
	if u.ReminderTimestamp != nil {
		if err := ValidateReminder(*u.ReminderTimestamp); err != nil {
			return err
		}
	}
	return nil
}

// Apply writes the supplied fields onto l. An empty title after the update
// falls back to the URL.
func (u LinkUpdate) Apply(l *Link) {
	if u.URL != nil {
		l.URL = NormalizeURL(*u.URL)
	}
	if u.Title != nil {
		l.Title = strings.TrimSpace(*u.Title)
	}
	if u.Notes != nil {
		l.Notes = strings.TrimSpace(*u.Notes)
	}
	if u.IsDefault != nil {
		l.IsDefault = *u.IsDefault
	}
	if u.ReminderTimestamp != nil {
		l.ReminderTimestamp = *u.ReminderTimestamp
	}
	if l.Title == "" {
		l.Title = l.URL
	}
}

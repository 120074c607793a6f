package model

import (
	"html/template"
	"time"
)

// TextFormat tags how a description's text should be interpreted.
// The numeric values are the host platform's format codes and are stored as-is.
type TextFormat int

const (
	FormatMoodle   TextFormat = 0
	FormatHTML     TextFormat = 1
	FormatPlain    TextFormat = 2
	FormatMarkdown TextFormat = 4
)

// Valid reports whether f is one of the known format codes.
func (f TextFormat) Valid() bool {
	switch f {
	case FormatMoodle, FormatHTML, FormatPlain, FormatMarkdown:
		return true
	}
	return false
}

// Description is the free-text part of a snip together with its format tag.
type Description struct {
	Text   string     `json:"text"`
	Format TextFormat `json:"format"`
}

// Snip is a single stored code sample.
//
// DisplayLanguage, URL, Active, DescriptionHTML and CodeHTML are view-only
// fields, filled when snips are prepared for display.
type Snip struct {
	ID          int64       `json:"id"          db:"id"`
	ActivityID  int64       `json:"activityId"  db:"activity_id"`
	CategoryID  int64       `json:"categoryId"  db:"category_id"`
	UserID      int64       `json:"userId"      db:"user_id"`
	Name        string      `json:"name"        db:"name"`
	Description Description `json:"description"`
	Private     bool        `json:"private"     db:"private"`
	Language    string      `json:"language"    db:"language"`
	Code        string      `json:"code"        db:"code"`
	CreatedAt   time.Time   `json:"createdAt"   db:"time_created"`
	UpdatedAt   time.Time   `json:"updatedAt"   db:"time_modified"`

	DisplayLanguage string `json:"displayLanguage,omitempty" db:"-"`
	URL             string `json:"url,omitempty"             db:"-"`
	Active          bool   `json:"active"                    db:"-"`

	DescriptionHTML template.HTML `json:"descriptionHtml,omitempty" db:"-"`
	CodeHTML        template.HTML `json:"codeHtml,omitempty"        db:"-"`
}

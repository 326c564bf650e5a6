// Package article defines the normalized record produced by the extraction
// pipeline and the small field helpers shared by every page layout.
package article

import (
	"strings"
	"time"
)

// Record is one crawled news article. ArticleID is the publisher-global
// identifier and, together with MediaCode, the deduplication key enforced by
// the sink. Fields left empty are persisted as-is; a record is never rejected
// for missing optional fields.
type Record struct {
	ArticleID    string     `db:"news_id" bson:"news_id"`
	MediaCode    string     `db:"news_media_code" bson:"news_media_code"`
	Title        string     `db:"news_title" bson:"news_title"`
	Content      string     `db:"news_content" bson:"news_content"`
	Author       string     `db:"news_author" bson:"news_author"`
	PublishedAt  *time.Time `db:"news_date" bson:"news_date,omitempty"`
	PublishedRaw string     `db:"news_date_raw" bson:"news_date_raw,omitempty"`
	Category     string     `db:"news_category" bson:"news_category"`
	OriginalURL  string     `db:"news_original_url" bson:"news_original_url"`
	Site         string     `db:"news_site" bson:"news_site"`
	PortalURL    string     `db:"news_portal_url" bson:"news_portal_url"`
}

// publishLayout matches the portal's 12-hour clock once the locale markers
// have been translated, e.g. "2020.03.24. PM 03:15".
const publishLayout = "2006.01.02. PM 3:04"

// inputPrefix precedes the timestamp on sports pages.
const inputPrefix = "기사입력 "

// ParsePublishTime translates the portal's morning/afternoon markers to
// AM/PM, strips the sports-only input prefix, and parses the result. When
// parsing fails the translated string is returned with ok=false so the caller
// can keep the raw value instead of dropping the record.
func ParsePublishTime(raw string) (t time.Time, translated string, ok bool) {
	translated = strings.TrimPrefix(strings.TrimSpace(raw), inputPrefix)
	translated = strings.ReplaceAll(translated, "오전", "AM")
	translated = strings.ReplaceAll(translated, "오후", "PM")

	t, err := time.Parse(publishLayout, translated)
	if err != nil {
		return time.Time{}, translated, false
	}
	return t, translated, true
}

// ValidOriginalURL accepts a publisher-URL candidate only when it carries an
// absolute http(s) prefix; anything else, including a missing candidate,
// yields the empty string.
func ValidOriginalURL(raw string) string {
	if strings.Contains(raw, "http://") || strings.Contains(raw, "https://") {
		return raw
	}
	return ""
}

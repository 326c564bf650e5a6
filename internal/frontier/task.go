// Package frontier holds the walk's work queue and the sets that keep it
// from fetching the same thing twice.
package frontier

// Kind discriminates the two walk task shapes.
type Kind int

const (
	// KindList is a paginated article-index page.
	KindList Kind = iota
	// KindArticle is a single article fetch that yields one record.
	KindArticle
)

// Task is one unit of frontier work. Date and Page are set only on backfill
// list tasks; follow-mode list tasks and article tasks carry just the URL.
// A task is consumed exactly once and discarded after its downstream effects.
type Task struct {
	Kind Kind
	URL  string
	Date string // YYYYMMDD
	Page int
}

// internal/parser/listpage.go
package parser

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DefaultBaseURL is the portal root every list and article URL hangs off.
const DefaultBaseURL = "https://news.naver.com"

// listPathFmt is the paginated, date-partitioned article index for one
// publisher code.
const listPathFmt = "%s/main/list.nhn?mode=LPOD&mid=sec&listType=summary&oid=%s"

// followDeny lists URL substrings the auto-follow walk refuses to enter.
var followDeny = []string{
	"news.naver.com/main/tool/print.nhn",
	"media.naver.com/channel/promotion.nhn",
}

// PageStep is the outcome of one backfill list-page parse: the article links
// to fetch plus the follow-up list targets. NextPage is zero when the current
// date's pagination is exhausted; NextDate is empty when no earlier date
// within the range remains. Both can be set at once: page 1 of a date both
// advances its own pagination and triggers the rollover to the next date.
type PageStep struct {
	ArticleURLs []string
	NextPage    int
	NextDate    string
}

// ListURL builds the list-page URL for one (category, date, page) triple.
func ListURL(base, category, date string, page int) string {
	return fmt.Sprintf(listPathFmt+"&date=%s&page=%d", base, category, date, page)
}

// FollowSeedURL is the undated list page the auto-follow walk starts from.
func FollowSeedURL(base, category string) string {
	return fmt.Sprintf(listPathFmt, base, category)
}

// WalkList extracts article links and computes the follow-up fetch targets
// for one backfill list page. known reports whether an article id has already
// been ingested; links whose aid is known (or absent) are skipped. Headline
// links are emitted before secondary links, each set in document order.
func WalkList(doc *goquery.Document, curDate string, curPage int, endDate string, known func(string) bool) PageStep {
	var step PageStep

	collect := func(listSelector string) {
		doc.Find(listSelector).Each(func(_ int, row *goquery.Selection) {
			href, ok := row.Find("dl dt").First().Find("a").First().Attr("href")
			if !ok {
				return
			}
			aid := queryParam(href, "aid")
			if aid == "" || known(aid) {
				return
			}
			step.ArticleURLs = append(step.ArticleURLs, href)
		})
	}
	collect("#main_content div.list_body.newsflash_body ul.type06_headline > li")
	collect("#main_content div.list_body.newsflash_body ul.type06 > li")

	maxPage, hasNext := pagination(doc)
	switch {
	case curPage < maxPage:
		step.NextPage = curPage + 1
	case curPage > maxPage && hasNext:
		// The pager can truncate its visible numbers while a "next" link
		// still exists; keep walking forward in that case.
		step.NextPage = curPage + 1
	}

	if curPage == 1 {
		step.NextDate = rolloverDate(doc, curDate, endDate)
	}

	return step
}

// pagination reads the visible page-number links and the presence of a
// "next" link. With no numeric links at all the maximum defaults to 1.
func pagination(doc *goquery.Document) (maxPage int, hasNext bool) {
	doc.Find("#main_content div.paging a").Each(func(_ int, a *goquery.Selection) {
		cls, _ := a.Attr("class")
		if strings.Contains(cls, "next") {
			hasNext = true
			return
		}
		if !strings.Contains(cls, "nclicks(fls.page)") {
			return
		}
		if n, err := strconv.Atoi(strings.TrimSpace(a.Text())); err == nil && n > maxPage {
			maxPage = n
		}
	})
	if maxPage == 0 {
		maxPage = 1
	}
	return maxPage, hasNext
}

// rolloverDate picks the first date-shortcut link strictly earlier than the
// current date and no earlier than the end date. At most one rollover fires
// per list page; the walk moves strictly backward one date at a time.
// Comparison is lexicographic, which matches numeric order on the 8-digit
// YYYYMMDD encoding.
func rolloverDate(doc *goquery.Document, curDate, endDate string) string {
	next := ""
	doc.Find("#main_content div.pagenavi_day a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, ok := a.Attr("href")
		if !ok {
			return true
		}
		cand := queryParam(href, "date")
		if cand == "" {
			return true
		}
		if cand < curDate && cand >= endDate {
			next = cand
			return false
		}
		return true
	})
	return next
}

// FollowLinks extracts the crawlable links for the auto-follow trigger:
// everything under the headline list, the secondary list, the paging block
// and the date navigator, restricted to the configured publisher code and
// with print/promotion pages denied. Relative links are resolved against
// base; order is container order, duplicates within the page are dropped.
func FollowLinks(doc *goquery.Document, base, category string) []string {
	containers := []string{
		"#main_content div.list_body.newsflash_body ul.type06_headline",
		"#main_content div.list_body.newsflash_body ul.type06",
		"#main_content div.paging",
		"#main_content div.pagenavi_day",
	}

	allow := "oid=" + category
	seen := make(map[string]struct{})
	var links []string

	for _, container := range containers {
		doc.Find(container + " a").Each(func(_ int, a *goquery.Selection) {
			href, ok := a.Attr("href")
			if !ok {
				return
			}
			abs := ResolveLink(base, href)
			if abs == "" || !strings.Contains(abs, allow) {
				return
			}
			for _, deny := range followDeny {
				if strings.Contains(abs, deny) {
					return
				}
			}
			if _, dup := seen[abs]; dup {
				return
			}
			seen[abs] = struct{}{}
			links = append(links, abs)
		})
	}
	return links
}

// IsListURL reports whether a followed link is another list page rather than
// an article.
func IsListURL(u string) bool {
	return strings.Contains(u, "list.nhn")
}

func queryParam(rawURL, key string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Query().Get(key)
}

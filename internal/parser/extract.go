// internal/parser/extract.go
package parser

import (
	"errors"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"newscrawl/internal/article"
)

// Variant is one of the portal's three article page layouts. Each variant
// locates category, publish time, original URL and body in different places.
type Variant int

const (
	VariantGeneral Variant = iota
	VariantSports
	VariantEntertainment
)

func (v Variant) String() string {
	switch v {
	case VariantSports:
		return "sports"
	case VariantEntertainment:
		return "entertainment"
	default:
		return "general"
	}
}

var (
	// ErrMissingArticleID means the fetched URL carries no aid parameter,
	// so the record cannot be identified and must be skipped.
	ErrMissingArticleID = errors.New("article url has no aid parameter")
	// ErrMissingMediaCode means the fetched URL carries no oid parameter.
	ErrMissingMediaCode = errors.New("article url has no oid parameter")
)

const (
	sportsMarker        = `meta[property="me:feed:serviceId"]`
	siteMarker          = `meta[name="twitter:site"]`
	entertainmentSite   = "네이버 TV연예"
	sportsAuthorPrefix  = "네이버 스포츠 | "
	breakingPlaceholder = "속보"
)

// Classify decides which layout variant an article document uses. The sports
// feed marker wins, then the entertainment site marker; everything else is
// the general layout.
func Classify(doc *goquery.Document) Variant {
	if metaContent(doc, sportsMarker) != "" {
		return VariantSports
	}
	if metaContent(doc, siteMarker) == entertainmentSite {
		return VariantEntertainment
	}
	return VariantGeneral
}

// Extract parses one fetched article document into a Record. The article id
// and media code come from the fetched URL's query string; title and portal
// URL are shared by every variant, the rest follows the variant's rule set.
func Extract(doc *goquery.Document, fetchedURL string) (*article.Record, error) {
	u, err := url.Parse(fetchedURL)
	if err != nil {
		return nil, ErrMissingArticleID
	}
	q := u.Query()
	aid := q.Get("aid")
	if aid == "" {
		return nil, ErrMissingArticleID
	}
	oid := q.Get("oid")
	if oid == "" {
		return nil, ErrMissingMediaCode
	}

	rec := &article.Record{
		ArticleID: aid,
		MediaCode: oid,
		Title:     metaContent(doc, `meta[property="og:title"]`),
		PortalURL: fetchedURL,
	}

	switch Classify(doc) {
	case VariantSports:
		extractSports(doc, rec)
	case VariantEntertainment:
		extractEntertainment(doc, rec)
	default:
		extractGeneral(doc, rec)
	}

	// No page layout exposes a reporter field; the column stays empty.
	rec.Author = ""

	return rec, nil
}

func extractGeneral(doc *goquery.Document, rec *article.Record) {
	rec.Site = metaContent(doc, `meta[name="twitter:creator"]`)

	rec.Category = metaContent(doc, `meta[property="me2:category2"]`)
	if rec.Category == "" || rec.Category == breakingPlaceholder {
		// Breaking-news placeholder: fall back to the category the
		// original publisher assigned inside the body.
		rec.Category = firstText(doc, "#articleBody div.guide_categorization a em")
	}

	setPublishTime(rec, firstText(doc,
		"#main_content div.article_header div.article_info div span.t11"))

	rec.OriginalURL = article.ValidOriginalURL(firstAttr(doc, "href",
		"#main_content div.article_header div.article_info div a"))

	rec.Content = contentFrom(doc, "#articleBodyContents", "#articleBody")
}

func extractEntertainment(doc *goquery.Document, rec *article.Record) {
	rec.Site = metaContent(doc, `meta[name="twitter:creator"]`)
	rec.Category = "TV연예"

	setPublishTime(rec, firstText(doc,
		"#content div.end_ct div div.article_info span.author em"))

	rec.OriginalURL = article.ValidOriginalURL(firstAttr(doc, "href",
		"#content div.end_ct div div.article_info a"))

	rec.Content = contentFrom(doc, "#articeBody") // sic: the portal's own id
}

func extractSports(doc *goquery.Document, rec *article.Record) {
	rec.Site = strings.TrimPrefix(metaContent(doc, `meta[property="og:article:author"]`), sportsAuthorPrefix)
	rec.Category = "스포츠"

	setPublishTime(rec, firstText(doc,
		"#content div div.content div div.news_headline div.info span"))

	rec.OriginalURL = article.ValidOriginalURL(firstAttr(doc, "href",
		"#content div div.content div div.news_headline div.info a"))

	rec.Content = contentFrom(doc, "#newsEndContents")
}

// setPublishTime stores the parsed timestamp, or keeps the translated raw
// string when the value does not match the expected pattern. A missing value
// leaves both fields at their defaults.
func setPublishTime(rec *article.Record, raw string) {
	if raw == "" {
		return
	}
	if t, translated, ok := article.ParsePublishTime(raw); ok {
		rec.PublishedAt = &t
	} else {
		rec.PublishedRaw = translated
	}
}

// contentFrom hands each candidate container, markup and all, to the
// normalizer and keeps the first non-empty result. Extracting only direct
// text nodes would silently drop nested-element text, so the whole container
// goes in.
func contentFrom(doc *goquery.Document, selectors ...string) string {
	for _, sel := range selectors {
		s := doc.Find(sel).First()
		if s.Length() == 0 {
			continue
		}
		markup, err := goquery.OuterHtml(s)
		if err != nil {
			continue
		}
		if text := CleanContent(markup); text != "" {
			return text
		}
	}
	return ""
}

func metaContent(doc *goquery.Document, selector string) string {
	v, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(v)
}

// firstText returns the trimmed text of the first selector that matches with
// non-empty content.
func firstText(doc *goquery.Document, selectors ...string) string {
	for _, sel := range selectors {
		if t := strings.TrimSpace(doc.Find(sel).First().Text()); t != "" {
			return t
		}
	}
	return ""
}

// firstAttr returns the named attribute of the first selector that yields one.
func firstAttr(doc *goquery.Document, attr string, selectors ...string) string {
	for _, sel := range selectors {
		if v, ok := doc.Find(sel).First().Attr(attr); ok {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

package parser_test

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newscrawl/internal/parser"
)

const generalPage = `<html><head>
<meta property="og:title" content="Hello"/>
<meta name="twitter:site" content="네이버뉴스"/>
<meta name="twitter:creator" content="Example Press"/>
<meta property="me2:category2" content="정치"/>
</head><body>
<div id="main_content">
  <div class="article_header">
    <div class="article_info">
      <div>
        <a href="http://press.example/x">기사원문</a>
        <span class="t11">2020.03.24. 오후 03:15</span>
      </div>
    </div>
  </div>
  <div id="articleBodyContents">Line1<a>ignored</a> ⓒ2020 Agency</div>
</div>
</body></html>`

const sportsPage = `<html><head>
<meta property="me:feed:serviceId" content="sports"/>
<meta property="og:title" content="결승골"/>
<meta property="og:article:author" content="네이버 스포츠 | SportsDaily"/>
</head><body>
<div id="content"><div><div class="content"><div>
  <div class="news_headline">
    <div class="info">
      <span>기사입력 2020.03.24. 오전 09:05</span>
      <a href="https://sports.example/article/1">기사원문</a>
    </div>
  </div>
</div></div></div></div>
<div id="newsEndContents">경기 내용 <span>추가 <b>분석</b></span><a>관련기사</a></div>
</body></html>`

const entertainmentPage = `<html><head>
<meta property="og:title" content="컴백"/>
<meta name="twitter:site" content="네이버 TV연예"/>
<meta name="twitter:creator" content="Enter Media"/>
</head><body>
<div id="content"><div class="end_ct"><div>
  <div class="article_info">
    <span class="author"><em>2020.03.24. 오후 11:45</em></span>
    <a href="/mobile/only">모바일</a>
  </div>
</div></div></div>
<div id="articeBody">연예 기사 본문 <em>강조</em></div>
</body></html>`

func mustDoc(t *testing.T, page string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	require.NoError(t, err)
	return doc
}

func TestClassify(t *testing.T) {
	assert.Equal(t, parser.VariantGeneral, parser.Classify(mustDoc(t, generalPage)))
	assert.Equal(t, parser.VariantSports, parser.Classify(mustDoc(t, sportsPage)))
	assert.Equal(t, parser.VariantEntertainment, parser.Classify(mustDoc(t, entertainmentPage)))
}

func TestExtractGeneral(t *testing.T) {
	url := "https://news.naver.com/main/read.nhn?mode=LPOD&oid=001&aid=0001"
	rec, err := parser.Extract(mustDoc(t, generalPage), url)
	require.NoError(t, err)

	assert.Equal(t, "0001", rec.ArticleID)
	assert.Equal(t, "001", rec.MediaCode)
	assert.Equal(t, "Hello", rec.Title)
	assert.Equal(t, "정치", rec.Category)
	assert.Equal(t, "Example Press", rec.Site)
	assert.Equal(t, "http://press.example/x", rec.OriginalURL)
	assert.Equal(t, url, rec.PortalURL)
	assert.Equal(t, "", rec.Author)

	require.NotNil(t, rec.PublishedAt)
	assert.True(t, rec.PublishedAt.Equal(time.Date(2020, 3, 24, 15, 15, 0, 0, time.UTC)))

	// Anchor text and the copyright-bearing segment are both gone.
	assert.Equal(t, "Line1", rec.Content)
}

func TestExtractGeneralBreakingCategoryFallback(t *testing.T) {
	page := strings.Replace(generalPage, `content="정치"`, `content="속보"`, 1)
	page = strings.Replace(page,
		`<div id="articleBodyContents">`,
		`<div id="articleBody"><div class="guide_categorization"><a><em>경제</em></a></div></div><div id="articleBodyContents">`, 1)

	rec, err := parser.Extract(mustDoc(t, page), "https://news.naver.com/main/read.nhn?oid=001&aid=0002")
	require.NoError(t, err)
	assert.Equal(t, "경제", rec.Category)
}

func TestExtractSports(t *testing.T) {
	rec, err := parser.Extract(mustDoc(t, sportsPage), "https://sports.news.naver.com/news.nhn?oid=076&aid=0003")
	require.NoError(t, err)

	assert.Equal(t, "0003", rec.ArticleID)
	assert.Equal(t, "076", rec.MediaCode)
	assert.Equal(t, "스포츠", rec.Category)
	assert.Equal(t, "SportsDaily", rec.Site, "portal prefix stripped")
	assert.Equal(t, "https://sports.example/article/1", rec.OriginalURL)

	require.NotNil(t, rec.PublishedAt)
	assert.True(t, rec.PublishedAt.Equal(time.Date(2020, 3, 24, 9, 5, 0, 0, time.UTC)))

	assert.Equal(t, "경기 내용 추가 분석", rec.Content)
}

func TestExtractEntertainment(t *testing.T) {
	rec, err := parser.Extract(mustDoc(t, entertainmentPage), "https://entertain.naver.com/read?oid=213&aid=0004")
	require.NoError(t, err)

	assert.Equal(t, "TV연예", rec.Category)
	assert.Equal(t, "Enter Media", rec.Site)
	assert.Equal(t, "", rec.OriginalURL, "relative candidate stored as empty")
	assert.Equal(t, "연예 기사 본문 강조", rec.Content)

	require.NotNil(t, rec.PublishedAt)
	assert.True(t, rec.PublishedAt.Equal(time.Date(2020, 3, 24, 23, 45, 0, 0, time.UTC)))
}

func TestExtractMalformedURL(t *testing.T) {
	doc := mustDoc(t, generalPage)

	_, err := parser.Extract(doc, "https://news.naver.com/main/read.nhn?oid=001")
	assert.ErrorIs(t, err, parser.ErrMissingArticleID)

	_, err = parser.Extract(doc, "https://news.naver.com/main/read.nhn?aid=0001")
	assert.ErrorIs(t, err, parser.ErrMissingMediaCode)
}

func TestExtractMissingOptionalFields(t *testing.T) {
	// No date, no original URL, no category meta, empty body: the record is
	// still produced with defaults, never an error.
	page := `<html><head><meta property="og:title" content="bare"/></head>
<body><div id="articleBodyContents"></div></body></html>`

	rec, err := parser.Extract(mustDoc(t, page), "https://news.naver.com/main/read.nhn?oid=001&aid=0009")
	require.NoError(t, err)

	assert.Nil(t, rec.PublishedAt)
	assert.Equal(t, "", rec.PublishedRaw)
	assert.Equal(t, "", rec.Category)
	assert.Equal(t, "", rec.OriginalURL)
	assert.Equal(t, "", rec.Content)
}

func TestExtractUnparseableDateKeepsRaw(t *testing.T) {
	page := strings.Replace(generalPage, "2020.03.24. 오후 03:15", "방금 전", 1)

	rec, err := parser.Extract(mustDoc(t, page), "https://news.naver.com/main/read.nhn?oid=001&aid=0010")
	require.NoError(t, err)
	assert.Nil(t, rec.PublishedAt)
	assert.Equal(t, "방금 전", rec.PublishedRaw)
}

func TestExtractDeterministic(t *testing.T) {
	url := "https://news.naver.com/main/read.nhn?oid=001&aid=0001"
	a, err := parser.Extract(mustDoc(t, generalPage), url)
	require.NoError(t, err)
	b, err := parser.Extract(mustDoc(t, generalPage), url)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

package parser_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newscrawl/internal/parser"
)

// listPage builds a synthetic list-page document. headlines/secondary are
// article ids; pages are the visible pager numbers; next toggles the pager's
// "next" link; dates are the date-shortcut values.
func listPage(headlines, secondary []string, pages []int, next bool, dates []string) string {
	var b strings.Builder
	b.WriteString(`<html><body><div id="main_content"><div class="list_body newsflash_body">`)

	writeList := func(class string, aids []string) {
		fmt.Fprintf(&b, `<ul class="%s">`, class)
		for _, aid := range aids {
			fmt.Fprintf(&b,
				`<li><dl><dt><a href="https://news.naver.com/main/read.nhn?oid=001&amp;aid=%s">제목</a></dt></dl></li>`,
				aid)
		}
		b.WriteString(`</ul>`)
	}
	writeList("type06_headline", headlines)
	writeList("type06", secondary)
	b.WriteString(`</div>`)

	b.WriteString(`<div class="paging">`)
	for _, p := range pages {
		fmt.Fprintf(&b, `<a class="nclicks(fls.page)" href="?page=%d">%d</a>`, p, p)
	}
	if next {
		b.WriteString(`<a class="next nclicks(fls.page)" href="?page=11">다음</a>`)
	}
	b.WriteString(`</div>`)

	b.WriteString(`<div class="pagenavi_day">`)
	for _, d := range dates {
		fmt.Fprintf(&b, `<a class="nclicks(fls.date)" href="?mode=LPOD&amp;date=%s">%s</a>`, d, d)
	}
	b.WriteString(`</div></div></body></html>`)
	return b.String()
}

func noneKnown(string) bool { return false }

func aidsOf(t *testing.T, urls []string) []string {
	t.Helper()
	var aids []string
	for _, u := range urls {
		i := strings.LastIndex(u, "aid=")
		require.GreaterOrEqual(t, i, 0)
		aids = append(aids, u[i+len("aid="):])
	}
	return aids
}

func TestWalkListEmissionOrder(t *testing.T) {
	page := listPage([]string{"0001", "0002"}, []string{"0003", "0004"}, []int{1}, false, nil)
	step := parser.WalkList(mustDoc(t, page), "20200324", 1, "20200101", noneKnown)

	assert.Equal(t, []string{"0001", "0002", "0003", "0004"}, aidsOf(t, step.ArticleURLs),
		"headline set first, then secondary set, each in document order")
}

func TestWalkListSkipsKnownIDs(t *testing.T) {
	page := listPage([]string{"0001", "0002"}, []string{"0003"}, []int{1}, false, nil)
	known := map[string]bool{"0002": true, "0003": true}

	step := parser.WalkList(mustDoc(t, page), "20200324", 1, "20200101",
		func(aid string) bool { return known[aid] })

	assert.Equal(t, []string{"0001"}, aidsOf(t, step.ArticleURLs))
}

func TestWalkListPagination(t *testing.T) {
	tests := []struct {
		name     string
		curPage  int
		pages    []int
		next     bool
		wantNext int
	}{
		{"below max advances", 1, []int{1, 2, 3}, false, 2},
		{"at max stops", 3, []int{1, 2, 3}, false, 0},
		{"above truncated max with next link advances", 3, []int{1, 2}, true, 4},
		{"above max without next link stops", 3, []int{1, 2}, false, 0},
		{"no pager defaults to max 1", 1, nil, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := listPage(nil, nil, tt.pages, tt.next, nil)
			step := parser.WalkList(mustDoc(t, page), "20200301", tt.curPage, "20200101", noneKnown)
			assert.Equal(t, tt.wantNext, step.NextPage)
		})
	}
}

func TestWalkListDateRollover(t *testing.T) {
	t.Run("first qualifying date wins, only one emitted", func(t *testing.T) {
		page := listPage(nil, nil, []int{1}, false, []string{"20200325", "20200323", "20200322"})
		step := parser.WalkList(mustDoc(t, page), "20200324", 1, "20200101", noneKnown)
		assert.Equal(t, "20200323", step.NextDate)
	})

	t.Run("candidates past the end date are skipped", func(t *testing.T) {
		page := listPage(nil, nil, []int{1}, false, []string{"20200320", "20200323"})
		step := parser.WalkList(mustDoc(t, page), "20200324", 1, "20200323", noneKnown)
		assert.Equal(t, "20200323", step.NextDate)
	})

	t.Run("no qualifying date ends the walk", func(t *testing.T) {
		page := listPage(nil, nil, []int{1}, false, []string{"20200322"})
		step := parser.WalkList(mustDoc(t, page), "20200324", 1, "20200323", noneKnown)
		assert.Equal(t, "", step.NextDate)
	})

	t.Run("only evaluated on page 1", func(t *testing.T) {
		page := listPage(nil, nil, []int{1, 2}, false, []string{"20200323"})
		step := parser.WalkList(mustDoc(t, page), "20200324", 2, "20200101", noneKnown)
		assert.Equal(t, "", step.NextDate)
	})

	t.Run("page 1 can advance pagination and roll the date", func(t *testing.T) {
		page := listPage(nil, nil, []int{1, 2}, false, []string{"20200323"})
		step := parser.WalkList(mustDoc(t, page), "20200324", 1, "20200101", noneKnown)
		assert.Equal(t, 2, step.NextPage)
		assert.Equal(t, "20200323", step.NextDate)
	})
}

func TestListURL(t *testing.T) {
	got := parser.ListURL("https://news.naver.com", "001", "20200324", 3)
	assert.Equal(t,
		"https://news.naver.com/main/list.nhn?mode=LPOD&mid=sec&listType=summary&oid=001&date=20200324&page=3",
		got)

	assert.Equal(t,
		"https://news.naver.com/main/list.nhn?mode=LPOD&mid=sec&listType=summary&oid=001",
		parser.FollowSeedURL("https://news.naver.com", "001"))
}

func TestFollowLinks(t *testing.T) {
	page := `<html><body><div id="main_content">
<div class="list_body newsflash_body">
  <ul class="type06_headline">
    <li><dl><dt><a href="/main/read.nhn?oid=001&amp;aid=0001">a</a></dt></dl></li>
    <li><dl><dt><a href="https://news.naver.com/main/tool/print.nhn?oid=001&amp;aid=0001">print</a></dt></dl></li>
    <li><dl><dt><a href="/main/read.nhn?oid=999&amp;aid=0002">other publisher</a></dt></dl></li>
  </ul>
  <ul class="type06">
    <li><dl><dt><a href="/main/read.nhn?oid=001&amp;aid=0003">b</a></dt></dl></li>
  </ul>
</div>
<div class="paging"><a href="/main/list.nhn?mode=LPOD&amp;oid=001&amp;page=2">2</a></div>
<div class="pagenavi_day"><a href="/main/list.nhn?mode=LPOD&amp;oid=001&amp;date=20200323">23일</a></div>
<div class="outside"><a href="/main/read.nhn?oid=001&amp;aid=0099">not in a container</a></div>
</div></body></html>`

	links := parser.FollowLinks(mustDoc(t, page), "https://news.naver.com", "001")

	assert.Equal(t, []string{
		"https://news.naver.com/main/read.nhn?oid=001&aid=0001",
		"https://news.naver.com/main/read.nhn?oid=001&aid=0003",
		"https://news.naver.com/main/list.nhn?mode=LPOD&oid=001&page=2",
		"https://news.naver.com/main/list.nhn?mode=LPOD&oid=001&date=20200323",
	}, links)

	assert.True(t, parser.IsListURL(links[2]))
	assert.False(t, parser.IsListURL(links[0]))
}

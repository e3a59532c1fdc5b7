package retriever

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// Numbering locates a page inside a series: the chapter it belongs to, its
// position inside that chapter, and a printable chapter label.
type Numbering struct {
	Chapter    int
	SuffixType string
	SuffixNum  int
	Page       int
	Label      string
}

var (
	chapRe      = regexp.MustCompile(`(?i)(?:vol(?:ume)?[_\-\s]*\d+[_\-\s]*)?(?:chapter|ch)[_\-\s]*0*([0-9]+)(?:[_\-\s]*([.\-])[_\-\s]*([0-9]+))?`)
	chapterDash = regexp.MustCompile(`chapter[_\-]?0*([0-9]+)(?:[_\-\.]([0-9]+))?`)

	batoSimple  = regexp.MustCompile(`(?:^|[/\-_])ch[_\-]?(\d+(?:\.\d+)?)`)
	batoVol     = regexp.MustCompile(`vol[_\-]?(\d+)[/_\-]ch[_\-]?(\d+(?:\.\d+)?)`)
	batoPlain   = regexp.MustCompile(`[/\-](\d+(?:\.\d+)?)(?:$|[/\-_])`)
	titlePrefix = regexp.MustCompile(`^\s*(\d+(?:\.\d+)?)\s*[.\- ]`)

	reLikelyChapter = regexp.MustCompile(`(?i)(?:^|[-_/])(?:ch|chapter)[-_]?\d+`)
	reDigits        = regexp.MustCompile(`\d+`)
)

func segments(path string) []string {
	var out []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			out = append(out, s)
		}
	}

	return out
}

// numbering reads chapter and page numbers off an address. Known chapter
// patterns win; otherwise the last two numeric segments are taken as
// chapter and page.
func numbering(u *url.URL) Numbering {
	segs := segments(u.Path)
	var n Numbering
	if len(segs) == 0 {
		return n
	}

	n.Label = segs[len(segs)-1]
	if len(segs) >= 3 {
		n.Label = segs[len(segs)-2]
	}

	var nums []int
	for i := len(segs) - 1; i >= 0; i-- {
		if d := reDigits.FindAllString(segs[i], -1); len(d) > 0 {
			v, _ := strconv.Atoi(strings.Join(d, ""))
			nums = append(nums, v)
		}
	}
	switch {
	case len(nums) >= 2:
		n.Page, n.Chapter = nums[0], nums[1]
	case len(nums) == 1:
		n.Chapter = nums[0]
	}

	lbl, ok := parseChapterLabel(u.Path, "")
	if !ok {
		return n
	}

	last := strings.ToLower(segs[len(segs)-1])
	if !reLikelyChapter.MatchString(last) {
		if d := reDigits.FindString(last); d != "" {
			lbl.Page, _ = strconv.Atoi(d)
		}
	}

	return lbl
}

func parseChapterLabel(href, title string) (Numbering, bool) {
	h := strings.ToLower(href)
	t := strings.ToLower(title)

	if !hasChapterKeywords(h, t) || isExcluded(h) {
		return Numbering{}, false
	}

	for _, match := range []func(string) (Numbering, bool){
		matchChapterDash,
		matchBatoVol,
		matchBatoSimple,
	} {
		if n, ok := match(h); ok {
			return n, true
		}
	}
	if n, ok := matchTitlePrefix(title); ok {
		return n, true
	}
	if n, ok := matchChapRe(title); ok {
		return n, true
	}
	if n, ok := matchBatoPlain(h); ok && strings.Contains(h, "ch") {
		return n, true
	}

	return Numbering{}, false
}

func hasChapterKeywords(h, t string) bool {
	return strings.Contains(h, "ch") ||
		strings.Contains(h, "vol") ||
		strings.Contains(t, "ch") ||
		strings.Contains(t, "vol")
}

func isExcluded(h string) bool {
	return strings.Contains(h, "/u/") || strings.Contains(h, "batolists")
}

func matchChapterDash(h string) (Numbering, bool) {
	m := chapterDash.FindStringSubmatch(h)
	if m == nil {
		return Numbering{}, false
	}

	main, _ := strconv.Atoi(m[1])
	if m[2] != "" {
		sub, _ := strconv.Atoi(m[2])
		return Numbering{Chapter: main, SuffixType: "-", SuffixNum: sub, Label: fmt.Sprintf("%d-%d", main, sub)}, true
	}

	return Numbering{Chapter: main, Label: strconv.Itoa(main)}, true
}

func matchBatoVol(h string) (Numbering, bool) {
	m := batoVol.FindStringSubmatch(h)
	if m == nil {
		return Numbering{}, false
	}

	vol, _ := strconv.Atoi(m[1])
	ch, _ := strconv.Atoi(strings.Split(m[2], ".")[0])

	return Numbering{Chapter: ch, SuffixType: ".", SuffixNum: vol, Label: fmt.Sprintf("%d.%d", vol, ch)}, true
}

func matchBatoSimple(h string) (Numbering, bool) {
	m := batoSimple.FindStringSubmatch(h)
	if m == nil {
		return Numbering{}, false
	}

	parts := strings.Split(m[1], ".")
	main, _ := strconv.Atoi(parts[0])
	if len(parts) == 2 {
		sub, _ := strconv.Atoi(parts[1])
		return Numbering{Chapter: main, SuffixType: ".", SuffixNum: sub, Label: m[1]}, true
	}

	return Numbering{Chapter: main, Label: strconv.Itoa(main)}, true
}

func matchBatoPlain(h string) (Numbering, bool) {
	m := batoPlain.FindStringSubmatch(h)
	if m == nil {
		return Numbering{}, false
	}

	n, _ := strconv.Atoi(strings.Split(m[1], ".")[0])
	return Numbering{Chapter: n, Label: m[1]}, true
}

func matchTitlePrefix(title string) (Numbering, bool) {
	m := titlePrefix.FindStringSubmatch(title)
	if m == nil {
		return Numbering{}, false
	}

	n, _ := strconv.Atoi(strings.Split(m[1], ".")[0])
	return Numbering{Chapter: n, Label: m[1]}, true
}

func matchChapRe(title string) (Numbering, bool) {
	m := chapRe.FindStringSubmatch(title)
	if m == nil {
		return Numbering{}, false
	}

	main, _ := strconv.Atoi(m[1])
	if m[2] == "" {
		return Numbering{Chapter: main, Label: strconv.Itoa(main)}, true
	}

	sub, _ := strconv.Atoi(m[3])
	return Numbering{Chapter: main, SuffixType: m[2], SuffixNum: sub, Label: fmt.Sprintf("%d%s%d", main, m[2], sub)}, true
}

func looksLikeChapterLink(href, title string) bool {
	h := strings.ToLower(href)
	if reLikelyChapter.MatchString(h) || batoVol.MatchString(h) || batoSimple.MatchString(h) {
		return true
	}

	t := strings.ToLower(strings.TrimSpace(title))

	return strings.HasPrefix(t, "ch ") || strings.HasPrefix(t, "ch.") || strings.HasPrefix(t, "chapter ")
}

// looksLikeChapterSegment reports whether a path segment carries chapter or
// page numbering rather than naming the series.
func looksLikeChapterSegment(seg string) bool {
	s := strings.ToLower(seg)
	if reLikelyChapter.MatchString(s) {
		return true
	}

	return strings.Trim(s, "0123456789.") == ""
}

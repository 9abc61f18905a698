package pdf

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// pageRange is an inclusive run of 1-based page numbers
type pageRange struct {
	From int
	Thru int
}

func (r pageRange) String() string {
	if r.From == r.Thru {
		return strconv.Itoa(r.From)
	}
	return fmt.Sprintf("%d-%d", r.From, r.Thru)
}

func (r pageRange) pages() []int {
	pages := make([]int, 0, r.Thru-r.From+1)
	for p := r.From; p <= r.Thru; p++ {
		pages = append(pages, p)
	}
	return pages
}

func allPages(count int) []int {
	return pageRange{From: 1, Thru: count}.pages()
}

// parsePages resolves a page selection against a document of count pages.
//
// Items are comma separated: "3", "2-5", "4-" (through the last page),
// "-3" (from the first page), "odd", "even", "all" and "last", which may
// also bound a range as in "2-last". Pages come back in the order written
// and duplicates are kept, so callers that need a set use uniquePages.
// An empty selection means every page.
func parsePages(expr string, count int) ([]int, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return allPages(count), nil
	}

	var pages []int
	for _, item := range strings.Split(expr, ",") {
		item = strings.ToLower(strings.TrimSpace(item))
		switch item {
		case "":
			return nil, fmt.Errorf("empty item in page selection %q", expr)
		case "all":
			pages = append(pages, allPages(count)...)
		case "odd", "even":
			start := 1
			if item == "even" {
				start = 2
			}
			for p := start; p <= count; p += 2 {
				pages = append(pages, p)
			}
		default:
			r, err := parseRange(item, count)
			if err != nil {
				return nil, err
			}
			pages = append(pages, r.pages()...)
		}
	}

	if len(pages) == 0 {
		return nil, fmt.Errorf("page selection %q matches no pages", expr)
	}
	return pages, nil
}

// parseRanges splits a selection into one range per comma separated item
func parseRanges(expr string, count int) ([]pageRange, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("no page ranges given")
	}

	var ranges []pageRange
	for _, item := range strings.Split(expr, ",") {
		item = strings.ToLower(strings.TrimSpace(item))
		if item == "" {
			return nil, fmt.Errorf("empty item in page ranges %q", expr)
		}
		if item == "all" {
			ranges = append(ranges, pageRange{From: 1, Thru: count})
			continue
		}
		r, err := parseRange(item, count)
		if err != nil {
			return nil, err
		}
		ranges = append(ranges, r)
	}
	return ranges, nil
}

func parseRange(item string, count int) (pageRange, error) {
	from, thru, isRange := strings.Cut(item, "-")
	if !isRange {
		n, err := parseBound(item, count)
		if err != nil {
			return pageRange{}, err
		}
		return pageRange{From: n, Thru: n}, nil
	}

	r := pageRange{From: 1, Thru: count}
	var err error
	if from = strings.TrimSpace(from); from != "" {
		if r.From, err = parseBound(from, count); err != nil {
			return pageRange{}, err
		}
	}
	if thru = strings.TrimSpace(thru); thru != "" {
		if r.Thru, err = parseBound(thru, count); err != nil {
			return pageRange{}, err
		}
	}
	if r.From > r.Thru {
		return pageRange{}, fmt.Errorf("invalid page range %q: start is after end", item)
	}
	return r, nil
}

func parseBound(s string, count int) (int, error) {
	if s == "last" {
		return count, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid page number %q", s)
	}
	if n < 1 || n > count {
		return 0, fmt.Errorf("page %d is out of range (document has %d pages)", n, count)
	}
	return n, nil
}

// spanRanges cuts count pages into consecutive chunks of span pages
func spanRanges(count, span int) []pageRange {
	ranges := make([]pageRange, 0, (count+span-1)/span)
	for from := 1; from <= count; from += span {
		thru := from + span - 1
		if thru > count {
			thru = count
		}
		ranges = append(ranges, pageRange{From: from, Thru: thru})
	}
	return ranges
}

// uniquePages returns the distinct pages in ascending order
func uniquePages(pages []int) []int {
	seen := make(map[int]bool, len(pages))
	result := make([]int, 0, len(pages))
	for _, p := range pages {
		if !seen[p] {
			seen[p] = true
			result = append(result, p)
		}
	}
	sort.Ints(result)
	return result
}

// pageStrings converts page numbers to the selection form pdfcpu expects
func pageStrings(pages []int) []string {
	result := make([]string, len(pages))
	for i, p := range pages {
		result[i] = strconv.Itoa(p)
	}
	return result
}

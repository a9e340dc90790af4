package bref

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Table ids on a team season page.
const (
	RosterTableID  = "roster"
	PerGameTableID = "per_game_stats"
	// older season pages
	legacyPerGameTableID = "per_game"
)

// ErrExtractionEmpty is returned when a required element is not on the page.
var ErrExtractionEmpty = errors.New("element not found")

var recordPattern = regexp.MustCompile(`(\d+)-(\d+)`)

// ParseDocument parses page markup. Secondary tables are shipped inside
// HTML comments, so the comment markers are removed before parsing.
func ParseDocument(markup string) (*goquery.Document, error) {
	markup = strings.ReplaceAll(markup, "<!--", "")
	markup = strings.ReplaceAll(markup, "-->", "")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}
	return doc, nil
}

// ExtractRecord reads the win-loss record from the scoreboard block.
// The first text node matching "<wins>-<losses>" wins.
func ExtractRecord(doc *goquery.Document) (wins, losses int, err error) {
	board := doc.Find("div.scoreboard").First()
	if board.Length() == 0 {
		return 0, 0, fmt.Errorf("scoreboard: %w", ErrExtractionEmpty)
	}

	for _, text := range strippedStrings(board) {
		m := recordPattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		wins, err = strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		losses, err = strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		return wins, losses, nil
	}

	return 0, 0, fmt.Errorf("scoreboard record: %w", ErrExtractionEmpty)
}

// strippedStrings returns the non-blank text nodes under sel in document order.
func strippedStrings(sel *goquery.Selection) []string {
	var out []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if s := strings.TrimSpace(n.Data); s != "" {
				out = append(out, s)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return out
}

// FindTable returns table#id or ErrExtractionEmpty.
func FindTable(doc *goquery.Document, id string) (*goquery.Selection, error) {
	table := doc.Find("table#" + id).First()
	if table.Length() == 0 && id == PerGameTableID {
		table = doc.Find("table#" + legacyPerGameTableID).First()
	}
	if table.Length() == 0 {
		return nil, fmt.Errorf("table %s: %w", id, ErrExtractionEmpty)
	}
	return table, nil
}

// columns maps normalized header labels to cell positions.
type columns map[string]int

// headerRow returns the last row of <thead>. Tables without one get their
// header from the first row made only of th cells, which the parser places
// in the body.
func headerRow(table *goquery.Selection) *goquery.Selection {
	head := table.Find("thead tr").Last()
	if head.Length() > 0 {
		return head
	}
	if first := table.Find("tbody tr").First(); isHeaderOnly(first) {
		return first
	}
	return head
}

// isHeaderOnly reports whether every cell of row is a th.
func isHeaderOnly(row *goquery.Selection) bool {
	cells := row.Children().Filter("th,td")
	return cells.Length() > 0 && cells.Filter("td").Length() == 0
}

// mapColumns reads the header row of table. Blank headers fall back to the
// cell's data-stat attribute, prefixed with "@".
func mapColumns(table *goquery.Selection) columns {
	cols := columns{}
	headerRow(table).Children().Filter("th,td").Each(func(i int, cell *goquery.Selection) {
		label := normHeader(cell.Text())
		if label == "" {
			if stat, ok := cell.Attr("data-stat"); ok {
				label = "@" + stat
			}
		}
		if _, seen := cols[label]; label != "" && !seen {
			cols[label] = i
		}
	})
	return cols
}

// index returns the first position of any of the labels, or -1.
func (c columns) index(labels ...string) int {
	for _, l := range labels {
		if i, ok := c[l]; ok {
			return i
		}
	}
	return -1
}

func normHeader(s string) string {
	s = strings.ToLower(strings.Join(strings.Fields(s), " "))
	s = strings.ReplaceAll(s, ".", "")
	return strings.TrimSpace(s)
}

// tableRows returns body rows, leaving out the header row and repeated
// header rows.
func tableRows(table *goquery.Selection) []*goquery.Selection {
	var rows []*goquery.Selection
	head := headerRow(table)
	table.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
		if head.Length() > 0 && row.IsSelection(head) {
			return
		}
		if row.HasClass("thead") || row.HasClass("over_header") || row.HasClass("spacer") {
			return
		}
		rows = append(rows, row)
	})
	return rows
}

// rowCells returns the th/td cells of row in order.
func rowCells(row *goquery.Selection) []*goquery.Selection {
	var cells []*goquery.Selection
	row.Children().Filter("th,td").Each(func(_ int, cell *goquery.Selection) {
		cells = append(cells, cell)
	})
	return cells
}

// cellText returns the trimmed text at position i, or "" when out of range.
func cellText(cells []*goquery.Selection, i int) string {
	if i < 0 || i >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[i].Text())
}

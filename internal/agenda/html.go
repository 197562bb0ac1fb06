package agenda

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"sessionics/internal/model"
)

// Selectors of a saved agenda page.
const (
	selSession     = ".session"
	selTitle       = ".session-title"
	selCode        = ".session-code"
	selType        = ".session-type"
	selDate        = ".session-date"
	selTime        = ".session-time"
	selLocation    = ".session-location"
	selDescription = ".session-description"
	selSpeaker     = ".session-speaker"
	selSpeakerName = ".speaker-name"
	selSpeakerCo   = ".speaker-company"
	selSpeakerJob  = ".speaker-title"
	selReserved    = ".reserved-badge"

	classPersonal = "calendar-item"
	classReserved = "reserved"
)

// PageAgenda is what a saved agenda page lists. Every entry is in Sessions;
// entries marked as reserved are in Reserved as well.
type PageAgenda struct {
	Sessions []Record
	Reserved []Record
}

// ParseHTML discovers the session containers of an agenda page and reads
// their fields. Time text is left unparsed for Parser.
func ParseHTML(r io.Reader) (PageAgenda, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return PageAgenda{}, fmt.Errorf("agenda: parse html: %w", err)
	}

	var page PageAgenda
	doc.Find(selSession).Each(func(i int, sel *goquery.Selection) {
		rec := htmlRecord(i, sel)
		page.Sessions = append(page.Sessions, rec)
		if sel.HasClass(classReserved) || sel.Find(selReserved).Length() > 0 {
			page.Reserved = append(page.Reserved, rec)
		}
	})
	return page, nil
}

func htmlRecord(i int, sel *goquery.Selection) Record {
	id, ok := sel.Attr("data-session-id")
	if !ok || id == "" {
		id = fmt.Sprint(i + 1)
	}

	personal := sel.HasClass(classPersonal)
	rec := Record{
		Shape: Shape{
			Code:         text(sel, selCode),
			CalendarItem: personal,
		},
		ID:        id,
		Title:     text(sel, selTitle),
		Abstract:  text(sel, selDescription),
		TypeLabel: text(sel, selType),
	}
	if personal {
		rec.Location = text(sel, selLocation)
	}

	sel.Find(selSpeaker).Each(func(_ int, sp *goquery.Selection) {
		name := text(sp, selSpeakerName)
		if name == "" {
			name = clean(sp.Text())
		}
		rec.Speakers = append(rec.Speakers, model.Speaker{
			Name:     name,
			Company:  text(sp, selSpeakerCo),
			JobTitle: text(sp, selSpeakerJob),
		})
	})

	date, clock := text(sel, selDate), text(sel, selTime)
	if date != "" || clock != "" {
		rec.Slots = []Slot{{
			Location: text(sel, selLocation),
			Text:     joinNonEmpty(", ", date, clock),
		}}
	}
	return rec
}

// text returns the whitespace-collapsed text of the first match.
func text(sel *goquery.Selection, selector string) string {
	return clean(sel.Find(selector).First().Text())
}

func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func joinNonEmpty(sep string, parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}

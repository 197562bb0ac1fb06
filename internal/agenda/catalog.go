package agenda

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"

	appLog "sessionics/internal/log"
	"sessionics/internal/model"
)

// Catalog is a session catalog keyed by schedule uid. Records are kept raw
// and converted on lookup, since catalog exports vary in shape.
type Catalog struct {
	byUID map[string]gjson.Result
	order []string
}

// LoadCatalog reads a catalog export: a top-level array of session objects,
// or an object holding that array under "sessions" or "data".
func LoadCatalog(data []byte) (*Catalog, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("agenda: catalog is not valid JSON")
	}
	root := gjson.ParseBytes(data)
	list := root
	if !root.IsArray() {
		list = root.Get("sessions")
		if !list.Exists() {
			list = root.Get("data")
		}
	}
	if !list.IsArray() {
		return nil, errors.New("agenda: catalog has no session list")
	}

	c := &Catalog{byUID: make(map[string]gjson.Result)}
	list.ForEach(func(_, v gjson.Result) bool {
		uid := v.Get("scheduleUid").String()
		if uid == "" {
			appLog.Warn("catalog entry without scheduleUid", "record", catalogRecord(v).Label())
			return true
		}
		if _, dup := c.byUID[uid]; !dup {
			c.order = append(c.order, uid)
		}
		c.byUID[uid] = v
		return true
	})
	return c, nil
}

// Len is the number of distinct schedule uids.
func (c *Catalog) Len() int { return len(c.order) }

// Lookup returns the record stored under uid.
func (c *Catalog) Lookup(uid string) (Record, bool) {
	v, ok := c.byUID[uid]
	if !ok {
		return Record{}, false
	}
	return catalogRecord(v), true
}

// Resolve looks up every reference in order. References missing from the
// catalog are logged and dropped; the rest keep their relative order.
func (c *Catalog) Resolve(list string, refs []string) []Record {
	out := make([]Record, 0, len(refs))
	for _, ref := range refs {
		rec, ok := c.Lookup(ref)
		if !ok {
			appLog.Warn("unresolved session reference", "list", list, "scheduleUid", ref)
			continue
		}
		out = append(out, rec)
	}
	return out
}

// Interests is the user's interests export: schedule uids they follow and
// the ones they hold a reservation for.
type Interests struct {
	Interested []string
	Reserved   []string
}

// ParseInterests reads an interests export. Lists may hold bare uids or
// objects with a scheduleUid field.
func ParseInterests(data []byte) (Interests, error) {
	if !gjson.ValidBytes(data) {
		return Interests{}, errors.New("agenda: interests file is not valid JSON")
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return Interests{}, fmt.Errorf("agenda: interests file must be an object, got %s", root.Type)
	}
	return Interests{
		Interested: refList(firstExisting(root, "interests", "interested", "followed")),
		Reserved:   refList(firstExisting(root, "reserved", "reservations")),
	}, nil
}

func firstExisting(root gjson.Result, keys ...string) gjson.Result {
	for _, k := range keys {
		if v := root.Get(k); v.Exists() {
			return v
		}
	}
	return gjson.Result{}
}

func refList(v gjson.Result) []string {
	out := []string{}
	for _, item := range v.Array() {
		ref := item.String()
		if item.IsObject() {
			ref = item.Get("scheduleUid").String()
		}
		if ref != "" {
			out = append(out, ref)
		}
	}
	return out
}

// catalogRecord converts one raw catalog object. Fields of unexpected JSON
// type read as empty.
func catalogRecord(v gjson.Result) Record {
	rec := Record{
		Shape: Shape{
			Code:         stringField(v, "code"),
			CalendarItem: v.Get("calendarItem").Bool() || v.Get("isCalendarItem").Bool(),
			TypeTag:      stringField(v, "itemType"),
		},
		ID:       idField(v, "id", "sessionID", "scheduleUid"),
		Title:    stringField(v, "title"),
		Abstract: firstString(v, "abstract", "description"),
		Location: stringField(v, "location"),
	}

	attrs := catalogAttributes(v.Get("attributevalues"))
	if len(attrs) > 0 {
		rec.TypeLabel = attrs.First(AttrSessionType)
		rec.Topics = attrs.Values(AttrTopic)
		rec.Areas = attrs.Values(AttrAreaOfInterest)
	} else {
		rec.TypeLabel = stringField(v, "type")
		rec.Topics = stringList(v.Get("topics"))
		rec.Areas = stringList(v.Get("areasOfInterest"))
	}

	for _, sp := range v.Get("speakers").Array() {
		rec.Speakers = append(rec.Speakers, model.Speaker{
			Name:     firstString(sp, "name", "fullName"),
			Company:  firstString(sp, "company", "companyName"),
			JobTitle: stringField(sp, "jobTitle"),
		})
	}

	for _, t := range v.Get("times").Array() {
		rec.Slots = append(rec.Slots, catalogSlot(t))
	}
	if v.Get("date").Exists() || v.Get("time").Exists() {
		slot := catalogSlot(v)
		if slot.Location == "" {
			slot.Location = rec.Location
		}
		rec.Slots = append(rec.Slots, slot)
	}
	return rec
}

func catalogSlot(t gjson.Result) Slot {
	return Slot{
		Location: firstString(t, "location", "room"),
		Capacity: int(t.Get("capacity").Int()),
		UTCStart: stringField(t, "utcStartTime"),
		UTCEnd:   stringField(t, "utcEndTime"),
		Date:     stringField(t, "date"),
		Clock:    stringField(t, "time"),
		Minutes:  lenientMinutes(t.Get("length").Raw),
	}
}

func catalogAttributes(v gjson.Result) Attributes {
	var out Attributes
	for _, a := range v.Array() {
		out = append(out, Attribute{
			ID:    stringField(a, "attribute_id"),
			Name:  stringField(a, "name"),
			Value: stringField(a, "value"),
		})
	}
	return out
}

// stringField returns the field only when it is a JSON string.
func stringField(v gjson.Result, key string) string {
	f := v.Get(key)
	if f.Type != gjson.String {
		return ""
	}
	return f.Str
}

// idField accepts numeric ids as well as strings.
func idField(v gjson.Result, keys ...string) string {
	for _, k := range keys {
		f := v.Get(k)
		switch f.Type {
		case gjson.String:
			if f.Str != "" {
				return f.Str
			}
		case gjson.Number:
			return f.Raw
		}
	}
	return ""
}

func firstString(v gjson.Result, keys ...string) string {
	for _, k := range keys {
		if s := stringField(v, k); s != "" {
			return s
		}
	}
	return ""
}

func stringList(v gjson.Result) []string {
	out := []string{}
	for _, item := range v.Array() {
		if item.Type == gjson.String {
			out = append(out, item.Str)
		}
	}
	return out
}

package agenda

// Attribute keys used by the agenda API's attribute bag.
const (
	AttrSessionType    = "Sessiontypes"
	AttrTopic          = "Topic"
	AttrAreaOfInterest = "Areaofinterest"
)

// Attribute is one {attribute_id, value} pair. Some exports name the key
// "name" instead of "attribute_id".
type Attribute struct {
	ID    string `json:"attribute_id"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

func (a Attribute) key() string {
	if a.ID != "" {
		return a.ID
	}
	return a.Name
}

// Attributes is an attribute bag, possibly nil.
type Attributes []Attribute

// Values returns the values stored under key, in listing order. The match is
// exact; a nil bag yields an empty slice.
func (as Attributes) Values(key string) []string {
	out := []string{}
	for _, a := range as {
		if a.key() == key {
			out = append(out, a.Value)
		}
	}
	return out
}

// First returns the first value under key, or "".
func (as Attributes) First(key string) string {
	if v := as.Values(key); len(v) > 0 {
		return v[0]
	}
	return ""
}

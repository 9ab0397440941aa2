package links

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"

	"github.com/tahp/LinkManager/internal/model"
)

// decodeRecord turns one stored record into a Link, filling every missing
// or mistyped field with its default. healed is true when a generated value
// (id or creation time) was filled in and must be persisted to stay stable.
// ok is false only when raw is not a JSON object.
func (r *Repository) decodeRecord(raw json.RawMessage) (link model.Link, healed, ok bool) {
	var fields map[string]json.RawMessage
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil || fields == nil {
		return model.Link{}, false, false
	}

	link = model.Link{
		ID:                   stringField(fields, "id"),
		URL:                  stringField(fields, "url"),
		Title:                stringField(fields, "title"),
		Notes:                stringField(fields, "notes"),
		IsDefault:            boolField(fields, "is_default"),
		ReminderTimestamp:    intField(fields, "reminder_timestamp"),
		LastVisitedTimestamp: intField(fields, "last_visited_timestamp"),
		VisitCount:           intField(fields, "visit_count"),
		CreatedTimestamp:     intField(fields, "created_timestamp"),
	}

	if strings.TrimSpace(link.ID) == "" {
		link.ID = r.newID()
		healed = true
	}
	if link.Title == "" {
		link.Title = link.URL
	}
	if _, present := fields["created_timestamp"]; !present {
		link.CreatedTimestamp = r.now().Unix()
		healed = true
	}
	if link.VisitCount < 0 {
		link.VisitCount = 0
	}
	return link, healed, true
}

func stringField(fields map[string]json.RawMessage, key string) string {
	var s string
	if raw, ok := fields[key]; ok {
		_ = json.Unmarshal(raw, &s)
	}
	return s
}

func boolField(fields map[string]json.RawMessage, key string) bool {
	var b bool
	if raw, ok := fields[key]; ok {
		_ = json.Unmarshal(raw, &b)
	}
	return b
}

// intField accepts integers and floats; fractional values are truncated.
func intField(fields map[string]json.RawMessage, key string) int64 {
	raw, ok := fields[key]
	if !ok {
		return 0
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	f, err := n.Float64()
	if err != nil || math.IsNaN(f) || f > math.MaxInt64 || f < math.MinInt64 {
		return 0
	}
	return int64(f)
}

func encodeRecords(links []model.Link) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, 0, len(links))
	for _, l := range links {
		data, err := json.Marshal(l)
		if err != nil {
			return nil, err
		}
		out = append(out, data)
	}
	return out, nil
}

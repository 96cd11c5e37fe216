package manuscript

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// timeNow is a package-level variable for testability.
var timeNow = time.Now

// legacyLayouts are accepted when decoding sidecars. Older sidecars carry
// naive ISO timestamps without a zone; those are read as local time.
var legacyLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// flexTime decodes RFC 3339 timestamps as well as the legacy layouts.
type flexTime struct {
	time.Time
	set bool
}

func (f *flexTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		if string(data) == "null" {
			return nil
		}
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		f.Time, f.set = t, true
		return nil
	}
	for _, layout := range legacyLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			f.Time, f.set = t, true
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}

// UnmarshalJSON accepts both current and legacy timestamp layouts.
func (m *ManuscriptMetadata) UnmarshalJSON(data []byte) error {
	type plain ManuscriptMetadata
	aux := struct {
		*plain
		CreatedAt  flexTime `json:"created_at"`
		LastEdited flexTime `json:"last_edited"`
	}{plain: (*plain)(m)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.CreatedAt.set {
		m.CreatedAt = aux.CreatedAt.Time
	}
	if aux.LastEdited.set {
		m.LastEdited = aux.LastEdited.Time
	}
	return nil
}

// UnmarshalJSON accepts both current and legacy timestamp layouts and
// applies the defaults of a freshly created project to missing fields.
func (p *Project) UnmarshalJSON(data []byte) error {
	type plain Project
	aux := struct {
		*plain
		CreatedAt  flexTime `json:"created_at"`
		LastEdited flexTime `json:"last_edited"`
	}{plain: (*plain)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.CreatedAt.set {
		p.CreatedAt = aux.CreatedAt.Time
	}
	if aux.LastEdited.set {
		p.LastEdited = aux.LastEdited.Time
	}
	p.Normalize()
	return nil
}

// UnmarshalJSON accepts both current and legacy timestamp layouts.
func (r *EditorReview) UnmarshalJSON(data []byte) error {
	type plain EditorReview
	aux := struct {
		*plain
		Timestamp flexTime `json:"timestamp"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Timestamp.set {
		r.Timestamp = aux.Timestamp.Time
	}
	return nil
}

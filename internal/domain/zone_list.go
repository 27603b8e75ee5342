package domain

import (
	"fmt"
	"strings"
)

// MaxZonesPerList bounds a generated zone list
const MaxZonesPerList = 5000

// ZoneListSpec describes a zone-id list: a prefix with a numeric range plus
// free-form custom entries appended after the range.
type ZoneListSpec struct {
	Prefix string   `bson:"prefix" json:"prefix" yaml:"prefix"`
	Start  int      `bson:"start" json:"start" yaml:"start"`
	End    int      `bson:"end" json:"end" yaml:"end"`
	Width  int      `bson:"width" json:"width" yaml:"width"` // zero-pad numbers to this many digits
	Custom []string `bson:"custom,omitempty" json:"custom,omitempty" yaml:"custom,omitempty"`
}

// IsEmpty reports whether the list describes no zones at all
func (s ZoneListSpec) IsEmpty() bool {
	return strings.TrimSpace(s.Prefix) == "" && len(s.Custom) == 0
}

// Validate checks the range bounds
func (s ZoneListSpec) Validate() error {
	if strings.TrimSpace(s.Prefix) == "" {
		return nil
	}
	if s.Start < 0 || s.End < s.Start {
		return fmt.Errorf("%w: range %d..%d", ErrInvalidZoneList, s.Start, s.End)
	}
	if span := s.End - s.Start; span >= MaxZonesPerList || span+1+len(s.Custom) > MaxZonesPerList {
		return fmt.Errorf("%w: more than %d zones", ErrInvalidZoneList, MaxZonesPerList)
	}
	if s.Width < 0 {
		return fmt.Errorf("%w: negative width", ErrInvalidZoneList)
	}
	return nil
}

// Expand returns the ordered zone ids: the prefixed range first, then the
// custom entries. Entries are trimmed, blanks dropped, and duplicates keep
// their first position.
func (s ZoneListSpec) Expand() ([]string, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(s.Custom))
	if prefix := strings.TrimSpace(s.Prefix); prefix != "" {
		for i := 0; i <= s.End-s.Start; i++ {
			ids = append(ids, fmt.Sprintf("%s%0*d", prefix, s.Width, s.Start+i))
		}
	}
	ids = append(ids, s.Custom...)

	return NormalizeZoneIDs(ids), nil
}

// NormalizeZoneIDs trims ids, drops blanks and removes duplicates while
// keeping input order.
func NormalizeZoneIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

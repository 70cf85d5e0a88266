package utils

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	// PickupLayout is the layout the fare prediction endpoint expects
	// for pickup_datetime (e.g., "2014-07-06 19:18:00").
	PickupLayout = "2006-01-02 15:04:05"
	// FormLayout is what an HTML datetime-local input submits.
	FormLayout = "2006-01-02T15:04"
)

// PickupTime wraps time.Time to enable custom JSON marshaling/unmarshaling
// using the PickupLayout format.
type PickupTime time.Time

// MarshalJSON serializes the PickupTime to JSON in PickupLayout format.
func (d PickupTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(d).Format(PickupLayout))
}

// UnmarshalJSON accepts PickupLayout, FormLayout or RFC 3339.
func (d *PickupTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	t, err := ParsePickupTime(s)
	if err != nil {
		return err
	}
	*d = PickupTime(t)
	return nil
}

// Time returns the underlying time.Time value of the PickupTime.
func (d PickupTime) Time() time.Time {
	return time.Time(d)
}

// String formats the time the way the prediction endpoint expects it.
func (d PickupTime) String() string {
	return time.Time(d).Format(PickupLayout)
}

// ParsePickupTime parses a wall-clock pickup time. An empty string yields the zero time.
func ParsePickupTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{PickupLayout, FormLayout, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid pickup datetime %q", s)
}

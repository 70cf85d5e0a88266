package utils

import (
	"encoding/json"
	"testing"
	"time"
)

func TestMakeMap(t *testing.T) {
	m := MakeMap("upstream", "predict")
	if len(m) != 1 || m["upstream"] != "predict" {
		t.Errorf("unexpected map: %v", m)
	}
}

func TestParsePickupTime(t *testing.T) {
	want := time.Date(2014, 7, 6, 19, 18, 0, 0, time.UTC)

	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{"prediction layout", "2014-07-06 19:18:00", want, false},
		{"form layout", "2014-07-06T19:18", want, false},
		{"rfc3339", "2014-07-06T19:18:00Z", want, false},
		{"empty", "", time.Time{}, false},
		{"garbage", "next tuesday", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePickupTime(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePickupTime(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParsePickupTime(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestPickupTimeJSON(t *testing.T) {
	pt := PickupTime(time.Date(2014, 7, 6, 19, 18, 0, 0, time.UTC))

	data, err := json.Marshal(pt)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `"2014-07-06 19:18:00"` {
		t.Errorf("unexpected JSON: %s", data)
	}

	var decoded PickupTime
	if err := json.Unmarshal([]byte(`"2014-07-06T19:18"`), &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if decoded.String() != "2014-07-06 19:18:00" {
		t.Errorf("unexpected decoded time: %s", decoded)
	}

	if err := json.Unmarshal([]byte(`12`), &decoded); err == nil {
		t.Error("expected error for non-string JSON")
	}
}

package models

import "testing"

func TestTagListRoundTrip(t *testing.T) {
	value, err := TagList{"work", "with space", `quo"te`}.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}

	var got TagList
	if err := got.Scan(value); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(got) != 3 || got[1] != "with space" || got[2] != `quo"te` {
		t.Fatalf("round trip = %q", got)
	}
}

func TestTagListEmpty(t *testing.T) {
	value, err := TagList(nil).Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	if value != "{}" {
		t.Fatalf("nil tags stored as %v, want {}", value)
	}

	var got TagList
	if err := got.Scan(nil); err != nil {
		t.Fatalf("scan nil: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("scan nil = %#v, want empty list", got)
	}
}

package types

import "testing"

func TestPageQueryNormalize(t *testing.T) {
	tcs := []struct {
		in   PageQuery
		want PageQuery
	}{
		{PageQuery{}, PageQuery{Page: 1, Limit: 10}},
		{PageQuery{Page: -3, Limit: -1}, PageQuery{Page: 1, Limit: 10}},
		{PageQuery{Page: 4, Limit: 500}, PageQuery{Page: 4, Limit: MaxPageSize}},
		{PageQuery{Page: 2, Limit: 5}, PageQuery{Page: 2, Limit: 5}},
	}
	for _, tc := range tcs {
		if got := tc.in.Normalize(10); got != tc.want {
			t.Errorf("Normalize(%+v) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
	if off := (PageQuery{Page: 3, Limit: 20}).Offset(); off != 40 {
		t.Fatalf("offset = %d, want 40", off)
	}
}

func TestNewPaginationMeta(t *testing.T) {
	meta := NewPaginationMeta(PageQuery{Page: 1, Limit: 10}, 21)
	if meta.Pages != 3 || meta.Total != 21 {
		t.Fatalf("unexpected meta: %+v", meta)
	}
	if empty := NewPaginationMeta(PageQuery{Page: 1, Limit: 10}, 0); empty.Pages != 0 {
		t.Fatalf("empty pages = %d", empty.Pages)
	}
}

func TestIsAllowedEmoji(t *testing.T) {
	for _, e := range AllowedEmojis {
		if !IsAllowedEmoji(e) {
			t.Fatalf("%q should be allowed", e)
		}
	}
	if IsAllowedEmoji("👍") || IsAllowedEmoji("") {
		t.Fatal("unexpected emoji allowed")
	}
}

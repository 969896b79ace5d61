package pagination

import "testing"

func TestNormalizeLimit(t *testing.T) {
	t.Parallel()

	if NormalizeLimit(0) != DefaultLimit {
		t.Fatal("zero limit should fall back to default")
	}
	if NormalizeLimit(-3) != DefaultLimit {
		t.Fatal("negative limit should fall back to default")
	}
	if NormalizeLimit(MaxLimit+50) != MaxLimit {
		t.Fatal("limit should be capped")
	}
	if NormalizeLimit(10) != 10 {
		t.Fatal("valid limit should be preserved")
	}
}

func TestPageFor(t *testing.T) {
	t.Parallel()

	page := PageFor(Params{Limit: 10, Offset: 20}, 35)
	if page.Total != 35 || page.Limit != 10 || page.Offset != 20 {
		t.Fatalf("unexpected page: %+v", page)
	}
	if !page.HasMore {
		t.Fatal("expected more rows past offset 30")
	}

	last := PageFor(Params{Limit: 10, Offset: 30}, 35)
	if last.HasMore {
		t.Fatal("expected no more rows past offset 40")
	}
}

func TestSliceBounds(t *testing.T) {
	t.Parallel()

	start, end := Params{Limit: 10, Offset: 30}.Slice(35)
	if start != 30 || end != 35 {
		t.Fatalf("unexpected bounds: [%d, %d)", start, end)
	}

	start, end = Params{Limit: 10, Offset: 100}.Slice(35)
	if start != 35 || end != 35 {
		t.Fatalf("offset past total should yield empty slice, got [%d, %d)", start, end)
	}
}

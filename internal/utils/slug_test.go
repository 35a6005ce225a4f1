package utils

import "testing"

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Hillside Villa":             "hillside-villa",
		"  Hillside   Villa  ":       "hillside-villa",
		"Loft #42 — Berlin":          "loft-42-berlin",
		"ALL CAPS TITLE":             "all-caps-title",
		"trailing punctuation!!!":    "trailing-punctuation",
		"---":                        "",
		"Crème Brûlée Pavilion":      "crme-brle-pavilion",
		"2024 Year in Review":        "2024-year-in-review",
		"mixed_underscores_and tabs": "mixed-underscores-and-tabs",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q; want %q", in, got, want)
		}
	}
}

func TestAtoiDefault(t *testing.T) {
	if AtoiDefault("42", 0) != 42 {
		t.Error("AtoiDefault(42) failed")
	}
	if AtoiDefault("", 10) != 10 {
		t.Error("AtoiDefault empty default failed")
	}
	if AtoiDefault("x", 5) != 5 {
		t.Error("AtoiDefault invalid default failed")
	}
}

func TestClampPage(t *testing.T) {
	cases := []struct {
		page, size         int
		wantPage, wantSize int
	}{
		{0, 0, 1, 20},
		{-3, 5, 1, 5},
		{2, 500, 2, 100},
		{1, 1, 1, 1},
	}
	for _, c := range cases {
		p, s := ClampPage(c.page, c.size, 20, 100)
		if p != c.wantPage || s != c.wantSize {
			t.Errorf("ClampPage(%d, %d) = (%d, %d); want (%d, %d)",
				c.page, c.size, p, s, c.wantPage, c.wantSize)
		}
	}
}

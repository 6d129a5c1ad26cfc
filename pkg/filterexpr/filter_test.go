package filterexpr

import (
	"strings"
	"testing"
)

var videoSchema = Schema{
	"status":        KindString,
	"media_type":    KindString,
	"filename":      KindString,
	"collection_id": KindString,
	"review_count":  KindNumber,
}

func activation(status, mediaType, filename string, reviews float64) map[string]any {
	return map[string]any{
		"status":        status,
		"media_type":    mediaType,
		"filename":      filename,
		"collection_id": "c1",
		"review_count":  reviews,
	}
}

func TestCompileEmptyMatchesAll(t *testing.T) {
	f, err := Compile("   ", videoSchema)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	ok, err := f.Match(activation("new", "audio", "a.mp3", 0))
	if err != nil || !ok {
		t.Fatalf("expected match-all, got ok=%v err=%v", ok, err)
	}
}

func TestMatchComparisons(t *testing.T) {
	cases := []struct {
		expr string
		want bool
	}{
		{`status == "learning"`, true},
		{`status == "new"`, false},
		{`status in ["new", "learning"]`, true},
		{`media_type == "video" && review_count >= 2.0`, true},
		{`filename.contains("intro")`, true},
		{`filename.startsWith("zzz")`, false},
	}
	values := activation("learning", "video", "intro-03.mp4", 3)
	for _, tc := range cases {
		f, err := Compile(tc.expr, videoSchema)
		if err != nil {
			t.Fatalf("Compile(%q): %v", tc.expr, err)
		}
		got, err := f.Match(values)
		if err != nil {
			t.Fatalf("Match(%q): %v", tc.expr, err)
		}
		if got != tc.want {
			t.Errorf("Match(%q) = %v, want %v", tc.expr, got, tc.want)
		}
	}
}

func TestCompileRejectsUnknownField(t *testing.T) {
	if _, err := Compile(`owner == "me"`, videoSchema); err == nil {
		t.Fatal("expected compile error for undeclared field")
	}
}

func TestCompileRejectsNonBool(t *testing.T) {
	if _, err := Compile(`filename`, videoSchema); err == nil {
		t.Fatal("expected compile error for non-boolean expression")
	}
}

func TestParseOrderBy(t *testing.T) {
	schema := OrderSchema{Default: "date_added", DefaultDesc: true, Keys: []string{"date_added", "filename"}}

	ord, err := ParseOrderBy("", schema)
	if err != nil {
		t.Fatalf("ParseOrderBy default: %v", err)
	}
	if ord.Key != "date_added" || !ord.Desc {
		t.Fatalf("expected default date_added desc, got %+v", ord)
	}

	ord, err = ParseOrderBy("filename ASC", schema)
	if err != nil {
		t.Fatalf("ParseOrderBy: %v", err)
	}
	if ord.Key != "filename" || ord.Desc {
		t.Fatalf("expected filename asc, got %+v", ord)
	}

	for _, bad := range []string{"size desc", "filename sideways", "a b c"} {
		if _, err := ParseOrderBy(bad, schema); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
	if _, err := ParseOrderBy("filename", OrderSchema{}); err == nil || !strings.Contains(err.Error(), "default") {
		t.Errorf("expected schema validation error, got %v", err)
	}
}

package design

import (
	"reflect"
	"testing"
)

func TestApplyDesignConfigNil(t *testing.T) {
	res := ApplyDesignConfig(nil)
	if len(res.Tags) != 0 || len(res.Style) != 0 {
		t.Fatalf("expected empty result, got %+v", res)
	}
	if res.Tags == nil || res.Style == nil {
		t.Fatalf("expected non-nil containers for encoding, got %+v", res)
	}
}

func TestApplyDesignConfigSpacing(t *testing.T) {
	cases := []struct {
		token string
		want  string
	}{
		{"none", "0"},
		{"xs", "0.5rem"},
		{"sm", "1rem"},
		{"md", "1.5rem"},
		{"lg", "2rem"},
		{"xl", "3rem"},
		{"2xl", "4rem"},
		{"3xl", "6rem"},
		{"unknown-token", "unknown-token"},
		{"12px", "12px"},
	}

	for _, tc := range cases {
		res := ApplyDesignConfig(&SectionDesign{Spacing: &Spacing{PaddingTop: tc.token}})
		if got := res.Style["paddingTop"]; got != tc.want {
			t.Fatalf("paddingTop for %q = %q, want %q", tc.token, got, tc.want)
		}
	}
}

func TestApplyDesignConfigSkipsAbsentKeys(t *testing.T) {
	res := ApplyDesignConfig(&SectionDesign{
		Colors:  &Colors{Background: "#000"},
		Spacing: &Spacing{Gap: "md"},
	})

	want := map[string]string{
		"backgroundColor": "#000",
		"gap":             "1.5rem",
	}
	if !reflect.DeepEqual(res.Style, want) {
		t.Fatalf("unexpected style %v", res.Style)
	}
	if len(res.Tags) != 0 {
		t.Fatalf("unexpected tags %v", res.Tags)
	}
}

func TestApplyDesignConfigLayoutFallbacks(t *testing.T) {
	res := ApplyDesignConfig(&SectionDesign{Layout: &Layout{MaxWidth: "lg", TextAlign: "center"}})
	if !reflect.DeepEqual(res.Tags, []string{"max-w-screen-lg", "text-center"}) {
		t.Fatalf("unexpected tags %v", res.Tags)
	}

	res = ApplyDesignConfig(&SectionDesign{Layout: &Layout{MaxWidth: "huge", TextAlign: "justify"}})
	if !reflect.DeepEqual(res.Tags, []string{"max-w-full", "text-left"}) {
		t.Fatalf("unexpected fallback tags %v", res.Tags)
	}
}

func TestApplyDesignConfigBackgroundImageForcesCoverAndCenter(t *testing.T) {
	res := ApplyDesignConfig(&SectionDesign{Assets: &Assets{BackgroundImage: "https://cdn.example.com/hero.jpg"}})

	if res.Style["backgroundImage"] != `url("https://cdn.example.com/hero.jpg")` {
		t.Fatalf("unexpected backgroundImage %q", res.Style["backgroundImage"])
	}
	if res.Style["backgroundSize"] != "cover" || res.Style["backgroundPosition"] != "center" {
		t.Fatalf("expected cover/center pair, got %v", res.Style)
	}

	res = ApplyDesignConfig(&SectionDesign{Assets: &Assets{}})
	if _, ok := res.Style["backgroundSize"]; ok {
		t.Fatalf("background sizing applied without an image: %v", res.Style)
	}
}

func TestApplyDesignConfigIsPure(t *testing.T) {
	d := FromMap(map[string]interface{}{
		"colors":     map[string]interface{}{"background": "#111", "text": "#eee"},
		"spacing":    map[string]interface{}{"paddingTop": "lg", "paddingBottom": "weird"},
		"layout":     map[string]interface{}{"maxWidth": "xl", "textAlign": "right"},
		"typography": map[string]interface{}{"fontFamily": "Inter"},
	})

	first := ApplyDesignConfig(d)
	second := ApplyDesignConfig(d)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("results differ: %+v vs %+v", first, second)
	}
}

func TestApplyDesignConfigBackgroundImageIsQuoted(t *testing.T) {
	res := ApplyDesignConfig(&SectionDesign{Assets: &Assets{
		BackgroundImage: `https://cdn.example.com/a b).jpg"); color: red; x:("\`,
	}})

	want := `url("https://cdn.example.com/a b).jpg\"); color: red; x:(\"\\")`
	if got := res.Style["backgroundImage"]; got != want {
		t.Fatalf("backgroundImage = %s, want %s", got, want)
	}
}

package family

import (
	"testing"

	"github.com/fontrake/fontrake/internal/model"
)

// TestInfer tests fingerprint derivation from declared families and filenames.
func TestInfer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		record     model.FontRecord
		wantKey    string
		wantName   string
		wantWeight string
		wantStyle  string
	}{
		{
			name:       "camel case with trailing variant tokens",
			record:     model.FontRecord{Family: "Roboto-BoldItalic"},
			wantKey:    "roboto",
			wantName:   "Roboto",
			wantWeight: "700",
			wantStyle:  "italic",
		},
		{
			name:     "snake case with numeric weight stays in key",
			record:   model.FontRecord{Family: "open-sans_700"},
			wantKey:  "open sans 700",
			wantName: "Open Sans 700",
		},
		{
			name:       "webfont suffix and weight",
			record:     model.FontRecord{Family: "OpenSansBold-webfont"},
			wantKey:    "open sans bold webfont",
			wantName:   "Open Sans Bold Webfont",
			wantWeight: "",
		},
		{
			name:       "weight word at the end is extracted",
			record:     model.FontRecord{Family: "OpenSans-Bold"},
			wantKey:    "open sans",
			wantName:   "Open Sans",
			wantWeight: "700",
		},
		{
			name:       "extension and hash stripped from filename fallback",
			record:     model.FontRecord{Family: "", Name: "lato-light.a1b2c3d4.woff2"},
			wantKey:    "lato",
			wantName:   "Lato",
			wantWeight: "300",
		},
		{
			name:     "acronym to word split",
			record:   model.FontRecord{Family: "ABCFont"},
			wantKey:  "abc font",
			wantName: "Abc Font",
		},
		{
			name:     "two letter tokens upcased as acronyms",
			record:   model.FontRecord{Family: "pt-sans"},
			wantKey:  "pt sans",
			wantName: "PT Sans",
		},
		{
			name:     "empty everything falls back to unknown",
			record:   model.FontRecord{Family: "", Name: ""},
			wantKey:  "unknown",
			wantName: "Unknown",
		},
		{
			name:       "family exhausted by variant tokens falls back to filename",
			record:     model.FontRecord{Family: "Bold", Name: "merriweather-regular.ttf"},
			wantKey:    "merriweather",
			wantName:   "Merriweather",
			wantWeight: "700",
		},
		{
			name:       "style then weight popped in order",
			record:     model.FontRecord{Family: "SourceSerif-SemiboldItalic"},
			wantKey:    "source serif",
			wantName:   "Source Serif",
			wantWeight: "600",
			wantStyle:  "italic",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Infer(tt.record)
			if got.Key != tt.wantKey {
				t.Errorf("key = %q, want %q", got.Key, tt.wantKey)
			}
			if got.Display != tt.wantName {
				t.Errorf("display = %q, want %q", got.Display, tt.wantName)
			}
			if got.WeightHint != tt.wantWeight {
				t.Errorf("weight hint = %q, want %q", got.WeightHint, tt.wantWeight)
			}
			if got.StyleHint != tt.wantStyle {
				t.Errorf("style hint = %q, want %q", got.StyleHint, tt.wantStyle)
			}
		})
	}
}

// TestInferFilenameHintMerge tests that hints missing from the family pass
// are merged from the filename pass.
func TestInferFilenameHintMerge(t *testing.T) {
	t.Parallel()

	// The family collapses to nothing after the style token is popped, so
	// tokenization restarts on the filename; the weight comes from there
	// while the style from the first pass is kept.
	record := model.FontRecord{Family: "Italic", Name: "karla-bold.woff"}
	got := Infer(record)

	if got.Key != "karla" {
		t.Errorf("key = %q, want %q", got.Key, "karla")
	}
	if got.StyleHint != "italic" {
		t.Errorf("style hint = %q, want %q", got.StyleHint, "italic")
	}
	if got.WeightHint != "700" {
		t.Errorf("weight hint = %q, want %q", got.WeightHint, "700")
	}
}

// TestNormalizeWeight tests raw weight normalization.
func TestNormalizeWeight(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"400", "400"},
		{" 700 ", "700"},
		{"bold", "700"},
		{"Black", "900"},
		{"thin", "100"},
		{"extralight", "200"},
		{"semibold", "600"},
		{"demibold", "600"},
		{"heavy", "900"},
		{"normal", "400"},
		{"", "400"},
		{"wobbly", "wobbly"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			if got := NormalizeWeight(tt.in); got != tt.want {
				t.Errorf("NormalizeWeight(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// TestNormalizeStyle tests that substring matches win over exact equality.
func TestNormalizeStyle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"italic", "italic"},
		{"Italic !important", "italic"},
		{"oblique 14deg", "oblique"},
		{"normal", "normal"},
		{"", "normal"},
		{"small-caps", "normal"},
	}

	for _, tt := range tests {
		if got := NormalizeStyle(tt.in); got != tt.want {
			t.Errorf("NormalizeStyle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// TestEffectiveVariant tests the declared-value-then-hint-then-default chain.
func TestEffectiveVariant(t *testing.T) {
	t.Parallel()

	t.Run("declared non-default wins over hint", func(t *testing.T) {
		t.Parallel()

		record := model.FontRecord{Weight: "300", Style: "oblique"}
		if got := EffectiveWeight(record, "700"); got != "300" {
			t.Errorf("weight = %q, want %q", got, "300")
		}
		if got := EffectiveStyle(record, "italic"); got != "oblique" {
			t.Errorf("style = %q, want %q", got, "oblique")
		}
	})

	t.Run("default declared value yields to hint", func(t *testing.T) {
		t.Parallel()

		record := model.FontRecord{Weight: "400", Style: "normal"}
		if got := EffectiveWeight(record, "700"); got != "700" {
			t.Errorf("weight = %q, want %q", got, "700")
		}
		if got := EffectiveStyle(record, "italic"); got != "italic" {
			t.Errorf("style = %q, want %q", got, "italic")
		}
	})

	t.Run("no hint keeps defaults", func(t *testing.T) {
		t.Parallel()

		record := model.FontRecord{}
		if got := EffectiveWeight(record, ""); got != "400" {
			t.Errorf("weight = %q, want %q", got, "400")
		}
		if got := EffectiveStyle(record, ""); got != "normal" {
			t.Errorf("style = %q, want %q", got, "normal")
		}
	})
}

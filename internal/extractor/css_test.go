package extractor

import (
	"net/url"
	"testing"

	"github.com/fontrake/fontrake/internal/model"
)

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()

	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("failed to parse %q: %v", raw, err)
	}
	return u
}

// TestScanCSS tests font-face extraction from stylesheet text.
func TestScanCSS(t *testing.T) {
	t.Parallel()

	base := mustParse(t, "https://example.com/css/site.css")
	referer := "https://example.com/"

	t.Run("basic font-face rule", func(t *testing.T) {
		t.Parallel()

		css := `@font-face {
			font-family: "Roboto";
			src: url(../fonts/roboto-regular.woff2) format("woff2");
			font-weight: 400;
			font-style: normal;
		}`

		records, imports := scanCSS(css, base, referer)
		if len(imports) != 0 {
			t.Errorf("expected no imports, got %d", len(imports))
		}
		if len(records) != 1 {
			t.Fatalf("expected 1 record, got %d", len(records))
		}

		record := records[0]
		if record.Name != "roboto-regular.woff2" {
			t.Errorf("unexpected name: %s", record.Name)
		}
		if record.Family != "Roboto" {
			t.Errorf("unexpected family: %s", record.Family)
		}
		if record.Format != model.FormatWOFF2 {
			t.Errorf("unexpected format: %s", record.Format)
		}
		if record.URL != "https://example.com/fonts/roboto-regular.woff2" {
			t.Errorf("unexpected URL: %s", record.URL)
		}
		if record.Referer != referer {
			t.Errorf("unexpected referer: %s", record.Referer)
		}
	})

	t.Run("best format wins among sources", func(t *testing.T) {
		t.Parallel()

		css := `@font-face {
			font-family: Lato;
			src: url(lato.eot) format("embedded-opentype"),
			     url(lato.woff2) format("woff2"),
			     url(lato.ttf) format("truetype");
		}`

		records, _ := scanCSS(css, base, referer)
		if len(records) != 1 {
			t.Fatalf("expected 1 record, got %d", len(records))
		}
		if records[0].Format != model.FormatWOFF2 {
			t.Errorf("expected WOFF2 to win, got %s", records[0].Format)
		}
		if records[0].URL != "https://example.com/css/lato.woff2" {
			t.Errorf("unexpected URL: %s", records[0].URL)
		}
	})

	t.Run("first source wins rank ties", func(t *testing.T) {
		t.Parallel()

		css := `@font-face {
			font-family: Lato;
			src: url(lato-a.woff2) format("woff2"), url(lato-b.woff2) format("woff2");
		}`

		records, _ := scanCSS(css, base, referer)
		if len(records) != 1 {
			t.Fatalf("expected 1 record, got %d", len(records))
		}
		if records[0].URL != "https://example.com/css/lato-a.woff2" {
			t.Errorf("expected first source, got %s", records[0].URL)
		}
	})

	t.Run("format falls back to URL extension", func(t *testing.T) {
		t.Parallel()

		css := `@font-face {
			font-family: Karla;
			src: url(/fonts/karla.woff2?v=3);
		}`

		records, _ := scanCSS(css, base, referer)
		if len(records) != 1 {
			t.Fatalf("expected 1 record, got %d", len(records))
		}
		if records[0].Format != model.FormatWOFF2 {
			t.Errorf("unexpected format: %s", records[0].Format)
		}
	})

	t.Run("defaults applied for missing weight and style", func(t *testing.T) {
		t.Parallel()

		css := `@font-face { font-family: Inter; src: url(inter.woff2); }`

		records, _ := scanCSS(css, base, referer)
		if len(records) != 1 {
			t.Fatalf("expected 1 record, got %d", len(records))
		}
		if records[0].Weight != model.DefaultWeight {
			t.Errorf("unexpected weight: %s", records[0].Weight)
		}
		if records[0].Style != model.DefaultStyle {
			t.Errorf("unexpected style: %s", records[0].Style)
		}
	})

	t.Run("rules without family or src are skipped", func(t *testing.T) {
		t.Parallel()

		css := `
		@font-face { src: url(orphan.woff2); }
		@font-face { font-family: Ghost; }
		@font-face { font-family: Real; src: url(real.woff2); }`

		records, _ := scanCSS(css, base, referer)
		if len(records) != 1 {
			t.Fatalf("expected 1 record, got %d", len(records))
		}
		if records[0].Family != "Real" {
			t.Errorf("unexpected family: %s", records[0].Family)
		}
	})

	t.Run("data url source keeps payload and synthesizes name", func(t *testing.T) {
		t.Parallel()

		css := `@font-face {
			font-family: "Open Sans";
			src: url(data:font/woff2;base64,d09GMgABAAAA) format("woff2");
		}`

		records, _ := scanCSS(css, base, referer)
		if len(records) != 1 {
			t.Fatalf("expected 1 record, got %d", len(records))
		}
		if !records[0].IsInline() {
			t.Error("expected inline record")
		}
		if records[0].Name != "open-sans-embedded" {
			t.Errorf("unexpected name: %s", records[0].Name)
		}
	})

	t.Run("minified stylesheet", func(t *testing.T) {
		t.Parallel()

		css := `@font-face{font-family:'Fira Sans';font-style:italic;font-weight:700;src:url(fira.woff2)format('woff2')}body{margin:0}`

		records, _ := scanCSS(css, base, referer)
		if len(records) != 1 {
			t.Fatalf("expected 1 record, got %d", len(records))
		}
		if records[0].Family != "Fira Sans" {
			t.Errorf("unexpected family: %s", records[0].Family)
		}
		if records[0].Weight != "700" || records[0].Style != "italic" {
			t.Errorf("unexpected variant: %s/%s", records[0].Weight, records[0].Style)
		}
	})
}

// TestScanCSSImports tests @import target collection.
func TestScanCSSImports(t *testing.T) {
	t.Parallel()

	base := mustParse(t, "https://example.com/css/site.css")

	tests := []struct {
		name string
		css  string
		want []string
	}{
		{
			name: "url form",
			css:  `@import url("https://fonts.example.com/face.css");`,
			want: []string{"https://fonts.example.com/face.css"},
		},
		{
			name: "bare string form with media query",
			css:  `@import "print.css" print;`,
			want: []string{"https://example.com/css/print.css"},
		},
		{
			name: "unquoted url form",
			css:  `@import url(theme.css);`,
			want: []string{"https://example.com/css/theme.css"},
		},
		{
			name: "no imports",
			css:  `body { color: red; }`,
			want: nil,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, imports := scanCSS(tt.css, base, "")
			if len(imports) != len(tt.want) {
				t.Fatalf("expected %d imports, got %d", len(tt.want), len(imports))
			}
			for i, target := range imports {
				if target.String() != tt.want[i] {
					t.Errorf("import %d: expected %s, got %s", i, tt.want[i], target)
				}
			}
		})
	}
}

// TestParseDeclarations tests the quote and parenthesis aware splitter.
func TestParseDeclarations(t *testing.T) {
	t.Parallel()

	t.Run("semicolon inside url is not a boundary", func(t *testing.T) {
		t.Parallel()

		got := parseDeclarations(`src: url(data:font/woff2;base64,AAAA); font-weight: 700`)
		if got["src"] != "url(data:font/woff2;base64,AAAA)" {
			t.Errorf("unexpected src: %q", got["src"])
		}
		if got["font-weight"] != "700" {
			t.Errorf("unexpected font-weight: %q", got["font-weight"])
		}
	})

	t.Run("semicolon inside quoted string is not a boundary", func(t *testing.T) {
		t.Parallel()

		got := parseDeclarations(`font-family: "A;B"; font-style: italic`)
		if got["font-family"] != `"A;B"` {
			t.Errorf("unexpected font-family: %q", got["font-family"])
		}
		if got["font-style"] != "italic" {
			t.Errorf("unexpected font-style: %q", got["font-style"])
		}
	})

	t.Run("escaped quote does not end the string", func(t *testing.T) {
		t.Parallel()

		got := parseDeclarations(`font-family: "A\";B"; font-weight: 400`)
		if got["font-weight"] != "400" {
			t.Errorf("unexpected font-weight: %q", got["font-weight"])
		}
	})

	t.Run("names are lowercased and trimmed", func(t *testing.T) {
		t.Parallel()

		got := parseDeclarations(`  Font-Family :  Roboto  ; FONT-WEIGHT: 300`)
		if got["font-family"] != "Roboto" {
			t.Errorf("unexpected font-family: %q", got["font-family"])
		}
		if got["font-weight"] != "300" {
			t.Errorf("unexpected font-weight: %q", got["font-weight"])
		}
	})

	t.Run("fragments without a colon are dropped", func(t *testing.T) {
		t.Parallel()

		got := parseDeclarations(`garbage; font-style: oblique`)
		if len(got) != 1 {
			t.Errorf("expected 1 declaration, got %d: %v", len(got), got)
		}
	})
}

// TestSlugify tests name synthesis input normalization.
func TestSlugify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"Open Sans", "open-sans"},
		{"  Roboto  Mono ", "roboto-mono"},
		{"Fira_Sans-2", "fira-sans-2"},
		{"---", ""},
	}

	for _, tt := range tests {
		if got := slugify(tt.input); got != tt.want {
			t.Errorf("slugify(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

// TestNormalizeTarget tests user input URL completion.
func TestNormalizeTarget(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"example.com", "https://example.com"},
		{"https://example.com/page", "https://example.com/page"},
		{"http://example.com", "http://example.com"},
		{"  example.com  ", "https://example.com"},
	}

	for _, tt := range tests {
		if got := NormalizeTarget(tt.input); got != tt.want {
			t.Errorf("NormalizeTarget(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

package extract

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/dgallion1/riostats/internal/catalog"
	"github.com/dgallion1/riostats/internal/doctree"
	"github.com/dgallion1/riostats/internal/parser"
)

func htmlTree(t *testing.T, src string) *doctree.Tree {
	t.Helper()
	tree, err := (&parser.HTMLParser{}).Parse(strings.NewReader(src), "page.html")
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return tree
}

func mustCatalog(t *testing.T, defs []catalog.LabelDefinition, derived ...catalog.DerivedField) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New(defs, derived...)
	if err != nil {
		t.Fatalf("build catalog: %v", err)
	}
	return cat
}

// single builds a one-label catalog and returns its normalized definition.
func single(t *testing.T, def catalog.LabelDefinition) catalog.LabelDefinition {
	t.Helper()
	cat := mustCatalog(t, []catalog.LabelDefinition{def})
	return cat.Labels()[0]
}

func TestExactSibling_ReadsValueFromContainer(t *testing.T) {
	tree := htmlTree(t, `<div class="stat"><span>10+ Runs</span><b>40</b></div>`)
	def := single(t, catalog.LabelDefinition{Key: "runs10plus", Variants: []string{"10+ Runs"}, Strategy: catalog.ExactSibling})

	c, ok := (&ExactSibling{}).Extract(tree, def)
	if !ok {
		t.Fatal("expected a candidate")
	}
	if c.Value != 40 {
		t.Errorf("expected 40, got %v", c.Value)
	}
	if c.Source == nil || c.Source.Tag != "b" {
		t.Errorf("expected source <b>, got %+v", c.Source)
	}
}

func TestExactSibling_RolePriority(t *testing.T) {
	// The emphasis value wins over an earlier text run.
	tree := htmlTree(t, `<div><span>Total Runs</span><span>7</span><strong>55</strong></div>`)
	def := single(t, catalog.LabelDefinition{Key: "totalRuns", Variants: []string{"total runs"}, Strategy: catalog.ExactSibling})

	c, ok := (&ExactSibling{}).Extract(tree, def)
	if !ok || c.Value != 55 {
		t.Errorf("expected 55 from emphasis, got %v (ok=%v)", c.Value, ok)
	}
}

func TestExactSibling_SubstringDoesNotMatch(t *testing.T) {
	tree := htmlTree(t, `<div><span>Total Runs this week</span><b>9</b></div>`)
	def := single(t, catalog.LabelDefinition{Key: "totalRuns", Variants: []string{"total runs"}, Strategy: catalog.ExactSibling})

	if c, ok := (&ExactSibling{}).Extract(tree, def); ok {
		t.Errorf("expected no candidate, got %v", c.Value)
	}
}

func TestExactSibling_StopsAtNearestContainer(t *testing.T) {
	// The row holding the label has no value; the 99 in the outer section
	// belongs to something else.
	tree := htmlTree(t, `<section><b>99</b><div><span>Total Runs</span><b>-</b></div></section>`)
	def := single(t, catalog.LabelDefinition{Key: "t", Variants: []string{"total runs"}, Strategy: catalog.ExactSibling, AncestorClimbLimit: 5})

	if c, ok := (&ExactSibling{}).Extract(tree, def); ok {
		t.Errorf("expected no candidate, got %v from %q", c.Value, c.Raw)
	}
}

func TestExactSibling_ContainerWithinClimbLimit(t *testing.T) {
	src := `<div><b>7</b><span><span><span>Total Runs</span></span></span></div>`
	tree := htmlTree(t, src)

	near := single(t, catalog.LabelDefinition{Key: "t", Variants: []string{"total runs"}, Strategy: catalog.ExactSibling, AncestorClimbLimit: 3})
	if c, ok := (&ExactSibling{}).Extract(tree, near); ok {
		t.Errorf("expected no container within 3 levels, got %v", c.Value)
	}

	far := single(t, catalog.LabelDefinition{Key: "t", Variants: []string{"total runs"}, Strategy: catalog.ExactSibling, AncestorClimbLimit: 4})
	c, ok := (&ExactSibling{}).Extract(tree, far)
	if !ok || c.Value != 7 {
		t.Errorf("expected 7 within 4 levels, got %v (ok=%v)", c.Value, ok)
	}
}

func TestExactSibling_MissingScoreDoesNotBorrowNeighbour(t *testing.T) {
	tree := htmlTree(t, `<div class="scores">
  <div><span>Healer Score</span><b>-</b></div>
  <div><span>DPS Score</span><b>3,380.1</b></div>
</div>`)
	res := ExtractStats(tree, catalog.Default())

	if v, _ := res.Get("healerScore"); v.Present() {
		t.Errorf("expected healerScore absent, got %v", v.Any())
	}
	if v, _ := res.Get("dpsScore"); v.Float() != 3380.1 {
		t.Errorf("expected dpsScore 3380.1, got %v", v.Any())
	}
}

func TestExactSibling_MissingTotalFallsToDerived(t *testing.T) {
	tree := htmlTree(t, `<div><span>Total Runs</span><b>-</b></div><div><span>10+ Runs</span><b>40</b></div>`)
	res := ExtractStats(tree, catalog.Default())

	if v, _ := res.Get("totalRuns"); v.Int() != 40 {
		t.Errorf("expected totalRuns 40, got %v", v.Any())
	}
	for _, r := range res.Resolutions() {
		switch r.Key {
		case "totalRuns":
			if r.Source != SourceDerived {
				t.Errorf("expected totalRuns derived, got %q (raw %q)", r.Source, r.Raw)
			}
		case "runs10plus":
			if r.Source != string(catalog.ExactSibling) {
				t.Errorf("expected runs10plus from exact-sibling, got %q", r.Source)
			}
		}
	}
}

func TestLabelMatching_CaseAndWhitespaceInsensitive(t *testing.T) {
	def := single(t, catalog.LabelDefinition{
		Key:      "runs10plus",
		Variants: []string{"10+ Runs", "10+ läufe"},
		Strategy: catalog.ExactSibling,
	})

	docs := []string{
		`<div><span>10+ Runs</span><b>12</b></div>`,
		`<div><span>10+ LÄUFE</span><b>12</b></div>`,
		`<div><span>  10+   runs </span><b>12</b></div>`,
		"<div><span>10+ Läufe</span><b>12</b></div>",
	}
	for _, src := range docs {
		c, ok := (&ExactSibling{}).Extract(htmlTree(t, src), def)
		if !ok || c.Value != 12 {
			t.Errorf("%s: expected 12, got %v (ok=%v)", src, c.Value, ok)
		}
	}
}

func TestParseInteger_GroupingSeparators(t *testing.T) {
	tests := []struct {
		raw    string
		format catalog.NumberFormat
		want   int64
		ok     bool
	}{
		{"2,897", catalog.FormatUS, 2897, true},
		{"2897", catalog.FormatUS, 2897, true},
		{"2.897", catalog.FormatEU, 2897, true},
		{"2 897", catalog.FormatEU, 2897, true},
		{"1,234,567", catalog.FormatUS, 1234567, true},
		{"2\u00a0897", catalog.FormatUS, 2897, true},
		{"2\u202f897", catalog.FormatEU, 2897, true},
		{"2.897", catalog.FormatUS, 0, false},
		{"12 runs", catalog.FormatUS, 0, false},
		{"", catalog.FormatUS, 0, false},
		{"-5", catalog.FormatUS, 0, false},
	}
	for _, tc := range tests {
		got, err := parseInteger(tc.raw, tc.format)
		if tc.ok != (err == nil) {
			t.Errorf("parseInteger(%q, %s): expected ok=%v, got err=%v", tc.raw, tc.format, tc.ok, err)
			continue
		}
		if got != tc.want {
			t.Errorf("parseInteger(%q, %s): expected %d, got %d", tc.raw, tc.format, tc.want, got)
		}
	}
}

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		raw    string
		format catalog.NumberFormat
		want   float64
		ok     bool
	}{
		{"2,897.6", catalog.FormatUS, 2897.6, true},
		{"2897", catalog.FormatUS, 2897, true},
		{"2.897,6", catalog.FormatEU, 2897.6, true},
		{"3450,5", catalog.FormatEU, 3450.5, true},
		{"2 897,6", catalog.FormatEU, 2897.6, true},
		{"1.2.3", catalog.FormatUS, 0, false},
		{".5", catalog.FormatUS, 0, false},
		{"abc", catalog.FormatUS, 0, false},
	}
	for _, tc := range tests {
		got, err := parseDecimal(tc.raw, tc.format)
		if tc.ok != (err == nil) {
			t.Errorf("parseDecimal(%q, %s): expected ok=%v, got err=%v", tc.raw, tc.format, tc.ok, err)
			continue
		}
		if got != tc.want {
			t.Errorf("parseDecimal(%q, %s): expected %v, got %v", tc.raw, tc.format, tc.want, got)
		}
	}
}

func TestMaxPhrase_PicksCountOverThreshold(t *testing.T) {
	tree := htmlTree(t, `<div class="bucket"><span>40 10+ Keystone Timed Runs</span></div>`)
	def := single(t, catalog.LabelDefinition{
		Key:      "runs10plus",
		Variants: []string{"10+ Keystone"},
		Strategy: catalog.MaxPhrase,
		Phrases:  []string{"timed runs"},
	})

	c, ok := Strategies(nil)[catalog.MaxPhrase].Extract(tree, def)
	if !ok {
		t.Fatal("expected a candidate")
	}
	if c.Value != 40 {
		t.Errorf("expected 40, got %v", c.Value)
	}
}

func TestMaxPhrase_RequiresPhrase(t *testing.T) {
	tree := htmlTree(t, `<span>40 10+ Keystone</span>`)
	def := single(t, catalog.LabelDefinition{
		Key:      "runs10plus",
		Variants: []string{"10+ Keystone"},
		Strategy: catalog.MaxPhrase,
		Phrases:  []string{"timed runs"},
	})
	if c, ok := (&MaxPhrase{}).Extract(tree, def); ok {
		t.Errorf("expected no candidate without the phrase, got %v", c.Value)
	}
}

func TestFirstDecimal_Score(t *testing.T) {
	tree := htmlTree(t, `<div><p>Overall Score 2,897.6</p><p>Healer 1,200.4</p></div>`)
	def := single(t, catalog.LabelDefinition{Key: "overallScore", Variants: []string{"Overall"}, Strategy: catalog.FirstDecimal, Kind: catalog.KindScore})

	c, ok := (&FirstDecimal{}).Extract(tree, def)
	if !ok {
		t.Fatal("expected a candidate")
	}
	if c.Value != 2897.6 {
		t.Errorf("expected 2897.6, got %v", c.Value)
	}
}

func TestFirstDecimal_EUFormat(t *testing.T) {
	tree := htmlTree(t, `<p>Gesamtwertung: 2.897,6</p>`)
	def := single(t, catalog.LabelDefinition{
		Key:          "overallScore",
		Variants:     []string{"gesamtwertung"},
		Strategy:     catalog.FirstDecimal,
		NumberFormat: catalog.FormatEU,
		Kind:         catalog.KindScore,
	})

	c, ok := (&FirstDecimal{}).Extract(tree, def)
	if !ok || c.Value != 2897.6 {
		t.Errorf("expected 2897.6, got %v (ok=%v)", c.Value, ok)
	}
}

func TestNearestNumber(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		limit int
		want  float64
		ok    bool
	}{
		{
			name: "value in sibling container",
			src:  `<div class="row"><div class="label">Total Runs</div><div class="value"><span>1,234</span></div></div>`,
			want: 1234, ok: true,
		},
		{
			name: "label element is skipped",
			src:  `<div><span>Total Runs</span><b>55</b></div>`,
			want: 55, ok: true,
		},
		{
			name: "number after label in same element",
			src:  `<span>Total Runs: 55</span>`,
			want: 55, ok: true,
		},
		{
			name:  "beyond climb limit",
			src:   `<section><b>99</b><div><div><div class="l">Total Runs</div></div></div></section>`,
			limit: 3,
			ok:    false,
		},
		{
			name:  "within raised climb limit",
			src:   `<section><b>99</b><div><div><div class="l">Total Runs</div></div></div></section>`,
			limit: 4,
			want:  99, ok: true,
		},
		{
			name: "no label",
			src:  `<div><b>12</b></div>`,
			ok:   false,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			def := single(t, catalog.LabelDefinition{
				Key:                "totalRuns",
				Variants:           []string{"Total Runs"},
				Strategy:           catalog.NearestNumber,
				AncestorClimbLimit: tc.limit,
			})
			c, ok := Strategies(nil)[catalog.NearestNumber].Extract(htmlTree(t, tc.src), def)
			if ok != tc.ok {
				t.Fatalf("expected ok=%v, got %v (value %v)", tc.ok, ok, c.Value)
			}
			if ok && c.Value != tc.want {
				t.Errorf("expected %v, got %v", tc.want, c.Value)
			}
		})
	}
}

func TestIndexLabel_RequiresLeftBoundary(t *testing.T) {
	if i := indexLabel("15+ runs", "5+ runs"); i != -1 {
		t.Errorf("expected no match inside 15+, got index %d", i)
	}
	if i := indexLabel("15+ runs / 5+ runs", "5+ runs"); i != 11 {
		t.Errorf("expected match at 11, got %d", i)
	}
	if i := indexLabel("(5+ runs)", "5+ runs"); i != 1 {
		t.Errorf("expected match after punctuation, got %d", i)
	}
}

func TestResolve_FallbackOrder(t *testing.T) {
	// The label span holds no count, so max-phrase finds nothing and the
	// nearest-number fallback reads the sibling.
	tree := htmlTree(t, `<div><span>10+ Keystone Timed Runs</span><b>40</b></div>`)
	cat := mustCatalog(t, []catalog.LabelDefinition{{
		Key:       "runs10plus",
		Variants:  []string{"10+ keystone"},
		Strategy:  catalog.MaxPhrase,
		Fallbacks: []catalog.Strategy{catalog.ExactSibling, catalog.NearestNumber},
		Phrases:   []string{"timed runs"},
	}})

	res := ExtractStats(tree, cat)
	v, ok := res.Get("runs10plus")
	if !ok || v.Int() != 40 {
		t.Fatalf("expected 40, got %v (ok=%v)", v.Any(), ok)
	}
	if src := res.Resolutions()[0].Source; src != string(catalog.NearestNumber) {
		t.Errorf("expected source %q, got %q", catalog.NearestNumber, src)
	}
}

func TestResolve_MissingDataDefaults(t *testing.T) {
	tree := htmlTree(t, `<p>Nothing to see here</p>`)
	res := ExtractStats(tree, catalog.Default())

	for _, key := range []string{"totalRuns", "runs10plus", "runs5plus", "runs2plus"} {
		v, ok := res.Get(key)
		if !ok {
			t.Fatalf("expected key %q in result", key)
		}
		if !v.Present() || v.Int() != 0 {
			t.Errorf("%s: expected count default 0, got %v", key, v.Any())
		}
		if got, ok := v.Any().(int64); !ok || got != 0 {
			t.Errorf("%s: expected int64 0 on the wire, got %#v", key, v.Any())
		}
	}
	for _, key := range []string{"overallScore", "healerScore", "dpsScore", "tankScore"} {
		v, _ := res.Get(key)
		if v.Present() || v.Any() != nil {
			t.Errorf("%s: expected absent score, got %v", key, v.Any())
		}
	}
	if res.Found() != 0 {
		t.Errorf("expected 0 labels found, got %d", res.Found())
	}
}

func TestResolve_DerivedTotal(t *testing.T) {
	tree := htmlTree(t, `<main>
  <div>40 10+ Keystone Timed Runs</div>
  <div>12 5+ Keystone Timed Runs</div>
  <div>3 2+ Keystone Timed Runs</div>
</main>`)
	res := ExtractStats(tree, catalog.Default())

	want := map[string]int64{"runs10plus": 40, "runs5plus": 12, "runs2plus": 3, "totalRuns": 55}
	for key, w := range want {
		v, _ := res.Get(key)
		if v.Int() != w {
			t.Errorf("%s: expected %d, got %v", key, w, v.Any())
		}
	}
	for _, r := range res.Resolutions() {
		if r.Key == "totalRuns" && r.Source != SourceDerived {
			t.Errorf("expected totalRuns to be derived, got %q", r.Source)
		}
	}
}

func TestResolve_ExplicitTotalNotOverridden(t *testing.T) {
	tree := htmlTree(t, `<main>
  <div><span>Total Runs</span><b>70</b></div>
  <div>40 10+ Keystone Timed Runs</div>
</main>`)
	res := ExtractStats(tree, catalog.Default())
	if v, _ := res.Get("totalRuns"); v.Int() != 70 {
		t.Errorf("expected explicit total 70, got %v", v.Any())
	}
}

func TestResolve_ProfilePage(t *testing.T) {
	tree := htmlTree(t, `<html><body>
  <div class="scores">
    <div class="score"><span>Overall Score</span><b>3,412.5</b></div>
    <div class="score"><span>DPS Score</span><b>3,380.1</b></div>
  </div>
  <div class="runs">
    <div><span>Total Runs</span><strong>61</strong></div>
    <div><span>40 10+ Keystone Timed Runs</span></div>
  </div>
</body></html>`)
	res := ExtractStats(tree, catalog.Default())

	fields := res.Fields()
	if fields["totalRuns"] != int64(61) {
		t.Errorf("expected totalRuns 61, got %#v", fields["totalRuns"])
	}
	if fields["runs10plus"] != int64(40) {
		t.Errorf("expected runs10plus 40, got %#v", fields["runs10plus"])
	}
	if fields["overallScore"] != 3412.5 {
		t.Errorf("expected overallScore 3412.5, got %#v", fields["overallScore"])
	}
	if fields["dpsScore"] != 3380.1 {
		t.Errorf("expected dpsScore 3380.1, got %#v", fields["dpsScore"])
	}
	if fields["healerScore"] != nil {
		t.Errorf("expected healerScore absent, got %#v", fields["healerScore"])
	}
}

func TestResolve_Idempotent(t *testing.T) {
	tree := htmlTree(t, `<div><span>Total Runs</span><b>2,897</b></div><p>Overall Score 2,897.6</p>`)
	cat := catalog.Default()

	first := ExtractStats(tree, cat)
	second := ExtractStats(tree, cat)
	if !reflect.DeepEqual(first, second) {
		t.Error("expected identical results")
	}

	a, err := json.Marshal(first.Fields())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	b, _ := json.Marshal(second.Fields())
	if string(a) != string(b) {
		t.Errorf("expected byte-identical output, got %s and %s", a, b)
	}
}

func TestResolve_KeysInCatalogOrder(t *testing.T) {
	res := ExtractStats(htmlTree(t, `<p></p>`), catalog.Default())
	keys := res.Keys()
	if len(keys) != 8 || keys[0] != "totalRuns" || keys[7] != "tankScore" {
		t.Errorf("unexpected key order %v", keys)
	}
}

func TestConfigurationErrorIsTyped(t *testing.T) {
	_, err := catalog.New([]catalog.LabelDefinition{{Key: "x", Strategy: catalog.NearestNumber}})
	var cfgErr *catalog.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}

func TestNumberPatterns_SpaceGrouping(t *testing.T) {
	tests := []struct {
		text string
		re   string
		want string
	}{
		{"score 2 897,6 points", "decimalEU", "2 897,6"},
		{"score 2\u00a0897.6", "decimalUS", "2\u00a0897.6"},
		{"2 897 timed runs", "integerUS", "2 897"},
		{"40 10+ keystone", "integerUS", "40"},
		{"12 5+ keystone", "integerEU", "12"},
	}
	for _, tc := range tests {
		var got string
		switch tc.re {
		case "integerUS":
			got = integerUS.FindString(tc.text)
		case "integerEU":
			got = integerEU.FindString(tc.text)
		case "decimalUS":
			got = decimalUS.FindString(tc.text)
		case "decimalEU":
			got = decimalEU.FindString(tc.text)
		}
		if got != tc.want {
			t.Errorf("%s in %q: expected %q, got %q", tc.re, tc.text, tc.want, got)
		}
	}
}

func TestResolve_FrenchScore(t *testing.T) {
	res := ExtractStats(htmlTree(t, `<p>Score global 2 897,6</p>`), catalog.Default())
	v, _ := res.Get("overallScore")
	if !v.Present() || v.Float() != 2897.6 {
		t.Errorf("expected 2897.6, got %v", v.Any())
	}
}

func TestResolve_GermanScoreWithDotGrouping(t *testing.T) {
	res := ExtractStats(htmlTree(t, `<div><span>Gesamtwertung</span><b>2.897,6</b></div>`), catalog.Default())
	v, _ := res.Get("overallScore")
	if v.Float() != 2897.6 {
		t.Errorf("expected 2897.6, got %v", v.Any())
	}
}

func TestResolve_SpaceGroupedBucketCount(t *testing.T) {
	res := ExtractStats(htmlTree(t, `<div>2 897 10+ Keystone Timed Runs</div>`), catalog.Default())
	if v, _ := res.Get("runs10plus"); v.Int() != 2897 {
		t.Errorf("expected 2897, got %v", v.Any())
	}
}

func TestResolve_SharedWrapperWithMissingValues(t *testing.T) {
	tree := htmlTree(t, `<main class="profile">
  <div class="scores">
    <div class="score"><span>Overall Score</span><b>3,412.5</b></div>
    <div class="score"><span>Healer Score</span><b>-</b></div>
    <div class="score"><span>DPS Score</span><b>3,380.1</b></div>
  </div>
  <div class="runs">
    <div class="stat"><span>Total Runs</span><b>-</b></div>
    <div class="stat"><span>10+ Keystone Timed Runs</span><b>40</b></div>
    <div class="stat"><span>5+ Keystone Timed Runs</span><b>12</b></div>
    <div class="stat"><span>2+ Keystone Timed Runs</span><b>3</b></div>
  </div>
</main>`)
	res := ExtractStats(tree, catalog.Default())
	fields := res.Fields()

	if fields["healerScore"] != nil {
		t.Errorf("expected healerScore absent, got %#v", fields["healerScore"])
	}
	if fields["tankScore"] != nil {
		t.Errorf("expected tankScore absent, got %#v", fields["tankScore"])
	}
	if fields["overallScore"] != 3412.5 || fields["dpsScore"] != 3380.1 {
		t.Errorf("unexpected scores %#v / %#v", fields["overallScore"], fields["dpsScore"])
	}
	for key, want := range map[string]int64{"runs10plus": 40, "runs5plus": 12, "runs2plus": 3, "totalRuns": 55} {
		if fields[key] != want {
			t.Errorf("%s: expected %d, got %#v", key, want, fields[key])
		}
	}
	for _, r := range res.Resolutions() {
		if r.Key == "totalRuns" && r.Source != SourceDerived {
			t.Errorf("expected totalRuns derived, got %q (raw %q)", r.Source, r.Raw)
		}
	}
}

func TestResolve_CarriesTitle(t *testing.T) {
	res := ExtractStats(htmlTree(t, `<html><head><title>Zyxx @ Draenor</title></head><body></body></html>`), catalog.Default())
	if res.Title() != "Zyxx @ Draenor" {
		t.Errorf("expected title, got %q", res.Title())
	}
}

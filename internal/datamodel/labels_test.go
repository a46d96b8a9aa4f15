package datamodel

import (
	"testing"

	"github.com/beevik/etree"
)

func parseFragment(t *testing.T, raw string) *etree.Element {
	t.Helper()
	tree := etree.NewDocument()
	if err := tree.ReadFromString(raw); err != nil {
		t.Fatalf("parse fragment: %v", err)
	}
	return tree.Root()
}

func TestIsTranslatableTag(t *testing.T) {
	translatable := []string{"label", "instruction", "text", "default-rating", "unrated-rating", "obj-plan-name", "meta-name", "fm-sect-intro", "mapto-desc", "text-replacement-label"}
	for _, name := range translatable {
		if !IsTranslatableTag(name) {
			t.Errorf("%s not recognized as translatable", name)
		}
	}
	excluded := []string{"role-name", "meta-grp-label", "hris-element", "obj-plan-id", "fm-sect-config"}
	for _, name := range excluded {
		if IsTranslatableTag(name) {
			t.Errorf("%s wrongly recognized as translatable", name)
		}
	}
}

func TestDefaultTitlePrefersUnattributedSibling(t *testing.T) {
	root := parseFragment(t, `<standard-element id="x">
		<label>Plain</label>
		<label xml:lang="de_DE">Deutsch</label>
	</standard-element>`)
	el := FirstChild(root, "label")
	if got := DefaultTitle(el, "en_US"); got != "Plain" {
		t.Errorf("DefaultTitle = %q, want Plain", got)
	}
}

func TestDefaultTitleEnglishVariant(t *testing.T) {
	root := parseFragment(t, `<standard-element id="x">
		<label xml:lang="en-US">English</label>
		<label xml:lang="de_DE">Deutsch</label>
	</standard-element>`)
	el := FirstChild(root, "label")
	if got := DefaultTitle(el, "fr_FR"); got != "English" {
		t.Errorf("DefaultTitle = %q, want English", got)
	}
}

func TestDefaultTitleFallsBackToDefaultLang(t *testing.T) {
	root := parseFragment(t, `<standard-element id="x">
		<label xml:lang="en_US">Hello</label>
	</standard-element>`)
	el := FirstChild(root, "label")
	if got := DefaultTitle(el, "en_US"); got != "Hello" {
		t.Errorf("DefaultTitle = %q, want Hello", got)
	}
}

func TestDefaultTitleMaptoDescScoreSuffix(t *testing.T) {
	root := parseFragment(t, `<scale-map-value>
		<mapto-score>3.0</mapto-score>
		<mapto-desc>Meets Expectations</mapto-desc>
	</scale-map-value>`)
	el := FirstChild(root, "mapto-desc")
	if got := DefaultTitle(el, "en_US"); got != "Meets Expectations (for score=3.0)" {
		t.Errorf("DefaultTitle = %q", got)
	}
}

func TestDefaultTitleIDFallback(t *testing.T) {
	root := parseFragment(t, `<standard-element id="x">
		<label xml:lang="pl_PL" id="obscure">Inny</label>
	</standard-element>`)
	el := FirstChild(root, "label")
	if got := DefaultTitle(el, "en_US"); got != "label (obscure)" {
		t.Errorf("DefaultTitle = %q, want label (obscure)", got)
	}
}

func TestMissingLanguages(t *testing.T) {
	root := parseFragment(t, `<standard-element id="x">
		<label>Plain</label>
		<label xml:lang="de_DE">Deutsch</label>
	</standard-element>`)
	el := FirstChild(root, "label")
	missing := MissingLanguages(el, []string{"de_DE", "fr_FR", "pl_PL"})
	if len(missing) != 2 || missing[0] != "fr_FR" || missing[1] != "pl_PL" {
		t.Errorf("MissingLanguages = %v, want [fr_FR pl_PL]", missing)
	}
}

func TestLanguageTagOf(t *testing.T) {
	root := parseFragment(t, `<standard-element id="x">
		<label>Plain</label>
		<instruction xml:lang="de_DE">Anleitung</instruction>
		<label xml:lang="de_DE">Deutsch</label>
	</standard-element>`)
	got := LanguageTagOf(root, "de_DE", "label")
	if got == nil || got.Text() != "Deutsch" {
		t.Fatalf("LanguageTagOf label = %v", got)
	}
	got = LanguageTagOf(root, "de_DE", "instruction")
	if got == nil || got.Text() != "Anleitung" {
		t.Fatalf("LanguageTagOf instruction = %v", got)
	}
	if LanguageTagOf(root, "fr_FR", "label") != nil {
		t.Error("unexpected match for fr_FR")
	}
}

func TestChildWithLangAttr(t *testing.T) {
	root := parseFragment(t, `<fm-sect>
		<fm-sect-name>Objectives</fm-sect-name>
		<fm-sect-name lang="de_DE">Ziele</fm-sect-name>
	</fm-sect>`)
	got := ChildWithLangAttr(root, "de_DE")
	if got == nil || got.Text() != "Ziele" {
		t.Fatalf("ChildWithLangAttr = %v", got)
	}
	if ChildWithLangAttr(root, "fr_FR") != nil {
		t.Error("unexpected match for fr_FR")
	}
}

func TestRegistryKeepLast(t *testing.T) {
	reg := NewRegistry()
	first := mustParse(t, successionXML, "first.xml", false)
	second := mustParse(t, successionXML, "second.xml", false)
	reg.Add(first)
	reg.Add(second)

	all := reg.All()
	if len(all) != 1 {
		t.Fatalf("All() = %d documents, want 1", len(all))
	}
	if got := reg.Get("SF Succession Data Model"); got == nil || got.Path != "second.xml" {
		t.Errorf("kept document path = %v, want second.xml", got)
	}
}

func TestRegistryStandardLookup(t *testing.T) {
	reg := NewRegistry()
	reg.Add(mustParse(t, successionECXML, "custom.xml", false))
	reg.Add(mustParse(t, successionECXML, "standard.xml", true))

	std := reg.Standard("SFEC Succession Data Model")
	if std == nil || !std.IsStandard {
		t.Fatalf("Standard() = %v", std)
	}
	// Standard documents stay out of the export iteration order.
	for _, doc := range reg.All() {
		if doc.IsStandard {
			t.Error("All() returned a standard document")
		}
	}
}

func TestRegistryFlagsAndLanguages(t *testing.T) {
	reg := NewRegistry()
	reg.Add(mustParse(t, successionECXML, "sdm.xml", false))
	if !reg.HasDataModels() || reg.HasTemplates() {
		t.Errorf("flags: dataModels=%v templates=%v", reg.HasDataModels(), reg.HasTemplates())
	}
	reg.Add(mustParse(t, pmTemplateXML, "form.xml", false))
	if !reg.HasTemplates() {
		t.Error("template flag not set")
	}
	langs := reg.Languages()
	if len(langs) != 1 || langs[0] != "fr_FR" {
		t.Errorf("Languages = %v, want [fr_FR]", langs)
	}

	reg.Reset()
	if len(reg.All()) != 0 || reg.HasTemplates() || reg.HasDataModels() {
		t.Error("Reset left state behind")
	}
}

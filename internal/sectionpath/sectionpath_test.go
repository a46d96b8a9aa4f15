package sectionpath

import (
	"testing"

	"github.com/beevik/etree"

	"sfxlate/internal/datamodel"
)

func parseRoot(t *testing.T, raw string) *etree.Element {
	t.Helper()
	tree := etree.NewDocument()
	if err := tree.ReadFromString(raw); err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return tree.Root()
}

func TestResolveEmployeeProfile(t *testing.T) {
	root := parseRoot(t, `<succession-data-model>
		<standard-element id="firstName"><label>First Name</label></standard-element>
	</succession-data-model>`)
	el := datamodel.FindFirst(root, "label")

	p := Resolve(el, "SF Succession Data Model", nil)
	if p.Section != "Employee Profile" {
		t.Errorf("section = %q", p.Section)
	}
	if p.Subsection != "standard-element" {
		t.Errorf("subsection = %q", p.Subsection)
	}
	if p.Skip {
		t.Error("unexpected skip")
	}
}

func TestResolveCSFCountryAnchored(t *testing.T) {
	root := parseRoot(t, `<country-specific-fields>
		<country id="USA">
			<format-group id="national-id">
				<format id="ssn"><label>SSN</label></format>
			</format-group>
		</country>
	</country-specific-fields>`)
	el := datamodel.FindFirst(root, "label")

	p := Resolve(el, "SFEC CSF Succession Data Model", nil)
	if p.Country != "USA" {
		t.Errorf("country = %q", p.Country)
	}
	if !p.CountryAnchored {
		t.Error("CountryAnchored = false")
	}
	if p.Section != "SFEC CSF Succession Data Model (USA)" {
		t.Errorf("section = %q", p.Section)
	}
}

func TestResolveCSFHrisElementUnderCountry(t *testing.T) {
	root := parseRoot(t, `<country-specific-fields>
		<country id="DEU">
			<hris-element id="address"><label>Address</label></hris-element>
		</country>
	</country-specific-fields>`)
	el := datamodel.FindFirst(root, "label")

	p := Resolve(el, "SFEC CSF Corporate Data Model", nil)
	if p.Country != "DEU" {
		t.Errorf("country = %q", p.Country)
	}
	if p.Section != "SFEC CSF Corporate Data Model (DEU)" {
		t.Errorf("section = %q", p.Section)
	}
}

func TestResolveCountryFilter(t *testing.T) {
	root := parseRoot(t, `<country-specific-fields>
		<country id="FRA">
			<hris-element id="x"><label>X</label></hris-element>
		</country>
	</country-specific-fields>`)
	el := datamodel.FindFirst(root, "label")

	p := Resolve(el, "SFEC CSF Corporate Data Model", []string{"USA", "DEU"})
	if !p.Skip {
		t.Error("row for inactive country not skipped")
	}
	p = Resolve(el, "SFEC CSF Corporate Data Model", []string{"FRA"})
	if p.Skip {
		t.Error("row for active country skipped")
	}
}

func TestResolveTemplateSubsections(t *testing.T) {
	root := parseRoot(t, `<obj-plan-template>
		<obj-plan-name>Plan</obj-plan-name>
		<text-replacement for="Goal"><text-repl-label>Ziel</text-repl-label></text-replacement>
		<field-definition id="name"><field-label>Name</field-label></field-definition>
		<table-column id="target"><column-label>Target</column-label></table-column>
		<enum-value value="2"><enum-label>Two</enum-label></enum-value>
	</obj-plan-template>`)

	cases := []struct {
		tag  string
		want string
	}{
		{"obj-plan-name", "General Settings"},
		{"text-repl-label", "Text Replacement (for=Goal)"},
		{"field-label", "Field Definition (id=name)"},
		{"column-label", ChildMarker + "Table Column (id=target)"},
		{"enum-label", ChildMarker + "Field Option (value=2)"},
	}
	for _, tc := range cases {
		el := datamodel.FindFirst(root, tc.tag)
		if el == nil {
			t.Fatalf("fixture missing %s", tc.tag)
		}
		p := Resolve(el, "Plan (1)", nil)
		if p.Subsection != tc.want {
			t.Errorf("%s: subsection = %q, want %q", tc.tag, p.Subsection, tc.want)
		}
	}
}

func TestResolveFormSections(t *testing.T) {
	root := parseRoot(t, `<sf-form>
		<objective-sect index="2">
			<obj-sect-plan-id>12</obj-sect-plan-id>
			<fm-sect-name>Goals</fm-sect-name>
		</objective-sect>
		<objcomp-summary-sect index="5">
			<x-axis>objective</x-axis>
			<y-axis>competency</y-axis>
			<fm-sect-name>Summary</fm-sect-name>
		</objcomp-summary-sect>
		<perfpot-summary-sect index="6">
			<fm-sect-name>Matrix</fm-sect-name>
		</perfpot-summary-sect>
	</sf-form>`)

	cases := []struct {
		parentTag string
		want      string
	}{
		{"objective-sect", "Form Section: Objective (plan-id=12)(index=2)"},
		{"objcomp-summary-sect", "Form Section: Objective(x) vs Competency(y) Summary (index=5)"},
		{"perfpot-summary-sect", "Form Section: Performance-Potential Summary (index=6)"},
	}
	for _, tc := range cases {
		parent := datamodel.FindFirst(root, tc.parentTag)
		el := datamodel.FirstChild(parent, "fm-sect-name")
		p := Resolve(el, "Review", nil)
		if p.Subsection != tc.want {
			t.Errorf("%s: subsection = %q, want %q", tc.parentTag, p.Subsection, tc.want)
		}
	}
}

func TestReadableName(t *testing.T) {
	cases := []struct {
		tag        string
		includeTag bool
		want       string
	}{
		{"obj-plan-name", false, "Obj Plan Name"},
		{"obj-plan-name", true, "Obj Plan Name (obj-plan-name)"},
		{"fm-sect-intro", false, "Section Introduction"},
		{"fm-comp-desc", false, "Competency Desc"},
	}
	for _, tc := range cases {
		if got := ReadableName(tc.tag, tc.includeTag); got != tc.want {
			t.Errorf("ReadableName(%q, %v) = %q, want %q", tc.tag, tc.includeTag, got, tc.want)
		}
	}
}

func TestDeriveTagName(t *testing.T) {
	cases := []struct {
		section string
		want    string
	}{
		{"Form Section: Objective ", "objective-sect"},
		{"Form Section: Competency ", "competency-sect"},
		{"Form Section: Objective(x) vs Competency(y) Summary ", "objcomp-summary-sect"},
		{"Form Section: Performance-Potential Summary", "perfpot-summary-sect"},
		{ChildMarker + "Table Column ", "table-column"},
		{ChildMarker + "Field Option", "enum-value"},
		{ChildMarker + "Section Configuration", "fm-sect-config"},
		{"Scale Adjusted Calculation Mapping", "scale-map-value"},
		{"Field Definition ", "field-definition"},
	}
	for _, tc := range cases {
		if got := DeriveTagName(tc.section); got != tc.want {
			t.Errorf("DeriveTagName(%q) = %q, want %q", tc.section, got, tc.want)
		}
	}
}

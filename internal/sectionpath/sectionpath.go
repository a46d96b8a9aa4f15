// Package sectionpath derives human-readable locations for translatable
// nodes and recovers tag-name hints from those locations during import.
package sectionpath

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"

	"sfxlate/internal/datamodel"
)

// ChildMarker prefixes subsection names that describe a nested child of the
// current row, so wide sheets can flatten one level of nesting.
const ChildMarker = " ↪ "

// Path describes where a translatable node lives.
type Path struct {
	Section    string
	Subsection string
	// Country is the enclosing country code for country-scoped nodes.
	Country string
	// CountryAnchored marks nodes whose grandparent hangs directly under a
	// country element; the export engine emits a per-country header row for
	// those.
	CountryAnchored bool
	// Skip marks nodes filtered out by the active-country allow list.
	Skip bool
}

// Resolve classifies a translatable node by its parent chain.
func Resolve(el *etree.Element, docName string, activeCountries []string) Path {
	parent := el.Parent()
	if parent == nil {
		return Path{Section: docName}
	}
	parentName := parent.Tag
	grand := parent.Parent()

	p := Path{Section: docName, Subsection: parentName}

	if _, ok := datamodel.EmployeeProfileTags[parentName]; ok {
		p.Section = "Employee Profile"
		return p
	}

	if strings.HasPrefix(parentName, "hris") || parentName == "format" {
		if strings.Contains(docName, " CSF ") && grand != nil {
			switch {
			case grand.Tag == "hris-section":
				if gg := grand.Parent(); gg != nil && gg.Parent() != nil {
					p.Country = gg.Parent().SelectAttrValue("id", "")
				}
			case grand.Tag == "hris-element" || grand.Tag == "format-group":
				if grand.Parent() != nil {
					p.Country = grand.Parent().SelectAttrValue("id", "")
				}
				p.CountryAnchored = true
			case parentName == "hris-element" || parentName == "format-group":
				p.Country = grand.SelectAttrValue("id", "")
			}

			if len(activeCountries) > 0 && !contains(activeCountries, p.Country) {
				p.Skip = true
			}
			p.Section = fmt.Sprintf("%s (%s)", docName, p.Country)
		}
		return p
	}

	p.Subsection = ModuleName(parent)
	return p
}

// moduleResolvers maps a parent tag name to the subsection it produces.
// Suffix and substring rules that cannot key a map are handled in ModuleName.
var moduleResolvers = map[string]func(*etree.Element) string{
	"obj-plan-template": func(*etree.Element) string { return "General Settings" },
	"text-replacement": func(el *etree.Element) string {
		return fmt.Sprintf("%s (for=%s)", ReadableName(el.Tag, false), el.SelectAttrValue("for", ""))
	},
	"permission": func(el *etree.Element) string {
		return fmt.Sprintf("Permission (for=%s)", el.SelectAttrValue("for", ""))
	},
	"field-permission": func(el *etree.Element) string {
		return fmt.Sprintf("Field Permission (type=%s)", el.SelectAttrValue("type", ""))
	},
	"field-definition": func(el *etree.Element) string {
		return fmt.Sprintf("Field Definition (id=%s)", el.SelectAttrValue("id", ""))
	},
	"table-column": func(el *etree.Element) string {
		return fmt.Sprintf("%sTable Column (id=%s)", ChildMarker, el.SelectAttrValue("id", ""))
	},
	"enum-value": func(el *etree.Element) string {
		return fmt.Sprintf("%sField Option (value=%s)", ChildMarker, el.SelectAttrValue("value", ""))
	},
	"fm-competency": func(el *etree.Element) string {
		if id := datamodel.FirstChild(el, "fm-comp-id"); id != nil {
			return fmt.Sprintf("%sCompetency (id=%s)", ChildMarker, strings.TrimSpace(id.Text()))
		}
		return ReadableName(el.Tag, false)
	},
	"fm-sect-config": func(*etree.Element) string {
		return ChildMarker + "Section Configuration"
	},
	"scale-map-value": func(*etree.Element) string {
		return "Scale Adjusted Calculation Mapping"
	},
}

// ModuleName derives the subsection name for a parent element.
func ModuleName(parent *etree.Element) string {
	name := parent.Tag

	if resolve, ok := moduleResolvers[name]; ok {
		return resolve(parent)
	}
	if strings.Contains(name, "category") {
		return fmt.Sprintf("%s (id=%s)", ReadableName(name, false), parent.SelectAttrValue("id", ""))
	}
	if strings.HasSuffix(name, "-sect") {
		return formSectionName(parent)
	}
	return ReadableName(name, false)
}

// formSectionName names a form section row, with qualifiers for the three
// known special section kinds.
func formSectionName(parent *etree.Element) string {
	index := parent.SelectAttrValue("index", "")
	sectTag := parent.Tag
	if sectTag == "fm-sect" && parent.Parent() != nil {
		sectTag = parent.Parent().Tag
	}

	base := sectTag
	if i := strings.Index(sectTag, "-"); i >= 0 {
		base = sectTag[:i]
	}

	switch sectTag {
	case "objective-sect":
		if planID := datamodel.FindFirst(parent, "obj-sect-plan-id"); planID != nil {
			return fmt.Sprintf("Form Section: %s (plan-id=%s)(index=%s)",
				capitalize(base), strings.TrimSpace(planID.Text()), index)
		}
	case "objcomp-summary-sect":
		xAxis := datamodel.FirstChild(parent, "x-axis")
		yAxis := datamodel.FirstChild(parent, "y-axis")
		if xAxis != nil && yAxis != nil {
			return fmt.Sprintf("Form Section: %s(x) vs %s(y) Summary (index=%s)",
				capitalize(strings.TrimSpace(xAxis.Text())), capitalize(strings.TrimSpace(yAxis.Text())), index)
		}
		return fmt.Sprintf("Form Section: Objective vs Competency Summary (index=%s)", index)
	case "perfpot-summary-sect":
		return fmt.Sprintf("Form Section: Performance-Potential Summary (index=%s)", index)
	}
	return fmt.Sprintf("Form Section: %s (index=%s)", capitalize(base), index)
}

// abbreviations expanded by ReadableName. "fm" drops out entirely.
var abbreviations = map[string]string{
	"sect":  "Section",
	"intro": "Introduction",
	"comp":  "Competency",
	"fm":    "",
}

// ReadableName converts a hyphenated tag name to a display name, e.g.
// "obj-plan-name" to "Obj Plan Name (obj-plan-name)".
func ReadableName(tagName string, includeTag bool) string {
	var words []string
	for _, word := range strings.Split(tagName, "-") {
		if repl, ok := abbreviations[word]; ok {
			word = repl
		} else {
			word = capitalize(word)
		}
		if word != "" {
			words = append(words, word)
		}
	}
	name := strings.Join(words, " ")
	if includeTag {
		name = fmt.Sprintf("%s (%s)", name, tagName)
	}
	return name
}

// tagNameOverrides maps display names that cannot be mechanically reversed
// back to their element names.
var tagNameOverrides = map[string]string{
	"Field Option":                        "enum-value",
	"Competency":                          "fm-competency",
	"Section Configuration":               "fm-sect-config",
	"Scale Adjusted Calculation Mapping":  "scale-map-value",
	"Form Section: Performance-Potential Summary": "perfpot-summary-sect",
}

// DeriveTagName reconstructs a tag-name guess from a section display name.
// The mapping is lossy; it recovers only enough for the import engine to
// re-locate the node, with the fm-sect fallback catching the rest.
func DeriveTagName(sectionName string) string {
	if tag, ok := tagNameOverrides[strings.TrimSpace(sectionName)]; ok {
		return tag
	}
	if i := strings.Index(sectionName, "Form Section:"); i >= 0 {
		rest := sectionName[strings.Index(sectionName, ":")+1:]
		sectionName = strings.ToLower(strings.TrimSpace(rest)) + "-sect"
	} else if i := strings.Index(sectionName, ChildMarker); i >= 0 {
		sectionName = sectionName[i+len(ChildMarker):]
	}
	sectionName = strings.TrimSpace(sectionName)

	if tag, ok := tagNameOverrides[sectionName]; ok {
		return tag
	}
	if strings.Contains(sectionName, "(x) vs ") {
		return "objcomp-summary-sect"
	}
	return strings.Join(strings.Fields(strings.ToLower(sectionName)), "-")
}

func capitalize(word string) string {
	if word == "" {
		return word
	}
	return strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

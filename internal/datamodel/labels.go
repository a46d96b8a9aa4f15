package datamodel

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// SystemDefaultLang is the fallback language when a document carries no
// authored default label.
const SystemDefaultLang = "en_US"

// EmployeeProfileTags are the parent tags that anchor a node under the
// Employee Profile section.
var EmployeeProfileTags = map[string]struct{}{
	"standard-element":   {},
	"background-element": {},
	"userinfo-element":   {},
	"data-field":         {},
	"rating-field":       {},
	"tab-element":        {},
	"view-template":      {},
	"edit-template":      {},
}

// TagsToIgnore are parent tags whose translatable children are never exported.
var TagsToIgnore = map[string]struct{}{
	"tab-element":   {},
	"view-template": {},
	"edit-template": {},
	"fm-competency": {},
	"permission":    {},
}

// HighlightTags are parents whose rows are written bold; the import engine
// treats those rows as group anchors.
var HighlightTags = map[string]struct{}{
	"succession-data-model": {},
	"background-element":    {},
	"userinfo-element":      {},
	"hris-element":          {},
	"hris-section":          {},
}

var exactTranslatableTags = map[string]struct{}{
	"instruction":    {},
	"label":          {},
	"text":           {},
	"default-rating": {},
	"unrated-rating": {},
}

// IsTranslatableTag applies the translatable-tag naming heuristic.
func IsTranslatableTag(name string) bool {
	if name == "role-name" || name == "meta-grp-label" {
		return false
	}
	if _, ok := exactTranslatableTags[name]; ok {
		return true
	}
	return strings.Contains(name, "-name") ||
		strings.Contains(name, "-label") ||
		strings.Contains(name, "-intro") ||
		strings.Contains(name, "-desc")
}

// TranslatableTagNames returns the translatable tag names present in the
// document, in first-seen order.
func (d *Document) TranslatableTagNames() []string {
	var names []string
	seen := make(map[string]struct{})
	walk(d.Root(), func(el *etree.Element) {
		if _, ok := seen[el.Tag]; ok {
			return
		}
		if IsTranslatableTag(el.Tag) {
			seen[el.Tag] = struct{}{}
			names = append(names, el.Tag)
		}
	})
	return names
}

// DefaultTitle resolves the default label of a translatable node by scanning
// its same-named siblings: an element with no language or id attributes wins,
// then the en-US variant, then the given default language. mapto-desc nodes
// get the score of their sibling mapto-score appended. As a last resort the
// node's id or for attribute is used.
func DefaultTitle(el *etree.Element, defaultLang string) string {
	parent := el.Parent()
	if parent == nil {
		return ""
	}

	var label, defLabel, engLabel string
	for _, sibling := range parent.ChildElements() {
		if sibling.Tag != el.Tag {
			continue
		}
		if sibling.SelectAttr("xml:lang") == nil &&
			sibling.SelectAttr("lang") == nil &&
			sibling.SelectAttr("id") == nil &&
			sibling.SelectAttr("rule") == nil {
			defLabel = sibling.Text()
		}
		if sibling.SelectAttrValue("xml:lang", "") == "en-US" ||
			sibling.SelectAttrValue("lang", "") == "en_US" {
			engLabel = sibling.Text()
		}

		if defLabel != "" {
			label = defLabel
			break
		}
		if engLabel != "" {
			label = engLabel
			break
		}
		if label == "" {
			if sibling.SelectAttrValue("xml:lang", "") == defaultLang ||
				sibling.SelectAttrValue("lang", "") == defaultLang {
				label = sibling.Text()
			}
		}
	}

	if el.Tag == "mapto-desc" {
		if score := FirstChild(parent, "mapto-score"); score != nil {
			label = fmt.Sprintf("%s (for score=%s)", label, strings.TrimSpace(score.Text()))
		}
	}

	if label == "" {
		if id := el.SelectAttrValue("id", ""); id != "" {
			label = fmt.Sprintf("%s (%s)", el.Tag, id)
		} else if ref := el.SelectAttrValue("for", ""); ref != "" {
			label = fmt.Sprintf("%s (%s)", el.Tag, ref)
		}
	}
	return label
}

// MissingLanguages returns the language codes from langs that have no
// language-tagged sibling under the node's parent.
func MissingLanguages(el *etree.Element, langs []string) []string {
	parent := el.Parent()
	if parent == nil {
		return nil
	}
	var missing []string
	for _, lang := range langs {
		found := false
		for _, child := range parent.ChildElements() {
			if child.SelectAttrValue("xml:lang", "") == lang {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, lang)
		}
	}
	return missing
}

// LanguageTagOf returns the direct child of el with the given element name
// and xml:lang code, or nil.
func LanguageTagOf(el *etree.Element, lang, tagName string) *etree.Element {
	for _, child := range el.ChildElements() {
		if child.Tag == tagName && child.SelectAttrValue("xml:lang", "") == lang {
			return child
		}
	}
	return nil
}

// ChildWithLangAttr returns the direct child of el carrying a lang attribute
// equal to the given code, regardless of element name. Wide form templates
// store per-language variants this way.
func ChildWithLangAttr(el *etree.Element, lang string) *etree.Element {
	for _, child := range el.ChildElements() {
		if attr := child.SelectAttr("lang"); attr != nil && attr.Value == lang {
			return child
		}
	}
	return nil
}

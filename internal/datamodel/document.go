package datamodel

import (
	"bytes"
	"fmt"
	"os"

	"github.com/beevik/etree"
)

// Kind identifies the shape of a configuration document.
type Kind int

const (
	KindUnknown Kind = iota
	KindSuccessionModel
	KindSuccessionModelEC
	KindSuccessionModelCSF
	KindCorporateModel
	KindCorporateModelCSF
	KindPerformanceFormTemplate
	KindGoalPlanTemplate
	KindDevelopmentPlanTemplate
)

func (k Kind) String() string {
	switch k {
	case KindSuccessionModel:
		return "SF Succession Data Model"
	case KindSuccessionModelEC:
		return "SFEC Succession Data Model"
	case KindSuccessionModelCSF:
		return "SFEC CSF Succession Data Model"
	case KindCorporateModel:
		return "SFEC Corporate Data Model"
	case KindCorporateModelCSF:
		return "SFEC CSF Corporate Data Model"
	case KindPerformanceFormTemplate:
		return "PM Form Template"
	case KindGoalPlanTemplate:
		return "Goal Plan Template"
	case KindDevelopmentPlanTemplate:
		return "Development Plan Template"
	}
	return "Unknown"
}

// IsTemplate reports whether the document is a wide-sheet form template.
func (k Kind) IsTemplate() bool {
	switch k {
	case KindPerformanceFormTemplate, KindGoalPlanTemplate, KindDevelopmentPlanTemplate:
		return true
	}
	return false
}

// IsDataModel reports whether the document is a flat-sheet data model.
func (k Kind) IsDataModel() bool {
	switch k {
	case KindSuccessionModel, KindSuccessionModelEC, KindSuccessionModelCSF,
		KindCorporateModel, KindCorporateModelCSF:
		return true
	}
	return false
}

// StandardPrefix marks vendor-provided baseline documents; their labels serve
// as fallback values for missing translations.
const StandardPrefix = "Standard SAP"

// Document is a parsed configuration file plus its classification.
// The tree is mutated in place by the import engine; a Document is not safe
// for concurrent use.
type Document struct {
	Name       string
	Kind       Kind
	IsStandard bool
	Path       string
	Tree       *etree.Document
	Languages  []string

	dirty bool
}

// Load reads and classifies a configuration document from disk.
func Load(path string, isStandard bool) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config document: %w", err)
	}
	return Parse(raw, path, isStandard)
}

// Parse builds a Document from raw bytes. Content containing literal CDATA
// blocks is parsed in a lenient, CDATA-preserving mode; everything else uses
// strict parsing. Documents matching no known classification return
// ErrUnrecognized; the caller excludes the file and reports it.
func Parse(raw []byte, path string, isStandard bool) (*Document, error) {
	tree := etree.NewDocument()
	if bytes.Contains(raw, []byte("<![CDATA[")) {
		tree.ReadSettings.Permissive = true
		tree.ReadSettings.PreserveCData = true
	}
	if err := tree.ReadFromBytes(raw); err != nil {
		return nil, fmt.Errorf("parse config document %s: %w", path, err)
	}
	if tree.Root() == nil {
		return nil, fmt.Errorf("parse config document %s: no root element", path)
	}

	kind := classify(tree.Root())
	if kind == KindUnknown {
		return nil, fmt.Errorf("classify %s: %w", path, ErrUnrecognized)
	}
	name := deriveName(tree.Root(), kind, path)
	if name == "" {
		return nil, fmt.Errorf("classify %s: %w", path, ErrUnrecognized)
	}

	doc := &Document{
		Name:       name,
		Kind:       kind,
		IsStandard: isStandard,
		Path:       path,
		Tree:       tree,
	}
	if isStandard {
		doc.Name = StandardPrefix + " " + doc.Name
	}
	doc.Languages = doc.ExtractLanguages()
	return doc, nil
}

// Root returns the document's root element.
func (d *Document) Root() *etree.Element {
	return d.Tree.Root()
}

// MarkDirty records that the tree has been mutated since load.
func (d *Document) MarkDirty() { d.dirty = true }

// Dirty reports whether the tree was mutated since load.
func (d *Document) Dirty() bool { return d.dirty }

// Write serializes the document to the given path.
func (d *Document) Write(path string) error {
	d.Tree.WriteSettings.CanonicalEndTags = false
	if err := d.Tree.WriteToFile(path); err != nil {
		return fmt.Errorf("write config document: %w", err)
	}
	return nil
}

// ExtractLanguages collects the xml:lang codes found on label elements,
// in first-seen order.
func (d *Document) ExtractLanguages() []string {
	var langs []string
	seen := make(map[string]struct{})
	walk(d.Root(), func(el *etree.Element) {
		if el.Tag != "label" {
			return
		}
		lang := el.SelectAttrValue("xml:lang", "")
		if lang == "" {
			return
		}
		if _, ok := seen[lang]; !ok {
			seen[lang] = struct{}{}
			langs = append(langs, lang)
		}
	})
	return langs
}

// WalkTranslatable returns the document's translatable elements in document
// order, selected by the given tag-name set.
func (d *Document) WalkTranslatable(tags map[string]struct{}) []*etree.Element {
	var out []*etree.Element
	walk(d.Root(), func(el *etree.Element) {
		if _, ok := tags[el.Tag]; ok {
			out = append(out, el)
		}
	})
	return out
}

// walk visits el and every descendant element in document order.
func walk(el *etree.Element, fn func(*etree.Element)) {
	fn(el)
	for _, child := range el.ChildElements() {
		walk(child, fn)
	}
}

// FindFirst returns the first element (document order) in scope with the
// given tag, including scope itself.
func FindFirst(scope *etree.Element, tag string) *etree.Element {
	if scope == nil {
		return nil
	}
	if scope.Tag == tag {
		return scope
	}
	for _, child := range scope.ChildElements() {
		if found := FindFirst(child, tag); found != nil {
			return found
		}
	}
	return nil
}

// FindByAttr returns the first element in scope with the given tag and
// attribute value, including scope itself.
func FindByAttr(scope *etree.Element, tag, attr, value string) *etree.Element {
	if scope == nil {
		return nil
	}
	if scope.Tag == tag && scope.SelectAttrValue(attr, "") == value {
		return scope
	}
	for _, child := range scope.ChildElements() {
		if found := FindByAttr(child, tag, attr, value); found != nil {
			return found
		}
	}
	return nil
}

// FindByID returns the first element in scope with the given tag and id.
// When visibilityBoth is set, only elements carrying visibility="both" match.
func FindByID(scope *etree.Element, tag, id string, visibilityBoth bool) *etree.Element {
	if scope == nil {
		return nil
	}
	if scope.Tag == tag && scope.SelectAttrValue("id", "") == id {
		if !visibilityBoth || scope.SelectAttrValue("visibility", "") == "both" {
			return scope
		}
	}
	for _, child := range scope.ChildElements() {
		if found := FindByID(child, tag, id, visibilityBoth); found != nil {
			return found
		}
	}
	return nil
}

// FirstChild returns the first direct child element with the given tag.
func FirstChild(el *etree.Element, tag string) *etree.Element {
	if el == nil {
		return nil
	}
	for _, child := range el.ChildElements() {
		if child.Tag == tag {
			return child
		}
	}
	return nil
}

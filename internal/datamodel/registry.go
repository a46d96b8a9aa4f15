package datamodel

import (
	"github.com/rs/zerolog/log"
)

// Registry is the per-run session state: every loaded document keyed by its
// derived display name, plus the merged translatable-tag set the export
// engine selects nodes with. The caller owns the lifecycle; one export or
// import run uses one registry.
type Registry struct {
	docs         map[string]*Document
	order        []string
	translatable map[string]struct{}

	hasTemplates  bool
	hasDataModels bool
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{
		docs:         make(map[string]*Document),
		translatable: make(map[string]struct{}),
	}
}

// Load reads, classifies and registers a document.
func (r *Registry) Load(path string, isStandard bool) (*Document, error) {
	doc, err := Load(path, isStandard)
	if err != nil {
		return nil, err
	}
	r.Add(doc)
	return doc, nil
}

// Add registers a document under its derived name. A second document with
// the same name replaces the first; the collision is logged rather than
// rejected.
func (r *Registry) Add(doc *Document) {
	if prev, ok := r.docs[doc.Name]; ok {
		log.Warn().
			Str("name", doc.Name).
			Str("kept", doc.Path).
			Str("replaced", prev.Path).
			Msg("Duplicate document name, keeping last loaded")
	} else {
		r.order = append(r.order, doc.Name)
	}
	r.docs[doc.Name] = doc

	if doc.Kind.IsTemplate() {
		r.hasTemplates = true
	}
	if doc.Kind.IsDataModel() {
		r.hasDataModels = true
	}
	for _, name := range doc.TranslatableTagNames() {
		r.translatable[name] = struct{}{}
	}
}

// Get returns the document registered under the given name, or nil.
func (r *Registry) Get(name string) *Document {
	return r.docs[name]
}

// Standard returns the standard reference document for the given display
// name, or nil when none is loaded.
func (r *Registry) Standard(name string) *Document {
	return r.docs[StandardPrefix+" "+name]
}

// All returns the non-standard documents in load order.
func (r *Registry) All() []*Document {
	var out []*Document
	for _, name := range r.order {
		doc := r.docs[name]
		if doc != nil && !doc.IsStandard {
			out = append(out, doc)
		}
	}
	return out
}

// TranslatableTags returns the merged translatable-tag set across all
// loaded documents.
func (r *Registry) TranslatableTags() map[string]struct{} {
	return r.translatable
}

// HasTemplates reports whether any wide-sheet form template is loaded.
func (r *Registry) HasTemplates() bool { return r.hasTemplates }

// HasDataModels reports whether any flat-sheet succession model is loaded.
func (r *Registry) HasDataModels() bool { return r.hasDataModels }

// Languages returns the union of language codes found across non-standard
// documents, in first-seen order.
func (r *Registry) Languages() []string {
	var langs []string
	seen := make(map[string]struct{})
	for _, doc := range r.All() {
		for _, lang := range doc.Languages {
			if _, ok := seen[lang]; !ok {
				seen[lang] = struct{}{}
				langs = append(langs, lang)
			}
		}
	}
	return langs
}

// Reset clears all session state for a fresh run.
func (r *Registry) Reset() {
	r.docs = make(map[string]*Document)
	r.order = nil
	r.translatable = make(map[string]struct{})
	r.hasTemplates = false
	r.hasDataModels = false
}

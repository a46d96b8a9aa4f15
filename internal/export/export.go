// Package export walks every loaded document's translatable nodes and emits
// spreadsheet rows: per-language flat sheets for data models, wide
// one-column-per-language sheets for form templates.
package export

import (
	"context"
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"github.com/rs/zerolog/log"

	"sfxlate/internal/datamodel"
	"sfxlate/internal/labelkeys"
	"sfxlate/internal/progress"
	"sfxlate/internal/sectionpath"
	"sfxlate/internal/textutil"
	"sfxlate/internal/workbook"
)

// ConfigErrorSuffix marks a msgKey that is referenced by a template field
// but absent from the supplied label-key table.
const ConfigErrorSuffix = "CONFIG ERROR (referred but missing in FormLabelKeys CSV)"

// Options control a single export run.
type Options struct {
	// Languages to export; the first entry is the system default language.
	Languages []string
	// StripMarkup removes embedded markup tags from exported labels.
	StripMarkup bool
	// ActiveCountries filters country-scoped nodes; empty means no filter.
	ActiveCountries []string
	// LabelKeys resolves msgKey references on template fields. May be nil.
	LabelKeys *labelkeys.Table
	// Progress receives (percent, message) updates after each document.
	Progress progress.Func
}

// Result summarizes a completed export run.
type Result struct {
	Sheets int
	Rows   int
}

// Engine exports one registry of loaded documents. Runs are single-pass and
// not safe for concurrent use with anything that touches the same trees.
type Engine struct {
	reg *datamodel.Registry
}

// New creates an export engine over the given session registry.
func New(reg *datamodel.Registry) *Engine {
	return &Engine{reg: reg}
}

// Run exports all registered documents into a new workbook. Cancellation is
// polled between documents; a cancelled run returns ctx.Err() and no
// workbook.
func (e *Engine) Run(ctx context.Context, opts Options) (*workbook.Builder, *Result, error) {
	if len(opts.Languages) == 0 {
		return nil, nil, fmt.Errorf("export: no languages given")
	}
	if opts.Progress == nil {
		opts.Progress = progress.Nop
	}

	b, err := workbook.NewBuilder()
	if err != nil {
		return nil, nil, err
	}

	opts.Progress(5, "Preparing worksheets...")
	if err := e.createSheets(b, opts.Languages); err != nil {
		return nil, nil, err
	}

	result := &Result{}
	docs := e.reg.All()
	state := &runState{
		builder:        b,
		opts:           opts,
		result:         result,
		addedCountries: make(map[string]map[string]bool),
	}

	for i, doc := range docs {
		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		default:
		}

		if doc.Kind.IsTemplate() {
			err = e.exportTemplate(state, doc)
		} else {
			err = e.exportDataModel(state, doc)
		}
		if err != nil {
			return nil, nil, fmt.Errorf("export %s: %w", doc.Name, err)
		}

		pct := 10 + 90*(i+1)/len(docs)
		opts.Progress(pct, fmt.Sprintf("Extracted translations from %s", doc.Name))
	}

	result.Sheets = len(b.Sheets())
	opts.Progress(100, "Export complete!")
	return b, result, nil
}

type runState struct {
	builder *workbook.Builder
	opts    Options
	result  *Result
	// addedCountries tracks the per-sheet country header rows already
	// written, keyed by sheet name then country code.
	addedCountries map[string]map[string]bool
}

// createSheets prepares the wide template sheets and the per-language flat
// sheets, depending on what is loaded.
func (e *Engine) createSheets(b *workbook.Builder, langs []string) error {
	if e.reg.HasTemplates() {
		pmHeaders := append([]string{}, workbook.WideHeaders...)
		var gmHeaders []string
		for _, h := range workbook.WideHeaders {
			if h != "Label Key" {
				gmHeaders = append(gmHeaders, h)
			}
		}
		for _, lang := range langs {
			pmHeaders = append(pmHeaders, workbook.LanguageHeader(lang))
			gmHeaders = append(gmHeaders, workbook.LanguageHeader(lang))
		}
		if err := b.AddSheet(workbook.SheetPerformance, pmHeaders); err != nil {
			return err
		}
		if err := b.AddSheet(workbook.SheetGoalDev, gmHeaders); err != nil {
			return err
		}
	}

	if e.reg.HasDataModels() {
		for _, lang := range langs {
			headers := append(append([]string{}, workbook.FlatHeaders...), workbook.FlatLanguageHeader(lang))
			if err := b.AddSheet(workbook.FlatSheetName(lang), headers); err != nil {
				return err
			}
		}
	}
	return nil
}

// exportDataModel emits flat-shape rows: one sheet per language, with
// missing translations resolved against the standard reference document.
func (e *Engine) exportDataModel(s *runState, doc *datamodel.Document) error {
	standard := e.reg.Standard(doc.Name)
	defaultLang := s.opts.Languages[0]

	var prevParent *etree.Element
	for _, el := range doc.WalkTranslatable(e.reg.TranslatableTags()) {
		parent := el.Parent()
		if parent == nil {
			continue
		}
		if skipNode(parent) {
			continue
		}

		path := sectionpath.Resolve(el, doc.Name, s.opts.ActiveCountries)
		if path.Skip {
			continue
		}

		defaultLabel := datamodel.DefaultTitle(el, defaultLang)
		if s.opts.StripMarkup {
			defaultLabel = textutil.StripMarkup(defaultLabel)
		}
		parentID := parent.SelectAttrValue("id", "")

		if parent != prevParent {
			for _, missing := range datamodel.MissingLanguages(el, s.opts.Languages) {
				sheet := workbook.FlatSheetName(missing)
				if !s.builder.HasSheet(sheet) {
					continue
				}
				if err := e.writeCountryHeader(s, sheet, parent.Tag, path); err != nil {
					return err
				}

				standardLabel := lookupStandardLabel(standard, parent.Tag, parentID, missing)
				row := []string{path.Section, path.Subsection, parentID, defaultLabel, standardLabel}
				if err := appendFlat(s, sheet, parent.Tag, row); err != nil {
					return err
				}
			}
		}
		prevParent = parent

		lang := el.SelectAttrValue("xml:lang", "")
		if lang == "" {
			continue
		}
		sheet := workbook.FlatSheetName(lang)
		if !s.builder.HasSheet(sheet) {
			continue
		}
		label := el.Text()
		if s.opts.StripMarkup {
			label = textutil.StripMarkup(label)
		}
		row := []string{path.Section, path.Subsection, parentID, defaultLabel, label}
		if err := appendFlat(s, sheet, parent.Tag, row); err != nil {
			return err
		}
	}
	return nil
}

// writeCountryHeader emits one bold country row per sheet for CSF nodes
// anchored directly under a country; the import anchors depend on it.
func (e *Engine) writeCountryHeader(s *runState, sheet, parentTag string, path sectionpath.Path) error {
	if !path.CountryAnchored || path.Country == "" {
		return nil
	}
	if !strings.HasPrefix(parentTag, "hris") && parentTag != "format" {
		return nil
	}
	added := s.addedCountries[sheet]
	if added == nil {
		added = make(map[string]bool)
		s.addedCountries[sheet] = added
	}
	if added[path.Country] {
		return nil
	}
	added[path.Country] = true
	s.result.Rows++
	return s.builder.AppendHeaderRow(sheet, []string{path.Section, "country", path.Country, "", ""})
}

// exportTemplate emits wide-shape rows: one row per field with one column
// per language; consecutive rows for the same (parent, tag) are suppressed.
func (e *Engine) exportTemplate(s *runState, doc *datamodel.Document) error {
	sheet := workbook.SheetGoalDev
	feature := "Manage Templates -> Goal Plan"
	switch doc.Kind {
	case datamodel.KindPerformanceFormTemplate:
		sheet = workbook.SheetPerformance
		feature = "Manage Templates -> Performance Review"
	case datamodel.KindDevelopmentPlanTemplate:
		feature = "Manage Templates -> Development"
	}
	isPM := sheet == workbook.SheetPerformance
	defaultLang := s.opts.Languages[0]

	if isPM {
		row := []string{feature, doc.Name, "General Settings", "Form Name", doc.Name, ""}
		if err := s.builder.AppendRow(sheet, row); err != nil {
			return err
		}
		s.result.Rows++
	}

	var prevParent *etree.Element
	prevTag := ""
	for _, el := range doc.WalkTranslatable(e.reg.TranslatableTags()) {
		parent := el.Parent()
		if parent == nil {
			continue
		}
		if skipNode(parent) {
			continue
		}
		if parent == prevParent && el.Tag == prevTag {
			continue
		}

		path := sectionpath.Resolve(el, doc.Name, nil)
		defaultLabel := datamodel.DefaultTitle(el, defaultLang)
		if s.opts.StripMarkup {
			defaultLabel = textutil.StripMarkup(defaultLabel)
		}
		field := sectionpath.ReadableName(el.Tag, true)

		keyCell := ""
		labels := make([]string, 0, len(s.opts.Languages))
		for _, lang := range s.opts.Languages {
			label := ""
			langTag := datamodel.ChildWithLangAttr(parent, lang)
			if langTag != nil {
				label = langTag.Text()
			} else if msgKey := messageKey(el); msgKey != "" {
				if s.opts.LabelKeys != nil && s.opts.LabelKeys.Has(msgKey) {
					label = s.opts.LabelKeys.Get(msgKey, lang)
					keyCell = msgKey
				} else {
					keyCell = fmt.Sprintf("%s - %s", msgKey, ConfigErrorSuffix)
					log.Warn().
						Str("document", doc.Name).
						Str("msgKey", msgKey).
						Msg("Message key referred but missing in label keys table")
				}
			}
			if s.opts.StripMarkup {
				label = textutil.StripMarkup(label)
			}
			labels = append(labels, label)
		}

		row := []string{feature, doc.Name, path.Subsection, field, defaultLabel}
		if isPM {
			row = append(row, keyCell)
		}
		row = append(row, labels...)
		if err := s.builder.AppendRow(sheet, row); err != nil {
			return err
		}
		s.result.Rows++

		prevParent = parent
		prevTag = el.Tag
	}
	return nil
}

// skipNode filters parents hidden from export.
func skipNode(parent *etree.Element) bool {
	if parent.SelectAttrValue("visibility", "") == "none" {
		return true
	}
	_, ignored := datamodel.TagsToIgnore[parent.Tag]
	return ignored
}

// messageKey reads the msgKey attribute, tolerating the lowercase variant
// some templates carry.
func messageKey(el *etree.Element) string {
	if v := el.SelectAttrValue("msgKey", ""); v != "" {
		return v
	}
	return el.SelectAttrValue("msgkey", "")
}

// lookupStandardLabel resolves a missing translation from the standard
// reference document by the same (tag, id) path.
func lookupStandardLabel(standard *datamodel.Document, tag, id, lang string) string {
	if standard == nil {
		return ""
	}
	stdTag := datamodel.FindByID(standard.Root(), tag, id, false)
	if stdTag == nil {
		return ""
	}
	langTag := datamodel.LanguageTagOf(stdTag, lang, "label")
	if langTag == nil {
		return ""
	}
	return langTag.Text()
}

// appendFlat writes one flat row, bold for the top-level boundary tags.
func appendFlat(s *runState, sheet, parentTag string, row []string) error {
	s.result.Rows++
	if _, highlight := datamodel.HighlightTags[parentTag]; highlight {
		return s.builder.AppendHeaderRow(sheet, row)
	}
	return s.builder.AppendRow(sheet, row)
}

// Package importer reads an edited translations workbook and applies the
// changes back to the loaded documents, producing ready-to-import artifacts
// and an import log.
package importer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"sfxlate/internal/datamodel"
	"sfxlate/internal/labelkeys"
	"sfxlate/internal/progress"
	"sfxlate/internal/sectionpath"
	"sfxlate/internal/textutil"
	"sfxlate/internal/workbook"
)

// sheetPassword protects the annotated sheets against accidental edits.
const sheetPassword = "...ApTrans..."

// logValueLimit caps old/new label values in import log entries; instruction
// labels can run to whole paragraphs.
const logValueLimit = 100

// Options control a single import run.
type Options struct {
	// Sheets to process; empty means every recognized sheet in the workbook.
	Sheets []string
	// LabelKeys receives msgKey-routed edits from the template sheets.
	// May be nil when no key table was loaded.
	LabelKeys *labelkeys.Table
	// OutputDir receives the generated artifacts.
	OutputDir string
	// Progress receives (percent, message) updates per sheet and artifact.
	Progress progress.Func
}

// Result summarizes a completed import run.
type Result struct {
	Success        bool
	FilesGenerated []string
	Changes        int
	LogPath        string
}

// Engine applies workbook edits to one registry of loaded documents.
// An Engine holds per-run state and is not safe for concurrent use.
type Engine struct {
	reg *datamodel.Registry

	logs     []string
	modified []*datamodel.Document
	changes  int
}

// New creates an import engine over the given session registry.
func New(reg *datamodel.Registry) *Engine {
	return &Engine{reg: reg}
}

// Run processes the workbook's sheets and writes the artifacts. Cancellation
// is polled between sheets; a cancelled run returns ctx.Err() and writes no
// artifacts.
func (e *Engine) Run(ctx context.Context, r *workbook.Reader, opts Options) (*Result, error) {
	if opts.Progress == nil {
		opts.Progress = progress.Nop
	}
	e.logs = nil
	e.modified = nil
	e.changes = 0

	sheets := opts.Sheets
	if len(sheets) == 0 {
		for _, name := range r.Sheets() {
			if workbook.IsFlatSheet(name) || name == workbook.SheetPerformance || name == workbook.SheetGoalDev {
				sheets = append(sheets, name)
			}
		}
	}
	if len(sheets) == 0 {
		return nil, fmt.Errorf("import: no translation sheets in workbook")
	}

	for i, sheet := range sheets {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		opts.Progress(55*(i+1)/len(sheets), fmt.Sprintf("Processing '%s' sheet from workbook...", sheet))

		rows, err := r.Rows(sheet)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 || len(rows[0]) < 2 {
			continue
		}

		logCol, err := r.AddChangeLogColumn(sheet)
		if err != nil {
			return nil, err
		}

		if workbook.IsFlatSheet(sheet) {
			err = e.processFlatSheet(r, sheet, rows, logCol)
		} else {
			err = e.processWideSheet(r, sheet, rows, logCol, opts.LabelKeys)
		}
		if err != nil {
			return nil, fmt.Errorf("import sheet %s: %w", sheet, err)
		}

		_ = r.File().ProtectSheet(sheet, &excelize.SheetProtectionOptions{
			Password:            sheetPassword,
			SelectLockedCells:   true,
			SelectUnlockedCells: true,
			Sort:                true,
			AutoFilter:          true,
			FormatColumns:       true,
		})
	}

	result := &Result{Success: true, Changes: e.changes}

	if len(e.modified) > 0 {
		opts.Progress(60, "Saving updated workbook with change log...")
		wbPath := filepath.Join(opts.OutputDir, "TranslationsWorkbook_WithChangeLog.xlsx")
		if err := r.Save(wbPath); err != nil {
			return nil, err
		}
		result.FilesGenerated = append(result.FilesGenerated, wbPath)
	}

	if opts.LabelKeys != nil && opts.LabelKeys.Dirty() {
		keysPath := filepath.Join(opts.OutputDir, "ReadyToImport_FormLabelKeys.csv")
		if err := opts.LabelKeys.Write(keysPath); err != nil {
			return nil, err
		}
		result.FilesGenerated = append(result.FilesGenerated, keysPath)
		opts.Progress(65, "Generated ReadyToImport_FormLabelKeys.csv")
	}

	logPath, err := e.saveLog(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	result.LogPath = logPath

	pct := 65
	for i, doc := range e.modified {
		pct = 65 + 35*(i+1)/len(e.modified)
		name := "ReadyToImport_" + textutil.SanitizeFilename(doc.Name) + ".xml"
		path := filepath.Join(opts.OutputDir, name)
		if err := doc.Write(path); err != nil {
			return nil, err
		}
		result.FilesGenerated = append(result.FilesGenerated, path)
		opts.Progress(pct, fmt.Sprintf("Generated ready-to-import file: %s", name))
	}

	opts.Progress(100, "Import complete!")
	return result, nil
}

// processFlatSheet applies one per-language data-model sheet. Bold rows act
// as anchors that narrow the lookup scope to the group they open.
func (e *Engine) processFlatSheet(r *workbook.Reader, sheet string, rows [][]string, logCol int) error {
	lang := workbook.FlatSheetLang(sheet)
	if lang == "" {
		return fmt.Errorf("no language code in sheet name %q", sheet)
	}

	var parent, grand *etree.Element
	for i := 1; i < len(rows); i++ {
		row := i + 1
		ref := cellAt(rows, i, 1)
		if ref == "" {
			break
		}
		item := cellAt(rows, i, 2)
		tagID := cellAt(rows, i, 3)
		label := cellAt(rows, i, 5)

		// CSF sections carry the country code in parentheses.
		if idx := strings.Index(ref, "("); idx >= 0 {
			ref = strings.TrimSpace(ref[:idx])
		}
		if ref == "Employee Profile" {
			ref = "SFEC Succession Data Model"
		}

		doc := e.reg.Get(ref)
		if doc == nil {
			if err := r.SetCell(sheet, row, logCol, "No data model found for "+ref); err != nil {
				return err
			}
			continue
		}
		root := doc.Root()

		if r.CellBold(sheet, row, 1) && r.CellBold(sheet, row, 2) && r.CellBold(sheet, row, 3) {
			if item == "country" || grand == nil {
				grand = root
			} else {
				grand = parent
			}
			parent = datamodel.FindByID(grand, item, tagID, true)
			if parent == nil {
				parent = datamodel.FindByID(root, item, tagID, false)
			}
		}
		if parent == nil {
			parent = root
		}

		match := datamodel.FindByID(parent, item, tagID, true)
		if match == nil {
			match = datamodel.FindByID(parent, item, tagID, false)
		}
		if match == nil {
			match = datamodel.FindByID(root, item, tagID, false)
		}
		if match == nil {
			e.logEntry(fmt.Sprintf("No matching tag found in %s for %s (%s)", ref, item, tagID))
			if err := r.SetCell(sheet, row, logCol, "No matching tag found in "+ref); err != nil {
				return err
			}
			continue
		}

		// Nodes without label children keep their text in instruction tags.
		labelTag := "label"
		existing := datamodel.LanguageTagOf(match, lang, labelTag)
		if datamodel.FirstChild(match, "label") == nil {
			labelTag = "instruction"
			existing = datamodel.LanguageTagOf(match, lang, labelTag)
			if datamodel.FirstChild(match, "instruction") == nil {
				existing = nil
				labelTag = "label"
			}
		}

		if existing == nil {
			if label == "" {
				continue
			}
			e.insertLanguageLabel(match, labelTag, lang, label)
			e.markModified(doc)
			e.changes++
			e.logEntry(fmt.Sprintf("Row %d: Added '%s' translation for %s", row, lang, item))
			if err := r.SetCell(sheet, row, logCol, fmt.Sprintf("Translation Added: '%s'", label)); err != nil {
				return err
			}
			continue
		}

		old := existing.Text()
		if label != "" && label != old {
			existing.SetText(label)
			e.markModified(doc)
			e.changes++
			e.logEntry(fmt.Sprintf("Row %d: Changed '%s' translation for %s from '%s' to '%s'",
				row, lang, item, textutil.Truncate(old, logValueLimit), textutil.Truncate(label, logValueLimit)))
			if err := r.SetCell(sheet, row, logCol, fmt.Sprintf("Translation Changed from '%s' to '%s'", old, label)); err != nil {
				return err
			}
		}
	}
	return nil
}

// insertLanguageLabel adds a language-tagged child after the last sibling
// with the same tag, keeping the language block contiguous.
func (e *Engine) insertLanguageLabel(parent *etree.Element, tag, lang, text string) {
	el := etree.NewElement(tag)
	el.CreateAttr("xml:lang", lang)
	el.SetText(text)
	last := -1
	for _, child := range parent.ChildElements() {
		if child.Tag == tag {
			last = child.Index()
		}
	}
	if last >= 0 {
		parent.InsertChildAt(last+1, el)
	} else {
		parent.AddChild(el)
	}
}

// processWideSheet applies one template sheet. Section and field names are
// resolved back to element lookups; performance templates route msgKey rows
// into the label-key table instead of the document.
func (e *Engine) processWideSheet(r *workbook.Reader, sheet string, rows [][]string, logCol int, keys *labelkeys.Table) error {
	rootTag := "obj-plan-template"
	isPM := sheet == workbook.SheetPerformance
	if isPM {
		rootTag = "sf-form"
	}

	header := rows[0]
	langStart := 0
	var langKeys []string
	for c, h := range header {
		if code := workbook.HeaderLang(h); code != "" {
			if langStart == 0 {
				langStart = c + 1
			}
			langKeys = append(langKeys, code)
		}
	}
	if langStart == 0 {
		return fmt.Errorf("no language columns in sheet %q", sheet)
	}

	var parentSection, parent *etree.Element
	for i := 1; i < len(rows); i++ {
		row := i + 1
		tmplName := cellAt(rows, i, 2)
		if tmplName == "" {
			break
		}
		section := cellAt(rows, i, 3)
		item := cellAt(rows, i, 4)

		doc := e.reg.Get(tmplName)
		if doc == nil {
			if err := r.SetCell(sheet, row, logCol, "No template found for "+tmplName); err != nil {
				return err
			}
			continue
		}
		root := doc.Root()

		switch {
		case strings.Contains(section, "("):
			open := strings.LastIndex(section, "(")
			eq := strings.LastIndex(section, "=")
			closing := strings.LastIndex(section, ")")
			if eq < open || closing < eq {
				continue
			}
			attrName := section[open+1 : eq]
			attrValue := section[eq+1 : closing]
			tagName := sectionpath.DeriveTagName(strings.TrimSpace(section[:strings.Index(section, "(")]))
			parentSection = datamodel.FindByAttr(root, tagName, attrName, attrValue)
			if parentSection == nil {
				parentSection = datamodel.FindByAttr(root, "fm-sect", attrName, attrValue)
			}
			parent = parentSection
		case section == sectionpath.ChildMarker+"Section Configuration":
			if parentSection != nil {
				parent = datamodel.FindFirst(parentSection, "fm-sect-config")
			}
		default:
			parent = datamodel.FindFirst(root, rootTag)
		}
		if parent == nil {
			continue
		}

		if idx := strings.LastIndex(item, "("); idx >= 0 {
			end := strings.LastIndex(item, ")")
			if end > idx {
				item = item[idx+1 : end]
			}
		}
		tag := datamodel.FindFirst(parent, item)
		if tag == nil {
			continue
		}

		langLabels := make(map[string]string, len(langKeys))
		for n, code := range langKeys {
			langLabels[code] = cellAt(rows, i, langStart+n)
		}

		var changeText string
		if isPM {
			changeText = e.applyKeyedLabels(doc, tag, langKeys, langLabels, keys, row)
		} else {
			changeText = e.applyInlineLabels(doc, tag, langKeys, langLabels, cellAt(rows, i, 5), row)
		}
		if changeText != "" {
			if err := r.SetCell(sheet, row, logCol, changeText); err != nil {
				return err
			}
		}
	}
	return nil
}

// applyKeyedLabels routes edits on msgKey-bearing fields into the label-key
// table. The document itself is only touched to normalize a lowercase
// msgkey attribute.
func (e *Engine) applyKeyedLabels(doc *datamodel.Document, tag *etree.Element, langKeys []string, langLabels map[string]string, keys *labelkeys.Table, row int) string {
	msgKey := tag.SelectAttrValue("msgKey", "")
	lowercase := false
	if msgKey == "" {
		msgKey = tag.SelectAttrValue("msgkey", "")
		lowercase = msgKey != ""
	}
	if msgKey == "" || keys == nil || !keys.Has(msgKey) {
		return ""
	}

	var modified, newLabels []string
	for _, code := range langKeys {
		fromCSV := keys.Get(msgKey, code)
		fromSheet := langLabels[code]
		if fromCSV != "" && fromCSV != fromSheet {
			keys.Set(msgKey, code, fromSheet)
			modified = append(modified, code)
			newLabels = append(newLabels, fromSheet)
			e.changes++
		}
	}

	if lowercase {
		tag.RemoveAttr("msgkey")
		tag.CreateAttr("msgKey", msgKey)
		e.markModified(doc)
	}

	if len(modified) == 0 {
		return ""
	}
	e.logEntry(fmt.Sprintf("Row %d: Updated FormLabelKeys for '%s' languages %v", row, msgKey, modified))
	return fmt.Sprintf("Translation changed in FormLabelKeys for %v to %v", modified, newLabels)
}

// applyInlineLabels updates a goal or development template field in place:
// the default text on the field itself and one lang-attributed sibling per
// language. Values are written as CDATA, matching how the templates store
// label text.
func (e *Engine) applyInlineLabels(doc *datamodel.Document, tag *etree.Element, langKeys []string, langLabels map[string]string, defLabel string, row int) string {
	var modified, oldLabels, newLabels []string

	if tag.SelectAttr("lang") == nil {
		old := tag.Text()
		if defLabel != "" && old != defLabel {
			tag.SetCData(defLabel)
			modified = append(modified, "Default")
			oldLabels = append(oldLabels, old)
			newLabels = append(newLabels, defLabel)
		}
	}

	siblings := followingSiblings(tag)
	anchor := tag
	for _, code := range langKeys {
		val := langLabels[code]
		if strings.TrimSpace(val) == "" {
			continue
		}
		found := false
		for _, sib := range siblings {
			if sib.SelectAttrValue("lang", "") != code {
				continue
			}
			found = true
			anchor = sib
			old := sib.Text()
			if old != val {
				sib.SetCData(val)
				modified = append(modified, code)
				oldLabels = append(oldLabels, old)
				newLabels = append(newLabels, val)
			}
			break
		}
		if !found {
			el := etree.NewElement(tag.Tag)
			el.CreateAttr("lang", code)
			el.SetCData(val)
			if p := tag.Parent(); p != nil {
				p.InsertChildAt(anchor.Index()+1, el)
			}
			anchor = el
			modified = append(modified, code)
			oldLabels = append(oldLabels, "")
			newLabels = append(newLabels, val)
		}
	}

	if len(modified) == 0 {
		return ""
	}
	e.markModified(doc)
	e.changes += len(modified)
	e.logEntry(fmt.Sprintf("Row %d: Changed translations for %v", row, modified))
	return fmt.Sprintf("Translation Changed for %v from %v to %v", modified, oldLabels, newLabels)
}

// followingSiblings returns the elements after el under the same parent
// that share its tag name.
func followingSiblings(el *etree.Element) []*etree.Element {
	parent := el.Parent()
	if parent == nil {
		return nil
	}
	var out []*etree.Element
	past := false
	for _, child := range parent.ChildElements() {
		if child == el {
			past = true
			continue
		}
		if past && child.Tag == el.Tag {
			out = append(out, child)
		}
	}
	return out
}

func (e *Engine) markModified(doc *datamodel.Document) {
	doc.MarkDirty()
	for _, m := range e.modified {
		if m == doc {
			return
		}
	}
	e.modified = append(e.modified, doc)
}

func (e *Engine) logEntry(msg string) {
	entry := fmt.Sprintf("%s: %s", textutil.Timestamp(), msg)
	e.logs = append(e.logs, entry)
	log.Debug().Str("entry", msg).Msg("Import log")
}

// saveLog writes the accumulated import log entries to a timestamped file.
func (e *Engine) saveLog(dir string) (string, error) {
	path := filepath.Join(dir, fmt.Sprintf("ImportLog_%s.log", textutil.Timestamp()))
	if err := os.WriteFile(path, []byte(strings.Join(e.logs, "\n\n")), 0o644); err != nil {
		return "", fmt.Errorf("write import log: %w", err)
	}
	return path, nil
}

// cellAt reads a 1-based column from a row matrix, tolerating short rows.
func cellAt(rows [][]string, rowIdx, col int) string {
	row := rows[rowIdx]
	if col-1 >= len(row) {
		return ""
	}
	return row[col-1]
}

// Package workbook wraps the xlsx layer: sheet naming conventions, header
// and highlight styles, and the change-log column the import run appends.
package workbook

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Sheet names the engines recognize.
const (
	SheetPerformance = "Performance_Review_Templates"
	SheetGoalDev     = "Goal&Development_Plan_Templates"
	FlatSheetPrefix  = "DataModel"

	// ChangeLogHeader titles the column an import run appends to every
	// processed sheet.
	ChangeLogHeader = "Change Log Identified During Import"
)

// FlatHeaders are the fixed columns of per-language data model sheets.
var FlatHeaders = []string{"Section", "Element/Subsection", "Field Id", "Default Label"}

// WideHeaders are the fixed columns of the performance-review template sheet.
// The goal/development sheet drops the Label Key column.
var WideHeaders = []string{
	"Translation Type", "Template Name", "Section/Element/Subsection",
	"Translatable Item/Field", "Default Label", "Label Key",
}

// FlatSheetName builds the per-language data model sheet name.
func FlatSheetName(lang string) string {
	return fmt.Sprintf("%s (%s)", FlatSheetPrefix, lang)
}

// FlatSheetLang extracts the language code from a data model sheet name.
func FlatSheetLang(sheetName string) string {
	start := strings.Index(sheetName, "(")
	end := strings.LastIndex(sheetName, ")")
	if start < 0 || end <= start {
		return ""
	}
	return sheetName[start+1 : end]
}

// IsFlatSheet reports whether the sheet holds per-language data model rows.
func IsFlatSheet(sheetName string) bool {
	return strings.HasPrefix(sheetName, FlatSheetPrefix)
}

// LanguageHeader builds the language column header, e.g.
// "Label in German (de_DE)". Codes that do not parse fall back to the raw
// code; the vendor debug pseudo-language keeps its fixed caption.
func LanguageHeader(lang string) string {
	if lang == "en-DEBUG" || lang == "en_DEBUG" {
		return "Label SF Debug (en-DEBUG)"
	}
	if name := EnglishName(lang); name != "" {
		return fmt.Sprintf("Label in %s (%s)", name, lang)
	}
	return fmt.Sprintf("Label in %s", lang)
}

// FlatLanguageHeader builds the last column header of a flat sheet.
func FlatLanguageHeader(lang string) string {
	if lang == "en-DEBUG" || lang == "en_DEBUG" {
		return "Label/Name in SF Debug Language"
	}
	if name := EnglishName(lang); name != "" {
		return fmt.Sprintf("Label/Name in %s", name)
	}
	return fmt.Sprintf("Label/Name in %s", lang)
}

// HeaderLang extracts the language code from a wide language header,
// e.g. "Label in German (de_DE)" yields "de_DE".
func HeaderLang(header string) string {
	start := strings.LastIndex(header, "(")
	end := strings.LastIndex(header, ")")
	if start < 0 || end <= start {
		return ""
	}
	return header[start+1 : end]
}

// EnglishName resolves a language code to its English display name, or ""
// when the code does not parse.
func EnglishName(lang string) string {
	code := strings.ReplaceAll(lang, "_", "-")
	tag, err := language.Parse(code)
	if err != nil {
		return ""
	}
	return display.English.Languages().Name(tag)
}

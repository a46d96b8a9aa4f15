package datamodel

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"
)

// ErrUnrecognized is returned for documents matching no known classification.
var ErrUnrecognized = errors.New("document matches no known configuration type")

// classify detects the document kind from marker elements. The order of the
// checks matters: succession markers win over country-specific-fields, which
// win over the corporate marker, then the form and plan templates.
func classify(root *etree.Element) Kind {
	switch {
	case FindFirst(root, "succession-data-model") != nil:
		if FindFirst(root, "hris-element") != nil {
			return KindSuccessionModelEC
		}
		return KindSuccessionModel

	case FindFirst(root, "country-specific-fields") != nil:
		if FindFirst(root, "format-group") != nil {
			return KindSuccessionModelCSF
		}
		return KindCorporateModelCSF

	case FindFirst(root, "corporate-data-model") != nil:
		return KindCorporateModel

	case FindFirst(root, "sf-form") != nil && FindFirst(root, "sf-pmreview") != nil:
		return KindPerformanceFormTemplate

	case FindFirst(root, "obj-plan-template") != nil:
		planType := FindFirst(root, "obj-plan-type")
		if planType != nil && strings.TrimSpace(planType.Text()) == "Development" {
			return KindDevelopmentPlanTemplate
		}
		return KindGoalPlanTemplate
	}
	return KindUnknown
}

// deriveName computes the document's display name, which is also its registry
// identity. Form templates are named after the file because their content
// carries no usable title; plan templates combine plan name and id. A plan
// template missing either has no identity and returns "", which excludes it.
func deriveName(root *etree.Element, kind Kind, path string) string {
	switch kind {
	case KindPerformanceFormTemplate:
		base := filepath.Base(path)
		return strings.TrimSuffix(base, filepath.Ext(base))

	case KindGoalPlanTemplate, KindDevelopmentPlanTemplate:
		planName := FindFirst(root, "obj-plan-name")
		planID := FindFirst(root, "obj-plan-id")
		if planName == nil || planID == nil {
			return ""
		}
		title := DefaultTitle(planName, SystemDefaultLang)
		return fmt.Sprintf("%s (%s)", title, strings.TrimSpace(planID.Text()))
	}
	return kind.String()
}

package importer

import (
	"fmt"

	"github.com/xinotrix/openproject-app-sheets/openproject"
	"github.com/xinotrix/openproject-app-sheets/wbs"
)

// form builds the work package creation payload for a record. The parent link is only
// included if the parent work package has already been created.
func (im *Importer) form(r wbs.Record) openproject.WorkPackageForm {
	typeID := im.taskType
	if r.IsPhase() {
		typeID = im.phaseType
	}

	description := r.Description
	if description == "" {
		description = fmt.Sprintf("Work package for %v", r.Name)
	}

	form := openproject.WorkPackageForm{
		Links: openproject.FormLinks{
			Project: openproject.Link{Href: im.remote.ProjectHref(im.project)},
			Type:    openproject.Link{Href: im.remote.TypeHref(typeID)},
		},
		Subject: r.Name,
		Description: openproject.Formattable{
			Raw: description,
		},
	}

	if r.Parent != "" {
		if id, ok := im.registry.Get(r.Parent); ok {
			form.Links.Parent = &openproject.Link{Href: im.remote.WorkPackageHref(id)}

			im.debugf("setting parent for %v to %v (work package %v)", r, r.Parent, id)
		} else {
			im.warnf("parent %v not found for %v", r.Parent, r)
		}
	}

	if estimate, err := r.Estimate(); err != nil {
		im.warnf("%v - ignoring estimated hours (%v)", r, err)
	} else if estimate != "" {
		form.EstimatedTime = estimate
	}

	return form
}

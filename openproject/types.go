package openproject

import (
	"fmt"
	"strconv"
	"strings"
)

type Link struct {
	Href  string `json:"href,omitempty"`
	Title string `json:"title,omitempty"`
}

// ID returns the trailing numeric identifier of a resource link e.g. 42 for
// /api/v3/work_packages/42.
func (l *Link) ID() (int, bool) {
	if l == nil || l.Href == "" {
		return 0, false
	}

	href := strings.TrimRight(l.Href, "/")
	ix := strings.LastIndex(href, "/")
	if id, err := strconv.Atoi(href[ix+1:]); err == nil {
		return id, true
	}

	return 0, false
}

type Formattable struct {
	Format string `json:"format,omitempty"`
	Raw    string `json:"raw"`
	HTML   string `json:"html,omitempty"`
}

// WorkPackageForm is the payload for creating a work package.
type WorkPackageForm struct {
	Links         FormLinks   `json:"_links"`
	Subject       string      `json:"subject"`
	Description   Formattable `json:"description"`
	EstimatedTime string      `json:"estimatedTime,omitempty"`
}

type FormLinks struct {
	Project Link  `json:"project"`
	Type    Link  `json:"type"`
	Parent  *Link `json:"parent,omitempty"`
}

// HasParent returns true if the form links the new work package to a parent.
func (f WorkPackageForm) HasParent() bool {
	return f.Links.Parent != nil && f.Links.Parent.Href != ""
}

// WithoutParent returns a copy of the form with the parent link removed.
func (f WorkPackageForm) WithoutParent() WorkPackageForm {
	f.Links.Parent = nil

	return f
}

type WorkPackage struct {
	ID            int          `json:"id"`
	Subject       string       `json:"subject"`
	Description   *Formattable `json:"description,omitempty"`
	EstimatedTime string       `json:"estimatedTime,omitempty"`
	Links         struct {
		Self    *Link `json:"self,omitempty"`
		Project *Link `json:"project,omitempty"`
		Type    *Link `json:"type,omitempty"`
		Parent  *Link `json:"parent,omitempty"`
	} `json:"_links"`
}

// Parent returns the ID of the parent work package, if any.
func (wp WorkPackage) Parent() (int, bool) {
	return wp.Links.Parent.ID()
}

func (wp WorkPackage) String() string {
	return fmt.Sprintf("#%v %q", wp.ID, wp.Subject)
}

type Project struct {
	ID         int    `json:"id"`
	Identifier string `json:"identifier"`
	Name       string `json:"name"`
}

type Type struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type collection[T any] struct {
	Total    int `json:"total"`
	Count    int `json:"count"`
	PageSize int `json:"pageSize"`
	Offset   int `json:"offset"`
	Embedded struct {
		Elements []T `json:"elements"`
	} `json:"_embedded"`
}

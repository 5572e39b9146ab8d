// Package exhibitors manages exhibitor registrations: the dashboard tab with
// status follow-up and edits, and the public registration form.
package exhibitors

import (
	"github.com/fairdesk/fairdesk/internal/admin"
)

// Exhibitor is one exhibitor registration as served by the API.
type Exhibitor struct {
	ID                int64        `json:"id"`
	CompanyName       string       `json:"company_name"`
	ContactPersonName string       `json:"contact_person_name"`
	Designation       string       `json:"designation"`
	EmailAddress      string       `json:"email_address"`
	ContactNumber     string       `json:"contact_number"`
	ProductCategory   string       `json:"product_category"`
	CompanyAddress    string       `json:"company_address"`
	Status            admin.Status `json:"status"`
	CreatedAt         string       `json:"created_at"`
}

// DisplayStatus is the status shown in the list.
func (e Exhibitor) DisplayStatus() admin.Status {
	return e.Status.Display()
}

// Input is the editable part of a registration. The public form and the
// dashboard edit form share it.
type Input struct {
	CompanyName       string `json:"company_name" form:"company_name" validate:"required,max=255"`
	ContactPersonName string `json:"contact_person_name" form:"contact_person_name" validate:"required,max=255"`
	Designation       string `json:"designation" form:"designation" validate:"required,max=255"`
	EmailAddress      string `json:"email_address" form:"email_address" validate:"required,email"`
	ContactNumber     string `json:"contact_number" form:"contact_number" validate:"required,max=20"`
	ProductCategory   string `json:"product_category" form:"product_category" validate:"required,max=255"`
	CompanyAddress    string `json:"company_address" form:"company_address" validate:"required"`
}

// InputFrom copies the editable fields of e.
func InputFrom(e Exhibitor) Input {
	return Input{
		CompanyName:       e.CompanyName,
		ContactPersonName: e.ContactPersonName,
		Designation:       e.Designation,
		EmailAddress:      e.EmailAddress,
		ContactNumber:     e.ContactNumber,
		ProductCategory:   e.ProductCategory,
		CompanyAddress:    e.CompanyAddress,
	}
}

// Matches reports whether e is listed for the search query q and status filter.
func (e Exhibitor) Matches(q, status string) bool {
	return e.Status.MatchesFilter(status) &&
		admin.Matches(q, e.CompanyName, e.ContactPersonName, e.EmailAddress)
}

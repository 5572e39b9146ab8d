// Package visitors manages visitor registrations.
package visitors

import (
	"github.com/fairdesk/fairdesk/internal/admin"
)

// Visitor is one visitor registration. Older records carry no status.
type Visitor struct {
	ID               int64        `json:"id"`
	FirstName        string       `json:"first_name"`
	LastName         string       `json:"last_name"`
	CompanyName      string       `json:"company_name"`
	EmailAddress     string       `json:"email_address"`
	PhoneNumber      string       `json:"phone_number"`
	IndustryInterest string       `json:"industry_interest"`
	Status           admin.Status `json:"status,omitempty"`
	CreatedAt        string       `json:"created_at"`
}

// FullName joins first and last name.
func (v Visitor) FullName() string {
	switch {
	case v.FirstName == "":
		return v.LastName
	case v.LastName == "":
		return v.FirstName
	}
	return v.FirstName + " " + v.LastName
}

// CurrentStatus treats a missing status as pending.
func (v Visitor) CurrentStatus() admin.Status {
	if v.Status == "" {
		return admin.StatusPending
	}
	return v.Status
}

// DisplayStatus is the status shown in the list.
func (v Visitor) DisplayStatus() admin.Status {
	return v.CurrentStatus().Display()
}

// Matches reports whether v is listed for the search query q and status filter.
func (v Visitor) Matches(q, status string) bool {
	return v.CurrentStatus().MatchesFilter(status) &&
		admin.Matches(q, v.FullName(), v.CompanyName, v.EmailAddress)
}

// Input is the public visitor registration form.
type Input struct {
	FirstName        string `json:"first_name" form:"first_name" validate:"required,max=255"`
	LastName         string `json:"last_name" form:"last_name" validate:"required,max=255"`
	CompanyName      string `json:"company_name" form:"company_name" validate:"required,max=255"`
	EmailAddress     string `json:"email_address" form:"email_address" validate:"required,email"`
	PhoneNumber      string `json:"phone_number" form:"phone_number" validate:"required,max=20"`
	IndustryInterest string `json:"industry_interest" form:"industry_interest" validate:"required,max=255"`
}

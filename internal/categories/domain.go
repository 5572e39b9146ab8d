// Package categories manages the product categories shown on the public site.
package categories

// Category is one product category. Image is the URL of the optional picture.
type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Image       string `json:"image,omitempty"`
}

// Input is the create and edit form of a category.
type Input struct {
	Name        string `json:"name" form:"name" validate:"required,max=100"`
	Description string `json:"description" form:"description" validate:"required"`
	Icon        string `json:"icon" form:"icon" validate:"max=10"`
}

// InputFrom copies the editable fields of c.
func InputFrom(c Category) Input {
	return Input{Name: c.Name, Description: c.Description, Icon: c.Icon}
}

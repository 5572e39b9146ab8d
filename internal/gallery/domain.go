// Package gallery manages the photo gallery. Every write is multipart.
package gallery

// Image is one gallery entry.
type Image struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	Location    string `json:"location,omitempty"`
	GalleryType string `json:"gallery_type,omitempty"`
	AboutType   string `json:"about_type,omitempty"`
}

// Src is the URL to display, preferring the absolute image_url.
func (i Image) Src() string {
	if i.ImageURL != "" {
		return i.ImageURL
	}
	return i.Image
}

// Input is the create and edit form of a gallery entry.
type Input struct {
	Title       string `form:"title" validate:"required,max=200"`
	Description string `form:"description" validate:"required"`
	Location    string `form:"location" validate:"max=200"`
	GalleryType string `form:"gallery_type" validate:"max=50"`
	AboutType   string `form:"about_type" validate:"max=50"`
}

// InputFrom copies the editable fields of i.
func InputFrom(i Image) Input {
	return Input{
		Title:       i.Title,
		Description: i.Description,
		Location:    i.Location,
		GalleryType: i.GalleryType,
		AboutType:   i.AboutType,
	}
}

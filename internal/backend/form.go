package backend

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
)

// ImageField is the multipart field carrying an attached image.
const ImageField = "image"

// Upload is a single file attached to a multipart submission.
type Upload struct {
	Filename    string
	ContentType string
	Content     io.Reader
}

type formField struct {
	name  string
	value string
}

// Form is a multipart body with text fields and at most one image.
// A nil Image means no image part is written at all.
type Form struct {
	fields []formField
	Image  *Upload
}

// NewForm returns an empty Form.
func NewForm() *Form {
	return &Form{}
}

// Set appends a text field. Fields are written in insertion order.
func (f *Form) Set(name, value string) *Form {
	f.fields = append(f.fields, formField{name: name, value: value})
	return f
}

// Attach sets the image part, replacing any previous one.
func (f *Form) Attach(upload *Upload) *Form {
	f.Image = upload
	return f
}

// HasImage reports whether an image part will be sent.
func (f *Form) HasImage() bool {
	return f != nil && f.Image != nil && f.Image.Content != nil
}

func (f *Form) encode() (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for _, field := range f.fields {
		if err := writer.WriteField(field.name, field.value); err != nil {
			return nil, "", err
		}
	}

	if f.HasImage() {
		part, err := f.createImagePart(writer)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, f.Image.Content); err != nil {
			return nil, "", fmt.Errorf("copy image: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return body, writer.FormDataContentType(), nil
}

func (f *Form) createImagePart(writer *multipart.Writer) (io.Writer, error) {
	filename := f.Image.Filename
	if filename == "" {
		filename = "upload"
	}
	if f.Image.ContentType == "" {
		return writer.CreateFormFile(ImageField, filename)
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, ImageField, escapeQuotes(filename)))
	header.Set("Content-Type", f.Image.ContentType)
	return writer.CreatePart(header)
}

func escapeQuotes(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '"' || r == '\\' {
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}

package admin

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/fairdesk/fairdesk/internal/backend"
	"github.com/fairdesk/fairdesk/internal/shared"
)

// MaxImageSize bounds an attached image.
const MaxImageSize = 10 << 20

// ReadImage reads the optional image upload of r. It returns nil when no
// file was chosen. The content is sniffed; the browser's content type is
// not trusted.
func ReadImage(r *http.Request) (*backend.Upload, error) {
	file, header, err := r.FormFile(backend.ImageField)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	defer file.Close()
	if header.Size == 0 && header.Filename == "" {
		return nil, nil
	}

	data, err := io.ReadAll(io.LimitReader(file, MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	errs := shared.ValidationErrors{}
	if len(data) > MaxImageSize {
		errs.Add(backend.ImageField, fmt.Sprintf("must be at most %d MB", MaxImageSize>>20))
		return nil, errs
	}
	kind := mimetype.Detect(data)
	if !strings.HasPrefix(kind.String(), "image/") {
		errs.Add(backend.ImageField, "must be an image file")
		return nil, errs
	}
	return &backend.Upload{
		Filename:    header.Filename,
		ContentType: kind.String(),
		Content:     bytes.NewReader(data),
	}, nil
}

// FormImage reads the optional image upload and merges any problem with it
// into errs, which may be nil.
func (k *Kit) FormImage(r *http.Request, errs shared.ValidationErrors) (*backend.Upload, shared.ValidationErrors) {
	upload, err := ReadImage(r)
	if err == nil {
		return upload, errs
	}
	if errs == nil {
		errs = shared.ValidationErrors{}
	}
	if fieldErrs := shared.FieldErrors(err); fieldErrs != nil {
		errs.Add(backend.ImageField, fieldErrs[backend.ImageField])
		return nil, errs
	}
	k.logger().Warn("read image upload", slog.Any("error", err))
	errs.Add(backend.ImageField, "could not be read")
	return nil, errs
}

package productform

import (
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/techstore/storefront-backend/pkg/enums"
)

// File is a raw upload offered to the draft.
type File struct {
	Filename string
	Data     []byte
}

// Rejection explains why one file was not staged.
type Rejection struct {
	Filename string `json:"filename"`
	Message  string `json:"message"`
}

// AddFiles stages every acceptable image and returns one rejection per file
// that is not an image or is larger than the configured limit.
func (d *Draft) AddFiles(files []File) []Rejection {
	var rejected []Rejection
	for _, f := range files {
		contentType, reason := d.checkImage(f)
		if reason != "" {
			rejected = append(rejected, Rejection{
				Filename: f.Filename,
				Message:  fmt.Sprintf("Skipped %s: %s", f.Filename, reason),
			})
			continue
		}
		d.staged = append(d.staged, StagedFile{Filename: f.Filename, ContentType: contentType, Data: f.Data})
		d.previews = append(d.previews, Preview{Source: enums.ImageSourceNew, Filename: f.Filename})
	}
	return rejected
}

func (d *Draft) checkImage(f File) (string, string) {
	detected := mimetype.Detect(f.Data)
	if !strings.HasPrefix(detected.String(), "image/") {
		return "", "Not an image file"
	}
	if limit := d.limits.MaxImageBytes; limit > 0 && int64(len(f.Data)) > limit {
		return "", fmt.Sprintf("File size exceeds %dMB", limit/(1024*1024))
	}
	return detected.String(), ""
}

// RemoveImage removes preview i from the pool it was tagged with. A removed
// existing image is remembered so it can be deleted once the edit is saved.
func (d *Draft) RemoveImage(i int) error {
	if i < 0 || i >= len(d.previews) {
		return fmt.Errorf("image index %d out of range", i)
	}
	preview := d.previews[i]
	pos := 0
	for _, p := range d.previews[:i] {
		if p.Source == preview.Source {
			pos++
		}
	}

	switch preview.Source {
	case enums.ImageSourceExisting:
		d.removed = append(d.removed, d.existing[pos])
		d.existing = append(d.existing[:pos:pos], d.existing[pos+1:]...)
	case enums.ImageSourceNew:
		d.staged = append(d.staged[:pos:pos], d.staged[pos+1:]...)
	default:
		return fmt.Errorf("invalid image source %q", preview.Source)
	}
	d.previews = append(d.previews[:i:i], d.previews[i+1:]...)
	return nil
}

// RemoveAllImages empties both pools.
func (d *Draft) RemoveAllImages() {
	d.removed = append(d.removed, d.existing...)
	d.existing = nil
	d.staged = nil
	d.previews = nil
}

// RetainOnly removes every existing image whose URL is not in keep.
func (d *Draft) RetainOnly(keep []string) {
	for i := len(d.previews) - 1; i >= 0; i-- {
		p := d.previews[i]
		if p.Source == enums.ImageSourceExisting && !contains(keep, p.URL) {
			_ = d.RemoveImage(i)
		}
	}
}

func (d *Draft) Previews() []Preview {
	out := make([]Preview, len(d.previews))
	copy(out, d.previews)
	return out
}

func (d *Draft) ExistingImages() []string {
	return append([]string(nil), d.existing...)
}

func (d *Draft) StagedFiles() []StagedFile {
	return append([]StagedFile(nil), d.staged...)
}

// RemovedImages lists the existing URLs dropped during this edit.
func (d *Draft) RemovedImages() []string {
	return append([]string(nil), d.removed...)
}

package validators

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	pkgerrors "github.com/techstore/storefront-backend/pkg/errors"
)

const multipartMemory = 8 << 20

// UploadedFile is a fully buffered multipart file part.
type UploadedFile struct {
	Filename string
	Data     []byte
}

// ParseMultipart bounds the request body and parses the form. Callers read
// values from r.MultipartForm afterwards.
func ParseMultipart(w http.ResponseWriter, r *http.Request, maxBytes int64) error {
	if r.ContentLength > maxBytes {
		return pkgerrors.New(pkgerrors.CodePayloadLarge, "request body too large").WithDetails(map[string]any{"limit_bytes": maxBytes})
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return pkgerrors.Wrap(pkgerrors.CodePayloadLarge, err, "request body too large").WithDetails(map[string]any{"limit_bytes": tooLarge.Limit})
		}
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form")
	}
	return nil
}

// FormFiles reads every file part under field. Files beyond maxFiles are
// rejected as a whole.
func FormFiles(form *multipart.Form, field string, maxFiles int) ([]UploadedFile, error) {
	if form == nil {
		return nil, nil
	}
	headers := form.File[field]
	if maxFiles > 0 && len(headers) > maxFiles {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "too many files").WithDetails(map[string]any{"field": field, "max": maxFiles})
	}
	files := make([]UploadedFile, 0, len(headers))
	for _, fh := range headers {
		data, err := readPart(fh)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read uploaded file").WithDetails(map[string]any{"file": fh.Filename})
		}
		files = append(files, UploadedFile{Filename: fh.Filename, Data: data})
	}
	return files, nil
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

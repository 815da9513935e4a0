package formdata

import (
	"mime/multipart"
	"net/http"
)

// maxFormMemory caps the in-memory portion of a parsed multipart body;
// larger file parts spill to temp files.
const maxFormMemory = 20 << 20 // 20MB

// Form is the parsed multipart body of a request. Clients submit some
// fields once and some as single-element lists; Form collapses both so
// handlers always see one value per name.
type Form struct {
	fields map[string][]string
	files  map[string][]*multipart.FileHeader
}

// Parse reads the request's multipart body. A stream or encoding error is
// the client's fault and should be answered with 400.
func Parse(r *http.Request) (*Form, error) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		return nil, err
	}
	f := &Form{
		fields: r.MultipartForm.Value,
		files:  r.MultipartForm.File,
	}
	return f, nil
}

// Value returns the first submitted value for name, or "".
func (f *Form) Value(name string) string {
	if vs := f.fields[name]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

// File returns the first uploaded file for name, or nil when the field was
// not submitted.
func (f *Form) File(name string) *multipart.FileHeader {
	if fhs := f.files[name]; len(fhs) > 0 {
		return fhs[0]
	}
	return nil
}

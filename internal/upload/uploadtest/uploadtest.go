// Package uploadtest builds image payloads for handler tests.
package uploadtest

import (
	"bytes"
	"mime/multipart"
	"net/textproto"
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

// PNG returns a buffer of size bytes that sniffs as image/png.
func PNG(size int) []byte {
	if size < len(pngSignature) {
		size = len(pngSignature)
	}
	b := make([]byte, size)
	copy(b, pngSignature)
	return b
}

// JPEG returns a small buffer that sniffs as image/jpeg.
func JPEG() []byte {
	return append([]byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}, make([]byte, 64)...)
}

// FilePart writes a file part with an explicit content type, which
// multipart.Writer.CreateFormFile does not allow.
func FilePart(w *multipart.Writer, field, filename, contentType string, data []byte) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = part.Write(data)
	return err
}

// Form is a multipart body under construction.
type Form struct {
	Body   *bytes.Buffer
	Writer *multipart.Writer
}

func NewForm() *Form {
	body := new(bytes.Buffer)
	return &Form{Body: body, Writer: multipart.NewWriter(body)}
}

func (f *Form) Field(name, value string) *Form {
	_ = f.Writer.WriteField(name, value)
	return f
}

func (f *Form) File(field, filename, contentType string, data []byte) *Form {
	_ = FilePart(f.Writer, field, filename, contentType, data)
	return f
}

// Close finishes the body and returns its Content-Type header value.
func (f *Form) Close() string {
	_ = f.Writer.Close()
	return f.Writer.FormDataContentType()
}

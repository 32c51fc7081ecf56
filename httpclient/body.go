package httpclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/url"
	"sort"
)

// Body is a request payload tagged with the encoding it was constructed
// with. Each constructor fixes the content type at the call site, so there
// is no runtime sniffing of what a payload "looks like".
type Body struct {
	contentType string
	data        []byte
	err         error
}

// ContentType returns the content type the body was constructed with.
func (b Body) ContentType() string {
	return b.contentType
}

// Binary wraps raw bytes as application/octet-stream.
func Binary(data []byte) Body {
	return Body{contentType: "application/octet-stream", data: data}
}

// Form encodes fields as multipart/form-data. Fields are written in sorted
// key order; the boundary is random per body, as multipart requires.
func Form(fields url.Values) Body {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		for _, v := range fields[k] {
			if err := w.WriteField(k, v); err != nil {
				return Body{err: fmt.Errorf("encoding form field %q: %w", k, err)}
			}
		}
	}
	if err := w.Close(); err != nil {
		return Body{err: fmt.Errorf("encoding form: %w", err)}
	}
	return Body{contentType: w.FormDataContentType(), data: buf.Bytes()}
}

// URLEncoded encodes fields as application/x-www-form-urlencoded.
func URLEncoded(fields url.Values) Body {
	return Body{
		contentType: "application/x-www-form-urlencoded",
		data:        []byte(fields.Encode()),
	}
}

// Text wraps a plain string as text/plain.
func Text(s string) Body {
	return Body{contentType: "text/plain", data: []byte(s)}
}

// JSON marshals v as application/json.
func JSON(v interface{}) Body {
	data, err := json.Marshal(v)
	if err != nil {
		return Body{err: fmt.Errorf("could not json encode request body: %w", err)}
	}
	return Body{contentType: JSONType, data: data}
}

// RawJSON wraps an already-encoded JSON string, skipping marshalling.
func RawJSON(s string) Body {
	return Body{contentType: JSONType, data: []byte(s)}
}

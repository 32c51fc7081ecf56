package httpclient

import (
	"net/url"
	"strings"
	"testing"

	"gotest.tools/v3/assert"
	"gotest.tools/v3/assert/cmp"
)

func TestBody_ContentTypes(t *testing.T) {
	assert.Check(t, cmp.Equal(Binary([]byte{1, 2}).ContentType(), "application/octet-stream"))
	assert.Check(t, cmp.Equal(Text("hi").ContentType(), "text/plain"))
	assert.Check(t, cmp.Equal(JSON(map[string]int{"a": 1}).ContentType(), JSONType))
	assert.Check(t, cmp.Equal(RawJSON(`{"a":1}`).ContentType(), JSONType))
	assert.Check(t, cmp.Equal(
		URLEncoded(url.Values{"a": {"1"}}).ContentType(),
		"application/x-www-form-urlencoded"))
	assert.Check(t, cmp.Contains(
		Form(url.Values{"a": {"1"}}).ContentType(),
		"multipart/form-data; boundary="))
}

func TestJSON_Encodes(t *testing.T) {
	b := JSON(map[string]string{"name": "rex"})
	assert.Assert(t, b.err)
	assert.Check(t, cmp.Equal(string(b.data), `{"name":"rex"}`))
}

func TestJSON_EncodeFailureSurfacesAtDispatch(t *testing.T) {
	b := JSON(func() {}) // functions cannot be marshalled
	assert.Check(t, b.err != nil)
}

func TestRawJSON_SkipsEncoding(t *testing.T) {
	b := RawJSON(`{"already": "encoded"}`)
	assert.Assert(t, b.err)
	assert.Check(t, cmp.Equal(string(b.data), `{"already": "encoded"}`))
}

func TestURLEncoded_SortsKeys(t *testing.T) {
	b := URLEncoded(url.Values{"z": {"26"}, "a": {"1"}})
	assert.Check(t, cmp.Equal(string(b.data), "a=1&z=26"))
}

func TestForm_WritesAllFields(t *testing.T) {
	b := Form(url.Values{"name": {"rex"}, "kind": {"dog"}})
	assert.Assert(t, b.err)

	body := string(b.data)
	assert.Check(t, cmp.Contains(body, `name="kind"`))
	assert.Check(t, cmp.Contains(body, "dog"))
	assert.Check(t, cmp.Contains(body, `name="name"`))
	assert.Check(t, cmp.Contains(body, "rex"))

	// fields are written in sorted key order
	assert.Check(t, strings.Index(body, `name="kind"`) < strings.Index(body, `name="name"`))
}

package traffic

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp/cmpopts"
	"gotest.tools/v3/assert"
	"gotest.tools/v3/assert/cmp"
)

func TestRecorder_PostBodiesAreDistinct(t *testing.T) {
	rec := NewRecorder()
	rec.Record("POST", "/api/pets", `{"name":"rex"}`)
	rec.Record("POST", "/api/pets", `{"name":"fly"}`)

	assert.Check(t, cmp.DeepEqual(rec.Recorded(), Map{
		"post": {
			"/api/pets": map[string]string{
				`{"name":"rex"}`: Placeholder,
				`{"name":"fly"}`: Placeholder,
			},
		},
	}))
}

func TestRecorder_GetKeyedByURLOnly(t *testing.T) {
	rec := NewRecorder()
	rec.Record("GET", "/api/pets?type=dog", "")
	rec.Record("GET", "/api/pets?type=dog", "")
	rec.Record("DELETE", "/api/pets/1", "")

	assert.Check(t, cmp.DeepEqual(rec.Recorded(), Map{
		"get":    {"/api/pets?type=dog": Placeholder},
		"delete": {"/api/pets/1": Placeholder},
	}))
}

func TestRecorder_UnmockedIsSeparate(t *testing.T) {
	rec := NewRecorder()
	rec.Record("GET", "/api/pets", "")
	rec.RecordUnmocked("GET", "/api/owners", "")

	assert.Check(t, cmp.DeepEqual(rec.Recorded(), Map{
		"get": {"/api/pets": Placeholder},
	}))
	assert.Check(t, cmp.DeepEqual(rec.Unmocked(), Map{
		"get": {"/api/owners": Placeholder},
	}))
}

func TestDump_SortInvariance(t *testing.T) {
	a := NewRecorder()
	a.Record("GET", "/b", "")
	a.Record("GET", "/a", "")
	a.Record("POST", "/p", "body-2")
	a.Record("POST", "/p", "body-1")
	a.Record("DELETE", "/d", "")

	b := NewRecorder()
	b.Record("DELETE", "/d", "")
	b.Record("POST", "/p", "body-1")
	b.Record("POST", "/p", "body-2")
	b.Record("GET", "/a", "")
	b.Record("GET", "/b", "")

	da, err := a.DumpRecorded()
	assert.Assert(t, err)
	db, err := b.DumpRecorded()
	assert.Assert(t, err)
	assert.Check(t, cmp.Equal(da, db))
}

func TestDump_Shape(t *testing.T) {
	rec := NewRecorder()
	rec.Record("PUT", "/api/pets/1", `{"name":"rex"}`)
	rec.Record("GET", "/api/pets", "")
	rec.Record("DELETE", "/api/pets/2", "")

	out, err := rec.DumpRecorded()
	assert.Assert(t, err)
	assert.Check(t, cmp.Equal(out, `{
  "delete": {
    "/api/pets/2": "OK"
  },
  "get": {
    "/api/pets": "OK"
  },
  "put": {
    "/api/pets/1": {
      "{\"name\":\"rex\"}": "OK"
    }
  }
}
`))
}

func TestParse_RoundTrip(t *testing.T) {
	rec := NewRecorder()
	rec.Record("GET", "/api/pets", "")
	rec.Record("POST", "/api/pets", `{"name":"rex"}`)

	out, err := rec.DumpRecorded()
	assert.Assert(t, err)

	m, err := Parse([]byte(out))
	assert.Assert(t, err)
	assert.Check(t, cmp.DeepEqual(m, rec.Recorded(), cmpopts.EquateEmpty()))
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "not json", data: "nope"},
		{name: "get with body map", data: `{"get": {"/a": {"b": "OK"}}}`},
		{name: "post with string marker", data: `{"post": {"/a": "OK"}}`},
		{name: "post with non-string marker", data: `{"post": {"/a": {"b": 7}}}`},
		{name: "get with numeric marker", data: `{"get": {"/a": 7}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			assert.Check(t, err != nil)
		})
	}
}

func TestFixture_WriteAndLoad(t *testing.T) {
	rec := NewRecorder()
	rec.Record("GET", "/api/pets", "")
	rec.RecordUnmocked("POST", "/api/owners", `{"n":1}`)

	dir := t.TempDir()
	recordedPath := filepath.Join(dir, "fixtures", "recorded.json")
	unmockedPath := filepath.Join(dir, "fixtures", "unmocked.json")

	assert.Assert(t, rec.WriteRecorded(recordedPath))
	assert.Assert(t, rec.WriteUnmocked(unmockedPath))

	m, err := Load(recordedPath)
	assert.Assert(t, err)
	assert.Check(t, cmp.DeepEqual(m, rec.Recorded()))

	u, err := Load(unmockedPath)
	assert.Assert(t, err)
	assert.Check(t, cmp.DeepEqual(u, rec.Unmocked()))
}

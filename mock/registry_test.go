package mock

import (
	"net/http"
	"testing"

	"gotest.tools/v3/assert"
	"gotest.tools/v3/assert/cmp"

	"github.com/mockwire/mockwire/traffic"
)

func TestImport_GetAnswersEveryCall(t *testing.T) {
	rec := traffic.NewRecorder()
	rec.Record("GET", "/api/pets", "")
	rec.Record("DELETE", "/api/pets/1", "")

	reg := NewRegistry()
	reg.Import(rec.Recorded())

	m, ok := reg.Intercept("GET", "/api/pets", "")
	assert.Assert(t, ok)
	assert.Check(t, cmp.Equal(m.Status, http.StatusOK))
	assert.Check(t, cmp.Equal(m.Body, traffic.Placeholder))

	m, ok = reg.Intercept("DELETE", "/api/pets/1", "")
	assert.Assert(t, ok)
	assert.Check(t, cmp.Equal(m.Body, traffic.Placeholder))
}

func TestImport_PostKeyedByBody(t *testing.T) {
	rec := traffic.NewRecorder()
	rec.Record("POST", "/api/pets", `{"name":"rex"}`)
	rec.Record("POST", "/api/pets", `{"name":"fly"}`)

	reg := NewRegistry()
	reg.Import(rec.Recorded())

	m, ok := reg.Intercept("POST", "/api/pets", `{"name":"rex"}`)
	assert.Assert(t, ok)
	assert.Check(t, cmp.Equal(m.Status, http.StatusOK))

	_, ok = reg.Intercept("POST", "/api/pets", `{"name":"fly"}`)
	assert.Check(t, ok)

	// a body that was never recorded is declined
	_, ok = reg.Intercept("POST", "/api/pets", `{"name":"bob"}`)
	assert.Check(t, !ok)
}

func TestImport_ThenClear(t *testing.T) {
	rec := traffic.NewRecorder()
	rec.Record("GET", "/api/pets", "")

	reg := NewRegistry()
	reg.Import(rec.Recorded())
	assert.Check(t, !reg.Empty())

	reg.Clear()
	_, ok := reg.Intercept("GET", "/api/pets", "")
	assert.Check(t, !ok)

	// clearing the registry never touches recorded traffic
	assert.Check(t, cmp.DeepEqual(rec.Recorded(), traffic.Map{
		"get": {"/api/pets": traffic.Placeholder},
	}))
}

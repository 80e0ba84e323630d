package gesture

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/isyarat/internal/detector"
)

func landmarksJSON(pose detector.HandFrame) string {
	data, _ := json.Marshal(pose.Normalize())
	return string(data)
}

func TestLibrary_CRUD(t *testing.T) {
	lib := NewLibrary()

	a := lib.Add(templateFor("a", detector.FistFrame()))
	b := lib.Add(Template{Name: "no id", Landmarks: detector.OpenPalmFrame().Normalize()})

	require.Equal(t, 2, lib.Len())
	assert.Equal(t, "a", a.ID)
	assert.NotEmpty(t, b.ID, "Add should assign an id")

	got, err := lib.Get(b.ID)
	require.NoError(t, err)
	assert.Equal(t, "no id", got.Name)

	list := lib.List()
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].ID, "List should keep insertion order")

	list[0].Name = "mutated"
	again, _ := lib.Get("a")
	assert.Equal(t, "a", again.Name, "List must return a copy")

	require.NoError(t, lib.Delete("a"))
	assert.Equal(t, 1, lib.Len())
	assert.ErrorIs(t, lib.Delete("a"), ErrNotFound)

	_, err = lib.Get("a")
	assert.ErrorIs(t, err, ErrNotFound)

	lib.Clear()
	assert.Equal(t, 0, lib.Len())
}

func TestLibrary_Update(t *testing.T) {
	lib := NewLibrary()
	lib.Add(templateFor("wave", detector.OpenPalmFrame()))

	name, response, cooldown := "hello", "hai", int64(4000)
	updated, err := lib.Update("wave", TemplatePatch{Name: &name, Response: &response, Cooldown: &cooldown})
	require.NoError(t, err)
	assert.Equal(t, "hello", updated.Name)
	assert.Equal(t, "hai", updated.Response)
	assert.Equal(t, int64(4000), updated.Cooldown)

	empty, zero := "", int64(0)
	updated, err = lib.Update("wave", TemplatePatch{Name: &empty, Cooldown: &zero})
	require.NoError(t, err)
	assert.Equal(t, "hello", updated.Name, "empty name keeps the old one")
	assert.Equal(t, int64(4000), updated.Cooldown, "zero cooldown keeps the old one")

	_, err = lib.Update("missing", TemplatePatch{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLibrary_Trigger(t *testing.T) {
	lib := NewLibrary()
	lib.Add(Template{ID: "g1", Cooldown: 1000})
	lib.Add(Template{ID: "g2"})

	tpl, ok, err := lib.Trigger("g1", 5_000, 2500)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(5_000), tpl.LastTriggered)

	_, ok, _ = lib.Trigger("g1", 5_999, 2500)
	assert.False(t, ok, "inside template cooldown")

	_, ok, _ = lib.Trigger("g1", 6_000, 2500)
	assert.True(t, ok, "template cooldown elapsed")

	_, ok, _ = lib.Trigger("g2", 5_000, 2500)
	assert.True(t, ok)
	_, ok, _ = lib.Trigger("g2", 7_000, 2500)
	assert.False(t, ok, "default cooldown applies when template has none")

	_, _, err = lib.Trigger("missing", 1, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLibrary_Import(t *testing.T) {
	t.Run("single record", func(t *testing.T) {
		lib := NewLibrary()
		payload := `[{"id":"g1","name":"wave","response":"hi","cooldown":1000,"lastTriggered":99,"landmarks":` +
			landmarksJSON(detector.OpenPalmFrame()) + `}]`

		n, err := lib.Import(strings.NewReader(payload))
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		require.Equal(t, 1, lib.Len())

		tpl, err := lib.Get("g1")
		require.NoError(t, err)
		assert.Equal(t, "wave", tpl.Name)
		assert.Equal(t, "hi", tpl.Response)
		assert.Equal(t, int64(1000), tpl.Cooldown)
		assert.Equal(t, int64(0), tpl.LastTriggered)
		assert.Equal(t, detector.OpenPalmFrame().Normalize(), tpl.Landmarks)
	})

	t.Run("replaces existing templates and assigns missing ids", func(t *testing.T) {
		lib := NewLibrary()
		lib.Add(templateFor("old", detector.FistFrame()))

		payload := `[{"name":"a","landmarks":` + landmarksJSON(detector.FistFrame()) + `}]`
		_, err := lib.Import(strings.NewReader(payload))
		require.NoError(t, err)

		list := lib.List()
		require.Len(t, list, 1)
		assert.NotEqual(t, "old", list[0].ID)
		assert.NotEmpty(t, list[0].ID)
	})

	t.Run("points with z are accepted", func(t *testing.T) {
		points := make([]string, detector.NumLandmarks)
		for i := range points {
			points[i] = `{"x":0.1,"y":0.2,"z":-0.05}`
		}
		payload := `[{"id":"z","landmarks":[` + strings.Join(points, ",") + `]}]`

		lib := NewLibrary()
		_, err := lib.Import(strings.NewReader(payload))
		require.NoError(t, err)
	})

	t.Run("numeric ids become strings", func(t *testing.T) {
		payload := `[{"id":7,"name":"seven","landmarks":` + landmarksJSON(detector.FistFrame()) +
			`},{"id":1.5e3,"name":"big","landmarks":` + landmarksJSON(detector.PeaceFrame()) +
			`},{"id":null,"name":"anon","landmarks":` + landmarksJSON(detector.OpenPalmFrame()) + `}]`

		lib := NewLibrary()
		n, err := lib.Import(strings.NewReader(payload))
		require.NoError(t, err)
		assert.Equal(t, 3, n)

		tpl, err := lib.Get("7")
		require.NoError(t, err)
		assert.Equal(t, "seven", tpl.Name)

		tpl, err = lib.Get("1.5e3")
		require.NoError(t, err)
		assert.Equal(t, "big", tpl.Name)

		assert.NotEmpty(t, lib.List()[2].ID)
	})

	t.Run("duplicate ids leave the library untouched", func(t *testing.T) {
		lib := NewLibrary()
		lib.Add(templateFor("keep", detector.PeaceFrame()))

		payload := `[{"id":"g1","response":"palm","landmarks":` + landmarksJSON(detector.OpenPalmFrame()) +
			`},{"id":"g1","response":"fist","landmarks":` + landmarksJSON(detector.FistFrame()) + `}]`

		_, err := lib.Import(strings.NewReader(payload))
		require.ErrorIs(t, err, ErrMalformedImport)
		assert.Contains(t, err.Error(), `duplicate id "g1"`)

		require.Equal(t, 1, lib.Len())
		_, err = lib.Get("g1")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	malformed := []struct {
		name    string
		payload string
	}{
		{"object", `{"id":"g1"}`},
		{"null", `null`},
		{"empty", ``},
		{"string", `"templates"`},
		{"invalid json", `[{"id":`},
		{"short landmarks", `[{"id":"g1","landmarks":[{"x":0,"y":0}]}]`},
		{"boolean id", `[{"id":true,"landmarks":` + landmarksJSON(detector.FistFrame()) + `}]`},
		{"number and string id collide", `[{"id":7,"landmarks":` + landmarksJSON(detector.FistFrame()) +
			`},{"id":"7","landmarks":` + landmarksJSON(detector.PeaceFrame()) + `}]`},
	}
	for _, tt := range malformed {
		t.Run("rejects "+tt.name, func(t *testing.T) {
			lib := NewLibrary()
			lib.Add(templateFor("keep", detector.PeaceFrame()))

			_, err := lib.Import(strings.NewReader(tt.payload))
			if !errors.Is(err, ErrMalformedImport) {
				t.Fatalf("expected ErrMalformedImport, got %v", err)
			}
			if lib.Len() != 1 {
				t.Fatalf("library changed on malformed import: %d templates", lib.Len())
			}
			if _, err := lib.Get("keep"); err != nil {
				t.Errorf("existing template lost: %v", err)
			}
		})
	}
}

func TestLibrary_ExportImportRoundTrip(t *testing.T) {
	lib := NewLibrary()
	lib.Add(templateFor("one", detector.PeaceFrame()))
	lib.Add(templateFor("two", detector.ThumbsUpFrame()))
	lib.Trigger("one", 123_456, 2500)

	var buf bytes.Buffer
	require.NoError(t, lib.Export(&buf))

	var exported []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &exported))
	require.Len(t, exported, 2)
	assert.Equal(t, float64(123_456), exported[0]["lastTriggered"], "export keeps lastTriggered")
	for _, key := range []string{"id", "name", "response", "cooldown", "landmarks"} {
		assert.Contains(t, exported[0], key)
	}

	restored := NewLibrary()
	_, err := restored.Import(&buf)
	require.NoError(t, err)

	list := restored.List()
	require.Len(t, list, 2)
	assert.Equal(t, "one", list[0].ID)
	assert.Equal(t, int64(0), list[0].LastTriggered)
	assert.Equal(t, lib.List()[1].Landmarks, list[1].Landmarks)
}

func TestLibrary_ExportEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewLibrary().Export(&buf))
	assert.JSONEq(t, `[]`, buf.String())
}

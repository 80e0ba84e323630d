package gesture

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"

	"github.com/ayusman/isyarat/internal/detector"
)

var (
	// ErrNotFound is returned when a template id is unknown.
	ErrNotFound = errors.New("template not found")
	// ErrMalformedImport is returned when an import payload is not a list of
	// templates. The library is left untouched.
	ErrMalformedImport = errors.New("malformed template import")
)

// Template is a recorded reference pose and the response it triggers.
type Template struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Response string `json:"response"`
	// Cooldown is the per-template cooldown in milliseconds.
	Cooldown  int64              `json:"cooldown"`
	Landmarks detector.HandFrame `json:"landmarks"`
	// LastTriggered is the unix millisecond time of the last response, 0 if
	// the template never fired.
	LastTriggered int64 `json:"lastTriggered"`
}

// TemplatePatch holds the editable fields of a template. Nil fields are
// left unchanged.
type TemplatePatch struct {
	Name     *string
	Response *string
	Cooldown *int64
}

// Library is the ordered template store. Iteration order is insertion
// order, which the matcher relies on for tie-breaking.
type Library struct {
	mu        sync.RWMutex
	templates []Template
}

// NewLibrary creates an empty Library.
func NewLibrary() *Library {
	return &Library{}
}

// Add appends a template. An empty id is replaced with a fresh one.
func (l *Library) Add(t Template) Template {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.templates = append(l.templates, t)
	return t
}

// Get returns the template with the given id.
func (l *Library) Get(id string) (Template, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if i := l.indexOf(id); i >= 0 {
		return l.templates[i], nil
	}
	return Template{}, ErrNotFound
}

// List returns a copy of all templates in store order.
func (l *Library) List() []Template {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Template, len(l.templates))
	copy(out, l.templates)
	return out
}

// Len returns the number of templates.
func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.templates)
}

// Update applies patch to the template with the given id. Empty strings and
// non-positive cooldowns keep the current value.
func (l *Library) Update(id string, patch TemplatePatch) (Template, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexOf(id)
	if i < 0 {
		return Template{}, ErrNotFound
	}

	t := &l.templates[i]
	if patch.Name != nil && *patch.Name != "" {
		t.Name = *patch.Name
	}
	if patch.Response != nil && *patch.Response != "" {
		t.Response = *patch.Response
	}
	if patch.Cooldown != nil && *patch.Cooldown > 0 {
		t.Cooldown = *patch.Cooldown
	}
	return *t, nil
}

// Delete removes the template with the given id.
func (l *Library) Delete(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	l.templates = append(l.templates[:i], l.templates[i+1:]...)
	return nil
}

// Clear removes every template.
func (l *Library) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.templates = nil
}

// Trigger applies the template's cooldown at nowMs. When allowed it records
// nowMs as LastTriggered and returns the updated template. A template
// without its own cooldown uses defaultCooldown.
func (l *Library) Trigger(id string, nowMs int64, defaultCooldown int64) (Template, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexOf(id)
	if i < 0 {
		return Template{}, false, ErrNotFound
	}

	t := &l.templates[i]
	cooldown := t.Cooldown
	if cooldown <= 0 {
		cooldown = defaultCooldown
	}
	if !Allow(nowMs, t.LastTriggered, cooldown) {
		return *t, false, nil
	}
	t.LastTriggered = nowMs
	return *t, true, nil
}

// importRecord is the wire shape of one template in an import payload.
type importRecord struct {
	ID        importID         `json:"id"`
	Name      string           `json:"name"`
	Response  string           `json:"response"`
	Cooldown  int64            `json:"cooldown"`
	Landmarks []detector.Point `json:"landmarks"`
}

// importID accepts a string or a number as a template id. Numbers keep
// their literal text, so 7 becomes "7".
type importID string

func (id *importID) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}
	switch v := v.(type) {
	case nil:
		*id = ""
	case string:
		*id = importID(v)
	case json.Number:
		*id = importID(v.String())
	default:
		return fmt.Errorf("id must be a string or a number, got %s", data)
	}
	return nil
}

// Import replaces the library with the templates read from r. The payload
// must be a JSON array, every record must carry 21 landmarks and ids must
// be unique; otherwise ErrMalformedImport is returned and nothing changes.
// Records without an id get a fresh one. LastTriggered is reset on every
// imported template.
func (l *Library) Import(r io.Reader) (int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("read import: %w", err)
	}
	if trimmed := bytes.TrimSpace(data); len(trimmed) == 0 || trimmed[0] != '[' {
		return 0, fmt.Errorf("%w: top level is not a list", ErrMalformedImport)
	}

	var records []importRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformedImport, err)
	}

	templates := make([]Template, 0, len(records))
	seen := make(map[string]int, len(records))
	for i, rec := range records {
		frame, err := detector.HandFrameFromPoints(rec.Landmarks)
		if err != nil {
			return 0, fmt.Errorf("%w: record %d: %v", ErrMalformedImport, i, err)
		}
		id := string(rec.ID)
		if id == "" {
			id = uuid.NewString()
		}
		if first, dup := seen[id]; dup {
			return 0, fmt.Errorf("%w: record %d: duplicate id %q (first used by record %d)", ErrMalformedImport, i, id, first)
		}
		seen[id] = i
		templates = append(templates, Template{
			ID:        id,
			Name:      rec.Name,
			Response:  rec.Response,
			Cooldown:  rec.Cooldown,
			Landmarks: frame,
		})
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.templates = templates
	return len(templates), nil
}

// Export writes the library as a JSON array, including LastTriggered.
func (l *Library) Export(w io.Writer) error {
	templates := l.List()
	return json.NewEncoder(w).Encode(templates)
}

// indexOf must be called with the lock held.
func (l *Library) indexOf(id string) int {
	for i := range l.templates {
		if l.templates[i].ID == id {
			return i
		}
	}
	return -1
}

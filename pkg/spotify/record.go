package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// record is the raw JSON backing of one entity: a mapping from field name to
// the undecoded JSON value the API returned for it. Each record is owned
// exclusively by the entity wrapping it and is mutated only by merge.
type record map[string]json.RawMessage

// merge copies every field of other into r. New values overwrite existing
// ones (last writer wins).
func (r record) merge(other record) {
	for k, v := range other {
		r[k] = v
	}
}

// stringValue decodes the named field as a string without any refresh logic.
// Returns "" if the field is absent or not a string.
func (r record) stringValue(name string) string {
	var s string
	if raw, ok := r[name]; ok {
		_ = json.Unmarshal(raw, &s)
	}
	return s
}

// Entity is implemented by all catalog objects (Album, Artist, Track,
// Playlist, User).
type Entity interface {
	// ID returns the Spotify id the entity was constructed with.
	ID() string
	// Kind returns the entity's catalog kind.
	Kind() ResourceKind
}

// Equal reports whether two entities refer to the same catalog object: same
// kind and same non-empty Spotify id. Two Track values obtained from
// different calls compare equal if they wrap the same track.
func Equal(a, b Entity) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Kind() == b.Kind() && a.ID() != "" && a.ID() == b.ID()
}

// entity carries the record and lazy-load state shared by all catalog
// objects.
//
// An entity starts Partial: constructed from whatever JSON fragment the API
// (or a parent object) supplied. The first accessor that needs a field absent
// from the record triggers a single GET by id, merges the response into the
// record, and marks the entity Complete. Complete entities never refresh
// automatically; use Refresh to re-fetch remote state explicitly.
type entity struct {
	c        *Client
	kind     ResourceKind
	id       string
	rec      record
	complete bool
}

func newEntity(c *Client, kind ResourceKind, rec record) entity {
	if rec == nil {
		rec = record{}
	}
	return entity{
		c:    c,
		kind: kind,
		id:   rec.stringValue("id"),
		rec:  rec,
	}
}

// ID returns the Spotify id for the entity.
func (e *entity) ID() string {
	return e.id
}

// Kind returns the entity's catalog kind.
func (e *entity) Kind() ResourceKind {
	return e.kind
}

// URI returns the Spotify URI for the entity ("spotify:track:...").
func (e *entity) URI() string {
	return "spotify:" + string(e.kind) + ":" + e.id
}

// Complete reports whether the entity has been through a full fetch. A
// Partial entity refreshes itself the first time an accessor needs a field
// that is not in its record.
func (e *entity) Complete() bool {
	return e.complete
}

// Refresh re-fetches the full object by id and merges the response into the
// record. New values overwrite old ones. On failure the record is left
// untouched.
func (e *entity) Refresh(ctx context.Context) error {
	if e.id == "" {
		return fmt.Errorf("%w: id on %s", ErrFieldMissing, e.kind)
	}
	body, _, err := e.c.request(ctx, http.MethodGet, entityPath(e.kind, e.id), nil, nil)
	if err != nil {
		return err
	}
	var rec record
	if err := json.Unmarshal(body, &rec); err != nil {
		return fmt.Errorf("spotify: decoding %s %s: %w", e.kind, e.id, err)
	}
	e.rec.merge(rec)
	e.complete = true
	return nil
}

// field returns the raw JSON for the named field, refreshing the entity once
// if the field is absent and the entity is still Partial. A field absent even
// after refresh is an ErrFieldMissing error.
func (e *entity) field(ctx context.Context, name string) (json.RawMessage, error) {
	if raw, ok := e.rec[name]; ok {
		return raw, nil
	}
	if !e.complete {
		if err := e.Refresh(ctx); err != nil {
			return nil, err
		}
		if raw, ok := e.rec[name]; ok {
			return raw, nil
		}
	}
	return nil, fmt.Errorf("%w: %s on %s %s", ErrFieldMissing, name, e.kind, e.id)
}

// unmarshalField decodes the named field into v, refreshing first if needed.
func (e *entity) unmarshalField(ctx context.Context, name string, v interface{}) error {
	raw, err := e.field(ctx, name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("spotify: decoding field %s on %s %s: %w", name, e.kind, e.id, err)
	}
	return nil
}

func (e *entity) stringField(ctx context.Context, name string) (string, error) {
	var s string
	err := e.unmarshalField(ctx, name, &s)
	return s, err
}

func (e *entity) intField(ctx context.Context, name string) (int, error) {
	var n int
	err := e.unmarshalField(ctx, name, &n)
	return n, err
}

func (e *entity) boolField(ctx context.Context, name string) (bool, error) {
	var b bool
	err := e.unmarshalField(ctx, name, &b)
	return b, err
}

func (e *entity) stringsField(ctx context.Context, name string) ([]string, error) {
	var ss []string
	err := e.unmarshalField(ctx, name, &ss)
	return ss, err
}

// recordsField decodes the named field as a list of raw objects, for fields
// holding nested entities (an album's artists, a playlist's images).
func (e *entity) recordsField(ctx context.Context, name string) ([]record, error) {
	var recs []record
	err := e.unmarshalField(ctx, name, &recs)
	return recs, err
}

func (e *entity) imagesField(ctx context.Context, name string) ([]Image, error) {
	var imgs []Image
	if err := e.unmarshalField(ctx, name, &imgs); err != nil {
		return nil, err
	}
	return imgs, nil
}

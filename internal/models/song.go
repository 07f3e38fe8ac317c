package models

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"github.com/desertthunder/songlist/internal/shared"
	"github.com/desertthunder/songlist/internal/validation"
	"github.com/goccy/go-json"
)

const emptySingersMessage = "singers list cannot be empty"

// Song is a catalogue record as stored and returned by the API.
type Song struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Singers []string `json:"singers"`
	Tags    []string `json:"tags"`
	Links   []string `json:"links"`
}

// Normalize de-duplicates the record's lists and replaces nil lists with empty ones.
func (s *Song) Normalize() {
	s.Singers = Dedupe(s.Singers)
	s.Tags = Dedupe(s.Tags)
	s.Links = Dedupe(s.Links)
}

// SongInput is the full payload used to create a song. Every field is required.
type SongInput struct {
	Name    string   `json:"name" validate:"required"`
	Singers []string `json:"singers" validate:"required,min=1,dive,required"`
	Tags    []string `json:"tags" validate:"required"`
	Links   []string `json:"links" validate:"required"`
}

// Validate checks the payload against its struct tags.
func (in *SongInput) Validate() error {
	if verr := validation.ValidateStruct(in); verr != nil {
		return verr
	}
	return nil
}

// Normalize de-duplicates the payload's lists.
func (in *SongInput) Normalize() {
	in.Singers = Dedupe(in.Singers)
	in.Tags = Dedupe(in.Tags)
	in.Links = Dedupe(in.Links)
}

// Song builds a normalized record with the given id.
func (in SongInput) Song(id string) Song {
	in.Normalize()
	return Song{ID: id, Name: in.Name, Singers: in.Singers, Tags: in.Tags, Links: in.Links}
}

// Optional holds a value that is either unset or set.
// A JSON null decodes as unset, an explicit empty list decodes as set.
type Optional[T any] struct {
	Value T
	Set   bool
}

// Some returns a set Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = Optional[T]{}
		return nil
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}

// SongPatch is the partial update payload. Only set fields overwrite the stored record.
type SongPatch struct {
	ID      string             `json:"id"`
	Name    Optional[string]   `json:"name"`
	Singers Optional[[]string] `json:"singers"`
	Tags    Optional[[]string] `json:"tags"`
	Links   Optional[[]string] `json:"links"`
}

// Validate checks the patch rules: an id is required, a set name must not be blank
// and set singers must not be empty.
func (p *SongPatch) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return validation.Fail("id", "required", "id is required")
	}
	if p.Name.Set && p.Name.Value == "" {
		return validation.Fail("name", "required", "name is required")
	}
	if p.Singers.Set {
		if len(Dedupe(p.Singers.Value)) == 0 {
			return validation.Fail("singers", "min", emptySingersMessage)
		}
		if slices.Contains(p.Singers.Value, "") {
			return validation.Fail("singers", "required", "singers cannot contain empty values")
		}
	}
	return nil
}

// Apply overwrites the set fields of s. The id is never changed.
func (p SongPatch) Apply(s *Song) {
	if p.Name.Set {
		s.Name = p.Name.Value
	}
	if p.Singers.Set {
		s.Singers = Dedupe(p.Singers.Value)
	}
	if p.Tags.Set {
		s.Tags = Dedupe(p.Tags.Value)
	}
	if p.Links.Set {
		s.Links = Dedupe(p.Links.Value)
	}
}

// MarshalJSON encodes only the set fields so the payload round-trips through the API.
func (p SongPatch) MarshalJSON() ([]byte, error) {
	out := map[string]any{"id": p.ID}
	if p.Name.Set {
		out["name"] = p.Name.Value
	}
	if p.Singers.Set {
		out["singers"] = Dedupe(p.Singers.Value)
	}
	if p.Tags.Set {
		out["tags"] = Dedupe(p.Tags.Value)
	}
	if p.Links.Set {
		out["links"] = Dedupe(p.Links.Value)
	}
	return json.Marshal(out)
}

// Dedupe returns the distinct values of items keeping the first occurrence of each.
// A nil input yields an empty, non-nil slice.
func Dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}

// Collection names one of the two song collections.
type Collection int

const (
	Songs Collection = iota
	Todo
)

// Collections lists every collection in lookup order.
var Collections = []Collection{Songs, Todo}

// Table returns the table backing the collection.
func (c Collection) Table() string {
	if c == Todo {
		return "todo_songs"
	}
	return "songs"
}

// String returns the collection's route name.
func (c Collection) String() string {
	if c == Todo {
		return "todo"
	}
	return "songs"
}

// NotFoundMessage is the message returned when an id is missing from the collection.
func (c Collection) NotFoundMessage() string {
	if c == Todo {
		return "Todo song not found"
	}
	return "Song not found"
}

// ParseCollection maps a route name ("songs" or "todo") to its collection.
func ParseCollection(name string) (Collection, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "songs", "song":
		return Songs, nil
	case "todo", "todos", "todo_songs":
		return Todo, nil
	default:
		return Songs, fmt.Errorf("%w: unknown collection %q", shared.ErrInvalidArgument, name)
	}
}

// Direction is a move between the two collections.
// The wire literal names the destination first: "todo-songs" moves songs into todo.
type Direction string

const (
	SongsToTodo Direction = "todo-songs"
	TodoToSongs Direction = "songs-todo"
)

// ParseDirection validates a wire literal.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(s); d {
	case SongsToTodo, TodoToSongs:
		return d, nil
	default:
		return "", shared.ErrInvalidDirection
	}
}

// Source returns the collection songs are moved out of.
func (d Direction) Source() Collection {
	if d == TodoToSongs {
		return Todo
	}
	return Songs
}

// Target returns the collection songs are moved into.
func (d Direction) Target() Collection {
	if d == TodoToSongs {
		return Songs
	}
	return Todo
}

// MoveRequest moves ids between collections.
type MoveRequest struct {
	Direction string   `json:"direction"`
	IDs       []string `json:"ids" validate:"required"`
}

// DeleteRequest removes ids from a collection.
type DeleteRequest struct {
	IDs []string `json:"ids" validate:"required"`
}

// BulkResult reports a bulk operation. NotFound lists the ids that were skipped in request order.
// Status is "ok" only when every id was processed.
type BulkResult struct {
	Status   string   `json:"status,omitempty"`
	NotFound []string `json:"not_found,omitempty"`
}

// NewBulkResult builds the response for a bulk operation from the skipped ids.
func NewBulkResult(notFound []string) BulkResult {
	if len(notFound) == 0 {
		return BulkResult{Status: "ok"}
	}
	return BulkResult{NotFound: notFound}
}

// OK reports whether every id was processed.
func (r BulkResult) OK() bool {
	return len(r.NotFound) == 0
}

// LoginRequest carries the operator credential.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse is returned by a successful login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

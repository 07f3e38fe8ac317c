package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/songlist/internal/models"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgSongsFetched MsgKind = iota
	MsgBulkDone
)

type songsFetched struct {
	collection models.Collection
	songs      []models.Song
	err        error
}

type bulkDone struct {
	action action
	song   models.Song
	result *models.BulkResult
	err    error
}

// songsFetchedMsg is the constructor for [MsgSongsFetched]
func songsFetchedMsg(c models.Collection, songs []models.Song, err error) Msg {
	return Msg{kind: MsgSongsFetched, data: songsFetched{collection: c, songs: songs, err: err}}
}

// bulkDoneMsg is the constructor for [MsgBulkDone]
func bulkDoneMsg(a action, song models.Song, result *models.BulkResult, err error) Msg {
	return Msg{kind: MsgBulkDone, data: bulkDone{action: a, song: song, result: result, err: err}}
}

package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/songlist/internal/models"
)

var (
	_ list.Item = songItem{}
)

// songItem wraps [models.Song] to implement [list.Item].
type songItem struct {
	song models.Song
}

func (i songItem) FilterValue() string {
	return i.song.Name + " " + strings.Join(i.song.Singers, " ") + " " + strings.Join(i.song.Tags, " ")
}

func (i songItem) Title() string { return i.song.Name }

func (i songItem) Description() string {
	desc := strings.Join(i.song.Singers, ", ")
	if len(i.song.Tags) > 0 {
		desc += " • " + strings.Join(i.song.Tags, ", ")
	}
	return desc
}

func songItems(songs []models.Song) []list.Item {
	items := make([]list.Item, len(songs))
	for i, song := range songs {
		items[i] = songItem{song: song}
	}
	return items
}

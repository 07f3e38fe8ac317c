package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/songlist/internal/formatter"
	"github.com/desertthunder/songlist/internal/models"
	"github.com/desertthunder/songlist/internal/services"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ListView ViewState = iota
	DetailView
	ConfirmView
)

// action is a pending change to the selected song.
type action int

const (
	actionMove action = iota
	actionDelete
)

// Model represents the TUI application state.
type Model struct {
	ctx        context.Context
	view       ViewState
	previous   ViewState
	client     services.Service
	collection models.Collection
	width      int
	height     int
	songList   list.Model
	selected   *models.Song
	pending    action
	loading    bool
	status     string
	err        error
	help       help.Model
	keys       keyMap
}

// NewModel creates a new TUI model browsing collection c through client.
func NewModel(ctx context.Context, client services.Service, c models.Collection) *Model {
	songList := list.New(nil, list.NewDefaultDelegate(), 80, 20)
	songList.SetShowHelp(false)

	return &Model{
		ctx:        ctx,
		view:       ListView,
		client:     client,
		collection: c,
		width:      84,
		height:     28,
		songList:   songList,
		help:       help.New(),
		keys:       newKeyMap(),
	}
}

// Init fetches the starting collection.
func (m *Model) Init() tea.Cmd {
	return m.fetchSongs()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.songList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case ListView:
			return m.handleListKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		}

	case Msg:
		switch msg.kind {
		case MsgSongsFetched:
			return m.onSongsFetched(msg.data.(songsFetched))
		case MsgBulkDone:
			return m.onBulkDone(msg.data.(bulkDone))
		}
	}

	var cmd tea.Cmd
	m.songList, cmd = m.songList.Update(msg)
	return m, cmd
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case DetailView:
		return m.renderDetail()
	case ConfirmView:
		return m.renderConfirm()
	default:
		return m.renderList()
	}
}

// Collection returns the collection being browsed.
func (m *Model) Collection() models.Collection {
	return m.collection
}

// Status returns the last status line.
func (m *Model) Status() string {
	return m.status
}

func (m *Model) onSongsFetched(msg songsFetched) (tea.Model, tea.Cmd) {
	m.loading = false
	if msg.collection != m.collection {
		return m, nil
	}
	if msg.err != nil {
		m.err = msg.err
		return m, nil
	}

	m.err = nil
	m.songList.Title = fmt.Sprintf("%s (%d)", collectionTitle(msg.collection), len(msg.songs))
	cmd := m.songList.SetItems(songItems(msg.songs))
	return m, cmd
}

func (m *Model) onBulkDone(msg bulkDone) (tea.Model, tea.Cmd) {
	m.loading = false
	m.view = ListView
	m.selected = nil

	switch {
	case msg.err != nil:
		m.err = msg.err
		return m, nil
	case !msg.result.OK():
		m.status = fmt.Sprintf("%q was not found in %s", msg.song.Name, m.collection.Table())
	case msg.action == actionMove:
		m.status = fmt.Sprintf("Moved %q to %s", msg.song.Name, other(m.collection).Table())
	default:
		m.status = fmt.Sprintf("Deleted %q", msg.song.Name)
	}

	m.err = nil
	return m, m.fetchSongs()
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.songList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.songList, cmd = m.songList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.tab):
		m.collection = other(m.collection)
		m.status = ""
		return m, m.fetchSongs()
	case key.Matches(msg, m.keys.refresh):
		return m, m.fetchSongs()
	case key.Matches(msg, m.keys.enter):
		if song := m.selectedSong(); song != nil {
			m.selected = song
			m.view = DetailView
		}
		return m, nil
	case key.Matches(msg, m.keys.move):
		return m.confirm(actionMove)
	case key.Matches(msg, m.keys.remove):
		return m.confirm(actionDelete)
	}

	var cmd tea.Cmd
	m.songList, cmd = m.songList.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = ListView
		m.selected = nil
	case key.Matches(msg, m.keys.move):
		return m.confirm(actionMove)
	case key.Matches(msg, m.keys.remove):
		return m.confirm(actionDelete)
	}
	return m, nil
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		m.loading = true
		return m, m.apply(m.pending, *m.selected)
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.quit):
		m.view = m.previous
		if m.view == ListView {
			m.selected = nil
		}
	}
	return m, nil
}

// confirm asks before applying a to the selected song.
func (m *Model) confirm(a action) (tea.Model, tea.Cmd) {
	if m.selected == nil {
		m.selected = m.selectedSong()
	}
	if m.selected == nil {
		return m, nil
	}

	m.previous = m.view
	m.pending = a
	m.view = ConfirmView
	return m, nil
}

func (m *Model) selectedSong() *models.Song {
	item, ok := m.songList.SelectedItem().(songItem)
	if !ok {
		return nil
	}
	song := item.song
	return &song
}

func (m *Model) fetchSongs() tea.Cmd {
	m.loading = true
	c := m.collection
	return func() tea.Msg {
		songs, err := m.client.List(m.ctx, c)
		return songsFetchedMsg(c, songs, err)
	}
}

func (m *Model) apply(a action, song models.Song) tea.Cmd {
	c := m.collection
	return func() tea.Msg {
		var (
			result *models.BulkResult
			err    error
		)
		if a == actionMove {
			direction := models.SongsToTodo
			if c == models.Todo {
				direction = models.TodoToSongs
			}
			result, err = m.client.Move(m.ctx, direction, []string{song.ID})
		} else {
			result, err = m.client.Delete(m.ctx, c, []string{song.ID})
		}
		return bulkDoneMsg(a, song, result, err)
	}
}

func (m *Model) renderList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.tab, m.keys.move, m.keys.remove, m.keys.refresh, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	var footer string
	switch {
	case m.err != nil:
		footer = formatter.Failure(fmt.Sprintf("Error: %v", m.err))
	case m.loading:
		footer = formatter.Hint("Loading...")
	case m.status != "":
		footer = formatter.Success(m.status)
	}

	return fmt.Sprintf("%s\n%s\n\n%s", m.songList.View(), footer, helpView)
}

func (m *Model) renderDetail() string {
	song := m.selected
	var b strings.Builder
	b.WriteString(formatter.Title(song.Name) + "\n\n")
	fmt.Fprintf(&b, "ID:      %s\n", song.ID)
	fmt.Fprintf(&b, "Singers: %s\n", strings.Join(song.Singers, ", "))
	fmt.Fprintf(&b, "Tags:    %s\n", strings.Join(song.Tags, ", "))
	b.WriteString("Links:\n")
	for _, link := range song.Links {
		fmt.Fprintf(&b, "  • %s\n", link)
	}

	helpKeys := []key.Binding{m.keys.move, m.keys.remove, m.keys.back, m.keys.quit}
	return fmt.Sprintf("%s\n%s", b.String(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderConfirm() string {
	var question string
	if m.pending == actionMove {
		question = fmt.Sprintf("Move '%s' to %s?", m.selected.Name, other(m.collection).Table())
	} else {
		question = fmt.Sprintf("Delete '%s' from %s?", m.selected.Name, m.collection.Table())
	}

	helpKeys := []key.Binding{m.keys.yes, m.keys.no}
	return fmt.Sprintf("%s\n\n%s", formatter.Warning(question), m.help.ShortHelpView(helpKeys))
}

func other(c models.Collection) models.Collection {
	if c == models.Todo {
		return models.Songs
	}
	return models.Todo
}

func collectionTitle(c models.Collection) string {
	if c == models.Todo {
		return "Todo"
	}
	return "Songs"
}

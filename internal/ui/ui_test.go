package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/songlist/internal/models"
	"github.com/desertthunder/songlist/internal/shared"
	tu "github.com/desertthunder/songlist/internal/testing"
)

type fakeService struct {
	collections map[models.Collection][]models.Song
	moved       []models.Direction
	deleted     []string
	listErr     error
}

func newFakeService() *fakeService {
	return &fakeService{collections: map[models.Collection][]models.Song{
		models.Songs: tu.SampleSongs(),
		models.Todo:  {},
	}}
}

func (f *fakeService) Login(context.Context, string, string) (*models.TokenResponse, error) {
	return nil, shared.ErrNotImplemented
}

func (f *fakeService) Health(context.Context) error { return nil }

func (f *fakeService) List(_ context.Context, c models.Collection) ([]models.Song, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]models.Song{}, f.collections[c]...), nil
}

func (f *fakeService) Create(context.Context, models.Collection, models.SongInput) (*models.Song, error) {
	return nil, shared.ErrNotImplemented
}

func (f *fakeService) Update(context.Context, models.Collection, models.SongPatch) (*models.Song, error) {
	return nil, shared.ErrNotImplemented
}

func (f *fakeService) take(c models.Collection, id string) (models.Song, bool) {
	for i, song := range f.collections[c] {
		if song.ID == id {
			f.collections[c] = append(f.collections[c][:i], f.collections[c][i+1:]...)
			return song, true
		}
	}
	return models.Song{}, false
}

func (f *fakeService) Move(_ context.Context, d models.Direction, ids []string) (*models.BulkResult, error) {
	f.moved = append(f.moved, d)
	notFound := []string{}
	for _, id := range ids {
		song, ok := f.take(d.Source(), id)
		if !ok {
			notFound = append(notFound, id)
			continue
		}
		f.collections[d.Target()] = append(f.collections[d.Target()], song)
	}
	result := models.NewBulkResult(notFound)
	return &result, nil
}

func (f *fakeService) Delete(_ context.Context, c models.Collection, ids []string) (*models.BulkResult, error) {
	notFound := []string{}
	for _, id := range ids {
		f.deleted = append(f.deleted, id)
		if _, ok := f.take(c, id); !ok {
			notFound = append(notFound, id)
		}
	}
	result := models.NewBulkResult(notFound)
	return &result, nil
}

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// step sends msg and feeds every resulting command message back into the model.
func step(t *testing.T, m *Model, msg tea.Msg) {
	t.Helper()

	_, cmd := m.Update(msg)
	for cmd != nil {
		next := cmd()
		if _, ok := next.(Msg); !ok {
			return
		}
		_, cmd = m.Update(next)
	}
}

func loadedModel(t *testing.T, svc *fakeService) *Model {
	t.Helper()

	m := NewModel(context.Background(), svc, models.Songs)
	step(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	step(t, m, m.Init()())
	return m
}

func TestModel(t *testing.T) {
	t.Run("Init loads the collection", func(t *testing.T) {
		m := loadedModel(t, newFakeService())

		if got := len(m.songList.Items()); got != 3 {
			t.Fatalf("expected 3 items, got %d", got)
		}
		if !strings.Contains(m.View(), "Songs (3)") {
			t.Errorf("expected title in view, got:\n%s", m.View())
		}
	})

	t.Run("tab switches collection", func(t *testing.T) {
		m := loadedModel(t, newFakeService())

		step(t, m, tea.KeyMsg{Type: tea.KeyTab})

		if m.Collection() != models.Todo {
			t.Errorf("expected todo collection, got %v", m.Collection())
		}
		if len(m.songList.Items()) != 0 {
			t.Errorf("expected empty todo list, got %d items", len(m.songList.Items()))
		}
	})

	t.Run("enter shows details and esc returns", func(t *testing.T) {
		m := loadedModel(t, newFakeService())

		step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
		if m.view != DetailView {
			t.Fatalf("expected detail view, got %v", m.view)
		}
		if !strings.Contains(m.View(), "Bohemian Rhapsody") || !strings.Contains(m.View(), "https://example.com/bohemian") {
			t.Errorf("unexpected detail view:\n%s", m.View())
		}

		step(t, m, tea.KeyMsg{Type: tea.KeyEsc})
		if m.view != ListView || m.selected != nil {
			t.Error("expected to return to list view")
		}
	})

	t.Run("move after confirm", func(t *testing.T) {
		svc := newFakeService()
		m := loadedModel(t, svc)

		step(t, m, runeKey("m"))
		if m.view != ConfirmView {
			t.Fatalf("expected confirm view, got %v", m.view)
		}
		if !strings.Contains(m.View(), "Move 'Bohemian Rhapsody' to todo_songs?") {
			t.Errorf("unexpected confirm view:\n%s", m.View())
		}

		step(t, m, runeKey("y"))

		if len(svc.moved) != 1 || svc.moved[0] != models.SongsToTodo {
			t.Errorf("expected one songs to todo move, got %v", svc.moved)
		}
		if m.view != ListView {
			t.Errorf("expected list view after move, got %v", m.view)
		}
		if !strings.Contains(m.Status(), "Moved") {
			t.Errorf("unexpected status %q", m.Status())
		}
		if len(m.songList.Items()) != 2 || len(svc.collections[models.Todo]) != 1 {
			t.Error("expected the list to refresh after the move")
		}
	})

	t.Run("decline keeps the song", func(t *testing.T) {
		svc := newFakeService()
		m := loadedModel(t, svc)

		step(t, m, runeKey("d"))
		step(t, m, runeKey("n"))

		if m.view != ListView {
			t.Errorf("expected list view, got %v", m.view)
		}
		if len(svc.deleted) != 0 {
			t.Errorf("expected no delete, got %v", svc.deleted)
		}
	})

	t.Run("delete from detail view", func(t *testing.T) {
		svc := newFakeService()
		m := loadedModel(t, svc)

		step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
		step(t, m, runeKey("d"))
		if !strings.Contains(m.View(), "Delete 'Bohemian Rhapsody' from songs?") {
			t.Errorf("unexpected confirm view:\n%s", m.View())
		}
		step(t, m, runeKey("y"))

		if len(svc.deleted) != 1 {
			t.Fatalf("expected one delete, got %v", svc.deleted)
		}
		if !strings.Contains(m.Status(), "Deleted") {
			t.Errorf("unexpected status %q", m.Status())
		}
	})

	t.Run("fetch error is shown", func(t *testing.T) {
		svc := newFakeService()
		svc.listErr = errors.New("connection refused")
		m := loadedModel(t, svc)

		if !strings.Contains(m.View(), "connection refused") {
			t.Errorf("expected error in view:\n%s", m.View())
		}
	})

	t.Run("actions on empty list do nothing", func(t *testing.T) {
		svc := newFakeService()
		svc.collections[models.Songs] = nil
		m := loadedModel(t, svc)

		step(t, m, runeKey("m"))
		if m.view != ListView {
			t.Errorf("expected to stay in list view, got %v", m.view)
		}
	})
}

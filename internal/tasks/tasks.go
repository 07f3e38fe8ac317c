// package tasks implements seeding, truncation and bulk import for the song catalogue.
package tasks

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand/v2"

	"github.com/desertthunder/songlist/internal/models"
	"github.com/desertthunder/songlist/internal/repositories"
	"github.com/desertthunder/songlist/internal/shared"
)

var sampleSongNames = []string{
	"Bohemian Rhapsody", "Hotel California", "Imagine", "Sweet Child O' Mine",
	"Smells Like Teen Spirit", "Stairway to Heaven", "Wonderwall", "Billie Jean",
	"Like a Rolling Stone", "Hey Jude", "Hallelujah", "Yesterday",
	"Every Breath You Take", "Thriller", "Blowin' in the Wind", "Creep",
	"Purple Haze", "Let It Be", "What's Going On", "Respect",
	"Shake It Off", "Bad Guy", "Someone Like You", "Uptown Funk",
	"Lose Yourself", "Hello", "Shape of You", "Despacito",
	"All I Want for Christmas Is You", "Don't Stop Believin'", "Dancing Queen", "Livin' on a Prayer",
	"Sweet Home Alabama", "Boogie Wonderland", "Africa", "Take On Me",
	"Eye of the Tiger", "Smooth Criminal", "Viva la Vida", "Poker Face",
	"Counting Stars", "Royals", "Highway to Hell", "Paradise City",
	"Nothing Else Matters", "Enter Sandman",
}

var sampleSingers = []string{
	"Queen", "Eagles", "John Lennon", "Guns N' Roses", "Nirvana", "Led Zeppelin",
	"Oasis", "Michael Jackson", "Bob Dylan", "The Beatles", "Leonard Cohen", "Jeff Buckley",
	"The Police", "Radiohead", "Jimi Hendrix", "Marvin Gaye", "Adele", "Bruno Mars",
	"Lady Gaga", "Ed Sheeran", "Taylor Swift", "Ariana Grande", "Justin Bieber", "Billie Eilish",
	"Beyoncé", "Elton John", "Freddie Mercury", "Whitney Houston", "Frank Sinatra", "Elvis Presley",
	"Johnny Cash", "Aretha Franklin", "David Bowie", "Prince", "Madonna", "Bob Marley",
	"U2", "Coldplay", "Pink Floyd", "The Rolling Stones", "AC/DC", "Metallica",
	"Linkin Park", "Green Day", "Red Hot Chili Peppers", "Foo Fighters",
}

var sampleTags = []string{
	"rock", "pop", "indie", "alternative", "classic rock", "blues", "jazz", "r&b",
	"soul", "folk", "country", "electronic", "dance", "metal", "punk", "hip-hop",
	"rap", "reggae", "acoustic", "instrumental", "ballad", "love song", "breakup song", "upbeat",
	"sad", "energetic", "easy", "intermediate", "advanced", "favorite", "party", "karaoke",
	"wedding", "emotional", "feel-good", "nostalgic", "anthem", "chill", "workout", "driving",
	"90s", "80s", "70s", "60s", "00s", "10s", "fast", "slow",
	"epic", "catchy", "summer", "winter",
}

var sampleLinks = []string{
	"https://www.youtube.com/watch?v=fJ9rUzIMcZQ",
	"https://www.youtube.com/watch?v=BciS5krYL80",
	"https://www.youtube.com/watch?v=YkgkThdzX-8",
	"https://www.youtube.com/watch?v=1w7OgIMMRc4",
	"https://www.youtube.com/watch?v=hTWKbfoikeg",
	"https://www.youtube.com/watch?v=QkF3oxziUI4",
	"https://www.youtube.com/watch?v=bx1Bh8ZvH84",
	"https://www.youtube.com/watch?v=Zi_XLOBDo_Y",
	"https://www.youtube.com/watch?v=IwOfCgkyEj0",
	"https://www.youtube.com/watch?v=A_MjCqQoLLA",
	"https://open.spotify.com/track/3WgZqYzKxnxipJK3p9Pw2D",
	"https://open.spotify.com/track/40riOy7x9W7GXjyGp4pjAv",
	"https://open.spotify.com/track/7pKfPomDEeI4TPT6EOYjn9",
	"https://open.spotify.com/track/7o2CTH4ctstm8TNelqjb51",
	"https://music.apple.com/us/album/bohemian-rhapsody/1440806723?i=1440806930",
	"https://music.apple.com/us/album/hotel-california/635770200?i=635770201",
	"https://music.apple.com/us/album/imagine/1440824484?i=1440824490",
	"https://music.apple.com/us/album/sweet-child-o-mine/1377813284?i=1377813291",
	"https://www.deezer.com/track/3133704",
	"https://www.deezer.com/track/1109731",
	"https://soundcloud.com/queen-official/bohemian-rhapsody",
	"https://soundcloud.com/eaglesmusic/hotel-california",
	"https://www.guitarbackingtrack.com/play/eagles/hotel_california.htm",
	"https://www.ultimate-guitar.com/search.php?title=bohemian+rhapsody",
	"https://tabs.ultimate-guitar.com/tab/eagles/hotel-california-chords-46190",
}

// GenerateSong builds a random create payload from the sample pools.
func GenerateSong(rng *rand.Rand) models.SongInput {
	return models.SongInput{
		Name:    sampleSongNames[rng.IntN(len(sampleSongNames))],
		Singers: sample(rng, sampleSingers, 1+rng.IntN(3)),
		Tags:    sample(rng, sampleTags, 1+rng.IntN(6)),
		Links:   sample(rng, sampleLinks, 1+rng.IntN(4)),
	}
}

// sample picks n distinct values from pool.
func sample(rng *rand.Rand, pool []string, n int) []string {
	out := make([]string, 0, n)
	for _, i := range rng.Perm(len(pool))[:n] {
		out = append(out, pool[i])
	}
	return out
}

// SeedOpts configures [Seeder.Seed].
type SeedOpts struct {
	Songs int  // Records to insert into songs
	Todo  int  // Records to insert into todo
	Clear bool // Delete existing records first
}

// SeedResult reports what a seed run changed.
type SeedResult struct {
	Cleared  map[models.Collection]int64
	Inserted map[models.Collection]int
}

// Seeder writes generated data directly to the database.
type Seeder struct {
	store *repositories.Store
	rng   *rand.Rand
}

// NewSeeder creates a Seeder. A nil rng uses a randomly seeded generator.
func NewSeeder(store *repositories.Store, rng *rand.Rand) *Seeder {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Seeder{store: store, rng: rng}
}

// Counts returns the number of records in each collection.
func (s *Seeder) Counts(ctx context.Context) (map[models.Collection]int, error) {
	counts := make(map[models.Collection]int, len(models.Collections))
	for _, c := range models.Collections {
		n, err := s.store.Songs(s.store.DB(), c).Count(ctx)
		if err != nil {
			return nil, err
		}
		counts[c] = n
	}
	return counts, nil
}

// Seed inserts generated songs into both collections in a single transaction.
func (s *Seeder) Seed(ctx context.Context, progress chan<- ProgressUpdate, opts SeedOpts) (*SeedResult, error) {
	if opts.Songs < 0 || opts.Todo < 0 {
		return nil, fmt.Errorf("%w: seed counts must not be negative", shared.ErrInvalidArgument)
	}

	tx, err := s.store.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result := &SeedResult{
		Cleared:  map[models.Collection]int64{},
		Inserted: map[models.Collection]int{},
	}

	plan := []struct {
		collection models.Collection
		count      int
	}{
		{models.Songs, opts.Songs},
		{models.Todo, opts.Todo},
	}

	for _, p := range plan {
		repo := s.store.Songs(tx, p.collection)

		if opts.Clear {
			n, err := repo.Clear(ctx)
			if err != nil {
				return nil, err
			}
			result.Cleared[p.collection] = n
			sendProgress(progress, clearedUpdate(p.collection, n))
		}

		sendProgress(progress, seedingUpdate(p.collection, p.count))
		for i := range p.count {
			song := GenerateSong(s.rng).Song(shared.GenerateID())
			if err := repo.Insert(ctx, song); err != nil {
				return nil, err
			}
			result.Inserted[p.collection]++
			sendProgress(progress, seededUpdate(i+1, p.count, song))
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit seed: %w", err)
	}

	return result, nil
}

// Truncate deletes every record from the given collections and returns the counts removed.
func (s *Seeder) Truncate(ctx context.Context, collections ...models.Collection) (map[models.Collection]int64, error) {
	removed := make(map[models.Collection]int64, len(collections))

	err := s.store.WithConn(ctx, func(conn *sql.Conn) error {
		for _, c := range collections {
			n, err := s.store.Songs(conn, c).Clear(ctx)
			if err != nil {
				return err
			}
			removed[c] = n
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return removed, nil
}

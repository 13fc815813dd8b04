package daemon

import (
	"sort"
	"strconv"
	"strings"
)

// Song is one library track.
type Song struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Year  *int   `json:"year"`
}

// Album is one of an artist's albums. Art is filled only by callers that
// attach artwork; the library layer leaves it nil.
type Album struct {
	Name string `json:"name"`
	Year *int   `json:"year"`
	Art  []byte `json:"-"`
}

// Artists lists every artist tag value. A non-empty filter keeps the names
// containing it, case-insensitively. Daemon order is kept.
func (s *Session) Artists(filter string) ([]string, error) {
	names, err := s.conn.List("artist")
	if err != nil {
		return nil, protocolErr("list artist", err)
	}
	if filter == "" {
		if names == nil {
			names = []string{}
		}
		return names, nil
	}

	needle := strings.ToLower(filter)
	out := []string{}
	for _, n := range names {
		if strings.Contains(strings.ToLower(n), needle) {
			out = append(out, n)
		}
	}
	return out, nil
}

// Albums lists the artist's albums ordered by year, albums without a year
// first.
func (s *Session) Albums(artist string) ([]Album, error) {
	names, err := s.conn.List("album", "artist", artist)
	if err != nil {
		return nil, protocolErr("list album", err)
	}

	albums := make([]Album, 0, len(names))
	for _, name := range names {
		songs, err := s.Songs(artist, name)
		if err != nil {
			return nil, err
		}
		a := Album{Name: name}
		if len(songs) > 0 {
			a.Year = songs[0].Year
		}
		albums = append(albums, a)
	}

	sort.SliceStable(albums, func(i, j int) bool {
		return yearLess(albums[i].Year, albums[j].Year)
	})
	return albums, nil
} // func (s *Session) Albums

// yearLess orders absent years before every present year.
func yearLess(a, b *int) bool {
	switch {
	case a == nil:
		return b != nil
	case b == nil:
		return false
	default:
		return *a < *b
	}
}

// Songs returns the tracks tagged with both artist and album, ordered by
// disc then track number.
func (s *Session) Songs(artist, album string) ([]Song, error) {
	attrs, err := s.conn.Find("artist", artist, "album", album)
	if err != nil {
		return nil, protocolErr("find", err)
	}

	sort.SliceStable(attrs, func(i, j int) bool {
		di, dj := leadingInt(attrs[i]["Disc"]), leadingInt(attrs[j]["Disc"])
		if di != dj {
			return di < dj
		}
		return leadingInt(attrs[i]["Track"]) < leadingInt(attrs[j]["Track"])
	})

	songs := make([]Song, 0, len(attrs))
	for _, a := range attrs {
		songs = append(songs, Song{
			URL:   a["file"],
			Title: a["Title"],
			Year:  parseYear(a["Date"]),
		})
	}
	return songs, nil
} // func (s *Session) Songs

// leadingInt parses the leading digits of tags like "3/12"; 0 if none.
func leadingInt(v string) int {
	v = strings.TrimSpace(v)
	end := 0
	for end < len(v) && v[end] >= '0' && v[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(v[:end])
	if err != nil {
		return 0
	}
	return n
}

// parseYear reads the leading four digits of a Date tag ("1999",
// "1999-04-01").
func parseYear(date string) *int {
	date = strings.TrimSpace(date)
	if len(date) < 4 {
		return nil
	}
	y, err := strconv.Atoi(date[:4])
	if err != nil {
		return nil
	}
	return &y
}

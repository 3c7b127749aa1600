// Package artifact reads and writes the merged daily series, either as a
// flat list of records or in a compact columnar form.
package artifact

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/viktsys/playerstats/models"
)

type Format string

const (
	FormatRows     Format = "rows"
	FormatColumnar Format = "columnar"
)

// ErrUnknownFormat is returned for payloads that are neither form.
var ErrUnknownFormat = errors.New("unknown artifact format")

type columnar struct {
	Sources []string            `json:"sources"`
	Dates   []string            `json:"d"`
	Columns map[string][]*int64 `json:"cols"`
}

// Write encodes points to w in the given format.
func Write(w io.Writer, points []models.DailyPoint, format Format) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatRows, "":
		if points == nil {
			points = []models.DailyPoint{}
		}
		data, err = json.MarshalIndent(points, "", "  ")
	case FormatColumnar:
		data, err = json.Marshal(encodeColumnar(points))
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return fmt.Errorf("failed to encode artifact: %w", err)
	}

	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// WriteFile writes points to path, creating parent directories.
func WriteFile(path string, points []models.DailyPoint, format Format) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	var buf bytes.Buffer
	if err := Write(&buf, points, format); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// Read decodes an artifact in either form, detected from its first token.
func Read(r io.Reader) ([]models.DailyPoint, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(br)
	switch first {
	case '[':
		var points []models.DailyPoint
		if err := dec.Decode(&points); err != nil {
			return nil, fmt.Errorf("failed to decode rows: %w", err)
		}
		return points, nil
	case '{':
		var c columnar
		if err := dec.Decode(&c); err != nil {
			return nil, fmt.Errorf("failed to decode columnar data: %w", err)
		}
		return decodeColumnar(c)
	default:
		return nil, ErrUnknownFormat
	}
}

// ReadFile reads the artifact at path.
func ReadFile(path string) ([]models.DailyPoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err == io.EOF {
			return 0, ErrUnknownFormat
		}
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return b, br.UnreadByte()
	}
}

func encodeColumnar(points []models.DailyPoint) columnar {
	seen := make(map[string]struct{})
	for _, p := range points {
		for id := range p.Sources {
			seen[id] = struct{}{}
		}
	}
	sources := make([]string, 0, len(seen))
	for id := range seen {
		sources = append(sources, id)
	}
	sort.Strings(sources)

	c := columnar{
		Sources: sources,
		Dates:   make([]string, len(points)),
		Columns: make(map[string][]*int64, 2*len(sources)),
	}
	for _, id := range sources {
		c.Columns[id+"_max"] = make([]*int64, len(points))
		c.Columns[id+"_min"] = make([]*int64, len(points))
	}
	for i, p := range points {
		c.Dates[i] = strings.ReplaceAll(p.Date, "-", "")
		for _, id := range sources {
			c.Columns[id+"_max"][i] = p.Max(id)
			c.Columns[id+"_min"][i] = p.Min(id)
		}
	}
	return c
}

func decodeColumnar(c columnar) ([]models.DailyPoint, error) {
	for name, col := range c.Columns {
		if len(col) != len(c.Dates) {
			return nil, fmt.Errorf("column %s has %d values for %d dates", name, len(col), len(c.Dates))
		}
	}

	points := make([]models.DailyPoint, len(c.Dates))
	for i, d := range c.Dates {
		p := models.DailyPoint{
			Date:    expandDate(d),
			Sources: make(map[string]*models.MinMax, len(c.Sources)),
		}
		for _, id := range c.Sources {
			maxV, minV := value(c.Columns[id+"_max"], i), value(c.Columns[id+"_min"], i)
			if maxV == nil || minV == nil {
				p.Sources[id] = nil
				continue
			}
			p.Sources[id] = &models.MinMax{Min: *minV, Max: *maxV}
		}
		points[i] = p
	}
	return points, nil
}

func value(col []*int64, i int) *int64 {
	if col == nil {
		return nil
	}
	return col[i]
}

func expandDate(d string) string {
	if len(d) != 8 {
		return d
	}
	return d[0:4] + "-" + d[4:6] + "-" + d[6:8]
}

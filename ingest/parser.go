package ingest

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/viktsys/playerstats/models"
)

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ParseLine extracts a sample from a "label,date,count" line. The label and
// any fields after the count are ignored. ok is false when the line is
// malformed.
func ParseLine(line string) (sample models.Sample, ok bool) {
	fields := strings.SplitN(line, ",", 3)
	if len(fields) < 3 {
		return sample, false
	}

	count, _, _ := strings.Cut(fields[2], ",")
	rawDate := strings.TrimSpace(fields[1])
	rawValue := strings.TrimSpace(count)
	if rawDate == "" || rawValue == "" {
		return sample, false
	}

	if !datePattern.MatchString(rawDate) {
		return sample, false
	}

	value, err := strconv.ParseInt(rawValue, 10, 64)
	if err != nil {
		return sample, false
	}

	return models.Sample{Date: rawDate, Value: value}, true
}

// ParseRows reads every line of r and returns the valid samples in input
// order along with the number of non-blank lines that were dropped. Lines
// have no length limit; only read errors are returned.
func ParseRows(r io.Reader) ([]models.Sample, int, error) {
	reader := bufio.NewReader(r)

	var samples []models.Sample
	dropped := 0
	for {
		raw, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return samples, dropped, fmt.Errorf("failed to read rows: %w", err)
		}

		if line := strings.TrimSpace(raw); line != "" {
			if sample, ok := ParseLine(line); ok {
				samples = append(samples, sample)
			} else {
				dropped++
			}
		}

		if err == io.EOF {
			return samples, dropped, nil
		}
	}
}

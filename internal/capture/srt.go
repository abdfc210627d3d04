package capture

import (
	"bufio"
	"context"
	"fmt"
	"html"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
)

// Cue is one timed SRT subtitle entry.
type Cue struct {
	Start float64
	End   float64
	Text  string
}

// ParseSRT reads SubRip cues. Formatting tags are stripped and multi-line cue
// text is joined with spaces. Malformed blocks are skipped.
func ParseSRT(r io.Reader) ([]Cue, error) {
	strip := bluemonday.StrictPolicy()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		cues    []Cue
		current *Cue
		text    []string
	)
	flush := func() {
		if current != nil {
			current.Text = normalizeCaption(html.UnescapeString(strip.Sanitize(strings.Join(text, " "))))
			if current.Text != "" {
				cues = append(cues, *current)
			}
		}
		current = nil
		text = text[:0]
	}

	for scanner.Scan() {
		line := strings.TrimSpace(strings.TrimPrefix(scanner.Text(), "\ufeff"))
		if line == "" {
			flush()
			continue
		}
		if current == nil {
			if !strings.Contains(line, "-->") {
				// Cue index line.
				continue
			}
			start, end, err := parseTimingLine(line)
			if err != nil {
				continue
			}
			current = &Cue{Start: start, End: end}
			continue
		}
		text = append(text, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read srt: %w", err)
	}
	flush()

	sort.SliceStable(cues, func(i, j int) bool { return cues[i].Start < cues[j].Start })
	return cues, nil
}

func parseTimingLine(line string) (float64, float64, error) {
	parts := strings.Split(line, "-->")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid timing %q", line)
	}
	start, err := parseSRTTimestamp(parts[0])
	if err != nil {
		return 0, 0, err
	}
	// Drop position hints such as "X1:40 X2:600".
	endField := strings.Fields(parts[1])
	if len(endField) == 0 {
		return 0, 0, fmt.Errorf("invalid timing %q", line)
	}
	end, err := parseSRTTimestamp(endField[0])
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

func parseSRTTimestamp(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	value = strings.ReplaceAll(value, ".", ",")
	timeParts := strings.Split(value, ",")
	if len(timeParts) != 2 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(timeParts[0], ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.Atoi(hms[2])
	millis, errMS := strconv.Atoi(timeParts[1])
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	return float64(hours*3600+minutes*60+seconds) + float64(millis)/1000, nil
}

// SRTReader serves captions from a parsed SRT file.
type SRTReader struct {
	path     string
	cues     []Cue
	window   time.Duration
	segments int
}

// OpenSRT parses path. Window bounds how far back from the playback position a
// cue may start and still count as on screen.
func OpenSRT(path string, window time.Duration, segments int) (*SRTReader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open srt: %w", err)
	}
	defer file.Close()

	cues, err := ParseSRT(file)
	if err != nil {
		return nil, err
	}
	if segments <= 0 {
		segments = DefaultSegments
	}
	if window <= 0 {
		window = 10 * time.Second
	}
	return &SRTReader{path: path, cues: cues, window: window, segments: segments}, nil
}

// Path returns the SRT file backing the reader.
func (r *SRTReader) Path() string {
	return r.path
}

// Cues returns the number of parsed cues.
func (r *SRTReader) Cues() int {
	return len(r.cues)
}

// ReadCaptions joins the most recent cues that started within the window
// before position, oldest first.
func (r *SRTReader) ReadCaptions(_ context.Context, position float64) (string, error) {
	from := position - r.window.Seconds()
	// First cue starting after position.
	upper := sort.Search(len(r.cues), func(i int) bool { return r.cues[i].Start > position })

	var picked []string
	for i := upper - 1; i >= 0 && len(picked) < r.segments; i-- {
		if r.cues[i].Start < from {
			break
		}
		picked = append(picked, r.cues[i].Text)
	}
	for i, j := 0, len(picked)-1; i < j; i, j = i+1, j-1 {
		picked[i], picked[j] = picked[j], picked[i]
	}
	return strings.Join(picked, " "), nil
}

package media

import (
	"fmt"
	"os"
	"strings"
)

// titleCueEnd is where the title cue hands over to the description.
const titleCueEnd = 2.0

// FormatSRTTime renders seconds as HH:MM:SS,mmm.
func FormatSRTTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	totalMs := int64(seconds*1000 + 0.5)
	h := totalMs / 3_600_000
	m := (totalMs % 3_600_000) / 60_000
	s := (totalMs % 60_000) / 1000
	ms := totalMs % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

// BuildSRT returns a two-cue track: the title for the first two seconds and
// the description from there until duration.
func BuildSRT(title, description string, duration int) string {
	end := float64(duration)
	if end < titleCueEnd {
		end = titleCueEnd
	}
	var b strings.Builder
	fmt.Fprintf(&b, "1\n%s --> %s\n%s\n\n", FormatSRTTime(0), FormatSRTTime(titleCueEnd), oneLine(title))
	fmt.Fprintf(&b, "2\n%s --> %s\n%s\n", FormatSRTTime(titleCueEnd), FormatSRTTime(end), oneLine(description))
	return b.String()
}

// oneLine keeps cue text from breaking the SRT block structure.
func oneLine(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, l := range lines {
		if t := strings.TrimSpace(l); t != "" {
			kept = append(kept, t)
		}
	}
	return strings.Join(kept, "\n")
}

// WriteCaptionTrack writes the SRT for title and description into dir.
func WriteCaptionTrack(dir, title, description string, duration int) (string, error) {
	f, err := os.CreateTemp(dir, "subtitles-*.srt")
	if err != nil {
		return "", fmt.Errorf("create caption file: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(BuildSRT(title, description, duration)); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("write caption file: %w", err)
	}
	return f.Name(), nil
}

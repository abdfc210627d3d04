package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path, content string) string {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// SampleSRT holds four cues spaced five seconds apart.
const SampleSRT = `1
00:00:01,000 --> 00:00:04,000
The moon is made of cheese.

2
00:00:06,000 --> 00:00:09,000
<i>Water boils</i> at 100 degrees
at sea level.

3
00:00:11,000 --> 00:00:14,000
The Great Wall is visible from space.

4
00:00:16,000 --> 00:00:19,000
Goodnight.
`

package localreview

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// captured is one point-in-time capture of a local working tree's diff.
type captured struct {
	Text   string
	Stats  map[string]any
	Digest string
}

// captureDiff builds the unified diff text for repoPath: tracked changes
// against HEAD, plus a synthesized per-file diff for every untracked file
// (git diff does not cover untracked files on its own).
func captureDiff(ctx context.Context, repoPath string) (captured, error) {
	tracked, err := trackedDiff(ctx, repoPath)
	if err != nil {
		return captured{}, err
	}

	untracked, err := untrackedFiles(ctx, repoPath)
	if err != nil {
		return captured{}, err
	}

	var b strings.Builder
	b.WriteString(tracked)
	filesChanged := countDiffFiles(tracked)

	for _, relPath := range untracked {
		content, err := os.ReadFile(filepath.Join(repoPath, relPath))
		if err != nil {
			// A file listed by status may have been removed between the
			// status call and the read (e.g. a build artifact); skip it
			// rather than failing the whole capture.
			continue
		}
		b.WriteString(synthesizeUntrackedDiff(relPath, content))
		filesChanged++
	}

	text := b.String()
	stats := map[string]any{
		"files_changed":   filesChanged,
		"untracked_files": len(untracked),
	}
	digest := computeDigest(text, stats)

	return captured{Text: text, Stats: stats, Digest: digest}, nil
}

func countDiffFiles(diffText string) int {
	count := 0
	for _, line := range strings.Split(diffText, "\n") {
		if strings.HasPrefix(line, "diff --git ") {
			count++
		}
	}
	return count
}

func synthesizeUntrackedDiff(relPath string, content []byte) string {
	var b strings.Builder
	fmt.Fprintf(&b, "diff --git a/%s b/%s\n", relPath, relPath)
	b.WriteString("new file mode 100644\n")
	b.WriteString("--- /dev/null\n")
	fmt.Fprintf(&b, "+++ b/%s\n", relPath)

	if bytes.IndexByte(content, 0) != -1 {
		b.WriteString("Binary files differ\n")
		return b.String()
	}

	lines := strings.Split(string(content), "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	fmt.Fprintf(&b, "@@ -0,0 +1,%d @@\n", len(lines))
	for _, l := range lines {
		b.WriteString("+" + l + "\n")
	}
	return b.String()
}

// computeDigest hashes the diff text alongside a canonical (sorted-key)
// JSON encoding of stats, per §4.5's implementation supplement.
func computeDigest(diffText string, stats map[string]any) string {
	canonical, _ := json.Marshal(stats) // map keys are sorted by encoding/json
	h := sha256.New()
	h.Write([]byte(diffText))
	h.Write(canonical)
	return hex.EncodeToString(h.Sum(nil))
}

package media

import (
	"context"
	"os/exec"
	"strconv"
	"strings"
)

// ProbeDuration asks ffprobe for the duration of the file at path, in
// seconds. It returns 0 when ffprobe is unavailable or the file cannot be
// decoded; callers treat 0 as "unplayable source".
func ProbeDuration(ctx context.Context, ffprobe, path string) float64 {
	if ffprobe == "" {
		ffprobe = "ffprobe"
	}
	cmd := exec.CommandContext(ctx, ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path)
	out, err := cmd.Output()
	if err != nil {
		return 0
	}
	d, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

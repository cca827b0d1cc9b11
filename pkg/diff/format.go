package diff

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Format renders d as text. When colorize is set, added lines are green,
// removed lines red and hunk headers cyan.
//
// Binary files produce a single summary line:
//
//	Binary files a/path and b/path differ
func Format(d *FileDiff, colorize bool) string {
	if d == nil {
		return ""
	}
	if d.Binary {
		return fmt.Sprintf("Binary files a/%s and b/%s differ\n", d.Path, d.Path)
	}
	if !colorize {
		return d.Text
	}

	bold := forcedColor(color.Bold)
	cyan := forcedColor(color.FgCyan)
	green := forcedColor(color.FgGreen)
	red := forcedColor(color.FgRed)

	var b strings.Builder
	for _, line := range strings.SplitAfter(d.Text, "\n") {
		if line == "" {
			continue
		}
		body := strings.TrimSuffix(line, "\n")
		switch {
		case strings.HasPrefix(body, "+++"), strings.HasPrefix(body, "---"):
			b.WriteString(bold.Sprint(body))
		case strings.HasPrefix(body, "@@"):
			b.WriteString(cyan.Sprint(body))
		case strings.HasPrefix(body, "+"):
			b.WriteString(green.Sprint(body))
		case strings.HasPrefix(body, "-"):
			b.WriteString(red.Sprint(body))
		default:
			b.WriteString(body)
		}
		if strings.HasSuffix(line, "\n") {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// forcedColor returns a color that ignores the package-wide terminal
// detection; callers decide whether to colorize.
func forcedColor(attr color.Attribute) *color.Color {
	c := color.New(attr)
	c.EnableColor()
	return c
}

package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Banner is the ASCII art header shown when the daemon starts on a terminal
var Banner = []string{
	" ____    ____  ____      _     ____   _____  ____   ____  ",
	"/ ___|  / ___||  _ \\    / \\   |  _ \\ | ____||  _ \\ |  _ \\ ",
	"\\___ \\ | |    | |_) |  / _ \\  | |_) ||  _|  | |_) || | | |",
	" ___) || |___ |  _ <  / ___ \\ |  __/ | |___ |  _ < | |_| |",
	"|____/  \\____||_| \\_\\/_/   \\_\\|_|    |_____||_| \\_\\|____/ ",
}

// RenderBanner returns the styled banner as a string
func RenderBanner(once bool) string {
	bannerStyle := lipgloss.NewStyle().Foreground(ColorCyan)

	var lines []string
	for _, line := range Banner {
		lines = append(lines, bannerStyle.Render(line))
	}

	if once {
		lines = append(lines, "")
		lines = append(lines, WarnStyle.Render("single cycle mode"))
	}

	return strings.Join(lines, "\n")
}

// RenderSetting formats one "label: value" startup summary line
func RenderSetting(label, value string) string {
	return LabelStyle.Render(label+": ") + ValueStyle.Render(value)
}

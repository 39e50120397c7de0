package initializer

import (
	"log/slog"
	"os"

	"github.com/amirasaad/payminute/pkg/config"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

var levelStyles = map[log.Level]struct {
	icon  string
	color string
}{
	log.ErrorLevel: {"❌", "#FF6B6B"},
	log.WarnLevel:  {"⚠️", "#EE6FF8"},
	log.InfoLevel:  {"ℹ️", "#04B575"},
	log.DebugLevel: {"🐛", "#7E57C2"},
}

// setupLogger builds the charmbracelet handler behind slog and installs it as
// the default logger.
func setupLogger(cfg *config.Log) *slog.Logger {
	if cfg == nil {
		cfg = &config.Log{Format: "text", TimeFormat: "2006-01-02 15:04:05"}
	}
	styles := log.DefaultStyles()
	for level, st := range levelStyles {
		color := lipgloss.AdaptiveColor{Light: st.color, Dark: st.color}
		styles.Levels[level] = lipgloss.NewStyle().
			SetString(st.icon).
			Bold(true).
			Padding(0, 1).
			Foreground(color)
	}
	muted := lipgloss.AdaptiveColor{Light: "#7E57C2", Dark: "#7E57C2"}
	for _, key := range []string{"prefix", "caller", "time", "withdrawal_id", "room_id", "streamer_id"} {
		styles.Keys[key] = lipgloss.NewStyle().Foreground(muted)
		styles.Values[key] = lipgloss.NewStyle().Bold(true)
	}
	styles.Keys["error"] = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF6B6B"})
	styles.Values["error"] = lipgloss.NewStyle().Bold(true)

	formatter := log.TextFormatter
	switch cfg.Format {
	case "json":
		formatter = log.JSONFormatter
	case "logfmt":
		formatter = log.LogfmtFormatter
	}

	logger := log.NewWithOptions(os.Stdout, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		TimeFormat:      cfg.TimeFormat,
		Level:           log.Level(cfg.Level),
		Prefix:          cfg.Prefix,
		Formatter:       formatter,
	})
	logger.SetStyles(styles)

	slogger := slog.New(logger)
	slog.SetDefault(slogger)
	return slogger
}

// SetupLogger is setupLogger for the command line tools.
func SetupLogger(cfg *config.Log) *slog.Logger {
	return setupLogger(cfg)
}

package common

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ternarybob/banner"
)

var raymondsArt = []string{
	` 8888888b.         d8888 Y88b   d88P 888b     d888`,
	` 888   Y88b       d88888  Y88b d88P  8888b   d8888`,
	` 888    888      d88P888   Y88o88P   88888b.d88888`,
	` 888   d88P     d88P 888    Y888P    888Y88888P888`,
	` 8888888P"     d88P  888     888     888 Y888P 888`,
	` 888 T88b     d88P   888     888     888  Y8P  888`,
	` 888  T88b   d8888888888     888     888   "   888`,
	` 888   T88b d88P     888     888     888       888`,
}

// DashboardURL is the address the dashboard listens on.
func (c *Config) DashboardURL() string {
	return fmt.Sprintf("http://%s:%d", c.Server.Host, c.Server.Port)
}

// bannerFields lists what an operator needs to know about a running dashboard.
func bannerFields(config *Config, info BuildInfo) [][2]string {
	storage := config.Storage.Backend
	switch config.Storage.Backend {
	case "surrealdb":
		storage += " " + config.Storage.Address
	case "file", "":
		storage = "file " + config.Storage.Path
	}
	return [][2]string{
		{"Version", info.Version},
		{"Commit", info.Commit},
		{"Environment", config.Environment},
		{"Dashboard", config.DashboardURL()},
		{"Scoring API", config.API.BaseURL},
		{"Session store", storage},
		{"Cache stale", config.Query.GetStaleTime().String()},
		{"Compare max", fmt.Sprintf("%d companies", config.Compare.MaxItems)},
	}
}

func writeBanner(w io.Writer, config *Config, info BuildInfo) {
	hr := banner.ColorCyan + strings.Repeat("═", 70) + banner.ColorReset
	text := banner.ColorBold + banner.ColorWhite

	fmt.Fprintf(w, "\n%s\n\n", hr)
	for _, line := range raymondsArt {
		fmt.Fprintf(w, "%s%s%s\n", text, line, banner.ColorReset)
	}
	fmt.Fprintf(w, "\n%s  RaymondsIndex: Capital Allocation Efficiency Dashboard%s\n\n%s\n\n", text, banner.ColorReset, hr)
	for _, kv := range bannerFields(config, info) {
		fmt.Fprintf(w, "%s  %-16s %s%s\n", text, kv[0], kv[1], banner.ColorReset)
	}
	fmt.Fprintf(w, "\n%s\n\n", hr)
}

// PrintBanner writes the startup banner to stderr and logs the same fields.
func PrintBanner(config *Config, logger *Logger) {
	info := CurrentBuild()
	writeBanner(os.Stderr, config, info)

	event := logger.Info().Str("build", info.Build)
	for _, kv := range bannerFields(config, info) {
		event = event.Str(strings.ReplaceAll(strings.ToLower(kv[0]), " ", "_"), kv[1])
	}
	event.Msg("Dashboard started")
}

// PrintShutdownBanner writes the shutdown notice to stderr.
func PrintShutdownBanner(logger *Logger) {
	hr := banner.ColorCyan + strings.Repeat("═", 42) + banner.ColorReset
	fmt.Fprintf(os.Stderr, "\n%s\n%s  RAYMONDS: SHUTTING DOWN%s\n%s\n\n",
		hr, banner.ColorBold+banner.ColorWhite, banner.ColorReset, hr)
	logger.Info().Msg("Dashboard shutting down")
}

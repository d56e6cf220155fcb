package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// BannerInfo describes a running server for the startup banner.
type BannerInfo struct {
	URL                string // e.g., "https://localhost:8443"
	Root               string
	CertPath           string
	CertificateCreated bool
	InjectAudio        bool
	LiveReload         bool
	MDNS               bool
}

// AudioHint returns the line explaining how to pick the audio mode.
func AudioHint(url string) string {
	return fmt.Sprintf("Audio mode control: %s/?audio=worklet (default) or ?audio=legacy", strings.TrimSuffix(url, "/"))
}

// RenderBanner renders the "server running" box shown once the listener is up.
func RenderBanner(info BannerInfo, width int) string {
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}

	cert := info.CertPath
	if info.CertificateCreated {
		cert += " (generated)"
	}

	params := []Param{
		{Key: "Root", Value: info.Root},
		{Key: "Certificate", Value: cert},
		{Key: "Audio script", Value: onOff(info.InjectAudio)},
		{Key: "Live reload", Value: onOff(info.LiveReload)},
		{Key: "mDNS", Value: onOff(info.MDNS)},
	}

	running := SuccessTitleStyle.PaddingLeft(2).Render("Server running at: ") + URLStyle.Render(info.URL)
	lines := []string{NewHeader("godotserve", "", params...).SetWidth(width).Render(), "", running}
	if info.InjectAudio {
		lines = append(lines, HintStyle.PaddingLeft(2).Render(AudioHint(info.URL)))
	}
	lines = append(lines, HintStyle.PaddingLeft(2).Render("Press Ctrl+C to stop"))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func onOff(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}

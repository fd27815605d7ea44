package main

import (
	"fmt"
	"strings"

	integra "github.com/caarlos0/homekit-integra"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	keyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262")).Width(14)
	onStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5555"))
)

type row struct {
	key   string
	value string
}

func renderRows(title string, rows []row) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(title) + "\n")
	for _, r := range rows {
		sb.WriteString(keyStyle.Render(r.key) + " " + r.value + "\n")
	}
	return sb.String()
}

func yesNo(b bool) string {
	if b {
		return onStyle.Render("yes")
	}
	return "no"
}

func renderInfo(panel integra.PanelVersion, module integra.ModuleVersion) string {
	return renderRows("INTEGRA type and version", []row{
		{"type", panel.Type},
		{"zones", panel.ZoneCount()},
		{"outputs", panel.OutputCount()},
		{"version", panel.Version},
		{"language", fmt.Sprint(panel.Language)},
		{"flash", yesNo(panel.Flashed)},
		{"module", module.Version},
		{"32 bytes", yesNo(module.Serves32Bytes)},
	})
}

func renderStatus(status integra.SystemStatus) string {
	return renderRows("Clock and basic system status", []row{
		{"type", status.Type},
		{"date", status.DateTime()},
		{"service mode", yesNo(status.ServiceMode)},
		{"troubles", yesNo(status.Troubles)},
		{"ACU-100", yesNo(status.ACU100)},
		{"INT-RX", yesNo(status.INTRX)},
		{"troubles mem.", yesNo(status.TroublesMemory)},
		{"grade 3", yesNo(status.Grade3)},
	})
}

func renderZones(state integra.ZoneState, zones integra.ZoneSet) string {
	title := titleStyle.Render(fmt.Sprintf("Zones: %s", state)) + "\n"
	if len(zones) == 0 {
		return title + "none\n"
	}
	var sb strings.Builder
	sb.WriteString(title)
	for _, n := range zones.Numbers() {
		fmt.Fprintf(&sb, "[%3d] %s\n", n, zones[n])
	}
	return sb.String()
}

func renderEvents(events []integra.EventRecord) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Last events") + "\n")
	for _, ev := range events {
		text := ev.Text()
		if text == "" {
			text = fmt.Sprintf("unknown event %d", ev.Code)
		}
		fmt.Fprintf(&sb, "%s %s %s: %s\n", ev.Index, ev.Date(), ev.Time(), text)
	}
	return sb.String()
}

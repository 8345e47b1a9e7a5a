package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/gigurra/subs-analyzer/internal"
)

var (
	colorBrand   = lipgloss.Color("#f5c2e7")
	colorMuted   = lipgloss.Color("#6c7086")
	colorText    = lipgloss.Color("#cdd6f4")
	colorCursor  = lipgloss.Color("#313244")
	colorSuccess = lipgloss.Color("#a6e3a1")
	colorError   = lipgloss.Color("#f38ba8")
	colorBar     = lipgloss.Color("#89dceb")
)

var (
	titleStyle    = lipgloss.NewStyle().Foreground(colorBrand).Bold(true)
	headerStyle   = lipgloss.NewStyle().Foreground(colorMuted).Bold(true)
	cellStyle     = lipgloss.NewStyle().Foreground(colorText)
	rowStyle      = lipgloss.NewStyle().Background(colorCursor)
	cursorStyle   = lipgloss.NewStyle().Background(colorBrand).Foreground(lipgloss.Color("#1e1e2e")).Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(colorMuted)
	savedStyle    = lipgloss.NewStyle().Foreground(colorSuccess)
	errorStyle    = lipgloss.NewStyle().Foreground(colorError)
	barStyle      = lipgloss.NewStyle().Foreground(colorBar)
	helpKeyStyle  = lipgloss.NewStyle().Foreground(colorBrand)
	helpDescStyle = lipgloss.NewStyle().Foreground(colorMuted)
	panelStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(0, 1)
)

// Column widths of the grid, in field order.
var columnWidths = map[internal.Field]int{
	internal.FieldName:     24,
	internal.FieldCost:     10,
	internal.FieldCycle:    10,
	internal.FieldCategory: 14,
	internal.FieldStart:    11,
	internal.FieldNotes:    20,
}

const panelChartWidth = 16

func (m Model) View() string {
	f := internal.NewFormatter(m.app.Currency(), m.locale)

	grid := m.renderGrid(f)
	panel := m.renderPanel(f)

	body := lipgloss.JoinHorizontal(lipgloss.Top, grid, "  ", panel)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Subscriptions"))
	b.WriteString("\n\n")
	b.WriteString(body)
	b.WriteString("\n")
	if m.mode != modeGrid && m.mode != modeConfirmReset {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	if m.mode == modeGrid {
		b.WriteString(renderHelp(m.keys.ShortHelp()))
	} else {
		b.WriteString(renderHelp(m.inputKeys.ShortHelp()))
	}
	return b.String()
}

func (m Model) renderGrid(f internal.Formatter) string {
	var b strings.Builder

	header := make([]string, 0, len(internal.Fields))
	for _, field := range internal.Fields {
		header = append(header, pad(strings.ToUpper(string(field)), columnWidths[field]))
	}
	b.WriteString(headerStyle.Render(strings.Join(header, " ")))
	b.WriteString("\n")

	records := m.app.Records()
	if len(records) == 0 {
		b.WriteString(mutedStyle.Render("No subscriptions yet. Add one!"))
		return b.String()
	}

	for i, r := range records {
		cells := make([]string, 0, len(internal.Fields))
		for j, field := range internal.Fields {
			value := r.Get(field)
			if field == internal.FieldCost {
				value = f.Format(r.Cost)
			}
			text := pad(value, columnWidths[field])
			switch {
			case i == m.row && j == m.col:
				cells = append(cells, cursorStyle.Render(text))
			case i == m.row:
				cells = append(cells, rowStyle.Render(text))
			default:
				cells = append(cells, cellStyle.Render(text))
			}
		}
		b.WriteString(strings.Join(cells, " "))
		if i < len(records)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) renderPanel(f internal.Formatter) string {
	s := m.app.Summary()

	var b strings.Builder
	fmt.Fprintf(&b, "Monthly  %s\n", titleStyle.Render(f.Format(s.MonthlyTotal)))
	fmt.Fprintf(&b, "Annual   %s\n", titleStyle.Render(f.Format(s.AnnualTotal)))
	fmt.Fprintf(&b, "Active   %d\n", s.ActiveCount)
	fmt.Fprintf(&b, "What-if  %+g%%\n", s.WhatIf)

	if categories := s.Categories(); len(categories) > 0 {
		b.WriteString("\n")
		b.WriteString(headerStyle.Render("By category"))
		for _, c := range categories {
			fmt.Fprintf(&b, "\n%s %s %s",
				pad(string(c.Category), 13),
				pad(barStyle.Render(internal.Bar(s.Share(c.Category), panelChartWidth)), panelChartWidth),
				f.Format(c.Monthly))
		}
		b.WriteString("\n")
	}

	if suggestions := m.app.Suggestions(); len(suggestions) > 0 {
		b.WriteString("\n")
		b.WriteString(headerStyle.Render("Quick savings ideas"))
		for i, sg := range suggestions {
			fmt.Fprintf(&b, "\n%d. %s: %s /mo (%s /yr)\n   %s",
				i+1, sg.Record.Name, f.Format(sg.Monthly), f.Format(sg.Annual), mutedStyle.Render("Tip: "+sg.Tip))
		}
	}

	return panelStyle.Render(b.String())
}

func (m Model) renderStatus() string {
	switch {
	case m.isErr:
		return errorStyle.Render(m.status)
	case m.status == string(internal.StatusSaved):
		return savedStyle.Render(m.status)
	default:
		return mutedStyle.Render(m.status)
	}
}

func renderHelp(bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		help := binding.Help()
		if help.Key == "" && help.Desc == "" {
			continue
		}
		parts = append(parts, helpKeyStyle.Render(help.Key)+" "+helpDescStyle.Render(help.Desc))
	}
	return strings.Join(parts, "  ")
}

// pad truncates or right-pads s to exactly width cells.
func pad(s string, width int) string {
	w := lipgloss.Width(s)
	if w > width {
		r := []rune(s)
		if len(r) > width {
			return string(r[:width-1]) + "…"
		}
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

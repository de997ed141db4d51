package view

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Period is a preset or custom date range for ledger views.
type Period int

const (
	PeriodThisWeek Period = iota
	PeriodThisMonth
	PeriodLastMonth
	PeriodThisYear
	PeriodAll
	PeriodCustom
)

func (p Period) String() string {
	switch p {
	case PeriodThisWeek:
		return "This Week"
	case PeriodThisMonth:
		return "This Month"
	case PeriodLastMonth:
		return "Last Month"
	case PeriodThisYear:
		return "This Year"
	case PeriodAll:
		return "All Time"
	case PeriodCustom:
		return "Custom Range"
	}

	return "Unknown"
}

// PeriodRange resolves a preset against now. Both bounds are nil for
// PeriodAll and PeriodCustom. Weeks start on Monday; the end is the last
// instant of the closing day.
func PeriodRange(p Period, now time.Time) (*time.Time, *time.Time) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var start, end time.Time

	switch p {
	case PeriodThisWeek:
		offset := int(today.Weekday())
		if offset == 0 {
			offset = 7
		}

		start = today.AddDate(0, 0, 1-offset)
		end = today
	case PeriodThisMonth:
		start = today.AddDate(0, 0, 1-today.Day())
		end = today
	case PeriodLastMonth:
		start = time.Date(today.Year(), today.Month()-1, 1, 0, 0, 0, 0, today.Location())
		end = start.AddDate(0, 1, -1)
	case PeriodThisYear:
		start = time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, today.Location())
		end = today
	default:
		return nil, nil
	}

	end = endOfDay(end)

	return &start, &end
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

// PeriodSelectedMsg carries the chosen range. Nil bounds mean unbounded.
type PeriodSelectedMsg struct {
	Label string
	Start *time.Time
	End   *time.Time
}

type pickerState int

const (
	pickerStateSelect pickerState = iota
	pickerStateCustom
)

// PeriodPicker selects a date range from presets or typed dates.
type PeriodPicker struct {
	state    pickerState
	selected Period

	startInput textinput.Model
	endInput   textinput.Model
	focusIndex int

	err error
}

func NewPeriodPicker(initial Period) PeriodPicker {
	si := textinput.New()
	si.Placeholder = "YYYY-MM-DD"
	si.CharLimit = 10
	si.Width = 12
	si.Prompt = "From: "

	ei := textinput.New()
	ei.Placeholder = "YYYY-MM-DD"
	ei.CharLimit = 10
	ei.Width = 12
	ei.Prompt = "To:   "

	return PeriodPicker{
		selected:   initial,
		startInput: si,
		endInput:   ei,
	}
}

func (m PeriodPicker) Update(msg tea.Msg) (PeriodPicker, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if m.state == pickerStateSelect {
			return m.updateSelect(keyMsg)
		}

		if cmd, handled := m.handleCustomKey(keyMsg); handled {
			return m, cmd
		}
	}

	if m.state != pickerStateCustom {
		return m, nil
	}

	var cmds []tea.Cmd
	var c tea.Cmd

	m.startInput, c = m.startInput.Update(msg)
	cmds = append(cmds, c)
	m.endInput, c = m.endInput.Update(msg)
	cmds = append(cmds, c)

	return m, tea.Batch(cmds...)
}

func (m PeriodPicker) updateSelect(msg tea.KeyMsg) (PeriodPicker, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		if m.selected > PeriodThisWeek {
			m.selected--
		}
	case tea.KeyDown:
		if m.selected < PeriodCustom {
			m.selected++
		}
	case tea.KeyEnter:
		if m.selected == PeriodCustom {
			m.state = pickerStateCustom
			m.focusIndex = 0

			return m, m.startInput.Focus()
		}

		p := m.selected
		start, end := PeriodRange(p, time.Now())

		return m, func() tea.Msg {
			return PeriodSelectedMsg{Label: p.String(), Start: start, End: end}
		}
	}

	return m, nil
}

// handleCustomKey deals with the keys that drive the custom range inputs.
// Everything else is forwarded to the focused input.
func (m *PeriodPicker) handleCustomKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "tab", "shift+tab":
		m.focusIndex = (m.focusIndex + 1) % 2
		m.startInput.Blur()
		m.endInput.Blur()

		if m.focusIndex == 0 {
			return m.startInput.Focus(), true
		}

		return m.endInput.Focus(), true

	case "enter":
		start, end, err := ParseCustomRange(m.startInput.Value(), m.endInput.Value())
		if err != nil {
			m.err = err
			return nil, true
		}

		m.err = nil
		label := fmt.Sprintf("%s to %s", FormatDate(start), FormatDate(end))

		return func() tea.Msg {
			return PeriodSelectedMsg{Label: label, Start: &start, End: &end}
		}, true

	case "esc":
		m.state = pickerStateSelect
		m.err = nil

		return nil, true
	}

	return nil, false
}

// ParseCustomRange reads two YYYY-MM-DD dates, covering the whole of the
// final day.
func ParseCustomRange(from, to string) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(from), time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("invalid start date (YYYY-MM-DD)")
	}

	end, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(to), time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("invalid end date (YYYY-MM-DD)")
	}

	if end.Before(start) {
		return time.Time{}, time.Time{}, errors.New("end date is before start date")
	}

	return start, endOfDay(end), nil
}

func (m PeriodPicker) View() string {
	errStr := ""
	if m.err != nil {
		errStr = "\n\n" + errorStyle(fmt.Sprintf("Error: %v", m.err))
	}

	if m.state == pickerStateCustom {
		return fmt.Sprintf(
			"Enter Custom Range:\n\n%s\n%s\n\n(Enter to confirm, Tab to switch, Esc to back)%s",
			m.startInput.View(),
			m.endInput.View(),
			errStr,
		)
	}

	var sb strings.Builder

	sb.WriteString("Select Period:\n\n")

	for p := PeriodThisWeek; p <= PeriodCustom; p++ {
		cursor := " "
		if m.selected == p {
			cursor = ">"
		}

		fmt.Fprintf(&sb, "%s %s\n", cursor, p)
	}

	sb.WriteString("\n(Enter to select, Esc to back)")

	return sb.String() + errStr
}

// IsSelecting reports whether the preset list, not the custom inputs, has focus.
func (m PeriodPicker) IsSelecting() bool {
	return m.state == pickerStateSelect
}

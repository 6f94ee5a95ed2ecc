package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"ecotrack/internal/core"
)

const helpPeriod = "h/l période · r courante · c catégorie · x exceptionnelles · o bilan annuel · q quitter"
const helpOverview = "h/l année · o/esc retour · q quitter"

func (m model) View() string {
	if m.quitting {
		return ""
	}
	var body string
	switch m.screen {
	case screenOverview:
		body = m.overviewView()
	default:
		body = m.periodView()
	}

	var b strings.Builder
	b.WriteString(body)
	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(errorStyle.Render("Erreur : "+m.err.Error()) + "\n")
	}
	if m.status != "" {
		b.WriteString(mutedStyle.Render(m.status) + "\n")
	}
	help := helpPeriod
	if m.screen == screenOverview {
		help = helpOverview
	}
	b.WriteString(mutedStyle.Render(help))
	return b.String()
}

func balance(m core.Money) string {
	if m.Cents < 0 {
		return negStyle.Render(m.Signed())
	}
	return posStyle.Render(m.Signed())
}

func amountCell(m core.Money) string {
	return amountColumn.Render(m.String())
}

func (m model) periodView() string {
	if m.view == nil {
		if m.loading {
			return titleStyle.Render("ecotrack") + "\n" + mutedStyle.Render("Chargement…")
		}
		return titleStyle.Render("ecotrack")
	}
	v := m.view

	var b strings.Builder
	title := "Période " + v.Period.Label()
	if v.Current {
		title += " (en cours)"
	}
	b.WriteString(titleStyle.Render(title) + "\n\n")

	prev := mutedStyle.Render("Première période")
	if !v.FirstPeriod {
		prev = balance(v.PreviousBalance)
	}
	b.WriteString(boxStyle.Render(lipgloss.JoinHorizontal(lipgloss.Top,
		"Solde  "+balance(v.Balance),
		"    ",
		"Précédent  "+prev,
	)) + "\n\n")

	b.WriteString(headerStyle.Render("Dépenses") + "  " + mutedStyle.Render(m.filterLabel()) + "\n")
	if len(v.Expenses) == 0 {
		b.WriteString(mutedStyle.Render("Aucune dépense.") + "\n")
	}
	for _, e := range v.Expenses {
		cat := e.Category
		if cat == "" {
			cat = "-"
		}
		line := fmt.Sprintf("%s  %-28s %-14s", e.Date.Display(), truncate(e.Description, 28), cat)
		if e.Exceptional {
			line += " *"
		}
		b.WriteString(line + amountCell(e.Amount) + "\n")
	}
	if v.FilteredTotal != nil {
		b.WriteString(fmt.Sprintf("%-57s", "Total filtré") + amountCell(*v.FilteredTotal) + "\n")
	}

	b.WriteString("\n" + headerStyle.Render("Charges récurrentes") + "\n")
	for _, c := range v.Charges {
		b.WriteString(fmt.Sprintf("%-57s", truncate(c.Name, 57)) + amountCell(c.Amount) + "\n")
	}
	b.WriteString(fmt.Sprintf("%-57s", "Total") + amountCell(v.ChargesTotal) + "\n")

	if m.excView != nil && len(m.excView.Expenses) > 0 {
		b.WriteString("\n" + headerStyle.Render("Dépenses exceptionnelles") + "\n")
		for _, e := range m.excView.Expenses {
			b.WriteString(fmt.Sprintf("%s  %-45s", e.Date.Display(), truncate(e.Description, 45)) + amountCell(e.Amount) + "\n")
		}
		b.WriteString(fmt.Sprintf("%-57s", "Total") + amountCell(m.excView.Total) + "\n")
	}
	return b.String()
}

func (m model) filterLabel() string {
	parts := []string{"toutes catégories"}
	if m.catIdx >= 0 && m.catIdx < len(m.categories) {
		parts[0] = m.categories[m.catIdx].Name
	}
	if m.exceptional {
		parts = append(parts, "exceptionnelles incluses")
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (m model) overviewView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Bilan annuel") + "\n\n")
	if len(m.overviews) == 0 {
		if m.loading {
			b.WriteString(mutedStyle.Render("Chargement…"))
		}
		return b.String()
	}

	b.WriteString(headerStyle.Render(fmt.Sprintf("%-6s", "Année")) +
		amountColumn.Render("Revenus") + amountColumn.Render("Dépenses") +
		amountColumn.Render("Except.") + amountColumn.Render("Solde") + "\n")
	for i, o := range m.overviews {
		year := fmt.Sprintf("%-6d", o.Year)
		if i == m.yearIdx {
			year = selectedRow.Render(fmt.Sprintf("%-6s", fmt.Sprintf(">%d", o.Year)))
		}
		b.WriteString(year + amountCell(o.Income) + amountCell(o.Expenses) +
			amountCell(o.Exceptional) + amountColumn.Render(balance(o.Balance)) + "\n")
	}

	if sel, ok := m.selectedOverview(); ok {
		b.WriteString("\n" + boxStyle.Render(fmt.Sprintf("%d  Solde  %s", sel.Year, balance(sel.Balance))))
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/zhouzirui/contrario/internal/model/chat"
	"github.com/zhouzirui/contrario/internal/model/persona"
	"github.com/zhouzirui/contrario/internal/session"
)

var (
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	headerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Bold(true)
	promptStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

var icons = map[string]string{
	"flame":  "🔥",
	"skull":  "☠️",
	"rocket": "🚀",
}

func iconFor(p persona.Persona) string {
	if icon, ok := icons[p.Icon]; ok {
		return icon
	}
	return "🤖"
}

func renderTurn(turn chat.Turn, assistantName string) string {
	if turn.Role == chat.RoleUser {
		return userStyle.Render("tu") + "  " + turn.Content
	}
	label := assistantStyle.Render(assistantName)
	if strings.HasPrefix(turn.Content, session.ErrorMarker) {
		return label + "  " + errorStyle.Render(turn.Content)
	}
	return label + "  " + turn.Content
}

func renderPersonaList(personas []persona.Persona, current persona.ID) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Personas"))
	b.WriteString("\n")
	for _, p := range personas {
		marker := "  "
		if p.ID == current {
			marker = "✓ "
		}
		fmt.Fprintf(&b, "%s%s %-10s %s %s\n", marker, iconFor(p), p.ID, p.Name, dimStyle.Render("- "+p.Description))
	}
	return b.String()
}

func renderHeader(p persona.Persona, sessionID string) string {
	return headerStyle.Render(fmt.Sprintf("%s %s", iconFor(p), p.Name)) +
		dimStyle.Render(fmt.Sprintf("  session %s", sessionID))
}

const helpText = `/persona           list personas
/persona <id>      switch persona (starts a new conversation)
/new               start a new conversation with the same persona
/history           print the conversation
/help              show this help
/quit              exit`

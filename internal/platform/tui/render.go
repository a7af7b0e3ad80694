package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-blocks/internal/blocks"
)

// pieceStyles maps each piece to its conventional color.
var pieceStyles = map[blocks.PieceType]lipgloss.Style{
	blocks.PieceI: lipgloss.NewStyle().Foreground(lipgloss.Color("14")),  // cyan
	blocks.PieceO: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),  // yellow
	blocks.PieceT: lipgloss.NewStyle().Foreground(lipgloss.Color("13")),  // magenta
	blocks.PieceS: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),  // green
	blocks.PieceZ: lipgloss.NewStyle().Foreground(lipgloss.Color("9")),   // red
	blocks.PieceJ: lipgloss.NewStyle().Foreground(lipgloss.Color("12")),  // blue
	blocks.PieceL: lipgloss.NewStyle().Foreground(lipgloss.Color("208")), // orange
}

var (
	stackStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	ghostStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	valueStyle = lipgloss.NewStyle().Bold(true)
	alertStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

// RenderBoard draws the visible playfield with the active piece and its
// ghost overlaid.
func RenderBoard(e *blocks.Engine) string {
	type overlay struct {
		piece blocks.PieceType
		ghost bool
	}
	cells := make(map[[2]int]overlay)
	if ghost := e.GhostPiece(); ghost != nil {
		for _, c := range ghost.Cells() {
			cells[[2]int{c.X, c.Y}] = overlay{piece: ghost.Type, ghost: true}
		}
	}
	if cur := e.CurrentPiece(); cur != nil {
		for _, c := range cur.Cells() {
			cells[[2]int{c.X, c.Y}] = overlay{piece: cur.Type}
		}
	}

	var sb strings.Builder
	for y := blocks.VisibleHeight - 1; y >= 0; y-- {
		row := e.Row(y)
		for x := 0; x < blocks.BoardWidth; x++ {
			if ov, ok := cells[[2]int{x, y}]; ok {
				if ov.ghost {
					sb.WriteString(ghostStyle.Render("░░"))
				} else {
					sb.WriteString(pieceStyles[ov.piece].Render("██"))
				}
				continue
			}
			if row&(1<<uint(x)) != 0 {
				sb.WriteString(stackStyle.Render("██"))
			} else {
				sb.WriteString("  ")
			}
		}
		if y > 0 {
			sb.WriteRune('\n')
		}
	}
	return borderStyle.Render(sb.String())
}

// RenderSidebar draws hold, next queue and the score block.
func RenderSidebar(e *blocks.Engine) string {
	var sb strings.Builder

	sb.WriteString(labelStyle.Render("HOLD"))
	sb.WriteRune('\n')
	if h := e.HoldPiece(); h != nil {
		sb.WriteString(renderMiniPiece(*h))
	} else {
		sb.WriteString(ghostStyle.Render("  --"))
	}
	sb.WriteString("\n\n")

	sb.WriteString(labelStyle.Render("NEXT"))
	sb.WriteRune('\n')
	for _, p := range e.NextQueue() {
		sb.WriteString(renderMiniPiece(p))
		sb.WriteRune('\n')
	}
	sb.WriteRune('\n')

	writeStat := func(label string, value any) {
		sb.WriteString(labelStyle.Render(label))
		sb.WriteRune(' ')
		sb.WriteString(valueStyle.Render(fmt.Sprint(value)))
		sb.WriteRune('\n')
	}
	writeStat("SCORE", e.Score())
	writeStat("LINES", e.Lines())
	writeStat("LEVEL", e.Level())
	if e.Combo() > 0 {
		writeStat("COMBO", e.Combo())
	}
	if e.BackToBack() > 0 {
		writeStat("B2B", e.BackToBack())
	}
	if g := e.PendingGarbage(); g > 0 {
		sb.WriteString(alertStyle.Render(fmt.Sprintf("INCOMING %d", g)))
		sb.WriteRune('\n')
	}

	return sb.String()
}

// renderMiniPiece shows a piece as a colored letter tag.
func renderMiniPiece(p blocks.PieceType) string {
	return pieceStyles[p].Render("[" + p.String() + "]")
}

// RenderGame lays out the board and sidebar side by side.
func RenderGame(e *blocks.Engine) string {
	view := lipgloss.JoinHorizontal(lipgloss.Top, RenderBoard(e), "  ", RenderSidebar(e))
	if e.GameOver() {
		return view + "\n" + alertStyle.Render("GAME OVER") +
			labelStyle.Render("  r restart / b back / q quit")
	}
	return view
}

// RenderVersus lays out two boards side by side with a caption per side.
func RenderVersus(left, right *blocks.Engine, leftLabel, rightLabel string) string {
	l := lipgloss.JoinVertical(lipgloss.Center, valueStyle.Render(leftLabel), RenderBoard(left), RenderSidebar(left))
	r := lipgloss.JoinVertical(lipgloss.Center, valueStyle.Render(rightLabel), RenderBoard(right), RenderSidebar(right))
	return lipgloss.JoinHorizontal(lipgloss.Top, l, "   ", r)
}

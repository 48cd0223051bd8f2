package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/alexanderi96/rsnake/game"
	"github.com/alexanderi96/rsnake/game/types"
)

// HUD is the frontend state drawn next to the board
type HUD struct {
	Muted        bool
	Autopilot    bool
	GamesPlayed  int
	AverageScore float64
	Scores       []int // Finished games, oldest first
}

const (
	boardX    = 1 // Board origin inside the border
	boardY    = 1
	cellWidth = 2 // Terminal cells are tall, so each grid cell is two columns wide
)

var (
	styleBorder = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleHead   = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleBody   = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleFood   = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleText   = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleBanner = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorWhite)
)

// TerminalRenderer draws snapshots on a tcell screen
type TerminalRenderer struct {
	screen tcell.Screen
}

func NewTerminalRenderer(screen tcell.Screen) *TerminalRenderer {
	return &TerminalRenderer{screen: screen}
}

// ScreenPos returns the terminal column and row of a grid cell's left half
func ScreenPos(c types.Cell) (int, int) {
	return boardX + c.X*cellWidth, boardY + c.Y
}

func (r *TerminalRenderer) Draw(snap game.Snapshot, hud HUD) {
	r.screen.Clear()

	size := snap.Grid.Size
	r.drawBorder(size)

	if snap.HasFood {
		r.drawCell(snap.Food, '●', ' ', styleFood)
	}
	for i := len(snap.Snake) - 1; i >= 0; i-- {
		if i == 0 {
			r.drawCell(snap.Snake[i], headGlyph(snap.Direction), ' ', styleHead)
		} else {
			r.drawCell(snap.Snake[i], '█', '█', styleBody)
		}
	}

	statusY := boardY + size + 1
	r.drawText(0, statusY, fmt.Sprintf("Score: %d  High: %d  Speed: %dms", snap.Score, snap.HighScore, snap.Speed), styleText)
	r.drawText(0, statusY+1, fmt.Sprintf("Games: %d  Avg: %.1f  Sound: %s  Autopilot: %s",
		hud.GamesPlayed, hud.AverageScore, onOff(!hud.Muted), onOff(hud.Autopilot)), styleText)
	r.drawText(0, statusY+2, "arrows/wasd move  space start/pause  r restart  m mute  i autopilot  q quit", styleBorder)

	if banner := bannerFor(snap.State); banner != "" {
		width := size*cellWidth + 2
		x := max((width-len(banner))/2, 0)
		r.drawText(x, boardY+size/2, banner, styleBanner)
	}

	r.screen.Show()
}

func (r *TerminalRenderer) drawBorder(size int) {
	right := boardX + size*cellWidth
	bottom := boardY + size

	for x := boardX; x < right; x++ {
		r.screen.SetContent(x, 0, '─', nil, styleBorder)
		r.screen.SetContent(x, bottom, '─', nil, styleBorder)
	}
	for y := boardY; y < bottom; y++ {
		r.screen.SetContent(0, y, '│', nil, styleBorder)
		r.screen.SetContent(right, y, '│', nil, styleBorder)
	}
	r.screen.SetContent(0, 0, '┌', nil, styleBorder)
	r.screen.SetContent(right, 0, '┐', nil, styleBorder)
	r.screen.SetContent(0, bottom, '└', nil, styleBorder)
	r.screen.SetContent(right, bottom, '┘', nil, styleBorder)
}

func (r *TerminalRenderer) drawCell(c types.Cell, left, right rune, style tcell.Style) {
	x, y := ScreenPos(c)
	r.screen.SetContent(x, y, left, nil, style)
	r.screen.SetContent(x+1, y, right, nil, style)
}

func (r *TerminalRenderer) drawText(x, y int, text string, style tcell.Style) {
	for i, ch := range []rune(text) {
		r.screen.SetContent(x+i, y, ch, nil, style)
	}
}

func headGlyph(d types.Direction) rune {
	switch d {
	case types.UP:
		return '▲'
	case types.DOWN:
		return '▼'
	case types.LEFT:
		return '◀'
	default:
		return '▶'
	}
}

func bannerFor(state types.GameState) string {
	switch state {
	case types.Idle:
		return " PRESS SPACE TO START "
	case types.Paused:
		return " PAUSED "
	case types.Over:
		return " GAME OVER - SPACE TO PLAY AGAIN "
	default:
		return ""
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/alexanderi96/rsnake/game"
	"github.com/alexanderi96/rsnake/game/types"
)

const (
	maxScores     = 200 // Maximum number of scores to show in graph
	borderPadding = 10  // Padding around game area
)

// layout holds every pixel measure derived from the window size
type layout struct {
	screenWidth  int32
	screenHeight int32
	gameWidth    int32
	statsPanel   int32
	graphWidth   int32
	graphHeight  int32
	cellSize     int32
	gridSize     int32
	offsetX      int32
	offsetY      int32
}

func computeLayout(screenWidth, screenHeight int32, cells int) layout {
	l := layout{screenWidth: screenWidth, screenHeight: screenHeight}

	// Stats panel takes a quarter of the window, the board gets the rest
	l.statsPanel = screenWidth / 4
	l.gameWidth = screenWidth - l.statsPanel

	l.graphWidth = l.statsPanel - 20
	l.graphHeight = screenHeight / 5

	availableWidth := l.gameWidth - borderPadding*2
	availableHeight := screenHeight - borderPadding*2
	l.cellSize = max(min(availableWidth, availableHeight)/int32(cells), 1)
	l.gridSize = l.cellSize * int32(cells)

	l.offsetX = borderPadding + (availableWidth-l.gridSize)/2
	l.offsetY = (screenHeight - l.gridSize) / 2
	return l
}

// Renderer draws snapshots in a raylib window
type Renderer struct {
	layout layout
}

func NewRenderer() *Renderer {
	return &Renderer{}
}

func (r *Renderer) Draw(snap game.Snapshot, hud HUD) {
	r.layout = computeLayout(int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight()), snap.Grid.Size)
	l := r.layout

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	fontSize := min(l.screenHeight/40, l.statsPanel/12)
	lineHeight := min(l.screenHeight/30, l.statsPanel/9)

	// Board background and grid lines
	rl.DrawRectangle(l.offsetX-1, l.offsetY-1, l.gridSize+2, l.gridSize+2, rl.DarkGray)
	for x := 0; x < snap.Grid.Size; x++ {
		for y := 0; y < snap.Grid.Size; y++ {
			rl.DrawRectangleLines(
				l.offsetX+int32(x)*l.cellSize,
				l.offsetY+int32(y)*l.cellSize,
				l.cellSize, l.cellSize, rl.Gray)
		}
	}

	if snap.HasFood {
		r.drawCell(snap.Food, rl.Red)
	}
	r.drawSnake(snap)

	r.drawStatsPanel(snap, hud, fontSize, lineHeight)
	r.drawOverlay(snap.State, fontSize*2)

	rl.EndDrawing()
}

func (r *Renderer) drawCell(c types.Cell, color rl.Color) {
	l := r.layout
	rl.DrawRectangle(
		l.offsetX+int32(c.X)*l.cellSize,
		l.offsetY+int32(c.Y)*l.cellSize,
		l.cellSize, l.cellSize, color)
}

func (r *Renderer) drawSnake(snap game.Snapshot) {
	body := rl.Color{R: 0, G: 200, B: 80, A: 255}
	tail := rl.Color{R: 0, G: 140, B: 60, A: 255}
	head := rl.Color{R: 0, G: 255, B: 110, A: 255}

	// Tail first so the head is drawn on top
	for i := len(snap.Snake) - 1; i >= 0; i-- {
		color := body
		switch {
		case i == 0:
			color = head
		case i == len(snap.Snake)-1:
			color = tail
		}
		r.drawCell(snap.Snake[i], color)
	}
	if len(snap.Snake) > 0 {
		r.drawDirection(snap.Head(), snap.Direction)
	}
}

// drawDirection puts a triangle on the head pointing where the snake travels
func (r *Renderer) drawDirection(p types.Cell, direction types.Direction) {
	l := r.layout
	headX := float32(l.offsetX + int32(p.X)*l.cellSize)
	headY := float32(l.offsetY + int32(p.Y)*l.cellSize)
	cell := float32(l.cellSize)
	half := cell / 2

	switch direction {
	case types.RIGHT:
		rl.DrawTriangle(
			rl.Vector2{X: headX + cell, Y: headY + half},
			rl.Vector2{X: headX + half, Y: headY},
			rl.Vector2{X: headX + half, Y: headY + cell},
			rl.Yellow)
	case types.LEFT:
		rl.DrawTriangle(
			rl.Vector2{X: headX, Y: headY + half},
			rl.Vector2{X: headX + half, Y: headY + cell},
			rl.Vector2{X: headX + half, Y: headY},
			rl.Yellow)
	case types.DOWN:
		rl.DrawTriangle(
			rl.Vector2{X: headX + half, Y: headY + cell},
			rl.Vector2{X: headX + cell, Y: headY + half},
			rl.Vector2{X: headX, Y: headY + half},
			rl.Yellow)
	case types.UP:
		rl.DrawTriangle(
			rl.Vector2{X: headX + half, Y: headY},
			rl.Vector2{X: headX, Y: headY + half},
			rl.Vector2{X: headX + cell, Y: headY + half},
			rl.Yellow)
	}
}

func (r *Renderer) drawStatsPanel(snap game.Snapshot, hud HUD, fontSize, lineHeight int32) {
	l := r.layout
	statsX := l.gameWidth + 5
	statsY := int32(10)

	rl.DrawRectangle(statsX-5, 0, l.statsPanel+5, l.screenHeight, rl.DarkGray)

	lines := []string{
		fmt.Sprintf("Score: %d", snap.Score),
		fmt.Sprintf("High Score: %d", snap.HighScore),
		fmt.Sprintf("Length: %d", len(snap.Snake)),
		fmt.Sprintf("Speed: %dms", snap.Speed),
		"",
		fmt.Sprintf("Games: %d", hud.GamesPlayed),
		fmt.Sprintf("Avg: %.2f", hud.AverageScore),
		fmt.Sprintf("Sound: %s", onOff(!hud.Muted)),
		fmt.Sprintf("Autopilot: %s", onOff(hud.Autopilot)),
		"",
		"Arrows: move",
		"Space: start/pause",
		"R: restart  M: mute",
		"I: autopilot",
	}
	for _, line := range lines {
		if line != "" {
			rl.DrawText(line, statsX, statsY, fontSize, rl.White)
		}
		statsY += lineHeight
	}

	r.drawPerformanceGraph(hud.Scores, statsX, fontSize)
}

func (r *Renderer) drawPerformanceGraph(scores []int, graphX, fontSize int32) {
	l := r.layout
	graphHeight := l.graphHeight
	graphY := l.screenHeight - graphHeight - fontSize*2

	rl.DrawRectangleLines(graphX, graphY, l.graphWidth, graphHeight, rl.White)
	rl.DrawText("Scores", graphX, graphY-fontSize-5, fontSize, rl.White)

	if len(scores) > maxScores {
		scores = scores[len(scores)-maxScores:]
	}
	if len(scores) < 2 {
		return
	}

	maxScore, total := 1, 0
	for _, score := range scores {
		maxScore = max(maxScore, score)
		total += score
	}
	avgScore := float32(total) / float32(len(scores))

	scaleX := func(i int) int32 {
		return graphX + int32(float32(l.graphWidth)*float32(i)/float32(maxScores))
	}
	scaleY := func(v float32) int32 {
		return graphY + graphHeight - int32(float32(graphHeight)*v/float32(maxScore))
	}

	for j := 1; j < len(scores); j++ {
		rl.DrawLine(scaleX(j-1), scaleY(float32(scores[j-1])), scaleX(j), scaleY(float32(scores[j])), rl.Green)
	}

	// Average score line (dashed)
	avgY := scaleY(avgScore)
	for x := graphX; x < graphX+l.graphWidth; x += 5 {
		rl.DrawLine(x, avgY, x+2, avgY, rl.Yellow)
	}
}

func (r *Renderer) drawOverlay(state types.GameState, fontSize int32) {
	text := bannerFor(state)
	if text == "" {
		return
	}
	l := r.layout
	textWidth := rl.MeasureText(text, fontSize)
	rl.DrawText(text,
		l.offsetX+(l.gridSize-textWidth)/2,
		l.offsetY+l.gridSize/2-fontSize/2,
		fontSize, rl.White)
}

// PollCommand returns the first command pressed this frame
func PollCommand() Command {
	keys := []struct {
		key int32
		cmd Command
	}{
		{rl.KeyUp, CmdUp},
		{rl.KeyW, CmdUp},
		{rl.KeyRight, CmdRight},
		{rl.KeyD, CmdRight},
		{rl.KeyDown, CmdDown},
		{rl.KeyS, CmdDown},
		{rl.KeyLeft, CmdLeft},
		{rl.KeyA, CmdLeft},
		{rl.KeySpace, CmdStartOrPause},
		{rl.KeyP, CmdPause},
		{rl.KeyR, CmdRestart},
		{rl.KeyM, CmdMute},
		{rl.KeyI, CmdAutopilot},
		{rl.KeyQ, CmdQuit},
	}
	for _, k := range keys {
		if rl.IsKeyPressed(k.key) {
			return k.cmd
		}
	}
	return CmdNone
}

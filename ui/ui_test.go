package ui

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/alexanderi96/rsnake/game"
	"github.com/alexanderi96/rsnake/game/types"
)

func TestCommandForKey(t *testing.T) {
	tests := []struct {
		name string
		key  tcell.Key
		r    rune
		want Command
	}{
		{"arrow up", tcell.KeyUp, 0, CmdUp},
		{"arrow right", tcell.KeyRight, 0, CmdRight},
		{"arrow down", tcell.KeyDown, 0, CmdDown},
		{"arrow left", tcell.KeyLeft, 0, CmdLeft},
		{"w", tcell.KeyRune, 'w', CmdUp},
		{"vim l", tcell.KeyRune, 'l', CmdRight},
		{"space", tcell.KeyRune, ' ', CmdStartOrPause},
		{"pause", tcell.KeyRune, 'P', CmdPause},
		{"restart", tcell.KeyRune, 'r', CmdRestart},
		{"mute", tcell.KeyRune, 'm', CmdMute},
		{"autopilot", tcell.KeyRune, 'i', CmdAutopilot},
		{"quit rune", tcell.KeyRune, 'q', CmdQuit},
		{"escape", tcell.KeyEscape, 0, CmdQuit},
		{"ctrl-c", tcell.KeyCtrlC, 0, CmdQuit},
		{"unmapped rune", tcell.KeyRune, 'z', CmdNone},
		{"unmapped key", tcell.KeyF1, 0, CmdNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CommandForKey(tt.key, tt.r); got != tt.want {
				t.Errorf("CommandForKey(%v, %q) = %v, want %v", tt.key, tt.r, got, tt.want)
			}
		})
	}
}

type fakeController struct {
	state    types.GameState
	calls    []string
	proposed types.Direction
}

func (f *fakeController) State() types.GameState { return f.state }

func (f *fakeController) Start() bool {
	f.calls = append(f.calls, "start")
	f.state = types.Running
	return true
}

func (f *fakeController) TogglePause() bool {
	f.calls = append(f.calls, "toggle")
	return true
}

func (f *fakeController) Restart() {
	f.calls = append(f.calls, "restart")
}

func (f *fakeController) ProposeDirection(d types.Direction) bool {
	f.proposed = d
	return true
}

func TestDispatch(t *testing.T) {
	tests := []struct {
		name    string
		state   types.GameState
		cmd     Command
		handled bool
		call    string
	}{
		{"space from idle starts", types.Idle, CmdStartOrPause, true, "start"},
		{"space from over starts", types.Over, CmdStartOrPause, true, "start"},
		{"space while running pauses", types.Running, CmdStartOrPause, true, "toggle"},
		{"space while paused resumes", types.Paused, CmdStartOrPause, true, "toggle"},
		{"p toggles", types.Running, CmdPause, true, "toggle"},
		{"restart", types.Paused, CmdRestart, true, "restart"},
		{"mute is a frontend command", types.Running, CmdMute, false, ""},
		{"quit is a frontend command", types.Running, CmdQuit, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &fakeController{state: tt.state}
			if got := Dispatch(c, tt.cmd); got != tt.handled {
				t.Errorf("Dispatch = %v, want %v", got, tt.handled)
			}
			got := strings.Join(c.calls, ",")
			if got != tt.call {
				t.Errorf("calls = %q, want %q", got, tt.call)
			}
		})
	}
}

func TestDispatchDirections(t *testing.T) {
	c := &fakeController{state: types.Running}
	for cmd, want := range map[Command]types.Direction{
		CmdUp:    types.UP,
		CmdRight: types.RIGHT,
		CmdDown:  types.DOWN,
		CmdLeft:  types.LEFT,
	} {
		Dispatch(c, cmd)
		if c.proposed != want {
			t.Errorf("command %v proposed %v, want %v", cmd, c.proposed, want)
		}
	}
}

func newSimScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("screen init: %v", err)
	}
	screen.SetSize(80, 30)
	t.Cleanup(screen.Fini)
	return screen
}

func runeAt(screen tcell.Screen, x, y int) rune {
	r, _, _, _ := screen.GetContent(x, y)
	return r
}

func rowText(screen tcell.Screen, y, width int) string {
	var b strings.Builder
	for x := 0; x < width; x++ {
		b.WriteRune(runeAt(screen, x, y))
	}
	return b.String()
}

func testSnapshot(state types.GameState) game.Snapshot {
	return game.Snapshot{
		Grid:      types.Grid{Size: 10},
		Snake:     []types.Cell{{X: 3, Y: 4}, {X: 2, Y: 4}, {X: 1, Y: 4}},
		Food:      types.Cell{X: 7, Y: 2},
		HasFood:   true,
		Direction: types.RIGHT,
		Score:     20,
		HighScore: 50,
		Speed:     150,
		State:     state,
	}
}

func TestTerminalRendererDrawsBoard(t *testing.T) {
	screen := newSimScreen(t)
	r := NewTerminalRenderer(screen)

	r.Draw(testSnapshot(types.Running), HUD{GamesPlayed: 3, AverageScore: 12.5, Muted: true})

	if got := runeAt(screen, 0, 0); got != '┌' {
		t.Errorf("top-left corner = %q", got)
	}
	if got := runeAt(screen, boardX+10*cellWidth, boardY+10); got != '┘' {
		t.Errorf("bottom-right corner = %q", got)
	}

	hx, hy := ScreenPos(types.Cell{X: 3, Y: 4})
	if got := runeAt(screen, hx, hy); got != '▶' {
		t.Errorf("head glyph = %q, want ▶", got)
	}
	bx, by := ScreenPos(types.Cell{X: 1, Y: 4})
	if got := runeAt(screen, bx, by); got != '█' {
		t.Errorf("body glyph = %q, want █", got)
	}
	fx, fy := ScreenPos(types.Cell{X: 7, Y: 2})
	if got := runeAt(screen, fx, fy); got != '●' {
		t.Errorf("food glyph = %q, want ●", got)
	}

	status := rowText(screen, 12, 60)
	if !strings.Contains(status, "Score: 20") || !strings.Contains(status, "High: 50") {
		t.Errorf("status line = %q", status)
	}
	hud := rowText(screen, 13, 60)
	if !strings.Contains(hud, "Games: 3") || !strings.Contains(hud, "Sound: off") {
		t.Errorf("hud line = %q", hud)
	}
}

func TestTerminalRendererBanners(t *testing.T) {
	tests := []struct {
		state types.GameState
		want  string
	}{
		{types.Idle, "PRESS SPACE"},
		{types.Paused, "PAUSED"},
		{types.Over, "GAME OVER"},
		{types.Running, ""},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			screen := newSimScreen(t)
			NewTerminalRenderer(screen).Draw(testSnapshot(tt.state), HUD{})

			row := rowText(screen, boardY+5, 40)
			if tt.want == "" {
				for _, banner := range []string{"PRESS", "PAUSED", "GAME OVER"} {
					if strings.Contains(row, banner) {
						t.Errorf("running board shows banner %q", banner)
					}
				}
				return
			}
			if !strings.Contains(row, tt.want) {
				t.Errorf("banner row = %q, want %q", row, tt.want)
			}
		})
	}
}

func TestComputeLayout(t *testing.T) {
	l := computeLayout(1000, 800, 20)

	if l.cellSize <= 0 {
		t.Fatalf("cell size = %d", l.cellSize)
	}
	if l.offsetX+l.gridSize > l.gameWidth {
		t.Errorf("board overflows the game area: %+v", l)
	}
	if l.offsetY < 0 || l.offsetY+l.gridSize > 800 {
		t.Errorf("board not vertically inside the window: %+v", l)
	}
	if l.statsPanel+l.gameWidth != 1000 {
		t.Errorf("panel %d + game %d != window width", l.statsPanel, l.gameWidth)
	}

	tiny := computeLayout(40, 40, 50)
	if tiny.cellSize < 1 {
		t.Errorf("cell size must stay positive on tiny windows, got %d", tiny.cellSize)
	}
}

package ui

import (
	"github.com/gdamore/tcell/v2"

	"github.com/alexanderi96/rsnake/game/types"
)

// Command is a frontend-independent user action
type Command int

const (
	CmdNone Command = iota
	CmdUp
	CmdRight
	CmdDown
	CmdLeft
	CmdStartOrPause // Space: start from idle/over, toggle pause otherwise
	CmdPause
	CmdRestart
	CmdMute
	CmdAutopilot
	CmdQuit
)

// Direction returns the direction a movement command asks for, or NONE
func (c Command) Direction() types.Direction {
	switch c {
	case CmdUp:
		return types.UP
	case CmdRight:
		return types.RIGHT
	case CmdDown:
		return types.DOWN
	case CmdLeft:
		return types.LEFT
	default:
		return types.NONE
	}
}

// Controller is the part of the engine a frontend drives
type Controller interface {
	State() types.GameState
	Start() bool
	TogglePause() bool
	Restart()
	ProposeDirection(d types.Direction) bool
}

// Dispatch applies a game command to c. Frontend commands (mute, autopilot,
// quit) are not handled here and return false.
func Dispatch(c Controller, cmd Command) bool {
	if d := cmd.Direction(); d != types.NONE {
		return c.ProposeDirection(d)
	}

	switch cmd {
	case CmdStartOrPause:
		if s := c.State(); s == types.Idle || s == types.Over {
			return c.Start()
		}
		return c.TogglePause()
	case CmdPause:
		return c.TogglePause()
	case CmdRestart:
		c.Restart()
		return true
	default:
		return false
	}
}

// CommandForKey maps a terminal key press to a command
func CommandForKey(key tcell.Key, r rune) Command {
	switch key {
	case tcell.KeyUp:
		return CmdUp
	case tcell.KeyRight:
		return CmdRight
	case tcell.KeyDown:
		return CmdDown
	case tcell.KeyLeft:
		return CmdLeft
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return CmdQuit
	case tcell.KeyRune:
	default:
		return CmdNone
	}

	switch r {
	case ' ':
		return CmdStartOrPause
	case 'w', 'W', 'k':
		return CmdUp
	case 'd', 'D', 'l':
		return CmdRight
	case 's', 'S', 'j':
		return CmdDown
	case 'a', 'A', 'h':
		return CmdLeft
	case 'p', 'P':
		return CmdPause
	case 'r', 'R':
		return CmdRestart
	case 'm', 'M':
		return CmdMute
	case 'i', 'I':
		return CmdAutopilot
	case 'q', 'Q':
		return CmdQuit
	default:
		return CmdNone
	}
}

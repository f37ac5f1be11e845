// Package terminal draws the game into a tcell screen, either the local
// terminal or a remote one behind an SSH session.
package terminal

import (
	"context"
	"fmt"

	"pythons/game"
	"pythons/game/input"
	"pythons/game/manager"

	"github.com/gdamore/tcell/v2"
)

const (
	headRune   = 'Ö'
	bodyRune   = 'O'
	targetRune = '+'
)

type Terminal struct {
	screen tcell.Screen

	textStyle   tcell.Style
	frameStyle  tcell.Style
	snakeStyle  tcell.Style
	targetStyle tcell.Style
}

func New(screen tcell.Screen) *Terminal {
	return &Terminal{
		screen:      screen,
		textStyle:   tcell.StyleDefault,
		frameStyle:  tcell.StyleDefault.Foreground(tcell.ColorGray),
		snakeStyle:  tcell.StyleDefault.Foreground(tcell.GetColor("green").TrueColor()),
		targetStyle: tcell.StyleDefault.Foreground(tcell.GetColor("red").TrueColor()),
	}
}

// transform maps a board cell to a screen cell: one status line and the
// frame sit above and left of the board.
func transform(x, y int) (int, int) {
	return x + 1, y + 2
}

// Draw renders one snapshot and shows it.
func (t *Terminal) Draw(s game.Snapshot) {
	t.screen.Clear()

	switch s.State {
	case manager.Splash:
		t.drawSplash(s)
	case manager.GameOver:
		t.drawBoard(s)
		t.drawGameOver(s)
	default:
		t.drawBoard(s)
	}
	t.screen.Show()
}

func (t *Terminal) drawBoard(s game.Snapshot) {
	t.text(0, 0, fmt.Sprintf("Score: %d  Best: %d  Speed: %d", s.Score, s.HighScore, s.TickRate), t.textStyle)
	t.drawFrame(s.Grid.Width, s.Grid.Height)

	if s.HasTarget {
		x, y := transform(s.Target.X, s.Target.Y)
		t.screen.SetContent(x, y, targetRune, nil, t.targetStyle)
	}
	for i := len(s.Body) - 1; i >= 0; i-- {
		r := bodyRune
		if i == 0 {
			r = headRune
		}
		x, y := transform(s.Body[i].X, s.Body[i].Y)
		t.screen.SetContent(x, y, r, nil, t.snakeStyle)
	}
}

func (t *Terminal) drawFrame(width, height int) {
	style := t.frameStyle
	t.screen.SetContent(0, 1, '+', nil, style)
	t.screen.SetContent(1+width, 1, '+', nil, style)
	t.screen.SetContent(0, 2+height, '+', nil, style)
	t.screen.SetContent(1+width, 2+height, '+', nil, style)
	for i := 0; i < width; i++ {
		t.screen.SetContent(1+i, 1, '-', nil, style)
		t.screen.SetContent(1+i, 2+height, '-', nil, style)
	}
	for i := 0; i < height; i++ {
		t.screen.SetContent(0, 2+i, '|', nil, style)
		t.screen.SetContent(1+width, 2+i, '|', nil, style)
	}
}

func (t *Terminal) drawSplash(s game.Snapshot) {
	mid := s.Grid.Height/2 + 2
	t.centered(s.Grid.Width, mid-1, "PYTHONS")
	t.centered(s.Grid.Width, mid+1, "arrows to move")
	t.centered(s.Grid.Width, mid+3, "press any key")
}

func (t *Terminal) drawGameOver(s game.Snapshot) {
	mid := s.Grid.Height/2 + 2
	title := "GAME OVER"
	if s.Won {
		title = "YOU WIN"
	}
	t.centered(s.Grid.Width, mid-1, title)
	t.centered(s.Grid.Width, mid+1, fmt.Sprintf("score %d", s.Score))
	t.centered(s.Grid.Width, mid+3, "press any key")
}

func (t *Terminal) centered(width, y int, msg string) {
	x := (width + 2 - len([]rune(msg))) / 2
	if x < 0 {
		x = 0
	}
	t.text(x, y, msg, t.textStyle)
}

func (t *Terminal) text(x, y int, msg string, style tcell.Style) {
	for i, r := range []rune(msg) {
		t.screen.SetContent(x+i, y, r, nil, style)
	}
}

// TranslateKey maps a tcell key press to a core event. Arrows steer,
// Escape and Ctrl-C quit, anything else is a plain key press.
func TranslateKey(ev *tcell.EventKey) input.Event {
	switch ev.Key() {
	case tcell.KeyUp:
		return input.DirEvent(input.Up)
	case tcell.KeyDown:
		return input.DirEvent(input.Down)
	case tcell.KeyLeft:
		return input.DirEvent(input.Left)
	case tcell.KeyRight:
		return input.DirEvent(input.Right)
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return input.QuitEvent()
	default:
		return input.KeyEvent()
	}
}

// Pump turns screen events into core events until quit is closed. The
// returned channel is closed when the screen stops delivering events.
func (t *Terminal) Pump(quit <-chan struct{}) <-chan input.Event {
	raw := make(chan tcell.Event)
	out := make(chan input.Event, 16)
	go t.screen.ChannelEvents(raw, quit)
	go func() {
		defer close(out)
		for event := range raw {
			var ev input.Event
			switch evt := event.(type) {
			case *tcell.EventKey:
				ev = TranslateKey(evt)
			case *tcell.EventResize:
				t.screen.Sync()
				continue
			case *tcell.EventError:
				ev = input.QuitEvent()
			default:
				continue
			}
			select {
			case out <- ev:
			case <-quit:
				return
			}
		}
	}()
	return out
}

// Play runs g on screen until the player quits or ctx ends. observe, when
// set, sees every snapshot after it is drawn.
func Play(ctx context.Context, g *game.Game, screen tcell.Screen, observe func(game.Snapshot)) error {
	t := New(screen)
	quit := make(chan struct{})
	defer close(quit)

	return g.Run(ctx, t.Pump(quit), func(s game.Snapshot) {
		t.Draw(s)
		if observe != nil {
			observe(s)
		}
	})
}

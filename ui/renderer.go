package ui

import (
	"fmt"

	"pythons/game"
	"pythons/game/input"
	"pythons/game/manager"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	Title         = "PYTHONS"
	borderPadding = 10 // padding around the board
)

// Renderer draws snapshots into a raylib window. It never touches the game.
type Renderer struct {
	cellSize        int32
	screenWidth     int32
	screenHeight    int32
	headerHeight    int32
	totalGridWidth  int32
	totalGridHeight int32
	offsetX         int32
	offsetY         int32
}

func NewRenderer() *Renderer {
	r := &Renderer{}
	r.UpdateDimensions()
	return r
}

func (r *Renderer) UpdateDimensions() {
	r.screenWidth = int32(rl.GetScreenWidth())
	r.screenHeight = int32(rl.GetScreenHeight())
}

func min(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}

// layout fits the board below the score bar.
func (r *Renderer) layout(s game.Snapshot) {
	r.headerHeight = r.screenHeight / 20
	availableWidth := r.screenWidth - borderPadding*2
	availableHeight := r.screenHeight - r.headerHeight - borderPadding*2

	cellW := availableWidth / int32(s.Grid.Width)
	cellH := availableHeight / int32(s.Grid.Height)
	r.cellSize = min(cellW, cellH)
	if r.cellSize < 1 {
		r.cellSize = 1
	}

	r.totalGridWidth = r.cellSize * int32(s.Grid.Width)
	r.totalGridHeight = r.cellSize * int32(s.Grid.Height)
	r.offsetX = (r.screenWidth - r.totalGridWidth) / 2
	r.offsetY = r.headerHeight + borderPadding
}

// Draw renders one frame.
func (r *Renderer) Draw(s game.Snapshot) {
	r.UpdateDimensions()
	r.layout(s)

	rl.BeginDrawing()
	defer rl.EndDrawing()
	rl.ClearBackground(rl.Black)

	switch s.State {
	case manager.Splash:
		r.drawSplash()
	case manager.GameOver:
		r.drawBoard(s)
		r.drawGameOver(s)
	default:
		r.drawBoard(s)
	}
}

func (r *Renderer) drawBoard(s game.Snapshot) {
	fontSize := r.headerHeight * 3 / 4

	// Score bar
	rl.DrawRectangle(0, 0, r.screenWidth, r.headerHeight, rl.White)
	r.drawCentered(fmt.Sprintf("%d", s.Score), r.headerHeight/2, fontSize, rl.Black)
	rl.DrawText(fmt.Sprintf("Best: %d", s.HighScore), borderPadding, (r.headerHeight-fontSize/2)/2, fontSize/2, rl.DarkGray)

	// Board frame
	rl.DrawRectangleLines(r.offsetX-1, r.offsetY-1, r.totalGridWidth+2, r.totalGridHeight+2, rl.DarkGray)

	if s.HasTarget {
		x, y := r.cell(s.Target.X, s.Target.Y)
		rl.DrawRectangle(x, y, r.cellSize, r.cellSize, rl.Red)
	}

	for j, p := range s.Body {
		x, y := r.cell(p.X, p.Y)
		rl.DrawRectangle(x, y, r.cellSize, r.cellSize, rl.Green)
		if j == 0 {
			r.drawHeading(x, y, s)
		}
	}
}

// drawHeading marks the head with a triangle pointing along the velocity.
func (r *Renderer) drawHeading(headX, headY int32, s game.Snapshot) {
	halfCell := r.cellSize / 2
	v := func(x, y int32) rl.Vector2 { return rl.Vector2{X: float32(x), Y: float32(y)} }
	switch {
	case s.Direction.X > 0: // Right
		rl.DrawTriangle(v(headX+r.cellSize, headY+halfCell), v(headX+halfCell, headY), v(headX+halfCell, headY+r.cellSize), rl.Yellow)
	case s.Direction.X < 0: // Left
		rl.DrawTriangle(v(headX, headY+halfCell), v(headX+halfCell, headY+r.cellSize), v(headX+halfCell, headY), rl.Yellow)
	case s.Direction.Y > 0: // Down
		rl.DrawTriangle(v(headX+halfCell, headY+r.cellSize), v(headX+r.cellSize, headY+halfCell), v(headX, headY+halfCell), rl.Yellow)
	default: // Up
		rl.DrawTriangle(v(headX+halfCell, headY), v(headX, headY+halfCell), v(headX+r.cellSize, headY+halfCell), rl.Yellow)
	}
}

func (r *Renderer) drawSplash() {
	center := r.screenHeight / 2
	r.drawCentered(Title, center, r.screenHeight/12, rl.White)
	r.drawCentered("Use the [arrow] keys to move", center+r.screenHeight/12, r.screenHeight/36, rl.White)
	r.drawCentered("Press any key to start", r.screenHeight-r.screenHeight/12, r.screenHeight/36, rl.White)
}

func (r *Renderer) drawGameOver(s game.Snapshot) {
	center := r.screenHeight / 2
	title := "GAME OVER"
	if s.Won {
		title = "YOU WIN"
	}
	r.drawCentered(title, center, r.screenHeight/12, rl.White)
	r.drawCentered(fmt.Sprintf("Score: %d  Best: %d  Runs: %d", s.Score, s.HighScore, s.Runs),
		center+r.screenHeight/12, r.screenHeight/36, rl.White)
	r.drawCentered("Press any key to play again", r.screenHeight-r.screenHeight/12, r.screenHeight/36, rl.White)
}

func (r *Renderer) drawCentered(text string, y, fontSize int32, color rl.Color) {
	width := rl.MeasureText(text, fontSize)
	rl.DrawText(text, (r.screenWidth-width)/2, y-fontSize/2, fontSize, color)
}

func (r *Renderer) cell(x, y int) (int32, int32) {
	return r.offsetX + int32(x)*r.cellSize, r.offsetY + int32(y)*r.cellSize
}

// TranslateKey maps a raylib key code to a core event.
func TranslateKey(key int32) input.Event {
	switch key {
	case rl.KeyUp:
		return input.DirEvent(input.Up)
	case rl.KeyDown:
		return input.DirEvent(input.Down)
	case rl.KeyLeft:
		return input.DirEvent(input.Left)
	case rl.KeyRight:
		return input.DirEvent(input.Right)
	case rl.KeyEscape:
		return input.QuitEvent()
	default:
		return input.KeyEvent()
	}
}

// PollEvents drains the key presses raylib queued since the last frame.
// A close request becomes a Quit event.
func PollEvents() []input.Event {
	var events []input.Event
	for key := rl.GetKeyPressed(); key != 0; key = rl.GetKeyPressed() {
		events = append(events, TranslateKey(key))
	}
	if rl.WindowShouldClose() {
		events = append(events, input.QuitEvent())
	}
	return events
}

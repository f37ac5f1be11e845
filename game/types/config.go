package types

import (
	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Config holds the simulation constants. It is fixed once a game is built.
type Config struct {
	CellSize    int `toml:"cell_size"`    // pixels per cell side
	BoardWidth  int `toml:"board_width"`  // pixels
	BoardHeight int `toml:"board_height"` // pixels

	BaseTickRate int `toml:"base_tick_rate"` // ticks per second at score 0
	SpeedStep    int `toml:"speed_step"`     // tick rate added per milestone
	SpeedModulus int `toml:"speed_modulus"`  // score distance between milestones
	Award        int `toml:"award"`          // score per consumed target

	InitialLength    int   `toml:"initial_length"`
	InitialHead      Point `toml:"initial_head"`
	InitialDirection Point `toml:"initial_direction"`
	InitialTarget    Point `toml:"initial_target"`

	// Seed for target placement; 0 picks a time based seed.
	Seed uint64 `toml:"seed"`
}

// DefaultConfig mirrors the classic 24x20 board with a 30px cell.
func DefaultConfig() Config {
	return Config{
		CellSize:         30,
		BoardWidth:       30 * 24,
		BoardHeight:      30 * 20,
		BaseTickRate:     5,
		SpeedStep:        5,
		SpeedModulus:     100,
		Award:            10,
		InitialLength:    2,
		InitialHead:      Point{X: 12, Y: 9},
		InitialDirection: Right,
		InitialTarget:    Point{X: 2, Y: 1},
	}
}

// LoadConfig decodes a TOML file over the defaults and validates the result.
func LoadConfig(path string) (Config, error) {
	c := DefaultConfig()
	md, err := toml.DecodeFile(path, &c)
	if err != nil {
		return Config{}, errors.Wrapf(ErrConfiguration, "decode %s: %v", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, errors.Wrapf(ErrConfiguration, "%s: unknown keys %v", path, undecoded)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Grid derives the board from the pixel extents.
func (c Config) Grid() (Grid, error) {
	return NewGrid(c.BoardWidth, c.BoardHeight, c.CellSize)
}

// InitialBody lays the body out behind the head, opposite to the heading.
func (c Config) InitialBody() []Point {
	body := make([]Point, 0, c.InitialLength)
	p := c.InitialHead
	back := c.InitialDirection.Reverse()
	for i := 0; i < c.InitialLength; i++ {
		body = append(body, p)
		p = p.Add(back)
	}
	return body
}

// Validate checks every rule a run relies on.
func (c Config) Validate() error {
	grid, err := c.Grid()
	if err != nil {
		return err
	}
	switch {
	case c.BaseTickRate <= 0:
		return errors.Wrapf(ErrConfiguration, "base tick rate %d must be positive", c.BaseTickRate)
	case c.SpeedStep < 0:
		return errors.Wrapf(ErrConfiguration, "speed step %d must not be negative", c.SpeedStep)
	case c.SpeedModulus <= 0:
		return errors.Wrapf(ErrConfiguration, "speed modulus %d must be positive", c.SpeedModulus)
	case c.Award < 0:
		return errors.Wrapf(ErrConfiguration, "award %d must not be negative", c.Award)
	case c.InitialLength < 2:
		return errors.Wrapf(ErrConfiguration, "initial length %d is below 2", c.InitialLength)
	case c.InitialLength >= grid.Size():
		return errors.Wrapf(ErrConfiguration,
			"initial length %d leaves no room on a %d cell board", c.InitialLength, grid.Size())
	case !c.InitialDirection.IsCardinal():
		return errors.Wrapf(ErrConfiguration, "initial direction %v is not a unit step", c.InitialDirection)
	}

	body := c.InitialBody()
	for _, p := range body {
		if !grid.InBounds(p) {
			return errors.Wrapf(ErrConfiguration, "initial body cell %v is off the board", p)
		}
	}
	if !grid.InBounds(c.InitialTarget) {
		return errors.Wrapf(ErrConfiguration, "initial target %v is off the board", c.InitialTarget)
	}
	if NewCellSet(body...).Contains(c.InitialTarget) {
		return errors.Wrapf(ErrConfiguration, "initial target %v lies on the body", c.InitialTarget)
	}
	return nil
}

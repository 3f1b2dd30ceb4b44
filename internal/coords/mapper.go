package coords

// Mapper converts between a fixed display size and a fixed surface size.
type Mapper struct {
	screen  Size
	surface Size
}

// NewMapper validates both sizes once so later conversions cannot fail.
func NewMapper(screen, surface Size) (Mapper, error) {
	if err := screen.Validate(); err != nil {
		return Mapper{}, err
	}
	if err := surface.Validate(); err != nil {
		return Mapper{}, err
	}
	return Mapper{screen: screen, surface: surface}, nil
}

// Screen returns the display size.
func (m Mapper) Screen() Size {
	return m.screen
}

// Surface returns the drawing surface size.
func (m Mapper) Surface() Size {
	return m.surface
}

// ToSurface maps a display point onto the drawing surface.
func (m Mapper) ToSurface(p Point) Point {
	return rescale(p, m.screen, m.surface)
}

// ToScreen maps a drawing surface point onto the display.
func (m Mapper) ToScreen(p Point) Point {
	return rescale(p, m.surface, m.screen)
}

// NormToSurface maps a normalized display coordinate onto the drawing surface.
func (m Mapper) NormToSurface(xn, yn float64) Point {
	return Point{X: xn * m.surface.W, Y: yn * m.surface.H}
}

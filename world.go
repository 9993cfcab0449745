package main

const (
	MapWidth  = 2000.0
	MapHeight = 1500.0

	// Bullets are culled once they are this far past the map edge
	BulletBoundsMargin = 50.0
)

// Obstacle is a static axis-aligned rectangle on the map
type Obstacle struct {
	X      float64 `json:"x" msgpack:"x"`
	Y      float64 `json:"y" msgpack:"y"`
	Width  float64 `json:"width" msgpack:"w"`
	Height float64 `json:"height" msgpack:"h"`
	Color  string  `json:"color" msgpack:"c"`
}

// World holds the static geometry shared read-only by every collision test
type World struct {
	Width     float64
	Height    float64
	Obstacles []Obstacle
}

// DefaultWorld returns the standard arena layout
func DefaultWorld() *World {
	return &World{
		Width:  MapWidth,
		Height: MapHeight,
		Obstacles: []Obstacle{
			// Center block and corridors
			{X: 900, Y: 400, Width: 200, Height: 200, Color: "#444"},
			{X: 850, Y: 350, Width: 300, Height: 20, Color: "#555"},
			{X: 850, Y: 630, Width: 300, Height: 20, Color: "#555"},
			// West side cover
			{X: 380, Y: 240, Width: 150, Height: 20, Color: "#444"},
			{X: 200, Y: 400, Width: 20, Height: 200, Color: "#444"},
			{X: 400, Y: 600, Width: 150, Height: 20, Color: "#444"},
			// East side cover
			{X: 1650, Y: 200, Width: 150, Height: 20, Color: "#444"},
			{X: 1780, Y: 400, Width: 20, Height: 200, Color: "#444"},
			{X: 1450, Y: 600, Width: 150, Height: 20, Color: "#444"},
			// Corner blocks
			{X: 100, Y: 100, Width: 80, Height: 80, Color: "#333"},
			{X: 1820, Y: 100, Width: 80, Height: 80, Color: "#333"},
			{X: 100, Y: 820, Width: 80, Height: 80, Color: "#333"},
			{X: 1820, Y: 820, Width: 80, Height: 80, Color: "#333"},
		},
	}
}

// InBounds reports whether a point lies inside the map proper
func (w *World) InBounds(x, y float64) bool {
	return x >= 0 && x <= w.Width && y >= 0 && y <= w.Height
}

// OutsideMargin reports whether a point is past the generous cull margin
func (w *World) OutsideMargin(x, y float64) bool {
	return x < -BulletBoundsMargin || x > w.Width+BulletBoundsMargin ||
		y < -BulletBoundsMargin || y > w.Height+BulletBoundsMargin
}

package main

// WallBuffer is added around obstacles when displacing players so they
// cannot sit embedded in a wall. Bullets get no buffer.
const WallBuffer = 2.0

// rectsOverlap is the AABB overlap test every other check reduces to
func rectsOverlap(ax, ay, aw, ah, bx, by, bw, bh float64) bool {
	return ax < bx+bw && ax+aw > bx && ay < by+bh && ay+ah > by
}

// PointHitsObstacle tests a point with a symmetric half-extent against
// every obstacle
func PointHitsObstacle(x, y, halfExtent float64, world *World) bool {
	for _, o := range world.Obstacles {
		if rectsOverlap(x-halfExtent, y-halfExtent, 2*halfExtent, 2*halfExtent,
			o.X, o.Y, o.Width, o.Height) {
			return true
		}
	}
	return false
}

// RectHitsObstacle tests an arbitrary rectangle against every obstacle
func RectHitsObstacle(x, y, w, h float64, world *World) bool {
	for _, o := range world.Obstacles {
		if rectsOverlap(x, y, w, h, o.X, o.Y, o.Width, o.Height) {
			return true
		}
	}
	return false
}

// BulletHitsObstacle tests a bullet, expanded by its own size, against the
// world geometry
func BulletHitsObstacle(b *Bullet, world *World) bool {
	size := b.Size
	if size <= 0 {
		size = 2
	}
	return PointHitsObstacle(b.X, b.Y, size, world)
}

// BulletHitsPlayer uses a fixed circular hit radius centered on the
// player, independent of weapon. Intentionally coarse.
func BulletHitsPlayer(b *Bullet, p *Player) bool {
	dx := b.X - p.X
	dy := b.Y - p.Y
	return dx*dx+dy*dy < PlayerHitRadius*PlayerHitRadius
}

// ResolvePlayerObstacles pushes a player out of any obstacle it overlaps,
// along whichever axis has the smaller penetration. One-step correction,
// not a physics solve; the WallBuffer keeps the result clear of the wall.
func ResolvePlayerObstacles(p *Player, world *World) {
	half := PlayerHalfSize + WallBuffer
	for _, o := range world.Obstacles {
		if !rectsOverlap(p.X-half, p.Y-half, 2*half, 2*half, o.X, o.Y, o.Width, o.Height) {
			continue
		}
		// Penetration depth on each axis
		penLeft := (p.X + half) - o.X
		penRight := (o.X + o.Width) - (p.X - half)
		penTop := (p.Y + half) - o.Y
		penBottom := (o.Y + o.Height) - (p.Y - half)

		penX := penLeft
		pushX := -penLeft
		if penRight < penLeft {
			penX = penRight
			pushX = penRight
		}
		penY := penTop
		pushY := -penTop
		if penBottom < penTop {
			penY = penBottom
			pushY = penBottom
		}

		if penX < penY {
			p.X += pushX
		} else {
			p.Y += pushY
		}
	}
	p.X = Clamp(p.X, PlayerHalfSize, world.Width-PlayerHalfSize)
	p.Y = Clamp(p.Y, PlayerHalfSize, world.Height-PlayerHalfSize)
}

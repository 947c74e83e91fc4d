package enum

// Lifespan good-for-day, fill-and-kill
type Lifespan uint8

const (
	_lifespan_beg Lifespan = iota
	LifespanGoodForDay
	LifespanFillAndKill
	_lifespan_end
)

func (l Lifespan) IsAvailable() bool {
	return l > _lifespan_beg && l < _lifespan_end
}

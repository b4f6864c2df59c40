package game

import "time"

type ticker struct{}

func NewTickerGen() *ticker {
	return &ticker{}
}

func (t *ticker) Create(d time.Duration) <-chan time.Time {
	return time.NewTicker(d).C
}

package clock

import (
	"time"

	"github.com/vytor/drumdungeon/internal/models"
)

// Clock supplies "now" so streak and history dates can be pinned in tests.
type Clock interface {
	Now() time.Time
	Today() models.Date
}

type System struct{}

func (System) Now() time.Time { return time.Now().UTC() }

func (s System) Today() models.Date { return models.NewDate(s.Now()) }

// Fixed always reports the same instant.
type Fixed struct {
	At time.Time
}

func NewFixed(at time.Time) *Fixed { return &Fixed{At: at.UTC()} }

func (f *Fixed) Now() time.Time { return f.At }

func (f *Fixed) Today() models.Date { return models.NewDate(f.At) }

// Advance moves the clock forward by d.
func (f *Fixed) Advance(d time.Duration) { f.At = f.At.Add(d) }

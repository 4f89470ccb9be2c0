package driver

import (
	"context"
	"time"
)

const (
	DefaultTickLength = time.Millisecond * 250
)

// Manager is advanced by the Driver on every tick.
type Manager interface {
	Tick(ctx context.Context, elapsed time.Duration) error
}

// Driver is the clock of the server. Managers are ticked in order.
type Driver struct {
	tickLength time.Duration
	managers   []Manager
}

func NewDriver(managers []Manager, opts ...DriverOpt) *Driver {
	d := &Driver{
		tickLength: DefaultTickLength,
		managers:   managers,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

func (d *Driver) Start(ctx context.Context) error {
	ticker := time.NewTicker(d.tickLength)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			err := d.Tick(ctx, now.Sub(last))
			if err != nil {
				return err
			}
			last = now
		}
	}
}

func (d *Driver) Tick(ctx context.Context, elapsed time.Duration) error {
	for _, m := range d.managers {
		if err := m.Tick(ctx, elapsed); err != nil {
			return err
		}
	}
	return nil
}

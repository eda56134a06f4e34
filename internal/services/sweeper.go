package services

import (
	"log"
	"time"
)

// ReservationSweeper periodically releases reserved tickets whose claims
// expired without being finalized, so abandoned checkouts cannot starve a
// raffle.
type ReservationSweeper struct {
	inventory *InventoryService
	interval  time.Duration
	stop      chan struct{}
	done      chan struct{}
}

// NewReservationSweeper constructs a sweeper. A non-positive interval
// defaults to one minute.
func NewReservationSweeper(inventory *InventoryService, interval time.Duration) *ReservationSweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &ReservationSweeper{
		inventory: inventory,
		interval:  interval,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start launches the background sweep loop
func (s *ReservationSweeper) Start() {
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.sweep()
			case <-s.stop:
				return
			}
		}
	}()
}

// Stop terminates the sweep loop and waits for it to finish
func (s *ReservationSweeper) Stop() {
	close(s.stop)
	<-s.done
}

func (s *ReservationSweeper) sweep() {
	released, err := s.inventory.ReleaseExpired(0)
	if err != nil {
		log.Printf("sweeper: failed to release expired reservations: %v", err)
		return
	}
	if released > 0 {
		log.Printf("sweeper: released %d expired reservations", released)
	}
}

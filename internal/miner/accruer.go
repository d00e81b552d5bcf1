// Package miner drives the periodic coin payout for running miner services.
package miner

import (
	"context"
	"log"
	"math"
	"time"

	"cryptic-server/internal/store"
)

// coins credited per second by a miner at full power.
const coinsPerSecond = 1.0

type Accruer struct {
	Store    *store.Store
	Interval time.Duration
}

// Run sweeps running miners on every tick until the context is cancelled.
func (a *Accruer) Run(ctx context.Context) {
	ticker := time.NewTicker(a.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.sweep()
		}
	}
}

func (a *Accruer) sweep() {
	miners, _, err := a.Store.RunningMiners()
	if err != nil {
		log.Printf("miner sweep: %v", err)
		return
	}
	for _, m := range miners {
		amount := int64(math.Floor(a.Interval.Seconds() * m.Power * coinsPerSecond))
		if amount <= 0 || m.Wallet == nil {
			continue
		}
		// the wallet may have been deleted since the join; the credit is
		// then a no-op.
		if err := a.Store.CreditWallet(*m.Wallet, amount); err != nil {
			log.Printf("miner credit %s: %v", m.UUID, err)
		}
	}
}

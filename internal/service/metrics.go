package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	CardsPurchased = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scratch_cards_purchased_total",
			Help: "Total scratch cards purchased",
		},
	)
	CellsRevealed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scratch_cells_revealed_total",
			Help: "Total reveal attempts by outcome",
		},
		[]string{"outcome"},
	)
	CoinsPaidOut = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scratch_coins_paid_out_total",
			Help: "Total coins credited for revealed prizes",
		},
	)
)

func init() {
	prometheus.MustRegister(CardsPurchased)
	prometheus.MustRegister(CellsRevealed)
	prometheus.MustRegister(CoinsPaidOut)
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SalesCommitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pos_sales_committed_total",
		Help: "Sales committed with a receipt number.",
	})

	SalesFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_sales_failed_total",
		Help: "Sale commits rolled back, by reason.",
	}, []string{"reason"})

	SaleCommitDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pos_sale_commit_duration_seconds",
		Help:    "Wall time of the sale commit transaction.",
		Buckets: prometheus.DefBuckets,
	})

	StockMovements = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_stock_movements_total",
		Help: "Ledger entries appended, by movement type.",
	}, []string{"type"})

	ProductsRepriced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pos_products_repriced_total",
		Help: "Products whose primary price was recalculated after a rate change.",
	})
)

package main

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/villagecompute/jobkit/pkg/logger"
	"github.com/villagecompute/jobkit/pkg/queue"
)

var (
	demoTenants  = []string{"acme", "globex", "initech"}
	demoChannels = []string{"email", "push", "sms", "fax"}
	demoPrinters = []string{"dock-1", "dock-2", ""}
)

// produceDemoJobs enqueues a random notification and barcode label every
// interval until ctx is done. Some payloads are built to fail so retries and
// dead letters show up in the admin API.
func produceDemoJobs(
	ctx context.Context,
	interval time.Duration,
	notifications *queue.Queue[Notification],
	labels *queue.Queue[BarcodeLabel],
	log *slog.Logger,
) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	priorities := queue.Priorities()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		tenant := pick(demoTenants)
		n := Notification{
			Tenant:    tenant,
			Recipient: tenant + "-ops@example.com",
			Channel:   pick(demoChannels),
			Template:  "order_shipped",
		}
		if !notifications.Enqueue(n, pick(priorities)) {
			log.Warn("demo notification rejected", logger.TenantID(tenant))
		}

		l := BarcodeLabel{
			Tenant:  tenant,
			SKU:     pick([]string{"SKU-1001", "SKU-2002", ""}),
			Printer: pick(demoPrinters),
			Copies:  rand.IntN(3) + 1,
		}
		if !labels.Enqueue(l, queue.PriorityBulk) {
			log.Warn("demo label rejected", logger.TenantID(tenant))
		}
	}
}

func pick[T any](items []T) T {
	return items[rand.IntN(len(items))]
}

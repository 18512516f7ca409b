package main

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/villagecompute/jobkit/pkg/queue"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestHandleNotification(t *testing.T) {
	h := handleNotification(discardLogger())

	require.NoError(t, h.Handle(context.Background(), Notification{Channel: "email"}))

	err := h.Handle(context.Background(), Notification{Channel: "fax"})
	require.ErrorIs(t, err, errUnsupportedChannel)
	assert.True(t, queue.IsPermanent(err))
}

func TestHandleBarcodeLabel(t *testing.T) {
	h := handleBarcodeLabel(discardLogger())

	require.NoError(t, h.Handle(context.Background(), BarcodeLabel{SKU: "SKU-1", Printer: "dock-1"}))

	err := h.Handle(context.Background(), BarcodeLabel{Printer: "dock-1"})
	require.ErrorIs(t, err, errMissingSKU)
	assert.True(t, queue.IsPermanent(err))

	err = h.Handle(context.Background(), BarcodeLabel{SKU: "SKU-1"})
	require.ErrorIs(t, err, errPrinterOffline)
	assert.False(t, queue.IsPermanent(err))
}

func TestNewJobType(t *testing.T) {
	deps := jobTypeDeps{log: discardLogger()}
	jt, err := newJobType[BarcodeLabel](jobBarcodeLabel, queue.DefaultConfig(),
		handleBarcodeLabel(discardLogger()), func(l BarcodeLabel) string { return l.Tenant }, deps)
	require.NoError(t, err)
	t.Cleanup(func() { _ = jt.Close() })
	assert.Nil(t, jt.archive)

	// Bulk labels are never retried, so a missing printer dead-letters at once.
	require.True(t, jt.queue.Enqueue(BarcodeLabel{Tenant: "acme", SKU: "SKU-1"}, queue.PriorityBulk))
	require.True(t, jt.queue.Enqueue(BarcodeLabel{Tenant: "acme", SKU: "SKU-2", Printer: "dock-1"}, queue.PriorityDefault))

	assert.Equal(t, 2, jt.processor.ProcessAllPending(context.Background()))
	stats := jt.processor.Stats()
	assert.Equal(t, 0, stats.TotalDepth)
	assert.Equal(t, 1, stats.DeadLetterDepth)
	assert.Equal(t, "SKU-1", jt.processor.DeadLetters()[0].Payload.(BarcodeLabel).SKU)
}

func TestConfigFor(t *testing.T) {
	custom, err := queue.NewConfig(uniform(queue.NoRetryPolicy(), 5)...)
	require.NoError(t, err)
	configs := map[string]*queue.Config{jobNotification: custom}

	assert.Same(t, custom, configFor(configs, jobNotification))
	assert.Equal(t, queue.DefaultConfig().RetryPolicy(queue.PriorityCritical),
		configFor(configs, jobBarcodeLabel).RetryPolicy(queue.PriorityCritical))
	assert.NotNil(t, configFor(nil, jobBarcodeLabel))
}

func TestLoadQueueConfigs(t *testing.T) {
	configs, err := loadQueueConfigs("")
	require.NoError(t, err)
	assert.Nil(t, configs)

	configs, err = loadQueueConfigs("testdata/jobs.yaml")
	require.NoError(t, err)
	require.Contains(t, configs, jobNotification)
	assert.Equal(t, 4, configs[jobNotification].RetryPolicy(queue.PriorityHigh).MaxAttempts())

	_, err = loadQueueConfigs("testdata/missing.yaml")
	assert.Error(t, err)
}

func uniform(policy queue.RetryPolicy, capacity int) []queue.ConfigOption {
	var opts []queue.ConfigOption
	for _, p := range queue.Priorities() {
		opts = append(opts, queue.WithRetryPolicy(p, policy), queue.WithCapacity(p, capacity))
	}
	return opts
}

func TestDrainSchedules(t *testing.T) {
	n, l, err := drainSchedules(Config{
		NotificationDrainSchedule: "every 5s",
		LabelDrainSchedule:        "daily at 02:30",
	})
	require.NoError(t, err)
	assert.Equal(t, "every 5s", n.String())
	assert.Equal(t, "daily at 02:30", l.String())

	_, _, err = drainSchedules(Config{NotificationDrainSchedule: "every 5s", LabelDrainSchedule: "whenever"})
	require.ErrorIs(t, err, queue.ErrInvalidSchedule)
	assert.ErrorContains(t, err, jobBarcodeLabel)
}

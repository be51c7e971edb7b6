package debounce_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/mapstack/pkg/debounce"
)

func TestBurstCoalescesIntoOneCall(t *testing.T) {
	var calls int32
	d := debounce.New(30 * time.Millisecond)
	defer d.Stop()

	for i := 0; i < 5; i++ {
		d.Schedule(func() { atomic.AddInt32(&calls, 1) })
	}

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestStopCancelsPending(t *testing.T) {
	var calls int32
	d := debounce.New(30 * time.Millisecond)

	d.Schedule(func() { atomic.AddInt32(&calls, 1) })
	d.Stop()

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestFlushRunsImmediately(t *testing.T) {
	var pending, flushed int32
	d := debounce.New(time.Hour)
	defer d.Stop()

	d.Schedule(func() { atomic.AddInt32(&pending, 1) })
	d.Flush(func() { atomic.AddInt32(&flushed, 1) })

	assert.Equal(t, int32(1), atomic.LoadInt32(&flushed))
	assert.Equal(t, int32(0), atomic.LoadInt32(&pending), "flush cancels the scheduled call")
}

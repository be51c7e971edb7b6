package notify_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/mapstack/pkg/notify"
)

func TestShowReplacesCurrent(t *testing.T) {
	notify.Reset()
	t.Cleanup(notify.Reset)

	notify.Show("first")
	notify.Showf("second: %d", 2)

	assert.Equal(t, "second: 2", notify.Current())
}

func TestSubscribersReceiveEveryMessage(t *testing.T) {
	notify.Reset()
	t.Cleanup(notify.Reset)

	var got []string
	notify.Subscribe(func(msg string) { got = append(got, msg) })

	notify.Show("one")
	notify.Show("two")

	assert.Equal(t, []string{"one", "two"}, got)
}

func TestResetClears(t *testing.T) {
	notify.Show("stale")
	notify.Reset()
	assert.Equal(t, "", notify.Current())
}

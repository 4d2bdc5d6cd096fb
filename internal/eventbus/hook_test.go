package eventbus

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHook_Invalid(t *testing.T) {
	_, err := NewHook("echo (")
	assert.Error(t, err)
}

func TestHookRunner_Execute(t *testing.T) {
	all, err := NewHook(`echo "$TODOTXT_EVENT_TYPE $TODOTXT_EVENT_DOCUMENT:$TODOTXT_EVENT_LINE $TODOTXT_EVENT_TASK"`)
	require.NoError(t, err)
	failing, err := NewHook("exit 3")
	require.NoError(t, err)
	added, err := NewHook(`echo added`, TaskAdded)
	require.NoError(t, err)

	var stdout, stderr bytes.Buffer
	r := NewHookRunner([]*Hook{all, failing, added}, WithHookOutput(&stdout, &stderr))

	r.Execute(context.Background(), &Event{Type: TaskToggled, Document: "todo.txt", Line: 2, Task: "x call mom"})
	assert.Equal(t, "task.toggled todo.txt:2 x call mom\n", stdout.String())

	stdout.Reset()
	r.Execute(context.Background(), &Event{Type: TaskAdded, Document: "todo.txt", Line: 0, Task: "buy milk"})
	assert.Equal(t, "task.added todo.txt:0 buy milk\nadded\n", stdout.String())
}

func TestHookRunner_Timeout(t *testing.T) {
	slow, err := NewHook("sleep 10; echo done")
	require.NoError(t, err)
	var stdout bytes.Buffer
	r := NewHookRunner([]*Hook{slow}, WithHookTimeout(50*time.Millisecond), WithHookOutput(&stdout, &stdout))

	start := time.Now()
	r.Execute(context.Background(), &Event{Type: TaskAdded})
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.NotContains(t, stdout.String(), "done")
}

func TestHookRunner_Run(t *testing.T) {
	h, err := NewHook(`echo "$TODOTXT_EVENT_TASK"`)
	require.NoError(t, err)
	out := &syncBuffer{}
	r := NewHookRunner([]*Hook{h}, WithHookOutput(out, out))

	b := New()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx, b) }()

	require.Eventually(t, func() bool {
		b.PublishNew(TaskAdded, "todo.txt", 0, "call mom")
		return bytes.Contains(out.Bytes(), []byte("call mom\n"))
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

package view

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestTaskSetReplacesSameKey(t *testing.T) {
	defer goleak.VerifyNone(t)
	ts := newTaskSet()
	key := TaskKey{Screen: ScreenDashboard, Resource: ResourceChat}

	firstDone := make(chan error, 1)
	started := make(chan struct{})
	require.NoError(t, ts.goKey(key, func(ctx context.Context) {
		close(started)
		<-ctx.Done()
		firstDone <- ctx.Err()
	}))
	<-started

	require.NoError(t, ts.goKey(key, func(ctx context.Context) {}))
	assert.ErrorIs(t, <-firstDone, context.Canceled)

	ts.wait()
	assert.Zero(t, ts.running())
}

func TestTaskSetCancelScreen(t *testing.T) {
	defer goleak.VerifyNone(t)
	ts := newTaskSet()

	dashCtx, releaseDash, err := ts.bind(context.Background(), TaskKey{Screen: ScreenDashboard, Resource: ResourceChat, Seq: 1})
	require.NoError(t, err)
	otherCtx, releaseOther, err := ts.bind(context.Background(), TaskKey{Screen: ScreenSetup})
	require.NoError(t, err)

	assert.Equal(t, 1, ts.cancelScreen(ScreenDashboard))
	assert.ErrorIs(t, dashCtx.Err(), context.Canceled)
	assert.NoError(t, otherCtx.Err())

	releaseDash()
	releaseDash()
	releaseOther()
	ts.wait()
}

func TestTaskSetCloseAll(t *testing.T) {
	defer goleak.VerifyNone(t)
	ts := newTaskSet()

	ctx, release, err := ts.bind(context.Background(), TaskKey{Screen: ScreenDashboard, Resource: ResourceChat, Seq: 3})
	require.NoError(t, err)

	ts.closeAll()
	<-ctx.Done()
	release()
	ts.wait()

	_, _, err = ts.bind(context.Background(), TaskKey{Screen: ScreenDashboard})
	assert.ErrorIs(t, err, errTasksClosed)
	assert.ErrorIs(t, ts.goKey(TaskKey{}, func(context.Context) {}), errTasksClosed)
}

package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/syncer/pkg/syncer/types"
)

const (
	fpA = types.Fingerprint("0cc175b9c0f1b6a831c399e269772661")
	fpB = types.Fingerprint("92eb5ffee6ae2fec3ad71c777531578f")
)

type fakeTimes struct {
	local, remote       time.Time
	localErr, remoteErr error
	calls               int
}

func (f *fakeTimes) LocalModTime(context.Context) (time.Time, error) {
	f.calls++
	return f.local, f.localErr
}

func (f *fakeTimes) RemoteModTime(context.Context) (time.Time, error) {
	f.calls++
	return f.remote, f.remoteErr
}

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestDecide_EqualFingerprintsIgnoreTimes(t *testing.T) {
	times := &fakeTimes{
		local:    at("2022-04-10T08:03:46Z"),
		remote:   at("2022-04-10T08:03:45Z"),
		localErr: errors.New("must not be called"),
	}

	eval, err := New(0).Decide(context.Background(), fpA, fpA, times)
	require.NoError(t, err)
	assert.Equal(t, types.NoActionNeeded, eval.Decision)
	assert.False(t, eval.TimesCompared)
	assert.Zero(t, times.calls)
}

func TestDecide_MissingLocalBootstraps(t *testing.T) {
	times := &fakeTimes{localErr: errors.New("must not be called")}

	eval, err := New(0).Decide(context.Background(), types.NoFingerprint, fpA, times)
	require.NoError(t, err)
	assert.Equal(t, types.SyncRemoteToLocal, eval.Decision)
	assert.Zero(t, times.calls)
}

func TestDecide_TimeOrdering(t *testing.T) {
	tests := []struct {
		name   string
		local  string
		remote string
		want   types.Decision
	}{
		{"local newer", "2022-04-10T08:05:00Z", "2022-04-10T08:03:16Z", types.SyncLocalToRemote},
		{"remote newer", "2022-04-10T08:03:16Z", "2022-04-10T09:00:00Z", types.SyncRemoteToLocal},
		{"local newer by exactly the threshold", "2022-04-10T08:03:46Z", "2022-04-10T08:03:16Z", types.SyncLocalToRemote},
		{"remote newer by exactly the threshold", "2022-04-10T08:03:16Z", "2022-04-10T08:03:46Z", types.SyncRemoteToLocal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			times := &fakeTimes{local: at(tt.local), remote: at(tt.remote)}

			eval, err := New(0).Decide(context.Background(), fpA, fpB, times)
			require.NoError(t, err)
			assert.Equal(t, tt.want, eval.Decision)
			assert.True(t, eval.TimesCompared)
			assert.GreaterOrEqual(t, eval.Delta, DefaultThreshold)
		})
	}
}

func TestDecide_AmbiguousConflict(t *testing.T) {
	tests := []struct {
		name   string
		local  string
		remote string
		delta  time.Duration
	}{
		{"identical times", "2022-04-10T08:03:16Z", "2022-04-10T08:03:16Z", 0},
		{"just under the threshold", "2022-04-10T08:03:45.999Z", "2022-04-10T08:03:16Z", 29999 * time.Millisecond},
		{"remote slightly newer", "2022-04-10T08:03:16Z", "2022-04-10T08:03:26Z", 10 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			times := &fakeTimes{local: at(tt.local), remote: at(tt.remote)}

			eval, err := New(0).Decide(context.Background(), fpA, fpB, times)
			require.Error(t, err)
			assert.ErrorIs(t, err, types.ErrAmbiguousConflict)
			assert.Equal(t, tt.delta, eval.Delta)

			var typed *types.Error
			require.ErrorAs(t, err, &typed)
			assert.Equal(t, tt.delta, typed.Delta)
		})
	}
}

func TestDecide_PropagatesTimeErrors(t *testing.T) {
	localErr := &types.Error{Kind: types.KindLocalModTimeUnavailable, Path: "a", Err: errors.New("gone")}
	_, err := New(0).Decide(context.Background(), fpA, fpB, &fakeTimes{localErr: localErr})
	assert.ErrorIs(t, err, types.ErrLocalModTimeUnavailable)

	remoteErr := &types.Error{Kind: types.KindRemoteModTimeUnavailable, Path: "gdrive:a"}
	_, err = New(0).Decide(context.Background(), fpA, fpB, &fakeTimes{remoteErr: remoteErr})
	assert.ErrorIs(t, err, types.ErrRemoteModTimeUnavailable)
}

func TestDecide_CustomThreshold(t *testing.T) {
	times := &fakeTimes{local: at("2022-04-10T08:03:26Z"), remote: at("2022-04-10T08:03:16Z")}

	eval, err := New(5*time.Second).Decide(context.Background(), fpA, fpB, times)
	require.NoError(t, err)
	assert.Equal(t, types.SyncLocalToRemote, eval.Decision)

	var zero Engine
	_, err = zero.Decide(context.Background(), fpA, fpB, times)
	assert.ErrorIs(t, err, types.ErrAmbiguousConflict)

	assert.Equal(t, DefaultThreshold, New(0).Threshold)
	assert.Equal(t, DefaultThreshold, New(-time.Second).Threshold)
}

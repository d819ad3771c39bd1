package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"reviewking/internal/domain"
)

func TestSessionLifecycle(t *testing.T) {
	svc := NewSessionService(newStubCache(), time.Hour)
	ctx := context.Background()

	sess, err := svc.Start(ctx, "", "777", domain.PlatformAliExpress)
	require.NoError(t, err)
	require.NotEmpty(t, sess.ID, "id generated when caller omits one")
	require.Equal(t, "777", sess.ProductID)
	require.Zero(t, sess.ImportedCount)

	got, ok, err := svc.Get(ctx, sess.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, sess.ProductID, got.ProductID)

	require.NoError(t, svc.RecordImports(ctx, sess.ID, 3))
	require.NoError(t, svc.RecordImports(ctx, sess.ID, 2))
	got, _, err = svc.Get(ctx, sess.ID)
	require.NoError(t, err)
	require.Equal(t, 5, got.ImportedCount)
}

func TestSessionCallerSuppliedID(t *testing.T) {
	svc := NewSessionService(newStubCache(), time.Hour)

	sess, err := svc.Start(context.Background(), "ext-42", "777", domain.PlatformAmazon)
	require.NoError(t, err)
	require.Equal(t, "ext-42", sess.ID)
}

func TestRecordImportsUnknownSession(t *testing.T) {
	svc := NewSessionService(newStubCache(), time.Hour)

	// imports without a tracked session are still valid
	require.NoError(t, svc.RecordImports(context.Background(), "ghost", 2))
	require.NoError(t, svc.RecordImports(context.Background(), "", 2))
}

func TestSkipSet(t *testing.T) {
	svc := NewSessionService(newStubCache(), time.Hour)
	ctx := context.Background()

	require.Error(t, svc.Skip(ctx, "", "r1"))
	require.Error(t, svc.Skip(ctx, "s1", ""))

	require.NoError(t, svc.Skip(ctx, "s1", "r1"))
	require.NoError(t, svc.Skip(ctx, "s1", "r2"))
	require.NoError(t, svc.Skip(ctx, "s1", "r1"))

	skipped, err := svc.Skipped(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, skipped, 2)
	require.Contains(t, skipped, "r1")
	require.Contains(t, skipped, "r2")

	other, err := svc.Skipped(ctx, "s2")
	require.NoError(t, err)
	require.Empty(t, other, "skip sets are per session")

	none, err := svc.Skipped(ctx, "")
	require.NoError(t, err)
	require.Nil(t, none)
}

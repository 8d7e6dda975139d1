package chat_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	model "github.com/zhouzirui/contrario/internal/model/chat"
	"github.com/zhouzirui/contrario/internal/model/persona"
	chat "github.com/zhouzirui/contrario/internal/service/chat"
)

func TestServiceEnsureSessionCreatesOnce(t *testing.T) {
	svc := chat.NewService()
	ctx := context.Background()

	first, err := svc.EnsureSession(ctx, "abc", persona.Pirata)
	require.NoError(t, err)
	assert.Equal(t, "abc", first.ID)
	assert.Equal(t, string(persona.Pirata), first.PersonaID)

	second, err := svc.EnsureSession(ctx, "abc", persona.Alieno)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestServiceEnsureSessionRequiresID(t *testing.T) {
	svc := chat.NewService()
	_, err := svc.EnsureSession(context.Background(), "", persona.Bastian)
	assert.ErrorIs(t, err, chat.ErrSessionRequired)
}

func TestServiceAppendExchangeUnknownSession(t *testing.T) {
	svc := chat.NewService()
	err := svc.AppendExchange(context.Background(), "missing", "hi", "hello")
	assert.ErrorIs(t, err, chat.ErrSessionNotFound)
}

func TestServiceLoadWindowKeepsMostRecent(t *testing.T) {
	svc := chat.NewService()
	ctx := context.Background()

	_, err := svc.EnsureSession(ctx, "s1", persona.Bastian)
	require.NoError(t, err)
	for i := 0; i < 6; i++ {
		require.NoError(t, svc.AppendExchange(ctx, "s1", fmt.Sprintf("u%d", i), fmt.Sprintf("a%d", i)))
	}

	window, err := svc.LoadWindow(ctx, "s1", 4)
	require.NoError(t, err)
	assert.Equal(t, []model.Turn{
		model.UserTurn("u4"), model.AssistantTurn("a4"),
		model.UserTurn("u5"), model.AssistantTurn("a5"),
	}, window)

	all, err := svc.LoadWindow(ctx, "s1", 0)
	require.NoError(t, err)
	assert.Len(t, all, 12)
}

func TestServiceLoadTranscriptReturnsCopy(t *testing.T) {
	svc := chat.NewService()
	ctx := context.Background()

	_, err := svc.EnsureSession(ctx, "s1", persona.Bastian)
	require.NoError(t, err)
	require.NoError(t, svc.AppendExchange(ctx, "s1", "hi", "no"))

	transcript, err := svc.LoadTranscript(ctx, "s1")
	require.NoError(t, err)
	transcript[0].Content = "mutated"

	again, err := svc.LoadTranscript(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "hi", again[0].Content)
	assert.NotEmpty(t, again[0].ID)
}

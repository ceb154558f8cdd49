package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"martapp/kiosk/internal/blob"
	"martapp/kiosk/internal/model"
	"martapp/kiosk/internal/repository"
)

func newTestChat(t *testing.T, generate GenerateFunc) ChatService {
	t.Helper()
	logger := zap.NewNop()
	kv := repository.NewMemoryKVStore()
	blobs := repository.NewMemoryBlobStore()
	resolver := blob.NewResolver(blobs, logger, t.TempDir())
	t.Cleanup(resolver.ReleaseAll)

	catalog := NewCatalogService(kv, blobs, resolver, logger)
	catalog.Load(context.Background())
	t.Cleanup(catalog.Close)

	svc := NewChatService(kv, catalog, generate, logger)
	svc.Load(context.Background())
	t.Cleanup(svc.Close)
	return svc
}

func TestSendAppendsBothTurns(t *testing.T) {
	svc := newTestChat(t, func(ctx context.Context, prompt string) (string, error) {
		return "Boa pergunta! Foque nos itens com estoque baixo.", nil
	})

	reply, err := svc.Send(context.Background(), "O que devo promover?")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if reply.Role != model.RoleModel {
		t.Fatalf("reply role = %q, want model", reply.Role)
	}

	history := svc.History()
	if len(history) != 2 {
		t.Fatalf("len(History()) = %d, want 2", len(history))
	}
	if history[0].Role != model.RoleUser || history[0].Content != "O que devo promover?" {
		t.Fatalf("history[0] = %+v, want the user turn", history[0])
	}
	if history[1] != reply {
		t.Fatalf("history[1] = %+v, want the returned reply", history[1])
	}
}

func TestSendCarriesInventoryInPrompt(t *testing.T) {
	var gotPrompt string
	svc := newTestChat(t, func(ctx context.Context, prompt string) (string, error) {
		gotPrompt = prompt
		return "ok", nil
	})

	if _, err := svc.Send(context.Background(), "oi"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !strings.Contains(gotPrompt, "Marta Maia") {
		t.Fatal("prompt is missing the persona")
	}
	if !strings.Contains(gotPrompt, "Dados do Estoque") || !strings.Contains(gotPrompt, `"stock"`) {
		t.Fatal("prompt is missing the inventory snapshot")
	}
	if !strings.Contains(gotPrompt, "Usuário: oi") {
		t.Fatal("prompt is missing the user message")
	}
}

func TestSendFailureProducesApology(t *testing.T) {
	svc := newTestChat(t, func(ctx context.Context, prompt string) (string, error) {
		return "", errors.New("upstream down")
	})

	reply, err := svc.Send(context.Background(), "oi")
	if err != nil {
		t.Fatalf("Send must not surface generation failures, got %v", err)
	}
	if reply.Role != model.RoleModel || !strings.Contains(reply.Content, "Desculpe") {
		t.Fatalf("reply = %+v, want the apology message", reply)
	}

	// Both the user turn and the apology are part of the history.
	if history := svc.History(); len(history) != 2 {
		t.Fatalf("len(History()) = %d, want 2", len(history))
	}
}

func TestSendStripsMarkdownBold(t *testing.T) {
	svc := newTestChat(t, func(ctx context.Context, prompt string) (string, error) {
		return "Foque em **jaquetas** e **calças**.", nil
	})

	reply, err := svc.Send(context.Background(), "oi")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if reply.Content != "Foque em jaquetas e calças." {
		t.Fatalf("reply = %q, want bold markers stripped", reply.Content)
	}
}

func TestSendRejectsEmptyMessage(t *testing.T) {
	svc := newTestChat(t, func(ctx context.Context, prompt string) (string, error) {
		t.Fatal("generate must not be called for an empty message")
		return "", nil
	})

	if _, err := svc.Send(context.Background(), "   "); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("Send error = %v, want ErrEmptyMessage", err)
	}
	if len(svc.History()) != 0 {
		t.Fatal("empty message must not reach the history")
	}
}

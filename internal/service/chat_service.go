package service

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"martapp/kiosk/internal/binding"
	"martapp/kiosk/internal/model"
	"martapp/kiosk/internal/repository"
)

// GenerateFunc produces text for a prompt. The production implementation is
// the genai client; tests inject fakes.
type GenerateFunc func(ctx context.Context, prompt string) (string, error)

// apologyMessage is shown in place of a model reply when generation fails.
// The conversation continues.
const apologyMessage = "Desculpe, estou com dificuldades para me conectar. Tente novamente mais tarde."

var boldRe = regexp.MustCompile(`\*\*(.*?)\*\*`)

const personaPrompt = `Persona e Base de Conhecimento para a IA "Marta Maia".

Sua Identidade:
- Você é "Marta Maia", uma IA de elite para consultoria de varejo de moda.
- Sua missão é transformar gerentes de loja em líderes premiados, usando dados em tempo real e as melhores práticas do setor.
- Você foi treinada com base nos princípios de liderança de executivos como Angela Ahrendts e Francesca Bellettini.

Seu Comportamento e Tom:
- Proativa e Orientadora: Guie, ensine e provoque o pensamento estratégico.
- Inspiradora: Use exemplos concretos dos líderes mencionados.
- Concisa e Acionável: Suas respostas devem ser curtas, diretas e terminar com uma sugestão clara ou pergunta.
- IMPORTANTE: Responda sempre em texto puro, sem usar formatação como asteriscos, crases ou qualquer outro tipo de markdown. Fale de forma natural.

Dados em Tempo Real:
- Use os seguintes dados de estoque para TODAS as suas recomendações:
- Dados do Estoque: %s`

// ChatService runs the assistant conversation over a persistent history.
type ChatService interface {
	Load(ctx context.Context)
	Close()

	History() []model.ChatMessage
	Send(ctx context.Context, content string) (model.ChatMessage, error)
}

type chatService struct {
	generate GenerateFunc
	catalog  CatalogService
	logger   *zap.Logger

	history *binding.Cell[[]model.ChatMessage]
}

func NewChatService(kv repository.KVStore, catalog CatalogService, generate GenerateFunc, logger *zap.Logger) ChatService {
	return &chatService{
		generate: generate,
		catalog:  catalog,
		logger:   logger,
		history:  binding.New[[]model.ChatMessage](kv, logger, "chatHistory", nil),
	}
}

func (s *chatService) Load(ctx context.Context) { s.history.Load(ctx) }

func (s *chatService) Close() { s.history.Close() }

func (s *chatService) History() []model.ChatMessage { return s.history.Get() }

// Send appends the user message, asks the assistant, and appends its reply.
// A generation failure produces the canned apology instead of an error
// surfacing to the kiosk; the returned message is whatever was appended.
func (s *chatService) Send(ctx context.Context, content string) (model.ChatMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return model.ChatMessage{}, ErrEmptyMessage
	}

	s.append(model.ChatMessage{Role: model.RoleUser, Content: content})

	reply, err := s.generate(ctx, s.buildPrompt(content))
	if err != nil {
		s.logger.Warn("assistant generation failed", zap.Error(err))
		apology := model.ChatMessage{Role: model.RoleModel, Content: apologyMessage}
		s.append(apology)
		return apology, nil
	}

	message := model.ChatMessage{
		Role:    model.RoleModel,
		Content: strings.TrimSpace(boldRe.ReplaceAllString(reply, "$1")),
	}
	s.append(message)
	return message, nil
}

func (s *chatService) append(message model.ChatMessage) {
	s.history.Update(func(history []model.ChatMessage) []model.ChatMessage {
		return append(append([]model.ChatMessage(nil), history...), message)
	})
}

func (s *chatService) buildPrompt(content string) string {
	inventory, err := json.Marshal(model.Snapshot(s.catalog.Products()))
	if err != nil {
		inventory = []byte("[]")
	}
	context := fmt.Sprintf(personaPrompt, inventory)
	return fmt.Sprintf("%s\n\nUsuário: %s", context, content)
}

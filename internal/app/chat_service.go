package app

import (
	"context"
	"errors"
	"strings"

	"gopherchat/internal/ai"
	"gopherchat/internal/model"
	"gopherchat/internal/repository"
)

var (
	ErrChatNotFound = errors.New("chat not found")
	ErrMessageEmpty = errors.New("message content is empty")
)

// transcriptWindow caps how many stored messages are relayed to the
// completion provider per turn.
const transcriptWindow = 100

// cacheWindow is the listing window the history cache holds per chat: the
// skip=0 page at the default limit.
const cacheWindow = 100

type Completer interface {
	Complete(ctx context.Context, cfg ai.ChatConfig, messages []ai.ChatMessage) (string, error)
}

type HistoryCache interface {
	GetHistory(ctx context.Context, chatID uint) ([]model.Message, bool, error)
	SetHistory(ctx context.Context, chatID uint, messages []model.Message) error
	DeleteHistory(ctx context.Context, chatID uint) error
	MarkDirty(ctx context.Context, chatID uint) error
	IsDirty(ctx context.Context, chatID uint) (bool, error)
}

type ChatService struct {
	chatRepo     *repository.ChatRepository
	messageRepo  *repository.MessageRepository
	historyCache HistoryCache
	completer    Completer
	llm          ai.ChatConfig
}

type CreateChatInput struct {
	UserID uint
	Title  string
}

type SendMessageInput struct {
	UserID  uint
	ChatID  uint
	Role    string
	Content string
}

func NewChatService(
	chatRepo *repository.ChatRepository,
	messageRepo *repository.MessageRepository,
	historyCache HistoryCache,
	completer Completer,
	llm ai.ChatConfig,
) *ChatService {
	return &ChatService{
		chatRepo:     chatRepo,
		messageRepo:  messageRepo,
		historyCache: historyCache,
		completer:    completer,
		llm:          llm,
	}
}

func (s *ChatService) CreateChat(input CreateChatInput) (*model.Chat, error) {
	if input.UserID == 0 {
		return nil, ErrInvalidInput
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrInvalidInput
	}

	chat := &model.Chat{
		UserID:   input.UserID,
		Title:    title,
		Messages: []model.Message{},
	}
	if err := s.chatRepo.Create(chat); err != nil {
		return nil, err
	}
	return chat, nil
}

func (s *ChatService) ListChats(userID uint, skip, limit int) ([]model.Chat, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	chats, err := s.chatRepo.ListByUserID(userID, skip, limit)
	if err != nil {
		return nil, err
	}
	if chats == nil {
		chats = []model.Chat{}
	}
	for i := range chats {
		if chats[i].Messages == nil {
			chats[i].Messages = []model.Message{}
		}
	}
	return chats, nil
}

// SendMessage runs one conversation turn: store the caller's message, relay
// the chat's transcript to the completion provider, store and return the
// assistant's reply. The caller's message stays committed even when the
// provider call fails.
func (s *ChatService) SendMessage(ctx context.Context, input SendMessageInput) (*model.Message, error) {
	if input.UserID == 0 || input.ChatID == 0 {
		return nil, ErrInvalidInput
	}
	role := strings.TrimSpace(input.Role)
	content := strings.TrimSpace(input.Content)
	if role == "" {
		return nil, ErrInvalidInput
	}
	if content == "" {
		return nil, ErrMessageEmpty
	}

	chat, err := s.chatRepo.GetByIDAndUserID(input.ChatID, input.UserID)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, ErrChatNotFound
	}

	s.invalidateHistory(ctx, input.ChatID)
	userMessage := &model.Message{
		ChatID:  input.ChatID,
		Role:    role,
		Content: content,
	}
	if err := s.messageRepo.Create(userMessage); err != nil {
		return nil, err
	}

	transcript, err := s.messageRepo.ListByChatID(input.ChatID, 0, transcriptWindow)
	if err != nil {
		return nil, err
	}
	prompt := make([]ai.ChatMessage, 0, len(transcript))
	for _, item := range transcript {
		prompt = append(prompt, ai.ChatMessage{Role: item.Role, Content: item.Content})
	}

	reply, err := s.completer.Complete(ctx, s.llm, prompt)
	if err != nil {
		return nil, err
	}

	s.invalidateHistory(ctx, input.ChatID)
	assistantMessage := &model.Message{
		ChatID:  input.ChatID,
		Role:    "assistant",
		Content: reply,
	}
	if err := s.messageRepo.Create(assistantMessage); err != nil {
		return nil, err
	}
	return assistantMessage, nil
}

func (s *ChatService) ListMessages(ctx context.Context, userID, chatID uint, skip, limit int) ([]model.Message, error) {
	if userID == 0 || chatID == 0 {
		return nil, ErrInvalidInput
	}

	chat, err := s.chatRepo.GetByIDAndUserID(chatID, userID)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, ErrChatNotFound
	}

	if skip < 0 {
		skip = 0
	}
	if limit < 0 {
		limit = 0
	}

	if s.historyCache != nil && skip == 0 && limit <= cacheWindow {
		if dirty, dirtyErr := s.historyCache.IsDirty(ctx, chatID); dirtyErr == nil && !dirty {
			if cached, hit, cacheErr := s.historyCache.GetHistory(ctx, chatID); cacheErr == nil && hit {
				if limit < len(cached) {
					cached = cached[:limit]
				}
				return cached, nil
			}
		}
	}

	messages, err := s.messageRepo.ListByChatID(chatID, skip, limit)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []model.Message{}
	}

	// A write landing between this dirty check and SetHistory can leave a
	// stale snapshot cached until historyTTL expires; the dirty marker's TTL
	// bounds that window.
	if s.historyCache != nil && skip == 0 && limit == cacheWindow {
		if dirty, dirtyErr := s.historyCache.IsDirty(ctx, chatID); dirtyErr == nil && !dirty {
			_ = s.historyCache.SetHistory(ctx, chatID, messages)
		}
	}
	return messages, nil
}

// invalidateHistory drops the cached listing before a write lands. Cache
// errors are deliberately ignored; the database stays authoritative.
func (s *ChatService) invalidateHistory(ctx context.Context, chatID uint) {
	if s.historyCache == nil {
		return
	}
	_ = s.historyCache.MarkDirty(ctx, chatID)
	_ = s.historyCache.DeleteHistory(ctx, chatID)
}

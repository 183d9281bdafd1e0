package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramOpts параметры необходимые для инициализации сервиса TelegramBotService.
// ChatID получает рассылку всегда, помимо подписчиков.
type TelegramOpts struct {
	Enabled bool   `mapstructure:"enabled"`
	Token   string `mapstructure:"token" validate:"required_if=Enabled true"`
	ChatID  int64  `mapstructure:"chat_id"`
	Message string `mapstructure:"message"`
}

// ChatStore хранилище подписанных на рассылку чатов.
type ChatStore interface {
	SaveChat(ctx context.Context, chatID int64, title string) error
	RemoveChat(ctx context.Context, chatID int64) error
	ListChats(ctx context.Context) ([]int64, error)
}

type telegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramBotService сервис предназначенный для взаимодействия с telegram.
type TelegramBotService struct {
	opts      TelegramOpts
	logger    *slog.Logger
	bot       *tgbotapi.BotAPI
	sender    telegramSender
	chats     ChatStore
	dashboard *DashboardService
}

// NewTelegramBot создает экземпляр сервиса для работы с telegram ботом.
func NewTelegramBot(opts TelegramOpts, chats ChatStore, dashboard *DashboardService, logger *slog.Logger) (*TelegramBotService, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if opts.Token == "" {
		return nil, fmt.Errorf("telegram bot token is required")
	}

	bot, err := tgbotapi.NewBotAPI(opts.Token)
	if err != nil {
		logger.Error("Failed to create Telegram bot", "error", err)
		return nil, fmt.Errorf("create Telegram bot: %w", err)
	}

	logger.Info("Telegram bot created successfully",
		"bot_user", bot.Self.UserName,
		"chat_id", opts.ChatID,
	)
	return newTelegramBotService(opts, bot, bot, chats, dashboard, logger)
}

func newTelegramBotService(
	opts TelegramOpts,
	bot *tgbotapi.BotAPI,
	sender telegramSender,
	chats ChatStore,
	dashboard *DashboardService,
	logger *slog.Logger,
) (*TelegramBotService, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if chats == nil {
		return nil, fmt.Errorf("chat store is required")
	}
	if dashboard == nil {
		return nil, fmt.Errorf("dashboard service is required")
	}
	return &TelegramBotService{
		opts:      opts,
		logger:    logger,
		bot:       bot,
		sender:    sender,
		chats:     chats,
		dashboard: dashboard,
	}, nil
}

// Start принимает команды бота до отмены контекста.
func (s *TelegramBotService) Start(ctx context.Context) {
	if s.bot == nil {
		return
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := s.bot.GetUpdatesChan(u)

	s.logger.Info("Telegram bot listening for commands")
	for {
		select {
		case <-ctx.Done():
			s.bot.StopReceivingUpdates()
			s.logger.Info("Telegram bot stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			msg := update.Message
			if msg == nil || !msg.IsCommand() {
				continue
			}

			reply := s.handleCommand(ctx, msg.Chat.ID, chatTitle(msg.Chat), msg.Command())
			if reply == "" {
				continue
			}
			if _, err := s.sender.Send(tgbotapi.NewMessage(msg.Chat.ID, reply)); err != nil {
				s.logger.Error("Failed to reply", "chat_id", msg.Chat.ID, "error", err)
			}
		}
	}
}

// handleCommand выполняет команду и возвращает текст ответа.
func (s *TelegramBotService) handleCommand(ctx context.Context, chatID int64, title, command string) string {
	switch command {
	case "start", "help":
		return "Commands: /shift shows today's shifts, /subscribe enables the daily digest, /unsubscribe disables it."
	case "subscribe":
		if err := s.chats.SaveChat(ctx, chatID, title); err != nil {
			return "Failed to subscribe, try again later."
		}
		return "Subscribed to the daily shift digest."
	case "unsubscribe":
		if err := s.chats.RemoveChat(ctx, chatID); err != nil {
			return "Failed to unsubscribe, try again later."
		}
		return "Unsubscribed from the daily shift digest."
	case "shift":
		return FormatDigest(s.dashboard.View(s.dashboard.Now()))
	default:
		return ""
	}
}

// recipients чат из конфигурации и все подписчики без повторов.
func (s *TelegramBotService) recipients(ctx context.Context) ([]int64, error) {
	ids, err := s.chats.ListChats(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]bool)
	var result []int64
	if s.opts.ChatID != 0 {
		seen[s.opts.ChatID] = true
		result = append(result, s.opts.ChatID)
	}
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			result = append(result, id)
		}
	}
	return result, nil
}

// Broadcast отправляет текст всем получателям рассылки.
func (s *TelegramBotService) Broadcast(ctx context.Context, text string) error {
	return s.sendAll(ctx, func(chatID int64) tgbotapi.Chattable {
		return tgbotapi.NewMessage(chatID, text)
	})
}

// SendFile отправляет файл по переданному пути всем получателям рассылки.
func (s *TelegramBotService) SendFile(ctx context.Context, path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			s.logger.Error("File not found", "path", path, "error", err)
			return fmt.Errorf("file not found at %q: %w", path, err)
		}
		s.logger.Error("Failed to access file", "path", path, "error", err)
		return fmt.Errorf("access file at %q: %w", path, err)
	}

	return s.sendAll(ctx, func(chatID int64) tgbotapi.Chattable {
		msg := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(path))
		msg.Caption = s.opts.Message
		return msg
	})
}

func (s *TelegramBotService) sendAll(ctx context.Context, build func(chatID int64) tgbotapi.Chattable) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	ids, err := s.recipients(ctx)
	if err != nil {
		return fmt.Errorf("list recipients: %w", err)
	}
	if len(ids) == 0 {
		s.logger.Info("No telegram recipients, nothing to send")
		return nil
	}

	var errs []error
	for _, id := range ids {
		if _, err := s.sender.Send(build(id)); err != nil {
			s.logger.Error("Failed to send message", "chat_id", id, "error", err)
			errs = append(errs, fmt.Errorf("send to %d: %w", id, err))
			continue
		}
		s.logger.Info("Message sent successfully", "chat_id", id)
	}
	return errors.Join(errs...)
}

func chatTitle(chat *tgbotapi.Chat) string {
	if chat == nil {
		return ""
	}
	if chat.Title != "" {
		return chat.Title
	}
	return strings.TrimSpace(chat.FirstName + " " + chat.LastName)
}

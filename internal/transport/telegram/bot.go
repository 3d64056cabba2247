package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/mcoot/baldagame/internal/model"
	"github.com/mcoot/baldagame/internal/services/game"
	"github.com/mcoot/baldagame/internal/services/lobby"
)

// Sender is the part of the Bot API used to talk to chats
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot plays Balda in Telegram group chats. Each chat holds at most one
// game; moves are typed as "letter word" and directions are buttons.
type Bot struct {
	sender   Sender
	api      *tgbotapi.BotAPI
	username string
	lobbies  lobby.ControllerInterface
	games    game.ControllerInterface
	logger   *slog.Logger
}

// New connects to the Bot API with the given token
func New(token string, debug bool, lobbies lobby.ControllerInterface, games game.ControllerInterface, logger *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connect to telegram: %w", err)
	}
	api.Debug = debug

	b := NewWithSender(api, api.Self.UserName, lobbies, games, logger)
	b.api = api
	return b, nil
}

// NewWithSender creates a bot that talks through the given sender. It can
// handle updates but not poll for them.
func NewWithSender(sender Sender, username string, lobbies lobby.ControllerInterface, games game.ControllerInterface, logger *slog.Logger) *Bot {
	return &Bot{
		sender:   sender,
		username: username,
		lobbies:  lobbies,
		games:    games,
		logger:   logger,
	}
}

// Run long-polls for updates until ctx is done
func (b *Bot) Run(ctx context.Context) error {
	if b.api == nil {
		return errors.New("bot has no api connection")
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)
	b.logger.Info("telegram bot started", slog.String("username", b.username))

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.logger.Info("telegram bot stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.HandleUpdate(ctx, update)
		}
	}
}

// HandleUpdate processes one update
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.From != nil:
		if update.Message.IsCommand() {
			b.handleCommand(ctx, update.Message)
			return
		}
		b.handleText(ctx, update.Message)
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	args := strings.TrimSpace(msg.CommandArguments())

	switch msg.Command() {
	case "newgame":
		b.newGame(ctx, msg)
	case "join":
		b.join(ctx, msg, args)
	case "start":
		if args == "" {
			b.reply(msg, helpText, nil)
			return
		}
		b.join(ctx, msg, args)
	case "startgame":
		b.startGame(ctx, msg, args)
	case "quit":
		b.quit(ctx, msg)
	case "state":
		b.state(ctx, msg)
	case "help":
		b.reply(msg, helpText, nil)
	}
}

func (b *Bot) newGame(ctx context.Context, msg *tgbotapi.Message) {
	if msg.Chat.IsPrivate() {
		b.reply(msg, "Игру создают в групповом чате.", nil)
		return
	}

	g, err := b.lobbies.CreateLobby(ctx, profileFor(msg.From), chatKey(msg))
	if err != nil {
		b.replyError(msg, err)
		return
	}

	text := fmt.Sprintf("Лобби создано! Код: %s\nПрисоединяйтесь командой /join или по кнопке ниже. Ведущий начинает игру командой /startgame.", g.JoinCode)
	keyboard := lobbyKeyboard(g.ID, b.username, g.JoinCode)
	b.reply(msg, text, &keyboard)
}

func (b *Bot) join(ctx context.Context, msg *tgbotapi.Message, code string) {
	if code == "" {
		g, err := b.lobbies.FindByChat(ctx, chatKey(msg))
		if err != nil {
			b.replyError(msg, err)
			return
		}
		code = g.JoinCode
	}

	g, err := b.lobbies.Join(ctx, code, profileFor(msg.From))
	if err != nil {
		b.replyError(msg, err)
		return
	}

	// The join is announced in the game's own chat
	if g.Chat != chatKey(msg) {
		b.reply(msg, "Вы в игре! Возвращайтесь в общий чат.", nil)
	}
}

func (b *Bot) startGame(ctx context.Context, msg *tgbotapi.Message, letter string) {
	g, err := b.lobbies.FindByChat(ctx, chatKey(msg))
	if err != nil {
		b.replyError(msg, err)
		return
	}
	if _, err := b.lobbies.Start(ctx, g.ID, playerID(msg.From), letter); err != nil {
		b.replyError(msg, err)
	}
}

func (b *Bot) quit(ctx context.Context, msg *tgbotapi.Message) {
	g, err := b.lobbies.FindByChat(ctx, chatKey(msg))
	if err != nil {
		b.replyError(msg, err)
		return
	}
	if _, err := b.lobbies.Leave(ctx, g.ID, playerID(msg.From)); err != nil {
		b.replyError(msg, err)
	}
}

func (b *Bot) state(ctx context.Context, msg *tgbotapi.Message) {
	g, err := b.lobbies.FindByChat(ctx, chatKey(msg))
	if err != nil {
		b.replyError(msg, err)
		return
	}
	b.reply(msg, RenderState(g), nil)
}

// handleText treats a message from the current player as a move. Other
// chatter is ignored.
func (b *Bot) handleText(ctx context.Context, msg *tgbotapi.Message) {
	if msg.Chat.IsPrivate() || msg.Text == "" {
		return
	}

	g, err := b.lobbies.FindByChat(ctx, chatKey(msg))
	if err != nil {
		return
	}
	player := playerID(msg.From)
	if g.Phase != model.PhaseAwaitingMove || g.CurrentPlayerID != player {
		return
	}

	move, ok := DecodeMove(msg.Text, g.ID, player)
	if !ok {
		b.reply(msg, "Формат хода: буква слово, например «к кот».", nil)
		return
	}
	if _, err := b.games.Handle(ctx, move); err != nil {
		b.replyError(msg, err)
	}
}

func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	player := playerID(query.From)

	event, err := DecodeCallback(query.Data, player)
	if err == nil {
		if start, ok := event.(model.StartMatch); ok {
			_, err = b.lobbies.Start(ctx, start.GameID, player, "")
		} else {
			_, err = b.games.Handle(ctx, event)
		}
	}

	answer := ""
	if err != nil {
		answer = errorText(err)
		b.logger.Debug("callback refused",
			slog.String("player_id", string(player)),
			slog.String("data", query.Data),
			slog.String("error", err.Error()),
		)
	}
	if _, err := b.sender.Request(tgbotapi.NewCallback(query.ID, answer)); err != nil {
		b.logger.Warn("failed to answer callback", slog.String("error", err.Error()))
	}
}

// Notify delivers engine effects to the chat of the game
func (b *Bot) Notify(_ context.Context, gameID model.GameID, effects []model.Effect) {
	var (
		chat     model.ChatKey
		texts    []string
		keyboard *tgbotapi.InlineKeyboardMarkup
	)

	for _, e := range effects {
		if e.Chat.IsZero() {
			continue
		}
		chat = e.Chat
		if text := RenderEffect(e); text != "" {
			texts = append(texts, text)
		}
		if p, ok := e.Payload.(model.PromptDirectionPayload); ok {
			kb := directionKeyboard(gameID, p.PassAvailable)
			keyboard = &kb
		}
	}
	if len(texts) == 0 {
		return
	}

	msg := tgbotapi.NewMessage(chat.ChatID, strings.Join(texts, "\n\n"))
	if keyboard != nil {
		msg.ReplyMarkup = *keyboard
	}
	if _, err := b.sender.Send(msg); err != nil {
		b.logger.Error("failed to send effects",
			slog.String("game_id", string(gameID)),
			slog.Int64("chat_id", chat.ChatID),
			slog.String("error", err.Error()),
		)
	}
}

var _ game.Notifier = (*Bot)(nil)

func (b *Bot) reply(msg *tgbotapi.Message, text string, keyboard *tgbotapi.InlineKeyboardMarkup) {
	out := tgbotapi.NewMessage(msg.Chat.ID, text)
	out.ReplyToMessageID = msg.MessageID
	if keyboard != nil {
		out.ReplyMarkup = *keyboard
	}
	if _, err := b.sender.Send(out); err != nil {
		b.logger.Error("failed to send reply",
			slog.Int64("chat_id", msg.Chat.ID),
			slog.String("error", err.Error()),
		)
	}
}

func (b *Bot) replyError(msg *tgbotapi.Message, err error) {
	text := errorText(err)
	if text == "" {
		return
	}
	if !isExpected(err) {
		b.logger.Error("command failed",
			slog.String("command", msg.Command()),
			slog.String("error", err.Error()),
		)
	}
	b.reply(msg, text, nil)
}

// isExpected reports whether err is a domain refusal rather than a fault
func isExpected(err error) bool {
	for _, target := range []error{
		model.ErrInvalidTransition, model.ErrNotYourTurn, model.ErrPassUsed,
		model.ErrAlreadyEliminated, model.ErrInvalidLetter, model.ErrInvalidName,
		model.ErrGameNotFound, model.ErrJoinCodeNotFound, model.ErrAlreadyInGame,
		model.ErrNotInGame, model.ErrNotHost, model.ErrGameInProgress,
		model.ErrValidationRejected,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// chatKey routes a message to its game. The v5 API does not expose forum
// threads, so every game is bound to the whole chat.
func chatKey(msg *tgbotapi.Message) model.ChatKey {
	return model.ChatKey{ChatID: msg.Chat.ID}
}

func playerID(u *tgbotapi.User) model.PlayerID {
	return model.PlayerID(fmt.Sprintf("tg:%d", u.ID))
}

// profileFor derives a game identity from a Telegram user
func profileFor(u *tgbotapi.User) model.Profile {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if len([]rune(name)) < model.MinNameLength && u.UserName != "" {
		name = "@" + u.UserName
	}
	if len([]rune(name)) < model.MinNameLength {
		name = fmt.Sprintf("Игрок %d", u.ID)
	}
	if runes := []rune(name); len(runes) > model.MaxNameLength {
		name = string(runes[:model.MaxNameLength])
	}
	return model.Profile{ID: playerID(u), DisplayName: name}
}

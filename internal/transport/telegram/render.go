package telegram

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/mcoot/baldagame/internal/model"
	"github.com/mcoot/baldagame/internal/services/stats"
)

// recentWords is how many played words the state message lists
const recentWords = 5

// FormatSequence renders the sequence in capitals with the newest letter
// bracketed on the side it was added
func FormatSequence(seq string, last model.Direction) string {
	runes := []rune(strings.ToUpper(seq))
	if len(runes) < 2 {
		return string(runes)
	}
	switch last {
	case model.DirectionLeft:
		return "[" + string(runes[0]) + "]" + string(runes[1:])
	case model.DirectionRight:
		return string(runes[:len(runes)-1]) + "[" + string(runes[len(runes)-1]) + "]"
	}
	return string(runes)
}

func directionName(dir model.Direction) string {
	if dir == model.DirectionLeft {
		return "слева"
	}
	return "справа"
}

func secondsUntil(deadline, from time.Time) int {
	d := deadline.Sub(from).Round(time.Second)
	if d < 0 {
		return 0
	}
	return int(d / time.Second)
}

// RenderEffect turns one effect into message text
func RenderEffect(e model.Effect) string {
	name := e.PlayerName

	switch p := e.Payload.(type) {
	case model.PlayerJoinedPayload:
		return fmt.Sprintf("%s в игре (%d/%d).", name, p.PlayerCount, model.MaxPlayers)
	case model.PlayerLeftPayload:
		if p.NewHostID != "" {
			return fmt.Sprintf("%s покидает лобби. Ведущим становится следующий игрок.", name)
		}
		return fmt.Sprintf("%s покидает лобби.", name)
	case model.MatchStartedPayload:
		return fmt.Sprintf("Игра началась! Игроков: %d. Первая буква: %s.", len(p.Order), strings.ToUpper(p.BaseLetter))
	case model.PromptDirectionPayload:
		text := fmt.Sprintf("Ходит %s.\nПоследовательность: %s\nВыберите, с какой стороны добавить букву. На ход %d с.",
			name, strings.ToUpper(p.Sequence), secondsUntil(p.Deadline, e.Timestamp))
		if p.PassAvailable {
			text += "\nМожно один раз пропустить ход."
		}
		return text
	case model.PromptMovePayload:
		return fmt.Sprintf("%s, добавьте букву %s к %s и назовите слово с этой последовательностью.\nФормат: буква слово",
			name, directionName(p.Direction), strings.ToUpper(p.Sequence))
	case model.TurnPayload:
		return fmt.Sprintf("%s добавляет %s %s (слово «%s»).\nПоследовательность: %s",
			name, strings.ToUpper(p.Record.Letter), directionName(p.Record.Direction), p.Record.Word,
			FormatSequence(p.Sequence, p.Record.Direction))
	case model.PassPayload:
		return fmt.Sprintf("%s пропускает ход.", name)
	case model.RejectionPayload:
		return fmt.Sprintf("%s, ход не принят: %s.", name, rejectionText(p.Reason))
	case model.ReminderPayload:
		return fmt.Sprintf("%s, осталось %d с!", name, int(p.Remaining/time.Second))
	case model.EliminationPayload:
		switch p.Reason {
		case model.ReasonTimedOut:
			return fmt.Sprintf("%s выбывает: время вышло.", name)
		case model.ReasonFormedWord:
			return fmt.Sprintf("%s выбывает: получилось слово «%s».", name, strings.ToUpper(p.Candidate))
		default:
			return fmt.Sprintf("%s сдаётся.", name)
		}
	case model.WinnerPayload:
		return renderWinner(name, p.Stats)
	case model.AbandonedPayload:
		return fmt.Sprintf("Игра отменена: %s.", abandonText(p.Reason))
	}
	return ""
}

func renderWinner(name string, s model.GameStats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Победитель: %s!\n\n", name)
	fmt.Fprintf(&b, "Ходов: %d\n", s.TotalTurns)
	fmt.Fprintf(&b, "Уникальных слов: %d\n", s.UniqueWords)
	fmt.Fprintf(&b, "Длительность: %s\n", stats.FormatDuration(s.Duration))
	fmt.Fprintf(&b, "Последовательность: %s", s.FinalSequence)
	if len(s.Eliminated) > 0 {
		fmt.Fprintf(&b, "\nВыбывали: %s", strings.Join(s.Eliminated, ", "))
	}
	return b.String()
}

func rejectionText(reason model.RejectReason) string {
	switch reason {
	case model.RejectInvalidLetter:
		return "нужна одна русская буква"
	case model.RejectInvalidWord:
		return "слово должно состоять из русских букв"
	case model.RejectUnknownWord:
		return "такого слова нет в словаре"
	case model.RejectWordUsed:
		return "это слово уже было"
	case model.RejectSequenceMismatch:
		return "слово не содержит новую последовательность"
	}
	return string(reason)
}

func abandonText(reason string) string {
	switch reason {
	case "lobby empty":
		return "лобби опустело"
	case "no players left":
		return "не осталось игроков"
	case "replaced by a new lobby":
		return "создано новое лобби"
	}
	return reason
}

// RenderState describes a game for the /state command
func RenderState(g *model.Game) string {
	var b strings.Builder

	if g.Phase == model.PhaseLobby {
		fmt.Fprintf(&b, "Лобби, код %s.\nИгроки:", g.JoinCode)
		for _, p := range g.Roster() {
			b.WriteString("\n• " + p.Name)
			if p.IsHost {
				b.WriteString(" (ведущий)")
			}
		}
		return b.String()
	}

	fmt.Fprintf(&b, "Последовательность: %s\n", FormatSequence(g.Sequence, g.LastDirection))
	if p, ok := g.Player(g.CurrentPlayerID); ok {
		fmt.Fprintf(&b, "Ходит: %s\n", p.Name)
	}
	b.WriteString("Игроки:")
	for _, p := range g.Roster() {
		b.WriteString("\n• " + p.Name)
		switch {
		case p.IsEliminated:
			b.WriteString(" (выбыл)")
		case p.HasPassed:
			b.WriteString(" (пропуск использован)")
		}
	}

	if n := len(g.WordsUsed); n > 0 {
		b.WriteString("\nПоследние слова:")
		for _, rec := range g.WordsUsed[max(0, n-recentWords):] {
			b.WriteString("\n• " + rec.Word)
		}
	}
	return b.String()
}

// directionKeyboard offers both sides and the pass while it is available
func directionKeyboard(gameID model.GameID, passAvailable bool) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("← Слева", EncodeDirection(gameID, model.DirectionLeft)),
			tgbotapi.NewInlineKeyboardButtonData("Справа →", EncodeDirection(gameID, model.DirectionRight)),
		),
	}
	if passAvailable {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Пропустить ход", EncodePass(gameID)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// lobbyKeyboard carries the start button and the deep link for joining
func lobbyKeyboard(gameID model.GameID, botUsername, code string) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Начать игру", EncodeStart(gameID))),
	}
	if botUsername != "" {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("Присоединиться", deepLink(botUsername, code)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func deepLink(botUsername, code string) string {
	return fmt.Sprintf("https://t.me/%s?start=%s", botUsername, code)
}

// errorText explains a refused command to the player. Rejected moves are
// announced by the engine and need no reply.
func errorText(err error) string {
	switch {
	case errors.Is(err, model.ErrValidationRejected):
		return ""
	case errors.Is(err, model.ErrRosterFull):
		return fmt.Sprintf("В игре уже %d игроков.", model.MaxPlayers)
	case errors.Is(err, model.ErrRosterTooSmall):
		return "Нужно хотя бы два игрока."
	case errors.Is(err, model.ErrInvalidTransition):
		return "Сейчас это действие недоступно."
	case errors.Is(err, model.ErrNotYourTurn):
		return "Сейчас не ваш ход."
	case errors.Is(err, model.ErrPassUsed):
		return "Пропуск уже использован."
	case errors.Is(err, model.ErrAlreadyEliminated):
		return "Вы уже выбыли."
	case errors.Is(err, model.ErrInvalidLetter):
		return "Нужна одна русская буква."
	case errors.Is(err, model.ErrInvalidName):
		return "Имя должно быть от 2 до 32 символов."
	case errors.Is(err, model.ErrGameNotFound):
		return "Здесь нет активной игры. Создайте её командой /newgame."
	case errors.Is(err, model.ErrJoinCodeNotFound):
		return "Игра с таким кодом не найдена."
	case errors.Is(err, model.ErrAlreadyInGame):
		return "Вы уже в игре."
	case errors.Is(err, model.ErrNotInGame):
		return "Вы не участвуете в этой игре."
	case errors.Is(err, model.ErrNotHost):
		return "Это может сделать только ведущий."
	case errors.Is(err, model.ErrGameInProgress):
		return "Игра уже идёт."
	}
	return "Что-то пошло не так, попробуйте ещё раз."
}

const helpText = `Балда: игроки по очереди добавляют букву слева или справа, чтобы последовательность оставалась частью настоящего слова.
Кто сам составит слово из трёх и более букв, выбывает.

/newgame - создать лобби
/join [код] - присоединиться
/startgame [буква] - начать игру (ведущий)
/quit - выйти из игры
/state - текущее состояние
/help - эта справка

Ход: выберите сторону кнопкой, затем напишите «буква слово».`

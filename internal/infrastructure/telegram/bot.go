// Package telegram es el transporte del bot: bucle de long polling,
// normalización de updates a eventos del motor y render de prompts como
// teclados inline. No contiene lógica de negocio.
package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/pippoche/svbot/internal/application/flow"
	"github.com/pippoche/svbot/pkg/logger"
)

// Bot une la API de Telegram con el motor de flujos.
type Bot struct {
	api    *tgbotapi.BotAPI
	engine *flow.Engine
	log    *logger.Logger
}

// New autentica el bot contra la API.
func New(token string, engine *flow.Engine, log *logger.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	log.Info().Str("username", api.Self.UserName).Msg("bot autenticado")
	return &Bot{api: api, engine: engine, log: log}, nil
}

// Run consume updates hasta que el contexto se cancele. Cada update se
// atiende en su propia goroutine; la serialización por chat la garantiza el
// almacén de sesiones del motor.
func (b *Bot) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := b.api.GetUpdatesChan(cfg)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case upd, ok := <-updates:
			if !ok {
				return nil
			}
			go b.handle(ctx, upd)
		}
	}
}

func (b *Bot) handle(ctx context.Context, upd tgbotapi.Update) {
	ev, ok := b.event(upd)
	if !ok {
		return
	}
	log := b.log.WithChat(ev.ChatID)
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("pánico atendiendo un update")
		}
	}()

	if upd.CallbackQuery != nil {
		// Telegram exige confirmar el callback para apagar el spinner.
		if _, err := b.api.Request(tgbotapi.NewCallback(upd.CallbackQuery.ID, "")); err != nil {
			log.Warn().Err(err).Msg("no se pudo confirmar el callback")
		}
	}

	prompt := b.engine.Process(ctx, ev)
	if prompt.Text == "" {
		return
	}
	b.send(ev.ChatID, prompt)
}

// event normaliza el update a un evento del motor. Updates sin chat (ediciones,
// miembros, etc.) se descartan.
func (b *Bot) event(upd tgbotapi.Update) (flow.Event, bool) {
	switch {
	case upd.Message != nil:
		ev := flow.Event{ChatID: upd.Message.Chat.ID}
		if upd.Message.From != nil {
			ev.Username = upd.Message.From.UserName
		}
		if upd.Message.IsCommand() {
			ev.Command = upd.Message.Command()
		} else {
			ev.Text = upd.Message.Text
		}
		return ev, true

	case upd.CallbackQuery != nil && upd.CallbackQuery.Message != nil:
		ev := flow.Event{
			ChatID:   upd.CallbackQuery.Message.Chat.ID,
			Username: upd.CallbackQuery.From.UserName,
		}
		ev.Callback = upd.CallbackQuery.Data
		return ev, true
	}
	return flow.Event{}, false
}

func (b *Bot) send(chatID int64, p flow.Prompt) {
	msg := tgbotapi.NewMessage(chatID, p.Text)
	if len(p.Keyboard) > 0 {
		msg.ReplyMarkup = keyboard(p.Keyboard)
	}
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error().Err(err).Int64("chat_id", chatID).Msg("fallo al enviar el mensaje")
	}
}

func keyboard(rows [][]flow.Button) tgbotapi.InlineKeyboardMarkup {
	out := make([][]tgbotapi.InlineKeyboardButton, len(rows))
	for i, row := range rows {
		btns := make([]tgbotapi.InlineKeyboardButton, len(row))
		for j, btn := range row {
			btns[j] = tgbotapi.NewInlineKeyboardButtonData(btn.Label, btn.Data)
		}
		out[i] = btns
	}
	return tgbotapi.NewInlineKeyboardMarkup(out...)
}

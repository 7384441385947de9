package app

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/m3rciful/avatarbot/bot/wizard"
	"github.com/m3rciful/avatarbot/core/telegram/keyboard"

	tele "gopkg.in/telebot.v4"
)

// telebotDelivery implements the wizard's outbound surface over telebot. The
// bot handle is bound when the transport starts; every call is synchronous so
// the engine's ordering guarantees hold.
type telebotDelivery struct {
	mu  sync.RWMutex
	bot *tele.Bot
}

func newTelebotDelivery() *telebotDelivery {
	return &telebotDelivery{}
}

// Bind attaches the running bot. Called once from the transport start hook,
// before any update is handled.
func (d *telebotDelivery) Bind(bot *tele.Bot) {
	d.mu.Lock()
	d.bot = bot
	d.mu.Unlock()
}

func (d *telebotDelivery) sender() (*tele.Bot, error) {
	d.mu.RLock()
	bot := d.bot
	d.mu.RUnlock()
	if bot == nil {
		return nil, fmt.Errorf("delivery: transport not started")
	}
	return bot, nil
}

func (d *telebotDelivery) SendText(chatID int64, text string) error {
	bot, err := d.sender()
	if err != nil {
		return err
	}
	_, err = bot.Send(tele.ChatID(chatID), text)
	return err
}

func (d *telebotDelivery) SendMenu(chatID int64, text string, choices []wizard.Choice) error {
	bot, err := d.sender()
	if err != nil {
		return err
	}
	buttons := make([]keyboard.InlineBtn, 0, len(choices))
	for _, choice := range choices {
		unique, data, _ := strings.Cut(choice.Token, "|")
		buttons = append(buttons, keyboard.InlineBtn{
			Text:   choice.Label,
			Unique: unique,
			Data:   data,
		})
	}
	_, err = bot.Send(tele.ChatID(chatID), text, keyboard.InlineButtonsNPerRow(buttons, 2))
	return err
}

func (d *telebotDelivery) EditAndRemoveMenu(chatID int64, messageID int) error {
	bot, err := d.sender()
	if err != nil {
		return err
	}
	msg := tele.StoredMessage{
		MessageID: strconv.Itoa(messageID),
		ChatID:    chatID,
	}
	if _, err := bot.EditReplyMarkup(msg, keyboard.RemoveInline()); err != nil {
		return err
	}
	return bot.Delete(msg)
}

func (d *telebotDelivery) SendPhoto(chatID int64, data []byte, filename string) error {
	bot, err := d.sender()
	if err != nil {
		return err
	}
	file := tele.FromReader(bytes.NewReader(data))
	_ = filename // telebot.Photo exposes no exported file-name field
	_, err = bot.Send(tele.ChatID(chatID), &tele.Photo{File: file})
	return err
}

func (d *telebotDelivery) SendFile(chatID int64, data []byte, filename string) error {
	bot, err := d.sender()
	if err != nil {
		return err
	}
	file := tele.FromReader(bytes.NewReader(data))
	_, err = bot.Send(tele.ChatID(chatID), &tele.Document{File: file, FileName: filename})
	return err
}

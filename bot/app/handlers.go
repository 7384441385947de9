package app

import (
	"fmt"
	"strings"

	"github.com/m3rciful/avatarbot/bot/wizard"
	"github.com/m3rciful/avatarbot/core/telegram/callbacks"
	"github.com/m3rciful/avatarbot/core/telegram/format"
	tghelpers "github.com/m3rciful/avatarbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

const historyLimit = 10

func chatID(c tele.Context) int64 {
	if chat := c.Chat(); chat != nil {
		return chat.ID
	}
	return 0
}

func (a *App) handleStart(c tele.Context) error {
	return a.engine.Welcome(chatID(c))
}

func (a *App) handleHelp(c tele.Context) error {
	return a.engine.SendCatalogMenu(chatID(c))
}

// handleSelection serves every wizard callback: style commands, format and
// background choices. The raw token is parsed once here; unknown tokens are
// dropped without a reply.
func (a *App) handleSelection(c tele.Context) error {
	token := callbacks.CallbackToken(c)
	sel, ok := wizard.ParseSelection(token)
	if !ok {
		return nil
	}

	menuMessageID := 0
	if msg := c.Message(); msg != nil {
		menuMessageID = msg.ID
	}

	ctx := tghelpers.BuildContext(c)
	return a.engine.HandleSelection(ctx, chatID(c), menuMessageID, sel)
}

// handleHistory lists recent avatar requests for the admin.
func (a *App) handleHistory(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	rows, err := a.history.Recent(ctx, historyLimit)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return tghelpers.SendText(c, "No avatar requests recorded yet.")
	}

	var b strings.Builder
	b.WriteString("*Recent avatar requests*\n")
	for _, r := range rows {
		line := fmt.Sprintf("%s  %s/%s  seed=%s  bg=%s  %s",
			r.CreatedAt.Format("2006-01-02 15:04"),
			r.Style,
			r.Format,
			r.Seed,
			format.DerefString(r.Color, r.Background),
			r.Status,
		)
		b.WriteString(format.EscapeMarkdown(line))
		b.WriteByte('\n')
	}
	return tghelpers.SendMD(c, b.String())
}

// InProgress reports whether the chat has an active wizard, for text routing.
func (a *App) InProgress(chatID int64) bool {
	return a.engine.InProgress(chatID)
}

// HandleUpdate feeds free text into the wizard.
func (a *App) HandleUpdate(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	return a.engine.HandleText(ctx, chatID(c), c.Text())
}

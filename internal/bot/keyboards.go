package bot

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"countdown/internal/model"
	"countdown/internal/service"
)

const maxCategoryButtons = 6

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelNewTimer),
			tgbotapi.NewKeyboardButton(menuLabelTimers),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelCategories),
			tgbotapi.NewKeyboardButton(menuLabelHelp),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = false
	return kb
}

func confirmKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnConfirm),
			tgbotapi.NewKeyboardButton(btnCancel),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func cancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

// alertsKeyboard offers the preset thresholds together and one by one.
func alertsKeyboard() tgbotapi.ReplyKeyboardMarkup {
	all := make([]string, 0, len(model.PresetAlerts))
	var singles []tgbotapi.KeyboardButton
	for _, p := range model.PresetAlerts {
		all = append(all, strconv.Itoa(p))
		singles = append(singles, tgbotapi.NewKeyboardButton(fmt.Sprintf("%d%%", p)))
	}
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(strings.Join(all, ", "))),
		tgbotapi.NewKeyboardButtonRow(singles...),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnSkip),
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

// categoryKeyboard suggests the categories already in use.
func (b *Bot) categoryKeyboard() tgbotapi.ReplyKeyboardMarkup {
	var rows [][]tgbotapi.KeyboardButton
	var row []tgbotapi.KeyboardButton
	for i, c := range b.session.Categories() {
		if i == maxCategoryButtons {
			break
		}
		row = append(row, tgbotapi.NewKeyboardButton(c.Name))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancelDialog)))
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

// timerKeyboard has one row per timer: start or pause, then reset.
func timerKeyboard(timers []model.Timer) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, t := range timers {
		label := service.TruncateText(t.Name, 18)
		var row []tgbotapi.InlineKeyboardButton
		switch t.Status {
		case model.StatusRunning:
			row = append(row, tgbotapi.NewInlineKeyboardButtonData("⏸ "+label, fmt.Sprintf("%s%d", cbPausePrefix, t.ID)))
		case model.StatusPaused:
			row = append(row, tgbotapi.NewInlineKeyboardButtonData("▶️ "+label, fmt.Sprintf("%s%d", cbStartPrefix, t.ID)))
		default:
			row = append(row, tgbotapi.NewInlineKeyboardButtonData("✅ "+label, fmt.Sprintf("%s%d", cbResetPrefix, t.ID)))
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("🔄", fmt.Sprintf("%s%d", cbResetPrefix, t.ID)))
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

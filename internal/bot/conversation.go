package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"countdown/internal/model"
	"countdown/internal/service"
)

func (b *Bot) startNewTimerConversation(msg *tgbotapi.Message) error {
	b.logger.Printf("[info] start new timer conversation user=%d", msg.From.ID)
	b.setConversation(msg.From.ID, &conversationState{stage: stageName})
	return b.sendWithReplyMarkup(msg.Chat.ID, "🆕 New timer.\n<b>Step 1:</b> what should it be called?", cancelKeyboard())
}

func (b *Bot) handleConversation(ctx context.Context, msg *tgbotapi.Message) error {
	state := b.getConversation(msg.From.ID)
	if state == nil {
		return nil
	}

	text := strings.TrimSpace(msg.Text)
	switch state.stage {
	case stageName:
		if text == "" {
			return b.sendWithReplyMarkup(msg.Chat.ID, "The name cannot be empty.", cancelKeyboard())
		}
		state.input.Name = text
		state.stage = stageCategory
		return b.sendWithReplyMarkup(msg.Chat.ID, "🏷 <b>Step 2:</b> pick a category or type a new one.", b.categoryKeyboard())
	case stageCategory:
		if text == "" || utf8.RuneCountInString(text) > model.MaxCategoryLength {
			return b.sendWithReplyMarkup(msg.Chat.ID,
				fmt.Sprintf("A category needs 1 to %d characters.", model.MaxCategoryLength), b.categoryKeyboard())
		}
		state.input.Category = text
		state.stage = stageDuration
		return b.sendWithReplyMarkup(msg.Chat.ID, "⏳ <b>Step 3:</b> how long? For example <code>25</code> (minutes), <code>90s</code> or <code>1:30:00</code>.", cancelKeyboard())
	case stageDuration:
		seconds, err := service.ParseDuration(text)
		if err == nil {
			_, err = (service.TimerInput{Name: "x", Category: "x", Duration: seconds}).Validate()
		}
		if err != nil {
			return b.sendWithReplyMarkup(msg.Chat.ID, escape(validationMessage(err)), cancelKeyboard())
		}
		state.input.Duration = seconds
		state.stage = stageAlerts
		return b.sendWithReplyMarkup(msg.Chat.ID, "🔔 <b>Step 4:</b> alert at which percentages? Pick a preset, type e.g. <code>30, 60</code>, or skip.", alertsKeyboard())
	case stageAlerts:
		var alerts []int
		if !isSkipInput(text) {
			parsed, err := service.ParseAlerts(text)
			if err != nil {
				return b.sendWithReplyMarkup(msg.Chat.ID, escape(validationMessage(err)), alertsKeyboard())
			}
			alerts = parsed
		}
		state.input.Alerts = alerts
		if _, err := state.input.Validate(); err != nil {
			return b.sendWithReplyMarkup(msg.Chat.ID, escape(validationMessage(err)), alertsKeyboard())
		}
		err := b.finishTimerCreation(ctx, msg.Chat.ID, state.input)
		b.clearConversation(msg.From.ID)
		return err
	default:
		b.clearConversation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "Input reset. Try /add again.")
	}
}

func (b *Bot) finishTimerCreation(ctx context.Context, chatID int64, input service.TimerInput) error {
	t, err := b.session.AddTimer(ctx, input)
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Could not create the timer: %s", escape(validationMessage(err))))
	}

	var summary strings.Builder
	summary.WriteString("✅ <b>Timer saved</b>\n")
	summary.WriteString(fmt.Sprintf("• <b>ID:</b> <code>%d</code>\n", t.ID))
	summary.WriteString(fmt.Sprintf("• <b>Name:</b> %s\n", escape(t.Name)))
	summary.WriteString(fmt.Sprintf("• <b>Category:</b> %s\n", escape(t.Category)))
	summary.WriteString(fmt.Sprintf("• <b>Duration:</b> %s\n", service.FormatClock(t.Duration)))
	if len(t.Alerts) > 0 {
		pcts := make([]string, 0, len(t.Alerts))
		for _, a := range t.Alerts {
			pcts = append(pcts, strconv.Itoa(a.Percentage)+"%")
		}
		summary.WriteString(fmt.Sprintf("• <b>Alerts:</b> %s\n", strings.Join(pcts, ", ")))
	}

	kb := timerKeyboard([]model.Timer{t})
	return b.sendWithReplyMarkup(chatID, strings.TrimSpace(summary.String()), kb)
}

func validationMessage(err error) string {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	return err.Error()
}

func isSkipInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == "-" || value == strings.ToLower(btnSkip) || value == "skip" || value == "none"
}

func isConfirmInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnConfirm) || value == "confirm" || value == "yes"
}

func isCancelInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnCancel) || value == "cancel" || value == "no"
}

func isCancelDialogInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnCancelDialog) || value == "stop input"
}

package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"countdown/internal/clock"
	"countdown/internal/model"
	"countdown/internal/service"
)

type conversationStage int

const (
	stageNone conversationStage = iota
	stageName
	stageCategory
	stageDuration
	stageAlerts
)

const (
	cbStartPrefix = "run:"
	cbPausePrefix = "pause:"
	cbResetPrefix = "reset:"
)

const (
	btnSkip             = "⏭️ Skip"
	btnConfirm          = "✅ Confirm"
	btnCancel           = "↩️ Cancel"
	btnCancelDialog     = "⏪ Stop input"
	menuLabelNewTimer   = "➕ New timer"
	menuLabelTimers     = "⏱ Timers"
	menuLabelCategories = "📂 Categories"
	menuLabelHelp       = "ℹ️ Help"
)

// API is the part of tgbotapi.BotAPI the bot uses.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Subscribers stores the chats that receive notifications.
type Subscribers interface {
	UpsertFromTelegram(ctx context.Context, chatID int64, firstName, username string) (*model.Subscriber, error)
	SetMuted(ctx context.Context, chatID int64, muted bool) error
	ListAll(ctx context.Context) ([]model.Subscriber, error)
}

// Deps are the services the bot drives.
type Deps struct {
	Session      *service.Session
	Reminders    *service.ReminderService
	Subscribers  Subscribers
	AllowedChats []int64
	Clock        clock.Clock
	Logger       *log.Logger
}

type conversationState struct {
	stage conversationStage
	input service.TimerInput
}

// Bot exposes the timer session over Telegram and delivers its events.
type Bot struct {
	api           API
	session       *service.Session
	reminders     *service.ReminderService
	subscribers   Subscribers
	allowed       map[int64]struct{}
	clock         clock.Clock
	logger        *log.Logger
	conversations map[int64]*conversationState
	confirmations map[int64]struct{}
	mu            sync.Mutex
}

func New(token string, deps Deps) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	b := NewWithAPI(api, deps)
	b.logger.Printf("[info] bot authorized on account %s", api.Self.UserName)
	return b, nil
}

// NewWithAPI builds a bot on an existing API client.
func NewWithAPI(api API, deps Deps) *Bot {
	if deps.Clock == nil {
		deps.Clock = clock.Real{}
	}
	if deps.Logger == nil {
		deps.Logger = log.Default()
	}
	if deps.Reminders == nil {
		deps.Reminders = service.NewReminderService(deps.Session)
	}
	allowed := make(map[int64]struct{}, len(deps.AllowedChats))
	for _, id := range deps.AllowedChats {
		allowed[id] = struct{}{}
	}
	return &Bot{
		api:           api,
		session:       deps.Session,
		reminders:     deps.Reminders,
		subscribers:   deps.Subscribers,
		allowed:       allowed,
		clock:         deps.Clock,
		logger:        deps.Logger,
		conversations: make(map[int64]*conversationState),
		confirmations: make(map[int64]struct{}),
	}
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	b.logger.Println("[info] start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		b.HandleUpdate(ctx, update)
	}
	return ctx.Err()
}

// HandleUpdate dispatches a single update.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
			b.logger.Printf("[error] handle callback: %v", err)
		}
	case update.Message != nil:
		if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
			return
		}
		if err := b.handleMessage(ctx, update.Message); err != nil {
			b.logger.Printf("[error] handle message: %v", err)
		}
	}
}

// Notify sends an event to every allow-listed chat and every subscriber the
// allow-list admits. Muted chats are skipped.
func (b *Bot) Notify(ctx context.Context, ev model.Event) error {
	chats := make(map[int64]bool, len(b.allowed))
	for id := range b.allowed {
		chats[id] = true
	}
	if b.subscribers != nil {
		subs, err := b.subscribers.ListAll(ctx)
		if err != nil {
			b.logger.Printf("[error] list subscribers: %v", err)
		}
		for _, s := range subs {
			if b.isAllowed(s.ChatID) {
				chats[s.ChatID] = !s.Muted
			}
		}
	}

	text := service.EventMessage(ev)
	var errs []error
	for id, active := range chats {
		if !active {
			continue
		}
		if err := b.sendText(id, text); err != nil {
			errs = append(errs, fmt.Errorf("notify chat %d: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

func (b *Bot) isAllowed(chatID int64) bool {
	if len(b.allowed) == 0 {
		return true
	}
	_, ok := b.allowed[chatID]
	return ok
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}
	if !b.isAllowed(msg.Chat.ID) {
		b.logger.Printf("[warn] ignoring message from chat %d outside allow-list", msg.Chat.ID)
		return nil
	}

	if !msg.IsCommand() && isCancelDialogInput(msg.Text) {
		b.clearConversation(msg.From.ID)
		b.clearConfirmation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Input cancelled.")
	}

	if msg.IsCommand() {
		b.logger.Printf("[info] command from %d: /%s %s", msg.From.ID, msg.Command(), msg.CommandArguments())
		return b.handleCommand(ctx, msg)
	}

	if handled, err := b.handleMenuAlias(ctx, msg); handled {
		return err
	}

	if b.hasConfirmation(msg.From.ID) {
		return b.handleConfirmationResponse(ctx, msg)
	}

	if b.hasConversation(msg.From.ID) {
		return b.handleConversation(ctx, msg)
	}

	return b.sendText(msg.Chat.ID, "I did not get that. Use /add to create a timer or /help for the command list.")
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	args := strings.TrimSpace(msg.CommandArguments())
	switch msg.Command() {
	case "start":
		return b.handleStart(ctx, msg)
	case "help":
		return b.sendText(msg.Chat.ID, helpText)
	case "add":
		return b.startNewTimerConversation(msg)
	case "timers":
		return b.sendTimerList(msg.Chat.ID, args)
	case "run":
		return b.handleTimerOp(ctx, msg.Chat.ID, args, cbStartPrefix)
	case "pause":
		return b.handleTimerOp(ctx, msg.Chat.ID, args, cbPausePrefix)
	case "reset":
		return b.handleTimerOp(ctx, msg.Chat.ID, args, cbResetPrefix)
	case "runcat":
		return b.handleCategoryOp(ctx, msg.Chat.ID, args, service.CategoryStart)
	case "pausecat":
		return b.handleCategoryOp(ctx, msg.Chat.ID, args, service.CategoryPause)
	case "resetcat":
		return b.handleCategoryOp(ctx, msg.Chat.ID, args, service.CategoryReset)
	case "categories":
		return b.handleCategories(msg.Chat.ID)
	case "history":
		return b.sendText(msg.Chat.ID, b.reminders.HistorySummary(20, b.clock.Now()))
	case "export":
		return b.handleExport(msg.Chat.ID)
	case "clear":
		b.setConfirmation(msg.From.ID)
		return b.sendWithReplyMarkup(msg.Chat.ID, "🧹 Delete <b>all</b> timers and the whole history?", confirmKeyboard())
	case "mute", "unmute":
		return b.handleMute(ctx, msg, msg.Command() == "mute")
	case "cancel":
		b.clearConversation(msg.From.ID)
		b.clearConfirmation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Input cancelled.")
	default:
		return b.sendText(msg.Chat.ID, "Unknown command. See /help.")
	}
}

const helpText = "ℹ️ <b>Commands</b>\n" +
	"• /add — create a timer step by step\n" +
	"• /timers [category] — list timers with start/pause/reset buttons\n" +
	"• /run &lt;id&gt;, /pause &lt;id&gt;, /reset &lt;id&gt; — control one timer\n" +
	"• /runcat, /pausecat, /resetcat &lt;category&gt; — control a whole category\n" +
	"• /categories — categories with counts\n" +
	"• /history — recent completions\n" +
	"• /export — history as a JSON file\n" +
	"• /clear — delete all timers and history\n" +
	"• /mute, /unmute — notifications for this chat\n" +
	"• /cancel — stop the current input"

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	if b.subscribers != nil {
		if _, err := b.subscribers.UpsertFromTelegram(ctx, msg.Chat.ID, msg.From.FirstName, msg.From.UserName); err != nil {
			return err
		}
	}
	name := strings.TrimSpace(msg.From.FirstName)
	if name == "" {
		name = "there"
	}
	text := fmt.Sprintf("👋 Hi, %s!\n<b>I run countdown timers and ping you at the milestones.</b>\n\n%s", escape(name), helpText)
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleMute(ctx context.Context, msg *tgbotapi.Message, muted bool) error {
	if b.subscribers == nil {
		return b.sendText(msg.Chat.ID, "Notifications are not configurable here.")
	}
	if _, err := b.subscribers.UpsertFromTelegram(ctx, msg.Chat.ID, msg.From.FirstName, msg.From.UserName); err != nil {
		return err
	}
	if err := b.subscribers.SetMuted(ctx, msg.Chat.ID, muted); err != nil {
		return err
	}
	if muted {
		return b.sendText(msg.Chat.ID, "🔕 Notifications muted.")
	}
	return b.sendText(msg.Chat.ID, "🔔 Notifications on.")
}

func (b *Bot) handleTimerOp(ctx context.Context, chatID int64, args, op string) error {
	id, err := strconv.ParseInt(args, 10, 64)
	if err != nil {
		return b.sendText(chatID, "Give the timer id, for example /run 1718000000000. See /timers.")
	}
	t, changed, err := b.applyTimerOp(ctx, id, op)
	if err != nil {
		return b.sendText(chatID, "Timer not found.")
	}
	return b.sendText(chatID, opResultText(t, changed))
}

func (b *Bot) applyTimerOp(ctx context.Context, id int64, op string) (model.Timer, bool, error) {
	var changed bool
	switch op {
	case cbStartPrefix:
		changed = b.session.Start(ctx, id)
	case cbPausePrefix:
		changed = b.session.Pause(ctx, id)
	case cbResetPrefix:
		changed = b.session.Reset(ctx, id)
	}
	t, err := b.session.Timer(id)
	return t, changed, err
}

func opResultText(t model.Timer, changed bool) string {
	name := escape(t.Name)
	if !changed {
		return fmt.Sprintf("Nothing to do for «%s» (%s).", name, t.Status)
	}
	switch t.Status {
	case model.StatusRunning:
		return fmt.Sprintf("▶️ «%s» is running, %s left.", name, service.FormatClock(t.RemainingTime))
	case model.StatusCompleted:
		return fmt.Sprintf("✅ «%s» is done.", name)
	}
	return fmt.Sprintf("⏸ «%s» paused at %s.", name, service.FormatClock(t.RemainingTime))
}

func (b *Bot) handleCategoryOp(ctx context.Context, chatID int64, category string, op service.CategoryOp) error {
	if category == "" {
		return b.sendText(chatID, "Give the category name, for example /runcat Study.")
	}
	n := b.session.ApplyToCategory(ctx, category, op)
	if n == 0 {
		return b.sendText(chatID, fmt.Sprintf("No timers to %s in «%s».", op, escape(category)))
	}
	return b.sendText(chatID, fmt.Sprintf("Done: %s applied to %d timer(s) in «%s».", op, n, escape(category)))
}

func (b *Bot) handleCategories(chatID int64) error {
	cats := b.session.Categories()
	if len(cats) == 0 {
		return b.sendText(chatID, "No categories yet. They appear when you add timers.")
	}
	var builder strings.Builder
	builder.WriteString("📂 <b>Categories</b>\n")
	for _, c := range cats {
		builder.WriteString(fmt.Sprintf("• %s — %d total, %d running, %d paused, %d done\n",
			escape(c.Name), c.Total, c.Running, c.Paused, c.Completed))
	}
	return b.sendText(chatID, strings.TrimSpace(builder.String()))
}

func (b *Bot) handleExport(chatID int64) error {
	data, err := service.EncodeExport(b.session.Export())
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Export failed: %s", escape(err.Error())))
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: model.KeyHistory + ".json", Bytes: data})
	doc.Caption = "📤 Timer history"
	_, err = b.api.Send(doc)
	return err
}

func (b *Bot) handleConfirmationResponse(ctx context.Context, msg *tgbotapi.Message) error {
	text := strings.TrimSpace(msg.Text)
	switch {
	case isConfirmInput(text):
		b.clearConfirmation(msg.From.ID)
		if err := b.session.ClearAll(ctx); err != nil {
			return b.sendText(msg.Chat.ID, fmt.Sprintf("Cleared in memory, but storage failed: %s", escape(err.Error())))
		}
		return b.sendText(msg.Chat.ID, "🧹 All timers and history deleted.")
	case isCancelInput(text):
		b.clearConfirmation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "Nothing was deleted.")
	default:
		return b.sendWithReplyMarkup(msg.Chat.ID, "Confirm or cancel the deletion.", confirmKeyboard())
	}
}

func (b *Bot) sendTimerList(chatID int64, category string) error {
	var timers []model.Timer
	if category != "" {
		timers = b.session.TimersInCategory(category)
	} else {
		timers = b.session.Timers()
	}
	text := service.StatusSummary(timers, b.clock.Now())
	if len(timers) == 0 {
		return b.sendText(chatID, text)
	}
	return b.sendWithReplyMarkup(chatID, text, timerKeyboard(timers))
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil || cb.Message.Chat == nil {
		return nil
	}
	if !b.isAllowed(cb.Message.Chat.ID) {
		return nil
	}

	var op string
	for _, prefix := range []string{cbStartPrefix, cbPausePrefix, cbResetPrefix} {
		if strings.HasPrefix(cb.Data, prefix) {
			op = prefix
			break
		}
	}
	if op == "" {
		return nil
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(cb.Data, op), 10, 64)
	if err != nil {
		return nil
	}
	b.logger.Printf("[info] callback %s user=%d timer=%d", strings.TrimSuffix(op, ":"), cb.From.ID, id)

	t, changed, err := b.applyTimerOp(ctx, id, op)
	answer := "Timer not found"
	if err == nil {
		answer = opResultText(t, changed)
	}
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, html.UnescapeString(answer))); err != nil {
		b.logger.Printf("[warn] callback ack: %v", err)
	}

	timers := b.session.Timers()
	edit := tgbotapi.NewEditMessageText(cb.Message.Chat.ID, cb.Message.MessageID, service.StatusSummary(timers, b.clock.Now()))
	edit.ParseMode = tgbotapi.ModeHTML
	if len(timers) > 0 {
		kb := timerKeyboard(timers)
		edit.ReplyMarkup = &kb
	}
	_, err = b.api.Send(edit)
	return err
}

func (b *Bot) handleMenuAlias(ctx context.Context, msg *tgbotapi.Message) (bool, error) {
	text := strings.TrimSpace(strings.ToLower(msg.Text))
	switch text {
	case strings.ToLower(menuLabelNewTimer):
		return true, b.startNewTimerConversation(msg)
	case strings.ToLower(menuLabelTimers):
		return true, b.sendTimerList(msg.Chat.ID, "")
	case strings.ToLower(menuLabelCategories):
		return true, b.handleCategories(msg.Chat.ID)
	case strings.ToLower(menuLabelHelp):
		return true, b.sendText(msg.Chat.ID, helpText)
	default:
		return false, nil
	}
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) hasConfirmation(userID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.confirmations[userID]
	return ok
}

func (b *Bot) setConfirmation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.confirmations[userID] = struct{}{}
}

func (b *Bot) clearConfirmation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.confirmations, userID)
}

func (b *Bot) setConversation(userID int64, state *conversationState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conversations[userID] = state
}

func (b *Bot) getConversation(userID int64) *conversationState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conversations[userID]
}

func (b *Bot) hasConversation(userID int64) bool {
	return b.getConversation(userID) != nil
}

func (b *Bot) clearConversation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.conversations, userID)
}

func escape(s string) string {
	return html.EscapeString(s)
}

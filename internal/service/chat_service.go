package service

import (
	"context"
	"strings"
	"time"

	"github.com/dafibh/finbot/finbot-backend/internal/domain"
	"github.com/dafibh/finbot/finbot-backend/internal/render"
	"github.com/dafibh/finbot/finbot-backend/internal/util"
	"github.com/rs/zerolog/log"
)

// Menu labels
const (
	MenuIncome   = "💰 Доход"
	MenuExpense  = "💸 Расход"
	MenuAnalysis = "📊 Анализ"
	MenuHistory  = "📋 История"
	MenuAdvice   = "💡 Совет"
	MenuMarket   = "📈 Рынок"
	MenuHelp     = "ℹ️ Помощь"

	CommandStart  = "/start"
	CommandCancel = "/cancel"

	DefaultCancelToken = "❌ Отмена"
)

// Event is one inbound chat message
type Event struct {
	UserID string `json:"userId"`
	Text   string `json:"text"`
}

// Reply is what the bot answers. Ignored replies carry no text and should not
// be sent.
type Reply struct {
	Text     string     `json:"text"`
	Keyboard [][]string `json:"keyboard,omitempty"`
	Ignored  bool       `json:"ignored"`
}

// ChatConfig holds the chat router settings
type ChatConfig struct {
	CancelToken string
}

// ChatService routes chat events to the ledger, analysis, advice, market and
// entry flows. Events of one user are handled one at a time.
type ChatService struct {
	ledger   *LedgerService
	analysis *AnalysisService
	advice   *AdviceService
	entry    *EntryService
	market   MarketProvider
	renderer *render.Renderer

	cancelToken string
	locks       *util.KeyedMutex
	now         func() time.Time
}

// NewChatService creates a new ChatService
func NewChatService(
	ledger *LedgerService,
	analysis *AnalysisService,
	advice *AdviceService,
	entry *EntryService,
	marketProvider MarketProvider,
	renderer *render.Renderer,
	config ChatConfig,
) *ChatService {
	if strings.TrimSpace(config.CancelToken) == "" {
		config.CancelToken = DefaultCancelToken
	}
	return &ChatService{
		ledger:      ledger,
		analysis:    analysis,
		advice:      advice,
		entry:       entry,
		market:      marketProvider,
		renderer:    renderer,
		cancelToken: strings.TrimSpace(config.CancelToken),
		locks:       util.NewKeyedMutex(),
		now:         time.Now,
	}
}

// HandleEvent processes one message and returns the reply
func (s *ChatService) HandleEvent(ctx context.Context, event Event) (Reply, error) {
	userID := strings.TrimSpace(event.UserID)
	if userID == "" {
		return Reply{}, domain.ErrUserRequired
	}
	text := strings.TrimSpace(event.Text)

	unlock := s.locks.Lock(userID)
	defer unlock()

	switch text {
	case CommandStart:
		s.entry.Cancel(userID)
		return s.reply(render.Welcome, MainMenu()), nil

	case CommandCancel, s.cancelToken:
		if s.entry.Cancel(userID) {
			return s.reply(render.Cancelled, MainMenu()), nil
		}
		return s.reply(render.NothingToCancel, MainMenu()), nil

	case MenuIncome:
		return s.begin(userID, domain.TransactionKindIncome)

	case MenuExpense:
		return s.begin(userID, domain.TransactionKindExpense)

	case MenuAnalysis:
		asOf := s.now()
		agg := s.analysis.MonthlyAnalysis(userID, asOf)
		expenses := s.analysis.CategoryBreakdown(userID, asOf, domain.TransactionKindExpense)
		return s.reply(s.renderer.Analysis(agg, expenses, BasicAdvice(agg.FreeCash)), s.keyboardFor(userID)), nil

	case MenuHistory:
		return s.reply(s.renderer.History(s.ledger.History(userID, 0)), s.keyboardFor(userID)), nil

	case MenuAdvice:
		advice := s.advice.Advise(ctx, userID, s.now())
		return s.reply(s.renderer.Advice(advice), s.keyboardFor(userID)), nil

	case MenuMarket:
		return s.reply(s.renderer.Market(s.market.Snapshot(ctx)), s.keyboardFor(userID)), nil

	case MenuHelp:
		return s.reply(render.Help, s.keyboardFor(userID)), nil
	}

	if _, ok := s.entry.Current(userID); !ok {
		log.Debug().Str("user_id", userID).Msg("Ignoring message outside of an entry session")
		return Reply{Ignored: true}, nil
	}

	// Session input keeps the raw text so descriptions are stored as typed
	outcome, err := s.entry.Handle(userID, event.Text)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to handle entry input")
		return s.reply(render.InternalError, MainMenu()), nil
	}
	return s.replyForOutcome(outcome), nil
}

func (s *ChatService) begin(userID string, kind domain.TransactionKind) (Reply, error) {
	outcome, err := s.entry.Begin(userID, kind)
	if err != nil {
		return Reply{}, err
	}
	return s.replyForOutcome(outcome), nil
}

func (s *ChatService) replyForOutcome(outcome EntryOutcome) Reply {
	switch outcome.Kind {
	case EntryOutcomeCategoryPrompt:
		return s.reply(render.CategoryPrompt(outcome.EntryKind), CategoryKeyboard(outcome.Categories, s.cancelToken))
	case EntryOutcomeAmountPrompt:
		return s.reply(render.AmountPrompt(outcome.EntryKind), CancelKeyboard(s.cancelToken))
	case EntryOutcomeAmountInvalid:
		return s.reply(render.AmountInvalid, CancelKeyboard(s.cancelToken))
	case EntryOutcomeDescriptionPrompt:
		return s.reply(render.DescriptionPrompt(s.entry.SkipToken()), SkipKeyboard(s.entry.SkipToken(), s.cancelToken))
	case EntryOutcomeCommitted:
		return s.reply(s.renderer.Committed(outcome.Transaction), MainMenu())
	default:
		return Reply{Ignored: true}
	}
}

// keyboardFor keeps the entry keyboard visible while a session is in progress
func (s *ChatService) keyboardFor(userID string) [][]string {
	session, ok := s.entry.Current(userID)
	if !ok {
		return MainMenu()
	}
	switch session.Stage {
	case domain.EntryStageAwaitingCategory:
		return CategoryKeyboard(domain.CategoriesFor(session.Kind), s.cancelToken)
	case domain.EntryStageAwaitingDescription:
		return SkipKeyboard(s.entry.SkipToken(), s.cancelToken)
	default:
		return CancelKeyboard(s.cancelToken)
	}
}

func (s *ChatService) reply(text string, keyboard [][]string) Reply {
	return Reply{Text: text, Keyboard: keyboard}
}

// MainMenu returns the idle keyboard
func MainMenu() [][]string {
	return [][]string{
		{MenuIncome, MenuExpense},
		{MenuAnalysis, MenuHistory},
		{MenuAdvice, MenuMarket},
		{MenuHelp},
	}
}

// CategoryKeyboard lays categories out two per row followed by a cancel row
func CategoryKeyboard(categories []string, cancelToken string) [][]string {
	rows := make([][]string, 0, len(categories)/2+2)
	for i := 0; i < len(categories); i += 2 {
		end := i + 2
		if end > len(categories) {
			end = len(categories)
		}
		row := make([]string, end-i)
		copy(row, categories[i:end])
		rows = append(rows, row)
	}
	return append(rows, []string{cancelToken})
}

// CancelKeyboard offers only the cancel button
func CancelKeyboard(cancelToken string) [][]string {
	return [][]string{{cancelToken}}
}

// SkipKeyboard offers skip and cancel buttons
func SkipKeyboard(skipToken, cancelToken string) [][]string {
	return [][]string{{skipToken}, {cancelToken}}
}

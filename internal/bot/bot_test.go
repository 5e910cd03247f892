package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"energy-analyzer/internal/backend"
	"energy-analyzer/internal/core"
	errx "energy-analyzer/internal/core/errx"
	"energy-analyzer/internal/database"
	"energy-analyzer/internal/models"
	logx "energy-analyzer/pkg/logger"
)

func init() {
	logx.Init(logx.LoggerOpts{Environment: core.Testing})
}

type fakeSender struct {
	sent     []tgbotapi.MessageConfig
	failHTML bool
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	msg, ok := c.(tgbotapi.MessageConfig)
	if !ok {
		return tgbotapi.Message{}, fmt.Errorf("unexpected chattable %T", c)
	}
	f.sent = append(f.sent, msg)
	if f.failHTML && msg.ParseMode == tgbotapi.ModeHTML {
		return tgbotapi.Message{}, errors.New("Bad Request: can't parse entities")
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) last(t *testing.T) tgbotapi.MessageConfig {
	t.Helper()
	require.NotEmpty(t, f.sent)
	return f.sent[len(f.sent)-1]
}

type fakeSource struct {
	plans     []models.Plan
	providers []models.Provider
	err       error
	filters   []models.PlanFilter
	scrapes   []backend.ScrapeRequest
}

func (f *fakeSource) Providers(context.Context) ([]models.Provider, error) {
	return f.providers, f.err
}

func (f *fakeSource) Plans(_ context.Context, filter models.PlanFilter) ([]models.Plan, error) {
	f.filters = append(f.filters, filter)
	return f.plans, f.err
}

func (f *fakeSource) Plan(_ context.Context, id int64) (*models.Plan, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, p := range f.plans {
		if p.ID == id {
			p := p
			return &p, nil
		}
	}
	return nil, errx.New(errors.New("no such plan"), http.StatusNotFound, "not found")
}

func (f *fakeSource) TriggerScrape(_ context.Context, req backend.ScrapeRequest) (*backend.ScrapeResult, error) {
	f.scrapes = append(f.scrapes, req)
	if f.err != nil {
		return nil, f.err
	}
	return &backend.ScrapeResult{PlansProcessed: 87, Source: backend.SourcePowerToChoose}, nil
}

func plan(id, providerID int64, rate float64) models.Plan {
	return models.Plan{
		ID:            id,
		ProviderID:    providerID,
		PlanName:      fmt.Sprintf("Plan %d", id),
		PlanType:      models.String("Fixed"),
		Rate500Cents:  models.Float(rate + 1),
		Rate1000Cents: models.Float(rate),
		Rate2000Cents: models.Float(rate - 0.5),
	}
}

func marketPlans() []models.Plan {
	return []models.Plan{
		plan(1, 1, 13.4),
		plan(2, 2, 10.9),
		plan(3, 3, 16.2),
		{ID: 4, ProviderID: 1, PlanName: "Plan 4"},
		plan(5, 2, 12.1),
	}
}

func marketProviders() []models.Provider {
	return []models.Provider{{ID: 1, Name: "Reliant"}, {ID: 2, Name: "TXU Energy"}, {ID: 3, Name: "Gexa"}}
}

type harness struct {
	bot    *Bot
	sender *fakeSender
	source *fakeSource
	store  *database.DB
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	store, err := database.New(filepath.Join(t.TempDir(), "bot.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	if opts.Defaults.UsageKwh == 0 {
		opts.Defaults = database.ChatSettings{UsageKwh: 1000, BaseFee: 9.95}
	}
	h := &harness{
		sender: &fakeSender{},
		source: &fakeSource{plans: marketPlans(), providers: marketProviders()},
		store:  store,
	}
	h.bot = New(h.sender, h.source, store, opts)
	return h
}

func (h *harness) say(chatID int64, text string) {
	h.bot.HandleMessage(context.Background(), &tgbotapi.Message{
		Text: text,
		Chat: &tgbotapi.Chat{ID: chatID},
	})
}

func TestHelp(t *testing.T) {
	h := newHarness(t, Options{})

	h.say(1, "/start")
	h.say(1, "/HELP@EnergyBot")

	require.Len(t, h.sender.sent, 2)
	for _, msg := range h.sender.sent {
		assert.Equal(t, tgbotapi.ModeHTML, msg.ParseMode)
		assert.Contains(t, msg.Text, "Texas Energy Plan Analyzer")
		assert.Equal(t, int64(1), msg.ChatID)
	}
}

func TestSend_FallsBackToPlainText(t *testing.T) {
	h := newHarness(t, Options{})
	h.sender.failHTML = true

	h.say(1, "/help")

	require.Len(t, h.sender.sent, 2)
	plain := h.sender.sent[1]
	assert.Empty(t, plain.ParseMode)
	assert.NotContains(t, plain.Text, "<b>")
	assert.Contains(t, plain.Text, "/usage <kWh> [base fee]")
}

func TestUnknownAndPlainMessages(t *testing.T) {
	h := newHarness(t, Options{})

	h.say(1, "hello there")
	assert.Empty(t, h.sender.sent)

	h.say(1, "/frobnicate")
	assert.Contains(t, h.sender.last(t).Text, "Unknown command")
}

func TestSummary(t *testing.T) {
	h := newHarness(t, Options{})

	h.say(1, "/summary")

	text := h.sender.last(t).Text
	assert.Contains(t, text, "Plans: 5 (4 with rates)")
	assert.Contains(t, text, "Lowest rate: 10.9¢")
	assert.Contains(t, text, "Average rate: 13.15¢")
	assert.Contains(t, text, "Highest rate: 16.2¢")
	assert.Contains(t, text, "Best plan: <b>Plan 2</b> by TXU Energy")
	assert.Contains(t, text, "Based on 5 plans analyzed")
}

func TestSummary_UsesChatUsage(t *testing.T) {
	h := newHarness(t, Options{})

	h.say(1, "/usage 2000 0")
	h.say(1, "/summary")

	// (16.2 - 10.9) * 2000 / 100
	assert.Contains(t, h.sender.last(t).Text, "Potential savings: $106.00/month, $1272.00/year at 2000 kWh")
}

func TestSummary_NoRatedPlans(t *testing.T) {
	h := newHarness(t, Options{})
	h.source.plans = []models.Plan{{ID: 4, ProviderID: 1, PlanName: "Plan 4"}}

	h.say(1, "/summary zip=75001")

	assert.Contains(t, h.sender.last(t).Text, "No rated plans for zip 75001")
}

func TestSummary_InvalidFilter(t *testing.T) {
	h := newHarness(t, Options{})

	h.say(1, "/summary zip=abc")

	assert.Contains(t, h.sender.last(t).Text, "invalid filter")
	assert.Empty(t, h.source.filters)
}

func TestSummary_BackendDown(t *testing.T) {
	h := newHarness(t, Options{})
	h.source.err = errx.WrapUpstream(errors.New("connection refused"))

	h.say(1, "/summary")

	assert.Contains(t, h.sender.last(t).Text, "Could not load plans from the backend")
}

func TestPlans_CheapestFirstWithFilters(t *testing.T) {
	h := newHarness(t, Options{})

	h.say(1, "/plans provider=TXU Energy service=residential months=12")

	require.Len(t, h.source.filters, 1)
	assert.Equal(t, models.PlanFilter{Provider: "TXU Energy", ServiceType: models.ServiceResidential, ContractMonths: 12}, h.source.filters[0])

	text := h.sender.last(t).Text
	assert.Less(t, strings.Index(text, "#2"), strings.Index(text, "#5"))
	assert.Less(t, strings.Index(text, "#5"), strings.Index(text, "#1"))
	assert.NotContains(t, text, "#4")
	assert.Contains(t, text, "🟢 <code>#2</code>")
	assert.Contains(t, text, "🔴 <code>#3</code>")
	// 10.9 * 1000 / 100 + 9.95
	assert.Contains(t, text, "$118.95/month")
	assert.Contains(t, text, "Showing 4 of 4 rated plans (5 total)")
}

func TestPlans_Capped(t *testing.T) {
	h := newHarness(t, Options{})
	h.source.plans = nil
	for i := int64(1); i <= 20; i++ {
		h.source.plans = append(h.source.plans, plan(i, 1, 10+float64(i)/10))
	}

	h.say(1, "/plans")

	text := h.sender.last(t).Text
	assert.Contains(t, text, "Showing 15 of 20 rated plans")
	assert.NotContains(t, text, "#16")
}

func TestProviders(t *testing.T) {
	h := newHarness(t, Options{})
	h.source.providers[0].Website = models.String("https://reliant.com")

	h.say(1, "/providers")

	text := h.sender.last(t).Text
	assert.Contains(t, text, "Providers</b> (3)")
	assert.Contains(t, text, "• Reliant · https://reliant.com")
}

func TestDistribution(t *testing.T) {
	h := newHarness(t, Options{})

	h.say(1, "/distribution")

	text := h.sender.last(t).Text
	assert.Contains(t, text, "1. TXU Energy: 11.5¢ · 10.9¢ (2 plans)")
	assert.Contains(t, text, "• Fixed: 4")
	assert.Contains(t, text, "• Unknown: 1")
	assert.Contains(t, text, "&lt; 10¢")
}

func TestUsage(t *testing.T) {
	h := newHarness(t, Options{})

	h.say(1, "/usage")
	assert.Contains(t, h.sender.last(t).Text, "Usage: 1000 kWh/month, base fee $9.95")

	h.say(1, "/usage 1500.5 $4.95")
	assert.Contains(t, h.sender.last(t).Text, "Usage set to 1500.5 kWh/month with a $4.95 base fee")

	h.say(1, "/usage 800")
	h.say(1, "/usage")
	assert.Contains(t, h.sender.last(t).Text, "Usage: 800 kWh/month, base fee $4.95")

	h.say(1, "/usage -3")
	assert.Contains(t, h.sender.last(t).Text, "positive number")

	h.say(1, "/usage 900 -1")
	assert.Contains(t, h.sender.last(t).Text, "Base fee")
}

func TestUsage_RejectsNonFinite(t *testing.T) {
	h := newHarness(t, Options{})

	for _, text := range []string{"/usage NaN", "/usage Inf", "/usage +Inf"} {
		h.say(1, text)
		assert.Contains(t, h.sender.last(t).Text, "positive number", text)
	}
	for _, text := range []string{"/usage 900 NaN", "/usage 900 $Inf"} {
		h.say(1, text)
		assert.Contains(t, h.sender.last(t).Text, "Base fee", text)
	}

	h.say(1, "/usage")
	assert.Contains(t, h.sender.last(t).Text, "Usage: 1000 kWh/month, base fee $9.95")
}

func TestCompare(t *testing.T) {
	h := newHarness(t, Options{})

	h.say(1, "/compare")
	assert.Contains(t, h.sender.last(t).Text, "comparison is empty")

	h.say(1, "/compare add 2")
	assert.Contains(t, h.sender.last(t).Text, "Added <b>Plan 2</b>")

	h.say(1, "/compare add #2")
	assert.Contains(t, h.sender.last(t).Text, "already in your comparison")

	h.say(1, "/compare add 77")
	assert.Contains(t, h.sender.last(t).Text, "Plan #77 does not exist")

	h.say(1, "/compare add 3")
	h.say(1, "/compare add 4")
	h.say(1, "/compare")

	text := h.sender.last(t).Text
	assert.Less(t, strings.Index(text, "Plan 2"), strings.Index(text, "Plan 3"))
	assert.Contains(t, text, "500/1000/2000 kWh: 11.9¢ / 10.9¢ / 10.4¢")
	// (16.2 - 10.9) * 1000 / 100
	assert.Contains(t, text, "(+$53.00)")
	assert.Contains(t, text, "Your bill: n/a")

	h.say(1, "/compare remove 3")
	assert.Contains(t, h.sender.last(t).Text, "removed")
	h.say(1, "/compare remove 3")
	assert.Contains(t, h.sender.last(t).Text, "is not in your comparison")

	h.say(1, "/compare clear")
	assert.Contains(t, h.sender.last(t).Text, "Removed 2 plan(s)")

	h.say(1, "/compare add x")
	assert.Contains(t, h.sender.last(t).Text, "positive number")
}

func TestCompare_Limit(t *testing.T) {
	h := newHarness(t, Options{})
	for i := int64(10); i < 16; i++ {
		h.source.plans = append(h.source.plans, plan(i, 1, 12))
	}

	for i := 10; i < 15; i++ {
		h.say(1, fmt.Sprintf("/compare add %d", i))
	}
	h.say(1, "/compare add 15")

	assert.Contains(t, h.sender.last(t).Text, "at most 5 plans")
}

func TestScrape_OperatorGuard(t *testing.T) {
	h := newHarness(t, Options{OperatorChatID: 99})

	h.say(1, "/scrape")
	assert.Contains(t, h.sender.last(t).Text, "Only the operator chat")
	assert.Empty(t, h.source.scrapes)

	h.say(99, "/scrape Commercial 75001")
	require.Len(t, h.source.scrapes, 1)
	assert.Equal(t, backend.ScrapeRequest{ServiceType: "Commercial", ZipCode: "75001"}, h.source.scrapes[0])
	assert.Contains(t, h.sender.last(t).Text, "87 plans processed from powertochoose")
}

func TestScrape_Open(t *testing.T) {
	h := newHarness(t, Options{})

	h.say(5, "/scrape")
	require.Len(t, h.source.scrapes, 1)
	assert.Equal(t, backend.ScrapeRequest{}, h.source.scrapes[0])
}

package bot

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"energy-analyzer/internal/analytics"
	"energy-analyzer/internal/backend"
	errx "energy-analyzer/internal/core/errx"
	"energy-analyzer/internal/database"
	"energy-analyzer/internal/models"
	logx "energy-analyzer/pkg/logger"
)

// maxPlanRows is how many plans /plans lists.
const maxPlanRows = 15

const helpText = `⚡ <b>Texas Energy Plan Analyzer</b>

<b>/summary</b> [filters] - market overview and recommendation
<b>/plans</b> [filters] - cheapest plans at your usage
<b>/providers</b> - electricity providers
<b>/distribution</b> [filters] - rate histogram, providers and plan types
<b>/usage</b> &lt;kWh&gt; [base fee] - set your monthly usage
<b>/compare add|remove</b> &lt;id&gt; - pick up to 5 plans
<b>/compare</b> - show the comparison, <b>/compare clear</b> to reset
<b>/scrape</b> [Residential|Commercial] [zip] - refresh backend data

Filters: provider=&lt;name&gt; type=&lt;plan type&gt; service=Residential|Commercial zip=&lt;5 digits&gt; months=&lt;n&gt;
Example: /plans zip=75001 months=12`

func (b *Bot) handleHelp(chatID int64) {
	b.send(chatID, helpText)
}

// replyError tells the user what went wrong. Only backend and storage
// failures are logged; bad input is the user's to fix.
func (b *Bot) replyError(chatID int64, err error) {
	switch errx.StatusOf(err) {
	case http.StatusBadRequest:
		b.send(chatID, "❌ "+escapeHTML(err.Error()))
	case http.StatusNotFound:
		b.send(chatID, "❌ Not found.")
	default:
		logx.Error().Err(err).Int64("chat_id", chatID).Msg("telegram command failed")
		b.send(chatID, "❌ Could not load plans from the backend. Try again later.")
	}
}

func (b *Bot) settings(ctx context.Context, chatID int64) database.ChatSettings {
	s, err := b.store.Settings(ctx, chatID, b.opts.Defaults)
	if err != nil {
		logx.Warn().Err(err).Int64("chat_id", chatID).Msg("falling back to default usage")
		s = b.opts.Defaults
		s.ChatID = chatID
	}
	return s
}

// load fetches the plans matching args together with the provider list.
func (b *Bot) load(ctx context.Context, chatID int64, args []string) (models.PlanFilter, []models.Plan, []models.Provider, bool) {
	filter, err := parseFilters(args)
	if err != nil {
		b.replyError(chatID, errx.BadRequest(err, "invalid filter"))
		return filter, nil, nil, false
	}

	plans, err := b.source.Plans(ctx, filter)
	if err != nil {
		b.replyError(chatID, err)
		return filter, nil, nil, false
	}
	providers, err := b.source.Providers(ctx)
	if err != nil {
		b.replyError(chatID, err)
		return filter, nil, nil, false
	}
	return filter, plans, providers, true
}

func (b *Bot) handleSummary(ctx context.Context, chatID int64, args []string) {
	filter, plans, providers, ok := b.load(ctx, chatID, args)
	if !ok {
		return
	}
	s := b.settings(ctx, chatID)

	summary := analytics.ComputeSummary(plans, s.UsageKwh, s.BaseFee)
	if summary == nil {
		b.send(chatID, fmt.Sprintf("📭 No rated plans for %s.", escapeHTML(describeFilter(filter))))
		return
	}

	names := models.ProviderNames(providers)
	bestProvider, found := names[summary.BestPlan.ProviderID]
	if !found {
		bestProvider = "Unknown"
	}

	var out strings.Builder
	fmt.Fprintf(&out, "📊 <b>Market overview</b> (%s)\n\n", escapeHTML(describeFilter(filter)))
	fmt.Fprintf(&out, "Plans: %d (%d with rates)\n", summary.TotalPlans, summary.RatedPlans)
	fmt.Fprintf(&out, "Lowest rate: %s\n", cents(summary.LowestRate))
	fmt.Fprintf(&out, "Average rate: %s¢\n", summary.AverageRate.StringFixed(2))
	fmt.Fprintf(&out, "Highest rate: %s\n", cents(summary.HighestRate))
	fmt.Fprintf(&out, "Best plan: <b>%s</b> by %s\n", escapeHTML(summary.BestPlan.PlanName), escapeHTML(bestProvider))
	fmt.Fprintf(&out, "Potential savings: %s/month, %s/year at %s\n\n",
		dollars(summary.PotentialSavings), dollars(summary.AnnualSavings()), kwh(s.UsageKwh))
	out.WriteString(escapeHTML(analytics.Recommendation(summary, providers, s.UsageKwh, s.BaseFee)))

	b.send(chatID, out.String())
}

func (b *Bot) handlePlans(ctx context.Context, chatID int64, args []string) {
	filter, plans, providers, ok := b.load(ctx, chatID, args)
	if !ok {
		return
	}
	s := b.settings(ctx, chatID)

	rated := analytics.RatedPlans(plans)
	if len(rated) == 0 {
		b.send(chatID, fmt.Sprintf("📭 No rated plans for %s.", escapeHTML(describeFilter(filter))))
		return
	}
	sort.SliceStable(rated, func(i, j int) bool {
		return *rated[i].Rate1000Cents < *rated[j].Rate1000Cents
	})

	names := models.ProviderNames(providers)
	shown := rated
	if len(shown) > maxPlanRows {
		shown = shown[:maxPlanRows]
	}

	var out strings.Builder
	fmt.Fprintf(&out, "💡 <b>Cheapest plans</b> at %s (%s)\n\n", kwh(s.UsageKwh), escapeHTML(describeFilter(filter)))
	for _, p := range shown {
		provider := names[p.ProviderID]
		if provider == "" {
			provider = "Unknown"
		}
		fmt.Fprintf(&out, "%s <code>#%d</code> <b>%s</b> · %s\n   %s · %s/month",
			classMarker(analytics.ClassifyRate(p.Rate1000Cents)),
			p.ID, escapeHTML(p.PlanName), escapeHTML(provider),
			cents(*p.Rate1000Cents), dollars(analytics.MonthlyCost(p.Rate1000Cents, s.UsageKwh, s.BaseFee)),
		)
		if p.ContractMonths != nil && *p.ContractMonths > 0 {
			fmt.Fprintf(&out, " · %d mo", *p.ContractMonths)
		}
		out.WriteString("\n")
	}
	fmt.Fprintf(&out, "\nShowing %d of %d rated plans (%d total). Add one to a comparison with /compare add &lt;id&gt;.",
		len(shown), len(rated), len(plans))

	b.send(chatID, out.String())
}

func (b *Bot) handleProviders(ctx context.Context, chatID int64) {
	providers, err := b.source.Providers(ctx)
	if err != nil {
		b.replyError(chatID, err)
		return
	}
	if len(providers) == 0 {
		b.send(chatID, "📭 The backend knows no providers yet. Try /scrape.")
		return
	}

	var out strings.Builder
	fmt.Fprintf(&out, "🏢 <b>Providers</b> (%d)\n\n", len(providers))
	for _, p := range providers {
		out.WriteString("• " + escapeHTML(p.Name))
		if p.Website != nil && *p.Website != "" {
			out.WriteString(" · " + escapeHTML(*p.Website))
		}
		out.WriteString("\n")
	}
	b.send(chatID, out.String())
}

func (b *Bot) handleDistribution(ctx context.Context, chatID int64, args []string) {
	filter, plans, providers, ok := b.load(ctx, chatID, args)
	if !ok {
		return
	}
	if len(plans) == 0 {
		b.send(chatID, fmt.Sprintf("📭 No plans for %s.", escapeHTML(describeFilter(filter))))
		return
	}

	dist := analytics.ComputeDistribution(plans, providers)

	var out strings.Builder
	fmt.Fprintf(&out, "📈 <b>Rate distribution</b> (%s)\n\n<pre>", escapeHTML(describeFilter(filter)))
	maxCount := 0
	for _, bucket := range dist.PriceBuckets {
		if bucket.Count > maxCount {
			maxCount = bucket.Count
		}
	}
	for _, bucket := range dist.PriceBuckets {
		out.WriteString(escapeHTML(fmt.Sprintf("%-7s %-12s %d", bucket.Label, bar(bucket.Count, maxCount), bucket.Count)) + "\n")
	}
	out.WriteString("</pre>\n")

	if len(dist.Providers) > 0 {
		out.WriteString("\n<b>Cheapest providers (average · best)</b>\n")
		for i, pr := range dist.Providers {
			fmt.Fprintf(&out, "%d. %s: %s · %s (%d plans)\n", i+1, escapeHTML(pr.Name), cents(pr.AverageRate), cents(pr.MinRate), pr.Count)
		}
	}

	out.WriteString("\n<b>Plan types</b>\n")
	for _, tc := range dist.PlanTypes {
		fmt.Fprintf(&out, "• %s: %d\n", escapeHTML(tc.Type), tc.Count)
	}

	b.send(chatID, out.String())
}

func (b *Bot) handleUsage(ctx context.Context, chatID int64, args []string) {
	s := b.settings(ctx, chatID)
	if len(args) == 0 {
		b.send(chatID, fmt.Sprintf("⚙️ Usage: %s/month, base fee %s.\nChange it with /usage &lt;kWh&gt; [base fee].",
			kwh(s.UsageKwh), dollars(s.BaseFee)))
		return
	}
	if len(args) > 2 {
		b.send(chatID, "❌ Use: /usage &lt;kWh&gt; [base fee]")
		return
	}

	usage, err := strconv.ParseFloat(args[0], 64)
	if err != nil || math.IsNaN(usage) || math.IsInf(usage, 0) || usage <= 0 {
		b.send(chatID, "❌ Usage must be a positive number of kWh.")
		return
	}
	s.UsageKwh = usage

	if len(args) == 2 {
		fee, err := strconv.ParseFloat(strings.TrimPrefix(args[1], "$"), 64)
		if err != nil || math.IsNaN(fee) || math.IsInf(fee, 0) || fee < 0 {
			b.send(chatID, "❌ Base fee must be zero or a positive amount.")
			return
		}
		s.BaseFee = fee
	}

	if err := b.store.SaveSettings(ctx, s); err != nil {
		logx.Error().Err(err).Int64("chat_id", chatID).Msg("save usage settings failed")
		b.send(chatID, "❌ Could not save your settings.")
		return
	}
	b.send(chatID, fmt.Sprintf("✅ Usage set to %s/month with a %s base fee.", kwh(s.UsageKwh), dollars(s.BaseFee)))
}

func (b *Bot) handleCompare(ctx context.Context, chatID int64, args []string) {
	if len(args) == 0 {
		b.showComparison(ctx, chatID)
		return
	}

	action := strings.ToLower(args[0])
	if action == "clear" {
		n, err := b.store.ClearSelections(ctx, chatID)
		if err != nil {
			logx.Error().Err(err).Int64("chat_id", chatID).Msg("clear selections failed")
			b.send(chatID, "❌ Could not clear the comparison.")
			return
		}
		b.send(chatID, fmt.Sprintf("🧹 Removed %d plan(s) from the comparison.", n))
		return
	}

	if (action != "add" && action != "remove") || len(args) != 2 {
		b.send(chatID, "❌ Use: /compare add &lt;id&gt;, /compare remove &lt;id&gt;, /compare clear or /compare")
		return
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(args[1], "#"), 10, 64)
	if err != nil || id <= 0 {
		b.send(chatID, "❌ Plan id must be a positive number.")
		return
	}

	if action == "remove" {
		removed, err := b.store.RemoveSelection(ctx, chatID, id)
		if err != nil {
			logx.Error().Err(err).Int64("chat_id", chatID).Msg("remove selection failed")
			b.send(chatID, "❌ Could not update the comparison.")
			return
		}
		if !removed {
			b.send(chatID, fmt.Sprintf("Plan #%d is not in your comparison.", id))
			return
		}
		b.send(chatID, fmt.Sprintf("✅ Plan #%d removed from the comparison.", id))
		return
	}

	plan, err := b.source.Plan(ctx, id)
	if err != nil {
		if errx.StatusOf(err) == http.StatusNotFound {
			b.send(chatID, fmt.Sprintf("❌ Plan #%d does not exist.", id))
			return
		}
		b.replyError(chatID, err)
		return
	}

	switch err := b.store.AddSelection(ctx, chatID, id); {
	case errors.Is(err, database.ErrSelectionFull):
		b.send(chatID, fmt.Sprintf("❌ You can compare at most %d plans. Remove one first.", database.MaxSelections))
	case errors.Is(err, database.ErrAlreadySelected):
		b.send(chatID, fmt.Sprintf("Plan #%d is already in your comparison.", id))
	case err != nil:
		logx.Error().Err(err).Int64("chat_id", chatID).Msg("add selection failed")
		b.send(chatID, "❌ Could not update the comparison.")
	default:
		b.send(chatID, fmt.Sprintf("✅ Added <b>%s</b> (#%d). See it with /compare.", escapeHTML(plan.PlanName), id))
	}
}

func (b *Bot) showComparison(ctx context.Context, chatID int64) {
	ids, err := b.store.Selections(ctx, chatID)
	if err != nil {
		logx.Error().Err(err).Int64("chat_id", chatID).Msg("list selections failed")
		b.send(chatID, "❌ Could not load your comparison.")
		return
	}
	if len(ids) == 0 {
		b.send(chatID, "Your comparison is empty. Find ids with /plans and add them with /compare add &lt;id&gt;.")
		return
	}

	plans := make([]models.Plan, 0, len(ids))
	var missing []string
	for _, id := range ids {
		plan, err := b.source.Plan(ctx, id)
		if err != nil {
			if errx.StatusOf(err) == http.StatusNotFound {
				missing = append(missing, "#"+strconv.FormatInt(id, 10))
				continue
			}
			b.replyError(chatID, err)
			return
		}
		plans = append(plans, *plan)
	}

	s := b.settings(ctx, chatID)
	rows := analytics.CompareCosts(plans, s.UsageKwh, s.BaseFee)

	var out strings.Builder
	fmt.Fprintf(&out, "⚖️ <b>Comparison</b> at %s, base fee %s\n\n", kwh(s.UsageKwh), dollars(s.BaseFee))
	for _, row := range rows {
		fmt.Fprintf(&out, "%s <code>#%d</code> <b>%s</b>\n", classMarker(row.Class), row.Plan.ID, escapeHTML(row.Plan.PlanName))
		fmt.Fprintf(&out, "   500/1000/2000 kWh: %s / %s / %s\n",
			rateOrDash(row.Plan.Rate500Cents), rateOrDash(row.Plan.Rate1000Cents), rateOrDash(row.Plan.Rate2000Cents))
		if row.MonthlyCost > 0 {
			fmt.Fprintf(&out, "   Your bill: %s/month", dollars(row.MonthlyCost))
			if row.DeltaFromCheapest > 0 {
				fmt.Fprintf(&out, " (+%s)", dollars(row.DeltaFromCheapest))
			}
			out.WriteString("\n")
		} else {
			out.WriteString("   Your bill: n/a\n")
		}
	}
	if len(missing) > 0 {
		fmt.Fprintf(&out, "\nNo longer offered: %s", strings.Join(missing, ", "))
	}
	b.send(chatID, out.String())
}

func (b *Bot) handleScrape(ctx context.Context, chatID int64, args []string) {
	if b.opts.OperatorChatID != 0 && chatID != b.opts.OperatorChatID {
		b.send(chatID, "⛔ Only the operator chat can trigger a scrape.")
		return
	}

	var req backend.ScrapeRequest
	for _, arg := range args {
		if _, err := strconv.Atoi(arg); err == nil {
			req.ZipCode = arg
			continue
		}
		req.ServiceType = arg
	}

	b.send(chatID, "⏳ Asking the backend to refresh plans, this can take a while...")
	result, err := b.source.TriggerScrape(ctx, req)
	if err != nil {
		b.replyError(chatID, err)
		return
	}

	msg := fmt.Sprintf("✅ Scrape finished: %d plans processed", result.PlansProcessed)
	if result.Source != "" {
		msg += " from " + escapeHTML(result.Source)
	}
	b.send(chatID, msg+".")
}

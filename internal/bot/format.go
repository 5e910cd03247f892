package bot

import (
	"fmt"
	"strconv"
	"strings"

	"energy-analyzer/internal/analytics"
	logx "energy-analyzer/pkg/logger"

	"github.com/PuerkitoBio/goquery"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const barWidth = 12

func escapeHTML(text string) string {
	text = strings.ReplaceAll(text, "&", "&amp;")
	text = strings.ReplaceAll(text, "<", "&lt;")
	text = strings.ReplaceAll(text, ">", "&gt;")
	return text
}

// plainText strips the markup of an HTML message and decodes entities.
func plainText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}
	return doc.Text()
}

// send delivers an HTML message, retrying as plain text when Telegram
// rejects the markup.
func (b *Bot) send(chatID int64, html string) {
	msg := tgbotapi.NewMessage(chatID, html)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if _, err := b.sender.Send(msg); err != nil {
		logx.Warn().Err(err).Int64("chat_id", chatID).Msg("html message rejected, retrying as plain text")

		msg.ParseMode = ""
		msg.Text = plainText(html)
		if _, err := b.sender.Send(msg); err != nil {
			logx.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send message")
		}
	}
}

func classMarker(class analytics.RateClass) string {
	switch class {
	case analytics.RateGood:
		return "🟢"
	case analytics.RateWarning:
		return "🟡"
	case analytics.RateHigh:
		return "🔴"
	default:
		return "⚪"
	}
}

func bar(count, max int) string {
	if max <= 0 || count <= 0 {
		return ""
	}
	n := count * barWidth / max
	if n == 0 {
		n = 1
	}
	return strings.Repeat("█", n)
}

func cents(rate float64) string {
	return fmt.Sprintf("%.1f¢", rate)
}

func dollars(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

func kwh(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + " kWh"
}

func rateOrDash(rate *float64) string {
	if !analytics.HasRate(rate) {
		return "n/a"
	}
	return cents(*rate)
}

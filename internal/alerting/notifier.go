package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"pairsniper/internal/market"
)

// Credentials 描述 Telegram 推送目标。
type Credentials struct {
	BotToken string
	ChatID   string
}

// TradeSummary carries the order outcome attached to a notification.
type TradeSummary struct {
	Side           string
	Executed       bool
	FilledQuantity decimal.Decimal
	FillPrice      decimal.Decimal
	Error          string
}

// Notification 封装单个周期的通知内容。
type Notification struct {
	Snapshot market.Snapshot
	Trade    *TradeSummary
}

// Notifier 定义通知输送接口。
type Notifier interface {
	Notify(ctx context.Context, creds Credentials, note Notification) error
}

// Telegram 通过 Telegram Bot API 推送消息。
type Telegram struct {
	baseURL string
	client  *http.Client
	logger  zerolog.Logger
}

// NewTelegram 构造 Telegram 通知器。
func NewTelegram(baseURL string, timeout time.Duration, logger zerolog.Logger) *Telegram {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}

	return &Telegram{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger.With().Str("component", "notifier_telegram").Logger(),
	}
}

// Notify 调用 sendMessage API 推送文本。单次尝试，失败由调用方记录。
func (t *Telegram) Notify(ctx context.Context, creds Credentials, note Notification) error {
	if creds.BotToken == "" || creds.ChatID == "" {
		return fmt.Errorf("telegram credentials not configured")
	}

	payload := map[string]string{
		"chat_id": creds.ChatID,
		"text":    renderMessage(note),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal telegram payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, creds.BotToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create telegram request: %w", redactToken(err, creds.BotToken))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		// 传输错误会把含 token 的完整 URL 带进错误文本，先脱敏再上抛。
		return fmt.Errorf("send telegram request: %w", redactToken(err, creds.BotToken))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("telegram 响应码异常: %d", resp.StatusCode)
	}

	var result struct {
		OK bool `json:"ok"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err == nil {
		if !result.OK {
			return fmt.Errorf("telegram 返回 ok=false")
		}
	}

	t.logger.Info().
		Str("pair", note.Snapshot.Pair.String()).
		Bool("with_trade", note.Trade != nil).
		Msg("通知已发送 (Telegram)")
	return nil
}

// redactToken strips the bot token from an error before it reaches callers
// that log; url.Error embeds the full request URL in its message.
func redactToken(err error, token string) error {
	if err == nil || token == "" || !strings.Contains(err.Error(), token) {
		return err
	}
	return errors.New(strings.ReplaceAll(err.Error(), token, "<redacted>"))
}

func renderMessage(note Notification) string {
	snap := note.Snapshot
	builder := strings.Builder{}
	builder.WriteString(fmt.Sprintf("Trading Data for %s:\n", snap.Pair))
	builder.WriteString(fmt.Sprintf("Price: $%s\n", snap.PriceUSD.String()))
	builder.WriteString(fmt.Sprintf("Volume: %s\n", snap.Volume.String()))
	builder.WriteString(fmt.Sprintf("24h Change: %s%%\n", snap.PriceChangePct.String()))

	if trade := note.Trade; trade != nil {
		if trade.Executed {
			builder.WriteString(fmt.Sprintf("Trade: %s executed, %s @ %s\n",
				trade.Side, trade.FilledQuantity.String(), trade.FillPrice.String()))
		} else {
			builder.WriteString(fmt.Sprintf("Trade: %s failed: %s\n", trade.Side, trade.Error))
		}
	}

	return builder.String()
}

var _ Notifier = (*Telegram)(nil)

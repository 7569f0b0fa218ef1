package utils

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"maps-directions/entities"

	"go.uber.org/zap"
)

type Message struct {
	Content string    `json:"content"`
	Topic   string    `json:"topic,omitempty"`
	TimeNow time.Time `json:"time_now"`
}

// Notifier posts plain-text messages to ntfy topics. A Notifier with empty
// topics only logs.
type Notifier struct {
	BaseURL    string
	ErrorTopic string
	InfoTopic  string
	Client     *http.Client
	Logger     *zap.Logger
}

func NewNotifier(cfg *Config, logger *zap.Logger) *Notifier {
	return &Notifier{
		BaseURL:    cfg.NtfyBaseURL,
		ErrorTopic: cfg.NtfyErrorTopic,
		InfoTopic:  cfg.NtfyInfoTopic,
		Client:     &http.Client{Timeout: 5 * time.Second},
		Logger:     logger,
	}
}

func (n *Notifier) SendNotification(ctx context.Context, message Message) error {
	if message.Topic == "" {
		return nil
	}
	message.TimeNow = time.Now()
	body := strings.NewReader(message.Content + "\nTime: " + message.TimeNow.Format(time.RFC3339))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(n.BaseURL, "/")+"/"+message.Topic, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "text/plain")
	resp, err := n.Client.Do(req)
	if err != nil {
		return fmt.Errorf("ntfy post: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("ntfy post: unexpected status %d", resp.StatusCode)
	}
	return nil
}

func (n *Notifier) FormatErrorNotification(err error, context string) Message {
	return Message{
		Content: "Error occurred: " + err.Error() + " | Context: " + context,
		Topic:   n.ErrorTopic,
		TimeNow: time.Now(),
	}
}

func (n *Notifier) FormatInfoNotification(info string, context string) Message {
	return Message{
		Content: "Info: " + info + " | Context: " + context,
		Topic:   n.InfoTopic,
		TimeNow: time.Now(),
	}
}

// Info logs and publishes an informational message.
func (n *Notifier) Info(ctx context.Context, info, source string) {
	n.Logger.Info(info, zap.String("context", source))
	if err := n.SendNotification(ctx, n.FormatInfoNotification(info, source)); err != nil {
		n.Logger.Warn("failed to send info notification", zap.Error(err))
	}
}

// ReportFailure publishes a failed directions request for the given pair.
// The caller owns the error log.
func (n *Notifier) ReportFailure(ctx context.Context, err error, start, end entities.PlaceSelection) {
	n.Logger.Debug("publishing route failure",
		zap.Error(err),
		zap.String("start", start.Name),
		zap.String("end", end.Name),
	)
	where := fmt.Sprintf("Route %s -> %s", start.Location, end.Location)
	if sendErr := n.SendNotification(ctx, n.FormatErrorNotification(err, where)); sendErr != nil {
		n.Logger.Warn("failed to send error notification", zap.Error(sendErr))
	}
}

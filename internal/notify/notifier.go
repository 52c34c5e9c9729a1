package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hyperjump/keiyaku/internal/config"
	"github.com/hyperjump/keiyaku/internal/models"
	"github.com/hyperjump/keiyaku/internal/storage"
	"github.com/hyperjump/keiyaku/pkg/utils"
	"go.uber.org/zap"
)

// ErrAuthRequired is returned when a dispatch needs a recipient identity and
// none could be resolved. No record is stored and no channel is attempted.
var ErrAuthRequired = errors.New("authentication required to send notifications")

// DispatchRequest carries everything needed to notify about one analyzed upload.
type DispatchRequest struct {
	Recipient          string
	Filename           string
	Findings           []models.MissingClauseFinding
	AmendmentAvailable bool
	DownloadURL        string
	AttachmentPath     string
}

// Dispatcher records missing-clause notifications and delivers them across
// the configured channels. Delivery is best-effort: each channel's success or
// failure is recorded independently and never fails the dispatch itself.
type Dispatcher struct {
	store        *Store
	email        EmailSender
	sheet        SheetAppender
	slack        SlackSender
	slackChannel string
	signature    string
	cfgStore     storage.Storage
	timeout      time.Duration
	logger       *zap.Logger
}

// NewDispatcher wires a dispatcher. Any channel sender may be nil, in which
// case that channel is skipped (outcome recorded as not attempted). cfgStore
// may be nil; when present, the EMAIL_SIGNATURE admin key overrides the
// configured signature.
func NewDispatcher(store *Store, email EmailSender, sheet SheetAppender, slack SlackSender, cfg config.NotifyConfig, cfgStore storage.Storage, logger *zap.Logger) *Dispatcher {
	timeout := time.Duration(cfg.ChannelTimeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		store:        store,
		email:        email,
		sheet:        sheet,
		slack:        slack,
		slackChannel: cfg.SlackChannel,
		signature:    cfg.Signature,
		cfgStore:     cfgStore,
		timeout:      timeout,
		logger:       logger,
	}
}

// Store exposes the underlying notification store.
func (d *Dispatcher) Store() *Store {
	return d.store
}

// Dispatch records a missing-clause notification and attempts each configured
// channel in turn. The record is inserted before any delivery so that readers
// see the notification even while channels are still in flight; per-channel
// outcome flags are filled in as attempts complete. Returns the stored record.
func (d *Dispatcher) Dispatch(ctx context.Context, req DispatchRequest) (*models.NotificationRecord, error) {
	if req.Recipient == "" {
		return nil, ErrAuthRequired
	}

	missing := make([]string, 0, len(req.Findings))
	for _, f := range req.Findings {
		missing = append(missing, f.Label)
	}

	message := ComposeMessage(req.Recipient, req.Filename, missing, req.DownloadURL, d.effectiveSignature(ctx))

	d.logger.Debug("dispatching notification",
		zap.String("recipient", req.Recipient),
		zap.Strings("missing", missing),
		zap.String("message", utils.Truncate(message, 200)))

	rec := &models.NotificationRecord{
		Type:             models.NotificationMissingClauses,
		Message:          message,
		Recipient:        req.Recipient,
		Missing:          missing,
		AmendedAvailable: req.AmendmentAvailable,
	}
	d.store.Insert(rec)
	ts := rec.Timestamp

	if d.email != nil {
		ok := d.attempt(ctx, "email", func(cctx context.Context) error {
			return d.email.Send(cctx, req.Recipient, "Contract analysis: missing clauses detected", message, req.AttachmentPath)
		})
		d.setFlag(rec, ts, func(r *models.NotificationRecord) { r.EmailSent = &ok })
	}
	if d.sheet != nil {
		ok := d.attempt(ctx, "sheet", func(cctx context.Context) error {
			return d.sheet.Append(cctx, ts, req.Recipient, req.Filename, missing)
		})
		d.setFlag(rec, ts, func(r *models.NotificationRecord) { r.SheetAppended = &ok })
	}
	if d.slack != nil {
		ok := d.attempt(ctx, "slack", func(cctx context.Context) error {
			return d.slack.Send(cctx, d.slackChannel, message)
		})
		d.setFlag(rec, ts, func(r *models.NotificationRecord) { r.SlackSent = &ok })
	}

	return d.store.latest(ts, rec), nil
}

// ReceiveSlack records an incoming chat-relay message and best-effort echoes
// it back to the channel it came from.
func (d *Dispatcher) ReceiveSlack(ctx context.Context, channel, text string) *models.NotificationRecord {
	rec := &models.NotificationRecord{
		Type:    models.NotificationSlackIncoming,
		Message: text,
		Channel: channel,
	}
	d.store.Insert(rec)
	ts := rec.Timestamp

	if d.slack != nil {
		ok := d.attempt(ctx, "slack echo", func(cctx context.Context) error {
			return d.slack.Send(cctx, channel, fmt.Sprintf("Received: %s", text))
		})
		d.setFlag(rec, ts, func(r *models.NotificationRecord) { r.Echoed = &ok })
	}

	return d.store.latest(ts, rec)
}

// attempt runs one channel delivery under the per-channel timeout, converting
// panics into failures. Reports whether the delivery succeeded.
func (d *Dispatcher) attempt(ctx context.Context, channel string, fn func(context.Context) error) bool {
	cctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("%s channel panic: %v", channel, r)
			}
		}()
		done <- fn(cctx)
	}()

	var err error
	select {
	case err = <-done:
	case <-cctx.Done():
		err = cctx.Err()
	}
	if err != nil {
		d.logger.Warn("notification channel failed",
			zap.String("channel", channel),
			zap.Error(err))
		return false
	}
	return true
}

// setFlag writes a channel outcome onto the stored record; when the record
// has already been evicted it falls back to mutating the local copy so the
// caller's response still carries the outcome.
func (d *Dispatcher) setFlag(rec *models.NotificationRecord, ts string, fn func(*models.NotificationRecord)) {
	if !d.store.Update(ts, fn) {
		fn(rec)
	}
}

// effectiveSignature returns the signature line, honoring the admin
// config-store override when present.
func (d *Dispatcher) effectiveSignature(ctx context.Context) string {
	if d.cfgStore != nil {
		if overrides, err := d.cfgStore.GetConfig(ctx); err == nil {
			if v, ok := overrides["EMAIL_SIGNATURE"]; ok && v != "" {
				return v
			}
		}
	}
	return d.signature
}

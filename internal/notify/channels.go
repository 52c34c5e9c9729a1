package notify

import "context"

// EmailSender delivers a direct message with an optional file attachment.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body, attachmentPath string) error
}

// SheetAppender appends one missing-clause row to a tracking spreadsheet.
type SheetAppender interface {
	Append(ctx context.Context, timestamp, recipient, filename string, missing []string) error
}

// SlackSender posts a chat-relay message to a channel or user.
type SlackSender interface {
	Send(ctx context.Context, channel, text string) error
}

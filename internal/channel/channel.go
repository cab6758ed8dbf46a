// Package channel defines the chat-transport contract the conversation core
// depends on. Concrete adapters (WhatsApp, Telegram, ...) live outside this
// module; the core only needs the three capabilities below and a normalized
// inbound message shape, so heterogeneous channels plug in behind one
// interface.
package channel

import "context"

// File is an outbound binary artifact (rendered receipt image or document).
type File struct {
	Data     []byte
	FileName string
	MimeType string
}

// Message is a normalized inbound chat message. From is the channel-scoped
// identity of the sender; MediaID references downloadable media (logo
// uploads) when present.
type Message struct {
	From    string
	Text    string
	MediaID string
}

// Channel is the outbound messaging capability set. Implementations must be
// safe for concurrent use across users.
type Channel interface {
	// Send delivers a plain text message to the given identity.
	Send(ctx context.Context, to, text string) error

	// SendFile delivers a binary artifact with a caption.
	SendFile(ctx context.Context, to string, f File, caption string) error

	// DownloadMedia fetches the media payload referenced by an inbound message.
	DownloadMedia(ctx context.Context, msg Message) ([]byte, error)
}

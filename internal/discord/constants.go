package discord

import "time"

// Embed colors
const (
	colorGreen  = 0x2ECC71
	colorRed    = 0xE74C3C
	colorBlue   = 0x3498DB
	colorGrey   = 0x95A5A6
	colorPurple = 0x9B59B6
)

// SendTimeout bounds a single webhook or channel post
const SendTimeout = 10 * time.Second

// webhookPathPrefix precedes "<id>/<token>" in a Discord webhook URL
const webhookPathPrefix = "/api/webhooks/"

// footerText is stamped on every announcement
const footerText = "Fate Protocol"

// Log messages
const (
	LogMsgAnnouncementSent   = "Discord announcement sent"
	LogMsgAnnouncementFailed = "Failed to send Discord announcement"
	LogMsgPayloadDecodeError = "Failed to decode event payload for announcement"
)

// Error contexts
const (
	ErrContextInvalidWebhook = "invalid discord webhook url"
	ErrContextSessionCreate  = "failed to create discord session"
	ErrContextSend           = "discord send failed"
)

package chunking

import (
	"fmt"
	"strings"
)

// Mode selects whether an upload uses the chunked protocol.
type Mode string

const (
	// ModeAuto chunks only payloads larger than twice the chunk size.
	ModeAuto Mode = "auto"
	// ModeAlways forces the chunked protocol regardless of size.
	ModeAlways Mode = "force"
	// ModeNever always uses the single-shot upload.
	ModeNever Mode = "disabled"
)

// IsValid reports whether m is one of the defined modes.
func (m Mode) IsValid() bool {
	switch m {
	case ModeAuto, ModeAlways, ModeNever:
		return true
	default:
		return false
	}
}

func (m Mode) String() string {
	return string(m)
}

// ParseMode maps user input to a Mode. Besides the canonical values it accepts
// "automatic", "always" and "never". An empty string is ModeAuto.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto", "automatic":
		return ModeAuto, nil
	case "force", "always":
		return ModeAlways, nil
	case "disabled", "never":
		return ModeNever, nil
	default:
		return "", &ConfigError{Field: "mode", Value: s, Err: ErrInvalidMode}
	}
}

// ShouldChunk decides whether a payload of payloadSize bytes is sent through the
// chunked protocol. In ModeAuto the threshold is strictly greater than two chunks,
// so a payload of exactly 2*chunkByteCount goes out in a single request.
func ShouldChunk(mode Mode, chunkByteCount, payloadSize int64) bool {
	switch mode {
	case ModeAlways:
		return true
	case ModeAuto:
		return payloadSize > 2*chunkByteCount
	default:
		return false
	}
}

func validModes() string {
	return fmt.Sprintf("%s, %s, %s", ModeAuto, ModeAlways, ModeNever)
}

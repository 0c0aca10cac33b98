package meetings

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"healthmate-server/internal/config"
)

// Provider provisions a joinable meeting URL for a video consultation.
// Real video-call vendors plug in behind this contract.
type Provider interface {
	CreateMeeting(ctx context.Context, appointmentID string) (string, error)
}

// StaticProvider mints room URLs under a configured base URL. It stands in
// for a real conferencing vendor integration.
type StaticProvider struct {
	baseURL string
}

// NewStaticProvider creates a StaticProvider from configuration.
func NewStaticProvider(cfg config.MeetingConfig) *StaticProvider {
	return &StaticProvider{baseURL: strings.TrimRight(cfg.BaseURL, "/")}
}

// CreateMeeting returns a fresh room URL. The room id is random rather than
// derived from the appointment so links are not guessable.
func (p *StaticProvider) CreateMeeting(ctx context.Context, appointmentID string) (string, error) {
	return p.baseURL + "/" + uuid.New().String(), nil
}

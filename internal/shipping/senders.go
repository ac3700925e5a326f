package shipping

import (
	"strings"

	"github.com/spedigo-next/internal/config"
)

// SenderProfile is a fixed warehouse address keyed by a short code. Profiles
// are immutable configuration, not persisted state.
type SenderProfile struct {
	Code     string
	Name     string
	Email    string
	Phone    string
	Country  string
	Province string
	City     string
	Postcode string
	Street   string
}

// SenderRegistry resolves sender codes found in order tags.
type SenderRegistry struct {
	profiles map[string]SenderProfile
}

// NewSenderRegistry builds the registry from configuration.
func NewSenderRegistry(cfg config.SendersConfig) *SenderRegistry {
	profiles := make(map[string]SenderProfile, len(cfg.Profiles))
	for code, p := range cfg.Profiles {
		normalized := strings.ToUpper(strings.TrimSpace(code))
		if normalized == "" {
			continue
		}
		profiles[normalized] = SenderProfile{
			Code:     normalized,
			Name:     p.Name,
			Email:    p.Email,
			Phone:    p.Phone,
			Country:  strings.ToUpper(strings.TrimSpace(p.Country)),
			Province: p.Province,
			City:     p.City,
			Postcode: p.Postcode,
			Street:   p.Street,
		}
	}
	return &SenderRegistry{profiles: profiles}
}

// Resolve returns the profile for a sender code.
func (r *SenderRegistry) Resolve(code string) (SenderProfile, bool) {
	if r == nil {
		return SenderProfile{}, false
	}
	profile, ok := r.profiles[strings.ToUpper(strings.TrimSpace(code))]
	return profile, ok
}

// Has reports whether a sender code is configured.
func (r *SenderRegistry) Has(code string) bool {
	_, ok := r.Resolve(code)
	return ok
}

// Codes lists the configured sender codes.
func (r *SenderRegistry) Codes() []string {
	if r == nil {
		return nil
	}
	codes := make([]string, 0, len(r.profiles))
	for code := range r.profiles {
		codes = append(codes, code)
	}
	return codes
}

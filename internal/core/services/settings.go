package services

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/custodia-labs/pdfboard/internal/core/domain"
	"github.com/custodia-labs/pdfboard/internal/core/ports/driven"
	"github.com/custodia-labs/pdfboard/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	KeyBackendProvider   = "backend.provider"
	KeyBackendBaseURL    = "backend.base_url"
	KeyBackendTimeout    = "backend.timeout"
	KeyBackendAPIKey     = "backend.api_key"
	KeyBackendTextModel  = "backend.text_model"
	KeyBackendImageModel = "backend.image_model"
	KeyGenerationRate    = "generation.rate_limit"
	KeyGenerationBurst   = "generation.burst"
	KeyFollowFulfilled   = "generation.follow_fulfilled"
	KeyJournalEnabled    = "journal.enabled"
	KeyJournalDir        = "journal.dir"
)

type keyKind int

const (
	kindString keyKind = iota
	kindInt
	kindFloat
	kindBool
	kindDuration
)

var settingKinds = map[string]keyKind{
	KeyBackendProvider:   kindString,
	KeyBackendBaseURL:    kindString,
	KeyBackendTimeout:    kindDuration,
	KeyBackendAPIKey:     kindString,
	KeyBackendTextModel:  kindString,
	KeyBackendImageModel: kindString,
	KeyGenerationRate:    kindFloat,
	KeyGenerationBurst:   kindInt,
	KeyFollowFulfilled:   kindBool,
	KeyJournalEnabled:    kindBool,
	KeyJournalDir:        kindString,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	validate    *validator.Validate
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Backend: domain.BackendSettings{
			Provider:   s.getProvider(defaults.Backend.Provider),
			BaseURL:    s.getString(KeyBackendBaseURL, defaults.Backend.BaseURL),
			Timeout:    s.getDuration(KeyBackendTimeout, defaults.Backend.Timeout),
			APIKey:     s.configStore.GetString(KeyBackendAPIKey),
			TextModel:  s.getString(KeyBackendTextModel, defaults.Backend.TextModel),
			ImageModel: s.getString(KeyBackendImageModel, defaults.Backend.ImageModel),
		},
		Generation: domain.GenerationSettings{
			RateLimit:       s.getFloat(KeyGenerationRate, defaults.Generation.RateLimit),
			Burst:           s.getInt(KeyGenerationBurst, defaults.Generation.Burst),
			FollowFulfilled: s.getBool(KeyFollowFulfilled, defaults.Generation.FollowFulfilled),
		},
		Journal: domain.JournalSettings{
			Enabled: s.getBool(KeyJournalEnabled, defaults.Journal.Enabled),
			Dir:     s.configStore.GetString(KeyJournalDir),
		},
	}

	return settings, nil
}

// Save validates and persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if err := s.check(settings); err != nil {
		return err
	}

	values := []struct {
		key   string
		value any
	}{
		{KeyBackendProvider, settings.Backend.Provider.String()},
		{KeyBackendBaseURL, settings.Backend.BaseURL},
		{KeyBackendTimeout, settings.Backend.Timeout.String()},
		{KeyBackendTextModel, settings.Backend.TextModel},
		{KeyBackendImageModel, settings.Backend.ImageModel},
		{KeyGenerationRate, settings.Generation.RateLimit},
		{KeyGenerationBurst, settings.Generation.Burst},
		{KeyFollowFulfilled, settings.Generation.FollowFulfilled},
		{KeyJournalEnabled, settings.Journal.Enabled},
		{KeyJournalDir, settings.Journal.Dir},
	}
	if settings.Backend.APIKey != "" {
		values = append(values, struct {
			key   string
			value any
		}{KeyBackendAPIKey, settings.Backend.APIKey})
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// Set updates one setting, parsing value for the key's type. The resulting
// settings must still validate.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("unknown setting %q: %w", key, domain.ErrInvalidInput)
	}

	parsed, err := parseSetting(kind, strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("setting %s: %w", key, errors.Join(domain.ErrInvalidInput, err))
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	applySetting(settings, key, parsed)

	return s.Save(settings)
}

// Keys returns every settable key in sorted order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKinds))
	for k := range settingKinds {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Validate checks the current settings.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.check(settings)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (s *SettingsService) check(settings *domain.AppSettings) error {
	if err := s.validate.Struct(settings); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			first := verrs[0]
			return fmt.Errorf("invalid %s (%s): %w", first.Namespace(), first.Tag(), domain.ErrInvalidInput)
		}
		return fmt.Errorf("validate settings: %w", err)
	}
	if settings.Backend.Provider == domain.BackendHTTP && settings.Backend.BaseURL == "" {
		return fmt.Errorf("backend %s requires a base_url: %w", settings.Backend.Provider, domain.ErrInvalidInput)
	}
	return nil
}

func parseSetting(kind keyKind, value string) (any, error) {
	switch kind {
	case kindInt:
		return strconv.Atoi(value)
	case kindFloat:
		return strconv.ParseFloat(value, 64)
	case kindBool:
		return strconv.ParseBool(value)
	case kindDuration:
		return time.ParseDuration(value)
	default:
		return value, nil
	}
}

func applySetting(settings *domain.AppSettings, key string, v any) {
	switch key {
	case KeyBackendProvider:
		settings.Backend.Provider = domain.BackendProvider(v.(string))
	case KeyBackendBaseURL:
		settings.Backend.BaseURL = v.(string)
	case KeyBackendTimeout:
		settings.Backend.Timeout = v.(time.Duration)
	case KeyBackendAPIKey:
		settings.Backend.APIKey = v.(string)
	case KeyBackendTextModel:
		settings.Backend.TextModel = v.(string)
	case KeyBackendImageModel:
		settings.Backend.ImageModel = v.(string)
	case KeyGenerationRate:
		settings.Generation.RateLimit = v.(float64)
	case KeyGenerationBurst:
		settings.Generation.Burst = v.(int)
	case KeyFollowFulfilled:
		settings.Generation.FollowFulfilled = v.(bool)
	case KeyJournalEnabled:
		settings.Journal.Enabled = v.(bool)
	case KeyJournalDir:
		settings.Journal.Dir = v.(string)
	}
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetDuration(key)
}

func (s *SettingsService) getProvider(defaultVal domain.BackendProvider) domain.BackendProvider {
	val := s.configStore.GetString(KeyBackendProvider)
	if val == "" {
		return defaultVal
	}
	provider := domain.BackendProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// PolicyConfig carries the fee policy knobs that operators tune without a
// redeploy: when an unpaid balance counts as overdue, and the wording of
// payment reminders. The pending/overdue distinction is never derived by
// payment reconciliation itself; it is applied only by the explicit
// status-reconcile operation using these values.
type PolicyConfig struct {
	OverdueAfterDays int    `mapstructure:"overdueAfterDays"`
	ReminderSubject  string `mapstructure:"reminderSubject"`
	ReminderTemplate string `mapstructure:"reminderTemplate"`
}

func DefaultPolicyConfig() PolicyConfig {
	return PolicyConfig{
		OverdueAfterDays: 30,
		ReminderSubject:  "School fees payment reminder",
		ReminderTemplate: "Payment reminder for %s. Outstanding balance: %v",
	}
}

type PolicyHolder struct {
	current atomic.Value // holds PolicyConfig
}

func NewPolicyHolder() (*PolicyHolder, error) {
	v := viper.New()

	v.SetConfigName("policy")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/feeledger")
	v.AddConfigPath(".")

	v.SetEnvPrefix("FEELEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultPolicyConfig()
		v.SetDefault("policy.overdueAfterDays", defaults.OverdueAfterDays)
		v.SetDefault("policy.reminderSubject", defaults.ReminderSubject)
		v.SetDefault("policy.reminderTemplate", defaults.ReminderTemplate)
	}

	var cfg PolicyConfig
	if err := v.UnmarshalKey("policy", &cfg); err != nil {
		return nil, err
	}
	if err := validatePolicyConfig(cfg); err != nil {
		return nil, err
	}

	holder := &PolicyHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated PolicyConfig
		if err := v.UnmarshalKey("policy", &updated); err != nil {
			log.Printf("[policy-config] reload failed: %v", err)
			return
		}
		if err := validatePolicyConfig(updated); err != nil {
			log.Printf("[policy-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[policy-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// Current returns the live policy snapshot; reloads swap it atomically.
func (h *PolicyHolder) Current() PolicyConfig {
	return h.current.Load().(PolicyConfig)
}

// NewStaticPolicyHolder returns a holder pinned to the given config. Used by
// tests and callers that do not want file watching.
func NewStaticPolicyHolder(cfg PolicyConfig) *PolicyHolder {
	holder := &PolicyHolder{}
	holder.current.Store(cfg)
	return holder
}

func validatePolicyConfig(cfg PolicyConfig) error {
	if cfg.OverdueAfterDays <= 0 {
		return errors.New("policy.overdueAfterDays must be positive")
	}
	if strings.TrimSpace(cfg.ReminderTemplate) == "" {
		return errors.New("policy.reminderTemplate cannot be empty")
	}
	return nil
}

package config

import (
	"errors"
	"log"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// FeeScheduleConfig describes one marketplace's seller fee model.
type FeeScheduleConfig struct {
	Platform           string  `mapstructure:"platform"`
	PercentageFee      float64 `mapstructure:"percentageFee"`
	FixedProcessingFee float64 `mapstructure:"fixedProcessingFee"`
	Currency           string  `mapstructure:"currency"`
}

// AgingBucket groups in-stock inventory by days held.
type AgingBucket struct {
	Label   string `mapstructure:"label"`
	MinDays int    `mapstructure:"minDays"`
	MaxDays *int   `mapstructure:"maxDays"`
}

type MarketplaceConfig struct {
	FeeSchedules []FeeScheduleConfig `mapstructure:"feeSchedules"`
	AgingBuckets []AgingBucket       `mapstructure:"agingBuckets"`
}

func DefaultMarketplaceConfig() MarketplaceConfig {
	return MarketplaceConfig{
		FeeSchedules: []FeeScheduleConfig{
			{Platform: "StockX", PercentageFee: 0.095, FixedProcessingFee: 1.50, Currency: "EUR"},
			{Platform: "eBay", PercentageFee: 0.11, FixedProcessingFee: 0.35, Currency: "EUR"},
			{Platform: "GOAT", PercentageFee: 0.095, FixedProcessingFee: 5.00, Currency: "EUR"},
			{Platform: "Alias", PercentageFee: 0.095, FixedProcessingFee: 0, Currency: "EUR"},
		},
		AgingBuckets: []AgingBucket{
			{Label: "0-30", MinDays: 0, MaxDays: intPtr(30)},
			{Label: "31-90", MinDays: 31, MaxDays: intPtr(90)},
			{Label: "90+", MinDays: 91, MaxDays: nil},
		},
	}
}

func intPtr(v int) *int { return &v }

// MarketplaceConfigHolder serves the current marketplace config and hot
// reloads it when the backing file changes.
type MarketplaceConfigHolder struct {
	current atomic.Value // holds MarketplaceConfig

	mu       sync.Mutex
	onChange []func(MarketplaceConfig)
}

func NewMarketplaceConfigHolder() (*MarketplaceConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("marketplaces")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/soleledger/config")
	v.AddConfigPath("/etc/soleledger")
	v.AddConfigPath(".")

	v.SetEnvPrefix("SOLELEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultMarketplaceConfig()
		v.SetDefault("marketplaces.feeSchedules", defaults.FeeSchedules)
		v.SetDefault("marketplaces.agingBuckets", defaults.AgingBuckets)
	}

	var cfg MarketplaceConfig
	if err := v.UnmarshalKey("marketplaces", &cfg); err != nil {
		return nil, err
	}
	if err := validateMarketplaceConfig(cfg); err != nil {
		return nil, err
	}

	holder := &MarketplaceConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated MarketplaceConfig
		if err := v.UnmarshalKey("marketplaces", &updated); err != nil {
			log.Printf("[marketplace-config] reload failed: %v", err)
			return
		}
		if err := validateMarketplaceConfig(updated); err != nil {
			log.Printf("[marketplace-config] invalid config ignored: %v", err)
			return
		}
		holder.update(updated)
		log.Printf("[marketplace-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticMarketplaceConfigHolder wraps a fixed config with no file
// watching. Used by tests and one-shot tooling.
func NewStaticMarketplaceConfigHolder(cfg MarketplaceConfig) *MarketplaceConfigHolder {
	holder := &MarketplaceConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *MarketplaceConfigHolder) Get() MarketplaceConfig {
	return h.current.Load().(MarketplaceConfig)
}

// OnChange registers fn to run after every successful reload. Fee
// schedules live in the database, so consumers use this to re-apply
// the reloaded config there.
func (h *MarketplaceConfigHolder) OnChange(fn func(MarketplaceConfig)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onChange = append(h.onChange, fn)
}

func (h *MarketplaceConfigHolder) update(cfg MarketplaceConfig) {
	h.current.Store(cfg)

	h.mu.Lock()
	callbacks := make([]func(MarketplaceConfig), len(h.onChange))
	copy(callbacks, h.onChange)
	h.mu.Unlock()

	for _, fn := range callbacks {
		fn(cfg)
	}
}

func validateMarketplaceConfig(cfg MarketplaceConfig) error {
	if len(cfg.FeeSchedules) == 0 {
		return errors.New("marketplaces.feeSchedules cannot be empty")
	}
	for _, fs := range cfg.FeeSchedules {
		if strings.TrimSpace(fs.Platform) == "" {
			return errors.New("marketplaces.feeSchedules: platform name required")
		}
		if fs.PercentageFee < 0 || fs.PercentageFee > 1 {
			return errors.New("marketplaces.feeSchedules: percentageFee must be within [0,1]")
		}
		if fs.FixedProcessingFee < 0 {
			return errors.New("marketplaces.feeSchedules: fixedProcessingFee cannot be negative")
		}
	}
	if len(cfg.AgingBuckets) == 0 {
		return errors.New("marketplaces.agingBuckets cannot be empty")
	}
	return nil
}

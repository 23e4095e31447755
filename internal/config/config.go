// Package config loads a simulation profile from a file, PRICEGEN_* environment
// variables and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/zappabad/pricegen"
	"github.com/zappabad/pricegen/internal/model"
	"github.com/zappabad/pricegen/internal/postprocess"
)

var ErrInvalidConfig = errors.New("invalid config")

const envPrefix = "PRICEGEN"

// Profile describes one simulation run.
type Profile struct {
	Start      float64       `mapstructure:"start"`
	Length     int           `mapstructure:"length"`
	Paths      int           `mapstructure:"paths"`
	Volatility float64       `mapstructure:"volatility"`
	Drift      float64       `mapstructure:"drift"`
	Algorithm  string        `mapstructure:"algorithm"`
	Seed       int64         `mapstructure:"seed"`
	Min        float64       `mapstructure:"min"`
	Max        float64       `mapstructure:"max"`
	Delisting  bool          `mapstructure:"delisting"`
	Step       float64       `mapstructure:"step"`
	DataType   string        `mapstructure:"data-type"`
	Interval   time.Duration `mapstructure:"interval"`
	Ticks      int           `mapstructure:"ticks"`
	Format     string        `mapstructure:"format"`

	// HasSeed is true when a seed was given by any source.
	HasSeed bool `mapstructure:"-"`
}

// Default returns the profile used when nothing is configured.
func Default() Profile {
	o := pricegen.DefaultOptions()
	return Profile{
		Start:      100,
		Length:     o.Length,
		Paths:      1,
		Volatility: o.Volatility,
		Drift:      o.Drift,
		Algorithm:  string(o.Algorithm),
		DataType:   string(o.DataType),
		Interval:   o.Interval,
		Format:     "json",
	}
}

// RegisterFlags adds the profile flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.Float64("start", d.Start, "start price")
	fs.Int("length", d.Length, "path length, start price included")
	fs.Int("paths", d.Paths, "number of batch paths")
	fs.Float64("volatility", d.Volatility, "annualized volatility")
	fs.Float64("drift", d.Drift, "annualized drift")
	fs.String("algorithm", d.Algorithm, "price model: RandomWalk or GBM")
	fs.Int64("seed", 0, "seed for reproducible draws (unset means random)")
	fs.Float64("min", d.Min, "soft lower bound (0 with max 0 disables bounds)")
	fs.Float64("max", d.Max, "soft upper bound")
	fs.Bool("delisting", d.Delisting, "allow prices to reach zero, disables bounds")
	fs.Float64("step", d.Step, "round prices to a multiple of step")
	fs.String("data-type", d.DataType, "output type: float or int")
	fs.Duration("interval", d.Interval, "live tick interval")
	fs.Int("ticks", d.Ticks, "live ticks before stopping (0 runs until interrupted)")
	fs.String("format", d.Format, "batch output format: json or csv")
}

// Load reads the profile. path may be empty; fs may be nil.
func Load(path string, fs *pflag.FlagSet) (Profile, error) {
	v := viper.New()
	d := Default()
	v.SetDefault("start", d.Start)
	v.SetDefault("length", d.Length)
	v.SetDefault("paths", d.Paths)
	v.SetDefault("volatility", d.Volatility)
	v.SetDefault("drift", d.Drift)
	v.SetDefault("algorithm", d.Algorithm)
	v.SetDefault("min", d.Min)
	v.SetDefault("max", d.Max)
	v.SetDefault("delisting", d.Delisting)
	v.SetDefault("step", d.Step)
	v.SetDefault("data-type", d.DataType)
	v.SetDefault("interval", d.Interval)
	v.SetDefault("ticks", d.Ticks)
	v.SetDefault("format", d.Format)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	// AutomaticEnv only applies to keys viper already knows; seed has no default.
	if err := v.BindEnv("seed"); err != nil {
		return Profile{}, err
	}

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return Profile{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Profile{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var p Profile
	if err := v.Unmarshal(&p); err != nil {
		return Profile{}, fmt.Errorf("decode config: %w", err)
	}
	p.HasSeed = v.IsSet("seed")

	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Validate rejects profiles that could never produce a price.
func (p Profile) Validate() error {
	var errs []error
	if p.Length < 1 {
		errs = append(errs, fmt.Errorf("length must be at least 1: got %d", p.Length))
	}
	if p.Paths < 1 {
		errs = append(errs, fmt.Errorf("paths must be at least 1: got %d", p.Paths))
	}
	if p.Volatility < 0 {
		errs = append(errs, fmt.Errorf("volatility must be non-negative: got %v", p.Volatility))
	}
	if p.Min < 0 || p.Max < 0 {
		errs = append(errs, fmt.Errorf("bounds must be non-negative: got [%v, %v]", p.Min, p.Max))
	}
	if p.Step < 0 {
		errs = append(errs, fmt.Errorf("step must be non-negative: got %v", p.Step))
	}
	if p.Interval <= 0 {
		errs = append(errs, fmt.Errorf("interval must be positive: got %v", p.Interval))
	}
	if p.Ticks < 0 {
		errs = append(errs, fmt.Errorf("ticks must be non-negative: got %d", p.Ticks))
	}
	if _, err := model.Lookup(model.Name(p.Algorithm)); err != nil {
		errs = append(errs, err)
	}
	if _, err := postprocess.ParseDataType(p.DataType); err != nil {
		errs = append(errs, err)
	}
	switch p.Format {
	case "json", "csv":
	default:
		errs = append(errs, fmt.Errorf("format must be json or csv: got %q", p.Format))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Options maps the profile to generator options.
func (p Profile) Options() []pricegen.Option {
	opts := []pricegen.Option{
		pricegen.WithLength(p.Length),
		pricegen.WithVolatility(p.Volatility),
		pricegen.WithDrift(p.Drift),
		pricegen.WithAlgorithm(pricegen.Algorithm(p.Algorithm)),
		pricegen.WithBounds(p.Min, p.Max),
		pricegen.WithDelisting(p.Delisting),
		pricegen.WithStep(p.Step),
		pricegen.WithDataType(pricegen.DataType(strings.ToLower(p.DataType))),
		pricegen.WithInterval(p.Interval),
	}
	if p.HasSeed {
		opts = append(opts, pricegen.WithSeed(p.Seed))
	}
	return opts
}

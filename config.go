/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Seednode/letterdash/games/scattergories"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	bind           string
	categories     string
	hostTimeout    time.Duration
	letterChanges  int
	maxTeamSize    int
	minTeamSize    int
	port           int
	prefix         string
	profile        bool
	roundDuration  int
	sessionTimeout time.Duration
	tlsCert        string
	tlsKey         string
	verbose        bool
	version        bool
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.minTeamSize < 1 || c.maxTeamSize < c.minTeamSize {
		return fmt.Errorf("invalid team size bounds (need 1 <= min <= max): %d-%d", c.minTeamSize, c.maxTeamSize)
	}
	if c.roundDuration < 1 {
		return fmt.Errorf("invalid round duration (must be at least 1 second): %d", c.roundDuration)
	}
	if c.letterChanges < 0 {
		return fmt.Errorf("invalid letter change allowance (must not be negative): %d", c.letterChanges)
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

func (c *Config) rules() scattergories.Rules {
	r := scattergories.DefaultRules()
	r.MinTeamSize = c.minTeamSize
	r.MaxTeamSize = c.maxTeamSize
	r.LetterChanges = c.letterChanges
	r.RoundDuration = c.roundDuration
	return r
}

// pool returns the operator's category file if one was given, otherwise the
// built-in categories.
func (c *Config) pool() (scattergories.Pool, error) {
	if c.categories == "" {
		return scattergories.DefaultPool(), nil
	}
	return scattergories.LoadPool(c.categories)
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("LETTERDASH")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "letterdash",
		Short:         "A team word-race party game: one word per category, one letter, one clock.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return ServePage(cmd.Context(), cfg, args)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: LETTERDASH_BIND)")
	fs.StringVar(&cfg.categories, "categories", "", "path to a yaml category pool, replacing the built-in one (env: LETTERDASH_CATEGORIES)")
	fs.DurationVar(&cfg.hostTimeout, "host-timeout", 2*time.Minute, "time before a disconnected host hands control to another device (env: LETTERDASH_HOST_TIMEOUT)")
	fs.IntVar(&cfg.letterChanges, "letter-changes", 3, "letter changes allowed per team per match (env: LETTERDASH_LETTER_CHANGES)")
	fs.IntVar(&cfg.maxTeamSize, "max-team-size", 4, "largest allowed team (env: LETTERDASH_MAX_TEAM_SIZE)")
	fs.IntVar(&cfg.minTeamSize, "min-team-size", 3, "smallest allowed team (env: LETTERDASH_MIN_TEAM_SIZE)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: LETTERDASH_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: LETTERDASH_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: LETTERDASH_PROFILE)")
	fs.IntVar(&cfg.roundDuration, "round-duration", 120, "default turn length in seconds (env: LETTERDASH_ROUND_DURATION)")
	fs.DurationVar(&cfg.sessionTimeout, "session-timeout", 60*time.Minute, "time before idle games are ended (env: LETTERDASH_SESSION_TIMEOUT)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: LETTERDASH_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: LETTERDASH_TLS_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: LETTERDASH_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: LETTERDASH_VERSION)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("letterdash v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}

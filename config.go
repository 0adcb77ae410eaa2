package cdivs

import (
	"github.com/gogpu/cdivs/css"
	"github.com/gogpu/cdivs/host"
	"github.com/gogpu/cdivs/scheduler"
)

// Option configures a divider during creation.
// Use functional options to customize how it reaches the page.
//
// Example:
//
//	// Bottom wave on a static page
//	h, err := cdivs.New(el, cdivs.WithHost(doc), cdivs.WithOptions(cdivs.Options{"bottom": true}))
//
//	// Force the Gecko rounding profile
//	h, err := cdivs.New(el, cdivs.WithHost(doc), cdivs.WithProfile(css.Gecko))
type Option func(*config)

// config holds optional configuration for divider creation.
type config struct {
	host      host.Host
	scheduler *scheduler.Manager
	profile   css.Profile
	discovery Discovery
	options   Options
}

// WithHost sets the page the divider runs against. It is required unless
// a default host was installed with SetDefaultHost.
func WithHost(h host.Host) Option {
	return func(c *config) {
		c.host = h
	}
}

// WithScheduler sets the frame scheduler. Without it the process-wide
// scheduler.Default for the host is used.
func WithScheduler(m *scheduler.Manager) Option {
	return func(c *config) {
		c.scheduler = m
	}
}

// WithProfile sets the rendering-quirk profile. Without it the profile is
// detected from the host user agent.
func WithProfile(p css.Profile) Option {
	return func(c *config) {
		c.profile = p
	}
}

// WithDiscovery replaces the rule that picks the element whose background
// is extended.
func WithDiscovery(d Discovery) Option {
	return func(c *config) {
		c.discovery = d
	}
}

// WithOptions sets per-divider options on top of the defaults.
// Abbreviated names are accepted.
func WithOptions(o Options) Option {
	return func(c *config) {
		if c.options == nil {
			c.options = Options{}
		}
		for k, v := range canonical(o) {
			c.options[k] = v
		}
	}
}

var defaultHost host.Host

// SetDefaultHost installs the host used when WithHost is not given.
func SetDefaultHost(h host.Host) { defaultHost = h }

func newConfig(opts []Option) config {
	c := config{host: defaultHost, discovery: Siblings{}}
	for _, o := range opts {
		o(&c)
	}
	if c.host != nil {
		if c.scheduler == nil {
			c.scheduler = scheduler.Default(c.host)
		}
		if c.profile == nil {
			c.profile = css.DetectProfile(c.host.UserAgent())
		}
	}
	if c.discovery == nil {
		c.discovery = Siblings{}
	}
	return c
}

package afs

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"time"

	"afsearch/internal/core/coder"
	"afsearch/internal/core/facet"
	"afsearch/internal/core/query"
	"afsearch/internal/platform/config"
	perr "afsearch/internal/platform/errors"

	toml "github.com/pelletier/go-toml/v2"
)

// Config is the file form of a search client: connector, link path, query defaults and facets.
//
//	[connector]
//	host = "search.example.net"
//	service = 71003
//	status = "beta"
//
//	[[facet]]
//	id = "category"
//	type = "STRING"
//	layout = "TREE"
type Config struct {
	Connector ConnectorConfig `toml:"connector"`
	Links     LinksConfig     `toml:"links"`
	Query     QueryConfig     `toml:"query"`
	Facets    FacetsConfig    `toml:"facets"`
	Facet     []FacetConfig   `toml:"facet" validate:"dive"`
}

type ConnectorConfig struct {
	Host       string `toml:"host" validate:"required"`
	Scheme     string `toml:"scheme" validate:"omitempty,oneof=http https"`
	Service    int    `toml:"service" validate:"min=1"`
	Status     string `toml:"status" validate:"omitempty,oneof=stable rc alpha beta sandbox archive"`
	Timeout    string `toml:"timeout"`
	UserAgent  string `toml:"user_agent"`
	MaxRetries int    `toml:"max_retries" validate:"min=0"`
}

type LinksConfig struct {
	Path string `toml:"path"`
}

type QueryConfig struct {
	Lang    string   `toml:"lang" validate:"omitempty,lang"`
	Replies int      `toml:"replies" validate:"min=0"`
	Feeds   []string `toml:"feeds"`
}

type FacetsConfig struct {
	Order         string   `toml:"order" validate:"omitempty,oneof=STRICT LAX strict lax"`
	IDs           []string `toml:"ids" validate:"dive,facet_id"`
	DefaultSticky bool     `toml:"default_sticky"`
	Lazy          bool     `toml:"lazy"`
}

// FacetConfig declares one facet; an entry with only an id declares it untyped
type FacetConfig struct {
	ID     string `toml:"id" validate:"required,facet_id"`
	Type   string `toml:"type"`
	Layout string `toml:"layout"`
	Mode   string `toml:"mode"`
	Sticky *bool  `toml:"sticky"`
	Sort   string `toml:"sort" validate:"omitempty,oneof=alpha items alphaKey numKey"`
	Order  string `toml:"order"`
}

// DefaultConfig holds everything but the host and service
func DefaultConfig() Config {
	return Config{
		Connector: ConnectorConfig{Scheme: "http", Status: string(StatusStable), Timeout: defaultTimeout.String(), UserAgent: defaultUA},
		Links:     LinksConfig{Path: EndpointSearch.path()},
		Query:     QueryConfig{Replies: query.DefaultReplies},
	}
}

// LoadConfig reads path over the defaults then applies AFS_* variables.
// An empty or missing path only uses defaults and environment
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "read config %s", path)
		default:
			dec := toml.NewDecoder(bytes.NewReader(b))
			dec.DisallowUnknownFields()
			if err := dec.Decode(&cfg); err != nil {
				return Config{}, perr.Wrapf(err, perr.ErrorCodeValidation, "parse config %s", path)
			}
		}
	}
	cfg.applyEnv(config.New().Prefix("AFS_"))
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(env config.Conf) {
	cc := &c.Connector
	cc.Host = env.MayString("HOST", cc.Host)
	cc.Scheme = env.MayString("SCHEME", cc.Scheme)
	cc.Service = env.MayInt("SERVICE", cc.Service)
	cc.Status = env.MayString("STATUS", cc.Status)
	cc.Timeout = env.MayString("TIMEOUT", cc.Timeout)
	cc.MaxRetries = env.MayInt("MAX_RETRIES", cc.MaxRetries)
	c.Links.Path = env.MayString("LINK_PATH", c.Links.Path)
	c.Query.Lang = env.MayString("LANG", c.Query.Lang)
	c.Query.Feeds = env.MayCSV("FEEDS", c.Query.Feeds)
}

// ClientOptions converts the connector section
func (c Config) ClientOptions() (Options, error) {
	cc := c.Connector
	svc, err := NewService(cc.Service, Status(cc.Status))
	if err != nil {
		return Options{}, err
	}
	o := Options{Host: cc.Host, Scheme: cc.Scheme, Service: svc, UserAgent: cc.UserAgent, MaxRetries: cc.MaxRetries}
	if cc.Timeout != "" {
		d, err := time.ParseDuration(cc.Timeout)
		if err != nil {
			return Options{}, perr.WithField(perr.Validationf("invalid timeout %q", cc.Timeout), "timeout")
		}
		o.Timeout = d
	}
	return o, nil
}

// NewClient builds the HTTP connector described by the connector section
func (c Config) NewClient() (*Client, error) {
	o, err := c.ClientOptions()
	if err != nil {
		return nil, err
	}
	return NewClient(o)
}

// NewACPClient builds a connector on the autocomplete endpoint of the same host and service
func (c Config) NewACPClient() (*Client, error) {
	o, err := c.ClientOptions()
	if err != nil {
		return nil, err
	}
	o.Endpoint = EndpointACP
	return NewClient(o)
}

// Coder returns a query coder generating links on the configured path
func (c Config) Coder() *coder.QueryCoder {
	return coder.New(coder.Options{Path: c.Links.Path})
}

// Registry declares the configured facets, in file order.
// A facet configured without type or layout makes the registry lazy so it stays reachable
func (c Config) Registry() (*facet.Registry, error) {
	reg := facet.NewRegistry()
	reg.SetLazy(c.Facets.Lazy)
	reg.SetDefaultSticky(c.Facets.DefaultSticky)
	for _, fc := range c.Facet {
		if fc.untyped() {
			reg.SetLazy(true)
		}
		f, err := fc.build()
		if err != nil {
			return nil, perr.WithOp(err, "afs.Registry")
		}
		if err := reg.Add(f); err != nil {
			return nil, err
		}
		if fc.Sort != "" {
			dir := facet.Asc
			if fc.Order != "" {
				dir = facet.Direction(strings.ToUpper(fc.Order))
			}
			so, err := facet.NewValuesSortOrder(facet.SortMode(fc.Sort), dir)
			if err != nil {
				return nil, perr.WithField(err, "order")
			}
			if err := reg.SetValuesSortOrder(so, fc.ID); err != nil {
				return nil, err
			}
		}
	}
	if c.Facets.Order != "" {
		o, err := facet.ParseOrder(c.Facets.Order)
		if err != nil {
			return nil, err
		}
		if err := reg.SetOrder(o, c.Facets.IDs...); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func (fc FacetConfig) untyped() bool { return fc.Type == "" && fc.Layout == "" }

func (fc FacetConfig) build() (*facet.Facet, error) {
	if fc.untyped() {
		f, err := facet.Declare(fc.ID)
		if err != nil {
			return nil, err
		}
		return withSticky(f, fc.Sticky), nil
	}
	t, err := facet.ParseType(fc.Type)
	if err != nil {
		return nil, perr.WithField(err, "type")
	}
	l, err := facet.ParseLayout(fc.Layout)
	if err != nil {
		return nil, perr.WithField(err, "layout")
	}
	m := facet.ModeOr
	if fc.Mode != "" {
		if m, err = facet.ParseMode(fc.Mode); err != nil {
			return nil, perr.WithField(err, "mode")
		}
	}
	f, err := facet.New(fc.ID, t, l, m)
	if err != nil {
		return nil, err
	}
	return withSticky(f, fc.Sticky), nil
}

func withSticky(f *facet.Facet, sticky *bool) *facet.Facet {
	switch {
	case sticky == nil:
		return f
	case *sticky:
		return f.WithSticky(facet.Sticky)
	default:
		return f.WithSticky(facet.NonSticky)
	}
}

// NewQuery returns a fresh query over a new registry with the configured defaults
func (c Config) NewQuery() (query.Query, error) {
	reg, err := c.Registry()
	if err != nil {
		return query.Query{}, err
	}
	q := query.New().WithRegistry(reg)
	if len(c.Query.Feeds) > 0 {
		q = q.SetFeed(c.Query.Feeds...)
	}
	if c.Query.Replies > 0 {
		if q, err = q.SetReplies(c.Query.Replies); err != nil {
			return query.Query{}, err
		}
	}
	if c.Query.Lang != "" {
		if q, err = q.SetLang(c.Query.Lang); err != nil {
			return query.Query{}, err
		}
	}
	return q, nil
}

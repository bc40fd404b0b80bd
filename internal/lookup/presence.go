package lookup

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"mailscope/internal/cache"
	"mailscope/internal/models"
	"mailscope/internal/proxy"
)

// Service is one entry in the fixed, ordered universe of tracked
// platforms. ProbeURL is a format string taking the username part of the
// email; an empty ProbeURL means the service cannot be live-probed and is
// always reported absent.
type Service struct {
	Name     string
	Category string
	ProbeURL string
}

// DefaultCatalog is the tracked service universe, in priority order.
// Live probing walks this list top to bottom until the probe cap is hit.
var DefaultCatalog = []Service{
	{"linkedin", "Professional", "https://www.linkedin.com/in/%s"},
	{"github", "Professional", "https://api.github.com/users/%s"},
	{"twitter", "Social", "https://twitter.com/%s"},
	{"instagram", "Social", "https://www.instagram.com/%s/"},
	{"netflix", "Entertainment", ""},
	{"spotify", "Entertainment", "https://open.spotify.com/user/%s"},
	{"amazon", "Entertainment", ""},
	{"steam", "Gaming", "https://steamcommunity.com/id/%s"},
	{"playstation", "Gaming", ""},
	{"xbox", "Gaming", "https://xboxgamertag.com/search/%s"},
}

// PresenceMode selects how CheckServices gathers its answer.
type PresenceMode int

const (
	// InertDefault reports the full universe as absent without any I/O.
	InertDefault PresenceMode = iota
	// LiveProbe issues rate-limited HTTP probes for a bounded subset.
	LiveProbe
)

const presenceCacheTTL = 15 * time.Minute

// PresenceCollector checks whether an email's account exists on each
// tracked service. One probe failing never aborts the rest; an
// interrupted live run falls back to inert results for the remainder.
type PresenceCollector struct {
	mode       PresenceMode
	catalog    []Service
	client     *proxy.Client
	maxProbes  int
	probeDelay time.Duration
	cache      *cache.Store
}

// NewPresenceCollector builds a collector over the given catalog. The
// cache may be nil.
func NewPresenceCollector(mode PresenceMode, catalog []Service, client *proxy.Client, maxProbes int, probeDelay time.Duration, store *cache.Store) *PresenceCollector {
	if len(catalog) == 0 {
		catalog = DefaultCatalog
	}
	if maxProbes <= 0 {
		maxProbes = 10
	}
	return &PresenceCollector{
		mode:       mode,
		catalog:    catalog,
		client:     client,
		maxProbes:  maxProbes,
		probeDelay: probeDelay,
		cache:      store,
	}
}

// CheckServices returns the presence map over the full service universe.
// MatchCount and Categories are derived from the final map, never set
// independently of it.
func (c *PresenceCollector) CheckServices(ctx context.Context, email string) models.ServicePresence {
	normalized := strings.ToLower(strings.TrimSpace(email))

	cacheKey := "presence:" + normalized
	if c.cache != nil {
		if cached, ok := c.cache.Get(cacheKey); ok {
			return cached.(models.ServicePresence)
		}
	}

	presence := models.NewServicePresence()

	if c.mode == LiveProbe && c.client != nil {
		c.probeAll(ctx, normalized, &presence)
	}

	// Every catalog entry appears in the map, absent unless proven.
	for _, svc := range c.catalog {
		if _, ok := presence.Services[svc.Name]; !ok {
			presence.Set(svc.Name, false)
		}
	}

	presence.Categories = c.deriveCategories(presence)

	if c.cache != nil {
		c.cache.Set(cacheKey, presence, presenceCacheTTL)
	}
	return presence
}

// probeAll walks the catalog in order, probing at most maxProbes services
// with a fixed delay between requests. Context cancellation stops probing
// and leaves the remaining services inert.
func (c *PresenceCollector) probeAll(ctx context.Context, email string, presence *models.ServicePresence) {
	username := usernamePart(email)
	if username == "" {
		return
	}

	probed := 0
	for _, svc := range c.catalog {
		if probed >= c.maxProbes {
			break
		}
		if ctx.Err() != nil {
			return
		}

		presence.Set(svc.Name, c.probe(ctx, svc, username))
		probed++

		if c.probeDelay > 0 {
			select {
			case <-time.After(c.probeDelay):
			case <-ctx.Done():
				return
			}
		}
	}
}

// probe reports whether the service recognizes the username. Any failure
// counts as absent.
func (c *PresenceCollector) probe(ctx context.Context, svc Service, username string) bool {
	if svc.ProbeURL == "" {
		return false
	}

	target := fmt.Sprintf(svc.ProbeURL, username)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", probeUserAgent())

	resp, err := c.client.Execute(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// deriveCategories collects the categories of confirmed services only,
// in catalog order so the result is deterministic.
func (c *PresenceCollector) deriveCategories(presence models.ServicePresence) []string {
	var categories []string
	seen := make(map[string]struct{})
	for _, svc := range c.catalog {
		if !presence.Has(svc.Name) {
			continue
		}
		if _, ok := seen[svc.Category]; ok {
			continue
		}
		seen[svc.Category] = struct{}{}
		categories = append(categories, svc.Category)
	}
	return categories
}

func usernamePart(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return ""
	}
	return parts[0]
}

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
}

func probeUserAgent() string {
	return userAgents[rand.Intn(len(userAgents))]
}

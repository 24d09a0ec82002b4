// Package geo resolves client IPs to approximate locations via ip-api.com.
// Lookups fail open: any error degrades to the Unknown placeholders so a
// user action is never blocked on the resolver.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/alexander-datskov/chat67/internal/models"
)

const (
	// DefaultBaseURL is the free ip-api.com JSON endpoint.
	DefaultBaseURL = "http://ip-api.com/json"

	lookupTimeout = 3 * time.Second
	cacheTTL      = time.Hour
)

// Client looks up geolocation for IPs, caching results for an hour.
type Client struct {
	baseURL string
	http    *http.Client
	cache   *gocache.Cache
	logger  zerolog.Logger
}

// New returns a geo client. An empty baseURL selects ip-api.com.
func New(baseURL string, logger zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: lookupTimeout},
		cache:   gocache.New(cacheTTL, 10*time.Minute),
		logger:  logger,
	}
}

type apiResponse struct {
	Status  string  `json:"status"`
	Country string  `json:"country"`
	City    string  `json:"city"`
	ISP     string  `json:"isp"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// Lookup resolves one IP. Loopback and private addresses short-circuit to
// the Local placeholder without a network round trip.
func (c *Client) Lookup(ctx context.Context, ip string) models.Geo {
	if isPrivate(ip) {
		return models.LocalGeo()
	}
	if cached, ok := c.cache.Get(ip); ok {
		return cached.(models.Geo)
	}

	g, err := c.fetch(ctx, ip)
	if err != nil {
		c.logger.Debug().Err(err).Str("ip", ip).Msg("geo lookup failed")
		return models.UnknownGeo()
	}
	c.cache.Set(ip, g, gocache.DefaultExpiration)
	return g
}

func (c *Client) fetch(ctx context.Context, ip string) (models.Geo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+ip, nil)
	if err != nil {
		return models.Geo{}, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return models.Geo{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Geo{}, fmt.Errorf("geo api returned %d", resp.StatusCode)
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return models.Geo{}, err
	}
	if body.Status != "success" {
		return models.Geo{}, fmt.Errorf("geo api status %q", body.Status)
	}

	g := models.Geo{
		Country: body.Country,
		City:    body.City,
		ISP:     body.ISP,
		Lat:     body.Lat,
		Lon:     body.Lon,
	}
	if g.Country == "" {
		g.Country = "Unknown"
	}
	if g.City == "" {
		g.City = "Unknown"
	}
	if g.ISP == "" {
		g.ISP = "Unknown"
	}
	return g, nil
}

func isPrivate(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	return parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsLinkLocalUnicast()
}

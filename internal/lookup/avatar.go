package lookup

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"mailscope/internal/cache"
	"mailscope/internal/models"
	"mailscope/internal/proxy"
)

const defaultAvatarBaseURL = "https://www.gravatar.com"

const avatarCacheTTL = 15 * time.Minute

// AvatarCollector fetches the public avatar profile keyed by the MD5 hash
// of the normalized email address. Collect never returns an error: any
// network or parse failure degrades to an empty profile.
type AvatarCollector struct {
	client  *proxy.Client
	baseURL string
	cache   *cache.Store
}

// NewAvatarCollector builds a collector routing through the given proxy
// client. The cache may be nil to disable result reuse.
func NewAvatarCollector(client *proxy.Client, store *cache.Store) *AvatarCollector {
	return &AvatarCollector{
		client:  client,
		baseURL: defaultAvatarBaseURL,
		cache:   store,
	}
}

// Collect looks up the avatar profile for an email address.
func (c *AvatarCollector) Collect(ctx context.Context, email string) models.AvatarProfile {
	normalized := strings.ToLower(strings.TrimSpace(email))

	cacheKey := "avatar:" + normalized
	if c.cache != nil {
		if cached, ok := c.cache.Get(cacheKey); ok {
			return cached.(models.AvatarProfile)
		}
	}

	profile := c.fetch(ctx, normalized)

	if c.cache != nil {
		c.cache.Set(cacheKey, profile, avatarCacheTTL)
	}
	return profile
}

func (c *AvatarCollector) fetch(ctx context.Context, normalized string) models.AvatarProfile {
	hash := md5.Sum([]byte(normalized))
	target := fmt.Sprintf("%s/%x.json", c.baseURL, hash)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return models.AvatarProfile{}
	}
	req.Header.Set("User-Agent", probeUserAgent())

	resp, err := c.client.Execute(req)
	if err != nil {
		return models.AvatarProfile{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// 404 means no profile; anything else is treated the same way.
		return models.AvatarProfile{}
	}

	var payload struct {
		Entry []struct {
			DisplayName  string `json:"displayName"`
			ThumbnailURL string `json:"thumbnailUrl"`
			Accounts     []struct {
				Shortname string `json:"shortname"`
			} `json:"accounts"`
		} `json:"entry"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return models.AvatarProfile{}
	}

	// A 200 with an empty entry list is still "no profile".
	if len(payload.Entry) == 0 {
		return models.AvatarProfile{}
	}

	entry := payload.Entry[0]
	profile := models.AvatarProfile{
		Exists:      true,
		DisplayName: entry.DisplayName,
		ImageURL:    entry.ThumbnailURL,
	}
	for _, acc := range entry.Accounts {
		if acc.Shortname != "" {
			profile.LinkedAccounts = append(profile.LinkedAccounts, acc.Shortname)
		}
	}
	return profile
}

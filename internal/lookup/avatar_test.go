package lookup

import (
	"context"
	"crypto/md5"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync/atomic"
	"testing"

	"mailscope/internal/cache"
	"mailscope/internal/config"
	"mailscope/internal/models"
	"mailscope/internal/proxy"
)

func testProxyClient() *proxy.Client {
	return proxy.NewClient(config.Proxy{ConnectTimeoutMs: 5000, ReadTimeoutMs: 5000})
}

const avatarPayload = `{
	"entry": [{
		"displayName": "John Doe",
		"thumbnailUrl": "https://example.com/avatar/abc123",
		"accounts": [
			{"shortname": "twitter"},
			{"shortname": "github"},
			{"shortname": ""}
		]
	}]
}`

func TestAvatarCollectorFound(t *testing.T) {
	// The lookup key is the MD5 of the trimmed, lowercased address.
	wantPath := fmt.Sprintf("/%x.json", md5.Sum([]byte("john.doe@gmail.com")))

	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprint(w, avatarPayload)
	}))
	defer srv.Close()

	c := NewAvatarCollector(testProxyClient(), nil)
	c.baseURL = srv.URL

	profile := c.Collect(context.Background(), "  John.Doe@Gmail.COM  ")

	if gotPath != wantPath {
		t.Errorf("request path = %q, want %q", gotPath, wantPath)
	}
	if !profile.Exists {
		t.Fatal("Exists = false, want true")
	}
	if profile.DisplayName != "John Doe" {
		t.Errorf("DisplayName = %q, want %q", profile.DisplayName, "John Doe")
	}
	if profile.ImageURL != "https://example.com/avatar/abc123" {
		t.Errorf("ImageURL = %q", profile.ImageURL)
	}
	if want := []string{"twitter", "github"}; !reflect.DeepEqual(profile.LinkedAccounts, want) {
		t.Errorf("LinkedAccounts = %v, want %v", profile.LinkedAccounts, want)
	}
}

func TestAvatarCollectorDegradesToEmpty(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"Not found", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "not found", http.StatusNotFound)
		}},
		{"Server error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}},
		{"Malformed JSON", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "{not json")
		}},
		{"Empty entry list", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"entry": []}`)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := NewAvatarCollector(testProxyClient(), nil)
			c.baseURL = srv.URL

			profile := c.Collect(context.Background(), "someone@example.com")
			if !reflect.DeepEqual(profile, models.AvatarProfile{}) {
				t.Errorf("profile = %+v, want empty", profile)
			}
		})
	}
}

func TestAvatarCollectorUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewAvatarCollector(testProxyClient(), nil)
	c.baseURL = srv.URL

	profile := c.Collect(context.Background(), "someone@example.com")
	if profile.Exists {
		t.Error("Exists = true after connection failure, want false")
	}
}

func TestAvatarCollectorCaches(t *testing.T) {
	var hits int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		fmt.Fprint(w, avatarPayload)
	}))
	defer srv.Close()

	c := NewAvatarCollector(testProxyClient(), cache.New())
	c.baseURL = srv.URL

	first := c.Collect(context.Background(), "john.doe@gmail.com")
	second := c.Collect(context.Background(), "John.Doe@gmail.com")

	if got := atomic.LoadInt64(&hits); got != 1 {
		t.Errorf("upstream hits = %d, want 1 (second lookup should come from cache)", got)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("cached result differs: %+v vs %+v", first, second)
	}
}

package speech

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hammamikhairi/celestialwok/internal/domain"
	"github.com/hammamikhairi/celestialwok/internal/logger"
)

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...AzureOption) *AzureClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	opts = append([]AzureOption{WithEndpoint(srv.URL)}, opts...)
	return NewAzureClient("key", "eastasia", logger.New(logger.LevelOff, nil), opts...)
}

func TestGenerateSpeech(t *testing.T) {
	pcm := []byte{0x10, 0x00, 0xf0, 0xff}
	var ssml string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Ocp-Apim-Subscription-Key") != "key" {
			t.Errorf("missing subscription key")
		}
		if got := r.Header.Get("X-Microsoft-OutputFormat"); got != DefaultAudioFormat {
			t.Errorf("format = %s", got)
		}
		body, _ := io.ReadAll(r.Body)
		ssml = string(body)
		w.Write(pcm)
	})

	got, err := c.GenerateSpeech(context.Background(), "Step 1. Salt & pepper <to taste>")
	if err != nil {
		t.Fatalf("GenerateSpeech: %v", err)
	}
	if got != base64.StdEncoding.EncodeToString(pcm) {
		t.Fatalf("payload = %q", got)
	}
	if !strings.Contains(ssml, "Salt &amp; pepper &lt;to taste&gt;") {
		t.Errorf("text not escaped: %s", ssml)
	}
	if !strings.Contains(ssml, "xml:lang='zh-TW'") || !strings.Contains(ssml, DefaultVoice) {
		t.Errorf("unexpected voice markup: %s", ssml)
	}
}

func TestGenerateSpeechEnglishVoice(t *testing.T) {
	var ssml string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		ssml = string(body)
		w.Write([]byte{0, 0})
	}, WithVoice(VoiceFor("en")))

	if _, err := c.GenerateSpeech(context.Background(), "hello"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(ssml, "xml:lang='en-US'") || !strings.Contains(ssml, DefaultEnglishVoice) {
		t.Errorf("unexpected voice markup: %s", ssml)
	}
}

func TestGenerateSpeechFailures(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		noContent bool
	}{
		{"empty audio", http.StatusOK, "", true},
		{"unauthorized", http.StatusUnauthorized, "bad key", false},
		{"throttled", http.StatusTooManyRequests, "slow down", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})
			_, err := c.GenerateSpeech(context.Background(), "hi")
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errors.Is(err, domain.ErrNoContent); got != tt.noContent {
				t.Fatalf("ErrNoContent = %v, want %v (err=%v)", got, tt.noContent, err)
			}
			if tt.body != "" && !strings.Contains(err.Error(), tt.body) {
				t.Errorf("error does not carry body: %v", err)
			}
		})
	}
}

func TestVoiceFor(t *testing.T) {
	tests := []struct {
		locale string
		want   string
	}{
		{"en", DefaultEnglishVoice},
		{"zh-TW", DefaultVoice},
		{"", DefaultVoice},
	}
	for _, tt := range tests {
		if got := VoiceFor(tt.locale); got != tt.want {
			t.Errorf("VoiceFor(%q) = %s, want %s", tt.locale, got, tt.want)
		}
	}
}

package gpt

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hammamikhairi/celestialwok/internal/domain"
	"github.com/hammamikhairi/celestialwok/internal/logger"
)

func chatServer(t *testing.T, reply string, check func(chatRequest)) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("api-key") != "secret" {
			t.Errorf("missing api-key header")
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad body: %v", err)
		}
		if check != nil {
			check(req)
		}
		choices := []map[string]any{}
		if reply != "" {
			choices = append(choices, map[string]any{
				"finish_reason": "stop",
				"message":       map[string]string{"role": "assistant", "content": reply},
			})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": choices})
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "secret", logger.New(logger.LevelOff, nil))
}

func TestGradeDish(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"plain", `{"score": 72, "feedback": "Good wok hei", "tips": "Cut evenly"}`},
		{"fenced", "```json\n{\"score\": 72, \"feedback\": \"Good wok hei\", \"tips\": \"Cut evenly\"}\n```"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := chatServer(t, tt.reply, func(req chatRequest) {
				if req.ResponseFormat == nil || req.ResponseFormat.Type != "json_object" {
					t.Errorf("JSON mode not requested")
				}
				if len(req.Messages) != 2 || req.Messages[0].Role != "system" || len(req.Messages[1].Parts) != 2 {
					t.Errorf("unexpected messages: %+v", req.Messages)
					return
				}
				img := req.Messages[1].Parts[0]
				if img.ImageURL == nil || !strings.HasPrefix(img.ImageURL.URL, "data:image/jpeg;base64,") {
					t.Errorf("photo not attached: %+v", img)
				}
				if !strings.Contains(req.Messages[1].Parts[1].Text, "Mapo Tofu") {
					t.Errorf("prompt does not name the dish")
				}
			})
			g := NewGrader(c, "English", logger.New(logger.LevelOff, nil))

			res, err := g.GradeDish(context.Background(), []byte{0xff, 0xd8}, "Mapo Tofu")
			if err != nil {
				t.Fatalf("GradeDish: %v", err)
			}
			if res.Score != 72 || res.Feedback != "Good wok hei" || res.Tips != "Cut evenly" {
				t.Errorf("unexpected result: %+v", res)
			}
		})
	}
}

func TestGradeDishEmptyReply(t *testing.T) {
	g := NewGrader(chatServer(t, "", nil), "English", logger.New(logger.LevelOff, nil))
	_, err := g.GradeDish(context.Background(), []byte{1}, "Rice")
	if !errors.Is(err, domain.ErrNoContent) {
		t.Fatalf("err = %v, want ErrNoContent", err)
	}
}

func TestGradeDishBadJSON(t *testing.T) {
	g := NewGrader(chatServer(t, "looks tasty!", nil), "English", logger.New(logger.LevelOff, nil))
	if _, err := g.GradeDish(context.Background(), []byte{1}, "Rice"); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestCompleteAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "invalid api key"}}`))
	}))
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL, "wrong", logger.New(logger.LevelOff, nil))

	_, err := c.Complete(context.Background(), Completion{Prompt: "hi"})
	if err == nil || !strings.Contains(err.Error(), "invalid api key") {
		t.Fatalf("err = %v", err)
	}
	if errors.Is(err, domain.ErrNoContent) {
		t.Fatal("API failure must not look like absent content")
	}
}

func TestCompletionMessages(t *testing.T) {
	msgs := Completion{Prompt: "hello"}.messages()
	if len(msgs) != 1 || msgs[0].Role != "user" || len(msgs[0].Parts) != 1 {
		t.Fatalf("text-only completion = %+v", msgs)
	}
	if msgs[0].Parts[0].Text != "hello" {
		t.Errorf("prompt = %q", msgs[0].Parts[0].Text)
	}
}

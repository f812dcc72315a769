package gpt

import "encoding/base64"

// Chat-completions wire format. Only the fields the grader needs.

type chatMessage struct {
	Role  string `json:"role"`
	Parts []part `json:"content"`
}

type part struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageRef `json:"image_url,omitempty"`
}

type imageRef struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

type chatRequest struct {
	Model          string        `json:"model,omitempty"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	MaxTokens      int           `json:"max_tokens,omitempty"`
	ResponseFormat *replyFormat  `json:"response_format,omitempty"`
}

type replyFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		FinishReason string `json:"finish_reason"`
		Message      struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func textPart(s string) part { return part{Type: "text", Text: s} }

func jpegPart(jpeg []byte) part {
	return part{Type: "image_url", ImageURL: &imageRef{
		URL:    "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(jpeg),
		Detail: "low",
	}}
}

// messages lays a completion out as an optional system message followed
// by one user message holding the photo (if any) and the prompt.
func (c Completion) messages() []chatMessage {
	var out []chatMessage
	if c.System != "" {
		out = append(out, chatMessage{Role: "system", Parts: []part{textPart(c.System)}})
	}
	user := chatMessage{Role: "user"}
	if len(c.JPEG) > 0 {
		user.Parts = append(user.Parts, jpegPart(c.JPEG))
	}
	user.Parts = append(user.Parts, textPart(c.Prompt))
	return append(out, user)
}

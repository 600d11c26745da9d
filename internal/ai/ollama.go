package ai

import "context"

// ollamaRequest is the JSON body sent to POST /api/generate.
type ollamaRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options,omitempty"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

// ollamaResponse is the non-streaming /api/generate body.
type ollamaResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
}

func (c *client) sendOllama(ctx context.Context, prompt string) (string, error) {
	body := ollamaRequest{
		Model:  c.cfg.Model,
		Prompt: prompt,
		Stream: false,
		Options: ollamaOptions{
			Temperature: c.cfg.Temperature,
			NumPredict:  c.cfg.MaxOutputTokens,
		},
	}

	var resp ollamaResponse
	if err := c.postJSON(ctx, c.cfg.Endpoint+"/api/generate", body, nil, &resp); err != nil {
		return "", err
	}
	return resp.Response, nil
}

package models

// ProviderSettings holds the backend configuration of one AI provider.
type ProviderSettings struct {
	Provider string `json:"provider"`
	APIKey   string `json:"apiKey,omitempty"`
	Model    string `json:"model,omitempty"`
	APIURL   string `json:"apiUrl,omitempty"`
	Enabled  bool   `json:"enabled"`
}

// AISettings groups the settings of every provider known to the backend.
type AISettings struct {
	OpenAI *ProviderSettings `json:"openai,omitempty"`
	Gemini *ProviderSettings `json:"gemini,omitempty"`
	Groq   *ProviderSettings `json:"groq,omitempty"`
}

// ConnectionStatus is the backend's answer to a provider connection test.
type ConnectionStatus struct {
	Provider  string `json:"provider"`
	Connected bool   `json:"connected"`
	Message   string `json:"message"`
}

package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

// Notifier envia avisos para o funcionário por um canal externo.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// Message descreve um aviso transacional (aprovação de ponto, resposta de solicitação).
type Message struct {
	Destinatario string `json:"destinatario"`
	Assunto      string `json:"assunto"`
	Corpo        string `json:"corpo"`
}

// WebhookNotifier publica a mensagem em um endpoint HTTP de e-mail transacional.
type WebhookNotifier struct {
	webhookURL string
	client     *http.Client
}

// NewWebhookNotifier retorna nil quando a URL não está configurada;
// chamadas em notifier nil são no-op seguro.
func NewWebhookNotifier(webhookURL string) *WebhookNotifier {
	if webhookURL == "" {
		return nil
	}
	return &WebhookNotifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 5 * time.Second},
	}
}

// Notify envia a mensagem; falha de entrega não deve derrubar o fluxo chamador.
func (n *WebhookNotifier) Notify(ctx context.Context, msg Message) error {
	if n == nil || n.webhookURL == "" {
		return errors.New("notifier não configurado")
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return errors.New("falha ao entregar notificação")
	}
	return nil
}

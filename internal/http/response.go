package http

import (
	"encoding/json"
	"net/http"
)

// respostaAPI é o envelope único de todas as respostas JSON da API:
// exatamente um de Data/Erro é não-nulo.
type respostaAPI struct {
	Data any      `json:"data"`
	Erro *ErroAPI `json:"error"`
}

// ErroAPI descreve uma falha normalizada para o cliente.
type ErroAPI struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// WriteJSON envelopa dados de sucesso.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(respostaAPI{Data: data})
}

// WriteError envelopa uma falha com código estável e mensagem legível.
func WriteError(w http.ResponseWriter, status int, code, message string, details any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(respostaAPI{
		Erro: &ErroAPI{Code: code, Message: message, Details: details},
	})
}

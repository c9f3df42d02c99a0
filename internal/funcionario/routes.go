package funcionario

import "github.com/go-chi/chi/v5"

// Mount registra rotas do módulo de funcionários.
func Mount(r chi.Router, handler *Handler) {
	handler.RegisterRoutes(r)
}

package registro

import "github.com/go-chi/chi/v5"

// MountFuncionario registra as rotas de autoatendimento do funcionário.
func MountFuncionario(r chi.Router, handler *Handler) {
	handler.RegisterFuncionarioRoutes(r)
}

// MountAdmin registra as rotas do painel de aprovação.
func MountAdmin(r chi.Router, handler *Handler) {
	handler.RegisterAdminRoutes(r)
}

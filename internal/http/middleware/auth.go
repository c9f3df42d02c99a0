package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pontodigital/plataforma/internal/auth"
)

type contextKey string

const (
	ContextKeySubject contextKey = "subject"
	ContextKeyRoles   contextKey = "roles"
	ContextKeyEmpresa contextKey = "empresa"
)

// Auth valida JWT de acesso e injeta claims no contexto. A identidade da
// requisição vem exclusivamente do token verificado: não há sessão mutável.
func Auth(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeError(w, http.StatusUnauthorized, "AUTH", "token ausente")
				return
			}

			claims, err := jwtManager.ParseAndValidate(parts[1])
			if err != nil {
				writeError(w, http.StatusUnauthorized, "AUTH", "token inválido")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeySubject, claims.Subject)
			ctx = context.WithValue(ctx, ContextKeyRoles, claims.Roles)
			ctx = context.WithValue(ctx, ContextKeyEmpresa, claims.EmpresaID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSubject recupera subject do contexto.
func GetSubject(ctx context.Context) string {
	val, _ := ctx.Value(ContextKeySubject).(string)
	return val
}

// GetRoles recupera roles do contexto.
func GetRoles(ctx context.Context) []string {
	val, _ := ctx.Value(ContextKeyRoles).([]string)
	return val
}

// GetEmpresa recupera o escopo de empresa do contexto (vazio para IT_SUPPORT).
func GetEmpresa(ctx context.Context) string {
	val, _ := ctx.Value(ContextKeyEmpresa).(string)
	return val
}

// RequireRoles garante pelo menos um dos papéis informados.
func RequireRoles(requiredRoles ...string) func(http.Handler) http.Handler {
	normalized := make([]string, 0, len(requiredRoles))
	for _, role := range requiredRoles {
		role = strings.ToUpper(strings.TrimSpace(role))
		if role != "" {
			normalized = append(normalized, role)
		}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			roles := GetRoles(r.Context())
			for _, role := range roles {
				roleUpper := strings.ToUpper(strings.TrimSpace(role))
				for _, required := range normalized {
					if roleUpper == required {
						next.ServeHTTP(w, r)
						return
					}
				}
			}

			writeError(w, http.StatusForbidden, "FORBIDDEN", "acesso negado para este papel")
		})
	}
}

// RequireITSupport restringe a operadores da plataforma.
func RequireITSupport(next http.Handler) http.Handler {
	return RequireRoles("IT_SUPPORT")(next)
}

// RequireAdmin restringe a administradores de empresa (IT_SUPPORT também passa).
func RequireAdmin(next http.Handler) http.Handler {
	return RequireRoles("ADMIN", "IT_SUPPORT")(next)
}

// RequireFuncionario restringe ao autoatendimento do funcionário.
func RequireFuncionario(next http.Handler) http.Handler {
	return RequireRoles("FUNCIONARIO")(next)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data": nil,
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}

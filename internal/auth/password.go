package auth

import (
	"github.com/alexedwards/argon2id"
)

// Parâmetros do Argon2id. Ficam embutidos no próprio hash, então podem ser
// endurecidos sem invalidar senhas já gravadas.
var parametrosArgon = &argon2id.Params{
	Memory:      64 * 1024,
	Iterations:  3,
	Parallelism: 2,
	SaltLength:  16,
	KeyLength:   32,
}

// Hash gera o hash Argon2id da senha.
func Hash(senha string) (string, error) {
	return argon2id.CreateHash(senha, parametrosArgon)
}

// Verify compara a senha em claro com um hash Argon2id, usando os
// parâmetros embutidos no hash.
func Verify(senha, hash string) (bool, error) {
	return argon2id.ComparePasswordAndHash(senha, hash)
}

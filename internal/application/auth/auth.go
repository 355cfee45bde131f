// Package auth implementa la puerta de administración: un secreto compartido
// que, validado, emite un token de sesión con rol admin. No hay cuentas de
// usuario; el tracker es una herramienta interna de un solo dueño.
package auth

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/RafaelPasos/PaystubGen-App/internal/domain"
	"github.com/RafaelPasos/PaystubGen-App/pkg/config"
	"github.com/RafaelPasos/PaystubGen-App/pkg/jwt"
)

// RoleAdmin es el único rol que emite la puerta.
const RoleAdmin = "admin"

// AdminGate valida el secreto compartido y emite tokens de sesión.
type AdminGate struct {
	passwordHash string // hash bcrypt; tiene prioridad
	password     string // en claro, solo desarrollo
	jwtSecret    string
	issuer       string
	expMinutes   int
}

// NewAdminGate construye la puerta desde la configuración.
func NewAdminGate(admin config.AdminConfig, jwtCfg config.JWTConfig) *AdminGate {
	return &AdminGate{
		passwordHash: admin.PasswordHash,
		password:     admin.Password,
		jwtSecret:    jwtCfg.Secret,
		issuer:       jwtCfg.Issuer,
		expMinutes:   jwtCfg.Expiration,
	}
}

// Login valida el secreto y devuelve (token, minutos de vigencia).
func (g *AdminGate) Login(password string) (string, int, error) {
	if !g.check(password) {
		return "", 0, domain.ErrUnauthorized
	}
	token, err := jwt.Generate(g.jwtSecret, RoleAdmin, g.issuer, g.expMinutes)
	if err != nil {
		return "", 0, err
	}
	return token, g.expMinutes, nil
}

func (g *AdminGate) check(password string) bool {
	if g.passwordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(g.passwordHash), []byte(password)) == nil
	}
	return g.password != "" && g.password == password
}

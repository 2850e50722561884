package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"wesync/internal/domain/user"
)

// Auth берет имя пользователя из заголовка Authorization: Bearer <username>.
// Проверку подлинности выполняет шлюз перед сервером.
type Auth struct {
	api       huma.API
	log       *slog.Logger
	validator user.Validator
}

type Option func(*Auth)

// WithValidator отклоняет имена, не прошедшие проверку v
func WithValidator(v user.Validator) Option {
	return func(a *Auth) {
		a.validator = v
	}
}

func New(api huma.API, log *slog.Logger, opts ...Option) *Auth {
	a := &Auth{
		api: api,
		log: log.With("component", "auth"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// identity имя пользователя из заголовка, прошедшее проверку
func (a *Auth) identity(header, path string) (string, bool) {
	username, ok := Parse(header)
	if !ok {
		a.log.Warn("missing bearer identity", "path", path)
		return "", false
	}
	if a.validator != nil {
		if err := a.validator.ValidateUsername(username); err != nil {
			a.log.Warn("rejected identity", "path", path, "error", err)
			return "", false
		}
	}
	return username, true
}

type contextKey string

const UsernameKey contextKey = "username"

// Middleware возвращает middleware для Huma с сигнатурой func(ctx Context, next func(Context))
func (a *Auth) Middleware() func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		username, ok := a.identity(ctx.Header("Authorization"), ctx.URL().Path)
		if !ok {
			if err := huma.WriteErr(a.api, ctx, http.StatusUnauthorized, "Unauthorized"); err != nil {
				a.log.Error("failed to write auth error", "error", err)
			}
			return
		}
		next(huma.WithContext(ctx, WithUsername(ctx.Context(), username)))
	}
}

// Handler то же самое для обычных http обработчиков
func (a *Auth) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, ok := a.identity(r.Header.Get("Authorization"), r.URL.Path)
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUsername(r.Context(), username)))
	})
}

// Parse разбирает значение заголовка Authorization
func Parse(header string) (string, bool) {
	username, ok := strings.CutPrefix(header, "Bearer ")
	username = strings.TrimSpace(username)
	if !ok || username == "" {
		return "", false
	}
	return username, true
}

func WithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, UsernameKey, username)
}

func GetUsername(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(UsernameKey).(string)
	return username, ok && username != ""
}

package fbsr

import (
	"net/http"

	"go.uber.org/zap"
)

type middlewareOptions struct {
	logger    *zap.Logger
	optional  bool
	devBypass *DevBypassClaims
}

// MiddlewareOption customizes Middleware.
type MiddlewareOption func(*middlewareOptions)

// WithLogger sets the logger used to report rejected requests.
func WithLogger(logger *zap.Logger) MiddlewareOption {
	return func(o *middlewareOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithOptional lets requests without any signed request through unauthenticated.
// Invalid signed requests are still rejected.
func WithOptional(optional bool) MiddlewareOption {
	return func(o *middlewareOptions) {
		o.optional = optional
	}
}

// WithDevBypass binds synthetic claims to every request instead of verifying one.
func WithDevBypass(claims DevBypassClaims) MiddlewareOption {
	return func(o *middlewareOptions) {
		o.devBypass = &claims
	}
}

// Middleware verifies the signed request of every request and stores the
// caller in the request context. Failures are answered with 401.
func Middleware(app *Application, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	options := middlewareOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&options)
	}
	logger := options.logger.With(zap.Int64("app_id", app.cfg.ID))
	if options.devBypass != nil {
		logger.Warn("signed request verification bypassed")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if options.devBypass != nil {
				ctx := BindCaller(r.Context(), options.devBypass.ToCaller())
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			claims, err := app.SignedRequestFromRequest(r)
			if err != nil {
				if options.optional && CodeOf(err) == ErrCodeMissing {
					next.ServeHTTP(w, r)
					return
				}
				logger.Debug("signed request rejected",
					zap.String("code", string(CodeOf(err))),
					zap.String("path", r.URL.Path),
				)
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}

			ctx := BindCaller(r.Context(), Caller{Claims: claims})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

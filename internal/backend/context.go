package backend

import "context"

type accessTokenKey struct{}

// WithAccessToken attaches the caller's access token to ctx. Adapters that
// authorize per request, like the REST adapter, send it instead of the
// anonymous key.
func WithAccessToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, accessTokenKey{}, token)
}

// AccessToken returns the token stored by WithAccessToken, or "".
func AccessToken(ctx context.Context) string {
	token, _ := ctx.Value(accessTokenKey{}).(string)
	return token
}

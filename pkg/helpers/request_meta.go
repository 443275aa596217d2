package helpers

import "context"

type clientMetaKey struct{}

// ClientMeta describes the caller of an HTTP request for notification emails.
type ClientMeta struct {
	IP        string
	UserAgent string
}

// WithClientMeta stores m in ctx so code below the HTTP layer can read it.
func WithClientMeta(ctx context.Context, m ClientMeta) context.Context {
	return context.WithValue(ctx, clientMetaKey{}, m)
}

func ClientMetaFrom(ctx context.Context) (ClientMeta, bool) {
	m, ok := ctx.Value(clientMetaKey{}).(ClientMeta)
	return m, ok
}

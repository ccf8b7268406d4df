// Package grant provides a generic builder that composes a typed
// configuration value and a pair of stateful closures into something
// satisfying oauth.Grant, mirroring ash.Select/ash.Execute's pattern of a
// config value plus closures consulted at request time — generalized here
// with Go generics instead of the source's class-factory, per the
// capability-interface redesign.
package grant

import (
	"context"

	oauth "github.com/vellumauth/core"
)

// Builder wraps a typed config C and the Validate/Handle closures a grant
// needs into a value satisfying oauth.Grant. It is never exposed directly;
// each grant constructor (grants.AuthorizationCode, grants.RefreshToken,
// ...) returns the oauth.Grant interface instead.
type Builder[C any] struct {
	grantType string
	config    C
	validate  func(ctx context.Context, params oauth.Values, client oauth.Client, srv *oauth.Server, cfg C) (any, error)
	handle    func(ctx context.Context, validated any, client oauth.Client, srv *oauth.Server, cfg C) (*oauth.Issuance, error)
}

// New builds an oauth.Grant for grantType from a typed config and its two
// stateful steps. Grants built this way are small independent value types,
// never a class hierarchy, per the REDESIGN FLAGS capability-interface
// guidance.
func New[C any](
	grantType string,
	config C,
	validate func(ctx context.Context, params oauth.Values, client oauth.Client, srv *oauth.Server, cfg C) (any, error),
	handle func(ctx context.Context, validated any, client oauth.Client, srv *oauth.Server, cfg C) (*oauth.Issuance, error),
) oauth.Grant {
	return Builder[C]{
		grantType: grantType,
		config:    config,
		validate:  validate,
		handle:    handle,
	}
}

func (b Builder[C]) Type() string { return b.grantType }

func (b Builder[C]) Validate(ctx context.Context, params oauth.Values, client oauth.Client, srv *oauth.Server) (any, error) {
	return b.validate(ctx, params, client, srv, b.config)
}

func (b Builder[C]) Handle(ctx context.Context, validated any, client oauth.Client, srv *oauth.Server) (*oauth.Issuance, error) {
	return b.handle(ctx, validated, client, srv, b.config)
}

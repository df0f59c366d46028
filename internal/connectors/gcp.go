package connectors

import (
	"context"
	"gcpctl/internal/env"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/compute/v1"
	"google.golang.org/api/dns/v1"
	"google.golang.org/api/option"
	"os"
)

// GCP holds the API clients of one process run. It is built once and passed to every
// operation that talks to the provider.
type GCP struct {
	Compute *compute.Service
	DNS     *dns.Service
}

func New(ctx context.Context, settings env.Settings) (*GCP, error) {
	opts, err := clientOptions(ctx, settings)
	if err != nil {
		return nil, err
	}
	return NewWithOptions(ctx, opts...)
}

// NewWithOptions builds the clients from explicit options, for example an endpoint of a
// local fake.
func NewWithOptions(ctx context.Context, opts ...option.ClientOption) (*GCP, error) {
	computeService, err := compute.NewService(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "create compute client")
	}
	dnsService, err := dns.NewService(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "create dns client")
	}
	return &GCP{Compute: computeService, DNS: dnsService}, nil
}

func clientOptions(ctx context.Context, settings env.Settings) ([]option.ClientOption, error) {
	scopes := settings.Scopes
	if len(scopes) == 0 {
		scopes = env.DefaultScopes
	}

	if settings.CredentialsFile != "" {
		data, err := os.ReadFile(settings.CredentialsFile)
		if err != nil {
			return nil, errors.Wrap(err, "read credentials file")
		}
		creds, err := google.CredentialsFromJSON(ctx, data, scopes...)
		if err != nil {
			return nil, errors.Wrapf(err, "parse credentials file %s", settings.CredentialsFile)
		}
		log.Debug().Msgf("using credentials from %s", settings.CredentialsFile)
		return []option.ClientOption{option.WithTokenSource(creds.TokenSource)}, nil
	}

	tokenSource, err := google.DefaultTokenSource(ctx, scopes...)
	if err != nil {
		return nil, errors.Wrap(err, "find default credentials")
	}
	log.Debug().Msg("using application default credentials")
	return []option.ClientOption{option.WithTokenSource(tokenSource)}, nil
}

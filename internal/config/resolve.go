package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
)

// Platform bundles the resolver's three points of contact with the
// surrounding cloud. Each is a narrow interface so tests can substitute
// fakes; production wiring lives in internal/cloud.
type Platform struct {
	// Metadata queries the instance metadata endpoint. May be nil
	// (treated the same as an unreachable endpoint).
	Metadata MetadataSource

	// Services resolves a deployment's public URL through the
	// management API. May be nil, in which case the allow-list falls
	// back to the wildcard.
	Services ServiceURLResolver

	// Secrets reads secret payloads. May be nil, in which case the
	// settings-secret step is skipped.
	Secrets SecretSource
}

// MetadataSource answers questions about the running instance by
// querying the well-known local metadata endpoint.
type MetadataSource interface {
	// Region reports the region this instance runs in, e.g.
	// "europe-west1". Errors mean the endpoint was unreachable or the
	// process is not running on the platform at all.
	Region(ctx context.Context) (string, error)

	// ProjectID reports the cloud project of the running instance.
	ProjectID(ctx context.Context) (string, error)
}

// ServiceURLResolver turns a fully qualified deployment identity into
// the externally visible URL of the running service.
type ServiceURLResolver interface {
	ServiceURL(ctx context.Context, project, region, service string) (string, error)
}

// SecretSource reads the current version of a named secret.
type SecretSource interface {
	Access(ctx context.Context, project, name string) ([]byte, error)
}

// resolveDeployment performs the platform-discovery half of startup.
//
// Each lookup is independent: a failed one leaves its value unknown and
// the next one still runs. Only the final management-API call may fail
// the startup, and only when deployment identity was fully known and
// the call itself errored.
func resolveDeployment(ctx context.Context, platform Platform) (Deployment, error) {
	d := Deployment{
		Service: os.Getenv(envService),
		Project: os.Getenv(envProject),
	}

	if platform.Metadata != nil {
		// The metadata endpoint only exists on the platform. Treat any
		// failure as "unknown" so local runs start cleanly. This is
		// the single deliberate catch-and-continue in the resolver.
		if region, err := platform.Metadata.Region(ctx); err == nil {
			d.Region = region
		}

		if d.Project == "" {
			if project, err := platform.Metadata.ProjectID(ctx); err == nil {
				d.Project = project
			}
		}
	}

	// The management API can only name the service when the full
	// identity triple is known. Anything less means we cannot know our
	// own hostname, so accept any Host header rather than lock
	// everyone out.
	if d.Project == "" || d.Region == "" || d.Service == "" || platform.Services == nil {
		d.AllowedHosts = []string{"*"}
		return d, nil
	}

	serviceURL, err := platform.Services.ServiceURL(ctx, d.Project, d.Region, d.Service)
	if err != nil {
		return Deployment{}, fmt.Errorf("resolving service URL for %s/%s/%s: %w", d.Project, d.Region, d.Service, err)
	}

	parsed, err := url.Parse(serviceURL)
	if err != nil || parsed.Host == "" {
		return Deployment{}, fmt.Errorf("management API returned unusable service URL %q", serviceURL)
	}

	d.ServiceURL = serviceURL
	d.AllowedHosts = []string{parsed.Host}
	return d, nil
}

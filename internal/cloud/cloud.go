// Package cloud contains the production implementations of the
// platform interfaces declared in internal/config.
//
// Everything here is a thin binding to a managed-cloud client library;
// no logic of our own beyond trimming the answers into the shapes the
// resolver wants.
package cloud

import (
	"context"
	"fmt"
	"path"

	"cloud.google.com/go/compute/metadata"
	run "cloud.google.com/go/run/apiv2"
	"cloud.google.com/go/run/apiv2/runpb"
	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"

	"github.com/arvield/cloudnotes/internal/config"
)

// NewPlatform wires the three production sources together. It performs
// no network calls itself; clients are created lazily by the sources
// because serve/migrate/createsuperuser need different subsets.
func NewPlatform() config.Platform {
	return config.Platform{
		Metadata: MetadataSource{},
		Services: RunResolver{},
		Secrets:  SecretManagerSource{},
	}
}

// MetadataSource reads instance facts from the platform's well-known
// local metadata endpoint (http://metadata.google.internal).
type MetadataSource struct{}

// Region queries the instance region. The endpoint returns the long
// form "projects/<number>/regions/<region>"; callers only want the
// final path segment.
//
// When the process is not running on the platform the underlying HTTP
// request fails to connect; that error surfaces unchanged and the
// resolver maps it to "region unknown".
func (MetadataSource) Region(ctx context.Context) (string, error) {
	value, err := metadata.GetWithContext(ctx, "instance/region")
	if err != nil {
		return "", err
	}
	return path.Base(value), nil
}

// ProjectID queries the project the instance belongs to.
func (MetadataSource) ProjectID(ctx context.Context) (string, error) {
	return metadata.ProjectIDWithContext(ctx)
}

// RunResolver resolves a deployment's public URL through the serverless
// platform's management API.
type RunResolver struct{}

// ServiceURL asks the management API for the service resource and
// returns its canonical URI. One call, no retries; a failure here is a
// startup failure because it only happens when the deployment identity
// was fully known.
func (RunResolver) ServiceURL(ctx context.Context, project, region, service string) (string, error) {
	client, err := run.NewServicesClient(ctx)
	if err != nil {
		return "", fmt.Errorf("creating services client: %w", err)
	}
	defer client.Close()

	name := fmt.Sprintf("projects/%s/locations/%s/services/%s", project, region, service)
	svc, err := client.GetService(ctx, &runpb.GetServiceRequest{Name: name})
	if err != nil {
		return "", fmt.Errorf("getting service %s: %w", name, err)
	}

	return svc.GetUri(), nil
}

// SecretManagerSource reads secret payloads from the managed secret
// store. Always the latest version: rotating a secret and redeploying
// is the supported update path.
type SecretManagerSource struct{}

func (SecretManagerSource) Access(ctx context.Context, project, name string) ([]byte, error) {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating secret manager client: %w", err)
	}
	defer client.Close()

	version := fmt.Sprintf("projects/%s/secrets/%s/versions/latest", project, name)
	resp, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: version,
	})
	if err != nil {
		return nil, fmt.Errorf("accessing %s: %w", version, err)
	}

	return resp.GetPayload().GetData(), nil
}

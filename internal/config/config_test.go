package config

import (
	"context"
	"errors"
	"os"
	"testing"
)

type fakeMetadata struct {
	region    string
	project   string
	err       error
	regionHit bool
}

func (f *fakeMetadata) Region(ctx context.Context) (string, error) {
	f.regionHit = true
	return f.region, f.err
}

func (f *fakeMetadata) ProjectID(ctx context.Context) (string, error) {
	return f.project, f.err
}

type fakeResolver struct {
	url string
	err error

	gotProject string
	gotRegion  string
	gotService string
}

func (f *fakeResolver) ServiceURL(ctx context.Context, project, region, service string) (string, error) {
	f.gotProject, f.gotRegion, f.gotService = project, region, service
	return f.url, f.err
}

type fakeSecrets struct {
	payload []byte
	err     error
	calls   int
}

func (f *fakeSecrets) Access(ctx context.Context, project, name string) ([]byte, error) {
	f.calls++
	return f.payload, f.err
}

// setRequiredEnv sets the two values without which Load refuses to
// start.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("CLOUDNOTES_SECRET_KEY", "test-secret")
	t.Setenv("CLOUDNOTES_DATABASE_URL", "postgres://localhost/cloudnotes_test")
}

func TestEnvKeyToPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"CLOUDNOTES_SECRET_KEY", "secret_key"},
		{"CLOUDNOTES_DEBUG", "debug"},
		{"CLOUDNOTES_SETTINGS_NAME", "settings_name"},
		{"CLOUDNOTES_SERVER_PORT", "server.port"},
		{"CLOUDNOTES_SERVER_READ_TIMEOUT", "server.read_timeout"},
		{"CLOUDNOTES_SERVER_CORS_ALLOWED_ORIGINS", "server.cors_allowed_origins"},
		{"CLOUDNOTES_DATABASE_URL", "database.url"},
		{"CLOUDNOTES_BUCKET_NAME", "bucket.name"},
		{"CLOUDNOTES_SUPERUSER_PASSWORD", "superuser.password"},
	}

	for _, tt := range tests {
		if got := envKeyToPath(tt.in); got != tt.want {
			t.Errorf("envKeyToPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLoadSplitsCORSOriginList(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CLOUDNOTES_SERVER_CORS_ALLOWED_ORIGINS", "http://a.example, http://b.example")

	cfg, err := Load(context.Background(), Platform{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := []string{"http://a.example", "http://b.example"}
	got := cfg.Server.CORSAllowedOrigins
	if len(got) != len(want) {
		t.Fatalf("CORSAllowedOrigins = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("origin[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestEnvKeyValueLeavesScalarsAlone(t *testing.T) {
	path, value := envKeyValue("CLOUDNOTES_SECRET_KEY", "a,b")
	if path != "secret_key" {
		t.Errorf("path = %q, want secret_key", path)
	}
	if value != "a,b" {
		t.Errorf("value = %v, commas in scalar values must survive", value)
	}
}

func TestLoadResolvesAllowedHostsFromServiceURL(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("K_SERVICE", "cloudnotes")
	t.Setenv("GOOGLE_CLOUD_PROJECT", "demo-project")

	resolver := &fakeResolver{url: "https://cloudnotes-xyz-ew.a.run.app"}
	cfg, err := Load(context.Background(), Platform{
		Metadata: &fakeMetadata{region: "europe-west1"},
		Services: resolver,
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	d := cfg.Deployment
	if d.Project != "demo-project" || d.Region != "europe-west1" || d.Service != "cloudnotes" {
		t.Errorf("deployment identity = %q/%q/%q", d.Project, d.Region, d.Service)
	}
	if resolver.gotProject != "demo-project" || resolver.gotRegion != "europe-west1" || resolver.gotService != "cloudnotes" {
		t.Errorf("resolver called with %q/%q/%q", resolver.gotProject, resolver.gotRegion, resolver.gotService)
	}
	if len(d.AllowedHosts) != 1 || d.AllowedHosts[0] != "cloudnotes-xyz-ew.a.run.app" {
		t.Errorf("AllowedHosts = %v, want the resolved host", d.AllowedHosts)
	}
	if d.ServiceURL != "https://cloudnotes-xyz-ew.a.run.app" {
		t.Errorf("ServiceURL = %q", d.ServiceURL)
	}
}

func TestLoadWildcardWhenIdentityIncomplete(t *testing.T) {
	tests := []struct {
		name    string
		service string
		project string
		region  string
	}{
		{name: "no service name", project: "demo-project", region: "europe-west1"},
		{name: "no project", service: "cloudnotes", region: "europe-west1"},
		{name: "no region", service: "cloudnotes", project: "demo-project"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			if tt.service != "" {
				t.Setenv("K_SERVICE", tt.service)
			}
			if tt.project != "" {
				t.Setenv("GOOGLE_CLOUD_PROJECT", tt.project)
			}

			metadata := &fakeMetadata{region: tt.region}
			if tt.region == "" {
				metadata = &fakeMetadata{err: errors.New("metadata: no endpoint")}
			}
			resolver := &fakeResolver{url: "https://should-not-be-called.example"}

			cfg, err := Load(context.Background(), Platform{
				Metadata: metadata,
				Services: resolver,
			})
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}

			if len(cfg.Deployment.AllowedHosts) != 1 || cfg.Deployment.AllowedHosts[0] != "*" {
				t.Errorf("AllowedHosts = %v, want wildcard", cfg.Deployment.AllowedHosts)
			}
			if resolver.gotService != "" {
				t.Error("service URL resolver was called despite incomplete identity")
			}
		})
	}
}

func TestLoadSurvivesUnreachableMetadata(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("K_SERVICE", "cloudnotes")
	t.Setenv("GOOGLE_CLOUD_PROJECT", "demo-project")

	metadata := &fakeMetadata{err: errors.New("metadata: dial tcp: connection refused")}
	cfg, err := Load(context.Background(), Platform{
		Metadata: metadata,
		Services: &fakeResolver{url: "https://unused.example"},
	})
	if err != nil {
		t.Fatalf("Load() error = %v, want startup to complete", err)
	}
	if !metadata.regionHit {
		t.Error("metadata endpoint was never queried")
	}
	if cfg.Deployment.Region != "" {
		t.Errorf("Region = %q, want unknown", cfg.Deployment.Region)
	}
	if len(cfg.Deployment.AllowedHosts) != 1 || cfg.Deployment.AllowedHosts[0] != "*" {
		t.Errorf("AllowedHosts = %v, want wildcard", cfg.Deployment.AllowedHosts)
	}
}

func TestLoadNilPlatformIsWildcard(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load(context.Background(), Platform{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.Deployment.AllowedHosts) != 1 || cfg.Deployment.AllowedHosts[0] != "*" {
		t.Errorf("AllowedHosts = %v, want wildcard", cfg.Deployment.AllowedHosts)
	}
}

func TestLoadFailsWithoutSecretKey(t *testing.T) {
	t.Setenv("CLOUDNOTES_DATABASE_URL", "postgres://localhost/cloudnotes_test")
	t.Setenv("CLOUDNOTES_SECRET_KEY", "")

	if _, err := Load(context.Background(), Platform{}); err == nil {
		t.Fatal("Load() succeeded without a secret key")
	}
}

func TestLoadPropagatesServiceURLError(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("K_SERVICE", "cloudnotes")
	t.Setenv("GOOGLE_CLOUD_PROJECT", "demo-project")

	_, err := Load(context.Background(), Platform{
		Metadata: &fakeMetadata{region: "europe-west1"},
		Services: &fakeResolver{err: errors.New("rpc error: permission denied")},
	})
	if err == nil {
		t.Fatal("Load() succeeded despite a failing service URL lookup")
	}
}

func TestLoadDefaultsAndPortOverride(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load(context.Background(), Platform{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("default port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 10 || cfg.Server.WriteTimeout != 30 || cfg.Server.IdleTimeout != 120 {
		t.Errorf("default timeouts = %d/%d/%d", cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.IdleTimeout)
	}

	t.Setenv("PORT", "9090")
	cfg, err = Load(context.Background(), Platform{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("port = %q, want the platform-provided 9090", cfg.Server.Port)
	}
}

func TestSettingsSecretFillsEnvironment(t *testing.T) {
	t.Setenv("GOOGLE_CLOUD_PROJECT", "demo-project")
	t.Setenv("CLOUDNOTES_SETTINGS_NAME", "cloudnotes-settings")
	t.Setenv("CLOUDNOTES_DATABASE_URL", "postgres://localhost/cloudnotes_test")
	t.Cleanup(func() {
		os.Unsetenv("CLOUDNOTES_SECRET_KEY")
		os.Unsetenv("CLOUDNOTES_BUCKET_NAME")
	})

	secrets := &fakeSecrets{payload: []byte(
		"CLOUDNOTES_SECRET_KEY=from-secret\nCLOUDNOTES_BUCKET_NAME=demo-bucket\n",
	)}

	cfg, err := Load(context.Background(), Platform{Secrets: secrets})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if secrets.calls != 1 {
		t.Errorf("secret accessed %d times, want 1", secrets.calls)
	}
	if cfg.SecretKey != "from-secret" {
		t.Errorf("SecretKey = %q, want the secret blob value", cfg.SecretKey)
	}
	if cfg.Bucket.Name != "demo-bucket" {
		t.Errorf("Bucket.Name = %q, want the secret blob value", cfg.Bucket.Name)
	}
}

func TestSettingsSecretNeverOverridesEnvironment(t *testing.T) {
	t.Setenv("GOOGLE_CLOUD_PROJECT", "demo-project")
	t.Setenv("CLOUDNOTES_SETTINGS_NAME", "cloudnotes-settings")
	t.Setenv("CLOUDNOTES_DATABASE_URL", "postgres://localhost/cloudnotes_test")
	t.Setenv("CLOUDNOTES_SECRET_KEY", "from-env")

	secrets := &fakeSecrets{payload: []byte("CLOUDNOTES_SECRET_KEY=from-secret\n")}

	cfg, err := Load(context.Background(), Platform{Secrets: secrets})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.SecretKey != "from-env" {
		t.Errorf("SecretKey = %q, the environment must win over the blob", cfg.SecretKey)
	}
}

func TestSettingsSecretAccessFailureIsFatal(t *testing.T) {
	t.Setenv("GOOGLE_CLOUD_PROJECT", "demo-project")
	t.Setenv("CLOUDNOTES_SETTINGS_NAME", "cloudnotes-settings")
	setRequiredEnv(t)

	secrets := &fakeSecrets{err: errors.New("rpc error: not found")}

	if _, err := Load(context.Background(), Platform{Secrets: secrets}); err == nil {
		t.Fatal("Load() succeeded despite an unfetchable settings secret")
	}
}

func TestSettingsSecretSkippedWithoutName(t *testing.T) {
	t.Setenv("GOOGLE_CLOUD_PROJECT", "demo-project")
	setRequiredEnv(t)

	secrets := &fakeSecrets{err: errors.New("must not be called")}

	if _, err := Load(context.Background(), Platform{Secrets: secrets}); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if secrets.calls != 0 {
		t.Error("secret accessed although no settings name was configured")
	}
}

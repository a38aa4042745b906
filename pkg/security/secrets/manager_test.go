package secrets

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestManagerGetSecretFromEnv(t *testing.T) {
	os.Setenv("CLARION_SECRET_TEST_KEY", "env-value")
	defer os.Unsetenv("CLARION_SECRET_TEST_KEY")

	manager := NewManager(
		[]Provider{NewEnvProvider("CLARION_SECRET_")},
		CacheConfig{Enabled: false},
	)

	value, err := manager.GetSecret(context.Background(), "test-key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != "env-value" {
		t.Errorf("expected 'env-value', got %q", value)
	}
}

func TestManagerProviderOrder(t *testing.T) {
	os.Setenv("CLARION_SECRET_SHARED", "from-env")
	defer os.Unsetenv("CLARION_SECRET_SHARED")

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "shared"), []byte("from-file"), 0600); err != nil {
		t.Fatal(err)
	}

	envProvider := NewEnvProvider("CLARION_SECRET_")
	fileProvider, err := NewFileProvider(dir, false)
	if err != nil {
		t.Fatal(err)
	}
	defer fileProvider.Close()

	// First provider in the chain wins.
	manager := NewManager([]Provider{envProvider, fileProvider}, CacheConfig{Enabled: false})
	value, err := manager.GetSecret(context.Background(), "shared")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != "from-env" {
		t.Errorf("expected 'from-env', got %q", value)
	}

	reversed := NewManager([]Provider{fileProvider, envProvider}, CacheConfig{Enabled: false})
	value, err = reversed.GetSecret(context.Background(), "shared")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != "from-file" {
		t.Errorf("expected 'from-file', got %q", value)
	}
}

func TestManagerGetSecretNotFound(t *testing.T) {
	manager := NewManager(
		[]Provider{NewEnvProvider("CLARION_SECRET_")},
		CacheConfig{Enabled: false},
	)

	if _, err := manager.GetSecret(context.Background(), "no-such-secret"); err == nil {
		t.Error("expected error for unknown secret, got nil")
	}
}

func TestManagerCaching(t *testing.T) {
	os.Setenv("CLARION_SECRET_CACHED", "original")
	defer os.Unsetenv("CLARION_SECRET_CACHED")

	manager := NewManager(
		[]Provider{NewEnvProvider("CLARION_SECRET_")},
		CacheConfig{Enabled: true, TTL: time.Minute, MaxSize: 10},
	)

	value, err := manager.GetSecret(context.Background(), "cached")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != "original" {
		t.Fatalf("expected 'original', got %q", value)
	}

	// The environment changes but the cached value is served.
	os.Setenv("CLARION_SECRET_CACHED", "changed")

	value, err = manager.GetSecret(context.Background(), "cached")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != "original" {
		t.Errorf("expected cached 'original', got %q", value)
	}
}

func TestManagerResolveReferences(t *testing.T) {
	os.Setenv("CLARION_SECRET_API_KEY", "sk-abc123")
	os.Setenv("CLARION_SECRET_TOKEN", "tok-987")
	defer func() {
		os.Unsetenv("CLARION_SECRET_API_KEY")
		os.Unsetenv("CLARION_SECRET_TOKEN")
	}()

	manager := NewManager(
		[]Provider{NewEnvProvider("CLARION_SECRET_")},
		CacheConfig{Enabled: false},
	)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "single reference",
			input:    "${secret:api-key}",
			expected: "sk-abc123",
		},
		{
			name:     "embedded reference",
			input:    "Bearer ${secret:token}",
			expected: "Bearer tok-987",
		},
		{
			name:     "multiple references",
			input:    "${secret:api-key}:${secret:token}",
			expected: "sk-abc123:tok-987",
		},
		{
			name:     "no references",
			input:    "plain literal value",
			expected: "plain literal value",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := manager.ResolveReferences(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if output != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, output)
			}
		})
	}
}

func TestManagerResolveReferencesUnknown(t *testing.T) {
	manager := NewManager(
		[]Provider{NewEnvProvider("CLARION_SECRET_")},
		CacheConfig{Enabled: false},
	)

	output, err := manager.ResolveReferences(context.Background(), "${secret:ghost}")
	if err == nil {
		t.Fatal("expected error for unknown reference, got nil")
	}
	if !strings.Contains(err.Error(), "failed to resolve secret") {
		t.Errorf("unexpected error text: %v", err)
	}

	// The unresolved reference stays in place.
	if output != "${secret:ghost}" {
		t.Errorf("expected reference kept, got %q", output)
	}
}

func TestManagerRefresh(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rotated")
	if err := os.WriteFile(path, []byte("v1"), 0600); err != nil {
		t.Fatal(err)
	}

	fileProvider, err := NewFileProvider(dir, false)
	if err != nil {
		t.Fatal(err)
	}
	defer fileProvider.Close()

	manager := NewManager(
		[]Provider{fileProvider},
		CacheConfig{Enabled: true, TTL: time.Minute, MaxSize: 10},
	)

	value, err := manager.GetSecret(context.Background(), "rotated")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != "v1" {
		t.Fatalf("expected 'v1', got %q", value)
	}

	if err := os.WriteFile(path, []byte("v2"), 0600); err != nil {
		t.Fatal(err)
	}

	if err := manager.Refresh(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	value, err = manager.GetSecret(context.Background(), "rotated")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != "v2" {
		t.Errorf("expected 'v2' after refresh, got %q", value)
	}
}

func TestManagerListSecrets(t *testing.T) {
	os.Setenv("CLARION_SECRET_FROM_ENV", "1")
	defer os.Unsetenv("CLARION_SECRET_FROM_ENV")

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "from-file"), []byte("2"), 0600); err != nil {
		t.Fatal(err)
	}

	fileProvider, err := NewFileProvider(dir, false)
	if err != nil {
		t.Fatal(err)
	}
	defer fileProvider.Close()

	manager := NewManager(
		[]Provider{NewEnvProvider("CLARION_SECRET_"), fileProvider},
		CacheConfig{Enabled: false},
	)

	names, err := manager.ListSecrets(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	found := make(map[string]bool, len(names))
	for _, name := range names {
		found[name] = true
	}
	if !found["from-env"] {
		t.Error("expected 'from-env' in list")
	}
	if !found["from-file"] {
		t.Error("expected 'from-file' in list")
	}
}

func TestManagerConcurrentAccess(t *testing.T) {
	os.Setenv("CLARION_SECRET_SHARED_READ", "value")
	defer os.Unsetenv("CLARION_SECRET_SHARED_READ")

	manager := NewManager(
		[]Provider{NewEnvProvider("CLARION_SECRET_")},
		CacheConfig{Enabled: true, TTL: time.Minute, MaxSize: 100},
	)

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 50; j++ {
				if _, err := manager.GetSecret(context.Background(), "shared-read"); err != nil {
					t.Errorf("unexpected error: %v", err)
					return
				}
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}

func TestRedactName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"guard-api-key", "gu...ey"},
		{"key", "***"},
		{"abcd", "***"},
		{"abcde", "ab...de"},
	}

	for _, tt := range tests {
		if got := redactName(tt.input); got != tt.expected {
			t.Errorf("redactName(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

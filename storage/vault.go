package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/vault/api"
	"github.com/ruteri/cfn-rsakey-provider/interfaces"
)

// VaultStore implements a secret store using the HashiCorp Vault KV v2 engine.
// Writes that must not overwrite use check-and-set with cas=0, so Vault
// itself rejects the write when the secret already exists. A secret whose
// latest version is deleted or destroyed counts as absent: the write is
// then checked against that version instead.
type VaultStore struct {
	client      *api.Client
	mountPath   string
	dataPath    string
	log         *slog.Logger
	locationURI string
}

// NewVaultStore creates a new Vault store with token authentication.
// An empty token falls back to VAULT_TOKEN.
//
// Parameters:
//   - address: Vault server address (e.g. https://vault.example.com:8200)
//   - mountPath: KV v2 mount path (e.g. "secret")
//   - dataPath: Path within the mount under which secrets are kept (e.g. "rsakeys")
//   - token: Vault token
//   - timeout: HTTP client timeout
//   - log: Structured logger for operational insights
func NewVaultStore(address, mountPath, dataPath, token string, timeout time.Duration, log *slog.Logger) (*VaultStore, error) {
	config := api.DefaultConfig()
	config.Address = address
	if timeout > 0 {
		config.Timeout = timeout
	}
	// Store requests run at most once.
	config.MaxRetries = 0

	client, err := api.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vault client: %w", err)
	}
	if token != "" {
		client.SetToken(token)
	}

	return NewVaultStoreWithClient(client, mountPath, dataPath, log), nil
}

// NewVaultStoreWithClient creates a store on top of a configured Vault client.
func NewVaultStoreWithClient(client *api.Client, mountPath, dataPath string, log *slog.Logger) *VaultStore {
	mountPath = strings.Trim(mountPath, "/")
	dataPath = strings.Trim(dataPath, "/")

	return &VaultStore{
		client:      client,
		mountPath:   mountPath,
		dataPath:    dataPath,
		log:         log,
		locationURI: fmt.Sprintf("vault://%s/%s/%s", client.Address(), mountPath, dataPath),
	}
}

// Put writes value to the KV v2 data path of name.
func (b *VaultStore) Put(ctx context.Context, name string, value []byte, opts interfaces.PutOptions) error {
	start := time.Now()
	secretPath := b.secretPath("data", name)

	payload := map[string]interface{}{
		"data": map[string]interface{}{
			"value":       string(value),
			"key_alias":   opts.KeyAlias,
			"description": opts.Description,
		},
	}
	if !opts.Overwrite {
		payload["options"] = map[string]interface{}{"cas": 0}
	}

	_, err := b.client.Logical().WriteWithContext(ctx, secretPath, payload)
	if err != nil && isCheckAndSetError(err) {
		// Get reads a deleted or destroyed latest version as not found,
		// so such a secret is absent for create-only writes too.
		if version, deleted := b.latestVersionDeleted(ctx, name); deleted {
			payload["options"] = map[string]interface{}{"cas": version}
			_, err = b.client.Logical().WriteWithContext(ctx, secretPath, payload)
		}
	}
	if err != nil {
		if isCheckAndSetError(err) {
			b.log.Debug("Secret already exists in Vault", slog.String("path", secretPath))
			return fmt.Errorf("%w: %v", interfaces.ErrAlreadyExists, err)
		}
		b.log.Error("Failed to write to Vault",
			slog.String("path", secretPath),
			"err", err)
		return fmt.Errorf("%w: %v", interfaces.ErrStoreUnavailable, err)
	}

	b.log.Info("Successfully stored secret in Vault",
		slog.String("path", secretPath),
		slog.Bool("overwrite", opts.Overwrite),
		slog.Duration("duration", time.Since(start)))

	return nil
}

// Get reads the latest version of name.
// Deleted and destroyed versions read as not found.
func (b *VaultStore) Get(ctx context.Context, name string) ([]byte, error) {
	start := time.Now()
	secretPath := b.secretPath("data", name)

	secret, err := b.client.Logical().ReadWithContext(ctx, secretPath)
	if err != nil {
		b.log.Error("Failed to read from Vault",
			slog.String("path", secretPath),
			"err", err)
		return nil, fmt.Errorf("%w: %v", interfaces.ErrStoreUnavailable, err)
	}

	if secret == nil || secret.Data == nil || secret.Data["data"] == nil {
		b.log.Debug("Secret not found in Vault", slog.String("path", secretPath))
		return nil, fmt.Errorf("%w: %s", interfaces.ErrNotFound, secretPath)
	}

	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: invalid data format in Vault response", interfaces.ErrDecode)
	}

	value, ok := data["value"].(string)
	if !ok {
		return nil, fmt.Errorf("%w: value key not found in Vault data", interfaces.ErrDecode)
	}

	b.log.Info("Successfully fetched secret from Vault",
		slog.String("path", secretPath),
		slog.Duration("duration", time.Since(start)))

	return []byte(value), nil
}

// Delete removes all versions and the metadata of name.
func (b *VaultStore) Delete(ctx context.Context, name string) error {
	metadataPath := b.secretPath("metadata", name)

	_, err := b.client.Logical().DeleteWithContext(ctx, metadataPath)
	if err != nil {
		var respErr *api.ResponseError
		if errors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound {
			return nil
		}
		b.log.Error("Failed to delete from Vault",
			slog.String("path", metadataPath),
			"err", err)
		return fmt.Errorf("%w: %v", interfaces.ErrStoreUnavailable, err)
	}

	b.log.Info("Deleted secret from Vault", slog.String("path", metadataPath))
	return nil
}

// Available checks that Vault is initialized and unsealed.
func (b *VaultStore) Available(ctx context.Context) bool {
	healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	health, err := b.client.Sys().HealthWithContext(healthCtx)
	if err != nil {
		b.log.Debug("Vault health check failed", "err", err)
		return false
	}

	if !health.Initialized || health.Sealed {
		b.log.Debug("Vault is not available",
			slog.Bool("initialized", health.Initialized),
			slog.Bool("sealed", health.Sealed))
		return false
	}

	return true
}

// Name returns a unique identifier for this store.
func (b *VaultStore) Name() string {
	return fmt.Sprintf("vault-%s-%s", b.mountPath, b.dataPath)
}

// LocationURI returns the URI that identifies this store.
func (b *VaultStore) LocationURI() string {
	return b.locationURI
}

// latestVersionDeleted reports whether the latest version of name is
// deleted or destroyed, together with that version number. Metadata that
// cannot be read counts as not deleted.
func (b *VaultStore) latestVersionDeleted(ctx context.Context, name string) (int64, bool) {
	metadataPath := b.secretPath("metadata", name)

	secret, err := b.client.Logical().ReadWithContext(ctx, metadataPath)
	if err != nil || secret == nil || secret.Data == nil {
		b.log.Debug("Could not read Vault metadata", slog.String("path", metadataPath), "err", err)
		return 0, false
	}

	version, ok := jsonInt(secret.Data["current_version"])
	if !ok || version == 0 {
		return 0, false
	}

	versions, _ := secret.Data["versions"].(map[string]interface{})
	latest, _ := versions[strconv.FormatInt(version, 10)].(map[string]interface{})
	if latest == nil {
		return 0, false
	}

	destroyed, _ := latest["destroyed"].(bool)
	deletionTime, _ := latest["deletion_time"].(string)
	if !destroyed && deletionTime == "" {
		return 0, false
	}
	return version, true
}

func jsonInt(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	}
	return 0, false
}

// secretPath builds "<mount>/<kind>/<dataPath>/<name>".
func (b *VaultStore) secretPath(kind, name string) string {
	return path.Join(b.mountPath, kind, b.dataPath, name)
}

func isCheckAndSetError(err error) bool {
	var respErr *api.ResponseError
	if !errors.As(err, &respErr) || respErr.StatusCode != http.StatusBadRequest {
		return false
	}
	for _, msg := range respErr.Errors {
		if strings.Contains(msg, "check-and-set") {
			return true
		}
	}
	return false
}

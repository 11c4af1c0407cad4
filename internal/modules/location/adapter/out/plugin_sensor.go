package out

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"

	pluginrpc "vecino/internal/modules/location/adapter/out/rpc"
	"vecino/internal/modules/location/domain"
	locationout "vecino/internal/modules/location/port/out"
	"vecino/internal/platform/logging"
)

const defaultStartTimeout = 3 * time.Second

var ErrChecksumMismatch = errors.New("location plugin checksum mismatch")

type PluginConfig struct {
	Binary string
	// SHA256 is optional; when set the binary must match it.
	SHA256 string
}

// PluginSensor runs an external sensor binary through go-plugin. The process
// is started on first use and kept until Close.
type PluginSensor struct {
	cfg    PluginConfig
	logger hclog.Logger

	mu     sync.Mutex
	client *plugin.Client
	sensor pluginrpc.SensorClient
}

func NewPluginSensor(cfg PluginConfig, logger hclog.Logger) *PluginSensor {
	return &PluginSensor{cfg: cfg, logger: logging.OrDiscard(logger)}
}

var _ locationout.Sensor = (*PluginSensor)(nil)

func (s *PluginSensor) RequestPermission(ctx context.Context) (domain.Permission, error) {
	sensor, err := s.connect()
	if err != nil {
		return "", err
	}
	resp, err := sensor.RequestPermission(ctx)
	if err != nil {
		return "", fmt.Errorf("request permission: %w", err)
	}
	if !resp.Granted {
		s.logger.Debug("plugin denied location", "reason", resp.Reason)
		return domain.PermissionDenied, nil
	}
	return domain.PermissionGranted, nil
}

func (s *PluginSensor) CurrentPosition(ctx context.Context, maxAge time.Duration) (domain.Fix, error) {
	sensor, err := s.connect()
	if err != nil {
		return domain.Fix{}, err
	}
	resp, err := sensor.CurrentPosition(ctx, &pluginrpc.PositionRequest{MaxAgeMS: maxAge.Milliseconds()})
	if err != nil {
		return domain.Fix{}, fmt.Errorf("current position: %w", err)
	}
	fix := domain.Fix{
		Coordinate: domain.Coordinate{Latitude: resp.Latitude, Longitude: resp.Longitude},
		Accuracy:   resp.Accuracy,
	}
	if resp.TimestampUnixMS > 0 {
		fix.Timestamp = time.UnixMilli(resp.TimestampUnixMS).UTC()
	}
	return fix, nil
}

// Metadata reports the plugin's name and version.
func (s *PluginSensor) Metadata(ctx context.Context) (pluginrpc.Metadata, error) {
	sensor, err := s.connect()
	if err != nil {
		return pluginrpc.Metadata{}, err
	}
	meta, err := sensor.GetMetadata(ctx)
	if err != nil {
		return pluginrpc.Metadata{}, fmt.Errorf("get metadata: %w", err)
	}
	return *meta, nil
}

func (s *PluginSensor) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil {
		s.client.Kill()
		s.client = nil
		s.sensor = nil
	}
	return nil
}

func (s *PluginSensor) connect() (pluginrpc.SensorClient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sensor != nil {
		return s.sensor, nil
	}
	if s.cfg.SHA256 != "" {
		if err := checksumMatches(s.cfg.Binary, s.cfg.SHA256); err != nil {
			return nil, err
		}
	}
	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig:  pluginrpc.HandshakeConfig,
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolGRPC},
		Plugins:          pluginrpc.PluginMap(nil),
		Cmd:              exec.Command(s.cfg.Binary),
		Managed:          true,
		StartTimeout:     defaultStartTimeout,
		Logger:           s.logger.Named("plugin"),
	})
	rpcClient, err := client.Client()
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("start location plugin: %w", err)
	}
	raw, err := rpcClient.Dispense(pluginrpc.PluginMapKey)
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("dispense location plugin: %w", err)
	}
	typed, ok := raw.(pluginrpc.SensorClient)
	if !ok {
		client.Kill()
		return nil, fmt.Errorf("location plugin client type mismatch")
	}
	s.client = client
	s.sensor = typed
	return typed, nil
}

func checksumMatches(path string, expected string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read plugin binary: %w", err)
	}
	hash := sha256.Sum256(payload)
	if hex.EncodeToString(hash[:]) != expected {
		return fmt.Errorf("%w: %s", ErrChecksumMismatch, filepath.Base(path))
	}
	return nil
}

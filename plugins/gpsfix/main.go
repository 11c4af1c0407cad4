// Command gpsfix is a location sensor plugin that serves the fix stored in
// a JSON file. The path comes from GPSFIX_FILE, defaulting to
// $HOME/.vecino/fix.json. A missing file means permission is denied.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-plugin"

	pluginrpc "vecino/internal/modules/location/adapter/out/rpc"
)

const envFixFile = "GPSFIX_FILE"

type fixFile struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Accuracy  float64   `json:"accuracy"`
	Timestamp time.Time `json:"timestamp"`
}

type server struct {
	path string
}

func (s *server) GetMetadata(context.Context, *pluginrpc.Empty) (*pluginrpc.Metadata, error) {
	return &pluginrpc.Metadata{Name: "gpsfix", Version: "1.0.0"}, nil
}

func (s *server) RequestPermission(context.Context, *pluginrpc.Empty) (*pluginrpc.PermissionResponse, error) {
	if _, err := os.Stat(s.path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &pluginrpc.PermissionResponse{Granted: false, Reason: "no fix file at " + s.path}, nil
		}
		return nil, err
	}
	return &pluginrpc.PermissionResponse{Granted: true}, nil
}

func (s *server) CurrentPosition(ctx context.Context, _ *pluginrpc.PositionRequest) (*pluginrpc.PositionResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	info, err := os.Stat(s.path)
	if err != nil {
		return nil, fmt.Errorf("stat fix file: %w", err)
	}
	payload, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read fix file: %w", err)
	}
	fix := fixFile{}
	if err := json.Unmarshal(payload, &fix); err != nil {
		return nil, fmt.Errorf("decode fix file: %w", err)
	}
	taken := fix.Timestamp
	if taken.IsZero() {
		taken = info.ModTime()
	}
	return &pluginrpc.PositionResponse{
		Latitude:        fix.Latitude,
		Longitude:       fix.Longitude,
		Accuracy:        fix.Accuracy,
		TimestampUnixMS: taken.UnixMilli(),
	}, nil
}

func fixPath() string {
	if v := os.Getenv(envFixFile); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "fix.json"
	}
	return filepath.Join(home, ".vecino", "fix.json")
}

func main() {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: pluginrpc.HandshakeConfig,
		Plugins:         pluginrpc.PluginMap(&server{path: fixPath()}),
		GRPCServer:      plugin.DefaultGRPCServer,
	})
}

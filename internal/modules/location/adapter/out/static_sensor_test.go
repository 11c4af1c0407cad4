package out_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	locationout "vecino/internal/modules/location/adapter/out"
	"vecino/internal/modules/location/domain"
	"vecino/internal/platform/clock"
)

func TestStaticSensorStampsCurrentTime(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 11, 4, 12, 0, 0, 0, time.UTC)
	sensor := locationout.NewStaticSensor(domain.Coordinate{Latitude: -22.45, Longitude: -68.92}, clock.Fixed(now))
	perm, err := sensor.RequestPermission(context.Background())
	if err != nil || perm != domain.PermissionGranted {
		t.Fatalf("static sensor must grant permission: %v %v", perm, err)
	}
	fix, err := sensor.CurrentPosition(context.Background(), time.Second)
	if err != nil {
		t.Fatalf("current position: %v", err)
	}
	if !fix.Timestamp.Equal(now) || fix.Coordinate.Latitude != -22.45 {
		t.Fatalf("unexpected fix %+v", fix)
	}
}

func TestDeniedSensor(t *testing.T) {
	t.Parallel()
	perm, err := locationout.NewDeniedSensor().RequestPermission(context.Background())
	if err != nil || perm != domain.PermissionDenied {
		t.Fatalf("expected denial, got %v %v", perm, err)
	}
}

func TestPluginSensorRejectsChecksumMismatch(t *testing.T) {
	t.Parallel()
	bin := filepath.Join(t.TempDir(), "gpsfix")
	if err := os.WriteFile(bin, []byte("not the pinned binary"), 0o755); err != nil {
		t.Fatalf("write binary: %v", err)
	}
	sensor := locationout.NewPluginSensor(locationout.PluginConfig{Binary: bin, SHA256: strings.Repeat("0", 64)}, nil)
	defer sensor.Close()
	_, err := sensor.RequestPermission(context.Background())
	if !errors.Is(err, locationout.ErrChecksumMismatch) {
		t.Fatalf("expected checksum mismatch, got %v", err)
	}
}

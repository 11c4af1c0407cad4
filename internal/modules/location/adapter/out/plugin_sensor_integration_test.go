package out_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	locationout "vecino/internal/modules/location/adapter/out"
	"vecino/internal/modules/location/domain"
)

func TestPluginSensorIntegrationGPSFix(t *testing.T) {
	binPath := buildGPSFixPlugin(t)
	fixPath := filepath.Join(t.TempDir(), "fix.json")
	t.Setenv("GPSFIX_FILE", fixPath)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	denied := locationout.NewPluginSensor(locationout.PluginConfig{Binary: binPath}, nil)
	perm, err := denied.RequestPermission(ctx)
	if err != nil {
		t.Fatalf("request permission: %v", err)
	}
	if perm != domain.PermissionDenied {
		t.Fatalf("missing fix file must deny, got %s", perm)
	}
	_ = denied.Close()

	taken := time.Date(2024, 11, 4, 12, 0, 0, 0, time.UTC)
	payload := `{"latitude": -22.4531, "longitude": -68.9277, "accuracy": 8.5, "timestamp": "` + taken.Format(time.RFC3339) + `"}`
	if err := os.WriteFile(fixPath, []byte(payload), 0o600); err != nil {
		t.Fatalf("write fix: %v", err)
	}
	sensor := locationout.NewPluginSensor(locationout.PluginConfig{Binary: binPath}, nil)
	defer sensor.Close()

	meta, err := sensor.Metadata(ctx)
	if err != nil || meta.Name != "gpsfix" {
		t.Fatalf("metadata: %+v %v", meta, err)
	}
	perm, err = sensor.RequestPermission(ctx)
	if err != nil || perm != domain.PermissionGranted {
		t.Fatalf("expected granted, got %s %v", perm, err)
	}
	fix, err := sensor.CurrentPosition(ctx, 10*time.Second)
	if err != nil {
		t.Fatalf("current position: %v", err)
	}
	if fix.Coordinate.Latitude != -22.4531 || fix.Accuracy != 8.5 || !fix.Timestamp.Equal(taken) {
		t.Fatalf("unexpected fix %+v", fix)
	}
}

func buildGPSFixPlugin(t *testing.T) string {
	t.Helper()
	binPath := filepath.Join(t.TempDir(), "gpsfix")
	cmd := exec.Command("go", "build", "-o", binPath, "./plugins/gpsfix")
	cmd.Dir = repositoryRoot(t)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("build gpsfix plugin: %v\n%s", err, string(out))
	}
	return binPath
}

func repositoryRoot(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("runtime caller failed")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "../../../../../"))
}

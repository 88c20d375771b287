package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/daikin-humid/internal/config"
	"github.com/muurk/daikin-humid/internal/deviceclient"
)

func fakeDevice(t *testing.T, polls *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case deviceclient.PathBasicInfo:
			_, _ = w.Write([]byte("ret=OK,name=%e5%af%9d%e5%ae%a4,mac=A0B1C2D3E4F5,ver=1_14_68"))
		case deviceclient.PathModelInfo:
			_, _ = w.Write([]byte("ret=OK,model=MCK70Y"))
		case deviceclient.PathControlInfo:
			polls.Add(1)
			_, _ = w.Write([]byte("ret=OK,pow=1,mode=2,humd=2,airvol=3"))
		case deviceclient.PathSensorInfo:
			_, _ = w.Write([]byte("ret=OK,hhum=45,temp=23,pm25=8"))
		case deviceclient.PathUnitStatus:
			_, _ = w.Write([]byte("ret=OK,filter_sign=0"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(host string) *config.Config {
	cfg := config.New()
	cfg.Device.Host = host
	cfg.Device.Nickname = "bedroom"
	cfg.HTTP.Listen = ""
	return cfg
}

func TestIdentify(t *testing.T) {
	var polls atomic.Int32
	dev := fakeDevice(t, &polls)
	cfg := testConfig(dev.URL)
	client := deviceclient.NewClient(dev.URL, nil)

	device, err := identify(context.Background(), cfg, client)
	if err != nil {
		t.Fatalf("identify() error = %v", err)
	}
	if device.ID != "A0B1C2D3E4F5" || device.Model != "MCK70Y" || device.Firmware != "1_14_68" {
		t.Errorf("device = %+v", device)
	}
	if device.Name != "bedroom" {
		t.Errorf("Name = %q, want the nickname", device.Name)
	}

	cfg.Device.Nickname = ""
	device, _ = identify(context.Background(), cfg, client)
	if device.Name != "寝室" {
		t.Errorf("Name = %q, want the decoded device name", device.Name)
	}
}

func TestServe_PollsUntilCanceled(t *testing.T) {
	var polls atomic.Int32
	dev := fakeDevice(t, &polls)
	cfg := testConfig(dev.URL)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- serve(ctx, cfg, deviceclient.NewClient(dev.URL, nil), zap.NewNop())
	}()

	deadline := time.Now().Add(5 * time.Second)
	for polls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if polls.Load() == 0 {
		t.Fatal("serve() never polled the device")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("serve() error = %v, want nil on cancel", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("serve() did not stop after cancel")
	}
}

func TestServe_UnreachableDevice(t *testing.T) {
	dev := httptest.NewServer(http.NotFoundHandler())
	url := dev.URL
	dev.Close()

	err := serve(context.Background(), testConfig(url), deviceclient.NewClient(url, nil), zap.NewNop())
	if err == nil {
		t.Fatal("serve() should fail when the device cannot be probed")
	}
	if !deviceclient.IsCommunicationFault(err) {
		t.Errorf("error = %v, want a communication fault", err)
	}
}

func TestLoadServeConfig_Flags(t *testing.T) {
	defer func() {
		configPath, serveDevice, serveInterval, noHTTP = "", "", 0, false
	}()

	configPath = t.TempDir() + "/missing.yaml"
	serveDevice = "192.168.1.40"
	serveInterval = 15 * time.Second
	noHTTP = true

	cfg, err := loadServeConfig()
	if err != nil {
		t.Fatalf("loadServeConfig() error = %v", err)
	}
	if cfg.Device.Host != "192.168.1.40" || cfg.Device.PollInterval != 15*time.Second || cfg.HTTP.Listen != "" {
		t.Errorf("cfg = %+v", cfg)
	}

	serveDevice = ""
	if _, err := loadServeConfig(); err == nil {
		t.Error("loadServeConfig() should fail without a device")
	}
}

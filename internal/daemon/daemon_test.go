package daemon_test

import (
	"context"
	"testing"

	"reelcut/internal/daemon"
	"reelcut/internal/mediastore"
	"reelcut/internal/testsupport"
)

func TestDaemonSingleInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	d, err := daemon.New(cfg, store, mediastore.NewManager(cfg, nil), nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer d.Stop()

	rivalStore := testsupport.MustOpenStore(t, cfg)
	rival, err := daemon.New(cfg, rivalStore, nil, nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	if err := rival.Start(context.Background()); err == nil {
		rival.Stop()
		t.Fatal("second instance over the same data dir must be refused")
	}

	status := d.Status()
	if !status.Running {
		t.Fatal("status should report running")
	}
	if status.Backend != cfg.Sessions.Backend {
		t.Fatalf("unexpected backend %q", status.Backend)
	}
}

func TestDaemonStopReleasesLock(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	first, err := daemon.New(cfg, testsupport.MustOpenStore(t, cfg), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	first.Stop()
	if first.Status().Running {
		t.Fatal("status should report stopped")
	}

	second, err := daemon.New(cfg, testsupport.MustOpenStore(t, cfg), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := second.Start(context.Background()); err != nil {
		t.Fatalf("restart after release: %v", err)
	}
	second.Stop()
}

func TestDaemonStartTwice(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	d, err := daemon.New(cfg, testsupport.MustOpenStore(t, cfg), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer d.Stop()

	if err := d.Start(context.Background()); err == nil {
		t.Fatal("double start must fail")
	}
}

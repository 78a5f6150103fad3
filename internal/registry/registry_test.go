package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/vovakirdan/snakepilot/internal/config"
)

type echoProvider struct{ model string }

func (p echoProvider) Complete(_ context.Context, req Request) (string, error) {
	return p.model + ":" + req.Prompt, nil
}

func TestRegisterCreateList(t *testing.T) {
	Register("test-echo", "Echo", func(cfg config.ProviderConfig) (Provider, error) {
		return echoProvider{model: cfg.Model}, nil
	})

	if !Exists("test-echo") {
		t.Fatal("expected test-echo to exist")
	}

	p, err := Create("test-echo", config.ProviderConfig{Model: "m"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	out, _ := p.Complete(context.Background(), Request{Prompt: "hi"})
	if out != "m:hi" {
		t.Errorf("Complete = %q, want %q", out, "m:hi")
	}

	var found bool
	for _, info := range List() {
		if info.Name == "test-echo" && info.Title == "Echo" {
			found = true
		}
	}
	if !found {
		t.Errorf("List() = %v, missing test-echo", List())
	}
}

func TestCreateUnknown(t *testing.T) {
	_, err := Create("does-not-exist", config.ProviderConfig{})
	if !errors.Is(err, ErrUnknownProvider) {
		t.Errorf("err = %v, want ErrUnknownProvider", err)
	}
}

func TestCreateFactoryError(t *testing.T) {
	boom := errors.New("no key")
	Register("test-broken", "Broken", func(config.ProviderConfig) (Provider, error) {
		return nil, boom
	})
	if _, err := Create("test-broken", config.ProviderConfig{}); !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped %v", err, boom)
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	f := func(config.ProviderConfig) (Provider, error) { return echoProvider{}, nil }
	Register("test-dup", "Dup", f)

	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	Register("test-dup", "Dup", f)
}

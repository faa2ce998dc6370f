package llm

import (
	"context"
	"strings"
	"testing"
)

type nopProvider struct{}

func (nopProvider) Chat(context.Context, ChatRequest) (ChatResponse, error) {
	return ChatResponse{}, nil
}

func (nopProvider) ChatStream(context.Context, ChatRequest) (Stream, error) {
	return nil, nil
}

func TestRegistry(t *testing.T) {
	var gotCfg ProviderConfig
	Register("test-registry", func(cfg ProviderConfig) (Provider, error) {
		gotCfg = cfg
		return nopProvider{}, nil
	})

	p, err := NewProvider("test-registry", ProviderConfig{CompartmentID: "ocid1.compartment.test"})
	if err != nil {
		t.Fatalf("NewProvider() err=%v", err)
	}
	if p == nil {
		t.Fatalf("NewProvider() returned nil provider")
	}
	if gotCfg.CompartmentID != "ocid1.compartment.test" {
		t.Fatalf("factory cfg=%+v", gotCfg)
	}

	found := false
	for _, tag := range Providers() {
		if tag == "test-registry" {
			found = true
		}
	}
	if !found {
		t.Fatalf("Providers()=%v, missing test-registry", Providers())
	}
}

func TestNewProvider_Unknown(t *testing.T) {
	_, err := NewProvider("no-such-provider", ProviderConfig{})
	if err == nil {
		t.Fatalf("NewProvider() accepted unknown tag")
	}
	if !strings.Contains(err.Error(), "no-such-provider") {
		t.Fatalf("err=%v, want tag in message", err)
	}
}

func TestRegister_Panics(t *testing.T) {
	mustPanic := func(name string, fn func()) {
		defer func() {
			if recover() == nil {
				t.Fatalf("%s did not panic", name)
			}
		}()
		fn()
	}

	mustPanic("empty tag", func() {
		Register("", func(ProviderConfig) (Provider, error) { return nopProvider{}, nil })
	})
	mustPanic("nil factory", func() { Register("test-nil-factory", nil) })

	Register("test-duplicate", func(ProviderConfig) (Provider, error) { return nopProvider{}, nil })
	mustPanic("duplicate", func() {
		Register("test-duplicate", func(ProviderConfig) (Provider, error) { return nopProvider{}, nil })
	})
}

package ftdc

import (
	"sync"
	"testing"

	"github.com/pkg/errors"
)

func TestRegistryRegisterGet(t *testing.T) {
	registry := NewRegistry()

	login := MustSchema(
		"ReqUserLogin",
		StringField("UserID", 16),
		StringField("Password", 16),
		Int32Field("ClientIPPort"),
	)

	if err := registry.Register(login); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if registry.Size() != 1 {
		t.Errorf("Size mismatch: %d", registry.Size())
	}

	schema, err := registry.Get("ReqUserLogin")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if schema != login {
		t.Error("Get returned different schema instance")
	}

	if !registry.Exists("ReqUserLogin") {
		t.Error("Exists mismatch")
	}

	if _, err = registry.Get("NoSuchSchema"); !errors.Is(err, ErrUnknownSchema) {
		t.Errorf("unknown schema cause mismatch: %v", err)
	}
}

func TestRegistryDuplicate(t *testing.T) {
	registry := NewRegistry()

	if err := registry.Register(MustSchema("Dup", Int32Field("A"))); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}

	err := registry.Register(MustSchema("Dup", Int32Field("B")))
	if !errors.Is(err, ErrDuplicateSchema) {
		t.Errorf("duplicate cause mismatch: %v", err)
	}

	if registry.Size() != 1 {
		t.Errorf("Size changed on duplicate: %d", registry.Size())
	}
}

func TestRegistryFreeze(t *testing.T) {
	registry := NewRegistry()

	if registry.Frozen() {
		t.Error("new registry already frozen")
	}

	if err := registry.Register(MustSchema("Before", Int32Field("A"))); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	registry.Freeze()
	registry.Freeze()

	if !registry.Frozen() {
		t.Error("Freeze did not stick")
	}

	err := registry.Register(MustSchema("After", Int32Field("A")))
	if !errors.Is(err, ErrRegistryFrozen) {
		t.Errorf("frozen cause mismatch: %v", err)
	}

	if _, err = registry.Get("Before"); err != nil {
		t.Errorf("Get after freeze failed: %v", err)
	}
}

func TestRegistryRegistrationOrder(t *testing.T) {
	registry := NewRegistry()

	declared := []string{"RspInfo", "ReqUserLogin", "DepthMarketData", "InputOrder"}

	for _, name := range declared {
		if err := registry.Register(MustSchema(name, Int32Field("A"))); err != nil {
			t.Fatalf("Register %q failed: %v", name, err)
		}
	}

	names := registry.Names()
	if len(names) != len(declared) {
		t.Fatalf("Names length mismatch: %d", len(names))
	}

	for idx, name := range declared {
		if names[idx] != name {
			t.Errorf("Names[%d]: got %q, want %q", idx, names[idx], name)
		}
	}

	walked := make([]string, 0, len(declared))
	registry.OrderedForEach(func(identity string, _ *Schema) bool {
		walked = append(walked, identity)
		return true
	})

	for idx, name := range declared {
		if walked[idx] != name {
			t.Errorf("OrderedForEach[%d]: got %q, want %q", idx, walked[idx], name)
		}
	}

	count := 0
	registry.ForEach(func(string, *Schema) bool {
		count++
		return count < 2
	})

	if count != 2 {
		t.Errorf("ForEach early stop mismatch: %d", count)
	}
}

func TestRegistryConcurrentReads(t *testing.T) {
	registry := NewRegistry()

	for _, name := range []string{"ReqUserLogin", "DepthMarketData", "RspInfo"} {
		if err := registry.Register(MustSchema(
			name,
			StringField("UserID", 16),
			Int32Field("Volume"),
		)); err != nil {
			t.Fatalf("Register %q failed: %v", name, err)
		}
	}

	registry.Freeze()

	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for j := 0; j < 100; j++ {
				schema, err := registry.Get("DepthMarketData")
				if err != nil {
					t.Errorf("concurrent Get failed: %v", err)
					return
				}

				if schema.TotalWidth() != 20 {
					t.Errorf("concurrent TotalWidth mismatch: %d", schema.TotalWidth())
					return
				}

				if _, exist := schema.Field("Volume"); !exist {
					t.Error("concurrent Field lookup failed")
					return
				}
			}
		}()
	}

	wg.Wait()
}

func TestCodecStatics(t *testing.T) {
	stat := CodecStatics{}

	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for j := 0; j < 100; j++ {
				stat.EncodeInc()
				stat.DecodeInc()
			}

			stat.ErrorInc()
		}()
	}

	wg.Wait()

	encode, decode, errCnt := stat.Snapshot()

	if encode != 1000 || decode != 1000 || errCnt != 10 {
		t.Errorf("Snapshot mismatch: %d, %d, %d", encode, decode, errCnt)
	}
}

package state

import (
	"sync"
	"testing"
)

func TestStartReplacesActiveSession(t *testing.T) {
	mgr := NewMemoryManager()
	mgr.Start(1, "checkout", "await_receipt")
	mgr.Put(1, "product_id", int64(42))

	mgr.Start(1, "admin.add_category", "category_name")

	if got := mgr.Flow(1); got != "admin.add_category" {
		t.Fatalf("flow = %q, want admin.add_category", got)
	}
	if got := mgr.State(1); got != "category_name" {
		t.Fatalf("state = %q, want category_name", got)
	}
	if _, ok := mgr.Int64(1, "product_id"); ok {
		t.Fatal("expected stale session data to be discarded on Start")
	}
}

func TestSessionIsolationBetweenUsers(t *testing.T) {
	mgr := NewMemoryManager()
	mgr.Start(1, "checkout", "await_receipt")
	mgr.Start(2, "admin.add_product", "product_name")
	mgr.Put(1, "product_id", int64(7))
	mgr.Put(2, "product_id", int64(9))

	if v, _ := mgr.Int64(1, "product_id"); v != 7 {
		t.Fatalf("user 1 product_id = %d, want 7", v)
	}
	if v, _ := mgr.Int64(2, "product_id"); v != 9 {
		t.Fatalf("user 2 product_id = %d, want 9", v)
	}

	mgr.Clear(1)
	if mgr.InProgress(1) {
		t.Fatal("user 1 should have no session after Clear")
	}
	if !mgr.InProgress(2) {
		t.Fatal("user 2 session must survive user 1 Clear")
	}
}

func TestStateDefaultsToIdle(t *testing.T) {
	mgr := NewMemoryManager()
	if got := mgr.State(99); got != StateIdle {
		t.Fatalf("state = %q, want idle", got)
	}
	if mgr.InProgress(99) {
		t.Fatal("unknown user must not be in progress")
	}
	// SetState without a session must not create one.
	mgr.SetState(99, "price")
	if mgr.InProgress(99) {
		t.Fatal("SetState must not implicitly create a session")
	}
}

func TestTypedAccessors(t *testing.T) {
	mgr := NewMemoryManager()
	mgr.Start(5, "admin.add_product", "price")
	mgr.Put(5, "name", "VPN key")
	mgr.Put(5, "price", 19.99)
	mgr.Put(5, "category_id", int64(3))

	if v, ok := mgr.String(5, "name"); !ok || v != "VPN key" {
		t.Fatalf("String = %q/%v", v, ok)
	}
	if v, ok := mgr.Float64(5, "price"); !ok || v != 19.99 {
		t.Fatalf("Float64 = %v/%v", v, ok)
	}
	if v, ok := mgr.Int64(5, "category_id"); !ok || v != 3 {
		t.Fatalf("Int64 = %v/%v", v, ok)
	}
	if _, ok := mgr.Int64(5, "name"); ok {
		t.Fatal("Int64 must reject non-int64 values")
	}

	mgr.Delete(5, "name")
	if _, ok := mgr.String(5, "name"); ok {
		t.Fatal("expected key removed after Delete")
	}
}

func TestConcurrentAccess(t *testing.T) {
	mgr := NewMemoryManager()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			mgr.Start(id, "checkout", "await_receipt")
			mgr.Put(id, "product_id", id)
			mgr.SetState(id, "done")
			_ = mgr.State(id)
			_, _ = mgr.Int64(id, "product_id")
		}(int64(i))
	}
	wg.Wait()
	for i := int64(0); i < 32; i++ {
		if v, ok := mgr.Int64(i, "product_id"); !ok || v != i {
			t.Fatalf("user %d product_id = %d/%v", i, v, ok)
		}
	}
}

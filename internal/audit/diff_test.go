package audit

import (
	"reflect"
	"testing"
)

func TestChangedProjectsDifferingKeys(t *testing.T) {
	old := map[string]any{"plate": "B 1 AA", "year": 2020, "model": "Avanza"}
	new := map[string]any{"plate": "B 2 AA", "year": 2020, "model": "Avanza"}

	gotOld, gotNew := Changed(old, new)
	if !reflect.DeepEqual(gotOld, map[string]any{"plate": "B 1 AA"}) {
		t.Fatalf("old projection = %v", gotOld)
	}
	if !reflect.DeepEqual(gotNew, map[string]any{"plate": "B 2 AA"}) {
		t.Fatalf("new projection = %v", gotNew)
	}
}

func TestChangedNoopIsNil(t *testing.T) {
	attrs := map[string]any{"plate": "B 1 AA", "year": 2020}
	gotOld, gotNew := Changed(attrs, map[string]any{"plate": "B 1 AA", "year": 2020})
	if gotOld != nil || gotNew != nil {
		t.Fatalf("no-op diff must be nil/nil, got %v / %v", gotOld, gotNew)
	}
}

func TestChangedAddedKey(t *testing.T) {
	gotOld, gotNew := Changed(map[string]any{}, map[string]any{"owner_id": "x"})
	if len(gotOld) != 0 {
		t.Fatalf("added key must not appear in old, got %v", gotOld)
	}
	if !reflect.DeepEqual(gotNew, map[string]any{"owner_id": "x"}) {
		t.Fatalf("new projection = %v", gotNew)
	}
}

func TestChangedRemovedKey(t *testing.T) {
	gotOld, gotNew := Changed(map[string]any{"checked_out_at": "t"}, map[string]any{})
	if !reflect.DeepEqual(gotOld, map[string]any{"checked_out_at": "t"}) {
		t.Fatalf("old projection = %v", gotOld)
	}
	if len(gotNew) != 0 {
		t.Fatalf("removed key must not appear in new, got %v", gotNew)
	}
}

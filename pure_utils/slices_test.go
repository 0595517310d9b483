package pure_utils

import "testing"

func TestContainsAll(t *testing.T) {
	tests := []struct {
		name     string
		superset []string
		items    []string
		want     bool
	}{
		{"subset", []string{"a", "b", "c"}, []string{"a", "b"}, true},
		{"missing element", []string{"a", "b", "c"}, []string{"a", "d"}, false},
		{"same elements", []string{"a", "b"}, []string{"b", "a"}, true},
		{"nothing requested", []string{"a"}, []string{}, true},
		{"empty superset", []string{}, []string{"a"}, false},
		{"reverse is not enough", []string{"a"}, []string{"a", "b"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ContainsAll(tt.superset, tt.items); got != tt.want {
				t.Errorf("ContainsAll() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKeysWhere(t *testing.T) {
	preferences := map[string]bool{"marketing": false, "analytics": true, "ads": true}

	got := KeysWhere(preferences, func(v bool) bool { return v })

	if len(got) != 2 || got[0] != "ads" || got[1] != "analytics" {
		t.Errorf("KeysWhere() = %v, want [ads analytics]", got)
	}
}

func TestPtrOrNil(t *testing.T) {
	if PtrOrNil("") != nil {
		t.Errorf("PtrOrNil(\"\") should be nil")
	}
	if p := PtrOrNil("ua"); p == nil || *p != "ua" {
		t.Errorf("PtrOrNil(\"ua\") = %v, want pointer to ua", p)
	}
}

package utils

import "testing"

func TestKeySetNoDuplicates(t *testing.T) {
	s := NewKeySet()

	if !s.Add("row-1") {
		t.Error("first Add should return true")
	}
	if s.Add("row-1") {
		t.Error("second Add of same key should return false")
	}
	if !s.Add("row-2") {
		t.Error("Add of a new key should return true")
	}
}

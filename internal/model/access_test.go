package model

import "testing"

func TestAccessLevel_Ordering(t *testing.T) {
	t.Parallel()

	if !(AccessPublic < AccessLevel1 && AccessLevel1 < AccessLevel2 && AccessLevel2 < AccessLevel3) {
		t.Fatal("tiers must be strictly ordered")
	}
	if AccessHighest != AccessLevel3 {
		t.Errorf("highest tier should be level 3, got %v", AccessHighest)
	}
	if !AccessLevel2.AtLeast(AccessLevel1) || AccessLevel1.AtLeast(AccessLevel2) {
		t.Error("AtLeast should compare by ordinal")
	}
}

func TestAccessLevel_Valid(t *testing.T) {
	t.Parallel()

	for l := AccessPublic; l <= AccessHighest; l++ {
		if !l.Valid() {
			t.Errorf("%v should be valid", l)
		}
	}
	for _, l := range []AccessLevel{-1, 4, 99} {
		if l.Valid() {
			t.Errorf("%d should be invalid", int(l))
		}
	}
}

func TestGeoPoint_Valid(t *testing.T) {
	t.Parallel()

	if !(GeoPoint{Lat: 34.05, Lon: -118.24}).Valid() {
		t.Error("Los Angeles should be valid")
	}
	if (GeoPoint{Lat: 91, Lon: 0}).Valid() {
		t.Error("latitude 91 should be invalid")
	}
	if (GeoPoint{Lat: 0, Lon: -181}).Valid() {
		t.Error("longitude -181 should be invalid")
	}
}

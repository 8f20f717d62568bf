// Assembly Lights - Lighting Sensor Playback and Floor-Plan Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assemblylights

package fixtures

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/tomtom215/assemblylights/internal/models"
	"github.com/tomtom215/assemblylights/internal/table"
)

func TestLayout_RenderY(t *testing.T) {
	t.Parallel()

	l := DefaultLayout()
	got := l.RenderY(100)
	if math.Abs(got-2731.6) > 1e-9 {
		t.Errorf("RenderY(100) = %v, want 2731.6", got)
	}
	if x := l.RenderX(100); math.Abs(x-787.4) > 1e-9 {
		t.Errorf("RenderX(100) = %v, want 787.4", x)
	}
}

func TestBuild_OneFixturePerCoordinate(t *testing.T) {
	t.Parallel()

	positions := []models.FixturePosition{
		{Area: "10", Channel: "1", Name: "Ballroom downlights", Size: 3, XList: "10,20,30", YList: "5,6,7"},
		{Area: "11", Channel: "2", Name: "Unplaced", Size: 2},
		{Area: "12", Channel: "4", Name: "Bar", Size: 1, XList: "40", YList: "50"},
	}

	got, err := Build(positions, DefaultLayout())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("Build() produced %d fixtures, want 4", len(got))
	}

	seen := make(map[[2]float64]bool)
	for i, f := range got {
		if f.ID != i {
			t.Errorf("fixture %d has ID %d", i, f.ID)
		}
		pt := [2]float64{f.X, f.Y}
		if seen[pt] {
			t.Errorf("duplicate coordinate %v", pt)
		}
		seen[pt] = true
	}
	if got[0].DisplaySize != 24 {
		t.Errorf("DisplaySize = %v, want 24", got[0].DisplaySize)
	}
	if got[3].Key() != (models.Key{Area: "12", Channel: "4"}) {
		t.Errorf("last fixture key = %v", got[3].Key())
	}
}

func TestBuild_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		pos  models.FixturePosition
	}{
		{"unequal lengths", models.FixturePosition{Area: "10", Channel: "1", XList: "1,2", YList: "3"}},
		{"not a number", models.FixturePosition{Area: "10", Channel: "1", XList: "a", YList: "3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := Build([]models.FixturePosition{tt.pos}, DefaultLayout()); !errors.Is(err, ErrCoordinates) {
				t.Errorf("Build() error = %v, want ErrCoordinates", err)
			}
		})
	}
}

func TestBuild_Pure(t *testing.T) {
	t.Parallel()

	positions := []models.FixturePosition{{Area: "10", Channel: "1", Size: 1, XList: "1,2", YList: "3,4"}}
	a, _ := Build(positions, DefaultLayout())
	b, _ := Build(positions, DefaultLayout())
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("Build() not deterministic at %d: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestFilterMinArea(t *testing.T) {
	t.Parallel()

	in := []models.Fixture{
		{Area: "3", Channel: "1"},
		{Area: "9", Channel: "1"},
		{Area: "10", Channel: "1"},
		{Area: "corridor", Channel: "1"},
		{Area: "21", Channel: "2"},
	}

	got := FilterMinArea(in, 10)
	if len(got) != 2 || got[0].Area != "10" || got[1].Area != "21" {
		t.Errorf("FilterMinArea(10) = %+v", got)
	}
	if all := FilterMinArea(in, 0); len(all) != len(in) {
		t.Errorf("FilterMinArea(0) kept %d, want %d", len(all), len(in))
	}
}

func TestWithLevels_Mean(t *testing.T) {
	t.Parallel()

	fixtures := []models.Fixture{{Area: "10", Channel: "1"}, {Area: "10", Channel: "2"}}
	src := MeanLevels{
		{Area: "10", Channel: "1"}: 50,
		{Area: "10", Channel: "2"}: math.NaN(),
	}

	got, err := WithLevels(fixtures, src, LevelOptions{
		Alpha: AlphaOpaque,
		Color: func(v float64) string {
			if math.IsNaN(v) {
				return "nan"
			}
			return "lit"
		},
	})
	if err != nil {
		t.Fatalf("WithLevels() error = %v", err)
	}
	if got[0].Level != 50 || got[0].Alpha != 1 || !got[0].HasData || got[0].Color != "lit" {
		t.Errorf("fixture 0 = %+v", got[0])
	}
	if got[1].HasData || got[1].Alpha != 1 || got[1].Color != "nan" {
		t.Errorf("fixture 1 = %+v", got[1])
	}
	if fixtures[0].Level != 0 {
		t.Error("WithLevels() mutated its input")
	}
}

func TestWithLevels_RowAlpha(t *testing.T) {
	t.Parallel()

	k := models.Key{Area: "10", Channel: "1"}
	ts := time.Date(2016, 3, 1, 6, 0, 0, 0, time.UTC)
	tbl, err := table.New([]time.Time{ts}, []models.Key{k}, [][]float64{{40}}, 5*time.Minute)
	if err != nil {
		t.Fatal(err)
	}

	got, err := WithLevels([]models.Fixture{{Area: "10", Channel: "1"}}, RowLevels{Table: tbl, Row: 0},
		LevelOptions{Alpha: AlphaFromLevel, FixedColor: "#FFE900"})
	if err != nil {
		t.Fatalf("WithLevels() error = %v", err)
	}
	if got[0].Alpha != 0.4 || got[0].Color != "#FFE900" {
		t.Errorf("fixture = %+v, want alpha 0.4 and fixed color", got[0])
	}
}

func TestWithLevels_MissingKey(t *testing.T) {
	t.Parallel()

	_, err := WithLevels([]models.Fixture{{Area: "99", Channel: "9", Name: "Ghost"}}, MeanLevels{}, LevelOptions{})
	var mk *MissingKeyError
	if !errors.As(err, &mk) {
		t.Fatalf("WithLevels() error = %v, want *MissingKeyError", err)
	}
	if mk.Key.String() != "99.9" {
		t.Errorf("MissingKeyError.Key = %s", mk.Key)
	}
}

func TestVerify(t *testing.T) {
	t.Parallel()

	k := models.Key{Area: "10", Channel: "1"}
	tbl, _ := table.New(nil, []models.Key{k}, nil, time.Hour)

	positions := []models.FixturePosition{
		{Area: "10", Channel: "1", XList: "1", YList: "1"},
		{Area: "11", Channel: "1", XList: "1", YList: "1"},
		{Area: "12", Channel: "1"},
	}
	err := Verify(positions, tbl)
	var mk *MissingKeyError
	if !errors.As(err, &mk) || mk.Key.Area != "11" {
		t.Errorf("Verify() error = %v, want missing 11.1", err)
	}
	if err := Verify(positions[:1], tbl); err != nil {
		t.Errorf("Verify() error = %v, want nil", err)
	}
}

package defs

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMerge_Union verifies that disjoint units combine into one composite
// and that the inputs are left untouched.
func TestMerge_Union(t *testing.T) {
	t.Parallel()

	left := &Definitions{
		Assets:    []*Asset{{Key: "raw"}},
		Jobs:      []*Job{{Name: "ingest", Assets: []string{"raw"}}},
		Resources: map[string]any{"warehouse": "duckdb"},
	}
	right := &Definitions{
		Assets:    []*Asset{{Key: "clean", Deps: []string{"raw"}}},
		Schedules: []*Schedule{{Name: "nightly", Cron: "0 2 * * *", Job: "ingest"}},
		Sensors:   []*Sensor{{Name: "late_files", Job: "ingest"}},
	}

	merged, err := Merge(Unit{Name: "a", Defs: left}, Unit{Name: "b", Defs: right})
	require.NoError(t, err)

	assert.Equal(t, []string{"clean", "raw"}, merged.AssetKeys())
	assert.Len(t, merged.Jobs, 1)
	assert.Len(t, merged.Schedules, 1)
	assert.Len(t, merged.Sensors, 1)
	assert.Equal(t, "duckdb", merged.Resources["warehouse"])

	// Inputs must not gain each other's entries.
	assert.Len(t, left.Assets, 1)
	assert.Len(t, right.Assets, 1)
	assert.Empty(t, left.Schedules)
}

// TestMerge_Duplicates exercises the collision error for every collection.
func TestMerge_Duplicates(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		build    func() *Definitions
		wantKind Kind
		wantName string
	}{
		{
			name:     "asset key",
			build:    func() *Definitions { return &Definitions{Assets: []*Asset{{Key: "x"}}} },
			wantKind: KindAsset,
			wantName: "x",
		},
		{
			name:     "job name",
			build:    func() *Definitions { return &Definitions{Jobs: []*Job{{Name: "refresh"}}} },
			wantKind: KindJob,
			wantName: "refresh",
		},
		{
			name:     "resource name",
			build:    func() *Definitions { return &Definitions{Resources: map[string]any{"db": 1}} },
			wantKind: KindResource,
			wantName: "db",
		},
		{
			name:     "schedule name",
			build:    func() *Definitions { return &Definitions{Schedules: []*Schedule{{Name: "hourly"}}} },
			wantKind: KindSchedule,
			wantName: "hourly",
		},
		{
			name:     "sensor name",
			build:    func() *Definitions { return &Definitions{Sensors: []*Sensor{{Name: "watch"}}} },
			wantKind: KindSensor,
			wantName: "watch",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := Merge(
				Unit{Name: "unit-a", Defs: tc.build()},
				Unit{Name: "unit-b", Defs: tc.build()},
			)
			require.Error(t, err)

			var dup *DuplicateError
			require.ErrorAs(t, err, &dup)
			assert.Equal(t, tc.wantKind, dup.Kind)
			assert.Equal(t, tc.wantName, dup.Name)
			assert.Equal(t, [2]string{"unit-a", "unit-b"}, dup.Units)
			assert.Contains(t, err.Error(), tc.wantName)
			assert.Contains(t, err.Error(), "unit-a")
			assert.Contains(t, err.Error(), "unit-b")
		})
	}
}

// TestMerge_ResourceOverride checks that an Override-wrapped resource wins
// the name collision no matter which unit contributes it first, and that
// two overrides still collide.
func TestMerge_ResourceOverride(t *testing.T) {
	t.Parallel()

	plain := Unit{Name: "component", Defs: &Definitions{Resources: map[string]any{"db": "dev"}}}
	forced := Unit{Name: "external", Defs: &Definitions{Resources: map[string]any{"db": Override("prod")}}}

	for _, units := range [][]Unit{{plain, forced}, {forced, plain}} {
		merged, err := Merge(units...)
		require.NoError(t, err)
		assert.Equal(t, "prod", merged.Resources["db"])
	}

	_, err := Merge(forced, Unit{Name: "other", Defs: &Definitions{Resources: map[string]any{"db": Override("stage")}}})
	var dup *DuplicateError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, KindResource, dup.Kind)
}

// TestMerge_SkipsEmptyUnits confirms units with no contribution are ignored.
func TestMerge_SkipsEmptyUnits(t *testing.T) {
	t.Parallel()

	merged, err := Merge(
		Unit{Name: "empty"},
		Unit{Name: "real", Defs: &Definitions{Assets: []*Asset{{Key: "only"}}}},
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"only"}, merged.AssetKeys())
}

// TestMerge_OrderInsensitive checks the composite content does not depend
// on unit order.
func TestMerge_OrderInsensitive(t *testing.T) {
	t.Parallel()

	a := Unit{Name: "a", Defs: &Definitions{Assets: []*Asset{{Key: "one"}}}}
	b := Unit{Name: "b", Defs: &Definitions{Assets: []*Asset{{Key: "two"}}}}

	forward, err := Merge(a, b)
	require.NoError(t, err)
	backward, err := Merge(b, a)
	require.NoError(t, err)

	if diff := cmp.Diff(forward.AssetKeys(), backward.AssetKeys()); diff != "" {
		t.Fatalf("asset keys differ by order (-forward +backward):\n%s", diff)
	}
}
